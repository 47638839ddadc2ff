// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package clockutil provides the testable-time primitives shared by the
// animation frame driver, the fan-curve/platform-profile watcher and the
// power/lid pollers. It is a thin layer over code.cloudfoundry.org/clock,
// grounded on how go.chromium.org/tast/core/internal/xcontext substitutes a
// fake clock in tests.
package clockutil

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
)

// Clock is the subset of code.cloudfoundry.org/clock.Clock this package
// uses; re-exported so callers don't need to import the upstream package
// directly.
type Clock = clock.Clock

// System is the process-wide real clock. Tests construct their own
// clock/fakeclock.FakeClock and pass it explicitly instead of touching this
// var, matching the teacher's "no global mutable state" design note.
var System Clock = clock.NewClock()

// SleepContext sleeps for d on clk, or returns ctx.Err() early if ctx is
// cancelled first. Every animation frame pause and inter-write yield in the
// daemon goes through this so cancellation (spec.md §5, "every sleep between
// frames" is a suspension point) composes with Go's context cancellation.
func SleepContext(ctx context.Context, clk Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := clk.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// Ticker runs fn every interval on clk until ctx is cancelled. Used by the
// PowerController's AC poll and the system-event bridge's lid/AC poll, both
// specified as "polled... every 2 s" (spec.md §4.4.6, §4.5).
func Ticker(ctx context.Context, clk Clock, interval time.Duration, fn func(context.Context)) {
	t := clk.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			fn(ctx)
		}
	}
}
