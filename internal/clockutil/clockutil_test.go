// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package clockutil

import (
	"context"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
)

func TestSleepContextReturnsOnCancel(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SleepContext(ctx, fc, time.Hour); err == nil {
		t.Errorf("expected cancellation error, got nil")
	}
}

func TestSleepContextReturnsOnTimerFire(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	done := make(chan error, 1)
	go func() {
		done <- SleepContext(context.Background(), fc, 10*time.Millisecond)
	}()

	for fc.WatcherCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	fc.Increment(10 * time.Millisecond)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("SleepContext returned error %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SleepContext to return")
	}
}

func TestTickerInvokesFnAndStopsOnCancel(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())

	calls := make(chan struct{}, 4)
	go Ticker(ctx, fc, time.Second, func(context.Context) { calls <- struct{}{} })

	for fc.WatcherCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	fc.Increment(time.Second)
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick callback")
	}

	cancel()
}
