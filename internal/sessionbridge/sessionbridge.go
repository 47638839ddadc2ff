// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package sessionbridge subscribes to the init system's sleep/shutdown
// signals and polls its AC/lid properties, fanning both out to the
// controller.Hooks registered by every per-device controller (spec.md
// §4.5). Grounded on
// original_source/daemon/src/session_manager.rs's login-manager dbus
// subscription shape, carried into godbus/dbus/v5's own
// AddMatchSignal/Signal idiom — the teacher's dbusutil.SignalWatcher
// (_examples/nya3jp-tast-tests/.../local/dbusutil/signal_test.go) shows the
// same "AddMatchSignal, then drain a *dbus.Signal channel" shape, client
// side; this package is that shape used for the daemon's own long-lived
// subscription rather than a single test assertion.
package sessionbridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/rogdaemon/asusd-go/internal/clockutil"
	"github.com/rogdaemon/asusd-go/internal/controller"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

const (
	loginManagerDest = "org.freedesktop.login1"
	loginManagerPath = "/org/freedesktop/login1"
	loginManagerIface = "org.freedesktop.login1.Manager"

	lidClosedProp      = "LidClosed"
	onExternalPowerProp = "OnExternalPower"

	signalChanSize = 16
)

// pollInterval matches spec.md §4.5: "polled on a 2 s cadence,
// edge-triggered".
const pollInterval = 2 * time.Second

// Bridge fans out PrepareForSleep/PrepareForShutdown signals and
// OnExternalPower/LidClosed polling to every registered controller.Hooks.
type Bridge struct {
	conn   *dbus.Conn
	clk    clockutil.Clock
	logger *slog.Logger

	hooks []controller.Hooks

	lastMains     bool
	lastLidClosed bool
	known         bool

	sigCh chan *dbus.Signal
}

// New constructs a Bridge over an already-connected bus connection (the
// same connection busserver.Server owns, per spec.md's single-reactor
// process model — there is exactly one bus connection in this daemon).
func New(conn *dbus.Conn, clk clockutil.Clock, logger *slog.Logger) *Bridge {
	if clk == nil {
		clk = clockutil.System
	}
	return &Bridge{conn: conn, clk: clk, logger: logger}
}

// Register adds h to the set of hooks invoked on every bridged event. Called
// once per controller during device-manager construction (spec.md §4.4 step
// 4, "create_tasks").
func (b *Bridge) Register(h controller.Hooks) {
	b.hooks = append(b.hooks, h)
}

// Run subscribes to PrepareForSleep and PrepareForShutdown and dispatches
// them until ctx is cancelled. It blocks; callers run it in its own
// goroutine.
func (b *Bridge) Run(ctx context.Context) error {
	call := b.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule("PrepareForSleep"))
	if call.Err != nil {
		return rogerrors.Wrap(call.Err, "subscribing to PrepareForSleep")
	}
	call = b.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule("PrepareForShutdown"))
	if call.Err != nil {
		return rogerrors.Wrap(call.Err, "subscribing to PrepareForShutdown")
	}

	b.sigCh = make(chan *dbus.Signal, signalChanSize)
	b.conn.Signal(b.sigCh)
	defer b.conn.RemoveSignal(b.sigCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-b.sigCh:
			if !ok {
				return nil
			}
			b.dispatchSignal(ctx, sig)
		}
	}
}

func matchRule(member string) string {
	return "type='signal',interface='" + loginManagerIface + "',member='" + member + "'"
}

func (b *Bridge) dispatchSignal(ctx context.Context, sig *dbus.Signal) {
	switch sig.Name {
	case loginManagerIface + ".PrepareForSleep":
		entering, ok := soleBoolArg(sig)
		if !ok {
			return
		}
		if entering {
			b.fireOnSleep(ctx)
		} else {
			b.fireOnWake(ctx)
		}
	case loginManagerIface + ".PrepareForShutdown":
		if entering, ok := soleBoolArg(sig); ok && entering {
			b.fireOnShutdown(ctx)
		}
	}
}

func soleBoolArg(sig *dbus.Signal) (bool, bool) {
	if len(sig.Body) != 1 {
		return false, false
	}
	v, ok := sig.Body[0].(bool)
	return v, ok
}

func (b *Bridge) fireOnSleep(ctx context.Context) {
	for _, h := range b.hooks {
		if h.OnSleep != nil {
			h.OnSleep(ctx)
		}
	}
}

func (b *Bridge) fireOnWake(ctx context.Context) {
	for _, h := range b.hooks {
		if h.OnWake != nil {
			h.OnWake(ctx)
		}
	}
}

func (b *Bridge) fireOnShutdown(ctx context.Context) {
	for _, h := range b.hooks {
		if h.OnShutdown != nil {
			h.OnShutdown(ctx)
		}
	}
}

// StartPolling polls OnExternalPower and LidClosed every two seconds,
// firing OnPowerOrLid on either edge (spec.md §4.5: "Since the last two do
// not emit signals, they are polled on a 2 s cadence, edge-triggered").
func (b *Bridge) StartPolling(ctx context.Context) {
	b.pollOnce(ctx)
	clockutil.Ticker(ctx, b.clk, pollInterval, b.pollOnce)
}

func (b *Bridge) pollOnce(ctx context.Context) {
	obj := b.conn.Object(loginManagerDest, dbus.ObjectPath(loginManagerPath))

	mainsVariant, err := obj.GetProperty(loginManagerIface + "." + onExternalPowerProp)
	if err != nil {
		b.logger.Warn("failed to poll OnExternalPower", "error", err)
		return
	}
	lidVariant, err := obj.GetProperty(loginManagerIface + "." + lidClosedProp)
	if err != nil {
		b.logger.Warn("failed to poll LidClosed", "error", err)
		return
	}
	mains, ok1 := mainsVariant.Value().(bool)
	lidClosed, ok2 := lidVariant.Value().(bool)
	if !ok1 || !ok2 {
		return
	}
	b.handlePoll(ctx, mains, lidClosed)
}

// handlePoll applies the edge-triggered OnPowerOrLid dispatch given a fresh
// (mains, lidClosed) reading; split out from pollOnce so the edge logic is
// testable without a live bus connection.
func (b *Bridge) handlePoll(ctx context.Context, mains, lidClosed bool) {
	if b.known && mains == b.lastMains && lidClosed == b.lastLidClosed {
		return
	}
	b.known = true
	b.lastMains, b.lastLidClosed = mains, lidClosed

	for _, h := range b.hooks {
		if h.OnPowerOrLid != nil {
			h.OnPowerOrLid(ctx, mains, lidClosed)
		}
	}
}

// StartUnit implements controller.UnitStarter.
func (b *Bridge) StartUnit(ctx context.Context, name string) error {
	obj := b.conn.Object(loginManagerDest, dbus.ObjectPath(loginManagerPath))
	call := obj.CallWithContext(ctx, loginManagerIface+".StartUnit", 0, name, "replace")
	if call.Err != nil {
		return &rogerrors.SystemdUnitActionError{Name: name}
	}
	return nil
}

// StopUnit implements controller.UnitStarter.
func (b *Bridge) StopUnit(ctx context.Context, name string) error {
	obj := b.conn.Object(loginManagerDest, dbus.ObjectPath(loginManagerPath))
	call := obj.CallWithContext(ctx, loginManagerIface+".StopUnit", 0, name, "replace")
	if call.Err != nil {
		return &rogerrors.SystemdUnitActionError{Name: name}
	}
	return nil
}
