// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package sessionbridge

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"

	"github.com/rogdaemon/asusd-go/internal/controller"
)

func TestDispatchSignalFiresSleepAndWake(t *testing.T) {
	var sleeps, wakes int
	b := &Bridge{}
	b.Register(controller.Hooks{
		OnSleep: func(context.Context) { sleeps++ },
		OnWake:  func(context.Context) { wakes++ },
	})

	b.dispatchSignal(context.Background(), &dbus.Signal{
		Name: loginManagerIface + ".PrepareForSleep",
		Body: []interface{}{true},
	})
	b.dispatchSignal(context.Background(), &dbus.Signal{
		Name: loginManagerIface + ".PrepareForSleep",
		Body: []interface{}{false},
	})

	if sleeps != 1 || wakes != 1 {
		t.Errorf("sleeps=%d wakes=%d, want 1 and 1", sleeps, wakes)
	}
}

func TestDispatchSignalFiresShutdownOnlyOnEntering(t *testing.T) {
	var shutdowns int
	b := &Bridge{}
	b.Register(controller.Hooks{OnShutdown: func(context.Context) { shutdowns++ }})

	b.dispatchSignal(context.Background(), &dbus.Signal{
		Name: loginManagerIface + ".PrepareForShutdown",
		Body: []interface{}{false},
	})
	if shutdowns != 0 {
		t.Fatalf("shutdowns = %d after entering=false, want 0", shutdowns)
	}
	b.dispatchSignal(context.Background(), &dbus.Signal{
		Name: loginManagerIface + ".PrepareForShutdown",
		Body: []interface{}{true},
	})
	if shutdowns != 1 {
		t.Fatalf("shutdowns = %d after entering=true, want 1", shutdowns)
	}
}

func TestDispatchSignalIgnoresMalformedBody(t *testing.T) {
	var fired int
	b := &Bridge{}
	b.Register(controller.Hooks{OnSleep: func(context.Context) { fired++ }})

	b.dispatchSignal(context.Background(), &dbus.Signal{
		Name: loginManagerIface + ".PrepareForSleep",
		Body: []interface{}{"not-a-bool"},
	})
	b.dispatchSignal(context.Background(), &dbus.Signal{
		Name: loginManagerIface + ".PrepareForSleep",
		Body: nil,
	})
	if fired != 0 {
		t.Errorf("fired = %d, want 0 for malformed signal bodies", fired)
	}
}

func TestHandlePollIsEdgeTriggered(t *testing.T) {
	var events [][2]bool
	b := &Bridge{}
	b.Register(controller.Hooks{
		OnPowerOrLid: func(_ context.Context, mains, lidClosed bool) {
			events = append(events, [2]bool{mains, lidClosed})
		},
	})

	b.handlePoll(context.Background(), true, false)
	b.handlePoll(context.Background(), true, false)
	b.handlePoll(context.Background(), false, false)
	b.handlePoll(context.Background(), false, true)

	want := [][2]bool{{true, false}, {false, false}, {false, true}}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestMatchRule(t *testing.T) {
	got := matchRule("PrepareForSleep")
	want := "type='signal',interface='org.freedesktop.login1.Manager',member='PrepareForSleep'"
	if got != want {
		t.Errorf("matchRule = %q, want %q", got, want)
	}
}
