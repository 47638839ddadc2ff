// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"

	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
	"github.com/rogdaemon/asusd-go/internal/testutil"
)

type fakeChargeAttr struct {
	writes map[string]int64
}

func (f *fakeChargeAttr) WriteInt(attr string, v int64) error {
	if f.writes == nil {
		f.writes = map[string]int64{}
	}
	f.writes[attr] = v
	return nil
}

type fakeMainsReader struct{ online int64 }

func (f *fakeMainsReader) ReadInt(attr string) (int64, error) { return f.online, nil }

type fakeUnitStarter struct{ started, stopped []string }

func (f *fakeUnitStarter) StartUnit(ctx context.Context, name string) error {
	f.started = append(f.started, name)
	return nil
}
func (f *fakeUnitStarter) StopUnit(ctx context.Context, name string) error {
	f.stopped = append(f.stopped, name)
	return nil
}

func newPlatformHandleForPower(t *testing.T) *configstore.Handle[models.PlatformConfig] {
	t.Helper()
	dir := testutil.TempDir(t)
	store := &configstore.Store[models.PlatformConfig]{
		Dir:        dir,
		FileName:   "platform.yaml",
		NewDefault: models.NewPlatformConfig,
	}
	h, err := configstore.NewHandle(store)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

func newPowerHandle(t *testing.T) *configstore.Handle[models.PowerConfig] {
	t.Helper()
	dir := testutil.TempDir(t)
	store := &configstore.Store[models.PowerConfig]{
		Dir:        dir,
		FileName:   "power.yaml",
		NewDefault: models.NewPowerConfig,
	}
	h, err := configstore.NewHandle(store)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

func TestPowerSetChargeControlEndThresholdRejectsOutOfRange(t *testing.T) {
	charge := &fakeChargeAttr{}
	cfg := newPlatformHandleForPower(t)
	pwrCfg := newPowerHandle(t)
	c := NewPowerController(charge, nil, cfg, pwrCfg, nil, nil, nil)

	err := c.SetChargeControlEndThreshold(19)
	if !rogerrors.Is(err, &rogerrors.ChargeLimitError{}) {
		t.Fatalf("err = %v, want ChargeLimitError", err)
	}
	if len(charge.writes) != 0 {
		t.Errorf("charge.writes = %v, want no sysfs write on rejected threshold", charge.writes)
	}
}

func TestPowerSetChargeControlEndThresholdWritesAndPersists(t *testing.T) {
	charge := &fakeChargeAttr{}
	cfg := newPlatformHandleForPower(t)
	pwrCfg := newPowerHandle(t)
	var notified []string
	c := NewPowerController(charge, nil, cfg, pwrCfg, notifierFunc(func(_, _, prop string) { notified = append(notified, prop) }), nil, nil)

	if err := c.SetChargeControlEndThreshold(80); err != nil {
		t.Fatalf("SetChargeControlEndThreshold: %v", err)
	}
	if charge.writes[chargeAttr] != 80 {
		t.Errorf("charge.writes[%s] = %d, want 80", chargeAttr, charge.writes[chargeAttr])
	}
	if cfg.Get().ChargeControlEndThreshold != 80 {
		t.Errorf("persisted threshold = %d, want 80", cfg.Get().ChargeControlEndThreshold)
	}
	if len(notified) != 1 || notified[0] != "ChargeControlEndThreshold" {
		t.Errorf("notified = %v", notified)
	}
}

func TestPowerPollMainsStartsUnitOnBatteryAndStopsOnAC(t *testing.T) {
	mains := &fakeMainsReader{online: 0}
	cfg := newPlatformHandleForPower(t)
	pwrCfg := newPowerHandle(t)
	if err := pwrCfg.Do(func(c *models.PowerConfig) error {
		c.NvidiaPowerdUnit = "nvidia-powerd.service"
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	units := &fakeUnitStarter{}
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	c := NewPowerController(nil, mains, cfg, pwrCfg, nil, units, clk)

	c.pollMains(context.Background())
	if len(units.started) != 1 || units.started[0] != "nvidia-powerd.service" {
		t.Errorf("started = %v, want nvidia-powerd started on battery", units.started)
	}
	if c.MainsOnline() {
		t.Error("MainsOnline = true, want false")
	}

	mains.online = 1
	c.pollMains(context.Background())
	if len(units.stopped) != 1 {
		t.Errorf("stopped = %v, want nvidia-powerd stopped on AC", units.stopped)
	}
	if !c.MainsOnline() {
		t.Error("MainsOnline = false, want true")
	}
}

func TestPowerPollMainsIsEdgeTriggered(t *testing.T) {
	mains := &fakeMainsReader{online: 1}
	cfg := newPlatformHandleForPower(t)
	pwrCfg := newPowerHandle(t)
	var notified int
	c := NewPowerController(nil, mains, cfg, pwrCfg, notifierFunc(func(_, _, _ string) { notified++ }), nil, nil)

	c.pollMains(context.Background())
	c.pollMains(context.Background())
	c.pollMains(context.Background())
	if notified != 1 {
		t.Errorf("notified %d times, want exactly 1 (edge-triggered)", notified)
	}
}
