// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"
	"os/exec"
	"time"

	"github.com/rogdaemon/asusd-go/internal/clockutil"
	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
	"github.com/rogdaemon/asusd-go/internal/shutil"
)

// PowerBusPath is the power controller's fixed bus object path.
const PowerBusPath = "/org/asus/Power"

// PowerIface is the power controller's D-Bus interface name.
const PowerIface = "org.asus.Power1"

// ChargeAttr is the charge-threshold sysfs attribute surface; implemented
// by internal/transport/sysfsattr.Transport.
type ChargeAttr interface {
	WriteInt(attr string, v int64) error
}

// MainsReader reports the current AC-online state; implemented by
// internal/transport/sysfsattr.Transport reading power_supply/*/online.
type MainsReader interface {
	ReadInt(attr string) (int64, error)
}

// UnitStarter starts or stops a systemd unit via the init-system bus
// (spec.md §4.4.6); implemented by internal/sessionbridge.
type UnitStarter interface {
	StartUnit(ctx context.Context, name string) error
	StopUnit(ctx context.Context, name string) error
}

const chargeAttr = "charge_control_end_threshold"
const mainsAttr = "online"

// PowerController owns charge-threshold and AC-online state (spec.md
// §4.4.6). Grounded on original_source/asusd/src/ctrl_power.rs.
type PowerController struct {
	charge   ChargeAttr
	mains    MainsReader
	cfg      *configstore.Handle[models.PlatformConfig]
	pwrCfg   *configstore.Handle[models.PowerConfig]
	notifier Notifier
	units    UnitStarter
	clk      clockutil.Clock

	lastMainsOnline bool
	mainsKnown      bool

	runCommand func(name string, args ...string) error
}

// NewPowerController constructs a PowerController. charge may be nil on a
// board with no charge-threshold attribute; units may be nil if no
// nvidia-powerd unit is configured.
func NewPowerController(charge ChargeAttr, mains MainsReader, cfg *configstore.Handle[models.PlatformConfig], pwrCfg *configstore.Handle[models.PowerConfig], notifier Notifier, units UnitStarter, clk clockutil.Clock) *PowerController {
	c := &PowerController{charge: charge, mains: mains, cfg: cfg, pwrCfg: pwrCfg, notifier: notifier, units: units, clk: clk}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	if clk == nil {
		c.clk = clockutil.System
	}
	c.runCommand = func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}
	return c
}

// ChargeControlEndThreshold returns the persisted charge limit.
func (c *PowerController) ChargeControlEndThreshold() uint8 {
	return c.cfg.Get().ChargeControlEndThreshold
}

// SetChargeControlEndThreshold rejects values outside 20..=100 (spec.md §3,
// §8 scenario 5) without touching the device; otherwise writes, persists,
// and signals.
func (c *PowerController) SetChargeControlEndThreshold(v int) error {
	if !models.ValidChargeLimit(v) {
		return &rogerrors.ChargeLimitError{Value: v}
	}
	if c.charge != nil {
		if err := c.charge.WriteInt(chargeAttr, int64(v)); err != nil {
			return wrapErr(err, "writing charge_control_end_threshold")
		}
	}
	if err := c.cfg.Do(func(cfg *models.PlatformConfig) error {
		cfg.ChargeControlEndThreshold = uint8(v)
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(PowerBusPath, PowerIface, "ChargeControlEndThreshold")
	return nil
}

// MainsOnline returns the last-polled AC state.
func (c *PowerController) MainsOnline() bool { return c.lastMainsOnline }

// pollMains reads the AC attribute once and, on an edge, updates state,
// emits a signal, toggles the configured systemd unit, and fires the
// configured shell hook (spec.md §4.4.6).
func (c *PowerController) pollMains(ctx context.Context) {
	if c.mains == nil {
		return
	}
	v, err := c.mains.ReadInt(mainsAttr)
	if err != nil {
		return
	}
	online := v != 0
	if c.mainsKnown && online == c.lastMainsOnline {
		return
	}
	c.mainsKnown = true
	c.lastMainsOnline = online
	c.notifier.NotifyPropertyChanged(PowerBusPath, PowerIface, "MainsOnline")

	if unit := c.pwrCfg.Get().NvidiaPowerdUnit; unit != "" && c.units != nil {
		if online {
			c.units.StopUnit(ctx, unit)
		} else {
			c.units.StartUnit(ctx, unit)
		}
	}

	cfg := c.cfg.Get()
	cmd := cfg.BatteryCommand
	if online {
		cmd = cfg.ACCommand
	}
	c.runHook(cmd)
}

// runHook fire-and-forgets the configured AC/battery command (spec.md
// §5: "external-command invocations... are fire-and-forget"). The command
// is tokenized with shutil.Split and run through exec.Command with that
// argv, never a shell.
func (c *PowerController) runHook(cmd string) {
	if cmd == "" {
		return
	}
	args := shutil.Split(cmd)
	if len(args) == 0 {
		return
	}
	c.runCommand(args[0], args[1:]...)
}

// StartPolling runs the 2s AC-state poll until ctx is cancelled (spec.md
// §4.4.6: "Polls the AC attribute every two seconds (no inotify on that
// attribute)").
func (c *PowerController) StartPolling(ctx context.Context) {
	c.pollMains(ctx)
	clockutil.Ticker(ctx, c.clk, mainsPollInterval, c.pollMains)
}

// mainsPollInterval matches sysfsattr.PollInterval; kept as a local
// constant so PowerController's dependency surface stays the narrow
// ChargeAttr/MainsReader interfaces it actually needs.
const mainsPollInterval = 2 * time.Second

// Hooks returns the task hooks spec.md §4.4 step 4 requires; power has no
// sleep/wake-specific behaviour beyond the continuous poll.
func (c *PowerController) Hooks() Hooks {
	return Hooks{}
}
