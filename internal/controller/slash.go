// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"

	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/transport"
)

// SlashBusPath is the Slash bar's fixed bus object path (spec.md §6).
const SlashBusPath = "/org/asus/Slash"

// SlashIface is the Slash bar's D-Bus interface name.
const SlashIface = "org.asus.Slash1"

const (
	slashOpSetOptions byte = 0xd0
	slashOpSetMode    byte = 0xd1
	slashOpSave       byte = 0xd2
)

// SlashController owns the Slash LED bar's transport and config (spec.md
// §4.4.3). Grounded on original_source/asusd/src/ctrl_slash.rs.
type SlashController struct {
	transport transport.Transport
	devLock   deviceLock
	cfg       *configstore.Handle[models.SlashConfig]
	notifier  Notifier
}

// NewSlashController constructs and initialises a SlashController.
func NewSlashController(t transport.Transport, cfg *configstore.Handle[models.SlashConfig], notifier Notifier) (*SlashController, error) {
	c := &SlashController{transport: t, cfg: cfg, notifier: notifier}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-applies the persisted options and mode to the device.
func (c *SlashController) Reload() error {
	cfg := c.cfg.Get()
	if err := c.writeOptions(cfg.Enabled, cfg.Brightness, cfg.Interval); err != nil {
		return err
	}
	return c.writeMode(cfg.Mode)
}

// SetEnabled toggles the bar. Re-enabling from brightness==0 auto-raises
// brightness to 0x88 (spec.md §4.4.3).
func (c *SlashController) SetEnabled(enabled bool) error {
	var brightness uint8
	if err := c.cfg.Do(func(cfg *models.SlashConfig) error {
		if enabled && cfg.Brightness == 0 {
			cfg.Brightness = models.ReenableBrightness()
		}
		cfg.Enabled = enabled
		brightness = cfg.Brightness
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeOptions(enabled, brightness, c.cfg.Get().Interval); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(SlashBusPath, SlashIface, "Enabled")
	return nil
}

// SetBrightness updates brightness and re-sends the options packet.
func (c *SlashController) SetBrightness(b uint8) error {
	if err := c.cfg.Do(func(cfg *models.SlashConfig) error {
		cfg.Brightness = b
		return nil
	}); err != nil {
		return err
	}
	cfg := c.cfg.Get()
	if err := c.writeOptions(cfg.Enabled, b, cfg.Interval); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(SlashBusPath, SlashIface, "Brightness")
	return nil
}

// SetInterval updates the animation interval.
func (c *SlashController) SetInterval(interval uint8) error {
	if err := c.cfg.Do(func(cfg *models.SlashConfig) error {
		cfg.Interval = interval
		return nil
	}); err != nil {
		return err
	}
	cfg := c.cfg.Get()
	if err := c.writeOptions(cfg.Enabled, cfg.Brightness, interval); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(SlashBusPath, SlashIface, "Interval")
	return nil
}

// SetMode sends the two-packet mode command followed by a save command
// (spec.md §4.4.3), then persists and signals.
func (c *SlashController) SetMode(mode models.SlashMode) error {
	if err := c.writeMode(mode); err != nil {
		return err
	}
	if err := c.cfg.Do(func(cfg *models.SlashConfig) error {
		cfg.Mode = mode
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(SlashBusPath, SlashIface, "Mode")
	return nil
}

func (c *SlashController) writeOptions(enabled bool, brightness, interval uint8) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()
	var enabledByte uint8
	if enabled {
		enabledByte = 1
	}
	return wrapErr(c.transport.WriteBytes([]byte{slashOpSetOptions, enabledByte, brightness, interval}), "writing slash options packet")
}

func (c *SlashController) writeMode(mode models.SlashMode) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()
	if err := c.transport.WriteBytes([]byte{slashOpSetMode, byte(mode)}); err != nil {
		return wrapErr(err, "writing slash mode packet")
	}
	return wrapErr(c.transport.WriteBytes([]byte{slashOpSave}), "writing slash save packet")
}

// Hooks returns the wake hook (a full Reload) for spec.md §4.4 step 4; no
// sleep hook is set.
func (c *SlashController) Hooks() Hooks {
	return Hooks{
		OnWake: func(ctx context.Context) { c.Reload() },
	}
}
