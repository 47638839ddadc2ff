// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"

	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/scsiwire"
	"github.com/rogdaemon/asusd-go/internal/transport"
)

// ScsiBusPath is the external-disk LED's fixed bus object path.
const ScsiBusPath = "/org/asus/Scsi"

// ScsiIface is the external-disk LED's D-Bus interface name.
const ScsiIface = "org.asus.Scsi1"

// ScsiController owns the external-disk LED's transport and config
// (spec.md §4.4.4). Grounded on original_source/rog-scsi/src/ctrl_scsi.rs.
type ScsiController struct {
	transport transport.Transport
	devLock   deviceLock
	cfg       *configstore.Handle[models.ScsiConfig]
	notifier  Notifier
}

// NewScsiController constructs and initialises a ScsiController.
func NewScsiController(t transport.Transport, cfg *configstore.Handle[models.ScsiConfig], notifier Notifier) (*ScsiController, error) {
	c := &ScsiController{transport: t, cfg: cfg, notifier: notifier}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-applies the persisted effect to the device.
func (c *ScsiController) Reload() error {
	cfg := c.cfg.Get()
	return c.writeEffect(cfg.Effect)
}

// SetEnabled persists the enabled flag and re-sends the current effect's
// task list. Re-enabling from brightness==0 auto-raises the persisted
// brightness, mirroring the Slash pattern (spec.md §4.4.4). The task list
// carries no enabled or brightness field, so the device's on/off state is
// not changed by this call.
func (c *ScsiController) SetEnabled(enabled bool) error {
	if err := c.cfg.Do(func(cfg *models.ScsiConfig) error {
		if enabled && cfg.Brightness == 0 {
			cfg.Brightness = models.ReenableBrightness()
		}
		cfg.Enabled = enabled
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeEffect(c.cfg.Get().Effect); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(ScsiBusPath, ScsiIface, "Enabled")
	return nil
}

// SetBrightness persists brightness and re-applies the current effect; the
// effect's task list carries no brightness field, so the device's
// brightness is not changed by this call.
func (c *ScsiController) SetBrightness(b uint8) error {
	if err := c.cfg.Do(func(cfg *models.ScsiConfig) error {
		cfg.Brightness = b
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeEffect(c.cfg.Get().Effect); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(ScsiBusPath, ScsiIface, "Brightness")
	return nil
}

// SetEffect validates and applies a new effect, persisting it.
func (c *ScsiController) SetEffect(e models.ScsiEffect) error {
	if err := c.writeEffect(e); err != nil {
		return err
	}
	if err := c.cfg.Do(func(cfg *models.ScsiConfig) error {
		cfg.Effect = e
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(ScsiBusPath, ScsiIface, "Effect")
	return nil
}

// writeEffect enqueues scsiwire.TaskList's CDBs over the SCSI transport.
func (c *ScsiController) writeEffect(e models.ScsiEffect) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()
	for _, task := range scsiwire.TaskList(e) {
		if err := c.transport.WriteBytes(task); err != nil {
			return wrapErr(err, "writing scsi task")
		}
	}
	return nil
}

// Hooks returns the wake hook that re-applies the persisted effect.
func (c *ScsiController) Hooks() Hooks {
	return Hooks{
		OnWake: func(ctx context.Context) { c.Reload() },
	}
}
