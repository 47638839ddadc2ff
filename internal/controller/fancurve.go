// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"
	"fmt"

	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// FanCurveBusPath is the fan-curve controller's fixed bus object path.
const FanCurveBusPath = "/org/asus/FanCurves"

// FanCurveIface is the fan-curve controller's D-Bus interface name.
const FanCurveIface = "org.asus.FanCurves1"

// curveAttr returns the two hwmon attribute names (pwm, temp) for point i
// (0-based) of fan, matching spec.md §6's
// "pwm{1,2,3}_auto_point{1..8}_{pwm,temp}" naming.
func curveAttr(fan models.FanID, point int) (pwmAttr, tempAttr string) {
	idx := map[models.FanID]int{models.FanCPU: 1, models.FanGPU: 2, models.FanMID: 3}[fan]
	base := fmt.Sprintf("pwm%d_auto_point%d", idx, point+1)
	return base + "_pwm", base + "_temp"
}

// FanCurveDevice is the hwmon node's read/write surface; implemented by
// internal/transport/sysfsattr.Transport in production and faked in tests.
type FanCurveDevice interface {
	WriteInt(attr string, v int64) error
	ReadInt(attr string) (int64, error)
}

// PlatformProfileSwitcher lets FanCurveController temporarily change the
// active platform throttle policy to read out its hardware-default curve,
// per spec.md §4.4.5's default-initialisation protocol. Implemented by
// PlatformController.
type PlatformProfileSwitcher interface {
	CurrentThrottlePolicy() (models.ThrottlePolicy, error)
	SetThrottlePolicyRaw(models.ThrottlePolicy) error
}

// FanCurveController owns the hwmon fan-curve node and its per-policy
// persisted curves (spec.md §4.4.5). Grounded on
// original_source/asusd/src/ctrl_fan_curves.rs.
type FanCurveController struct {
	device   FanCurveDevice
	devLock  deviceLock
	cfg      *configstore.Handle[models.FanCurveConfig]
	notifier Notifier
	platform PlatformProfileSwitcher
}

// NewFanCurveController constructs a FanCurveController and, if no curves
// are yet persisted for any policy, runs the default-initialisation
// protocol before returning.
func NewFanCurveController(device FanCurveDevice, cfg *configstore.Handle[models.FanCurveConfig], notifier Notifier, platform PlatformProfileSwitcher) (*FanCurveController, error) {
	c := &FanCurveController{device: device, cfg: cfg, notifier: notifier, platform: platform}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	if len(cfg.Get().Profiles) == 0 {
		if err := c.initializeDefaults(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// initializeDefaults implements spec.md §4.4.5's default-initialisation
// protocol: because the firmware exposes only the active profile's
// defaults, save the current policy, switch to each target policy in turn,
// read the hardware defaults from the curve node, then restore the
// original policy. All three sets are persisted together.
func (c *FanCurveController) initializeDefaults() error {
	if c.platform == nil {
		return nil
	}
	original, err := c.platform.CurrentThrottlePolicy()
	if err != nil {
		return wrapErr(err, "reading current throttle policy")
	}

	profiles := map[models.ThrottlePolicy]models.FanCurveSet{}
	for _, policy := range models.AllThrottlePolicies {
		if err := c.platform.SetThrottlePolicyRaw(policy); err != nil {
			return wrapErr(err, "switching throttle policy for default read")
		}
		set, err := c.readCurveSet()
		if err != nil {
			return err
		}
		profiles[policy] = set
	}
	if err := c.platform.SetThrottlePolicyRaw(original); err != nil {
		return wrapErr(err, "restoring original throttle policy")
	}

	return c.cfg.Do(func(cfg *models.FanCurveConfig) error {
		cfg.Profiles = profiles
		return nil
	})
}

// readCurveSet reads the hwmon node's current curve for every fan,
// defaulting Enabled to true (spec.md has no disabled-by-default reading).
func (c *FanCurveController) readCurveSet() (models.FanCurveSet, error) {
	c.devLock.Lock()
	defer c.devLock.Unlock()

	set := models.FanCurveSet{}
	for _, fan := range []models.FanID{models.FanCPU, models.FanGPU, models.FanMID} {
		var curve models.FanCurve
		curve.Enabled = true
		for i := 0; i < 8; i++ {
			pwmAttr, tempAttr := curveAttr(fan, i)
			pwm, err := c.device.ReadInt(pwmAttr)
			if err != nil {
				return nil, wrapErr(err, "reading fan curve pwm point")
			}
			temp, err := c.device.ReadInt(tempAttr)
			if err != nil {
				return nil, wrapErr(err, "reading fan curve temp point")
			}
			curve.Points[i] = models.FanCurvePoint{TempCelsius: uint8(temp), Pwm: uint8(pwm)}
		}
		set[fan] = curve
	}
	return set, nil
}

// writeCurveSet pushes every fan's curve in set to the hwmon node.
func (c *FanCurveController) writeCurveSet(set models.FanCurveSet) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()

	for fan, curve := range set {
		for i, pt := range curve.Points {
			pwmAttr, tempAttr := curveAttr(fan, i)
			if err := c.device.WriteInt(tempAttr, int64(pt.TempCelsius)); err != nil {
				return wrapErr(err, "writing fan curve temp point")
			}
			if err := c.device.WriteInt(pwmAttr, int64(pt.Pwm)); err != nil {
				return wrapErr(err, "writing fan curve pwm point")
			}
		}
	}
	return nil
}

// FanCurveData returns the persisted curve set for policy.
func (c *FanCurveController) FanCurveData(policy models.ThrottlePolicy) models.FanCurveSet {
	return c.cfg.Get().Profiles[policy]
}

// SetFanCurvesEnabled toggles every fan's Enabled flag for policy.
func (c *FanCurveController) SetFanCurvesEnabled(policy models.ThrottlePolicy, enabled bool) error {
	if err := c.cfg.Do(func(cfg *models.FanCurveConfig) error {
		set, ok := cfg.Profiles[policy]
		if !ok {
			return &rogerrors.ProfileError{Cause: fmt.Errorf("no curves persisted for policy %s", policy)}
		}
		for fan, curve := range set {
			curve.Enabled = enabled
			set[fan] = curve
		}
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(FanCurveBusPath, FanCurveIface, "FanCurvesEnabled")
	return nil
}

// SetProfileFanCurveEnabled toggles one fan's Enabled flag within policy.
func (c *FanCurveController) SetProfileFanCurveEnabled(policy models.ThrottlePolicy, fan models.FanID, enabled bool) error {
	if err := c.cfg.Do(func(cfg *models.FanCurveConfig) error {
		set, ok := cfg.Profiles[policy]
		if !ok {
			return &rogerrors.ProfileError{Cause: fmt.Errorf("no curves persisted for policy %s", policy)}
		}
		curve := set[fan]
		curve.Enabled = enabled
		set[fan] = curve
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(FanCurveBusPath, FanCurveIface, "ProfileFanCurveEnabled")
	return nil
}

// SetFanCurve validates curve, writes it to the device if policy is
// currently active (or if no platform profile switcher is available to
// report the active policy), persists it, and signals.
func (c *FanCurveController) SetFanCurve(policy models.ThrottlePolicy, fan models.FanID, curve models.FanCurve) error {
	if err := curve.Validate(); err != nil {
		return rogerrors.Wrap(&rogerrors.ProfileError{Cause: err}, "invalid fan curve")
	}
	active := true
	if c.platform != nil {
		if current, err := c.platform.CurrentThrottlePolicy(); err == nil {
			active = current == policy
		}
	}
	if active {
		if err := c.writeCurveSet(models.FanCurveSet{fan: curve}); err != nil {
			return err
		}
	}
	if err := c.cfg.Do(func(cfg *models.FanCurveConfig) error {
		if cfg.Profiles == nil {
			cfg.Profiles = map[models.ThrottlePolicy]models.FanCurveSet{}
		}
		set, ok := cfg.Profiles[policy]
		if !ok {
			set = models.FanCurveSet{}
		}
		set[fan] = curve
		cfg.Profiles[policy] = set
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(FanCurveBusPath, FanCurveIface, "FanCurve")
	return nil
}

// SetCurvesToDefaults re-runs the default-initialisation protocol for
// policy alone, overwriting its persisted curves with hardware defaults.
func (c *FanCurveController) SetCurvesToDefaults(policy models.ThrottlePolicy) error {
	if c.platform == nil {
		return &rogerrors.NotSupportedError{What: "fan curve hardware defaults"}
	}
	original, err := c.platform.CurrentThrottlePolicy()
	if err != nil {
		return wrapErr(err, "reading current throttle policy")
	}
	if err := c.platform.SetThrottlePolicyRaw(policy); err != nil {
		return wrapErr(err, "switching throttle policy for default read")
	}
	set, err := c.readCurveSet()
	if err != nil {
		return err
	}
	if err := c.platform.SetThrottlePolicyRaw(original); err != nil {
		return wrapErr(err, "restoring original throttle policy")
	}
	if err := c.cfg.Do(func(cfg *models.FanCurveConfig) error {
		if cfg.Profiles == nil {
			cfg.Profiles = map[models.ThrottlePolicy]models.FanCurveSet{}
		}
		cfg.Profiles[policy] = set
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(FanCurveBusPath, FanCurveIface, "FanCurve")
	return nil
}

// ResetProfileCurves is an alias for SetCurvesToDefaults, matching
// spec.md §4.4.5's separately-named operation (the original crate
// distinguishes "reset to hardware defaults" from "reset to the daemon's
// own shipped defaults"; this implementation's only notion of default is
// the hardware-read one, so both operations share one code path).
func (c *FanCurveController) ResetProfileCurves(policy models.ThrottlePolicy) error {
	return c.SetCurvesToDefaults(policy)
}

// OnThrottlePolicyChanged implements spec.md §4.4.5's "activation on policy
// change": write the persisted curve for the new policy to the device.
func (c *FanCurveController) OnThrottlePolicyChanged(policy models.ThrottlePolicy) error {
	set := c.cfg.Get().Profiles[policy]
	if len(set) == 0 {
		return nil
	}
	enabled := models.FanCurveSet{}
	for fan, curve := range set {
		if curve.Enabled {
			enabled[fan] = curve
		}
	}
	if len(enabled) == 0 {
		return nil
	}
	return c.writeCurveSet(enabled)
}

// Hooks returns the wake hook that re-applies the active policy's curve.
func (c *FanCurveController) Hooks() Hooks {
	return Hooks{
		OnWake: func(ctx context.Context) {
			if c.platform == nil {
				return
			}
			if policy, err := c.platform.CurrentThrottlePolicy(); err == nil {
				c.OnThrottlePolicyChanged(policy)
			}
		},
	}
}
