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

// PlatformBusPath is the platform controller's fixed bus object path.
const PlatformBusPath = "/org/asus/Platform"

// PlatformIface is the platform controller's D-Bus interface name.
const PlatformIface = "org.asus.Platform1"

// AttributeDevice reads and writes one firmware-attribute sysfs directory's
// current_value file; implemented by internal/transport/sysfsattr.Transport
// bound to one
// /sys/class/firmware-attributes/asus-armoury/attributes/<name> directory.
type AttributeDevice interface {
	ReadInt(attr string) (int64, error)
	WriteInt(attr string, v int64) error
}

// EppWriter pushes an energy/performance-preference hint to the CPU
// subsystem (spec.md §4.4.7's throttle_policy_linked_epp); implemented by a
// sysfsattr.Transport bound to
// /sys/devices/system/cpu/cpufreq/policy0/energy_performance_preference (or
// equivalent) when throttle_thermal_policy changes.
type EppWriter interface {
	WriteAttr(attr, value string) error
}

// throttlePolicyValues maps the kernel's throttle_thermal_policy integer
// encoding to ThrottlePolicy, grounded on
// original_source/rog-platform/src/platform.rs's ThrottleThermalPolicy enum
// (0=Balanced, 1=Performance, 2=Quiet).
var throttlePolicyValues = map[int64]models.ThrottlePolicy{
	0: models.ThrottlePolicyBalanced,
	1: models.ThrottlePolicyPerformance,
	2: models.ThrottlePolicyQuiet,
}

func throttlePolicyToValue(p models.ThrottlePolicy) int64 {
	for v, pp := range throttlePolicyValues {
		if pp == p {
			return v
		}
	}
	return 0
}

// PlatformController exposes per-attribute get/set for every firmware
// attribute the kernel reports (spec.md §4.4.7); changes made to those
// attributes outside the daemon are not watched. Grounded on
// original_source/asusd/src/ctrl_rog_bios.rs and
// rog-platform/src/firmware_attributes.rs for the concrete attribute set
// SPEC_FULL.md §6 names.
type PlatformController struct {
	attrs    map[string]*models.Attribute
	devices  map[string]AttributeDevice
	cfg      *configstore.Handle[models.PlatformConfig]
	notifier Notifier
	epp      EppWriter

	onThrottlePolicyChanged func(models.ThrottlePolicy)
}

// NewPlatformController constructs a PlatformController over the discovered
// attribute set. attrs and devices must share the same key set (attribute
// name); epp may be nil if the platform exposes no EPP-capable CPU driver.
func NewPlatformController(attrs map[string]*models.Attribute, devices map[string]AttributeDevice, cfg *configstore.Handle[models.PlatformConfig], notifier Notifier, epp EppWriter) *PlatformController {
	c := &PlatformController{attrs: attrs, devices: devices, cfg: cfg, notifier: notifier, epp: epp}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	return c
}

// SetOnThrottlePolicyChanged registers the callback fired after a
// successful throttle_thermal_policy write; the device manager wires this
// to FanCurveController.OnThrottlePolicyChanged.
func (c *PlatformController) SetOnThrottlePolicyChanged(fn func(models.ThrottlePolicy)) {
	c.onThrottlePolicyChanged = fn
}

// Attribute returns a snapshot of one attribute's current state, or
// NotSupportedError if the platform doesn't expose it.
func (c *PlatformController) Attribute(name string) (models.Attribute, error) {
	a, ok := c.attrs[name]
	if !ok {
		return models.Attribute{}, &rogerrors.NotSupportedError{What: name}
	}
	return *a, nil
}

// AttributeNames lists every attribute this platform exposes.
func (c *PlatformController) AttributeNames() []string {
	names := make([]string, 0, len(c.attrs))
	for n := range c.attrs {
		names = append(names, n)
	}
	return names
}

// SetAttribute validates v against the attribute's declared domain, writes
// it, persists it in the armoury-attributes map, and signals. For
// throttle_thermal_policy it additionally pushes the linked EPP hint
// (spec.md §4.4.7) and fires the registered policy-change callback.
func (c *PlatformController) SetAttribute(name string, v int64) error {
	attr, ok := c.attrs[name]
	if !ok {
		return &rogerrors.NotSupportedError{What: name}
	}
	if err := attr.Validate(v); err != nil {
		return rogerrors.Wrap(&rogerrors.PlatformError{Cause: err}, "validating attribute value")
	}
	device, ok := c.devices[name]
	if !ok {
		return &rogerrors.NotSupportedError{What: name}
	}
	if err := device.WriteInt("current_value", v); err != nil {
		return rogerrors.Wrap(&rogerrors.PlatformError{Cause: err}, "writing firmware attribute")
	}
	attr.Current = v

	if err := c.cfg.Do(func(cfg *models.PlatformConfig) error {
		if cfg.ArmouryAttributes == nil {
			cfg.ArmouryAttributes = map[string]string{}
		}
		cfg.ArmouryAttributes[name] = fmt.Sprint(v)
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(PlatformBusPath, PlatformIface, name)

	if name == models.AttrThrottleThermalPolicy {
		policy, known := throttlePolicyValues[v]
		if known {
			c.applyLinkedEpp(policy)
			if c.onThrottlePolicyChanged != nil {
				c.onThrottlePolicyChanged(policy)
			}
		}
	}
	return nil
}

// applyLinkedEpp pushes the configured EPP hint for policy, if any
// (spec.md §4.4.7: "throttle_thermal_policy... may additionally push a
// configured energy/performance-preference to the CPU subsystem").
func (c *PlatformController) applyLinkedEpp(policy models.ThrottlePolicy) {
	if c.epp == nil {
		return
	}
	epp, ok := c.cfg.Get().ThrottlePolicyLinkedEpp[policy]
	if !ok || epp == "" {
		return
	}
	c.epp.WriteAttr("energy_performance_preference", epp)
}

// CurrentThrottlePolicy implements the PlatformProfileSwitcher interface
// FanCurveController's default-initialisation protocol depends on.
func (c *PlatformController) CurrentThrottlePolicy() (models.ThrottlePolicy, error) {
	attr, err := c.Attribute(models.AttrThrottleThermalPolicy)
	if err != nil {
		return "", err
	}
	policy, ok := throttlePolicyValues[attr.Current]
	if !ok {
		return "", &rogerrors.PlatformError{Cause: fmt.Errorf("unrecognised throttle_thermal_policy value %d", attr.Current)}
	}
	return policy, nil
}

// SetThrottlePolicyRaw switches the platform profile without persisting
// the change or firing the linked-EPP/policy-changed side effects, for use
// by FanCurveController's save/restore-original-policy dance.
func (c *PlatformController) SetThrottlePolicyRaw(policy models.ThrottlePolicy) error {
	device, ok := c.devices[models.AttrThrottleThermalPolicy]
	if !ok {
		return &rogerrors.NotSupportedError{What: models.AttrThrottleThermalPolicy}
	}
	v := throttlePolicyToValue(policy)
	if err := device.WriteInt("current_value", v); err != nil {
		return rogerrors.Wrap(&rogerrors.PlatformError{Cause: err}, "writing throttle_thermal_policy")
	}
	c.attrs[models.AttrThrottleThermalPolicy].Current = v
	return nil
}

// Reload re-applies every persisted armoury attribute value (spec.md §4.4
// step 2), skipping any attribute the platform no longer reports.
func (c *PlatformController) Reload() error {
	for name, value := range c.cfg.Get().ArmouryAttributes {
		attr, ok := c.attrs[name]
		if !ok {
			continue
		}
		var v int64
		if _, err := fmt.Sscanf(value, "%d", &v); err != nil {
			continue
		}
		if !attr.Domain.Contains(v) {
			continue
		}
		device, ok := c.devices[name]
		if !ok {
			continue
		}
		if err := device.WriteInt("current_value", v); err != nil {
			return wrapErr(err, "reapplying firmware attribute "+name)
		}
		attr.Current = v
	}
	return nil
}

// Hooks returns the wake hook that reloads every persisted attribute.
func (c *PlatformController) Hooks() Hooks {
	return Hooks{
		OnWake: func(ctx context.Context) { c.Reload() },
	}
}
