// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package discover

import (
	"github.com/godbus/dbus/v5"

	"github.com/rogdaemon/asusd-go/internal/busserver"
	"github.com/rogdaemon/asusd-go/internal/controller"
	"github.com/rogdaemon/asusd-go/internal/models"
)

// The types in this file adapt each controller's plain-Go-error method
// table to the *dbus.Error-returning signatures godbus requires of an
// exported object (busserver.Publish's doc comment). Every method here is a
// one-line delegation: validate-and-mutate logic lives entirely in
// internal/controller, never duplicated here, so these adapters are the
// only place spec.md §6's "methods have the signatures implied by §4.4" is
// made literally true over the bus.

// auraBusObject exports AuraController at its per-device bus path.
type auraBusObject struct{ c *controller.AuraController }

func (o *auraBusObject) SupportedBasicModes() ([]models.AuraMode, *dbus.Error) {
	return o.c.SupportedBasicModes(), nil
}
func (o *auraBusObject) SupportedBasicZones() ([]models.AuraZone, *dbus.Error) {
	return o.c.SupportedBasicZones(), nil
}
func (o *auraBusObject) SupportedPowerZones() ([]models.PowerZone, *dbus.Error) {
	return o.c.SupportedPowerZones(), nil
}
func (o *auraBusObject) Brightness() (models.Brightness, *dbus.Error) { return o.c.Brightness(), nil }
func (o *auraBusObject) SetBrightness(b models.Brightness) *dbus.Error {
	return busserver.AsDBusError(o.c.SetBrightness(b))
}
func (o *auraBusObject) SetLedMode(mode models.AuraMode) *dbus.Error {
	return busserver.AsDBusError(o.c.SetLedMode(mode))
}
func (o *auraBusObject) SetLedModeData(effect models.AuraEffect) *dbus.Error {
	return busserver.AsDBusError(o.c.SetLedModeData(effect))
}
func (o *auraBusObject) SetLedPower(table models.AuraPowerTable) *dbus.Error {
	return busserver.AsDBusError(o.c.SetLedPower(table))
}
func (o *auraBusObject) DirectAddressingRaw(rows [][]byte) *dbus.Error {
	return busserver.AsDBusError(o.c.DirectAddressingRaw(rows))
}

// animeBusObject exports AniMeController at AnimeBusPath.
type animeBusObject struct{ c *controller.AniMeController }

func (o *animeBusObject) SetBrightness(level byte) *dbus.Error {
	return busserver.AsDBusError(o.c.SetBrightness(level))
}
func (o *animeBusObject) SetBuiltinsEnabled(enabled bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetBuiltinsEnabled(enabled))
}
func (o *animeBusObject) SetEnableDisplay(enabled bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetEnableDisplay(enabled))
}
func (o *animeBusObject) SetOffWhenLidClosed(off bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetOffWhenLidClosed(off))
}
func (o *animeBusObject) SetOffWhenSuspended(off bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetOffWhenSuspended(off))
}
func (o *animeBusObject) SetOffWhenUnplugged(off bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetOffWhenUnplugged(off))
}
func (o *animeBusObject) SetBuiltinAnimations(boot models.AnimBooting, awake models.AnimAwake, sleep models.AnimSleeping, shutdown models.AnimShutdown) *dbus.Error {
	return busserver.AsDBusError(o.c.SetBuiltinAnimations(boot, awake, sleep, shutdown))
}
func (o *animeBusObject) Write(frame models.AnimeFrame) *dbus.Error {
	return busserver.AsDBusError(o.c.Write(frame))
}
func (o *animeBusObject) RunProgramme(actions []models.ActionData) *dbus.Error {
	o.c.RunProgramme(actions)
	return nil
}

// slashBusObject exports SlashController at SlashBusPath.
type slashBusObject struct{ c *controller.SlashController }

func (o *slashBusObject) SetEnabled(enabled bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetEnabled(enabled))
}
func (o *slashBusObject) SetBrightness(b byte) *dbus.Error {
	return busserver.AsDBusError(o.c.SetBrightness(b))
}
func (o *slashBusObject) SetInterval(interval byte) *dbus.Error {
	return busserver.AsDBusError(o.c.SetInterval(interval))
}
func (o *slashBusObject) SetMode(mode models.SlashMode) *dbus.Error {
	return busserver.AsDBusError(o.c.SetMode(mode))
}

// scsiBusObject exports ScsiController at ScsiBusPath.
type scsiBusObject struct{ c *controller.ScsiController }

func (o *scsiBusObject) SetEnabled(enabled bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetEnabled(enabled))
}
func (o *scsiBusObject) SetBrightness(b byte) *dbus.Error {
	return busserver.AsDBusError(o.c.SetBrightness(b))
}
func (o *scsiBusObject) SetEffect(e models.ScsiEffect) *dbus.Error {
	return busserver.AsDBusError(o.c.SetEffect(e))
}

// fanCurveBusObject exports FanCurveController at FanCurveBusPath.
type fanCurveBusObject struct{ c *controller.FanCurveController }

func (o *fanCurveBusObject) FanCurveData(policy models.ThrottlePolicy) (models.FanCurveSet, *dbus.Error) {
	return o.c.FanCurveData(policy), nil
}
func (o *fanCurveBusObject) SetFanCurvesEnabled(policy models.ThrottlePolicy, enabled bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetFanCurvesEnabled(policy, enabled))
}
func (o *fanCurveBusObject) SetProfileFanCurveEnabled(policy models.ThrottlePolicy, fan models.FanID, enabled bool) *dbus.Error {
	return busserver.AsDBusError(o.c.SetProfileFanCurveEnabled(policy, fan, enabled))
}
func (o *fanCurveBusObject) SetFanCurve(policy models.ThrottlePolicy, fan models.FanID, curve models.FanCurve) *dbus.Error {
	return busserver.AsDBusError(o.c.SetFanCurve(policy, fan, curve))
}
func (o *fanCurveBusObject) SetCurvesToDefaults(policy models.ThrottlePolicy) *dbus.Error {
	return busserver.AsDBusError(o.c.SetCurvesToDefaults(policy))
}
func (o *fanCurveBusObject) ResetProfileCurves(policy models.ThrottlePolicy) *dbus.Error {
	return busserver.AsDBusError(o.c.ResetProfileCurves(policy))
}

// powerBusObject exports PowerController at PowerBusPath.
type powerBusObject struct{ c *controller.PowerController }

func (o *powerBusObject) ChargeControlEndThreshold() (byte, *dbus.Error) {
	return o.c.ChargeControlEndThreshold(), nil
}
func (o *powerBusObject) SetChargeControlEndThreshold(v int32) *dbus.Error {
	return busserver.AsDBusError(o.c.SetChargeControlEndThreshold(int(v)))
}
func (o *powerBusObject) MainsOnline() (bool, *dbus.Error) { return o.c.MainsOnline(), nil }

// platformBusObject exports PlatformController at PlatformBusPath.
type platformBusObject struct{ c *controller.PlatformController }

func (o *platformBusObject) AttributeNames() ([]string, *dbus.Error) {
	return o.c.AttributeNames(), nil
}
func (o *platformBusObject) Attribute(name string) (models.Attribute, *dbus.Error) {
	a, err := o.c.Attribute(name)
	return a, busserver.AsDBusError(err)
}
func (o *platformBusObject) SetAttribute(name string, v int64) *dbus.Error {
	return busserver.AsDBusError(o.c.SetAttribute(name, v))
}
