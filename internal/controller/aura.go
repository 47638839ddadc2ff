// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"
	"math/rand"

	"github.com/rogdaemon/asusd-go/internal/aurawire"
	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
	"github.com/rogdaemon/asusd-go/internal/transport"
)

// AuraBusPath is the bus object path prefix devices are published under
// (spec.md §6); the device manager appends "/<id>".
const AuraBusPath = "/org/asus/Aura"

// AuraIface is the D-Bus interface name the bus surface exports Aura
// properties and methods under.
const AuraIface = "org.asus.Aura1"

// tufRGBModeAttr and tufRGBStateAttr are the LED-class sysfs attributes TUF
// keyboards expose in place of a hidraw RGB endpoint (spec.md §4.2, §6).
const (
	tufRGBModeAttr  = "kbd_rgb_mode"
	tufRGBStateAttr = "kbd_rgb_state"
)

// attrWriter is satisfied by *ledclass.Transport. TUF boards are addressed
// through named sysfs attributes rather than transport.Transport's generic
// byte stream, so writeOneEffect et al. reach it through a type assertion
// instead of importing ledclass directly.
type attrWriter interface {
	WriteAttr(attr, value string) error
}

// AuraController owns one keyboard's transport and config (spec.md
// §4.4.1). Grounded on original_source/asusd/src/ctrl_aura.rs.
type AuraController struct {
	ObjectPath string
	Support    *models.LedSupport

	transport transport.Transport
	tuf       bool
	devLock   deviceLock

	cfg      *configstore.Handle[models.AuraConfig]
	notifier Notifier

	inPerKeyMode bool
}

// NewAuraController constructs a controller over an already-opened
// transport and loaded config handle, then runs device initialisation
// (spec.md §4.4 step 1). tuf marks a device discovered through the
// LED-class backlight node (internal/discover/probe.go's "tuf" product id)
// rather than a hidraw RGB endpoint; it switches every write path to the
// kbd_rgb_mode/kbd_rgb_state sysfs attributes instead of HID reports.
func NewAuraController(objectPath string, support *models.LedSupport, t transport.Transport, tuf bool, cfg *configstore.Handle[models.AuraConfig], notifier Notifier) (*AuraController, error) {
	c := &AuraController{
		ObjectPath: objectPath,
		Support:    support,
		transport:  t,
		tuf:        tuf,
		cfg:        cfg,
		notifier:   notifier,
	}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	if tuf {
		if _, ok := t.(attrWriter); !ok {
			return nil, &rogerrors.NotSupportedError{What: "TUF keyboard transport missing WriteAttr"}
		}
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// SupportedBasicModes is a read-only property.
func (c *AuraController) SupportedBasicModes() []models.AuraMode { return c.Support.BasicModes }

// SupportedBasicZones is a read-only property.
func (c *AuraController) SupportedBasicZones() []models.AuraZone { return c.Support.BasicZones }

// SupportedPowerZones is a read-only property.
func (c *AuraController) SupportedPowerZones() []models.PowerZone { return c.Support.PowerZones }

// Brightness returns the persisted brightness level.
func (c *AuraController) Brightness() models.Brightness {
	return c.cfg.Get().Brightness
}

// SetBrightness updates brightness and re-applies the current mode so the
// new level takes effect immediately.
func (c *AuraController) SetBrightness(b models.Brightness) error {
	if err := c.cfg.Do(func(cfg *models.AuraConfig) error {
		cfg.Brightness = b
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeCurrentConfigMode(); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(c.ObjectPath, AuraIface, "Brightness")
	return nil
}

// SetLedMode switches CurrentMode and re-applies it. Brightness 0 ("off")
// is silently raised to medium when a mode is set while off (spec.md
// §4.4.1).
func (c *AuraController) SetLedMode(mode models.AuraMode) error {
	if !c.Support.HasMode(mode) {
		return rogerrors.Wrap(&rogerrors.AuraEffectNotSupportedError{Mode: mode.String()}, "set led mode")
	}
	if err := c.cfg.Do(func(cfg *models.AuraConfig) error {
		cfg.CurrentMode = mode
		if cfg.Brightness == models.BrightnessOff {
			cfg.Brightness = models.BrightnessMed
		}
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeCurrentConfigMode(); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(c.ObjectPath, AuraIface, "CurrentMode")
	return nil
}

// SetLedModeData validates effect against Support, stores it in the
// per-mode Builtins table, makes it current, writes it to the device, and
// persists + signals.
func (c *AuraController) SetLedModeData(effect models.AuraEffect) error {
	if err := c.Support.Validate(effect); err != nil {
		return rogerrors.Wrap(&rogerrors.AuraEffectNotSupportedError{Mode: effect.Mode.String(), Zone: effectZoneString(effect)}, "set led mode data")
	}
	if err := c.cfg.Do(func(cfg *models.AuraConfig) error {
		if cfg.Builtins == nil {
			cfg.Builtins = map[models.AuraMode]models.AuraEffect{}
		}
		cfg.Builtins[effect.Mode] = effect
		cfg.CurrentMode = effect.Mode
		if cfg.Brightness == models.BrightnessOff {
			cfg.Brightness = models.BrightnessMed
		}
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeCurrentConfigMode(); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(c.ObjectPath, AuraIface, "LedModeData")
	return nil
}

func effectZoneString(e models.AuraEffect) string {
	if e.Zone == models.AuraZoneNone {
		return "none"
	}
	return "zoned"
}

// SetLedPower writes a new power-state table to the device and persists
// it.
func (c *AuraController) SetLedPower(table models.AuraPowerTable) error {
	if err := c.cfg.Do(func(cfg *models.AuraConfig) error {
		cfg.Power = table
		return nil
	}); err != nil {
		return err
	}
	if err := c.setPowerStates(table); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(c.ObjectPath, AuraIface, "LedPower")
	return nil
}

// DirectAddressingRaw writes a sequence of per-key rows directly,
// implementing spec.md §4.4.1's write_effect_block algorithm.
func (c *AuraController) DirectAddressingRaw(rows [][]byte) error {
	return c.writeEffectBlock(rows)
}

// Reload re-applies every persisted setting to the device (spec.md §4.4
// step 2), idempotently. Called at construction and on resume.
func (c *AuraController) Reload() error {
	if err := c.writeCurrentConfigMode(); err != nil {
		return err
	}
	return c.setPowerStates(c.cfg.Get().Power)
}

// writeCurrentConfigMode implements spec.md §4.4.1's algorithm: if
// multizone is on, write a per-zone effect list (synthesising a default
// when no override exists); otherwise write the single current-mode
// effect. Every HID effect write is followed by SET then APPLY; TUF boards
// have no equivalent commit step, so writeOneEffect's sysfs write is the
// whole operation (original_source/asusd/src/aura_laptop/mod.rs only sends
// SET/APPLY down the hidraw branch).
func (c *AuraController) writeCurrentConfigMode() error {
	cfg := c.cfg.Get()

	c.devLock.Lock()
	defer c.devLock.Unlock()

	if cfg.MultizoneOn {
		effects, ok := cfg.ZoneOverrides[cfg.CurrentMode]
		if !ok {
			effects = c.synthesizeZoneDefaults(cfg.CurrentMode)
		}
		for _, e := range effects {
			if err := c.writeOneEffect(e); err != nil {
				return err
			}
		}
	} else {
		e, ok := cfg.Builtins[cfg.CurrentMode]
		if !ok {
			e = models.AuraEffect{Mode: cfg.CurrentMode, Colour1: models.DefaultColour}
		}
		if err := c.writeOneEffect(e); err != nil {
			return err
		}
	}

	if c.tuf {
		return nil
	}

	setReport := aurawire.SetReport()
	if err := c.transport.WriteBytes(setReport[:]); err != nil {
		return rogerrors.Wrap(err, "writing aura SET report")
	}
	applyReport := aurawire.ApplyReport()
	if err := c.transport.WriteBytes(applyReport[:]); err != nil {
		return rogerrors.Wrap(err, "writing aura APPLY report")
	}
	return nil
}

func (c *AuraController) writeOneEffect(e models.AuraEffect) error {
	if c.tuf {
		arr := aurawire.TUFArray(e, aurawire.TUFSpeedIndex(e.Speed))
		return wrapErr(c.transport.(attrWriter).WriteAttr(tufRGBModeAttr, string(arr[:])), "writing TUF kbd_rgb_mode attribute")
	}
	report := aurawire.EffectReport(e)
	if err := c.transport.WriteBytes(report[:]); err != nil {
		return rogerrors.Wrap(err, "writing aura effect report")
	}
	return nil
}

// synthesizeZoneDefaults builds a per-zone effect list when multizone is
// on but no override exists for mode: prefer rainbow colours, else the
// first available basic mode, else a random colour (spec.md §4.4.1).
func (c *AuraController) synthesizeZoneDefaults(mode models.AuraMode) []models.AuraEffect {
	zones := c.Support.BasicZones
	rainbow := models.RainbowColours()
	effects := make([]models.AuraEffect, 0, len(zones))
	for i, z := range zones {
		if z == models.AuraZoneNone {
			continue
		}
		var colour models.Colour
		switch {
		case c.Support.HasMode(models.AuraModeRainbow):
			colour = rainbow[i%len(rainbow)]
		case len(c.Support.BasicModes) > 0:
			colour = models.DefaultColour
		default:
			colour = models.Colour{R: uint8(rand.Intn(256)), G: uint8(rand.Intn(256)), B: uint8(rand.Intn(256))}
		}
		effects = append(effects, models.AuraEffect{Mode: mode, Zone: z, Colour1: colour})
	}
	return effects
}

// writeEffectBlock implements the per-key write path: a factory-mode
// sequence (byte[1] != 0xbc) is written as effect[0] then SET; a true
// per-key sequence gets an init packet first if the controller wasn't
// already in per-key mode, then every row in order. TUF boards have no
// per-key HID endpoint at all; each row's colour is extracted and written
// to kbd_rgb_mode individually (original_source's TUF write_effect_block
// branch).
func (c *AuraController) writeEffectBlock(rows [][]byte) error {
	if len(rows) == 0 {
		return nil
	}
	c.devLock.Lock()
	defer c.devLock.Unlock()

	if c.tuf {
		aw := c.transport.(attrWriter)
		for _, row := range rows {
			arr := aurawire.TUFPerKeyArray(row)
			if err := aw.WriteAttr(tufRGBModeAttr, string(arr[:])); err != nil {
				return rogerrors.Wrap(err, "writing TUF per-key kbd_rgb_mode attribute")
			}
		}
		return nil
	}

	if !aurawire.IsPerKeyRow(rows[0]) {
		if err := c.transport.WriteBytes(rows[0]); err != nil {
			return rogerrors.Wrap(err, "writing factory-mode effect row")
		}
		setReport := aurawire.SetReport()
		return wrapErr(c.transport.WriteBytes(setReport[:]), "writing aura SET report")
	}

	if !c.inPerKeyMode {
		init := aurawire.PerKeyInitReport()
		if err := c.transport.WriteBytes(init[:]); err != nil {
			return rogerrors.Wrap(err, "writing per-key init report")
		}
		c.inPerKeyMode = true
	}
	for _, row := range rows {
		if err := c.transport.WriteBytes(row); err != nil {
			return rogerrors.Wrap(err, "writing per-key row")
		}
	}
	return nil
}

// setPowerStates implements spec.md §4.4.1: TUF devices pack a boolean
// array through the LED-class kbd_rgb_state attribute; Modern devices send
// the Ally packet if the table has an entry for the Ally's single power
// zone, else the 4-byte `5d bd 01 …` packet.
func (c *AuraController) setPowerStates(table models.AuraPowerTable) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()

	if c.tuf {
		arr := aurawire.TUFPowerArray(table[models.PowerZoneKeyboard])
		return wrapErr(c.transport.(attrWriter).WriteAttr(tufRGBStateAttr, string(arr[:])), "writing TUF kbd_rgb_state attribute")
	}

	if _, isAlly := table[models.PowerZoneSingleZone]; isAlly {
		report := aurawire.AllyPowerReport(table[models.PowerZoneSingleZone].Awake)
		return wrapErr(c.transport.WriteBytes(report[:]), "writing ally power report")
	}
	report := aurawire.ModernPowerReport(table)
	return wrapErr(c.transport.WriteBytes(report[:]), "writing modern power report")
}

// Hooks returns the wake callback (a full Reload) the system-event bridge
// registers for this controller (spec.md §4.4 step 4); no sleep, shutdown
// or lid callback is set.
func (c *AuraController) Hooks() Hooks {
	return Hooks{
		OnWake: func(ctx context.Context) { c.Reload() },
	}
}
