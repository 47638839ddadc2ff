// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

import "fmt"

// AuraMode is the factory effect number written to the keyboard, grounded on
// the original `AuraModeNum` enum (values are not contiguous: 9 is unused).
type AuraMode uint8

const (
	AuraModeStatic    AuraMode = 0
	AuraModeBreathe   AuraMode = 1
	AuraModeStrobe    AuraMode = 2
	AuraModeRainbow   AuraMode = 3
	AuraModeStar      AuraMode = 4
	AuraModeRain      AuraMode = 5
	AuraModeHighlight AuraMode = 6
	AuraModeLaser     AuraMode = 7
	AuraModeRipple    AuraMode = 8
	AuraModePulse     AuraMode = 10
	AuraModeComet     AuraMode = 11
	AuraModeFlash     AuraMode = 12
)

func (m AuraMode) String() string {
	switch m {
	case AuraModeStatic:
		return "Static"
	case AuraModeBreathe:
		return "Breathing"
	case AuraModeStrobe:
		return "Strobing"
	case AuraModeRainbow:
		return "Rainbow"
	case AuraModeStar:
		return "Stars"
	case AuraModeRain:
		return "Rain"
	case AuraModeHighlight:
		return "Keypress Highlight"
	case AuraModeLaser:
		return "Keypress Laser"
	case AuraModeRipple:
		return "Keypress Ripple"
	case AuraModePulse:
		return "Pulse"
	case AuraModeComet:
		return "Comet"
	case AuraModeFlash:
		return "Flash"
	default:
		return fmt.Sprintf("AuraMode(%d)", uint8(m))
	}
}

// AuraZone addresses a region of a zoned keyboard. Zero value is "no zone",
// valid for boards that are not zoned.
type AuraZone uint8

const (
	AuraZoneNone AuraZone = iota
	AuraZoneOne
	AuraZoneTwo
	AuraZoneThree
	AuraZoneFour
)

// PowerZone is a logical grouping for power-state control.
type PowerZone uint8

const (
	PowerZoneKeyboard PowerZone = iota
	PowerZoneLogo
	PowerZoneLightbar
	PowerZoneLid
	PowerZoneRearGlow
	PowerZoneSingleZone
)

// Speed is one of three animation speeds. The numeric value is the exact
// byte written on the wire for Classic/Modern keyboards (spec.md §4.2).
type Speed uint8

const (
	SpeedLow  Speed = 0xe1
	SpeedMed  Speed = 0xeb
	SpeedHigh Speed = 0xf5
)

// Direction is the animation direction, only consumed by a handful of modes
// (notably Rainbow).
type Direction uint8

const (
	DirectionRight Direction = iota
	DirectionLeft
	DirectionUp
	DirectionDown
)

// Brightness is the four-level keyboard brightness.
type Brightness uint8

const (
	BrightnessOff Brightness = iota
	BrightnessLow
	BrightnessMed
	BrightnessHigh
)

// Colour is an RGB triple.
type Colour struct {
	R, G, B uint8
}

// DefaultColour matches the original crate's Default impl (a muted red),
// used when synthesising a default per-zone effect.
var DefaultColour = Colour{R: 166, G: 0, B: 0}

// RainbowColours returns the four zone colours used when multizone_on is
// enabled and no explicit per-zone override exists for the current mode
// (spec.md §4.4.1 write_current_config_mode: "prefer rainbow colours").
func RainbowColours() [4]Colour {
	return [4]Colour{
		{R: 255, G: 0, B: 0},
		{R: 255, G: 255, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
	}
}

// AuraEffect fully describes one keyboard lighting effect.
//
// Invariant (spec.md §3): Mode and Zone must be present in the device's
// LedSupport lists, and Zone != AuraZoneNone requires the device be zoned.
// AuraEffect itself does not enforce this; callers validate against a
// LedSupport before accepting an effect (see LedSupport.Validate).
type AuraEffect struct {
	Mode      AuraMode
	Zone      AuraZone
	Colour1   Colour
	Colour2   Colour
	Speed     Speed
	Direction Direction
}

// AdvancedAuraKind describes how a board's per-key / advanced-zone lighting
// is organised.
type AdvancedAuraKind int

const (
	AdvancedAuraNone AdvancedAuraKind = iota
	AdvancedAuraZoned
	AdvancedAuraPerKey
)

// LedSupport is the per-board capability record loaded from the aura_support
// database (spec.md §3, §6).
type LedSupport struct {
	// NameMatch is a DMI board-name substring, e.g. "GA402".
	NameMatch string `yaml:"name_match"`
	// ProductID is the four-hex-digit USB product id, e.g. "19b6".
	ProductID string `yaml:"product_id"`
	Layout    string `yaml:"layout"`

	BasicModes []AuraMode `yaml:"basic_modes"`
	BasicZones []AuraZone `yaml:"basic_zones"`

	AdvancedAura      AdvancedAuraKind `yaml:"advanced_aura"`
	AdvancedAuraZones []AuraZone       `yaml:"advanced_aura_zones,omitempty"` // only meaningful when AdvancedAura == AdvancedAuraZoned

	PowerZones []PowerZone `yaml:"power_zones"`
}

// HasMode reports whether mode is in BasicModes.
func (l *LedSupport) HasMode(mode AuraMode) bool {
	for _, m := range l.BasicModes {
		if m == mode {
			return true
		}
	}
	return false
}

// HasZone reports whether zone is in BasicZones.
func (l *LedSupport) HasZone(zone AuraZone) bool {
	for _, z := range l.BasicZones {
		if z == zone {
			return true
		}
	}
	return false
}

// IsZoned reports whether the device supports more than the "no zone" zone.
func (l *LedSupport) IsZoned() bool {
	for _, z := range l.BasicZones {
		if z != AuraZoneNone {
			return true
		}
	}
	return false
}

// HasPowerZone reports whether zone is in PowerZones.
func (l *LedSupport) HasPowerZone(zone PowerZone) bool {
	for _, z := range l.PowerZones {
		if z == zone {
			return true
		}
	}
	return false
}

// Validate checks the spec.md §3/§8 invariant:
//
//	L.basic_modes.contains(e.mode) && (e.zone == none || L.basic_zones.contains(e.zone))
func (l *LedSupport) Validate(e AuraEffect) error {
	if !l.HasMode(e.Mode) {
		return &notSupportedEffect{mode: e.Mode.String(), zone: fmt.Sprint(e.Zone)}
	}
	if e.Zone != AuraZoneNone {
		if !l.IsZoned() {
			return &notSupportedEffect{mode: e.Mode.String(), zone: fmt.Sprint(e.Zone)}
		}
		if !l.HasZone(e.Zone) {
			return &notSupportedEffect{mode: e.Mode.String(), zone: fmt.Sprint(e.Zone)}
		}
	}
	return nil
}

// notSupportedEffect is returned by Validate; controllers translate it into
// rogerrors.AuraEffectNotSupportedError so the failure carries a stack trace
// and a D-Bus-mappable kind.
type notSupportedEffect struct{ mode, zone string }

func (e *notSupportedEffect) Error() string {
	return fmt.Sprintf("mode %s / zone %s not supported by this device", e.mode, e.zone)
}

// Values exposes the rejected mode and zone so callers can build a typed
// rogerrors.AuraEffectNotSupportedError without re-parsing the message.
func (e *notSupportedEffect) Values() (mode, zone string) { return e.mode, e.zone }

// DevicePowerEntry is one {boot,awake,sleep,shutdown} row for a power zone.
type DevicePowerEntry struct {
	Boot, Awake, Sleep, Shutdown bool
}

// AuraPowerTable is keyed by PowerZone; zones absent from LedSupport are
// simply never populated.
type AuraPowerTable map[PowerZone]DevicePowerEntry

// AuraConfig is the on-disk, versioned settings for one Aura device
// (spec.md §3).
type AuraConfig struct {
	LedType      string `yaml:"led_type"`
	CurrentMode  AuraMode `yaml:"current_mode"`
	Brightness   Brightness `yaml:"brightness"`

	// Builtins is the per-mode effect table, keyed by mode number.
	Builtins map[AuraMode]AuraEffect `yaml:"builtins"`

	// ZoneOverrides holds, per mode, an optional ordered per-zone effect
	// list used when MultizoneOn is true.
	ZoneOverrides map[AuraMode][]AuraEffect `yaml:"zone_overrides,omitempty"`

	PerKeyModeActive bool `yaml:"per_key_mode_active"`

	Power AuraPowerTable `yaml:"power"`

	AllyFix bool `yaml:"ally_fix,omitempty"`

	MultizoneOn bool `yaml:"multizone_on"`
}

// NewAuraConfig returns the zero-value default: Static mode, medium
// brightness, no zone overrides, all power states off.
func NewAuraConfig() *AuraConfig {
	return &AuraConfig{
		LedType:     "",
		CurrentMode: AuraModeStatic,
		Brightness:  BrightnessMed,
		Builtins: map[AuraMode]AuraEffect{
			AuraModeStatic: {Mode: AuraModeStatic, Colour1: DefaultColour, Speed: SpeedMed},
		},
		Power: AuraPowerTable{},
	}
}
