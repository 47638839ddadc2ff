// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package aurawire encodes AuraEffect values into the exact keyboard HID
// reports spec.md §4.2 specifies for each keyboard generation (Classic,
// Modern, TUF, per-key). Grounded on
// original_source/rog-aura/src/usb.rs and original_source/rog-aura/src/
// aura_detection.rs for the literal byte layouts, and on
// original_source/rog-aura/src/power.rs for the 32-bit power-state packing.
package aurawire

import "github.com/rogdaemon/asusd-go/internal/models"

// ReportLen is the fixed HID report size for Classic/Modern keyboards.
const ReportLen = 17

// PerKeyInitMarker is byte 1 of the init packet required before the first
// per-key row when the device was previously in a factory mode.
const PerKeyInitMarker = 0xbc

// ClassicProductIDs lists the pre-2021 product ids spec.md §4.2 names.
var ClassicProductIDs = []string{"1866", "1869", "1854"}

// ModernProductIDs lists the Modern-generation product ids spec.md §4.2
// names.
var ModernProductIDs = []string{"19b6", "18c6", "1a30", "1abe"}

// EffectReport builds the 17-byte effect packet:
// `5d b3 [zone] [mode] [r1 g1 b1] [speed] [direction] 00 [r2 g2 b2]`.
// Both Classic and Modern keyboards share this framing (spec.md §4.2).
func EffectReport(e models.AuraEffect) [ReportLen]byte {
	var r [ReportLen]byte
	r[0] = 0x5d
	r[1] = 0xb3
	r[2] = byte(e.Zone)
	r[3] = byte(e.Mode)
	r[4] = e.Colour1.R
	r[5] = e.Colour1.G
	r[6] = e.Colour1.B
	r[7] = byte(e.Speed)
	r[8] = byte(e.Direction)
	r[9] = 0x00
	r[10] = e.Colour2.R
	r[11] = e.Colour2.G
	r[12] = e.Colour2.B
	return r
}

// SetReport is the 17-byte `5d b5 …` command sent after every effect write.
func SetReport() [ReportLen]byte {
	var r [ReportLen]byte
	r[0] = 0x5d
	r[1] = 0xb5
	return r
}

// ApplyReport is the 17-byte `5d b4 …` command that makes the preceding
// effect persistent; omitting it leaves the change non-persistent.
func ApplyReport() [ReportLen]byte {
	var r [ReportLen]byte
	r[0] = 0x5d
	r[1] = 0xb4
	return r
}

// PerKeyInitReport is the `{0x5d, 0xbc, 0, …}` packet that must precede the
// first per-key row when the device was previously in factory mode.
func PerKeyInitReport() [ReportLen]byte {
	var r [ReportLen]byte
	r[0] = 0x5d
	r[1] = PerKeyInitMarker
	return r
}

// IsPerKeyRow reports whether row's byte 1 carries the per-key marker
// 0xbc, per spec.md §4.2's "first row's byte 1 must be 0xbc" rule.
func IsPerKeyRow(row []byte) bool {
	return len(row) > 1 && row[1] == PerKeyInitMarker
}

// ModernPowerReport builds the 4-byte power-state command
// `5d bd 01 [b0 b1 b2 b3]`, packing the four power-zone boolean quads per
// the bit-offset table in original_source/rog-aura/src/power.rs: each byte
// holds one zone's {boot,awake,sleep,shutdown} flags, byte order
// keyboard/logo=0 (logo at bits 0,2,4,6; keyboard at bits 1,3,5,7),
// lightbar=1, lid=2, rear-glow=3.
func ModernPowerReport(t models.AuraPowerTable) [7]byte {
	var r [7]byte
	r[0] = 0x5d
	r[1] = 0xbd
	r[2] = 0x01

	packDual := func(logo, kbd models.DevicePowerEntry) byte {
		var b byte
		if logo.Boot {
			b |= 1 << 0
		}
		if kbd.Boot {
			b |= 1 << 1
		}
		if logo.Awake {
			b |= 1 << 2
		}
		if kbd.Awake {
			b |= 1 << 3
		}
		if logo.Sleep {
			b |= 1 << 4
		}
		if kbd.Sleep {
			b |= 1 << 5
		}
		if logo.Shutdown {
			b |= 1 << 6
		}
		if kbd.Shutdown {
			b |= 1 << 7
		}
		return b
	}
	packQuad := func(e models.DevicePowerEntry) byte {
		var b byte
		if e.Boot {
			b |= 1 << 0
		}
		if e.Awake {
			b |= 1 << 1
		}
		if e.Sleep {
			b |= 1 << 2
		}
		if e.Shutdown {
			b |= 1 << 3
		}
		return b
	}

	r[3] = packDual(t[models.PowerZoneLogo], t[models.PowerZoneKeyboard])
	r[4] = packQuad(t[models.PowerZoneLightbar])
	r[5] = packQuad(t[models.PowerZoneLid])
	r[6] = packQuad(t[models.PowerZoneRearGlow])
	return r
}

// DecodeModernPower is the inverse of ModernPowerReport, used by the test
// suite to check the spec.md §8 round-trip property
// decode(encode(s)) == s.
func DecodeModernPower(r [7]byte) models.AuraPowerTable {
	unpackQuad := func(b byte) models.DevicePowerEntry {
		return models.DevicePowerEntry{
			Boot:     b&(1<<0) != 0,
			Awake:    b&(1<<1) != 0,
			Sleep:    b&(1<<2) != 0,
			Shutdown: b&(1<<3) != 0,
		}
	}
	logo := models.DevicePowerEntry{
		Boot:     r[3]&(1<<0) != 0,
		Awake:    r[3]&(1<<2) != 0,
		Sleep:    r[3]&(1<<4) != 0,
		Shutdown: r[3]&(1<<6) != 0,
	}
	kbd := models.DevicePowerEntry{
		Boot:     r[3]&(1<<1) != 0,
		Awake:    r[3]&(1<<3) != 0,
		Sleep:    r[3]&(1<<5) != 0,
		Shutdown: r[3]&(1<<7) != 0,
	}
	return models.AuraPowerTable{
		models.PowerZoneLogo:      logo,
		models.PowerZoneKeyboard:  kbd,
		models.PowerZoneLightbar:  unpackQuad(r[4]),
		models.PowerZoneLid:       unpackQuad(r[5]),
		models.PowerZoneRearGlow:  unpackQuad(r[6]),
	}
}

// AllyPowerReport builds the Ally-specific power packet `5d d1 09 01
// [state] 00 00` used instead of ModernPowerReport when the power table
// has an entry for the Ally's single power zone.
func AllyPowerReport(on bool) [7]byte {
	var r [7]byte
	r[0] = 0x5d
	r[1] = 0xd1
	r[2] = 0x09
	r[3] = 0x01
	if on {
		r[4] = 0x01
	}
	return r
}

// TUFArray builds the six-byte TUF sysfs payload `[1, mode, r, g, b, speed]`.
// TUF speed is a plain 0..2 index rather than the Classic/Modern wire byte,
// since it is written through the LED-class sysfs attribute, not a HID
// report (spec.md §4.2).
func TUFArray(e models.AuraEffect, speedIndex uint8) [6]byte {
	return [6]byte{1, byte(e.Mode), e.Colour1.R, e.Colour1.G, e.Colour1.B, speedIndex}
}

// TUFSpeedIndex maps the Classic/Modern wire speed byte to the plain 0
// (low), 1 (medium), 2 (high) index TUFArray expects.
func TUFSpeedIndex(s models.Speed) uint8 {
	switch s {
	case models.SpeedLow:
		return 0
	case models.SpeedHigh:
		return 2
	default:
		return 1
	}
}

// TUFPowerArray builds the four-byte boolean array `[boot, awake, sleep,
// shutdown]` TUF keyboards take on the kbd_rgb_state attribute, in place of
// the bit-packed ModernPowerReport quad.
func TUFPowerArray(e models.DevicePowerEntry) [4]byte {
	b := func(v bool) byte {
		if v {
			return 1
		}
		return 0
	}
	return [4]byte{b(e.Boot), b(e.Awake), b(e.Sleep), b(e.Shutdown)}
}

// TUFPerKeyArray extracts one per-key HID row's colour into the six-byte
// TUF payload `[0, 0, r, g, b, 0]`: original_source/asusd/src/aura_laptop/
// mod.rs's TUF per-key path reads the colour out of bytes 9..11 of the
// same per-key row the HID path writes wholesale.
func TUFPerKeyArray(row []byte) [6]byte {
	var r, g, b byte
	if len(row) > 11 {
		r, g, b = row[9], row[10], row[11]
	}
	return [6]byte{0, 0, r, g, b, 0}
}
