// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package animewire packetises AniMe matrix frame buffers into the exact
// 640-byte USB packets spec.md §4.2 specifies, plus the init, builtin
// animation-selection, enable/display, and powersave packets supplemented
// from original_source/rog-anime/src/usb.rs per SPEC_FULL.md §5.
package animewire

import "github.com/rogdaemon/asusd-go/internal/models"

// PacketLen is the fixed USB bulk packet size for every AniMe command.
const PacketLen = 640

// PaneLen is the number of pixel bytes carried by one pane packet.
const PaneLen = 627

// BrightnessClamp is the maximum channel value written to the device;
// spec.md §4.2/§8 require every byte clamped to ≤ 254 before packetisation.
const BrightnessClamp = 254

var paneOnePrefix = [7]byte{0x5e, 0xc0, 0x02, 0x01, 0x00, 0x73, 0x02}
var paneTwoPrefix = [7]byte{0x5e, 0xc0, 0x02, 0x74, 0x02, 0x73, 0x02}
var flushPrefix = [7]byte{0x5e, 0xc0, 0x03}

// ClampFrame returns a copy of f with every byte clamped to BrightnessClamp,
// implementing the per-pixel brightness ceiling spec.md §4.4.2 requires on
// the hot path.
func ClampFrame(f models.AnimeFrame) models.AnimeFrame {
	var out models.AnimeFrame
	out.Delay = f.Delay
	for i, b := range f.Pixels {
		if b > BrightnessClamp {
			b = BrightnessClamp
		}
		out.Pixels[i] = b
	}
	return out
}

// PanePackets splits a clamped AnimeDataLen pixel buffer into the two
// 640-byte pane packets.
func PanePackets(pixels [models.AnimeDataLen]byte) (pane1, pane2 [PacketLen]byte) {
	copy(pane1[:7], paneOnePrefix[:])
	copy(pane1[7:7+PaneLen], pixels[:PaneLen])
	copy(pane2[:7], paneTwoPrefix[:])
	copy(pane2[7:7+PaneLen], pixels[PaneLen:])
	return pane1, pane2
}

// FlushPacket is the `5e c0 03 …` packet issued after both panes are
// written, committing the frame to the display.
func FlushPacket() [PacketLen]byte {
	var p [PacketLen]byte
	copy(p[:3], flushPrefix[:])
	return p
}

// InitPackets returns the two device packets required once at startup:
// a literal "ASUS Tech.Inc." identification packet and a `5e c2 …`
// follow-up.
func InitPackets() (idPacket, followUp [PacketLen]byte) {
	idPacket[0] = 0x5e
	copy(idPacket[1:], []byte("ASUS Tech.Inc."))
	followUp[0] = 0x5e
	followUp[1] = 0xc2
	return idPacket, followUp
}

// EnableDisplayPacket toggles the matrix on/off.
func EnableDisplayPacket(enable bool) [PacketLen]byte {
	var p [PacketLen]byte
	p[0] = 0x5e
	p[1] = 0xc3
	if enable {
		p[2] = 0x01
	}
	return p
}

// EnablePowersaveAnimPacket toggles whether builtin animations play during
// powersave (lid closed / suspended) states.
func EnablePowersaveAnimPacket(enable bool) [PacketLen]byte {
	var p [PacketLen]byte
	p[0] = 0x5e
	p[1] = 0xc4
	if enable {
		p[2] = 0x01
	}
	return p
}

// BuiltinAnimationsPacket encodes the four per-stage builtin-animation
// choices into a single selection byte:
// awake | (sleep<<1) | (shutdown<<2) | (boot<<3), per spec.md §4.2.
func BuiltinAnimationsPacket(boot models.AnimBooting, awake models.AnimAwake, sleep models.AnimSleeping, shutdown models.AnimShutdown) [PacketLen]byte {
	var p [PacketLen]byte
	p[0] = 0x5e
	p[1] = 0xc5
	p[2] = byte(awake) | byte(sleep)<<1 | byte(shutdown)<<2 | byte(boot)<<3
	return p
}
