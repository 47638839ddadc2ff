// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package animewire

import (
	"testing"

	"github.com/rogdaemon/asusd-go/internal/models"
)

// TestGreyscaleRampScenario reproduces spec.md §8 scenario 2.
func TestGreyscaleRampScenario(t *testing.T) {
	var raw [models.AnimeDataLen]byte
	for i := range raw {
		raw[i] = byte(i % 256)
	}
	clamped := ClampFrame(models.AnimeFrame{Pixels: raw})

	for i, b := range clamped.Pixels {
		if b > BrightnessClamp {
			t.Fatalf("byte %d = %d exceeds clamp %d", i, b, BrightnessClamp)
		}
	}

	pane1, pane2 := PanePackets(clamped.Pixels)
	wantPrefix1 := [7]byte{0x5e, 0xc0, 0x02, 0x01, 0x00, 0x73, 0x02}
	wantPrefix2 := [7]byte{0x5e, 0xc0, 0x02, 0x74, 0x02, 0x73, 0x02}
	if got := [7]byte(pane1[:7]); got != wantPrefix1 {
		t.Errorf("pane1 prefix = % x, want % x", got, wantPrefix1)
	}
	if got := [7]byte(pane2[:7]); got != wantPrefix2 {
		t.Errorf("pane2 prefix = % x, want % x", got, wantPrefix2)
	}
	if len(pane1) != PacketLen || len(pane2) != PacketLen {
		t.Errorf("pane packets must be %d bytes", PacketLen)
	}

	flush := FlushPacket()
	if flush[0] != 0x5e || flush[1] != 0xc0 || flush[2] != 0x03 {
		t.Errorf("flush packet header = % x, want 5e c0 03", flush[:3])
	}
}

func TestInitPackets(t *testing.T) {
	idPacket, followUp := InitPackets()
	if idPacket[0] != 0x5e {
		t.Errorf("id packet byte0 = %x, want 5e", idPacket[0])
	}
	if string(idPacket[1:15]) != "ASUS Tech.Inc." {
		t.Errorf("id packet identification = %q, want %q", idPacket[1:15], "ASUS Tech.Inc.")
	}
	if followUp[0] != 0x5e || followUp[1] != 0xc2 {
		t.Errorf("follow-up packet header = % x, want 5e c2", followUp[:2])
	}
}

func TestBuiltinAnimationsPacket(t *testing.T) {
	p := BuiltinAnimationsPacket(
		models.AnimBootingStaticEmergence, // 1 -> bit 3
		models.AnimAwakeRogLogoGlitch,     // 1 -> bit 0
		models.AnimSleepingStarfield,      // 1 -> bit 1
		models.AnimShutdownSeeYa,          // 1 -> bit 2
	)
	want := byte(1) | byte(1)<<1 | byte(1)<<2 | byte(1)<<3 // 0b1111
	if p[2] != want {
		t.Errorf("selection byte = %08b, want %08b", p[2], want)
	}
}

func TestEnableDisplayPacket(t *testing.T) {
	on := EnableDisplayPacket(true)
	if on[2] != 0x01 {
		t.Errorf("enable packet byte2 = %x, want 1", on[2])
	}
	off := EnableDisplayPacket(false)
	if off[2] != 0x00 {
		t.Errorf("disable packet byte2 = %x, want 0", off[2])
	}
}
