// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

import "testing"

func TestUpgradeAnimeConfigV460ParsesLegacySchema(t *testing.T) {
	cfg, ok := UpgradeAnimeConfigV460([]byte("brightness: 0.6666\n"))
	if !ok {
		t.Fatal("UpgradeAnimeConfigV460: ok = false, want true")
	}
	if !cfg.BuiltinAnimsEnabled {
		t.Errorf("BuiltinAnimsEnabled = false, want true from the current-schema default")
	}
	if got, want := cfg.DisplayBrightness, uint8(2); got != want {
		t.Errorf("DisplayBrightness = %d, want %d", got, want)
	}
}

func TestUpgradeAnimeConfigV460RejectsUnknownFields(t *testing.T) {
	if _, ok := UpgradeAnimeConfigV460([]byte("display_enabled: true\nboot_anim: 1\n")); ok {
		t.Error("UpgradeAnimeConfigV460 accepted a current-schema document")
	}
}
