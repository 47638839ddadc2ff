// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package discover

import (
	"path/filepath"
	"testing"

	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/testutil"
)

func TestLedDBMatchPrefersLongestNameMatch(t *testing.T) {
	db := NewLedDB([]models.LedSupport{
		{NameMatch: "GA4", BasicModes: []models.AuraMode{models.AuraModeStatic}},
		{NameMatch: "GA402", BasicModes: []models.AuraMode{models.AuraModeStatic, models.AuraModeBreathe}},
	})

	got := db.Match("GA402RJ", "19b6")
	if len(got.BasicModes) != 2 {
		t.Errorf("Match returned %+v, want the more specific GA402 entry", got)
	}
}

func TestLedDBMatchRequiresProductIDWhenDeclared(t *testing.T) {
	db := NewLedDB([]models.LedSupport{
		{NameMatch: "GA402", ProductID: "19b6", Layout: "matched"},
	})

	if got := db.Match("GA402RJ", "1866"); got.Layout == "matched" {
		t.Errorf("Match matched on board name despite product id mismatch: %+v", got)
	}
	if got := db.Match("GA402RJ", "19b6"); got.Layout != "matched" {
		t.Errorf("Match = %+v, want the declared entry on matching product id", got)
	}
}

func TestLedDBMatchFallsBackToDefault(t *testing.T) {
	db := NewLedDB(nil)
	got := db.Match("UNKNOWN_BOARD", "ffff")
	if len(got.BasicModes) != 1 || got.BasicModes[0] != models.AuraModeStatic {
		t.Errorf("default entry = %+v, want Static-only", got)
	}
	if len(got.PowerZones) != 1 || got.PowerZones[0] != models.PowerZoneKeyboard {
		t.Errorf("default entry power zones = %+v, want [Keyboard]", got.PowerZones)
	}
}

func TestLedDBUserEntryWinsTieOverSystemEntry(t *testing.T) {
	dir := testutil.TempDir(t)
	userPath := filepath.Join(dir, "user.yaml")
	systemPath := filepath.Join(dir, "system.yaml")
	if err := testutil.WriteFiles(dir, map[string]string{
		"user.yaml":   "entries:\n- name_match: GA402\n  layout: user-layout\n  basic_modes: [0]\n",
		"system.yaml": "entries:\n- name_match: GA402\n  layout: system-layout\n  basic_modes: [0]\n",
	}); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}

	db, err := LoadLedDB(systemPath, userPath)
	if err != nil {
		t.Fatalf("LoadLedDB: %v", err)
	}
	got := db.Match("GA402RJ", "")
	if got.Layout != "user-layout" {
		t.Errorf("Match = %+v, want the user-supplied entry to win the tie", got)
	}
}

func TestLedDBMissingFilesYieldEmptyDB(t *testing.T) {
	dir := testutil.TempDir(t)
	db, err := LoadLedDB(filepath.Join(dir, "nope-system.yaml"), filepath.Join(dir, "nope-user.yaml"))
	if err != nil {
		t.Fatalf("LoadLedDB: %v", err)
	}
	got := db.Match("ANYTHING", "")
	if got.Layout != "Default" {
		t.Errorf("Match = %+v, want the synthetic default", got)
	}
}
