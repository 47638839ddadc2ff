// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package discover implements the device manager (spec.md §4.4.8): the
// Aura-support capability database, parallel device-class probing, bus-path
// construction, and hotplug handling that together build and publish the
// seven per-device controllers.
package discover

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// SystemLedDBPath and UserLedDBPath are the two files making up the
// Aura-support database (spec.md §6: "Two files in RON, one
// system-supplied, one optional user-supplied", rewritten here as YAML per
// SPEC_FULL.md §3). Grounded on
// original_source/rog-aura/src/aura_detection.rs's
// ASUS_LED_MODE_CONF/ASUS_LED_MODE_USER_CONF paths, translated to this
// repo's YAML encoding.
const (
	SystemLedDBPath = "/usr/share/asusd/aura_support.yaml"
	UserLedDBPath   = "/etc/asusd/asusd_user_ledmodes.yaml"
)

type ledDBFile struct {
	Entries []models.LedSupport `yaml:"entries"`
}

// LedDB is the loaded, match-ordered Aura-support capability database.
type LedDB struct {
	entries []models.LedSupport
}

// LoadLedDB reads the user override file (if present) followed by the
// system file from their default paths, exactly as
// aura_detection.rs::load_from_supoprt_db does: "Load user configs first so
// they are first to be checked". systemPath/userPath override the default
// locations for tests; pass "" to use the defaults.
func LoadLedDB(systemPath, userPath string) (*LedDB, error) {
	if systemPath == "" {
		systemPath = SystemLedDBPath
	}
	if userPath == "" {
		userPath = UserLedDBPath
	}

	var entries []models.LedSupport
	if b, err := os.ReadFile(userPath); err == nil {
		var f ledDBFile
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, rogerrors.Wrap(&rogerrors.ParseError{What: userPath}, "parsing user LED support database")
		}
		entries = append(entries, f.Entries...)
	}

	b, err := os.ReadFile(systemPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLedDB(entries), nil
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: systemPath, Cause: err}, "reading system LED support database")
	}
	var f ledDBFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, rogerrors.Wrap(&rogerrors.ParseError{What: systemPath}, "parsing system LED support database")
	}
	entries = append(entries, f.Entries...)

	return NewLedDB(entries), nil
}

// NewLedDB builds a LedDB from an already-assembled entry list, ordering it
// longest-NameMatch-first with a stable sort so entries appended earlier
// (the user override, by LoadLedDB's convention) win ties against
// system entries of the same specificity — spec.md §6's "the user file is
// loaded first so its entries win", generalised from exact ties to
// equal-length substrings since entries need not be unique strings.
func NewLedDB(entries []models.LedSupport) *LedDB {
	ordered := make([]models.LedSupport, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].NameMatch) > len(ordered[j].NameMatch)
	})
	return &LedDB{entries: ordered}
}

// defaultSupport is returned when no database entry matches, mirroring
// aura_detection.rs's match_device fallback: a generic Static-only,
// unzoned, keyboard-power-zone-only record.
func defaultSupport(boardName, productID string) models.LedSupport {
	return models.LedSupport{
		NameMatch:  boardName,
		ProductID:  productID,
		Layout:     "Default",
		BasicModes: []models.AuraMode{models.AuraModeStatic},
		PowerZones: []models.PowerZone{models.PowerZoneKeyboard},
	}
}

// Match finds the most specific entry whose NameMatch is a substring of
// boardName and, when the entry also declares a ProductID, whose
// ProductID equals productID exactly (case-insensitive). Returns a
// synthetic default entry when nothing matches, never an error — an
// unrecognised board should still get basic Static-mode control rather
// than no keyboard control at all.
func (db *LedDB) Match(boardName, productID string) models.LedSupport {
	for _, e := range db.entries {
		if e.NameMatch == "" || !strings.Contains(boardName, e.NameMatch) {
			continue
		}
		if e.ProductID != "" && !strings.EqualFold(e.ProductID, productID) {
			continue
		}
		return e
	}
	return defaultSupport(boardName, productID)
}
