// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

// ScsiSpeed is one of five animation speeds for the SCSI-addressed external
// disk LED, grounded on original_source/rog-scsi/src/builtin_modes.rs (note
// the numbering is inverted relative to keyboard Speed: lower means slower).
type ScsiSpeed uint8

const (
	ScsiSpeedFastest ScsiSpeed = 0
	ScsiSpeedFast    ScsiSpeed = 1
	ScsiSpeedMed     ScsiSpeed = 2
	ScsiSpeedSlow    ScsiSpeed = 3
	ScsiSpeedSlowest ScsiSpeed = 4
)

// ScsiDirection is Forward or Reverse.
type ScsiDirection uint8

const (
	ScsiDirectionForward ScsiDirection = 0
	ScsiDirectionReverse ScsiDirection = 1
)

// ScsiEffect describes one effect to apply to the disk LED.
type ScsiEffect struct {
	Mode      AuraMode
	Colours   [4]Colour
	Speed     ScsiSpeed
	Direction ScsiDirection
}

// ScsiConfig is the on-disk settings for the ScsiController, following the
// same {enabled, brightness} pattern as Slash (spec.md §4.4.4).
type ScsiConfig struct {
	Enabled    bool       `yaml:"enabled"`
	Brightness uint8      `yaml:"brightness"`
	Effect     ScsiEffect `yaml:"effect"`
}

// NewScsiConfig returns the current-schema default.
func NewScsiConfig() *ScsiConfig {
	return &ScsiConfig{Enabled: true, Brightness: 0xff, Effect: ScsiEffect{Mode: AuraModeStatic, Colours: [4]Colour{DefaultColour, DefaultColour, DefaultColour, DefaultColour}}}
}
