// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

// SlashMode selects one of the Slash bar's built-in animations.
type SlashMode uint8

// SlashConfig is the on-disk settings for the Slash LED bar (spec.md
// §4.4.3): one device state of {enabled, brightness, interval, mode}.
type SlashConfig struct {
	Enabled    bool      `yaml:"enabled"`
	Brightness uint8     `yaml:"brightness"`
	Interval   uint8     `yaml:"interval"`
	Mode       SlashMode `yaml:"mode"`
}

// slashReenableBrightness is the brightness Slash auto-raises to when
// re-enabled from brightness==0 (spec.md §4.4.3).
const slashReenableBrightness = 0x88

// NewSlashConfig returns the current-schema default.
func NewSlashConfig() *SlashConfig {
	return &SlashConfig{Enabled: true, Brightness: slashReenableBrightness, Interval: 2}
}

// ReenableBrightness returns the brightness to apply when enabling the
// device from a zero brightness, per spec.md §4.4.3.
func ReenableBrightness() uint8 { return slashReenableBrightness }
