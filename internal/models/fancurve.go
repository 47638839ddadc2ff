// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

import "fmt"

// ThrottlePolicy is the platform-wide performance/thermal envelope exposed
// via platform_profile.
type ThrottlePolicy string

const (
	ThrottlePolicyQuiet       ThrottlePolicy = "quiet"
	ThrottlePolicyBalanced    ThrottlePolicy = "balanced"
	ThrottlePolicyPerformance ThrottlePolicy = "performance"
)

var AllThrottlePolicies = []ThrottlePolicy{ThrottlePolicyQuiet, ThrottlePolicyBalanced, ThrottlePolicyPerformance}

// FanID identifies a controllable fan.
type FanID string

const (
	FanCPU FanID = "cpu"
	FanGPU FanID = "gpu"
	FanMID FanID = "mid"
)

// FanCurvePoint is one (temperature, pwm) sample.
type FanCurvePoint struct {
	TempCelsius uint8
	Pwm         uint8
}

// curvePoints is the fixed number of samples per curve (spec.md §3).
const curvePoints = 8

// FanCurve is an eight-point curve for one fan.
type FanCurve struct {
	Points  [curvePoints]FanCurvePoint
	Enabled bool
}

// Validate checks the spec.md §3/§8 invariant: temperatures monotonic
// non-decreasing. pwm values need no check (every uint8 is valid), and an
// all-zero curve passes, since its temperatures are non-decreasing.
func (c *FanCurve) Validate() error {
	for i := 1; i < curvePoints; i++ {
		if c.Points[i].TempCelsius < c.Points[i-1].TempCelsius {
			return fmt.Errorf("fan curve temperatures not monotonic non-decreasing at index %d: %d < %d",
				i, c.Points[i].TempCelsius, c.Points[i-1].TempCelsius)
		}
	}
	return nil
}

// FanCurveSet holds, for one throttle policy, a curve per fan.
type FanCurveSet map[FanID]FanCurve

// FanCurveConfig is the on-disk per-throttle-policy fan curve store
// (spec.md §3).
type FanCurveConfig struct {
	Profiles map[ThrottlePolicy]FanCurveSet `yaml:"profiles"`
}

// NewFanCurveConfig returns an empty config; the FanCurveController fills it
// in from hardware defaults on first run (spec.md §4.4.5).
func NewFanCurveConfig() *FanCurveConfig {
	return &FanCurveConfig{Profiles: map[ThrottlePolicy]FanCurveSet{}}
}

// EppMapping maps a throttle policy to an energy/performance-preference
// hint (spec.md §3 PlatformConfig, §4.4.7 throttle_policy_linked_epp).
type EppMapping map[ThrottlePolicy]string

// PlatformConfig is the on-disk settings for charge control, throttle
// policy behaviour and EPP linkage (spec.md §3).
type PlatformConfig struct {
	ChargeControlEndThreshold uint8 `yaml:"charge_control_end_threshold"`

	ThrottlePolicyOnAC      ThrottlePolicy `yaml:"throttle_policy_on_ac"`
	ThrottlePolicyOnBattery ThrottlePolicy `yaml:"throttle_policy_on_battery"`
	ChangePolicyOnACEvent   bool           `yaml:"change_policy_on_ac_event"`

	ThrottlePolicyLinkedEpp EppMapping `yaml:"throttle_policy_linked_epp"`

	ACCommand      string `yaml:"ac_command,omitempty"`
	BatteryCommand string `yaml:"battery_command,omitempty"`

	// ArmouryAttributes is the firmware-attribute map the original calls
	// "armoury firmware-attribute map": last-written value per attribute
	// name, used to restore state on reload (spec.md §4.4.7).
	ArmouryAttributes map[string]string `yaml:"armoury_attributes,omitempty"`
}

// ChargeLimitMin and ChargeLimitMax bound charge_control_end_threshold
// (spec.md §3, §8).
const (
	ChargeLimitMin = 20
	ChargeLimitMax = 100
)

// ValidChargeLimit reports whether v is an acceptable charge threshold.
func ValidChargeLimit(v int) bool { return v >= ChargeLimitMin && v <= ChargeLimitMax }

// NewPlatformConfig returns the current-schema default.
func NewPlatformConfig() *PlatformConfig {
	return &PlatformConfig{
		ChargeControlEndThreshold: 100,
		ThrottlePolicyOnAC:        ThrottlePolicyPerformance,
		ThrottlePolicyOnBattery:   ThrottlePolicyQuiet,
		ChangePolicyOnACEvent:     false,
		ThrottlePolicyLinkedEpp:   EppMapping{},
		ArmouryAttributes:         map[string]string{},
	}
}

// PowerConfig is the on-disk settings for the PowerController.
type PowerConfig struct {
	// NvidiaPowerdUnit, when non-empty, names a systemd unit to start on
	// battery and stop on AC (spec.md §4.4.6).
	NvidiaPowerdUnit string `yaml:"nvidia_powerd_unit,omitempty"`
}

func NewPowerConfig() *PowerConfig { return &PowerConfig{} }
