// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

import "fmt"

// AttributeDomainKind discriminates how an Attribute's legal values are
// declared.
type AttributeDomainKind int

const (
	// DomainEnumerated means only PossibleValues are legal.
	DomainEnumerated AttributeDomainKind = iota
	// DomainRange means Min..=Max in steps of Step are legal.
	DomainRange
)

// AttributeDomain is the value-domain declared by the kernel for a firmware
// attribute (spec.md §4.4.7: "{current, default, possible_values|(min,max,
// step)}").
type AttributeDomain struct {
	Kind           AttributeDomainKind
	PossibleValues []int64 // valid when Kind == DomainEnumerated
	Min, Max, Step int64   // valid when Kind == DomainRange
}

// Contains reports whether v is legal under the domain.
func (d AttributeDomain) Contains(v int64) bool {
	switch d.Kind {
	case DomainEnumerated:
		for _, p := range d.PossibleValues {
			if p == v {
				return true
			}
		}
		return false
	case DomainRange:
		if v < d.Min || v > d.Max {
			return false
		}
		if d.Step <= 0 {
			return true
		}
		return (v-d.Min)%d.Step == 0
	default:
		return false
	}
}

// Attribute is one firmware-exposed platform attribute
// (/sys/class/firmware-attributes/asus-armoury/attributes/<name>/...).
type Attribute struct {
	Name        string
	DisplayName string
	Current     int64
	Default     int64
	Domain      AttributeDomain
}

// Validate rejects v if it falls outside the attribute's declared domain.
func (a *Attribute) Validate(v int64) error {
	if !a.Domain.Contains(v) {
		return fmt.Errorf("value %d not in domain for attribute %s", v, a.Name)
	}
	return nil
}

// Well-known platform attribute names (SPEC_FULL.md §6 supplement).
const (
	AttrThrottleThermalPolicy = "throttle_thermal_policy"
	AttrPanelOverdrive        = "panel_od"
	AttrMiniLEDMode           = "mini_led_mode"
	AttrDgpuDisable           = "dgpu_disable"
	AttrEgpuEnable            = "egpu_enable"
	AttrGPUMuxMode            = "gpu_mux_mode"
	AttrBootSound             = "boot_sound"
	AttrMcuPowersave          = "mcu_powersave"
)
