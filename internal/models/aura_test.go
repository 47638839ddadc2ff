// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

import "testing"

func TestLedSupportValidate(t *testing.T) {
	zoned := &LedSupport{
		BasicModes: []AuraMode{AuraModeStatic, AuraModeRainbow},
		BasicZones: []AuraZone{AuraZoneOne, AuraZoneTwo},
	}
	unzoned := &LedSupport{
		BasicModes: []AuraMode{AuraModeStatic},
		BasicZones: []AuraZone{AuraZoneNone},
	}

	cases := []struct {
		name    string
		support *LedSupport
		effect  AuraEffect
		wantErr bool
	}{
		{"mode and zone supported", zoned, AuraEffect{Mode: AuraModeStatic, Zone: AuraZoneOne}, false},
		{"mode not supported", zoned, AuraEffect{Mode: AuraModeBreathe, Zone: AuraZoneOne}, true},
		{"zone not supported", zoned, AuraEffect{Mode: AuraModeStatic, Zone: AuraZoneThree}, true},
		{"no-zone on unzoned device is fine", unzoned, AuraEffect{Mode: AuraModeStatic, Zone: AuraZoneNone}, false},
		{"non-none zone on unzoned device rejected", unzoned, AuraEffect{Mode: AuraModeStatic, Zone: AuraZoneOne}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.support.Validate(c.effect)
			if (err != nil) != c.wantErr {
				t.Errorf("Validate(%+v) error = %v, wantErr %v", c.effect, err, c.wantErr)
			}
		})
	}
}

func TestFanCurveValidateMonotonic(t *testing.T) {
	ok := FanCurve{Points: [8]FanCurvePoint{
		{0, 0}, {30, 50}, {40, 80}, {50, 100}, {60, 150}, {70, 180}, {80, 220}, {90, 255},
	}}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected monotonic curve to validate, got %v", err)
	}

	bad := ok
	bad.Points[3].TempCelsius = 10
	if err := bad.Validate(); err == nil {
		t.Errorf("expected non-monotonic curve to fail validation")
	}
}

func TestValidChargeLimit(t *testing.T) {
	for v, want := range map[int]bool{19: false, 20: true, 80: true, 100: true, 101: false} {
		if got := ValidChargeLimit(v); got != want {
			t.Errorf("ValidChargeLimit(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestAttributeDomain(t *testing.T) {
	rangeDomain := AttributeDomain{Kind: DomainRange, Min: 20, Max: 100, Step: 5}
	if rangeDomain.Contains(23) {
		t.Errorf("23 should not satisfy a step-5 domain starting at 20")
	}
	if !rangeDomain.Contains(25) {
		t.Errorf("25 should satisfy a step-5 domain starting at 20")
	}

	enumDomain := AttributeDomain{Kind: DomainEnumerated, PossibleValues: []int64{0, 1, 2}}
	if enumDomain.Contains(3) {
		t.Errorf("3 should not be in the enumerated domain {0,1,2}")
	}
}
