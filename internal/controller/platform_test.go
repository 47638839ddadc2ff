// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"testing"

	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/testutil"
)

type fakeAttributeDevice struct {
	values map[string]int64
}

func newFakeAttributeDevice() *fakeAttributeDevice {
	return &fakeAttributeDevice{values: map[string]int64{}}
}

func (d *fakeAttributeDevice) ReadInt(attr string) (int64, error) { return d.values[attr], nil }
func (d *fakeAttributeDevice) WriteInt(attr string, v int64) error {
	d.values[attr] = v
	return nil
}

type fakeEppWriter struct {
	writes map[string]string
}

func (f *fakeEppWriter) WriteAttr(attr, value string) error {
	if f.writes == nil {
		f.writes = map[string]string{}
	}
	f.writes[attr] = value
	return nil
}

func newPlatformHandle(t *testing.T) *configstore.Handle[models.PlatformConfig] {
	t.Helper()
	dir := testutil.TempDir(t)
	store := &configstore.Store[models.PlatformConfig]{
		Dir:        dir,
		FileName:   "platform.yaml",
		NewDefault: models.NewPlatformConfig,
	}
	h, err := configstore.NewHandle(store)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

func panelOdAttr() *models.Attribute {
	return &models.Attribute{
		Name: models.AttrPanelOverdrive,
		Domain: models.AttributeDomain{
			Kind:           models.DomainEnumerated,
			PossibleValues: []int64{0, 1},
		},
	}
}

func throttleAttr() *models.Attribute {
	return &models.Attribute{
		Name: models.AttrThrottleThermalPolicy,
		Domain: models.AttributeDomain{
			Kind:           models.DomainEnumerated,
			PossibleValues: []int64{0, 1, 2},
		},
	}
}

func TestPlatformSetAttributeRejectsOutOfDomain(t *testing.T) {
	attrs := map[string]*models.Attribute{models.AttrPanelOverdrive: panelOdAttr()}
	devices := map[string]AttributeDevice{models.AttrPanelOverdrive: newFakeAttributeDevice()}
	cfg := newPlatformHandle(t)
	c := NewPlatformController(attrs, devices, cfg, nil, nil)

	if err := c.SetAttribute(models.AttrPanelOverdrive, 5); err == nil {
		t.Fatal("expected a validation error for out-of-domain value")
	}
}

func TestPlatformSetAttributeWritesPersistsAndSignals(t *testing.T) {
	attrs := map[string]*models.Attribute{models.AttrPanelOverdrive: panelOdAttr()}
	device := newFakeAttributeDevice()
	devices := map[string]AttributeDevice{models.AttrPanelOverdrive: device}
	cfg := newPlatformHandle(t)
	var notified []string
	c := NewPlatformController(attrs, devices, cfg, notifierFunc(func(_, _, prop string) { notified = append(notified, prop) }), nil)

	if err := c.SetAttribute(models.AttrPanelOverdrive, 1); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}
	if device.values["current_value"] != 1 {
		t.Errorf("device current_value = %d, want 1", device.values["current_value"])
	}
	if cfg.Get().ArmouryAttributes[models.AttrPanelOverdrive] != "1" {
		t.Errorf("persisted = %q, want %q", cfg.Get().ArmouryAttributes[models.AttrPanelOverdrive], "1")
	}
	if len(notified) != 1 || notified[0] != models.AttrPanelOverdrive {
		t.Errorf("notified = %v", notified)
	}
}

func TestPlatformSetAttributeThrottlePolicyAppliesLinkedEppAndCallback(t *testing.T) {
	attrs := map[string]*models.Attribute{models.AttrThrottleThermalPolicy: throttleAttr()}
	device := newFakeAttributeDevice()
	devices := map[string]AttributeDevice{models.AttrThrottleThermalPolicy: device}
	cfg := newPlatformHandle(t)
	if err := cfg.Do(func(c *models.PlatformConfig) error {
		c.ThrottlePolicyLinkedEpp = map[models.ThrottlePolicy]string{
			models.ThrottlePolicyPerformance: "performance",
		}
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	epp := &fakeEppWriter{}
	c := NewPlatformController(attrs, devices, cfg, nil, epp)

	var callbackPolicy models.ThrottlePolicy
	c.SetOnThrottlePolicyChanged(func(p models.ThrottlePolicy) { callbackPolicy = p })

	if err := c.SetAttribute(models.AttrThrottleThermalPolicy, 1); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}
	if epp.writes["energy_performance_preference"] != "performance" {
		t.Errorf("epp write = %v, want performance", epp.writes)
	}
	if callbackPolicy != models.ThrottlePolicyPerformance {
		t.Errorf("callback policy = %s, want Performance", callbackPolicy)
	}
}

func TestPlatformCurrentThrottlePolicyAndSetRaw(t *testing.T) {
	attrs := map[string]*models.Attribute{models.AttrThrottleThermalPolicy: throttleAttr()}
	device := newFakeAttributeDevice()
	devices := map[string]AttributeDevice{models.AttrThrottleThermalPolicy: device}
	cfg := newPlatformHandle(t)
	c := NewPlatformController(attrs, devices, cfg, nil, nil)

	if err := c.SetThrottlePolicyRaw(models.ThrottlePolicyQuiet); err != nil {
		t.Fatalf("SetThrottlePolicyRaw: %v", err)
	}
	got, err := c.CurrentThrottlePolicy()
	if err != nil {
		t.Fatalf("CurrentThrottlePolicy: %v", err)
	}
	if got != models.ThrottlePolicyQuiet {
		t.Errorf("CurrentThrottlePolicy = %s, want Quiet", got)
	}
	if device.values["current_value"] != 2 {
		t.Errorf("device current_value = %d, want 2", device.values["current_value"])
	}
}

func TestPlatformReloadReappliesPersistedAttributesAndSkipsUnknown(t *testing.T) {
	attrs := map[string]*models.Attribute{models.AttrPanelOverdrive: panelOdAttr()}
	device := newFakeAttributeDevice()
	devices := map[string]AttributeDevice{models.AttrPanelOverdrive: device}
	cfg := newPlatformHandle(t)
	if err := cfg.Do(func(c *models.PlatformConfig) error {
		c.ArmouryAttributes = map[string]string{
			models.AttrPanelOverdrive: "1",
			"some_removed_attribute":  "3",
		}
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	c := NewPlatformController(attrs, devices, cfg, nil, nil)

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if device.values["current_value"] != 1 {
		t.Errorf("device current_value = %d, want 1", device.values["current_value"])
	}
}
