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

type fakeFanDevice struct {
	values map[string]int64
}

func newFakeFanDevice() *fakeFanDevice { return &fakeFanDevice{values: map[string]int64{}} }

func (d *fakeFanDevice) ReadInt(attr string) (int64, error) { return d.values[attr], nil }
func (d *fakeFanDevice) WriteInt(attr string, v int64) error {
	d.values[attr] = v
	return nil
}

type fakeProfileSwitcher struct {
	current models.ThrottlePolicy
	history []models.ThrottlePolicy
}

func (s *fakeProfileSwitcher) CurrentThrottlePolicy() (models.ThrottlePolicy, error) {
	return s.current, nil
}
func (s *fakeProfileSwitcher) SetThrottlePolicyRaw(p models.ThrottlePolicy) error {
	s.current = p
	s.history = append(s.history, p)
	return nil
}

func newFanCurveHandle(t *testing.T) *configstore.Handle[models.FanCurveConfig] {
	t.Helper()
	dir := testutil.TempDir(t)
	store := &configstore.Store[models.FanCurveConfig]{
		Dir:        dir,
		FileName:   "fan_curves.yaml",
		NewDefault: models.NewFanCurveConfig,
	}
	h, err := configstore.NewHandle(store)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

func TestFanCurveDefaultInitializationVisitsEveryPolicy(t *testing.T) {
	device := newFakeFanDevice()
	for _, fan := range []models.FanID{models.FanCPU, models.FanGPU, models.FanMID} {
		for i := 0; i < 8; i++ {
			pwmAttr, tempAttr := curveAttr(fan, i)
			device.values[pwmAttr] = int64(i * 10)
			device.values[tempAttr] = int64(i * 5)
		}
	}
	switcher := &fakeProfileSwitcher{current: models.ThrottlePolicyBalanced}
	cfg := newFanCurveHandle(t)

	c, err := NewFanCurveController(device, cfg, nil, switcher)
	if err != nil {
		t.Fatalf("NewFanCurveController: %v", err)
	}

	for _, policy := range models.AllThrottlePolicies {
		set := c.FanCurveData(policy)
		if len(set) != 3 {
			t.Errorf("policy %s: got %d fans, want 3", policy, len(set))
		}
	}
	if switcher.current != models.ThrottlePolicyBalanced {
		t.Errorf("final policy = %s, want restored to original Balanced", switcher.current)
	}
	if len(switcher.history) != len(models.AllThrottlePolicies) {
		t.Errorf("policy switches = %d, want %d", len(switcher.history), len(models.AllThrottlePolicies))
	}
}

func TestFanCurveValidateRejectsNonMonotonicTemps(t *testing.T) {
	curve := models.FanCurve{Enabled: true}
	curve.Points[0] = models.FanCurvePoint{TempCelsius: 50, Pwm: 100}
	curve.Points[1] = models.FanCurvePoint{TempCelsius: 40, Pwm: 150}
	if err := curve.Validate(); err == nil {
		t.Fatal("expected non-monotonic temperature validation error")
	}
}

func TestFanCurveSetFanCurveWritesAndPersists(t *testing.T) {
	device := newFakeFanDevice()
	cfg := newFanCurveHandle(t)
	c, err := NewFanCurveController(device, cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewFanCurveController: %v", err)
	}

	var curve models.FanCurve
	curve.Enabled = true
	for i := range curve.Points {
		curve.Points[i] = models.FanCurvePoint{TempCelsius: uint8(i * 10), Pwm: uint8(i * 20)}
	}
	if err := c.SetFanCurve(models.ThrottlePolicyPerformance, models.FanCPU, curve); err != nil {
		t.Fatalf("SetFanCurve: %v", err)
	}

	pwmAttr, tempAttr := curveAttr(models.FanCPU, 3)
	if device.values[pwmAttr] != 60 || device.values[tempAttr] != 30 {
		t.Errorf("device point 3 = (temp=%d, pwm=%d), want (30, 60)", device.values[tempAttr], device.values[pwmAttr])
	}
	persisted := cfg.Get().Profiles[models.ThrottlePolicyPerformance][models.FanCPU]
	if persisted != curve {
		t.Errorf("persisted curve = %+v, want %+v", persisted, curve)
	}
}

func TestCurveAttrNaming(t *testing.T) {
	pwmAttr, tempAttr := curveAttr(models.FanGPU, 0)
	if pwmAttr != "pwm2_auto_point1_pwm" || tempAttr != "pwm2_auto_point1_temp" {
		t.Errorf("curveAttr(GPU, 0) = (%s, %s)", pwmAttr, tempAttr)
	}
	if got, _ := curveAttr(models.FanMID, 7); got != "pwm3_auto_point8_pwm" {
		t.Errorf("curveAttr(MID, 7) pwm = %s", got)
	}
}
