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

func newScsiHandle(t *testing.T) *configstore.Handle[models.ScsiConfig] {
	t.Helper()
	dir := testutil.TempDir(t)
	store := &configstore.Store[models.ScsiConfig]{
		Dir:        dir,
		FileName:   "scsi.yaml",
		NewDefault: models.NewScsiConfig,
	}
	h, err := configstore.NewHandle(store)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

func TestScsiSetEffectStaticOmitsSpeedAndDirection(t *testing.T) {
	ft := &fakeTransport{}
	cfg := newScsiHandle(t)
	c, err := NewScsiController(ft, cfg, nil)
	if err != nil {
		t.Fatalf("NewScsiController: %v", err)
	}
	ft.writes = nil

	e := models.ScsiEffect{Mode: models.AuraModeStatic, Colours: [4]models.Colour{models.DefaultColour, models.DefaultColour, models.DefaultColour, models.DefaultColour}}
	if err := c.SetEffect(e); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	// mode + 4 rgb + apply + save = 7, no speed/direction task for Static.
	if len(ft.writes) != 7 {
		t.Fatalf("writes = %d packets, want 7 (mode, 4x rgb, apply, save)", len(ft.writes))
	}
	if cfg.Get().Effect.Mode != models.AuraModeStatic {
		t.Errorf("persisted mode = %v, want Static", cfg.Get().Effect.Mode)
	}
}

func TestScsiSetEnabledReraisesBrightnessFromZero(t *testing.T) {
	ft := &fakeTransport{}
	cfg := newScsiHandle(t)
	if err := cfg.Do(func(c *models.ScsiConfig) error {
		c.Brightness = 0
		c.Enabled = false
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	c, err := NewScsiController(ft, cfg, nil)
	if err != nil {
		t.Fatalf("NewScsiController: %v", err)
	}

	if err := c.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if got := cfg.Get().Brightness; got != models.ReenableBrightness() {
		t.Errorf("Brightness = %#x, want %#x", got, models.ReenableBrightness())
	}
}
