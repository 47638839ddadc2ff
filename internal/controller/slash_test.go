// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"
	"testing"

	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/testutil"
)

type fakeTransport struct {
	writes [][]byte
	err    error
}

func (f *fakeTransport) WriteBytes(b []byte) error {
	cp := append([]byte(nil), b...)
	f.writes = append(f.writes, cp)
	return f.err
}
func (f *fakeTransport) ReadBytes(b []byte) (int, error)                   { return 0, nil }
func (f *fakeTransport) Monitor(ctx context.Context, attr string) (<-chan string, error) {
	return nil, nil
}
func (f *fakeTransport) Close() error { return nil }

func newSlashHandle(t *testing.T) *configstore.Handle[models.SlashConfig] {
	t.Helper()
	dir := testutil.TempDir(t)
	store := &configstore.Store[models.SlashConfig]{
		Dir:        dir,
		FileName:   "slash.yaml",
		NewDefault: models.NewSlashConfig,
	}
	h, err := configstore.NewHandle(store)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h
}

func TestSlashSetEnabledReraisesBrightnessFromZero(t *testing.T) {
	ft := &fakeTransport{}
	cfg := newSlashHandle(t)
	if err := cfg.Do(func(c *models.SlashConfig) error {
		c.Brightness = 0
		c.Enabled = false
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	c, err := NewSlashController(ft, cfg, nil)
	if err != nil {
		t.Fatalf("NewSlashController: %v", err)
	}
	ft.writes = nil

	if err := c.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if got := cfg.Get().Brightness; got != models.ReenableBrightness() {
		t.Errorf("Brightness = %#x, want %#x", got, models.ReenableBrightness())
	}
	if len(ft.writes) != 1 || ft.writes[0][2] != models.ReenableBrightness() {
		t.Errorf("writes = %v, want options packet with raised brightness", ft.writes)
	}
}

func TestSlashSetModeSendsModeThenSave(t *testing.T) {
	ft := &fakeTransport{}
	cfg := newSlashHandle(t)
	c, err := NewSlashController(ft, cfg, nil)
	if err != nil {
		t.Fatalf("NewSlashController: %v", err)
	}
	ft.writes = nil

	if err := c.SetMode(models.SlashMode(3)); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if len(ft.writes) != 2 {
		t.Fatalf("writes = %v, want 2 packets (mode, save)", ft.writes)
	}
	if ft.writes[0][0] != slashOpSetMode || ft.writes[0][1] != 3 {
		t.Errorf("first packet = %v, want mode packet", ft.writes[0])
	}
	if ft.writes[1][0] != slashOpSave {
		t.Errorf("second packet = %v, want save packet", ft.writes[1])
	}
	if cfg.Get().Mode != models.SlashMode(3) {
		t.Errorf("Mode = %v, want 3", cfg.Get().Mode)
	}
}
