// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package configstore

import (
	"os"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/rogdaemon/asusd-go/internal/testutil"
)

func yamlUnmarshalStrict(data []byte, v interface{}) error {
	return yaml.UnmarshalStrict(data, v)
}

type sampleConfig struct {
	Brightness int    `yaml:"brightness"`
	Mode       string `yaml:"mode"`
}

func newSampleStore(dir string) *Store[sampleConfig] {
	return &Store[sampleConfig]{
		Dir:      dir,
		FileName: "sample.yaml",
		NewDefault: func() *sampleConfig {
			return &sampleConfig{Brightness: 3, Mode: "static"}
		},
	}
}

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	dir := testutil.TempDir(t)
	s := newSampleStore(dir)

	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Brightness != 3 || cfg.Mode != "static" {
		t.Errorf("Load returned %+v, want default", cfg)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("expected config file to be written: %v", err)
	}
}

func TestLoadParsesExistingYAML(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{
		"sample.yaml": "brightness: 7\nmode: breathe\n",
	}); err != nil {
		t.Fatal(err)
	}

	s := newSampleStore(dir)
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Brightness != 7 || cfg.Mode != "breathe" {
		t.Errorf("Load returned %+v, want {7 breathe}", cfg)
	}
}

func TestLoadFallsBackToJSON(t *testing.T) {
	dir := testutil.TempDir(t)
	// The duplicated key makes the strict YAML parse fail, so only the JSON
	// decoder (last value wins) can load this document.
	if err := testutil.WriteFiles(dir, map[string]string{
		"sample.yaml": `{"brightness": 1, "brightness": 2, "mode": "rainbow"}`,
	}); err != nil {
		t.Fatal(err)
	}

	s := newSampleStore(dir)
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Brightness != 2 || cfg.Mode != "rainbow" {
		t.Errorf("Load returned %+v, want {2 rainbow}", cfg)
	}
}

type legacySampleConfig struct {
	OldBrightnessPct int `yaml:"old_brightness_pct"`
}

func TestLoadUsesLegacyUpgrader(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{
		"sample.yaml": "old_brightness_pct: 50\n",
	}); err != nil {
		t.Fatal(err)
	}

	s := newSampleStore(dir)
	s.Legacy = []LegacyStep[sampleConfig]{
		func(data []byte) (*sampleConfig, bool) {
			var l legacySampleConfig
			if err := yamlUnmarshalStrict(data, &l); err != nil || l.OldBrightnessPct == 0 {
				return nil, false
			}
			return &sampleConfig{Brightness: l.OldBrightnessPct / 10, Mode: "static"}, true
		},
	}

	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Brightness != 5 {
		t.Errorf("Load returned %+v, want upgraded legacy config with Brightness=5", cfg)
	}
	// The store should have rewritten the file in the current schema.
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "old_brightness_pct: 50\n" {
		t.Errorf("expected legacy file to be rewritten in current schema")
	}
}

func TestLoadRecoversFromUnparsableFile(t *testing.T) {
	dir := testutil.TempDir(t)
	if err := testutil.WriteFiles(dir, map[string]string{
		"sample.yaml": "{{{not valid anything",
	}); err != nil {
		t.Fatal(err)
	}

	s := newSampleStore(dir)
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Brightness != 3 {
		t.Errorf("Load returned %+v, want fresh default", cfg)
	}
	if _, err := os.Stat(s.Path() + "-old"); err != nil {
		t.Errorf("expected unparsable file preserved as -old: %v", err)
	}
}

func TestHandleDoRoundTrips(t *testing.T) {
	dir := testutil.TempDir(t)
	h, err := NewHandle(newSampleStore(dir))
	if err != nil {
		t.Fatalf("NewHandle failed: %v", err)
	}

	if err := h.Do(func(cfg *sampleConfig) error {
		cfg.Brightness = 9
		return nil
	}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if got := h.Get().Brightness; got != 9 {
		t.Errorf("Get().Brightness = %d, want 9", got)
	}

	reloaded, err := newSampleStore(dir).Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Brightness != 9 {
		t.Errorf("reloaded Brightness = %d, want 9", reloaded.Brightness)
	}
}
