// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package configstore implements the versioned, migratable per-device
// settings files described in spec.md §4.3, generalising the original
// config_traits crate (StdConfig/StdConfigLoad) into one generic loader so
// every subsystem config shares it instead of five hand-rolled copies
// (SPEC_FULL.md §3).
//
// Encoding is YAML (gopkg.in/yaml.v2, a direct teacher dependency) standing
// in for the original's ron, with encoding/json as the documented
// fallback-parse path.
package configstore

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// LegacyStep attempts to parse data as one legacy schema and, on success,
// upgrade it to the current schema T. ok is false (not an error) when data
// simply isn't shaped like this legacy schema; Store.Load tries the next
// step in that case.
type LegacyStep[T any] func(data []byte) (current *T, ok bool)

// Store is a loader/writer for one subsystem's config file.
type Store[T any] struct {
	// Dir is the directory the file lives in, e.g. "/etc/asusd".
	Dir string
	// FileName is the file's base name, e.g. "aura.yaml".
	FileName string
	// NewDefault constructs the current-schema default value.
	NewDefault func() *T
	// Legacy is tried, in order, only after the current schema fails to
	// parse via both YAML and JSON.
	Legacy []LegacyStep[T]
}

// Path returns the full path to the config file.
func (s *Store[T]) Path() string {
	return filepath.Join(s.Dir, s.FileName)
}

// parseCurrent tries the current schema strictly (unknown fields reject the
// parse) so a legacy-schema file with differently-named fields falls
// through to the Legacy chain instead of silently loading as a
// zero-valued current config.
func parseCurrent[T any](data []byte) (*T, bool) {
	var v T
	if err := yaml.UnmarshalStrict(data, &v); err == nil {
		return &v, true
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var jv T
	if err := dec.Decode(&jv); err == nil {
		return &jv, true
	}
	return nil, false
}

// Load implements spec.md §4.3 load(): open for read+write (create if
// missing); try the current schema (YAML, then JSON fallback), then each
// legacy schema in turn. On any parse failure the existing file is renamed
// to "<name>-old" and a fresh default is written and returned. Parse
// failures are never surfaced to the caller (spec.md §7 "config parse
// failures... are not surfaced to callers"); only I/O errors are.
func (s *Store[T]) Load() (*T, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: s.Dir, Cause: err}, "creating config directory")
	}

	path := s.Path()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		def := s.NewDefault()
		if werr := s.Write(def); werr != nil {
			return nil, werr
		}
		return def, nil
	}
	if err != nil {
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "reading config")
	}

	if len(data) == 0 {
		def := s.NewDefault()
		if werr := s.Write(def); werr != nil {
			return nil, werr
		}
		return def, nil
	}

	if v, ok := parseCurrent[T](data); ok {
		return v, nil
	}

	for _, step := range s.Legacy {
		if v, ok := step(data); ok {
			def := v
			if werr := s.Write(def); werr != nil {
				return nil, werr
			}
			return def, nil
		}
	}

	// Unrecoverable: preserve the unreadable file and recreate a default.
	oldPath := path + "-old"
	if err := os.Rename(path, oldPath); err != nil {
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "renaming unparsable config")
	}
	def := s.NewDefault()
	if werr := s.Write(def); werr != nil {
		return nil, werr
	}
	return def, nil
}

// Read re-parses the file from disk into *out, for refreshing an in-memory
// config immediately before a mutation (spec.md §4.3 concurrency contract).
// Unlike Load, a parse failure here is returned to the caller rather than
// silently replaced: by the time Read is called the file is known-good
// (Load already established that), so a failure here indicates a
// concurrent external writer left a transient partial file, which the
// caller should treat as a retryable condition, not grounds for discarding
// user configuration.
func (s *Store[T]) Read(out *T) error {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: s.Path(), Cause: err}, "reading config")
	}
	if v, ok := parseCurrent[T](data); ok {
		*out = *v
		return nil
	}
	return &rogerrors.ParseError{What: s.Path()}
}

// Write serialises v as pretty-printed YAML and atomically replaces the
// config file (write to a temp file in the same directory, fsync, rename).
func (s *Store[T]) Write(v *T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return rogerrors.Wrap(err, "marshalling config")
	}

	path := s.Path()
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: tmp, Cause: err}, "creating temp config file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return rogerrors.Wrap(&rogerrors.IoError{Path: tmp, Cause: err}, "writing temp config file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return rogerrors.Wrap(&rogerrors.IoError{Path: tmp, Cause: err}, "syncing temp config file")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return rogerrors.Wrap(&rogerrors.IoError{Path: tmp, Cause: err}, "closing temp config file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "replacing config file")
	}
	return nil
}
