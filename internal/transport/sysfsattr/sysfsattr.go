// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package sysfsattr implements the generic sysfs-directory-of-attribute-files
// transport used by the fan-curve hwmon node, the firmware-attributes
// armoury tree, and the platform-profile/charge-threshold WMI nodes (spec.md
// §6's kernel-surfaces list). internal/transport/ledclass is the LED-class
// specialisation of the same pattern; both share this package's file I/O so
// the read/write/poll behaviour stays identical across every sysfs surface
// the daemon touches. Grounded on original_source/rog-platform/src/
// platform.rs's sysfs attribute read/write helpers.
package sysfsattr

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rogdaemon/asusd-go/internal/clockutil"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// Transport reads and writes the attribute files under one sysfs directory.
type Transport struct {
	Dir string
}

// Open binds to an arbitrary existing sysfs directory.
func Open(dir string) (*Transport, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, &rogerrors.NotSupportedError{What: dir}
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: dir, Cause: err}, "statting sysfs directory")
	}
	return &Transport{Dir: dir}, nil
}

// WriteAttr writes value to one attribute file under Dir.
func (t *Transport) WriteAttr(attr, value string) error {
	path := filepath.Join(t.Dir, attr)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		if os.IsNotExist(err) {
			return &rogerrors.NotSupportedError{What: path}
		}
		return rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "writing sysfs attribute")
	}
	return nil
}

// ReadAttr reads one attribute file, trimmed of surrounding whitespace.
func (t *Transport) ReadAttr(attr string) (string, error) {
	path := filepath.Join(t.Dir, attr)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &rogerrors.NotSupportedError{What: path}
		}
		return "", rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "reading sysfs attribute")
	}
	return strings.TrimSpace(string(b)), nil
}

// ReadInt reads an attribute file as a base-10 integer.
func (t *Transport) ReadInt(attr string) (int64, error) {
	s, err := t.ReadAttr(attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &rogerrors.ParseError{What: filepath.Join(t.Dir, attr)}
	}
	return v, nil
}

// WriteInt writes an integer attribute in base 10.
func (t *Transport) WriteInt(attr string, v int64) error {
	return t.WriteAttr(attr, strconv.FormatInt(v, 10))
}

// PollInterval is the cadence Monitor polls a sysfs attribute at. None of
// the attributes this package addresses (hwmon curves, firmware-attribute
// values, platform-profile) emit inotify events for kernel-driven changes,
// so polling is the only portable option (spec.md §4.5 accepts the same
// tradeoff for AC/lid state).
const PollInterval = 2 * time.Second

// Monitor polls attr for value changes until ctx is cancelled.
func (t *Transport) Monitor(ctx context.Context, attr string) (<-chan string, error) {
	path := filepath.Join(t.Dir, attr)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &rogerrors.NotSupportedError{What: path}
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "statting sysfs attribute")
	}

	out := make(chan string)
	go func() {
		defer close(out)
		last, _ := t.ReadAttr(attr)
		clockutil.Ticker(ctx, clockutil.System, PollInterval, func(context.Context) {
			v, err := t.ReadAttr(attr)
			if err != nil || v == last {
				return
			}
			last = v
			select {
			case out <- v:
			case <-ctx.Done():
			}
		})
	}()
	return out, nil
}

// Close is a no-op; sysfsattr holds no persistent file descriptor between
// calls.
func (t *Transport) Close() error { return nil }
