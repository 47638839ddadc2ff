// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package ledclass implements transport.Transport over the Linux LED class
// sysfs tree (/sys/class/leds/<name>/{brightness,max_brightness,...}),
// used for the vendor kbd_rgb_mode/kbd_rgb_state attributes and the SCSI
// disk activity LED's brightness control (spec.md §4.1, §4.4.5). It is a
// thin naming wrapper over internal/transport/sysfsattr, which owns the
// actual attribute-file I/O shared with the other sysfs-backed transports.
// Grounded on original_source/rog-platform/src/platform.rs's sysfs
// attribute read/write helpers.
package ledclass

import (
	"context"
	"path/filepath"

	"github.com/rogdaemon/asusd-go/internal/transport/sysfsattr"
)

// Transport reads and writes one sysfs LED-class directory's attributes.
type Transport struct {
	attr *sysfsattr.Transport
}

// Open binds to /sys/class/leds/<name>.
func Open(name string) (*Transport, error) {
	t, err := sysfsattr.Open(filepath.Join("/sys/class/leds", name))
	if err != nil {
		return nil, err
	}
	return &Transport{attr: t}, nil
}

// WriteAttr writes value to one attribute file under the LED directory,
// e.g. WriteAttr("brightness", "3").
func (t *Transport) WriteAttr(attr, value string) error { return t.attr.WriteAttr(attr, value) }

// ReadAttr reads one attribute file, trimmed of surrounding whitespace.
func (t *Transport) ReadAttr(attr string) (string, error) { return t.attr.ReadAttr(attr) }

// ReadInt reads an attribute file as a base-10 integer, e.g. max_brightness.
func (t *Transport) ReadInt(attr string) (int, error) {
	v, err := t.attr.ReadInt(attr)
	return int(v), err
}

// WriteBytes writes data as the "brightness" attribute's decimal value,
// satisfying transport.Transport for the single-scalar LED-class devices
// controllers address through the generic interface (the multi-attribute
// kbd_rgb_mode path is addressed directly via WriteAttr instead).
func (t *Transport) WriteBytes(data []byte) error {
	return t.attr.WriteAttr("brightness", string(data))
}

// ReadBytes reads the "brightness" attribute.
func (t *Transport) ReadBytes(buf []byte) (int, error) {
	s, err := t.attr.ReadAttr("brightness")
	if err != nil {
		return 0, err
	}
	return copy(buf, s), nil
}

// Monitor polls one attribute file for value changes, since sysfs LED
// attributes driven by the kernel's ACPI hotkey handler have no portable
// push notification. Grounded on the same poll-driven design spec.md §4.5
// uses for AC/lid state.
func (t *Transport) Monitor(ctx context.Context, attr string) (<-chan string, error) {
	return t.attr.Monitor(ctx, attr)
}

// Close is a no-op; ledclass holds no persistent file descriptor between
// calls.
func (t *Transport) Close() error { return t.attr.Close() }
