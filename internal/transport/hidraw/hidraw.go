// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package hidraw implements transport.Transport over /dev/hidraw* character
// devices, matched by USB idProduct as spec.md §4.1 describes. Grounded on
// original_source/rog-aura/src/lib.rs's hidraw enumeration and on the
// teacher's sysfs-path-walking style in chromiumos/tast/internal/crash.
package hidraw

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rogdaemon/asusd-go/internal/hostinfo"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// Transport writes HID output reports to one /dev/hidrawN node.
type Transport struct {
	path string
	f    *os.File
}

// Find locates the hidraw device node whose USB idProduct matches
// productID (a 4-hex-digit lowercase string, e.g. "19b6").
func Find(productID string) (*Transport, error) {
	matches, err := filepath.Glob(hostinfo.HidrawGlob)
	if err != nil {
		return nil, rogerrors.Wrap(err, "globbing hidraw sysfs nodes")
	}
	for _, sysPath := range matches {
		id, err := hostinfo.HidrawProductID(sysPath)
		if err != nil {
			continue
		}
		if strings.EqualFold(id, productID) {
			name := filepath.Base(sysPath)
			return Open(filepath.Join("/dev", name))
		}
	}
	return nil, &rogerrors.NotFoundError{What: fmt.Sprintf("hidraw device with idProduct %s", productID)}
}

// Open opens a specific hidraw device node directly.
func Open(devPath string) (*Transport, error) {
	f, err := os.OpenFile(devPath, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rogerrors.NotSupportedError{What: devPath}
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: devPath, Cause: err}, "opening hidraw device")
	}
	return &Transport{path: devPath, f: f}, nil
}

// WriteBytes issues a single blocking write(2) of one HID output report.
func (t *Transport) WriteBytes(data []byte) error {
	_, err := t.f.Write(data)
	if err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: err}, "writing hidraw report")
	}
	return nil
}

// ReadBytes reads one HID input report.
func (t *Transport) ReadBytes(buf []byte) (int, error) {
	n, err := t.f.Read(buf)
	if err != nil {
		return 0, rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: err}, "reading hidraw report")
	}
	return n, nil
}

// Monitor is not supported on hidraw nodes; attribute changes are observed
// through udev netlink by internal/discover, not per-transport.
func (t *Transport) Monitor(ctx context.Context, attr string) (<-chan string, error) {
	return nil, &rogerrors.NotSupportedError{What: "hidraw.Monitor(" + attr + ")"}
}

// Close closes the underlying device node.
func (t *Transport) Close() error {
	return t.f.Close()
}
