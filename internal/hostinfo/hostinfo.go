// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package hostinfo reads host identification (DMI board name) and provides
// the polling fallback used when no udev netlink socket is available.
package hostinfo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// DmiPath is the sysfs root for DMI identification (spec.md §6).
const DmiPath = "/sys/class/dmi/id"

// DMI holds the board identification fields spec.md §6 names.
type DMI struct {
	BoardName     string
	ProductFamily string
	ProductName   string
}

// ReadDMI reads the three DMI attributes the device manager matches
// LedSupport entries against.
func ReadDMI(root string) (DMI, error) {
	if root == "" {
		root = DmiPath
	}
	read := func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			return "", rogerrors.Wrap(&rogerrors.IoError{Path: filepath.Join(root, name), Cause: err}, "reading DMI attribute")
		}
		return strings.TrimSpace(string(b)), nil
	}
	boardName, err := read("board_name")
	if err != nil {
		return DMI{}, err
	}
	productFamily, _ := read("product_family")
	productName, _ := read("product_name")
	return DMI{BoardName: boardName, ProductFamily: productFamily, ProductName: productName}, nil
}

// HostInfo reports the subset of gopsutil's host summary this daemon logs
// at startup (kernel version, platform), grounded on the teacher's use of
// gopsutil in chromiumos/tast/internal/runner for environment diagnostics.
func HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

// HidrawGlob matches every hidraw character device, used by both the
// primary probe and the polling hotplug fallback.
const HidrawGlob = "/sys/class/hidraw/hidraw*"

// HidrawProductID reads the idProduct of the USB parent device of a hidraw
// sysfs node, e.g. "/sys/class/hidraw/hidraw3" -> "19b6". Returns
// NotFoundError if the node has no usb_device ancestor (e.g. a virtual
// hidraw node).
func HidrawProductID(hidrawSysPath string) (string, error) {
	// The real kernel layout is
	// .../hidrawN/device/../../idProduct where the middle ".." climbs from
	// the HID device to its USB interface's parent usb_device. We walk up
	// looking for the first idProduct file, which is robust to the exact
	// depth varying between HID-over-USB and HID-over-i2c topologies.
	dir := filepath.Join(hidrawSysPath, "device")
	for i := 0; i < 6; i++ {
		candidate := filepath.Join(dir, "idProduct")
		if b, err := os.ReadFile(candidate); err == nil {
			return strings.TrimSpace(string(b)), nil
		}
		dir = filepath.Join(dir, "..")
	}
	return "", &rogerrors.NotFoundError{What: "idProduct ancestor of " + hidrawSysPath}
}

// PollInterval is the fallback hidraw rescan cadence (SPEC_FULL.md §2)
// used when no netlink socket is available.
const PollInterval = 5 * time.Second
