// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package usbraw implements transport.Transport over /dev/bus/usb/<bus>/<dev>
// nodes via the Linux usbfs USBDEVFS_BULK ioctl, used exclusively for the
// AniMe matrix's 640-byte packets (spec.md §9 Open Question: the HID-raw
// path for AniMe is not implemented; usbraw is the only AniMe transport).
// Grounded on original_source/rog-anime/src/usb.rs's libusb bulk-transfer
// usage, translated to the kernel usbfs ioctl interface the teacher's own
// golang.org/x/sys/unix dependency exposes.
package usbraw

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// usbDevicesGlob matches every USB device's sysfs directory (spec.md §6:
// "/sys/bus/usb/devices/*/idProduct").
const usbDevicesGlob = "/sys/bus/usb/devices/*"

// animeBulkEndpoint is the AniMe matrix's bulk OUT endpoint address,
// grounded on original_source/rog-anime/src/usb.rs's libusb endpoint
// constant.
const animeBulkEndpoint = 0x02

// Find locates the USB device whose idProduct matches productID and opens
// it for bulk transfer against the AniMe endpoint.
func Find(productID string) (*Transport, error) {
	matches, err := filepath.Glob(usbDevicesGlob)
	if err != nil {
		return nil, rogerrors.Wrap(err, "globbing usb sysfs devices")
	}
	for _, sysPath := range matches {
		idb, err := os.ReadFile(filepath.Join(sysPath, "idProduct"))
		if err != nil {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(string(idb)), productID) {
			continue
		}
		busNum, devNum, err := readBusDevNum(sysPath)
		if err != nil {
			continue
		}
		return Open(busNum, devNum, animeBulkEndpoint)
	}
	return nil, &rogerrors.NotFoundError{What: fmt.Sprintf("usb device with idProduct %s", productID)}
}

func readBusDevNum(sysPath string) (bus, dev int, err error) {
	busB, err := os.ReadFile(filepath.Join(sysPath, "busnum"))
	if err != nil {
		return 0, 0, err
	}
	devB, err := os.ReadFile(filepath.Join(sysPath, "devnum"))
	if err != nil {
		return 0, 0, err
	}
	bus, err = strconv.Atoi(strings.TrimSpace(string(busB)))
	if err != nil {
		return 0, 0, err
	}
	dev, err = strconv.Atoi(strings.TrimSpace(string(devB)))
	if err != nil {
		return 0, 0, err
	}
	return bus, dev, nil
}

// usbdevfsBulk mirrors struct usbdevfs_bulktransfer from
// <linux/usbdevice_fs.h>.
type usbdevfsBulk struct {
	ep      uint32
	length  uint32
	timeout uint32
	_       uint32 // padding to align the pointer on 64-bit.
	data    uintptr
}

const usbdevfsBulkIoctl = 0xc0185502 // _IOWR('U', 2, struct usbdevfs_bulktransfer)

// Transport writes AniMe packets to one USB bulk OUT endpoint.
type Transport struct {
	path string
	ep   uint32
	f    *os.File
}

// Open opens the usbfs node for bus/dev and targets the given bulk OUT
// endpoint address (e.g. 0x02).
func Open(bus, dev int, endpoint uint32) (*Transport, error) {
	path := fmt.Sprintf("/dev/bus/usb/%03d/%03d", bus, dev)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rogerrors.NotSupportedError{What: path}
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "opening usbfs device node")
	}
	return &Transport{path: path, ep: endpoint, f: f}, nil
}

// WriteBytes issues one USBDEVFS_BULK write of data to the endpoint this
// Transport was opened against. AniMe packets are always exactly 640
// bytes (spec.md §4.2); this transport is agnostic to the length.
func (t *Transport) WriteBytes(data []byte) error {
	xfer := usbdevfsBulk{
		ep:      t.ep,
		length:  uint32(len(data)),
		timeout: 1000,
		data:    uintptr(unsafe.Pointer(&data[0])),
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(), usbdevfsBulkIoctl, uintptr(unsafe.Pointer(&xfer)))
	if errno != 0 {
		return rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: errno}, "usbfs bulk write")
	}
	return nil
}

// ReadBytes is not supported: AniMe devices are write-only in practice, so
// this always returns NotSupportedError without issuing a read.
func (t *Transport) ReadBytes(buf []byte) (int, error) {
	return 0, &rogerrors.NotSupportedError{What: "usbraw.ReadBytes"}
}

// Monitor is not supported; AniMe hotplug is handled by
// internal/discover via the hidraw udev path the AniMe USB interface
// also exposes for enumeration.
func (t *Transport) Monitor(ctx context.Context, attr string) (<-chan string, error) {
	return nil, &rogerrors.NotSupportedError{What: "usbraw.Monitor(" + attr + ")"}
}

// Close closes the usbfs device node.
func (t *Transport) Close() error {
	return t.f.Close()
}
