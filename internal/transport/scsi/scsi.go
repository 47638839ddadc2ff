// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package scsi implements transport.Transport by issuing vendor
// passthrough CDBs to a SCSI block device via the Linux SG_IO ioctl, used
// for the disk activity LED effects (spec.md §4.1, §4.4.5). Grounded on
// original_source/asusd/src/ctrl_slash.rs's use of sg_io-style passthrough
// and the teacher's golang.org/x/sys/unix dependency for raw ioctl calls.
package scsi

import (
	"context"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

const (
	sgIO          = 0x2285 // SG_IO
	sgDXferToDev  = -2     // SG_DXFER_TO_DEV
	sgDXferNone   = -1     // SG_DXFER_NONE: the CDBs here have no data phase.
	sgInfoOK      = 0x0
	sgInfoOKMask  = 0x1
	cdbMaxLen     = 16
	senseBuflen   = 32
	defaultTimeMs = 2000
)

// sgIOHdr mirrors struct sg_io_hdr from <scsi/sg.h>, trimmed to the fields
// a write-only vendor passthrough command needs.
type sgIOHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         uintptr
	cmdp           uintptr
	sbp            uintptr
	timeout        uint32
	flags          uint32
	packID         int32
	usrPtr         uintptr
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32
	info           uint32
}

const sgInterfaceID = 'S'

// Transport issues vendor CDBs to one SCSI block device node, e.g.
// /dev/sda.
type Transport struct {
	path string
	f    *os.File
}

// Open opens the block device node for passthrough ioctls.
func Open(devPath string) (*Transport, error) {
	f, err := os.OpenFile(devPath, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rogerrors.NotSupportedError{What: devPath}
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: devPath, Cause: err}, "opening SCSI block device")
	}
	return &Transport{path: devPath, f: f}, nil
}

// WriteBytes issues data as a single vendor CDB (spec.md §4.2's SCSI task
// list entries) via SG_IO, with no data-in phase.
func (t *Transport) WriteBytes(data []byte) error {
	if len(data) == 0 || len(data) > cdbMaxLen {
		return &rogerrors.NotSupportedError{What: "SCSI CDB length"}
	}
	sense := make([]byte, senseBuflen)
	cdb := make([]byte, len(data))
	copy(cdb, data)

	hdr := sgIOHdr{
		interfaceID:    sgInterfaceID,
		dxferDirection: sgDXferNone,
		cmdLen:         uint8(len(cdb)),
		mxSbLen:        uint8(len(sense)),
		dxferLen:       0,
		cmdp:           uintptr(unsafe.Pointer(&cdb[0])),
		sbp:            uintptr(unsafe.Pointer(&sense[0])),
		timeout:        defaultTimeMs,
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(), sgIO, uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: errno}, "SG_IO passthrough")
	}
	if hdr.info&sgInfoOKMask != sgInfoOK {
		return rogerrors.Errorf("SCSI command to %s failed: host=%d driver=%d status=%d", t.path, hdr.hostStatus, hdr.driverStatus, hdr.status)
	}
	return nil
}

// ReadBytes is not supported: the disk-LED vendor commands this daemon
// issues are write-only.
func (t *Transport) ReadBytes(buf []byte) (int, error) {
	return 0, &rogerrors.NotSupportedError{What: "scsi.ReadBytes"}
}

// Monitor is not supported; SCSI LED state has no attribute to watch.
func (t *Transport) Monitor(ctx context.Context, attr string) (<-chan string, error) {
	return nil, &rogerrors.NotSupportedError{What: "scsi.Monitor(" + attr + ")"}
}

// Close closes the block device node.
func (t *Transport) Close() error {
	return t.f.Close()
}
