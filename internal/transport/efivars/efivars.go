// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package efivars implements controller.AttributeDevice over a single EFI
// variable file under /sys/firmware/efi/efivars, used as the boot_sound
// firmware attribute's backing store on boards whose asus-armoury driver
// doesn't expose it (spec.md §6). Grounded on
// original_source/daemon/src/ctrl_platform.rs's get_boot_sound/
// set_boot_sound, which read and rewrite the variable file's trailing data
// byte after clearing its immutable attribute with the `chattr -i`
// equivalent ioctl.
package efivars

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// PostLogoSoundPath is the EFI variable backing the BIOS POST boot sound
// toggle, named verbatim in original_source/daemon/src/ctrl_platform.rs.
const PostLogoSoundPath = "/sys/firmware/efi/efivars/AsusPostLogoSound-607005d5-3f75-4b2e-98f0-85ba66797a3e"

// Transport reads and writes one EFI variable file's trailing data byte.
// An EFI variable file is the kernel's 4-byte attribute header followed by
// the variable's raw data; for AsusPostLogoSound that data is a single
// boolean byte, so the last byte of the file is the whole value.
type Transport struct {
	path string
}

// Open binds to an existing EFI variable file and clears FS_IMMUTABLE_FL
// so later writes succeed, mirroring `chattr -i <path>` before the daemon
// ever attempts a write.
func Open(path string) (*Transport, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &rogerrors.NotSupportedError{What: path}
		}
		return nil, rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "statting efivars file")
	}
	if err := clearImmutable(path); err != nil {
		return nil, err
	}
	return &Transport{path: path}, nil
}

func clearImmutable(path string) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "opening efivars file")
	}
	defer f.Close()

	flags, err := unix.IoctlGetInt(int(f.Fd()), unix.FS_IOC_GETFLAGS)
	if err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "reading efivars immutable flag")
	}
	if flags&unix.FS_IMMUTABLE_FL == 0 {
		return nil
	}
	if err := unix.IoctlSetPointerInt(int(f.Fd()), unix.FS_IOC_SETFLAGS, flags&^unix.FS_IMMUTABLE_FL); err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: path, Cause: err}, "clearing efivars immutable flag")
	}
	return nil
}

// ReadInt reads the variable's trailing data byte. attr is accepted only
// to satisfy controller.AttributeDevice: an EFI variable file holds one
// value, not a directory of named attributes.
func (t *Transport) ReadInt(string) (int64, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return 0, rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: err}, "reading efivars file")
	}
	if len(data) == 0 {
		return 0, &rogerrors.ParseError{What: t.path}
	}
	return int64(data[len(data)-1]), nil
}

// WriteInt rewrites the variable's trailing data byte, preserving the
// attribute header bytes that precede it.
func (t *Transport) WriteInt(_ string, v int64) error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: err}, "reading efivars file")
	}
	if len(data) == 0 {
		return &rogerrors.ParseError{What: t.path}
	}
	data[len(data)-1] = byte(v)
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return rogerrors.Wrap(&rogerrors.IoError{Path: t.path, Cause: err}, "writing efivars file")
	}
	return nil
}
