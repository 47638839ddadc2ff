// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package models holds the daemon's core data model: device identity,
// LED-support capability records, effect and configuration types, animation
// frame data, fan-curve sets and platform configuration. None of these types
// know how to talk to a device or a bus; that is the job of the transport,
// wire-codec, controller and busserver packages.
package models

// Subsystem discriminates the family of peripheral a DeviceIdentity refers
// to.
type Subsystem string

const (
	SubsystemKeyboard Subsystem = "keyboard"
	SubsystemAnime    Subsystem = "anime"
	SubsystemSlash    Subsystem = "slash"
	SubsystemScsi     Subsystem = "scsi"
	SubsystemPlatform Subsystem = "platform"
	SubsystemFan      Subsystem = "fan"
	SubsystemPower    Subsystem = "power"
)

// DeviceIdentity is a discriminator created at discovery and held immutable
// for the lifetime of a controller.
type DeviceIdentity struct {
	Subsystem Subsystem
	// ProductID is the four-hex-digit USB product identifier, e.g. "19b6".
	ProductID string
	// BoardName is the DMI board name the device was matched against.
	BoardName string
	// Variant is the resolved device-variant tag (e.g. an AniMe panel
	// layout, or a keyboard wire generation).
	Variant string
}

// AnimeVariant identifies one of the three known AniMe pixel/packet
// layouts.
type AnimeVariant string

const (
	AnimeVariantGA401 AnimeVariant = "GA401"
	AnimeVariantGA402 AnimeVariant = "GA402"
	AnimeVariantGU604 AnimeVariant = "GU604"
)
