// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package models

import (
	"time"

	"gopkg.in/yaml.v2"
)

// AnimeDataLen is the number of usable pixel bytes per frame buffer, grounded
// on original_source/rog-anime/src/data.rs (two 627-byte panes).
const AnimeDataLen = 627 * 2

// AnimeFrame is a raw pixel buffer sized to AnimeDataLen plus a per-frame
// delay.
type AnimeFrame struct {
	Pixels [AnimeDataLen]byte
	Delay  time.Duration
}

// AnimeDurationKind discriminates an AnimeGif's playback policy.
type AnimeDurationKind int

const (
	AnimeDurationInfinite AnimeDurationKind = iota
	AnimeDurationCount
	AnimeDurationTime
	AnimeDurationFade
)

// FadeSpec describes a brightness envelope applied over an animation's
// native content: rise for In, hold at full for ShowFor (if set), fall for
// Out.
type FadeSpec struct {
	In      time.Duration
	ShowFor *time.Duration
	Out     time.Duration
}

// AnimeDuration is a tagged union mirroring the Rust AnimTime enum.
type AnimeDuration struct {
	Kind  AnimeDurationKind
	Count uint32        // valid when Kind == AnimeDurationCount
	Time  time.Duration // valid when Kind == AnimeDurationTime
	Fade  FadeSpec       // valid when Kind == AnimeDurationFade
}

// AnimeGif is an ordered sequence of frames plus a playback policy.
type AnimeGif struct {
	Frames   []AnimeFrame
	Duration AnimeDuration
}

// TotalFrameTime sums the per-frame delays, i.e. the length of one pass
// through Frames ignoring Duration.
func (g *AnimeGif) TotalFrameTime() time.Duration {
	var total time.Duration
	for _, f := range g.Frames {
		total += f.Delay
	}
	return total
}

// ActionKind discriminates an ActionData variant.
type ActionKind int

const (
	ActionAnimation ActionKind = iota
	ActionImage
	ActionPause
	ActionAudioEq
	ActionSystemInfo
	ActionTimeDate
	ActionMatrix
)

// ActionData is one step of a controller's active programme.
type ActionData struct {
	Kind  ActionKind
	Gif   *AnimeGif          // valid when Kind == ActionAnimation
	Image *AnimeFrame        // valid when Kind == ActionImage (Delay is ignored)
	Pause time.Duration       // valid when Kind == ActionPause
}

// AnimBooting/AnimAwake/AnimSleeping/AnimShutdown are the builtin per-stage
// animation choices (original_source/rog-anime/src/usb.rs), supplemented
// into this SPEC_FULL per SPEC_FULL.md §5.
type AnimBooting uint8

const (
	AnimBootingGlitchConstruction AnimBooting = iota
	AnimBootingStaticEmergence
)

type AnimAwake uint8

const (
	AnimAwakeBinaryBannerScroll AnimAwake = iota
	AnimAwakeRogLogoGlitch
)

type AnimSleeping uint8

const (
	AnimSleepingBannerSwipe AnimSleeping = iota
	AnimSleepingStarfield
)

type AnimShutdown uint8

const (
	AnimShutdownGlitchOut AnimShutdown = iota
	AnimShutdownSeeYa
)

// AnimeConfig is the on-disk settings for the AniMe controller.
type AnimeConfig struct {
	DisplayEnabled       bool `yaml:"display_enabled"`
	DisplayBrightness    uint8 `yaml:"display_brightness"` // 0..3, see animewire.Brightness
	BuiltinAnimsEnabled  bool `yaml:"builtin_anims_enabled"`
	OffWhenLidClosed     bool `yaml:"off_when_lid_closed"`
	OffWhenSuspended     bool `yaml:"off_when_suspended"`
	OffWhenUnplugged     bool `yaml:"off_when_unplugged"`

	BootAnim     AnimBooting  `yaml:"boot_anim"`
	AwakeAnim    AnimAwake    `yaml:"awake_anim"`
	SleepAnim    AnimSleeping `yaml:"sleep_anim"`
	ShutdownAnim AnimShutdown `yaml:"shutdown_anim"`
}

// NewAnimeConfig returns the current-schema default.
func NewAnimeConfig() *AnimeConfig {
	return &AnimeConfig{
		DisplayEnabled:      true,
		DisplayBrightness:   2, // Med
		BuiltinAnimsEnabled: true,
	}
}

// AnimeConfigV460 is the legacy (pre-current) on-disk schema named in
// spec.md scenario 4: "contains a v4.6.0-era anime config". It predates the
// off_when_* fields and uses a float brightness field that the current
// schema does not carry forward (spec.md §9 open question).
type AnimeConfigV460 struct {
	Brightness float32 `yaml:"brightness"`
}

// Upgrade converts the legacy schema to the current one. The old float
// brightness is not carried over: every current-schema field, display
// brightness included, takes its current-schema default (spec.md
// scenario 4).
func (v *AnimeConfigV460) Upgrade() *AnimeConfig {
	return NewAnimeConfig()
}

// UpgradeAnimeConfigV460 is a configstore.LegacyStep[AnimeConfig]: it parses
// data as the v4.6.0 schema and, on success, upgrades it to the current one.
// Registered on the anime Store so spec.md scenario 4 ("a v4.6.0-era anime
// config is rewritten in the current schema on load") actually fires.
func UpgradeAnimeConfigV460(data []byte) (*AnimeConfig, bool) {
	var v AnimeConfigV460
	if err := yaml.UnmarshalStrict(data, &v); err != nil {
		return nil, false
	}
	return v.Upgrade(), true
}
