// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package animengine is the background animation task driver spec.md §4.4.2
// and §5 describe: a singleton per-device task running a programme (a
// sequence of Animation/Image/Pause steps), cancelled via a two-atomic
// please_exit/running handshake rather than context cancellation, because
// the blocking point is inside a device write that must not be aborted
// mid-packet (spec.md §9 design note). Grounded on the cooperative
// goroutine-handoff pattern in
// chromiumos/tast/internal/runner's job supervisor, adapted here from
// context-based cancellation to the literal atomic handshake spec.md
// mandates.
package animengine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rogdaemon/asusd-go/internal/clockutil"
	"github.com/rogdaemon/asusd-go/internal/models"
)

// FrameWriter writes one clamped, scaled frame to the device. Implemented
// by the owning controller (AniMeController, and in principle any future
// frame-driven device).
type FrameWriter func(frame models.AnimeFrame) error

// Engine runs at most one programme at a time for one device, enforcing
// spec.md §5's "exactly one writer task per device transport" invariant at
// the animation layer.
type Engine struct {
	clk clockutil.Clock

	pleaseExit atomic.Bool
	running    atomic.Bool
}

// New returns an Engine using clk for frame pacing; pass clockutil.System
// in production and a fakeclock in tests.
func New(clk clockutil.Clock) *Engine {
	return &Engine{clk: clk}
}

// Running reports whether a programme is currently executing. Exposed for
// the spec.md §8 concurrency property test ("at most one animation loop
// per device is observable by a test harness that introspects the running
// atomic").
func (e *Engine) Running() bool { return e.running.Load() }

// Run starts executing actions, first asking any in-flight programme to
// exit and waiting for its acknowledgement (spec.md §4.4.2's "run
// programme" algorithm). write is called for every frame/image step;
// onExit is called once, after the loop exits for any reason (cancelled,
// completed, or an action returned an error), to let the controller clear
// the display and restore persisted state.
func (e *Engine) Run(actions []models.ActionData, write FrameWriter, onExit func()) {
	e.pleaseExit.Store(true)
	for e.running.Load() {
		time.Sleep(time.Millisecond)
	}
	e.pleaseExit.Store(false)
	e.running.Store(true)

	go func() {
		defer func() {
			e.running.Store(false)
			if onExit != nil {
				onExit()
			}
		}()

	actionLoop:
		for _, action := range actions {
			if e.pleaseExit.Load() {
				break actionLoop
			}
			switch action.Kind {
			case models.ActionAnimation:
				if action.Gif == nil {
					continue
				}
				if !e.driveGif(action.Gif, write) {
					break actionLoop
				}
			case models.ActionImage:
				if action.Image == nil {
					continue
				}
				if err := write(*action.Image); err != nil {
					break actionLoop
				}
			case models.ActionPause:
				if err := clockutil.SleepContext(context.Background(), e.clk, action.Pause); err != nil {
					break actionLoop
				}
			default:
				// AudioEq/SystemInfo/TimeDate/Matrix are placeholder variants
				// (spec.md §3); nothing to drive yet.
			}
		}
	}()
}

// Stop requests the current programme exit and blocks until it has, for
// callers (controller Sleep/Shutdown hooks) that need the device parked
// before proceeding.
func (e *Engine) Stop() {
	e.pleaseExit.Store(true)
	for e.running.Load() {
		time.Sleep(time.Millisecond)
	}
}

// driveGif runs the fade/duration policy over gif.Frames, writing each
// scaled frame via write. Returns false if the loop was asked to exit
// early.
func (e *Engine) driveGif(gif *models.AnimeGif, write FrameWriter) bool {
	switch gif.Duration.Kind {
	case models.AnimeDurationInfinite:
		for {
			if !e.driveOnePass(gif, 1.0, write) {
				return false
			}
		}
	case models.AnimeDurationCount:
		for i := uint32(0); i < gif.Duration.Count; i++ {
			if !e.driveOnePass(gif, 1.0, write) {
				return false
			}
		}
		return true
	case models.AnimeDurationTime:
		deadline := time.Duration(0)
		for deadline < gif.Duration.Time {
			if !e.driveOnePass(gif, 1.0, write) {
				return false
			}
			deadline += gif.TotalFrameTime()
		}
		return true
	case models.AnimeDurationFade:
		return e.driveFade(gif, write)
	default:
		return true
	}
}

// driveOnePass writes every frame of gif once, each pixel scaled by scale.
func (e *Engine) driveOnePass(gif *models.AnimeGif, scale float64, write FrameWriter) bool {
	for _, f := range gif.Frames {
		if e.pleaseExit.Load() {
			return false
		}
		if err := write(ScaleFrame(f, scale)); err != nil {
			return false
		}
		if err := clockutil.SleepContext(context.Background(), e.clk, f.Delay); err != nil {
			return false
		}
	}
	return true
}

// driveFade implements spec.md §4.4.2's fade driver: compute total
// run-time, clamp fade_in/fade_out if they'd overlap, and scale every
// frame's pixels by a rise/hold/fall envelope.
func (e *Engine) driveFade(gif *models.AnimeGif, write FrameWriter) bool {
	spec := gif.Duration.Fade
	frameTime := gif.TotalFrameTime()
	runTime := frameTime
	if spec.ShowFor != nil {
		runTime = spec.In + *spec.ShowFor + spec.Out
	}

	fadeIn, fadeOut := spec.In, spec.Out
	if fadeIn+fadeOut > runTime {
		fadeIn = runTime / 2
		fadeOut = runTime / 2
	}

	var elapsed time.Duration
	for elapsed < runTime {
		for _, f := range gif.Frames {
			if e.pleaseExit.Load() {
				return false
			}
			scale := fadeScale(elapsed, runTime, fadeIn, fadeOut)
			if err := write(ScaleFrame(f, scale)); err != nil {
				return false
			}
			if err := clockutil.SleepContext(context.Background(), e.clk, f.Delay); err != nil {
				return false
			}
			elapsed += f.Delay
			if elapsed >= runTime {
				break
			}
		}
	}
	return true
}

// fadeScale computes the brightness multiplier for elapsed within
// [0, runTime), given fadeIn and fadeOut durations.
func fadeScale(elapsed, runTime, fadeIn, fadeOut time.Duration) float64 {
	if elapsed < fadeIn && fadeIn > 0 {
		return clamp01(float64(elapsed) / float64(fadeIn))
	}
	fallStart := runTime - fadeOut
	if elapsed >= fallStart && fadeOut > 0 {
		return clamp01(float64(runTime-elapsed) / float64(fadeOut))
	}
	return 1.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ScaleFrame multiplies every pixel by scale (clamped to [0,1] by the
// caller) and clamps the hot-path brightness ceiling to 254, matching
// spec.md §4.4.2's "clamp to 254 then cast to byte".
func ScaleFrame(f models.AnimeFrame, scale float64) models.AnimeFrame {
	var out models.AnimeFrame
	out.Delay = f.Delay
	for i, b := range f.Pixels {
		v := float64(b) * scale
		if v > 254 {
			v = 254
		}
		if v < 0 {
			v = 0
		}
		out.Pixels[i] = byte(v)
	}
	return out
}
