// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package animengine

import (
	"sync"
	"testing"
	"time"

	"github.com/rogdaemon/asusd-go/internal/clockutil"
	"github.com/rogdaemon/asusd-go/internal/models"
)

func TestScaleFrameClampsTo254(t *testing.T) {
	var f models.AnimeFrame
	f.Pixels[0] = 255
	f.Pixels[1] = 100

	out := ScaleFrame(f, 1.0)
	if out.Pixels[0] != 254 {
		t.Errorf("Pixels[0] = %d, want clamped to 254", out.Pixels[0])
	}
	if out.Pixels[1] != 100 {
		t.Errorf("Pixels[1] = %d, want unchanged 100", out.Pixels[1])
	}
}

func TestFadeScaleEnvelope(t *testing.T) {
	runTime := 10 * time.Second
	fadeIn := 2 * time.Second
	fadeOut := 2 * time.Second

	if got := fadeScale(0, runTime, fadeIn, fadeOut); got != 0 {
		t.Errorf("fadeScale(0) = %v, want 0", got)
	}
	if got := fadeScale(fadeIn, runTime, fadeIn, fadeOut); got != 1 {
		t.Errorf("fadeScale(fadeIn) = %v, want 1", got)
	}
	if got := fadeScale(5*time.Second, runTime, fadeIn, fadeOut); got != 1 {
		t.Errorf("fadeScale(mid) = %v, want 1 (steady region)", got)
	}
	if got := fadeScale(runTime, runTime, fadeIn, fadeOut); got != 0 {
		t.Errorf("fadeScale(runTime) = %v, want 0", got)
	}
}

// TestRunCancelsPriorProgramme exercises spec.md §8 scenario 3: a second
// Run must wait for the first to clear "running" before starting, and only
// the second programme's effect is observed.
func TestRunCancelsPriorProgramme(t *testing.T) {
	clk := clockutil.System
	e := New(clk)

	var mu sync.Mutex
	var written []string

	longGif := &models.AnimeGif{
		Frames:   make([]models.AnimeFrame, 60),
		Duration: models.AnimeDuration{Kind: models.AnimeDurationCount, Count: 1},
	}
	for i := range longGif.Frames {
		longGif.Frames[i].Delay = 50 * time.Millisecond
	}

	e.Run([]models.ActionData{{Kind: models.ActionAnimation, Gif: longGif}}, func(f models.AnimeFrame) error {
		mu.Lock()
		written = append(written, "anim")
		mu.Unlock()
		return nil
	}, nil)

	time.Sleep(20 * time.Millisecond)
	if !e.Running() {
		t.Fatal("expected first programme to be running")
	}

	blank := models.AnimeFrame{}
	done := make(chan struct{})
	e.Run([]models.ActionData{{Kind: models.ActionImage, Image: &blank}}, func(f models.AnimeFrame) error {
		mu.Lock()
		written = append(written, "image")
		mu.Unlock()
		return nil
	}, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second programme to finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(written) == 0 || written[len(written)-1] != "image" {
		t.Errorf("written = %v, want last entry to be the blank image write", written)
	}
}
