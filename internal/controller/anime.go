// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package controller

import (
	"context"

	"github.com/rogdaemon/asusd-go/internal/animengine"
	"github.com/rogdaemon/asusd-go/internal/animewire"
	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/transport"
)

// AnimeBusPath is the AniMe display's fixed bus object path (spec.md §6).
const AnimeBusPath = "/org/asus/Anime"

// AnimeIface is the AniMe display's D-Bus interface name.
const AnimeIface = "org.asus.Anime1"

// AniMeController owns the AniMe matrix's USB-raw transport, its config,
// and the singleton animation engine (spec.md §4.4.2). Grounded on
// original_source/asusd/src/ctrl_anime/mod.rs.
type AniMeController struct {
	transport transport.Transport
	devLock   deviceLock
	cfg       *configstore.Handle[models.AnimeConfig]
	notifier  Notifier
	engine    *animengine.Engine

	initialised bool
}

// NewAniMeController constructs and initialises an AniMeController.
func NewAniMeController(t transport.Transport, cfg *configstore.Handle[models.AnimeConfig], notifier Notifier, engine *animengine.Engine) (*AniMeController, error) {
	c := &AniMeController{transport: t, cfg: cfg, notifier: notifier, engine: engine}
	if notifier == nil {
		c.notifier = NopNotifier{}
	}
	if err := c.doInitialization(); err != nil {
		return nil, err
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// doInitialization sends the two AniMe identification packets required
// once before any frame is accepted (spec.md §4.2).
func (c *AniMeController) doInitialization() error {
	c.devLock.Lock()
	defer c.devLock.Unlock()
	idPacket, followUp := animewire.InitPackets()
	if err := c.transport.WriteBytes(idPacket[:]); err != nil {
		return wrapErr(err, "writing anime id packet")
	}
	if err := c.transport.WriteBytes(followUp[:]); err != nil {
		return wrapErr(err, "writing anime init follow-up packet")
	}
	c.initialised = true
	return nil
}

// Reload re-applies every persisted setting to the device (spec.md §4.4
// step 2): display enable state and the builtin-animation selection.
func (c *AniMeController) Reload() error {
	cfg := c.cfg.Get()
	if err := c.writeEnableDisplay(cfg.DisplayEnabled); err != nil {
		return err
	}
	return c.writeBuiltinAnimations(cfg.BootAnim, cfg.AwakeAnim, cfg.SleepAnim, cfg.ShutdownAnim)
}

// SetBrightness updates the persisted matrix brightness level.
func (c *AniMeController) SetBrightness(level uint8) error {
	if err := c.cfg.Do(func(cfg *models.AnimeConfig) error {
		cfg.DisplayBrightness = level
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(AnimeBusPath, AnimeIface, "Brightness")
	return nil
}

// SetBuiltinsEnabled persists the builtin-animations-enabled flag and sends
// the powersave-animation enable packet carrying it.
func (c *AniMeController) SetBuiltinsEnabled(enabled bool) error {
	if err := c.cfg.Do(func(cfg *models.AnimeConfig) error {
		cfg.BuiltinAnimsEnabled = enabled
		return nil
	}); err != nil {
		return err
	}
	c.devLock.Lock()
	p := animewire.EnablePowersaveAnimPacket(enabled)
	err := wrapErr(c.transport.WriteBytes(p[:]), "writing anime powersave-anim packet")
	c.devLock.Unlock()
	if err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(AnimeBusPath, AnimeIface, "BuiltinsEnabled")
	return nil
}

// SetEnableDisplay toggles the matrix on/off, persists, and signals.
func (c *AniMeController) SetEnableDisplay(enabled bool) error {
	if err := c.cfg.Do(func(cfg *models.AnimeConfig) error {
		cfg.DisplayEnabled = enabled
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeEnableDisplay(enabled); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(AnimeBusPath, AnimeIface, "EnableDisplay")
	return nil
}

// SetOffWhenLidClosed persists the lid-triggered power-save flag.
func (c *AniMeController) SetOffWhenLidClosed(off bool) error {
	return c.setFlag(func(cfg *models.AnimeConfig) { cfg.OffWhenLidClosed = off }, "OffWhenLidClosed")
}

// SetOffWhenSuspended persists the suspend-triggered power-save flag.
func (c *AniMeController) SetOffWhenSuspended(off bool) error {
	return c.setFlag(func(cfg *models.AnimeConfig) { cfg.OffWhenSuspended = off }, "OffWhenSuspended")
}

// SetOffWhenUnplugged persists the AC-triggered power-save flag.
func (c *AniMeController) SetOffWhenUnplugged(off bool) error {
	return c.setFlag(func(cfg *models.AnimeConfig) { cfg.OffWhenUnplugged = off }, "OffWhenUnplugged")
}

func (c *AniMeController) setFlag(mutate func(*models.AnimeConfig), prop string) error {
	if err := c.cfg.Do(func(cfg *models.AnimeConfig) error {
		mutate(cfg)
		return nil
	}); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(AnimeBusPath, AnimeIface, prop)
	return nil
}

// SetBuiltinAnimations persists the four per-stage animation choices and
// re-sends the selection packet (SPEC_FULL.md §5 supplement).
func (c *AniMeController) SetBuiltinAnimations(boot models.AnimBooting, awake models.AnimAwake, sleep models.AnimSleeping, shutdown models.AnimShutdown) error {
	if err := c.cfg.Do(func(cfg *models.AnimeConfig) error {
		cfg.BootAnim, cfg.AwakeAnim, cfg.SleepAnim, cfg.ShutdownAnim = boot, awake, sleep, shutdown
		return nil
	}); err != nil {
		return err
	}
	if err := c.writeBuiltinAnimations(boot, awake, sleep, shutdown); err != nil {
		return err
	}
	c.notifier.NotifyPropertyChanged(AnimeBusPath, AnimeIface, "BuiltinAnimations")
	return nil
}

// Write sends one direct frame buffer to the device, clamping brightness to
// 254 per channel (spec.md §4.2/§4.4.2) without touching the animation
// engine.
func (c *AniMeController) Write(frame models.AnimeFrame) error {
	return c.writeFrame(frame)
}

// RunProgramme starts running actions via the singleton animation engine
// (spec.md §4.4.2). It returns immediately; the programme runs in the
// background and the exit hook restores the persisted builtins-enabled
// state and clears the display.
func (c *AniMeController) RunProgramme(actions []models.ActionData) {
	c.engine.Run(actions, c.writeFrame, c.onProgrammeExit)
}

// onProgrammeExit clears the display and restores the persisted
// builtins-enabled state, per spec.md §4.4.2's "on exit" behaviour.
func (c *AniMeController) onProgrammeExit() {
	var blank models.AnimeFrame
	c.writeFrame(blank)
	cfg := c.cfg.Get()
	c.devLock.Lock()
	p := animewire.EnablePowersaveAnimPacket(cfg.BuiltinAnimsEnabled)
	c.transport.WriteBytes(p[:])
	c.devLock.Unlock()
}

// writeFrame packetises and writes one clamped frame: two panes then a
// flush (spec.md §4.2).
func (c *AniMeController) writeFrame(frame models.AnimeFrame) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()

	clamped := animewire.ClampFrame(frame)
	pane1, pane2 := animewire.PanePackets(clamped.Pixels)
	if err := c.transport.WriteBytes(pane1[:]); err != nil {
		return wrapErr(err, "writing anime pane 1")
	}
	if err := c.transport.WriteBytes(pane2[:]); err != nil {
		return wrapErr(err, "writing anime pane 2")
	}
	flush := animewire.FlushPacket()
	return wrapErr(c.transport.WriteBytes(flush[:]), "writing anime flush packet")
}

func (c *AniMeController) writeEnableDisplay(enabled bool) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()
	p := animewire.EnableDisplayPacket(enabled)
	return wrapErr(c.transport.WriteBytes(p[:]), "writing anime enable-display packet")
}

func (c *AniMeController) writeBuiltinAnimations(boot models.AnimBooting, awake models.AnimAwake, sleep models.AnimSleeping, shutdown models.AnimShutdown) error {
	c.devLock.Lock()
	defer c.devLock.Unlock()
	p := animewire.BuiltinAnimationsPacket(boot, awake, sleep, shutdown)
	return wrapErr(c.transport.WriteBytes(p[:]), "writing anime builtin-animations packet")
}

// Hooks implements spec.md §4.4.2's sleep/wake/shutdown power-save
// behaviour: clear the display and stop any running programme on
// sleep/shutdown, honouring the off_when_* flags on lid/AC transitions,
// and reload on wake.
func (c *AniMeController) Hooks() Hooks {
	return Hooks{
		OnWake: func(ctx context.Context) { c.Reload() },
		OnSleep: func(ctx context.Context) {
			if c.cfg.Get().OffWhenSuspended {
				c.engine.Stop()
				c.writeFrame(models.AnimeFrame{})
			}
		},
		OnShutdown: func(ctx context.Context) {
			c.engine.Stop()
			c.writeFrame(models.AnimeFrame{})
		},
		OnPowerOrLid: func(ctx context.Context, mains bool, lidClosed bool) {
			cfg := c.cfg.Get()
			if (cfg.OffWhenLidClosed && lidClosed) || (cfg.OffWhenUnplugged && !mains) {
				c.engine.Stop()
				c.writeFrame(models.AnimeFrame{})
				return
			}
			if !lidClosed && mains {
				c.Reload()
			}
		},
	}
}
