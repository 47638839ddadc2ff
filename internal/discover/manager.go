// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package discover

import (
	"context"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/rogdaemon/asusd-go/internal/animengine"
	"github.com/rogdaemon/asusd-go/internal/busserver"
	"github.com/rogdaemon/asusd-go/internal/clockutil"
	"github.com/rogdaemon/asusd-go/internal/configstore"
	"github.com/rogdaemon/asusd-go/internal/controller"
	"github.com/rogdaemon/asusd-go/internal/hostinfo"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/sessionbridge"
	"github.com/rogdaemon/asusd-go/internal/transport"
	"github.com/rogdaemon/asusd-go/internal/transport/hidraw"
)

// Manager owns every controller, the bus connection, and the system-event
// bridge, wiring them together per spec.md §4.4.8. It is the daemon's single
// top-level object; cmd/asusd constructs exactly one.
type Manager struct {
	logger  *slog.Logger
	bus     *busserver.Server
	bridge  *sessionbridge.Bridge
	ledDB   *LedDB
	dmi     hostinfo.DMI
	cfgDir  string

	platform *controller.PlatformController
	power    *controller.PowerController
	fan      *controller.FanCurveController

	auraPath dbus.ObjectPath
	aura     *controller.AuraController
	anime    *controller.AniMeController
	slash    *controller.SlashController
	scsi     *controller.ScsiController
}

// New probes every device class, constructs and publishes every available
// controller, and wires the system-event bridge, but does not yet start
// polling or the hotplug watcher — call Run for that.
func New(ctx context.Context, logger *slog.Logger, cfgDir string) (*Manager, error) {
	ledDB, err := LoadLedDB("", "")
	if err != nil {
		return nil, err
	}
	dmi, err := hostinfo.ReadDMI("")
	if err != nil {
		logger.Warn("failed to read DMI board identification", "error", err)
	}

	bus, err := busserver.Dial(logger)
	if err != nil {
		return nil, err
	}
	bridge := sessionbridge.New(bus.Conn(), clockutil.System, logger)

	m := &Manager{logger: logger, bus: bus, bridge: bridge, ledDB: ledDB, dmi: dmi, cfgDir: cfgDir}

	probe, err := Probe(ctx)
	if err != nil {
		bus.Close()
		return nil, err
	}

	if err := m.buildPlatformAndPower(); err != nil {
		bus.Close()
		return nil, err
	}
	if err := m.buildFanCurve(); err != nil {
		bus.Close()
		return nil, err
	}
	if probe.Aura != nil {
		if err := m.buildAura(probe.Aura, probe.AuraPath); err != nil {
			bus.Close()
			return nil, err
		}
	}
	if probe.Anime != nil {
		if err := m.buildAnime(probe.Anime); err != nil {
			bus.Close()
			return nil, err
		}
	}
	if probe.Slash != nil {
		if err := m.buildSlash(probe.Slash); err != nil {
			bus.Close()
			return nil, err
		}
	}
	if probe.Scsi != nil {
		if err := m.buildScsi(probe.Scsi); err != nil {
			bus.Close()
			return nil, err
		}
	}

	return m, nil
}

func platformStore(dir string) *configstore.Store[models.PlatformConfig] {
	return &configstore.Store[models.PlatformConfig]{Dir: dir, FileName: "platform.yaml", NewDefault: models.NewPlatformConfig}
}

func (m *Manager) buildPlatformAndPower() error {
	attrs, devices, err := DiscoverFirmwareAttributes()
	if err != nil {
		return err
	}
	epp, err := DiscoverEppWriter()
	if err != nil {
		m.logger.Warn("failed to probe EPP writer", "error", err)
	}

	platformCfg, err := configstore.NewHandle(platformStore(m.cfgDir))
	if err != nil {
		return err
	}

	m.platform = controller.NewPlatformController(attrs, devices, platformCfg, m.bus, epp)
	if err := m.bus.Publish(controller.PlatformBusPath, controller.PlatformIface, &platformBusObject{m.platform}); err != nil {
		return err
	}
	m.bridge.Register(m.platform.Hooks())

	charge, err := DiscoverChargeAttr()
	if err != nil {
		m.logger.Warn("failed to probe charge_control_end_threshold", "error", err)
	}
	mains, err := DiscoverMainsReader()
	if err != nil {
		m.logger.Warn("failed to probe mains power supply", "error", err)
	}
	powerCfg, err := configstore.NewHandle(&configstore.Store[models.PowerConfig]{Dir: m.cfgDir, FileName: "power.yaml", NewDefault: models.NewPowerConfig})
	if err != nil {
		return err
	}

	m.power = controller.NewPowerController(charge, mains, platformCfg, powerCfg, m.bus, m.bridge, clockutil.System)
	if err := m.bus.Publish(controller.PowerBusPath, controller.PowerIface, &powerBusObject{m.power}); err != nil {
		return err
	}
	m.bridge.Register(m.power.Hooks())

	m.platform.SetOnThrottlePolicyChanged(func(policy models.ThrottlePolicy) {
		if m.fan != nil {
			if err := m.fan.OnThrottlePolicyChanged(policy); err != nil {
				m.logger.Warn("failed to apply throttle-policy fan curves", "policy", policy, "error", err)
			}
		}
	})

	return nil
}

func (m *Manager) buildFanCurve() error {
	device, err := DiscoverFanCurveDevice()
	if err != nil {
		m.logger.Warn("failed to probe fan-curve hwmon node", "error", err)
	}
	if device == nil {
		return nil
	}
	cfg, err := configstore.NewHandle(&configstore.Store[models.FanCurveConfig]{Dir: m.cfgDir, FileName: "fancurve.yaml", NewDefault: models.NewFanCurveConfig})
	if err != nil {
		return err
	}
	fan, err := controller.NewFanCurveController(device, cfg, m.bus, m.platform)
	if err != nil {
		return err
	}
	m.fan = fan
	if err := m.bus.Publish(controller.FanCurveBusPath, controller.FanCurveIface, &fanCurveBusObject{m.fan}); err != nil {
		return err
	}
	m.bridge.Register(m.fan.Hooks())
	return nil
}

func (m *Manager) buildAura(t transport.Transport, productID string) error {
	support := m.ledDB.Match(m.dmi.BoardName, productID)
	path := AuraObjectPath(productID, 0, "")
	cfg, err := configstore.NewHandle(&configstore.Store[models.AuraConfig]{Dir: m.cfgDir, FileName: "aura.yaml", NewDefault: models.NewAuraConfig})
	if err != nil {
		return err
	}
	aura, err := controller.NewAuraController(path, &support, t, productID == "tuf", cfg, m.bus)
	if err != nil {
		return err
	}
	m.aura = aura
	m.auraPath = dbus.ObjectPath(path)
	if err := m.bus.Publish(m.auraPath, controller.AuraIface, &auraBusObject{m.aura}); err != nil {
		return err
	}
	m.bridge.Register(m.aura.Hooks())
	return nil
}

func (m *Manager) buildAnime(t transport.Transport) error {
	cfg, err := configstore.NewHandle(&configstore.Store[models.AnimeConfig]{
		Dir:        m.cfgDir,
		FileName:   "anime.yaml",
		NewDefault: models.NewAnimeConfig,
		Legacy:     []configstore.LegacyStep[models.AnimeConfig]{models.UpgradeAnimeConfigV460},
	})
	if err != nil {
		return err
	}
	engine := animengine.New(clockutil.System)
	anime, err := controller.NewAniMeController(t, cfg, m.bus, engine)
	if err != nil {
		return err
	}
	m.anime = anime
	if err := m.bus.Publish(controller.AnimeBusPath, controller.AnimeIface, &animeBusObject{m.anime}); err != nil {
		return err
	}
	m.bridge.Register(m.anime.Hooks())
	return nil
}

func (m *Manager) buildSlash(t transport.Transport) error {
	cfg, err := configstore.NewHandle(&configstore.Store[models.SlashConfig]{Dir: m.cfgDir, FileName: "slash.yaml", NewDefault: models.NewSlashConfig})
	if err != nil {
		return err
	}
	slash, err := controller.NewSlashController(t, cfg, m.bus)
	if err != nil {
		return err
	}
	m.slash = slash
	if err := m.bus.Publish(controller.SlashBusPath, controller.SlashIface, &slashBusObject{m.slash}); err != nil {
		return err
	}
	m.bridge.Register(m.slash.Hooks())
	return nil
}

func (m *Manager) buildScsi(t transport.Transport) error {
	cfg, err := configstore.NewHandle(&configstore.Store[models.ScsiConfig]{Dir: m.cfgDir, FileName: "scsi.yaml", NewDefault: models.NewScsiConfig})
	if err != nil {
		return err
	}
	scsiCtl, err := controller.NewScsiController(t, cfg, m.bus)
	if err != nil {
		return err
	}
	m.scsi = scsiCtl
	if err := m.bus.Publish(controller.ScsiBusPath, controller.ScsiIface, &scsiBusObject{m.scsi}); err != nil {
		return err
	}
	m.bridge.Register(m.scsi.Hooks())
	return nil
}

// Run starts every background loop (bridge signal dispatch, AC/lid polling,
// power AC polling, and Aura hidraw hotplug) and blocks until ctx is
// cancelled or one of them fails unrecoverably.
func (m *Manager) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- m.bridge.Run(ctx) }()
	go m.bridge.StartPolling(ctx)
	go m.power.StartPolling(ctx)
	go m.watchAuraHotplug(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// watchAuraHotplug reacts to hidraw add/remove events for the known Aura
// product-id set, constructing or retracting the keyboard controller
// (spec.md §4.4.8, §8 scenario 6). Anime/Slash/Scsi devices are treated as
// present for the daemon's lifetime, matching spec.md's hotplug text, which
// names only the hidraw/keyboard path.
func (m *Manager) watchAuraHotplug(ctx context.Context) {
	events, err := WatchHidraw(ctx, m.logger)
	if err != nil {
		m.logger.Error("failed to start hidraw hotplug watcher", "error", err)
		return
	}
	for ev := range events {
		if !isKnownAuraProductID(ev.ProductID) {
			continue
		}
		switch ev.Action {
		case HotplugAdd:
			if m.aura != nil {
				continue
			}
			if err := m.hotplugAddAura(ev.ProductID); err != nil {
				m.logger.Error("failed to construct Aura controller on hotplug add", "productID", ev.ProductID, "error", err)
			}
		case HotplugRemove:
			if m.aura == nil {
				continue
			}
			m.hotplugRemoveAura()
		}
	}
}

func isKnownAuraProductID(id string) bool {
	for _, p := range AuraProductIDs {
		if p == id {
			return true
		}
	}
	return false
}

func (m *Manager) hotplugAddAura(productID string) error {
	t, err := hidraw.Find(productID)
	if err != nil {
		return err
	}
	return m.buildAura(t, productID)
}

func (m *Manager) hotplugRemoveAura() {
	if err := m.bus.Retract(m.auraPath); err != nil {
		m.logger.Warn("failed to retract Aura bus object", "path", m.auraPath, "error", err)
	}
	m.aura = nil
	m.auraPath = ""
}

// Close releases the bus connection.
func (m *Manager) Close() error {
	return m.bus.Close()
}

// Summary reports which device classes were found and published, keyed by
// bus object path. Used by cmd/asusd's check-config verb to report what a
// run would do without starting any background loop.
func (m *Manager) Summary() map[string]bool {
	return map[string]bool{
		string(controller.PlatformBusPath): m.platform != nil,
		string(controller.PowerBusPath):    m.power != nil,
		string(controller.FanCurveBusPath): m.fan != nil,
		string(m.auraPath):                 m.aura != nil,
		string(controller.AnimeBusPath):    m.anime != nil,
		string(controller.SlashBusPath):    m.slash != nil,
		string(controller.ScsiBusPath):     m.scsi != nil,
	}
}
