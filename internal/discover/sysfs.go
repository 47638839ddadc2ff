// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package discover

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rogdaemon/asusd-go/internal/controller"
	"github.com/rogdaemon/asusd-go/internal/models"
	"github.com/rogdaemon/asusd-go/internal/rogerrors"
	"github.com/rogdaemon/asusd-go/internal/transport/efivars"
	"github.com/rogdaemon/asusd-go/internal/transport/sysfsattr"
)

// Kernel surfaces named verbatim in spec.md §6.
const (
	firmwareAttributesGlob = "/sys/class/firmware-attributes/asus-armoury/attributes/*"
	asusNbWmiGlob          = "/sys/devices/platform/asus-nb-wmi/*"
	powerSupplyGlob        = "/sys/class/power_supply/*"
	hwmonGlob              = "/sys/class/hwmon/hwmon*"
	fanCurveHwmonName      = "asus_custom_fan_curve"
	cpufreqPolicyGlob      = "/sys/devices/system/cpu/cpufreq/policy*"
)

// DiscoverFirmwareAttributes scans every directory under the
// asus-armoury firmware-attributes tree and builds the generic
// get/set/domain surface PlatformController needs. A board with no
// firmware-attributes driver loaded yields two empty, non-nil maps rather
// than an error.
func DiscoverFirmwareAttributes() (map[string]*models.Attribute, map[string]controller.AttributeDevice, error) {
	attrs := map[string]*models.Attribute{}
	devices := map[string]controller.AttributeDevice{}

	dirs, err := globPaths(firmwareAttributesGlob)
	if err != nil {
		return nil, nil, rogerrors.Wrap(err, "globbing firmware-attributes tree")
	}
	for _, dir := range dirs {
		name := filepath.Base(dir)
		t, err := sysfsattr.Open(dir)
		if err != nil {
			continue
		}
		attr, err := readAttribute(t, name)
		if err != nil {
			continue
		}
		attrs[name] = attr
		devices[name] = t
	}

	if _, ok := attrs[models.AttrBootSound]; !ok {
		if attr, dev, ok := discoverBootSoundFallback(); ok {
			attrs[models.AttrBootSound] = attr
			devices[models.AttrBootSound] = dev
		}
	}

	return attrs, devices, nil
}

// discoverBootSoundFallback binds boot_sound to the AsusPostLogoSound EFI
// variable when the asus-armoury firmware-attributes driver doesn't expose
// it as a sysfs node (spec.md §6). Absence of the variable itself (most
// boards) is not an error: ok is false and the caller leaves boot_sound
// unpublished, same as any other unsupported attribute.
func discoverBootSoundFallback() (*models.Attribute, controller.AttributeDevice, bool) {
	t, err := efivars.Open(efivars.PostLogoSoundPath)
	if err != nil {
		return nil, nil, false
	}
	current, err := t.ReadInt(models.AttrBootSound)
	if err != nil {
		return nil, nil, false
	}
	attr := &models.Attribute{
		Name:        models.AttrBootSound,
		DisplayName: "POST boot sound",
		Current:     current,
		Default:     1,
		Domain:      models.AttributeDomain{Kind: models.DomainEnumerated, PossibleValues: []int64{0, 1}},
	}
	return attr, t, true
}

func readAttribute(t *sysfsattr.Transport, name string) (*models.Attribute, error) {
	current, err := t.ReadInt("current_value")
	if err != nil {
		return nil, err
	}
	def, err := t.ReadInt("default_value")
	if err != nil {
		def = current
	}
	displayName, err := t.ReadAttr("display_name")
	if err != nil {
		displayName = name
	}

	domain, err := readEnumeratedDomain(t)
	if err != nil {
		domain, err = readRangeDomain(t)
		if err != nil {
			// Neither possible_values nor min/max is present: treat the
			// attribute as a two-state toggle around its current value,
			// the most conservative domain that still accepts a reload of
			// the already-persisted value.
			domain = models.AttributeDomain{Kind: models.DomainEnumerated, PossibleValues: []int64{0, 1, current}}
		}
	}

	return &models.Attribute{Name: name, DisplayName: displayName, Current: current, Default: def, Domain: domain}, nil
}

func readEnumeratedDomain(t *sysfsattr.Transport) (models.AttributeDomain, error) {
	raw, err := t.ReadAttr("possible_values")
	if err != nil {
		return models.AttributeDomain{}, err
	}
	var values []int64
	for _, f := range strings.Fields(raw) {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return models.AttributeDomain{}, &rogerrors.ParseError{What: "possible_values"}
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return models.AttributeDomain{}, &rogerrors.ParseError{What: "possible_values"}
	}
	return models.AttributeDomain{Kind: models.DomainEnumerated, PossibleValues: values}, nil
}

func readRangeDomain(t *sysfsattr.Transport) (models.AttributeDomain, error) {
	min, err := t.ReadInt("min_value")
	if err != nil {
		return models.AttributeDomain{}, err
	}
	max, err := t.ReadInt("max_value")
	if err != nil {
		return models.AttributeDomain{}, err
	}
	step, err := t.ReadInt("scalar_increment")
	if err != nil {
		step = 1
	}
	return models.AttributeDomain{Kind: models.DomainRange, Min: min, Max: max, Step: step}, nil
}

// DiscoverChargeAttr locates the legacy asus-nb-wmi charge_control_end_threshold
// node and binds a ChargeAttr to its containing directory. Returns nil, nil
// if the board exposes no such attribute.
func DiscoverChargeAttr() (controller.ChargeAttr, error) {
	dir, err := findParentContaining(asusNbWmiGlob, "charge_control_end_threshold")
	if err != nil || dir == "" {
		return nil, nil
	}
	t, err := sysfsattr.Open(dir)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DiscoverMainsReader locates the AC power_supply node (the one whose type
// file reads "Mains") and binds a MainsReader to it. Returns nil, nil if no
// Mains-type power supply is present.
func DiscoverMainsReader() (controller.MainsReader, error) {
	dirs, err := globPaths(powerSupplyGlob)
	if err != nil {
		return nil, rogerrors.Wrap(err, "globbing power_supply tree")
	}
	for _, dir := range dirs {
		kind, err := readTrimmed(filepath.Join(dir, "type"))
		if err != nil || !strings.EqualFold(kind, "Mains") {
			continue
		}
		t, err := sysfsattr.Open(dir)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, nil
}

// DiscoverEppWriter locates the first cpufreq policy directory exposing
// energy_performance_preference. Returns nil, nil if the CPU driver isn't
// loaded (e.g. under a non-Intel/AMD EPP-capable governor).
func DiscoverEppWriter() (controller.EppWriter, error) {
	dir, err := findParentContaining(cpufreqPolicyGlob, "energy_performance_preference")
	if err != nil || dir == "" {
		return nil, nil
	}
	t, err := sysfsattr.Open(dir)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DiscoverFanCurveDevice scans hwmon for the node whose name file reads
// "asus_custom_fan_curve" (spec.md §6) and binds a FanCurveDevice to it.
// Returns nil, nil if no such hwmon node is present.
func DiscoverFanCurveDevice() (controller.FanCurveDevice, error) {
	dirs, err := globPaths(hwmonGlob)
	if err != nil {
		return nil, rogerrors.Wrap(err, "globbing hwmon tree")
	}
	for _, dir := range dirs {
		name, err := readTrimmed(filepath.Join(dir, "name"))
		if err != nil || name != fanCurveHwmonName {
			continue
		}
		t, err := sysfsattr.Open(dir)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, nil
}

// findParentContaining globs dirGlob for directories containing a file
// named file, returning the first match's directory.
func findParentContaining(dirGlob, file string) (string, error) {
	dirs, err := globPaths(dirGlob)
	if err != nil {
		return "", err
	}
	for _, dir := range dirs {
		if pathExists(filepath.Join(dir, file)) {
			return dir, nil
		}
	}
	return "", nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
