// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package scsiwire builds the SCSI vendor passthrough task list spec.md
// §4.2 describes for the external-disk LED: set-mode, four RGB tasks,
// optional speed, optional direction, apply, save. Grounded on
// original_source/rog-scsi/src/builtin_modes.rs's task-list construction.
package scsiwire

import "github.com/rogdaemon/asusd-go/internal/models"

// TaskOpcode is the vendor passthrough command's first CDB byte selecting
// the task kind.
type TaskOpcode byte

const (
	OpSetMode  TaskOpcode = 0xd1
	OpSetRGB   TaskOpcode = 0xd2
	OpSetSpeed TaskOpcode = 0xd3
	OpSetDir   TaskOpcode = 0xd4
	OpApply    TaskOpcode = 0xd5
	OpSave     TaskOpcode = 0xd6
)

// directionModes is the set of modes that carry a direction (spec.md §4.2:
// "only direction-bearing modes emit a direction task"); grounded on
// original_source/rog-scsi/src/builtin_modes.rs naming Rainbow and Comet as
// the directional SCSI effects.
var directionModes = map[models.AuraMode]bool{
	models.AuraModeRainbow: true,
	models.AuraModeComet:   true,
}

// noSpeedModes is the set of modes that omit the speed task (spec.md §4.2:
// "Off and Static modes omit the speed task").
var noSpeedModes = map[models.AuraMode]bool{
	models.AuraModeStatic: true,
}

// TaskList builds the ordered CDB sequence for one ScsiEffect.
func TaskList(e models.ScsiEffect) [][]byte {
	tasks := [][]byte{{byte(OpSetMode), byte(e.Mode)}}
	for i, c := range e.Colours {
		tasks = append(tasks, []byte{byte(OpSetRGB), byte(i), c.R, c.G, c.B})
	}
	if !noSpeedModes[e.Mode] {
		tasks = append(tasks, []byte{byte(OpSetSpeed), byte(e.Speed)})
	}
	if directionModes[e.Mode] {
		tasks = append(tasks, []byte{byte(OpSetDir), byte(e.Direction)})
	}
	tasks = append(tasks, []byte{byte(OpApply)})
	tasks = append(tasks, []byte{byte(OpSave)})
	return tasks
}
