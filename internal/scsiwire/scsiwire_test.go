// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package scsiwire

import (
	"testing"

	"github.com/rogdaemon/asusd-go/internal/models"
)

func TestTaskListStaticOmitsSpeedAndDirection(t *testing.T) {
	e := models.ScsiEffect{Mode: models.AuraModeStatic, Colours: [4]models.Colour{{R: 1}, {G: 2}, {B: 3}, {}}}
	tasks := TaskList(e)

	// set-mode, 4x rgb, apply, save = 7 tasks (no speed, no direction).
	if len(tasks) != 7 {
		t.Fatalf("len(tasks) = %d, want 7, tasks=%v", len(tasks), tasks)
	}
	if tasks[0][0] != byte(OpSetMode) {
		t.Errorf("tasks[0] opcode = %x, want OpSetMode", tasks[0][0])
	}
	last := tasks[len(tasks)-1]
	if last[0] != byte(OpSave) {
		t.Errorf("last task opcode = %x, want OpSave", last[0])
	}
}

func TestTaskListRainbowIncludesSpeedAndDirection(t *testing.T) {
	e := models.ScsiEffect{
		Mode:      models.AuraModeRainbow,
		Speed:     models.ScsiSpeedFast,
		Direction: models.ScsiDirectionReverse,
	}
	tasks := TaskList(e)

	// set-mode, 4x rgb, speed, direction, apply, save = 9 tasks.
	if len(tasks) != 9 {
		t.Fatalf("len(tasks) = %d, want 9", len(tasks))
	}
	speedTask := tasks[5]
	if speedTask[0] != byte(OpSetSpeed) || speedTask[1] != byte(models.ScsiSpeedFast) {
		t.Errorf("speed task = %v, want [OpSetSpeed, ScsiSpeedFast]", speedTask)
	}
	dirTask := tasks[6]
	if dirTask[0] != byte(OpSetDir) || dirTask[1] != byte(models.ScsiDirectionReverse) {
		t.Errorf("direction task = %v, want [OpSetDir, ScsiDirectionReverse]", dirTask)
	}
}
