// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/rogdaemon/asusd-go/internal/discover"
)

// runCmd implements subcommands.Command to run the daemon in the
// foreground, the asusd analogue of the teacher's runCmd
// (cmd/tast/internal/run) but with no test bundle to build or results to
// write: this verb just probes hardware, publishes controllers, and serves
// until a signal arrives.
type runCmd struct {
	cfgDir  string
	verbose bool
}

var _ = subcommands.Command(&runCmd{})

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "probe hardware and serve the ASUS peripheral D-Bus API" }
func (*runCmd) Usage() string {
	return `Usage: run [flags]

Probes every supported ASUS ROG peripheral (Aura keyboard, AniMe matrix,
Slash bar, SCSI disk LED, fan-curve hwmon node, platform firmware
attributes, charge threshold/EPP), publishes a D-Bus object per device
class actually found under org.asus.*, and serves until SIGINT/SIGTERM.

Flag:
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cfgDir, "config-dir", defaultConfigDir, "directory holding per-subsystem YAML config files")
	f.BoolVar(&c.verbose, "verbose", false, "enable debug logging")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger(c.verbose)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := discover.New(ctx, logger, c.cfgDir)
	if err != nil {
		logger.Error("failed to initialize device manager", "error", err)
		return subcommands.ExitFailure
	}
	defer m.Close()

	logger.Info("asusd starting", "devices", m.Summary())

	if err := m.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("daemon exited unexpectedly", "error", err)
		return subcommands.ExitFailure
	}
	logger.Info("asusd shutting down")
	return subcommands.ExitSuccess
}
