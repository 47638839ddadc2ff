// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rogdaemon/asusd-go/internal/discover"
)

// checkConfigCmd runs the same probe+build sequence as runCmd but exits
// immediately afterward instead of serving, the asusd equivalent of the
// teacher's "list" verb (cmd/tast's newListCmd). It is not a dry run:
// discovery constructs the controllers (each applies its persisted state to
// its device) and publishes their bus objects until the command exits; only
// the background polling and hotplug loops are not started. Useful as a
// systemd ExecStartPre or a packaging-time sanity check.
type checkConfigCmd struct {
	cfgDir string
}

var _ = subcommands.Command(&checkConfigCmd{})

func (*checkConfigCmd) Name() string { return "check-config" }
func (*checkConfigCmd) Synopsis() string {
	return "probe hardware, publish the detected device classes once, and report them"
}
func (*checkConfigCmd) Usage() string {
	return `Usage: check-config [flags]

Runs discovery once (which applies persisted state to the devices and
publishes their org.asus.* bus paths), prints those paths, then exits
without serving.

Flag:
`
}

func (c *checkConfigCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cfgDir, "config-dir", defaultConfigDir, "directory holding per-subsystem YAML config files")
}

func (c *checkConfigCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger(false)

	m, err := discover.New(ctx, logger, c.cfgDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return subcommands.ExitFailure
	}
	defer m.Close()

	for path, present := range m.Summary() {
		if path == "" {
			continue
		}
		fmt.Printf("%s\tpublished=%t\n", path, present)
	}
	return subcommands.ExitSuccess
}
