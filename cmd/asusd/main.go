// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package main implements the asusd executable, the privileged system-bus
// daemon managing ASUS ROG laptop peripherals (spec.md §1).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"
)

// Version is filled in at build time via -ldflags.
var Version = "<unknown>"

// defaultConfigDir is where every subsystem's YAML config lives
// (internal/configstore.Store.Dir), matching internal/discover/leddb.go's
// UserLedDBPath convention of /etc/asusd for host-writable state.
const defaultConfigDir = "/etc/asusd"

// newLogger mirrors the teacher's newLogger(verbose, logTime) shape
// (_examples/nya3jp-tast/.../cmd/tast/main.go) but targets log/slog, this
// repo's chosen structured-logging library (DESIGN.md's ambient-stack
// entry), rather than the teacher's own internal/logging wrapper.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

func doMain() int {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&checkConfigCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	flag.Parse()

	return int(subcommands.Execute(context.Background()))
}

func main() {
	os.Exit(doMain())
}

// versionCmd prints the build version and exits, the same shape as the
// teacher's top-level -version flag, split into its own verb here since
// every other asusd action is already a subcommand.
type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print asusd's version and exit" }
func (*versionCmd) Usage() string    { return "Usage: asusd version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("asusd version %s\n", Version)
	return subcommands.ExitSuccess
}
