// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package shutil provides shell-quoting helpers, adapted from the teacher's
// shutil package. PowerController uses Split to tokenize the configured
// AC/battery hook command into the argument slice it passes to
// exec.Command; the command is never run through a shell.
package shutil

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	leadingSafeChars  = `-\w@%+:,./`
	trailingSafeChars = leadingSafeChars + "="
)

var safeRE = regexp.MustCompile(fmt.Sprintf("^[%s][%s]*$", leadingSafeChars, trailingSafeChars))

// Escape escapes a string so it can be safely included as an argument in a
// shell command line. The string is not modified if it can already be
// safely included.
func Escape(s string) string {
	if safeRE.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// EscapeSlice joins args into a shell command line with each argument
// escaped. Used only for display; see package doc.
func EscapeSlice(args []string) string {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = Escape(arg)
	}
	return strings.Join(escaped, " ")
}

// Split tokenizes a configured command string on whitespace. Unlike a real
// shell it does not interpret quoting, matching spec.md §4.4.6's
// "space-tokenised command string" description of the ac_command /
// bat_command config fields.
func Split(cmd string) []string {
	return strings.Fields(cmd)
}
