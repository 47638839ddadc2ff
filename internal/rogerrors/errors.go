// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package rogerrors provides the error kinds used throughout the daemon and
// a stack-capturing wrapper used to construct and chain them.
//
// Always construct errors with this package's New/Errorf/Wrap/Wrapf rather
// than the standard library's errors.New/fmt.Errorf: callers that need to
// classify an error (to decide whether it is safe to retry, or which D-Bus
// error name to report) use errors.Is against the Kind sentinels below, which
// only works if the chain is built with Wrap so causes stay reachable via
// Unwrap.
//
//	if err := dev.WriteBytes(pkt); err != nil {
//		if errors.Is(err, &rogerrors.NotSupportedError{}) {
//			return nil // capability absent, not a failure
//		}
//		return rogerrors.Wrap(err, "writing effect packet")
//	}
package rogerrors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rogdaemon/asusd-go/internal/rogerrors/stack"
)

// E is the error implementation used by this package.
type E struct {
	msg   string
	stk   stack.Stack
	cause error
}

func (e *E) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *E) Unwrap() error {
	return e.cause
}

type unwrapper interface {
	unwrap() (msg string, stk stack.Stack, cause error)
}

func (e *E) unwrap() (string, stack.Stack, error) {
	return e.msg, e.stk, e.cause
}

func formatChain(err error) string {
	var chain []string
	for err != nil {
		if e, ok := err.(unwrapper); ok {
			msg, stk, cause := e.unwrap()
			chain = append(chain, fmt.Sprintf("%s\n%v", msg, stk))
			err = cause
		} else {
			chain = append(chain, fmt.Sprintf("%+v", err))
			err = nil
		}
	}
	return strings.Join(chain, "\n")
}

// Format implements fmt.Formatter; "%+v" prints the full chain with stacks.
func (e *E) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, formatChain(e))
		return
	}
	io.WriteString(s, e.Error())
}

// New creates a new error with the given message, recording the call site.
func New(msg string) *E {
	return &E{msg, stack.New(1), nil}
}

// Errorf creates a new error with a formatted message.
func Errorf(format string, args ...interface{}) *E {
	return &E{fmt.Sprintf(format, args...), stack.New(1), nil}
}

// Wrap creates a new error with msg, wrapping cause. If cause is nil this is
// equivalent to New.
func Wrap(cause error, msg string) *E {
	return &E{msg, stack.New(1), cause}
}

// Wrapf creates a new error with a formatted message, wrapping cause.
func Wrapf(cause error, format string, args ...interface{}) *E {
	return &E{fmt.Sprintf(format, args...), stack.New(1), cause}
}

// Is, As and Unwrap re-export the standard library so callers need only
// import this package.
func Is(err, target error) bool   { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
func Unwrap(err error) error      { return errors.Unwrap(err) }

// --- Error kinds (spec.md §7) ---
//
// Each kind is a distinct type so callers can test for it with errors.Is
// against a zero-valued pointer, e.g. errors.Is(err, &NotFoundError{}),
// regardless of any payload carried on the concrete instance that was
// actually returned.

// NotSupportedError reports that a capability or attribute is absent on this
// device or kernel.
type NotSupportedError struct{ What string }

func (e *NotSupportedError) Error() string {
	if e.What == "" {
		return "not supported"
	}
	return fmt.Sprintf("not supported: %s", e.What)
}
func (e *NotSupportedError) Is(target error) bool { _, ok := target.(*NotSupportedError); return ok }

// NotFoundError reports that a previously-known device has gone away.
type NotFoundError struct{ What string }

func (e *NotFoundError) Error() string {
	if e.What == "" {
		return "not found"
	}
	return fmt.Sprintf("not found: %s", e.What)
}
func (e *NotFoundError) Is(target error) bool { _, ok := target.(*NotFoundError); return ok }

// ParseError reports a config/colour/wire-format parse failure.
type ParseError struct{ What string }

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %s", e.What) }
func (e *ParseError) Is(target error) bool { _, ok := target.(*ParseError); return ok }

// IoError wraps a failed filesystem or device operation on Path.
type IoError struct {
	Path  string
	Cause error
}

func (e *IoError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("io error: %s", e.Path)
	}
	return fmt.Sprintf("io error: %s: %v", e.Path, e.Cause)
}
func (e *IoError) Unwrap() error      { return e.Cause }
func (e *IoError) Is(target error) bool { _, ok := target.(*IoError); return ok }

// UdevError wraps a failure enumerating or matching udev/hidraw devices.
type UdevError struct{ Cause error }

func (e *UdevError) Error() string        { return fmt.Sprintf("udev error: %v", e.Cause) }
func (e *UdevError) Unwrap() error        { return e.Cause }
func (e *UdevError) Is(target error) bool { _, ok := target.(*UdevError); return ok }

// PlatformError wraps a failure reading or writing a firmware-attribute
// sysfs node.
type PlatformError struct{ Cause error }

func (e *PlatformError) Error() string        { return fmt.Sprintf("platform error: %v", e.Cause) }
func (e *PlatformError) Unwrap() error        { return e.Cause }
func (e *PlatformError) Is(target error) bool { _, ok := target.(*PlatformError); return ok }

// ProfileError wraps a failure in the fan-curve/throttle-policy subsystem.
type ProfileError struct{ Cause error }

func (e *ProfileError) Error() string        { return fmt.Sprintf("profile error: %v", e.Cause) }
func (e *ProfileError) Unwrap() error        { return e.Cause }
func (e *ProfileError) Is(target error) bool { _, ok := target.(*ProfileError); return ok }

// AnimeError wraps a failure specific to the AniMe matrix display.
type AnimeError struct{ Cause error }

func (e *AnimeError) Error() string        { return fmt.Sprintf("anime error: %v", e.Cause) }
func (e *AnimeError) Unwrap() error        { return e.Cause }
func (e *AnimeError) Is(target error) bool { _, ok := target.(*AnimeError); return ok }

// SlashError wraps a failure specific to the Slash LED bar.
type SlashError struct{ Cause error }

func (e *SlashError) Error() string        { return fmt.Sprintf("slash error: %v", e.Cause) }
func (e *SlashError) Unwrap() error        { return e.Cause }
func (e *SlashError) Is(target error) bool { _, ok := target.(*SlashError); return ok }

// ChargeLimitError reports an out-of-range charge_control_end_threshold.
type ChargeLimitError struct{ Value int }

func (e *ChargeLimitError) Error() string {
	return fmt.Sprintf("charge limit %d is out of range 20..=100", e.Value)
}
func (e *ChargeLimitError) Is(target error) bool { _, ok := target.(*ChargeLimitError); return ok }

// NoAuraKeyboardError reports that no Aura-capable keyboard was discovered.
type NoAuraKeyboardError struct{}

func (e *NoAuraKeyboardError) Error() string { return "no aura keyboard present" }
func (e *NoAuraKeyboardError) Is(target error) bool {
	_, ok := target.(*NoAuraKeyboardError)
	return ok
}

// AuraEffectNotSupportedError reports an AuraEffect whose mode or zone is not
// in the device's LedSupport lists.
type AuraEffectNotSupportedError struct{ Mode, Zone string }

func (e *AuraEffectNotSupportedError) Error() string {
	return fmt.Sprintf("aura effect not supported: mode=%s zone=%s", e.Mode, e.Zone)
}
func (e *AuraEffectNotSupportedError) Is(target error) bool {
	_, ok := target.(*AuraEffectNotSupportedError)
	return ok
}

// SystemdUnitActionError reports a failed start/stop of a systemd unit.
type SystemdUnitActionError struct{ Name string }

func (e *SystemdUnitActionError) Error() string {
	return fmt.Sprintf("systemd unit action failed: %s", e.Name)
}
func (e *SystemdUnitActionError) Is(target error) bool {
	_, ok := target.(*SystemdUnitActionError)
	return ok
}

// SystemdUnitWaitTimeoutError reports a timeout waiting for a unit to reach
// State.
type SystemdUnitWaitTimeoutError struct{ State string }

func (e *SystemdUnitWaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for systemd unit state %q", e.State)
}
func (e *SystemdUnitWaitTimeoutError) Is(target error) bool {
	_, ok := target.(*SystemdUnitWaitTimeoutError)
	return ok
}

// CommandError wraps a failed external command invocation.
type CommandError struct {
	Name  string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Name, e.Cause)
}
func (e *CommandError) Unwrap() error        { return e.Cause }
func (e *CommandError) Is(target error) bool { _, ok := target.(*CommandError); return ok }
