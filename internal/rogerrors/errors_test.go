// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package rogerrors

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
)

func check(t *testing.T, err error, msg string, traceRegexp *regexp.Regexp) {
	t.Helper()
	if s := err.Error(); s != msg {
		t.Errorf("Error() = %q; want %q", s, msg)
	}
	if s := fmt.Sprintf("%v", err); s != msg {
		t.Errorf("%%v = %q; want %q", s, msg)
	}
	if tr := fmt.Sprintf("%+v", err); !traceRegexp.MatchString(tr) {
		t.Errorf("%%+v = %q; want match of %q", tr, traceRegexp)
	}
}

func TestNew(t *testing.T) {
	const msg = "meow"
	re := regexp.MustCompile(`^meow\n\tat .*TestNew \(errors_test.go:\d+\)`)
	check(t, New(msg), msg, re)
}

func TestErrorf(t *testing.T) {
	const msg = "meow"
	re := regexp.MustCompile(`^meow\n\tat .*TestErrorf \(errors_test.go:\d+\)`)
	check(t, Errorf("%sow", "me"), msg, re)
}

func TestWrap(t *testing.T) {
	const msg = "meow: woof"
	re := regexp.MustCompile(`(?s)^meow\n\tat .*TestWrap.*woof\n\tat .*TestWrap`)
	check(t, Wrap(New("woof"), "meow"), msg, re)
}

func TestKindIsMatchesAcrossPayloads(t *testing.T) {
	err := Wrap(&ChargeLimitError{Value: 19}, "rejected charge limit")
	if !errors.Is(err, &ChargeLimitError{}) {
		t.Errorf("errors.Is did not match ChargeLimitError kind regardless of Value payload")
	}
	if errors.Is(err, &NotSupportedError{}) {
		t.Errorf("errors.Is incorrectly matched an unrelated kind")
	}
}

func TestIoErrorUnwrapsToCause(t *testing.T) {
	sentinel := errors.New("enoent")
	err := Wrap(&IoError{Path: "/dev/hidraw0", Cause: sentinel}, "opening device")
	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is did not find wrapped sentinel through IoError")
	}
}
