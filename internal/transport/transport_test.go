// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"golang.org/x/sys/unix"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryNone},
		{"ENOENT", unix.ENOENT, CategoryNotSupported},
		{"ENXIO", unix.ENXIO, CategoryNotSupported},
		{"EAGAIN", unix.EAGAIN, CategoryTransient},
		{"ENODEV", unix.ENODEV, CategoryTransient},
		{"EIO", unix.EIO, CategoryFatal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.err); got != c.want {
				t.Errorf("Classify(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestWriteWithRetrySucceedsFirstTry(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	calls := 0
	err := WriteWithRetry(context.Background(), fc, "test", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("WriteWithRetry returned %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("write called %d times, want 1", calls)
	}
}

func TestWriteWithRetryNotSupportedNeverRetries(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	calls := 0
	err := WriteWithRetry(context.Background(), fc, "test", func() error {
		calls++
		return unix.ENOENT
	})
	if calls != 1 {
		t.Errorf("write called %d times, want 1 (no retry on not-supported)", calls)
	}
	var nse *rogerrors.NotSupportedError
	if !errors.As(err, &nse) {
		t.Errorf("expected NotSupportedError, got %v", err)
	}
}

func TestWriteWithRetryTransientRetriesOnce(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- WriteWithRetry(context.Background(), fc, "test", func() error {
			calls++
			if calls == 1 {
				return unix.EAGAIN
			}
			return nil
		})
	}()

	for fc.WatcherCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	fc.Increment(retryBackoff)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WriteWithRetry returned %v, want nil after one retry", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for retry to complete")
	}
	if calls != 2 {
		t.Errorf("write called %d times, want 2", calls)
	}
}
