// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package configstore

import "sync"

// Handle wraps a Store with the mutual-exclusion contract spec.md §4.3 and
// §5 require of every controller mutation: acquire the config lock, refresh
// from disk, mutate, write back, release. Controllers hold one Handle per
// config file; the lock-ordering rule (config lock acquired before any
// device lock) is maintained by callers never calling Do from
// inside a device transport's critical section.
type Handle[T any] struct {
	store *Store[T]

	mu  sync.Mutex
	cur *T
}

// NewHandle loads the config file once and wraps it in a Handle.
func NewHandle[T any](store *Store[T]) (*Handle[T], error) {
	v, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Handle[T]{store: store, cur: v}, nil
}

// Get returns a snapshot of the in-memory config without touching disk.
// The value is a shallow copy: maps and slices inside it are shared with
// the handle, so use Do for anything that mutates state.
func (h *Handle[T]) Get() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.cur
}

// Do runs fn with exclusive access to the config: it re-reads the file from
// disk first (so a concurrent external edit isn't clobbered), calls fn to
// mutate the in-memory value, then writes the result back. If fn returns an
// error the in-memory value is left at its pre-call state and nothing is
// written.
func (h *Handle[T]) Do(fn func(cfg *T) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var fresh T
	if err := h.store.Read(&fresh); err == nil {
		h.cur = &fresh
	}

	working := *h.cur
	if err := fn(&working); err != nil {
		return err
	}
	if err := h.store.Write(&working); err != nil {
		return err
	}
	h.cur = &working
	return nil
}
