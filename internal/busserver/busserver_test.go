// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package busserver

import (
	"testing"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

func TestAsDBusErrorCollapsesEveryKindToFailed(t *testing.T) {
	errs := []error{
		&rogerrors.NotSupportedError{What: "panel_od"},
		&rogerrors.ChargeLimitError{Value: 5},
		rogerrors.Wrap(&rogerrors.PlatformError{Cause: rogerrors.New("boom")}, "writing attribute"),
	}
	for _, err := range errs {
		dbusErr := AsDBusError(err)
		if dbusErr == nil {
			t.Fatalf("AsDBusError(%v) = nil", err)
		}
		if dbusErr.Name != "org.asus.AsusdGo.Failed" {
			t.Errorf("AsDBusError(%v).Name = %q, want org.asus.AsusdGo.Failed", err, dbusErr.Name)
		}
	}
}

func TestAsDBusErrorNilIsNil(t *testing.T) {
	if err := AsDBusError(nil); err != nil {
		t.Errorf("AsDBusError(nil) = %v, want nil", err)
	}
}
