// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package shutil

import "testing"

func TestEscape(t *testing.T) {
	for _, c := range []struct{ in, want string }{
		{"foo", "foo"},
		{"foo.bar-baz_qux", "foo.bar-baz_qux"},
		{"/usr/bin/systemctl", "/usr/bin/systemctl"},
		{"", "''"},
		{"foo bar", "'foo bar'"},
		{"it's", `'it'"'"'s'`},
	} {
		if got := Escape(c.in); got != c.want {
			t.Errorf("Escape(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscapeSlice(t *testing.T) {
	got := EscapeSlice([]string{"systemctl", "start", "nvidia-powerd.service"})
	want := "systemctl start nvidia-powerd.service"
	if got != want {
		t.Errorf("EscapeSlice = %q, want %q", got, want)
	}
}

func TestSplit(t *testing.T) {
	got := Split("  /usr/bin/foo  --bar  baz ")
	want := []string{"/usr/bin/foo", "--bar", "baz"}
	if len(got) != len(want) {
		t.Fatalf("Split returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Split[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
