// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package discover

import "fmt"

// Known USB product-id sets, grounded on
// original_source/asus-nb-ctrl/src/laptops.rs's LAPTOP_DEVICES list and
// original_source/rog-anime/src/usb.rs's "currently known USB device is
// 19b6" note (the Aura keyboard and AniMe matrix share the N-Key Device
// product id on current hardware; the sets are kept distinct here since
// spec.md treats them as independently discoverable device classes).
var (
	AuraProductIDs = []string{"1854", "1866", "1869", "19b6"}
	AnimeProductIDs = []string{"19b6"}
	SlashProductIDs = []string{"1854"}
)

// AuraObjectPath builds the deterministic per-keyboard bus path spec.md
// §4.4.8 requires: "…/Aura/<prodid>_<devnum>_<devpath>", falling back to
// shorter prefixes when devnum/devpath are unknown (e.g. for a sysfs-only
// match with no USB devnum, such as the TUF keyboard's LED-class-only
// path).
func AuraObjectPath(productID string, devnum int, devpath string) string {
	switch {
	case devnum == 0 && devpath == "":
		return fmt.Sprintf("/org/asus/Aura/%s", sanitize(productID))
	case devpath == "":
		return fmt.Sprintf("/org/asus/Aura/%s_%d", sanitize(productID), devnum)
	default:
		return fmt.Sprintf("/org/asus/Aura/%s_%d_%s", sanitize(productID), devnum, sanitize(devpath))
	}
}

// sanitize replaces path-unsafe characters so the constructed string is a
// legal single D-Bus object-path segment ([A-Za-z0-9_]).
func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
