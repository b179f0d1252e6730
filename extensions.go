// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"fmt"
	"strings"
)

// defaultExtensions is used when Options.Extensions is empty.
var defaultExtensions = []string{".json"}

// normalizeExtensions converts an extension list to lower-case ".ext" form.
//
// Accepted extension forms:
//   - "json"
//   - ".json"
//   - "*.json"
//
// Empty values and repeats are skipped. Returned extensions preserve input
// order, which is the tie-break priority between candidates.
func normalizeExtensions(exts []string) ([]string, error) {
	out := make([]string, 0, len(exts))
	seen := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		ext = strings.TrimPrefix(ext, "*.")
		ext = strings.TrimLeft(ext, ".")
		ext = asciiLower(ext)
		if ext == "" {
			continue
		}

		if strings.ContainsAny(ext, `/\:*`) {
			return nil, fmt.Errorf("%w: extension %q", ErrInvalidOptions, ext)
		}

		ext = "." + ext
		if _, dup := seen[ext]; dup {
			continue
		}

		seen[ext] = struct{}{}
		out = append(out, ext)
	}

	if len(out) == 0 {
		out = append(out, defaultExtensions...)
	}

	return out, nil
}
