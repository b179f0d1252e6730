// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import "strings"

// cleanBaseName validates one requested or parsed base name.
//
// A base name is a single path element that cannot carry variant segments.
func cleanBaseName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidBaseName
	}

	if strings.ContainsAny(name, `/\:`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidBaseName
	}

	return name, nil
}

// asciiLower converts only ASCII A-Z to a-z and leaves all other bytes unchanged.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}

			return string(b)
		}
	}

	return s
}
