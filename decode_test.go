// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	var fromJSON, fromYAML map[string]string
	if err := Decode(".JSON", []byte(`{"a":"b"}`), &fromJSON); err != nil || fromJSON["a"] != "b" {
		t.Fatalf("Decode(json)=%v err=%v", fromJSON, err)
	}

	if err := Decode(".yml", []byte("a: b\n"), &fromYAML); err != nil || fromYAML["a"] != "b" {
		t.Fatalf("Decode(yml)=%v err=%v", fromYAML, err)
	}

	var out map[string]string
	if err := Decode(".yaml", []byte("a: [\n"), &out); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("Decode(bad yaml) err=%v, want ErrInvalidContent", err)
	}

	if err := Decode(".toml", []byte("a = 1"), &out); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Decode(toml) err=%v, want ErrUnsupportedFormat", err)
	}
}
