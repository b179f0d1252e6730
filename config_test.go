// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOptionsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "variants.yaml")
	writeFile(t, path, `base_dir: locales
extensions: [yaml, json]
allowed_variants:
  lang: [en, es]
  form: [formal, casual]
preload: true
cache: false
watch: true
watch_debounce: 50ms
`)

	opts, err := LoadOptionsFile(path)
	if err != nil {
		t.Fatalf("LoadOptionsFile: %v", err)
	}

	if opts.BaseDir != filepath.Join(dir, "locales") {
		t.Fatalf("BaseDir=%q", opts.BaseDir)
	}

	if len(opts.Extensions) != 2 || opts.Extensions[0] != "yaml" {
		t.Fatalf("Extensions=%v", opts.Extensions)
	}

	if opts.AllowedVariants.IsPermissive() || !opts.AllowedVariants.Allowed(DimForm, "casual") {
		t.Fatalf("AllowedVariants=%v", opts.AllowedVariants.toMap())
	}

	if !opts.Preload || !opts.DisableCache || !opts.Watch || opts.WatchDebounce != 50*time.Millisecond {
		t.Fatalf("opts=%+v", opts)
	}
}

func TestParseOptionsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := ParseOptions([]byte(`{"base_dir": "/srv/i18n", "allowed_variants": true}`))
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}

	if opts.BaseDir != "/srv/i18n" || !opts.AllowedVariants.IsPermissive() || opts.DisableCache || opts.Preload {
		t.Fatalf("opts=%+v", opts)
	}
}

func TestParseOptionsErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"allowed_variants: false\n":                 ErrInvalidAllowedVariants,
		"allowed_variants: {lang: [es], form: [es]}": ErrInvalidAllowedVariants,
		"watch_debounce: soon\n":                    ErrInvalidOptions,
	}

	for src, want := range cases {
		if _, err := ParseOptions([]byte(src)); !errors.Is(err, want) {
			t.Fatalf("ParseOptions(%q) err=%v, want %v", src, err, want)
		}
	}

	if _, err := LoadOptionsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadOptionsFile(missing) err=nil")
	}
}
