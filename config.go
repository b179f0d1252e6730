// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultWatchDebounce delays refresh after the last filesystem event.
const defaultWatchDebounce = 300 * time.Millisecond

// Options configures a Loader.
type Options struct {
	// Source provides candidate files. When nil, BaseDir is used to build a DirSource.
	Source Source `json:"-" yaml:"-"`
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// BaseDir is the local directory scanned when Source is nil.
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
	// Extensions are accepted extensions; earlier entries win ties. Empty means ".json".
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	// AllowedVariants restricts trusted variant values. Zero value is permissive.
	AllowedVariants AllowedVariants `json:"allowed_variants" yaml:"allowed_variants"`
	// Preload scans eagerly in New instead of on first use.
	Preload bool `json:"preload,omitempty" yaml:"preload,omitempty"`
	// DisableCache turns off the resolution and content caches.
	DisableCache bool `json:"disable_cache,omitempty" yaml:"disable_cache,omitempty"`
	// Watch refreshes the index on filesystem changes. Requires a DirSource.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`
	// WatchDebounce delays refresh after the last event. Zero means 300ms.
	WatchDebounce time.Duration `json:"watch_debounce,omitempty" yaml:"watch_debounce,omitempty"`
	// EnableSymlinkEscapeCheck hardens the DirSource built from BaseDir.
	EnableSymlinkEscapeCheck bool `json:"enable_symlink_escape_check,omitempty" yaml:"enable_symlink_escape_check,omitempty"`
}

// LoadOptionsFile reads loader options from a YAML (or JSON) file.
//
// Relative BaseDir is resolved against the file's directory.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options file: %w", err)
	}

	opts, err := ParseOptions(data)
	if err != nil {
		return Options{}, fmt.Errorf("parse options file %s: %w", path, err)
	}

	if opts.BaseDir != "" && !filepath.IsAbs(opts.BaseDir) {
		opts.BaseDir = filepath.Join(filepath.Dir(path), opts.BaseDir)
	}

	return opts, nil
}

// ParseOptions decodes loader options from YAML or JSON bytes.
func ParseOptions(data []byte) (Options, error) {
	type yamlOptions struct {
		BaseDir                  string          `yaml:"base_dir"`
		Extensions               []string        `yaml:"extensions"`
		AllowedVariants          AllowedVariants `yaml:"allowed_variants"`
		Preload                  bool            `yaml:"preload"`
		Cache                    *bool           `yaml:"cache"`
		DisableCache             bool            `yaml:"disable_cache"`
		Watch                    bool            `yaml:"watch"`
		WatchDebounce            string          `yaml:"watch_debounce"`
		EnableSymlinkEscapeCheck bool            `yaml:"enable_symlink_escape_check"`
	}

	var raw yamlOptions
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Options{}, err
	}

	opts := Options{
		BaseDir:                  raw.BaseDir,
		Extensions:               raw.Extensions,
		AllowedVariants:          raw.AllowedVariants,
		Preload:                  raw.Preload,
		DisableCache:             raw.DisableCache,
		Watch:                    raw.Watch,
		EnableSymlinkEscapeCheck: raw.EnableSymlinkEscapeCheck,
	}

	if raw.Cache != nil && !*raw.Cache {
		opts.DisableCache = true
	}

	if raw.WatchDebounce != "" {
		d, err := time.ParseDuration(raw.WatchDebounce)
		if err != nil {
			return Options{}, fmt.Errorf("%w: watch_debounce: %v", ErrInvalidOptions, err)
		}

		opts.WatchDebounce = d
	}

	return opts, nil
}

// applyDefaults fills zero-valued options with defaults.
func (opts *Options) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.WatchDebounce <= 0 {
		opts.WatchDebounce = defaultWatchDebounce
	}
}

// validate checks options that cannot be defaulted.
func (opts *Options) validate() error {
	if opts.Source == nil && opts.BaseDir == "" {
		return fmt.Errorf("%w: either source or base dir is required", ErrInvalidOptions)
	}

	if opts.Source != nil && opts.BaseDir != "" {
		return fmt.Errorf("%w: source and base dir are mutually exclusive", ErrInvalidOptions)
	}

	if opts.Watch && opts.Source != nil {
		if _, ok := opts.Source.(*DirSource); !ok {
			return fmt.Errorf("%w: watch requires a directory source", ErrInvalidOptions)
		}
	}

	return nil
}
