// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"errors"
	"fmt"
)

// Sentinel errors for variantload operations.
var (
	// ErrInvalidFilename indicates a file name that does not follow base[:variant]*.ext.
	ErrInvalidFilename = errors.New("invalid variant filename")
	// ErrInvalidBaseName indicates an unsafe or malformed requested base name.
	ErrInvalidBaseName = errors.New("invalid base name")
	// ErrInvalidAllowedVariants indicates malformed allow-list configuration.
	ErrInvalidAllowedVariants = errors.New("invalid allowed variants")
	// ErrInvalidOptions indicates malformed loader options.
	ErrInvalidOptions = errors.New("invalid loader options")
	// ErrNoMatch indicates no candidate, including the bare base file, exists.
	ErrNoMatch = errors.New("no variant found")
	// ErrSourceUnavailable indicates scan or probe I/O failure.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidContent indicates the resolved file exists but cannot be decoded.
	ErrInvalidContent = errors.New("invalid content")
	// ErrUnsupportedFormat indicates no decoder is registered for an extension.
	ErrUnsupportedFormat = errors.New("unsupported content format")
	// ErrNilLoader indicates a nil Loader receiver.
	ErrNilLoader = errors.New("loader is nil")
	// ErrClosed indicates use of a loader after Close.
	ErrClosed = errors.New("loader is closed")
	// ErrNotListable indicates an index request against a probe-only source.
	ErrNotListable = errors.New("source cannot be listed")
	// ErrPathOutsideRoot indicates a resolved source path escaped its root.
	ErrPathOutsideRoot = errors.New("path is outside source root")
)

// ParseError reports one file name rejected by the codec.
type ParseError struct {
	// Name is the rejected file name.
	Name string
	// Reason describes the first problem found.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidFilename, e.Name, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidFilename
}

// NoMatchError reports a resolution that found nothing for a base name.
type NoMatchError struct {
	// BaseName is the requested base name.
	BaseName string
	// Variants is the validated context that was attempted.
	Variants VariantContext
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("%s for %q with %s", ErrNoMatch, e.BaseName, e.Variants)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// SourceError reports a failed scan, probe or read against a source.
type SourceError struct {
	// Op is the failed operation, such as "scan", "probe", "open" or "read".
	Op string
	// Name is the file name involved, empty for scans.
	Name string
	// Err is the underlying I/O error.
	Err error
}

func (e *SourceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Op, e.Err)
	}

	return fmt.Sprintf("%s: %s %q: %v", ErrSourceUnavailable, e.Op, e.Name, e.Err)
}

// Is matches ErrSourceUnavailable in addition to the wrapped error.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
