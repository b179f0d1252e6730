// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"strings"

	"golang.org/x/text/language"
)

// VariantDelimiter separates base name and variant segments in a file name.
const VariantDelimiter = ":"

// Values recognized for built-in dimensions in permissive mode.
var (
	permissiveGenders = map[string]struct{}{"m": {}, "f": {}, "n": {}}
	permissiveForms   = map[string]struct{}{"formal": {}, "informal": {}, "casual": {}}
)

// Codec converts between file names and candidates.
//
// File name format is base[:variant]*.ext where every variant segment is either
// a bare value assigned to a dimension by value membership, or an explicit
// "dim=value" pair. Segment order does not matter.
type Codec struct {
	allowed    AllowedVariants
	extensions []string
}

// NewCodec creates a codec for allowed variants and accepted extensions.
//
// Extensions are normalized and kept in priority order; empty list defaults to ".json".
func NewCodec(allowed AllowedVariants, extensions []string) (*Codec, error) {
	exts, err := normalizeExtensions(extensions)
	if err != nil {
		return nil, err
	}

	return &Codec{
		allowed:    allowed,
		extensions: exts,
	}, nil
}

// Extensions returns a copy of recognized extensions in priority order.
func (c *Codec) Extensions() []string {
	out := make([]string, len(c.extensions))
	copy(out, c.extensions)
	return out
}

// Recognized reports whether name ends with a configured extension.
func (c *Codec) Recognized(name string) bool {
	_, _, ok := c.splitExtension(name)
	return ok
}

// ParseFilename parses one file name into a candidate.
//
// Returned candidate has Locator set to name; Order is left zero for the index to fill.
func (c *Codec) ParseFilename(name string) (Candidate, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Candidate{}, &ParseError{Name: name, Reason: "not a plain file name"}
	}

	stem, priority, ok := c.splitExtension(name)
	if !ok {
		return Candidate{}, &ParseError{Name: name, Reason: "unrecognized extension"}
	}

	segments := strings.Split(stem, VariantDelimiter)
	base, err := cleanBaseName(segments[0])
	if err != nil || base != segments[0] {
		return Candidate{}, &ParseError{Name: name, Reason: "invalid base name"}
	}

	variants := make(VariantContext, len(segments)-1)
	for _, segment := range segments[1:] {
		dim, value, reason := c.parseSegment(segment)
		if reason != "" {
			return Candidate{}, &ParseError{Name: name, Reason: reason}
		}

		if _, dup := variants[dim]; dup {
			return Candidate{}, &ParseError{Name: name, Reason: "dimension " + dim + " repeated"}
		}

		variants[dim] = value
	}

	return Candidate{
		BaseName:    base,
		Variants:    variants,
		Extension:   c.extensions[priority],
		ExtPriority: priority,
		Locator:     name,
	}, nil
}

// FormatFilename builds a file name for base, variants and extension.
//
// Segments are written in canonical dimension order. A value is written bare
// when parsing it back yields the same dimension, otherwise as "dim=value".
func (c *Codec) FormatFilename(base string, variants VariantContext, ext string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, dim := range variants.Dimensions() {
		value := variants[dim]
		b.WriteString(VariantDelimiter)
		if inferred, ok := c.inferDimension(value); ok && inferred == dim {
			b.WriteString(value)
			continue
		}

		b.WriteString(dim)
		b.WriteByte('=')
		b.WriteString(value)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		b.WriteByte('.')
	}
	b.WriteString(ext)

	return b.String()
}

// splitExtension strips the first configured extension matching name.
func (c *Codec) splitExtension(name string) (string, int, bool) {
	lower := asciiLower(name)
	for i, ext := range c.extensions {
		if len(lower) > len(ext) && strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)], i, true
		}
	}

	return "", -1, false
}

// parseSegment assigns one variant segment to a dimension.
//
// Non-empty reason means the segment is rejected.
func (c *Codec) parseSegment(segment string) (string, string, string) {
	if segment == "" {
		return "", "", "empty variant segment"
	}

	if dim, value, explicit := strings.Cut(segment, "="); explicit {
		dim = asciiLower(dim)
		value = asciiLower(value)
		if !c.allowed.Allowed(dim, value) {
			return "", "", "variant " + segment + " is not allowed"
		}

		return dim, value, ""
	}

	value := asciiLower(segment)
	if !isSafeToken(value) {
		return "", "", "variant " + segment + " is not allowed"
	}

	dim, ok := c.inferDimension(value)
	if !ok {
		return "", "", "variant " + segment + " matches no dimension"
	}

	return dim, value, ""
}

// inferDimension maps a bare value to its dimension.
//
// Restricted mode uses the allow-lists, whose values are disjoint across
// dimensions. Permissive mode checks lang, then gender, then form, where lang
// is any well-formed BCP 47 tag that is not a built-in gender or form value.
func (c *Codec) inferDimension(value string) (string, bool) {
	if c.allowed.restricted {
		return c.allowed.dimensionOf(value)
	}

	_, isGender := permissiveGenders[value]
	_, isForm := permissiveForms[value]
	switch {
	case !isGender && !isForm && isLanguageTag(value):
		return DimLang, true
	case isGender:
		return DimGender, true
	case isForm:
		return DimForm, true
	default:
		return "", false
	}
}

// isLanguageTag reports whether value parses as a BCP 47 language tag.
func isLanguageTag(value string) bool {
	if !isSafeToken(value) {
		return false
	}

	_, err := language.Parse(value)
	return err == nil
}
