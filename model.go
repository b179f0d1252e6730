// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"sort"
	"strings"
)

// Built-in variant dimensions with fixed scoring weight.
const (
	// DimLang is the language dimension.
	DimLang = "lang"
	// DimGender is the grammatical gender dimension.
	DimGender = "gender"
	// DimForm is the formality dimension.
	DimForm = "form"
)

// Scoring weights. A match on a higher dimension outranks any combination of lower ones.
const (
	WeightLang   = 1000
	WeightGender = 100
	WeightForm   = 50
	// WeightCustom is added for each matched dimension outside the built-in three.
	WeightCustom = 1
)

// maxCustomDimensions keeps the summed custom weight below WeightForm.
const maxCustomDimensions = WeightForm/WeightCustom - 1

// builtinDimensions lists built-in dimensions in codec inference order.
var builtinDimensions = [...]string{DimLang, DimGender, DimForm}

// VariantContext maps a dimension name to a variant value.
//
// An absent dimension means "don't care", not "must be absent".
type VariantContext map[string]string

// Candidate is one discovered file whose name encodes zero or more variants.
//
// Candidates are immutable once created by a scan or probe.
type Candidate struct {
	// BaseName is the name before variant segments and extension.
	BaseName string `json:"base_name" yaml:"base_name"`
	// Variants are the dimension values parsed from the file name.
	Variants VariantContext `json:"variants,omitempty" yaml:"variants,omitempty"`
	// Extension is the recognized extension including the leading dot.
	Extension string `json:"extension" yaml:"extension"`
	// ExtPriority is the extension position in Options.Extensions, lower wins ties.
	ExtPriority int `json:"ext_priority" yaml:"ext_priority"`
	// Locator is the file name relative to the source root.
	Locator string `json:"locator" yaml:"locator"`
	// Order is the discovery position within the base name group.
	Order int `json:"order" yaml:"order"`
}

// Resolution is a deterministic resolver decision.
type Resolution struct {
	// Candidate is the chosen file, zero value when Found is false.
	Candidate Candidate `json:"candidate" yaml:"candidate"`
	// BaseName is the requested base name.
	BaseName string `json:"base_name" yaml:"base_name"`
	// Variants is the validated context used for resolution.
	Variants VariantContext `json:"variants,omitempty" yaml:"variants,omitempty"`
	// Score is the winning score, -1 when Found is false.
	Score int `json:"score" yaml:"score"`
	// Found reports whether a candidate was chosen.
	Found bool `json:"found" yaml:"found"`
}

// Bare reports whether candidate has no variant segments.
func (c Candidate) Bare() bool {
	return len(c.Variants) == 0
}

// Clone returns an independent copy of the context.
func (vc VariantContext) Clone() VariantContext {
	out := make(VariantContext, len(vc))
	for dim, value := range vc {
		out[dim] = value
	}

	return out
}

// Dimensions returns dimension names in canonical order:
// built-in dimensions first in weight order, then custom dimensions sorted by name.
func (vc VariantContext) Dimensions() []string {
	dims := make([]string, 0, len(vc))
	for _, dim := range builtinDimensions {
		if _, ok := vc[dim]; ok {
			dims = append(dims, dim)
		}
	}

	custom := make([]string, 0, len(vc))
	for dim := range vc {
		if !isBuiltinDimension(dim) {
			custom = append(custom, dim)
		}
	}
	sort.Strings(custom)

	return append(dims, custom...)
}

// String formats the context as sorted "dim:value" pairs joined by "|".
func (vc VariantContext) String() string {
	if len(vc) == 0 {
		return "{}"
	}

	dims := make([]string, 0, len(vc))
	for dim := range vc {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	var b strings.Builder
	b.WriteByte('{')
	for i, dim := range dims {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(dim)
		b.WriteByte(':')
		b.WriteString(vc[dim])
	}
	b.WriteByte('}')

	return b.String()
}

// dimensionWeight returns scoring weight for one dimension.
func dimensionWeight(dim string) int {
	switch dim {
	case DimLang:
		return WeightLang
	case DimGender:
		return WeightGender
	case DimForm:
		return WeightForm
	default:
		return WeightCustom
	}
}

// isBuiltinDimension reports whether dim carries a fixed weight.
func isBuiltinDimension(dim string) bool {
	return dim == DimLang || dim == DimGender || dim == DimForm
}
