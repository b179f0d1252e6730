// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// maxTokenLength bounds one dimension name or variant value.
const maxTokenLength = 64

// safeToken accepts letters, digits, dash and underscore only.
var safeToken = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// AllowedVariants decides which variant values are trusted.
//
// The zero value is permissive: every value passing the character-class filter
// is accepted. Restricted values are built with NewRestricted and accept only
// listed values per dimension. Values are immutable after construction.
type AllowedVariants struct {
	// values holds accepted values per dimension in configured order.
	values map[string][]string
	// lookup indexes values for membership checks.
	lookup map[string]map[string]struct{}
	// owner maps a value to its only dimension.
	owner map[string]string
	// restricted reports allow-list mode.
	restricted bool
}

// Permissive returns allowed variants accepting any sanitized value.
func Permissive() AllowedVariants {
	return AllowedVariants{}
}

// NewRestricted builds allow-list mode from per-dimension value lists.
//
// Dimension names and values are folded to ASCII lower-case, duplicates inside
// one dimension are collapsed. A value listed under two dimensions is rejected,
// since file name segments are assigned to dimensions by value.
func NewRestricted(values map[string][]string) (AllowedVariants, error) {
	if len(values) == 0 {
		return AllowedVariants{}, fmt.Errorf("%w: no dimensions", ErrInvalidAllowedVariants)
	}

	dims := make([]string, 0, len(values))
	for dim := range values {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	av := AllowedVariants{
		values:     make(map[string][]string, len(values)),
		lookup:     make(map[string]map[string]struct{}, len(values)),
		owner:      make(map[string]string),
		restricted: true,
	}

	custom := 0
	for _, rawDim := range dims {
		dim := asciiLower(rawDim)
		if !isSafeToken(dim) {
			return AllowedVariants{}, fmt.Errorf("%w: dimension %q", ErrInvalidAllowedVariants, rawDim)
		}

		if _, dup := av.values[dim]; dup {
			return AllowedVariants{}, fmt.Errorf("%w: dimension %q listed twice", ErrInvalidAllowedVariants, dim)
		}

		if !isBuiltinDimension(dim) {
			custom++
		}

		set := make(map[string]struct{}, len(values[rawDim]))
		ordered := make([]string, 0, len(values[rawDim]))
		for _, rawValue := range values[rawDim] {
			value := asciiLower(rawValue)
			if !isSafeToken(value) {
				return AllowedVariants{}, fmt.Errorf("%w: %s value %q", ErrInvalidAllowedVariants, dim, rawValue)
			}

			if _, seen := set[value]; seen {
				continue
			}

			if other, taken := av.owner[value]; taken {
				return AllowedVariants{}, fmt.Errorf(
					"%w: value %q is listed for both %s and %s", ErrInvalidAllowedVariants, value, other, dim)
			}

			set[value] = struct{}{}
			ordered = append(ordered, value)
			av.owner[value] = dim
		}

		if len(ordered) == 0 {
			return AllowedVariants{}, fmt.Errorf("%w: dimension %q has no values", ErrInvalidAllowedVariants, dim)
		}

		av.values[dim] = ordered
		av.lookup[dim] = set
	}

	if custom > maxCustomDimensions {
		return AllowedVariants{}, fmt.Errorf(
			"%w: %d custom dimensions, at most %d supported", ErrInvalidAllowedVariants, custom, maxCustomDimensions)
	}

	return av, nil
}

// MustRestricted is like NewRestricted but panics on error.
func MustRestricted(values map[string][]string) AllowedVariants {
	av, err := NewRestricted(values)
	if err != nil {
		panic(err)
	}

	return av
}

// IsPermissive reports whether any sanitized value is accepted.
func (a AllowedVariants) IsPermissive() bool {
	return !a.restricted
}

// Dimensions returns restricted dimensions in canonical order, nil when permissive.
func (a AllowedVariants) Dimensions() []string {
	if !a.restricted {
		return nil
	}

	vc := make(VariantContext, len(a.values))
	for dim := range a.values {
		vc[dim] = ""
	}

	return vc.Dimensions()
}

// Values returns a copy of accepted values for dim in configured order.
func (a AllowedVariants) Values(dim string) []string {
	values := a.values[asciiLower(dim)]
	if values == nil {
		return nil
	}

	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Allowed reports whether one pair survives validation.
func (a AllowedVariants) Allowed(dim string, value string) bool {
	dim = asciiLower(dim)
	value = asciiLower(value)
	if !isSafeToken(dim) || !isSafeToken(value) {
		return false
	}

	if !a.restricted {
		return true
	}

	_, ok := a.lookup[dim][value]
	return ok
}

// Validate returns the subset of requested pairs that are allowed.
//
// It never fails: rejected pairs are dropped silently. Surviving names and
// values are folded to lower-case. The input is not modified.
func (a AllowedVariants) Validate(requested VariantContext) VariantContext {
	dims := make([]string, 0, len(requested))
	for dim := range requested {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	// Keys folding to one dimension: the lower-case key wins, otherwise the
	// first in sorted order.
	out := make(VariantContext, len(requested))
	for _, dim := range dims {
		value := requested[dim]
		if !a.Allowed(dim, value) {
			continue
		}

		folded := asciiLower(dim)
		if _, taken := out[folded]; taken && dim != folded {
			continue
		}

		out[folded] = asciiLower(value)
	}

	return out
}

// dimensionOf returns the restricted dimension owning value.
func (a AllowedVariants) dimensionOf(value string) (string, bool) {
	dim, ok := a.owner[value]
	return dim, ok
}

// toMap returns configured allow-lists, nil when permissive.
func (a AllowedVariants) toMap() map[string][]string {
	if !a.restricted {
		return nil
	}

	out := make(map[string][]string, len(a.values))
	for dim := range a.values {
		out[dim] = a.Values(dim)
	}

	return out
}

// MarshalYAML encodes permissive mode as true and restricted mode as a mapping.
func (a AllowedVariants) MarshalYAML() (any, error) {
	if !a.restricted {
		return true, nil
	}

	return a.toMap(), nil
}

// UnmarshalYAML accepts true or a mapping of dimension to value list.
func (a *AllowedVariants) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var permissive bool
		if err := node.Decode(&permissive); err != nil || !permissive {
			return fmt.Errorf("%w: want true or a mapping, got %q", ErrInvalidAllowedVariants, node.Value)
		}

		*a = Permissive()
		return nil
	}

	var values map[string][]string
	if err := node.Decode(&values); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAllowedVariants, err)
	}

	av, err := NewRestricted(values)
	if err != nil {
		return err
	}

	*a = av
	return nil
}

// MarshalJSON encodes permissive mode as true and restricted mode as an object.
func (a AllowedVariants) MarshalJSON() ([]byte, error) {
	if !a.restricted {
		return []byte("true"), nil
	}

	return json.Marshal(a.toMap())
}

// UnmarshalJSON accepts true or an object of dimension to value array.
func (a *AllowedVariants) UnmarshalJSON(data []byte) error {
	var permissive bool
	if err := json.Unmarshal(data, &permissive); err == nil {
		if !permissive {
			return fmt.Errorf("%w: want true or an object, got false", ErrInvalidAllowedVariants)
		}

		*a = Permissive()
		return nil
	}

	var values map[string][]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAllowedVariants, err)
	}

	av, err := NewRestricted(values)
	if err != nil {
		return err
	}

	*a = av
	return nil
}

// isSafeToken reports whether s is a bounded letters/digits/dash/underscore token.
func isSafeToken(s string) bool {
	return len(s) <= maxTokenLength && safeToken.MatchString(s)
}
