// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

// Score returns the additive match score of candidate against requested.
//
// A candidate dimension that requested does not specify, or specifies with a
// different value, disqualifies the candidate (ok is false). Requested
// dimensions missing from the candidate neither add nor disqualify.
func Score(requested VariantContext, candidate Candidate) (score int, ok bool) {
	for dim, value := range candidate.Variants {
		want, specified := requested[dim]
		if !specified || want != value {
			return 0, false
		}

		score += dimensionWeight(dim)
	}

	return score, true
}

// Resolve picks the best candidate for base name and a validated context.
//
// Decision policy:
// - disqualified candidates are skipped
// - highest score wins
// - equal scores prefer lower extension priority, then earlier discovery
// - a best score of 0 can only be the bare base file
//
// Resolve performs no I/O.
func Resolve(baseName string, requested VariantContext, candidates []Candidate) Resolution {
	res := Resolution{
		BaseName: baseName,
		Variants: requested,
		Score:    -1,
	}

	best := -1
	for i := range candidates {
		if candidates[i].BaseName != baseName {
			continue
		}

		score, ok := Score(requested, candidates[i])
		if !ok {
			continue
		}

		if best >= 0 && !outranks(score, candidates[i], res.Score, candidates[best]) {
			continue
		}

		best = i
		res.Score = score
	}

	if best < 0 {
		return res
	}

	res.Candidate = candidates[best]
	res.Found = true
	return res
}

// outranks reports whether a candidate with score beats the current best.
func outranks(score int, c Candidate, bestScore int, best Candidate) bool {
	if score != bestScore {
		return score > bestScore
	}

	if c.ExtPriority != best.ExtPriority {
		return c.ExtPriority < best.ExtPriority
	}

	return c.Order < best.Order
}
