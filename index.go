// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// Index is an immutable snapshot of candidates grouped by base name.
type Index struct {
	// groups holds candidates per base name in discovery order.
	groups map[string][]Candidate
	// skipped lists file names rejected by the codec.
	skipped []string
	// total is the number of indexed candidates.
	total int
}

// NewIndex parses names with codec and groups accepted candidates by base name.
//
// Names are processed in input order, which becomes discovery order. Names the
// codec rejects are skipped and reported by Skipped.
func NewIndex(codec *Codec, names []string) *Index {
	idx := &Index{
		groups: make(map[string][]Candidate),
	}

	for _, name := range names {
		c, err := codec.ParseFilename(name)
		if err != nil {
			idx.skipped = append(idx.skipped, name)
			continue
		}

		c.Order = len(idx.groups[c.BaseName])
		idx.groups[c.BaseName] = append(idx.groups[c.BaseName], c)
		idx.total++
	}

	return idx
}

// Candidates returns a copy of candidates sharing baseName, in discovery order.
func (idx *Index) Candidates(baseName string) []Candidate {
	group := idx.groups[baseName]
	if len(group) == 0 {
		return nil
	}

	out := make([]Candidate, len(group))
	copy(out, group)
	return out
}

// BaseNames returns indexed base names sorted lexicographically.
func (idx *Index) BaseNames() []string {
	names := make([]string, 0, len(idx.groups))
	for name := range idx.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Len returns the number of indexed candidates.
func (idx *Index) Len() int {
	return idx.total
}

// Skipped returns file names rejected by the codec in discovery order.
func (idx *Index) Skipped() []string {
	out := make([]string, len(idx.skipped))
	copy(out, idx.skipped)
	return out
}

// changedBaseNames returns base names whose candidate group differs between snapshots.
func changedBaseNames(prev *Index, next *Index) []string {
	if prev == nil {
		return nil
	}

	changed := make([]string, 0)
	for base, group := range prev.groups {
		if !sameGroup(group, next.groups[base]) {
			changed = append(changed, base)
		}
	}

	for base := range next.groups {
		if _, ok := prev.groups[base]; !ok {
			changed = append(changed, base)
		}
	}
	sort.Strings(changed)

	return changed
}

// sameGroup reports whether two groups list the same locators in the same order.
func sameGroup(a []Candidate, b []Candidate) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Locator != b[i].Locator {
			return false
		}
	}

	return true
}

// maxProbeDimensions bounds candidate generation for probe-only sources to 2^n subsets.
const maxProbeDimensions = 8

// probeState is a memoized existence result for one file name.
type probeState uint8

const (
	// probeUnknown means no completed probe.
	probeUnknown probeState = iota
	// probeExists means the file was found.
	probeExists
	// probeAbsent means the file was not found.
	probeAbsent
)

// probeEntry memoizes one existence check shared by concurrent callers.
type probeEntry struct {
	// done is closed when the in-flight probe completes.
	done chan struct{}
	// err stores the failure of the in-flight probe.
	err error
	// state is the completed probe result.
	state probeState
}

// ProbeIndex materializes candidates for sources that cannot be listed.
//
// For one request it derives every file name that could survive scoring: the
// base name combined with each subset of the validated request pairs, for every
// recognized extension. Existence results are memoized for both hits and misses.
// Failed probes are not memoized.
type ProbeIndex struct {
	codec  *Codec
	prober Prober
	// entries stores probe results by file name.
	entries map[string]*probeEntry
	// probes counts round trips issued to prober.
	probes atomic.Int64
	// mu guards entries.
	mu sync.Mutex
}

// NewProbeIndex creates an empty probe index over prober.
func NewProbeIndex(codec *Codec, prober Prober) *ProbeIndex {
	return &ProbeIndex{
		codec:   codec,
		prober:  prober,
		entries: make(map[string]*probeEntry),
	}
}

// Candidates returns existing candidates for baseName implied by requested.
//
// Requested must already be validated. Only the first maxProbeDimensions
// dimensions in canonical order take part in candidate generation.
func (p *ProbeIndex) Candidates(ctx context.Context, baseName string, requested VariantContext) ([]Candidate, error) {
	dims := requested.Dimensions()
	if len(dims) > maxProbeDimensions {
		dims = dims[:maxProbeDimensions]
	}

	names := make([]string, 0, (1<<len(dims))*len(p.codec.extensions))
	for mask := 0; mask < 1<<len(dims); mask++ {
		subset := make(VariantContext, len(dims))
		for bit, dim := range dims {
			if mask&(1<<bit) != 0 {
				subset[dim] = requested[dim]
			}
		}

		for _, ext := range p.codec.extensions {
			names = append(names, p.codec.FormatFilename(baseName, subset, ext))
		}
	}

	// Start every check before waiting so round trips overlap.
	entries := make([]*probeEntry, len(names))
	for i, name := range names {
		entries[i] = p.start(ctx, name)
	}

	out := make([]Candidate, 0, 4)
	for i, name := range names {
		exists, err := p.wait(ctx, entries[i])
		if err != nil {
			return nil, err
		}

		if !exists {
			continue
		}

		c, err := p.codec.ParseFilename(name)
		if err != nil {
			continue
		}

		c.Order = len(out)
		out = append(out, c)
	}

	return out, nil
}

// Probes returns the number of round trips issued so far.
func (p *ProbeIndex) Probes() int64 {
	return p.probes.Load()
}

// state returns memoized existence state for name.
func (p *ProbeIndex) state(name string) probeState {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[name]
	if !ok {
		return probeUnknown
	}

	select {
	case <-entry.done:
		return entry.state
	default:
		return probeUnknown
	}
}

// start returns the memoized entry for name, launching a probe when none exists.
//
// The probe runs detached from ctx: a cancelled caller stops waiting, while the
// probe completes and its result stays memoized for later callers.
func (p *ProbeIndex) start(ctx context.Context, name string) *probeEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[name]
	if !ok {
		entry = &probeEntry{
			done: make(chan struct{}),
		}
		p.entries[name] = entry
		go p.probe(context.WithoutCancel(ctx), name, entry)
	}

	return entry
}

// wait blocks until entry is probed or ctx is done.
func (p *ProbeIndex) wait(ctx context.Context, entry *probeEntry) (bool, error) {
	select {
	case <-entry.done:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	if entry.err != nil {
		return false, entry.err
	}

	return entry.state == probeExists, nil
}

// probe performs one existence check and publishes the result to entry.
func (p *ProbeIndex) probe(ctx context.Context, name string, entry *probeEntry) {
	p.probes.Add(1)
	found, err := p.prober.Exists(ctx, name)

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case err != nil:
		entry.err = &SourceError{Op: "probe", Name: name, Err: err}
		// A Reset may have replaced the entry meanwhile.
		if p.entries[name] == entry {
			delete(p.entries, name)
		}
	case found:
		entry.state = probeExists
	default:
		entry.state = probeAbsent
	}
	close(entry.done)
}

// Reset forgets every memoized probe result.
//
// Probes still in flight complete for their current waiters only.
func (p *ProbeIndex) Reset() {
	p.mu.Lock()
	p.entries = make(map[string]*probeEntry)
	p.mu.Unlock()
}
