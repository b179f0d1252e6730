// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Loader resolves and loads variant files from one source.
//
// Listable sources are scanned once into an Index snapshot shared by all
// lookups until Refresh; other sources are probed per request. Resolutions and
// contents are cached by normalized key unless disabled. Safe for concurrent use.
type Loader struct {
	source  Source
	lister  Lister
	probe   *ProbeIndex
	codec   *Codec
	cache   *Cache
	logger  *slog.Logger
	allowed AllowedVariants

	// snapshot is the installed index, nil before the first scan.
	snapshot atomic.Pointer[Index]
	// inflight is the scan shared by concurrent callers, nil when idle.
	inflight *scanCall
	// pending is the follow-up scan requested by Refresh while inflight runs.
	pending *scanCall
	// watcher refreshes the snapshot on filesystem changes.
	watcher *dirWatcher

	scans atomic.Int64

	// mu guards inflight, pending, watcher and closed.
	mu     sync.Mutex
	closed bool
}

// scanCall is one in-flight scan awaited by every concurrent caller.
type scanCall struct {
	// done is closed when the scan completes.
	done chan struct{}
	// idx is the installed snapshot on success.
	idx *Index
	// err stores the scan failure.
	err error
}

// Document is loaded content of a resolved candidate.
type Document struct {
	// Data is the raw file content.
	Data []byte
	Resolution
}

// Stats reports loader activity counters.
type Stats struct {
	// Scans is the number of completed or failed source scans.
	Scans int64 `json:"scans" yaml:"scans"`
	// Probes is the number of existence checks sent to a probe-only source.
	Probes int64 `json:"probes" yaml:"probes"`
	// CacheHits is the number of resolutions served from cache.
	CacheHits int64 `json:"cache_hits" yaml:"cache_hits"`
	// CacheMisses is the number of resolutions computed.
	CacheMisses int64 `json:"cache_misses" yaml:"cache_misses"`
	// CachedResolutions is the current resolution cache size.
	CachedResolutions int `json:"cached_resolutions" yaml:"cached_resolutions"`
	// Candidates is the number of candidates in the installed snapshot.
	Candidates int `json:"candidates" yaml:"candidates"`
}

// New creates a loader. With Preload set, a listable source is scanned before New returns.
func New(ctx context.Context, opts Options) (*Loader, error) {
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	source := opts.Source
	if source == nil {
		dirSource, err := NewDirSource(opts.BaseDir, DirSourceOptions{
			EnableSymlinkEscapeCheck: opts.EnableSymlinkEscapeCheck,
		})
		if err != nil {
			return nil, err
		}

		source = dirSource
	}

	codec, err := NewCodec(opts.AllowedVariants, opts.Extensions)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		source:  source,
		codec:   codec,
		logger:  opts.Logger,
		allowed: opts.AllowedVariants,
	}

	if lister, ok := source.(Lister); ok {
		l.lister = lister
	} else if prober, ok := source.(Prober); ok {
		l.probe = NewProbeIndex(codec, prober)
	} else {
		return nil, fmt.Errorf("%w: source must implement List or Exists", ErrInvalidOptions)
	}

	if !opts.DisableCache {
		l.cache = NewCache(opts.AllowedVariants)
	}

	if opts.Watch {
		dirSource, ok := source.(*DirSource)
		if !ok {
			return nil, fmt.Errorf("%w: watch requires a directory source", ErrInvalidOptions)
		}

		w, err := startDirWatcher(l, dirSource.Root(), opts.WatchDebounce)
		if err != nil {
			return nil, err
		}

		l.watcher = w
	}

	if opts.Preload && l.lister != nil {
		if err := l.Refresh(ctx); err != nil {
			_ = l.Close()
			return nil, err
		}
	}

	return l, nil
}

// Codec returns the codec used to parse candidate file names.
func (l *Loader) Codec() *Codec {
	if l == nil {
		return nil
	}

	return l.codec
}

// Cache returns the resolution cache, nil when caching is disabled.
func (l *Loader) Cache() *Cache {
	if l == nil {
		return nil
	}

	return l.cache
}

// Index returns the installed snapshot, scanning first when none exists.
func (l *Loader) Index(ctx context.Context) (*Index, error) {
	if l == nil {
		return nil, ErrNilLoader
	}

	if l.lister == nil {
		return nil, ErrNotListable
	}

	if idx := l.snapshot.Load(); idx != nil {
		return idx, nil
	}

	return l.await(ctx, l.sharedScan())
}

// Refresh rescans a listable source and installs the new snapshot.
//
// A scan already running may have listed the source before the change that
// prompted Refresh, so Refresh waits for it and then for one follow-up scan
// shared by every Refresh arriving meanwhile. When the scan fails, the previous snapshot stays in place and a
// *SourceError is returned. Cached resolutions are dropped only for base names
// whose candidates changed. For probe-only sources Refresh forgets memoized
// probes and cached resolutions.
func (l *Loader) Refresh(ctx context.Context) error {
	if l == nil {
		return ErrNilLoader
	}

	if l.isClosed() {
		return ErrClosed
	}

	if l.lister == nil {
		l.probe.Reset()
		if l.cache != nil {
			l.cache.Invalidate("")
		}

		return nil
	}

	_, err := l.await(ctx, l.refreshScan())
	return err
}

// Resolve picks the best candidate for baseName and requested variants.
//
// Requested variants are validated first; disallowed pairs are dropped
// silently. When nothing matches, the error is a *NoMatchError and the
// returned resolution carries the attempted context.
func (l *Loader) Resolve(ctx context.Context, baseName string, requested VariantContext) (Resolution, error) {
	if l == nil {
		return Resolution{}, ErrNilLoader
	}

	if l.isClosed() {
		return Resolution{}, ErrClosed
	}

	base, err := cleanBaseName(baseName)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q", err, baseName)
	}

	validated := l.allowed.Validate(requested)
	key := CacheKey(base, validated)

	var epoch uint64
	if l.cache != nil {
		epoch = l.cache.Epoch()
		if res, ok := l.cache.getKey(key); ok {
			l.logger.Debug("resolution cache hit", "key", key)
			return res, resolutionErr(res)
		}
	}

	var (
		candidates []Candidate
		idx        *Index
	)
	if l.lister != nil {
		idx, err = l.Index(ctx)
		if err != nil {
			return Resolution{}, err
		}

		candidates = idx.Candidates(base)
	} else {
		candidates, err = l.probe.Candidates(ctx, base, validated)
		if err != nil {
			return Resolution{}, err
		}
	}

	res := Resolve(base, validated, candidates)
	l.logger.Debug("resolved variant",
		"base", base,
		"variants", validated.String(),
		"found", res.Found,
		"file", res.Candidate.Locator,
		"score", res.Score,
	)

	// Skip caching when a refresh installed a newer snapshot meanwhile.
	if l.cache != nil && (idx == nil || l.snapshot.Load() == idx) {
		l.cache.putKey(key, res, epoch)
	}

	return res, resolutionErr(res)
}

// Load resolves baseName and reads the chosen file.
//
// Cached content is served only when it was read from the resolved file, and
// content read across a refresh that touched the base name is not cached.
func (l *Loader) Load(ctx context.Context, baseName string, requested VariantContext) (*Document, error) {
	if l == nil {
		return nil, ErrNilLoader
	}

	var epoch uint64
	if l.cache != nil {
		epoch = l.cache.Epoch()
	}

	res, err := l.Resolve(ctx, baseName, requested)
	if err != nil {
		return nil, err
	}

	key := CacheKey(res.BaseName, res.Variants)
	if l.cache != nil {
		if data, ok := l.cache.getContentKey(key, res.Candidate.Locator); ok {
			return &Document{Resolution: res, Data: data}, nil
		}
	}

	data, err := l.read(ctx, res.Candidate.Locator)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.cache.putContentKey(key, res.Candidate.Locator, data, epoch)
	}

	return &Document{Resolution: res, Data: data}, nil
}

// LoadInto loads baseName and decodes the content into v by file extension.
func (l *Loader) LoadInto(ctx context.Context, baseName string, requested VariantContext, v any) error {
	doc, err := l.Load(ctx, baseName, requested)
	if err != nil {
		return err
	}

	return doc.Decode(v)
}

// Stats returns current activity counters.
func (l *Loader) Stats() Stats {
	if l == nil {
		return Stats{}
	}

	st := Stats{
		Scans: l.scans.Load(),
	}

	if l.probe != nil {
		st.Probes = l.probe.Probes()
	}

	if l.cache != nil {
		st.CacheHits = l.cache.Hits()
		st.CacheMisses = l.cache.Misses()
		st.CachedResolutions = l.cache.Len()
	}

	if idx := l.snapshot.Load(); idx != nil {
		st.Candidates = idx.Len()
	}

	return st
}

// Close stops the watcher and discards snapshot, caches and pending scan marker.
//
// A scan still running completes without installing its result.
func (l *Loader) Close() error {
	if l == nil {
		return ErrNilLoader
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}

	l.closed = true
	w := l.watcher
	l.watcher = nil
	l.inflight = nil
	if next := l.pending; next != nil {
		l.pending = nil
		next.err = ErrClosed
		close(next.done)
	}
	l.snapshot.Store(nil)
	l.mu.Unlock()

	if l.cache != nil {
		l.cache.Invalidate("")
	}

	if l.probe != nil {
		l.probe.Reset()
	}

	if w != nil {
		return w.close()
	}

	return nil
}

// Decode unmarshals document content into v by candidate extension.
func (d *Document) Decode(v any) error {
	if err := Decode(d.Candidate.Extension, d.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.Candidate.Locator, err)
	}

	return nil
}

// sharedScan returns the in-flight scan or starts a new one.
func (l *Loader) sharedScan() *scanCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return closedScan()
	}

	if l.inflight != nil {
		return l.inflight
	}

	return l.startScanLocked(&scanCall{done: make(chan struct{})})
}

// refreshScan returns a scan that lists the source after the call.
//
// With no scan running it starts one; otherwise it returns the follow-up scan
// queued behind the running one.
func (l *Loader) refreshScan() *scanCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return closedScan()
	}

	if l.inflight == nil {
		return l.startScanLocked(&scanCall{done: make(chan struct{})})
	}

	if l.pending == nil {
		l.pending = &scanCall{done: make(chan struct{})}
	}

	return l.pending
}

// startScanLocked runs call as the in-flight scan. l.mu must be held.
func (l *Loader) startScanLocked(call *scanCall) *scanCall {
	l.inflight = call
	go l.runScan(call)

	return call
}

// closedScan returns a completed scan failing with ErrClosed.
func closedScan() *scanCall {
	call := &scanCall{
		done: make(chan struct{}),
		err:  ErrClosed,
	}
	close(call.done)

	return call
}

// runScan lists the source detached from any caller and installs the snapshot.
func (l *Loader) runScan(call *scanCall) {
	names, err := l.lister.List(context.Background())
	l.scans.Add(1)

	var idx *Index
	if err == nil {
		idx = NewIndex(l.codec, names)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inflight == call {
		l.inflight = nil
	}

	switch {
	case l.closed:
		call.err = ErrClosed
	case err != nil:
		call.err = &SourceError{Op: "scan", Err: err}
		l.logger.Warn("variant scan failed, keeping previous snapshot", "error", err)
	default:
		prev := l.snapshot.Swap(idx)
		call.idx = idx

		changed := changedBaseNames(prev, idx)
		if l.cache != nil {
			for _, base := range changed {
				l.cache.InvalidateBase(base)
			}
		}

		for _, name := range idx.skipped {
			l.logger.Debug("skipped file without valid variant name", "file", name)
		}

		l.logger.Info("variant index scanned",
			"candidates", idx.Len(),
			"skipped", len(idx.skipped),
			"changed", len(changed),
		)
	}

	close(call.done)

	if next := l.pending; next != nil && l.inflight == nil {
		l.pending = nil
		l.startScanLocked(next)
	}
}

// await waits for call or caller cancellation. Cancellation does not abort the scan.
func (l *Loader) await(ctx context.Context, call *scanCall) (*Index, error) {
	select {
	case <-call.done:
		return call.idx, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// read fetches the full content of one locator from the source.
func (l *Loader) read(ctx context.Context, locator string) ([]byte, error) {
	rc, err := l.source.Open(ctx, locator)
	if err != nil {
		return nil, &SourceError{Op: "open", Name: locator, Err: err}
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &SourceError{Op: "read", Name: locator, Err: err}
	}

	return data, nil
}

// isClosed reports whether Close was called.
func (l *Loader) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closed
}

// resolutionErr converts a no-match resolution to *NoMatchError.
func resolutionErr(res Resolution) error {
	if res.Found {
		return nil
	}

	return &NoMatchError{BaseName: res.BaseName, Variants: res.Variants}
}
