// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

// memorySource is an in-memory Source with optional listing, blocking and failures.
type memorySource struct {
	files map[string]string
	// listErr is returned by List when set.
	listErr error
	// gate blocks List until closed when set.
	gate chan struct{}
	// started receives one value per List call when set.
	started chan struct{}
	// hold blocks the next List after names are captured until closed.
	hold chan struct{}
	// listed receives one value per List call once names are captured when set.
	listed chan struct{}
	// openGates block Open of a name after its content was read until closed.
	openGates map[string]chan struct{}
	// opening receives the name of each gated Open when set.
	opening chan string

	listCalls  int
	probeCalls map[string]int
	mu         sync.Mutex
}

func newMemorySource(files map[string]string) *memorySource {
	return &memorySource{
		files:      files,
		probeCalls: make(map[string]int),
	}
}

func (s *memorySource) List(ctx context.Context) ([]string, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}

	if s.gate != nil {
		<-s.gate
	}

	s.mu.Lock()
	s.listCalls++
	if s.listErr != nil {
		s.mu.Unlock()
		return nil, s.listErr
	}

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)

	hold := s.hold
	s.hold = nil
	s.mu.Unlock()

	if s.listed != nil {
		s.listed <- struct{}{}
	}

	if hold != nil {
		<-hold
	}

	return names, nil
}

func (s *memorySource) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.probeCalls[name]++
	_, ok := s.files[name]
	return ok, nil
}

func (s *memorySource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.files[name]
	gate := s.openGates[name]
	s.mu.Unlock()

	if !ok {
		return nil, fs.ErrNotExist
	}

	if gate != nil {
		if s.opening != nil {
			s.opening <- name
		}
		<-gate
	}

	return io.NopCloser(strings.NewReader(data)), nil
}

func (s *memorySource) set(name string, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[name] = data
}

func (s *memorySource) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, name)
}

// gateOpen makes Open of name block after reading until gate is closed.
func (s *memorySource) gateOpen(name string, gate chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openGates == nil {
		s.openGates = make(map[string]chan struct{})
	}
	s.openGates[name] = gate
}

func (s *memorySource) failList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listErr = err
}

func (s *memorySource) lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listCalls
}

func (s *memorySource) probes(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.probeCalls[name]
}

// probeOnlySource exposes only Exists and Open, so loaders fall back to probing.
type probeOnlySource struct {
	mem *memorySource
}

func (s probeOnlySource) Exists(ctx context.Context, name string) (bool, error) {
	return s.mem.Exists(ctx, name)
}

func (s probeOnlySource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.mem.Open(ctx, name)
}

// failingProber fails every existence check.
type failingProber struct{}

func (failingProber) Exists(context.Context, string) (bool, error) {
	return false, errors.New("network down")
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}
}
