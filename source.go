// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Source opens candidate files by locator.
type Source interface {
	// Open returns content of one file name relative to the source root.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Lister is implemented by sources that can enumerate their file names.
type Lister interface {
	// List returns file names in a deterministic order, which becomes discovery order.
	List(ctx context.Context) ([]string, error)
}

// Prober is implemented by sources that can check existence of one file name.
type Prober interface {
	// Exists reports whether name exists. A missing file is not an error.
	Exists(ctx context.Context, name string) (bool, error)
}

// DirSourceOptions configures a local directory source.
type DirSourceOptions struct {
	// EnableSymlinkEscapeCheck enables resolved-path validation to block
	// symlink/junction escapes outside source root.
	EnableSymlinkEscapeCheck bool `json:"enable_symlink_escape_check,omitempty" yaml:"enable_symlink_escape_check,omitempty"`
}

// DirSource serves files from one local directory, non-recursively.
type DirSource struct {
	// root is absolute source directory path.
	root string
	// resolvedRoot is root with symlinks/junctions resolved when possible.
	resolvedRoot string
	// enableSymlinkEscapeCheck enables resolved-path root boundary validation.
	enableSymlinkEscapeCheck bool
}

// NewDirSource creates a directory source rooted at dir.
func NewDirSource(dir string, opts DirSourceOptions) (*DirSource, error) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("abs root: %w", err)
	}

	resolvedRoot := absRoot
	if opts.EnableSymlinkEscapeCheck {
		resolvedRoot, err = resolvePathOrAbs(absRoot)
		if err != nil {
			return nil, fmt.Errorf("resolve root: %w", err)
		}
	}

	return &DirSource{
		root:                     absRoot,
		resolvedRoot:             resolvedRoot,
		enableSymlinkEscapeCheck: opts.EnableSymlinkEscapeCheck,
	}, nil
}

// Root returns absolute source directory path.
func (s *DirSource) Root() string {
	return s.root
}

// List returns regular file names in the root directory sorted by name.
//
// Symlinks are followed; with escape check enabled, links resolving outside
// root are skipped.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
			continue
		}

		if entry.Type()&fs.ModeSymlink == 0 {
			continue
		}

		if _, err := s.path(entry.Name()); err != nil {
			continue
		}

		info, err := os.Stat(filepath.Join(s.root, entry.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		names = append(names, entry.Name())
	}

	return names, nil
}

// Exists reports whether name is an existing regular file under root.
func (s *DirSource) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fullPath, err := s.path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("stat %s: %w", fullPath, err)
	}

	return info.Mode().IsRegular(), nil
}

// Open opens name under root for reading.
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fullPath, err)
	}

	return f, nil
}

// path validates name and returns its absolute path under root.
func (s *DirSource) path(name string) (string, error) {
	entryName, err := cleanEntryName(name)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.root, entryName)
	if !s.enableSymlinkEscapeCheck {
		return fullPath, nil
	}

	resolved, err := resolvePathOrAbs(fullPath)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", fullPath, err)
	}

	if !isPathWithinRoot(s.resolvedRoot, resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, fullPath)
	}

	return fullPath, nil
}

// FSSource serves files from one directory of an fs.FS, such as embed.FS.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource creates a source over dir inside fsys. Empty dir means the FS root.
func NewFSSource(fsys fs.FS, dir string) (*FSSource, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}

	if !fs.ValidPath(dir) {
		return nil, fmt.Errorf("%w: fs dir %q", ErrInvalidOptions, dir)
	}

	return &FSSource{fsys: fsys, dir: dir}, nil
}

// List returns regular file names in dir sorted by name.
func (s *FSSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// Exists reports whether name is a regular file in dir.
func (s *FSSource) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	entryName, err := cleanEntryName(name)
	if err != nil {
		return false, err
	}

	info, err := fs.Stat(s.fsys, path.Join(s.dir, entryName))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return info.Mode().IsRegular(), nil
}

// Open opens name in dir for reading.
func (s *FSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entryName, err := cleanEntryName(name)
	if err != nil {
		return nil, err
	}

	return s.fsys.Open(path.Join(s.dir, entryName))
}

// HTTPSource serves files below one base URL. It cannot be listed, so loaders
// use probe-based candidate discovery for it.
type HTTPSource struct {
	client *http.Client
	base   *url.URL
}

// NewHTTPSource creates a source for an http or https base URL.
// Nil client uses http.DefaultClient.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", ErrInvalidOptions, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute http(s)", ErrInvalidOptions, baseURL)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPSource{client: client, base: u}, nil
}

// Exists issues a HEAD request for name.
//
// 2xx means present, 404 and 410 mean absent, anything else is an error.
func (s *HTTPSource) Exists(ctx context.Context, name string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, name)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("head %s: unexpected status %s", name, resp.Status)
	}
}

// Open issues a GET request for name and returns the response body.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, name)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, fmt.Errorf("get %s: %w", name, fs.ErrNotExist)
	}

	return nil, fmt.Errorf("get %s: unexpected status %s", name, resp.Status)
}

// do sends one request for name below the base URL.
func (s *HTTPSource) do(ctx context.Context, method string, name string) (*http.Response, error) {
	entryName, err := cleanEntryName(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.base.JoinPath(entryName).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(method), name, err)
	}

	return resp, nil
}

// cleanEntryName validates one file name relative to a source root.
func cleanEntryName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || name != raw {
		return "", ErrPathOutsideRoot
	}

	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrPathOutsideRoot
	}

	if name == "." || name == ".." {
		return "", ErrPathOutsideRoot
	}

	return name, nil
}

// resolvePathOrAbs resolves symlinks/junctions and falls back to absolute path for non-link paths.
func resolvePathOrAbs(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		return "", absErr
	}

	if os.IsNotExist(err) {
		return abs, nil
	}

	return "", err
}

// isPathWithinRoot reports whether target path is inside root path.
func isPathWithinRoot(root string, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}

	if rel == "." {
		return true
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	return true
}
