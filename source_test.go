// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDirSourceListsRegularFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"b.json":    "{}",
		"a:es.json": "{}",
	})

	if err := os.Mkdir(filepath.Join(root, "nested.json"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	src, err := NewDirSource(root, DirSourceOptions{})
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}

	names, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(names) != 2 || names[0] != "a:es.json" || names[1] != "b.json" {
		t.Fatalf("List=%v", names)
	}

	ok, err := src.Exists(context.Background(), "b.json")
	if err != nil || !ok {
		t.Fatalf("Exists(b.json)=%v err=%v", ok, err)
	}

	ok, err = src.Exists(context.Background(), "missing.json")
	if err != nil || ok {
		t.Fatalf("Exists(missing.json)=%v err=%v", ok, err)
	}

	rc, err := src.Open(context.Background(), "b.json")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil || string(data) != "{}" {
		t.Fatalf("ReadAll=%q err=%v", data, err)
	}
}

func TestDirSourceRejectsTraversalNames(t *testing.T) {
	t.Parallel()

	src, err := NewDirSource(t.TempDir(), DirSourceOptions{})
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}

	for _, name := range []string{"", ".", "..", "../x.json", "a/b.json", `a\b.json`, "/etc/passwd", " x.json"} {
		if _, err := src.Open(context.Background(), name); !errors.Is(err, ErrPathOutsideRoot) {
			t.Fatalf("Open(%q) err=%v, want ErrPathOutsideRoot", name, err)
		}
	}
}

func TestDirSourceSymlinkEscapeCheck(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.json"), "{}")
	writeFile(t, filepath.Join(root, "strings.json"), "{}")

	if err := os.Symlink(filepath.Join(outside, "secret.json"), filepath.Join(root, "strings:es.json")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	open, err := NewDirSource(root, DirSourceOptions{})
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}

	names, err := open.List(context.Background())
	if err != nil || len(names) != 2 {
		t.Fatalf("List without check=%v err=%v, want 2 names", names, err)
	}

	hardened, err := NewDirSource(root, DirSourceOptions{EnableSymlinkEscapeCheck: true})
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}

	names, err = hardened.List(context.Background())
	if err != nil || len(names) != 1 || names[0] != "strings.json" {
		t.Fatalf("List with check=%v err=%v, want [strings.json]", names, err)
	}

	if _, err := hardened.Open(context.Background(), "strings:es.json"); !errors.Is(err, ErrPathOutsideRoot) {
		t.Fatalf("Open escaped link err=%v, want ErrPathOutsideRoot", err)
	}
}

func TestNewHTTPSourceValidatesURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "/relative", "http://"} {
		if _, err := NewHTTPSource(raw, nil); !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("NewHTTPSource(%q) err=%v, want ErrInvalidOptions", raw, err)
		}
	}
}

func TestHTTPSourceStatuses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			_, _ = w.Write([]byte("{}"))
		case "/gone.json":
			w.WriteHeader(http.StatusGone)
		case "/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}

	ctx := context.Background()
	if ok, err := src.Exists(ctx, "ok.json"); err != nil || !ok {
		t.Fatalf("Exists(ok.json)=%v err=%v", ok, err)
	}

	for _, name := range []string{"gone.json", "missing.json"} {
		if ok, err := src.Exists(ctx, name); err != nil || ok {
			t.Fatalf("Exists(%s)=%v err=%v, want absent", name, ok, err)
		}
	}

	if _, err := src.Exists(ctx, "broken.json"); err == nil {
		t.Fatal("Exists(broken.json) err=nil, want status error")
	}

	if _, err := src.Open(ctx, "missing.json"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open(missing.json) err=%v, want ErrNotExist", err)
	}

	if _, err := src.Exists(ctx, "../x.json"); !errors.Is(err, ErrPathOutsideRoot) {
		t.Fatalf("Exists(../x.json) err=%v, want ErrPathOutsideRoot", err)
	}
}
