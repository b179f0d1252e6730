// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderWatchRefreshesOnNewVariant(t *testing.T) {
	t.Parallel()

	l, dir := newDirLoader(t, map[string]string{"strings.json": `{"hello":"hello"}`}, Options{
		Preload:       true,
		Watch:         true,
		WatchDebounce: 20 * time.Millisecond,
	})

	ctx := context.Background()
	es := VariantContext{DimLang: "es"}

	res, err := l.Resolve(ctx, "strings", es)
	require.NoError(t, err)
	require.Equal(t, "strings.json", res.Candidate.Locator)

	writeFile(t, filepath.Join(dir, "strings:es.json"), `{"hello":"hola"}`)

	require.Eventually(t, func() bool {
		res, err := l.Resolve(ctx, "strings", es)
		return err == nil && res.Candidate.Locator == "strings:es.json"
	}, 5*time.Second, 20*time.Millisecond)

	assert.GreaterOrEqual(t, l.Stats().Scans, int64(2))
}

func TestLoaderWatchDropsRewrittenContent(t *testing.T) {
	t.Parallel()

	l, dir := newDirLoader(t, map[string]string{"strings.json": "one"}, Options{
		Preload:       true,
		Watch:         true,
		WatchDebounce: 20 * time.Millisecond,
	})

	ctx := context.Background()
	doc, err := l.Load(ctx, "strings", nil)
	require.NoError(t, err)
	require.Equal(t, "one", string(doc.Data))

	writeFile(t, filepath.Join(dir, "strings.json"), "two")

	require.Eventually(t, func() bool {
		doc, err := l.Load(ctx, "strings", nil)
		return err == nil && string(doc.Data) == "two"
	}, 5*time.Second, 20*time.Millisecond)
}
