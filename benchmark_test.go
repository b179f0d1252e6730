// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"context"
	"fmt"
	"testing"
)

const (
	benchBaseCount = 512
	benchLangs     = 8
)

var (
	benchResolutionSink Resolution
	benchIndexSink      *Index
)

// buildBenchmarkNames returns variant file names for many base names.
func buildBenchmarkNames(bases int) []string {
	langs := []string{"en", "es", "de", "fr", "it", "pt", "ja", "ko"}[:benchLangs]
	names := make([]string, 0, bases*(1+benchLangs*3))
	for i := 0; i < bases; i++ {
		base := fmt.Sprintf("doc%04d", i)
		names = append(names, base+".json")
		for _, lang := range langs {
			names = append(names,
				base+":"+lang+".json",
				base+":"+lang+":f.json",
				base+":"+lang+":formal.json",
			)
		}
	}

	return names
}

func BenchmarkNewIndex(b *testing.B) {
	codec, err := NewCodec(Permissive(), []string{"json"})
	if err != nil {
		b.Fatal(err)
	}

	names := buildBenchmarkNames(benchBaseCount)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchIndexSink = NewIndex(codec, names)
	}
}

func BenchmarkResolveFromIndex(b *testing.B) {
	codec, err := NewCodec(Permissive(), []string{"json"})
	if err != nil {
		b.Fatal(err)
	}

	idx := NewIndex(codec, buildBenchmarkNames(benchBaseCount))
	req := VariantContext{DimLang: "es", DimGender: "f", DimForm: "formal"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		base := fmt.Sprintf("doc%04d", i%benchBaseCount)
		benchResolutionSink = Resolve(base, req, idx.Candidates(base))
	}
}

func BenchmarkLoaderResolveCached(b *testing.B) {
	files := make(map[string]string)
	for _, name := range buildBenchmarkNames(benchBaseCount) {
		files[name] = "{}"
	}

	l, err := New(context.Background(), Options{Source: newMemorySource(files), Preload: true})
	if err != nil {
		b.Fatal(err)
	}
	defer l.Close()

	ctx := context.Background()
	req := VariantContext{DimLang: "es", DimForm: "formal"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := l.Resolve(ctx, "doc0001", req)
		if err != nil {
			b.Fatal(err)
		}

		benchResolutionSink = res
	}
}
