package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/docdex/docdex-mcp/internal/refdoc"
)

// BenchmarkAccessorBuild benchmarks cold construction: offset table
// plus header index
func BenchmarkAccessorBuild(b *testing.B) {
	path := filepath.Join(fixturesDir(b), "api_reference.txt")

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		src, err := refdoc.OpenFile(path)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := refdoc.New(context.Background(), src, refdoc.DefaultConfig()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSymbolSearch benchmarks ranked name search over the index
func BenchmarkSymbolSearch(b *testing.B) {
	acc := openReference(b)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := acc.Search("wid", nil, 10); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCachedClassLookup benchmarks the cache-hit path of a class
// lookup
func BenchmarkCachedClassLookup(b *testing.B) {
	acc := openReference(b)
	if _, err := acc.GetClass(context.Background(), "Widget"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := acc.GetClass(context.Background(), "Widget"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHandbookSearch benchmarks an uncached page search over the
// imported fixture handbook
func BenchmarkHandbookSearch(b *testing.B) {
	store, _ := syncedHandbook(b)
	defer store.Close()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := store.SearchPages(context.Background(), "widget", 10); err != nil {
			b.Fatal(err)
		}
	}
}
