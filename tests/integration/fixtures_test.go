package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/docdex/docdex-mcp/internal/handbook"
	"github.com/docdex/docdex-mcp/internal/refdoc"
)

// fixturesDir returns the shared fixture directory used by all
// integration suites
func fixturesDir(tb testing.TB) string {
	tb.Helper()

	wd, err := os.Getwd()
	if err != nil {
		tb.Fatal(err)
	}
	dir := filepath.Join(filepath.Dir(wd), "testdata", "fixtures")
	if _, err := os.Stat(dir); err != nil {
		tb.Fatalf("fixtures directory must exist: %v", err)
	}
	return dir
}

// openReference builds an accessor over the fixture reference document
func openReference(tb testing.TB) *refdoc.Accessor {
	tb.Helper()

	src, err := refdoc.OpenFile(filepath.Join(fixturesDir(tb), "api_reference.txt"))
	if err != nil {
		tb.Fatal(err)
	}
	acc, err := refdoc.New(context.Background(), src, refdoc.DefaultConfig())
	if err != nil {
		tb.Fatal(err)
	}
	return acc
}

// syncedHandbook imports the fixture handbook into a fresh in-memory
// store and returns both the store and the import stats. The caller owns
// the store and must close it.
func syncedHandbook(tb testing.TB) (*handbook.SQLiteStore, *handbook.SyncStats) {
	tb.Helper()

	store, err := handbook.NewSQLiteStore(":memory:")
	if err != nil {
		tb.Fatal(err)
	}
	dir := filepath.Join(fixturesDir(tb), "handbook")
	stats, err := handbook.NewSyncer(store).Sync(context.Background(), dir, nil)
	if err != nil {
		_ = store.Close()
		tb.Fatal(err)
	}
	return store, stats
}

// copyHandbookFixtures copies the fixture handbook into a fresh temp
// directory so a test can modify or remove pages between sync passes
func copyHandbookFixtures(tb testing.TB) string {
	tb.Helper()

	src := filepath.Join(fixturesDir(tb), "handbook")
	dst := tb.TempDir()

	err := filepath.Walk(src, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if fi.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, 0o644)
	})
	if err != nil {
		tb.Fatal(err)
	}
	return dst
}
