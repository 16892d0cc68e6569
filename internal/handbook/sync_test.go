package handbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSync_ImportsMarkdownTree(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "install.md", "# Installing\n\nRun make install.\n")
	writePage(t, dir, "guide/setup.md", "# First Steps\n\n## Requirements\n\nA computer.\n")
	writePage(t, dir, "notes.txt", "not a page")
	writePage(t, dir, ".drafts/wip.md", "# WIP\n")

	ctx := context.Background()
	stats, err := NewSyncer(store).Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PagesImported)
	assert.Equal(t, 0, stats.PagesSkipped)
	assert.Equal(t, 0, stats.PagesFailed)
	assert.Empty(t, stats.ErrorMessages)

	page, err := store.GetPage(ctx, "guide/setup")
	require.NoError(t, err)
	assert.Equal(t, "First Steps", page.Title)
	assert.Contains(t, page.Body, "A computer.")

	headings, err := store.ListHeadings(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, headings, 2)
	assert.Equal(t, "Requirements", headings[1].Text)

	// Non-markdown files and hidden directories stay out
	_, err = store.GetPage(ctx, "notes")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetPage(ctx, ".drafts/wip")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSync_SecondPassSkipsUnchanged(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "a.md", "# A\n")
	writePage(t, dir, "b.md", "# B\n")

	ctx := context.Background()
	syncer := NewSyncer(store)

	stats, err := syncer.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PagesImported)

	stats, err = syncer.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PagesImported)
	assert.Equal(t, 2, stats.PagesSkipped)
}

func TestSync_ReimportsChangedFile(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "a.md", "# Old Title\n")
	writePage(t, dir, "b.md", "# B\n")

	ctx := context.Background()
	syncer := NewSyncer(store)
	_, err := syncer.Sync(ctx, dir, nil)
	require.NoError(t, err)

	writePage(t, dir, "a.md", "# New Title\n\n## Added Section\n")

	stats, err := syncer.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesImported)
	assert.Equal(t, 1, stats.PagesSkipped)

	page, err := store.GetPage(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "New Title", page.Title)

	headings, err := store.ListHeadings(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, headings, 2)
	assert.Equal(t, "Added Section", headings[1].Text)
}

func TestSync_PrunesDeletedPages(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "keep.md", "# Keep\n")
	gone := writePage(t, dir, "gone.md", "# Gone\n")

	ctx := context.Background()
	syncer := NewSyncer(store)
	_, err := syncer.Sync(ctx, dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(gone))

	stats, err := syncer.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesPruned)

	_, err = store.GetPage(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetPage(ctx, "keep")
	assert.NoError(t, err)
}

func TestSync_RecordsRun(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "a.md", "# A\n")

	ctx := context.Background()
	_, err := NewSyncer(store).Sync(ctx, dir, nil)
	require.NoError(t, err)

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalPages)
	assert.False(t, status.LastSyncedAt.IsZero())
}

func TestSync_OversizedFileReportedAsFailure(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "huge.md", strings.Repeat("a", MaxPageBytes+1))
	writePage(t, dir, "ok.md", "# OK\n")

	ctx := context.Background()
	stats, err := NewSyncer(store).Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesImported)
	assert.Equal(t, 1, stats.PagesFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "huge.md")

	_, err = store.GetPage(ctx, "huge")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetPage(ctx, "ok")
	assert.NoError(t, err)
}

func TestSync_EmptyDirPrunesEverything(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.UpsertPage(ctx, testPage("stale", "Stale", "body\n")))

	stats, err := NewSyncer(store).Sync(ctx, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PagesImported)
	assert.Equal(t, 1, stats.PagesPruned)

	pages, err := store.ListPages(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestSync_MissingDirFails(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	_, err := NewSyncer(store).Sync(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestSync_CanceledContext(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	writePage(t, dir, "a.md", "# A\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSyncer(store).Sync(ctx, dir, nil)
	assert.Error(t, err)
}

func TestSync_ManyFilesAcrossBatches(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	dir := t.TempDir()
	for i := 0; i < 40; i++ {
		writePage(t, dir, filepath.Join("pages", fmt.Sprintf("page%02d.md", i)), "# Page\n\nBody.\n")
	}

	ctx := context.Background()
	stats, err := NewSyncer(store).Sync(ctx, dir, &SyncConfig{Workers: 4, BatchSize: 8})
	require.NoError(t, err)
	assert.Equal(t, 40, stats.PagesImported)
	assert.Equal(t, 0, stats.PagesFailed)

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, status.TotalPages)
}
