package handbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// MaxPageBytes caps how large a single source file may be. Oversized
// files are reported as failures and left out of the cache.
const MaxPageBytes = 2 << 20

// Syncer imports handbook pages from a source directory into a Store
type Syncer struct {
	store   Store
	workers int
}

// SyncConfig contains configuration for a sync pass
type SyncConfig struct {
	Workers   int // Number of concurrent workers (default: runtime.NumCPU())
	BatchSize int // Number of pages to commit per transaction (default: 16)
}

// SyncStats contains statistics about one sync pass
type SyncStats struct {
	PagesImported int
	PagesSkipped  int
	PagesPruned   int
	PagesFailed   int
	Duration      time.Duration
	ErrorMessages []string
}

// NewSyncer creates a new Syncer writing to store
func NewSyncer(store Store) *Syncer {
	return &Syncer{
		store:   store,
		workers: runtime.NumCPU(),
	}
}

// Sync walks dir, imports new and changed markdown files, prunes pages
// whose source file disappeared, and records the run.
func (s *Syncer) Sync(ctx context.Context, dir string, config *SyncConfig) (*SyncStats, error) {
	if config == nil {
		config = &SyncConfig{
			Workers:   runtime.NumCPU(),
			BatchSize: 16,
		}
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	s.workers = config.Workers

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	startTime := time.Now()
	stats := &SyncStats{
		ErrorMessages: make([]string, 0),
	}

	files, err := discoverPages(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover pages: %w", err)
	}

	if err := s.importFiles(ctx, dir, files, batchSize, stats); err != nil {
		return nil, fmt.Errorf("failed to import pages: %w", err)
	}

	// Drop pages whose source file is gone
	keep := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return nil, err
		}
		keep[i] = PageSlug(rel)
	}
	pruned, err := s.store.PruneExcept(ctx, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to prune pages: %w", err)
	}
	stats.PagesPruned = pruned
	stats.Duration = time.Since(startTime)

	run := &SyncRun{
		StartedAt:     startTime,
		FinishedAt:    time.Now(),
		PagesImported: stats.PagesImported,
		PagesSkipped:  stats.PagesSkipped,
		PagesPruned:   stats.PagesPruned,
		PagesFailed:   stats.PagesFailed,
	}
	if err := s.store.RecordSync(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}

	return stats, nil
}

// discoverPages finds all markdown files under dir
func discoverPages(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories, but never the root itself
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// importFiles imports a set of files concurrently in batches
func (s *Syncer) importFiles(ctx context.Context, dir string, files []string, batchSize int, stats *SyncStats) error {
	semaphore := make(chan struct{}, s.workers)

	var (
		imported int32
		skipped  int32
		failed   int32
	)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protect stats.ErrorMessages

	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]

		g.Go(func() error {
			return s.importBatch(gctx, dir, batch, semaphore, &imported, &skipped, &failed, &mu, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.PagesImported = int(imported)
	stats.PagesSkipped = int(skipped)
	stats.PagesFailed = int(failed)

	return nil
}

// importBatch imports a batch of files within a transaction
func (s *Syncer) importBatch(ctx context.Context, dir string, files []string,
	semaphore chan struct{}, imported, skipped, failed *int32,
	mu *sync.Mutex, stats *SyncStats) error {

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, path := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		err := s.importFile(ctx, tx, dir, path, imported, skipped)
		<-semaphore // Release semaphore

		if err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
			mu.Unlock()
			// Continue with other files
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// importFile imports a single markdown file
func (s *Syncer) importFile(ctx context.Context, store Store, dir, path string, imported, skipped *int32) error {
	relPath, err := filepath.Rel(dir, path)
	if err != nil {
		return err
	}
	slug := PageSlug(relPath)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > MaxPageBytes {
		return fmt.Errorf("page exceeds %d bytes", int64(MaxPageBytes))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	body := string(content)
	hash := contentHash(body)

	// Skip unchanged pages
	existing, err := store.GetPageMeta(ctx, slug)
	if err != nil && err != ErrNotFound {
		return err
	}
	if err == nil && existing.ContentHash == hash {
		atomic.AddInt32(skipped, 1)
		return nil
	}

	headings := ExtractHeadings(body)
	page := &Page{
		Slug:        slug,
		Title:       PageTitle(slug, headings),
		Body:        body,
		ContentHash: hash,
		SizeBytes:   info.Size(),
		SourceMTime: info.ModTime(),
	}
	if err := store.UpsertPage(ctx, page); err != nil {
		return err
	}
	if err := store.ReplaceHeadings(ctx, page.ID, headings); err != nil {
		return err
	}

	atomic.AddInt32(imported, 1)
	return nil
}

// contentHash computes a hash of the content using xxhash
func contentHash(content string) string {
	h := xxhash.Sum64String(content)
	return fmt.Sprintf("%x", h)
}
