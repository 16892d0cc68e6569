package handbook

import (
	"context"
	"time"
)

// Page is one handbook document imported from the source directory.
// Body holds the markdown text; at rest it is zstd-compressed.
type Page struct {
	ID          int64
	Slug        string
	Title       string
	Body        string
	ContentHash string
	SizeBytes   int64
	SourceMTime time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Heading is a section heading extracted from a page at import time.
type Heading struct {
	ID     int64
	PageID int64
	Level  int
	Text   string
	Line   int
}

// SyncRun records one completed import pass over the source directory.
type SyncRun struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	PagesImported int
	PagesSkipped  int
	PagesPruned   int
	PagesFailed   int
}

// SearchResult is one scored page returned by SearchPages.
type SearchResult struct {
	Slug    string
	Title   string
	Score   int
	Snippet string
}

// Status summarizes the cache contents.
type Status struct {
	TotalPages    int
	TotalHeadings int
	LastSyncedAt  time.Time
	SchemaVersion string
	BuildMode     string
}

// Store defines the persistence interface for handbook pages.
// Implementations must be safe for concurrent use.
type Store interface {
	// Page operations
	UpsertPage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, slug string) (*Page, error)
	GetPageMeta(ctx context.Context, slug string) (*Page, error)
	ListPages(ctx context.Context) ([]*Page, error)
	DeletePage(ctx context.Context, slug string) error
	PruneExcept(ctx context.Context, keep []string) (int, error)

	// Heading operations
	ReplaceHeadings(ctx context.Context, pageID int64, headings []Heading) error
	ListHeadings(ctx context.Context, pageID int64) ([]*Heading, error)

	// Search operations
	SearchPages(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Sync bookkeeping
	RecordSync(ctx context.Context, run *SyncRun) error
	Status(ctx context.Context) (*Status, error)

	// Lifecycle
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a Store scoped to a database transaction.
type Tx interface {
	Commit() error
	Rollback() error
	Store
}
