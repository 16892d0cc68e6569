package handbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrNotFound is returned when a requested page doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStore implements the Store interface using SQLite.
// Page bodies are zstd-compressed before they hit the database.
type SQLiteStore struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite page cache instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &SQLiteStore{db: db, enc: enc, dec: dec}, nil
}

// Close closes the database connection and releases the codecs
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	_ = s.enc.Close()
	s.dec.Close()
	return err
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// compress encodes a page body for storage
func (s *SQLiteStore) compress(body []byte) []byte {
	return s.enc.EncodeAll(body, nil)
}

// decompress decodes a stored page body
func (s *SQLiteStore) decompress(blob []byte) ([]byte, error) {
	return s.dec.DecodeAll(blob, nil)
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// Page operations

// upsertPageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) upsertPageWithQuerier(ctx context.Context, q querier, page *Page) error {
	body := s.compress([]byte(page.Body))
	query := `
		INSERT INTO pages (slug, title, body, content_hash, size_bytes, source_mtime, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			source_mtime = excluded.source_mtime,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		page.Slug, page.Title, body, page.ContentHash,
		page.SizeBytes, page.SourceMTime, now, now).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	page.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertPage(ctx context.Context, page *Page) error {
	return s.upsertPageWithQuerier(ctx, s.querier(), page)
}

// getPageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getPageWithQuerier(ctx context.Context, q querier, slug string) (*Page, error) {
	query := `
		SELECT id, slug, title, body, content_hash, size_bytes, source_mtime, created_at, updated_at
		FROM pages
		WHERE slug = ?
	`
	var page Page
	var blob []byte
	var mtime sql.NullTime
	err := q.QueryRowContext(ctx, query, slug).Scan(
		&page.ID, &page.Slug, &page.Title, &blob, &page.ContentHash,
		&page.SizeBytes, &mtime, &page.CreatedAt, &page.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	body, err := s.decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress page %s: %w", slug, err)
	}
	page.Body = string(body)
	if mtime.Valid {
		page.SourceMTime = mtime.Time
	}
	return &page, nil
}

func (s *SQLiteStore) GetPage(ctx context.Context, slug string) (*Page, error) {
	return s.getPageWithQuerier(ctx, s.querier(), slug)
}

// getPageMetaWithQuerier fetches a page without its body
func (s *SQLiteStore) getPageMetaWithQuerier(ctx context.Context, q querier, slug string) (*Page, error) {
	query := `
		SELECT id, slug, title, content_hash, size_bytes, source_mtime, created_at, updated_at
		FROM pages
		WHERE slug = ?
	`
	var page Page
	var mtime sql.NullTime
	err := q.QueryRowContext(ctx, query, slug).Scan(
		&page.ID, &page.Slug, &page.Title, &page.ContentHash,
		&page.SizeBytes, &mtime, &page.CreatedAt, &page.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if mtime.Valid {
		page.SourceMTime = mtime.Time
	}
	return &page, nil
}

func (s *SQLiteStore) GetPageMeta(ctx context.Context, slug string) (*Page, error) {
	return s.getPageMetaWithQuerier(ctx, s.querier(), slug)
}

// listPagesWithQuerier lists page metadata ordered by slug
func (s *SQLiteStore) listPagesWithQuerier(ctx context.Context, q querier) ([]*Page, error) {
	query := `
		SELECT id, slug, title, content_hash, size_bytes, source_mtime, created_at, updated_at
		FROM pages
		ORDER BY slug
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []*Page
	for rows.Next() {
		var page Page
		var mtime sql.NullTime
		if err := rows.Scan(
			&page.ID, &page.Slug, &page.Title, &page.ContentHash,
			&page.SizeBytes, &mtime, &page.CreatedAt, &page.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if mtime.Valid {
			page.SourceMTime = mtime.Time
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

func (s *SQLiteStore) ListPages(ctx context.Context) ([]*Page, error) {
	return s.listPagesWithQuerier(ctx, s.querier())
}

// deletePageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) deletePageWithQuerier(ctx context.Context, q querier, slug string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM pages WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeletePage(ctx context.Context, slug string) error {
	return s.deletePageWithQuerier(ctx, s.querier(), slug)
}

// pruneExceptWithQuerier deletes every page whose slug is not in keep
func (s *SQLiteStore) pruneExceptWithQuerier(ctx context.Context, q querier, keep []string) (int, error) {
	var result sql.Result
	var err error

	if len(keep) == 0 {
		result, err = q.ExecContext(ctx, `DELETE FROM pages`)
	} else {
		// Build parameterized NOT IN clause
		placeholders := make([]string, len(keep))
		args := make([]interface{}, len(keep))
		for i, slug := range keep {
			placeholders[i] = "?"
			args[i] = slug
		}
		query := `DELETE FROM pages WHERE slug NOT IN (` + strings.Join(placeholders, ",") + `)`
		result, err = q.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to prune pages: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *SQLiteStore) PruneExcept(ctx context.Context, keep []string) (int, error) {
	return s.pruneExceptWithQuerier(ctx, s.querier(), keep)
}

// Heading operations

// replaceHeadingsWithQuerier swaps a page's headings for a new set
func (s *SQLiteStore) replaceHeadingsWithQuerier(ctx context.Context, q querier, pageID int64, headings []Heading) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM headings WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("failed to clear headings: %w", err)
	}
	query := `INSERT INTO headings (page_id, level, text, line) VALUES (?, ?, ?, ?)`
	for _, h := range headings {
		if _, err := q.ExecContext(ctx, query, pageID, h.Level, h.Text, h.Line); err != nil {
			return fmt.Errorf("failed to insert heading: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) ReplaceHeadings(ctx context.Context, pageID int64, headings []Heading) error {
	return s.replaceHeadingsWithQuerier(ctx, s.querier(), pageID, headings)
}

// listHeadingsWithQuerier lists a page's headings in document order
func (s *SQLiteStore) listHeadingsWithQuerier(ctx context.Context, q querier, pageID int64) ([]*Heading, error) {
	query := `
		SELECT id, page_id, level, text, line
		FROM headings
		WHERE page_id = ?
		ORDER BY line
	`
	rows, err := q.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var headings []*Heading
	for rows.Next() {
		var h Heading
		if err := rows.Scan(&h.ID, &h.PageID, &h.Level, &h.Text, &h.Line); err != nil {
			return nil, err
		}
		headings = append(headings, &h)
	}
	return headings, rows.Err()
}

func (s *SQLiteStore) ListHeadings(ctx context.Context, pageID int64) ([]*Heading, error) {
	return s.listHeadingsWithQuerier(ctx, s.querier(), pageID)
}

// Sync bookkeeping

// recordSyncWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) recordSyncWithQuerier(ctx context.Context, q querier, run *SyncRun) error {
	query := `
		INSERT INTO sync_runs (started_at, finished_at, pages_imported, pages_skipped, pages_pruned, pages_failed)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		run.StartedAt, run.FinishedAt, run.PagesImported,
		run.PagesSkipped, run.PagesPruned, run.PagesFailed)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

func (s *SQLiteStore) RecordSync(ctx context.Context, run *SyncRun) error {
	return s.recordSyncWithQuerier(ctx, s.querier(), run)
}

// statusWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) statusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{
		SchemaVersion: CurrentSchemaVersion,
		BuildMode:     BuildMode,
	}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&status.TotalPages); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM headings`).Scan(&status.TotalHeadings); err != nil {
		return nil, fmt.Errorf("failed to count headings: %w", err)
	}

	var lastSynced sql.NullTime
	err := q.QueryRowContext(ctx, `SELECT finished_at FROM sync_runs ORDER BY finished_at DESC LIMIT 1`).Scan(&lastSynced)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read sync history: %w", err)
	}
	if lastSynced.Valid {
		status.LastSyncedAt = lastSynced.Time
	}

	return status, nil
}

func (s *SQLiteStore) Status(ctx context.Context) (*Status, error) {
	return s.statusWithQuerier(ctx, s.querier())
}

// Transaction method implementations

func (t *sqliteTx) UpsertPage(ctx context.Context, page *Page) error {
	return t.store.upsertPageWithQuerier(ctx, t.querier(), page)
}

func (t *sqliteTx) GetPage(ctx context.Context, slug string) (*Page, error) {
	return t.store.getPageWithQuerier(ctx, t.querier(), slug)
}

func (t *sqliteTx) GetPageMeta(ctx context.Context, slug string) (*Page, error) {
	return t.store.getPageMetaWithQuerier(ctx, t.querier(), slug)
}

func (t *sqliteTx) ListPages(ctx context.Context) ([]*Page, error) {
	return t.store.listPagesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeletePage(ctx context.Context, slug string) error {
	return t.store.deletePageWithQuerier(ctx, t.querier(), slug)
}

func (t *sqliteTx) PruneExcept(ctx context.Context, keep []string) (int, error) {
	return t.store.pruneExceptWithQuerier(ctx, t.querier(), keep)
}

func (t *sqliteTx) ReplaceHeadings(ctx context.Context, pageID int64, headings []Heading) error {
	return t.store.replaceHeadingsWithQuerier(ctx, t.querier(), pageID, headings)
}

func (t *sqliteTx) ListHeadings(ctx context.Context, pageID int64) ([]*Heading, error) {
	return t.store.listHeadingsWithQuerier(ctx, t.querier(), pageID)
}

func (t *sqliteTx) SearchPages(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return t.store.searchPagesWithQuerier(ctx, t.querier(), query, limit)
}

func (t *sqliteTx) RecordSync(ctx context.Context, run *SyncRun) error {
	return t.store.recordSyncWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) Status(ctx context.Context) (*Status, error) {
	return t.store.statusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
