// Package handbook caches handbook pages from a local markdown
// directory in SQLite and serves scored searches over them.
//
// The page cache manages:
//   - Page bodies (zstd-compressed at rest)
//   - Section headings extracted at import time
//   - Content hashes for incremental sync
//   - Sync run history
//
// # Database Schema
//
// Tables:
//   - pages: One row per handbook document, keyed by slug
//   - headings: ATX headings per page with line numbers
//   - sync_runs: Import pass statistics
//   - schema_version: Migration tracking
//
// # Basic Usage
//
//	store, err := handbook.NewSQLiteStore("~/.docdex/handbook.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	syncer := handbook.NewSyncer(store)
//	stats, err := syncer.Sync(ctx, "/docs/handbook", nil)
//
//	page, err := store.GetPage(ctx, "getting_started/step_by_step")
//
// # Incremental Sync
//
// Sync hashes each source file with xxhash and skips pages whose hash
// matches the stored one. Pages whose source file disappeared are
// pruned. Each pass is recorded in sync_runs, so Status can report when
// the cache was last refreshed.
//
// # Search
//
// SearchPages scores pages by where the query matches: a title hit
// outranks heading hits, which outrank body occurrences. Wrap the store
// in a Searcher to put an LRU cache in front of repeated queries:
//
//	searcher, err := handbook.NewSearcher(store, 64)
//	results, err := searcher.Search(ctx, "signals", 10)
//
// # Build Modes
//
// The default build uses the pure Go driver (modernc.org/sqlite). Build
// with -tags cgosqlite to use github.com/mattn/go-sqlite3 instead.
package handbook
