package handbook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrEmptyQuery is returned when a search query is blank
var ErrEmptyQuery = errors.New("empty query")

const (
	// DefaultSearchLimit caps result count when the caller passes none
	DefaultSearchLimit = 10
	// MaxSearchLimit is the hard ceiling on result count
	MaxSearchLimit = 50

	// DefaultSearchCacheSize is the number of query results kept in memory
	DefaultSearchCacheSize = 64

	scoreTitle    = 100
	scoreHeading  = 20
	scoreBodyCap  = 40
	snippetMaxLen = 160
)

// searchPagesWithQuerier scans all pages and scores them against query.
// A title hit outranks any number of heading hits, which outrank body
// occurrences. Matching is case-insensitive substring matching.
func (s *SQLiteStore) searchPagesWithQuerier(ctx context.Context, q querier, query string, limit int) ([]SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	type candidate struct {
		id    int64
		slug  string
		title string
		body  string
	}

	rows, err := q.QueryContext(ctx, `SELECT id, slug, title, body FROM pages ORDER BY slug`)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	for rows.Next() {
		var c candidate
		var blob []byte
		if err := rows.Scan(&c.id, &c.slug, &c.title, &blob); err != nil {
			_ = rows.Close()
			return nil, err
		}
		body, err := s.decompress(blob)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to decompress page %s: %w", c.slug, err)
		}
		c.body = string(body)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// The single connection must be free before the heading queries below
	if err := rows.Close(); err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, c := range candidates {
		score := 0
		if strings.Contains(strings.ToLower(c.title), needle) {
			score += scoreTitle
		}

		headings, err := s.listHeadingsWithQuerier(ctx, q, c.id)
		if err != nil {
			return nil, err
		}
		for _, h := range headings {
			if strings.Contains(strings.ToLower(h.Text), needle) {
				score += scoreHeading
			}
		}

		occurrences := strings.Count(strings.ToLower(c.body), needle)
		if occurrences > scoreBodyCap {
			occurrences = scoreBodyCap
		}
		score += occurrences

		if score == 0 {
			continue
		}
		results = append(results, SearchResult{
			Slug:    c.slug,
			Title:   c.title,
			Score:   score,
			Snippet: snippetFor(c.body, needle),
		})
	}

	// Highest score first; ties resolve by slug for stable output
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Slug < results[j].Slug
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *SQLiteStore) SearchPages(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return s.searchPagesWithQuerier(ctx, s.querier(), query, limit)
}

// snippetFor returns the first body line containing the needle. When no
// line matches (title-only hits), it falls back to the first non-blank,
// non-heading line.
func snippetFor(body, needle string) string {
	var fallback string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if fallback == "" {
			fallback = trimmed
		}
		if strings.Contains(strings.ToLower(trimmed), needle) {
			return truncateSnippet(trimmed)
		}
	}
	return truncateSnippet(fallback)
}

// truncateSnippet trims a snippet to snippetMaxLen without splitting a rune
func truncateSnippet(s string) string {
	if len(s) <= snippetMaxLen {
		return s
	}
	cut := snippetMaxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Searcher fronts a Store's page search with an LRU result cache
type Searcher struct {
	store   Store
	results *lru.Cache[string, []SearchResult]
}

// NewSearcher creates a Searcher over store
func NewSearcher(store Store, cacheSize int) (*Searcher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultSearchCacheSize
	}
	results, err := lru.New[string, []SearchResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	return &Searcher{store: store, results: results}, nil
}

// Search returns scored pages for query, serving repeated queries from
// the cache. Failed searches are never cached.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	key := fmt.Sprintf("%d:%s", limit, needle)
	if cached, ok := s.results.Get(key); ok {
		return cached, nil
	}

	results, err := s.store.SearchPages(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	s.results.Add(key, results)
	return results, nil
}

// Purge drops all cached results. Call it after a sync changes pages.
func (s *Searcher) Purge() {
	s.results.Purge()
}
