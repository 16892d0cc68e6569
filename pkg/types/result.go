package types

// SearchMatch is a single ranked hit from a symbol name search.
// Matching is performed against the symbol index only, never against
// the body of the reference document.
type SearchMatch struct {
	Name  string
	Kind  SymbolKind
	Score int // 0-100 heuristic rank, higher is better
}

// Validate checks if the search match is well formed
func (m *SearchMatch) Validate() error {
	if m.Name == "" {
		return ErrEmptyName
	}
	if !m.Kind.Valid() {
		return ErrInvalidKind
	}
	if m.Score < 0 || m.Score > 100 {
		return ErrInvalidScore
	}
	return nil
}

// PageMatch is a single ranked hit from a handbook search
type PageMatch struct {
	Slug    string
	Title   string
	Score   int    // weighted occurrence count, higher is better
	Snippet string // first matching line of the body, trimmed
}

// Validate checks if the page match is well formed
func (m *PageMatch) Validate() error {
	if m.Slug == "" {
		return ErrEmptySlug
	}
	if m.Score < 0 {
		return ErrInvalidScore
	}
	return nil
}
