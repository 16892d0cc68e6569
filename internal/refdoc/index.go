package refdoc

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// Index header markers and defaults
const (
	indexOpenMarker  = "== API INDEX =="
	indexCloseMarker = "== END INDEX =="

	// DefaultHeaderStart and DefaultHeaderEnd bound the header region scanned
	// for the index block. The generator always emits the index near the top.
	DefaultHeaderStart = 1
	DefaultHeaderEnd   = 120

	// bloomFPRate is the accepted false-positive rate for the negative
	// membership filter.
	bloomFPRate = 0.01
)

// IndexConfig bounds the header region read by BuildIndex
type IndexConfig struct {
	HeaderStart int
	HeaderEnd   int
}

// DefaultIndexConfig returns the standard header window
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		HeaderStart: DefaultHeaderStart,
		HeaderEnd:   DefaultHeaderEnd,
	}
}

// SymbolIndex is the name-only catalog of documented symbols, built once
// from the header region and immutable afterward. A degraded index (header
// missing or unreadable) is empty but fully usable: every membership check
// answers false.
type SymbolIndex struct {
	kinds  map[string]types.SymbolKind
	byKind map[types.SymbolKind][]string
	filter *bloom.BloomFilter

	degraded bool
	reason   string
}

// BuildIndex reads only the configured header line range and categorizes the
// tokens it finds between the index markers. A missing or unreadable header
// is non-fatal: the returned index is empty and marked degraded, and every
// later query reports not found.
func BuildIndex(ctx context.Context, src Source, cfg IndexConfig) (*SymbolIndex, error) {
	if cfg.HeaderStart < 1 {
		cfg.HeaderStart = DefaultHeaderStart
	}
	if cfg.HeaderEnd < cfg.HeaderStart {
		cfg.HeaderEnd = cfg.HeaderStart + (DefaultHeaderEnd - DefaultHeaderStart)
	}

	idx := &SymbolIndex{
		kinds:  make(map[string]types.SymbolKind),
		byKind: make(map[types.SymbolKind][]string),
	}

	lines, err := src.ReadLines(ctx, cfg.HeaderStart, cfg.HeaderEnd-cfg.HeaderStart+1)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return idx.degrade("header region unreadable: " + err.Error()), nil
	}

	open := -1
	closed := -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case indexOpenMarker:
			if open < 0 {
				open = i
			}
		case indexCloseMarker:
			if open >= 0 && closed < 0 {
				closed = i
			}
		}
	}
	if open < 0 {
		return idx.degrade("index open marker not found in header region"), nil
	}
	if closed < 0 {
		return idx.degrade("index close marker not found in header region"), nil
	}

	for _, line := range lines[open+1 : closed] {
		for _, tok := range splitIndexTokens(line) {
			kind, ok := classifyToken(tok)
			if !ok {
				continue
			}
			if _, dup := idx.kinds[tok]; dup {
				continue
			}
			idx.kinds[tok] = kind
			idx.byKind[kind] = append(idx.byKind[kind], tok)
		}
	}

	if len(idx.kinds) > 0 {
		idx.filter = bloom.NewWithEstimates(uint(len(idx.kinds)), bloomFPRate)
		for name, kind := range idx.kinds {
			idx.filter.Add(memberKey(kind, name))
		}
	}

	return idx, nil
}

// degrade marks the index unavailable and records why
func (ix *SymbolIndex) degrade(reason string) *SymbolIndex {
	ix.degraded = true
	ix.reason = reason
	return ix
}

// Degraded reports whether the index block could not be read, and why
func (ix *SymbolIndex) Degraded() (bool, string) {
	return ix.degraded, ix.reason
}

// Has reports whether name is cataloged under kind. The bloom filter short
// circuits the common negative case before the map lookup.
func (ix *SymbolIndex) Has(name string, kind types.SymbolKind) bool {
	if len(ix.kinds) == 0 {
		return false
	}
	if ix.filter != nil && !ix.filter.Test(memberKey(kind, name)) {
		return false
	}
	got, ok := ix.kinds[name]
	return ok && got == kind
}

// KindOf returns the cataloged kind for name
func (ix *SymbolIndex) KindOf(name string) (types.SymbolKind, bool) {
	kind, ok := ix.kinds[name]
	return kind, ok
}

// Names returns a copy of the cataloged names for kind, in document order
func (ix *SymbolIndex) Names(kind types.SymbolKind) []string {
	names := ix.byKind[kind]
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Count returns the number of cataloged names for kind
func (ix *SymbolIndex) Count(kind types.SymbolKind) int {
	return len(ix.byKind[kind])
}

// Total returns the number of cataloged names across all kinds
func (ix *SymbolIndex) Total() int {
	return len(ix.kinds)
}

// Search ranks cataloged names against query without ever reading the
// document body. Kinds filters the searched categories; empty means all.
// Results are sorted by score descending, ties broken by name.
func (ix *SymbolIndex) Search(query string, kinds []types.SymbolKind, limit int) []types.SearchMatch {
	if query == "" || limit <= 0 {
		return nil
	}
	if len(kinds) == 0 {
		kinds = []types.SymbolKind{types.KindClass, types.KindFunction, types.KindConstant}
	}

	var matches []types.SearchMatch
	for _, kind := range kinds {
		for _, name := range ix.byKind[kind] {
			score := scoreName(name, query)
			if score == 0 {
				continue
			}
			matches = append(matches, types.SearchMatch{
				Name:  name,
				Kind:  kind,
				Score: score,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Match quality tiers for Search
const (
	scoreExact       = 100
	scoreExactFold   = 90
	scorePrefix      = 75
	scoreSubstring   = 60
	scoreSubsequence = 40
)

// scoreName rates how well a cataloged name matches the query
func scoreName(name, query string) int {
	if name == query {
		return scoreExact
	}
	ln := strings.ToLower(name)
	lq := strings.ToLower(query)
	switch {
	case ln == lq:
		return scoreExactFold
	case strings.HasPrefix(ln, lq):
		return scorePrefix
	case strings.Contains(ln, lq):
		return scoreSubstring
	case isSubsequence(lq, ln):
		return scoreSubsequence
	}
	return 0
}

// isSubsequence reports whether every rune of needle appears in haystack in
// order, not necessarily adjacent
func isSubsequence(needle, haystack string) bool {
	if needle == "" {
		return false
	}
	i := 0
	runes := []rune(needle)
	for _, r := range haystack {
		if r == runes[i] {
			i++
			if i == len(runes) {
				return true
			}
		}
	}
	return false
}

// memberKey builds the bloom filter key for a cataloged symbol
func memberKey(kind types.SymbolKind, name string) []byte {
	return []byte(string(kind) + "|" + name)
}

// splitIndexTokens splits one index line into candidate symbol tokens
func splitIndexTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// classifyToken maps an index token to a symbol kind by its lexical shape:
// upper-snake tokens are constants, capitalized tokens are classes, and
// lowercase tokens are functions. Tokens of any other shape are skipped.
func classifyToken(tok string) (types.SymbolKind, bool) {
	if tok == "" {
		return "", false
	}

	first := rune(tok[0])
	switch {
	case first >= 'A' && first <= 'Z':
		if len(tok) > 1 && isUpperSnake(tok) {
			return types.KindConstant, true
		}
		if isCapitalized(tok) {
			return types.KindClass, true
		}
	case first >= 'a' && first <= 'z':
		if isLowerIdent(tok) {
			return types.KindFunction, true
		}
	}
	return "", false
}

// isUpperSnake matches tokens of only capitals, digits, and underscores
func isUpperSnake(tok string) bool {
	for _, r := range tok {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// isCapitalized matches alphanumeric tokens with a capital first letter and
// at least one lowercase letter
func isCapitalized(tok string) bool {
	hasLower := false
	for _, r := range tok {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return hasLower
}

// isLowerIdent matches tokens of only lowercase letters, digits, and
// underscores
func isLowerIdent(tok string) bool {
	for _, r := range tok {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
