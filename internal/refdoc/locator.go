package refdoc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// Locator limits and defaults
const (
	// MaxQueryLen caps the length of any symbol name accepted by a lookup.
	MaxQueryLen = 256

	// DefaultScanCap bounds how many lines a marker scan may visit before
	// giving up. No locate ever walks past this many lines.
	DefaultScanCap = 20000

	// DefaultRangeCap bounds how far FindBlockRange looks for the next
	// definition marker. When none appears, the range ends at start + cap.
	DefaultRangeCap = 400

	// scanChunkLines is how many lines each source read pulls during a scan.
	scanChunkLines = 256
)

// Definition and member marker prefixes. Definition markers sit at column
// zero and terminate the previous symbol's region; member markers are
// indented inside a class region and terminate nothing.
const (
	classMarkerPrefix     = ".. class:: "
	functionMarkerPrefix  = ".. function:: "
	constantMarkerPrefix  = ".. data:: "
	attributeMarkerPrefix = ".. attribute:: "
	methodMarkerPrefix    = ".. method:: "
)

// ValidateQuery rejects symbol names that must never reach a scan: empty
// names, names over the length cap, and names carrying control characters
// or shell metacharacters. Rejection happens before any read.
func ValidateQuery(q string) error {
	if q == "" {
		return fmt.Errorf("%w: empty query", types.ErrInvalidQuery)
	}
	if len(q) > MaxQueryLen {
		return fmt.Errorf("%w: query exceeds %d bytes", types.ErrInvalidQuery, MaxQueryLen)
	}
	for _, r := range q {
		switch {
		case r < 0x20 || r == 0x7f:
			return fmt.Errorf("%w: query contains control character", types.ErrInvalidQuery)
		case r == ';' || r == '|' || r == '&' || r == '$' || r == '`':
			return fmt.Errorf("%w: query contains %q", types.ErrInvalidQuery, r)
		}
	}
	return nil
}

// LocatedBlock is the transient line range of one symbol's documentation.
// End is exclusive and always strictly greater than Start.
type LocatedBlock struct {
	Start int
	End   int
}

// Locator finds the line where a symbol's documentation block begins using
// literal substring matching over a bounded, chunked line scan. It never
// interprets the query as a pattern and never shells out.
type Locator struct {
	src      Source
	scanCap  int
	rangeCap int
}

// NewLocator creates a Locator with the default scan bounds
func NewLocator(src Source) *Locator {
	return &Locator{
		src:      src,
		scanCap:  DefaultScanCap,
		rangeCap: DefaultRangeCap,
	}
}

// FindBlockStart returns the 1-based line of the definition marker for a
// top-level symbol. Class lookups try the function-style marker first and
// the class-style marker second, because the generator has emitted both
// conventions for classes over time.
func (l *Locator) FindBlockStart(ctx context.Context, name string, kind types.SymbolKind) (int, error) {
	if err := ValidateQuery(name); err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrNotFound, err)
	}

	var needles []string
	switch kind {
	case types.KindClass:
		needles = []string{functionMarkerPrefix + name, classMarkerPrefix + name}
	case types.KindFunction:
		needles = []string{functionMarkerPrefix + name}
	case types.KindConstant:
		needles = []string{constantMarkerPrefix + name}
	default:
		return 0, fmt.Errorf("%w: kind %q has no top-level marker", types.ErrNotFound, kind)
	}

	for _, needle := range needles {
		line, err := l.scan(ctx, 1, l.scanCap, func(text string) bool {
			return matchesMarker(text, needle, true)
		})
		if err == nil {
			return line, nil
		}
		if !isNotFound(err) {
			return 0, err
		}
	}
	return 0, types.ErrNotFound
}

// FindMemberStart returns the 1-based line of a member marker inside the
// given class range. Restricting the scan to the range is what resolves
// duplicate member names documented under unrelated classes.
func (l *Locator) FindMemberStart(ctx context.Context, rng LocatedBlock, name string, kind types.SymbolKind) (int, error) {
	if err := ValidateQuery(name); err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrNotFound, err)
	}

	var needle string
	switch kind {
	case types.KindProperty:
		needle = attributeMarkerPrefix + name
	case types.KindMethod:
		needle = methodMarkerPrefix + name
	default:
		return 0, fmt.Errorf("%w: kind %q is not a member kind", types.ErrNotFound, kind)
	}

	// The scan covers (rng.Start, rng.End) exclusive on both ends.
	budget := rng.End - rng.Start - 1
	if budget < 1 {
		return 0, types.ErrNotFound
	}
	return l.scan(ctx, rng.Start+1, budget, func(text string) bool {
		return matchesMarker(text, needle, false)
	})
}

// FindBlockRange locates a class definition marker and scans forward for
// the next definition marker as the exclusive end boundary. When no marker
// appears within the cap, the end is start + cap. The end is always
// strictly greater than the start.
func (l *Locator) FindBlockRange(ctx context.Context, name string) (LocatedBlock, error) {
	start, err := l.FindBlockStart(ctx, name, types.KindClass)
	if err != nil {
		return LocatedBlock{}, err
	}

	end, err := l.scan(ctx, start+1, l.rangeCap, isDefinitionMarker)
	if err != nil {
		if !isNotFound(err) {
			return LocatedBlock{}, err
		}
		end = start + l.rangeCap
	}
	return LocatedBlock{Start: start, End: end}, nil
}

// scan walks forward from the 1-based line from, visiting at most limit
// lines in fixed chunks, and returns the first line whose text satisfies
// match. Returns types.ErrNotFound when the cap or the document ends first.
func (l *Locator) scan(ctx context.Context, from, limit int, match func(string) bool) (int, error) {
	at := from
	remaining := limit
	for remaining > 0 {
		n := scanChunkLines
		if n > remaining {
			n = remaining
		}
		lines, err := l.src.ReadLines(ctx, at, n)
		if err != nil {
			return 0, err
		}
		if len(lines) == 0 {
			break
		}
		for i, text := range lines {
			if match(text) {
				return at + i, nil
			}
		}
		at += len(lines)
		remaining -= len(lines)
	}
	return 0, types.ErrNotFound
}

// matchesMarker reports whether text contains needle as a structural
// marker match: the needle must start the line content (at column zero for
// top-level markers) and the symbol name must end at a word boundary, so
// locating "run" never matches "run_async".
func matchesMarker(text, needle string, topLevel bool) bool {
	body := text
	if !topLevel {
		body = strings.TrimLeft(text, " \t")
	}
	if !strings.HasPrefix(body, needle) {
		return false
	}
	rest := body[len(needle):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case '(', ' ', '\t':
		return true
	}
	return false
}

// isDefinitionMarker reports whether a line opens a new top-level symbol
// region
func isDefinitionMarker(text string) bool {
	return strings.HasPrefix(text, classMarkerPrefix) ||
		strings.HasPrefix(text, functionMarkerPrefix) ||
		strings.HasPrefix(text, constantMarkerPrefix)
}

// isDirectiveLine reports whether a line holds any marker directive,
// top-level or member, at any indentation
func isDirectiveLine(text string) bool {
	trimmed := strings.TrimLeft(text, " \t")
	return strings.HasPrefix(trimmed, ".. ") && strings.Contains(trimmed, "::")
}

// isNotFound reports whether err carries the not-found sentinel
func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}
