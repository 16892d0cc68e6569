package refdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// Block read budgets per symbol kind. Every lookup terminates within its
// budget even when the document's closing markers are missing.
const (
	classBlockLines    = 160
	methodBlockLines   = 120
	propertyBlockLines = 80
	functionBlockLines = 120
	constantBlockLines = 60
)

// Search result limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// Config carries the construction-time settings of an Accessor
type Config struct {
	Index IndexConfig
	Cache CacheConfig
}

// DefaultConfig returns the standard accessor settings
func DefaultConfig() Config {
	return Config{
		Index: DefaultIndexConfig(),
		Cache: DefaultCacheConfig(),
	}
}

// Accessor answers structured symbol lookups against one reference
// document. The index is built once at construction and immutable
// afterward; every query runs locate, read, parse, and short-circuits at
// the cache on repeats. All methods are safe for concurrent use.
type Accessor struct {
	src   Source
	idx   *SymbolIndex
	loc   *Locator
	rdr   *BlockReader
	cache *DetailCache
}

// New builds an Accessor over src. A missing or unreadable index header
// does not fail construction: the accessor degrades to answering not found
// for every symbol.
func New(ctx context.Context, src Source, cfg Config) (*Accessor, error) {
	if src == nil {
		return nil, errors.New("refdoc: source is required")
	}

	idx, err := BuildIndex(ctx, src, cfg.Index)
	if err != nil {
		return nil, err
	}

	return &Accessor{
		src:   src,
		idx:   idx,
		loc:   NewLocator(src),
		rdr:   NewBlockReader(src),
		cache: NewDetailCache(cfg.Cache),
	}, nil
}

// Index exposes the name catalog, for status reporting and listings
func (a *Accessor) Index() *SymbolIndex {
	return a.idx
}

// GetClass returns the overview record for a class
func (a *Accessor) GetClass(ctx context.Context, name string) (*types.ClassRecord, error) {
	if err := rejectQuery(name); err != nil {
		return nil, err
	}
	if !a.idx.Has(name, types.KindClass) {
		return nil, types.ErrNotFound
	}

	return a.cache.Class(CacheKey{Name: name}, func() (*types.ClassRecord, error) {
		return a.computeClass(ctx, name)
	})
}

// computeClass locates, reads, and parses one class overview
func (a *Accessor) computeClass(ctx context.Context, name string) (*types.ClassRecord, error) {
	rng, err := a.loc.FindBlockRange(ctx, name)
	if err != nil {
		return nil, collapse(ctx, err)
	}

	budget := classBlockLines
	if span := rng.End - rng.Start; span < budget {
		budget = span
	}
	blk, err := a.rdr.ReadUntilPairedMarker(ctx, rng.Start, PairedDocMarker, budget)
	if err != nil {
		return nil, collapse(ctx, err)
	}

	rec := ParseClassOverview(name, blk)
	if len(rec.Properties) == 0 && len(rec.Methods) == 0 {
		a.fillMembersFromMarkers(ctx, rec, rng)
	}
	return rec, nil
}

// fillMembersFromMarkers recovers member names by scanning the class range
// for member markers when the overview lists none. A class whose range
// holds no markers truly has no members.
func (a *Accessor) fillMembersFromMarkers(ctx context.Context, rec *types.ClassRecord, rng LocatedBlock) {
	window := rng.End - rng.Start - 1
	if window < 1 {
		return
	}

	if hits, err := a.rdr.FindMarkersInWindow(ctx, rng.Start+1, attributeMarkerPrefix, window); err == nil {
		for _, hit := range hits {
			if name := memberNameFromMarker(hit.Text, attributeMarkerPrefix); name != "" {
				rec.Properties = append(rec.Properties, name)
			}
		}
	}
	if hits, err := a.rdr.FindMarkersInWindow(ctx, rng.Start+1, methodMarkerPrefix, window); err == nil {
		for _, hit := range hits {
			if name := memberNameFromMarker(hit.Text, methodMarkerPrefix); name != "" {
				rec.Methods = append(rec.Methods, name)
			}
		}
	}
}

// GetProperty returns the record for one class property. The member scan
// is scoped to the located class's line range, so the same property name
// on an unrelated class never shadows it.
func (a *Accessor) GetProperty(ctx context.Context, class, name string) (*types.PropertyRecord, error) {
	if err := rejectQuery(class); err != nil {
		return nil, err
	}
	if err := rejectQuery(name); err != nil {
		return nil, err
	}
	if !a.idx.Has(class, types.KindClass) {
		return nil, types.ErrNotFound
	}

	return a.cache.Property(CacheKey{Class: class, Name: name}, func() (*types.PropertyRecord, error) {
		rng, err := a.loc.FindBlockRange(ctx, class)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		start, err := a.loc.FindMemberStart(ctx, rng, name, types.KindProperty)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		blk, err := a.rdr.ReadUntilSiblingIndent(ctx, start, propertyBlockLines)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		return ParseProperty(class, name, blk), nil
	})
}

// GetMethod returns the record for one class method, scoped to the located
// class's line range
func (a *Accessor) GetMethod(ctx context.Context, class, name string) (*types.MethodRecord, error) {
	if err := rejectQuery(class); err != nil {
		return nil, err
	}
	if err := rejectQuery(name); err != nil {
		return nil, err
	}
	if !a.idx.Has(class, types.KindClass) {
		return nil, types.ErrNotFound
	}

	return a.cache.Method(CacheKey{Class: class, Name: name}, func() (*types.MethodRecord, error) {
		rng, err := a.loc.FindBlockRange(ctx, class)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		start, err := a.loc.FindMemberStart(ctx, rng, name, types.KindMethod)
		if err != nil {
			return nil, collapse(ctx, err)
		}

		budget := methodBlockLines
		if span := rng.End - start; span < budget {
			budget = span
		}
		blk, err := a.rdr.ReadUntilPairedMarker(ctx, start, PairedDocMarker, budget)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		return ParseMethod(class, name, blk), nil
	})
}

// GetFunction returns the record for a module-level function
func (a *Accessor) GetFunction(ctx context.Context, name string) (*types.FunctionRecord, error) {
	if err := rejectQuery(name); err != nil {
		return nil, err
	}
	if !a.idx.Has(name, types.KindFunction) {
		return nil, types.ErrNotFound
	}

	return a.cache.Function(CacheKey{Name: name}, func() (*types.FunctionRecord, error) {
		start, err := a.loc.FindBlockStart(ctx, name, types.KindFunction)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		blk, err := a.rdr.ReadUntilPairedMarker(ctx, start, PairedDocMarker, functionBlockLines)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		return ParseFunction(name, blk), nil
	})
}

// GetConstant returns the record for a module-level constant
func (a *Accessor) GetConstant(ctx context.Context, name string) (*types.ConstantRecord, error) {
	if err := rejectQuery(name); err != nil {
		return nil, err
	}
	if !a.idx.Has(name, types.KindConstant) {
		return nil, types.ErrNotFound
	}

	return a.cache.Constant(CacheKey{Name: name}, func() (*types.ConstantRecord, error) {
		start, err := a.loc.FindBlockStart(ctx, name, types.KindConstant)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		blk, err := a.rdr.ReadUntilSiblingIndent(ctx, start, constantBlockLines)
		if err != nil {
			return nil, collapse(ctx, err)
		}
		return ParseConstant(name, blk), nil
	})
}

// Search ranks cataloged names against the query. It operates only on the
// index and never triggers a block read.
func (a *Accessor) Search(query string, kinds []types.SymbolKind, limit int) ([]types.SearchMatch, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	return a.idx.Search(query, kinds, limit), nil
}

// Status is a snapshot of the accessor's operational state
type Status struct {
	IndexDegraded  bool
	DegradedReason string
	Classes        int
	Functions      int
	Constants      int
	CachedRecords  int
	ParseCount     int64
	DocumentLines  int
}

// Status reports the accessor's operational state
func (a *Accessor) Status() Status {
	degraded, reason := a.idx.Degraded()
	return Status{
		IndexDegraded:  degraded,
		DegradedReason: reason,
		Classes:        a.idx.Count(types.KindClass),
		Functions:      a.idx.Count(types.KindFunction),
		Constants:      a.idx.Count(types.KindConstant),
		CachedRecords:  a.cache.Len(),
		ParseCount:     a.cache.ParseCount(),
		DocumentLines:  a.src.LineCount(),
	}
}

// rejectQuery maps an invalid symbol name to the not-found sentinel before
// any search mechanism runs
func rejectQuery(name string) error {
	if err := ValidateQuery(name); err != nil {
		return fmt.Errorf("%w: %v", types.ErrNotFound, err)
	}
	return nil
}

// collapse converts a lookup failure into the not-found sentinel. A failing
// read degrades to not found rather than crossing the accessor boundary;
// only cancellation propagates as itself.
func collapse(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if isNotFound(err) {
		return err
	}
	return types.ErrNotFound
}
