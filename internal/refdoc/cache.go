package refdoc

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// Default per-kind cache capacities, sized to keep the whole cache within a
// few MB under heavy repeated querying
const (
	DefaultClassCacheSize    = 20
	DefaultPropertyCacheSize = 100
	DefaultMethodCacheSize   = 100
	DefaultFunctionCacheSize = 20
	DefaultConstantCacheSize = 50
)

// CacheConfig supplies per-kind capacities at construction. Zero values
// fall back to the defaults.
type CacheConfig struct {
	Class    int
	Property int
	Method   int
	Function int
	Constant int
}

// DefaultCacheConfig returns the standard per-kind capacities
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Class:    DefaultClassCacheSize,
		Property: DefaultPropertyCacheSize,
		Method:   DefaultMethodCacheSize,
		Function: DefaultFunctionCacheSize,
		Constant: DefaultConstantCacheSize,
	}
}

// normalize fills unset capacities with defaults
func (c CacheConfig) normalize() CacheConfig {
	def := DefaultCacheConfig()
	if c.Class <= 0 {
		c.Class = def.Class
	}
	if c.Property <= 0 {
		c.Property = def.Property
	}
	if c.Method <= 0 {
		c.Method = def.Method
	}
	if c.Function <= 0 {
		c.Function = def.Function
	}
	if c.Constant <= 0 {
		c.Constant = def.Constant
	}
	return c
}

// CacheKey identifies one cached record. Member lookups carry the owning
// class because the same member name can exist on unrelated classes; the
// kind is implicit in the per-kind cache holding the entry.
type CacheKey struct {
	Class string
	Name  string
}

// DetailCache memoizes parsed records with bounded per-kind LRU eviction.
// The cache is owned by its accessor instance, capacities are supplied at
// construction, and recomputation is idempotent, so concurrent lookups of
// the same key need no coordination beyond the LRU's own locking.
type DetailCache struct {
	classes    *lru.Cache[CacheKey, *types.ClassRecord]
	properties *lru.Cache[CacheKey, *types.PropertyRecord]
	methods    *lru.Cache[CacheKey, *types.MethodRecord]
	functions  *lru.Cache[CacheKey, *types.FunctionRecord]
	constants  *lru.Cache[CacheKey, *types.ConstantRecord]

	parses atomic.Int64
}

// NewDetailCache creates a DetailCache with the given per-kind capacities
func NewDetailCache(cfg CacheConfig) *DetailCache {
	cfg = cfg.normalize()
	return &DetailCache{
		classes:    mustLRU[*types.ClassRecord](cfg.Class),
		properties: mustLRU[*types.PropertyRecord](cfg.Property),
		methods:    mustLRU[*types.MethodRecord](cfg.Method),
		functions:  mustLRU[*types.FunctionRecord](cfg.Function),
		constants:  mustLRU[*types.ConstantRecord](cfg.Constant),
	}
}

// mustLRU builds an LRU whose size is already validated
func mustLRU[V any](size int) *lru.Cache[CacheKey, V] {
	cache, err := lru.New[CacheKey, V](size)
	if err != nil {
		// lru.New only fails on a non-positive size, which normalize
		// has excluded.
		panic(err)
	}
	return cache
}

// ParseCount returns how many compute calls have run, observable by tests
// to verify hit and eviction behavior
func (d *DetailCache) ParseCount() int64 {
	return d.parses.Load()
}

// Len returns the total number of cached records across all kinds
func (d *DetailCache) Len() int {
	return d.classes.Len() + d.properties.Len() + d.methods.Len() +
		d.functions.Len() + d.constants.Len()
}

// Purge drops every cached record
func (d *DetailCache) Purge() {
	d.classes.Purge()
	d.properties.Purge()
	d.methods.Purge()
	d.functions.Purge()
	d.constants.Purge()
}

// getOrCompute returns the cached record for key or runs compute and caches
// the result. Failed computes are not cached, so a symbol that appears
// later is found on retry.
func getOrCompute[V any](c *lru.Cache[CacheKey, V], counter *atomic.Int64, key CacheKey, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	counter.Add(1)
	c.Add(key, v)
	return v, nil
}

// Class memoizes a class record compute
func (d *DetailCache) Class(key CacheKey, compute func() (*types.ClassRecord, error)) (*types.ClassRecord, error) {
	return getOrCompute(d.classes, &d.parses, key, compute)
}

// Property memoizes a property record compute
func (d *DetailCache) Property(key CacheKey, compute func() (*types.PropertyRecord, error)) (*types.PropertyRecord, error) {
	return getOrCompute(d.properties, &d.parses, key, compute)
}

// Method memoizes a method record compute
func (d *DetailCache) Method(key CacheKey, compute func() (*types.MethodRecord, error)) (*types.MethodRecord, error) {
	return getOrCompute(d.methods, &d.parses, key, compute)
}

// Function memoizes a function record compute
func (d *DetailCache) Function(key CacheKey, compute func() (*types.FunctionRecord, error)) (*types.FunctionRecord, error) {
	return getOrCompute(d.functions, &d.parses, key, compute)
}

// Constant memoizes a constant record compute
func (d *DetailCache) Constant(key CacheKey, compute func() (*types.ConstantRecord, error)) (*types.ConstantRecord, error) {
	return getOrCompute(d.constants, &d.parses, key, compute)
}
