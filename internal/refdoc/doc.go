// Package refdoc extracts structured symbol documentation from one large,
// semi-structured generated reference document without loading the whole
// document into memory and without building a persistent index.
//
// # Architecture
//
// Five components cooperate, leaf first:
//
//	Source      - line-addressed reads over a precomputed offset table
//	SymbolIndex - name-only catalog built once from the header region
//	Locator     - bounded literal scans for definition markers
//	BlockReader - four bounded read primitives over one state machine
//	DetailCache - per-kind LRU memoization of parsed records
//
// The Accessor facade wires them together. Every query runs locate, read,
// parse, and short-circuits at the cache on repeats:
//
//	src, err := refdoc.OpenFile("api_reference.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	acc, err := refdoc.New(ctx, src, refdoc.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, err := acc.GetClass(ctx, "Widget")
//
// # Bounded access
//
// No operation reads without a line budget. Marker scans stop at a fixed
// cap, block reads stop at per-kind budgets, and a read that exhausts its
// budget before the closing marker returns a truncated block, which is a
// valid partial result rather than an error. The sum of these caps bounds
// the cost of every public call.
//
// # Lookup safety
//
// Symbol names are matched as literal substrings, never as patterns, and
// never reach a shell. Names that are empty, overlong, or carry control or
// shell metacharacters are rejected before any read happens and answer
// not found.
//
// # Degradation
//
// A missing or unreadable index header degrades the accessor instead of
// failing it: the index stays empty and every lookup answers
// types.ErrNotFound. Malformed blocks degrade per record: the parser fills
// what it can and attaches warnings for the rest. Nothing in this package
// is ever fatal to the host process.
package refdoc
