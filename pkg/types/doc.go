// Package types provides shared type definitions for the Docdex MCP server.
//
// This package defines the domain records produced by the reference-document
// accessor, parse warnings, and search results.
//
// # Symbol Records
//
// Every documented API symbol is extracted into one of five record kinds,
// mirroring the five categories listed in the reference document's index:
//
//	class    -> ClassRecord    (overview, member name lists)
//	property -> PropertyRecord (type, default, description)
//	method   -> MethodRecord   (signature, params, return type, examples)
//	function -> FunctionRecord (signature, return type, description)
//	constant -> ConstantRecord (value, type, description)
//
// Records capture extraction state alongside content. A record whose block
// ran past the read budget is returned with Truncated set rather than
// discarded:
//
//	rec, err := acc.GetMethod(ctx, "Widget", "resize")
//	if rec.Truncated {
//	    // partial but still usable
//	}
//
// # Warnings
//
// Block extraction is tolerant: markup defects (a missing closing marker, a
// field directive that doesn't parse) produce ParseWarning entries on the
// record instead of failing the lookup. Callers that surface records to users
// should surface the warnings too:
//
//	for _, w := range rec.Warnings {
//	    log.Printf("widget.resize: %s", w)
//	}
//
// # Search Results
//
// SearchMatch carries one ranked hit from a symbol name search; PageMatch
// carries one ranked hit from a handbook search. Scores are heuristic ranks
// used for ordering, not probabilities.
//
// # Validation
//
// All domain types implement validation methods to ensure data integrity:
//
//	if err := rec.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Validation failures are reported through the package's sentinel errors
// (ErrEmptyName, ErrInvalidLine, ...), so callers can branch with errors.Is.
package types
