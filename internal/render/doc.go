// Package render formats accessor records as markdown for tool responses.
//
// The accessor returns plain structured records and stays locale-unaware;
// this package owns all presentation. Section labels ("Properties",
// "Returns") are translated through the vocabulary for the requested
// locale, while extracted content is emitted verbatim.
//
// Rendering is pure: no file access, no document reads, no state beyond
// the vocabulary injected at construction.
package render
