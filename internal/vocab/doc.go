// Package vocab provides the localized UI vocabulary used when rendering
// tool responses.
//
// A Vocabulary maps canonical lowercase terms ("properties", "returns") to
// their display forms per locale. It is loaded once, either from the YAML
// document embedded in the binary or from a file supplied at startup, and
// is immutable afterward.
//
// Lookups walk a fallback chain so regional variants degrade gracefully:
//
//	v, _ := vocab.Load("")                  // embedded default
//	v.Translate("properties", "pt-BR")      // "Propriedades"
//	v.Translate("properties", "pt")         // falls back to "en"
//	v.LookupTerm("Eigenschaften", "de")     // "properties"
//
// The accessor core never touches this package; localization is applied by
// the rendering layer only.
package vocab
