// Package template serves script templates from a local directory.
//
// A Catalog enumerates .tmpl and .txt files under its root and reads
// individual templates on demand. Names are relative paths with forward
// slashes ("scenes/player.tmpl"); anything that escapes the root is
// rejected before the filesystem is touched. Reads are size-capped so a
// stray giant file cannot be pulled into a tool response.
//
// The display title comes from the template's first comment heading
// ("# Player controller" or "// Player controller"), falling back to a
// name derived from the file name.
package template
