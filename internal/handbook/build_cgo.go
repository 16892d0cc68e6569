//go:build cgosqlite
// +build cgosqlite

package handbook

// This file is compiled when building with CGO and the cgosqlite tag.
// It selects the C SQLite driver for the page cache.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "cgosqlite" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
