package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/docdex/docdex-mcp/internal/handbook"
	"github.com/docdex/docdex-mcp/internal/mcp"
	"github.com/docdex/docdex-mcp/internal/refdoc"
	"github.com/docdex/docdex-mcp/internal/template"
	"github.com/docdex/docdex-mcp/internal/vocab"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("Docdex MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", handbook.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", handbook.DriverName)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)
	log.Printf("Docdex MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", handbook.BuildMode, handbook.DriverName)

	refPath := os.Getenv("DOCDEX_REFERENCE_PATH")
	if refPath == "" {
		log.Fatalf("DOCDEX_REFERENCE_PATH is required (path to the generated API reference)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the reference document and build the symbol index
	src, err := refdoc.OpenFile(refPath)
	if err != nil {
		log.Fatalf("Failed to open reference document: %v", err)
	}
	accessor, err := refdoc.New(ctx, src, refdoc.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to build accessor: %v", err)
	}
	if status := accessor.Status(); status.IndexDegraded {
		log.Printf("Symbol index degraded: %s", status.DegradedReason)
	} else {
		st := accessor.Status()
		log.Printf("Symbol index ready: %d classes, %d functions, %d constants",
			st.Classes, st.Functions, st.Constants)
	}

	// Open the handbook page cache
	store, err := openStore(os.Getenv("DOCDEX_DB_PATH"))
	if err != nil {
		log.Fatalf("Failed to open handbook cache: %v", err)
	}

	// Import handbook pages when a source directory is configured
	if dir := os.Getenv("DOCDEX_HANDBOOK_DIR"); dir != "" {
		stats, err := handbook.NewSyncer(store).Sync(ctx, dir, nil)
		if err != nil {
			log.Printf("Handbook sync failed: %v", err)
		} else {
			log.Printf("Handbook synced: %d imported, %d skipped, %d pruned, %d failed in %v",
				stats.PagesImported, stats.PagesSkipped, stats.PagesPruned, stats.PagesFailed, stats.Duration)
			for _, msg := range stats.ErrorMessages {
				log.Printf("Handbook sync: %s", msg)
			}
		}
	}

	var catalog *template.Catalog
	if dir := os.Getenv("DOCDEX_TEMPLATE_DIR"); dir != "" {
		catalog = template.NewCatalog(dir)
	}

	voc, err := vocab.Load(os.Getenv("DOCDEX_VOCAB_PATH"))
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}

	// Create MCP server
	server, err := mcp.NewServer(mcp.Deps{
		Accessor:  accessor,
		Vocab:     voc,
		Store:     store,
		Templates: catalog,
	})
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
		_ = server.Close()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}

// openStore opens the handbook cache, defaulting to ~/.docdex/handbook.db
func openStore(dbPath string) (handbook.Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".docdex", "handbook.db")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return handbook.NewSQLiteStore(dbPath)
}
