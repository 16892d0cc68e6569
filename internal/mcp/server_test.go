package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex-mcp/internal/handbook"
	"github.com/docdex/docdex-mcp/internal/refdoc"
)

func TestNewServer_RequiresAccessor(t *testing.T) {
	_, err := NewServer(Deps{})
	assert.Error(t, err)
}

func TestNewServer_MinimalDeps(t *testing.T) {
	srv, err := NewServer(Deps{Accessor: newTestAccessor(t)})
	require.NoError(t, err)

	// The embedded vocabulary backs rendering when none is injected
	assert.NotNil(t, srv.vocab)
	assert.NotNil(t, srv.render)
	assert.Nil(t, srv.store)
	assert.Nil(t, srv.searcher)
	assert.Nil(t, srv.templates)

	// Closing without a store is a no-op
	assert.NoError(t, srv.Close())
}

func TestNewServer_BuildsSearcherFromStore(t *testing.T) {
	store, err := handbook.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	srv, err := NewServer(Deps{
		Accessor: newTestAccessor(t),
		Store:    store,
	})
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	// A searcher is derived from the store when none was injected
	assert.NotNil(t, srv.searcher)
}

func TestNewServer_DegradedIndexStillServes(t *testing.T) {
	// No index header at all: every lookup answers not found, but the
	// server itself must start and report its state.
	src := refdoc.NewStringSource("A document with no index block.\n")
	acc, err := refdoc.New(context.Background(), src, refdoc.DefaultConfig())
	require.NoError(t, err)

	srv, err := NewServer(Deps{Accessor: acc})
	require.NoError(t, err)

	ctx := context.Background()
	result, err := srv.handleGetClass(ctx, callRequest("get_class", map[string]interface{}{
		"name": "Widget",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Not found")

	status, err := srv.handleGetStatus(ctx, callRequest("get_status", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, status), `"index_degraded": true`)
}
