package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex-mcp/internal/handbook"
	"github.com/docdex/docdex-mcp/internal/refdoc"
	"github.com/docdex/docdex-mcp/internal/template"
)

// referenceFixture is a compact reference document covering every symbol
// kind the tools surface
const referenceFixture = `Scripting API Reference

== API INDEX ==
Widget Panel
clamp
MAX_WIDGETS
== END INDEX ==

.. class:: Widget
   """
   Widget
   ======
   Base element for all on-screen controls.

   Properties:
      size

   Functions:
      resize

   """

   .. attribute:: size
      size = 0
      :type: Integer
      Current extent of the widget in pixels.

   .. method:: resize(width, height = 0)
      """
      resize(width: Integer, height: Integer = 0)
      Change the widget extent.
      :param width: new horizontal extent
      :rtype: Boolean
      """

.. class:: Panel
   """
   Panel
   =====
   Bare container with no documented members.
   """

.. function:: clamp(value, lo, hi)
   """
   clamp(value, lo, hi)
   Clamp value into the closed range [lo, hi].
   :rtype: Float
   """

.. data:: MAX_WIDGETS
   MAX_WIDGETS = 4096
   Upper bound of live widgets per scene.
`

// newTestAccessor builds an accessor over the in-memory fixture
func newTestAccessor(t *testing.T) *refdoc.Accessor {
	t.Helper()
	acc, err := refdoc.New(context.Background(), refdoc.NewStringSource(referenceFixture), refdoc.DefaultConfig())
	require.NoError(t, err)
	return acc
}

// newTestServer wires a server over fixture-backed subsystems
func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := handbook.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	pagesDir := t.TempDir()
	writeFixtureFile(t, pagesDir, "guides/signals.md", "# Working with signals\n\nSignals connect widgets to handlers.\n")
	writeFixtureFile(t, pagesDir, "install.md", "# Installing\n\nRun the installer.\n")
	_, err = handbook.NewSyncer(store).Sync(context.Background(), pagesDir, nil)
	require.NoError(t, err)

	tplDir := t.TempDir()
	writeFixtureFile(t, tplDir, "scenes/player.tmpl", "# Player controller\nlocal player = {}\n")

	srv, err := NewServer(Deps{
		Accessor:  newTestAccessor(t),
		Store:     store,
		Templates: template.NewCatalog(tplDir),
	})
	require.NoError(t, err)
	return srv
}

func writeFixtureFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// callRequest builds a tool invocation request
func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}
	return req
}

// resultText extracts the text payload of a tool result
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

// requireMCPError asserts err is an MCPError with the given code
func requireMCPError(t *testing.T, err error, code int) *MCPError {
	t.Helper()
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok, "expected *MCPError, got %T", err)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

func TestHandleGetClass(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		result, err := srv.handleGetClass(ctx, callRequest("get_class", map[string]interface{}{
			"name": "Widget",
		}))
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "# Widget")
		assert.Contains(t, text, "Base element for all on-screen controls.")
		assert.Contains(t, text, "- size")
		assert.Contains(t, text, "- resize")
	})

	t.Run("localized labels", func(t *testing.T) {
		result, err := srv.handleGetClass(ctx, callRequest("get_class", map[string]interface{}{
			"name":   "Widget",
			"locale": "de",
		}))
		require.NoError(t, err)
		assert.Contains(t, resultText(t, result), "## Eigenschaften")
	})

	t.Run("not found with suggestion", func(t *testing.T) {
		result, err := srv.handleGetClass(ctx, callRequest("get_class", map[string]interface{}{
			"name": "Wdget",
		}))
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "Not found")
		assert.Contains(t, text, "`Widget`")
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := srv.handleGetClass(ctx, callRequest("get_class", map[string]interface{}{}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("malformed arguments", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Name = "get_class"
		req.Params.Arguments = "not a map"
		_, err := srv.handleGetClass(ctx, req)
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})
}

func TestHandleGetProperty(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleGetProperty(ctx, callRequest("get_property", map[string]interface{}{
		"class": "Widget",
		"name":  "size",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "# Widget.size")
	assert.Contains(t, text, "**Type:** Integer")

	// A member of another class is out of scope for Panel
	result, err = srv.handleGetProperty(ctx, callRequest("get_property", map[string]interface{}{
		"class": "Panel",
		"name":  "size",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Not found")
}

func TestHandleGetMethod(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleGetMethod(ctx, callRequest("get_method", map[string]interface{}{
		"class": "Widget",
		"name":  "resize",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "# Widget.resize")
	assert.Contains(t, text, "resize(width: Integer, height: Integer = 0)")
	assert.Contains(t, text, "**Returns:** Boolean")
}

func TestHandleGetFunction(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.handleGetFunction(context.Background(), callRequest("get_function", map[string]interface{}{
		"name": "clamp",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "# clamp")
	assert.Contains(t, text, "**Returns:** Float")
}

func TestHandleGetConstant(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.handleGetConstant(context.Background(), callRequest("get_constant", map[string]interface{}{
		"name": "MAX_WIDGETS",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "# MAX_WIDGETS")
	assert.Contains(t, text, "**Value:** `4096`")
}

func TestHandleSearchSymbols(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	t.Run("ranked results", func(t *testing.T) {
		result, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", map[string]interface{}{
			"query": "wid",
		}))
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "**Widget**")
	})

	t.Run("kind filter excludes", func(t *testing.T) {
		result, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", map[string]interface{}{
			"query": "wid",
			"kinds": []interface{}{"function"},
		}))
		require.NoError(t, err)
		assert.NotContains(t, resultText(t, result), "**Widget**")
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", map[string]interface{}{
			"query": "wid",
			"kinds": []interface{}{"module"},
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", map[string]interface{}{
			"query": "wid",
			"limit": float64(500),
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", map[string]interface{}{}))
		requireMCPError(t, err, ErrorCodeEmptyQuery)
	})

	t.Run("injection-shaped query yields no results", func(t *testing.T) {
		result, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", map[string]interface{}{
			"query": "Widget; rm -rf /",
		}))
		require.NoError(t, err)
		assert.Contains(t, resultText(t, result), "No results")
	})
}

func TestHandleSearchHandbook(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleSearchHandbook(ctx, callRequest("search_handbook", map[string]interface{}{
		"query": "signals",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Working with signals")
	assert.Contains(t, text, "guides/signals")
}

func TestHandleGetHandbookPage(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleGetHandbookPage(ctx, callRequest("get_handbook_page", map[string]interface{}{
		"slug": "guides/signals",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Signals connect widgets to handlers.")

	result, err = srv.handleGetHandbookPage(ctx, callRequest("get_handbook_page", map[string]interface{}{
		"slug": "guides/missing",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Not found")
}

func TestHandbookToolsDisabled(t *testing.T) {
	srv, err := NewServer(Deps{Accessor: newTestAccessor(t)})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = srv.handleSearchHandbook(ctx, callRequest("search_handbook", map[string]interface{}{
		"query": "anything",
	}))
	requireMCPError(t, err, ErrorCodeHandbookDisabled)

	_, err = srv.handleGetHandbookPage(ctx, callRequest("get_handbook_page", map[string]interface{}{
		"slug": "install",
	}))
	requireMCPError(t, err, ErrorCodeHandbookDisabled)

	_, err = srv.handleListTemplates(ctx, callRequest("list_templates", nil))
	requireMCPError(t, err, ErrorCodeTemplatesDisabled)
}

func TestHandleListTemplates(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.handleListTemplates(context.Background(), callRequest("list_templates", nil))
	require.NoError(t, err)

	var payload struct {
		Count     int `json:"count"`
		Templates []struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "scenes/player.tmpl", payload.Templates[0].Name)
	assert.Equal(t, "Player controller", payload.Templates[0].Title)
}

func TestHandleGetTemplate(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleGetTemplate(ctx, callRequest("get_template", map[string]interface{}{
		"name": "scenes/player.tmpl",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "local player = {}")

	result, err = srv.handleGetTemplate(ctx, callRequest("get_template", map[string]interface{}{
		"name": "scenes/missing.tmpl",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Not found")

	_, err = srv.handleGetTemplate(ctx, callRequest("get_template", map[string]interface{}{
		"name": "../escape.tmpl",
	}))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleTranslateTerm(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	t.Run("forward", func(t *testing.T) {
		result, err := srv.handleTranslateTerm(ctx, callRequest("translate_term", map[string]interface{}{
			"term":   "properties",
			"locale": "de",
		}))
		require.NoError(t, err)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
		assert.Equal(t, "Eigenschaften", payload["translation"])
		assert.Equal(t, true, payload["found"])
	})

	t.Run("reverse", func(t *testing.T) {
		result, err := srv.handleTranslateTerm(ctx, callRequest("translate_term", map[string]interface{}{
			"term":    "Eigenschaften",
			"locale":  "de",
			"reverse": true,
		}))
		require.NoError(t, err)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
		assert.Equal(t, "properties", payload["term"])
	})

	t.Run("unknown locale", func(t *testing.T) {
		_, err := srv.handleTranslateTerm(ctx, callRequest("translate_term", map[string]interface{}{
			"term":   "properties",
			"locale": "xx",
		}))
		requireMCPError(t, err, ErrorCodeUnknownLocale)
	})
}

func TestHandleGetStatus(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)

	var payload struct {
		Server struct {
			Name string `json:"name"`
		} `json:"server"`
		Reference struct {
			IndexDegraded bool `json:"index_degraded"`
			Classes       int  `json:"classes"`
			Functions     int  `json:"functions"`
			Constants     int  `json:"constants"`
		} `json:"reference"`
		Handbook struct {
			Enabled    bool `json:"enabled"`
			TotalPages int  `json:"total_pages"`
		} `json:"handbook"`
		Templates struct {
			Enabled bool `json:"enabled"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))

	assert.Equal(t, ServerName, payload.Server.Name)
	assert.False(t, payload.Reference.IndexDegraded)
	assert.Equal(t, 2, payload.Reference.Classes)
	assert.Equal(t, 1, payload.Reference.Functions)
	assert.Equal(t, 1, payload.Reference.Constants)
	assert.True(t, payload.Handbook.Enabled)
	assert.Equal(t, 2, payload.Handbook.TotalPages)
	assert.True(t, payload.Templates.Enabled)
}

func TestErrorCodesUnique(t *testing.T) {
	codes := map[int]string{
		ErrorCodeInvalidParams:     "ErrorCodeInvalidParams",
		ErrorCodeInternalError:     "ErrorCodeInternalError",
		ErrorCodeHandbookDisabled:  "ErrorCodeHandbookDisabled",
		ErrorCodeTemplatesDisabled: "ErrorCodeTemplatesDisabled",
		ErrorCodeEmptyQuery:        "ErrorCodeEmptyQuery",
		ErrorCodeUnknownLocale:     "ErrorCodeUnknownLocale",
	}
	assert.Len(t, codes, 6, "error codes must be distinct")
	for code := range codes {
		assert.Negative(t, code)
	}
}

func TestMCPError_Error(t *testing.T) {
	err := &MCPError{Code: -32602, Message: "invalid params"}
	assert.Equal(t, "MCP error -32602: invalid params", err.Error())
}
