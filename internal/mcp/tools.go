package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docdex/docdex-mcp/internal/handbook"
	"github.com/docdex/docdex-mcp/internal/refdoc"
	"github.com/docdex/docdex-mcp/internal/template"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeHandbookDisabled  = -32001 // Handbook cache not configured
	ErrorCodeTemplatesDisabled = -32002 // Template catalog not configured
	ErrorCodeEmptyQuery        = -32003 // Query parameter is empty
	ErrorCodeUnknownLocale     = -32004 // Locale not present in the vocabulary
)

// suggestionLimit caps how many close names a not-found response offers
const suggestionLimit = 3

// handleGetClass handles the get_class tool invocation
func (s *Server) handleGetClass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	locale := getStringDefault(args, "locale", "")

	rec, err := s.accessor.GetClass(ctx, name)
	if errors.Is(err, types.ErrNotFound) {
		return mcp.NewToolResultText(s.symbolNotFound(name, types.KindClass, locale)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "class lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(s.render.Class(rec, locale)), nil
}

// handleGetProperty handles the get_property tool invocation
func (s *Server) handleGetProperty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	class, err := requireString(args, "class")
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	locale := getStringDefault(args, "locale", "")

	rec, err := s.accessor.GetProperty(ctx, class, name)
	if errors.Is(err, types.ErrNotFound) {
		return mcp.NewToolResultText(s.memberNotFound(class, name, locale)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "property lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(s.render.Property(rec, locale)), nil
}

// handleGetMethod handles the get_method tool invocation
func (s *Server) handleGetMethod(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	class, err := requireString(args, "class")
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	locale := getStringDefault(args, "locale", "")

	rec, err := s.accessor.GetMethod(ctx, class, name)
	if errors.Is(err, types.ErrNotFound) {
		return mcp.NewToolResultText(s.memberNotFound(class, name, locale)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "method lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(s.render.Method(rec, locale)), nil
}

// handleGetFunction handles the get_function tool invocation
func (s *Server) handleGetFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	locale := getStringDefault(args, "locale", "")

	rec, err := s.accessor.GetFunction(ctx, name)
	if errors.Is(err, types.ErrNotFound) {
		return mcp.NewToolResultText(s.symbolNotFound(name, types.KindFunction, locale)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "function lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(s.render.Function(rec, locale)), nil
}

// handleGetConstant handles the get_constant tool invocation
func (s *Server) handleGetConstant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	locale := getStringDefault(args, "locale", "")

	rec, err := s.accessor.GetConstant(ctx, name)
	if errors.Is(err, types.ErrNotFound) {
		return mcp.NewToolResultText(s.symbolNotFound(name, types.KindConstant, locale)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "constant lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(s.render.Constant(rec, locale)), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	locale := getStringDefault(args, "locale", "")

	limit := getIntDefault(args, "limit", refdoc.DefaultSearchLimit)
	if limit < 1 || limit > refdoc.MaxSearchLimit {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", refdoc.MaxSearchLimit), map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
	}

	kinds, err := symbolKinds(getStringSlice(args, "kinds"))
	if err != nil {
		return nil, err
	}

	matches, err := s.accessor.Search(query, kinds, limit)
	if err != nil {
		// Queries the locator would refuse never match anything.
		matches = nil
	}

	return mcp.NewToolResultText(s.render.SymbolMatches(query, matches, locale)), nil
}

// handleSearchHandbook handles the search_handbook tool invocation
func (s *Server) handleSearchHandbook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.searcher == nil {
		return nil, newMCPError(ErrorCodeHandbookDisabled, "handbook cache is not configured", nil)
	}
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	locale := getStringDefault(args, "locale", "")

	limit := getIntDefault(args, "limit", handbook.DefaultSearchLimit)
	if limit < 1 || limit > handbook.MaxSearchLimit {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", handbook.MaxSearchLimit), map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
	}

	results, err := s.searcher.Search(ctx, query, limit)
	if errors.Is(err, handbook.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter cannot be blank", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "handbook search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	matches := make([]types.PageMatch, len(results))
	for i, r := range results {
		matches[i] = types.PageMatch{
			Slug:    r.Slug,
			Title:   r.Title,
			Score:   r.Score,
			Snippet: r.Snippet,
		}
	}

	return mcp.NewToolResultText(s.render.PageMatches(query, matches, locale)), nil
}

// handleGetHandbookPage handles the get_handbook_page tool invocation
func (s *Server) handleGetHandbookPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return nil, newMCPError(ErrorCodeHandbookDisabled, "handbook cache is not configured", nil)
	}
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	slug, err := requireString(args, "slug")
	if err != nil {
		return nil, err
	}

	page, err := s.store.GetPage(ctx, slug)
	if errors.Is(err, handbook.ErrNotFound) {
		return mcp.NewToolResultText(s.render.NotFound(slug, nil, "")), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "page lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(page.Body), nil
}

// handleListTemplates handles the list_templates tool invocation
func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.templates == nil {
		return nil, newMCPError(ErrorCodeTemplatesDisabled, "template catalog is not configured", nil)
	}

	infos, err := s.templates.List(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "template listing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, len(infos))
	for i, info := range infos {
		entries[i] = map[string]interface{}{
			"name":       info.Name,
			"title":      info.Title,
			"size_bytes": info.Size,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":     len(entries),
		"templates": entries,
	})), nil
}

// handleGetTemplate handles the get_template tool invocation
func (s *Server) handleGetTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.templates == nil {
		return nil, newMCPError(ErrorCodeTemplatesDisabled, "template catalog is not configured", nil)
	}
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}

	tpl, err := s.templates.Get(ctx, name)
	switch {
	case errors.Is(err, template.ErrNotFound):
		return mcp.NewToolResultText(s.render.NotFound(name, nil, "")), nil
	case errors.Is(err, template.ErrInvalidName):
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid template name", map[string]interface{}{
			"param":  "name",
			"reason": err.Error(),
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "template read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(tpl.Content), nil
}

// handleTranslateTerm handles the translate_term tool invocation
func (s *Server) handleTranslateTerm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := requestArgs(request)
	if err != nil {
		return nil, err
	}
	term, err := requireString(args, "term")
	if err != nil {
		return nil, err
	}
	locale := getStringDefault(args, "locale", "")
	reverse := getBoolDefault(args, "reverse", false)

	if locale != "" && !s.vocab.HasLocale(locale) {
		return nil, newMCPError(ErrorCodeUnknownLocale, "locale is not defined in the vocabulary", map[string]interface{}{
			"param":     "locale",
			"value":     locale,
			"available": s.vocab.Locales(),
		})
	}

	if reverse {
		canonical, found := s.vocab.LookupTerm(term, locale)
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"input":  term,
			"locale": locale,
			"term":   canonical,
			"found":  found,
		})), nil
	}

	translation, found := s.vocab.Translate(term, locale)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"term":        term,
		"locale":      locale,
		"translation": translation,
		"found":       found,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.accessor.Status()
	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
		"reference": map[string]interface{}{
			"index_degraded": st.IndexDegraded,
			"classes":        st.Classes,
			"functions":      st.Functions,
			"constants":      st.Constants,
			"cached_records": st.CachedRecords,
			"parse_count":    st.ParseCount,
			"document_lines": st.DocumentLines,
		},
		"vocabulary": map[string]interface{}{
			"locales":  s.vocab.Locales(),
			"fallback": s.vocab.Fallback(),
		},
	}
	if st.IndexDegraded {
		ref := response["reference"].(map[string]interface{})
		ref["degraded_reason"] = st.DegradedReason
	}

	if s.store != nil {
		hb, err := s.store.Status(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "handbook status failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		status := map[string]interface{}{
			"enabled":        true,
			"total_pages":    hb.TotalPages,
			"total_headings": hb.TotalHeadings,
			"schema_version": hb.SchemaVersion,
			"build_mode":     hb.BuildMode,
		}
		if !hb.LastSyncedAt.IsZero() {
			status["last_synced_at"] = hb.LastSyncedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		response["handbook"] = status
	} else {
		response["handbook"] = map[string]interface{}{"enabled": false}
	}

	response["templates"] = map[string]interface{}{"enabled": s.templates != nil}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// symbolNotFound renders a top-level symbol miss with close-name suggestions
// from the index
func (s *Server) symbolNotFound(name string, kind types.SymbolKind, locale string) string {
	suggestions, err := s.accessor.Search(name, []types.SymbolKind{kind}, suggestionLimit)
	if err != nil {
		suggestions = nil
	}
	return s.render.NotFound(name, suggestions, locale)
}

// memberNotFound renders a class-member miss. Members are unqualified in
// the index, so only class-name suggestions are offered when the class
// itself is the miss.
func (s *Server) memberNotFound(class, name, locale string) string {
	qualified := class + "." + name
	var suggestions []types.SearchMatch
	if !s.accessor.Index().Has(class, types.KindClass) {
		if got, err := s.accessor.Search(class, []types.SymbolKind{types.KindClass}, suggestionLimit); err == nil {
			suggestions = got
		}
	}
	return s.render.NotFound(qualified, suggestions, locale)
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// requestArgs extracts the argument map from a tool call. Tools without
// parameters may arrive with nil arguments.
func requestArgs(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// requireString extracts a mandatory non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return val, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string-array parameter; absent or malformed
// values yield nil
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// symbolKinds maps kind filter strings onto the searchable symbol kinds
func symbolKinds(names []string) ([]types.SymbolKind, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make([]types.SymbolKind, 0, len(names))
	for _, name := range names {
		kind := types.SymbolKind(name)
		switch kind {
		case types.KindClass, types.KindFunction, types.KindConstant:
			kinds = append(kinds, kind)
		default:
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid symbol kind", map[string]interface{}{
				"param":   "kinds",
				"value":   name,
				"allowed": []string{"class", "function", "constant"},
			})
		}
	}
	return kinds, nil
}
