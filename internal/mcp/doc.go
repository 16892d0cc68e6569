// Package mcp implements the Model Context Protocol (MCP) server for Docdex.
//
// The MCP server exposes the documentation sources as tools for AI coding
// assistants:
//   - get_class / get_property / get_method / get_function / get_constant:
//     structured symbol documentation from the generated API reference
//   - search_symbols: ranked name search over the symbol index
//   - search_handbook / get_handbook_page: the cached handbook pages
//   - list_templates / get_template: the script template catalog
//   - translate_term: the localized UI vocabulary
//   - get_status: operational state of every source
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Construction
//
// Dependencies are injected as constructed instances; the server performs
// no path-based loading of its own:
//
//	srv, err := mcp.NewServer(mcp.Deps{
//	    Accessor:  accessor,           // required
//	    Store:     store,              // optional handbook cache
//	    Templates: catalog,            // optional template catalog
//	})
//	err = srv.Serve(ctx)
//
// Tools whose subsystem was not injected answer with a subsystem-disabled
// error instead of failing at startup.
//
// # Tool: get_class
//
// Look up a class overview:
//
//	Request:
//	{
//	  "name": "get_class",
//	  "arguments": {"name": "Widget", "locale": "de"}
//	}
//
// The response is markdown: the class description followed by its property
// and method name lists, section labels localized through the vocabulary.
// An unknown name produces a not-found response with close-name
// suggestions from the index, never a protocol error.
//
// # Tool: search_symbols
//
// Rank cataloged names against a query:
//
//	Request:
//	{
//	  "name": "search_symbols",
//	  "arguments": {"query": "wid", "kinds": ["class"], "limit": 10}
//	}
//
// Search operates on the name index only and never triggers a
// documentation block read.
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {"param": "name", "reason": "missing or empty"}
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (storage, filesystem)
//   - -32001: Handbook cache not configured
//   - -32002: Template catalog not configured
//   - -32003: Query parameter empty
//   - -32004: Locale not present in the vocabulary
//
// Missing symbols, pages, and templates are not protocol errors: they
// return a structured not-found text so the client can relay it.
//
// # Logging
//
// The MCP server logs nothing; stdout carries the protocol and the host
// process owns stderr.
package mcp
