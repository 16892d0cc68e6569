package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// localeProperty is the shared schema for the optional locale parameter
func localeProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Locale for section labels (e.g. 'en', 'de', 'pt-BR'); defaults to English",
	}
}

// getClassTool returns the tool definition for get_class
func getClassTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_class",
		Description: "Get the overview documentation for a scripting API class: description plus property and method name lists",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Class name exactly as listed in the API index (e.g. 'Widget')",
				},
				"locale": localeProperty(),
			},
			Required: []string{"name"},
		},
	}
}

// getPropertyTool returns the tool definition for get_property
func getPropertyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_property",
		Description: "Get the documentation for one class property: type, default value, description, and examples",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"class": map[string]interface{}{
					"type":        "string",
					"description": "Name of the class that owns the property",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Property name (unqualified, e.g. 'size')",
				},
				"locale": localeProperty(),
			},
			Required: []string{"class", "name"},
		},
	}
}

// getMethodTool returns the tool definition for get_method
func getMethodTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_method",
		Description: "Get the documentation for one class method: signature, parameters, return type, description, and examples",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"class": map[string]interface{}{
					"type":        "string",
					"description": "Name of the class that owns the method",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Method name (unqualified, e.g. 'resize')",
				},
				"locale": localeProperty(),
			},
			Required: []string{"class", "name"},
		},
	}
}

// getFunctionTool returns the tool definition for get_function
func getFunctionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_function",
		Description: "Get the documentation for a module-level function: signature, return type, and description",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Function name exactly as listed in the API index (e.g. 'clamp')",
				},
				"locale": localeProperty(),
			},
			Required: []string{"name"},
		},
	}
}

// getConstantTool returns the tool definition for get_constant
func getConstantTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_constant",
		Description: "Get the documentation for a module-level constant: value, type, and description",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Constant name exactly as listed in the API index (e.g. 'MAX_WIDGETS')",
				},
				"locale": localeProperty(),
			},
			Required: []string{"name"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_symbols",
		Description: "Search the API symbol index by name. Operates on the lightweight name catalog only and never reads documentation blocks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Full or partial symbol name",
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"description": "Restrict results to these symbol kinds; empty means all",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"class", "function", "constant"},
					},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-50)",
					"default":     20,
					"minimum":     1,
					"maximum":     50,
				},
				"locale": localeProperty(),
			},
			Required: []string{"query"},
		},
	}
}

// searchHandbookTool returns the tool definition for search_handbook
func searchHandbookTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_handbook",
		Description: "Search cached handbook pages. Scores title matches over heading matches over body occurrences",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search phrase",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
				"locale": localeProperty(),
			},
			Required: []string{"query"},
		},
	}
}

// getHandbookPageTool returns the tool definition for get_handbook_page
func getHandbookPageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_handbook_page",
		Description: "Get the full markdown body of one cached handbook page by its slug",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slug": map[string]interface{}{
					"type":        "string",
					"description": "Page slug as returned by search_handbook (e.g. 'guides/signals')",
				},
			},
			Required: []string{"slug"},
		},
	}
}

// listTemplatesTool returns the tool definition for list_templates
func listTemplatesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_templates",
		Description: "List the available script templates with their titles and sizes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getTemplateTool returns the tool definition for get_template
func getTemplateTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_template",
		Description: "Get the full content of one script template by name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Template name as returned by list_templates (e.g. 'scenes/player.tmpl')",
				},
			},
			Required: []string{"name"},
		},
	}
}

// translateTermTool returns the tool definition for translate_term
func translateTermTool() mcp.Tool {
	return mcp.Tool{
		Name:        "translate_term",
		Description: "Translate a UI vocabulary term into a locale, or resolve a localized label back to its canonical term",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Canonical term to translate, or localized label when reverse is true",
				},
				"locale": map[string]interface{}{
					"type":        "string",
					"description": "Target locale (e.g. 'de', 'pt-BR'); empty searches every locale in reverse mode",
				},
				"reverse": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, resolve a localized label back to its canonical term",
					"default":     false,
				},
			},
			Required: []string{"term"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report the operational state of the documentation sources: index health, cache statistics, handbook contents",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
