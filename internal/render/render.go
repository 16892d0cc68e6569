package render

import (
	"fmt"
	"strings"

	"github.com/docdex/docdex-mcp/internal/vocab"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// Renderer turns accessor records into markdown for tool responses.
// Section labels are localized through the vocabulary; record content is
// emitted as extracted. Rendering never reads the reference document.
type Renderer struct {
	vocab *vocab.Vocabulary
}

// New creates a Renderer backed by v
func New(v *vocab.Vocabulary) *Renderer {
	return &Renderer{vocab: v}
}

// Class renders a class overview record
func (r *Renderer) Class(rec *types.ClassRecord, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", rec.Name)

	if rec.Description != "" {
		b.WriteString("\n" + rec.Description + "\n")
	}
	r.nameList(&b, "properties", rec.Properties, locale)
	r.nameList(&b, "methods", rec.Methods, locale)

	r.footer(&b, rec.Truncated, rec.Warnings, locale)
	return b.String()
}

// Property renders a property record
func (r *Renderer) Property(rec *types.PropertyRecord, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s.%s\n", rec.Class, rec.Name)

	var fields []string
	if rec.Type != "" {
		fields = append(fields, r.field("type", rec.Type, locale))
	}
	if rec.Assignment != "" {
		fields = append(fields, r.field("default", "`"+rec.Assignment+"`", locale))
	}
	if len(fields) > 0 {
		b.WriteString("\n" + strings.Join(fields, "\n") + "\n")
	}

	if rec.Description != "" {
		b.WriteString("\n" + rec.Description + "\n")
	}
	r.examples(&b, rec.Examples, locale)

	r.footer(&b, rec.Truncated, rec.Warnings, locale)
	return b.String()
}

// Method renders a method record
func (r *Renderer) Method(rec *types.MethodRecord, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s.%s\n", rec.Class, rec.Name)

	if rec.Signature != "" {
		b.WriteString("\n```\n" + rec.Signature + "\n```\n")
	}
	if rec.Description != "" {
		b.WriteString("\n" + rec.Description + "\n")
	}

	if len(rec.Params) > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", r.label("parameters", locale))
		for _, p := range rec.Params {
			b.WriteString(paramItem(p) + "\n")
		}
	}
	if rec.Returns != "" {
		b.WriteString("\n" + r.field("returns", rec.Returns, locale) + "\n")
	}
	r.examples(&b, rec.Examples, locale)

	r.footer(&b, rec.Truncated, rec.Warnings, locale)
	return b.String()
}

// Function renders a free-function record
func (r *Renderer) Function(rec *types.FunctionRecord, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", rec.Name)

	if rec.Signature != "" {
		b.WriteString("\n```\n" + rec.Signature + "\n```\n")
	}
	if rec.Description != "" {
		b.WriteString("\n" + rec.Description + "\n")
	}
	if rec.Returns != "" {
		b.WriteString("\n" + r.field("returns", rec.Returns, locale) + "\n")
	}

	r.footer(&b, rec.Truncated, rec.Warnings, locale)
	return b.String()
}

// Constant renders a constant record
func (r *Renderer) Constant(rec *types.ConstantRecord, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", rec.Name)

	var fields []string
	if rec.Value != "" {
		fields = append(fields, r.field("value", "`"+rec.Value+"`", locale))
	}
	if rec.Type != "" {
		fields = append(fields, r.field("type", rec.Type, locale))
	}
	if len(fields) > 0 {
		b.WriteString("\n" + strings.Join(fields, "\n") + "\n")
	}

	if rec.Description != "" {
		b.WriteString("\n" + rec.Description + "\n")
	}

	r.footer(&b, rec.Truncated, rec.Warnings, locale)
	return b.String()
}

// SymbolMatches renders ranked index search hits
func (r *Renderer) SymbolMatches(query string, matches []types.SearchMatch, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %q\n", r.label("search_results", locale), query)

	if len(matches) == 0 {
		b.WriteString("\n" + r.label("no_results", locale) + "\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. **%s** (%s, %s %d)\n",
			i+1, m.Name, r.label(string(m.Kind), locale), r.label("score", locale), m.Score)
	}
	return b.String()
}

// PageMatches renders ranked handbook search hits
func (r *Renderer) PageMatches(query string, matches []types.PageMatch, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %q (%s)\n",
		r.label("search_results", locale), query, r.label("handbook", locale))

	if len(matches) == 0 {
		b.WriteString("\n" + r.label("no_results", locale) + "\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. **%s** (`%s`, %s %d)\n", i+1, m.Title, m.Slug, r.label("score", locale), m.Score)
		if m.Snippet != "" {
			fmt.Fprintf(&b, "   > %s\n", m.Snippet)
		}
	}
	return b.String()
}

// NotFound renders a not-found response, with index-derived suggestions
// when any close names exist
func (r *Renderer) NotFound(name string, suggestions []types.SearchMatch, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s:** `%s`\n", r.label("not_found", locale), name)

	if len(suggestions) > 0 {
		names := make([]string, len(suggestions))
		for i, s := range suggestions {
			names[i] = "`" + s.Name + "`"
		}
		fmt.Fprintf(&b, "\n%s: %s?\n", r.label("did_you_mean", locale), strings.Join(names, ", "))
	}
	return b.String()
}

// nameList writes a labeled member-name section when names exist
func (r *Renderer) nameList(b *strings.Builder, term string, names []string, locale string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", r.label(term, locale))
	for _, name := range names {
		b.WriteString("- " + name + "\n")
	}
}

// examples writes the examples section when any fenced samples were
// extracted
func (r *Renderer) examples(b *strings.Builder, examples []string, locale string) {
	if len(examples) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", r.label("examples", locale))
	for _, ex := range examples {
		b.WriteString("\n```\n" + ex + "\n```\n")
	}
}

// footer appends the truncation note and any extraction warnings
func (r *Renderer) footer(b *strings.Builder, truncated bool, warnings []types.ParseWarning, locale string) {
	if truncated {
		b.WriteString("\n*(" + r.label("truncated", locale) + ")*\n")
	}
	if len(warnings) > 0 {
		fmt.Fprintf(b, "\n## %s\n\n", r.label("warnings", locale))
		for _, w := range warnings {
			b.WriteString("- " + w.String() + "\n")
		}
	}
}

// field formats one bolded field line
func (r *Renderer) field(term, value, locale string) string {
	return fmt.Sprintf("**%s:** %s", r.label(term, locale), value)
}

// label translates a canonical term for display
func (r *Renderer) label(term, locale string) string {
	t, _ := r.vocab.Translate(term, locale)
	return t
}

// paramItem formats one parameter list entry
func paramItem(p types.Param) string {
	item := "- `" + p.Name + "`"
	switch {
	case p.Type != "" && p.Default != "":
		item += fmt.Sprintf(" (%s, default `%s`)", p.Type, p.Default)
	case p.Type != "":
		item += fmt.Sprintf(" (%s)", p.Type)
	case p.Default != "":
		item += fmt.Sprintf(" (default `%s`)", p.Default)
	}
	return item
}
