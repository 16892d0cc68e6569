package handbook

import (
	"path"
	"path/filepath"
	"strings"
)

// PageSlug converts a source path relative to the handbook root into the
// page's lookup key: forward slashes, extension stripped.
func PageSlug(relPath string) string {
	slug := filepath.ToSlash(relPath)
	return strings.TrimSuffix(slug, path.Ext(slug))
}

// ExtractHeadings parses markdown and returns all ATX headings (H1-H6)
// with their 1-based line numbers. Lines inside fenced code blocks are
// not headings even when they start with #.
func ExtractHeadings(markdown string) []Heading {
	var headings []Heading
	inFence := false
	for i, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		level, text := parseHeading(trimmed)
		if level == 0 {
			continue
		}
		headings = append(headings, Heading{Level: level, Text: text, Line: i + 1})
	}
	return headings
}

// parseHeading returns the level and text of an ATX heading line, or
// level 0 when the line is not a heading.
func parseHeading(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, ""
	}
	text := strings.TrimSpace(line[level+1:])

	// A closing hash run counts as decoration only when space-separated,
	// so "C#" survives but "Title ##" loses its tail.
	stripped := strings.TrimRight(text, "#")
	if stripped != text && strings.HasSuffix(stripped, " ") {
		text = strings.TrimRight(stripped, " ")
	}
	if text == "" {
		return 0, ""
	}
	return level, text
}

// PageTitle picks the display title for a page: the first level-1
// heading, else the first heading of any level, else a name derived
// from the slug.
func PageTitle(slug string, headings []Heading) string {
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	if len(headings) > 0 {
		return headings[0].Text
	}
	base := path.Base(slug)
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return base
}
