package refdoc

import (
	"fmt"
	"strings"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// Class overview section labels
const (
	propertiesLabel = "Properties:"
	functionsLabel  = "Functions:"
)

// ParseClassOverview extracts a class record from the paired doc block that
// follows its definition marker: title, title separator, description
// paragraphs, then labeled member-name sections. Malformed blocks yield a
// partial record plus warnings, never an error.
func ParseClassOverview(name string, blk Block) *types.ClassRecord {
	rec := &types.ClassRecord{
		Name:      name,
		Line:      blk.StartLine,
		Truncated: blk.Truncated(),
	}

	content, opened, closed := pairedContent(blk.Lines)
	if !opened {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "documentation block not found")
		return rec
	}
	if !closed {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "closing doc marker not found")
	}

	// Skip the title line, then the separator under it.
	i := skipBlank(content, 0)
	if i < len(content) {
		i++ // title
	}
	i = skipBlank(content, i)
	if i < len(content) && isTitleSeparator(content[i]) {
		i++
	} else {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "title separator not found")
	}

	var desc []string
	for i < len(content) {
		line := content[i]
		trimmed := strings.TrimSpace(line)

		switch trimmed {
		case propertiesLabel:
			rec.Properties, i = parseNameList(content, i+1, indentWidth(line))
			continue
		case functionsLabel:
			rec.Methods, i = parseNameList(content, i+1, indentWidth(line))
			continue
		}

		desc = append(desc, trimmed)
		i++
	}

	rec.Description = CleanMarkup(joinBlockText(desc))
	return rec
}

// parseNameList reads the indented member-name list under a section label.
// The list ends at a blank line after content, a new section label, a
// marker directive, or a dedent back to the label's level.
func parseNameList(content []string, start, labelIndent int) ([]string, int) {
	var names []string
	i := start
	for i < len(content) {
		line := content[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			if len(names) > 0 {
				return names, i
			}
			i++
			continue
		}
		if trimmed == propertiesLabel || trimmed == functionsLabel {
			return names, i
		}
		if isDirectiveLine(line) || indentWidth(line) <= labelIndent {
			return names, i
		}

		names = append(names, strings.Fields(trimmed)[0])
		i++
	}
	return names, i
}

// ParseProperty extracts a property record from an indentation-delimited
// block: an optional assignment line, a :type: field, description text, and
// fenced examples
func ParseProperty(class, name string, blk Block) *types.PropertyRecord {
	rec := &types.PropertyRecord{
		Class:     class,
		Name:      name,
		Line:      blk.StartLine,
		Truncated: blk.Truncated(),
	}

	var desc []string
	var fence []string
	inFence := false
	fenceIndent := 0

	for off, line := range blk.Lines {
		trimmed := strings.TrimSpace(line)

		if off == 0 && isDirectiveLine(line) {
			continue // the member marker itself
		}

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				rec.Examples = append(rec.Examples, strings.Join(fence, "\n"))
				fence = nil
			} else {
				fenceIndent = indentWidth(line)
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fence = append(fence, dedentBy(line, fenceIndent))
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, ":type:"):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, ":type:"))
			if value == "" {
				rec.Warnings = warnAt(rec.Warnings, blk.StartLine+off, "empty :type: field")
				continue
			}
			rec.Type = CleanMarkup(value)
		case rec.Assignment == "" && isAssignment(trimmed, name):
			rec.Assignment = trimmed
		case strings.HasPrefix(trimmed, ":"):
			// Unrecognized field directives carry nothing we extract.
		default:
			desc = append(desc, trimmed)
		}
	}

	if inFence {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "unterminated code fence")
		if len(fence) > 0 {
			rec.Examples = append(rec.Examples, strings.Join(fence, "\n"))
		}
	}

	rec.Description = CleanMarkup(joinBlockText(desc))
	return rec
}

// ParseMethod extracts a method record from a paired doc block: the
// signature line, description text before the first field directive, the
// :rtype: return annotation, and fenced examples
func ParseMethod(class, name string, blk Block) *types.MethodRecord {
	rec := &types.MethodRecord{
		Class:     class,
		Name:      name,
		Line:      blk.StartLine,
		Truncated: blk.Truncated(),
	}

	content, opened, closed := pairedContent(blk.Lines)
	if !opened {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "documentation block not found")
		return rec
	}
	if !closed {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "closing doc marker not found")
	}

	i := skipBlank(content, 0)
	if i >= len(content) {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "signature not found")
		return rec
	}

	sig := strings.TrimSpace(content[i])
	rec.Signature = CleanMarkup(sig)
	rec.Params = parseSignatureParams(sig, rec)
	i++

	var desc []string
	var fence []string
	inFence := false
	fenceIndent := 0
	pastFields := false

	for ; i < len(content); i++ {
		line := content[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				rec.Examples = append(rec.Examples, strings.Join(fence, "\n"))
				fence = nil
			} else {
				fenceIndent = indentWidth(line)
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fence = append(fence, dedentBy(line, fenceIndent))
			continue
		}

		if isFieldDirective(trimmed) {
			pastFields = true
			if value, ok := fieldValue(trimmed, ":rtype:"); ok && rec.Returns == "" {
				rec.Returns = CleanMarkup(value)
			}
			continue
		}
		if !pastFields {
			desc = append(desc, trimmed)
		}
	}

	if inFence {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "unterminated code fence")
		if len(fence) > 0 {
			rec.Examples = append(rec.Examples, strings.Join(fence, "\n"))
		}
	}

	rec.Description = CleanMarkup(joinBlockText(desc))
	return rec
}

// ParseFunction extracts a function record from a paired doc block.
// Free-function documentation is looser than method documentation, so only
// the signature, the description, and the return annotation are kept.
func ParseFunction(name string, blk Block) *types.FunctionRecord {
	rec := &types.FunctionRecord{
		Name:      name,
		Line:      blk.StartLine,
		Truncated: blk.Truncated(),
	}

	content, opened, closed := pairedContent(blk.Lines)
	if !opened {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "documentation block not found")
		return rec
	}
	if !closed {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "closing doc marker not found")
	}

	i := skipBlank(content, 0)
	if i >= len(content) {
		rec.Warnings = warnAt(rec.Warnings, blk.StartLine, "signature not found")
		return rec
	}

	rec.Signature = CleanMarkup(strings.TrimSpace(content[i]))
	i++

	var desc []string
	pastFields := false
	for ; i < len(content); i++ {
		trimmed := strings.TrimSpace(content[i])
		if isFieldDirective(trimmed) {
			pastFields = true
			if value, ok := fieldValue(trimmed, ":rtype:"); ok && rec.Returns == "" {
				rec.Returns = CleanMarkup(value)
			}
			continue
		}
		if !pastFields {
			desc = append(desc, trimmed)
		}
	}

	rec.Description = CleanMarkup(joinBlockText(desc))
	return rec
}

// ParseConstant extracts a constant record from an indentation-delimited
// block: an assignment line with the constant's literal value, an optional
// :type: field, and description text
func ParseConstant(name string, blk Block) *types.ConstantRecord {
	rec := &types.ConstantRecord{
		Name:      name,
		Line:      blk.StartLine,
		Truncated: blk.Truncated(),
	}

	var desc []string
	inFence := false

	for off, line := range blk.Lines {
		trimmed := strings.TrimSpace(line)

		if off == 0 && isDirectiveLine(line) {
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, ":type:"):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, ":type:"))
			if value != "" {
				rec.Type = CleanMarkup(value)
			}
		case rec.Value == "" && isAssignment(trimmed, name):
			if _, rhs, found := strings.Cut(trimmed, "="); found {
				rec.Value = strings.TrimSpace(rhs)
			}
		case strings.HasPrefix(trimmed, ":"):
		default:
			desc = append(desc, trimmed)
		}
	}

	rec.Description = CleanMarkup(joinBlockText(desc))
	return rec
}

// parseSignatureParams splits the parenthesized parameter list of a
// signature into Params, recording a warning when the signature has no list
func parseSignatureParams(sig string, rec *types.MethodRecord) []types.Param {
	lp := strings.IndexByte(sig, '(')
	rp := strings.LastIndexByte(sig, ')')
	if lp < 0 || rp < lp {
		rec.Warnings = warnAt(rec.Warnings, rec.Line, "signature has no parameter list")
		return nil
	}

	list := sig[lp+1 : rp]
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var params []types.Param
	for _, part := range splitTopLevel(list, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Each parameter is name[: Type][ = default].
		decl, def, hasDefault := cutTopLevel(part, '=')
		pname, ptype, _ := strings.Cut(decl, ":")

		param := types.Param{
			Name: strings.TrimSpace(pname),
			Type: CleanMarkup(strings.TrimSpace(ptype)),
		}
		if hasDefault {
			param.Default = strings.TrimSpace(def)
		}
		if param.Name == "" {
			rec.Warnings = warnAt(rec.Warnings, rec.Line, fmt.Sprintf("unparsable parameter %q", part))
			continue
		}
		params = append(params, param)
	}
	return params
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets or quotes. Parameter defaults can be composite literals.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	quote := byte(0)
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// cutTopLevel cuts s at the first top-level occurrence of sep
func cutTopLevel(s string, sep byte) (before, after string, found bool) {
	depth := 0
	quote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// CleanMarkup strips inline role and reference markup from text, leaving
// plain identifiers: a role form like :class:`Widget` becomes Widget,
// double-backtick literals become their content, and single-backtick
// references likewise. Applied exactly once to every description field.
func CleanMarkup(text string) string {
	if !strings.ContainsRune(text, '`') {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		c := text[i]
		if c == ':' {
			if payload, width, ok := parseRole(text[i:]); ok {
				b.WriteString(payload)
				i += width
				continue
			}
		}
		if c == '`' {
			if payload, width, ok := parseBacktick(text[i:]); ok {
				b.WriteString(payload)
				i += width
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// parseRole consumes a :role:`payload` or :domain:role:`payload` form at
// the start of s
func parseRole(s string) (string, int, bool) {
	i := 1
	for segments := 0; segments < 2; segments++ {
		start := i
		for i < len(s) && isRoleChar(s[i]) {
			i++
		}
		if i == start || i >= len(s) || s[i] != ':' {
			return "", 0, false
		}
		i++
		if i < len(s) && s[i] == '`' {
			break
		}
	}
	if i >= len(s) || s[i] != '`' {
		return "", 0, false
	}

	i++
	end := strings.IndexByte(s[i:], '`')
	if end < 0 {
		return "", 0, false
	}
	return rolePayload(s[i : i+end]), i + end + 1, true
}

// parseBacktick consumes a ``literal`` or `reference` form at the start
// of s
func parseBacktick(s string) (string, int, bool) {
	if strings.HasPrefix(s, "``") {
		end := strings.Index(s[2:], "``")
		if end < 0 {
			return "", 0, false
		}
		return s[2 : 2+end], end + 4, true
	}

	end := strings.IndexByte(s[1:], '`')
	if end < 0 {
		return "", 0, false
	}
	return rolePayload(s[1 : 1+end]), end + 2, true
}

// rolePayload reduces a role target to its display name: a leading tilde
// keeps only the last dotted segment, and an explicit "Title <target>"
// form keeps the title
func rolePayload(payload string) string {
	if cut := strings.LastIndex(payload, " <"); cut >= 0 && strings.HasSuffix(payload, ">") {
		payload = payload[:cut]
	}
	if strings.HasPrefix(payload, "~") {
		payload = payload[1:]
		if dot := strings.LastIndexByte(payload, '.'); dot >= 0 {
			payload = payload[dot+1:]
		}
	}
	return strings.TrimSpace(payload)
}

// isRoleChar reports whether c can appear in a role name
func isRoleChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.' || c == '+':
		return true
	}
	return false
}

// pairedContent returns the lines strictly between the first and second
// paired doc markers, plus whether each marker was present
func pairedContent(lines []string) (content []string, opened, closed bool) {
	for _, text := range lines {
		if strings.TrimSpace(text) == PairedDocMarker {
			if !opened {
				opened = true
				continue
			}
			closed = true
			break
		}
		if opened {
			content = append(content, text)
		}
	}
	return content, opened, closed
}

// isFieldDirective reports whether a trimmed line starts a field directive
func isFieldDirective(trimmed string) bool {
	return strings.HasPrefix(trimmed, ":param") ||
		strings.HasPrefix(trimmed, ":rtype:") ||
		strings.HasPrefix(trimmed, ":returns:")
}

// fieldValue extracts the value of a field directive with the given prefix
func fieldValue(trimmed, prefix string) (string, bool) {
	if !strings.HasPrefix(trimmed, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
}

// isAssignment reports whether a trimmed line assigns a value to name
func isAssignment(trimmed, name string) bool {
	rest := strings.TrimPrefix(trimmed, name)
	if rest == trimmed {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(rest, " \t"), "=")
}

// isTitleSeparator reports whether a line is an overview title underline
func isTitleSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '=' {
			return false
		}
	}
	return true
}

// dedentBy strips up to width columns of leading whitespace from line
func dedentBy(line string, width int) string {
	i, col := 0, 0
	for i < len(line) && col < width {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += 4
		default:
			return line[i:]
		}
		i++
	}
	return line[i:]
}

// skipBlank advances i past blank lines
func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

// joinBlockText joins trimmed description lines, dropping leading and
// trailing blanks while keeping paragraph breaks
func joinBlockText(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// warnAt appends a parse warning at the given document line
func warnAt(ws []types.ParseWarning, line int, msg string) []types.ParseWarning {
	return append(ws, types.ParseWarning{Line: line, Message: msg})
}

// memberNameFromMarker extracts the member name from a marker line such as
// ".. method:: resize(w, h)"
func memberNameFromMarker(text, prefix string) string {
	trimmed := strings.TrimLeft(text, " \t")
	if !strings.HasPrefix(trimmed, prefix) {
		return ""
	}
	name := trimmed[len(prefix):]
	if cut := strings.IndexAny(name, "( \t"); cut >= 0 {
		name = name[:cut]
	}
	return name
}
