package types

import "fmt"

// ParseWarning records a recoverable defect found while extracting a
// documentation block. Extraction never fails outright on bad markup:
// a malformed section yields a partial record plus warnings.
type ParseWarning struct {
	Line    int // 1-based line in the reference document, 0 when unknown
	Message string
}

// String formats the warning for logs and tool output
func (w ParseWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// WarningStrings flattens a warning list for inclusion in a response payload
func WarningStrings(ws []ParseWarning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
