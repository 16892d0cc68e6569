package refdoc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// Source provides line-addressed read access to a reference document.
// Implementations must support concurrent readers; no call retains state
// between invocations.
type Source interface {
	// LineCount returns the total number of lines in the document.
	LineCount() int

	// ReadLines returns up to count lines starting at the 1-based line start.
	// Reads past the end of the document return fewer lines, and a start
	// beyond the last line returns an empty slice. Line terminators are
	// stripped.
	ReadLines(ctx context.Context, start, count int) ([]string, error)
}

// FileSource reads a reference document from disk through a precomputed
// line-offset table. The table is built once at construction; every read
// opens the file, seeks to the requested line, and closes it again, so no
// file handle outlives a call.
type FileSource struct {
	path    string
	offsets []int64 // byte offset of each line start
}

// OpenFile scans the document at path and builds its line-offset table
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference document: %w", err)
	}
	defer f.Close()

	src := &FileSource{path: path}

	var offset int64
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			src.offsets = append(src.offsets, offset)
			offset += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan reference document: %w", err)
		}
	}

	return src, nil
}

// LineCount returns the total number of lines in the document
func (s *FileSource) LineCount() int {
	return len(s.offsets)
}

// ReadLines reads up to count lines starting at the 1-based line start
func (s *FileSource) ReadLines(ctx context.Context, start, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if start < 1 {
		return nil, types.ErrInvalidLine
	}
	if count <= 0 || start > len(s.offsets) {
		return nil, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open reference document: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(s.offsets[start-1], io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek line %d: %w", start, err)
	}

	if start+count-1 > len(s.offsets) {
		count = len(s.offsets) - start + 1
	}

	lines := make([]string, 0, count)
	reader := bufio.NewReader(f)
	for len(lines) < count {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, trimLineEnding(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", start+len(lines), err)
		}
	}

	return lines, nil
}

// StringSource serves a document held in memory. It backs tests and
// embedded reference documents.
type StringSource struct {
	lines []string
}

// NewStringSource splits text into lines and wraps them as a Source
func NewStringSource(text string) *StringSource {
	if text == "" {
		return &StringSource{}
	}
	raw := strings.Split(text, "\n")
	// A trailing newline produces one phantom empty element, not a line.
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &StringSource{lines: lines}
}

// LineCount returns the total number of lines in the document
func (s *StringSource) LineCount() int {
	return len(s.lines)
}

// ReadLines returns up to count lines starting at the 1-based line start
func (s *StringSource) ReadLines(ctx context.Context, start, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if start < 1 {
		return nil, types.ErrInvalidLine
	}
	if count <= 0 || start > len(s.lines) {
		return nil, nil
	}

	end := start - 1 + count
	if end > len(s.lines) {
		end = len(s.lines)
	}

	out := make([]string, end-start+1)
	copy(out, s.lines[start-1:end])
	return out, nil
}

// trimLineEnding removes a trailing LF or CRLF
func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
