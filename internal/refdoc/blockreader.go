package refdoc

import (
	"context"
	"strings"

	"github.com/docdex/docdex-mcp/pkg/types"
)

// PairedDocMarker is the single-line delimiter that opens and later closes
// a documentation comment block.
const PairedDocMarker = `"""`

// defaultChunkLines is the fixed chunk size for all chunked scans
const defaultChunkLines = 50

// ReadStatus is the terminal condition of a bounded read
type ReadStatus string

const (
	// StatusDone means the read reached its structural end.
	StatusDone ReadStatus = "done"
	// StatusTruncated means the line budget ran out first. A truncated
	// block is a valid partial result, not an error.
	StatusTruncated ReadStatus = "truncated"
)

// readState tracks where a bounded read is in its lifecycle
type readState int

const (
	stateSeekingOpen readState = iota
	stateInBlock
	stateSeekingClose
	stateDone
)

// Block is the outcome of one bounded read: the captured lines, where they
// start, and how the read terminated
type Block struct {
	StartLine int // 1-based line of the first visited line
	Lines     []string
	Status    ReadStatus
}

// Truncated reports whether the read hit its line budget
func (b Block) Truncated() bool {
	return b.Status == StatusTruncated
}

// MarkerHit is one marker occurrence found by FindMarkersInWindow
type MarkerHit struct {
	Line int
	Text string
}

// scanner is the state machine shared by all four read primitives:
// SEEKING_OPEN until the block's opening condition, IN_BLOCK while content
// accumulates, SEEKING_CLOSE once a close candidate appears, then DONE.
// Exhausting the line budget forces the truncated terminal from any state.
type scanner struct {
	state  readState
	status ReadStatus
	start  int
	max    int
	seen   int
	lines  []string
}

// newScanner starts a read at the given 1-based line with a line budget
func newScanner(start, maxLines int) *scanner {
	return &scanner{
		state:  stateSeekingOpen,
		status: StatusDone,
		start:  start,
		max:    maxLines,
	}
}

// to moves the machine to the next lifecycle state
func (s *scanner) to(next readState) {
	s.state = next
}

// finish terminates the read at its structural end
func (s *scanner) finish() {
	s.state = stateDone
	s.status = StatusDone
}

// truncate terminates the read because the budget ran out
func (s *scanner) truncate() {
	s.state = stateDone
	s.status = StatusTruncated
}

// spend consumes one line of budget. It reports false once the read has
// terminated, truncating first if the budget is exhausted.
func (s *scanner) spend() bool {
	if s.state == stateDone {
		return false
	}
	if s.seen >= s.max {
		s.truncate()
		return false
	}
	s.seen++
	return true
}

// keep captures a visited line into the block
func (s *scanner) keep(line string) {
	s.lines = append(s.lines, line)
}

// active reports whether the read is still consuming lines
func (s *scanner) active() bool {
	return s.state != stateDone
}

// block returns the read's result
func (s *scanner) block() Block {
	return Block{StartLine: s.start, Lines: s.lines, Status: s.status}
}

// BlockReader executes bounded reads over a Source. Every primitive takes
// an explicit line budget and drives the shared scanner, so no read runs
// unbounded even when the document's closing markers are missing.
type BlockReader struct {
	src   Source
	chunk int
}

// NewBlockReader creates a BlockReader with the fixed scan chunk size
func NewBlockReader(src Source) *BlockReader {
	return &BlockReader{src: src, chunk: defaultChunkLines}
}

// ReadLines reads the explicit line range [start, end), clipped by
// maxLines. Hitting the end of the document before end is a complete read;
// hitting maxLines first is a truncated one.
func (r *BlockReader) ReadLines(ctx context.Context, start, end, maxLines int) (Block, error) {
	sc := newScanner(start, maxLines)
	if start < 1 {
		return sc.block(), types.ErrInvalidLine
	}
	sc.to(stateInBlock) // an explicit range opens immediately

	at := start
	for sc.active() && at < end {
		n := r.chunk
		if rest := end - at; n > rest {
			n = rest
		}
		lines, err := r.src.ReadLines(ctx, at, n)
		if err != nil {
			return sc.block(), err
		}
		if len(lines) == 0 {
			sc.finish()
			break
		}
		for _, text := range lines {
			if !sc.spend() {
				break
			}
			sc.keep(text)
		}
		at += len(lines)
	}
	if sc.active() {
		sc.finish()
	}
	return sc.block(), nil
}

// ReadUntilPairedMarker reads forward from start, tracking occurrences of a
// single-line marker: the first occurrence opens the block and the read
// stops immediately after the second. Lines before the opening marker are
// part of the returned window so callers can hand the whole span to a
// parser. Reaching the end of the document without the closing occurrence
// truncates the read.
func (r *BlockReader) ReadUntilPairedMarker(ctx context.Context, start int, marker string, maxLines int) (Block, error) {
	sc := newScanner(start, maxLines)
	if start < 1 {
		return sc.block(), types.ErrInvalidLine
	}

	at := start
	for sc.active() {
		lines, err := r.src.ReadLines(ctx, at, r.chunk)
		if err != nil {
			return sc.block(), err
		}
		if len(lines) == 0 {
			sc.truncate()
			break
		}
		for _, text := range lines {
			if !sc.spend() {
				break
			}
			sc.keep(text)
			if strings.TrimSpace(text) != marker {
				continue
			}
			switch sc.state {
			case stateSeekingOpen:
				sc.to(stateInBlock)
			case stateInBlock:
				// A single-line close marker arms and resolves the
				// close in one step.
				sc.to(stateSeekingClose)
				sc.finish()
			}
		}
		at += len(lines)
	}
	return sc.block(), nil
}

// ReadUntilSiblingIndent reads an indentation-delimited block: the first
// non-blank line at or after start sets the base indentation, blank lines
// never end the block, and the read stops at the first non-blank line whose
// indentation has fallen back to the base level or that is a marker
// directive at or above it. The stop line is not part of the block, and the
// last block in the document ends cleanly at EOF.
func (r *BlockReader) ReadUntilSiblingIndent(ctx context.Context, start, maxLines int) (Block, error) {
	sc := newScanner(start, maxLines)
	if start < 1 {
		return sc.block(), types.ErrInvalidLine
	}

	base := 0
	at := start
	for sc.active() {
		lines, err := r.src.ReadLines(ctx, at, r.chunk)
		if err != nil {
			return sc.block(), err
		}
		if len(lines) == 0 {
			sc.finish()
			break
		}
		for _, text := range lines {
			if !sc.spend() {
				break
			}
			if strings.TrimSpace(text) == "" {
				// Blanks stay in the block but arm the close: the next
				// non-blank line decides whether the block continues.
				sc.keep(text)
				if sc.state == stateInBlock {
					sc.to(stateSeekingClose)
				}
				continue
			}
			indent := indentWidth(text)
			switch sc.state {
			case stateSeekingOpen:
				base = indent
				sc.keep(text)
				sc.to(stateInBlock)
			case stateInBlock, stateSeekingClose:
				if indent <= base && (isDirectiveLine(text) || indent == base) {
					if sc.state == stateInBlock {
						sc.to(stateSeekingClose)
					}
					sc.finish()
					continue
				}
				sc.keep(text)
				if sc.state == stateSeekingClose {
					sc.to(stateInBlock)
				}
			}
		}
		at += len(lines)
	}
	return sc.block(), nil
}

// FindMarkersInWindow scans a bounded window for every line containing
// markerSub, in fixed-size chunks, stopping early when the next top-level
// definition marker appears so the scan never bleeds into an adjacent
// symbol's documentation.
func (r *BlockReader) FindMarkersInWindow(ctx context.Context, start int, markerSub string, maxSearch int) ([]MarkerHit, error) {
	if start < 1 {
		return nil, types.ErrInvalidLine
	}
	sc := newScanner(start, maxSearch)

	var hits []MarkerHit
	at := start
	for sc.active() {
		lines, err := r.src.ReadLines(ctx, at, r.chunk)
		if err != nil {
			return hits, err
		}
		if len(lines) == 0 {
			sc.finish()
			break
		}
		for i, text := range lines {
			if !sc.spend() {
				break
			}
			if sc.state == stateSeekingOpen {
				sc.to(stateInBlock)
			}
			if isDefinitionMarker(text) {
				sc.to(stateSeekingClose)
				sc.finish()
				continue
			}
			if strings.Contains(text, markerSub) {
				hits = append(hits, MarkerHit{Line: at + i, Text: text})
			}
		}
		at += len(lines)
	}
	return hits, nil
}

// indentWidth measures leading whitespace, counting tabs as four columns
func indentWidth(text string) int {
	width := 0
	for _, r := range text {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
