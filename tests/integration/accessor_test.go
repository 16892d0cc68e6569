package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/docdex/docdex-mcp/internal/refdoc"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// AccessorTestSuite drives the full lookup pipeline, index through
// parse, against the fixture reference document on disk
type AccessorTestSuite struct {
	suite.Suite
	accessor *refdoc.Accessor
	ctx      context.Context
}

// SetupSuite runs once before all tests
func (s *AccessorTestSuite) SetupSuite() {
	s.ctx = context.Background()
}

// SetupTest runs before each test
func (s *AccessorTestSuite) SetupTest() {
	// Fresh accessor per test so cache state never leaks across tests
	s.accessor = openReference(s.T())
}

// TestIndexCatalog tests the symbol catalog built from the header index
func (s *AccessorTestSuite) TestIndexCatalog() {
	st := s.accessor.Status()
	s.False(st.IndexDegraded)
	s.Empty(st.DegradedReason)
	s.Equal(5, st.Classes)
	s.Equal(3, st.Functions)
	s.Equal(3, st.Constants)
	s.Greater(st.DocumentLines, 150)

	idx := s.accessor.Index()
	s.Equal(11, idx.Total())
	s.ElementsMatch([]string{"Widget", "Sprite", "Panel", "Timer", "Color"},
		idx.Names(types.KindClass))

	kind, ok := idx.KindOf("lerp")
	s.True(ok)
	s.Equal(types.KindFunction, kind)

	s.True(idx.Has("Widget", types.KindClass))
	s.False(idx.Has("Widget", types.KindFunction), "kind mismatches must miss")
}

// TestClassExtraction tests the full class overview pipeline
func (s *AccessorTestSuite) TestClassExtraction() {
	rec, err := s.accessor.GetClass(s.ctx, "Widget")
	s.Require().NoError(err)
	s.Require().NoError(rec.Validate())

	s.Equal("Widget", rec.Name)
	s.Equal(10, rec.Line)
	s.Contains(rec.Description, "Base element for all on-screen controls.")
	s.Equal([]string{"size", "color", "visible"}, rec.Properties)
	s.Equal([]string{"resize", "hide", "show"}, rec.Methods)
	s.False(rec.Truncated)
	s.Empty(rec.Warnings)
}

// TestLegacyClassMarker tests a class documented with the older
// function-style definition marker
func (s *AccessorTestSuite) TestLegacyClassMarker() {
	rec, err := s.accessor.GetClass(s.ctx, "Sprite")
	s.Require().NoError(err)

	s.Equal(70, rec.Line)
	s.Contains(rec.Description, "older generator style")
	s.Equal([]string{"size", "texture"}, rec.Properties)
	s.Empty(rec.Methods)
}

// TestMemberlessClass tests a class whose documentation carries no
// member sections at all
func (s *AccessorTestSuite) TestMemberlessClass() {
	rec, err := s.accessor.GetClass(s.ctx, "Panel")
	s.Require().NoError(err)
	s.Empty(rec.Properties)
	s.Empty(rec.Methods)

	_, err = s.accessor.GetProperty(s.ctx, "Panel", "size")
	s.ErrorIs(err, types.ErrNotFound)
}

// TestPropertyExtraction tests property lookup with assignment, type,
// and fenced example extraction
func (s *AccessorTestSuite) TestPropertyExtraction() {
	rec, err := s.accessor.GetProperty(s.ctx, "Widget", "size")
	s.Require().NoError(err)
	s.Require().NoError(rec.Validate())

	s.Equal("Widget", rec.Class)
	s.Equal(29, rec.Line)
	s.Equal("size = 0", rec.Assignment)
	s.Equal("Integer", rec.Type)
	s.Contains(rec.Description, "Current extent of the widget in pixels.")
	s.Require().Len(rec.Examples, 1)
	s.Contains(rec.Examples[0], "print(w.size)")
}

// TestDuplicateMemberScoping tests that the same member name under two
// unrelated classes resolves within each class's own range
func (s *AccessorTestSuite) TestDuplicateMemberScoping() {
	widgetSize, err := s.accessor.GetProperty(s.ctx, "Widget", "size")
	s.Require().NoError(err)
	spriteSize, err := s.accessor.GetProperty(s.ctx, "Sprite", "size")
	s.Require().NoError(err)

	s.Equal("Integer", widgetSize.Type)
	s.Equal("Vector2", spriteSize.Type)
	s.Equal("size = 64", spriteSize.Assignment)
	s.Greater(spriteSize.Line, widgetSize.Line, "each lookup must land in its own class range")
}

// TestMethodExtraction tests method lookup with signature, parameter,
// and return extraction
func (s *AccessorTestSuite) TestMethodExtraction() {
	rec, err := s.accessor.GetMethod(s.ctx, "Widget", "resize")
	s.Require().NoError(err)
	s.Require().NoError(rec.Validate())

	s.Equal("resize(width: Integer, height: Integer = 0)", rec.Signature)
	s.Require().Len(rec.Params, 2)
	s.Equal(types.Param{Name: "width", Type: "Integer"}, rec.Params[0])
	s.Equal(types.Param{Name: "height", Type: "Integer", Default: "0"}, rec.Params[1])
	s.Equal("Boolean", rec.Returns)
	s.Contains(rec.Description, "Change the widget extent.")
	s.NotContains(rec.Description, ":param", "field directives are not description text")

	// Negative default values survive the signature split
	start, err := s.accessor.GetMethod(s.ctx, "Timer", "start")
	s.Require().NoError(err)
	s.Require().Len(start.Params, 1)
	s.Equal(types.Param{Name: "time_sec", Type: "Float", Default: "-1"}, start.Params[0])
	s.Empty(start.Returns)
}

// TestRoleMarkupCleaned tests that inline role markup never reaches a
// returned record
func (s *AccessorTestSuite) TestRoleMarkupCleaned() {
	rec, err := s.accessor.GetProperty(s.ctx, "Widget", "color")
	s.Require().NoError(err)

	s.Equal("Color", rec.Type)
	s.Equal(`color = "white"`, rec.Assignment)
	s.Contains(rec.Description, "see Color.")
	s.NotContains(rec.Description, ":class:")
	s.NotContains(rec.Description, "`")
}

// TestFunctionExtraction tests module-level function lookup
func (s *AccessorTestSuite) TestFunctionExtraction() {
	rec, err := s.accessor.GetFunction(s.ctx, "clamp")
	s.Require().NoError(err)
	s.Require().NoError(rec.Validate())

	s.Equal(147, rec.Line)
	s.Equal("clamp(value, lo, hi)", rec.Signature)
	s.Equal("Float", rec.Returns)
	s.Contains(rec.Description, "Clamp value into the closed range [lo, hi].")

	// Double-backtick literals are flattened to their content
	lerp, err := s.accessor.GetFunction(s.ctx, "lerp")
	s.Require().NoError(err)
	s.Contains(lerp.Description, "Interpolate between from and to.")

	noArgs, err := s.accessor.GetFunction(s.ctx, "print_tree")
	s.Require().NoError(err)
	s.Equal("print_tree()", noArgs.Signature)
	s.Empty(noArgs.Returns)
}

// TestConstantExtraction tests module-level constant lookup
func (s *AccessorTestSuite) TestConstantExtraction() {
	rec, err := s.accessor.GetConstant(s.ctx, "MAX_WIDGETS")
	s.Require().NoError(err)
	s.Require().NoError(rec.Validate())
	s.Equal(168, rec.Line)
	s.Equal("4096", rec.Value)
	s.Empty(rec.Type)
	s.Contains(rec.Description, "Upper bound of live widgets per scene.")

	theme, err := s.accessor.GetConstant(s.ctx, "DEFAULT_THEME")
	s.Require().NoError(err)
	s.Equal(`"light"`, theme.Value)
	s.Equal("String", theme.Type)

	pi, err := s.accessor.GetConstant(s.ctx, "PI_HALF")
	s.Require().NoError(err)
	s.Equal("1.5707963", pi.Value)
	s.Equal("Float", pi.Type)
}

// TestCacheShortCircuit tests that repeated lookups never re-parse
func (s *AccessorTestSuite) TestCacheShortCircuit() {
	_, err := s.accessor.GetClass(s.ctx, "Widget")
	s.Require().NoError(err)
	_, err = s.accessor.GetMethod(s.ctx, "Widget", "resize")
	s.Require().NoError(err)

	parsed := s.accessor.Status().ParseCount
	s.Equal(int64(2), parsed)

	for i := 0; i < 5; i++ {
		_, err = s.accessor.GetClass(s.ctx, "Widget")
		s.Require().NoError(err)
		_, err = s.accessor.GetMethod(s.ctx, "Widget", "resize")
		s.Require().NoError(err)
	}
	s.Equal(parsed, s.accessor.Status().ParseCount, "repeats must be served from cache")
	s.Equal(2, s.accessor.Status().CachedRecords)
}

// TestUnknownSymbol tests the not-found path for every lookup kind
func (s *AccessorTestSuite) TestUnknownSymbol() {
	_, err := s.accessor.GetClass(s.ctx, "Unknown")
	s.ErrorIs(err, types.ErrNotFound)

	_, err = s.accessor.GetFunction(s.ctx, "Widget")
	s.ErrorIs(err, types.ErrNotFound, "a class name is not a function")

	_, err = s.accessor.GetMethod(s.ctx, "Widget", "missing")
	s.ErrorIs(err, types.ErrNotFound)

	// A near miss still surfaces through search for suggestions
	matches, err := s.accessor.Search("Colr", nil, 5)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal("Color", matches[0].Name)
	s.Equal(40, matches[0].Score)
}

// TestQueryInjectionRejected tests that hostile lookup strings are
// refused before any document scan
func (s *AccessorTestSuite) TestQueryInjectionRejected() {
	hostile := []string{
		"Widget; rm -rf /",
		"name|cat /etc/passwd",
		"$(whoami)",
		"cls`id`",
		"bad\x00name",
	}
	for _, name := range hostile {
		_, err := s.accessor.GetClass(s.ctx, name)
		s.ErrorIs(err, types.ErrNotFound, "lookup %q", name)

		_, err = s.accessor.Search(name, nil, 5)
		s.ErrorIs(err, types.ErrInvalidQuery, "search %q", name)
	}

	parsed := s.accessor.Status().ParseCount
	s.Zero(parsed, "rejected queries must never reach the parser")
}

// TestSearchRanking tests the match quality tiers of the index search
func (s *AccessorTestSuite) TestSearchRanking() {
	exact, err := s.accessor.Search("Widget", nil, 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(exact)
	s.Equal("Widget", exact[0].Name)
	s.Equal(100, exact[0].Score)

	folded, err := s.accessor.Search("timer", nil, 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(folded)
	s.Equal("Timer", folded[0].Name)
	s.Equal(90, folded[0].Score)

	partial, err := s.accessor.Search("wid", nil, 10)
	s.Require().NoError(err)
	s.Require().Len(partial, 2)
	s.Equal("Widget", partial[0].Name, "prefix matches outrank substring matches")
	s.Equal("MAX_WIDGETS", partial[1].Name)
	s.Greater(partial[0].Score, partial[1].Score)

	for _, m := range partial {
		s.NoError(m.Validate())
	}
}

// TestSearchKindFilter tests restricting search to a symbol category
func (s *AccessorTestSuite) TestSearchKindFilter() {
	matches, err := s.accessor.Search("theme", []types.SymbolKind{types.KindConstant}, 10)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal("DEFAULT_THEME", matches[0].Name)
	s.Equal(types.KindConstant, matches[0].Kind)

	limited, err := s.accessor.Search("e", nil, 2)
	s.Require().NoError(err)
	s.LessOrEqual(len(limited), 2)
}

// TestDegradedDocument tests the pipeline over a document with no
// symbol index header
func (s *AccessorTestSuite) TestDegradedDocument() {
	path := filepath.Join(s.T().TempDir(), "headerless.txt")
	content := ".. class:: Widget\n   \"\"\"\n   Widget\n   ======\n   Undiscoverable.\n   \"\"\"\n"
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	src, err := refdoc.OpenFile(path)
	s.Require().NoError(err)
	acc, err := refdoc.New(s.ctx, src, refdoc.DefaultConfig())
	s.Require().NoError(err, "a missing index must not fail construction")

	st := acc.Status()
	s.True(st.IndexDegraded)
	s.NotEmpty(st.DegradedReason)

	_, err = acc.GetClass(s.ctx, "Widget")
	s.ErrorIs(err, types.ErrNotFound, "degraded index answers not found for everything")
}

// TestAccessorTestSuite runs the suite
func TestAccessorTestSuite(t *testing.T) {
	suite.Run(t, new(AccessorTestSuite))
}
