package astdump

import (
	"strings"
	"testing"

	"github.com/clangcg/clangcg/internal/srcpos"
)

func parseText(t *testing.T, text string) []*Node {
	t.Helper()
	nodes, err := NewParser(NewSliceSource(text)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return nodes
}

func TestParseRejectsNonTranslationUnit(t *testing.T) {
	_, err := NewParser(NewSliceSource("FunctionDecl 0x1 <col:1> foo 'void ()'")).Parse()
	if err != ErrNotATranslationUnit {
		t.Fatalf("err = %v, want ErrNotATranslationUnit", err)
	}
}

func TestParseEmptyInputIsNotATranslationUnit(t *testing.T) {
	_, err := NewParser(NewSliceSource("\n\n  \n")).Parse()
	if err != ErrNotATranslationUnit {
		t.Fatalf("err = %v, want ErrNotATranslationUnit", err)
	}
}

func TestParseSiblingsAndChild(t *testing.T) {
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
|-FunctionDecl 0x2 <line:1:1, line:3:1> line:1:5 foo 'int ()'
| ` + "`" + `-CompoundStmt 0x3 <col:11, line:3:1>
` + "`" + `-FunctionDecl 0x4 <line:5:1, line:7:1> line:5:5 bar 'int ()'
`
	nodes := parseText(t, text)
	if len(nodes) != 2 {
		t.Fatalf("got %d top-level nodes, want 2", len(nodes))
	}
	foo, bar := nodes[0], nodes[1]
	if foo.Kind != "FunctionDecl" || foo.ID != 2 {
		t.Errorf("foo = %+v", foo)
	}
	if bar.Kind != "FunctionDecl" || bar.ID != 4 {
		t.Errorf("bar = %+v", bar)
	}
	if len(foo.Children) != 1 || foo.Children[0].Kind != "CompoundStmt" {
		t.Fatalf("foo.Children = %+v", foo.Children)
	}
	wantFooRange := srcpos.Range{Start: srcpos.Position{Line: 1, Column: 1}, End: srcpos.Position{Line: 3, Column: 2}}
	if foo.Range != wantFooRange {
		t.Errorf("foo.Range = %v, want %v", foo.Range, wantFooRange)
	}
}

func TestStickyLineDoesNotFollowRangeEnd(t *testing.T) {
	// After <line:L1:C1, line:L2:C2>, sticky line must equal L1, not L2:
	// the next sibling's column-only location resolves against L1.
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
|-FunctionDecl 0x2 <line:10:1, line:20:1> col:5 foo 'void ()'
` + "`" + `-FunctionDecl 0x3 <col:1, col:9> col:5 bar 'void ()'
`
	nodes := parseText(t, text)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	bar := nodes[1]
	if bar.Range.Start.Line != 10 {
		t.Errorf("bar.Range.Start.Line = %d, want 10 (sticky line from L1, not L2)", bar.Range.Start.Line)
	}
}

func TestWindowsDriveLetterPathPreserved(t *testing.T) {
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
` + "`" + `-FunctionDecl 0x2 <C:\a\b.c:1:1, col:9> col:5 foo 'void ()'
`
	nodes := parseText(t, text)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].File != `C:\a\b.c` {
		t.Errorf("File = %q, want %q", nodes[0].File, `C:\a\b.c`)
	}
}

func TestInvalidSlocIgnored(t *testing.T) {
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
` + "`" + `-AccessSpecDecl 0x2 <<invalid sloc>> <invalid sloc> public
`
	nodes := parseText(t, text)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Range != (srcpos.Range{}) {
		t.Errorf("Range = %v, want zero value", nodes[0].Range)
	}
	if nodes[0].Attributes != "public" {
		t.Errorf("Attributes = %q, want %q", nodes[0].Attributes, "public")
	}
}

func TestPrevBackReference(t *testing.T) {
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
|-FunctionDecl 0x2 <line:1:1, col:10> col:5 foo 'void ()'
` + "`" + `-FunctionDecl 0x3 prev 0x2 <line:2:1, col:10> col:5 foo 'void ()'
`
	nodes := parseText(t, text)
	if !nodes[1].HasPrev || nodes[1].PrevID != 2 {
		t.Errorf("second decl prev = (%v,%d), want (true,2)", nodes[1].HasPrev, nodes[1].PrevID)
	}
}

func TestOverridesTrailingColonForm(t *testing.T) {
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
|-CXXMethodDecl 0x2 <line:1:1, col:20> col:8 bar 'void ()' virtual
` + "`" + `-CXXMethodDecl 0x3 <line:5:1, col:20> col:8 bar 'void ()' virtual
  ` + "`" + `-Overrides: [ 0x2 A::bar 'void ()' ]
`
	nodes, err := NewParser(NewSliceSource(text)).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	second := nodes[1]
	ov := second.Child("Overrides")
	if ov == nil {
		t.Fatalf("no Overrides child found among %+v", second.Children)
	}
	if ov.ID != 0 {
		t.Errorf("Overrides.ID = %d, want 0", ov.ID)
	}
	if !strings.Contains(ov.Attributes, "0x2") {
		t.Errorf("Overrides.Attributes = %q, want to contain 0x2", ov.Attributes)
	}
}

func TestTruncatedInputNoError(t *testing.T) {
	text := `TranslationUnitDecl 0x1 <<invalid sloc>> <invalid sloc>
|-CXXRecordDecl 0x2 <line:1:1, line:5:1> line:1:7 class Foo definition
| |-CXXMethodDecl 0x3 <line:2:1, col:20> col:8 bar 'void ()'
`
	nodes, err := NewParser(NewSliceSource(text)).Parse()
	if err != nil {
		t.Fatalf("Parse error = %v, want nil (truncated input is not an error)", err)
	}
	if len(nodes) != 1 || len(nodes[0].Children) != 1 {
		t.Fatalf("nodes = %+v", nodes)
	}
}
