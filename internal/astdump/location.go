package astdump

import (
	"strconv"
	"strings"

	"github.com/clangcg/clangcg/internal/srcpos"
)

// stickyState is the per-TU location memory the parser carries while
// resolving the compact `<col:C>`-style location grammar.
type stickyState struct {
	line uint32
	file string
}

// locAtom is one resolved `PATH:line:col` / `line:L:C` / `col:C` token,
// prior to being folded into a Range or a stand-alone point.
type locAtom struct {
	pos      srcpos.Position
	file     string
	hasFile  bool
	hasLine  bool
	ok       bool
}

// parseLocAtom resolves a single location atom against sticky state.
// It does not mutate sticky; the caller decides whether to apply the
// returned file/line to sticky state (start endpoints do, end endpoints
// and point locations follow the rules in parseRange/consumePoint).
func parseLocAtom(atom string, sticky stickyState) locAtom {
	parts := strings.Split(atom, ":")

	switch len(parts) {
	case 2:
		if parts[0] == "col" {
			col, err := strconv.Atoi(parts[1])
			if err != nil {
				return locAtom{}
			}
			return locAtom{pos: srcpos.Position{Line: sticky.line, Column: uint32(col)}, ok: true}
		}
		return locAtom{}

	case 3:
		line, errL := strconv.Atoi(parts[1])
		col, errC := strconv.Atoi(parts[2])
		if errL != nil || errC != nil {
			return locAtom{}
		}
		if parts[0] == "line" {
			return locAtom{
				pos:     srcpos.Position{Line: uint32(line), Column: uint32(col)},
				hasLine: true,
				ok:      true,
			}
		}
		// PATH:L:C
		return locAtom{
			pos:     srcpos.Position{Line: uint32(line), Column: uint32(col)},
			file:    parts[0],
			hasFile: true,
			hasLine: true,
			ok:      true,
		}

	case 4:
		// Windows drive-letter path: "C:\a\b.c:L:C" splits into
		// ["C", `\a\b.c`, "L", "C"]; rejoin the first two with ':'.
		line, errL := strconv.Atoi(parts[2])
		col, errC := strconv.Atoi(parts[3])
		if errL != nil || errC != nil {
			return locAtom{}
		}
		return locAtom{
			pos:     srcpos.Position{Line: uint32(line), Column: uint32(col)},
			file:    parts[0] + ":" + parts[1],
			hasFile: true,
			hasLine: true,
			ok:      true,
		}
	}

	return locAtom{}
}

// invalidSlocMarker is Clang's literal stand-in for "no location".
const invalidSlocMarker = "<invalid sloc>"

// splitBalancedAngle extracts the content of the first balanced `<...>`
// group at the start of s (after any leading single space), returning
// the content, the remainder of s after the closing '>', and whether a
// balanced group was found. Nesting is supported because Clang renders
// the invalid-sloc range as "<<invalid sloc>>": the literal text
// "<invalid sloc>" wrapped again by the range's own brackets.
func splitBalancedAngle(s string) (content, rest string, ok bool) {
	s = strings.TrimPrefix(s, " ")
	if len(s) == 0 || s[0] != '<' {
		return "", s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", s, false
}

// parseRange parses the bracketed `<range>` grammar described in the
// parser's package doc, updating sticky line/file per the "start
// updates, end does not" rule, and returns the resolved half-open Range.
// ok is false when the range was the invalid-sloc marker or malformed;
// callers treat that as a zero Range.
func parseRange(content string, sticky *stickyState) (srcpos.Range, bool) {
	if content == invalidSlocMarker {
		return srcpos.Range{}, false
	}

	atoms := strings.SplitN(content, ", ", 2)

	startAtom := parseLocAtom(atoms[0], *sticky)
	if !startAtom.ok {
		return srcpos.Range{}, false
	}
	if startAtom.hasFile {
		sticky.file = startAtom.file
	}
	if startAtom.hasLine {
		sticky.line = startAtom.pos.Line
	} else {
		startAtom.pos.Line = sticky.line
	}
	start := startAtom.pos

	if len(atoms) == 1 {
		// Degenerate single-atom range: start and end coincide, then
		// widened by one column per the half-open convention.
		end := srcpos.Position{Line: start.Line, Column: start.Column + 1}
		return srcpos.Range{Start: start, End: end}, true
	}

	endAtom := parseLocAtom(atoms[1], *sticky)
	if !endAtom.ok {
		end := srcpos.Position{Line: start.Line, Column: start.Column + 1}
		return srcpos.Range{Start: start, End: end}, true
	}
	// End endpoints never update sticky line/file: Clang emits
	// multi-line ranges whose next sibling's column-only location
	// refers back to the start line.
	endLine := endAtom.pos.Line
	if !endAtom.hasLine {
		endLine = sticky.line
	}
	end := srcpos.Position{Line: endLine, Column: endAtom.pos.Column + 1}
	return srcpos.Range{Start: start, End: end}, true
}

// consumePoint looks for a trailing cursor location immediately after a
// range (or, failing that, after id/parent/prev tokens) and strips it.
// It returns the remainder with the point removed. The point updates
// sticky line (and file, for a PATH point) iff it names one; it is then
// discarded, never stored on the Node.
func consumePoint(rest string, sticky *stickyState) string {
	trimmed := strings.TrimPrefix(rest, " ")

	if strings.HasPrefix(trimmed, invalidSlocMarker) {
		return strings.TrimPrefix(trimmed, invalidSlocMarker)
	}

	end := strings.IndexByte(trimmed, ' ')
	var tok string
	if end == -1 {
		tok = trimmed
	} else {
		tok = trimmed[:end]
	}
	if tok == "" || strings.HasPrefix(tok, "'") {
		return rest
	}

	atom := parseLocAtom(tok, *sticky)
	if !atom.ok {
		return rest
	}

	if atom.hasFile {
		sticky.file = atom.file
	}
	if atom.hasLine {
		sticky.line = atom.pos.Line
	}

	if end == -1 {
		return ""
	}
	return trimmed[end:]
}
