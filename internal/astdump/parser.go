package astdump

import (
	"regexp"
	"strconv"
	"strings"
)

// LineSource yields the next line of Clang AST-dump output, reporting
// end-of-stream via ok == false. Implementations spawn the Clang
// process and read stdout line by line, or (in tests) replay a canned
// slice of lines.
type LineSource interface {
	NextLine() (line string, ok bool)
}

// SliceSource is a LineSource backed by an in-memory slice, used by
// tests and by any caller that already has the full AST dump text.
type SliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource splits text on newlines and returns a LineSource over it.
func NewSliceSource(text string) *SliceSource {
	return &SliceSource{lines: strings.Split(text, "\n")}
}

// NextLine implements LineSource.
func (s *SliceSource) NextLine() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	line := s.lines[s.pos]
	s.pos++
	return line, true
}

var hexIDRe = regexp.MustCompile(`^0x[0-9a-f]+$`)

// Parser consumes a LineSource and produces the forest of top-level
// declarations for one translation unit.
type Parser struct {
	src    LineSource
	sticky stickyState

	bufLine  parsedLine
	bufValid bool
	atEOF    bool
}

type parsedLine struct {
	depth int
	node  *Node
}

// NewParser creates a parser reading from src.
func NewParser(src LineSource) *Parser {
	return &Parser{src: src}
}

// Parse consumes the entire LineSource and returns the ordered forest of
// nodes that are direct children of the TranslationUnitDecl root. It
// returns ErrNotATranslationUnit (and no nodes) if the first non-empty
// line does not start with "TranslationUnitDecl". Truncated input is
// not an error: whatever subtree was complete when the source ended is
// returned as-is.
func (p *Parser) Parse() ([]*Node, error) {
	first, ok := p.rawNextNonEmpty()
	if !ok {
		return nil, ErrNotATranslationUnit
	}
	if !strings.HasPrefix(first, "TranslationUnitDecl") {
		return nil, ErrNotATranslationUnit
	}

	// Consume the root's own id/range/point for sticky-state side
	// effects (normally a no-op: the TU header carries <invalid sloc>).
	parseLineHeader(first, &p.sticky)

	return p.parseChildren(-1), nil
}

// parseChildren reads and recurses over every line whose depth is
// greater than parentDepth, stopping (without consuming) the first line
// at depth <= parentDepth.
func (p *Parser) parseChildren(parentDepth int) []*Node {
	var children []*Node
	for {
		pl, ok := p.peek()
		if !ok || pl.depth <= parentDepth {
			return children
		}
		p.advance()
		pl.node.Children = p.parseChildren(pl.depth)
		children = append(children, pl.node)
	}
}

// peek returns the next parsed line without consuming it.
func (p *Parser) peek() (parsedLine, bool) {
	if p.bufValid {
		return p.bufLine, true
	}
	if p.atEOF {
		return parsedLine{}, false
	}
	raw, ok := p.rawNextNonEmpty()
	if !ok {
		p.atEOF = true
		return parsedLine{}, false
	}
	depth, node := parseLineHeader(raw, &p.sticky)
	p.bufLine = parsedLine{depth: depth, node: node}
	p.bufValid = true
	return p.bufLine, true
}

// advance discards the buffered lookahead line so the next peek pulls a
// fresh one.
func (p *Parser) advance() {
	p.bufValid = false
}

// rawNextNonEmpty pulls lines from the source, skipping blank ones,
// until a non-empty line is found or the source is exhausted.
func (p *Parser) rawNextNonEmpty() (string, bool) {
	for {
		line, ok := p.src.NextLine()
		if !ok {
			return "", false
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, true
	}
}

// parseLineHeader parses one already-non-empty line into its depth (the
// column of the '-' that introduces the node, per the grammar in the
// package doc) and its Node, mutating sticky location state as it goes.
func parseLineHeader(raw string, sticky *stickyState) (int, *Node) {
	prefixEnd := 0
	for prefixEnd < len(raw) {
		c := raw[prefixEnd]
		if c == '|' || c == '`' || c == ' ' {
			prefixEnd++
			continue
		}
		break
	}

	var depth int
	var rest string
	if prefixEnd < len(raw) && raw[prefixEnd] == '-' {
		depth = prefixEnd
		rest = raw[prefixEnd+1:]
	} else {
		depth = prefixEnd
		rest = raw[prefixEnd:]
	}

	kindEnd := strings.IndexByte(rest, ' ')
	var kind, remainder string
	if kindEnd == -1 {
		kind = rest
		remainder = ""
	} else {
		kind = rest[:kindEnd]
		remainder = rest[kindEnd:]
	}
	kind = strings.TrimSuffix(kind, ":")

	node := &Node{Kind: kind}

	remainder = consumeToken(remainder, func(tok string) bool {
		if hexIDRe.MatchString(tok) {
			if v, err := strconv.ParseUint(tok[2:], 16, 64); err == nil {
				node.ID = v
			}
			return true
		}
		return false
	})

	remainder = consumeKeywordHex(remainder, "parent", &node.ParentID, &node.HasParent)
	remainder = consumeKeywordHex(remainder, "prev", &node.PrevID, &node.HasPrev)

	trimmed := strings.TrimPrefix(remainder, " ")
	if strings.HasPrefix(trimmed, "<") {
		if content, rest2, ok := splitBalancedAngle(trimmed); ok {
			if rng, rok := parseRange(content, sticky); rok {
				node.Range = rng
			}
			remainder = rest2
		}
	}

	remainder = consumePoint(remainder, sticky)

	node.File = sticky.file
	node.Attributes = strings.TrimPrefix(remainder, " ")

	return depth, node
}

// consumeToken peeks the next whitespace-delimited token in s; if
// accept returns true, the token is consumed and the remainder (with
// its leading separating space trimmed of exactly one space) is
// returned. If accept returns false, s is returned unchanged.
func consumeToken(s string, accept func(tok string) bool) string {
	trimmed := strings.TrimPrefix(s, " ")
	end := strings.IndexByte(trimmed, ' ')
	var tok, rest string
	if end == -1 {
		tok, rest = trimmed, ""
	} else {
		tok, rest = trimmed[:end], trimmed[end:]
	}
	if tok == "" {
		return s
	}
	if accept(tok) {
		return rest
	}
	return s
}

// consumeKeywordHex consumes "<keyword> 0xHEX" from the front of s, if
// present, setting *id and *has.
func consumeKeywordHex(s string, keyword string, id *uint64, has *bool) string {
	trimmed := strings.TrimPrefix(s, " ")
	if !strings.HasPrefix(trimmed, keyword+" ") {
		return s
	}
	rest := strings.TrimPrefix(trimmed, keyword+" ")
	end := strings.IndexByte(rest, ' ')
	var tok, tail string
	if end == -1 {
		tok, tail = rest, ""
	} else {
		tok, tail = rest[:end], rest[end:]
	}
	if !hexIDRe.MatchString(tok) {
		return s
	}
	v, err := strconv.ParseUint(tok[2:], 16, 64)
	if err != nil {
		return s
	}
	*id = v
	*has = true
	return tail
}
