// Package astdump parses Clang's pretty-printed "-ast-dump" text output
// into an in-memory tree. The grammar is line-oriented and indentation
// driven. Each line reads
//
//	<tree-prefix>-<Kind> [0xID] [parent 0xID] [prev 0xID] [<range>] [point] attributes
//
// where the tree prefix is made of '|', '`' and spaces and the column of
// the '-' is the node's depth. A range is "<<invalid sloc>>" (ignored)
// or one or two comma-separated location atoms, each "col:C",
// "line:L:C" or "PATH:L:C" (PATH may carry a Windows drive letter).
// Atoms without a line or file take them from sticky state; a range's
// start updates the sticky line and file, its end does not. The end
// column is stored one past the last covered column. A point after the
// range updates sticky state and is then dropped from the attributes.
package astdump

import "github.com/clangcg/clangcg/internal/srcpos"

// Node is one line of Clang's AST dump, together with its ordered
// children. Kind-specific nodes that Clang prints without a hex id
// (Overrides:, TemplateArgument, bare access-specifier keywords) get
// ID == 0.
type Node struct {
	Kind       string
	ID         uint64
	ParentID   uint64
	PrevID     uint64
	HasParent  bool
	HasPrev    bool
	File       string
	Range      srcpos.Range
	Attributes string
	Children   []*Node
}

// Child returns the first child whose Kind equals kind, or nil.
func (n *Node) Child(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all children whose Kind equals kind, in order.
func (n *Node) ChildrenOf(kind string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
