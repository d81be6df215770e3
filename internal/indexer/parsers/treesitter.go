package parsers

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustLanguage = sitter.NewLanguage(rust.Language())

// Tree is a parsed Rust syntax tree together with the source it was parsed from.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Root returns the source_file node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// SyntaxError reports the first ERROR or MISSING node in a parsed file.
type SyntaxError struct {
	Line    int
	Column  int
	Snippet string
	Missing bool
}

func (e *SyntaxError) Error() string {
	if e.Missing {
		return fmt.Sprintf("syntax error at %d:%d: missing %q", e.Line, e.Column, e.Snippet)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Snippet)
}

// Parse parses Rust source text. Malformed input yields a *SyntaxError; the tree is
// never returned in that case. Callers must Close the returned tree.
func Parse(source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(rustLanguage); err != nil {
		return nil, fmt.Errorf("failed to load rust grammar: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse rust source")
	}

	root := tree.RootNode()
	if root.HasError() {
		serr := firstSyntaxError(root, source)
		tree.Close()
		return nil, serr
	}

	return &Tree{tree: tree, Source: source}, nil
}

// firstSyntaxError locates the first ERROR or MISSING node in pre-order.
func firstSyntaxError(root *sitter.Node, source []byte) *SyntaxError {
	var found *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})

	if found == nil {
		found = root
	}

	snippet := firstLine(nodeText(found, source))
	if found.IsMissing() {
		snippet = found.Kind()
	}
	if len(snippet) > 40 {
		snippet = snippet[:40]
	}

	pos := found.StartPosition()
	return &SyntaxError{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Snippet: snippet,
		Missing: found.IsMissing(),
	}
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// normalizeSpace collapses every whitespace run to a single space.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
// Children are skipped when the visitor returns false.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// sameNode reports whether a and b are the same syntax node.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Id() == b.Id()
}

func isComment(n *sitter.Node) bool {
	switch n.Kind() {
	case "line_comment", "block_comment":
		return true
	}
	return false
}
