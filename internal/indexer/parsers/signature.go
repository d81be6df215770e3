package parsers

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// RenderSignature renders a declaration node as a single whitespace-normalized line,
// excluding its body, comments and (for const/static) the initializer. It has no side
// effects and depends only on node and source.
func RenderSignature(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	if node.Kind() == "macro_definition" {
		return "macro_rules! " + nodeText(node.ChildByFieldName("name"), source)
	}

	start := node.StartByte()
	end := node.EndByte()

	if field, ok := signatureCutFields[node.Kind()]; ok {
		if cut := node.ChildByFieldName(field); cut != nil {
			if field == "value" || bodyKinds[cut.Kind()] {
				end = cut.StartByte()
			}
		}
	}

	// Cut out comments inside the rendered range.
	type span struct{ start, end uint }
	var comments []span
	walkTree(node, func(n *sitter.Node) bool {
		if n.StartByte() >= end {
			return false
		}
		if isComment(n) {
			comments = append(comments, span{n.StartByte(), n.EndByte()})
			return false
		}
		return true
	})
	sort.Slice(comments, func(i, j int) bool { return comments[i].start < comments[j].start })

	var b strings.Builder
	pos := start
	for _, c := range comments {
		if c.start > pos {
			b.Write(source[pos:c.start])
		}
		b.WriteByte(' ')
		pos = max(pos, c.end)
	}
	if pos < end {
		b.Write(source[pos:end])
	}

	sig := normalizeSpace(b.String())
	sig = strings.TrimSuffix(sig, ";")
	sig = strings.TrimSuffix(sig, "=")
	return strings.TrimSpace(sig)
}
