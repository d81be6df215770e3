package parsers

import (
	"bytes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// LineCounts classifies the lines of a file. A line with any code token is a code
// line; otherwise a line covered by a comment is a comment line.
type LineCounts struct {
	Total   int
	Code    int
	Comment int
	Blank   int
}

func countLines(root *sitter.Node, source []byte) LineCounts {
	lines := bytes.Split(source, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	hasCode := make([]bool, len(lines))
	hasComment := make([]bool, len(lines))
	mark := func(flags []bool, n *sitter.Node) {
		endPos := n.EndPosition()
		end := int(endPos.Row)
		// a token ending at column 0 stops at the previous line's newline
		if endPos.Column == 0 && endPos.Row > n.StartPosition().Row {
			end--
		}
		end = min(end, len(flags)-1)
		for row := int(n.StartPosition().Row); row <= end; row++ {
			flags[row] = true
		}
	}

	walkTree(root, func(n *sitter.Node) bool {
		if isComment(n) {
			mark(hasComment, n)
			return false
		}
		if n.ChildCount() == 0 && n.EndByte() > n.StartByte() {
			mark(hasCode, n)
		}
		return true
	})

	counts := LineCounts{Total: len(lines)}
	for i, line := range lines {
		switch {
		case hasCode[i]:
			counts.Code++
		case hasComment[i]:
			counts.Comment++
		case len(bytes.TrimSpace(line)) == 0:
			counts.Blank++
		default:
			counts.Code++
		}
	}
	return counts
}
