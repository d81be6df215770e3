package parsers

import (
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

var docAttrPattern = regexp.MustCompile(`^#!?\[\s*doc\s*=\s*("(?:[^"\\]|\\.)*")\s*\]$`)

// leadingDecorations collects the doc comments and attributes attached in front of an
// item, in source order. Plain comments are skipped; any other node ends the run.
func leadingDecorations(node *sitter.Node, source []byte) (docs, attrs []string) {
	var nodes []*sitter.Node
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() != "attribute_item" && !isComment(prev) {
			break
		}
		nodes = append(nodes, prev)
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		text := nodeText(n, source)

		if isComment(n) {
			if line, ok := outerDocText(text); ok {
				docs = append(docs, line...)
			}
			continue
		}

		if doc, ok := docAttributeText(text); ok {
			docs = append(docs, doc)
			continue
		}
		attrs = append(attrs, normalizeSpace(text))
	}
	return docs, attrs
}

// innerDocs collects //! and /*! */ comments and #![doc] attributes at the start of a
// source file or module body.
func innerDocs(container *sitter.Node, source []byte) []string {
	var docs []string
	for i := uint(0); i < container.NamedChildCount(); i++ {
		child := container.NamedChild(i)
		text := nodeText(child, source)

		switch {
		case isComment(child):
			if lines, ok := innerDocText(text); ok {
				docs = append(docs, lines...)
			}
		case child.Kind() == "inner_attribute_item":
			if doc, ok := docAttributeText(text); ok {
				docs = append(docs, doc)
			}
		default:
			return docs
		}
	}
	return docs
}

// outerDocText returns the documentation lines of a /// or /** */ comment.
func outerDocText(text string) ([]string, bool) {
	switch {
	case strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////"):
		return []string{stripDocLine(strings.TrimRight(text[3:], "\r\n"))}, true
	case strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/***") && text != "/**/":
		return blockDocLines(text[3 : len(text)-2]), true
	}
	return nil, false
}

// innerDocText returns the documentation lines of a //! or /*! */ comment.
func innerDocText(text string) ([]string, bool) {
	switch {
	case strings.HasPrefix(text, "//!"):
		return []string{stripDocLine(strings.TrimRight(text[3:], "\r\n"))}, true
	case strings.HasPrefix(text, "/*!"):
		return blockDocLines(text[3 : len(text)-2]), true
	}
	return nil, false
}

func docAttributeText(text string) (string, bool) {
	m := docAttrPattern.FindStringSubmatch(normalizeSpace(text))
	if m == nil {
		return "", false
	}
	doc, err := strconv.Unquote(m[1])
	if err != nil {
		doc = strings.Trim(m[1], `"`)
	}
	return stripDocLine(doc), true
}

func stripDocLine(line string) string {
	return strings.TrimPrefix(line, " ")
}

func blockDocLines(body string) []string {
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, stripDocLine(line))
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseVisibility reads the visibility_modifier child of a declaration.
func parseVisibility(node *sitter.Node, source []byte) extraction.Visibility {
	mod := findChildByType(node, "visibility_modifier")
	if mod == nil {
		return extraction.Visibility{Level: extraction.VisibilityPrivate}
	}

	text := strings.Join(strings.Fields(nodeText(mod, source)), "")
	switch text {
	case "pub":
		return extraction.Visibility{Level: extraction.VisibilityPublic}
	case "pub(crate)", "crate":
		return extraction.Visibility{Level: extraction.VisibilityCrate}
	}

	restriction := normalizeSpace(nodeText(mod, source))
	if open := strings.IndexByte(restriction, '('); open >= 0 {
		restriction = strings.TrimSpace(strings.TrimSuffix(restriction[open+1:], ")"))
	}
	return extraction.Visibility{
		Level:       extraction.VisibilityRestricted,
		Restriction: restriction,
	}
}
