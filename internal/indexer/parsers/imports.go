package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// ExtractImports returns one record per imported leaf of every top-level use
// declaration and extern crate in root. Nested scopes are not scanned.
func ExtractImports(root *sitter.Node, source []byte) []extraction.ImportRecord {
	imports := []extraction.ImportRecord{}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "use_declaration":
			x := &useExpander{
				source:     source,
				visibility: parseVisibility(child, source),
				line:       int(child.StartPosition().Row) + 1,
			}
			x.expand(child.ChildByFieldName("argument"), nil)
			imports = append(imports, x.records...)

		case "extern_crate_declaration":
			imports = append(imports, extraction.ImportRecord{
				Names:      []string{nodeText(child.ChildByFieldName("name"), source)},
				Alias:      nodeText(child.ChildByFieldName("alias"), source),
				Visibility: parseVisibility(child, source),
				Line:       int(child.StartPosition().Row) + 1,
			})
		}
	}

	return imports
}

// useExpander flattens one use tree into records.
type useExpander struct {
	source     []byte
	visibility extraction.Visibility
	line       int
	records    []extraction.ImportRecord
}

func (x *useExpander) expand(node *sitter.Node, prefix []string) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "use_list":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); !isComment(child) {
				x.expand(child, prefix)
			}
		}

	case "scoped_use_list":
		base := appendSegments(prefix, pathSegments(nodeText(node.ChildByFieldName("path"), x.source)))
		x.expand(node.ChildByFieldName("list"), base)

	case "use_wildcard":
		var path []string
		if node.NamedChildCount() > 0 {
			path = pathSegments(nodeText(node.NamedChild(0), x.source))
		}
		x.add(appendSegments(prefix, path), nil, "", true)

	case "use_as_clause":
		segs := appendSegments(prefix, pathSegments(nodeText(node.ChildByFieldName("path"), x.source)))
		x.addLeaf(segs, nodeText(node.ChildByFieldName("alias"), x.source))

	default:
		// identifier, scoped_identifier, self, super, crate, metavariable
		x.addLeaf(appendSegments(prefix, pathSegments(nodeText(node, x.source))), "")
	}
}

func (x *useExpander) addLeaf(segs []string, alias string) {
	if len(segs) == 0 {
		return
	}
	last := segs[len(segs)-1]
	x.add(segs[:len(segs)-1], []string{last}, alias, false)
}

func (x *useExpander) add(path, names []string, alias string, glob bool) {
	x.records = append(x.records, extraction.ImportRecord{
		Path:       joinPath(path),
		Names:      names,
		IsGlob:     glob,
		Alias:      alias,
		Visibility: x.visibility,
		Line:       x.line,
	})
}

// pathSegments splits a path such as "std::collections::HashMap". A leading "::"
// is kept on the first segment.
func pathSegments(text string) []string {
	text = strings.Join(strings.Fields(text), "")
	if text == "" {
		return nil
	}

	global := strings.HasPrefix(text, "::")
	parts := strings.Split(strings.TrimPrefix(text, "::"), "::")
	if global {
		parts[0] = "::" + parts[0]
	}
	return parts
}

func appendSegments(prefix, segs []string) []string {
	out := make([]string, 0, len(prefix)+len(segs))
	out = append(out, prefix...)
	return append(out, segs...)
}

func joinPath(segs []string) string {
	return strings.Join(segs, "::")
}
