package parsers

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// ScopeSeparator joins module path segments and names.
const ScopeSeparator = "::"

// elementNamespace namespaces deterministic element ids.
var elementNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mvp-joe/cortex-extract/element"))

// Options controls what the visitor emits.
type Options struct {
	IncludeDocs    bool
	IncludePrivate bool

	// IDSeed makes element ids unique across files; normally the file's relative path.
	IDSeed string
}

// Result is everything extracted from one parsed file.
type Result struct {
	Elements   []extraction.Element
	Imports    []extraction.ImportRecord
	ModuleDocs []string
	Lines      LineCounts
}

// scope is one entry of the lexical scope stack.
type scope struct {
	segment string
	index   int // index of the owning element in visitor.elements

	// members of traits and trait impls inherit public visibility
	inheritPublic bool
	// function items directly inside become methods
	methods bool
}

// rustVisitor walks a parsed file once, in pre-order, and emits elements with their
// hierarchy resolved from the scope stack.
type rustVisitor struct {
	source   []byte
	opts     Options
	elements []extraction.Element
	stack    []scope
}

// Extract runs the element visitor, the hierarchy resolver, the complexity calculator
// and the import extractor over tree.
func Extract(tree *Tree, opts Options) *Result {
	root := tree.Root()
	v := &rustVisitor{
		source: tree.Source,
		opts:   opts,
	}
	v.visitItems(root)

	res := &Result{
		Elements: v.elements,
		Imports:  ExtractImports(root, tree.Source),
		Lines:    countLines(root, tree.Source),
	}
	if res.Elements == nil {
		res.Elements = []extraction.Element{}
	}
	if opts.IncludeDocs {
		res.ModuleDocs = innerDocs(root, tree.Source)
	}
	return res
}

// visitItems visits the declarations directly inside a source_file or declaration_list.
func (v *rustVisitor) visitItems(container *sitter.Node) {
	if container == nil {
		return
	}
	for i := uint(0); i < container.NamedChildCount(); i++ {
		child := container.NamedChild(i)
		if kind := declKindOf(child.Kind()); kind != declNone {
			v.visitDecl(child, kind)
		}
	}
}

func (v *rustVisitor) visitDecl(node *sitter.Node, kind declKind) {
	switch kind {
	case declFunction:
		v.visitFunction(node, false)
	case declFunctionSignature:
		v.visitFunction(node, true)
	case declStruct:
		v.visitSimple(node, extraction.KindStruct, baselineComplexity(1))
	case declUnion:
		v.visitSimple(node, extraction.KindUnion, baselineComplexity(1))
	case declEnum:
		v.visitSimple(node, extraction.KindEnum, baselineComplexity(enumVariantCount(node)))
	case declTrait:
		v.visitTrait(node)
	case declImpl:
		v.visitImpl(node)
	case declModule:
		v.visitModule(node)
	case declForeignModule:
		// extern blocks are not elements; their items belong to the enclosing scope.
		v.visitItems(node.ChildByFieldName("body"))
	case declConst:
		v.visitSimple(node, extraction.KindConst, nil)
	case declStatic:
		v.visitSimple(node, extraction.KindStatic, nil)
	case declTypeAlias:
		v.visitSimple(node, extraction.KindTypeAlias, nil)
	case declMacro:
		v.visitMacro(node)
	default:
		panic("parsers: unhandled declaration kind " + strconv.Itoa(int(kind)))
	}
}

func (v *rustVisitor) visitFunction(node *sitter.Node, signatureOnly bool) {
	kind := extraction.KindFunction
	if top := v.top(); top != nil && top.methods {
		kind = extraction.KindMethod
	}

	var complexity *extraction.ComplexityMetrics
	if signatureOnly || node.ChildByFieldName("body") == nil {
		complexity = signatureComplexity(node)
	} else {
		complexity = functionComplexity(node, v.source)
	}

	e, ok := v.emit(node, kind, v.name(node), v.visibility(node), complexity)
	if !ok {
		return
	}

	if mods := findChildByType(node, "function_modifiers"); mods != nil {
		for i := uint(0); i < mods.ChildCount(); i++ {
			switch mods.Child(i).Kind() {
			case "async":
				e.IsAsync = true
			case "unsafe":
				e.IsUnsafe = true
			case "const":
				e.IsConst = true
			}
		}
	}
}

func (v *rustVisitor) visitSimple(node *sitter.Node, kind extraction.ElementKind, complexity *extraction.ComplexityMetrics) {
	v.emit(node, kind, v.name(node), v.visibility(node), complexity)
}

func (v *rustVisitor) visitTrait(node *sitter.Node) {
	name := v.name(node)
	complexity := baselineComplexity(traitMemberCount(node))
	if _, ok := v.emit(node, extraction.KindTrait, name, v.visibility(node), complexity); !ok {
		return
	}

	v.push(name, true, true)
	v.visitItems(node.ChildByFieldName("body"))
	v.pop()
}

func (v *rustVisitor) visitImpl(node *sitter.Node) {
	typeNode := node.ChildByFieldName("type")
	traitNode := node.ChildByFieldName("trait")

	selfType := normalizeSpace(nodeText(typeNode, v.source))
	name := selfType
	traitName := ""
	if traitNode != nil {
		traitName = normalizeSpace(nodeText(traitNode, v.source))
		name = traitName + " for " + selfType
		if findChildByType(node, "!") != nil {
			name = "!" + name
		}
	}

	// Impl blocks carry no visibility of their own.
	vis := extraction.Visibility{Level: extraction.VisibilityPublic}
	e, ok := v.emit(node, extraction.KindImpl, name, vis, nil)
	if !ok {
		return
	}
	e.SelfType = selfType
	e.TraitName = traitName

	v.push(baseTypeName(typeNode, v.source), traitNode != nil, true)
	v.visitItems(node.ChildByFieldName("body"))
	v.pop()
}

func (v *rustVisitor) visitModule(node *sitter.Node) {
	name := v.name(node)
	e, ok := v.emit(node, extraction.KindModule, name, v.visibility(node), nil)
	if !ok {
		return
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	if v.opts.IncludeDocs {
		e.Docs = append(e.Docs, innerDocs(body, v.source)...)
	}

	v.push(name, false, false)
	v.visitItems(body)
	v.pop()
}

func (v *rustVisitor) visitMacro(node *sitter.Node) {
	_, attrs := leadingDecorations(node, v.source)
	vis := extraction.Visibility{Level: extraction.VisibilityPrivate}
	for _, attr := range attrs {
		if strings.HasPrefix(attr, "#[macro_export") {
			vis.Level = extraction.VisibilityPublic
			break
		}
	}
	v.emit(node, extraction.KindMacro, v.name(node), vis, nil)
}

// emit creates an element, links it into the hierarchy and returns a pointer into the
// element slice that stays valid until the next emit. Private declarations are dropped
// here when they are excluded, before any id or link is assigned.
func (v *rustVisitor) emit(node *sitter.Node, kind extraction.ElementKind, name string, vis extraction.Visibility, complexity *extraction.ComplexityMetrics) (*extraction.Element, bool) {
	if vis.IsPrivate() && !v.opts.IncludePrivate {
		return nil, false
	}

	docs, attrs := leadingDecorations(node, v.source)
	if !v.opts.IncludeDocs {
		docs = nil
	}

	ordinal := len(v.elements)
	id := uuid.NewSHA1(elementNamespace, []byte(v.opts.IDSeed+"#"+strconv.Itoa(ordinal)+":"+string(kind)+":"+name)).String()

	segments := make([]string, len(v.stack))
	for i, s := range v.stack {
		segments[i] = s.segment
	}
	modulePath := strings.Join(segments, ScopeSeparator)
	qualified := name
	if modulePath != "" {
		qualified = modulePath + ScopeSeparator + name
	}

	hierarchy := extraction.ElementHierarchy{
		QualifiedName: qualified,
		ModulePath:    modulePath,
		NestingLevel:  len(v.stack),
	}
	if top := v.top(); top != nil {
		parent := &v.elements[top.index]
		hierarchy.ParentID = parent.ID
		parent.Hierarchy.ChildrenIDs = append(parent.Hierarchy.ChildrenIDs, id)
	}

	v.elements = append(v.elements, extraction.Element{
		ID:         id,
		Kind:       kind,
		Name:       name,
		Signature:  RenderSignature(node, v.source),
		Visibility: vis,
		Docs:       docs,
		Attributes: attrs,
		Location:   nodeLocation(node),
		Complexity: complexity,
		Hierarchy:  hierarchy,
	})
	return &v.elements[len(v.elements)-1], true
}

func (v *rustVisitor) push(segment string, inheritPublic, methods bool) {
	v.stack = append(v.stack, scope{
		segment:       segment,
		index:         len(v.elements) - 1,
		inheritPublic: inheritPublic,
		methods:       methods,
	})
}

func (v *rustVisitor) pop() {
	v.stack = v.stack[:len(v.stack)-1]
}

func (v *rustVisitor) top() *scope {
	if len(v.stack) == 0 {
		return nil
	}
	return &v.stack[len(v.stack)-1]
}

func (v *rustVisitor) name(node *sitter.Node) string {
	return nodeText(node.ChildByFieldName("name"), v.source)
}

// visibility resolves a declaration's visibility, applying inheritance from trait
// and trait-impl scopes.
func (v *rustVisitor) visibility(node *sitter.Node) extraction.Visibility {
	if top := v.top(); top != nil && top.inheritPublic {
		return extraction.Visibility{Level: extraction.VisibilityPublic}
	}
	return parseVisibility(node, v.source)
}

// baseTypeName strips generic arguments and references from an impl self type.
func baseTypeName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Kind() {
		case "generic_type":
			node = node.ChildByFieldName("type")
		case "reference_type", "pointer_type":
			node = node.ChildByFieldName("type")
		default:
			return normalizeSpace(nodeText(node, source))
		}
	}
	return ""
}

func nodeLocation(node *sitter.Node) extraction.Location {
	start := node.StartPosition()
	end := node.EndPosition()
	return extraction.Location{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
		StartByte:   int(node.StartByte()),
		EndByte:     int(node.EndByte()),
	}
}
