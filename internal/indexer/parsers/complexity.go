package parsers

import (
	"math"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// operandKinds are leaf node kinds counted as Halstead operands. Literal kinds are
// counted once as a whole even when the grammar gives them children.
var operandKinds = map[string]bool{
	"identifier":                 true,
	"field_identifier":           true,
	"type_identifier":            true,
	"primitive_type":             true,
	"self":                       true,
	"shorthand_field_identifier": true,
	"metavariable":               true,
	"integer_literal":            true,
	"float_literal":              true,
	"string_literal":             true,
	"raw_string_literal":         true,
	"char_literal":               true,
	"boolean_literal":            true,
}

// delimiterTokens are anonymous tokens excluded from the operator tally.
var delimiterTokens = map[string]bool{
	"(": true, ")": true,
	"[": true, "]": true,
	"{": true, "}": true,
	",": true, ";": true,
}

// loopKinds add one branch each and nest their body.
var loopKinds = map[string]bool{
	"while_expression": true,
	"loop_expression":  true,
	"for_expression":   true,
}

// complexityWalker accumulates metrics over one function in a single walk.
type complexityWalker struct {
	source     []byte
	root       *sitter.Node
	cyclomatic int
	cognitive  int
	maxNesting int

	operators      map[string]int
	operands       map[string]int
	totalOperators int
	totalOperands  int
}

// functionComplexity computes metrics for a function_item node.
func functionComplexity(node *sitter.Node, source []byte) *extraction.ComplexityMetrics {
	w := &complexityWalker{
		source:     source,
		root:       node,
		cyclomatic: 1,
		operators:  make(map[string]int),
		operands:   make(map[string]int),
	}
	w.walk(node, 0)

	return &extraction.ComplexityMetrics{
		Cyclomatic:     w.cyclomatic,
		Cognitive:      w.cognitive,
		NestingDepth:   w.maxNesting,
		ParameterCount: parameterCount(node),
		Halstead:       w.halstead(),
	}
}

// signatureComplexity is the baseline for a bodiless trait or foreign function.
func signatureComplexity(node *sitter.Node) *extraction.ComplexityMetrics {
	return &extraction.ComplexityMetrics{
		Cyclomatic:     1,
		ParameterCount: parameterCount(node),
	}
}

// baselineComplexity is used for declarations without an executable body.
func baselineComplexity(n int) *extraction.ComplexityMetrics {
	return &extraction.ComplexityMetrics{Cyclomatic: max(1, n)}
}

func (w *complexityWalker) contribute(count, nesting int) {
	w.cyclomatic += count
	w.cognitive += count * (1 + nesting)
}

func (w *complexityWalker) walk(n *sitter.Node, nesting int) {
	if n == nil {
		return
	}
	kind := n.Kind()

	if !sameNode(n, w.root) && itemNodeKinds[kind] {
		return
	}
	if isComment(n) {
		return
	}

	w.maxNesting = max(w.maxNesting, nesting)

	if operandKinds[kind] {
		w.operand(nodeText(n, w.source))
		return
	}
	if n.ChildCount() == 0 {
		if !n.IsNamed() {
			w.operator(kind)
		}
		return
	}

	switch {
	case kind == "if_expression":
		w.contribute(1, nesting)
		w.walkIf(n, nesting)
		return

	case loopKinds[kind]:
		w.contribute(1, nesting)
		body := n.ChildByFieldName("body")
		w.walkChildren(n, func(child *sitter.Node) int {
			if sameNode(child, body) {
				return nesting + 1
			}
			return nesting
		})
		return

	case kind == "match_expression":
		body := n.ChildByFieldName("body")
		if arms := len(findChildrenByType(body, "match_arm")); arms > 1 {
			w.contribute(arms-1, nesting)
		}
		w.walkChildren(n, func(child *sitter.Node) int {
			if sameNode(child, body) {
				return nesting + 1
			}
			return nesting
		})
		return

	case kind == "closure_expression":
		body := n.ChildByFieldName("body")
		w.walkChildren(n, func(child *sitter.Node) int {
			if sameNode(child, body) {
				return nesting + 1
			}
			return nesting
		})
		return

	case kind == "let_chain":
		for i := uint(0); i < n.ChildCount(); i++ {
			if n.Child(i).Kind() == "&&" {
				w.contribute(1, nesting)
			}
		}

	case kind == "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil {
			switch op.Kind() {
			case "&&", "||":
				w.contribute(1, nesting)
			}
		}
	}

	w.walkChildren(n, func(*sitter.Node) int { return nesting })
}

// walkIf walks an if_expression whose own contribution is already counted.
// An else-if chain stays at the nesting of the first if.
func (w *complexityWalker) walkIf(n *sitter.Node, nesting int) {
	consequence := n.ChildByFieldName("consequence")
	alternative := n.ChildByFieldName("alternative")

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch {
		case sameNode(child, consequence):
			w.walk(child, nesting+1)
		case sameNode(child, alternative):
			w.walkElse(child, nesting)
		default:
			w.walk(child, nesting)
		}
	}
}

func (w *complexityWalker) walkElse(n *sitter.Node, nesting int) {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.Kind() == "if_expression" {
			w.maxNesting = max(w.maxNesting, nesting)
			w.contribute(1, nesting)
			w.walkIf(child, nesting)
			continue
		}
		if child.IsNamed() {
			w.walk(child, nesting+1)
		} else {
			w.walk(child, nesting)
		}
	}
}

func (w *complexityWalker) walkChildren(n *sitter.Node, nestingFor func(*sitter.Node) int) {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		w.walk(child, nestingFor(child))
	}
}

func (w *complexityWalker) operator(token string) {
	if delimiterTokens[token] {
		return
	}
	w.operators[token]++
	w.totalOperators++
}

func (w *complexityWalker) operand(token string) {
	w.operands[token]++
	w.totalOperands++
}

func (w *complexityWalker) halstead() *extraction.HalsteadMetrics {
	h := &extraction.HalsteadMetrics{
		DistinctOperators: len(w.operators),
		DistinctOperands:  len(w.operands),
		TotalOperators:    w.totalOperators,
		TotalOperands:     w.totalOperands,
	}
	h.Vocabulary = h.DistinctOperators + h.DistinctOperands
	h.Length = h.TotalOperators + h.TotalOperands

	if h.Vocabulary > 0 {
		h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	}
	if h.DistinctOperands > 0 {
		h.Difficulty = (float64(h.DistinctOperators) / 2) * (float64(h.TotalOperands) / float64(h.DistinctOperands))
	}
	h.Effort = h.Difficulty * h.Volume
	return h
}

// parameterCount counts declared parameters, including self.
func parameterCount(node *sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}

	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		switch params.NamedChild(i).Kind() {
		case "parameter", "self_parameter", "variadic_parameter":
			count++
		}
	}
	return count
}

// enumVariantCount counts the variants of an enum_item.
func enumVariantCount(node *sitter.Node) int {
	return len(findChildrenByType(node.ChildByFieldName("body"), "enum_variant"))
}

// traitMemberCount counts the associated items declared in a trait_item.
func traitMemberCount(node *sitter.Node) int {
	body := node.ChildByFieldName("body")
	if body == nil {
		return 0
	}

	count := 0
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if isComment(child) {
			continue
		}
		switch child.Kind() {
		case "attribute_item", "inner_attribute_item":
			continue
		}
		count++
	}
	return count
}
