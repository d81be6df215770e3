// Package graph builds the containment forest of extracted elements and checks
// that parent/child links are consistent.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// ErrInvalidForest indicates elements whose hierarchy links do not form a forest.
var ErrInvalidForest = errors.New("element hierarchy is not a forest")

// Hierarchy is the containment forest of one file's elements. Edges point from
// parent to child.
type Hierarchy struct {
	g        graph.Graph[string, *extraction.Element]
	elements []extraction.Element
	roots    []string
}

// Build constructs the hierarchy of elements, which must be in visit order.
// It fails when an id repeats, a parent is unknown or comes after its child,
// nesting levels disagree, or a parent's children list is out of sync.
func Build(elements []extraction.Element) (*Hierarchy, error) {
	h := &Hierarchy{
		g:        graph.New(func(e *extraction.Element) string { return e.ID }, graph.Directed(), graph.Acyclic()),
		elements: elements,
	}

	position := make(map[string]int, len(elements))
	for i := range elements {
		e := &elements[i]
		if err := h.g.AddVertex(e); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("%w: duplicate id %s (%s)", ErrInvalidForest, e.ID, e.Hierarchy.QualifiedName)
			}
			return nil, fmt.Errorf("failed to add element %s: %w", e.ID, err)
		}
		position[e.ID] = i
	}

	for i := range elements {
		e := &elements[i]
		parentID := e.Hierarchy.ParentID
		if parentID == "" {
			if e.Hierarchy.NestingLevel != 0 {
				return nil, fmt.Errorf("%w: root %s has nesting level %d", ErrInvalidForest, e.Hierarchy.QualifiedName, e.Hierarchy.NestingLevel)
			}
			h.roots = append(h.roots, e.ID)
			continue
		}

		p, ok := position[parentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s has unknown parent %s", ErrInvalidForest, e.Hierarchy.QualifiedName, parentID)
		}
		if p >= i {
			return nil, fmt.Errorf("%w: %s precedes its parent", ErrInvalidForest, e.Hierarchy.QualifiedName)
		}
		parent := &elements[p]
		if e.Hierarchy.NestingLevel != parent.Hierarchy.NestingLevel+1 {
			return nil, fmt.Errorf("%w: %s has nesting level %d under parent level %d",
				ErrInvalidForest, e.Hierarchy.QualifiedName, e.Hierarchy.NestingLevel, parent.Hierarchy.NestingLevel)
		}
		if !slices.Contains(parent.Hierarchy.ChildrenIDs, e.ID) {
			return nil, fmt.Errorf("%w: %s is missing from the children of %s", ErrInvalidForest, e.Hierarchy.QualifiedName, parent.Hierarchy.QualifiedName)
		}

		if err := h.g.AddEdge(parentID, e.ID); err != nil {
			return nil, fmt.Errorf("%w: %s -> %s: %v", ErrInvalidForest, parentID, e.ID, err)
		}
	}

	// Every listed child must point back at its parent.
	for i := range elements {
		e := &elements[i]
		for _, childID := range e.Hierarchy.ChildrenIDs {
			c, ok := position[childID]
			if !ok || elements[c].Hierarchy.ParentID != e.ID {
				return nil, fmt.Errorf("%w: %s lists %s as a child", ErrInvalidForest, e.Hierarchy.QualifiedName, childID)
			}
		}
	}

	return h, nil
}

// Verify reports whether elements form a valid forest.
func Verify(elements []extraction.Element) error {
	_, err := Build(elements)
	return err
}

// Roots returns the ids of top-level elements in visit order.
func (h *Hierarchy) Roots() []string {
	return h.roots
}

// Element returns the element with the given id.
func (h *Hierarchy) Element(id string) (*extraction.Element, error) {
	return h.g.Vertex(id)
}

// Children returns the ids of an element's direct children in visit order.
func (h *Hierarchy) Children(id string) ([]string, error) {
	e, err := h.g.Vertex(id)
	if err != nil {
		return nil, err
	}
	return e.Hierarchy.ChildrenIDs, nil
}

// Descendants returns every element below id, excluding id itself.
func (h *Hierarchy) Descendants(id string) ([]string, error) {
	var ids []string
	err := graph.BFS(h.g, id, func(visited string) bool {
		if visited != id {
			ids = append(ids, visited)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Walk visits every element in pre-order with its depth. Returning false from
// visit skips the element's subtree.
func (h *Hierarchy) Walk(visit func(e *extraction.Element, depth int) bool) {
	var walk func(ids []string, depth int)
	walk = func(ids []string, depth int) {
		for _, id := range ids {
			e, err := h.g.Vertex(id)
			if err != nil {
				continue
			}
			if visit(e, depth) {
				walk(e.Hierarchy.ChildrenIDs, depth+1)
			}
		}
	}
	walk(h.roots, 0)
}
