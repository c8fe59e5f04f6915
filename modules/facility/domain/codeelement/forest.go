package codeelement

import (
	"fmt"
)

// Node is a code element placed in the forest. Children is non-nil for every
// node the builder reached, even when it has none.
type Node struct {
	CodeElement
	Children []*Node `json:"children"`
}

// CycleError is returned when the builder reaches the same id twice, either
// through a parent loop or because the id appears more than once.
type CycleError struct {
	ID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("code element %s reached more than once (cycle or duplicate id)", e.ID)
}

// BuildForest links flat elements into trees under their roots. Roots keep
// input order and so do siblings. Elements that cannot be reached from a root
// are left out; see Unreachable.
func BuildForest(flat []CodeElement) ([]*Node, error) {
	byParent := make(map[string][]int, len(flat))
	roots := make([]*Node, 0)
	for i, el := range flat {
		if el.IsRoot() {
			roots = append(roots, &Node{CodeElement: el})
			continue
		}
		if el.HasParent() {
			key := el.ParentID.String()
			byParent[key] = append(byParent[key], i)
		}
	}

	visited := make(map[string]struct{}, len(flat))
	queue := append([]*Node(nil), roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		key := n.ID.String()
		if _, ok := visited[key]; ok {
			return nil, &CycleError{ID: key}
		}
		visited[key] = struct{}{}

		idxs := byParent[key]
		n.Children = make([]*Node, 0, len(idxs))
		for _, i := range idxs {
			child := &Node{CodeElement: flat[i]}
			n.Children = append(n.Children, child)
			queue = append(queue, child)
		}
	}
	return roots, nil
}

// Unreachable returns the elements of flat that are not part of the forest,
// in input order.
func Unreachable(flat []CodeElement, roots []*Node) []CodeElement {
	seen := make(map[string]struct{}, len(flat))
	Walk(roots, func(n *Node, _ int) bool {
		seen[n.ID.String()] = struct{}{}
		return true
	})
	out := make([]CodeElement, 0)
	for _, el := range flat {
		if _, ok := seen[el.ID.String()]; !ok {
			out = append(out, el)
		}
	}
	return out
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn skips the node's subtree.
func Walk(roots []*Node, fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], depth: f.depth + 1})
		}
	}
}

// Count returns the number of nodes in the forest, roots included.
func Count(roots []*Node) int {
	n := 0
	Walk(roots, func(*Node, int) bool {
		n++
		return true
	})
	return n
}
