package complexity

import (
	"slices"

	"github.com/panbanda/codepulse/pkg/ast"
)

// Visitor schedules nodes to be visited at the given depth.
type Visitor func(depth int, nodes ...ast.Node)

// Rule applies a node's effect to the accumulator and schedules the
// children it wants visited.
type Rule func(acc *Accumulator, n ast.Node, depth int, visit Visitor)

// RuleTable maps node kinds to rules. Kinds without a rule have every
// child visited at the unchanged depth.
type RuleTable map[ast.Kind]Rule

type frame struct {
	node  ast.Node
	depth int
}

// Walk visits every node reachable from root in pre-order, starting at
// depth 0. The traversal uses an explicit stack, so arbitrarily deep trees
// do not grow the goroutine stack.
func Walk(root ast.Node, rules RuleTable, acc *Accumulator) {
	stack := []frame{{node: root}}
	visit := func(depth int, nodes ...ast.Node) {
		for _, n := range nodes {
			if !ast.IsNil(n) {
				stack = append(stack, frame{node: n, depth: depth})
			}
		}
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ast.IsNil(f.node) {
			continue
		}

		mark := len(stack)
		if rule, ok := rules[f.node.Kind()]; ok {
			rule(acc, f.node, f.depth, visit)
		} else {
			visit(f.depth, f.node.Children()...)
		}
		// Children were pushed in source order; flip them so they pop in it.
		slices.Reverse(stack[mark:])
	}
}
