package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codepulse/pkg/ast"
)

var jsFunctionTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var jsLogicalOperators = map[string]bool{
	"&&": true,
	"||": true,
	"??": true,
}

func lowerJavaScript(l *lowerer, n *sitter.Node, depth int) (ast.Node, bool) {
	t := n.Type()
	if jsFunctionTypes[t] {
		return &ast.Function{
			Pos:    span(n),
			Name:   l.text(n.ChildByFieldName("name")),
			Params: jsParams(l, n.ChildByFieldName("parameters"), depth),
			Body:   l.list(depth, n.ChildByFieldName("body")),
		}, true
	}

	switch t {
	case "comment", "hash_bang_line", "import_statement",
		"property_identifier", "statement_identifier", "shorthand_property_identifier_pattern":
		return nil, true

	case "identifier", "shorthand_property_identifier":
		return &ast.Ref{Pos: span(n), Name: l.text(n)}, true

	case "if_statement":
		out := &ast.If{
			Pos:  span(n),
			Test: l.field(n, "condition", depth),
			Then: l.list(depth, n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			out.Else = l.children(alt, depth+1)
		}
		return out, true

	case "while_statement":
		return &ast.Loop{
			Pos:     span(n),
			Flavour: ast.LoopWhile,
			Head:    l.list(depth, n.ChildByFieldName("condition")),
			Body:    l.list(depth, n.ChildByFieldName("body")),
		}, true

	case "do_statement":
		return &ast.Loop{
			Pos:     span(n),
			Flavour: ast.LoopDoWhile,
			Head:    l.list(depth, n.ChildByFieldName("condition")),
			Body:    l.list(depth, n.ChildByFieldName("body")),
		}, true

	case "for_statement":
		return &ast.Loop{
			Pos:     span(n),
			Flavour: ast.LoopFor,
			Head: l.list(depth,
				n.ChildByFieldName("initializer"),
				n.ChildByFieldName("condition"),
				n.ChildByFieldName("increment"),
			),
			Body: l.list(depth, n.ChildByFieldName("body")),
		}, true

	case "for_in_statement":
		return lowerJSForIn(l, n, depth), true

	case "switch_case":
		return &ast.Case{
			Pos:  span(n),
			Test: l.field(n, "value", depth),
			Body: l.except(n, depth, "value"),
		}, true

	case "switch_default":
		return &ast.Case{Pos: span(n), Default: true, Body: l.children(n, depth)}, true

	case "catch_clause":
		return &ast.Handler{Pos: span(n), Body: l.list(depth, n.ChildByFieldName("body"))}, true

	case "binary_expression":
		op := l.text(n.ChildByFieldName("operator"))
		if !jsLogicalOperators[op] {
			return nil, false
		}
		return &ast.Logical{
			Pos:      span(n),
			Operator: op,
			Operands: l.list(depth, n.ChildByFieldName("left"), n.ChildByFieldName("right")),
		}, true

	case "variable_declarator":
		name := n.ChildByFieldName("name")
		if name != nil && name.Type() == "identifier" {
			return &ast.Declare{
				Pos:   span(n),
				Name:  l.text(name),
				Value: l.field(n, "value", depth),
			}, true
		}
		// Destructuring patterns bind names without declaring them as unused candidates.
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, n.ChildByFieldName("value"))}, true

	case "assignment_expression", "augmented_assignment_expression":
		var nodes []*sitter.Node
		if left := n.ChildByFieldName("left"); left != nil && !isJSBindingTarget(left) {
			nodes = append(nodes, left)
		}
		nodes = append(nodes, n.ChildByFieldName("right"))
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, nodes...)}, true

	case "class_declaration", "class":
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.except(n, depth, "name")}, true
	}
	return nil, false
}

// lowerJSForIn lowers for-in and for-of loops. A left side introduced with
// var, let or const is a declaration; a bare identifier is a store.
func lowerJSForIn(l *lowerer, n *sitter.Node, depth int) ast.Node {
	out := &ast.Loop{Pos: span(n), Flavour: ast.LoopForIn}
	left := n.ChildByFieldName("left")
	switch {
	case left == nil:
	case n.ChildByFieldName("kind") != nil:
		if left.Type() == "identifier" {
			out.Head = append(out.Head, &ast.Declare{Pos: span(left), Name: l.text(left)})
		}
	case !isJSBindingTarget(left):
		out.Head = append(out.Head, l.list(depth, left)...)
	}
	out.Head = append(out.Head, l.list(depth, n.ChildByFieldName("right"))...)
	out.Body = l.list(depth, n.ChildByFieldName("body"))
	return out
}

func isJSBindingTarget(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "object_pattern", "array_pattern":
		return true
	}
	return false
}

// jsParams lowers the expressions a parameter list reads: default values,
// including those nested in destructuring patterns, and computed keys.
func jsParams(l *lowerer, params *sitter.Node, depth int) []ast.Node {
	if params == nil {
		return nil
	}
	var reads []*sitter.Node
	stack := []*sitter.Node{params}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		var next []*sitter.Node
		switch n.Type() {
		case "assignment_pattern", "object_assignment_pattern":
			next = append(next, n.ChildByFieldName("left"))
			reads = append(reads, n.ChildByFieldName("right"))
		case "pair_pattern":
			if key := n.ChildByFieldName("key"); key != nil && key.Type() == "computed_property_name" {
				reads = append(reads, key)
			}
			next = append(next, n.ChildByFieldName("value"))
		case "formal_parameters", "object_pattern", "array_pattern", "rest_pattern":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				next = append(next, n.NamedChild(i))
			}
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return l.list(depth, reads...)
}
