package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codepulse/pkg/ast"
)

func lowerPython(l *lowerer, n *sitter.Node, depth int) (ast.Node, bool) {
	t := n.Type()
	switch t {
	case "comment", "import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement", "parameters", "lambda_parameters":
		return nil, true

	case "identifier":
		return &ast.Ref{Pos: span(n), Name: l.text(n)}, true

	case "function_definition":
		params := pyParams(l, n.ChildByFieldName("parameters"), depth)
		return &ast.Function{
			Pos:    span(n),
			Name:   l.text(n.ChildByFieldName("name")),
			Params: append(params, l.list(depth, n.ChildByFieldName("return_type"))...),
			Body:   l.list(depth, n.ChildByFieldName("body")),
		}, true

	case "class_definition":
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.except(n, depth, "name")}, true

	case "if_statement":
		return lowerPyIf(l, n, depth), true

	case "while_statement":
		return &ast.Loop{
			Pos:     span(n),
			Flavour: ast.LoopWhile,
			Head:    l.list(depth, n.ChildByFieldName("condition")),
			Body:    l.list(depth, n.ChildByFieldName("body")),
			Else:    pyElse(l, n.ChildByFieldName("alternative"), depth),
		}, true

	case "for_statement":
		// The loop target is a binding, not a read.
		return &ast.Loop{
			Pos:     span(n),
			Flavour: ast.LoopForIn,
			Head:    l.list(depth, n.ChildByFieldName("right")),
			Body:    l.list(depth, n.ChildByFieldName("body")),
			Else:    pyElse(l, n.ChildByFieldName("alternative"), depth),
		}, true

	case "boolean_operator":
		return &ast.Logical{
			Pos:      span(n),
			Operator: l.text(n.ChildByFieldName("operator")),
			Operands: l.list(depth, n.ChildByFieldName("left"), n.ChildByFieldName("right")),
		}, true

	case "except_clause", "except_group_clause":
		return lowerPyExcept(l, n, depth), true

	case "case_clause":
		return lowerPyCase(l, n, depth), true

	case "assignment":
		return lowerPyAssignment(l, n, depth), true

	case "augmented_assignment":
		var nodes []*sitter.Node
		if left := n.ChildByFieldName("left"); left != nil && !isPyBindingTarget(left) {
			nodes = append(nodes, left)
		}
		nodes = append(nodes, n.ChildByFieldName("right"))
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, nodes...)}, true

	case "attribute":
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, n.ChildByFieldName("object"))}, true

	case "keyword_argument":
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, n.ChildByFieldName("value"))}, true

	case "named_expression":
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, n.ChildByFieldName("value"))}, true

	case "lambda":
		nodes := pyParams(l, n.ChildByFieldName("parameters"), depth)
		nodes = append(nodes, l.list(depth, n.ChildByFieldName("body"))...)
		return &ast.Generic{Type: t, Pos: span(n), Nodes: nodes}, true

	case "for_in_clause":
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.except(n, depth, "left")}, true

	case "as_pattern":
		// Only the aliased expression is read; the alias is a binding.
		if n.NamedChildCount() == 0 {
			return nil, true
		}
		return &ast.Generic{Type: t, Pos: span(n), Nodes: l.list(depth, n.NamedChild(0))}, true
	}
	return nil, false
}

// pyParams lowers the default values and annotations of a parameter list.
// The parameter names themselves are bindings.
func pyParams(l *lowerer, params *sitter.Node, depth int) []ast.Node {
	if params == nil {
		return nil
	}
	var reads []*sitter.Node
	for i := 0; i < int(params.NamedChildCount()); i++ {
		c := params.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "default_parameter":
			reads = append(reads, c.ChildByFieldName("value"))
		case "typed_parameter":
			reads = append(reads, c.ChildByFieldName("type"))
		case "typed_default_parameter":
			reads = append(reads, c.ChildByFieldName("type"), c.ChildByFieldName("value"))
		}
	}
	return l.list(depth, reads...)
}

// lowerPyIf turns an if/elif/else statement into a chain of If nodes,
// each elif nested in the Else of its predecessor.
func lowerPyIf(l *lowerer, n *sitter.Node, depth int) ast.Node {
	root := &ast.If{
		Pos:  span(n),
		Test: l.field(n, "condition", depth),
		Then: l.list(depth, n.ChildByFieldName("consequence")),
	}
	cur := root
	for _, alt := range namedOfType(n, "elif_clause", "else_clause") {
		switch alt.Type() {
		case "elif_clause":
			next := &ast.If{
				Pos:  span(alt),
				Test: l.field(alt, "condition", depth),
				Then: l.list(depth, alt.ChildByFieldName("consequence")),
			}
			cur.Else = []ast.Node{next}
			cur = next
		case "else_clause":
			cur.Else = pyElse(l, alt, depth)
		}
	}
	return root
}

// pyElse lowers the block of an else clause.
func pyElse(l *lowerer, n *sitter.Node, depth int) []ast.Node {
	if n == nil {
		return nil
	}
	if body := n.ChildByFieldName("body"); body != nil {
		return l.list(depth, body)
	}
	return l.children(n, depth)
}

// lowerPyExcept lowers an except clause. Everything after "as" names the
// caught exception and is skipped.
func lowerPyExcept(l *lowerer, n *sitter.Node, depth int) ast.Node {
	out := &ast.Handler{Pos: span(n)}
	afterAs := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() {
			if c.Type() == "as" {
				afterAs = true
			}
			continue
		}
		switch {
		case c.Type() == "block":
			out.Body = append(out.Body, l.list(depth, c)...)
		case c.Type() == "comment" || afterAs:
		case out.Type == nil:
			out.Type = l.node(c, depth+1)
		}
	}
	return out
}

// lowerPyCase lowers one arm of a match statement. A lone "_" pattern
// without a guard is the catch-all arm.
func lowerPyCase(l *lowerer, n *sitter.Node, depth int) ast.Node {
	out := &ast.Case{Pos: span(n)}
	var patterns []*sitter.Node
	var guard, body *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "block":
			body = c
		case "if_clause":
			guard = c
		case "comment":
		default:
			patterns = append(patterns, c)
		}
	}
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		body = cons
	}
	out.Default = guard == nil && len(patterns) == 1 && strings.TrimSpace(l.text(patterns[0])) == "_"
	if guard != nil {
		out.Test = l.node(guard, depth+1)
	}
	out.Body = l.list(depth, body)
	return out
}

func lowerPyAssignment(l *lowerer, n *sitter.Node, depth int) ast.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	annotation := n.ChildByFieldName("type")

	if left != nil && left.Type() == "identifier" && right != nil {
		return &ast.Declare{
			Pos:    span(n),
			Name:   l.text(left),
			Value:  l.node(right, depth+1),
			Extras: l.list(depth, annotation),
		}
	}

	var nodes []*sitter.Node
	if left != nil && !isPyBindingTarget(left) {
		nodes = append(nodes, left)
	}
	nodes = append(nodes, right, annotation)
	return &ast.Generic{Type: n.Type(), Pos: span(n), Nodes: l.list(depth, nodes...)}
}

func isPyBindingTarget(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "pattern_list", "tuple_pattern", "list_pattern", "list_splat_pattern":
		return true
	}
	return false
}
