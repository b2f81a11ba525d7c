package ast

import (
	"context"

	"github.com/panbanda/codepulse/pkg/parser"
)

// Provider turns source text into a lowered syntax tree for one language.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Parse parses source and returns the root node.
	// Malformed source yields a *parser.ParseError.
	Parse(ctx context.Context, source []byte) (Node, error)

	// Language returns the language this provider parses.
	Language() parser.Language
}

// Kind identifies the variant of a Node.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindIf
	KindLoop
	KindCase
	KindLogical
	KindHandler
	KindFunction
	KindDeclare
	KindRef
)

var kindNames = [...]string{
	KindGeneric:  "generic",
	KindIf:       "if",
	KindLoop:     "loop",
	KindCase:     "case",
	KindLogical:  "logical",
	KindHandler:  "handler",
	KindFunction: "function",
	KindDeclare:  "declare",
	KindRef:      "ref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Span is the line range a node covers. Lines are 1-based; a zero
// StartLine means the position is unknown.
type Span struct {
	StartLine int
	EndLine   int
}

// Lines returns EndLine-StartLine, or 0 when the span is unknown or inverted.
func (s Span) Lines() int {
	if s.StartLine <= 0 || s.EndLine < s.StartLine {
		return 0
	}
	return s.EndLine - s.StartLine
}

// Node is a lowered syntax tree node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Span() Span
	// Children returns every child in source order.
	Children() []Node
	sealed()
}

// Generic is any construct without a dedicated kind.
type Generic struct {
	Type  string // grammar node type, e.g. "call_expression"
	Pos   Span
	Nodes []Node
}

// If is a conditional. An else-if chain is an If nested in Else.
type If struct {
	Pos  Span
	Test Node
	Then []Node
	Else []Node
}

// LoopKind distinguishes loop flavours.
type LoopKind uint8

const (
	LoopWhile LoopKind = iota
	LoopDoWhile
	LoopFor
	LoopForIn
)

// Loop is a while, do-while, for or for-in/of loop. Head holds the
// expressions evaluated outside the body (condition, iterable, update).
// Else is Python's loop else clause.
type Loop struct {
	Pos     Span
	Flavour LoopKind
	Head    []Node
	Body    []Node
	Else    []Node
}

// Case is one arm of a switch or match statement.
type Case struct {
	Pos     Span
	Default bool // default arm or catch-all pattern
	Test    Node
	Body    []Node
}

// Logical is a short-circuit boolean operation.
type Logical struct {
	Pos      Span
	Operator string
	Operands []Node
}

// Handler is an exception handler clause.
type Handler struct {
	Pos  Span
	Type Node // caught exception type, nil for a bare handler
	Body []Node
}

// Function is a function, method or arrow function definition. Params
// holds what the signature reads where the function is defined: default
// values and annotations. Parameter names are bindings and never appear.
type Function struct {
	Pos    Span
	Name   string
	Params []Node
	Body   []Node
}

// Declare binds a plain identifier to a value.
type Declare struct {
	Pos    Span
	Name   string
	Value  Node
	Extras []Node // annotations and other loads attached to the declaration
}

// Ref reads an identifier.
type Ref struct {
	Pos  Span
	Name string
}

func (n *Generic) Kind() Kind  { return KindGeneric }
func (n *If) Kind() Kind       { return KindIf }
func (n *Loop) Kind() Kind     { return KindLoop }
func (n *Case) Kind() Kind     { return KindCase }
func (n *Logical) Kind() Kind  { return KindLogical }
func (n *Handler) Kind() Kind  { return KindHandler }
func (n *Function) Kind() Kind { return KindFunction }
func (n *Declare) Kind() Kind  { return KindDeclare }
func (n *Ref) Kind() Kind      { return KindRef }

func (n *Generic) Span() Span  { return n.Pos }
func (n *If) Span() Span       { return n.Pos }
func (n *Loop) Span() Span     { return n.Pos }
func (n *Case) Span() Span     { return n.Pos }
func (n *Logical) Span() Span  { return n.Pos }
func (n *Handler) Span() Span  { return n.Pos }
func (n *Function) Span() Span { return n.Pos }
func (n *Declare) Span() Span  { return n.Pos }
func (n *Ref) Span() Span      { return n.Pos }

func (n *Generic) Children() []Node { return n.Nodes }

func (n *If) Children() []Node {
	return join([]Node{n.Test}, n.Then, n.Else)
}

func (n *Loop) Children() []Node {
	return join(n.Head, n.Body, n.Else)
}

func (n *Case) Children() []Node {
	return join([]Node{n.Test}, n.Body)
}

func (n *Logical) Children() []Node { return n.Operands }

func (n *Handler) Children() []Node {
	return join([]Node{n.Type}, n.Body)
}

func (n *Function) Children() []Node {
	return join(n.Params, n.Body)
}

func (n *Declare) Children() []Node {
	return join([]Node{n.Value}, n.Extras)
}

func (n *Ref) Children() []Node { return nil }

func (*Generic) sealed()  {}
func (*If) sealed()       {}
func (*Loop) sealed()     {}
func (*Case) sealed()     {}
func (*Logical) sealed()  {}
func (*Handler) sealed()  {}
func (*Function) sealed() {}
func (*Declare) sealed()  {}
func (*Ref) sealed()      {}

// join concatenates node lists, dropping nil entries.
func join(lists ...[]Node) []Node {
	var out []Node
	for _, list := range lists {
		for _, n := range list {
			if !IsNil(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// IsNil reports whether n is nil or a typed nil pointer.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Generic:
		return v == nil
	case *If:
		return v == nil
	case *Loop:
		return v == nil
	case *Case:
		return v == nil
	case *Logical:
		return v == nil
	case *Handler:
		return v == nil
	case *Function:
		return v == nil
	case *Declare:
		return v == nil
	case *Ref:
		return v == nil
	}
	return false
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	if IsNil(n) {
		return 0
	}
	total := 0
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total++
		for _, c := range cur.Children() {
			if !IsNil(c) {
				stack = append(stack, c)
			}
		}
	}
	return total
}
