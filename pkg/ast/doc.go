// Package ast defines the closed node model the metric engine walks.
//
// Grammar-specific syntax trees are lowered into a small set of node kinds
// (If, Loop, Case, Logical, Handler, Function, Declare, Ref) with typed
// fields. Everything else is a Generic node holding its children, so an
// engine that has no rule for a kind can still descend through it.
//
// Binding positions such as parameter lists, import clauses and
// destructuring targets are dropped during lowering; a Ref always denotes a
// read of an identifier.
//
// Usage:
//
//	provider := treesitter.New(parser.LangPython)
//
//	root, err := provider.Parse(ctx, []byte(code))
//	if err != nil {
//	    return err // *parser.ParseError
//	}
package ast
