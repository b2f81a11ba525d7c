// Package treesitter lowers tree-sitter syntax trees into ast nodes.
package treesitter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/codepulse/pkg/ast"
	"github.com/panbanda/codepulse/pkg/parser"
)

// MaxDepth is the deepest grammar node lowering will descend into.
// Deeper trees fail with parser.ErrTooDeep. Long operator chains nest one
// level per operator, so the limit sits far above anything hand-written.
const MaxDepth = 1 << 16

// lowerFunc handles the grammar node types a language treats specially.
// It returns false to fall back to generic lowering.
type lowerFunc func(l *lowerer, n *sitter.Node, depth int) (ast.Node, bool)

var lowerers = map[parser.Language]lowerFunc{
	parser.LangJavaScript: lowerJavaScript,
	parser.LangPython:     lowerPython,
}

// Provider implements ast.Provider on top of tree-sitter grammars.
// A fresh tree-sitter parser is created per call, so a Provider is safe
// for concurrent use.
type Provider struct {
	lang parser.Language
}

var _ ast.Provider = (*Provider)(nil)

// New creates a provider for lang.
func New(lang parser.Language) *Provider {
	return &Provider{lang: lang}
}

// Language returns the language this provider parses.
func (p *Provider) Language() parser.Language {
	return p.lang
}

// Parse parses source and lowers the resulting tree.
func (p *Provider) Parse(ctx context.Context, source []byte) (ast.Node, error) {
	special, ok := lowerers[p.lang]
	if !ok {
		return nil, &parser.ParseError{Language: p.lang, Err: parser.ErrUnsupportedLanguage}
	}

	psr := parser.New()
	defer psr.Close()

	result, err := psr.Parse(ctx, source, p.lang)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	l := &lowerer{source: result.Source, lang: p.lang, special: special}
	root := l.node(result.Tree.RootNode(), 0)
	if l.err != nil {
		return nil, l.err
	}
	return root, nil
}

type lowerer struct {
	source  []byte
	lang    parser.Language
	special lowerFunc
	err     error
}

// node lowers n. Skipped nodes and nodes past the depth limit yield nil.
func (l *lowerer) node(n *sitter.Node, depth int) ast.Node {
	if n == nil || l.err != nil {
		return nil
	}
	if depth > MaxDepth {
		l.err = &parser.ParseError{
			Language: l.lang,
			Line:     int(n.StartPoint().Row) + 1,
			Column:   int(n.StartPoint().Column) + 1,
			Err:      parser.ErrTooDeep,
		}
		return nil
	}
	if out, ok := l.special(l, n, depth); ok {
		return out
	}
	return l.generic(n, depth)
}

func (l *lowerer) generic(n *sitter.Node, depth int) ast.Node {
	return &ast.Generic{Type: n.Type(), Pos: span(n), Nodes: l.children(n, depth)}
}

// children lowers every named child of n.
func (l *lowerer) children(n *sitter.Node, depth int) []ast.Node {
	if n == nil {
		return nil
	}
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := l.node(n.NamedChild(i), depth+1); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// list lowers the given nodes, dropping nil inputs and skipped results.
func (l *lowerer) list(depth int, nodes ...*sitter.Node) []ast.Node {
	var out []ast.Node
	for _, n := range nodes {
		if c := l.node(n, depth+1); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// field lowers the child of n stored under name.
func (l *lowerer) field(n *sitter.Node, name string, depth int) ast.Node {
	return l.node(n.ChildByFieldName(name), depth+1)
}

// except lowers every named child of n except those stored under the
// given field names.
func (l *lowerer) except(n *sitter.Node, depth int, fields ...string) []ast.Node {
	var skip []*sitter.Node
	for _, f := range fields {
		if c := n.ChildByFieldName(f); c != nil {
			skip = append(skip, c)
		}
	}
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil || containsNode(skip, c) {
			continue
		}
		if lowered := l.node(c, depth+1); lowered != nil {
			out = append(out, lowered)
		}
	}
	return out
}

func (l *lowerer) text(n *sitter.Node) string {
	return parser.GetNodeText(n, l.source)
}

// namedOfType returns the named children of n with one of the given types.
func namedOfType(n *sitter.Node, types ...string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		for _, t := range types {
			if c.Type() == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func containsNode(nodes []*sitter.Node, n *sitter.Node) bool {
	for _, c := range nodes {
		if sameNode(c, n) {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// span converts tree-sitter positions to 1-based lines. A node ending at
// column 0 ends on the previous line; its range only covers a trailing newline.
func span(n *sitter.Node) ast.Span {
	start, end := n.StartPoint(), n.EndPoint()
	endLine := int(end.Row) + 1
	if end.Column == 0 && end.Row > start.Row {
		endLine--
	}
	return ast.Span{StartLine: int(start.Row) + 1, EndLine: endLine}
}
