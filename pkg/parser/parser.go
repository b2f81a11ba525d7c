package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Language represents a supported programming language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangUnknown    Language = "unknown"
)

// DefaultLanguage is the language used when a request names none, or one
// that is not supported.
const DefaultLanguage = LangJavaScript

// Languages returns every supported language.
func Languages() []Language {
	return []Language{LangJavaScript, LangPython}
}

// DisplayName returns the human-readable name of the language.
func (l Language) DisplayName() string {
	switch l {
	case LangJavaScript:
		return "JavaScript"
	case LangPython:
		return "Python"
	default:
		return string(l)
	}
}

func (l Language) String() string { return string(l) }

var (
	// ErrSyntax marks source that the grammar could not parse cleanly.
	ErrSyntax = errors.New("syntax error")

	// ErrTooDeep marks source whose syntax tree nests beyond the supported limit.
	ErrTooDeep = errors.New("syntax tree too deep")

	// ErrUnsupportedLanguage is returned for languages without a grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ParseError describes source that could not be turned into a syntax tree.
// Line and Column are 1-based and zero when no position is known.
type ParseError struct {
	Language Language
	Line     int
	Column   int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %v at line %d, column %d", e.Language, e.Err, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %v", e.Language, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser wraps tree-sitter for multi-language parsing.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code with a specified language. Source containing
// syntax errors yields a *ParseError wrapping ErrSyntax.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{Language: lang, Err: ErrSyntax}
		if bad := FirstError(root); bad != nil {
			perr.Line = int(bad.StartPoint().Row) + 1
			perr.Column = int(bad.StartPoint().Column) + 1
		}
		tree.Close()
		return nil, perr
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Close releases the syntax tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language enum.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// ParseLanguage maps a free-form language tag to a Language. The second
// return value is false when the tag names no supported language.
func ParseLanguage(tag string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "javascript", "js", "node", "ecmascript", "mjs", "cjs", "jsx":
		return LangJavaScript, true
	case "python", "py", "python3", "py3":
		return LangPython, true
	default:
		return LangUnknown, false
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	case ".py", ".pyw", ".pyi":
		return LangPython
	default:
		return LangUnknown
	}
}

// FirstError returns the first ERROR or MISSING node in document order,
// or nil if the tree is clean.
func FirstError(root *sitter.Node) *sitter.Node {
	if root == nil {
		return nil
	}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return nil
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
