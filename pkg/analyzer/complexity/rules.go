package complexity

import (
	"github.com/panbanda/codepulse/pkg/ast"
	"github.com/panbanda/codepulse/pkg/parser"
)

// DefaultComplexityThreshold is the cyclomatic complexity above which a
// decomposition suggestion is emitted.
const DefaultComplexityThreshold = 10

// Profile bundles everything that differs between languages: the rule
// table, the nesting threshold and the suggestion phrasing.
type Profile struct {
	Language         parser.Language
	Rules            RuleTable
	NestingThreshold int
	Messages         Messages
}

// JavaScriptProfile returns the JavaScript profile. Short-circuit operators
// and catch clauses do not add complexity in JavaScript.
func JavaScriptProfile() Profile {
	return Profile{
		Language: parser.LangJavaScript,
		Rules: RuleTable{
			ast.KindIf:       ifRule,
			ast.KindLoop:     loopRule,
			ast.KindCase:     caseRule,
			ast.KindFunction: functionRule,
			ast.KindDeclare:  declareRule,
			ast.KindRef:      refRule,
		},
		NestingThreshold: 4,
		Messages:         javaScriptMessages,
	}
}

// PythonProfile returns the Python profile.
func PythonProfile() Profile {
	return Profile{
		Language: parser.LangPython,
		Rules: RuleTable{
			ast.KindIf:       ifRule,
			ast.KindLoop:     loopRule,
			ast.KindCase:     caseRule,
			ast.KindLogical:  logicalRule,
			ast.KindHandler:  handlerRule,
			ast.KindFunction: functionRule,
			ast.KindDeclare:  declareRule,
			ast.KindRef:      refRule,
		},
		NestingThreshold: 5,
		Messages:         pythonMessages,
	}
}

// ProfileFor returns the profile for lang.
func ProfileFor(lang parser.Language) (Profile, bool) {
	switch lang {
	case parser.LangJavaScript:
		return JavaScriptProfile(), true
	case parser.LangPython:
		return PythonProfile(), true
	default:
		return Profile{}, false
	}
}

func ifRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	node := n.(*ast.If)
	acc.Branch()
	acc.Reach(depth + 1)
	visit(depth, node.Test)
	visit(depth+1, node.Then...)
	visit(depth+1, node.Else...)
}

func loopRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	node := n.(*ast.Loop)
	acc.Branch()
	acc.Reach(depth + 1)
	visit(depth, node.Head...)
	visit(depth+1, node.Body...)
	visit(depth+1, node.Else...)
}

func caseRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	node := n.(*ast.Case)
	if !node.Default {
		acc.Branch()
	}
	visit(depth, node.Test)
	visit(depth, node.Body...)
}

func logicalRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	acc.Branch()
	visit(depth, n.Children()...)
}

func handlerRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	acc.Branch()
	visit(depth, n.Children()...)
}

func functionRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	node := n.(*ast.Function)
	acc.AddFunction(node.Pos)
	visit(depth, node.Params...)
	visit(depth+1, node.Body...)
}

func declareRule(acc *Accumulator, n ast.Node, depth int, visit Visitor) {
	acc.Declare(n.(*ast.Declare).Name)
	visit(depth, n.Children()...)
}

func refRule(acc *Accumulator, n ast.Node, _ int, _ Visitor) {
	acc.Use(n.(*ast.Ref).Name)
}
