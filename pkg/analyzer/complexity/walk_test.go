package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panbanda/codepulse/pkg/ast"
)

func ref(name string) ast.Node { return &ast.Ref{Name: name} }

func TestWalkFunctionWhileIf(t *testing.T) {
	root := &ast.Generic{Type: "program", Nodes: []ast.Node{
		&ast.Function{
			Pos: ast.Span{StartLine: 1, EndLine: 7},
			Body: []ast.Node{
				&ast.Loop{
					Head: []ast.Node{ref("items")},
					Body: []ast.Node{
						&ast.If{Test: ref("items"), Then: []ast.Node{ref("items")}},
					},
				},
			},
		},
	}}

	acc := NewAccumulator()
	Walk(root, JavaScriptProfile().Rules, acc)

	assert.Equal(t, 3, acc.Complexity)
	assert.Equal(t, 3, acc.MaxDepth)
	assert.Equal(t, 6, acc.FunctionLines)
}

func TestWalkParameterReadsAtDefinitionDepth(t *testing.T) {
	root := &ast.Function{
		Params: []ast.Node{&ast.If{Test: ref("fallback")}},
		Body:   []ast.Node{&ast.If{Test: ref("a")}},
	}

	acc := NewAccumulator()
	acc.Declare("fallback")
	Walk(root, JavaScriptProfile().Rules, acc)

	assert.Equal(t, 3, acc.Complexity)
	assert.Equal(t, 2, acc.MaxDepth)
	assert.True(t, acc.Used("fallback"))
	assert.Empty(t, acc.Unused())
}

func TestWalkTopLevelNesting(t *testing.T) {
	root := &ast.Loop{Body: []ast.Node{&ast.If{Test: ref("x")}}}

	acc := NewAccumulator()
	Walk(root, PythonProfile().Rules, acc)

	assert.Equal(t, 3, acc.Complexity)
	assert.Equal(t, 2, acc.MaxDepth)
}

func TestWalkElseChainNestsDeeper(t *testing.T) {
	root := &ast.If{
		Else: []ast.Node{&ast.If{
			Else: []ast.Node{&ast.If{}},
		}},
	}

	acc := NewAccumulator()
	Walk(root, JavaScriptProfile().Rules, acc)

	assert.Equal(t, 4, acc.Complexity)
	assert.Equal(t, 3, acc.MaxDepth)
}

func TestWalkLanguageTables(t *testing.T) {
	root := &ast.Generic{Nodes: []ast.Node{
		&ast.Logical{Operator: "and", Operands: []ast.Node{ref("a"), ref("b")}},
		&ast.Handler{Body: []ast.Node{ref("c")}},
		&ast.Case{Test: ref("d")},
		&ast.Case{Default: true},
	}}

	tests := []struct {
		name    string
		profile Profile
		want    int
	}{
		{"javascript ignores logical and handler", JavaScriptProfile(), 2},
		{"python counts logical and handler", PythonProfile(), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			Walk(root, tt.profile.Rules, acc)
			assert.Equal(t, tt.want, acc.Complexity)
			// Unregistered kinds still reach their children.
			for _, name := range []string{"a", "b", "c", "d"} {
				assert.True(t, acc.Used(name), name)
			}
		})
	}
}

func TestWalkDeclarations(t *testing.T) {
	root := &ast.Generic{Nodes: []ast.Node{
		&ast.Declare{Name: "total", Value: ref("seed")},
		&ast.Declare{Name: "seed"},
		&ast.Declare{Name: "unused"},
		ref("total"),
	}}

	acc := NewAccumulator()
	Walk(root, JavaScriptProfile().Rules, acc)

	assert.Equal(t, []string{"unused"}, acc.Unused())
}

func TestWalkNilAndEmpty(t *testing.T) {
	acc := NewAccumulator()
	Walk(nil, JavaScriptProfile().Rules, acc)
	Walk((*ast.If)(nil), JavaScriptProfile().Rules, acc)
	assert.Equal(t, 1, acc.Complexity)
	assert.Equal(t, 0, acc.MaxDepth)
}

func TestWalkDeepTreeUsesHeapStack(t *testing.T) {
	const depth = 200000
	var root ast.Node = ref("leaf")
	for i := 0; i < depth; i++ {
		root = &ast.If{Then: []ast.Node{root}}
	}

	acc := NewAccumulator()
	Walk(root, JavaScriptProfile().Rules, acc)

	assert.Equal(t, depth+1, acc.Complexity)
	assert.Equal(t, depth, acc.MaxDepth)
	assert.True(t, acc.Used("leaf"))
}
