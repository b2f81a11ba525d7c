package treesitter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/panbanda/codepulse/pkg/ast"
	"github.com/panbanda/codepulse/pkg/parser"
)

func TestProviderImplementsInterface(t *testing.T) {
	var _ ast.Provider = (*Provider)(nil)
}

// collect returns every node of the given kind in pre-order.
func collect(root ast.Node, kind ast.Kind) []ast.Node {
	var out []ast.Node
	stack := []ast.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ast.IsNil(n) {
			continue
		}
		if n.Kind() == kind {
			out = append(out, n)
		}
		kids := n.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

func names(nodes []ast.Node) []string {
	var out []string
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Declare:
			out = append(out, v.Name)
		case *ast.Ref:
			out = append(out, v.Name)
		case *ast.Function:
			out = append(out, v.Name)
		}
	}
	return out
}

func mustParse(t *testing.T, lang parser.Language, code string) ast.Node {
	t.Helper()
	root, err := New(lang).Parse(context.Background(), []byte(code))
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", lang, err)
	}
	return root
}

func TestProviderLanguage(t *testing.T) {
	for _, lang := range parser.Languages() {
		if got := New(lang).Language(); got != lang {
			t.Errorf("Language() = %q, want %q", got, lang)
		}
	}
}

func TestJavaScriptLowering(t *testing.T) {
	code := `function outer(a, b) {
  if (a && b) {
    while (a) {
      a--;
    }
  } else if (b) {
    return 1;
  }
  switch (a) {
    case 1: break;
    default: break;
  }
  try { go(); } catch (e) { }
}
const arrow = () => 1;
`
	root := mustParse(t, parser.LangJavaScript, code)

	tests := []struct {
		kind ast.Kind
		want int
	}{
		{ast.KindFunction, 2},
		{ast.KindIf, 2},
		{ast.KindLoop, 1},
		{ast.KindLogical, 1},
		{ast.KindCase, 2},
		{ast.KindHandler, 1},
		{ast.KindDeclare, 1},
	}
	for _, tt := range tests {
		if got := len(collect(root, tt.kind)); got != tt.want {
			t.Errorf("%s count = %d, want %d", tt.kind, got, tt.want)
		}
	}

	fn := collect(root, ast.KindFunction)[0].(*ast.Function)
	if fn.Name != "outer" {
		t.Errorf("function name = %q, want outer", fn.Name)
	}
	if fn.Pos.StartLine != 1 || fn.Pos.EndLine != 14 {
		t.Errorf("function span = %+v, want lines 1-14", fn.Pos)
	}

	outerIf := collect(root, ast.KindIf)[0].(*ast.If)
	if len(outerIf.Else) != 1 || outerIf.Else[0].Kind() != ast.KindIf {
		t.Errorf("else-if should lower to an If nested in Else, got %+v", outerIf.Else)
	}

	cases := collect(root, ast.KindCase)
	if cases[0].(*ast.Case).Default || !cases[1].(*ast.Case).Default {
		t.Error("only the default arm should be marked Default")
	}
}

func TestJavaScriptBindings(t *testing.T) {
	code := `import fs from "fs";
const a = 1;
let [b, c] = pair;
let d;
d = a;
obj.prop = e;
for (const k of list) {}
`
	root := mustParse(t, parser.LangJavaScript, code)

	declared := names(collect(root, ast.KindDeclare))
	want := []string{"a", "d", "k"}
	if strings.Join(declared, ",") != strings.Join(want, ",") {
		t.Errorf("declared = %v, want %v", declared, want)
	}

	refs := strings.Join(names(collect(root, ast.KindRef)), ",")
	for _, name := range []string{"pair", "a", "obj", "e", "list"} {
		if !strings.Contains(","+refs+",", ","+name+",") {
			t.Errorf("refs %q missing %q", refs, name)
		}
	}
	for _, name := range []string{"fs", "b", "c", "prop"} {
		if strings.Contains(","+refs+",", ","+name+",") {
			t.Errorf("refs %q should not contain %q", refs, name)
		}
	}
}

func TestPythonLowering(t *testing.T) {
	code := `def check(x):
    if x > 0 and x < 10:
        return 1
    elif x < 0:
        return -1
    else:
        for i in range(x):
            pass
    try:
        pass
    except ValueError as err:
        pass
`
	root := mustParse(t, parser.LangPython, code)

	tests := []struct {
		kind ast.Kind
		want int
	}{
		{ast.KindFunction, 1},
		{ast.KindIf, 2},
		{ast.KindLoop, 1},
		{ast.KindLogical, 1},
		{ast.KindHandler, 1},
	}
	for _, tt := range tests {
		if got := len(collect(root, tt.kind)); got != tt.want {
			t.Errorf("%s count = %d, want %d", tt.kind, got, tt.want)
		}
	}

	fn := collect(root, ast.KindFunction)[0].(*ast.Function)
	if fn.Pos.StartLine != 1 || fn.Pos.EndLine != 12 {
		t.Errorf("function span = %+v, want lines 1-12", fn.Pos)
	}

	elif := collect(root, ast.KindIf)[1].(*ast.If)
	if len(elif.Else) != 1 || elif.Else[0].Kind() != ast.KindGeneric {
		t.Errorf("elif should carry the else block, got %+v", elif.Else)
	}

	handler := collect(root, ast.KindHandler)[0].(*ast.Handler)
	if ast.IsNil(handler.Type) {
		t.Error("handler should record the caught type")
	}
	refs := strings.Join(names(collect(root, ast.KindRef)), ",")
	if strings.Contains(","+refs+",", ",err,") || strings.Contains(","+refs+",", ",i,") {
		t.Errorf("bindings leaked into refs: %q", refs)
	}
}

func TestPythonBindings(t *testing.T) {
	code := `import os
total = 0
a, b = pair
count: int = 5
self.value = other
total += 1
`
	root := mustParse(t, parser.LangPython, code)

	declared := names(collect(root, ast.KindDeclare))
	want := []string{"total", "count"}
	if strings.Join(declared, ",") != strings.Join(want, ",") {
		t.Errorf("declared = %v, want %v", declared, want)
	}

	refs := "," + strings.Join(names(collect(root, ast.KindRef)), ",") + ","
	for _, name := range []string{"pair", "int", "self", "other"} {
		if !strings.Contains(refs, ","+name+",") {
			t.Errorf("refs %q missing %q", refs, name)
		}
	}
	for _, name := range []string{"os", "a", "b", "value", "total"} {
		if strings.Contains(refs, ","+name+",") {
			t.Errorf("refs %q should not contain %q", refs, name)
		}
	}
}

func TestPythonMatchCatchAll(t *testing.T) {
	code := `match command:
    case "go":
        pass
    case _:
        pass
`
	root := mustParse(t, parser.LangPython, code)
	cases := collect(root, ast.KindCase)
	if len(cases) != 2 {
		t.Fatalf("case count = %d, want 2", len(cases))
	}
	if cases[0].(*ast.Case).Default {
		t.Error("literal pattern should not be the catch-all")
	}
	if !cases[1].(*ast.Case).Default {
		t.Error("underscore pattern should be the catch-all")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		lang parser.Language
		code string
		want error
	}{
		{"js syntax", parser.LangJavaScript, "function (", parser.ErrSyntax},
		{"python syntax", parser.LangPython, "def broken(:\n    pass\n", parser.ErrSyntax},
		{"unsupported", parser.LangUnknown, "x", parser.ErrUnsupportedLanguage},
		{"too deep", parser.LangJavaScript, "x = " + strings.Repeat("[", MaxDepth+100) + strings.Repeat("]", MaxDepth+100) + ";", parser.ErrTooDeep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.lang).Parse(context.Background(), []byte(tt.code))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err %T is not a *parser.ParseError", err)
			}
			if perr.Language != tt.lang {
				t.Errorf("Language = %q, want %q", perr.Language, tt.lang)
			}
		})
	}
}

func TestLongOperatorChainsLower(t *testing.T) {
	tests := []struct {
		lang parser.Language
		code string
	}{
		{parser.LangJavaScript, "const s = " + strings.Repeat("'a' + ", 2000) + "'a';"},
		{parser.LangPython, "s = " + strings.Repeat("1 + ", 2000) + "1\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			root := mustParse(t, tt.lang, tt.code)
			if got := len(collect(root, ast.KindDeclare)); got != 1 {
				t.Errorf("declare count = %d, want 1", got)
			}
		})
	}
}

func TestJavaScriptParameterReads(t *testing.T) {
	code := `function f(a = fallback, { b = inner, [key]: c }, [d = other], ...rest) {}
const g = (x = outer) => x;
`
	root := mustParse(t, parser.LangJavaScript, code)

	refs := "," + strings.Join(names(collect(root, ast.KindRef)), ",") + ","
	for _, name := range []string{"fallback", "inner", "key", "other", "outer", "x"} {
		if !strings.Contains(refs, ","+name+",") {
			t.Errorf("refs %q missing %q", refs, name)
		}
	}
	for _, name := range []string{"a", "b", "c", "d", "rest"} {
		if strings.Contains(refs, ","+name+",") {
			t.Errorf("refs %q should not contain parameter %q", refs, name)
		}
	}
}

func TestPythonParameterReads(t *testing.T) {
	code := `def f(a=fallback, b: Cfg = default, c: Other = None, *args, **kw) -> Result:
    pass
g = lambda x=outer: x
`
	root := mustParse(t, parser.LangPython, code)

	refs := "," + strings.Join(names(collect(root, ast.KindRef)), ",") + ","
	for _, name := range []string{"fallback", "Cfg", "default", "Other", "Result", "outer", "x"} {
		if !strings.Contains(refs, ","+name+",") {
			t.Errorf("refs %q missing %q", refs, name)
		}
	}
	for _, name := range []string{"a", "b", "c", "args", "kw"} {
		if strings.Contains(refs, ","+name+",") {
			t.Errorf("refs %q should not contain parameter %q", refs, name)
		}
	}

	fn := collect(root, ast.KindFunction)[0].(*ast.Function)
	if len(fn.Params) != 6 {
		t.Errorf("params = %d nodes, want 6", len(fn.Params))
	}
}
