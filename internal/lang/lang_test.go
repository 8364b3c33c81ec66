package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_UnknownLanguageFallsBack(t *testing.T) {
	l := For("brainfuck")
	assert.Same(t, Default, l)
	assert.False(t, l.Known())
	assert.False(t, l.IsTrivial("++++[>+<-]"), "unknown languages treat content as potentially meaningful")
	assert.True(t, l.IsTrivial("   "))
	assert.False(t, l.IsDeclaration("def foo():"))
	assert.Equal(t, []string{"// note"}, l.FormatComment("note", ""))
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"main.go", "go"},
		{"src/app.ts", "typescript"},
		{"src/app.js", "javascript"},
		{"scripts/run.py", "python"},
		{"Main.java", "java"},
		{"lib.h", "c"},
		{"deploy.sh", "bash"},
		{"Makefile", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForPath(tt.path).ID)
		})
	}
}

func TestIsTrivial(t *testing.T) {
	tests := []struct {
		language string
		line     string
		trivial  bool
	}{
		{"go", `import "fmt"`, true},
		{"go", `	"strings"`, true},
		{"go", `	log.Printf("value %d", v)`, true},
		{"go", `	logger.Debug("state", zap.Int("n", n))`, true},
		{"go", `// comment`, true},
		{"go", `	*ptr = 5`, false},
		{"go", `	total += price * qty`, false},
		{"python", "import os", true},
		{"python", "from typing import List", true},
		{"python", `print("debug")`, true},
		{"python", "# note", true},
		{"python", `"""Docstring."""`, true},
		{"python", "return amount * rate", false},
		{"javascript", "import x from 'y';", true},
		{"javascript", "const fs = require('fs');", true},
		{"javascript", "console.log(value);", true},
		{"javascript", " * jsdoc continuation", true},
		{"javascript", "return amt*rate/100;", false},
		{"java", "import java.util.List;", true},
		{"java", `System.out.println("x");`, true},
		{"c", "#include <stdio.h>", true},
		{"c", `printf("%d\n", x);`, true},
		{"c", "x = y + 1;", false},
		{"sql", "-- comment", true},
		{"ruby", "require 'json'", true},
	}

	for _, tt := range tests {
		t.Run(tt.language+"/"+tt.line, func(t *testing.T) {
			assert.Equal(t, tt.trivial, For(tt.language).IsTrivial(tt.line))
		})
	}
}

func TestIsDeclaration(t *testing.T) {
	tests := []struct {
		language string
		line     string
		decl     bool
	}{
		{"javascript", "function calcTax(amt, rate){ return amt*rate/100; }", true},
		{"javascript", "export const total = (items) => items.length", true},
		{"typescript", "export interface User {", true},
		{"javascript", "calcTax(1, 2);", false},
		{"go", "func (s *Server) Start(ctx context.Context) error {", true},
		{"go", "type Config struct {", true},
		{"go", "x := compute()", false},
		{"python", "def compute(self, x):", true},
		{"python", "async def fetch():", true},
		{"python", "class Parser:", true},
		{"java", "public int add(int a, int b) {", true},
		{"java", "public class Calculator {", true},
		{"c", "int main(int argc, char **argv) {", true},
		{"c", "static char *dup(const char *s)", true},
		{"c", "} else if (x > 0) {", false},
		{"c", "else if (x > 0) {", false},
		{"c", "return compute(x);", false},
	}

	for _, tt := range tests {
		t.Run(tt.language+"/"+tt.line, func(t *testing.T) {
			assert.Equal(t, tt.decl, For(tt.language).IsDeclaration(tt.line))
		})
	}
}

func TestFormatComment(t *testing.T) {
	assert.Equal(t, []string{"\t// Computes tax owed."}, For("go").FormatComment("Computes tax owed.", "\t"))
	assert.Equal(t, []string{"    # First line.", "    # Second line."}, For("python").FormatComment("First line.\nSecond line.\n", "    "))
	assert.Equal(t, []string{"-- Builds the view."}, For("sql").FormatComment("  Builds the view.  ", ""))
}

func TestIndentation(t *testing.T) {
	assert.Equal(t, "\t\t", Indentation("\t\treturn x"))
	assert.Equal(t, "    ", Indentation("    def f():"))
	assert.Equal(t, "", Indentation("func main() {}"))
}

func TestDeclarations_Go(t *testing.T) {
	src := `package shop

// Total sums the cart.
func Total(items []Item) int {
	return 0
}

func helper() {}

type Item struct {
	Price int
}
`
	decls, err := For("go").Declarations(src)
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, Declaration{Name: "Total", StartLine: 4, EndLine: 6, Exported: true, HasDoc: true}, decls[0])
	assert.Equal(t, "helper", decls[1].Name)
	assert.False(t, decls[1].Exported)
	assert.False(t, decls[1].HasDoc)
	assert.Equal(t, "Item", decls[2].Name)
	assert.Equal(t, 10, decls[2].StartLine)
}

func TestDeclarations_PythonDocstring(t *testing.T) {
	src := `class Cart:
    def total(self):
        """Sum of item prices."""
        return sum(self.items)

    def _reset(self):
        self.items = []
`
	decls, err := For("python").Declarations(src)
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.Equal(t, "Cart", decls[0].Name)
	assert.Equal(t, "total", decls[1].Name)
	assert.True(t, decls[1].HasDoc)
	assert.True(t, decls[1].Exported)
	assert.Equal(t, "_reset", decls[2].Name)
	assert.False(t, decls[2].Exported)
	assert.False(t, decls[2].HasDoc)
}

func TestDeclarations_TypeScriptExport(t *testing.T) {
	src := `/** Adds tax. */
export function withTax(amount: number): number {
  return amount * 1.2;
}

function local() {}
`
	decls, err := For("typescript").Declarations(src)
	require.NoError(t, err)
	require.Len(t, decls, 2)

	assert.Equal(t, "withTax", decls[0].Name)
	assert.True(t, decls[0].Exported)
	assert.True(t, decls[0].HasDoc)
	assert.Equal(t, 2, decls[0].StartLine)
	assert.False(t, decls[1].Exported)
}

func TestDeclarations_Java(t *testing.T) {
	src := `public class Calc {
    /** Adds. */
    public int add(int a, int b) { return a + b; }

    private int twice(int a) { return a * 2; }
}
`
	decls, err := For("java").Declarations(src)
	require.NoError(t, err)
	require.Len(t, decls, 3)

	assert.True(t, decls[1].Exported)
	assert.True(t, decls[1].HasDoc)
	assert.Equal(t, "twice", decls[2].Name)
	assert.False(t, decls[2].Exported)
}

func TestDeclarations_C(t *testing.T) {
	src := `#include <stdio.h>

/* entry point */
int main(void) {
    return 0;
}

static int helper(int x) { return x; }
`
	decls, err := For("c").Declarations(src)
	require.NoError(t, err)
	require.Len(t, decls, 2)

	assert.Equal(t, "main", decls[0].Name)
	assert.True(t, decls[0].HasDoc)
	assert.True(t, decls[0].Exported)
	assert.Equal(t, "helper", decls[1].Name)
	assert.False(t, decls[1].Exported)
}

func TestDeclarations_RegexFallback(t *testing.T) {
	src := "# greet the user\ndef greet\n  puts 'hi'\nend\n"

	decls, err := For("ruby").Declarations(src)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, 2, decls[0].StartLine)
	assert.True(t, decls[0].HasDoc)
}

func TestDeclarationAt(t *testing.T) {
	src := "function a(){}\nfunction calcTax(amt, rate){ return amt*rate/100; }\n"

	decl, ok, err := For("javascript").DeclarationAt(src, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "calcTax", decl.Name)
	assert.False(t, decl.HasDoc)

	_, ok, err = For("javascript").DeclarationAt(src, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeclarationsIn(t *testing.T) {
	src := "package p\n\nfunc A() {\n\tx()\n}\n\nfunc B() {}\n"

	decls, err := For("go").DeclarationsIn(src, []int{4})
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "A", decls[0].Name)
}
