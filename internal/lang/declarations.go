package lang

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Declaration is a named function, method or type found in a source file.
// Lines are 1-based; StartLine includes decorators and export keywords.
type Declaration struct {
	Name      string
	StartLine int
	EndLine   int
	Exported  bool
	HasDoc    bool
}

// grammar wraps a tree-sitter language with its declaration query. Parsers
// are not safe for concurrent use, so each grammar serializes its parses.
type grammar struct {
	name     string
	language func() unsafe.Pointer
	query    string
	// parent kinds that wrap a declaration and carry its comments
	wrappers  []string
	exported  func(decl *sitter.Node, name string, src []byte) bool
	docstring func(decl *sitter.Node) bool

	once   sync.Once
	mu     sync.Mutex
	parser *sitter.Parser
	lang   *sitter.Language
	q      *sitter.Query
	err    error
}

var goGrammar = &grammar{
	name:     "Go",
	language: tree_sitter_go.Language,
	query: `
	(function_declaration name: (identifier) @name) @decl
	(method_declaration name: (field_identifier) @name) @decl
	(type_declaration (type_spec name: (type_identifier) @name)) @decl
	`,
	exported: func(_ *sitter.Node, name string, _ []byte) bool {
		r, _ := utf8.DecodeRuneInString(name)
		return unicode.IsUpper(r)
	},
}

var pythonGrammar = &grammar{
	name:     "Python",
	language: tree_sitter_python.Language,
	query: `
	(function_definition name: (identifier) @name) @decl
	(class_definition name: (identifier) @name) @decl
	`,
	wrappers: []string{"decorated_definition"},
	exported: func(_ *sitter.Node, name string, _ []byte) bool {
		return !strings.HasPrefix(name, "_")
	},
	docstring: func(decl *sitter.Node) bool {
		body := decl.ChildByFieldName("body")
		if body == nil || body.NamedChildCount() == 0 {
			return false
		}
		first := body.NamedChild(0)
		if first == nil || first.Kind() != "expression_statement" || first.NamedChildCount() == 0 {
			return false
		}
		expr := first.NamedChild(0)
		return expr != nil && expr.Kind() == "string"
	},
}

const typescriptQuery = `
	(function_declaration name: (identifier) @name) @decl
	(class_declaration name: (type_identifier) @name) @decl
	(abstract_class_declaration name: (type_identifier) @name) @decl
	(interface_declaration name: (type_identifier) @name) @decl
	(method_definition name: (property_identifier) @name) @decl
	(lexical_declaration
		(variable_declarator
			name: (identifier) @name
			value: [(arrow_function) (function_expression)])) @decl
	`

func typescriptExported(decl *sitter.Node, name string, src []byte) bool {
	if decl.Kind() == "method_definition" {
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			child := decl.NamedChild(i)
			if child != nil && child.Kind() == "accessibility_modifier" && child.Utf8Text(src) == "private" {
				return false
			}
		}
		return !strings.HasPrefix(name, "_")
	}
	parent := decl.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}

var typescriptGrammar = &grammar{
	name:     "TypeScript",
	language: tree_sitter_typescript.LanguageTypescript,
	query:    typescriptQuery,
	wrappers: []string{"export_statement"},
	exported: typescriptExported,
}

var tsxGrammar = &grammar{
	name:     "TSX",
	language: tree_sitter_typescript.LanguageTSX,
	query:    typescriptQuery,
	wrappers: []string{"export_statement"},
	exported: typescriptExported,
}

var javaGrammar = &grammar{
	name:     "Java",
	language: tree_sitter_java.Language,
	query: `
	(class_declaration name: (identifier) @name) @decl
	(interface_declaration name: (identifier) @name) @decl
	(enum_declaration name: (identifier) @name) @decl
	(method_declaration name: (identifier) @name) @decl
	(constructor_declaration name: (identifier) @name) @decl
	`,
	exported: func(decl *sitter.Node, _ string, src []byte) bool {
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			child := decl.NamedChild(i)
			if child != nil && child.Kind() == "modifiers" {
				return strings.Contains(child.Utf8Text(src), "public")
			}
		}
		return false
	},
}

var cGrammar = &grammar{
	name:     "C",
	language: tree_sitter_c.Language,
	query: `
	(function_definition declarator: (function_declarator declarator: (identifier) @name)) @decl
	(function_definition declarator: (pointer_declarator declarator: (function_declarator declarator: (identifier) @name))) @decl
	(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @decl
	`,
	wrappers: []string{"type_definition", "declaration"},
	exported: func(decl *sitter.Node, _ string, src []byte) bool {
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			child := decl.NamedChild(i)
			if child != nil && child.Kind() == "storage_class_specifier" && child.Utf8Text(src) == "static" {
				return false
			}
		}
		return true
	},
}

func (g *grammar) init() error {
	g.once.Do(func() {
		g.lang = sitter.NewLanguage(g.language())
		g.parser = sitter.NewParser()
		if err := g.parser.SetLanguage(g.lang); err != nil {
			g.err = fmt.Errorf("failed to set language for %s parser: %w", g.name, err)
			return
		}
		q, qerr := sitter.NewQuery(g.lang, g.query)
		if qerr != nil {
			g.err = fmt.Errorf("failed to create %s declaration query: %w", g.name, qerr)
			return
		}
		g.q = q
	})
	return g.err
}

func (g *grammar) declarations(src []byte) ([]Declaration, error) {
	if err := g.init(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	tree := g.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source: tree-sitter returned nil", g.name)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := g.q.CaptureNames()
	matches := qc.Matches(g.q, tree.RootNode(), src)
	seen := make(map[uint]bool)

	var decls []Declaration
	for {
		m := matches.Next()
		if m == nil {
			break
		}

		var declNode, nameNode *sitter.Node
		for i := range m.Captures {
			node := m.Captures[i].Node
			switch captureNames[m.Captures[i].Index] {
			case "decl":
				declNode = &node
			case "name":
				nameNode = &node
			}
		}
		if declNode == nil || nameNode == nil || seen[declNode.StartByte()] {
			continue
		}
		seen[declNode.StartByte()] = true

		name := nameNode.Utf8Text(src)
		outer := g.outer(declNode)
		decls = append(decls, Declaration{
			Name:      name,
			StartLine: int(outer.StartPosition().Row) + 1,
			EndLine:   int(declNode.EndPosition().Row) + 1,
			Exported:  g.exported(declNode, name, src),
			HasDoc:    hasLeadingComment(outer) || (g.docstring != nil && g.docstring(declNode)),
		})
	}

	sort.SliceStable(decls, func(i, j int) bool { return decls[i].StartLine < decls[j].StartLine })
	return decls, nil
}

func (g *grammar) outer(node *sitter.Node) *sitter.Node {
	for _, kind := range g.wrappers {
		if parent := node.Parent(); parent != nil && parent.Kind() == kind {
			return parent
		}
	}
	return node
}

// hasLeadingComment reports whether a comment ends on the line directly above node.
func hasLeadingComment(node *sitter.Node) bool {
	prev := node.PrevNamedSibling()
	if prev == nil || !strings.Contains(prev.Kind(), "comment") {
		return false
	}
	return prev.EndPosition().Row+1 >= node.StartPosition().Row
}

var declNameRe = regexp.MustCompile(`([A-Za-z_]\w*)\s*[(=:{<]`)

// Declarations lists the declarations in src. Languages without a grammar
// fall back to the line pattern; those declarations are single-line and
// always considered exported.
func (l *Language) Declarations(src string) ([]Declaration, error) {
	if l.grammar != nil {
		return l.grammar.declarations([]byte(src))
	}

	var decls []Declaration
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if !l.IsDeclaration(line) {
			continue
		}
		name := strings.TrimSpace(line)
		if m := declNameRe.FindStringSubmatch(line); m != nil {
			name = m[1]
		}
		decls = append(decls, Declaration{
			Name:      name,
			StartLine: i + 1,
			EndLine:   i + 1,
			Exported:  true,
			HasDoc:    i > 0 && l.IsComment(lines[i-1]),
		})
	}
	return decls, nil
}

// DeclarationAt returns the innermost declaration spanning line.
func (l *Language) DeclarationAt(src string, line int) (Declaration, bool, error) {
	decls, err := l.Declarations(src)
	if err != nil {
		return Declaration{}, false, err
	}

	var found Declaration
	ok := false
	for _, d := range decls {
		if d.StartLine <= line && line <= d.EndLine && (!ok || d.StartLine >= found.StartLine) {
			found, ok = d, true
		}
	}
	return found, ok, nil
}

// DeclarationsIn returns the declarations that overlap any of the given lines.
func (l *Language) DeclarationsIn(src string, lines []int) ([]Declaration, error) {
	decls, err := l.Declarations(src)
	if err != nil {
		return nil, err
	}

	var out []Declaration
	for _, d := range decls {
		for _, line := range lines {
			if d.StartLine <= line && line <= d.EndLine {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}
