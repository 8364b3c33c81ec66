// Package lang holds per-language rules: which lines are trivial, which lines
// open a declaration, how comments are written and whether a declaration is
// already documented.
package lang

import (
	"regexp"
	"strings"
	"sync"

	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

// Language is the capability set for one language identifier. The zero
// pattern fields mean "never matches".
type Language struct {
	ID          string
	LineComment string
	// BlockComment prefixes that mark comment continuation lines ("/*", "*").
	BlockComment []string

	Import      *regexp.Regexp
	Debug       *regexp.Regexp
	Declaration *regexp.Regexp

	grammar *grammar
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Language{}
)

// Default is used for unknown languages: only blank lines are trivial and
// nothing is recognised as a declaration.
var Default = &Language{ID: "text", LineComment: "//"}

func init() {
	cFamily := []string{"/*", "*/", "* "}

	Register(&Language{
		ID:           "go",
		LineComment:  "//",
		BlockComment: cFamily,
		Import:       regexp.MustCompile(`^(import\b|import\s*\($|(\w+\s+|_\s+|\.\s+)?"[^"]+"$)`),
		Debug:        regexp.MustCompile(`^(fmt\.(Print|Fprint)\w*\(|log\.Print\w*\(|println\(|print\()|\b(log|logger|l)\.(Debug\w*|Trace\w*)\(`),
		Declaration:  regexp.MustCompile(`^(func\s|type\s+\w+\s)`),
		grammar:      goGrammar,
	})
	Register(&Language{
		ID:          "python",
		LineComment: "#",
		Import:      regexp.MustCompile(`^(import\s|from\s+[\w.]+\s+import\s)`),
		Debug:       regexp.MustCompile(`^(print\(|pprint\(|breakpoint\(\))|\b(logging|logger|log)\.debug\(`),
		Declaration: regexp.MustCompile(`^(async\s+)?def\s+\w+|^class\s+\w+`),
		grammar:     pythonGrammar,
	})

	jsImport := regexp.MustCompile(`^(import\s|export\s+\*\s+from\s|(const|let|var)\s+[\w{}, ]+\s*=\s*require\()`)
	jsDebug := regexp.MustCompile(`^(console\.(log|debug|info|warn|error|trace)\(|debugger;?$)`)
	jsDecl := regexp.MustCompile(`^(export\s+)?(default\s+)?(async\s+)?function\b|^(export\s+)?(default\s+)?(abstract\s+)?class\s|^(export\s+)?interface\s|^(export\s+)?(const|let|var)\s+\w+\s*=\s*(async\s*)?(\([^)]*\)|\w+)\s*=>`)
	for _, id := range []string{"javascript", "typescript"} {
		Register(&Language{ID: id, LineComment: "//", BlockComment: cFamily,
			Import: jsImport, Debug: jsDebug, Declaration: jsDecl, grammar: typescriptGrammar})
	}
	for _, id := range []string{"jsx", "tsx"} {
		Register(&Language{ID: id, LineComment: "//", BlockComment: cFamily,
			Import: jsImport, Debug: jsDebug, Declaration: jsDecl, grammar: tsxGrammar})
	}

	Register(&Language{
		ID:           "java",
		LineComment:  "//",
		BlockComment: cFamily,
		Import:       regexp.MustCompile(`^(import|package)\s`),
		Debug:        regexp.MustCompile(`^(System\.(out|err)\.print\w*\(|e\.printStackTrace\(\))|\b(log|logger|LOG|LOGGER)\.(debug|trace)\(`),
		Declaration:  regexp.MustCompile(`^((public|protected|private|static|final|abstract|synchronized)\s+)*(class|interface|enum|record)\s+\w+|^((public|protected|private|static|final|abstract|synchronized)\s+)+[\w<>\[\],.? ]+\s+\w+\s*\(`),
		grammar:      javaGrammar,
	})

	cDecl := regexp.MustCompile(`^(static\s+|inline\s+|extern\s+)*[A-Za-z_][\w\s\*]*[\s\*]\**[A-Za-z_]\w*\s*\([^;]*$`)
	Register(&Language{
		ID:           "c",
		LineComment:  "//",
		BlockComment: cFamily,
		Import:       regexp.MustCompile(`^#\s*include\b`),
		Debug:        regexp.MustCompile(`^(printf|fprintf|puts|perror)\(`),
		Declaration:  cDecl,
		grammar:      cGrammar,
	})
	Register(&Language{
		ID:           "cpp",
		LineComment:  "//",
		BlockComment: cFamily,
		Import:       regexp.MustCompile(`^(#\s*include\b|using\s+namespace\s)`),
		Debug:        regexp.MustCompile(`^(printf|fprintf|puts|perror)\(|^(std::)?(cout|cerr)\s*<<`),
		Declaration:  cDecl,
	})

	rubyImport := regexp.MustCompile(`^(require|require_relative|load)\s`)
	Register(&Language{ID: "ruby", LineComment: "#", Import: rubyImport,
		Debug:       regexp.MustCompile(`^(puts|p|pp)\s|\blogger\.debug\b`),
		Declaration: regexp.MustCompile(`^(def|class|module)\s`)})
	Register(&Language{ID: "bash", LineComment: "#",
		Import:      regexp.MustCompile(`^(source|\.)\s`),
		Debug:       regexp.MustCompile(`^(echo|printf)\s`),
		Declaration: regexp.MustCompile(`^(function\s+\w+|\w+\s*\(\)\s*\{?)`)})
	Register(&Language{ID: "yaml", LineComment: "#"})
	Register(&Language{ID: "sql", LineComment: "--",
		Declaration: regexp.MustCompile(`(?i)^create\s+(or\s+replace\s+)?(function|procedure|view|table)\s`)})
	Register(&Language{ID: "lua", LineComment: "--",
		Import:      regexp.MustCompile(`^(local\s+\w+\s*=\s*)?require\b`),
		Debug:       regexp.MustCompile(`^print\(`),
		Declaration: regexp.MustCompile(`^(local\s+)?function\s`)})
}

// Register adds or replaces a language in the table.
func Register(l *Language) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[l.ID] = l
}

// For returns the capabilities for a language identifier, or Default.
func For(id string) *Language {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if l, ok := registry[strings.ToLower(id)]; ok {
		return l
	}
	return Default
}

func ForPath(path string) *Language {
	return For(utils.DetectLanguageFromFilePath(path))
}

// Known reports whether the language has its own rules.
func (l *Language) Known() bool {
	return l != Default
}

// IsTrivial reports whether a line carries no behaviour: blank, an import,
// a comment or a debug print.
func (l *Language) IsTrivial(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if l.IsComment(trimmed) {
		return true
	}
	if l.Import != nil && l.Import.MatchString(trimmed) {
		return true
	}
	return l.Debug != nil && l.Debug.MatchString(trimmed)
}

// IsComment reports whether the line consists only of a comment.
func (l *Language) IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if l.LineComment != "" && strings.HasPrefix(trimmed, l.LineComment) {
		return true
	}
	for _, prefix := range l.BlockComment {
		if strings.HasPrefix(trimmed, prefix) || trimmed == strings.TrimSpace(prefix) {
			return true
		}
	}
	// python docstring on a line of its own
	if l.ID == "python" && (strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, `'''`)) {
		return true
	}
	return false
}

// control-flow keywords that look like declarations to the C-style patterns
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"return": true, "do": true, "case": true, "catch": true,
}

func (l *Language) IsDeclaration(line string) bool {
	if l.Declaration == nil {
		return false
	}
	trimmed := strings.TrimSpace(line)
	if fields := strings.FieldsFunc(trimmed, func(r rune) bool { return r == ' ' || r == '(' || r == '{' }); len(fields) > 0 && controlKeywords[fields[0]] {
		return false
	}
	return l.Declaration.MatchString(trimmed)
}

// FormatComment renders text as line comments at the given indentation, one
// comment line per line of text.
func (l *Language) FormatComment(text, indent string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			out = append(out, indent+l.LineComment)
			continue
		}
		out = append(out, indent+l.LineComment+" "+line)
	}
	return out
}

// Indentation returns the leading whitespace of line.
func Indentation(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
