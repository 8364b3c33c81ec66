// Package prompts renders the classify and synthesize requests as prompts for
// model-backed generators.
package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

const (
	Classify   = "classify"
	Synthesize = "synthesize"
)

var promptTemplates = map[string]string{
	Classify:   classifyPromptTemplate,
	Synthesize: synthesizePromptTemplate,
}

var templates = template.Must(loadPromptTemplates())

func loadPromptTemplates() (*template.Template, error) {
	tmpl := template.New("prompts")

	for name, text := range promptTemplates {
		_, err := tmpl.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	return tmpl, nil
}

func buildPrompt(name string, payload any) (string, error) {
	var result strings.Builder
	if err := templates.ExecuteTemplate(&result, name, payload); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return result.String(), nil
}

func BuildClassifyPrompt(req types.ClassifyRequest) (string, error) {
	return buildPrompt(Classify, req)
}

func BuildSynthesizePrompt(req types.SynthesizeRequest) (string, error) {
	return buildPrompt(Synthesize, req)
}

const classifyPromptTemplate = `You decide whether a code change deserves an explanatory comment.

=== CHANGE ({{.Language}}) ===
{{.Diff}}
=== START OF FILE ===
{{.ContextPrefix}}
{{- if .Declarations}}

=== DECLARATIONS TOUCHED ===
{{range .Declarations}}- {{.}}
{{end}}
{{- end}}

=== POLICY ===
NOT meaningful:
- trivial variable declarations
- debug logging or print statements
- import changes
- simple renames

Meaningful:
- new functions or methods containing logic
- bug fixes
- any change that alters an exported or public surface; these MUST set "isPublicApi": true

=== OUTPUT FORMAT ===
Respond with a single JSON object and nothing else:
{"type": "logic|refactor|fix|feature|trivial", "isMeaningful": true|false, "isPublicApi": true|false, "confidence": 0.0-1.0, "reasoning": "one sentence"}
`

const synthesizePromptTemplate = `You write source code comments for newly added {{.Language}} code.

=== CODE AROUND THE CHANGE ===
{{.Context}}

=== DIFF ===
{{.Diff}}

=== STYLE ===
{{.StyleDirective}}

=== RULES ===
- Describe intent or non-obvious behaviour; never restate the code.
- Do not start with "This function", "Handles", "Returns", "Loops through" or "Gets the".
- Do not include comment markers such as // or #.
- If the code is self-explanatory, skip it.

=== OUTPUT FORMAT ===
Respond with a single JSON object and nothing else:
{"skip": true|false, "comment": "text", "confidence": 0.0-1.0, "reasoning": "one sentence"}
`
