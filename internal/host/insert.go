package host

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Dheerajkumar69/AutoReadme/internal/diff"
	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// InsertComments places each suggestion above its target line using the
// language's comment syntax and the target line's indentation. Suggestions are
// applied bottom-up so earlier line numbers stay valid. The text keeps its
// newline convention and trailing newline.
func InsertComments(text string, language *lang.Language, suggestions []types.CommentSuggestion) string {
	if len(suggestions) == 0 {
		return text
	}
	if language == nil {
		language = lang.Default
	}

	newline := "\n"
	if strings.Contains(text, "\r\n") {
		newline = "\r\n"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	trailing := strings.HasSuffix(text, "\n")
	lines := diff.SplitLines(text)

	ordered := slices.Clone(suggestions)
	slices.SortStableFunc(ordered, func(a, b types.CommentSuggestion) int {
		return cmp.Compare(b.LineNumber, a.LineNumber)
	})

	for _, s := range ordered {
		idx := min(max(s.LineNumber-1, 0), len(lines))
		indent := ""
		if idx < len(lines) {
			indent = lang.Indentation(lines[idx])
		}
		lines = slices.Insert(lines, idx, language.FormatComment(s.Text, indent)...)
	}

	out := strings.Join(lines, newline)
	if trailing {
		out += newline
	}
	return out
}
