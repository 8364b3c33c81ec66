package synth

import (
	"regexp"
	"strings"
)

const minCommentWords = 4

// low-information openings; matched against the start of a cleaned comment
var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(this|the) (function|method|code|class|block|line|loop|snippet)s? (does|is|will|handles|returns|gets|sets|checks|calls)\b`),
	regexp.MustCompile(`(?i)^this (is|does)\b`),
	regexp.MustCompile(`(?i)^handles?\b`),
	regexp.MustCompile(`(?i)^returns?\b`),
	regexp.MustCompile(`(?i)^loops? (through|over)\b`),
	regexp.MustCompile(`(?i)^iterates? (through|over)\b`),
	regexp.MustCompile(`(?i)^gets? the\b`),
	regexp.MustCompile(`(?i)^sets? the\b`),
	regexp.MustCompile(`(?i)^(a )?(helper|utility) (function|method)\b`),
	regexp.MustCompile(`(?i)^(calls?|invokes?) (the )?\w+\.?$`),
	regexp.MustCompile(`(?i)^(todo|fixme)\b`),
}

// IsGeneric reports whether a comment is too low-information to keep.
func IsGeneric(comment string) bool {
	text := strings.TrimSpace(comment)
	if len(strings.Fields(text)) < minCommentWords {
		return true
	}
	for _, p := range genericPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

var commentMarker = regexp.MustCompile(`^\s*(//+|#+|--|/\*+|\*+/?|"""|''')\s?`)

// Clean strips comment markers, wrapping quotes and surrounding blank lines
// that models tend to add.
func Clean(comment string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(comment), "\n") {
		line = commentMarker.ReplaceAllString(line, "")
		line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
		lines = append(lines, strings.TrimSpace(line))
	}

	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if len(text) >= 2 && (text[0] == '"' && text[len(text)-1] == '"' || text[0] == '\'' && text[len(text)-1] == '\'') {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}
