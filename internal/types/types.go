package types

import (
	"fmt"
	"strings"
)

// TrackedSnapshot is the last text recorded for an open document
type TrackedSnapshot struct {
	DocumentID string
	FullText   string
	Revision   int
}

type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeRemoved   ChangeKind = "removed"
	ChangeUnchanged ChangeKind = "unchanged"
)

// ChangeLine is a single line of a chunk. LineNumber is 1-based and always
// refers to the new text, removed lines included.
type ChangeLine struct {
	LineNumber int        `json:"lineNumber"`
	Content    string     `json:"content"`
	Kind       ChangeKind `json:"kind"`
}

// DiffChunk is a maximal run of differing lines with up to three lines of
// surrounding context taken from the new text.
type DiffChunk struct {
	StartLine     int          `json:"startLine"`
	EndLine       int          `json:"endLine"`
	OldStartLine  int          `json:"oldStartLine"`
	Changes       []ChangeLine `json:"changes"`
	ContextBefore []string     `json:"contextBefore"`
	ContextAfter  []string     `json:"contextAfter"`
	// Set only on a chunk that runs to end of file: whether the last line of
	// the old and of the new text lacks a trailing newline.
	OldNoNewlineAtEOF bool `json:"oldNoNewlineAtEof,omitempty"`
	NoNewlineAtEOF    bool `json:"noNewlineAtEof,omitempty"`
}

func (c DiffChunk) AddedLines() []ChangeLine {
	return c.linesOfKind(ChangeAdded)
}

func (c DiffChunk) RemovedLines() []ChangeLine {
	return c.linesOfKind(ChangeRemoved)
}

func (c DiffChunk) linesOfKind(kind ChangeKind) []ChangeLine {
	var lines []ChangeLine
	for _, line := range c.Changes {
		if line.Kind == kind {
			lines = append(lines, line)
		}
	}
	return lines
}

// NewlineOnlyPair returns the indexes in Changes of the last removed and last
// added line when the two differ only in the end-of-file newline, or -1, -1.
func (c DiffChunk) NewlineOnlyPair() (int, int) {
	if c.OldNoNewlineAtEOF == c.NoNewlineAtEOF {
		return -1, -1
	}
	removed, added := -1, -1
	for k, line := range c.Changes {
		switch line.Kind {
		case ChangeRemoved:
			removed = k
		case ChangeAdded:
			added = k
		}
	}
	if removed < 0 || added < 0 || c.Changes[removed].Content != c.Changes[added].Content {
		return -1, -1
	}
	return removed, added
}

// FirstAddedLine returns the new-text line number of the first added line,
// or StartLine when the chunk only removes lines.
func (c DiffChunk) FirstAddedLine() int {
	for _, line := range c.Changes {
		if line.Kind == ChangeAdded {
			return line.LineNumber
		}
	}
	return c.StartLine
}

// ChangedLineCount counts added and removed lines across chunks
func ChangedLineCount(chunks []DiffChunk) int {
	total := 0
	for _, chunk := range chunks {
		for _, line := range chunk.Changes {
			if line.Kind != ChangeUnchanged {
				total++
			}
		}
	}
	return total
}

// FormatChanges renders chunks as "+"/"-" prefixed lines, one chunk after another.
func FormatChanges(chunks []DiffChunk) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		for _, line := range chunk.Changes {
			switch line.Kind {
			case ChangeAdded:
				sb.WriteString("+")
			case ChangeRemoved:
				sb.WriteString("-")
			default:
				sb.WriteString(" ")
			}
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

type ChangeType string

const (
	ChangeTypeLogic    ChangeType = "logic"
	ChangeTypeRefactor ChangeType = "refactor"
	ChangeTypeFix      ChangeType = "fix"
	ChangeTypeFeature  ChangeType = "feature"
	ChangeTypeTrivial  ChangeType = "trivial"
)

func (t ChangeType) Valid() bool {
	switch t {
	case ChangeTypeLogic, ChangeTypeRefactor, ChangeTypeFix, ChangeTypeFeature, ChangeTypeTrivial:
		return true
	}
	return false
}

// ChangeClassification is the verdict for one save
type ChangeClassification struct {
	Type         ChangeType `json:"type"`
	IsMeaningful bool       `json:"isMeaningful"`
	IsPublicAPI  bool       `json:"isPublicApi"`
	Confidence   float64    `json:"confidence"`
	Reasoning    string     `json:"reasoning"`
}

type CommentStyle string

const (
	StyleShort       CommentStyle = "short"
	StyleExplanatory CommentStyle = "explanatory"
	StylePRReview    CommentStyle = "pr-review"
)

func ParseCommentStyle(s string) (CommentStyle, error) {
	style := CommentStyle(strings.ToLower(strings.TrimSpace(s)))
	switch style {
	case StyleShort, StyleExplanatory, StylePRReview:
		return style, nil
	case "":
		return StyleShort, nil
	}
	return "", fmt.Errorf("unknown comment style %q (expected short, explanatory or pr-review)", s)
}

// Directive is the instruction sent to the generator for this style
func (s CommentStyle) Directive() string {
	switch s {
	case StyleExplanatory:
		return "Write 2-3 sentences explaining what the code does and why it is needed."
	case StylePRReview:
		return "Write a review note: state what changed and why it matters, as you would in a pull request."
	default:
		return "Write one concise line of at most 10 words."
	}
}

// CommentSuggestion is a generated comment for one chunk. It is never persisted.
type CommentSuggestion struct {
	ID         string       `json:"id"`
	LineNumber int          `json:"lineNumber"`
	Text       string       `json:"text"`
	Style      CommentStyle `json:"style"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}
