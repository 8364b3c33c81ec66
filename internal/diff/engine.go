// Package diff computes line-level change chunks between two snapshots of a document.
//
// The alignment is a two-pointer pass, not an LCS/Myers diff: both cursors
// advance together while lines match, and a mismatch opens a chunk in which
// lines present on both sides are paired as modifications. Reordered or moved
// lines therefore show up as a removal plus an addition. That approximation is
// intentional; saves are small and the output must be cheap and deterministic.
package diff

import (
	"strings"

	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// ContextLines is the maximum number of context lines kept on each side of a chunk.
const ContextLines = 3

// Compute returns the chunks that turn oldText into newText, ordered by StartLine.
// A nil result means the texts are identical.
//
// As in git, a last line without a trailing newline never matches a line that
// has one, so a change to the end-of-file newline shows up as a modified last
// line in a chunk carrying the NoNewlineAtEOF flags.
func Compute(oldText, newText string) []types.DiffChunk {
	oldLines := SplitLines(oldText)
	newLines := SplitLines(newText)
	oldOpen := missingFinalNewline(oldText)
	newOpen := missingFinalNewline(newText)

	same := func(i, j int) bool {
		if oldLines[i] != newLines[j] {
			return false
		}
		oldLast := oldOpen && i == len(oldLines)-1
		newLast := newOpen && j == len(newLines)-1
		return oldLast == newLast
	}

	var chunks []types.DiffChunk
	var current *types.DiffChunk

	// first new-text index after the previous chunk, used to keep contextBefore
	// from reaching back into it
	contextFloor := 0

	i, j := 0, 0
	for i < len(oldLines) || j < len(newLines) {
		if i < len(oldLines) && j < len(newLines) && same(i, j) {
			if current != nil {
				current.ContextAfter = matchedRun(same, newLines, len(oldLines), i, j)
				chunks = append(chunks, *current)
				current = nil
				contextFloor = j
			}
			i++
			j++
			continue
		}

		if current == nil {
			from := max(contextFloor, j-ContextLines)
			current = &types.DiffChunk{
				StartLine:     j + 1,
				EndLine:       j + 1,
				OldStartLine:  i + 1,
				ContextBefore: copyLines(newLines[from:j]),
			}
		}

		switch {
		case i < len(oldLines) && j < len(newLines):
			current.Changes = append(current.Changes,
				types.ChangeLine{LineNumber: j + 1, Content: oldLines[i], Kind: types.ChangeRemoved},
				types.ChangeLine{LineNumber: j + 1, Content: newLines[j], Kind: types.ChangeAdded},
			)
			current.EndLine = j + 1
			i++
			j++
		case j < len(newLines):
			current.Changes = append(current.Changes,
				types.ChangeLine{LineNumber: j + 1, Content: newLines[j], Kind: types.ChangeAdded},
			)
			current.EndLine = j + 1
			j++
		default:
			current.Changes = append(current.Changes,
				types.ChangeLine{LineNumber: j + 1, Content: oldLines[i], Kind: types.ChangeRemoved},
			)
			i++
		}
	}

	// chunk ran to end of file: no context after it
	if current != nil {
		current.OldNoNewlineAtEOF = oldOpen
		current.NoNewlineAtEOF = newOpen
		chunks = append(chunks, *current)
	}

	return chunks
}

// matchedRun returns up to ContextLines new-text lines starting at j that keep
// matching the old text. These lines are consumed as unchanged by the main
// loop, so they can never belong to another chunk.
func matchedRun(same func(i, j int) bool, newLines []string, oldLen, i, j int) []string {
	var run []string
	for k := 0; k < ContextLines; k++ {
		if i+k >= oldLen || j+k >= len(newLines) || !same(i+k, j+k) {
			break
		}
		run = append(run, newLines[j+k])
	}
	return run
}

// SplitLines splits text on "\n". A trailing newline terminates the last line
// instead of starting an empty one.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func missingFinalNewline(text string) bool {
	return text != "" && !strings.HasSuffix(text, "\n")
}

func copyLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
