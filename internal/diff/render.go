package diff

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// Apply replays chunks against oldText. For chunks produced by
// Compute(oldText, newText) the result equals newText.
func Apply(oldText string, chunks []types.DiffChunk) string {
	oldLines := SplitLines(oldText)
	var out []string

	// unless a chunk reaches the end of file, the last line is unchanged
	// and keeps its ending
	open := missingFinalNewline(oldText)

	next := 0
	for _, chunk := range chunks {
		start := min(max(chunk.OldStartLine-1, next), len(oldLines))
		out = append(out, oldLines[next:start]...)
		next = start
		for _, line := range chunk.Changes {
			switch line.Kind {
			case types.ChangeRemoved:
				next++
			case types.ChangeAdded:
				out = append(out, line.Content)
			}
		}
		if len(chunk.ContextAfter) == 0 && next >= len(oldLines) {
			open = chunk.NoNewlineAtEOF
		}
	}
	if next < len(oldLines) {
		out = append(out, oldLines[next:]...)
	}

	if len(out) == 0 {
		return ""
	}
	result := strings.Join(out, "\n")
	if !open {
		result += "\n"
	}
	return result
}

const noNewlineMarker = "\\ No newline at end of file\n"

// Hunks converts chunks into unified-diff hunks, context lines included.
func Hunks(chunks []types.DiffChunk) []*godiff.Hunk {
	hunks := make([]*godiff.Hunk, 0, len(chunks))
	for _, chunk := range chunks {
		var body strings.Builder
		var removed, added int

		for _, line := range chunk.ContextBefore {
			body.WriteString(" " + line + "\n")
		}
		lastRemoved, lastAdded := -1, -1
		for k, line := range chunk.Changes {
			switch line.Kind {
			case types.ChangeAdded:
				lastAdded = k
			case types.ChangeRemoved:
				lastRemoved = k
			}
		}
		for k, line := range chunk.Changes {
			switch line.Kind {
			case types.ChangeAdded:
				added++
				body.WriteString("+" + line.Content + "\n")
				if k == lastAdded && chunk.NoNewlineAtEOF {
					body.WriteString(noNewlineMarker)
				}
			case types.ChangeRemoved:
				removed++
				body.WriteString("-" + line.Content + "\n")
				if k == lastRemoved && chunk.OldNoNewlineAtEOF {
					body.WriteString(noNewlineMarker)
				}
			}
		}
		for _, line := range chunk.ContextAfter {
			body.WriteString(" " + line + "\n")
		}

		ctx := len(chunk.ContextBefore) + len(chunk.ContextAfter)
		hunks = append(hunks, &godiff.Hunk{
			OrigStartLine: int32(chunk.OldStartLine - len(chunk.ContextBefore)),
			OrigLines:     int32(removed + ctx),
			NewStartLine:  int32(chunk.StartLine - len(chunk.ContextBefore)),
			NewLines:      int32(added + ctx),
			Body:          []byte(body.String()),
		})
	}
	return hunks
}

// UnifiedFile renders chunks as a single-file unified diff with a/ and b/ headers.
func UnifiedFile(path string, chunks []types.DiffChunk) (string, error) {
	fd := &godiff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    Hunks(chunks),
	}
	out, err := godiff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("failed to render diff for %s: %w", path, err)
	}
	return string(out), nil
}
