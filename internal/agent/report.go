package agent

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Dheerajkumar69/AutoReadme/internal/diff"
	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

const PreviewFile = "autodocs_preview.md"

const maxReasoningChars = 300

type ReportWriter interface {
	WriteFile(name, content string) error
}

type Summary struct {
	Files       int
	Changed     int
	Meaningful  int
	Suggestions int
	Stale       int
	Gated       int
}

type ReportGenerator struct {
	writer ReportWriter
}

func NewReportGenerator(writer ReportWriter) *ReportGenerator {
	return &ReportGenerator{writer: writer}
}

// GenerateMarkdownReport writes the preview of results to PreviewFile.
func (r *ReportGenerator) GenerateMarkdownReport(results []Result) (Summary, error) {
	report, summary := BuildMarkdownReport(results)
	if err := r.writer.WriteFile(PreviewFile, report); err != nil {
		return summary, fmt.Errorf("failed to write markdown preview: %w", err)
	}
	return summary, nil
}

func BuildMarkdownReport(results []Result) (string, Summary) {
	var sb strings.Builder
	sb.WriteString("# Comment Preview\n\n")

	summary := Summary{Files: len(results)}
	for _, result := range results {
		if !result.Changed() {
			continue
		}
		summary.Changed++
		if result.Classification.IsMeaningful {
			summary.Meaningful++
		}
		if result.DocsStale {
			summary.Stale++
		}
		if result.Gated {
			summary.Gated++
		}
		summary.Suggestions += len(result.Suggestions)

		writeResult(&sb, result)
	}

	sb.WriteString(fmt.Sprintf("\n**Summary:** %d of %d files changed, %d meaningful, %d comments suggested, %d with stale docs\n",
		summary.Changed, summary.Files, summary.Meaningful, summary.Suggestions, summary.Stale))

	return sb.String(), summary
}

func writeResult(sb *strings.Builder, result Result) {
	c := result.Classification
	sb.WriteString(fmt.Sprintf("## %s %s\n", resultIcon(result), result.DocumentID))

	flags := []string{string(c.Type)}
	if c.IsMeaningful {
		flags = append(flags, "meaningful")
	} else {
		flags = append(flags, "not meaningful")
	}
	if c.IsPublicAPI {
		flags = append(flags, "public API")
	}
	sb.WriteString(fmt.Sprintf("**Change:** %s, confidence %.2f\n", strings.Join(flags, ", "), c.Confidence))
	if c.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("**Reasoning:** %s\n", utils.Truncate(c.Reasoning, maxReasoningChars)))
	}
	if result.DocsStale {
		sb.WriteString("**Docs:** public interface changed, README may be stale\n")
	}

	if unified, err := diff.UnifiedFile(result.DocumentID, result.Chunks); err == nil {
		sb.WriteString("```diff\n")
		sb.WriteString(unified)
		if !strings.HasSuffix(unified, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	}

	if len(result.Suggestions) > 0 {
		language := lang.For(result.Language)
		sb.WriteString("**Suggested comments:**\n\n")
		for _, s := range result.Suggestions {
			sb.WriteString(fmt.Sprintf("Line %d (confidence %.2f):\n", s.LineNumber, s.Confidence))
			sb.WriteString(fmt.Sprintf("```%s\n", result.Language))
			target, found := addedLine(result.Chunks, s.LineNumber)
			indent := ""
			if found {
				indent = lang.Indentation(target)
			}
			for _, line := range language.FormatComment(s.Text, indent) {
				sb.WriteString(line + "\n")
			}
			if found {
				sb.WriteString(target + "\n")
			}
			sb.WriteString("```\n")
		}
	}
	if result.InsertErr != nil {
		sb.WriteString(fmt.Sprintf("**Error:** %v\n", result.InsertErr))
	}
	sb.WriteString("\n---\n\n")
}

func addedLine(chunks []types.DiffChunk, lineNumber int) (string, bool) {
	for _, chunk := range chunks {
		for _, line := range chunk.AddedLines() {
			if line.LineNumber == lineNumber {
				return line.Content, true
			}
		}
	}
	return "", false
}

func resultIcon(result Result) string {
	switch {
	case len(result.Suggestions) > 0:
		return "🟢"
	case result.Gated:
		return "🟡"
	case result.Classification.IsMeaningful:
		return "🔵"
	default:
		return "⚪️"
	}
}

func PrintScanSummary(w io.Writer, summary Summary, preview bool) {
	fmt.Fprintln(w, "---")
	if summary.Changed == 0 {
		color.New(color.FgGreen).Fprintln(w, "✅ No changes to comment on")
		return
	}

	fmt.Fprintf(w, "%d of %d files changed, %d meaningful\n", summary.Changed, summary.Files, summary.Meaningful)
	if summary.Suggestions > 0 {
		color.New(color.FgGreen).Fprintf(w, "💬 %d comments suggested\n", summary.Suggestions)
	}
	if summary.Stale > 0 {
		color.New(color.FgYellow).Fprintf(w, "⚠️ %d files changed a public interface, docs may be stale\n", summary.Stale)
	}
	if summary.Gated > 0 {
		color.New(color.FgYellow).Fprintf(w, "⏸ %d files skipped by the daily usage limit\n", summary.Gated)
	}
	if preview {
		fmt.Fprintf(w, "💾 Preview saved to %s\n", PreviewFile)
	}
}
