// Package synth turns the added lines of meaningful chunks into comment
// suggestions.
package synth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/llm"
	"github.com/Dheerajkumar69/AutoReadme/internal/metrics"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

const (
	ChangeStartMarker = ">>> CHANGE START"
	ChangeEndMarker   = "<<< CHANGE END"

	maxSubjectLines  = 60
	fullContentChars = 8000
)

var skipAnswer = types.SynthesizeResponse{Skip: true, Reasoning: "no usable answer"}

type Synthesizer struct {
	gen    llm.Generator
	style  types.CommentStyle
	logger *zap.Logger
}

func New(gen llm.Generator, style types.CommentStyle, logger *zap.Logger) *Synthesizer {
	if style == "" {
		style = types.StyleShort
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{gen: gen, style: style, logger: logger.Named("synth")}
}

// Synthesize requests one comment per chunk and returns the accepted ones in
// chunk order. Service failures only drop the affected chunk; the returned
// error is non-nil only when ctx is cancelled, alongside what was produced so far.
func (s *Synthesizer) Synthesize(ctx context.Context, chunks []types.DiffChunk, fullText string, language *lang.Language) ([]types.CommentSuggestion, error) {
	if language == nil {
		language = lang.Default
	}

	var suggestions []types.CommentSuggestion
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return suggestions, err
		}

		suggestion, outcome := s.synthesizeChunk(ctx, chunk, fullText, language)
		metrics.Suggestions.WithLabelValues(outcome).Inc()
		if outcome != "accepted" {
			if err := ctx.Err(); err != nil {
				return suggestions, err
			}
			continue
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, nil
}

func (s *Synthesizer) synthesizeChunk(ctx context.Context, chunk types.DiffChunk, fullText string, language *lang.Language) (types.CommentSuggestion, string) {
	added := chunk.AddedLines()
	target, ok := targetLine(rewritten(chunk), language)
	if !ok {
		return types.CommentSuggestion{}, "trivial"
	}

	if language.IsDeclaration(target.Content) {
		decl, found, err := language.DeclarationAt(fullText, target.LineNumber)
		if err != nil {
			s.logger.Debug("declaration lookup failed", zap.String("language", language.ID), zap.Error(err))
		} else if found && decl.HasDoc {
			s.logger.Debug("declaration already documented", zap.String("name", decl.Name), zap.Int("line", target.LineNumber))
			return types.CommentSuggestion{}, "documented"
		}
	}

	req := types.SynthesizeRequest{
		Task:           types.TaskSynthesize,
		Diff:           subject(added),
		Context:        Window(chunk),
		FullContent:    utils.Prefix(fullText, fullContentChars),
		Language:       language.ID,
		Style:          s.style,
		StyleDirective: s.style.Directive(),
		LineNumber:     target.LineNumber,
	}

	resp, err := llm.CallWithFallback(ctx, skipAnswer, func(ctx context.Context) (json.RawMessage, error) {
		return s.gen.Synthesize(ctx, req)
	})
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("comment synthesis failed",
				zap.Int("line", target.LineNumber),
				zap.String("kind", string(llm.KindOf(err))),
				zap.String("reason", llm.UserMessage(err)))
		}
		return types.CommentSuggestion{}, "failed"
	}
	if resp.Skip {
		s.logger.Debug("service skipped chunk", zap.Int("line", target.LineNumber), zap.String("reasoning", resp.Reasoning))
		return types.CommentSuggestion{}, "skipped"
	}

	text := Clean(resp.Comment)
	if IsGeneric(text) {
		s.logger.Debug("rejected generic comment", zap.String("comment", text), zap.Float64("confidence", resp.Confidence))
		return types.CommentSuggestion{}, "generic"
	}

	return types.CommentSuggestion{
		ID:         uuid.NewString(),
		LineNumber: target.LineNumber,
		Text:       text,
		Style:      s.style,
		Confidence: min(max(resp.Confidence, 0), 1),
		Reasoning:  resp.Reasoning,
	}, "accepted"
}

// rewritten drops an added line that only gained or lost the end-of-file newline.
func rewritten(chunk types.DiffChunk) []types.ChangeLine {
	_, skip := chunk.NewlineOnlyPair()
	var lines []types.ChangeLine
	for k, line := range chunk.Changes {
		if line.Kind == types.ChangeAdded && k != skip {
			lines = append(lines, line)
		}
	}
	return lines
}

// targetLine picks the line a comment belongs above: the first added
// declaration, otherwise the first added line that is not trivial.
func targetLine(added []types.ChangeLine, language *lang.Language) (types.ChangeLine, bool) {
	for _, line := range added {
		if language.IsDeclaration(line.Content) {
			return line, true
		}
	}
	for _, line := range added {
		if !language.IsTrivial(line.Content) {
			return line, true
		}
	}
	return types.ChangeLine{}, false
}

func subject(added []types.ChangeLine) string {
	var sb strings.Builder
	for i, line := range added {
		if i == maxSubjectLines {
			sb.WriteString("...\n")
			break
		}
		sb.WriteString("+")
		sb.WriteString(line.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Window renders the chunk's context with the added lines fenced by markers.
func Window(chunk types.DiffChunk) string {
	var sb strings.Builder
	for _, line := range chunk.ContextBefore {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(ChangeStartMarker + "\n")
	for i, line := range chunk.AddedLines() {
		if i == maxSubjectLines {
			sb.WriteString("...\n")
			break
		}
		sb.WriteString(line.Content + "\n")
	}
	sb.WriteString(ChangeEndMarker + "\n")
	for _, line := range chunk.ContextAfter {
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
