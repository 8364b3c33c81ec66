// Package agent runs the save pipeline: diff against the tracked snapshot,
// classify, synthesize, insert, re-sync.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Dheerajkumar69/AutoReadme/internal/classifier"
	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/metrics"
	"github.com/Dheerajkumar69/AutoReadme/internal/synth"
	"github.com/Dheerajkumar69/AutoReadme/internal/tracker"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// Inserter applies accepted suggestions to a document and returns its new text.
type Inserter interface {
	Insert(documentID, text string, language *lang.Language, suggestions []types.CommentSuggestion) (string, error)
}

// Result describes one processed save.
type Result struct {
	DocumentID     string
	Language       string
	Text           string
	Chunks         []types.DiffChunk
	Classification types.ChangeClassification
	Suggestions    []types.CommentSuggestion
	// DocsStale is set when the change touched a public interface.
	DocsStale bool
	Gated     bool
	Inserted  bool
	InsertErr error
}

// Changed reports whether the save produced a diff at all.
func (r Result) Changed() bool {
	return len(r.Chunks) > 0
}

type CommentAgent struct {
	tracker    *tracker.Tracker
	classifier *classifier.Classifier
	synth      *synth.Synthesizer
	inserter   Inserter
	gate       UsageGate
	logger     *zap.Logger
}

// NewCommentAgent wires the pipeline. A nil inserter makes the agent
// suggest-only; a nil gate allows everything.
func NewCommentAgent(tr *tracker.Tracker, cls *classifier.Classifier, syn *synth.Synthesizer, inserter Inserter, gate UsageGate, logger *zap.Logger) *CommentAgent {
	if gate == nil {
		gate = AlwaysAllow{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentAgent{
		tracker:    tr,
		classifier: cls,
		synth:      syn,
		inserter:   inserter,
		gate:       gate,
		logger:     logger.Named("agent"),
	}
}

// OnOpen records the document's text without diffing it.
func (a *CommentAgent) OnOpen(documentID, text string) {
	a.tracker.Track(documentID, text)
	metrics.TrackedDocuments.Set(float64(a.tracker.Documents()))
}

func (a *CommentAgent) OnClose(documentID string) {
	a.tracker.Forget(documentID)
	metrics.TrackedDocuments.Set(float64(a.tracker.Documents()))
}

// OnSave processes one save as a single unit: concurrent saves of the same
// document wait for it to finish. Service failures degrade the result and
// never surface as errors; the error is non-nil only when ctx is cancelled.
func (a *CommentAgent) OnSave(ctx context.Context, documentID, text string, language *lang.Language) (Result, error) {
	if language == nil {
		language = lang.Default
	}

	h := a.tracker.Acquire(documentID)
	defer h.Release()

	result := Result{DocumentID: documentID, Language: language.ID, Text: text}
	defer metrics.TrackedDocuments.Set(float64(a.tracker.Documents()))

	result.Chunks = h.Diff(text)
	if !result.Changed() {
		metrics.Saves.WithLabelValues("no_change").Inc()
		return result, nil
	}

	result.Classification = a.classifier.Classify(ctx, result.Chunks, text, language)
	result.DocsStale = result.Classification.IsPublicAPI
	if result.DocsStale {
		a.logger.Info("public interface changed, documentation may be stale", zap.String("document", documentID))
	}

	if !result.Classification.IsMeaningful {
		metrics.Saves.WithLabelValues("rejected").Inc()
		a.logger.Debug("change not meaningful",
			zap.String("document", documentID),
			zap.String("reasoning", result.Classification.Reasoning))
		return result, nil
	}

	if !a.gate.Allow() {
		result.Gated = true
		result.Classification.IsMeaningful = false
		result.Classification.Reasoning = "usage limit reached"
		metrics.Saves.WithLabelValues("gated").Inc()
		a.logger.Info("usage limit reached, skipping comment synthesis", zap.String("document", documentID))
		return result, nil
	}

	suggestions, err := a.synth.Synthesize(ctx, result.Chunks, text, language)
	result.Suggestions = suggestions
	if err != nil {
		metrics.Saves.WithLabelValues("cancelled").Inc()
		return result, err
	}
	if len(suggestions) == 0 {
		metrics.Saves.WithLabelValues("no_suggestion").Inc()
		return result, nil
	}

	if a.inserter == nil {
		metrics.Saves.WithLabelValues("suggested").Inc()
		return result, nil
	}

	updated, err := a.inserter.Insert(documentID, text, language, suggestions)
	if err != nil {
		result.InsertErr = err
		metrics.Saves.WithLabelValues("insert_failed").Inc()
		a.logger.Warn("failed to insert comments", zap.String("document", documentID), zap.Error(err))
		return result, nil
	}

	// the write we just made must not be diffed as a new save
	h.Track(updated)
	result.Text = updated
	result.Inserted = true
	metrics.Saves.WithLabelValues("commented").Inc()
	a.logger.Info("commented save",
		zap.String("document", documentID),
		zap.String("type", string(result.Classification.Type)),
		zap.Int("comments", len(suggestions)))

	return result, nil
}

// ScanItem is one file of a batch scan: the baseline to diff against and the
// current text.
type ScanItem struct {
	DocumentID string
	Baseline   string
	Text       string
	Language   *lang.Language
}

// Scan runs the save pipeline over items in order, stopping between files and
// between chunks when ctx is cancelled. The results gathered so far are
// returned alongside the cancellation error.
func (a *CommentAgent) Scan(ctx context.Context, items []ScanItem, progress func(done, total int)) ([]Result, error) {
	var results []Result
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		a.tracker.Track(item.DocumentID, item.Baseline)
		result, err := a.OnSave(ctx, item.DocumentID, item.Text, item.Language)
		results = append(results, result)
		if err != nil {
			return results, fmt.Errorf("scan stopped at %s: %w", item.DocumentID, err)
		}

		if progress != nil {
			progress(i+1, len(items))
		}
	}
	return results, nil
}
