// Package classifier decides whether a save is worth commenting on.
//
// Tier 1 is a local line heuristic that rejects small and trivial edits
// without any network traffic. Whatever survives it is a candidate and is
// escalated to the generation service (tier 2). Remote failures resolve to
// Fallback, which leans towards commenting.
package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/llm"
	"github.com/Dheerajkumar69/AutoReadme/internal/metrics"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

// Fallback is returned whenever remote classification fails.
var Fallback = types.ChangeClassification{
	Type:         types.ChangeTypeLogic,
	IsMeaningful: true,
	IsPublicAPI:  false,
	Confidence:   0.6,
	Reasoning:    "remote classification unavailable; assuming a logic change",
}

const (
	minChangedLines     = 2
	trivialConfidence   = 0.9
	candidateConfidence = 0.5
	contextPrefixChars  = 500
	defaultCacheSize    = 256
)

type Config struct {
	// Remote enables tier 2. When false, candidates are accepted as-is.
	Remote    bool
	CacheSize int
}

type Classifier struct {
	gen    llm.Generator
	cfg    Config
	cache  *lru.Cache[string, types.ChangeClassification]
	group  singleflight.Group
	logger *zap.Logger
}

func New(gen llm.Generator, cfg Config, logger *zap.Logger) (*Classifier, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[string, types.ChangeClassification](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create classification cache: %w", err)
	}

	return &Classifier{
		gen:    gen,
		cfg:    cfg,
		cache:  cache,
		logger: logger.Named("classifier"),
	}, nil
}

// Classify never fails: remote errors are absorbed into Fallback.
func (c *Classifier) Classify(ctx context.Context, chunks []types.DiffChunk, fullText string, language *lang.Language) types.ChangeClassification {
	verdict, escalate := Heuristic(chunks, language)
	if !escalate {
		c.record("heuristic", verdict)
		return verdict
	}

	decls := c.touchedDeclarations(chunks, fullText, language)

	if !c.cfg.Remote || c.gen == nil {
		verdict.IsPublicAPI = anyExported(decls)
		c.record("heuristic", verdict)
		return verdict
	}

	if !c.gen.Online() {
		c.logger.Debug("generation service offline, using fallback classification")
		c.record("offline", Fallback)
		return Fallback
	}

	return c.classifyRemote(ctx, chunks, fullText, language, decls)
}

// Heuristic is tier 1. It returns the verdict and whether the change should
// be escalated to remote classification.
func Heuristic(chunks []types.DiffChunk, language *lang.Language) (types.ChangeClassification, bool) {
	if language == nil {
		language = lang.Default
	}

	changed := types.ChangedLineCount(chunks)
	if changed == 0 {
		return types.ChangeClassification{
			Type:       types.ChangeTypeTrivial,
			Confidence: 1,
			Reasoning:  "no changed lines",
		}, false
	}

	var substantive []string
	for _, chunk := range chunks {
		removed, added := chunk.NewlineOnlyPair()
		for k, line := range chunk.Changes {
			if line.Kind == types.ChangeUnchanged || language.IsTrivial(line.Content) {
				continue
			}
			if k == removed || k == added {
				continue
			}
			substantive = append(substantive, line.Content)
		}
	}

	if changed < minChangedLines {
		// a lone new declaration is still worth a look
		if len(substantive) == 1 && language.IsDeclaration(substantive[0]) {
			return candidate("single-line declaration"), true
		}
		return types.ChangeClassification{
			Type:       types.ChangeTypeTrivial,
			Confidence: trivialConfidence,
			Reasoning:  fmt.Sprintf("only %d changed line", changed),
		}, false
	}

	if len(substantive) == 0 {
		return types.ChangeClassification{
			Type:       types.ChangeTypeTrivial,
			Confidence: trivialConfidence,
			Reasoning:  "only blank, import, comment or debug lines changed",
		}, false
	}

	return candidate(fmt.Sprintf("%d substantive of %d changed lines", len(substantive), changed)), true
}

func candidate(reason string) types.ChangeClassification {
	return types.ChangeClassification{
		Type:         types.ChangeTypeLogic,
		IsMeaningful: true,
		Confidence:   candidateConfidence,
		Reasoning:    reason,
	}
}

func (c *Classifier) classifyRemote(ctx context.Context, chunks []types.DiffChunk, fullText string, language *lang.Language, decls []lang.Declaration) types.ChangeClassification {
	req := types.ClassifyRequest{
		Task:          types.TaskClassify,
		Diff:          types.FormatChanges(chunks),
		ContextPrefix: utils.Prefix(fullText, contextPrefixChars),
		Language:      language.ID,
	}
	for _, d := range decls {
		req.Declarations = append(req.Declarations, d.Name)
	}

	key := cacheKey(req)
	if cached, ok := c.cache.Get(key); ok {
		c.record("cache", cached)
		return cached
	}

	verdict, err := llm.CallWithFallback(ctx, Fallback, func(ctx context.Context) (json.RawMessage, error) {
		// the shared call outlives any single caller's cancellation
		shared := context.WithoutCancel(ctx)
		ch := c.group.DoChan(key, func() (any, error) {
			return c.gen.Classify(shared, req)
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Val.(json.RawMessage), nil
		}
	})
	if err != nil {
		if utils.IsFormatViolation(err) {
			c.logger.Debug("unparseable classification answer", zap.Error(err))
		}
		c.logger.Warn("remote classification failed, using fallback",
			zap.String("kind", string(llm.KindOf(err))),
			zap.String("reason", llm.UserMessage(err)))
		c.record("fallback", Fallback)
		return Fallback
	}

	if !verdict.Type.Valid() {
		c.logger.Warn("remote classification returned unknown type, using fallback", zap.String("type", string(verdict.Type)))
		c.record("fallback", Fallback)
		return Fallback
	}
	verdict.Confidence = min(max(verdict.Confidence, 0), 1)

	c.cache.Add(key, verdict)
	c.record("remote", verdict)
	return verdict
}

func (c *Classifier) touchedDeclarations(chunks []types.DiffChunk, fullText string, language *lang.Language) []lang.Declaration {
	var lines []int
	for _, chunk := range chunks {
		for _, line := range chunk.AddedLines() {
			lines = append(lines, line.LineNumber)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	decls, err := language.DeclarationsIn(fullText, lines)
	if err != nil {
		c.logger.Debug("declaration lookup failed", zap.String("language", language.ID), zap.Error(err))
		return nil
	}
	return decls
}

func (c *Classifier) record(tier string, verdict types.ChangeClassification) {
	result := "rejected"
	if verdict.IsMeaningful {
		result = "meaningful"
	}
	metrics.Classifications.WithLabelValues(tier, result).Inc()
	c.logger.Debug("classified change",
		zap.String("tier", tier),
		zap.String("type", string(verdict.Type)),
		zap.Bool("meaningful", verdict.IsMeaningful),
		zap.Bool("publicApi", verdict.IsPublicAPI),
		zap.Float64("confidence", verdict.Confidence))
}

func anyExported(decls []lang.Declaration) bool {
	for _, d := range decls {
		if d.Exported {
			return true
		}
	}
	return false
}

func cacheKey(req types.ClassifyRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Language))
	h.Write([]byte{0})
	h.Write([]byte(req.Diff))
	h.Write([]byte{0})
	h.Write([]byte(req.ContextPrefix))
	return hex.EncodeToString(h.Sum(nil))
}
