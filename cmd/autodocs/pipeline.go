package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Dheerajkumar69/AutoReadme/internal/agent"
	"github.com/Dheerajkumar69/AutoReadme/internal/classifier"
	"github.com/Dheerajkumar69/AutoReadme/internal/host"
	"github.com/Dheerajkumar69/AutoReadme/internal/llm"
	"github.com/Dheerajkumar69/AutoReadme/internal/logging"
	"github.com/Dheerajkumar69/AutoReadme/internal/synth"
	"github.com/Dheerajkumar69/AutoReadme/internal/tracker"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
	"github.com/Dheerajkumar69/AutoReadme/pkg/config"
)

type pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
	gen    llm.Generator
	files  *host.FileHost
	agent  *agent.CommentAgent
}

// loadPipeline builds the save pipeline from the config file. With insert
// false, comments are only suggested.
func loadPipeline(insert bool) (*pipeline, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configFile, err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	client := llm.NewResilientClient(llm.ClientConfig{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Timeout:           cfg.Client.Timeout(),
		MaxAttempts:       cfg.Client.MaxAttempts,
		InitialBackoff:    cfg.Client.InitialBackoff(),
		RequestsPerSecond: cfg.Client.RequestsPerSecond,
		Burst:             cfg.Client.Burst,
	}, logger)

	gen, err := llm.NewProvider(llm.ProviderConfig{
		Type:           llm.ProviderType(cfg.LLM.Provider),
		Model:          cfg.LLM.Model,
		ClassifyPath:   cfg.LLM.ClassifyPath,
		SynthesizePath: cfg.LLM.SynthesizePath,
	}, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation provider: %w", err)
	}

	if cfg.LLM.Provider != string(llm.ProviderService) && cfg.LLM.Model != "" && !utils.IsTestedModel(cfg.LLM.Model) {
		logger.Warn("model is not tested, expect more fallback answers", zap.String("model", cfg.LLM.Model))
	}

	cls, err := classifier.New(gen, classifier.Config{Remote: cfg.Comments.RemoteClassification}, logger)
	if err != nil {
		return nil, err
	}

	style, err := types.ParseCommentStyle(cfg.Comments.Style)
	if err != nil {
		return nil, err
	}

	files := host.NewFileHost(cfg.Watch.Root, logger)
	var inserter agent.Inserter
	if insert {
		inserter = files
	}

	a := agent.NewCommentAgent(
		tracker.New(),
		cls,
		synth.New(gen, style, logger),
		inserter,
		agent.NewUsageGate(cfg.Usage.DailyLimit),
		logger,
	)

	logger.Info("generation service configured",
		zap.String("provider", gen.Name()),
		zap.String("base_url", cfg.LLM.BaseURL),
		zap.String("style", string(style)))

	return &pipeline{cfg: cfg, logger: logger, gen: gen, files: files, agent: a}, nil
}
