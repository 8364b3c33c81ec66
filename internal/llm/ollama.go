package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dheerajkumar69/AutoReadme/internal/prompts"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

// OllamaProvider renders each request as a prompt for /api/generate and
// pulls the JSON answer out of the model text.
type OllamaProvider struct {
	sender Sender
	model  string
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaProvider(sender Sender, model string) *OllamaProvider {
	return &OllamaProvider{sender: sender, model: model}
}

func (p *OllamaProvider) Name() string {
	return string(ProviderOllama) + ":" + p.model
}

func (p *OllamaProvider) GetModel() string {
	return p.model
}

func (p *OllamaProvider) Classify(ctx context.Context, req types.ClassifyRequest) (json.RawMessage, error) {
	prompt, err := prompts.BuildClassifyPrompt(req)
	if err != nil {
		return nil, err
	}
	return p.generate(ctx, prompt)
}

func (p *OllamaProvider) Synthesize(ctx context.Context, req types.SynthesizeRequest) (json.RawMessage, error) {
	prompt, err := prompts.BuildSynthesizePrompt(req)
	if err != nil {
		return nil, err
	}
	return p.generate(ctx, prompt)
}

func (p *OllamaProvider) Online() bool {
	return p.sender.Online()
}

func (p *OllamaProvider) generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	raw, err := p.sender.Send(ctx, "/api/generate", ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, err
	}

	var resp ollamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, newError(KindMalformedResponse, 0, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	answer, err := utils.ExtractJSONObject(resp.Response)
	if err != nil {
		return nil, newError(KindMalformedResponse, 0, err)
	}
	return answer, nil
}
