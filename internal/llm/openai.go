package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dheerajkumar69/AutoReadme/internal/prompts"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

// OpenAIProvider targets any OpenAI-compatible /v1/chat/completions server
// (OpenAI, llama.cpp, vLLM).
type OpenAIProvider struct {
	sender Sender
	model  string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

const systemPrompt = "You are a careful senior engineer. Answer with a single JSON object only."

func NewOpenAIProvider(sender Sender, model string) *OpenAIProvider {
	return &OpenAIProvider{sender: sender, model: model}
}

func (p *OpenAIProvider) Name() string {
	return string(ProviderOpenAI) + ":" + p.GetModel()
}

func (p *OpenAIProvider) GetModel() string {
	if p.model == "" {
		return "llama.cpp"
	}
	return p.model
}

func (p *OpenAIProvider) Classify(ctx context.Context, req types.ClassifyRequest) (json.RawMessage, error) {
	prompt, err := prompts.BuildClassifyPrompt(req)
	if err != nil {
		return nil, err
	}
	return p.chat(ctx, prompt)
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, req types.SynthesizeRequest) (json.RawMessage, error) {
	prompt, err := prompts.BuildSynthesizePrompt(req)
	if err != nil {
		return nil, err
	}
	return p.chat(ctx, prompt)
}

func (p *OpenAIProvider) Online() bool {
	return p.sender.Online()
}

func (p *OpenAIProvider) chat(ctx context.Context, prompt string) (json.RawMessage, error) {
	raw, err := p.sender.Send(ctx, "/v1/chat/completions", openAIRequest{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.2,
		MaxTokens:      512,
		Stream:         false,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var resp openAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, newError(KindMalformedResponse, 0, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, newError(KindMalformedResponse, 0, fmt.Errorf("no choices returned in response"))
	}

	answer, err := utils.ExtractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, newError(KindMalformedResponse, 0, err)
	}
	return answer, nil
}
