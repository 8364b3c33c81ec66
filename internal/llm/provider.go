package llm

import (
	"context"
	"encoding/json"

	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// Generator is the generation service seen by the classifier and the
// synthesizer. Both calls return the raw JSON answer; callers decode it with
// their own fallback.
type Generator interface {
	Name() string
	Classify(ctx context.Context, req types.ClassifyRequest) (json.RawMessage, error)
	Synthesize(ctx context.Context, req types.SynthesizeRequest) (json.RawMessage, error)
	// Online reports the transport's advisory connectivity flag.
	Online() bool
}

// Sender is the transport used by generators. *ResilientClient implements it.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload any) (json.RawMessage, error)
	Online() bool
}

var SupportedProviders = []string{string(ProviderService), string(ProviderOllama), string(ProviderOpenAI)}

// ServiceGenerator talks to a generation service that speaks the request and
// response types directly.
type ServiceGenerator struct {
	sender         Sender
	classifyPath   string
	synthesizePath string
}

func NewServiceGenerator(sender Sender, classifyPath, synthesizePath string) *ServiceGenerator {
	if classifyPath == "" {
		classifyPath = "/classify"
	}
	if synthesizePath == "" {
		synthesizePath = "/synthesize"
	}
	return &ServiceGenerator{sender: sender, classifyPath: classifyPath, synthesizePath: synthesizePath}
}

func (g *ServiceGenerator) Name() string {
	return string(ProviderService)
}

func (g *ServiceGenerator) Classify(ctx context.Context, req types.ClassifyRequest) (json.RawMessage, error) {
	req.Task = types.TaskClassify
	return g.sender.Send(ctx, g.classifyPath, req)
}

func (g *ServiceGenerator) Synthesize(ctx context.Context, req types.SynthesizeRequest) (json.RawMessage, error) {
	req.Task = types.TaskSynthesize
	return g.sender.Send(ctx, g.synthesizePath, req)
}

func (g *ServiceGenerator) Online() bool {
	return g.sender.Online()
}
