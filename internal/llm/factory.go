package llm

import (
	"fmt"

	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

type ProviderType string

const (
	ProviderService ProviderType = "service"
	ProviderOllama  ProviderType = "ollama"
	ProviderOpenAI  ProviderType = "openai"
)

type ProviderConfig struct {
	Type           ProviderType
	Model          string
	ClassifyPath   string
	SynthesizePath string
}

func NewProvider(config ProviderConfig, sender Sender) (Generator, error) {
	switch config.Type {
	case ProviderService, "":
		return NewServiceGenerator(sender, config.ClassifyPath, config.SynthesizePath), nil
	case ProviderOllama:
		if err := utils.ValidateModel(config.Model); err != nil {
			return nil, err
		}
		if config.Model == "" {
			return nil, fmt.Errorf("ollama provider requires a model")
		}
		return NewOllamaProvider(sender, config.Model), nil
	case ProviderOpenAI:
		if err := utils.ValidateModel(config.Model); err != nil {
			return nil, err
		}
		return NewOpenAIProvider(sender, config.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s (supported: %v)", config.Type, SupportedProviders)
	}
}
