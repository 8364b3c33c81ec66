package utils

import (
	"fmt"
	"slices"
	"strings"
)

// UnreliableModels ignore the JSON answer format often enough that nearly
// every call ends in a fallback.
var UnreliableModels = []string{
	"codellama:13b",
	"codestral",
	"qwen3:14b",
}

// TestedModels produce usable classify and synthesize answers.
var TestedModels = []string{
	"qwen2.5-coder:14b",
	"qwen2.5-coder:7b",
	"codegemma:7b",
	"llama3.1:8b",
	"gpt-oss:20b",
	"codestral:22b",
}

// ValidateModel rejects models known to break the JSON answer format. An
// empty model is left to the provider's default.
func ValidateModel(model string) error {
	model = strings.TrimSpace(model)
	if slices.Contains(UnreliableModels, model) {
		return fmt.Errorf("model '%s' does not follow the JSON answer format reliably and cannot be used", model)
	}
	return nil
}

func IsTestedModel(model string) bool {
	return slices.Contains(TestedModels, strings.TrimSpace(model))
}
