package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/finvet/internal/model"
)

// NewProvider creates an answer provider from configuration. An empty
// provider name selects the offline template generator.
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", "template":
		return NewTemplateProvider(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama, template)", config.Provider)
	}
}
