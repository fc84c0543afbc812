package llm

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("no LLM provider configured")

// NewClient creates the client for opts.Provider.
func NewClient(opts Options) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "none":
		return nil, ErrDisabled
	case ProviderOllama:
		return NewOllamaClient(opts)
	case ProviderOpenAI, "lmstudio", "lm-studio":
		return NewOpenAIClient(opts)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", opts.Provider)
	}
}
