package factory

import (
	"fmt"

	"aroma-assistant-be/pkg/llm"
	"aroma-assistant-be/pkg/llm/ollama"
	"aroma-assistant-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured provider wrapped in bounded retry.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	var provider llm.LLMProvider

	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		provider = openai.NewOpenAIProvider(apiKey, baseURL, modelName)
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		provider = ollama.NewOllamaProvider(baseURL, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}

	return llm.WithRetry(provider, llm.DefaultRetryPolicy()), nil
}
