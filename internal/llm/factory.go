package llm

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/config"
)

// NewBackendFromConfig picks the backend named by LLM_PROVIDER.
func NewBackendFromConfig(ctx context.Context, cfg *config.AppConfig) (Backend, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return NewGeminiBackend(ctx, cfg.LLMAPIKey(), cfg.GeminiModel)
	case "openai":
		return NewOpenAIBackend(cfg.LLMAPIKey(), cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
