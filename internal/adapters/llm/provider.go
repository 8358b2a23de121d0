package llm

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/config"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

// FromConfig builds the provider named by cfg.LLMProvider.
func FromConfig(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.LLMProvider {
	case "mock":
		log.Info().Msg("[LLM] Using MOCK LLM client")
		return NewMockLLM(), nil
	case "openrouter":
		log.Info().Str("url", cfg.OpenRouterURL).Msg("[LLM] Using OpenRouter client")
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterURL,
			Referer: cfg.OpenRouterReferer,
			Timeout: cfg.CompletionTimeout,
		})
	case "vertex":
		log.Info().Str("project", cfg.GCPProjectID).Str("model", cfg.VertexModel).Msg("[LLM] Using Vertex LLM client")
		return NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.VertexModel)
	default:
		return nil, errors.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
