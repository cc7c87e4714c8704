package main

import (
	"context"
	"fmt"
	"log/slog"

	"pitchtalk-backend/internal/config"
	"pitchtalk-backend/internal/services"
)

// newCompleter builds the provider selected by LLM_PROVIDER. The returned
// close func is always safe to call.
func newCompleter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Completer, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		svc := services.NewAnthropicService(
			cfg.AnthropicAPIKey,
			cfg.AnthropicModel,
			cfg.AnthropicMaxTokens,
			cfg.LLMConcurrentReqs,
			cfg.LLMTimeout,
		)
		return svc, func() {}, nil

	case config.ProviderGemini:
		svc, err := services.NewGeminiService(
			ctx,
			cfg.GeminiAPIKey,
			cfg.GeminiModel,
			cfg.LLMConcurrentReqs,
			cfg.LLMTimeout,
			logger,
		)
		if err != nil {
			return nil, nil, err
		}
		return svc, svc.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported provider %q", cfg.LLMProvider)
	}
}
