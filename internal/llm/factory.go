package llm

import (
	"os"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/config"
)

// NewProvider builds the completion-client stack from configuration:
// mock mode short-circuits to a MockProvider; otherwise an OpenRouter
// provider wrapped with 429 retries and a circuit breaker.
func NewProvider(cfg *config.Config, logger *zap.Logger) Provider {
	if cfg.MockMode() {
		logger.Info("completion client running in mock mode")
		return NewMockProvider(cfg.MemberName)
	}

	base := NewOpenRouterProvider(OpenRouterOptions{
		APIKey:      os.Getenv(config.APIKeyEnvVar),
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Referer:     cfg.LLM.Referer,
		Title:       cfg.LLM.Title,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})

	return NewBreakerProvider(NewRetryProvider(base, logger), logger)
}
