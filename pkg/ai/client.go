// Package ai предоставляет единый интерфейс к провайдерам текстовых моделей.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Провайдеры моделей.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

var (
	// ErrGenerationFailed - провайдер вернул ошибку или пустой ответ.
	ErrGenerationFailed = errors.New("ai generation failed")
	// ErrEmptyResponse - модель ответила пустой строкой.
	ErrEmptyResponse = errors.New("ai returned an empty response")
	// ErrAuthentication - провайдер отклонил ключ (401/403). Повтор не имеет смысла.
	ErrAuthentication = errors.New("ai authentication failed")
	// ErrUnknownProvider - неизвестное значение AI_PROVIDER.
	ErrUnknownProvider = errors.New("unknown ai provider")
)

// Request - один запрос к модели.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	// Nil означает значение по умолчанию из Config.
	Temperature *float64
	MaxTokens   *int
}

// Usage - статистика токенов по одному запросу.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	// Estimated выставляется, если провайдер не вернул usage и токены посчитаны локально.
	Estimated bool
}

// Client - провайдер текстовой модели.
type Client interface {
	Complete(ctx context.Context, req Request) (string, Usage, error)
}

// Config - настройки клиента.
type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MaxAttempts    int
	BaseRetryDelay time.Duration
	Temperature    float64
	MaxTokens      int
}

// RequiresAPIKey сообщает, нужен ли провайдеру ключ API.
func RequiresAPIKey(provider string) bool {
	return strings.ToLower(provider) != ProviderOllama
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		switch strings.ToLower(c.Provider) {
		case ProviderGemini:
			c.Model = "gemini-2.0-flash"
		case ProviderOllama:
			c.Model = "llama3.1"
		default:
			c.Model = "gpt-4o-mini"
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseRetryDelay <= 0 {
		c.BaseRetryDelay = time.Second
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 500
	}
}

// New создает клиента выбранного провайдера, обернутого в повтор с таймаутом.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (Client, error) {
	cfg.applyDefaults()
	logger = logger.With().Str("component", "ai").Str("provider", cfg.Provider).Str("model", cfg.Model).Logger()

	if RequiresAPIKey(cfg.Provider) && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is required for provider %q", ErrAuthentication, cfg.Provider)
	}

	var (
		provider Client
		err      error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		provider = newOpenAIClient(cfg, logger)
	case ProviderOllama:
		provider, err = newOllamaClient(cfg, logger)
	case ProviderGemini:
		provider, err = newGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.Timeout).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("AI client created")

	return NewRetryingClient(provider, RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseRetryDelay,
		Timeout:     cfg.Timeout,
	}, logger), nil
}

func temperatureOr(req Request, def float64) float64 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	return def
}

func maxTokensOr(req Request, def int) int {
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		return *req.MaxTokens
	}
	return def
}
