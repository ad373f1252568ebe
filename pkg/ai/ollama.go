package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

const defaultOllamaURL = "http://localhost:11434"

// ollamaClient работает с локальной моделью через нативный API Ollama.
type ollamaClient struct {
	client      *api.Client
	model       string
	temperature float64
	maxTokens   int
	logger      zerolog.Logger
}

func newOllamaClient(cfg Config, logger zerolog.Logger) (*ollamaClient, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	// api.NewClient ожидает адрес без суффикса /v1
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/v1")

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url %q: %w", base, err)
	}

	return &ollamaClient{
		client:      api.NewClient(parsed, &http.Client{}),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}, nil
}

func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, Usage, error) {
	messages := []api.Message{{Role: "system", Content: req.SystemPrompt}}
	if req.UserPrompt != "" {
		messages = append(messages, api.Message{Role: "user", Content: req.UserPrompt})
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Format:   []byte(`"json"`),
		Options: map[string]interface{}{
			"temperature": temperatureOr(req, c.temperature),
			"num_predict": maxTokensOr(req, c.maxTokens),
		},
	}

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		observeRequest(ProviderOllama, c.model, statusError, duration)
		c.logger.Warn().Err(err).Dur("duration", duration).Msg("Ollama request failed")
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && isAuthStatus(statusErr.StatusCode) {
			return "", Usage{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text := resp.Message.Content
	if strings.TrimSpace(text) == "" {
		observeRequest(ProviderOllama, c.model, statusEmpty, duration)
		return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
	}

	usage := Usage{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	if usage.TotalTokens == 0 {
		usage = estimateUsage(c.model, req.SystemPrompt+req.UserPrompt, text)
	}

	observeRequest(ProviderOllama, c.model, statusSuccess, duration)
	observeUsage(ProviderOllama, c.model, usage)
	c.logger.Debug().Dur("duration", duration).Int("total_tokens", usage.TotalTokens).Msg("Ollama response received")

	return text, usage, nil
}
