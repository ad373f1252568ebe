package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openaigo "github.com/sashabaranov/go-openai"
)

// openAIClient работает с OpenAI и совместимыми API (OpenRouter, vLLM и т.п.).
type openAIClient struct {
	client      *openaigo.Client
	model       string
	temperature float64
	maxTokens   int
	logger      zerolog.Logger
}

func newOpenAIClient(cfg Config, logger zerolog.Logger) *openAIClient {
	oaCfg := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	// Таймаут на попытку задает RetryingClient через контекст.
	oaCfg.HTTPClient = &http.Client{}

	return &openAIClient{
		client:      openaigo.NewClientWithConfig(oaCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, Usage, error) {
	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: req.SystemPrompt},
	}
	if req.UserPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: req.UserPrompt,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(temperatureOr(req, c.temperature)),
		MaxTokens:   maxTokensOr(req, c.maxTokens),
	})
	duration := time.Since(start)

	if err != nil {
		observeRequest(ProviderOpenAI, c.model, statusError, duration)
		c.logger.Warn().Err(err).Dur("duration", duration).Msg("OpenAI request failed")
		return "", Usage{}, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		observeRequest(ProviderOpenAI, c.model, statusEmpty, duration)
		return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
	}

	text := resp.Choices[0].Message.Content
	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage = estimateUsage(c.model, req.SystemPrompt+req.UserPrompt, text)
	}

	observeRequest(ProviderOpenAI, c.model, statusSuccess, duration)
	observeUsage(ProviderOpenAI, c.model, usage)
	c.logger.Debug().
		Dur("duration", duration).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Msg("OpenAI response received")

	return text, usage, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) && isAuthStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) && isAuthStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
