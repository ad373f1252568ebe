package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// geminiClient работает с Gemini API через официальный SDK.
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
	logger      zerolog.Logger
}

func newGeminiClient(ctx context.Context, cfg Config, logger zerolog.Logger) (*geminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}, nil
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (string, Usage, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(temperatureOr(req, c.temperature))),
		MaxOutputTokens:   int32(maxTokensOr(req, c.maxTokens)),
		ResponseMIMEType:  "application/json",
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), genCfg)
	duration := time.Since(start)

	if err != nil {
		observeRequest(ProviderGemini, c.model, statusError, duration)
		c.logger.Warn().Err(err).Dur("duration", duration).Msg("Gemini request failed")
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && isAuthStatus(apiErr.Code) {
			return "", Usage{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		observeRequest(ProviderGemini, c.model, statusEmpty, duration)
		return "", Usage{}, fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
	}

	var usage Usage
	if md := resp.UsageMetadata; md != nil && md.TotalTokenCount > 0 {
		usage = Usage{
			PromptTokens:     int(md.PromptTokenCount),
			CompletionTokens: int(md.CandidatesTokenCount),
			TotalTokens:      int(md.TotalTokenCount),
		}
	} else {
		usage = estimateUsage(c.model, req.SystemPrompt+req.UserPrompt, text)
	}

	observeRequest(ProviderGemini, c.model, statusSuccess, duration)
	observeUsage(ProviderGemini, c.model, usage)
	c.logger.Debug().Dur("duration", duration).Int("total_tokens", usage.TotalTokens).Msg("Gemini response received")

	return text, usage, nil
}
