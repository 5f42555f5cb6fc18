package convo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when the openai provider has no model set.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI calls an OpenAI compatible chat completions API.
type OpenAI struct {
	client   *openai.Client
	settings Settings
}

// NewOpenAI returns an OpenAI provider. baseURL may be empty.
func NewOpenAI(apiKey, baseURL string, s Settings) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
	}
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if s.Model == "" || s.Model == DefaultAnthropicModel {
		s.Model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), settings: s}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string { return "openai" }

// Complete sends one user message and returns the reply.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.settings.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.settings.MaxTokens,
		Temperature: o.settings.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %s", errorByStatus(apiErr.HTTPStatusCode), apiErr.Message)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", fmt.Errorf("%w: %v", errorByStatus(reqErr.HTTPStatusCode), reqErr.Err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoResponse
	}
	return resp.Choices[0].Message.Content, nil
}
