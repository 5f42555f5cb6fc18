package convo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fastjson"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	// DefaultAnthropicModel is the model used when none is configured.
	DefaultAnthropicModel = "claude-3-haiku-20240307"
)

// Settings are the sampling parameters shared by all providers.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultSettings returns the defaults used for conversation generation.
func DefaultSettings() Settings {
	return Settings{Model: DefaultAnthropicModel, MaxTokens: 4000, Temperature: 0.7}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float32           `json:"temperature,omitempty"`
}

// Anthropic calls the Anthropic messages API.
type Anthropic struct {
	apiKey     string
	baseURL    string
	settings   Settings
	httpClient *http.Client
}

// NewAnthropic returns an Anthropic provider. baseURL may be empty.
func NewAnthropic(apiKey, baseURL string, s Settings) (*Anthropic, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingAPIKey)
	}
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	if s.Model == "" {
		s.Model = DefaultAnthropicModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultSettings().MaxTokens
	}
	return &Anthropic{
		apiKey:   apiKey,
		baseURL:  baseURL,
		settings: s,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConns:    4,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}, nil
}

// Name returns the provider name.
func (a *Anthropic) Name() string { return "anthropic" }

// Complete sends one user message and returns the text of the reply.
func (a *Anthropic) Complete(ctx context.Context, system, prompt string) (string, error) {
	endpoint, err := url.JoinPath(a.baseURL, "messages")
	if err != nil {
		return "", err
	}

	temp := a.settings.Temperature
	payload, err := json.Marshal(&anthropicRequest{
		Model:       a.settings.Model,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens:   a.settings.MaxTokens,
		System:      system,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-API-Key", a.apiKey)
	r.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := a.httpClient.Do(r)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var p fastjson.Parser
	if resp.StatusCode != http.StatusOK {
		return "", anthropicError(&p, resp.StatusCode, body)
	}

	v, err := p.ParseBytes(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var sb strings.Builder
	for _, seg := range v.GetArray("content") {
		if string(seg.GetStringBytes("type")) == "text" {
			sb.Write(seg.GetStringBytes("text"))
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoResponse
	}
	return sb.String(), nil
}

// anthropicError prefers the error type from the body over the status.
func anthropicError(p *fastjson.Parser, status int, body []byte) error {
	sentinel := errorByStatus(status)
	v, err := p.ParseBytes(body)
	if err != nil {
		return fmt.Errorf("%w (HTTP %d)", sentinel, status)
	}
	if t := string(v.GetStringBytes("error", "type")); t != "" {
		sentinel = errorByType(t)
	}
	if msg := string(v.GetStringBytes("error", "message")); msg != "" {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return fmt.Errorf("%w (HTTP %d)", sentinel, status)
}

func errorByType(t string) error {
	switch t {
	case "invalid_request_error":
		return ErrInvalidRequest
	case "authentication_error":
		return ErrAuthentication
	case "permission_error":
		return ErrPermission
	case "not_found_error":
		return ErrNotFound
	case "rate_limit_error":
		return ErrRateLimit
	case "api_error":
		return ErrInternalServer
	case "overloaded_error":
		return ErrOverloaded
	}
	return ErrUnknown
}
