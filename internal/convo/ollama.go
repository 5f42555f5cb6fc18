package convo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// DefaultOllamaModel is used when the ollama provider has no model set.
const DefaultOllamaModel = "llama3"

// Ollama calls a local Ollama server.
type Ollama struct {
	client   *ollama.Client
	settings Settings
}

// NewOllama returns an Ollama provider. An empty host uses OLLAMA_HOST or
// the default local address.
func NewOllama(host string, s Settings) (*Ollama, error) {
	var client *ollama.Client
	if host == "" {
		c, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("invalid OLLAMA_HOST: %w", err)
		}
		client = c
	} else {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		client = ollama.NewClient(u, http.DefaultClient)
	}
	if s.Model == "" || s.Model == DefaultAnthropicModel {
		s.Model = DefaultOllamaModel
	}
	return &Ollama{client: client, settings: s}, nil
}

// Name returns the provider name.
func (o *Ollama) Name() string { return "ollama" }

// Complete runs a non-streaming chat.
func (o *Ollama) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := o.client.Heartbeat(ctx); err != nil {
		return "", fmt.Errorf("ollama server not reachable: %w", err)
	}

	stream := false
	req := &ollama.ChatRequest{
		Model: o.settings.Model,
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": o.settings.Temperature,
			"num_predict": o.settings.MaxTokens,
		},
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		sb.WriteString(cr.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	if sb.Len() == 0 {
		return "", ErrNoResponse
	}
	return sb.String(), nil
}
