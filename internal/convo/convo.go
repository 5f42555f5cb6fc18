// Package convo asks a language model to rewrite a document as a
// two-speaker podcast conversation in the **LABEL:** line format.
package convo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	ErrUnknown         = errors.New("unknown error")
	ErrNoResponse      = errors.New("no response")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidResponse = errors.New("invalid response")
	ErrAuthentication  = errors.New("authentication error")
	ErrPermission      = errors.New("permission error")
	ErrNotFound        = errors.New("not found")
	ErrRateLimit       = errors.New("rate limit error")
	ErrOverloaded      = errors.New("overloaded")
	ErrInternalServer  = errors.New("internal server error")

	// ErrMissingAPIKey is returned when a hosted provider has no key.
	ErrMissingAPIKey = errors.New("API key not set")

	// ErrInvalidProvider is returned for unknown provider names.
	ErrInvalidProvider = errors.New("invalid LLM provider")
)

// errorByStatus maps an HTTP status to a sentinel error.
func errorByStatus(code int) error {
	switch code {
	case 400:
		return ErrInvalidRequest
	case 401:
		return ErrAuthentication
	case 403:
		return ErrPermission
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimit
	case 500:
		return ErrInternalServer
	case 529, 503:
		return ErrOverloaded
	}
	return ErrUnknown
}

// Speakers are the two hosts of every generated conversation.
var Speakers = [2]string{"Alex", "Jordan"}

// Request is a document to discuss.
type Request struct {
	Title   string
	Content string
	Source  string

	// SystemPrompt replaces DefaultSystemPrompt when set.
	SystemPrompt string
}

// Provider completes a single-turn chat.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Generator produces conversations with a Provider.
type Generator struct {
	provider Provider
	logger   *log.Logger
	shuffle  func() (string, string)
}

// NewGenerator returns a Generator.
func NewGenerator(p Provider, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{provider: p, logger: logger, shuffle: shuffledSpeakers}
}

// Generate returns the conversation markdown for req.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Content) == "" {
		return "", fmt.Errorf("%w: document has no content", ErrInvalidRequest)
	}
	system := req.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	first, second := g.shuffle()

	g.logger.Info("Generating conversation", "provider", g.provider.Name(), "title", req.Title)
	out, err := g.provider.Complete(ctx, system, BuildPrompt(req, first, second))
	if err != nil {
		return "", fmt.Errorf("failed to generate conversation: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("failed to generate conversation: %w", ErrNoResponse)
	}
	return out, nil
}

// shuffledSpeakers randomizes who opens the show.
func shuffledSpeakers() (string, string) {
	if rand.IntN(2) == 0 {
		return Speakers[0], Speakers[1]
	}
	return Speakers[1], Speakers[0]
}
