package convo

import (
	"fmt"
	"strings"
)

// Credentials are provider secrets read from the environment.
type Credentials struct {
	AnthropicAPIKey  string
	AnthropicBaseURL string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OllamaHost       string
}

// NewProvider creates the named provider.
func NewProvider(name string, creds Credentials, s Settings) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "anthropic", "claude":
		return NewAnthropic(creds.AnthropicAPIKey, creds.AnthropicBaseURL, s)
	case "openai":
		return NewOpenAI(creds.OpenAIAPIKey, creds.OpenAIBaseURL, s)
	case "ollama":
		return NewOllama(creds.OllamaHost, s)
	default:
		return nil, fmt.Errorf("%w: %s\n\nSupported providers: anthropic, openai, ollama", ErrInvalidProvider, name)
	}
}
