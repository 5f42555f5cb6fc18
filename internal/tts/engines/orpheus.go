package engines

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/doc2convo/doc2convo/internal/tts"
)

// OrpheusConfig holds configuration for the Orpheus backend.
type OrpheusConfig struct {
	// URL is the server's OpenAI compatible API root,
	// defaults to http://localhost:5005/v1.
	URL string

	// Model is sent as the speech model, defaults to "orpheus".
	Model string

	// Timeout bounds one synthesis, defaults to 120s. Local generation is
	// slow on CPU.
	Timeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// OrpheusBackend synthesizes speech with a locally hosted Orpheus model
// through its OpenAI compatible speech endpoint. Output is WAV.
type OrpheusBackend struct {
	client  *openai.Client
	http    *http.Client
	baseURL string
	model   string
	timeout time.Duration
}

// NewOrpheusBackend creates an Orpheus backend. No request is made until
// Validate or Synthesize.
func NewOrpheusBackend(cfg OrpheusConfig) *OrpheusBackend {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:5005/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "orpheus"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	// The local server ignores the API key but the client requires one.
	oc := openai.DefaultConfig("orpheus")
	oc.BaseURL = strings.TrimRight(cfg.URL, "/")
	oc.HTTPClient = cfg.HTTPClient

	return &OrpheusBackend{
		client:  openai.NewClientWithConfig(oc),
		http:    cfg.HTTPClient,
		baseURL: oc.BaseURL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Synthesize requests one WAV clip from the server.
func (o *OrpheusBackend) Synthesize(ctx context.Context, text, voice string, rate int) (*tts.Speech, error) {
	if text == "" {
		return nil, tts.ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(strings.ToLower(voice)),
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          tts.SpeedMultiplier(rate),
	})
	if err != nil {
		return nil, fmt.Errorf("orpheus speech request failed: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read orpheus response: %w", err)
	}
	if len(data) == 0 {
		return nil, tts.ErrNoAudio
	}
	return &tts.Speech{Data: data, Format: tts.FormatWAV}, nil
}

// Info returns backend capabilities.
func (o *OrpheusBackend) Info() tts.BackendInfo {
	return tts.BackendInfo{
		Name:     tts.BackendOrpheus,
		Format:   tts.FormatWAV,
		IsOnline: false,
	}
}

// Validate checks that the server answers. Any HTTP response counts; only
// connection failures are errors.
func (o *OrpheusBackend) Validate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid orpheus url %q: %v", tts.ErrBackendUnavailable, o.baseURL, err)
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: orpheus server at %s is not reachable: %v\n\nStart the Orpheus server or set tts.orpheus.url", tts.ErrBackendUnavailable, o.baseURL, err)
	}
	_ = resp.Body.Close()
	return nil
}

// Close releases idle connections.
func (o *OrpheusBackend) Close() error {
	o.http.CloseIdleConnections()
	return nil
}
