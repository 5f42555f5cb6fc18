package engines

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/doc2convo/doc2convo/internal/tts"
)

// googleMaxText is the request size limit of the API in bytes.
const googleMaxText = 5000

// GoogleConfig holds configuration for Google Cloud Text-to-Speech.
type GoogleConfig struct {
	// LanguageCode is used when it cannot be derived from the voice name,
	// defaults to en-US.
	LanguageCode string

	// CredentialsFile is a service account key. When empty, application
	// default credentials are used.
	CredentialsFile string

	// Timeout bounds one synthesis, defaults to 30s.
	Timeout time.Duration
}

// GoogleBackend synthesizes speech with Google Cloud Text-to-Speech.
// Output is MP3.
type GoogleBackend struct {
	cfg GoogleConfig

	once      sync.Once
	client    *texttospeech.Client
	clientErr error
}

// NewGoogleBackend creates a Google backend. The API client is created on
// first use.
func NewGoogleBackend(cfg GoogleConfig) *GoogleBackend {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GoogleBackend{cfg: cfg}
}

func (g *GoogleBackend) getClient(ctx context.Context) (*texttospeech.Client, error) {
	g.once.Do(func() {
		var opts []option.ClientOption
		if g.cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(g.cfg.CredentialsFile))
		}
		g.client, g.clientErr = texttospeech.NewClient(ctx, opts...)
	})
	return g.client, g.clientErr
}

// Synthesize requests one MP3 clip from the API.
func (g *GoogleBackend) Synthesize(ctx context.Context, text, voice string, rate int) (*tts.Speech, error) {
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	if len(text) > googleMaxText {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", tts.ErrTextTooLong, len(text), googleMaxText)
	}

	client, err := g.getClient(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageFromVoice(voice, g.cfg.LanguageCode),
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  tts.SpeedMultiplier(rate),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, tts.ErrNoAudio
	}
	return &tts.Speech{Data: resp.GetAudioContent(), Format: tts.FormatMP3}, nil
}

// languageFromVoice extracts "en-US" from names like "en-US-Neural2-D".
func languageFromVoice(voice, fallback string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) == 3 && len(parts[0]) >= 2 && len(parts[1]) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return fallback
}

// Info returns backend capabilities.
func (g *GoogleBackend) Info() tts.BackendInfo {
	return tts.BackendInfo{
		Name:        tts.BackendGoogle,
		Format:      tts.FormatMP3,
		MaxTextSize: googleMaxText,
		IsOnline:    true,
	}
}

// Validate checks that credentials are configured.
func (g *GoogleBackend) Validate() error {
	path := g.cfg.CredentialsFile
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if path == "" {
		return fmt.Errorf("%w: no Google credentials configured\n\nSet tts.google.credentials_file or GOOGLE_APPLICATION_CREDENTIALS", tts.ErrBackendUnavailable)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: credentials file: %v", tts.ErrBackendUnavailable, err)
	}
	return nil
}

// Close closes the API client if it was created.
func (g *GoogleBackend) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
