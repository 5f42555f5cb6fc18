package engines

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/doc2convo/doc2convo/internal/tts"
)

func TestLanguageFromVoice(t *testing.T) {
	tests := []struct {
		voice, want string
	}{
		{"en-US-Neural2-D", "en-US"},
		{"de-DE-Wavenet-A", "de-DE"},
		{"cmn-CN-Standard-A", "cmn-CN"},
		{"narrator", "en-GB"},
		{"", "en-GB"},
	}
	for _, tt := range tests {
		if got := languageFromVoice(tt.voice, "en-GB"); got != tt.want {
			t.Errorf("languageFromVoice(%q) = %q, want %q", tt.voice, got, tt.want)
		}
	}
}

func TestGoogleBackend_Validate(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	g := NewGoogleBackend(GoogleConfig{})
	if err := g.Validate(); !errors.Is(err, tts.ErrBackendUnavailable) {
		t.Errorf("no credentials error = %v", err)
	}

	g = NewGoogleBackend(GoogleConfig{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	if err := g.Validate(); !errors.Is(err, tts.ErrBackendUnavailable) {
		t.Errorf("missing file error = %v", err)
	}

	if g.Info().Format != tts.FormatMP3 || !g.Info().IsOnline {
		t.Errorf("unexpected info %+v", g.Info())
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close() without client = %v", err)
	}
}
