package engines

import (
	"context"
	"strings"
	"time"

	"github.com/doc2convo/doc2convo/internal/audio"
	"github.com/doc2convo/doc2convo/internal/tts"
)

// mockWordDuration is the spoken length of one word at normal rate
// (150 words per minute).
const mockWordDuration = 400 * time.Millisecond

// MockBackend produces WAV clips of silence whose length follows the word
// count. It needs no network or external tools and is used for dry runs.
type MockBackend struct {
	format audio.Format
}

// NewMockBackend creates a mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{format: audio.DefaultFormat()}
}

// Synthesize returns silence sized to the text.
func (m *MockBackend) Synthesize(ctx context.Context, text, voice string, rate int) (*tts.Speech, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	return &tts.Speech{
		Data:   audio.EncodeWAV(m.format.Silence(MockDuration(text, rate)), m.format),
		Format: tts.FormatWAV,
	}, nil
}

// MockDuration returns the clip length the mock produces for text.
func MockDuration(text string, rate int) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	d := time.Duration(words) * mockWordDuration
	return time.Duration(float64(d) / tts.SpeedMultiplier(rate))
}

// Info returns backend capabilities.
func (m *MockBackend) Info() tts.BackendInfo {
	return tts.BackendInfo{Name: tts.BackendMock, Format: tts.FormatWAV}
}

// Validate always succeeds.
func (m *MockBackend) Validate() error { return nil }

// Close is a no-op.
func (m *MockBackend) Close() error { return nil }
