package engines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doc2convo/doc2convo/internal/audio"
	"github.com/doc2convo/doc2convo/internal/tts"
)

func TestMockDuration(t *testing.T) {
	tests := []struct {
		text string
		rate int
		want time.Duration
	}{
		{"one two three", 0, 1200 * time.Millisecond},
		{"one two three four five", 25, 1600 * time.Millisecond},
		{"   ", 0, 400 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := MockDuration(tt.text, tt.rate); got != tt.want {
			t.Errorf("MockDuration(%q, %d) = %v, want %v", tt.text, tt.rate, got, tt.want)
		}
	}
}

func TestMockBackend_Synthesize(t *testing.T) {
	m := NewMockBackend()

	speech, err := m.Synthesize(context.Background(), "hello there world", "mock-alex", 0)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if speech.Format != tts.FormatWAV {
		t.Errorf("Format = %q, want wav", speech.Format)
	}

	pcm, f, err := audio.DecodeWAV(speech.Data)
	if err != nil {
		t.Fatalf("DecodeWAV() error = %v", err)
	}
	if got := f.Duration(len(pcm)); got != 1200*time.Millisecond {
		t.Errorf("clip duration = %v, want 1.2s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Synthesize(ctx, "x", "v", 0); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Synthesize() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, tts.ErrNoBackendConfigured) {
		t.Errorf("empty backend error = %v", err)
	}
	if _, err := New(Config{Backend: "festival"}); !errors.Is(err, tts.ErrInvalidBackend) {
		t.Errorf("unknown backend error = %v", err)
	}

	b, err := New(Config{Backend: tts.BackendMock, Cache: CacheConfig{Enabled: true, Dir: t.TempDir(), Capacity: 1 << 20}})
	if err != nil {
		t.Fatalf("New(mock) error = %v", err)
	}
	if _, ok := b.(*MockBackend); !ok {
		t.Errorf("mock backend should not be cached, got %T", b)
	}

	_, err = New(Config{Backend: tts.BackendEdge, Edge: EdgeConfig{Binary: "edge-tts-does-not-exist"}})
	if !errors.Is(err, tts.ErrBackendUnavailable) {
		t.Errorf("missing edge-tts error = %v", err)
	}
}

func TestNew_Cached(t *testing.T) {
	b, err := New(Config{
		Backend: tts.BackendOrpheus,
		Orpheus: OrpheusConfig{URL: newOrpheusServer(t, nil).URL + "/v1"},
		Cache:   CacheConfig{Enabled: true, Dir: t.TempDir(), Capacity: 1 << 20},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()

	if _, ok := b.(*tts.CachedBackend); !ok {
		t.Errorf("expected cached backend, got %T", b)
	}
}
