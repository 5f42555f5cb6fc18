package engines

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/doc2convo/doc2convo/internal/subprocess"
	"github.com/doc2convo/doc2convo/internal/tts"
)

// edgeMaxText is the longest text sent in one edge-tts call.
const edgeMaxText = 5000

// EdgeConfig holds configuration for the edge-tts backend.
type EdgeConfig struct {
	// Binary is the edge-tts executable, defaults to "edge-tts".
	Binary string

	// Timeout bounds one synthesis, defaults to 60s.
	Timeout time.Duration

	// RequestsPerMinute limits calls to the service, defaults to 120.
	RequestsPerMinute int

	// TempDir holds intermediate media files, defaults to the system temp dir.
	TempDir string
}

// EdgeBackend synthesizes speech with Microsoft Edge neural voices through
// the edge-tts command line tool. Output is MP3.
type EdgeBackend struct {
	binary  string
	tempDir string
	runner  subprocess.Runner
	limiter *rate.Limiter
}

// NewEdgeBackend creates an edge-tts backend.
func NewEdgeBackend(cfg EdgeConfig) *EdgeBackend {
	if cfg.Binary == "" {
		cfg.Binary = "edge-tts"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	return &EdgeBackend{
		binary:  cfg.Binary,
		tempDir: cfg.TempDir,
		runner:  subprocess.Runner{Timeout: cfg.Timeout},
		// Allow a short burst so concurrent lines start together.
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 4),
	}
}

// Synthesize runs edge-tts for one line.
func (e *EdgeBackend) Synthesize(ctx context.Context, text, voice string, rate int) (*tts.Speech, error) {
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	if len(text) > edgeMaxText {
		return nil, fmt.Errorf("%w: %d characters (max %d)", tts.ErrTextTooLong, len(text), edgeMaxText)
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	f, err := os.CreateTemp(e.tempDir, "edge-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}
	media := f.Name()
	_ = f.Close()
	defer os.Remove(media)

	args := []string{
		"--voice", voice,
		"--text", text,
		"--rate=" + tts.RateString(rate),
		"--write-media", media,
	}
	if _, err := e.runner.Run(ctx, nil, e.binary, args...); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(media)
	if err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}
	if len(data) == 0 {
		return nil, tts.ErrNoAudio
	}
	return &tts.Speech{Data: data, Format: tts.FormatMP3}, nil
}

// Info returns backend capabilities.
func (e *EdgeBackend) Info() tts.BackendInfo {
	return tts.BackendInfo{
		Name:        tts.BackendEdge,
		Format:      tts.FormatMP3,
		MaxTextSize: edgeMaxText,
		IsOnline:    true,
	}
}

// Validate checks that edge-tts is installed.
func (e *EdgeBackend) Validate() error {
	if _, err := subprocess.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: %v\n\nInstall it with:\n  pip install edge-tts", tts.ErrBackendUnavailable, err)
	}
	if st, err := os.Stat(e.tempDir); err != nil || !st.IsDir() {
		return fmt.Errorf("%w: temp directory %s is not usable", tts.ErrBackendUnavailable, filepath.Clean(e.tempDir))
	}
	return nil
}

// Close is a no-op.
func (e *EdgeBackend) Close() error {
	return nil
}
