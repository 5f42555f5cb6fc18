package tts

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"

	"github.com/doc2convo/doc2convo/internal/dialogue"
)

const previewWidth = 50

// Synthesizer converts dialogue lines to speech with a fixed voice map and
// rate. It is safe for concurrent use when its Backend is.
type Synthesizer struct {
	backend Backend
	voices  VoiceMap
	rate    int
	logger  *log.Logger
}

// NewSynthesizer returns a Synthesizer speaking at rate percent offset.
func NewSynthesizer(backend Backend, voices VoiceMap, rate int, logger *log.Logger) (*Synthesizer, error) {
	if backend == nil {
		return nil, ErrNoBackendConfigured
	}
	if voices.Default() == "" {
		return nil, fmt.Errorf("voice map has no default voice")
	}
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Synthesizer{backend: backend, voices: voices, rate: rate, logger: logger}, nil
}

// Backend returns the underlying backend.
func (s *Synthesizer) Backend() Backend {
	return s.backend
}

// Voices returns the voice map.
func (s *Synthesizer) Voices() VoiceMap {
	return s.voices
}

// Synthesize produces speech for the line at index. Any failure is
// returned as a *SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, index int, line dialogue.Line) (*Speech, error) {
	voice := s.voices.Lookup(line.Speaker)
	fail := func(err error) error {
		return &SynthesisError{
			Line:    index,
			Speaker: strings.ToUpper(line.Speaker),
			Voice:   voice,
			Backend: s.backend.Info().Name,
			Err:     err,
		}
	}

	if strings.TrimSpace(line.Text) == "" {
		return nil, fail(ErrEmptyText)
	}

	s.logger.Info("Generating audio",
		"speaker", line.Speaker,
		"text", truncate.StringWithTail(line.Text, previewWidth, "..."))

	speech, err := s.backend.Synthesize(ctx, line.Text, voice, s.rate)
	if err != nil {
		return nil, fail(err)
	}
	if speech == nil || len(speech.Data) == 0 {
		return nil, fail(ErrNoAudio)
	}
	return speech, nil
}
