package tts

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackendConfigured indicates no backend has been selected.
	ErrNoBackendConfigured = errors.New("no TTS backend configured")

	// ErrInvalidBackend indicates an unknown backend was specified.
	ErrInvalidBackend = errors.New("invalid TTS backend specified")

	// ErrBackendUnavailable indicates a backend's dependencies are missing.
	ErrBackendUnavailable = errors.New("TTS backend is not available")

	// ErrEmptyText indicates there was nothing to synthesize.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrTextTooLong indicates the text exceeds the backend limit.
	ErrTextTooLong = errors.New("text too long")

	// ErrNoAudio indicates the backend returned no audio data.
	ErrNoAudio = errors.New("backend returned no audio")

	// ErrInvalidRate indicates the speech rate is out of range.
	ErrInvalidRate = errors.New("speech rate must be between -50 and +100 percent")
)

// SynthesisError reports that speech generation failed for one dialogue
// line. Every backend failure is reported this way regardless of provider.
type SynthesisError struct {
	Line    int // 0-based index of the dialogue line
	Speaker string
	Voice   string
	Backend BackendType
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("line %d (%s, voice %s, %s): %v", e.Line+1, e.Speaker, e.Voice, e.Backend, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
