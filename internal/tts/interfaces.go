// Package tts turns dialogue lines into speech clips. A Backend talks to
// one speech provider; the Synthesizer picks a voice for each speaker and
// reports failures per line.
package tts

import "context"

// Format is the container format of synthesized speech.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Speech is the encoded output of one synthesis call.
type Speech struct {
	Data   []byte
	Format Format
}

// Backend defines the contract for speech providers.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Synthesize converts text to speech using voice. rate is a percentage
	// offset from the provider's normal speaking rate (25 means 25% faster).
	Synthesize(ctx context.Context, text, voice string, rate int) (*Speech, error)

	// Info returns backend capabilities.
	Info() BackendInfo

	// Validate checks that the backend's dependencies are present.
	Validate() error

	// Close releases resources held by the backend.
	Close() error
}

// BackendInfo describes a backend.
type BackendInfo struct {
	Name        BackendType
	Format      Format // format of returned speech
	MaxTextSize int    // maximum text size in characters, 0 if unbounded
	IsOnline    bool   // whether the backend requires internet
}
