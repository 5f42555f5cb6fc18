package audio

import (
	"errors"
	"fmt"
	"time"
)

// Format describes signed little-endian PCM audio.
type Format struct {
	SampleRate int // Hz
	Channels   int // 1 = mono
	BitDepth   int // bits per sample, 16 only
}

// DefaultFormat is 24kHz 16-bit mono, the native rate of the speech
// backends.
func DefaultFormat() Format {
	return Format{
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   16,
	}
}

// Validate checks that the format can be produced by the codec.
func (f Format) Validate() error {
	if f.SampleRate < 8000 || f.SampleRate > 192000 {
		return fmt.Errorf("sample rate must be between 8000 and 192000 Hz, got %d", f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", f.Channels)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", f.BitDepth)
	}
	return nil
}

// BytesPerFrame returns the size of one sample across all channels.
func (f Format) BytesPerFrame() int {
	return f.BitDepth / 8 * f.Channels
}

// Duration returns the playing time of n bytes of PCM.
func (f Format) Duration(n int) time.Duration {
	bpf := f.BytesPerFrame()
	if f.SampleRate == 0 || bpf == 0 {
		return 0
	}
	frames := int64(n / bpf)
	return time.Duration(frames * int64(time.Second) / int64(f.SampleRate))
}

// Silence returns zeroed PCM of the given duration, rounded down to whole
// frames.
func (f Format) Silence(d time.Duration) []byte {
	if d <= 0 {
		return nil
	}
	frames := int64(d) * int64(f.SampleRate) / int64(time.Second)
	return make([]byte, frames*int64(f.BytesPerFrame()))
}

// CheckPCM verifies that data is non-empty and frame aligned.
func (f Format) CheckPCM(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty PCM data")
	}
	if bpf := f.BytesPerFrame(); len(data)%bpf != 0 {
		return fmt.Errorf("PCM data length %d is not aligned to %d-byte frames", len(data), bpf)
	}
	return nil
}
