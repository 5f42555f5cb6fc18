package audio

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/doc2convo/doc2convo/internal/subprocess"
)

// Codec converts between encoded audio files and raw PCM.
type Codec interface {
	// Decode reads the encoded file at path and returns PCM in format f.
	Decode(ctx context.Context, path string, f Format) ([]byte, error)

	// Encode writes pcm (in format f) to outPath as MP3.
	Encode(ctx context.Context, pcm []byte, f Format, outPath string) error
}

// FFmpegCodec implements Codec with the ffmpeg command line tool.
type FFmpegCodec struct {
	Binary  string // defaults to "ffmpeg"
	Bitrate string // MP3 bitrate, defaults to "128k"
	Runner  subprocess.Runner
}

// NewFFmpegCodec returns a codec using binary at the given MP3 bitrate.
func NewFFmpegCodec(binary, bitrate string) *FFmpegCodec {
	if binary == "" {
		binary = "ffmpeg"
	}
	if bitrate == "" {
		bitrate = "128k"
	}
	return &FFmpegCodec{Binary: binary, Bitrate: bitrate}
}

// Validate checks that ffmpeg can be executed.
func (c *FFmpegCodec) Validate(ctx context.Context) error {
	if _, err := subprocess.LookPath(c.Binary); err != nil {
		return fmt.Errorf("%w\n\nInstall ffmpeg for audio conversion", err)
	}
	if _, err := c.Runner.Run(ctx, nil, c.Binary, "-hide_banner", "-version"); err != nil {
		return fmt.Errorf("cannot execute ffmpeg: %w", err)
	}
	return nil
}

// Decode implements Codec.
func (c *FFmpegCodec) Decode(ctx context.Context, path string, f Format) ([]byte, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-",
	}
	pcm, err := c.Runner.Run(ctx, nil, c.Binary, args...)
	if err != nil {
		return nil, err
	}
	if err := f.CheckPCM(pcm); err != nil {
		return nil, fmt.Errorf("ffmpeg produced no usable PCM output: %w", err)
	}
	return pcm, nil
}

// Encode implements Codec.
func (c *FFmpegCodec) Encode(ctx context.Context, pcm []byte, f Format, outPath string) error {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-i", "-",
		"-codec:a", "libmp3lame",
		"-b:a", c.Bitrate,
		"-f", "mp3",
		outPath,
	}
	_, err := c.Runner.Run(ctx, bytes.NewReader(pcm), c.Binary, args...)
	return err
}

var _ Codec = (*FFmpegCodec)(nil)
