package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPause is the silence inserted between consecutive clips.
const DefaultPause = 300 * time.Millisecond

// Clip is an encoded speech clip on disk. Index is the 0-based position of
// the dialogue line it was generated from.
type Clip struct {
	Index int
	Path  string
}

// Podcast describes an assembled output file.
type Podcast struct {
	Path     string
	Duration time.Duration
	Clips    int
	Size     int64
}

// AssemblerConfig configures an Assembler.
type AssemblerConfig struct {
	Pause  time.Duration
	Format Format
	Logger *log.Logger
}

// Assembler joins clips into a single MP3.
type Assembler struct {
	codec  Codec
	pause  time.Duration
	format Format
	logger *log.Logger
}

// NewAssembler returns an assembler that decodes and encodes with codec.
// A zero Format means DefaultFormat; a negative Pause disables pauses.
func NewAssembler(codec Codec, cfg AssemblerConfig) *Assembler {
	if cfg.Format == (Format{}) {
		cfg.Format = DefaultFormat()
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Assembler{
		codec:  codec,
		pause:  cfg.Pause,
		format: cfg.Format,
		logger: cfg.Logger,
	}
}

// Pause returns the silence inserted between clips.
func (a *Assembler) Pause() time.Duration {
	return a.pause
}

// Assemble decodes clips in index order, joins them with a pause between
// each pair and writes the result to outPath. On failure no file is left
// at outPath.
func (a *Assembler) Assemble(ctx context.Context, clips []Clip, outPath string) (*Podcast, error) {
	if len(clips) == 0 {
		return nil, &AssemblyError{Clip: -1, Op: "assemble", Err: ErrNoClips}
	}

	ordered := slices.Clone(clips)
	slices.SortFunc(ordered, func(x, y Clip) int { return x.Index - y.Index })
	for i, c := range ordered {
		if c.Index != i {
			return nil, &AssemblyError{
				Clip: c.Index,
				Op:   "order",
				Err:  fmt.Errorf("expected clip %d, found %d", i, c.Index),
			}
		}
	}

	a.logger.Info("Combining audio files", "clips", len(ordered), "pause", a.pause)

	silence := a.format.Silence(a.pause)
	var pcm bytes.Buffer
	for i, c := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, &AssemblyError{Clip: c.Index, Op: "decode", Err: err}
		}
		data, err := a.codec.Decode(ctx, c.Path, a.format)
		if err != nil {
			return nil, &AssemblyError{Clip: c.Index, Op: "decode", Err: err}
		}
		if err := a.format.CheckPCM(data); err != nil {
			return nil, &AssemblyError{Clip: c.Index, Op: "decode", Err: err}
		}
		if i > 0 {
			pcm.Write(silence)
		}
		pcm.Write(data)
		a.logger.Debug("Decoded clip", "index", c.Index, "duration", a.format.Duration(len(data)))
	}

	size, err := a.write(ctx, pcm.Bytes(), outPath)
	if err != nil {
		return nil, err
	}

	return &Podcast{
		Path:     outPath,
		Duration: a.format.Duration(pcm.Len()),
		Clips:    len(ordered),
		Size:     size,
	}, nil
}

// write encodes pcm next to outPath and renames it into place.
func (a *Assembler) write(ctx context.Context, pcm []byte, outPath string) (int64, error) {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return 0, &AssemblyError{Clip: -1, Op: "write", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".podcast-*"+filepath.Ext(outPath))
	if err != nil {
		return 0, &AssemblyError{Clip: -1, Op: "write", Err: err}
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := a.codec.Encode(ctx, pcm, a.format, tmpPath); err != nil {
		return 0, &AssemblyError{Clip: -1, Op: "encode", Err: err}
	}

	st, err := os.Stat(tmpPath)
	if err != nil {
		return 0, &AssemblyError{Clip: -1, Op: "encode", Err: err}
	}
	if st.Size() == 0 {
		return 0, &AssemblyError{Clip: -1, Op: "encode", Err: fmt.Errorf("encoder wrote an empty file")}
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return 0, &AssemblyError{Clip: -1, Op: "write", Err: err}
	}
	committed = true
	return st.Size(), nil
}
