// Package convert turns conversation markdown into a podcast: it parses
// the dialogue, synthesizes every line concurrently and assembles the
// clips in order.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/doc2convo/doc2convo/internal/audio"
	"github.com/doc2convo/doc2convo/internal/dialogue"
	"github.com/doc2convo/doc2convo/internal/tts"
)

// DefaultConcurrency bounds simultaneous synthesis calls.
const DefaultConcurrency = 8

// Synthesizer produces speech for one dialogue line.
type Synthesizer interface {
	Synthesize(ctx context.Context, index int, line dialogue.Line) (*tts.Speech, error)
}

// Assembler joins clips into the final file.
type Assembler interface {
	Assemble(ctx context.Context, clips []audio.Clip, outPath string) (*audio.Podcast, error)
}

// Options configures a Converter.
type Options struct {
	// Concurrency bounds simultaneous synthesis calls, defaults to
	// DefaultConcurrency.
	Concurrency int

	// TempDir is the parent of each conversion's private clip directory,
	// defaults to the system temp dir.
	TempDir string

	Logger *log.Logger

	// OnStage is called on every stage change.
	OnStage func(Stage)
}

// Converter runs conversions. It holds no per-run state and may be reused.
type Converter struct {
	synth       Synthesizer
	assembler   Assembler
	concurrency int
	tempDir     string
	logger      *log.Logger
	onStage     func(Stage)
}

// Result describes a finished conversion.
type Result struct {
	ID      string
	Lines   int
	Podcast *audio.Podcast
	Elapsed time.Duration
}

// New creates a Converter.
func New(synth Synthesizer, assembler Assembler, opts Options) *Converter {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Converter{
		synth:       synth,
		assembler:   assembler,
		concurrency: opts.Concurrency,
		tempDir:     opts.TempDir,
		logger:      opts.Logger,
		onStage:     opts.OnStage,
	}
}

// Convert writes the podcast for markdown to outPath. On any failure no
// output file is produced and every temporary clip is removed. The first
// synthesis failure cancels the remaining lines.
func (c *Converter) Convert(ctx context.Context, markdown, outPath string) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := c.logger.With("run", id[:8])
	sm := newStateMachine(func(s Stage) {
		logger.Debug("Stage", "stage", s)
		if c.onStage != nil {
			c.onStage(s)
		}
	})

	fail := func(err error) error {
		stage := sm.stage()
		_ = sm.transition(StageFailed)
		return &StageError{Stage: stage, Err: err}
	}

	if err := sm.transition(StageParsing); err != nil {
		return nil, err
	}
	lines, err := dialogue.Parse(markdown)
	if err != nil {
		return nil, fail(err)
	}
	logger.Info("Found dialogue", "lines", len(lines))

	workDir, err := os.MkdirTemp(c.tempDir, "doc2convo-"+id[:8]+"-")
	if err != nil {
		return nil, fail(fmt.Errorf("failed to create work directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("Failed to remove work directory", "dir", workDir, "err", err)
		}
	}()

	if err := sm.transition(StageSynthesizing); err != nil {
		return nil, err
	}
	clips, err := c.synthesizeAll(ctx, lines, workDir)
	if err != nil {
		return nil, fail(err)
	}

	if err := sm.transition(StageAssembling); err != nil {
		return nil, err
	}
	podcast, err := c.assembler.Assemble(ctx, clips, outPath)
	if err != nil {
		return nil, fail(err)
	}

	if err := sm.transition(StageDone); err != nil {
		return nil, err
	}
	res := &Result{ID: id, Lines: len(lines), Podcast: podcast, Elapsed: time.Since(start)}
	logger.Info("Podcast created",
		"path", podcast.Path,
		"duration", podcast.Duration.Round(time.Second),
		"size", humanize.Bytes(uint64(podcast.Size)))
	return res, nil
}

// synthesizeAll writes one clip per line into dir. Clips are returned in
// line order.
func (c *Converter) synthesizeAll(ctx context.Context, lines []dialogue.Line, dir string) ([]audio.Clip, error) {
	clips := make([]audio.Clip, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, line := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			speech, err := c.synth.Synthesize(gctx, i, line)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, fmt.Sprintf("clip-%04d%s", i, speech.Format.Ext()))
			if err := os.WriteFile(path, speech.Data, 0o600); err != nil {
				return &tts.SynthesisError{Line: i, Speaker: line.Speaker, Err: fmt.Errorf("failed to write clip: %w", err)}
			}
			clips[i] = audio.Clip{Index: i, Path: path}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}
