package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/doc2convo/doc2convo/internal/audio"
	"github.com/doc2convo/doc2convo/internal/convert"
	"github.com/doc2convo/doc2convo/internal/tts"
	"github.com/doc2convo/doc2convo/internal/tts/engines"
)

// converter is the part of convert.Converter the commands use.
type converter interface {
	Convert(ctx context.Context, markdown, outPath string) (*convert.Result, error)
}

// pipeline owns the backend behind a converter.
type pipeline struct {
	*convert.Converter
	backend tts.Backend
}

func (p *pipeline) Close() error {
	return p.backend.Close()
}

// newPipeline validates every external dependency before any work starts:
// the backend selection, ffmpeg and the backend's own requirements.
func newPipeline(ctx context.Context, s settings, backendArg string, voiceFlags map[string]string) (*pipeline, error) {
	backendType, err := tts.ValidateBackendSelection(backendArg, s.TTS.Backend)
	if err != nil {
		return nil, err
	}

	codec := audio.NewFFmpegCodec(s.Audio.FFmpeg, s.Audio.Bitrate)
	if err := codec.Validate(ctx); err != nil {
		return nil, err
	}

	backend, err := engines.New(engines.Config{
		Backend: backendType,
		Edge: engines.EdgeConfig{
			Binary:            s.TTS.EdgeBinary,
			Timeout:           s.TTS.EdgeTimeout,
			RequestsPerMinute: s.TTS.EdgeRequestsPerMinute,
		},
		Orpheus: engines.OrpheusConfig{
			URL:     s.TTS.OrpheusURL,
			Model:   s.TTS.OrpheusModel,
			Timeout: s.TTS.OrpheusTimeout,
		},
		Google: engines.GoogleConfig{
			LanguageCode:    s.TTS.GoogleLanguageCode,
			CredentialsFile: s.TTS.GoogleCredentialsFile,
		},
		Cache: engines.CacheConfig{
			Enabled:  s.TTS.CacheEnabled,
			Dir:      s.TTS.CacheDir,
			Capacity: int64(s.TTS.CacheMaxSize) << 20,
		},
		Logger: log.Default(),
	})
	if err != nil {
		return nil, err
	}

	voices := tts.BuildVoiceMap(backendType, voiceOverrides(s.TTS.Voices, voiceFlags), s.TTS.DefaultVoice, log.Default())
	synth, err := tts.NewSynthesizer(backend, voices, s.TTS.Rate, log.Default())
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	format := audio.DefaultFormat()
	format.SampleRate = s.Audio.SampleRate
	asm := audio.NewAssembler(codec, audio.AssemblerConfig{
		Pause:  s.TTS.Pause,
		Format: format,
		Logger: log.Default(),
	})

	log.Info("Using TTS backend",
		"backend", backendType,
		"ALEX", voices.Lookup("ALEX"),
		"JORDAN", voices.Lookup("JORDAN"),
		"rate", tts.RateString(s.TTS.Rate))

	conv := convert.New(synth, asm, convert.Options{
		Concurrency: s.TTS.Concurrency,
		Logger:      log.Default(),
	})
	return &pipeline{Converter: conv, backend: backend}, nil
}

// voiceOverrides merges configured voices with command line flags. Flags
// win; labels are upper-cased.
func voiceOverrides(configured, flags map[string]string) map[string]string {
	out := make(map[string]string, len(configured)+len(flags))
	for label, voice := range configured {
		out[strings.ToUpper(label)] = voice
	}
	for label, voice := range flags {
		if voice != "" {
			out[strings.ToUpper(label)] = voice
		}
	}
	return out
}
