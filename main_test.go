package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doc2convo/doc2convo/internal/convert"
	"github.com/doc2convo/doc2convo/internal/dialogue"
	"github.com/doc2convo/doc2convo/internal/fetch"
	"github.com/doc2convo/doc2convo/internal/picker"
	"github.com/doc2convo/doc2convo/internal/tts"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"empty conversation", fmt.Errorf("talk.md: %w", dialogue.ErrEmptyConversation), exitNoInput},
		{"missing file", fmt.Errorf("%w: file not found: x.md", errNoInput), exitNoInput},
		{"fetch not found", fmt.Errorf("%w: %w", fetch.ErrFetch, fetch.ErrNotFound), exitNoInput},
		{"no files to pick", picker.ErrNoFiles, exitNoInput},
		{"picker cancelled", picker.ErrCancelled, exitNoInput},
		{"synthesis failure", &convert.StageError{Stage: convert.StageSynthesizing, Err: &tts.SynthesisError{Line: 1, Err: errors.New("boom")}}, exitFailure},
		{"configuration", tts.ErrInvalidBackend, exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk-CONVO.md")
	if err := os.WriteFile(path, []byte("**ALEX:** Hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	name, md, err := resolveInput(path, nil)
	if err != nil {
		t.Fatalf("resolveInput(file) error = %v", err)
	}
	if name != path || md != "**ALEX:** Hi\n" {
		t.Errorf("resolveInput(file) = %q, %q", name, md)
	}

	name, md, err = resolveInput("-", strings.NewReader("**JORDAN:** Yo\n"))
	if err != nil {
		t.Fatalf("resolveInput(-) error = %v", err)
	}
	if name != "-" || md != "**JORDAN:** Yo\n" {
		t.Errorf("resolveInput(-) = %q, %q", name, md)
	}

	_, _, err = resolveInput(filepath.Join(dir, "missing.md"), nil)
	if !errors.Is(err, errNoInput) {
		t.Errorf("resolveInput(missing) error = %v, want errNoInput", err)
	}
	if exitCode(err) != exitNoInput {
		t.Errorf("missing input exits %d, want %d", exitCode(err), exitNoInput)
	}
}

func TestVoiceOverrides(t *testing.T) {
	got := voiceOverrides(
		map[string]string{"alex": "leo", "jordan": "tara"},
		map[string]string{"ALEX": "dan", "JORDAN": ""},
	)
	want := map[string]string{"ALEX": "dan", "JORDAN": "tara"}
	if len(got) != len(want) {
		t.Fatalf("voiceOverrides() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("voiceOverrides()[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func validSettings() settings {
	var s settings
	s.TTS.Rate = 25
	s.TTS.Pause = 300 * time.Millisecond
	s.TTS.Concurrency = 8
	s.TTS.CacheMaxSize = 100
	s.Audio.SampleRate = 24000
	s.LLM.MaxTokens = 4000
	s.LLM.Temperature = 0.7
	return s
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*settings)
		wantErr bool
	}{
		{"defaults", func(*settings) {}, false},
		{"rate too high", func(s *settings) { s.TTS.Rate = 150 }, true},
		{"negative pause", func(s *settings) { s.TTS.Pause = -time.Second }, true},
		{"zero pause", func(s *settings) { s.TTS.Pause = 0 }, false},
		{"no concurrency", func(s *settings) { s.TTS.Concurrency = 0 }, true},
		{"cache too large", func(s *settings) { s.TTS.CacheMaxSize = 20000 }, true},
		{"sample rate", func(s *settings) { s.Audio.SampleRate = 100 }, true},
		{"temperature", func(s *settings) { s.LLM.Temperature = 3 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			if err := s.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsConvoFile(t *testing.T) {
	tests := map[string]bool{
		"talk-CONVO.md":         true,
		"/tmp/x/talk-CONVO.md":  true,
		"talk-convo.md":         false,
		"talk-CONVO.md.swp":     false,
		"notes.md":              false,
		"-CONVO.txt":            false,
		"dir-CONVO.md/file.txt": false,
	}
	for path, want := range tests {
		if got := isConvoFile(path); got != want {
			t.Errorf("isConvoFile(%q) = %v, want %v", path, got, want)
		}
	}
}

type call struct {
	markdown string
	out      string
}

type fakeConverter struct {
	calls chan call
}

func (f *fakeConverter) Convert(_ context.Context, markdown, outPath string) (*convert.Result, error) {
	f.calls <- call{markdown, outPath}
	return &convert.Result{}, nil
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conv := &fakeConverter{calls: make(chan call, 4)}
	done := make(chan error, 1)
	go func() { done <- watch(ctx, dir, conv, 50*time.Millisecond) }()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("**ALEX:** no\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "talk-CONVO.md"), []byte("**ALEX:** Hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-conv.calls:
		if c.markdown != "**ALEX:** Hi\n" {
			t.Errorf("converted %q", c.markdown)
		}
		if want := filepath.Join(dir, "talk-podcast.mp3"); c.out != want {
			t.Errorf("output = %s, want %s", c.out, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("conversation was not converted")
	}

	select {
	case c := <-conv.calls:
		t.Errorf("unexpected conversion of %q", c.markdown)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
