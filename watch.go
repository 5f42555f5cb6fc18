package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/doc2convo/doc2convo/internal/convert"
	"github.com/doc2convo/doc2convo/internal/dialogue"
)

// settleDelay is how long a file must stay unchanged before it is
// converted, so half-written files are not picked up.
const settleDelay = 500 * time.Millisecond

func runWatch(ctx context.Context, dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", errNoInput, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", errNoInput, dir)
	}

	p, err := newPipeline(ctx, cfg, podcastBackend, cliVoices())
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	return watch(ctx, dir, p, settleDelay)
}

// watch converts every conversation file created in dir until ctx is done.
// Failed conversions are logged and do not stop the watcher.
func watch(ctx context.Context, dir string, conv converter, settle time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("unable to watch %s: %w", dir, err)
	}
	log.Info("Watching for conversations", "dir", dir, "pattern", "*"+convert.ConvoSuffix+".md")

	ready := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isConvoFile(ev.Name) || !ev.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			if t, ok := pending[ev.Name]; ok {
				t.Reset(settle)
				continue
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			name := ev.Name
			pending[name] = time.AfterFunc(settle, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			// A timer reset after it fired delivers the path twice.
			if _, ok := pending[path]; !ok {
				continue
			}
			delete(pending, path)
			convertFile(ctx, dir, path, conv)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", "err", err)
		}
	}
}

func convertFile(ctx context.Context, dir, path string, conv converter) {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Error("Could not read conversation", "path", path, "err", err)
		return
	}

	out := filepath.Join(dir, convert.OutputPath(path, time.Now()))
	log.Info("Converting", "path", path, "output", out)
	if _, err := conv.Convert(ctx, string(b), out); err != nil {
		if errors.Is(err, dialogue.ErrEmptyConversation) {
			log.Warn("No dialogue found", "path", path)
			return
		}
		log.Error("Conversion failed", "path", path, "err", err)
	}
}

func isConvoFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), convert.ConvoSuffix+".md")
}
