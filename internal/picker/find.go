// Package picker lets the user choose a generated conversation file when
// no input was given on the command line.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muesli/gitcha"
)

// ConvoPattern matches generated conversation files.
const ConvoPattern = "*-CONVO.md"

var (
	// ErrNoFiles is returned when no conversation file exists.
	ErrNoFiles = errors.New("no *-CONVO.md files found")

	// ErrCancelled is returned when the user quits without choosing.
	ErrCancelled = errors.New("no file selected")
)

// File is a candidate conversation.
type File struct {
	Path    string // absolute
	Name    string // relative to the search directory
	ModTime time.Time
}

// Find returns the conversation files below dir, newest first. Files
// ignored by git are skipped.
func Find(dir string) ([]File, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	ch, err := gitcha.FindFiles(abs, []string{ConvoPattern})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}

	var files []File
	for res := range ch {
		// The pattern match is case-insensitive; the suffix is not.
		if !strings.HasSuffix(res.Info.Name(), "-CONVO.md") {
			continue
		}
		files = append(files, File{
			Path:    res.Path,
			Name:    relativeName(abs, res.Path),
			ModTime: res.Info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

func relativeName(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return strings.TrimPrefix(rel, "."+string(os.PathSeparator))
}
