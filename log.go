package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
)

// logCloser closes the log file, if one was opened.
var logCloser = func() error { return nil }

func defaultLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, appName).CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}

// setupLog sends log output to stderr at info level.
func setupLog() {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	log.SetLevel(log.InfoLevel)
}

// configureLog applies the debug and log_file settings. Debug output also
// goes to a file in the user cache dir unless log_file names another.
func configureLog(debug bool, logFile string) error {
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	if logFile == "" && !debug {
		return nil
	}

	if logFile == "" {
		p, err := defaultLogFilePath()
		if err != nil {
			return err
		}
		logFile = p
	}
	logFile, err := homedir.Expand(logFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))
	logCloser = f.Close
	log.Debug("Logging to file", "path", logFile)
	return nil
}
