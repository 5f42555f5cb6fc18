// Package main provides the entry point for the doc2convo CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doc2convo/doc2convo/internal/dialogue"
	"github.com/doc2convo/doc2convo/internal/fetch"
	"github.com/doc2convo/doc2convo/internal/picker"
)

const (
	exitOK      = 0
	exitNoInput = 1
	exitFailure = 2
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	// cfg is resolved before any subcommand runs.
	cfg settings

	// errNoInput marks input that is missing or unreadable.
	errNoInput = errors.New("no usable input")

	rootCmd = &cobra.Command{
		Use:   "doc2convo",
		Short: "Turn documents into two-host podcast conversations",
		Long: paragraph(
			fmt.Sprintf("\nTurn articles and documents into a %s between two hosts, then into an MP3 podcast.", keyword("conversation")),
		),
		Example: paragraph("doc2convo convo https://example.com/article -o article-CONVO.md\ndoc2convo podcast article-CONVO.md\ndoc2convo podcast --tts orpheus"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	// The config command must work even when the file is broken.
	switch cmd.Name() {
	case "config", "man":
		return nil
	}
	if err := readConfigFlag(); err != nil {
		return err
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}
	if err := configureLog(s.Debug, s.LogFile); err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	cfg = s
	return nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errNoInput),
		errors.Is(err, dialogue.ErrEmptyConversation),
		errors.Is(err, fetch.ErrNotFound),
		errors.Is(err, picker.ErrNoFiles),
		errors.Is(err, picker.ErrCancelled):
		return exitNoInput
	default:
		return exitFailure
	}
}

func main() {
	setupLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logCloser()
	os.Exit(exitCode(err))
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default doc2convo.yml in the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "show debug output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	setDefaults()
	tryLoadConfigFromDefaultPlaces()

	rootCmd.AddCommand(convoCmd, podcastCmd, playCmd, configCmd, manCmd)
}
