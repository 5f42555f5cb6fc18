package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doc2convo/doc2convo/internal/convert"
	"github.com/doc2convo/doc2convo/internal/convo"
	"github.com/doc2convo/doc2convo/internal/dialogue"
	"github.com/doc2convo/doc2convo/internal/fetch"
)

var (
	convoOutput string
	convoStyle  string
	convoCopy   bool
	convoRender bool
	convoSave   bool

	convoCmd = &cobra.Command{
		Use:   "convo SOURCE",
		Short: "Generate a conversation from a URL or document",
		Long: paragraph(fmt.Sprintf("\nFetch a web page or a local %s, %s or %s file and have a language model rewrite it as a conversation between ALEX and JORDAN.",
			keyword(".txt"), keyword(".md"), keyword(".pdf"))),
		Example: paragraph("doc2convo convo https://example.com/post\ndoc2convo convo paper.pdf -o paper-CONVO.md\ndoc2convo convo notes.md -s \"Keep it under five minutes\""),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvo(cmd.Context(), args[0])
		},
	}
)

func runConvo(ctx context.Context, source string) error {
	provider, err := convo.NewProvider(cfg.LLM.Provider, cfg.credentials(), cfg.convoSettings())
	if err != nil {
		return err
	}

	doc, err := fetch.New(fetch.WithLogger(log.Default())).Fetch(ctx, source)
	if err != nil {
		return err
	}

	text, err := convo.NewGenerator(provider, log.Default()).Generate(ctx, convo.Request{
		Title:        doc.Title,
		Content:      doc.Text,
		Source:       doc.Source,
		SystemPrompt: convoStyle,
	})
	if err != nil {
		return err
	}

	if n := dialogue.Count(text); n == 0 {
		log.Warn("Generated text contains no dialogue lines")
	} else {
		log.Info("Conversation generated", "lines", n)
	}

	if convoCopy {
		// OSC 52 works over SSH; the system clipboard works locally.
		termenv.Copy(text)
		if err := clipboard.WriteAll(text); err != nil {
			log.Debug("System clipboard unavailable", "err", err)
		}
	}

	out := convoOutput
	if out == "" && convoSave {
		out = convert.ConvoPath(doc.Title)
	}
	if out != "" {
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("unable to write conversation: %w", err)
		}
		log.Info("Conversation saved", "path", out)
		return nil
	}

	if convoRender && term.IsTerminal(int(os.Stdout.Fd())) {
		rendered, err := renderMarkdown(text)
		if err != nil {
			return err
		}
		text = rendered
	}
	_, err = fmt.Fprint(os.Stdout, text)
	return err
}

func renderMarkdown(md string) (string, error) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w, 120)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamour.WithStandardStyle(glamourStyle()),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

func glamourStyle() string {
	if termenv.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

func init() {
	convoCmd.Flags().StringVarP(&convoOutput, "output", "o", "", "write the conversation to this file")
	convoCmd.Flags().StringVarP(&convoStyle, "system-prompt", "s", "", "custom system prompt for the conversation style")
	convoCmd.Flags().BoolVar(&convoCopy, "copy", false, "also copy the conversation to the clipboard")
	convoCmd.Flags().BoolVar(&convoRender, "render", false, "render markdown when writing to a terminal")
	convoCmd.Flags().BoolVar(&convoSave, "save", false, "save as TITLE-CONVO.md in the current directory")
}
