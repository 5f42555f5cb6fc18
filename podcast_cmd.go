package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/doc2convo/doc2convo/internal/convert"
	"github.com/doc2convo/doc2convo/internal/dialogue"
	"github.com/doc2convo/doc2convo/internal/picker"
)

var (
	podcastOutput  string
	podcastBackend string
	alexVoice      string
	jordanVoice    string
	watchDir       string

	podcastCmd = &cobra.Command{
		Use:   "podcast [INPUT]",
		Short: "Convert a conversation into an MP3 podcast",
		Long: paragraph(fmt.Sprintf("\nSpeak every %s line of a conversation with its own voice and join the clips into one MP3. Without INPUT, pick a %s file from the current directory; use %s to read from stdin.",
			keyword("**SPEAKER:**"), keyword("*-CONVO.md"), keyword("-"))),
		Example: paragraph("doc2convo podcast article-CONVO.md\ndoc2convo podcast --tts orpheus --alex-voice dan article-CONVO.md\ncat talk.md | doc2convo podcast - -o talk.mp3\ndoc2convo podcast --watch ./inbox"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchDir != "" && len(args) > 0 {
				return errors.New("cannot use --watch with an INPUT file")
			}

			ctx := cmd.Context()
			if watchDir != "" {
				return runWatch(ctx, watchDir)
			}

			var input string
			if len(args) > 0 {
				input = args[0]
			}
			return runPodcast(ctx, input)
		},
	}
)

func runPodcast(ctx context.Context, input string) error {
	input, markdown, err := resolveInput(input, os.Stdin)
	if err != nil {
		return err
	}
	if dialogue.Count(markdown) == 0 {
		return fmt.Errorf("%s: %w", displayName(input), dialogue.ErrEmptyConversation)
	}

	p, err := newPipeline(ctx, cfg, podcastBackend, cliVoices())
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	out := podcastOutput
	if out == "" {
		out = convert.OutputPath(input, time.Now())
	}

	res, err := p.Convert(ctx, markdown, out)
	if err != nil {
		return err
	}
	fmt.Println(res.Podcast.Path)
	return nil
}

// resolveInput returns the input name and its contents. "-" reads stdin;
// an empty name opens the conversation picker.
func resolveInput(input string, stdin io.Reader) (string, string, error) {
	switch input {
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read stdin: %w", err)
		}
		return input, string(b), nil
	case "":
		files, err := picker.Find(".")
		if err != nil {
			return "", "", err
		}
		path, err := picker.Pick(files, picker.Options{})
		if err != nil {
			return "", "", err
		}
		log.Info("Selected conversation", "path", path)
		input = path
	}

	b, err := os.ReadFile(input)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", fmt.Errorf("%w: file not found: %s", errNoInput, input)
	}
	if err != nil {
		return "", "", fmt.Errorf("unable to read %s: %w", input, err)
	}
	return input, string(b), nil
}

func cliVoices() map[string]string {
	return map[string]string{"ALEX": alexVoice, "JORDAN": jordanVoice}
}

func displayName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return input
}

func init() {
	podcastCmd.Flags().StringVarP(&podcastOutput, "output", "o", "", "output MP3 file (default derived from INPUT)")
	podcastCmd.Flags().StringVar(&podcastBackend, "tts", "", "TTS backend: edge, orpheus, google or mock")
	podcastCmd.Flags().StringVar(&alexVoice, "alex-voice", "", "voice for ALEX")
	podcastCmd.Flags().StringVar(&jordanVoice, "jordan-voice", "", "voice for JORDAN")
	podcastCmd.Flags().StringVar(&watchDir, "watch", "", "convert every new *-CONVO.md written into this directory")
}
