package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# show debug output and write it to the log file
debug: false
# also write logs to this file
# log_file: "~/doc2convo.log"

# Conversation generation
llm:
  # anthropic, openai or ollama
  provider: "anthropic"
  # empty uses the provider's default model
  model: ""
  max_tokens: 4000
  temperature: 0.7
  # ollama_host: "http://localhost:11434"

# Speech synthesis
tts:
  # edge, orpheus, google or mock
  backend: "edge"
  # speech rate in percent, -50 to 100
  rate: 25
  # silence between lines
  pause: "300ms"
  # simultaneous synthesis calls
  concurrency: 8

  # voice per speaker label; unknown labels use default_voice
  # voices:
  #   alex: "en-US-ChristopherNeural"
  #   jordan: "en-US-JennyNeural"
  # default_voice: ""

  edge:
    binary: "edge-tts"
    timeout: "60s"
    requests_per_minute: 120

  orpheus:
    url: "http://localhost:5005/v1"
    model: "orpheus"
    timeout: "120s"

  google:
    language_code: "en-US"
    # credentials_file: "~/gcp-service-account.json"

  # cache synthesized clips between runs
  cache:
    enabled: false
    # dir: "~/.cache/doc2convo"
    # size limit in MB
    max_size: 100

# Audio encoding
audio:
  ffmpeg: "ffmpeg"
  sample_rate: 24000
  bitrate: "128k"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the doc2convo config file",
	Long:    paragraph(fmt.Sprintf("\n%s the doc2convo config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("doc2convo config\ndoc2convo config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("doc2convo", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if configFile == "" {
			return errors.New("no config file location found")
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
