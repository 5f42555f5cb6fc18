package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/doc2convo/doc2convo/internal/audio"
	"github.com/doc2convo/doc2convo/internal/convo"
	"github.com/doc2convo/doc2convo/internal/tts"
)

const appName = "doc2convo"

// secrets are read from the environment (and an optional .env file), never
// from the config file.
type secrets struct {
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL  string `env:"ANTHROPIC_BASE_URL"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"`
	OllamaHost        string `env:"OLLAMA_HOST"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type ttsSettings struct {
	Backend      string
	Rate         int
	Pause        time.Duration
	Concurrency  int
	Voices       map[string]string
	DefaultVoice string

	EdgeBinary            string
	EdgeTimeout           time.Duration
	EdgeRequestsPerMinute int

	OrpheusURL     string
	OrpheusModel   string
	OrpheusTimeout time.Duration

	GoogleLanguageCode    string
	GoogleCredentialsFile string

	CacheEnabled bool
	CacheDir     string
	CacheMaxSize int // MB
}

type audioSettings struct {
	FFmpeg     string
	SampleRate int
	Bitrate    string
}

type llmSettings struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	OllamaHost  string
}

// settings is the resolved configuration for one invocation.
type settings struct {
	Debug   bool
	LogFile string
	TTS     ttsSettings
	Audio   audioSettings
	LLM     llmSettings
	Secrets secrets
}

func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("log_file", "")

	viper.SetDefault("tts.backend", string(tts.BackendEdge))
	viper.SetDefault("tts.rate", 25)
	viper.SetDefault("tts.pause", audio.DefaultPause)
	viper.SetDefault("tts.concurrency", 8)
	viper.SetDefault("tts.default_voice", "")
	viper.SetDefault("tts.edge.binary", "edge-tts")
	viper.SetDefault("tts.edge.timeout", 60*time.Second)
	viper.SetDefault("tts.edge.requests_per_minute", 120)
	viper.SetDefault("tts.orpheus.url", "http://localhost:5005/v1")
	viper.SetDefault("tts.orpheus.model", "orpheus")
	viper.SetDefault("tts.orpheus.timeout", 120*time.Second)
	viper.SetDefault("tts.google.language_code", "en-US")
	viper.SetDefault("tts.google.credentials_file", "")
	viper.SetDefault("tts.cache.enabled", false)
	viper.SetDefault("tts.cache.dir", "")
	viper.SetDefault("tts.cache.max_size", 100)

	viper.SetDefault("audio.ffmpeg", "ffmpeg")
	viper.SetDefault("audio.sample_rate", audio.DefaultFormat().SampleRate)
	viper.SetDefault("audio.bitrate", "128k")

	viper.SetDefault("llm.provider", "anthropic")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.max_tokens", 4000)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.ollama_host", "")
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("DOC2CONVO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], appName+".yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

// readConfigFlag loads the file given with --config, replacing whatever
// was found in the default places.
func readConfigFlag() error {
	if configFile == "" {
		return nil
	}
	path, err := homedir.Expand(configFile)
	if err != nil {
		return err
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}
	return nil
}

func loadSecrets() (secrets, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env file", "err", err)
	}
	s, err := env.ParseAs[secrets]()
	if err != nil {
		return secrets{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return s, nil
}

func loadSettings() (settings, error) {
	s := settings{
		Debug:   viper.GetBool("debug"),
		LogFile: viper.GetString("log_file"),
		TTS: ttsSettings{
			Backend:      viper.GetString("tts.backend"),
			Rate:         viper.GetInt("tts.rate"),
			Pause:        viper.GetDuration("tts.pause"),
			Concurrency:  viper.GetInt("tts.concurrency"),
			Voices:       viper.GetStringMapString("tts.voices"),
			DefaultVoice: viper.GetString("tts.default_voice"),

			EdgeBinary:            viper.GetString("tts.edge.binary"),
			EdgeTimeout:           viper.GetDuration("tts.edge.timeout"),
			EdgeRequestsPerMinute: viper.GetInt("tts.edge.requests_per_minute"),

			OrpheusURL:     viper.GetString("tts.orpheus.url"),
			OrpheusModel:   viper.GetString("tts.orpheus.model"),
			OrpheusTimeout: viper.GetDuration("tts.orpheus.timeout"),

			GoogleLanguageCode:    viper.GetString("tts.google.language_code"),
			GoogleCredentialsFile: viper.GetString("tts.google.credentials_file"),

			CacheEnabled: viper.GetBool("tts.cache.enabled"),
			CacheDir:     viper.GetString("tts.cache.dir"),
			CacheMaxSize: viper.GetInt("tts.cache.max_size"),
		},
		Audio: audioSettings{
			FFmpeg:     viper.GetString("audio.ffmpeg"),
			SampleRate: viper.GetInt("audio.sample_rate"),
			Bitrate:    viper.GetString("audio.bitrate"),
		},
		LLM: llmSettings{
			Provider:    viper.GetString("llm.provider"),
			Model:       viper.GetString("llm.model"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			Temperature: viper.GetFloat64("llm.temperature"),
			OllamaHost:  viper.GetString("llm.ollama_host"),
		},
	}

	if err := s.validate(); err != nil {
		return settings{}, err
	}

	var err error
	if s.TTS.CacheDir, err = expandOrDefault(s.TTS.CacheDir, func() (string, error) {
		return gap.NewScope(gap.User, appName).CacheDir()
	}); err != nil {
		return settings{}, err
	}
	if s.TTS.GoogleCredentialsFile, err = homedir.Expand(s.TTS.GoogleCredentialsFile); err != nil {
		return settings{}, err
	}

	if s.Secrets, err = loadSecrets(); err != nil {
		return settings{}, err
	}
	if s.TTS.GoogleCredentialsFile == "" {
		s.TTS.GoogleCredentialsFile = s.Secrets.GoogleCredentials
	}
	if s.LLM.OllamaHost == "" {
		s.LLM.OllamaHost = s.Secrets.OllamaHost
	}
	return s, nil
}

func (s settings) validate() error {
	if err := tts.ValidateRate(s.TTS.Rate); err != nil {
		return fmt.Errorf("tts.rate: %w", err)
	}
	if s.TTS.Pause < 0 || s.TTS.Pause > 10*time.Second {
		return fmt.Errorf("tts.pause must be between 0 and 10s, got %v", s.TTS.Pause)
	}
	if s.TTS.Concurrency < 1 || s.TTS.Concurrency > 64 {
		return fmt.Errorf("tts.concurrency must be between 1 and 64, got %d", s.TTS.Concurrency)
	}
	if s.TTS.CacheMaxSize < 1 || s.TTS.CacheMaxSize > 10000 {
		return fmt.Errorf("tts.cache.max_size must be between 1 and 10000 MB, got %d", s.TTS.CacheMaxSize)
	}
	if s.Audio.SampleRate < 8000 || s.Audio.SampleRate > 48000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 48000, got %d", s.Audio.SampleRate)
	}
	if s.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", s.LLM.MaxTokens)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %.2f", s.LLM.Temperature)
	}
	return nil
}

// convoSettings returns the generator settings, keeping the provider's
// default model when none is configured.
func (s settings) convoSettings() convo.Settings {
	cs := convo.DefaultSettings()
	cs.Model = s.LLM.Model
	cs.MaxTokens = s.LLM.MaxTokens
	cs.Temperature = float32(s.LLM.Temperature)
	return cs
}

func (s settings) credentials() convo.Credentials {
	return convo.Credentials{
		AnthropicAPIKey:  s.Secrets.AnthropicAPIKey,
		AnthropicBaseURL: s.Secrets.AnthropicBaseURL,
		OpenAIAPIKey:     s.Secrets.OpenAIAPIKey,
		OpenAIBaseURL:    s.Secrets.OpenAIBaseURL,
		OllamaHost:       s.LLM.OllamaHost,
	}
}

func expandOrDefault(path string, def func() (string, error)) (string, error) {
	if path == "" {
		return def()
	}
	return homedir.Expand(path)
}
