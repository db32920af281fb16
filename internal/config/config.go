package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const (
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds the process-wide settings. It is loaded once at startup.
type Config struct {
	Provider        string `mapstructure:"provider"`
	Model           string `mapstructure:"model"`
	Project         string `mapstructure:"project"`
	Location        string `mapstructure:"location"`
	CredentialsFile string `mapstructure:"credentials_file"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	OpenAIBaseURL   string `mapstructure:"openai_base_url"`
	OllamaURL       string `mapstructure:"ollama_url"`
	Port            string `mapstructure:"port"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
	LogLevel        string `mapstructure:"log_level"`
}

// env names per key; the first one set wins
var envBindings = map[string][]string{
	"provider":         {"EXTRACTION_PROVIDER"},
	"model":            {"EXTRACTION_MODEL"},
	"project":          {"GCLOUD_PROJECT", "GOOGLE_CLOUD_PROJECT"},
	"location":         {"GCLOUD_LOCATION"},
	"credentials_file": {"GOOGLE_APPLICATION_CREDENTIALS"},
	"gemini_api_key":   {"GEMINI_API_KEY"},
	"openai_api_key":   {"OPENAI_API_KEY"},
	"openai_base_url":  {"OPENAI_BASE_URL"},
	"ollama_url":       {"OLLAMA_URL", "OLLAMA_HOST"},
	"port":             {"PORT"},
	"max_body_bytes":   {"MAX_BODY_BYTES"},
	"log_level":        {"LOG_LEVEL"},
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind command flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("provider", ProviderVertex)
	v.SetDefault("location", "us-central1")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("port", "8888")
	v.SetDefault("max_body_bytes", 25<<20)
	v.SetDefault("log_level", "info")

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	return v
}

// Load reads the optional config file and unmarshals the settings.
// With an empty cfgFile, config.yaml in the working directory is used if present.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return &cfg, nil
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderVertex, ProviderGemini:
		return "gemini-1.5-pro"
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderOllama:
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

// Validate checks that the selected provider has what it needs
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderVertex:
		if c.Project == "" {
			return fmt.Errorf("GCLOUD_PROJECT must be set for the %s provider", c.Provider)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set for the %s provider", c.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set for the %s provider", c.Provider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}

	return nil
}

// SlogLevel maps log_level to a slog.Level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
