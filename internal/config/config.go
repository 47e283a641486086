// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type SourceConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`

	// RetryMaxElapsed caps the exponential backoff applied to transient
	// listing/download failures.
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
}

type StorageConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ServiceKey   string        `yaml:"service_key"`
	Bucket       string        `yaml:"bucket"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type AIConfig struct {
	Provider        string `yaml:"provider"` // openai | gemini
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	TranscribeModel string `yaml:"transcribe_model"`
	SummaryModel    string `yaml:"summary_model"`

	// MaxPromptTokens bounds the transcript passed to the summary model.
	MaxPromptTokens int `yaml:"max_prompt_tokens"`
}

type CallbackConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type PipelineConfig struct {
	// MaxFiles stops a run before listing once the record store already
	// holds this many rows. Zero disables the guard.
	MaxFiles int `yaml:"max_files"`
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Source   SourceConfig   `yaml:"source"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Callback CallbackConfig `yaml:"callback"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Admin    AdminConfig    `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnvFallbacks()
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Source.BaseURL == "" {
		return nil, errors.New("source.base_url is required")
	}
	if cfg.Storage.BaseURL == "" || cfg.Storage.ServiceKey == "" || cfg.Storage.Bucket == "" {
		return nil, errors.New("storage.base_url, storage.service_key and storage.bucket are required")
	}
	if cfg.Callback.BaseURL == "" {
		return nil, errors.New("callback.base_url is required")
	}
	switch strings.ToLower(cfg.AI.Provider) {
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return nil, errors.New("ai.gemini_key is required when ai.provider is gemini")
		}
	default:
		if cfg.AI.OpenAIKey == "" {
			return nil, errors.New("ai.openai_key is required")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// applyEnvFallbacks lets secrets live in the environment (or a .env file)
// instead of the YAML file.
func (c *Config) applyEnvFallbacks() {
	envOr(&c.Database.URL, "DATABASE_URL")
	envOr(&c.AI.OpenAIKey, "OPENAI_API_KEY")
	envOr(&c.AI.GeminiKey, "GEMINI_API_KEY")
	envOr(&c.Storage.BaseURL, "SUPABASE_STORAGE_URL")
	envOr(&c.Storage.ServiceKey, "SUPABASE_KEY")
	envOr(&c.Source.BaseURL, "RECORDINGS_API_BASE_URL")
	envOr(&c.Source.Token, "RECORDINGS_API_TOKEN")
	envOr(&c.Callback.BaseURL, "CALLBACK_BASE_URL")
	envOr(&c.Callback.Token, "CALLBACK_TOKEN")
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = time.Hour
	}
	if c.Source.RetryMaxElapsed <= 0 {
		c.Source.RetryMaxElapsed = 15 * time.Second
	}
	if c.Storage.SignedURLTTL <= 0 {
		c.Storage.SignedURLTTL = time.Hour
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.TranscribeModel == "" {
		c.AI.TranscribeModel = "whisper-1"
	}
	if c.AI.SummaryModel == "" {
		c.AI.SummaryModel = "gpt-4o-mini"
	}
	if c.AI.MaxPromptTokens <= 0 {
		c.AI.MaxPromptTokens = 8000
	}
	if c.Pipeline.MaxFiles < 0 {
		c.Pipeline.MaxFiles = 0
	}
}

func envOr(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}
