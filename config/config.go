// Package config provides configuration management for the conversa analytics engine.
// It supports loading configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".conversa"
	DefaultConfigFile = "config.yaml"

	// DefaultPositiveThreshold is the lexical score above which a message is
	// labeled positive. Mirrors the polarity cutoffs the engine was tuned against.
	DefaultPositiveThreshold = 0.10
	// DefaultNegativeThreshold is the lexical score below which a message is
	// labeled negative.
	DefaultNegativeThreshold = -0.10
	// DefaultAgreementBonus is added to the averaged confidence when both
	// sentiment signals agree on a label. Capped so confidence never exceeds 1.
	DefaultAgreementBonus = 0.10
	// DefaultDisagreementPenalty multiplies the model confidence when the two
	// signals disagree and the model verdict wins.
	DefaultDisagreementPenalty = 0.75

	DefaultSentimentTimeout  = 10 * time.Second
	DefaultSummarizerTimeout = 30 * time.Second
	DefaultRetries           = 2
	DefaultCacheSize         = 1024
	DefaultSummarizerModel   = "gpt-4o-mini"

	// MaxWorkerCap bounds the scoring worker pool regardless of configuration.
	MaxWorkerCap = 32
)

// SentimentConfig holds the sentiment scorer's tunables. The reconciliation
// constants are configuration rather than hidden magic numbers; the defaults
// above document the values the engine ships with.
type SentimentConfig struct {
	// PositiveThreshold labels lexical scores strictly above it as positive.
	PositiveThreshold float64 `yaml:"positive_threshold"`

	// NegativeThreshold labels lexical scores strictly below it as negative.
	NegativeThreshold float64 `yaml:"negative_threshold"`

	// AgreementBonus boosts the averaged confidence when both signals agree.
	AgreementBonus float64 `yaml:"agreement_bonus"`

	// DisagreementPenalty discounts the model confidence when the signals disagree.
	DisagreementPenalty float64 `yaml:"disagreement_penalty"`

	// ModelEndpoint is the HTTP endpoint of the sentiment model service.
	// Empty means no model signal: all scoring runs degraded on the lexical signal.
	ModelEndpoint string `yaml:"model_endpoint,omitempty"`

	// Timeout bounds each model call.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of re-attempts after a failed model call before
	// falling back to degraded scoring.
	Retries int `yaml:"retries"`
}

// SummarizerConfig holds settings for the summarization/extraction collaborator.
type SummarizerConfig struct {
	// APIKey authenticates against the summarization service. Empty disables
	// summarization; Analyze then reports "summary unavailable".
	APIKey string `yaml:"api_key,omitempty"`

	// Model is the model name passed to the service.
	Model string `yaml:"model"`

	// Timeout bounds each summarization call.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of re-attempts after a failed call.
	Retries int `yaml:"retries"`
}

// WorkersConfig sizes the message-scoring worker pool.
type WorkersConfig struct {
	// Max is the pool size. Zero means available parallelism (runtime.NumCPU),
	// always capped at MaxWorkerCap.
	Max int `yaml:"max"`
}

// CacheConfig configures the model-output cache owned by the sentiment scorer.
type CacheConfig struct {
	// Size is the maximum number of entries held by the in-memory LRU cache.
	Size int `yaml:"size"`

	// RedisAddr enables the Redis-backed cache when set (host:port). The
	// in-memory LRU is used otherwise.
	RedisAddr string `yaml:"redis_addr,omitempty"`

	// TTL is the expiry applied to Redis-cached entries. Ignored by the LRU.
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// LoggingConfig configures the engine logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSONFormat bool   `yaml:"json_format"`
}

// Config is the root engine configuration.
type Config struct {
	Sentiment    SentimentConfig  `yaml:"sentiment"`
	Summarizer   SummarizerConfig `yaml:"summarizer"`
	Workers      WorkersConfig    `yaml:"workers"`
	Cache        CacheConfig      `yaml:"cache"`
	Logging      LoggingConfig    `yaml:"logging"`
	OutputFormat OutputFormat     `yaml:"output_format"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Sentiment: SentimentConfig{
			PositiveThreshold:   DefaultPositiveThreshold,
			NegativeThreshold:   DefaultNegativeThreshold,
			AgreementBonus:      DefaultAgreementBonus,
			DisagreementPenalty: DefaultDisagreementPenalty,
			Timeout:             DefaultSentimentTimeout,
			Retries:             DefaultRetries,
		},
		Summarizer: SummarizerConfig{
			Model:   DefaultSummarizerModel,
			Timeout: DefaultSummarizerTimeout,
			Retries: DefaultRetries,
		},
		Cache: CacheConfig{
			Size: DefaultCacheSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		OutputFormat: OutputFormatText,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $CONVERSA_CONFIG_DIR if set, otherwise ~/.conversa
func ConfigDir() (string, error) {
	if dir := os.Getenv("CONVERSA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the engine configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.conversa/config.yaml or $CONVERSA_CONFIG_DIR/config.yaml)
// 3. Environment variables (CONVERSA_MODEL_ENDPOINT, CONVERSA_OPENAI_API_KEY, ...)
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// loadFromEnv overlays environment variables on the configuration.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("CONVERSA_MODEL_ENDPOINT"); v != "" {
		cfg.Sentiment.ModelEndpoint = v
	}
	if v := os.Getenv("CONVERSA_OPENAI_API_KEY"); v != "" {
		cfg.Summarizer.APIKey = v
	}
	if v := os.Getenv("CONVERSA_SUMMARIZER_MODEL"); v != "" {
		cfg.Summarizer.Model = v
	}
	if v := os.Getenv("CONVERSA_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("CONVERSA_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers.Max = n
		}
	}
	if v := os.Getenv("CONVERSA_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("CONVERSA_DEBUG"); v == "true" || v == "1" {
		cfg.Logging.Level = "debug"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Sentiment.PositiveThreshold <= 0 {
		return fmt.Errorf("sentiment.positive_threshold must be > 0, got %v", c.Sentiment.PositiveThreshold)
	}
	if c.Sentiment.NegativeThreshold >= 0 {
		return fmt.Errorf("sentiment.negative_threshold must be < 0, got %v", c.Sentiment.NegativeThreshold)
	}
	if c.Sentiment.AgreementBonus < 0 || c.Sentiment.AgreementBonus > 1 {
		return fmt.Errorf("sentiment.agreement_bonus must be in [0,1], got %v", c.Sentiment.AgreementBonus)
	}
	if c.Sentiment.DisagreementPenalty <= 0 || c.Sentiment.DisagreementPenalty > 1 {
		return fmt.Errorf("sentiment.disagreement_penalty must be in (0,1], got %v", c.Sentiment.DisagreementPenalty)
	}
	if c.Sentiment.Retries < 0 {
		return fmt.Errorf("sentiment.retries must be >= 0, got %d", c.Sentiment.Retries)
	}
	if c.Workers.Max < 0 {
		return fmt.Errorf("workers.max must be >= 0, got %d", c.Workers.Max)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be > 0, got %d", c.Cache.Size)
	}
	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return fmt.Errorf("invalid output_format %q (must be text, json, or yaml)", c.OutputFormat)
	}
	return nil
}

// Save writes the configuration to the config file, creating the directory if needed.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
