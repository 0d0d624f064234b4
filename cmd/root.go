// Package cmd provides the CLI commands for the conversa tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/analytics"
	"github.com/thevectorguy/conversa-ai/pkg/llm"
	"github.com/thevectorguy/conversa-ai/pkg/logging"
	"github.com/thevectorguy/conversa-ai/pkg/observability"
	"github.com/thevectorguy/conversa-ai/pkg/sentiment"
)

// Persistent flags
var (
	outputFormat string
	debug        bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "conversa",
	Short: "Transcript analytics engine for two-agent article discussions",
	Long: `conversa ingests chat transcripts between two agents discussing news
articles, validates and cleans them, flattens them into per-message records,
scores sentiment with a hybrid lexical+model pipeline, and aggregates
statistics per agent, per article, and across the dataset.

All input is treated as untrusted: malformed transcripts are excluded and
reported, never silently dropped, and a failing transcript never aborts the
rest of a batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewTransformCommand(nil))
	rootCmd.AddCommand(NewAnalyzeCommand(nil))
	rootCmd.AddCommand(NewStatsCommand(nil))
	rootCmd.AddCommand(NewVersionCommand())
}

// EngineDeps holds the dependencies for the pipeline commands. Tests inject
// their own config loader and engine builder.
type EngineDeps struct {
	LoadConfig  func() (*config.Config, error)
	BuildEngine func(cfg *config.Config, logger logging.Logger) *analytics.Engine
}

// DefaultEngineDeps returns the default dependencies for production use.
func DefaultEngineDeps() *EngineDeps {
	return &EngineDeps{
		LoadConfig:  config.LoadConfig,
		BuildEngine: buildEngine,
	}
}

// newLogger builds the CLI logger from configuration and the debug flag.
func newLogger(cfg *config.Config) logging.Logger {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	return logging.NewLogger(&logging.Config{
		Level:       logging.Level(level),
		ServiceName: "conversa",
		JSONFormat:  cfg.Logging.JSONFormat,
	})
}

// buildEngine assembles the engine from configuration: scorer with an
// optional HTTP model and cache backend, and an optional OpenAI summarizer.
func buildEngine(cfg *config.Config, logger logging.Logger) *analytics.Engine {
	var model sentiment.Model
	if cfg.Sentiment.ModelEndpoint != "" {
		model = sentiment.NewHTTPModel(cfg.Sentiment.ModelEndpoint, cfg.Sentiment.Timeout)
	}

	var cache sentiment.Cache
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		cache = sentiment.NewRedisCache(client, cfg.Cache.TTL)
	} else {
		cache = sentiment.NewLRUCache(cfg.Cache.Size)
	}

	retry := sentiment.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Sentiment.Retries

	metrics := observability.DefaultMetrics()

	scorer := sentiment.NewScorer(sentiment.Options{
		Policy:  sentiment.PolicyFromConfig(cfg.Sentiment),
		Model:   model,
		Cache:   cache,
		Retry:   retry,
		Timeout: cfg.Sentiment.Timeout,
		Workers: cfg.Workers.Max,
		Logger:  logger,
		Metrics: metrics,
	})

	var summarizer llm.Summarizer
	if cfg.Summarizer.APIKey != "" {
		summarizer = llm.NewOpenAISummarizer(cfg.Summarizer.APIKey, cfg.Summarizer.Model, cfg.Summarizer.Retries)
	}

	return analytics.NewEngine(analytics.Options{
		Scorer:            scorer,
		Summarizer:        summarizer,
		SummarizerTimeout: cfg.Summarizer.Timeout,
		Logger:            logger,
		Metrics:           metrics,
	})
}
