package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/analytics"
	"github.com/thevectorguy/conversa-ai/pkg/dataset"
	"github.com/thevectorguy/conversa-ai/pkg/sentiment"
)

// NewStatsCommand creates the 'stats' command.
func NewStatsCommand(deps *EngineDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEngineDeps()
	}

	cmd := &cobra.Command{
		Use:   "stats <dataset.json>",
		Short: "Score a dataset and aggregate agent and article statistics",
		Long: `Score every message in a dataset and compute aggregate statistics:
per-agent message counts, average word counts, confidence, and sentiment
distribution; per-article transcript and message counts; and dataset-wide
totals. Transcripts without an article URL aggregate under the "unknown"
bucket so every bucket total sums to the dataset total.

Examples:
  # Aggregate a dataset
  conversa stats dataset.json

  # Machine-readable output
  conversa stats dataset.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), deps, args[0])
		},
	}

	return cmd
}

func runStats(ctx context.Context, deps *EngineDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw, err := dataset.LoadFile(path)
	if err != nil {
		return err
	}

	engine := deps.BuildEngine(cfg, newLogger(cfg))
	result, err := engine.Stats(ctx, raw)
	if err != nil {
		return err
	}

	switch resolveFormat(outputFormat, cfg) {
	case config.OutputFormatJSON:
		return outputJSONIndent(result)
	case config.OutputFormatYAML:
		return outputYAMLDoc(result)
	default:
		return outputStatsText(result)
	}
}

func outputStatsText(r *analytics.StatsResult) error {
	fmt.Printf("Transcripts:       %d\n", r.Summary.TotalTranscripts)
	fmt.Printf("Messages:          %d\n", r.Summary.TotalMessages)
	fmt.Printf("Unique articles:   %d\n", r.Summary.UniqueArticles)
	fmt.Printf("Msgs/transcript:   %.2f\n", r.Summary.AvgMessagesPerTranscript)
	if r.Summary.SourceAgreementRate > 0 {
		fmt.Printf("Source agreement:  %.2f\n", r.Summary.SourceAgreementRate)
	}
	if r.Summary.DegradedMessages > 0 {
		fmt.Printf("Degraded messages: %d\n", r.Summary.DegradedMessages)
	}

	fmt.Println("\nDistribution:")
	for _, l := range []sentiment.Label{sentiment.LabelPositive, sentiment.LabelNeutral, sentiment.LabelNegative} {
		fmt.Printf("  %-10s %d\n", l, r.Summary.SentimentDistribution[l])
	}

	if len(r.Agents) > 0 {
		fmt.Println("\nAgents:")
		for _, a := range r.Agents {
			fmt.Printf("  %-10s %5d messages  avg words %6.2f  avg confidence %.2f  (%d transcripts)\n",
				a.Agent, a.MessageCount, a.AvgWordCount, a.AvgConfidence, a.TranscriptCount)
		}
	}

	if len(r.Articles) > 0 {
		fmt.Println("\nArticles:")
		for _, a := range r.Articles {
			fmt.Printf("  %-50s %4d transcripts %5d messages\n", a.ArticleURL, a.TranscriptCount, a.MessageCount)
		}
	}

	printDiagnostics(r.Diagnostics)
	printCapturedErrors(r.Errors)

	return nil
}
