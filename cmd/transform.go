package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/analytics"
	"github.com/thevectorguy/conversa-ai/pkg/dataset"
)

var transformShowRows bool

// NewTransformCommand creates the 'transform' command.
func NewTransformCommand(deps *EngineDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEngineDeps()
	}

	cmd := &cobra.Command{
		Use:   "transform <dataset.json>",
		Short: "Validate, clean, and flatten a transcript dataset",
		Long: `Transform a raw transcript dataset into a flat per-message record set.

The input file is a JSON object mapping transcript ids to transcript payloads.
Malformed entries are excluded and reported with a reason; the rest of the
dataset is processed normally. No sentiment scoring runs in this pass.

Examples:
  # Transform a dataset and show the counts
  conversa transform dataset.json

  # Emit the full flattened record set as JSON
  conversa transform dataset.json --rows --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().BoolVar(&transformShowRows, "rows", false, "Include flattened rows in the output")

	return cmd
}

func runTransform(ctx context.Context, deps *EngineDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw, err := dataset.LoadFile(path)
	if err != nil {
		return err
	}

	engine := deps.BuildEngine(cfg, newLogger(cfg))
	result, err := engine.Transform(ctx, raw)
	if err != nil {
		return err
	}

	if !transformShowRows {
		result.Rows = nil
	}

	switch resolveFormat(outputFormat, cfg) {
	case config.OutputFormatJSON:
		return outputJSONIndent(result)
	case config.OutputFormatYAML:
		return outputYAMLDoc(result)
	default:
		return outputTransformText(result)
	}
}

func outputTransformText(r *analytics.TransformResult) error {
	fmt.Printf("Run:         %s\n", r.RunID)
	fmt.Printf("Transcripts: %d\n", r.TranscriptCount)
	fmt.Printf("Messages:    %d\n", r.MessageCount)

	if len(r.Articles) > 0 {
		fmt.Println("\nArticles:")
		for _, a := range r.Articles {
			fmt.Printf("  %-50s %4d transcripts %5d messages\n", a.ArticleURL, a.TranscriptCount, a.MessageCount)
		}
	}

	printDiagnostics(r.Diagnostics)
	printCapturedErrors(r.Errors)

	if transformShowRows {
		fmt.Println("\nRows:")
		for _, row := range r.Rows {
			fmt.Printf("  %s[%d] %-8s %s\n", row.TranscriptID, row.Ordinal, row.Agent, row.Text)
		}
	}

	return nil
}

func printDiagnostics(diags map[string]dataset.CleanStats) {
	shown := false
	for id, st := range diags {
		if st.Dropped == 0 && st.Deduplicated == 0 && st.FlaggedAgents == 0 {
			continue
		}
		if !shown {
			fmt.Println("\nCleaning diagnostics:")
			shown = true
		}
		fmt.Printf("  %s: dropped=%d deduplicated=%d flagged_agents=%d\n",
			id, st.Dropped, st.Deduplicated, st.FlaggedAgents)
	}
}

func printCapturedErrors(errs []analytics.CapturedError) {
	if len(errs) == 0 {
		return
	}
	fmt.Println("\nErrors:")
	for _, e := range errs {
		id := e.TranscriptID
		if id == "" {
			id = "-"
		}
		fmt.Printf("  [%s] %s %s: %s\n", e.Stage, id, e.Code, e.Detail)
	}
}
