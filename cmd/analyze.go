package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/analytics"
	"github.com/thevectorguy/conversa-ai/pkg/sentiment"
)

var analyzeTranscriptID string

// NewAnalyzeCommand creates the 'analyze' command.
func NewAnalyzeCommand(deps *EngineDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEngineDeps()
	}

	cmd := &cobra.Command{
		Use:   "analyze <transcript.json>",
		Short: "Run the full analysis pipeline over one transcript",
		Long: `Analyze a single transcript: validate, clean, score sentiment per
message, aggregate per-agent verdicts, compare the two agents, and generate a
transcript summary.

The input file may be a single transcript payload or a dataset mapping; for a
mapping, the first transcript id in sorted order is analyzed unless --id
selects one. When summarization is disabled or fails, the summary field reads
"summary unavailable" and the analysis still completes.

Examples:
  # Analyze a single transcript file
  conversa analyze transcript.json

  # Analyze one transcript out of a dataset
  conversa analyze dataset.json --id t-8254

  # Machine-readable output
  conversa analyze transcript.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().StringVar(&analyzeTranscriptID, "id", "", "Transcript id to analyze when the input is a dataset")

	return cmd
}

func runAnalyze(ctx context.Context, deps *EngineDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	id, payload, err := selectTranscript(path, analyzeTranscriptID)
	if err != nil {
		return err
	}

	engine := deps.BuildEngine(cfg, newLogger(cfg))
	result, err := engine.Analyze(ctx, id, payload)
	if err != nil {
		return err
	}

	switch resolveFormat(outputFormat, cfg) {
	case config.OutputFormatJSON:
		return outputJSONIndent(result)
	case config.OutputFormatYAML:
		return outputYAMLDoc(result)
	default:
		return outputAnalyzeText(result)
	}
}

// selectTranscript reads the input file and picks one transcript payload. A
// top-level object that decodes as a dataset mapping selects by id, or the
// first id in sorted order; anything else is treated as one bare transcript.
func selectTranscript(path, wantID string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading input file: %w", err)
	}

	var mapping map[string]json.RawMessage
	if err := json.Unmarshal(data, &mapping); err == nil && looksLikeDataset(mapping) {
		if wantID != "" {
			payload, ok := mapping[wantID]
			if !ok {
				return "", nil, fmt.Errorf("transcript %q not found in %s", wantID, path)
			}
			return wantID, payload, nil
		}

		ids := make([]string, 0, len(mapping))
		for id := range mapping {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if len(ids) == 0 {
			return "", nil, fmt.Errorf("no transcripts in %s", path)
		}
		return ids[0], mapping[ids[0]], nil
	}

	if wantID == "" {
		wantID = "uploaded"
	}
	return wantID, data, nil
}

// looksLikeDataset distinguishes a dataset mapping from a bare transcript
// object, which also decodes as map[string]json.RawMessage but carries a
// content key.
func looksLikeDataset(m map[string]json.RawMessage) bool {
	if len(m) == 0 {
		return false
	}
	_, hasContent := m["content"]
	return !hasContent
}

func outputAnalyzeText(r *analytics.AnalyzeResult) error {
	fmt.Printf("Transcript:  %s\n", r.TranscriptID)
	fmt.Printf("Article:     %s\n", r.ArticleURL)
	fmt.Printf("Messages:    %d (agent_1: %d, agent_2: %d)\n",
		r.TotalMessages, r.Agent1Messages, r.Agent2Messages)

	agents := make([]string, 0, len(r.AgentSentiments))
	for a := range r.AgentSentiments {
		agents = append(agents, a)
	}
	sort.Strings(agents)

	fmt.Println("\nAgent sentiment:")
	for _, a := range agents {
		v := r.AgentSentiments[a]
		fmt.Printf("  %-10s %-8s confidence=%.2f polarity=%.2f (%d messages)\n",
			a, v.Label, v.Confidence, v.AveragePolarity, v.Analyzed)
	}

	fmt.Printf("\nDynamic:     %s (%s, polarity diff %.3f)\n",
		r.Comparison.Dynamic, r.Comparison.Alignment, r.Comparison.PolarityDifference)

	if len(r.SentimentDistribution) > 0 {
		fmt.Println("\nDistribution:")
		for _, l := range []string{"positive", "neutral", "negative"} {
			if n := r.SentimentDistribution[sentiment.Label(l)]; n > 0 {
				fmt.Printf("  %-10s %d\n", l, n)
			}
		}
	}
	if r.DegradedMessages > 0 {
		fmt.Printf("\nDegraded:    %d messages scored without the model signal\n", r.DegradedMessages)
	}

	fmt.Printf("\nSummary:\n  %s\n", r.TranscriptSummary)

	printDiagnostics(r.Diagnostics)
	printCapturedErrors(r.Errors)

	return nil
}
