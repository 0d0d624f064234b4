// Package sentiment implements the hybrid sentiment scorer: a lexical polarity
// heuristic combined with a model-based classifier under a deterministic
// reconciliation policy, producing one confidence-bearing verdict per message
// and per agent.
package sentiment

import (
	"strings"

	"github.com/thevectorguy/conversa-ai/pkg/dataset"
)

// Label is a computed sentiment label.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// labelPrecedence is the final deterministic tie-break order for per-agent
// aggregation: positive > neutral > negative.
var labelPrecedence = map[Label]int{
	LabelPositive: 3,
	LabelNeutral:  2,
	LabelNegative: 1,
}

// SourceAgreement records the reconciliation outcome of the computed label
// against the source-provided label, for diagnostic agreement statistics.
// The computed label is authoritative regardless.
type SourceAgreement string

const (
	SourceAgree    SourceAgreement = "agree"
	SourceDisagree SourceAgreement = "disagree"
	SourceAbsent   SourceAgreement = "source_absent"
)

// Score is the computed sentiment verdict for one message.
type Score struct {
	// Label is the authoritative computed label.
	Label Label `json:"label"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence"`

	// LexicalScore is the continuous polarity signal in [-1,1].
	LexicalScore float64 `json:"lexical_score"`

	// ModelLabel and ModelConfidence carry the model signal when available.
	ModelLabel      Label   `json:"model_label,omitempty"`
	ModelConfidence float64 `json:"model_confidence,omitempty"`

	// Degraded is set when the model signal was unavailable and the lexical
	// signal was used alone.
	Degraded bool `json:"degraded_scoring,omitempty"`

	// SourceAgreement compares the computed label with the source label.
	SourceAgreement SourceAgreement `json:"source_agreement"`
}

// ScoredRow is a flattened message row plus its computed sentiment.
type ScoredRow struct {
	dataset.Row
	Score Score `json:"score"`
}

// AgentVerdict is the aggregate sentiment verdict for one agent.
type AgentVerdict struct {
	// Label is the mode of the agent's message labels, ties broken by higher
	// total summed confidence, then by label precedence.
	Label Label `json:"overall_sentiment"`

	// Confidence is the mean confidence of the agent's messages; exactly 0 for
	// an empty message set.
	Confidence float64 `json:"confidence"`

	// AveragePolarity is the mean lexical score of the agent's messages.
	AveragePolarity float64 `json:"average_polarity"`

	// Distribution counts the agent's messages per computed label.
	Distribution map[Label]int `json:"sentiment_distribution"`

	// Analyzed is the number of messages that contributed to the verdict.
	Analyzed int `json:"analyzed_messages"`
}

// NormalizeSourceLabel maps the free-form labels present in raw input data
// onto the engine's three labels for distribution and agreement reporting.
// Unmapped labels count as neutral. The second return is false when the
// source label is absent.
func NormalizeSourceLabel(s string) (Label, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "very positive", "very_positive", "excellent",
		"curious to dive deeper", "surprised", "happy":
		return LabelPositive, true
	case "negative", "very negative", "very_negative", "terrible", "angry":
		return LabelNegative, true
	default:
		return LabelNeutral, true
	}
}
