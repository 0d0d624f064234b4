package dataset

import (
	"fmt"
	"strings"

	cverrors "github.com/thevectorguy/conversa-ai/pkg/errors"
)

// Transformer flattens cleaned transcripts into one ordered row per message.
// It owns the canonical flattened record set for one ingestion pass; downstream
// components read it immutably.
type Transformer struct{}

// NewTransformer creates a new Transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Flatten emits one Row per surviving message. Ordinals are contiguous per
// transcript starting at 0, stable under the cleaned content order. The total
// row count must equal the sum of messages across all transcripts; a mismatch
// is an internal invariant violation and aborts the call.
func (tr *Transformer) Flatten(transcripts []Transcript) ([]Row, error) {
	expected := 0
	for _, t := range transcripts {
		expected += len(t.Messages)
	}

	rows := make([]Row, 0, expected)
	for _, t := range transcripts {
		for i, m := range t.Messages {
			rows = append(rows, Row{
				TranscriptID:     t.ID,
				ArticleURL:       t.ArticleURL,
				Config:           t.Config,
				Ordinal:          i,
				Text:             m.Text,
				Agent:            m.Agent,
				AgentFlagged:     m.AgentFlagged,
				SourceSentiment:  m.SourceSentiment,
				KnowledgeSources: m.KnowledgeSources,
				TurnRating:       m.TurnRating,
				MessageLength:    len(m.Text),
				WordCount:        len(strings.Fields(m.Text)),
			})
		}
	}

	if len(rows) != expected {
		return nil, fmt.Errorf("%w: flattened %d rows from %d messages",
			cverrors.ErrAggregationInconsistency, len(rows), expected)
	}

	return rows, nil
}
