// Package analytics composes the validation, cleaning, transformation,
// scoring, and aggregation stages into the engine's two externally visible
// operations, and computes agent-, article-, and dataset-level statistics.
package analytics

import (
	"fmt"
	"math"
	"sort"

	cverrors "github.com/thevectorguy/conversa-ai/pkg/errors"
	"github.com/thevectorguy/conversa-ai/pkg/sentiment"
)

// UnknownArticle is the sentinel bucket for rows without an article URL, so
// totals across all buckets always equal the dataset total.
const UnknownArticle = "unknown"

// AgentStatistics are the aggregate metrics for one agent. Presentation
// averages are rounded to 2 decimals; aggregation keeps full precision
// internally until the final rounding step.
type AgentStatistics struct {
	Agent                 string                  `json:"agent"`
	MessageCount          int                     `json:"message_count"`
	AvgWordCount          float64                 `json:"avg_word_count"`
	AvgConfidence         float64                 `json:"avg_sentiment_confidence"`
	SentimentDistribution map[sentiment.Label]int `json:"sentiment_distribution"`
	TranscriptCount       int                     `json:"transcript_count"`
}

// ArticleStatistics are the aggregate metrics for one article bucket.
type ArticleStatistics struct {
	ArticleURL            string                  `json:"article_url"`
	TranscriptCount       int                     `json:"transcript_count"`
	MessageCount          int                     `json:"message_count"`
	SentimentDistribution map[sentiment.Label]int `json:"sentiment_distribution"`
}

// DatasetSummary holds dataset-wide totals.
type DatasetSummary struct {
	TotalTranscripts         int                     `json:"total_transcripts"`
	TotalMessages            int                     `json:"total_messages"`
	UniqueArticles           int                     `json:"unique_articles"`
	AvgMessagesPerTranscript float64                 `json:"avg_messages_per_transcript"`
	SentimentDistribution    map[sentiment.Label]int `json:"sentiment_distribution"`

	// SourceAgreementRate is the fraction of messages whose computed label
	// agreed with a present source label. Diagnostic only.
	SourceAgreementRate float64 `json:"source_agreement_rate"`

	// DegradedMessages counts messages scored from the lexical signal alone.
	DegradedMessages int `json:"degraded_messages,omitempty"`

	// Description is an optional generated natural-language description,
	// validated non-empty before inclusion.
	Description string `json:"description,omitempty"`
}

// agentAccumulator keeps full-precision running sums per agent.
type agentAccumulator struct {
	messages    int
	words       int
	confidence  float64
	labels      map[sentiment.Label]int
	transcripts map[string]bool
}

// AggregateAgents groups scored rows by agent id. Zero-message agents are
// representable: statistics for an absent agent are all zeros with no
// division error (see ZeroAgentStatistics).
func AggregateAgents(rows []sentiment.ScoredRow) []AgentStatistics {
	accs := make(map[string]*agentAccumulator)
	for _, r := range rows {
		acc, ok := accs[r.Agent]
		if !ok {
			acc = &agentAccumulator{
				labels:      make(map[sentiment.Label]int),
				transcripts: make(map[string]bool),
			}
			accs[r.Agent] = acc
		}
		acc.messages++
		acc.words += r.WordCount
		acc.confidence += r.Score.Confidence
		acc.labels[r.Score.Label]++
		acc.transcripts[r.TranscriptID] = true
	}

	agents := make([]string, 0, len(accs))
	for a := range accs {
		agents = append(agents, a)
	}
	sort.Strings(agents)

	stats := make([]AgentStatistics, 0, len(agents))
	for _, a := range agents {
		acc := accs[a]
		stats = append(stats, AgentStatistics{
			Agent:                 a,
			MessageCount:          acc.messages,
			AvgWordCount:          round2(float64(acc.words) / float64(acc.messages)),
			AvgConfidence:         round2(acc.confidence / float64(acc.messages)),
			SentimentDistribution: acc.labels,
			TranscriptCount:       len(acc.transcripts),
		})
	}
	return stats
}

// ZeroAgentStatistics is the defined result for an agent with no messages.
func ZeroAgentStatistics(agent string) AgentStatistics {
	return AgentStatistics{
		Agent:                 agent,
		SentimentDistribution: make(map[sentiment.Label]int),
	}
}

// AggregateArticles groups scored rows by article URL. Rows without an
// article URL group under the "unknown" bucket. The bucket totals must sum to
// the dataset total; a mismatch aborts with an aggregation inconsistency.
func AggregateArticles(rows []sentiment.ScoredRow) ([]ArticleStatistics, error) {
	type articleAccumulator struct {
		messages    int
		labels      map[sentiment.Label]int
		transcripts map[string]bool
	}

	accs := make(map[string]*articleAccumulator)
	for _, r := range rows {
		url := r.ArticleURL
		if url == "" {
			url = UnknownArticle
		}
		acc, ok := accs[url]
		if !ok {
			acc = &articleAccumulator{
				labels:      make(map[sentiment.Label]int),
				transcripts: make(map[string]bool),
			}
			accs[url] = acc
		}
		acc.messages++
		acc.labels[r.Score.Label]++
		acc.transcripts[r.TranscriptID] = true
	}

	urls := make([]string, 0, len(accs))
	for u := range accs {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	total := 0
	stats := make([]ArticleStatistics, 0, len(urls))
	for _, u := range urls {
		acc := accs[u]
		total += acc.messages
		stats = append(stats, ArticleStatistics{
			ArticleURL:            u,
			TranscriptCount:       len(acc.transcripts),
			MessageCount:          acc.messages,
			SentimentDistribution: acc.labels,
		})
	}

	if total != len(rows) {
		return nil, fmt.Errorf("%w: article buckets sum to %d, dataset has %d rows",
			cverrors.ErrAggregationInconsistency, total, len(rows))
	}

	return stats, nil
}

// SummarizeDataset computes dataset-wide totals from the scored rows.
// Zero-item averages are exactly 0, never a division error.
func SummarizeDataset(rows []sentiment.ScoredRow, transcriptCount int) DatasetSummary {
	s := DatasetSummary{
		TotalTranscripts:      transcriptCount,
		TotalMessages:         len(rows),
		SentimentDistribution: make(map[sentiment.Label]int),
	}

	articles := make(map[string]bool)
	withSource, agreed := 0, 0
	for _, r := range rows {
		s.SentimentDistribution[r.Score.Label]++
		if r.ArticleURL != "" {
			articles[r.ArticleURL] = true
		}
		switch r.Score.SourceAgreement {
		case sentiment.SourceAgree:
			withSource++
			agreed++
		case sentiment.SourceDisagree:
			withSource++
		}
		if r.Score.Degraded {
			s.DegradedMessages++
		}
	}
	s.UniqueArticles = len(articles)

	if transcriptCount > 0 {
		s.AvgMessagesPerTranscript = round2(float64(len(rows)) / float64(transcriptCount))
	}
	if withSource > 0 {
		s.SourceAgreementRate = round2(float64(agreed) / float64(withSource))
	}

	return s
}

// Agent interaction comparison, derived from two agent verdicts.
type AgentComparison struct {
	PolarityDifference float64 `json:"polarity_difference"`
	Alignment          string  `json:"sentiment_alignment"`
	Dynamic            string  `json:"interaction_dynamic"`
}

// alignmentThreshold separates aligned from divergent agent polarities.
const alignmentThreshold = 0.2

// CompareAgents characterizes the dynamic between the two agents.
func CompareAgents(a, b sentiment.AgentVerdict) AgentComparison {
	diff := math.Abs(a.AveragePolarity - b.AveragePolarity)

	alignment := "aligned"
	if diff >= alignmentThreshold {
		alignment = "divergent"
	}

	return AgentComparison{
		PolarityDifference: round3(diff),
		Alignment:          alignment,
		Dynamic:            interactionDynamic(a.Label, b.Label),
	}
}

func interactionDynamic(a, b sentiment.Label) string {
	switch {
	case a == sentiment.LabelPositive && b == sentiment.LabelPositive:
		return "collaborative_positive"
	case a == sentiment.LabelNegative && b == sentiment.LabelNegative:
		return "collaborative_negative"
	case (a == sentiment.LabelPositive && b == sentiment.LabelNegative) ||
		(a == sentiment.LabelNegative && b == sentiment.LabelPositive):
		return "contrasting"
	case a == sentiment.LabelNeutral && b == sentiment.LabelNeutral:
		return "neutral_discussion"
	default:
		return "mixed_dynamic"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
