// Package dataset turns raw, possibly malformed transcript JSON into a
// validated, cleaned, flattened record set. Untyped payloads never cross the
// validation boundary: the validator converts each entry into tagged structs
// or reports it with a specific reason.
package dataset

import "encoding/json"

// RawDataset is the boundary input: a mapping from transcript id to an
// undecoded transcript payload.
type RawDataset map[string]json.RawMessage

// Canonical agent roles discovered in the source data.
const (
	Agent1 = "agent_1"
	Agent2 = "agent_2"
)

// DefaultTurnRating is filled in when the source data omits a turn rating.
const DefaultTurnRating = "Good"

// Message is one validated turn within a transcript.
type Message struct {
	// Text is the message body. Non-empty after cleaning; messages that
	// normalize to empty are dropped by the Cleaner.
	Text string `json:"message"`

	// Agent is the canonicalized agent identifier (agent_1 or agent_2 when
	// recognizable). Unrecognized identifiers are kept as-is and flagged.
	Agent string `json:"agent"`

	// AgentFlagged is set when the source agent id was not one of the two
	// canonical roles.
	AgentFlagged bool `json:"agent_flagged,omitempty"`

	// SourceSentiment is the sentiment label present in the raw input, if any.
	// It is never trusted as ground truth for aggregation.
	SourceSentiment string `json:"sentiment,omitempty"`

	// KnowledgeSources are the optional knowledge-source tags from the input.
	KnowledgeSources []string `json:"knowledge_source,omitempty"`

	// TurnRating is the optional turn-rating tag, defaulted to "Good".
	TurnRating string `json:"turn_rating,omitempty"`
}

// Transcript is one validated exchange between two agents about one article.
type Transcript struct {
	ID         string    `json:"transcript_id"`
	ArticleURL string    `json:"article_url,omitempty"`
	Config     string    `json:"config,omitempty"`
	Messages   []Message `json:"content"`
}

// InvalidReason identifies why a raw entry was rejected.
type InvalidReason string

const (
	ReasonNotAMapping        InvalidReason = "not_a_mapping"
	ReasonMissingContent     InvalidReason = "missing_content"
	ReasonMissingMessage     InvalidReason = "missing_message"
	ReasonMissingAgent       InvalidReason = "missing_agent"
	ReasonEmptyAfterCleaning InvalidReason = "empty_after_cleaning"
)

// InvalidTranscript records an excluded entry. Invalid entries are reported,
// never silently skipped.
type InvalidTranscript struct {
	ID     string        `json:"transcript_id"`
	Reason InvalidReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

// CleanStats accumulates per-transcript cleaning diagnostics.
type CleanStats struct {
	// Dropped counts messages removed because their text normalized to empty.
	Dropped int `json:"dropped"`

	// Deduplicated counts exact transcript+agent+text duplicates removed.
	Deduplicated int `json:"deduplicated"`

	// FlaggedAgents counts messages whose agent id was not a canonical role.
	FlaggedAgents int `json:"flagged_agents,omitempty"`
}

// Row is one flattened record: a single message annotated with its transcript
// context. Rows are emitted by the Transformer and read immutably downstream.
type Row struct {
	TranscriptID     string   `json:"transcript_id"`
	ArticleURL       string   `json:"article_url,omitempty"`
	Config           string   `json:"config,omitempty"`
	Ordinal          int      `json:"message_id"`
	Text             string   `json:"message"`
	Agent            string   `json:"agent"`
	AgentFlagged     bool     `json:"agent_flagged,omitempty"`
	SourceSentiment  string   `json:"sentiment,omitempty"`
	KnowledgeSources []string `json:"knowledge_source,omitempty"`
	TurnRating       string   `json:"turn_rating,omitempty"`
	MessageLength    int      `json:"message_length"`
	WordCount        int      `json:"word_count"`
}
