package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// rawTranscript mirrors the expected payload shape at the boundary. Fields the
// engine does not know about are ignored.
type rawTranscript struct {
	ArticleURL string            `json:"article_url"`
	Config     string            `json:"config"`
	Content    []json.RawMessage `json:"content"`
}

// rawMessage mirrors one content element. Message and Agent are decoded as
// loose JSON values so that wrong types produce a reported reason instead of
// a decode error.
type rawMessage struct {
	Message         interface{} `json:"message"`
	Agent           interface{} `json:"agent"`
	Sentiment       string      `json:"sentiment"`
	KnowledgeSource []string    `json:"knowledge_source"`
	TurnRating      string      `json:"turn_rating"`
}

// Validator checks raw transcript entries for required shape before anything
// downstream touches them.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate converts each raw entry into a typed Transcript or records it as
// invalid with a specific reason. Valid transcripts are returned ordered by
// transcript id so that repeated runs over the same input are deterministic.
func (v *Validator) Validate(raw RawDataset) ([]Transcript, []InvalidTranscript) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	valid := make([]Transcript, 0, len(raw))
	var invalid []InvalidTranscript

	for _, id := range ids {
		t, reason, detail := v.validateEntry(id, raw[id])
		if reason != "" {
			invalid = append(invalid, InvalidTranscript{ID: id, Reason: reason, Detail: detail})
			continue
		}
		valid = append(valid, *t)
	}

	return valid, invalid
}

// validateEntry validates one raw payload. A non-empty reason means the entry
// is excluded.
func (v *Validator) validateEntry(id string, payload json.RawMessage) (*Transcript, InvalidReason, string) {
	var probe interface{}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, ReasonNotAMapping, fmt.Sprintf("undecodable payload: %v", err)
	}
	if _, ok := probe.(map[string]interface{}); !ok {
		return nil, ReasonNotAMapping, fmt.Sprintf("payload is %T, expected an object", probe)
	}

	var rt rawTranscript
	if err := json.Unmarshal(payload, &rt); err != nil {
		return nil, ReasonMissingContent, fmt.Sprintf("content is not a sequence: %v", err)
	}
	if len(rt.Content) == 0 {
		return nil, ReasonMissingContent, "content is missing or empty"
	}

	t := &Transcript{
		ID:         id,
		ArticleURL: strings.TrimSpace(rt.ArticleURL),
		Config:     rt.Config,
		Messages:   make([]Message, 0, len(rt.Content)),
	}

	for i, elem := range rt.Content {
		var rm rawMessage
		if err := json.Unmarshal(elem, &rm); err != nil {
			return nil, ReasonMissingMessage, fmt.Sprintf("content[%d] is not an object: %v", i, err)
		}

		text, ok := rm.Message.(string)
		if !ok || text == "" {
			return nil, ReasonMissingMessage, fmt.Sprintf("content[%d] has no message string", i)
		}

		agent, ok := rm.Agent.(string)
		if !ok || agent == "" {
			return nil, ReasonMissingAgent, fmt.Sprintf("content[%d] has no agent field", i)
		}

		t.Messages = append(t.Messages, Message{
			Text:             text,
			Agent:            agent,
			SourceSentiment:  rm.Sentiment,
			KnowledgeSources: rm.KnowledgeSource,
			TurnRating:       rm.TurnRating,
		})
	}

	return t, "", ""
}
