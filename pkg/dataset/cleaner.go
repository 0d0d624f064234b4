package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Cleaner normalizes message text, drops messages that clean to empty,
// deduplicates exact repeats, and canonicalizes agent identifiers. Each call
// emits a new transcript collection; inputs are never mutated in place.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean processes validated transcripts. Transcripts whose message sequence is
// empty after cleaning are excluded and reported, never silently dropped.
// The returned stats map carries per-transcript drop and dedup counts.
func (c *Cleaner) Clean(transcripts []Transcript) ([]Transcript, map[string]CleanStats, []InvalidTranscript) {
	cleaned := make([]Transcript, 0, len(transcripts))
	stats := make(map[string]CleanStats, len(transcripts))
	var excluded []InvalidTranscript

	for _, t := range transcripts {
		ct, st := c.cleanTranscript(t)
		stats[t.ID] = st
		if len(ct.Messages) == 0 {
			excluded = append(excluded, InvalidTranscript{
				ID:     t.ID,
				Reason: ReasonEmptyAfterCleaning,
				Detail: "no messages survived cleaning",
			})
			continue
		}
		cleaned = append(cleaned, ct)
	}

	return cleaned, stats, excluded
}

// cleanTranscript cleans one transcript, keeping the first occurrence of any
// exact agent+text duplicate in original order.
func (c *Cleaner) cleanTranscript(t Transcript) (Transcript, CleanStats) {
	out := Transcript{
		ID:         t.ID,
		ArticleURL: t.ArticleURL,
		Config:     t.Config,
		Messages:   make([]Message, 0, len(t.Messages)),
	}
	var st CleanStats

	seen := make(map[string]bool, len(t.Messages))
	for _, m := range t.Messages {
		text := NormalizeText(m.Text)
		if text == "" {
			st.Dropped++
			continue
		}

		agent, flagged := CanonicalAgent(m.Agent)
		if flagged {
			st.FlaggedAgents++
		}

		key := agent + "\x00" + text
		if seen[key] {
			st.Deduplicated++
			continue
		}
		seen[key] = true

		rating := m.TurnRating
		if rating == "" {
			rating = DefaultTurnRating
		}

		out.Messages = append(out.Messages, Message{
			Text:             text,
			Agent:            agent,
			AgentFlagged:     flagged,
			SourceSentiment:  m.SourceSentiment,
			KnowledgeSources: m.KnowledgeSources,
			TurnRating:       rating,
		})
	}

	return out, st
}

// NormalizeText applies NFC unicode normalization, strips control characters,
// collapses whitespace runs to single spaces, and trims surrounding whitespace.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	return b.String()
}

// CanonicalAgent maps source agent identifiers onto the two canonical roles.
// Variants like "Agent 1", "agent-2", or "agent1" are recognized; anything
// else is returned unchanged with flagged=true.
func CanonicalAgent(agent string) (string, bool) {
	if agent == Agent1 || agent == Agent2 {
		return agent, false
	}

	var b strings.Builder
	for _, r := range strings.ToLower(agent) {
		switch r {
		case ' ', '-', '_':
		default:
			b.WriteRune(r)
		}
	}

	switch b.String() {
	case "agent1":
		return Agent1, false
	case "agent2":
		return Agent2, false
	}

	return agent, true
}
