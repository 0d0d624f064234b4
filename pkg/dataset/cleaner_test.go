package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "hello world", "hello world"},
		{"surrounding whitespace", "  hello  ", "hello"},
		{"collapses runs", "hello   \t world", "hello world"},
		{"newlines collapse", "line one\n\nline two", "line one line two"},
		{"control characters stripped", "hel\x00lo\x07", "hello"},
		{"whitespace only", " \t\n ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestCanonicalAgent(t *testing.T) {
	tests := []struct {
		in          string
		want        string
		wantFlagged bool
	}{
		{"agent_1", "agent_1", false},
		{"agent_2", "agent_2", false},
		{"agent1", "agent_1", false},
		{"Agent 1", "agent_1", false},
		{"agent-2", "agent_2", false},
		{"AGENT_2", "agent_2", false},
		{"moderator", "moderator", true},
		{"agent_3", "agent_3", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, flagged := CanonicalAgent(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFlagged, flagged)
		})
	}
}

func TestCleaner_Clean(t *testing.T) {
	c := NewCleaner()
	in := []Transcript{{
		ID:         "t-1",
		ArticleURL: "https://example.com/news/1",
		Messages: []Message{
			{Text: "  Great   article! ", Agent: "Agent 1"},
			{Text: "   ", Agent: "agent_2"},
			{Text: "Great article!", Agent: "agent 1"},
			{Text: "I disagree completely.", Agent: "agent_2"},
		},
	}}

	cleaned, stats, excluded := c.Clean(in)

	require.Len(t, cleaned, 1)
	assert.Empty(t, excluded)

	msgs := cleaned[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "Great article!", msgs[0].Text)
	assert.Equal(t, "agent_1", msgs[0].Agent)
	assert.Equal(t, "I disagree completely.", msgs[1].Text)
	assert.Equal(t, "agent_2", msgs[1].Agent)

	st := stats["t-1"]
	assert.Equal(t, 1, st.Dropped, "whitespace-only message dropped")
	assert.Equal(t, 1, st.Deduplicated, "normalized duplicate removed")
}

func TestCleaner_Clean_EmptyAfterCleaning(t *testing.T) {
	c := NewCleaner()
	in := []Transcript{{
		ID: "t-empty",
		Messages: []Message{
			{Text: "   ", Agent: "agent_1"},
			{Text: "\t\n", Agent: "agent_2"},
		},
	}}

	cleaned, stats, excluded := c.Clean(in)

	assert.Empty(t, cleaned)
	require.Len(t, excluded, 1)
	assert.Equal(t, "t-empty", excluded[0].ID)
	assert.Equal(t, ReasonEmptyAfterCleaning, excluded[0].Reason)
	assert.Equal(t, 2, stats["t-empty"].Dropped)
}

func TestCleaner_Clean_DuplicateAcrossAgentsKept(t *testing.T) {
	c := NewCleaner()
	in := []Transcript{{
		ID: "t-1",
		Messages: []Message{
			{Text: "interesting", Agent: "agent_1"},
			{Text: "interesting", Agent: "agent_2"},
		},
	}}

	cleaned, stats, _ := c.Clean(in)

	require.Len(t, cleaned, 1)
	assert.Len(t, cleaned[0].Messages, 2, "same text from different agents is not a duplicate")
	assert.Zero(t, stats["t-1"].Deduplicated)
}

func TestCleaner_Clean_FlagsUnknownAgents(t *testing.T) {
	c := NewCleaner()
	in := []Transcript{{
		ID: "t-1",
		Messages: []Message{
			{Text: "hello", Agent: "moderator"},
		},
	}}

	cleaned, stats, _ := c.Clean(in)

	require.Len(t, cleaned, 1)
	assert.True(t, cleaned[0].Messages[0].AgentFlagged)
	assert.Equal(t, "moderator", cleaned[0].Messages[0].Agent)
	assert.Equal(t, 1, stats["t-1"].FlaggedAgents)
}

func TestCleaner_Clean_DefaultsTurnRating(t *testing.T) {
	c := NewCleaner()
	in := []Transcript{{
		ID: "t-1",
		Messages: []Message{
			{Text: "hello", Agent: "agent_1"},
			{Text: "world", Agent: "agent_2", TurnRating: "Excellent"},
		},
	}}

	cleaned, _, _ := c.Clean(in)

	require.Len(t, cleaned, 1)
	assert.Equal(t, DefaultTurnRating, cleaned[0].Messages[0].TurnRating)
	assert.Equal(t, "Excellent", cleaned[0].Messages[1].TurnRating)
}

func TestCleaner_Clean_DoesNotMutateInput(t *testing.T) {
	c := NewCleaner()
	in := []Transcript{{
		ID: "t-1",
		Messages: []Message{
			{Text: "  spaced  ", Agent: "Agent 1"},
		},
	}}

	_, _, _ = c.Clean(in)

	assert.Equal(t, "  spaced  ", in[0].Messages[0].Text)
	assert.Equal(t, "Agent 1", in[0].Messages[0].Agent)
}
