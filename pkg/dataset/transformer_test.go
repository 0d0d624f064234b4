package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformer_Flatten(t *testing.T) {
	tr := NewTransformer()
	in := []Transcript{
		{
			ID:         "t-1",
			ArticleURL: "https://example.com/news/1",
			Config:     "A",
			Messages: []Message{
				{Text: "Great article!", Agent: "agent_1"},
				{Text: "I disagree completely.", Agent: "agent_2"},
			},
		},
		{
			ID: "t-2",
			Messages: []Message{
				{Text: "one word reply", Agent: "agent_1"},
			},
		},
	}

	rows, err := tr.Flatten(in)
	require.NoError(t, err)
	require.Len(t, rows, 3, "row count equals total surviving messages")

	assert.Equal(t, "t-1", rows[0].TranscriptID)
	assert.Equal(t, 0, rows[0].Ordinal)
	assert.Equal(t, 1, rows[1].Ordinal)
	assert.Equal(t, "t-2", rows[2].TranscriptID)
	assert.Equal(t, 0, rows[2].Ordinal, "ordinals restart per transcript")

	assert.Equal(t, "https://example.com/news/1", rows[0].ArticleURL)
	assert.Equal(t, "A", rows[1].Config)
	assert.Equal(t, len("Great article!"), rows[0].MessageLength)
	assert.Equal(t, 2, rows[0].WordCount)
	assert.Equal(t, 3, rows[2].WordCount)
}

func TestTransformer_Flatten_Empty(t *testing.T) {
	tr := NewTransformer()

	rows, err := tr.Flatten(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTransformer_Flatten_Deterministic(t *testing.T) {
	tr := NewTransformer()
	in := []Transcript{{
		ID: "t-1",
		Messages: []Message{
			{Text: "first", Agent: "agent_1"},
			{Text: "second", Agent: "agent_2"},
			{Text: "third", Agent: "agent_1"},
		},
	}}

	first, err := tr.Flatten(in)
	require.NoError(t, err)
	second, err := tr.Flatten(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i, r := range first {
		assert.Equal(t, i, r.Ordinal)
	}
}

func TestDecode(t *testing.T) {
	raw, err := Decode([]byte(`{"t-1": {"content": []}, "t-2": [1,2]}`))
	require.NoError(t, err)
	assert.Len(t, raw, 2, "malformed payloads pass through for the validator to reject")

	_, err = Decode([]byte(`[1, 2, 3]`))
	assert.Error(t, err, "top level must be an object")
}
