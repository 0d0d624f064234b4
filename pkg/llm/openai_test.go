package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModelJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    summarizeResponse
	}{
		{
			name:  "clean json",
			input: `{"summary": "They discussed the article.", "article_url": "https://example.com"}`,
			want:  summarizeResponse{Summary: "They discussed the article.", ArticleURL: "https://example.com"},
		},
		{
			name:  "json wrapped in prose",
			input: "Here is the result:\n{\"summary\": \"Short recap.\", \"article_url\": \"\"}\nDone.",
			want:  summarizeResponse{Summary: "Short recap."},
		},
		{
			name:  "json in code fence",
			input: "```json\n{\"summary\": \"Recap.\", \"article_url\": \"\"}\n```",
			want:  summarizeResponse{Summary: "Recap."},
		},
		{
			name:    "empty output",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no json at all",
			input:   "I could not produce a summary.",
			wantErr: true,
		},
		{
			name:    "broken json",
			input:   `{"summary": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out summarizeResponse
			err := decodeModelJSON(tt.input, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestGenerateSchema_Compliance(t *testing.T) {
	schema := generateSchema[summarizeResponse]()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "summary")
	assert.Contains(t, props, "article_url")

	required, ok := schema["required"].([]string)
	if !ok {
		// The reflector may emit []interface{} after the JSON round trip.
		raw, isSlice := schema["required"].([]interface{})
		require.True(t, isSlice)
		for _, r := range raw {
			required = append(required, r.(string))
		}
	}
	assert.ElementsMatch(t, []string{"summary", "article_url"}, required)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt([]string{"agent_1: hello", "agent_2: hi there"})

	assert.Contains(t, prompt, "[1] agent_1: hello")
	assert.Contains(t, prompt, "[2] agent_2: hi there")
}

func TestBuildPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("x", 10_000)
	prompt := buildPrompt([]string{long, long, long, long})

	assert.LessOrEqual(t, len(prompt), maxPromptChars)
	assert.Contains(t, prompt, "[1]")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(fmt.Errorf("429 Too Many Requests")))
	assert.True(t, isTransient(fmt.Errorf("rate limit exceeded")))
	assert.True(t, isTransient(fmt.Errorf("500 Internal Server Error")))
	assert.True(t, isTransient(fmt.Errorf("server_error: try again")))

	assert.False(t, isTransient(fmt.Errorf("401 Unauthorized")))
	assert.False(t, isTransient(fmt.Errorf("invalid request")))
	assert.False(t, isTransient(nil))
}

func TestMockSummarizer(t *testing.T) {
	m := &MockSummarizer{Result: &Summary{Text: "recap", ArticleURL: "https://example.com"}}

	got, err := m.Summarize(context.Background(), []string{"msg"})
	require.NoError(t, err)
	assert.Equal(t, "recap", got.Text)
	assert.Equal(t, 1, m.Calls)

	m.Err = errors.New("down")
	_, err = m.Summarize(context.Background(), []string{"msg"})
	assert.Error(t, err)
	assert.Equal(t, 2, m.Calls)
}

func TestMockSummarizer_RespectsContext(t *testing.T) {
	m := &MockSummarizer{Result: &Summary{Text: "recap"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Summarize(ctx, []string{"msg"})
	assert.ErrorIs(t, err, context.Canceled)
}
