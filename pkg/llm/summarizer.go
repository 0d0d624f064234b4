// Package llm provides the client for the external summarization and
// article-URL extraction collaborator. The model itself is a black box: the
// engine sends message text in, validates text out, and never depends on the
// model's internals.
package llm

import "context"

// Summary is the collaborator's output for one transcript.
type Summary struct {
	// Text is the generated natural-language summary of the conversation.
	Text string `json:"summary"`

	// ArticleURL is the inferred article URL or topic, empty when the model
	// could not infer one.
	ArticleURL string `json:"article_url"`
}

// Summarizer generates a transcript summary and infers the article URL from
// the transcript's message sequence. Implementations must honor context
// cancellation and return an error on timeout or service failure; the caller
// substitutes a deterministic fallback.
type Summarizer interface {
	Summarize(ctx context.Context, messages []string) (*Summary, error)
}

// MockSummarizer is a canned summarizer for tests.
type MockSummarizer struct {
	Result *Summary
	Err    error

	// Calls counts invocations.
	Calls int
}

// Summarize returns the canned result or error.
func (m *MockSummarizer) Summarize(ctx context.Context, messages []string) (*Summary, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
