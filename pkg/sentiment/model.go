package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cverrors "github.com/thevectorguy/conversa-ai/pkg/errors"
)

// ModelVerdict is the model-based classifier's output for one text.
type ModelVerdict struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Model is the external sentiment model collaborator. Implementations must
// honor context cancellation; a failure or timeout degrades scoring rather
// than failing the request.
type Model interface {
	// ClassifyText returns a label with the model's own confidence in [0,1].
	ClassifyText(ctx context.Context, text string) (ModelVerdict, error)

	// Name identifies the model implementation for logging.
	Name() string
}

// HTTPModel talks to a sentiment model service over HTTP. The service accepts
// {"text": ...} and responds with {"label": ..., "confidence": ...}.
type HTTPModel struct {
	endpoint string
	client   *http.Client
}

// NewHTTPModel creates an HTTP-backed model client. The per-call timeout is
// carried by the caller's context; the embedded client timeout is a backstop.
func NewHTTPModel(endpoint string, timeout time.Duration) *HTTPModel {
	return &HTTPModel{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the model name.
func (m *HTTPModel) Name() string {
	return "http"
}

// ClassifyText sends text to the model service and normalizes the response.
func (m *HTTPModel) ClassifyText(ctx context.Context, text string) (ModelVerdict, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return ModelVerdict{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return ModelVerdict{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return ModelVerdict{}, fmt.Errorf("%w: sentiment model call: %v", cverrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ModelVerdict{}, fmt.Errorf("%w: sentiment model rate limited", cverrors.ErrExternalService)
	}
	if resp.StatusCode != http.StatusOK {
		return ModelVerdict{}, fmt.Errorf("%w: sentiment model returned %d", cverrors.ErrExternalService, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return ModelVerdict{}, fmt.Errorf("%w: reading model response: %v", cverrors.ErrExternalService, err)
	}

	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return ModelVerdict{}, fmt.Errorf("%w: decoding model response: %v", cverrors.ErrExternalService, err)
	}

	return ModelVerdict{
		Label:      normalizeModelLabel(out.Label),
		Confidence: clamp(out.Confidence, 0, 1),
	}, nil
}

// normalizeModelLabel maps provider label spellings (POSITIVE, LABEL_2,
// very_negative, ...) onto the engine's three labels.
func normalizeModelLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "very_positive", "pos", "label_2":
		return LabelPositive
	case "negative", "very_negative", "neg", "label_0":
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// MockModel is a deterministic in-process model for tests and for running the
// engine without a deployed model service. It classifies by keyword.
type MockModel struct {
	// Fail forces every call to return an external service error.
	Fail bool

	// Confidence is the confidence reported for every verdict (default 0.9).
	Confidence float64
}

// NewMockModel creates a mock model.
func NewMockModel() *MockModel {
	return &MockModel{Confidence: 0.9}
}

// Name returns the model name.
func (m *MockModel) Name() string {
	return "mock"
}

// ClassifyText classifies with the lexical heuristic at fixed confidence,
// simulating a well-behaved model that usually agrees with the lexicon.
func (m *MockModel) ClassifyText(ctx context.Context, text string) (ModelVerdict, error) {
	if m.Fail {
		return ModelVerdict{}, fmt.Errorf("%w: mock model unavailable", cverrors.ErrExternalService)
	}
	if err := ctx.Err(); err != nil {
		return ModelVerdict{}, fmt.Errorf("%w: %v", cverrors.ErrExternalService, err)
	}

	conf := m.Confidence
	if conf == 0 {
		conf = 0.9
	}

	score := NewLexical().Score(text)
	return ModelVerdict{
		Label:      LabelFor(score, 0.05, -0.05),
		Confidence: conf,
	}, nil
}
