package sentiment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/thevectorguy/conversa-ai/pkg/errors"
)

func TestHTTPModel_ClassifyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"label": "POSITIVE", "confidence": 0.93}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second)
	v, err := m.ClassifyText(context.Background(), "Great article!")
	require.NoError(t, err)

	assert.Equal(t, LabelPositive, v.Label)
	assert.Equal(t, 0.93, v.Confidence)
}

func TestHTTPModel_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			m := NewHTTPModel(srv.URL, time.Second)
			_, err := m.ClassifyText(context.Background(), "text")
			require.Error(t, err)
			assert.True(t, cverrors.IsExternalService(err))
		})
	}
}

func TestHTTPModel_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{broken`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second)
	_, err := m.ClassifyText(context.Background(), "text")
	assert.True(t, cverrors.IsExternalService(err))
}

func TestHTTPModel_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise r.Context() never fires
		// and srv.Close() deadlocks waiting on this handler.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.ClassifyText(ctx, "text")
	assert.Error(t, err)
}

func TestNormalizeModelLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"positive", LabelPositive},
		{"POSITIVE", LabelPositive},
		{"LABEL_2", LabelPositive},
		{"very_negative", LabelNegative},
		{"neg", LabelNegative},
		{"LABEL_0", LabelNegative},
		{"neutral", LabelNeutral},
		{"LABEL_1", LabelNeutral},
		{"anything else", LabelNeutral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeModelLabel(tt.in), "label %q", tt.in)
	}
}

func TestHTTPModel_ConfidenceClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"label": "negative", "confidence": 1.7}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second)
	v, err := m.ClassifyText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Confidence)
}
