package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/dataset"
)

func testPolicy() ReconcilePolicy {
	return ReconcilePolicy{
		PositiveThreshold:   config.DefaultPositiveThreshold,
		NegativeThreshold:   config.DefaultNegativeThreshold,
		AgreementBonus:      config.DefaultAgreementBonus,
		DisagreementPenalty: config.DefaultDisagreementPenalty,
	}
}

func TestReconcile(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name         string
		lexScore     float64
		model        *ModelVerdict
		wantLabel    Label
		wantDegraded bool
	}{
		{
			name:      "signals agree positive",
			lexScore:  0.6,
			model:     &ModelVerdict{Label: LabelPositive, Confidence: 0.8},
			wantLabel: LabelPositive,
		},
		{
			name:      "signals disagree, model wins",
			lexScore:  0.6,
			model:     &ModelVerdict{Label: LabelNegative, Confidence: 0.8},
			wantLabel: LabelNegative,
		},
		{
			name:         "model unavailable degrades to lexical",
			lexScore:     -0.5,
			model:        nil,
			wantLabel:    LabelNegative,
			wantDegraded: true,
		},
		{
			name:         "degraded neutral",
			lexScore:     0.0,
			model:        nil,
			wantLabel:    LabelNeutral,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Reconcile(policy, tt.lexScore, tt.model)
			assert.Equal(t, tt.wantLabel, s.Label)
			assert.Equal(t, tt.wantDegraded, s.Degraded)
			assert.GreaterOrEqual(t, s.Confidence, 0.0)
			assert.LessOrEqual(t, s.Confidence, 1.0)
			assert.Equal(t, tt.lexScore, s.LexicalScore)
		})
	}
}

func TestReconcile_AgreementBonus(t *testing.T) {
	policy := testPolicy()

	s := Reconcile(policy, 0.6, &ModelVerdict{Label: LabelPositive, Confidence: 0.8})
	// (0.6 + 0.8)/2 + 0.10
	assert.InDelta(t, 0.80, s.Confidence, 1e-9)

	// Bonus never pushes confidence above 1.
	s = Reconcile(policy, 1.0, &ModelVerdict{Label: LabelPositive, Confidence: 1.0})
	assert.Equal(t, 1.0, s.Confidence)
}

func TestReconcile_DisagreementPenalty(t *testing.T) {
	policy := testPolicy()

	s := Reconcile(policy, 0.6, &ModelVerdict{Label: LabelNegative, Confidence: 0.8})
	assert.Equal(t, LabelNegative, s.Label)
	// 0.8 * 0.75
	assert.InDelta(t, 0.60, s.Confidence, 1e-9)
	assert.False(t, s.Degraded)
}

func TestReconcile_Pure(t *testing.T) {
	policy := testPolicy()
	model := &ModelVerdict{Label: LabelPositive, Confidence: 0.7}

	first := Reconcile(policy, 0.4, model)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Reconcile(policy, 0.4, model))
	}
}

func testRows() []dataset.Row {
	return []dataset.Row{
		{TranscriptID: "t-1", Ordinal: 0, Text: "Great article!", Agent: dataset.Agent1, SourceSentiment: "Happy"},
		{TranscriptID: "t-1", Ordinal: 1, Text: "I disagree completely.", Agent: dataset.Agent2},
		{TranscriptID: "t-1", Ordinal: 2, Text: "The report airs at noon.", Agent: dataset.Agent1},
	}
}

func TestScorer_ScoreRows(t *testing.T) {
	s := NewScorer(Options{
		Policy: testPolicy(),
		Model:  NewMockModel(),
	})

	scored := s.ScoreRows(context.Background(), testRows())

	require.Len(t, scored, 3)
	assert.Equal(t, LabelPositive, scored[0].Score.Label)
	assert.Equal(t, LabelNegative, scored[1].Score.Label)
	assert.Equal(t, LabelNeutral, scored[2].Score.Label)

	// Results sit at their input index regardless of worker interleaving.
	for i, sr := range scored {
		assert.Equal(t, i, sr.Ordinal)
		assert.False(t, sr.Score.Degraded)
	}

	assert.Equal(t, SourceAgree, scored[0].Score.SourceAgreement)
	assert.Equal(t, SourceAbsent, scored[1].Score.SourceAgreement)
}

func TestScorer_ScoreRows_Deterministic(t *testing.T) {
	rows := testRows()

	for _, workers := range []int{1, 4, 16} {
		s := NewScorer(Options{
			Policy:  testPolicy(),
			Model:   NewMockModel(),
			Workers: workers,
		})
		first := s.ScoreRows(context.Background(), rows)
		second := s.ScoreRows(context.Background(), rows)
		assert.Equal(t, first, second, "workers=%d", workers)
	}
}

func TestScorer_ScoreRows_DegradedOnModelFailure(t *testing.T) {
	s := NewScorer(Options{
		Policy: testPolicy(),
		Model:  &MockModel{Fail: true},
		Retry:  RetryPolicy{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffFactor: 2},
	})

	scored := s.ScoreRows(context.Background(), testRows())

	require.Len(t, scored, 3)
	for _, sr := range scored {
		assert.True(t, sr.Score.Degraded, "every row degrades when the model is down")
	}
	// The lexical signal still decides the labels.
	assert.Equal(t, LabelPositive, scored[0].Score.Label)
	assert.Equal(t, LabelNegative, scored[1].Score.Label)
}

func TestScorer_ScoreRows_NoModel(t *testing.T) {
	s := NewScorer(Options{Policy: testPolicy()})

	scored := s.ScoreRows(context.Background(), testRows())

	require.Len(t, scored, 3)
	for _, sr := range scored {
		assert.True(t, sr.Score.Degraded)
	}
}

func TestScorer_ScoreRows_Empty(t *testing.T) {
	s := NewScorer(Options{Policy: testPolicy(), Model: NewMockModel()})

	assert.Empty(t, s.ScoreRows(context.Background(), nil))
}

func TestScorer_ScoreRows_CancelledContext(t *testing.T) {
	s := NewScorer(Options{
		Policy: testPolicy(),
		Model:  NewMockModel(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scored := s.ScoreRows(ctx, testRows())

	// Every message still gets a defined verdict; the model path fails fast.
	require.Len(t, scored, 3)
	for _, sr := range scored {
		assert.True(t, sr.Score.Degraded)
		assert.NotEmpty(t, sr.Score.Label)
	}
}

func TestScorer_ClassifyWithRetry_UsesCache(t *testing.T) {
	cache := NewLRUCache(8)
	s := NewScorer(Options{
		Policy: testPolicy(),
		Model:  NewMockModel(),
		Cache:  cache,
	})

	text := "Great article!"
	first := s.ScoreText(context.Background(), text, "")
	require.Equal(t, 1, cache.Len())

	second := s.ScoreText(context.Background(), text, "")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestAggregateAgent(t *testing.T) {
	tests := []struct {
		name      string
		scores    []Score
		wantLabel Label
		wantCount int
	}{
		{
			name:      "empty set is neutral with zero confidence",
			scores:    nil,
			wantLabel: LabelNeutral,
		},
		{
			name: "clear majority",
			scores: []Score{
				{Label: LabelPositive, Confidence: 0.9},
				{Label: LabelPositive, Confidence: 0.8},
				{Label: LabelNegative, Confidence: 0.9},
			},
			wantLabel: LabelPositive,
			wantCount: 3,
		},
		{
			name: "count tie broken by total confidence",
			scores: []Score{
				{Label: LabelPositive, Confidence: 0.3},
				{Label: LabelNegative, Confidence: 0.9},
			},
			wantLabel: LabelNegative,
			wantCount: 2,
		},
		{
			name: "full tie broken by precedence",
			scores: []Score{
				{Label: LabelPositive, Confidence: 0.5},
				{Label: LabelNegative, Confidence: 0.5},
			},
			wantLabel: LabelPositive,
			wantCount: 2,
		},
		{
			name: "neutral beats negative on full tie",
			scores: []Score{
				{Label: LabelNeutral, Confidence: 0.5},
				{Label: LabelNegative, Confidence: 0.5},
			},
			wantLabel: LabelNeutral,
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := AggregateAgent(tt.scores)
			assert.Equal(t, tt.wantLabel, v.Label)
			assert.Equal(t, tt.wantCount, v.Analyzed)
			if len(tt.scores) == 0 {
				assert.Zero(t, v.Confidence)
			}
		})
	}
}

func TestAggregateAgent_Averages(t *testing.T) {
	v := AggregateAgent([]Score{
		{Label: LabelPositive, Confidence: 0.8, LexicalScore: 0.6},
		{Label: LabelPositive, Confidence: 0.6, LexicalScore: 0.2},
	})

	assert.InDelta(t, 0.7, v.Confidence, 1e-9)
	assert.InDelta(t, 0.4, v.AveragePolarity, 1e-9)
	assert.Equal(t, map[Label]int{LabelPositive: 2}, v.Distribution)
}
