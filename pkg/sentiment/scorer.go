package sentiment

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/dataset"
	"github.com/thevectorguy/conversa-ai/pkg/logging"
	"github.com/thevectorguy/conversa-ai/pkg/observability"
)

// ReconcilePolicy holds the constants of the reconciliation policy. All values
// are configuration with documented defaults, not hidden magic numbers.
type ReconcilePolicy struct {
	PositiveThreshold   float64
	NegativeThreshold   float64
	AgreementBonus      float64
	DisagreementPenalty float64
}

// PolicyFromConfig builds a ReconcilePolicy from the sentiment configuration.
func PolicyFromConfig(cfg config.SentimentConfig) ReconcilePolicy {
	return ReconcilePolicy{
		PositiveThreshold:   cfg.PositiveThreshold,
		NegativeThreshold:   cfg.NegativeThreshold,
		AgreementBonus:      cfg.AgreementBonus,
		DisagreementPenalty: cfg.DisagreementPenalty,
	}
}

// Reconcile merges the two sentiment signals into one verdict. It is a pure
// function of its inputs: same inputs yield the same output independent of
// call order or concurrency.
//
// Policy: agreement averages the two confidences and adds the agreement bonus
// (capped at 1). Disagreement lets the model win, discounted by the
// disagreement penalty. A nil model verdict means the lexical signal is used
// alone and the result is flagged degraded.
func Reconcile(policy ReconcilePolicy, lexScore float64, model *ModelVerdict) Score {
	lexLabel := LabelFor(lexScore, policy.PositiveThreshold, policy.NegativeThreshold)
	lexConfidence := clamp(absFloat(lexScore), 0, 1)

	s := Score{LexicalScore: lexScore}

	if model == nil {
		s.Label = lexLabel
		s.Confidence = lexConfidence
		s.Degraded = true
		return s
	}

	s.ModelLabel = model.Label
	s.ModelConfidence = model.Confidence

	if model.Label == lexLabel {
		s.Label = lexLabel
		s.Confidence = clamp((lexConfidence+model.Confidence)/2+policy.AgreementBonus, 0, 1)
		return s
	}

	// The model signal is treated as higher-precision, but disagreement with
	// the lexical signal reduces certainty.
	s.Label = model.Label
	s.Confidence = clamp(model.Confidence*policy.DisagreementPenalty, 0, 1)
	return s
}

// Options configures a Scorer.
type Options struct {
	Policy  ReconcilePolicy
	Model   Model // nil disables the model signal: all scoring runs degraded
	Cache   Cache // nil disables caching
	Retry   RetryPolicy
	Timeout time.Duration // per model call; zero means 10s
	Workers int           // zero means available parallelism, capped at config.MaxWorkerCap
	Logger  logging.Logger
	Metrics *observability.Metrics // optional
}

// Scorer assigns a sentiment label and confidence to each message,
// independent of any source-provided label, via a bounded worker pool.
type Scorer struct {
	policy  ReconcilePolicy
	lexical *Lexical
	model   Model
	cache   Cache
	retry   RetryPolicy
	timeout time.Duration
	workers int
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewScorer creates a Scorer from options.
func NewScorer(opts Options) *Scorer {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > config.MaxWorkerCap {
		workers = config.MaxWorkerCap
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.DefaultSentimentTimeout
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewNopCache()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	retry := opts.Retry
	if retry.BackoffFactor == 0 {
		retry = DefaultRetryPolicy()
	}

	return &Scorer{
		policy:  opts.Policy,
		lexical: NewLexical(),
		model:   opts.Model,
		cache:   cache,
		retry:   retry,
		timeout: timeout,
		workers: workers,
		logger:  logger.With(logging.F("component", "sentiment_scorer")),
		metrics: opts.Metrics,
	}
}

// ScoreRows scores every row. Message-level scoring has no ordering
// dependency, so rows are fanned out across the worker pool; each result is
// written by index, never through shared accumulation.
func (s *Scorer) ScoreRows(ctx context.Context, rows []dataset.Row) []ScoredRow {
	scored := make([]ScoredRow, len(rows))
	if len(rows) == 0 {
		return scored
	}

	workers := s.workers
	if workers > len(rows) {
		workers = len(rows)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				scored[i] = ScoredRow{
					Row:   rows[i],
					Score: s.ScoreText(ctx, rows[i].Text, rows[i].SourceSentiment),
				}
			}
		}()
	}

	// Every row is dispatched even under cancellation; a cancelled context
	// makes the model call fail fast and the row degrades to lexical-only,
	// so every message still gets a defined verdict.
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return scored
}

// ScoreText computes the hybrid verdict for one message.
func (s *Scorer) ScoreText(ctx context.Context, text, sourceLabel string) Score {
	lexScore := s.lexical.Score(text)

	var model *ModelVerdict
	if s.model != nil {
		if v, ok := s.classifyWithRetry(ctx, text); ok {
			model = &v
		}
	}

	score := Reconcile(s.policy, lexScore, model)
	if score.Degraded && s.model != nil {
		s.logger.Debug("model signal unavailable, degraded scoring",
			logging.F("model", s.model.Name()))
	}
	if s.metrics != nil {
		s.metrics.MessagesScored.WithLabelValues(string(score.Label), boolLabel(score.Degraded)).Inc()
	}

	return s.finishScore(score, sourceLabel)
}

// finishScore fills in the source-label reconciliation outcome.
func (s *Scorer) finishScore(score Score, sourceLabel string) Score {
	src, ok := NormalizeSourceLabel(sourceLabel)
	switch {
	case !ok:
		score.SourceAgreement = SourceAbsent
	case src == score.Label:
		score.SourceAgreement = SourceAgree
	default:
		score.SourceAgreement = SourceDisagree
	}
	return score
}

// classifyWithRetry consults the cache, then calls the model with a bounded
// timeout and up to MaxRetries re-attempts before giving up.
func (s *Scorer) classifyWithRetry(ctx context.Context, text string) (ModelVerdict, bool) {
	if v, ok := s.cache.Get(ctx, text); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return v, true
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retry.Backoff(attempt - 1)):
			case <-ctx.Done():
				return ModelVerdict{}, false
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		start := time.Now()
		v, err := s.model.ClassifyText(callCtx, text)
		cancel()

		if s.metrics != nil {
			s.metrics.ModelCallSeconds.Observe(time.Since(start).Seconds())
		}

		if err == nil {
			s.cache.Set(ctx, text, v)
			return v, true
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	s.logger.Warn("sentiment model call failed, falling back to lexical signal",
		logging.Err(lastErr),
		logging.F("retries", s.retry.MaxRetries))
	return ModelVerdict{}, false
}

// AggregateAgent computes an agent's overall verdict from its message scores.
// The overall label is the mode of the labels, ties broken by higher total
// summed confidence, then by label precedence (positive > neutral > negative).
// An empty message set yields neutral with zero confidence, never an error.
func AggregateAgent(scores []Score) AgentVerdict {
	v := AgentVerdict{
		Label:        LabelNeutral,
		Distribution: make(map[Label]int),
	}
	if len(scores) == 0 {
		return v
	}

	sumConfidence := make(map[Label]float64)
	var totalConfidence, totalPolarity float64

	for _, s := range scores {
		v.Distribution[s.Label]++
		sumConfidence[s.Label] += s.Confidence
		totalConfidence += s.Confidence
		totalPolarity += s.LexicalScore
	}

	labels := make([]Label, 0, len(v.Distribution))
	for l := range v.Distribution {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := labels[i], labels[j]
		if v.Distribution[a] != v.Distribution[b] {
			return v.Distribution[a] > v.Distribution[b]
		}
		if sumConfidence[a] != sumConfidence[b] {
			return sumConfidence[a] > sumConfidence[b]
		}
		return labelPrecedence[a] > labelPrecedence[b]
	})

	v.Label = labels[0]
	v.Confidence = totalConfidence / float64(len(scores))
	v.AveragePolarity = totalPolarity / float64(len(scores))
	v.Analyzed = len(scores)
	return v
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
