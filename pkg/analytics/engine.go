package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thevectorguy/conversa-ai/config"
	"github.com/thevectorguy/conversa-ai/pkg/dataset"
	cverrors "github.com/thevectorguy/conversa-ai/pkg/errors"
	"github.com/thevectorguy/conversa-ai/pkg/llm"
	"github.com/thevectorguy/conversa-ai/pkg/logging"
	"github.com/thevectorguy/conversa-ai/pkg/observability"
	"github.com/thevectorguy/conversa-ai/pkg/sentiment"
)

// SummaryUnavailable is the deterministic fallback summary text used when the
// summarization collaborator is disabled, times out, fails, or returns an
// empty or whitespace-only summary.
const SummaryUnavailable = "summary unavailable"

// CapturedError is one recoverable failure recorded in a result instead of
// aborting the run.
type CapturedError struct {
	Stage        string             `json:"stage"`
	TranscriptID string             `json:"transcript_id,omitempty"`
	Code         cverrors.ErrorCode `json:"code"`
	Detail       string             `json:"detail"`
}

// TransformResult is the output of one dataset transform pass.
type TransformResult struct {
	RunID           string                        `json:"run_id"`
	TranscriptCount int                           `json:"transcript_count"`
	MessageCount    int                           `json:"message_count"`
	Rows            []dataset.Row                 `json:"rows"`
	Articles        []ArticleStatistics           `json:"articles"`
	Diagnostics     map[string]dataset.CleanStats `json:"diagnostics,omitempty"`
	Errors          []CapturedError               `json:"errors,omitempty"`
}

// AnalyzeResult is the output of analyzing one transcript.
type AnalyzeResult struct {
	RunID        string `json:"run_id"`
	TranscriptID string `json:"transcript_id"`
	ArticleURL   string `json:"article_url"`

	Agent1Messages int `json:"agent_1_messages"`
	Agent2Messages int `json:"agent_2_messages"`
	TotalMessages  int `json:"total_messages"`

	AgentSentiments map[string]sentiment.AgentVerdict `json:"agent_sentiments"`
	Comparison      AgentComparison                   `json:"agent_comparison"`

	SentimentDistribution map[sentiment.Label]int `json:"sentiment_distribution"`
	DegradedMessages      int                     `json:"degraded_messages,omitempty"`

	TranscriptSummary string `json:"transcript_summary"`

	Diagnostics map[string]dataset.CleanStats `json:"diagnostics,omitempty"`
	Errors      []CapturedError               `json:"errors,omitempty"`
}

// StatsResult is the output of a full-dataset statistics pass.
type StatsResult struct {
	RunID       string                        `json:"run_id"`
	Summary     DatasetSummary                `json:"summary"`
	Agents      []AgentStatistics             `json:"agents"`
	Articles    []ArticleStatistics           `json:"articles"`
	Diagnostics map[string]dataset.CleanStats `json:"diagnostics,omitempty"`
	Errors      []CapturedError               `json:"errors,omitempty"`
}

// Options configures an Engine. Scorer is required; Summarizer is optional
// and nil disables summarization (Analyze then reports SummaryUnavailable).
type Options struct {
	Scorer            *sentiment.Scorer
	Summarizer        llm.Summarizer
	SummarizerTimeout time.Duration
	Logger            logging.Logger
	Metrics           *observability.Metrics
}

// Engine wires the pipeline stages together and exposes the transform,
// analyze, and stats operations. Per-transcript failures are captured in the
// result; only an aggregation inconsistency aborts a call.
type Engine struct {
	validator   *dataset.Validator
	cleaner     *dataset.Cleaner
	transformer *dataset.Transformer
	scorer      *sentiment.Scorer
	summarizer  llm.Summarizer
	sumTimeout  time.Duration
	logger      logging.Logger
	metrics     *observability.Metrics
}

// NewEngine creates an Engine from options.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	sumTimeout := opts.SummarizerTimeout
	if sumTimeout <= 0 {
		sumTimeout = config.DefaultSummarizerTimeout
	}

	return &Engine{
		validator:   dataset.NewValidator(),
		cleaner:     dataset.NewCleaner(),
		transformer: dataset.NewTransformer(),
		scorer:      opts.Scorer,
		summarizer:  opts.Summarizer,
		sumTimeout:  sumTimeout,
		logger:      logger.With(logging.F("component", "engine")),
		metrics:     opts.Metrics,
	}
}

// Transform validates, cleans, and flattens a raw dataset without scoring.
// The article buckets in the result are built from the normalized source
// labels, the only sentiment signal available before scoring. The operation
// is idempotent: the same input yields the same rows and diagnostics.
func (e *Engine) Transform(ctx context.Context, raw dataset.RawDataset) (*TransformResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	rows, diags, captured, transcriptCount, err := e.prepare(raw)
	if err != nil {
		return nil, err
	}

	// Source labels stand in for computed sentiment; the stats operation
	// produces scored distributions.
	pseudo := make([]sentiment.ScoredRow, len(rows))
	for i, r := range rows {
		label, ok := sentiment.NormalizeSourceLabel(r.SourceSentiment)
		if !ok {
			label = sentiment.LabelNeutral
		}
		pseudo[i] = sentiment.ScoredRow{Row: r, Score: sentiment.Score{Label: label}}
	}

	articles, err := AggregateArticles(pseudo)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.TransformSeconds.Observe(time.Since(start).Seconds())
	}
	e.logger.Info("transform complete",
		logging.F("run_id", runID),
		logging.F("transcripts", transcriptCount),
		logging.F("rows", len(rows)),
		logging.F("invalid", len(captured)))

	return &TransformResult{
		RunID:           runID,
		TranscriptCount: transcriptCount,
		MessageCount:    len(rows),
		Rows:            rows,
		Articles:        articles,
		Diagnostics:     diags,
		Errors:          captured,
	}, nil
}

// Analyze runs the full pipeline over a single transcript: validation,
// cleaning, scoring, per-agent aggregation, agent comparison, and
// summarization with fallback. An invalid transcript yields a result whose
// error list explains the exclusion; it is not a call failure.
func (e *Engine) Analyze(ctx context.Context, id string, payload []byte) (*AnalyzeResult, error) {
	runID := uuid.NewString()
	res := &AnalyzeResult{
		RunID:                 runID,
		TranscriptID:          id,
		AgentSentiments:       make(map[string]sentiment.AgentVerdict),
		SentimentDistribution: make(map[sentiment.Label]int),
		TranscriptSummary:     SummaryUnavailable,
	}

	raw := dataset.RawDataset{id: payload}
	rows, diags, captured, _, err := e.prepare(raw)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = diags
	res.Errors = captured

	if len(rows) == 0 {
		res.AgentSentiments[dataset.Agent1] = sentiment.AggregateAgent(nil)
		res.AgentSentiments[dataset.Agent2] = sentiment.AggregateAgent(nil)
		res.Comparison = CompareAgents(res.AgentSentiments[dataset.Agent1], res.AgentSentiments[dataset.Agent2])
		if e.metrics != nil {
			e.metrics.TranscriptsProcessed.WithLabelValues("invalid").Inc()
		}
		return res, nil
	}

	res.ArticleURL = rows[0].ArticleURL
	res.TotalMessages = len(rows)

	scored := e.scorer.ScoreRows(ctx, rows)

	byAgent := make(map[string][]sentiment.Score)
	texts := make([]string, len(scored))
	for i, sr := range scored {
		byAgent[sr.Agent] = append(byAgent[sr.Agent], sr.Score)
		res.SentimentDistribution[sr.Score.Label]++
		if sr.Score.Degraded {
			res.DegradedMessages++
		}
		texts[i] = fmt.Sprintf("%s: %s", sr.Agent, sr.Text)
	}
	res.Agent1Messages = len(byAgent[dataset.Agent1])
	res.Agent2Messages = len(byAgent[dataset.Agent2])

	// Both canonical agents always get a verdict, even with zero messages.
	res.AgentSentiments[dataset.Agent1] = sentiment.AggregateAgent(byAgent[dataset.Agent1])
	res.AgentSentiments[dataset.Agent2] = sentiment.AggregateAgent(byAgent[dataset.Agent2])
	for agent, scores := range byAgent {
		if agent != dataset.Agent1 && agent != dataset.Agent2 {
			res.AgentSentiments[agent] = sentiment.AggregateAgent(scores)
		}
	}
	res.Comparison = CompareAgents(res.AgentSentiments[dataset.Agent1], res.AgentSentiments[dataset.Agent2])

	if res.DegradedMessages > 0 {
		res.Errors = append(res.Errors, CapturedError{
			Stage:        "scoring",
			TranscriptID: id,
			Code:         cverrors.ErrCodeScoringDegrade,
			Detail:       fmt.Sprintf("%d of %d messages scored without the model signal", res.DegradedMessages, res.TotalMessages),
		})
	}

	summary, capturedSum := e.summarize(ctx, id, texts)
	res.TranscriptSummary = summary.Text
	if res.ArticleURL == "" {
		res.ArticleURL = summary.ArticleURL
	}
	if res.ArticleURL == "" {
		res.ArticleURL = UnknownArticle
	}
	if capturedSum != nil {
		res.Errors = append(res.Errors, *capturedSum)
	}

	if e.metrics != nil {
		e.metrics.TranscriptsProcessed.WithLabelValues("ok").Inc()
	}
	e.logger.Info("analyze complete",
		logging.F("run_id", runID),
		logging.F("transcript_id", id),
		logging.F("messages", res.TotalMessages),
		logging.F("degraded", res.DegradedMessages))

	return res, nil
}

// Stats scores the whole dataset and aggregates agent, article, and dataset
// statistics.
func (e *Engine) Stats(ctx context.Context, raw dataset.RawDataset) (*StatsResult, error) {
	runID := uuid.NewString()

	rows, diags, captured, transcriptCount, err := e.prepare(raw)
	if err != nil {
		return nil, err
	}

	scored := e.scorer.ScoreRows(ctx, rows)

	agents := AggregateAgents(scored)
	articles, err := AggregateArticles(scored)
	if err != nil {
		return nil, err
	}
	summary := SummarizeDataset(scored, transcriptCount)

	if e.metrics != nil {
		e.metrics.TranscriptsProcessed.WithLabelValues("ok").Add(float64(transcriptCount))
		e.metrics.TranscriptsProcessed.WithLabelValues("invalid").Add(float64(len(captured)))
	}
	e.logger.Info("stats complete",
		logging.F("run_id", runID),
		logging.F("transcripts", transcriptCount),
		logging.F("messages", len(scored)))

	return &StatsResult{
		RunID:       runID,
		Summary:     summary,
		Agents:      agents,
		Articles:    articles,
		Diagnostics: diags,
		Errors:      captured,
	}, nil
}

// prepare runs the shared validate-clean-flatten front of the pipeline.
// Validation and cleaning exclusions are captured; a flatten failure is the
// fatal aggregation inconsistency and propagates as an error.
func (e *Engine) prepare(raw dataset.RawDataset) ([]dataset.Row, map[string]dataset.CleanStats, []CapturedError, int, error) {
	valid, invalid := e.validator.Validate(raw)
	cleaned, diags, excluded := e.cleaner.Clean(valid)

	captured := make([]CapturedError, 0, len(invalid)+len(excluded))
	for _, inv := range invalid {
		captured = append(captured, CapturedError{
			Stage:        "validation",
			TranscriptID: inv.ID,
			Code:         cverrors.ErrCodeValidation,
			Detail:       fmt.Sprintf("%s: %s", inv.Reason, inv.Detail),
		})
	}
	for _, exc := range excluded {
		captured = append(captured, CapturedError{
			Stage:        "cleaning",
			TranscriptID: exc.ID,
			Code:         cverrors.ErrCodeEmptyContent,
			Detail:       exc.Detail,
		})
	}

	rows, err := e.transformer.Flatten(cleaned)
	if err != nil {
		e.logger.Error("flatten failed", logging.Err(err))
		return nil, nil, nil, 0, err
	}

	return rows, diags, captured, len(cleaned), nil
}

// summarize calls the collaborator with a bounded timeout and substitutes the
// fallback text on any failure or on an empty summary.
func (e *Engine) summarize(ctx context.Context, id string, texts []string) (llm.Summary, *CapturedError) {
	fallback := llm.Summary{Text: SummaryUnavailable}

	if e.summarizer == nil {
		return fallback, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.sumTimeout)
	defer cancel()

	start := time.Now()
	summary, err := e.summarizer.Summarize(callCtx, texts)
	if e.metrics != nil {
		e.metrics.SummaryCallSeconds.Observe(time.Since(start).Seconds())
	}

	if err == nil && summary != nil && strings.TrimSpace(summary.Text) != "" {
		return llm.Summary{
			Text:       strings.TrimSpace(summary.Text),
			ArticleURL: strings.TrimSpace(summary.ArticleURL),
		}, nil
	}

	if e.metrics != nil {
		e.metrics.SummaryFallbacks.Inc()
	}

	code := cverrors.ErrCodeModelDown
	detail := "summarizer returned an empty summary"
	if err != nil {
		detail = err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			code = cverrors.ErrCodeTimeout
		}
	}
	e.logger.Warn("summarization unavailable, using fallback",
		logging.F("transcript_id", id),
		logging.Err(err))

	return fallback, &CapturedError{
		Stage:        "summarization",
		TranscriptID: id,
		Code:         code,
		Detail:       detail,
	}
}
