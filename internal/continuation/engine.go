// ABOUTME: Continuation engine that re-prompts a model until its answer is complete
// ABOUTME: Collects fragments, stops on completion, stall, or cap, then combines and repairs them
package continuation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/harper/stitch/internal/log"
	"github.com/harper/stitch/internal/models"
	"github.com/harper/stitch/internal/repair"
	"github.com/harper/stitch/internal/truncation"
)

// SendFunc dispatches the next request and returns the model's response.
// It is the only I/O the engine performs and may be called several times
// per run with different message lists.
type SendFunc func(ctx context.Context, messages []models.Message) (models.Response, error)

// Result is the outcome of one Run.
type Result struct {
	RunID string
	// FinalText is the combined and possibly repaired text.
	FinalText string
	// Final is the last response received with its text replaced by FinalText.
	Final             models.Response
	ContinuationCount int
	ReachedMax        bool
	// IntermediateResponses holds every response received, initial first.
	IntermediateResponses []models.Response
	// Recovery reports the repair applied to the combined text. A lossy
	// recovery means trailing content was dropped.
	Recovery repair.Result
	// Truncation is the classification of the last response received.
	Truncation truncation.Info
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier replaces the default truncation classifier.
func WithClassifier(c *truncation.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSleep replaces the cancellable delay used between continuations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// Engine runs the continuation protocol. Its configuration is read-only
// after construction so one Engine may serve concurrent runs.
type Engine struct {
	cfg        Config
	classifier *truncation.Classifier
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// NewEngine validates cfg and builds an Engine.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := truncation.New(truncation.DefaultOptions())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		classifier: classifier,
		logger:     log.Discard(),
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", ErrInvalidConfig)
	}
	if e.logger == nil {
		e.logger = log.Discard()
	}
	return e, nil
}

// Config returns the engine's policy.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run drives continuation for one turn. messages is the conversation that
// produced initial; it is never modified.
//
// Errors from send are returned unchanged unless ctx was cancelled, in which
// case they are wrapped with ErrCancelled.
func (e *Engine) Run(ctx context.Context, initial models.Response, messages []models.Message, send SendFunc) (*Result, error) {
	runID := uuid.NewString()
	logger := log.WithRun(e.logger, runID)

	info := e.classifier.Classify(initial)
	if !info.IsTruncated {
		text := models.TextOf(initial)
		return &Result{
			RunID:                 runID,
			FinalText:             text,
			Final:                 initial,
			IntermediateResponses: []models.Response{initial},
			Recovery:              repair.Result{Status: repair.NoRecoveryNeeded, Content: text},
			Truncation:            info,
		}, nil
	}
	if send == nil {
		return nil, fmt.Errorf("%w: send function is required", ErrInvalidConfig)
	}

	logger.Info("response truncated, starting continuation",
		slog.String(log.ReasonKey, info.Reason.String()),
		slog.String("details", info.Details))

	start := e.now()
	warnedDuration := false

	var fragments []string
	if text := models.TextOf(initial); text != "" {
		fragments = append(fragments, text)
	}
	responses := []models.Response{initial}
	last := initial
	count := 0

	for iteration := 0; count < e.cfg.MaxContinuations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		if len(fragments) >= 2 {
			latest := fragments[len(fragments)-1]
			if n := utf8.RuneCountInString(latest); n < e.cfg.MinProgressPerContinuation {
				logger.Warn("continuation stalled",
					slog.Int(log.ContinuationKey, count),
					slog.Int("fragment_length", n),
					slog.Int("min_progress", e.cfg.MinProgressPerContinuation))
				break
			}
		}

		if iteration > 0 && e.cfg.DelayBetweenContinuations > 0 {
			if err := e.sleep(ctx, e.cfg.DelayBetweenContinuations); err != nil {
				return nil, cancelled(err)
			}
		}

		if e.cfg.MaxTotalDuration > 0 && !warnedDuration {
			if elapsed := e.now().Sub(start); elapsed > e.cfg.MaxTotalDuration {
				logger.Warn("continuation exceeded advisory duration",
					slog.Int64(log.DurationKey, elapsed.Milliseconds()),
					slog.Duration("max_total_duration", e.cfg.MaxTotalDuration))
				warnedDuration = true
			}
		}

		req := e.buildMessages(messages, last)
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		logger.Debug("requesting continuation", slog.Int(log.ContinuationKey, count+1))
		resp, err := send(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(err)
			}
			return nil, err
		}

		count++
		responses = append(responses, resp)
		if text := models.TextOf(resp); text != "" {
			fragments = append(fragments, text)
		}
		last = resp

		info = e.classifier.Classify(resp)
		if !info.IsTruncated {
			logger.Info("continuation complete", slog.Int(log.ContinuationKey, count))
			break
		}
		logger.Debug("continuation still truncated",
			slog.Int(log.ContinuationKey, count),
			slog.String(log.ReasonKey, info.Reason.String()))
	}

	reachedMax := count >= e.cfg.MaxContinuations
	combined := repair.Combine(fragments)

	if reachedMax {
		logger.Warn("max continuations reached", slog.Int(log.ContinuationKey, count))
		if e.cfg.ThrowOnMaxContinuations {
			return nil, &MaxContinuationsError{Count: count, Text: combined}
		}
	}

	recovery := e.recover(combined)
	if recovery.Lossy() {
		logger.Warn("recovered content by discarding trailing text", slog.String("details", recovery.Description))
	}

	return &Result{
		RunID:                 runID,
		FinalText:             recovery.Content,
		Final:                 replaceText(last, recovery.Content),
		ContinuationCount:     count,
		ReachedMax:            reachedMax,
		IntermediateResponses: responses,
		Recovery:              recovery,
		Truncation:            info,
	}, nil
}

// buildMessages returns the original conversation, optionally followed by
// the previous answer, and the continuation prompt.
func (e *Engine) buildMessages(messages []models.Message, previous models.Response) []models.Message {
	out := make([]models.Message, 0, len(messages)+2)
	out = append(out, messages...)
	if e.cfg.IncludePreviousResponse {
		if text := models.TextOf(previous); text != "" {
			out = append(out, models.AssistantMessage(text))
		}
	}
	return append(out, models.UserMessage(e.cfg.ContinuationPrompt))
}

// recover applies JSON repair to text that opens an object or array and
// falls back to code fence repair when JSON repair did not change anything.
func (e *Engine) recover(text string) repair.Result {
	result := repair.Result{
		Status:      repair.NoRecoveryNeeded,
		Content:     text,
		Description: "no recovery applied",
	}
	if e.cfg.EnableJSONRecovery && repair.LooksLikeJSON(text) {
		result = repair.RepairJSON(text)
		if result.Changed() {
			return result
		}
	}
	if e.cfg.EnableCodeBlockRecovery {
		result = repair.RepairFences(text)
	}
	return result
}

// replaceText keeps the last response's metadata and swaps in text.
func replaceText(last models.Response, text string) models.Response {
	if tr, ok := last.(models.TextReplacer); ok {
		return tr.WithText(text)
	}
	c := &models.Completion{Content: text}
	if last != nil {
		c.RawFinish = last.FinishReason()
		if nf, ok := last.(models.NormalizedFinish); ok {
			c.Finish = nf.StandardFinishReason()
		}
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
