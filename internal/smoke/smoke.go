// Package smoke issues a single tool-declaring request to a hosted model and
// records the outcome.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ziadkadry99/toolprobe/internal/config"
	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/llm"
)

// ErrEmptyResponse is returned when the model answers with no text and no tool call.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Recorder persists completed runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Runner performs smoke runs against one provider.
type Runner struct {
	provider llm.Provider
	cfg      *config.Config
	recorder Recorder
	notify   []func(history.Run)
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder stores every run, successful or not.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithNotify registers a callback invoked after each run is recorded.
func WithNotify(fn func(history.Run)) Option {
	return func(r *Runner) { r.notify = append(r.notify, fn) }
}

// NewRunner creates a Runner for the given provider and configuration.
func NewRunner(provider llm.Provider, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{provider: provider, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request builds the single completion request described by the configuration.
func (r *Runner) Request() llm.CompletionRequest {
	var messages []llm.Message
	if r.cfg.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: r.cfg.System})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: r.cfg.Prompt})

	return llm.CompletionRequest{
		Model:       r.cfg.Model,
		Messages:    messages,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Tools:       r.cfg.Tools,
	}
}

// Result is the outcome of one smoke run.
type Result struct {
	Run      history.Run
	Response *llm.CompletionResponse
}

// Run issues one request and returns the response. A failed call or an empty
// response is still recorded and returned alongside the error.
func (r *Runner) Run(ctx context.Context, source history.Source) (*Result, error) {
	req := r.Request()
	started := r.now()

	run := history.Run{
		StartedAt: started,
		Source:    source,
		Provider:  r.provider.Name(),
		Model:     req.Model,
		Prompt:    r.cfg.Prompt,
		Tools:     req.Tools,
	}

	resp, callErr := r.provider.Complete(ctx, req)
	run.Duration = r.now().Sub(started)

	var runErr error
	switch {
	case callErr != nil:
		run.Status = history.StatusError
		run.Error = callErr.Error()
		runErr = fmt.Errorf("%s completion failed: %w", r.provider.Name(), callErr)
	default:
		run.Content = resp.Content
		run.ResponseModel = resp.Model
		run.FinishReason = resp.FinishReason
		run.InputTokens = resp.InputTokens
		run.OutputTokens = resp.OutputTokens
		run.CostUSD = llm.EstimateCost(pricingModel(req.Model, resp.Model), resp.InputTokens, resp.OutputTokens)
		if resp.IsEmpty() {
			run.Status = history.StatusEmpty
			run.Error = ErrEmptyResponse.Error()
			runErr = ErrEmptyResponse
		} else {
			run.Status = history.StatusOK
		}
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, &run); err != nil {
			log.Printf("smoke: recording run: %v", err)
		}
	}
	for _, fn := range r.notify {
		fn(run)
	}

	return &Result{Run: run, Response: resp}, runErr
}

// pricingModel prefers the model the endpoint reports, falling back to the
// requested identifier when the reported one has no price entry.
func pricingModel(requested, reported string) string {
	if reported != "" && llm.HasPricing(reported) {
		return reported
	}
	return requested
}
