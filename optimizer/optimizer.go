// Package optimizer implements the prompt optimization core: build an
// instruction from a raw prompt or a canvas, issue one completion call,
// and return the trimmed result. All provider failures collapse into a
// single *GenerationError at this boundary.
package optimizer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/c360studio/grompt/canvas"
	"github.com/c360studio/grompt/llm"
	"github.com/c360studio/grompt/prompts"
)

// Generation defaults, overridable via configuration at process start
// and per request.
const (
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 1024
)

// Defaults holds the process-wide generation defaults. Zero-value
// fields fall back to the package constants.
type Defaults struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Request describes one optimization. Exactly one of Prompt/Canvas is
// expected to be populated; a non-nil Canvas always wins. Unset
// generation fields fall back to the configured defaults.
type Request struct {
	Prompt      string
	Canvas      *canvas.Canvas
	Model       string
	Temperature *float64
	MaxTokens   int
}

// GenerationError wraps any provider-call failure. Cause distinctions
// (network, auth, quota) are intentionally not exposed: callers only
// learn that generation failed and why, as text.
type GenerationError struct {
	cause error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.cause.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

// Optimizer issues optimization requests against a completion client.
// Stateless beyond read-only defaults; safe for concurrent use.
type Optimizer struct {
	client   llm.CompletionClient
	defaults Defaults
	logger   *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

// New creates an Optimizer with the given client and defaults.
func New(client llm.CompletionClient, defaults Defaults, opts ...Option) *Optimizer {
	if defaults.Model == "" {
		defaults.Model = DefaultModel
	}
	if defaults.Temperature == 0 {
		defaults.Temperature = DefaultTemperature
	}
	if defaults.MaxTokens == 0 {
		defaults.MaxTokens = DefaultMaxTokens
	}

	o := &Optimizer{
		client:   client,
		defaults: defaults,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Optimize builds the instruction, performs one completion call and
// returns the response text with surrounding whitespace stripped.
// Any client failure is returned as a *GenerationError.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (string, error) {
	instruction := prompts.Build(req.Prompt, req.Canvas)

	model := req.Model
	if model == "" {
		model = o.defaults.Model
	}
	temperature := req.Temperature
	if temperature == nil {
		t := o.defaults.Temperature
		temperature = &t
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = o.defaults.MaxTokens
	}

	o.logger.Debug("Optimizing prompt",
		"model", model,
		"max_tokens", maxTokens,
		"canvas", req.Canvas != nil,
		"instruction_len", len(instruction))

	resp, err := o.client.Complete(ctx, llm.Request{
		Model:       model,
		Messages:    []llm.Message{{Role: "user", Content: instruction}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", &GenerationError{cause: err}
	}

	return strings.TrimSpace(resp.Content), nil
}
