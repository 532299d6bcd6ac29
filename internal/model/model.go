// Package model defines the boundary to the language model. The
// orchestrator and the artifact handlers program against Client; the
// Genkit adapter in this package is the production implementation and
// tests substitute a scripted fake.
package model

import (
	"context"
	"errors"

	"github.com/firebase/genkit/go/ai"
)

// ErrNoOutput indicates the model returned no usable output.
var ErrNoOutput = errors.New("model returned no output")

// StreamCallback receives streamed chunks during a step.
type StreamCallback func(ctx context.Context, chunk *ai.ModelResponseChunk) error

// StepRequest is one model step within the agent loop.
type StepRequest struct {
	// Model is the provider-qualified model name. Empty selects the
	// client default.
	Model string

	// System is the system prompt for this step.
	System string

	// Messages is the full conversation so far, including tool request
	// and response messages from earlier steps.
	Messages []*ai.Message

	// Tools is the set of tool names exposed to the model. The model may
	// answer with tool requests instead of (or alongside) text.
	Tools []string
}

// StepResult is the outcome of one step.
type StepResult struct {
	// Message is the final model message of the step. Contains text
	// parts and any tool request parts.
	Message *ai.Message

	// ToolRequests are the tool invocations the model asked for, in
	// order. Empty means the step produced a final answer.
	ToolRequests []*ai.ToolRequest
}

// Text returns the concatenated text parts of the step message.
func (r *StepResult) Text() string {
	if r.Message == nil {
		return ""
	}
	var out string
	for _, part := range r.Message.Content {
		if part != nil && part.IsText() {
			out += part.Text
		}
	}
	return out
}

// ObjectField selects the string field of a schema-constrained
// generation.
type ObjectField string

const (
	// FieldCSV constrains output to {"csv": "..."}.
	FieldCSV ObjectField = "csv"

	// FieldMarkdown constrains output to {"markdown": "..."}.
	FieldMarkdown ObjectField = "markdown"
)

// ObjectRequest is a schema-constrained generation whose output is one
// growing string field.
type ObjectRequest struct {
	Model  string
	System string
	Prompt string
	Field  ObjectField
}

// ObjectCallback receives the accumulated field value each time it
// grows during a StreamObject call.
type ObjectCallback func(ctx context.Context, accumulated string) error

// Client is the language model capability.
type Client interface {
	// Step runs one model step: system prompt, history, tool exposure.
	// Text chunks stream through cb as they arrive; the returned result
	// holds the final message including tool requests.
	Step(ctx context.Context, req StepRequest, cb StreamCallback) (*StepResult, error)

	// Complete runs a small non-streaming completion. Used for title
	// synthesis.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// StreamObject generates output constrained to a one-field JSON
	// schema, invoking cb with the accumulated field value as it grows,
	// and returns the final value.
	StreamObject(ctx context.Context, req ObjectRequest, cb ObjectCallback) (string, error)
}
