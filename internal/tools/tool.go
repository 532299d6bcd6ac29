// Package tools defines the tools the model can invoke during a
// conversation turn and the registry the orchestrator dispatches
// through.
//
// Each tool declares a name, a description the model uses for
// selection, and a typed input schema derived from its Go input type.
// Arguments supplied by the model are validated against the schema
// before the handler runs; a violation is reported back to the model
// as a recoverable tool error, never as a request failure.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/stream"
)

// Tool error types the model is expected to recover from.
const (
	ErrTypeInvalidArguments = "InvalidArguments"
	ErrTypeExtractionFailed = "ExtractionFailed"
	ErrTypeUnsupportedKind  = "UnsupportedArtifactKind"
)

// ToolError is a structured error format for model consumption. It
// lets a tool return a specific error type and message the model can
// understand and correct on a later step.
type ToolError struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return "<nil ToolError>"
	}
	if e.ErrorType == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.ErrorType
	}
	return e.ErrorType + ": " + e.Message
}

// AsToolError translates an error into its model-facing form. Known
// sentinel failures map to typed tool errors; anything else returns
// ok=false and should abort the step.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	if errors.Is(err, extract.ErrFailed) {
		return &ToolError{ErrorType: ErrTypeExtractionFailed, Message: err.Error()}, true
	}
	if errors.Is(err, artifact.ErrUnsupportedKind) {
		return &ToolError{ErrorType: ErrTypeUnsupportedKind, Message: err.Error()}, true
	}
	return nil, false
}

// Tool is a registered tool: metadata, a resolved input schema, and a
// type-erased execution function. Execution receives the request's
// event sink so artifact tools can stream while they run.
type Tool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	run         func(ctx context.Context, input any, sink stream.Sink) (any, error)
	define      func(g *genkit.Genkit)
}

// Name returns the tool's unique identifier.
func (t *Tool) Name() string { return t.name }

// Description returns the description the model selects tools by.
func (t *Tool) Description() string { return t.description }

// InputSchema returns the JSON schema for the tool's input.
func (t *Tool) InputSchema() *jsonschema.Schema { return t.schema }

// Execute validates the model-supplied input against the schema and
// runs the handler. Schema violations come back as *ToolError with
// type InvalidArguments.
func (t *Tool) Execute(ctx context.Context, input any, sink stream.Sink) (any, error) {
	if sink == nil {
		sink = stream.Discard()
	}
	return t.run(ctx, input, sink)
}

// NewTool creates a tool with type-safe input and output handling.
// The input schema is derived from In's struct tags; type erasure
// happens internally so tools with different signatures share one
// registry.
func NewTool[In, Out any](
	name string,
	description string,
	handler func(ctx context.Context, input In, sink stream.Sink) (Out, error),
) (*Tool, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema for %s: %w", name, err)
	}

	run := func(ctx context.Context, input any, sink stream.Sink) (any, error) {
		if input == nil {
			input = map[string]any{}
		}
		if err := resolved.Validate(input); err != nil {
			return nil, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: err.Error()}
		}

		// The model hands arguments over as decoded JSON, convert to
		// the typed input via a JSON round trip.
		data, err := json.Marshal(input)
		if err != nil {
			return nil, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: err.Error()}
		}
		var typed In
		if err := json.Unmarshal(data, &typed); err != nil {
			return nil, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: err.Error()}
		}

		return handler(ctx, typed, sink)
	}

	// Genkit registration exposes the schema to the model. Execution
	// still flows through the orchestrator's dispatch, so the genkit
	// path gets a discarding sink.
	define := func(g *genkit.Genkit) {
		genkit.DefineTool(g, name, description,
			func(tc *ai.ToolContext, input In) (Out, error) {
				return handler(tc.Context, input, stream.Discard())
			})
	}

	return &Tool{
		name:        name,
		description: description,
		schema:      schema,
		run:         run,
		define:      define,
	}, nil
}
