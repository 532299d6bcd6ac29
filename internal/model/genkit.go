package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/easel-ai/easel/internal/log"
)

// csvObject and markdownObject are the one-field output schemas for
// StreamObject. The model is constrained to emit exactly one of these
// shapes.
type csvObject struct {
	CSV string `json:"csv"`
}

type markdownObject struct {
	Markdown string `json:"markdown"`
}

// Generator is the Genkit-backed Client. A shared rate limiter gates
// every model call; upstream quotas are per-project, not per-request.
type Generator struct {
	g            *genkit.Genkit
	limiter      *rate.Limiter
	defaultModel string
	logger       log.Logger
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Genkit       *genkit.Genkit
	DefaultModel string // provider-qualified, e.g. "googleai/gemini-2.5-flash"
	Logger       log.Logger

	// RequestsPerSecond and Burst bound outbound model calls.
	// Zero values select 10 rps with burst 30.
	RequestsPerSecond float64
	Burst             int
}

// NewGenerator creates a Generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Genkit == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if cfg.DefaultModel == "" {
		return nil, fmt.Errorf("default model is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 30
	}

	return &Generator{
		g:            cfg.Genkit,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		defaultModel: cfg.DefaultModel,
		logger:       cfg.Logger,
	}, nil
}

func (gen *Generator) modelName(name string) string {
	if name == "" {
		return gen.defaultModel
	}
	return name
}

// Step implements Client. Tool requests are returned to the caller
// rather than executed by Genkit; the orchestrator owns dispatch.
func (gen *Generator) Step(ctx context.Context, req StepRequest, cb StreamCallback) (*StepResult, error) {
	if err := gen.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(gen.modelName(req.Model)),
		ai.WithMessages(req.Messages...),
		ai.WithReturnToolRequests(true),
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}
	if len(req.Tools) > 0 {
		refs, err := gen.lookupTools(req.Tools)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ai.WithTools(refs...))
	}
	if cb != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			return cb(ctx, chunk)
		}))
	}

	gen.logger.Debug("model step",
		"model", gen.modelName(req.Model),
		"messages", len(req.Messages),
		"tools", len(req.Tools))

	resp, err := genkit.Generate(ctx, gen.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if resp.Message == nil {
		return nil, ErrNoOutput
	}

	return &StepResult{
		Message:      resp.Message,
		ToolRequests: resp.ToolRequests(),
	}, nil
}

// Complete implements Client.
func (gen *Generator) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := gen.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(gen.defaultModel),
		ai.WithPrompt(prompt),
	}
	if system != "" {
		opts = append(opts, ai.WithSystem(system))
	}

	resp, err := genkit.Generate(ctx, gen.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNoOutput
	}
	return text, nil
}

// StreamObject implements Client. The raw JSON stream is accumulated and
// the growing string field recovered with the partial-JSON extractor, so
// the callback always sees a valid prefix of the final value.
func (gen *Generator) StreamObject(ctx context.Context, req ObjectRequest, cb ObjectCallback) (string, error) {
	if err := gen.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var outputOpt ai.GenerateOption
	switch req.Field {
	case FieldCSV:
		outputOpt = ai.WithOutputType(csvObject{})
	case FieldMarkdown:
		outputOpt = ai.WithOutputType(markdownObject{})
	default:
		return "", fmt.Errorf("unsupported object field %q", req.Field)
	}

	var raw strings.Builder
	var lastSent string

	opts := []ai.GenerateOption{
		ai.WithModelName(gen.modelName(req.Model)),
		ai.WithPrompt(req.Prompt),
		outputOpt,
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}
	if cb != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			for _, part := range chunk.Content {
				if part != nil && part.IsText() {
					raw.WriteString(part.Text)
				}
			}
			value, ok := ExtractStringField(raw.String(), string(req.Field))
			if !ok || value == lastSent {
				return nil
			}
			lastSent = value
			return cb(ctx, value)
		}))
	}

	resp, err := genkit.Generate(ctx, gen.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generate object: %w", err)
	}

	final, err := gen.finalField(resp, req.Field)
	if err != nil {
		return "", err
	}

	// The last streamed value and the parsed final value are the same
	// string in the usual case; send a trailing delta when parsing
	// recovered more than the stream did.
	if cb != nil && final != lastSent {
		if err := cb(ctx, final); err != nil {
			return "", err
		}
	}
	return final, nil
}

func (gen *Generator) finalField(resp *ai.ModelResponse, field ObjectField) (string, error) {
	switch field {
	case FieldCSV:
		var out csvObject
		if err := resp.Output(&out); err != nil {
			return "", fmt.Errorf("parse object output: %w", err)
		}
		return out.CSV, nil
	case FieldMarkdown:
		var out markdownObject
		if err := resp.Output(&out); err != nil {
			return "", fmt.Errorf("parse object output: %w", err)
		}
		return out.Markdown, nil
	default:
		return "", fmt.Errorf("unsupported object field %q", field)
	}
}

func (gen *Generator) lookupTools(names []string) ([]ai.ToolRef, error) {
	refs := make([]ai.ToolRef, 0, len(names))
	for _, name := range names {
		tool := genkit.LookupTool(gen.g, name)
		if tool == nil {
			return nil, fmt.Errorf("tool %q not registered", name)
		}
		refs = append(refs, tool)
	}
	return refs, nil
}
