package artifact

import (
	"context"
	"fmt"

	"github.com/easel-ai/easel/internal/model"
	"github.com/easel-ai/easel/internal/stream"
)

const textCreateSystem = `Write about the given topic. Markdown is supported. Use headings wherever appropriate.`

const textUpdateSystem = `Improve the following contents of the document based on the given prompt. Markdown is supported.

%s`

// TextHandler builds text documents: markdown generated under a
// one-field schema constraint, streamed as accumulated snapshots.
type TextHandler struct {
	models model.Client
	model  string
}

// NewTextHandler creates a text handler.
func NewTextHandler(models model.Client, modelName string) *TextHandler {
	return &TextHandler{models: models, model: modelName}
}

// Create implements Handler. Same seed short-circuit as the sheet
// handler.
func (h *TextHandler) Create(ctx context.Context, req CreateRequest, sink stream.Sink) (string, error) {
	if len(req.Metadata) > 0 {
		if err := sink.Write(ctx, stream.Event{Type: stream.EventMetadata, Content: req.Metadata}); err != nil {
			return "", fmt.Errorf("write metadata event: %w", err)
		}
	}

	if req.Seed != "" {
		if err := sink.Write(ctx, stream.ContentDelta(req.Seed)); err != nil {
			return "", fmt.Errorf("write seed content: %w", err)
		}
		return req.Seed, nil
	}

	return h.streamMarkdown(ctx, textCreateSystem, req.Title, sink)
}

// Update implements Handler.
func (h *TextHandler) Update(ctx context.Context, doc *Document, instruction string, sink stream.Sink) (string, error) {
	system := fmt.Sprintf(textUpdateSystem, doc.Content)
	return h.streamMarkdown(ctx, system, instruction, sink)
}

func (h *TextHandler) streamMarkdown(ctx context.Context, system, prompt string, sink stream.Sink) (string, error) {
	content, err := h.models.StreamObject(ctx, model.ObjectRequest{
		Model:  h.model,
		System: system,
		Prompt: prompt,
		Field:  model.FieldMarkdown,
	}, func(ctx context.Context, accumulated string) error {
		return sink.Write(ctx, stream.ContentDelta(accumulated))
	})
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	return content, nil
}
