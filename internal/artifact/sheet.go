package artifact

import (
	"context"
	"fmt"

	"github.com/easel-ai/easel/internal/model"
	"github.com/easel-ai/easel/internal/stream"
)

const sheetCreateSystem = `You are a spreadsheet creation assistant. Create a spreadsheet in csv format based on the given prompt. The spreadsheet should contain meaningful column headers and data.`

const sheetUpdateSystem = `Improve the following spreadsheet based on the given prompt. Keep the csv format with meaningful column headers.

%s`

// SheetHandler builds sheet documents: CSV content generated under a
// one-field schema constraint, streamed as accumulated snapshots.
type SheetHandler struct {
	models model.Client
	model  string
}

// NewSheetHandler creates a sheet handler. modelName may be empty to use
// the client default.
func NewSheetHandler(models model.Client, modelName string) *SheetHandler {
	return &SheetHandler{models: models, model: modelName}
}

// Create implements Handler. Metadata is forwarded first when present.
// Seed content short-circuits generation entirely: one content delta,
// returned unchanged, zero model calls.
func (h *SheetHandler) Create(ctx context.Context, req CreateRequest, sink stream.Sink) (string, error) {
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

	return h.streamCSV(ctx, sheetCreateSystem, req.Title, sink)
}

// Update implements Handler.
func (h *SheetHandler) Update(ctx context.Context, doc *Document, instruction string, sink stream.Sink) (string, error) {
	system := fmt.Sprintf(sheetUpdateSystem, doc.Content)
	return h.streamCSV(ctx, system, instruction, sink)
}

func (h *SheetHandler) streamCSV(ctx context.Context, system, prompt string, sink stream.Sink) (string, error) {
	content, err := h.models.StreamObject(ctx, model.ObjectRequest{
		Model:  h.model,
		System: system,
		Prompt: prompt,
		Field:  model.FieldCSV,
	}, func(ctx context.Context, accumulated string) error {
		return sink.Write(ctx, stream.ContentDelta(accumulated))
	})
	if err != nil {
		return "", fmt.Errorf("generate sheet: %w", err)
	}
	return content, nil
}
