package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/stream"
)

// CreateDocumentInput defines input for the createDocument tool.
type CreateDocumentInput struct {
	Title    string         `json:"title" jsonschema_description:"The document title"`
	Kind     string         `json:"kind" jsonschema_description:"The artifact kind: text, code, image, or sheet"`
	Content  string         `json:"content,omitempty" jsonschema_description:"Content to include in the document, such as scraped data"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema_description:"Metadata for the document, e.g. {\"dataType\": \"team-member\"}"`
}

// UpdateDocumentInput defines input for the updateDocument tool.
type UpdateDocumentInput struct {
	ID          string `json:"id" jsonschema_description:"The ID of the document to update"`
	Description string `json:"description" jsonschema_description:"The change to make to the document"`
}

// DocumentOutput is the result of a document tool call.
type DocumentOutput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// DocumentStore is the persistence surface the document tools need.
// Satisfied by *artifact.Store.
type DocumentStore interface {
	Create(ctx context.Context, doc *artifact.Document) error
	AppendVersion(ctx context.Context, doc *artifact.Document) error
	Latest(ctx context.Context, id uuid.UUID) (*artifact.Document, error)
}

// DocumentTools builds and revises streamed artifacts. Each call wraps
// handler dispatch in the event envelope the rendering side consumes:
// id, title, kind, clear, content deltas, then finish. The finish
// event goes out even when the handler fails, so the client-side
// artifact never sticks in a streaming state.
type DocumentTools struct {
	handlers  *artifact.Registry
	documents DocumentStore
	logger    log.Logger
}

// NewDocumentTools creates the document toolset.
func NewDocumentTools(handlers *artifact.Registry, documents DocumentStore, logger log.Logger) (*DocumentTools, error) {
	if handlers == nil {
		return nil, fmt.Errorf("handler registry is required")
	}
	if documents == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &DocumentTools{handlers: handlers, documents: documents, logger: logger}, nil
}

// Tools returns the document tools.
func (dt *DocumentTools) Tools() ([]*Tool, error) {
	create, err := NewTool(
		"createDocument",
		"Create a document for writing or content creation activities. The content "+
			"is generated from the title and kind, or seeded from provided content "+
			"such as scraped data.",
		dt.CreateDocument,
	)
	if err != nil {
		return nil, err
	}

	update, err := NewTool(
		"updateDocument",
		"Update an existing document with the described changes. A new version is "+
			"created; earlier versions stay addressable.",
		dt.UpdateDocument,
	)
	if err != nil {
		return nil, err
	}

	return []*Tool{create, update}, nil
}

// CreateDocument streams a new document and persists it as version 1.
func (dt *DocumentTools) CreateDocument(ctx context.Context, input CreateDocumentInput, sink stream.Sink) (DocumentOutput, error) {
	if input.Title == "" {
		return DocumentOutput{}, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "title is required"}
	}
	kind := artifact.Kind(input.Kind)
	if !artifact.ValidKind(kind) {
		return DocumentOutput{}, &ToolError{
			ErrorType: ErrTypeInvalidArguments,
			Message:   fmt.Sprintf("unknown artifact kind %q", input.Kind),
		}
	}

	id := uuid.New()
	if err := dt.writeEnvelope(ctx, sink, id, input.Title, kind); err != nil {
		return DocumentOutput{}, err
	}

	content, handlerErr := dt.runCreate(ctx, input, sink)

	// The envelope closes no matter how the handler fared.
	if err := sink.Write(ctx, stream.Event{Type: stream.EventFinish, Content: ""}); err != nil {
		return DocumentOutput{}, err
	}
	if handlerErr != nil {
		return DocumentOutput{}, handlerErr
	}

	turn := TurnFromContext(ctx)
	doc := &artifact.Document{
		ID:       id,
		Title:    input.Title,
		Kind:     kind,
		Content:  content,
		Metadata: input.Metadata,
		ChatID:   turn.ChatID,
		UserID:   turn.UserID,
	}
	if err := dt.documents.Create(ctx, doc); err != nil {
		return DocumentOutput{}, fmt.Errorf("failed to save document: %w", err)
	}

	dt.logger.Info("document created",
		"document_id", id,
		"kind", kind,
		"title", input.Title)

	return DocumentOutput{
		ID:      id.String(),
		Title:   input.Title,
		Kind:    string(kind),
		Content: "A document was created and is now visible to the user.",
	}, nil
}

// UpdateDocument streams a revision of the latest version and appends
// it as the next version.
func (dt *DocumentTools) UpdateDocument(ctx context.Context, input UpdateDocumentInput, sink stream.Sink) (DocumentOutput, error) {
	if input.Description == "" {
		return DocumentOutput{}, &ToolError{ErrorType: ErrTypeInvalidArguments, Message: "description is required"}
	}
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return DocumentOutput{}, &ToolError{
			ErrorType: ErrTypeInvalidArguments,
			Message:   fmt.Sprintf("invalid document id %q", input.ID),
		}
	}

	doc, err := dt.documents.Latest(ctx, id)
	if err != nil {
		return DocumentOutput{}, fmt.Errorf("failed to load document: %w", err)
	}

	if err := dt.writeEnvelope(ctx, sink, doc.ID, doc.Title, doc.Kind); err != nil {
		return DocumentOutput{}, err
	}

	content, handlerErr := dt.runUpdate(ctx, doc, input.Description, sink)

	if err := sink.Write(ctx, stream.Event{Type: stream.EventFinish, Content: ""}); err != nil {
		return DocumentOutput{}, err
	}
	if handlerErr != nil {
		return DocumentOutput{}, handlerErr
	}

	next := *doc
	next.Content = content
	if err := dt.documents.AppendVersion(ctx, &next); err != nil {
		return DocumentOutput{}, fmt.Errorf("failed to save document version: %w", err)
	}

	dt.logger.Info("document updated",
		"document_id", doc.ID,
		"version", next.Version)

	return DocumentOutput{
		ID:      doc.ID.String(),
		Title:   doc.Title,
		Kind:    string(doc.Kind),
		Content: "The document has been updated successfully.",
	}, nil
}

func (dt *DocumentTools) writeEnvelope(ctx context.Context, sink stream.Sink, id uuid.UUID, title string, kind artifact.Kind) error {
	events := []stream.Event{
		{Type: stream.EventID, Content: id.String()},
		{Type: stream.EventTitle, Content: title},
		{Type: stream.EventKind, Content: string(kind)},
		{Type: stream.EventClear, Content: ""},
	}
	for _, ev := range events {
		if err := sink.Write(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (dt *DocumentTools) runCreate(ctx context.Context, input CreateDocumentInput, sink stream.Sink) (string, error) {
	h, err := dt.handlers.Handler(artifact.Kind(input.Kind))
	if err != nil {
		return "", err
	}
	return h.Create(ctx, artifact.CreateRequest{
		Title:    input.Title,
		Kind:     artifact.Kind(input.Kind),
		Seed:     input.Content,
		Metadata: input.Metadata,
	}, sink)
}

func (dt *DocumentTools) runUpdate(ctx context.Context, doc *artifact.Document, instruction string, sink stream.Sink) (string, error) {
	h, err := dt.handlers.Handler(doc.Kind)
	if err != nil {
		return "", err
	}
	return h.Update(ctx, doc, instruction, sink)
}
