// Package agent runs conversation turns: it drives the model step loop,
// dispatches tool calls, multiplexes every output onto the turn's event
// stream, and persists the exchange once the stream completes.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/easel-ai/easel/internal/chat"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/model"
	"github.com/easel-ai/easel/internal/stream"
	"github.com/easel-ai/easel/internal/tools"
)

// ErrNoUserMessage indicates the turn carried no user message to respond
// to.
var ErrNoUserMessage = errors.New("no user message in turn")

// opaqueErrorMessage is what clients see when a turn fails mid-stream.
// Internal detail stays in the logs.
const opaqueErrorMessage = "Oops, an error occurred!"

const defaultMaxSteps = 8

// ChatStore is the chat persistence capability the orchestrator needs.
// *chat.Store satisfies it.
type ChatStore interface {
	Get(ctx context.Context, id uuid.UUID) (*chat.Chat, error)
	Create(ctx context.Context, c *chat.Chat) error
	AddMessages(ctx context.Context, chatID uuid.UUID, messages []*chat.Message) error
}

// Config configures an Orchestrator.
type Config struct {
	Models model.Client
	Chats  ChatStore
	Tools  *tools.Registry
	Logger log.Logger

	// DefaultModel and ReasoningModel are the provider-qualified names
	// behind the two selectable chat models.
	DefaultModel   string
	ReasoningModel string

	// MaxSteps bounds the model step loop. Zero selects the default.
	MaxSteps int
}

// Orchestrator runs chat turns. Safe for concurrent use; all per-turn
// state lives on the stack of Run.
type Orchestrator struct {
	models         model.Client
	chats          ChatStore
	tools          *tools.Registry
	logger         log.Logger
	defaultModel   string
	reasoningModel string
	maxSteps       int
}

// New creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Models == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if cfg.Chats == nil {
		return nil, fmt.Errorf("chat store is required")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if cfg.ReasoningModel == "" {
		cfg.ReasoningModel = cfg.DefaultModel
	}

	return &Orchestrator{
		models:         cfg.Models,
		chats:          cfg.Chats,
		tools:          cfg.Tools,
		logger:         cfg.Logger,
		defaultModel:   cfg.DefaultModel,
		reasoningModel: cfg.ReasoningModel,
		maxSteps:       cfg.MaxSteps,
	}, nil
}

// Turn is one client request: the chat it belongs to, the caller, and
// the conversation as the client sees it.
type Turn struct {
	ChatID        uuid.UUID
	UserID        string
	Messages      []*ai.Message
	SelectedModel string
}

// Run executes one turn. Events stream to sink in production order.
//
// Errors returned before the first sink write are the caller's to map
// to a response status: ErrNoUserMessage, chat.ErrForbidden, and
// storage failures persisting the user message. Once streaming has
// begun a failure is reported on the stream as one opaque error event
// and the returned error carries the detail for logging.
//
// The user message is durable before any model work starts. The step
// output is persisted after the stream completes; a failure there is
// logged and does not fail the turn.
func (o *Orchestrator) Run(ctx context.Context, turn Turn, sink stream.Sink) error {
	userMsg := latestUserMessage(turn.Messages)
	if userMsg == nil {
		return ErrNoUserMessage
	}

	created, c, err := o.ensureChat(ctx, turn, messageText(userMsg))
	if err != nil {
		return err
	}

	if err := o.chats.AddMessages(ctx, turn.ChatID, []*chat.Message{{
		ID:      uuid.New(),
		ChatID:  turn.ChatID,
		Role:    chat.RoleUser,
		Content: userMsg.Content,
	}}); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}

	if created {
		if err := sink.Write(ctx, stream.Event{
			Type:    stream.EventMetadata,
			Content: map[string]string{"chatId": c.ID.String(), "title": c.Title},
		}); err != nil {
			return err
		}
	}

	newMessages, err := o.stepLoop(ctx, turn, sink)
	if err != nil {
		o.logger.Error("turn failed mid-stream",
			"chat_id", turn.ChatID, "error", err)
		if werr := sink.Write(ctx, stream.Event{
			Type:    stream.EventError,
			Content: opaqueErrorMessage,
		}); werr != nil {
			o.logger.Warn("write error event", "error", werr)
		}
		return err
	}

	o.persistStepOutput(ctx, turn.ChatID, newMessages)
	return nil
}

// ensureChat loads the chat, creating it with a synthesized title on
// first contact. Returns whether this call created it.
func (o *Orchestrator) ensureChat(ctx context.Context, turn Turn, userText string) (bool, *chat.Chat, error) {
	c, err := o.chats.Get(ctx, turn.ChatID)
	if err == nil {
		if c.UserID != turn.UserID {
			return false, nil, chat.ErrForbidden
		}
		return false, c, nil
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return false, nil, fmt.Errorf("get chat %s: %w", turn.ChatID, err)
	}

	c = &chat.Chat{
		ID:         turn.ChatID,
		UserID:     turn.UserID,
		Title:      o.generateTitle(ctx, userText),
		Visibility: chat.VisibilityPrivate,
	}
	if err := o.chats.Create(ctx, c); err != nil {
		return false, nil, fmt.Errorf("create chat %s: %w", turn.ChatID, err)
	}
	return true, c, nil
}

// generateTitle synthesizes a short chat title from the first user
// message. A model failure falls back to the truncated message text; a
// title is never worth failing the turn over.
func (o *Orchestrator) generateTitle(ctx context.Context, userText string) string {
	title, err := o.models.Complete(ctx, titlePrompt, userText)
	if err != nil {
		o.logger.Warn("title generation failed", "error", err)
		title = userText
	}
	return truncateTitle(title)
}

func truncateTitle(s string) string {
	const maxTitle = 80
	runes := []rune(s)
	if len(runes) <= maxTitle {
		return s
	}
	return string(runes[:maxTitle])
}

// stepLoop is the streaming heart of a turn: up to maxSteps model
// steps, each either producing a final answer or tool requests that
// are executed and fed back as tool responses. Returns every message
// produced, for post-stream persistence.
func (o *Orchestrator) stepLoop(ctx context.Context, turn Turn, sink stream.Sink) ([]*ai.Message, error) {
	reasoning := turn.SelectedModel == ModelChatReasoning

	modelName := o.defaultModel
	var toolNames []string
	if reasoning {
		// The reasoning model gets no tools; it answers in one pass.
		modelName = o.reasoningModel
	} else {
		toolNames = o.tools.Names()
	}

	history := truncateHistory(turn.Messages, historyBudget)
	smoother := stream.NewSmoother(sink)
	toolCtx := tools.ContextWithTurn(ctx, tools.Turn{ChatID: turn.ChatID, UserID: turn.UserID})

	var newMessages []*ai.Message
	for step := 0; step < o.maxSteps; step++ {
		result, err := o.modelStep(ctx, modelName, turn.SelectedModel, history, toolNames, reasoning, smoother)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		history = append(history, result.Message)
		newMessages = append(newMessages, result.Message)

		if len(result.ToolRequests) == 0 {
			o.logger.Debug("turn complete",
				"chat_id", turn.ChatID, "steps", step+1)
			return newMessages, nil
		}

		toolMsg, err := o.dispatchTools(toolCtx, result.ToolRequests, smoother)
		if err != nil {
			return nil, err
		}
		history = append(history, toolMsg)
		newMessages = append(newMessages, toolMsg)
	}

	// Step cap reached. Whatever streamed so far stands as the answer.
	o.logger.Warn("step cap reached", "chat_id", turn.ChatID, "max_steps", o.maxSteps)
	return newMessages, nil
}

// modelStep runs one model step, routing streamed text through the
// smoother. On the reasoning model, think-tag spans split off onto the
// reasoning channel.
func (o *Orchestrator) modelStep(
	ctx context.Context,
	modelName, selectedModel string,
	history []*ai.Message,
	toolNames []string,
	reasoning bool,
	smoother *stream.Smoother,
) (*model.StepResult, error) {
	var splitter model.ThinkSplitter

	cb := func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
		for _, part := range chunk.Content {
			if part == nil || !part.IsText() {
				continue
			}
			if !reasoning {
				if err := smoother.Write(ctx, stream.TextDelta(part.Text)); err != nil {
					return err
				}
				continue
			}
			r, c := splitter.Feed(part.Text)
			if r != "" {
				if err := smoother.Write(ctx, stream.Reasoning(r)); err != nil {
					return err
				}
			}
			if c != "" {
				if err := smoother.Write(ctx, stream.TextDelta(c)); err != nil {
					return err
				}
			}
		}
		return nil
	}

	result, err := o.models.Step(ctx, model.StepRequest{
		Model:    modelName,
		System:   systemPrompt(selectedModel),
		Messages: history,
		Tools:    toolNames,
	}, cb)
	if err != nil {
		return nil, err
	}

	if reasoning {
		r, c := splitter.Flush()
		if r != "" {
			if err := smoother.Write(ctx, stream.Reasoning(r)); err != nil {
				return nil, err
			}
		}
		if c != "" {
			if err := smoother.Write(ctx, stream.TextDelta(c)); err != nil {
				return nil, err
			}
		}
	}
	if err := smoother.Flush(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// dispatchTools executes the step's tool requests in order and returns
// the tool message answering all of them. Recoverable failures become
// structured tool errors the model sees on the next step; anything else
// aborts the turn.
func (o *Orchestrator) dispatchTools(ctx context.Context, reqs []*ai.ToolRequest, sink stream.Sink) (*ai.Message, error) {
	parts := make([]*ai.Part, 0, len(reqs))

	for _, req := range reqs {
		callID := req.Ref
		if callID == "" {
			callID = uuid.NewString()
		}

		if err := sink.Write(ctx, stream.Event{
			Type: stream.EventToolCall,
			Content: stream.ToolCallInfo{
				ToolCallID: callID,
				ToolName:   req.Name,
				Args:       req.Input,
			},
		}); err != nil {
			return nil, err
		}

		output, err := o.executeTool(ctx, req, sink)
		if err != nil {
			return nil, err
		}

		if err := sink.Write(ctx, stream.Event{
			Type: stream.EventToolResult,
			Content: stream.ToolResultInfo{
				ToolCallID: callID,
				ToolName:   req.Name,
				Result:     output,
			},
		}); err != nil {
			return nil, err
		}

		parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   req.Name,
			Ref:    req.Ref,
			Output: output,
		}))
	}

	return ai.NewMessage(ai.RoleTool, nil, parts...), nil
}

// executeTool runs one tool request. The output is either the tool's
// result or, for recoverable failures, the structured tool error.
func (o *Orchestrator) executeTool(ctx context.Context, req *ai.ToolRequest, sink stream.Sink) (any, error) {
	tool, ok := o.tools.Tool(req.Name)
	if !ok {
		// The model asked for a tool that does not exist; tell it so.
		o.logger.Warn("unknown tool requested", "tool", req.Name)
		return &tools.ToolError{
			ErrorType: tools.ErrTypeInvalidArguments,
			Message:   fmt.Sprintf("unknown tool %q", req.Name),
		}, nil
	}

	output, err := tool.Execute(ctx, req.Input, sink)
	if err != nil {
		if te, ok := tools.AsToolError(err); ok {
			o.logger.Debug("tool returned recoverable error",
				"tool", req.Name, "error_type", te.ErrorType)
			return te, nil
		}
		return nil, fmt.Errorf("tool %s: %w", req.Name, err)
	}

	o.logger.Debug("tool executed", "tool", req.Name)
	return output, nil
}

// persistStepOutput saves the sanitized step messages in one batch.
// The stream already completed; a storage failure here is logged, not
// surfaced.
func (o *Orchestrator) persistStepOutput(ctx context.Context, chatID uuid.UUID, msgs []*ai.Message) {
	sanitized := sanitizeMessages(msgs)
	if len(sanitized) == 0 {
		return
	}

	records := make([]*chat.Message, 0, len(sanitized))
	for _, msg := range sanitized {
		records = append(records, &chat.Message{
			ID:      uuid.New(),
			ChatID:  chatID,
			Role:    chatRole(msg.Role),
			Content: msg.Content,
		})
	}

	if err := o.chats.AddMessages(ctx, chatID, records); err != nil {
		o.logger.Error("failed to save chat messages",
			"chat_id", chatID, "count", len(records), "error", err)
	}
}

func chatRole(r ai.Role) chat.Role {
	switch r {
	case ai.RoleUser:
		return chat.RoleUser
	case ai.RoleTool:
		return chat.RoleTool
	default:
		return chat.RoleAssistant
	}
}

// latestUserMessage returns the most recent user message, or nil.
func latestUserMessage(msgs []*ai.Message) *ai.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i] != nil && msgs[i].Role == ai.RoleUser {
			return msgs[i]
		}
	}
	return nil
}

func messageText(msg *ai.Message) string {
	var out string
	for _, part := range msg.Content {
		if part != nil && part.IsText() {
			out += part.Text
		}
	}
	return out
}
