// Package stream defines the event stream that carries all output of a
// chat turn: model text, reasoning, tool lifecycle events, and artifact
// construction events, multiplexed in order onto one channel.
//
// Producers hold a Sink and never see the transport. The HTTP layer owns
// the concrete SSE writer; tests use Buffer.
package stream

import (
	"context"
	"sync"
)

// EventType identifies a stream event.
type EventType string

// Stream event types. Artifact construction uses the envelope sequence
// id, title, kind, clear, then deltas, then exactly one finish.
const (
	EventTextDelta    EventType = "text-delta"
	EventReasoning    EventType = "reasoning"
	EventToolCall     EventType = "tool-call"
	EventToolResult   EventType = "tool-result"
	EventID           EventType = "id"
	EventTitle        EventType = "title"
	EventKind         EventType = "kind"
	EventClear        EventType = "clear"
	EventContentDelta EventType = "content-delta"
	EventMetadata     EventType = "metadata"
	EventFinish       EventType = "finish"
	EventError        EventType = "error"
)

// Event is one unit on the stream. Content is a string for delta and
// envelope events, and a structured payload for tool lifecycle and
// metadata events.
type Event struct {
	Type    EventType `json:"type"`
	Content any       `json:"content"`
}

// ToolCallInfo is the payload of a tool-call event.
type ToolCallInfo struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
	Args       any    `json:"args"`
}

// ToolResultInfo is the payload of a tool-result event.
type ToolResultInfo struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
	Result     any    `json:"result"`
}

// TextDelta builds a text-delta event.
func TextDelta(s string) Event { return Event{Type: EventTextDelta, Content: s} }

// Reasoning builds a reasoning delta event.
func Reasoning(s string) Event { return Event{Type: EventReasoning, Content: s} }

// ContentDelta builds an artifact content-delta event.
func ContentDelta(s string) Event { return Event{Type: EventContentDelta, Content: s} }

// Sink receives stream events. Write blocks until the event is accepted
// or the context is done. Implementations are not required to be safe for
// concurrent writers; the orchestrator serializes all writes.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

type discard struct{}

func (discard) Write(context.Context, Event) error { return nil }

// Discard returns a Sink that drops every event.
func Discard() Sink { return discard{} }

// Buffer is a Sink that records events in order. Test use.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Write appends the event.
func (b *Buffer) Write(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

// Events returns a copy of all recorded events.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Types returns the recorded event types in order.
func (b *Buffer) Types() []EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]EventType, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.Type
	}
	return out
}
