package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSSEWriterSetsHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	if _, err := NewSSEWriter(rec); err != nil {
		t.Fatalf("NewSSEWriter() error = %v", err)
	}

	tests := []struct {
		header string
		want   string
	}{
		{"Content-Type", "text/event-stream"},
		{"Cache-Control", "no-cache"},
		{"Connection", "keep-alive"},
		{"X-Accel-Buffering", "no"},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.want {
			t.Errorf("header %s = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSSEWriterFramesEvents(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w, err := NewSSEWriter(rec)
	if err != nil {
		t.Fatalf("NewSSEWriter() error = %v", err)
	}

	ctx := context.Background()
	if err := w.Write(ctx, TextDelta("hello ")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(ctx, Event{Type: EventFinish, Content: ""}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	body := rec.Body.String()
	wantFrames := []string{
		"event: text-delta\ndata: \"hello \"\n\n",
		"event: finish\ndata: \"\"\n\n",
	}
	for _, frame := range wantFrames {
		if !strings.Contains(body, frame) {
			t.Errorf("body missing frame %q:\n%s", frame, body)
		}
	}
}

func TestSSEWriterStructuredPayload(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w, err := NewSSEWriter(rec)
	if err != nil {
		t.Fatalf("NewSSEWriter() error = %v", err)
	}

	ev := Event{Type: EventToolCall, Content: ToolCallInfo{
		ToolCallID: "call-1",
		ToolName:   "scrapeUrl",
		Args:       map[string]any{"url": "https://example.com"},
	}}
	if err := w.Write(context.Background(), ev); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: tool-call\n") {
		t.Errorf("body = %q, want tool-call event name", body)
	}
	for _, fragment := range []string{`"toolCallId":"call-1"`, `"toolName":"scrapeUrl"`, `"url":"https://example.com"`} {
		if !strings.Contains(body, fragment) {
			t.Errorf("body missing %q:\n%s", fragment, body)
		}
	}
}

func TestSSEWriterCanceledContext(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w, err := NewSSEWriter(rec)
	if err != nil {
		t.Fatalf("NewSSEWriter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Write(ctx, TextDelta("late")); err == nil {
		t.Error("Write() after cancel = nil, want error")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want nothing written after cancel", rec.Body.String())
	}
}

func TestSSEWriterErrorEvent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w, err := NewSSEWriter(rec)
	if err != nil {
		t.Fatalf("NewSSEWriter() error = %v", err)
	}

	ev := Event{Type: EventError, Content: "An error occurred"}
	if err := w.Write(context.Background(), ev); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := "event: error\ndata: \"An error occurred\"\n\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}
