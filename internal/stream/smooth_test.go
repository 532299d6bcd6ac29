package stream

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSmootherEmitsWholeWords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	buf := &Buffer{}
	sm := NewSmoother(buf)

	// Chunks arrive at arbitrary split points, including mid-word.
	for _, chunk := range []string{"Hel", "lo wor", "ld, str", "eams are fun"} {
		if err := sm.Write(ctx, TextDelta(chunk)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := sm.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got strings.Builder
	for _, ev := range buf.Events() {
		if ev.Type != EventTextDelta {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
		text := ev.Content.(string)
		// Every emitted chunk except the last must end in whitespace,
		// and none may begin or end inside a word.
		if strings.Contains(strings.TrimRight(text, " \t\n"), " ") && !strings.HasSuffix(text, " ") {
			t.Errorf("chunk %q mixes complete and partial words", text)
		}
		got.WriteString(text)
	}

	want := "Hello world, streams are fun"
	if got.String() != want {
		t.Errorf("reassembled = %q, want %q", got.String(), want)
	}
}

func TestSmootherNeverSplitsRunes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	buf := &Buffer{}
	sm := NewSmoother(buf)

	// Feed multi-byte text one byte at a time. The smoother sees each
	// fragment as a string and must still emit only valid UTF-8.
	input := "héllo wörld 日本語 テスト"
	for _, chunk := range []string{"héllo wö", "rld 日", "本語 テスト"} {
		if err := sm.Write(ctx, TextDelta(chunk)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := sm.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got strings.Builder
	for _, ev := range buf.Events() {
		text := ev.Content.(string)
		if !utf8.ValidString(text) {
			t.Errorf("chunk %q is not valid UTF-8", text)
		}
		got.WriteString(text)
	}
	if got.String() != input {
		t.Errorf("reassembled = %q, want %q", got.String(), input)
	}
}

func TestSmootherFlushesBeforePassthrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	buf := &Buffer{}
	sm := NewSmoother(buf)

	if err := sm.Write(ctx, TextDelta("partial")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	call := Event{Type: EventToolCall, Content: ToolCallInfo{ToolCallID: "c1", ToolName: "getWeather"}}
	if err := sm.Write(ctx, call); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	types := buf.Types()
	want := []EventType{EventTextDelta, EventToolCall}
	if len(types) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(types), len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestSmootherSeparatesReasoningFromText(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	buf := &Buffer{}
	sm := NewSmoother(buf)

	if err := sm.Write(ctx, Reasoning("thinking ab")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sm.Write(ctx, TextDelta("answer he")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sm.Write(ctx, Reasoning("out it")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sm.Write(ctx, TextDelta("re")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sm.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var reasoning, text strings.Builder
	for _, ev := range buf.Events() {
		switch ev.Type {
		case EventReasoning:
			reasoning.WriteString(ev.Content.(string))
		case EventTextDelta:
			text.WriteString(ev.Content.(string))
		default:
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	}
	if reasoning.String() != "thinking about it" {
		t.Errorf("reasoning = %q", reasoning.String())
	}
	if text.String() != "answer here" {
		t.Errorf("text = %q", text.String())
	}
}

func TestSplitWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantChunk string
		wantRest  string
	}{
		{name: "no boundary", input: "partial", wantChunk: "", wantRest: "partial"},
		{name: "single word done", input: "hello ", wantChunk: "hello ", wantRest: ""},
		{name: "trailing partial", input: "hello wor", wantChunk: "hello ", wantRest: "wor"},
		{name: "newline boundary", input: "line one\ntwo", wantChunk: "line one\n", wantRest: "two"},
		{name: "empty", input: "", wantChunk: "", wantRest: ""},
		{name: "multibyte whitespace", input: "日本　語", wantChunk: "日本　", wantRest: "語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunk, rest := splitWords(tt.input)
			if chunk != tt.wantChunk || rest != tt.wantRest {
				t.Errorf("splitWords(%q) = (%q, %q), want (%q, %q)",
					tt.input, chunk, rest, tt.wantChunk, tt.wantRest)
			}
		})
	}
}
