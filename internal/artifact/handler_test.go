package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/easel-ai/easel/internal/stream"
	"github.com/easel-ai/easel/internal/testutil"
)

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	sheet := NewSheetHandler(&testutil.FakeModel{}, "")
	registry := NewRegistry(map[Kind]Handler{
		KindSheet: sheet,
	})

	h, err := registry.Handler(KindSheet)
	if err != nil {
		t.Fatalf("Handler(sheet) error = %v", err)
	}
	if h != sheet {
		t.Error("Handler(sheet) returned wrong handler")
	}

	// Enumerated kinds without a registered handler are an expected
	// miss, not a panic.
	for _, kind := range []Kind{KindCode, KindImage} {
		if _, err := registry.Handler(kind); !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("Handler(%s) error = %v, want ErrUnsupportedKind", kind, err)
		}
	}
}

func TestValidKind(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindText, KindCode, KindImage, KindSheet} {
		if !ValidKind(kind) {
			t.Errorf("ValidKind(%s) = false", kind)
		}
	}
	if ValidKind("video") {
		t.Error("ValidKind(video) = true")
	}
}

func TestSheetHandlerCreateStreamsSnapshots(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeModel{
		Objects: []testutil.ScriptedObject{
			{Snapshots: []string{"name", "name,role", "name,role\nalice,dev"}},
		},
	}
	handler := NewSheetHandler(fake, "")
	buf := &stream.Buffer{}

	content, err := handler.Create(context.Background(), CreateRequest{
		Title: "Team roster",
		Kind:  KindSheet,
	}, buf)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if content != "name,role\nalice,dev" {
		t.Errorf("content = %q", content)
	}

	events := buf.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, ev := range events {
		if ev.Type != stream.EventContentDelta {
			t.Errorf("event %d type = %q, want content-delta", i, ev.Type)
		}
	}
	// Accumulated snapshots: the last delta equals the final content.
	if last := events[len(events)-1].Content.(string); last != content {
		t.Errorf("last delta = %q, want final content %q", last, content)
	}
}

func TestSheetHandlerSeedSkipsModel(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeModel{}
	handler := NewSheetHandler(fake, "")
	buf := &stream.Buffer{}

	seed := "a,b\n1,2"
	content, err := handler.Create(context.Background(), CreateRequest{
		Title: "Prefilled",
		Kind:  KindSheet,
		Seed:  seed,
	}, buf)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if content != seed {
		t.Errorf("content = %q, want seed unchanged", content)
	}

	events := buf.Events()
	if len(events) != 1 || events[0].Type != stream.EventContentDelta {
		t.Fatalf("events = %v, want exactly one content-delta", buf.Types())
	}
	if events[0].Content.(string) != seed {
		t.Errorf("delta = %q, want seed", events[0].Content)
	}
	if fake.ObjectCalls != 0 || fake.StepCalls != 0 || fake.CompleteCalls != 0 {
		t.Errorf("model calls = %d/%d/%d, want none",
			fake.ObjectCalls, fake.StepCalls, fake.CompleteCalls)
	}
}

func TestSheetHandlerMetadataFirst(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeModel{
		Objects: []testutil.ScriptedObject{{Snapshots: []string{"x,y"}}},
	}
	handler := NewSheetHandler(fake, "")
	buf := &stream.Buffer{}

	meta := map[string]any{"source": "crm-export"}
	if _, err := handler.Create(context.Background(), CreateRequest{
		Title:    "With metadata",
		Kind:     KindSheet,
		Metadata: meta,
	}, buf); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	events := buf.Events()
	if len(events) < 2 {
		t.Fatalf("got %d events, want metadata then deltas", len(events))
	}
	if events[0].Type != stream.EventMetadata {
		t.Errorf("first event = %q, want metadata", events[0].Type)
	}
}

func TestTextHandlerUpdate(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeModel{
		Objects: []testutil.ScriptedObject{
			{Snapshots: []string{"# Revised", "# Revised\n\nBetter text."}},
		},
	}
	handler := NewTextHandler(fake, "")
	buf := &stream.Buffer{}

	doc := &Document{Title: "Draft", Kind: KindText, Content: "# Draft\n\nOld text."}
	content, err := handler.Update(context.Background(), doc, "make it better", buf)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if content != "# Revised\n\nBetter text." {
		t.Errorf("content = %q", content)
	}
	if fake.ObjectCalls != 1 {
		t.Errorf("ObjectCalls = %d, want 1", fake.ObjectCalls)
	}
}

func TestSheetHandlerModelFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("model unavailable")
	fake := &testutil.FakeModel{
		Objects: []testutil.ScriptedObject{{Err: wantErr}},
	}
	handler := NewSheetHandler(fake, "")
	buf := &stream.Buffer{}

	if _, err := handler.Create(context.Background(), CreateRequest{
		Title: "Doomed",
		Kind:  KindSheet,
	}, buf); !errors.Is(err, wantErr) {
		t.Errorf("Create() error = %v, want wrapped %v", err, wantErr)
	}
}
