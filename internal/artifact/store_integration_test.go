package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/testutil"
)

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store := NewStore(db.Pool, log.NewNop())
	ctx := context.Background()

	t.Run("create and append versions", func(t *testing.T) {
		doc := &Document{
			ID:      uuid.New(),
			Title:   "Quarterly numbers",
			Kind:    KindSheet,
			Content: "q,revenue\n1,100",
			UserID:  "user-1",
			Metadata: map[string]any{
				"currency": "EUR",
			},
		}
		if err := store.Create(ctx, doc); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if doc.Version != 1 {
			t.Errorf("Version = %d, want 1", doc.Version)
		}

		next := *doc
		next.Content = "q,revenue\n1,100\n2,140"
		if err := store.AppendVersion(ctx, &next); err != nil {
			t.Fatalf("AppendVersion() error = %v", err)
		}
		if next.Version != 2 {
			t.Errorf("Version = %d, want 2", next.Version)
		}

		latest, err := store.Latest(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if latest.Version != 2 || latest.Content != next.Content {
			t.Errorf("Latest() = v%d %q", latest.Version, latest.Content)
		}
		if latest.Metadata["currency"] != "EUR" {
			t.Errorf("Metadata = %v, want currency preserved", latest.Metadata)
		}

		versions, err := store.Versions(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Versions() error = %v", err)
		}
		if len(versions) != 2 {
			t.Fatalf("got %d versions, want 2", len(versions))
		}
		// Addressable by index: versions[i] is version i+1.
		for i, v := range versions {
			if v.Version != i+1 {
				t.Errorf("versions[%d].Version = %d, want %d", i, v.Version, i+1)
			}
		}
		if versions[0].Content != "q,revenue\n1,100" {
			t.Errorf("versions[0].Content = %q, earlier version must be unchanged", versions[0].Content)
		}
	})

	t.Run("latest missing document", func(t *testing.T) {
		if _, err := store.Latest(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Latest() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("versions missing document", func(t *testing.T) {
		if _, err := store.Versions(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Errorf("Versions() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("document without chat or metadata", func(t *testing.T) {
		doc := &Document{
			ID:     uuid.New(),
			Title:  "Standalone note",
			Kind:   KindText,
			UserID: "user-2",
		}
		if err := store.Create(ctx, doc); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := store.Latest(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if got.ChatID != uuid.Nil {
			t.Errorf("ChatID = %v, want zero", got.ChatID)
		}
		if got.Metadata != nil {
			t.Errorf("Metadata = %v, want nil", got.Metadata)
		}
	})
}
