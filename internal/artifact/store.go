package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/easel-ai/easel/internal/log"
)

// DB is the database capability the store needs. *pgxpool.Pool
// satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages document persistence. The version sequence of a
// document is append-only; no row is ever updated in place.
type Store struct {
	db     DB
	logger log.Logger
}

// NewStore creates a document store.
func NewStore(db DB, logger log.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Create inserts version 1 of a new document.
func (s *Store) Create(ctx context.Context, doc *Document) error {
	metadata, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	doc.Version = 1
	if _, err := s.db.Exec(ctx, `
		INSERT INTO documents (id, version, title, kind, content, metadata, chat_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.Version, doc.Title, string(doc.Kind), doc.Content,
		metadata, nullableUUID(doc.ChatID), doc.UserID,
	); err != nil {
		return fmt.Errorf("create document %s: %w", doc.ID, err)
	}

	s.logger.Debug("created document",
		"id", doc.ID, "kind", doc.Kind, "title", doc.Title)
	return nil
}

// AppendVersion inserts the next version of an existing document. The
// version number is assigned atomically from the current maximum, so
// concurrent appends cannot produce gaps or duplicates.
func (s *Store) AppendVersion(ctx context.Context, doc *Document) error {
	metadata, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO documents (id, version, title, kind, content, metadata, chat_id, user_id)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, $5, $6, $7
		FROM documents WHERE id = $1
		RETURNING version`,
		doc.ID, doc.Title, string(doc.Kind), doc.Content,
		metadata, nullableUUID(doc.ChatID), doc.UserID,
	).Scan(&doc.Version)
	if err != nil {
		return fmt.Errorf("append document version %s: %w", doc.ID, err)
	}

	s.logger.Debug("appended document version",
		"id", doc.ID, "version", doc.Version)
	return nil
}

// Latest returns the newest version of a document, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, version, title, kind, content, metadata, chat_id, user_id, created_at
		FROM documents
		WHERE id = $1
		ORDER BY version DESC
		LIMIT 1`, id,
	)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest document %s: %w", id, err)
	}
	return doc, nil
}

// Versions returns every version of a document in ascending order, or
// ErrNotFound when none exist.
func (s *Store) Versions(ctx context.Context, id uuid.UUID) ([]*Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, version, title, kind, content, metadata, chat_id, user_id, created_at
		FROM documents
		WHERE id = $1
		ORDER BY version ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query document versions %s: %w", id, err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document version: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document versions: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs, nil
}

// scanTarget is satisfied by pgx.Row and pgx.Rows.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanDocument(row scanTarget) (*Document, error) {
	var doc Document
	var kind string
	var metadata []byte
	var chatID *uuid.UUID
	if err := row.Scan(&doc.ID, &doc.Version, &doc.Title, &kind, &doc.Content,
		&metadata, &chatID, &doc.UserID, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.Kind = Kind(kind)
	if chatID != nil {
		doc.ChatID = *chatID
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal document metadata: %w", err)
		}
	}
	return &doc, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal document metadata: %w", err)
	}
	return data, nil
}

// nullableUUID maps the zero uuid to SQL NULL.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
