package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/easel-ai/easel/internal/log"
)

// DB is the database capability the store needs. Defined by the consumer;
// *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store manages chat persistence. Safe for concurrent use.
type Store struct {
	db     DB
	logger log.Logger
}

// NewStore creates a chat store.
func NewStore(db DB, logger log.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Create inserts a chat. Creating the same id twice is an idempotent
// no-op; the orchestrator may race itself when a client retries the
// first turn.
func (s *Store) Create(ctx context.Context, c *Chat) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO chats (id, user_id, title, visibility)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, c.UserID, c.Title, string(c.Visibility),
	)
	if err != nil {
		return fmt.Errorf("create chat %s: %w", c.ID, err)
	}

	if tag.RowsAffected() > 0 {
		s.logger.Debug("created chat", "id", c.ID, "user_id", c.UserID)
	}
	return nil
}

// Get retrieves a chat by id. Returns ErrNotFound when it does not exist.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Chat, error) {
	var c Chat
	var visibility string
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, visibility, created_at
		FROM chats WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.Title, &visibility, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	c.Visibility = Visibility(visibility)
	return &c, nil
}

// Delete removes a chat and, via cascade, its messages.
// Returns ErrNotFound when the chat does not exist.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chat %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted chat", "id", id)
	return nil
}

// AddMessages appends messages to a chat in one transaction. Either all
// messages land or none do.
func (s *Store) AddMessages(ctx context.Context, chatID uuid.UUID, messages []*Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	for i, msg := range messages {
		for j, part := range msg.Content {
			if part == nil {
				return fmt.Errorf("message %d has nil content at index %d", i, j)
			}
		}

		contentJSON, err := json.Marshal(msg.Content)
		if err != nil {
			return fmt.Errorf("marshal message content at index %d: %w", i, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO messages (id, chat_id, role, content)
			VALUES ($1, $2, $3, $4)`,
			msg.ID, chatID, string(msg.Role), contentJSON,
		); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Debug("added messages", "chat_id", chatID, "count", len(messages))
	return nil
}

// Messages returns up to limit messages of a chat in insertion order.
func (s *Store) Messages(ctx context.Context, chatID uuid.UUID, limit int32) ([]*Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY seq ASC
		LIMIT $2`, chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages for chat %s: %w", chatID, err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		var role string
		var contentJSON []byte
		if err := rows.Scan(&m.ID, &m.ChatID, &role, &contentJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		var content []*ai.Part
		if err := json.Unmarshal(contentJSON, &content); err != nil {
			// Skip malformed rows rather than failing the whole load.
			s.logger.Warn("failed to unmarshal message content",
				"message_id", m.ID, "error", err)
			continue
		}
		m.Role = Role(role)
		m.Content = content
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
