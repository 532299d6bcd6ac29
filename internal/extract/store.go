package extract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/easel-ai/easel/internal/log"
)

// DB is the database surface the record store needs.
// Satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists extracted records. The same page gets scraped
// repeatedly, so inserts are idempotent: rows matching an existing
// natural key are silently ignored.
type Store struct {
	db     DB
	logger log.Logger
}

// NewStore creates a record store.
func NewStore(db DB, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// SaveTeamMembers inserts team member records, ignoring duplicates.
// It returns the number of rows actually inserted.
func (s *Store) SaveTeamMembers(ctx context.Context, members []TeamMember) (int64, error) {
	const query = `
		INSERT INTO team_members (id, first_name, last_name, designation, linkedin_url, company_url, company_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (first_name, last_name, company_name) DO NOTHING`

	var inserted int64
	for _, m := range members {
		if m.FirstName == "" {
			return inserted, fmt.Errorf("team member first name is required")
		}

		tag, err := s.db.Exec(ctx, query,
			uuid.New(), m.FirstName, m.LastName, m.Designation,
			m.LinkedInURL, m.CompanyURL, m.CompanyName)
		if err != nil {
			return inserted, fmt.Errorf("failed to save team member: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	s.logger.Info("team members saved",
		"submitted", len(members),
		"inserted", inserted)

	return inserted, nil
}

// SaveDeals inserts deal records, ignoring duplicates. It returns the
// number of rows actually inserted.
func (s *Store) SaveDeals(ctx context.Context, deals []Deal) (int64, error) {
	const query = `
		INSERT INTO deals (id, brokerage, first_name, last_name, email, linkedin_url, work_phone,
			title, revenue, ebitda, asking_price, industry, deal_type, source_website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (brokerage, title, industry) DO NOTHING`

	var inserted int64
	for _, d := range deals {
		if d.Title == "" {
			return inserted, fmt.Errorf("deal title is required")
		}

		tag, err := s.db.Exec(ctx, query,
			uuid.New(), d.Brokerage, d.FirstName, d.LastName, d.Email,
			d.LinkedInURL, d.WorkPhone, d.Title, d.Revenue, d.EBITDA,
			d.AskingPrice, d.Industry, d.DealType, d.SourceWebsite)
		if err != nil {
			return inserted, fmt.Errorf("failed to save deal: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	s.logger.Info("deals saved",
		"submitted", len(deals),
		"inserted", inserted)

	return inserted, nil
}
