package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const matchColumns = `m.id, m.participant1_id, m.participant2_id, m.compatibility_percentage, m.source, m.run_id, m.created_at`

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertMatch(ctx, tx, match)
	})
}

func (r *matchRepository) CreateBatch(ctx context.Context, matches []*domain.Match) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, m := range matches {
			if err := insertMatch(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *matchRepository) ReplaceAll(ctx context.Context, matches []*domain.Match) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// match_members rows go with their match (ON DELETE CASCADE)
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE source <> $1`, domain.MatchSourceDuo); err != nil {
			return fmt.Errorf("failed to clear matches: %w", err)
		}
		for _, m := range matches {
			if err := insertMatch(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *matchRepository) GetByParticipant(ctx context.Context, participantID int64) (*domain.Match, error) {
	var match domain.Match
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		JOIN match_members mm ON mm.match_id = m.id
		WHERE mm.participant_id = $1
	`
	err := r.db.GetContext(ctx, &match, query, participantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) List(ctx context.Context) ([]*domain.Match, error) {
	var matches []*domain.Match
	query := `SELECT ` + matchColumns + ` FROM matches m ORDER BY m.compatibility_percentage DESC, m.id`
	err := r.db.SelectContext(ctx, &matches, query)
	return matches, err
}

func insertMatch(ctx context.Context, tx *sqlx.Tx, match *domain.Match) error {
	query := `
		INSERT INTO matches (participant1_id, participant2_id, compatibility_percentage, source, run_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := tx.QueryRowContext(ctx, query,
		match.Participant1ID, match.Participant2ID, match.CompatibilityPercentage, match.Source, match.RunID,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_members (participant_id, match_id) VALUES ($1, $3), ($2, $3)`,
		match.Participant1ID, match.Participant2ID, match.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrParticipantAlreadyMatched
		}
		return err
	}
	return nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
