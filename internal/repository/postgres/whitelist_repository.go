package postgres

import (
	"context"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type whitelistRepository struct {
	db *sqlx.DB
}

func NewWhitelistRepository(db *sqlx.DB) repository.WhitelistRepository {
	return &whitelistRepository{db: db}
}

func (r *whitelistRepository) Contains(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM whitelist WHERE email = $1)`
	err := r.db.GetContext(ctx, &exists, query, email)
	return exists, err
}

func (r *whitelistRepository) Add(ctx context.Context, emails []string) (int, error) {
	added := 0
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, email := range emails {
			result, err := tx.ExecContext(ctx, `INSERT INTO whitelist (email) VALUES ($1) ON CONFLICT DO NOTHING`, email)
			if err != nil {
				return err
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return err
			}
			added += int(rows)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (r *whitelistRepository) List(ctx context.Context) ([]*domain.WhitelistEntry, error) {
	var entries []*domain.WhitelistEntry
	query := `SELECT email, created_at FROM whitelist ORDER BY email`
	err := r.db.SelectContext(ctx, &entries, query)
	return entries, err
}
