package repository

import (
	"context"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

type WhitelistRepository interface {
	Contains(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, emails []string) (int, error)
	List(ctx context.Context) ([]*domain.WhitelistEntry, error)
}
