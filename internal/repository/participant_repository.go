package repository

import (
	"context"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

type ParticipantRepository interface {
	// Upsert inserts the participant or merges it into the stored record sharing its
	// email. The participant is updated in place with the stored state.
	Upsert(ctx context.Context, participant *domain.Participant) (created bool, err error)
	GetByEmail(ctx context.Context, email string) (*domain.Participant, error)
	GetByID(ctx context.Context, id int64) (*domain.Participant, error)
	// List returns every participant, newest first.
	List(ctx context.Context) ([]*domain.Participant, error)
}
