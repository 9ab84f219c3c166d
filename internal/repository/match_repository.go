package repository

import (
	"context"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

type MatchRepository interface {
	// Create stores a single match. It fails with domain.ErrParticipantAlreadyMatched
	// when either participant is already part of a stored match.
	Create(ctx context.Context, match *domain.Match) error
	// CreateBatch appends matches in one transaction with the same guarantee as Create.
	CreateBatch(ctx context.Context, matches []*domain.Match) error
	// ReplaceAll drops every unlocked match and stores matches in its place.
	// Locked matches survive.
	ReplaceAll(ctx context.Context, matches []*domain.Match) error
	GetByParticipant(ctx context.Context, participantID int64) (*domain.Match, error)
	// List returns all matches, highest compatibility first.
	List(ctx context.Context) ([]*domain.Match, error)
}
