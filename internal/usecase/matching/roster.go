package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

// ParticipantView is a participant as listed to admins.
type ParticipantView struct {
	*domain.Participant
	RoleDisplay  string `json:"role_display"`
	ThemeDisplay string `json:"theme_display"`
	IsMatched    bool   `json:"is_matched"`
}

// MatchView is a stored match with both participants resolved.
type MatchView struct {
	ID                      int64              `json:"id"`
	Participant1            *ParticipantView   `json:"participant1"`
	Participant2            *ParticipantView   `json:"participant2"`
	CompatibilityPercentage float64            `json:"compatibility_percentage"`
	Source                  domain.MatchSource `json:"source"`
	RunID                   string             `json:"run_id,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
}

// Snapshot is a consistent read of participants and matches.
type Snapshot struct {
	Participants []*ParticipantView
	Matches      []*MatchView
	Unmatched    []*ParticipantView
}

// Snapshot reads matches before participants. Participants are never deleted,
// so every match reference resolves.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	matches, err := e.matches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	participants, err := e.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	matched := matchedSet(matches)
	views := make(map[int64]*ParticipantView, len(participants))
	snap := &Snapshot{
		Participants: make([]*ParticipantView, 0, len(participants)),
		Matches:      make([]*MatchView, 0, len(matches)),
	}
	for _, p := range participants {
		v := &ParticipantView{
			Participant:  p,
			RoleDisplay:  p.RoleDisplay(),
			ThemeDisplay: p.ThemeDisplay(),
			IsMatched:    matched[p.ID],
		}
		views[p.ID] = v
		snap.Participants = append(snap.Participants, v)
		if !v.IsMatched {
			snap.Unmatched = append(snap.Unmatched, v)
		}
	}

	for _, m := range matches {
		p1, ok1 := views[m.Participant1ID]
		p2, ok2 := views[m.Participant2ID]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("match %d references an unknown participant", m.ID)
		}
		snap.Matches = append(snap.Matches, &MatchView{
			ID:                      m.ID,
			Participant1:            p1,
			Participant2:            p2,
			CompatibilityPercentage: m.CompatibilityPercentage,
			Source:                  m.Source,
			RunID:                   m.RunID,
			CreatedAt:               m.CreatedAt,
		})
	}
	return snap, nil
}

// ListParticipants returns every participant, newest first, with IsMatched set.
func (e *Engine) ListParticipants(ctx context.Context) ([]*ParticipantView, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Participants, nil
}

// ListMatches returns every stored match, highest compatibility first.
func (e *Engine) ListMatches(ctx context.Context) ([]*MatchView, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Matches, nil
}
