package domain

import "time"

type MatchSource string

const (
	MatchSourceGenerated MatchSource = "generated"
	MatchSourceOnDemand  MatchSource = "on_demand"
	MatchSourceDuo       MatchSource = "duo"
)

type Match struct {
	ID                      int64       `json:"id" db:"id"`
	Participant1ID          int64       `json:"participant1_id" db:"participant1_id"`
	Participant2ID          int64       `json:"participant2_id" db:"participant2_id"`
	CompatibilityPercentage float64     `json:"compatibility_percentage" db:"compatibility_percentage"`
	Source                  MatchSource `json:"source" db:"source"`
	RunID                   string      `json:"run_id,omitempty" db:"run_id"`
	CreatedAt               time.Time   `json:"created_at" db:"created_at"`
}

// Locked matches are never broken by a generate run.
func (m *Match) Locked() bool {
	return m.Source == MatchSourceDuo
}

func (m *Match) HasParticipant(participantID int64) bool {
	return m.Participant1ID == participantID || m.Participant2ID == participantID
}

func (m *Match) GetPartnerID(participantID int64) (int64, bool) {
	if m.Participant1ID == participantID {
		return m.Participant2ID, true
	}
	if m.Participant2ID == participantID {
		return m.Participant1ID, true
	}
	return 0, false
}
