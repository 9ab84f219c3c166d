package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const participantColumns = `
	id, email, name, student_id, role, preferred_language, ide, theme_preference,
	approach_score, experience_level, frameworks, os, availability_hours,
	commitment_type, communication_style, collaboration_style, answers,
	created_at, updated_at`

type participantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) repository.ParticipantRepository {
	return &participantRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParticipant(row rowScanner, extra ...interface{}) (*domain.Participant, error) {
	var p domain.Participant
	dest := []interface{}{
		&p.ID, &p.Email, &p.Name, &p.StudentID, &p.Role, &p.PreferredLanguage, &p.IDE, &p.ThemePreference,
		&p.ApproachScore, &p.ExperienceLevel, pq.Array(&p.Frameworks), &p.OS, &p.AvailabilityHours,
		&p.CommitmentType, &p.CommunicationStyle, &p.CollaborationStyle, &p.Answers,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert merges in SQL so concurrent registrations with one email can't race.
func (r *participantRepository) Upsert(ctx context.Context, participant *domain.Participant) (bool, error) {
	query := `
		INSERT INTO participants (
			email, name, student_id, role, preferred_language, ide, theme_preference,
			approach_score, experience_level, frameworks, os, availability_hours,
			commitment_type, communication_style, collaboration_style, answers
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (email) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), participants.name),
			student_id = COALESCE(NULLIF(EXCLUDED.student_id, ''), participants.student_id),
			role = COALESCE(NULLIF(EXCLUDED.role, ''), participants.role),
			preferred_language = COALESCE(NULLIF(EXCLUDED.preferred_language, ''), participants.preferred_language),
			ide = COALESCE(NULLIF(EXCLUDED.ide, ''), participants.ide),
			theme_preference = COALESCE(NULLIF(EXCLUDED.theme_preference, ''), participants.theme_preference),
			approach_score = COALESCE(NULLIF(EXCLUDED.approach_score, 0), participants.approach_score),
			experience_level = COALESCE(NULLIF(EXCLUDED.experience_level, ''), participants.experience_level),
			frameworks = CASE WHEN cardinality(EXCLUDED.frameworks) > 0
				THEN EXCLUDED.frameworks ELSE participants.frameworks END,
			os = COALESCE(NULLIF(EXCLUDED.os, ''), participants.os),
			availability_hours = COALESCE(NULLIF(EXCLUDED.availability_hours, 0), participants.availability_hours),
			commitment_type = COALESCE(NULLIF(EXCLUDED.commitment_type, ''), participants.commitment_type),
			communication_style = COALESCE(NULLIF(EXCLUDED.communication_style, ''), participants.communication_style),
			collaboration_style = COALESCE(NULLIF(EXCLUDED.collaboration_style, ''), participants.collaboration_style),
			answers = participants.answers || EXCLUDED.answers,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + participantColumns + `, (xmax = 0) AS created
	`
	frameworks := participant.Frameworks
	if frameworks == nil {
		frameworks = []string{}
	}

	var created bool
	stored, err := scanParticipant(r.db.QueryRowContext(
		ctx, query,
		participant.Email, participant.Name, participant.StudentID, participant.Role,
		participant.PreferredLanguage, participant.IDE, participant.ThemePreference,
		participant.ApproachScore, participant.ExperienceLevel, pq.Array(frameworks),
		participant.OS, participant.AvailabilityHours, participant.CommitmentType,
		participant.CommunicationStyle, participant.CollaborationStyle, participant.Answers,
	), &created)
	if err != nil {
		return false, err
	}
	*participant = *stored
	return created, nil
}

func (r *participantRepository) GetByEmail(ctx context.Context, email string) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE email = $1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByID(ctx context.Context, id int64) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) List(ctx context.Context) ([]*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
