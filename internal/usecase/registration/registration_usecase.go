package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
)

const (
	StatusRegistered = "registered"
	StatusNew        = "new"
)

// DuoRegistrar stores two new participants together with the locked match
// between them, as one step.
type DuoRegistrar interface {
	RegisterDuo(ctx context.Context, a, b *domain.Participant) (*domain.Match, error)
}

type RegistrationUseCase struct {
	participantRepo  repository.ParticipantRepository
	whitelistRepo    repository.WhitelistRepository
	duos             DuoRegistrar
	requireWhitelist bool
	logger           *slog.Logger
}

func NewRegistrationUseCase(
	participantRepo repository.ParticipantRepository,
	whitelistRepo repository.WhitelistRepository,
	duos DuoRegistrar,
	requireWhitelist bool,
	logger *slog.Logger,
) *RegistrationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationUseCase{
		participantRepo:  participantRepo,
		whitelistRepo:    whitelistRepo,
		duos:             duos,
		requireWhitelist: requireWhitelist,
		logger:           logger,
	}
}

// VerifyRequest asks whether an email may register and whether it already has.
type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResponse struct {
	Status      string              `json:"status"`
	Participant *domain.Participant `json:"participant,omitempty"`
}

// ProfileRequest is the registration payload. Every field except email and
// name may be omitted; omitted fields keep their stored value on re-registration.
type ProfileRequest struct {
	Email              string            `json:"email" binding:"required,email"`
	Name               string            `json:"name" binding:"required,max=200"`
	StudentID          string            `json:"student_id" binding:"max=64"`
	Role               string            `json:"role" binding:"max=64"`
	PreferredLanguage  string            `json:"preferred_language" binding:"max=64"`
	IDE                string            `json:"ide" binding:"max=64"`
	ThemePreference    string            `json:"theme_preference" binding:"omitempty,oneof=dark light"`
	ApproachScore      int               `json:"approach_score" binding:"min=0,max=10"`
	ExperienceLevel    string            `json:"experience_level" binding:"max=64"`
	Frameworks         []string          `json:"frameworks" binding:"max=20,dive,max=64"`
	OS                 string            `json:"os" binding:"max=64"`
	AvailabilityHours  int               `json:"availability_hours" binding:"min=0,max=168"`
	CommitmentType     string            `json:"commitment_type" binding:"max=64"`
	CommunicationStyle string            `json:"communication_style" binding:"max=64"`
	CollaborationStyle string            `json:"collaboration_style" binding:"max=64"`
	Answers            map[string]string `json:"answers" binding:"max=50"`
}

type RegisterResponse struct {
	Created     bool                `json:"created"`
	Participant *domain.Participant `json:"participant"`
}

// DuoRequest registers two participants at once as a fixed pair.
type DuoRequest struct {
	Participant1 ProfileRequest `json:"participant1"`
	Participant2 ProfileRequest `json:"participant2"`
}

type DuoResponse struct {
	Participant1 *domain.Participant `json:"participant1"`
	Participant2 *domain.Participant `json:"participant2"`
	Match        *domain.Match       `json:"match"`
}

type WhitelistRequest struct {
	Emails []string `json:"emails" binding:"required,min=1,max=1000,dive,required,email"`
}

type WhitelistResponse struct {
	Added int `json:"added"`
}

// Verify reports whether email is already registered. With the whitelist gate
// on, unlisted emails get domain.ErrNotWhitelisted.
func (uc *RegistrationUseCase) Verify(ctx context.Context, email string) (*VerifyResponse, error) {
	email = domain.NormalizeEmail(email)
	if err := uc.checkWhitelist(ctx, email); err != nil {
		return nil, err
	}

	p, err := uc.participantRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return &VerifyResponse{Status: StatusNew}, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &VerifyResponse{Status: StatusRegistered, Participant: p}, nil
}

// Register creates the participant or merges the profile into the existing
// one. Never fails on a duplicate email.
func (uc *RegistrationUseCase) Register(ctx context.Context, req *ProfileRequest) (*RegisterResponse, error) {
	p := req.toParticipant()
	if p.Email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrInvalidInput)
	}
	if err := uc.checkWhitelist(ctx, p.Email); err != nil {
		return nil, err
	}

	created, err := uc.participantRepo.Upsert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	uc.logger.InfoContext(ctx, "participant registered",
		"participant_id", p.ID,
		"created", created)
	return &RegisterResponse{Created: created, Participant: p}, nil
}

// RegisterDuo stores two new participants with role duo and pairs them.
// Either email already being registered fails with domain.ErrAlreadyRegistered.
func (uc *RegistrationUseCase) RegisterDuo(ctx context.Context, req *DuoRequest) (*DuoResponse, error) {
	p1 := req.Participant1.toParticipant()
	p2 := req.Participant2.toParticipant()
	if p1.Email == "" || p2.Email == "" {
		return nil, fmt.Errorf("both emails are required: %w", domain.ErrInvalidInput)
	}
	if p1.Email == p2.Email {
		return nil, fmt.Errorf("duo emails must differ: %w", domain.ErrInvalidInput)
	}

	for _, p := range []*domain.Participant{p1, p2} {
		if err := uc.checkWhitelist(ctx, p.Email); err != nil {
			return nil, err
		}
	}

	match, err := uc.duos.RegisterDuo(ctx, p1, p2)
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "duo registered",
		"match_id", match.ID,
		"participant1_id", p1.ID,
		"participant2_id", p2.ID)
	return &DuoResponse{Participant1: p1, Participant2: p2, Match: match}, nil
}

func (uc *RegistrationUseCase) AddToWhitelist(ctx context.Context, req *WhitelistRequest) (*WhitelistResponse, error) {
	emails := make([]string, 0, len(req.Emails))
	for _, e := range req.Emails {
		if e = domain.NormalizeEmail(e); e != "" {
			emails = append(emails, e)
		}
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("no emails given: %w", domain.ErrInvalidInput)
	}

	added, err := uc.whitelistRepo.Add(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to add to whitelist: %w", err)
	}
	return &WhitelistResponse{Added: added}, nil
}

func (uc *RegistrationUseCase) ListWhitelist(ctx context.Context) ([]*domain.WhitelistEntry, error) {
	entries, err := uc.whitelistRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelist: %w", err)
	}
	return entries, nil
}

func (uc *RegistrationUseCase) checkWhitelist(ctx context.Context, email string) error {
	if !uc.requireWhitelist {
		return nil
	}
	ok, err := uc.whitelistRepo.Contains(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check whitelist: %w", err)
	}
	if !ok {
		return domain.ErrNotWhitelisted
	}
	return nil
}

func (r *ProfileRequest) toParticipant() *domain.Participant {
	p := &domain.Participant{
		Email:              domain.NormalizeEmail(r.Email),
		Name:               strings.TrimSpace(r.Name),
		StudentID:          strings.TrimSpace(r.StudentID),
		Role:               strings.ToLower(strings.TrimSpace(r.Role)),
		PreferredLanguage:  strings.TrimSpace(r.PreferredLanguage),
		IDE:                strings.TrimSpace(r.IDE),
		ThemePreference:    strings.ToLower(strings.TrimSpace(r.ThemePreference)),
		ApproachScore:      r.ApproachScore,
		ExperienceLevel:    strings.TrimSpace(r.ExperienceLevel),
		OS:                 strings.TrimSpace(r.OS),
		AvailabilityHours:  r.AvailabilityHours,
		CommitmentType:     strings.TrimSpace(r.CommitmentType),
		CommunicationStyle: strings.TrimSpace(r.CommunicationStyle),
		CollaborationStyle: strings.TrimSpace(r.CollaborationStyle),
	}
	for _, f := range r.Frameworks {
		if f = strings.TrimSpace(f); f != "" {
			p.Frameworks = append(p.Frameworks, f)
		}
	}
	if len(r.Answers) > 0 {
		p.Answers = make(domain.Answers, len(r.Answers))
		for k, v := range r.Answers {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k != "" && v != "" {
				p.Answers[k] = v
			}
		}
	}
	return p
}
