package registration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
	"github.com/gdugdh24/match-matrix-backend/internal/repository/memory"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
)

type fixture struct {
	participants repository.ParticipantRepository
	matches      repository.MatchRepository
	whitelist    repository.WhitelistRepository
	uc           *RegistrationUseCase
}

func newFixture(requireWhitelist bool) *fixture {
	f := &fixture{
		participants: memory.NewParticipantRepository(),
		matches:      memory.NewMatchRepository(),
		whitelist:    memory.NewWhitelistRepository(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := matching.NewEngine(f.participants, f.matches, matching.Options{Logger: logger})
	f.uc = NewRegistrationUseCase(f.participants, f.whitelist, engine, requireWhitelist, logger)
	return f
}

func TestRegister_CreatesThenMerges(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	first, err := f.uc.Register(ctx, &ProfileRequest{
		Email:             "  X@Y.com ",
		Name:              "First",
		PreferredLanguage: "Go",
		Answers:           map[string]string{"q1": "a", "q2": "b"},
	})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if !first.Created || first.Participant.Email != "x@y.com" {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := f.uc.Register(ctx, &ProfileRequest{
		Email:   "x@y.com",
		Name:    "Second",
		Answers: map[string]string{"q2": "c", "q3": " "},
	})
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if second.Created {
		t.Fatalf("expected merge, got create")
	}
	if second.Participant.ID != first.Participant.ID {
		t.Fatalf("id changed on re-registration")
	}

	all, err := f.participants.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(all))
	}
	got := all[0]
	if got.Name != "Second" {
		t.Fatalf("expected name from second call, got %q", got.Name)
	}
	if got.PreferredLanguage != "Go" {
		t.Fatalf("omitted field was cleared: %q", got.PreferredLanguage)
	}
	if got.Answers["q1"] != "a" || got.Answers["q2"] != "c" {
		t.Fatalf("answers not merged key-wise: %v", got.Answers)
	}
	if _, ok := got.Answers["q3"]; ok {
		t.Fatalf("blank answer should be dropped")
	}
}

func TestVerify(t *testing.T) {
	t.Run("open registration", func(t *testing.T) {
		f := newFixture(false)
		ctx := context.Background()

		res, err := f.uc.Verify(ctx, "a@example.com")
		if err != nil || res.Status != StatusNew {
			t.Fatalf("expected new, got %+v err=%v", res, err)
		}

		if _, err := f.uc.Register(ctx, &ProfileRequest{Email: "a@example.com", Name: "A"}); err != nil {
			t.Fatalf("register: %v", err)
		}
		res, err = f.uc.Verify(ctx, "A@example.com")
		if err != nil || res.Status != StatusRegistered || res.Participant == nil {
			t.Fatalf("expected registered, got %+v err=%v", res, err)
		}
	})

	t.Run("whitelist gate", func(t *testing.T) {
		f := newFixture(true)
		ctx := context.Background()

		if _, err := f.uc.Verify(ctx, "a@example.com"); !errors.Is(err, domain.ErrNotWhitelisted) {
			t.Fatalf("expected ErrNotWhitelisted, got %v", err)
		}
		if _, err := f.uc.Register(ctx, &ProfileRequest{Email: "a@example.com", Name: "A"}); !errors.Is(err, domain.ErrNotWhitelisted) {
			t.Fatalf("expected register to be gated, got %v", err)
		}

		if _, err := f.uc.AddToWhitelist(ctx, &WhitelistRequest{Emails: []string{" A@Example.com"}}); err != nil {
			t.Fatalf("whitelist: %v", err)
		}
		res, err := f.uc.Verify(ctx, "a@example.com")
		if err != nil || res.Status != StatusNew {
			t.Fatalf("expected new after whitelisting, got %+v err=%v", res, err)
		}
	})
}

func TestRegisterDuo(t *testing.T) {
	t.Run("pairs two new participants", func(t *testing.T) {
		f := newFixture(false)
		ctx := context.Background()

		res, err := f.uc.RegisterDuo(ctx, &DuoRequest{
			Participant1: ProfileRequest{Email: "a@example.com", Name: "A", Role: "backend"},
			Participant2: ProfileRequest{Email: "b@example.com", Name: "B"},
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Participant1.Role != domain.RoleDuo || res.Participant2.Role != domain.RoleDuo {
			t.Fatalf("expected duo roles, got %q/%q", res.Participant1.Role, res.Participant2.Role)
		}
		if res.Match.Source != domain.MatchSourceDuo || !res.Match.Locked() {
			t.Fatalf("expected a locked duo match, got %+v", res.Match)
		}
		stored, err := f.matches.GetByParticipant(ctx, res.Participant2.ID)
		if err != nil || stored.ID != res.Match.ID || !stored.HasParticipant(res.Participant1.ID) {
			t.Fatalf("duo match not stored: %+v err=%v", stored, err)
		}
	})

	t.Run("rejects existing email", func(t *testing.T) {
		f := newFixture(false)
		ctx := context.Background()
		if _, err := f.uc.Register(ctx, &ProfileRequest{Email: "b@example.com", Name: "B"}); err != nil {
			t.Fatalf("register: %v", err)
		}

		_, err := f.uc.RegisterDuo(ctx, &DuoRequest{
			Participant1: ProfileRequest{Email: "a@example.com", Name: "A"},
			Participant2: ProfileRequest{Email: "B@example.com", Name: "B"},
		})
		if !errors.Is(err, domain.ErrAlreadyRegistered) {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}
		if _, err := f.participants.GetByEmail(ctx, "a@example.com"); !errors.Is(err, domain.ErrParticipantNotFound) {
			t.Fatalf("first participant stored despite failure")
		}
		matches, err := f.matches.List(ctx)
		if err != nil || len(matches) != 0 {
			t.Fatalf("match stored despite failure: %v err=%v", matches, err)
		}
	})

	t.Run("whitelist gate covers both members", func(t *testing.T) {
		f := newFixture(true)
		ctx := context.Background()
		if _, err := f.uc.AddToWhitelist(ctx, &WhitelistRequest{Emails: []string{"a@example.com"}}); err != nil {
			t.Fatalf("whitelist: %v", err)
		}

		_, err := f.uc.RegisterDuo(ctx, &DuoRequest{
			Participant1: ProfileRequest{Email: "a@example.com", Name: "A"},
			Participant2: ProfileRequest{Email: "b@example.com", Name: "B"},
		})
		if !errors.Is(err, domain.ErrNotWhitelisted) {
			t.Fatalf("expected ErrNotWhitelisted, got %v", err)
		}
		if _, err := f.participants.GetByEmail(ctx, "a@example.com"); !errors.Is(err, domain.ErrParticipantNotFound) {
			t.Fatalf("first participant stored despite failure")
		}
	})

	t.Run("rejects same email twice", func(t *testing.T) {
		f := newFixture(false)
		_, err := f.uc.RegisterDuo(context.Background(), &DuoRequest{
			Participant1: ProfileRequest{Email: "a@example.com", Name: "A"},
			Participant2: ProfileRequest{Email: "A@example.com", Name: "A2"},
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestWhitelist(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	res, err := f.uc.AddToWhitelist(ctx, &WhitelistRequest{Emails: []string{"a@example.com", "A@example.com", "b@example.com"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if res.Added != 2 {
		t.Fatalf("expected 2 added, got %d", res.Added)
	}

	entries, err := f.uc.ListWhitelist(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Email != "a@example.com" || entries[1].Email != "b@example.com" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
