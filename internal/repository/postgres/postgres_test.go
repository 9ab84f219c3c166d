package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/database"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// openTestDB connects to TEST_DATABASE_DSN, applies the schema and empties
// every table. Tests skip when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE match_members, matches, participants, whitelist RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestParticipantRepository_Upsert(t *testing.T) {
	db := openTestDB(t)
	repo := NewParticipantRepository(db)
	ctx := context.Background()

	p := &domain.Participant{
		Email:             "x@y.com",
		Name:              "First",
		PreferredLanguage: "Go",
		Frameworks:        []string{"gin"},
		Answers:           domain.Answers{"q1": "a", "q2": "b"},
	}
	created, err := repo.Upsert(ctx, p)
	if err != nil || !created || p.ID == 0 {
		t.Fatalf("insert: created=%v id=%d err=%v", created, p.ID, err)
	}

	again := &domain.Participant{Email: "x@y.com", Name: "Second", Answers: domain.Answers{"q2": "c"}}
	created, err = repo.Upsert(ctx, again)
	if err != nil || created {
		t.Fatalf("merge: created=%v err=%v", created, err)
	}
	if again.ID != p.ID || again.Name != "Second" || again.PreferredLanguage != "Go" {
		t.Fatalf("unexpected merged row %+v", again)
	}
	if len(again.Frameworks) != 1 || again.Answers["q1"] != "a" || again.Answers["q2"] != "c" {
		t.Fatalf("frameworks/answers not merged: %v %v", again.Frameworks, again.Answers)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one participant, got %d err=%v", len(list), err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@y.com"); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestMatchRepository(t *testing.T) {
	db := openTestDB(t)
	participants := NewParticipantRepository(db)
	matches := NewMatchRepository(db)
	ctx := context.Background()

	ids := make([]int64, 5)
	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"} {
		p := &domain.Participant{Email: email}
		if _, err := participants.Upsert(ctx, p); err != nil {
			t.Fatalf("seed participant: %v", err)
		}
		ids[i] = p.ID
	}

	duo := &domain.Match{Participant1ID: ids[0], Participant2ID: ids[1], CompatibilityPercentage: 70, Source: domain.MatchSourceDuo}
	if err := matches.Create(ctx, duo); err != nil {
		t.Fatalf("create duo: %v", err)
	}
	err := matches.Create(ctx, &domain.Match{Participant1ID: ids[1], Participant2ID: ids[2], CompatibilityPercentage: 50, Source: domain.MatchSourceOnDemand})
	if !errors.Is(err, domain.ErrParticipantAlreadyMatched) {
		t.Fatalf("expected ErrParticipantAlreadyMatched, got %v", err)
	}

	if err := matches.CreateBatch(ctx, []*domain.Match{
		{Participant1ID: ids[2], Participant2ID: ids[3], CompatibilityPercentage: 80, Source: domain.MatchSourceGenerated, RunID: "r1"},
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	if err := matches.ReplaceAll(ctx, []*domain.Match{
		{Participant1ID: ids[3], Participant2ID: ids[4], CompatibilityPercentage: 90, Source: domain.MatchSourceGenerated, RunID: "r2"},
	}); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	list, err := matches.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].RunID != "r2" || list[1].ID != duo.ID {
		t.Fatalf("unexpected matches after replace: %+v", list)
	}
	if _, err := matches.GetByParticipant(ctx, ids[2]); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("replaced match still visible: %v", err)
	}
	got, err := matches.GetByParticipant(ctx, ids[4])
	if err != nil || got.Participant1ID != ids[3] {
		t.Fatalf("expected new match for participant, got %+v %v", got, err)
	}
}

func TestWhitelistRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewWhitelistRepository(db)
	ctx := context.Background()

	added, err := repo.Add(ctx, []string{"a@x.com", "b@x.com", "a@x.com"})
	if err != nil || added != 2 {
		t.Fatalf("expected 2 added, got %d err=%v", added, err)
	}
	ok, err := repo.Contains(ctx, "b@x.com")
	if err != nil || !ok {
		t.Fatalf("expected b@x.com listed, got %v %v", ok, err)
	}
	entries, err := repo.List(ctx)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d err=%v", len(entries), err)
	}
}
