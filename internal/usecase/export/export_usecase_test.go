package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
	"github.com/xuri/excelize/v2"
)

type staticSource struct {
	snap *matching.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (*matching.Snapshot, error) {
	return s.snap, s.err
}

func view(id int64, name, email, role string) *matching.ParticipantView {
	p := &domain.Participant{ID: id, Name: name, Email: email, Role: role, StudentID: "s" + name}
	return &matching.ParticipantView{Participant: p, RoleDisplay: p.RoleDisplay(), ThemeDisplay: p.ThemeDisplay()}
}

func TestExportUseCase_WriteMatches(t *testing.T) {
	ana := view(1, "Ana", "ana@example.com", "backend")
	ben := view(2, "Ben", "ben@example.com", "aiml")
	cy := view(3, "Cy", "cy@example.com", "fullstack")
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	uc := NewExportUseCase(staticSource{snap: &matching.Snapshot{
		Participants: []*matching.ParticipantView{cy, ben, ana},
		Matches: []*matching.MatchView{{
			ID:                      10,
			Participant1:            ana,
			Participant2:            ben,
			CompatibilityPercentage: 87,
			Source:                  domain.MatchSourceGenerated,
			CreatedAt:               created,
		}},
		Unmatched: []*matching.ParticipantView{cy},
	}})

	var buf bytes.Buffer
	if err := uc.WriteMatches(context.Background(), &buf); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(MatchesSheet)
	if err != nil {
		t.Fatalf("read matches: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	want := []string{"1", "87", "generated", "Ana", "ana@example.com", "sAna", "Backend",
		"Ben", "ben@example.com", "sBen", "AI / ML", "2026-03-01T12:00:00Z"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("matches column %d: expected %q, got %q", i, v, rows[1][i])
		}
	}

	rows, err = f.GetRows(UnmatchedSheet)
	if err != nil {
		t.Fatalf("read unmatched: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "cy@example.com" || rows[1][3] != "Full Stack" {
		t.Fatalf("unexpected unmatched rows %v", rows)
	}
}

func TestExportUseCase_SourceError(t *testing.T) {
	boom := errors.New("boom")
	uc := NewExportUseCase(staticSource{err: boom})

	var buf bytes.Buffer
	if err := uc.WriteMatches(context.Background(), &buf); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written on error")
	}
}

func TestExportUseCase_FileName(t *testing.T) {
	uc := NewExportUseCase(staticSource{})
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC) }
	if got := uc.FileName(); got != "matches-20260301-090507.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
}
