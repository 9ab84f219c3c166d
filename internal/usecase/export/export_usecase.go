package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
	"github.com/xuri/excelize/v2"
)

const (
	MatchesSheet   = "Matches"
	UnmatchedSheet = "Unmatched"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	matchesHeader = []interface{}{
		"Rank", "Score", "Source",
		"Name 1", "Email 1", "Student ID 1", "Role 1",
		"Name 2", "Email 2", "Student ID 2", "Role 2",
		"Created At",
	}
	unmatchedHeader = []interface{}{"Name", "Email", "Student ID", "Role", "Registered At"}
)

// SnapshotSource provides a consistent read of participants and matches.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*matching.Snapshot, error)
}

type ExportUseCase struct {
	source SnapshotSource
	now    func() time.Time
}

func NewExportUseCase(source SnapshotSource) *ExportUseCase {
	return &ExportUseCase{source: source, now: time.Now}
}

// FileName is the suggested download name for an export made now.
func (uc *ExportUseCase) FileName() string {
	return fmt.Sprintf("matches-%s.xlsx", uc.now().UTC().Format("20060102-150405"))
}

// WriteMatches writes the current match set as an xlsx workbook with one sheet
// of matches ranked by score and one of unmatched participants.
func (uc *ExportUseCase) WriteMatches(ctx context.Context, w io.Writer) error {
	snap, err := uc.source.Snapshot(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatchesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(UnmatchedSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	matchRows := make([][]interface{}, 0, len(snap.Matches))
	for i, m := range snap.Matches {
		p1, p2 := m.Participant1, m.Participant2
		matchRows = append(matchRows, []interface{}{
			i + 1, m.CompatibilityPercentage, string(m.Source),
			p1.Name, p1.Email, p1.StudentID, p1.RoleDisplay,
			p2.Name, p2.Email, p2.StudentID, p2.RoleDisplay,
			m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, MatchesSheet, matchesHeader, matchRows, headerStyle); err != nil {
		return err
	}

	unmatchedRows := make([][]interface{}, 0, len(snap.Unmatched))
	for _, p := range snap.Unmatched {
		unmatchedRows = append(unmatchedRows, []interface{}{
			p.Name, p.Email, p.StudentID, p.RoleDisplay,
			p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, UnmatchedSheet, unmatchedHeader, unmatchedRows, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
