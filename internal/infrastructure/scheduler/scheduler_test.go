package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
)

type countingFiller struct {
	calls atomic.Int32
}

func (f *countingFiller) FillUnmatched(context.Context) (*matching.GenerateStats, error) {
	f.calls.Add(1)
	return &matching.GenerateStats{}, nil
}

func TestAutoFill_RunsOnInterval(t *testing.T) {
	filler := &countingFiller{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := NewAutoFill(filler, 20*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	a.Start()

	deadline := time.Now().Add(2 * time.Second)
	for filler.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := a.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if n := filler.calls.Load(); n < 2 {
		t.Fatalf("expected at least 2 runs, got %d", n)
	}
}

func TestAutoFill_RejectsNonPositiveInterval(t *testing.T) {
	if _, err := NewAutoFill(&countingFiller{}, 0, nil); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}
