package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
	"github.com/google/uuid"
)

const explainTimeout = 5 * time.Second

// Engine pairs participants and answers match lookups. All writes to the match
// store go through one in-process mutex and, when configured, a Locker shared
// with other instances.
type Engine struct {
	participants repository.ParticipantRepository
	matches      repository.MatchRepository

	strategy       Strategy
	scorer         Scorer
	onDemandScorer Scorer
	locker         Locker
	explainer      Explainer
	cache          ExplanationCache
	logger         *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

type Options struct {
	// Strategy defaults to a RandomStrategy.
	Strategy Strategy
	// Scorer rates pairs formed by generate runs and duo registrations.
	// Defaults to RandomScorer(60, 99).
	Scorer Scorer
	// OnDemandScorer rates pairs formed by ClaimMatch. Defaults to RandomScorer(75, 98).
	OnDemandScorer Scorer
	Locker         Locker
	// Explainer defaults to TemplateExplainer.
	Explainer Explainer
	// Cache defaults to an in-process map.
	Cache  ExplanationCache
	Logger *slog.Logger
	Rand   *rand.Rand
}

func NewEngine(
	participants repository.ParticipantRepository,
	matches repository.MatchRepository,
	opts Options,
) *Engine {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e := &Engine{
		participants:   participants,
		matches:        matches,
		strategy:       opts.Strategy,
		scorer:         opts.Scorer,
		onDemandScorer: opts.OnDemandScorer,
		locker:         opts.Locker,
		explainer:      opts.Explainer,
		cache:          opts.Cache,
		logger:         opts.Logger,
		rnd:            rnd,
	}
	if e.strategy == nil {
		e.strategy = NewRandomStrategy(rnd)
	}
	if e.scorer == nil {
		e.scorer = NewRandomScorer(60, 99, rnd)
	}
	if e.onDemandScorer == nil {
		e.onDemandScorer = NewRandomScorer(75, 98, rnd)
	}
	if e.explainer == nil {
		e.explainer = TemplateExplainer{}
	}
	if e.cache == nil {
		e.cache = newLocalExplanationCache(localCacheLimit)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// GenerateStats summarizes a generate or fill run.
type GenerateStats struct {
	RunID                 string `json:"run_id"`
	TotalParticipants     int    `json:"total_participants"`
	MatchesCreated        int    `json:"matches_created"`
	LockedMatches         int    `json:"locked_matches"`
	MatchedParticipants   int    `json:"matched_participants"`
	UnmatchedParticipants int    `json:"unmatched_participants"`
}

// MatchResult is the answer to ClaimMatch, oriented so Participant is always
// the caller.
type MatchResult struct {
	MatchFound              bool                `json:"match_found"`
	Participant             *domain.Participant `json:"participant"`
	Partner                 *domain.Participant `json:"partner,omitempty"`
	Match                   *domain.Match       `json:"match,omitempty"`
	CompatibilityPercentage *float64            `json:"compatibility_percentage,omitempty"`
	Explanation             string              `json:"explanation,omitempty"`
}

// GenerateMatches discards every unlocked match and partitions all participants
// outside locked pairs afresh. Previously matched participants may end up
// unmatched or with a different partner.
func (e *Engine) GenerateMatches(ctx context.Context) (*GenerateStats, error) {
	var stats *GenerateStats
	err := e.withWriteLock(ctx, func() error {
		participants, err := e.participants.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		existing, err := e.matches.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}

		pinned := make(map[int64]bool)
		locked := 0
		for _, m := range existing {
			if m.Locked() {
				pinned[m.Participant1ID] = true
				pinned[m.Participant2ID] = true
				locked++
			}
		}

		pool := make([]*domain.Participant, 0, len(participants))
		for _, p := range participants {
			if !pinned[p.ID] {
				pool = append(pool, p)
			}
		}

		runID := uuid.NewString()
		pairs, leftover := e.strategy.Pair(pool, e.scorer)
		created := pairsToMatches(pairs, domain.MatchSourceGenerated, runID)
		if err := e.matches.ReplaceAll(ctx, created); err != nil {
			return fmt.Errorf("failed to store matches: %w", err)
		}

		stats = &GenerateStats{
			RunID:                 runID,
			TotalParticipants:     len(participants),
			MatchesCreated:        len(created),
			LockedMatches:         locked,
			MatchedParticipants:   2 * (len(created) + locked),
			UnmatchedParticipants: len(leftover),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "generate run finished",
		"run_id", stats.RunID,
		"participants", stats.TotalParticipants,
		"matches_created", stats.MatchesCreated,
		"unmatched", stats.UnmatchedParticipants)
	return stats, nil
}

// FillUnmatched pairs only participants without a match and keeps every
// existing pair.
func (e *Engine) FillUnmatched(ctx context.Context) (*GenerateStats, error) {
	var stats *GenerateStats
	err := e.withWriteLock(ctx, func() error {
		participants, err := e.participants.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		existing, err := e.matches.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}

		matched := matchedSet(existing)
		pool := make([]*domain.Participant, 0, len(participants))
		for _, p := range participants {
			if !matched[p.ID] {
				pool = append(pool, p)
			}
		}

		runID := uuid.NewString()
		pairs, leftover := e.strategy.Pair(pool, e.scorer)
		created := pairsToMatches(pairs, domain.MatchSourceGenerated, runID)
		if len(created) > 0 {
			if err := e.matches.CreateBatch(ctx, created); err != nil {
				return fmt.Errorf("failed to store matches: %w", err)
			}
		}

		stats = &GenerateStats{
			RunID:                 runID,
			TotalParticipants:     len(participants),
			MatchesCreated:        len(created),
			MatchedParticipants:   len(matched) + 2*len(created),
			UnmatchedParticipants: len(leftover),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stats.MatchesCreated > 0 {
		e.logger.InfoContext(ctx, "fill run finished",
			"run_id", stats.RunID,
			"matches_created", stats.MatchesCreated,
			"unmatched", stats.UnmatchedParticipants)
	}
	return stats, nil
}

// ClaimMatch returns the caller's stored match, or pairs them with a random
// unmatched participant when they have none. It is a write: an unmatched
// caller may take a partner that another participant's later call would
// otherwise have received. Calls for an already matched participant are
// idempotent.
func (e *Engine) ClaimMatch(ctx context.Context, email string) (*MatchResult, error) {
	me, err := e.participants.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	match, err := e.matches.GetByParticipant(ctx, me.ID)
	switch {
	case err == nil:
		return e.resolve(ctx, me, match)
	case !errors.Is(err, domain.ErrMatchNotFound):
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	var partner *domain.Participant
	err = e.withWriteLock(ctx, func() error {
		// someone else's claim may have paired us while we waited
		match, err = e.matches.GetByParticipant(ctx, me.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrMatchNotFound) {
			return fmt.Errorf("failed to get match: %w", err)
		}
		match = nil

		participants, err := e.participants.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		existing, err := e.matches.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}

		matched := matchedSet(existing)
		var candidates []*domain.Participant
		for _, p := range participants {
			if p.ID != me.ID && !matched[p.ID] {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return nil
		}

		partner = candidates[e.rnd.IntN(len(candidates))]
		match = &domain.Match{
			Participant1ID:          me.ID,
			Participant2ID:          partner.ID,
			CompatibilityPercentage: e.onDemandScorer.Score(me, partner),
			Source:                  domain.MatchSourceOnDemand,
		}
		if err := e.matches.Create(ctx, match); err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if match == nil {
		return &MatchResult{MatchFound: false, Participant: me}, nil
	}
	if partner == nil {
		return e.resolve(ctx, me, match)
	}

	e.logger.InfoContext(ctx, "on-demand match created",
		"match_id", match.ID,
		"participant_id", me.ID,
		"partner_id", partner.ID)
	return e.result(ctx, me, partner, match), nil
}

// RegisterDuo stores two new participants with role duo and a locked match
// between them. The email check, both inserts and the match share one write
// lock section, so no claim or run can pair either of them with someone else
// in between. Either email already being registered fails with
// domain.ErrAlreadyRegistered before anything is stored.
func (e *Engine) RegisterDuo(ctx context.Context, a, b *domain.Participant) (*domain.Match, error) {
	var match *domain.Match
	err := e.withWriteLock(ctx, func() error {
		for _, p := range []*domain.Participant{a, b} {
			_, err := e.participants.GetByEmail(ctx, p.Email)
			switch {
			case err == nil:
				return fmt.Errorf("%s: %w", p.Email, domain.ErrAlreadyRegistered)
			case !errors.Is(err, domain.ErrParticipantNotFound):
				return fmt.Errorf("failed to get participant: %w", err)
			}
		}

		for _, p := range []*domain.Participant{a, b} {
			p.Role = domain.RoleDuo
			created, err := e.participants.Upsert(ctx, p)
			if err != nil {
				return fmt.Errorf("failed to register participant: %w", err)
			}
			if !created {
				return fmt.Errorf("%s: %w", p.Email, domain.ErrAlreadyRegistered)
			}
		}

		match = &domain.Match{
			Participant1ID:          a.ID,
			Participant2ID:          b.ID,
			CompatibilityPercentage: e.scorer.Score(a, b),
			Source:                  domain.MatchSourceDuo,
		}
		if err := e.matches.Create(ctx, match); err != nil {
			return fmt.Errorf("failed to pair duo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (e *Engine) resolve(ctx context.Context, me *domain.Participant, match *domain.Match) (*MatchResult, error) {
	partnerID, ok := match.GetPartnerID(me.ID)
	if !ok {
		return nil, fmt.Errorf("match %d does not include participant %d", match.ID, me.ID)
	}
	partner, err := e.participants.GetByID(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return e.result(ctx, me, partner, match), nil
}

func (e *Engine) result(ctx context.Context, me, partner *domain.Participant, match *domain.Match) *MatchResult {
	score := match.CompatibilityPercentage
	a, b := me, partner
	if match.Participant1ID != me.ID {
		a, b = partner, me
	}
	return &MatchResult{
		MatchFound:              true,
		Participant:             me,
		Partner:                 partner,
		Match:                   match,
		CompatibilityPercentage: &score,
		Explanation:             e.explain(ctx, match.ID, a, b),
	}
}

// explain always returns a usable text; explainer and cache failures only
// degrade to the template.
func (e *Engine) explain(ctx context.Context, matchID int64, a, b *domain.Participant) string {
	text, ok, err := e.cache.GetExplanation(ctx, matchID)
	if err != nil {
		e.logger.WarnContext(ctx, "explanation cache read failed", "match_id", matchID, "error", err)
	} else if ok {
		return text
	}

	explainCtx, cancel := context.WithTimeout(ctx, explainTimeout)
	defer cancel()

	text, err = e.explainer.Explain(explainCtx, a, b)
	if err != nil || text == "" {
		if err != nil {
			e.logger.WarnContext(ctx, "explainer failed, using template", "match_id", matchID, "error", err)
		}
		text, _ = TemplateExplainer{}.Explain(ctx, a, b)
	}

	if err := e.cache.SetExplanation(ctx, matchID, text); err != nil {
		e.logger.WarnContext(ctx, "explanation cache write failed", "match_id", matchID, "error", err)
	}
	return text
}

func (e *Engine) withWriteLock(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locker != nil {
		release, err := e.locker.Acquire(ctx, writeLockKey)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				e.logger.WarnContext(ctx, "failed to release matching lock", "error", err)
			}
		}()
	}
	return fn()
}

func matchedSet(matches []*domain.Match) map[int64]bool {
	set := make(map[int64]bool, 2*len(matches))
	for _, m := range matches {
		set[m.Participant1ID] = true
		set[m.Participant2ID] = true
	}
	return set
}

func pairsToMatches(pairs []Pair, source domain.MatchSource, runID string) []*domain.Match {
	matches := make([]*domain.Match, 0, len(pairs))
	for _, p := range pairs {
		matches = append(matches, &domain.Match{
			Participant1ID:          p.A.ID,
			Participant2ID:          p.B.ID,
			CompatibilityPercentage: p.Score,
			Source:                  source,
			RunID:                   runID,
		})
	}
	return matches
}
