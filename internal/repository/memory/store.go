// Package memory holds process-local repository implementations. They back
// STORAGE_TYPE=memory and serve as the fakes for use case tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
)

type participantRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]*domain.Participant
	byID    map[int64]*domain.Participant
	now     func() time.Time
}

func NewParticipantRepository() repository.ParticipantRepository {
	return &participantRepository{
		byEmail: make(map[string]*domain.Participant),
		byID:    make(map[int64]*domain.Participant),
		now:     time.Now,
	}
}

func (r *participantRepository) Upsert(_ context.Context, participant *domain.Participant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if existing, ok := r.byEmail[participant.Email]; ok {
		existing.Merge(participant)
		existing.UpdatedAt = now
		*participant = *existing.Clone()
		return false, nil
	}

	r.nextID++
	stored := participant.Clone()
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Answers == nil {
		stored.Answers = domain.Answers{}
	}
	r.byEmail[stored.Email] = stored
	r.byID[stored.ID] = stored
	*participant = *stored.Clone()
	return true, nil
}

func (r *participantRepository) GetByEmail(_ context.Context, email string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	return p.Clone(), nil
}

func (r *participantRepository) GetByID(_ context.Context, id int64) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	return p.Clone(), nil
}

func (r *participantRepository) List(_ context.Context) ([]*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Participant, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p.Clone())
	}
	// ids grow with insertion, so a descending id is newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type matchRepository struct {
	mu            sync.RWMutex
	nextID        int64
	matches       map[int64]*domain.Match
	byParticipant map[int64]int64
	now           func() time.Time
}

func NewMatchRepository() repository.MatchRepository {
	return &matchRepository{
		matches:       make(map[int64]*domain.Match),
		byParticipant: make(map[int64]int64),
		now:           time.Now,
	}
}

func (r *matchRepository) Create(_ context.Context, match *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFree(match, nil); err != nil {
		return err
	}
	r.insert(match)
	return nil
}

func (r *matchRepository) CreateBatch(_ context.Context, matches []*domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int64]bool)
	for _, m := range matches {
		if err := r.checkFree(m, seen); err != nil {
			return err
		}
	}
	for _, m := range matches {
		r.insert(m)
	}
	return nil
}

func (r *matchRepository) ReplaceAll(_ context.Context, matches []*domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make(map[int64]*domain.Match)
	keptBy := make(map[int64]int64)
	for id, m := range r.matches {
		if m.Locked() {
			kept[id] = m
			keptBy[m.Participant1ID] = id
			keptBy[m.Participant2ID] = id
		}
	}

	prevMatches, prevBy := r.matches, r.byParticipant
	r.matches, r.byParticipant = kept, keptBy

	seen := make(map[int64]bool)
	for _, m := range matches {
		if err := r.checkFree(m, seen); err != nil {
			r.matches, r.byParticipant = prevMatches, prevBy
			return err
		}
	}
	for _, m := range matches {
		r.insert(m)
	}
	return nil
}

func (r *matchRepository) GetByParticipant(_ context.Context, participantID int64) (*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byParticipant[participantID]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	m := *r.matches[id]
	return &m, nil
}

func (r *matchRepository) List(_ context.Context) ([]*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Match, 0, len(r.matches))
	for _, m := range r.matches {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompatibilityPercentage != out[j].CompatibilityPercentage {
			return out[i].CompatibilityPercentage > out[j].CompatibilityPercentage
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// checkFree must be called with the write lock held. seen tracks participants
// claimed earlier in the same batch.
func (r *matchRepository) checkFree(m *domain.Match, seen map[int64]bool) error {
	if m.Participant1ID == m.Participant2ID {
		return domain.ErrInvalidInput
	}
	for _, pid := range []int64{m.Participant1ID, m.Participant2ID} {
		if _, taken := r.byParticipant[pid]; taken {
			return domain.ErrParticipantAlreadyMatched
		}
		if seen != nil {
			if seen[pid] {
				return domain.ErrParticipantAlreadyMatched
			}
			seen[pid] = true
		}
	}
	return nil
}

func (r *matchRepository) insert(m *domain.Match) {
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = r.now().UTC()
	stored := *m
	r.matches[stored.ID] = &stored
	r.byParticipant[stored.Participant1ID] = stored.ID
	r.byParticipant[stored.Participant2ID] = stored.ID
}

type whitelistRepository struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewWhitelistRepository() repository.WhitelistRepository {
	return &whitelistRepository{entries: make(map[string]time.Time)}
}

func (r *whitelistRepository) Contains(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[email]
	return ok, nil
}

func (r *whitelistRepository) Add(_ context.Context, emails []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := 0
	for _, email := range emails {
		if _, ok := r.entries[email]; ok {
			continue
		}
		r.entries[email] = time.Now().UTC()
		added++
	}
	return added, nil
}

func (r *whitelistRepository) List(_ context.Context) ([]*domain.WhitelistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.WhitelistEntry, 0, len(r.entries))
	for email, at := range r.entries {
		out = append(out, &domain.WhitelistEntry{Email: email, CreatedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
