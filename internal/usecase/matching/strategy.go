package matching

import (
	"math/rand/v2"
	"sort"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

// Pair is one proposed pairing produced by a Strategy.
type Pair struct {
	A     *domain.Participant
	B     *domain.Participant
	Score float64
}

// Strategy partitions a pool into pairs. At most one participant is left over,
// and only when the pool is odd.
type Strategy interface {
	Pair(pool []*domain.Participant, scorer Scorer) (pairs []Pair, leftover []*domain.Participant)
}

// RandomStrategy shuffles the pool and pairs neighbours.
type RandomStrategy struct {
	rnd *rand.Rand
}

// NewRandomStrategy returns a shuffling strategy. rnd is not safe for concurrent
// use; the engine serializes calls.
func NewRandomStrategy(rnd *rand.Rand) *RandomStrategy {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomStrategy{rnd: rnd}
}

func (s *RandomStrategy) Pair(pool []*domain.Participant, scorer Scorer) ([]Pair, []*domain.Participant) {
	shuffled := append([]*domain.Participant(nil), pool...)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairs := make([]Pair, 0, len(shuffled)/2)
	for len(shuffled) >= 2 {
		a, b := shuffled[0], shuffled[1]
		shuffled = shuffled[2:]
		pairs = append(pairs, Pair{A: a, B: b, Score: scorer.Score(a, b)})
	}
	return pairs, shuffled
}

// GreedyStrategy takes the longest-registered participant first and pairs them
// with the best scoring partner still in the pool. Ties go to the earlier
// registrant.
type GreedyStrategy struct{}

func (GreedyStrategy) Pair(pool []*domain.Participant, scorer Scorer) ([]Pair, []*domain.Participant) {
	remaining := append([]*domain.Participant(nil), pool...)
	sort.SliceStable(remaining, func(i, j int) bool {
		if !remaining[i].CreatedAt.Equal(remaining[j].CreatedAt) {
			return remaining[i].CreatedAt.Before(remaining[j].CreatedAt)
		}
		return remaining[i].ID < remaining[j].ID
	})

	pairs := make([]Pair, 0, len(remaining)/2)
	for len(remaining) >= 2 {
		a := remaining[0]
		remaining = remaining[1:]

		best, bestScore := 0, -1.0
		for i, candidate := range remaining {
			if score := scorer.Score(a, candidate); score > bestScore {
				best, bestScore = i, score
			}
		}

		pairs = append(pairs, Pair{A: a, B: remaining[best], Score: bestScore})
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return pairs, remaining
}
