package matching

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

// Scorer rates how well two participants fit together, in [0, 100].
type Scorer interface {
	Score(a, b *domain.Participant) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(a, b *domain.Participant) float64

func (f ScorerFunc) Score(a, b *domain.Participant) float64 {
	return f(a, b)
}

// RandomScorer ignores the participants and draws an integer score uniformly
// from [Min, Max].
type RandomScorer struct {
	min, max int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomScorer(min, max int, rnd *rand.Rand) *RandomScorer {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if min > max {
		min, max = max, min
	}
	return &RandomScorer{min: clampScore(min), max: clampScore(max), rnd: rnd}
}

func (s *RandomScorer) Score(_, _ *domain.Participant) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.min + s.rnd.IntN(s.max-s.min+1))
}

const (
	similarityBase   = 30.0
	similarityWeight = 70.0
)

// SimilarityScorer counts the profile attributes and quiz answers two
// participants share: 30 points base plus up to 70 spread evenly across the
// dimensions at least one of them filled in, rounded to one decimal. Nothing
// filled in on either side scores the base.
type SimilarityScorer struct{}

func (SimilarityScorer) Score(a, b *domain.Participant) float64 {
	profile := []struct{ x, y string }{
		{a.Role, b.Role},
		{a.PreferredLanguage, b.PreferredLanguage},
		{a.IDE, b.IDE},
		{a.ThemePreference, b.ThemePreference},
		{a.ExperienceLevel, b.ExperienceLevel},
		{a.OS, b.OS},
		{a.CommitmentType, b.CommitmentType},
		{a.CommunicationStyle, b.CommunicationStyle},
		{a.CollaborationStyle, b.CollaborationStyle},
	}

	total, same := 0, 0
	for _, dim := range profile {
		if dim.x == "" && dim.y == "" {
			continue
		}
		total++
		if strings.EqualFold(dim.x, dim.y) {
			same++
		}
	}

	if a.ApproachScore > 0 || b.ApproachScore > 0 {
		total++
		if a.ApproachScore > 0 && b.ApproachScore > 0 && absInt(a.ApproachScore-b.ApproachScore) <= 1 {
			same++
		}
	}

	if len(a.Frameworks) > 0 || len(b.Frameworks) > 0 {
		total++
		if sharesAny(a.Frameworks, b.Frameworks) {
			same++
		}
	}

	for _, key := range answerKeys(a.Answers, b.Answers) {
		x, y := a.Answers[key], b.Answers[key]
		if x == "" && y == "" {
			continue
		}
		total++
		if x == y {
			same++
		}
	}

	if total == 0 {
		return similarityBase
	}
	score := similarityBase + similarityWeight*float64(same)/float64(total)
	return math.Min(math.Round(score*10)/10, 100)
}

func answerKeys(a, b domain.Answers) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sharesAny(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[strings.ToLower(v)] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
