package matching

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

// Explainer writes a one or two sentence blurb on why a pair fits.
type Explainer interface {
	Explain(ctx context.Context, a, b *domain.Participant) (string, error)
}

// ExplanationCache remembers explanations per match id.
type ExplanationCache interface {
	GetExplanation(ctx context.Context, matchID int64) (string, bool, error)
	SetExplanation(ctx context.Context, matchID int64, text string) error
}

const localCacheLimit = 4096

// localExplanationCache keeps explanations in process when no shared cache is
// configured. It starts over once limit entries are stored.
type localExplanationCache struct {
	mu    sync.Mutex
	data  map[int64]string
	limit int
}

func newLocalExplanationCache(limit int) *localExplanationCache {
	return &localExplanationCache{data: make(map[int64]string), limit: limit}
}

func (c *localExplanationCache) GetExplanation(_ context.Context, matchID int64) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.data[matchID]
	return text, ok, nil
}

func (c *localExplanationCache) SetExplanation(_ context.Context, matchID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[matchID]; !ok && len(c.data) >= c.limit {
		clear(c.data)
	}
	c.data[matchID] = text
	return nil
}

// TemplateExplainer builds the blurb from the attributes both share. It never
// fails and needs no network.
type TemplateExplainer struct{}

func (TemplateExplainer) Explain(_ context.Context, a, b *domain.Participant) (string, error) {
	var shared []string
	if a.PreferredLanguage != "" && strings.EqualFold(a.PreferredLanguage, b.PreferredLanguage) {
		shared = append(shared, "write "+a.PreferredLanguage)
	}
	if a.IDE != "" && strings.EqualFold(a.IDE, b.IDE) {
		shared = append(shared, "live in "+a.IDE)
	}
	if a.ThemePreference != "" && a.ThemePreference == b.ThemePreference {
		shared = append(shared, "prefer "+strings.ToLower(a.ThemeDisplay()))
	}
	if a.CollaborationStyle != "" && strings.EqualFold(a.CollaborationStyle, b.CollaborationStyle) {
		shared = append(shared, "like to collaborate "+strings.ToLower(a.CollaborationStyle))
	}

	if len(shared) == 0 {
		return fmt.Sprintf("%s (%s) and %s (%s) bring different strengths to the team.",
			displayName(a), a.RoleDisplay(), displayName(b), b.RoleDisplay()), nil
	}
	return fmt.Sprintf("%s and %s both %s.", displayName(a), displayName(b), joinList(shared)), nil
}

func displayName(p *domain.Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

func joinList(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
