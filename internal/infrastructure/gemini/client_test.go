package gemini

import (
	"strings"
	"testing"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	a := &domain.Participant{Name: "Ana", Role: "fullstack", PreferredLanguage: "Go", ApproachScore: 3, Frameworks: []string{"gin", "react"}}
	b := &domain.Participant{Name: "Ben", Role: "aiml", ThemePreference: "dark"}

	prompt := buildPrompt(a, b)
	for _, want := range []string{
		"name=Ana; role=Full Stack; language=Go; theme=Light Mode; frameworks=gin, react; approach=3/10",
		"name=Ben; role=AI / ML; theme=Dark Mode",
		"Language: English.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "IDE=") {
		t.Fatalf("empty fields should be omitted")
	}
}
