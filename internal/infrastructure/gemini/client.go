package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

// GeminiClient writes match explanations with a Gemini model.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(defaultModel)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(120)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Explain asks the model for a short blurb on why the pair fits. Callers fall
// back to a template on error.
func (c *GeminiClient) Explain(ctx context.Context, a, b *domain.Participant) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(a, b)))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

func buildPrompt(a, b *domain.Participant) string {
	return fmt.Sprintf(`
		Two hackathon participants were paired as teammates.
		Participant 1: %s
		Participant 2: %s

		Task: Write a short, friendly explanation (1-2 sentences) of why they work well together.
		Mention what they share or how their skills complement each other.
		Language: English.
		Output: Just the explanation text.
	`, describe(a), describe(b))
}

func describe(p *domain.Participant) string {
	fields := []struct{ label, value string }{
		{"name", p.Name},
		{"role", p.RoleDisplay()},
		{"language", p.PreferredLanguage},
		{"IDE", p.IDE},
		{"theme", p.ThemeDisplay()},
		{"experience", p.ExperienceLevel},
		{"frameworks", strings.Join(p.Frameworks, ", ")},
		{"OS", p.OS},
		{"commitment", p.CommitmentType},
		{"communication", p.CommunicationStyle},
		{"collaboration", p.CollaborationStyle},
	}

	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if f.value != "" {
			parts = append(parts, f.label+"="+f.value)
		}
	}
	if p.ApproachScore > 0 {
		parts = append(parts, fmt.Sprintf("approach=%d/10 (1 plans everything, 10 improvises)", p.ApproachScore))
	}
	return strings.Join(parts, "; ")
}
