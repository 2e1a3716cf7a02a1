package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"festa-events-pipeline/internal/models"
)

// CategorySuggester proposes categories for events the keyword table left in
// the generic bucket. Suggestions are informational and only surface in the
// offline review output; nothing in the pipeline acts on them.
type CategorySuggester struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewCategorySuggester creates a suggester with the given API key.
func NewCategorySuggester(apiKey string) *CategorySuggester {
	return &CategorySuggester{
		client:      openai.NewClient(apiKey),
		model:       "gpt-4o-mini",
		temperature: 0.1,
	}
}

// Suggest returns a category proposal for one uncategorized event.
func (s *CategorySuggester) Suggest(ctx context.Context, event *models.Event, categories []string) (string, error) {
	systemPrompt := "Tu classes des fêtes et événements populaires français. " +
		"Réponds uniquement par un nom de catégorie de la liste fournie, sans autre texte."

	userPrompt := fmt.Sprintf("Catégories possibles : %s.\nTitre : %s\nDescription : %s",
		strings.Join(categories, ", "), event.Title, event.Description)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		MaxTokens:   20,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
