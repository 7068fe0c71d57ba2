package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a SIEM detection engineer. Return ONLY the fixed SIEM query as plain text."

// OpenAIConfig configures the OpenAI-backed suggester.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// OpenAISuggester asks a chat-completion model to rewrite a rule query.
type OpenAISuggester struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAISuggester(cfg OpenAIConfig) *OpenAISuggester {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	return &OpenAISuggester{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		temperature: temperature,
	}
}

func (s *OpenAISuggester) Propose(ctx context.Context, query string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Fix this SIEM rule query:\n%s", query)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
