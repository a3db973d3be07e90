// Package services contains external service integrations for the analytics engine
package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// TextCompletion produces a free-form completion for a system/user prompt
// pair. The analytics insight flow is the only consumer; it treats the output
// as untrusted text and validates the structure itself.
type TextCompletion interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAICompletion implements TextCompletion against the OpenAI chat API.
type OpenAICompletion struct {
	client *openai.Client
	model  string
}

// NewOpenAICompletion creates a new OpenAI-backed completion service.
func NewOpenAICompletion(apiKey, model string) *OpenAICompletion {
	return &OpenAICompletion{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Complete sends one chat completion request. Temperature is kept low so the
// same analytics state yields stable narratives.
func (s *OpenAICompletion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
