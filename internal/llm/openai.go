package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI's API
type OpenAIProvider struct {
	client *openai.Client
	opts   Options
}

// NewOpenAIProvider creates a new OpenAI completion provider
func NewOpenAIProvider(apiKey string, opts Options) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		opts:   opts.withDefaults("gpt-4o-mini"),
	}, nil
}

// Complete generates a completion for the given prompt
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem generates a completion with a system prompt
func (p *OpenAIProvider) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{}

	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.opts.Model,
		Messages:    messages,
		MaxTokens:   p.opts.MaxNewTokens,
		Temperature: p.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Close releases resources
func (p *OpenAIProvider) Close() error {
	return nil
}
