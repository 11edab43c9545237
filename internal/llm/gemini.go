package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
	opts   Options
}

// NewGeminiProvider creates a new Gemini completion provider
func NewGeminiProvider(ctx context.Context, apiKey string, opts Options) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		opts:   opts.withDefaults("gemini-1.5-flash"),
	}, nil
}

// Complete generates a completion for the given prompt
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem generates a completion with a system prompt
func (p *GeminiProvider) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: genai.Ptr(int32(p.opts.MaxNewTokens)),
		Temperature:     genai.Ptr(p.opts.Temperature),
	}

	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.opts.Model, []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases resources
func (p *GeminiProvider) Close() error {
	return nil
}
