package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// Provider defines the interface for embedding generation
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// maxEmbedChars keeps a ticket's text within provider input limits (~1500 tokens)
const maxEmbedChars = 6000

// PrepareTicketText builds the text that represents a ticket in the index
func PrepareTicketText(t *models.Ticket) string {
	text := CleanText(t.Text())
	if text == "" {
		text = CleanText(t.Summary)
	} else if t.Summary != "" && t.CleanedText == "" && !strings.Contains(text, t.Summary) {
		text = fmt.Sprintf("%s\n\n%s", t.Summary, text)
	}
	return TruncateText(text, maxEmbedChars)
}

// TruncateText truncates text to maxLen characters
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// CleanText removes excessive whitespace from text
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
