// Package answer turns ranked hits into the bounded context a generator sees,
// and decides when the evidence is too weak to use.
package answer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

const excerptSeparator = "\n\n"

// Assembler packs hits into a prompt context
type Assembler struct {
	thresholds Thresholds
}

// NewAssembler creates an assembler with the given thresholds
func NewAssembler(t Thresholds) *Assembler {
	return &Assembler{thresholds: t}
}

// Thresholds returns the thresholds in use
func (a *Assembler) Thresholds() Thresholds {
	return a.thresholds
}

// Assemble builds the context for hits, best first, within maxChars. When the
// evidence is insufficient the returned Text is exactly FallbackContext.
func (a *Assembler) Assemble(hits []models.Hit, maxChars int) models.QueryContext {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if len(hits) == 0 {
		return fallback("no tickets matched the query")
	}

	top := hits[0].Similarity
	if top <= a.thresholds.MinSimilarity {
		return fallback(fmt.Sprintf("best match similarity %.2f is not above %.2f",
			top, a.thresholds.MinSimilarity))
	}

	share := maxChars / len(hits)

	var (
		excerpts []models.Excerpt
		parts    []string
		used     int
	)
	for _, h := range hits {
		body := excerptBody(&h.Ticket)
		if !a.usable(body) {
			continue
		}

		header := strings.TrimSpace(fmt.Sprintf("Ticket %s: %s", h.Ticket.DisplayID(), h.Ticket.Summary))
		body = TruncateAtWord(body, share-len(header)-1)
		if body == "" {
			continue
		}
		text := header + "\n" + body

		cost := len(text)
		if len(parts) > 0 {
			cost += len(excerptSeparator)
		}
		if used+cost > maxChars {
			break
		}

		used += cost
		parts = append(parts, text)
		excerpts = append(excerpts, models.Excerpt{
			Rank:       h.Rank,
			TicketID:   h.Ticket.TicketID,
			Summary:    h.Ticket.Summary,
			Body:       body,
			Similarity: h.Similarity,
		})
	}

	if used <= a.thresholds.MinContextChars {
		return fallback(fmt.Sprintf("matched tickets carry only %d characters of usable text (need more than %d)",
			used, a.thresholds.MinContextChars))
	}

	return models.QueryContext{
		Excerpts:   excerpts,
		Text:       strings.Join(parts, excerptSeparator),
		Sufficient: true,
		UsedChars:  used,
	}
}

func (a *Assembler) usable(body string) bool {
	letters := 0
	for _, r := range body {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0 && letters >= a.thresholds.MinAlphaChars
}

func fallback(notice string) models.QueryContext {
	return models.QueryContext{
		Text:   FallbackContext,
		Notice: "insufficient evidence: " + notice,
	}
}

// excerptBody is the ticket text plus its last comment, unless already included
func excerptBody(t *models.Ticket) string {
	body := strings.Join(strings.Fields(t.Text()), " ")
	comment := strings.Join(strings.Fields(t.LastComment), " ")
	if comment != "" && !strings.Contains(body, comment) {
		if body == "" {
			return comment
		}
		body += " " + comment
	}
	return body
}

// TruncateAtWord shortens s to at most limit bytes, cutting at whitespace.
// A first word longer than limit yields "".
func TruncateAtWord(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}
	if isBlank(s[limit]) {
		return strings.TrimRight(s[:limit], " \t\r\n")
	}
	cut := strings.LastIndexAny(s[:limit], " \t\r\n")
	if cut <= 0 {
		return ""
	}
	return strings.TrimRight(s[:cut], " \t\r\n")
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
