package tickets

import (
	"regexp"
	"strings"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+|\[[^\]]*\]\([^)]*\)`)
	mailtoPattern   = regexp.MustCompile(`\[[^\]]*\|mailto:[^\]]*\]`)
	bulletPattern   = regexp.MustCompile(`[*•#_\-]+`)
	spacePattern    = regexp.MustCompile(`\s{2,}`)
	thankYouPattern = regexp.MustCompile(`(?i)thank you.*`)
	helloPattern    = regexp.MustCompile(`(?i)hello[^!]*!`)

	headingPattern = regexp.MustCompile(`(?i)\b(proposed resolution|issue|resolution|status):?`)
	headingPhrases = map[string]string{
		"proposed resolution": "The proposed resolution is",
		"issue":               "The issue is",
		"resolution":          "The resolution was",
		"status":              "Current status:",
	}
)

// Combine joins the descriptive fields of a ticket the way the cleaner expects
func Combine(t *models.Ticket) string {
	return t.Summary + ". " + t.Description + " " + t.LastComment
}

// Clean strips tracker markup and boilerplate from ticket text and relabels
// headings as plain phrases. The result is a single line.
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = mailtoPattern.ReplaceAllString(text, "")

	text = bulletPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")

	// one pass, so replacement phrases are never relabelled again
	text = headingPattern.ReplaceAllStringFunc(text, func(m string) string {
		return headingPhrases[strings.ToLower(strings.TrimSuffix(m, ":"))]
	})

	text = thankYouPattern.ReplaceAllString(text, "")
	text = helloPattern.ReplaceAllString(text, "")

	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanTickets fills CleanedText for every ticket, drops tickets whose cleaned
// text is empty and renumbers positions. It returns the number dropped.
func CleanTickets(in []models.Ticket) ([]models.Ticket, int) {
	out := make([]models.Ticket, 0, len(in))
	for _, t := range in {
		t.CleanedText = Clean(Combine(&t))
		if strings.Trim(t.CleanedText, ". ") == "" {
			continue
		}
		t.Position = len(out)
		out = append(out, t)
	}
	return out, len(in) - len(out)
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
	greetingPattern     = regexp.MustCompile(`(?i)\b(hello|hi|dear team|good (morning|afternoon)|thanks|thank you)\b[^.]*`)
	supportPattern      = regexp.MustCompile(`(?i)(please provide|let me know if|do not hesitate|kind regards)[^.]*`)

	rewriteHeadings = strings.NewReplacer(
		"Proposed Resolution:", "The proposed resolution is",
		"Issue:", "The issue is",
		"Problem:", "The problem is",
		"Resolution:", "The resolution is",
		"Status:", "Current status:",
	)
)

// Rewrite is a lighter normalisation for already-cleaned text: markdown links
// keep their label, HTML tags go, headings and support boilerplate are rewritten.
func Rewrite(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = markdownLinkPattern.ReplaceAllString(text, "$1")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = bulletPattern.ReplaceAllString(text, " ")

	text = rewriteHeadings.Replace(text)

	text = greetingPattern.ReplaceAllString(text, "")
	text = supportPattern.ReplaceAllString(text, "")

	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimLeft(strings.TrimSpace(text), ". ")
}

// RewriteTickets applies Rewrite to each ticket's text
func RewriteTickets(in []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, len(in))
	for i, t := range in {
		t.CleanedText = Rewrite(t.Text())
		out[i] = t
	}
	return out
}
