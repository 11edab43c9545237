package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Kavirubc/ticketrag/internal/answer"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

var (
	headingStyle = color.New(color.FgCyan, color.Bold)
	idStyle      = color.New(color.FgYellow)
	warnStyle    = color.New(color.FgRed)
	dimStyle     = color.New(color.Faint)
)

const previewChars = 200

func printHits(w io.Writer, hits []models.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No matching tickets found")
		return
	}

	fmt.Fprintf(w, "Found %d tickets:\n\n", len(hits))
	for _, h := range hits {
		t := h.Ticket
		fmt.Fprintf(w, "%d. %s - %s\n", h.Rank, idStyle.Sprint(t.DisplayID()), t.Summary)

		meta := []string{fmt.Sprintf("Similarity: %.1f%%", h.Similarity*100)}
		if t.Status != "" {
			meta = append(meta, "Status: "+t.Status)
		}
		if t.Priority != "" {
			meta = append(meta, "Priority: "+t.Priority)
		}
		if t.StoreNumber != "" {
			meta = append(meta, "Store: "+t.StoreNumber)
		}
		fmt.Fprintf(w, "   %s\n", dimStyle.Sprint(strings.Join(meta, " | ")))

		if text := answer.TruncateAtWord(strings.Join(strings.Fields(t.Text()), " "), previewChars); text != "" {
			fmt.Fprintf(w, "   %s\n", text)
		}
		fmt.Fprintln(w)
	}
}

func printAnswer(w io.Writer, res *models.Answer, showContext bool) {
	headingStyle.Fprintln(w, "Answer:")
	switch {
	case res.GenerationFailed:
		warnStyle.Fprintln(w, res.Notice)
		fmt.Fprintln(w)
		fmt.Fprintln(w, res.Context)
	default:
		fmt.Fprintln(w, res.Answer)
		if !res.Sufficient {
			fmt.Fprintln(w)
			warnStyle.Fprintln(w, res.Notice)
		}
		if showContext {
			fmt.Fprintln(w)
			headingStyle.Fprintln(w, "Context:")
			fmt.Fprintln(w, res.Context)
		}
	}

	fmt.Fprintln(w)
	headingStyle.Fprintln(w, "Sources:")
	printHits(w, res.Hits)
	fmt.Fprintln(w, dimStyle.Sprintf("(%d ms)", res.DurationMs))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
