package tickets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// header aliases accepted on read, lower-cased
var columnAliases = map[string]string{
	"ticket key":        "id",
	"key":               "id",
	"issue key":         "id",
	"ticket_id":         "id",
	"summary":           "summary",
	"title":             "summary",
	"description":       "description",
	"body":              "description",
	"cleaned_text":      "cleaned",
	"cleaned text":      "cleaned",
	"rewritten_text":    "cleaned",
	"text":              "cleaned",
	"status":            "status",
	"priority":          "priority",
	"business priority": "business_priority",
	"blocked status":    "blocked_status",
	"request status":    "request_status",
	"assignee":          "assignee",
	"reporter":          "reporter",
	"created":           "created",
	"updated":           "updated",
	"store number":      "store_number",
	"epic link":         "epic_link",
	"last comment":      "last_comment",
}

// referenceHeader is the column order of the reference CSV written next to the index
var referenceHeader = []string{
	"Ticket Key", "Summary", "Description", "Cleaned_Text", "Status", "Priority",
	"Business Priority", "Blocked Status", "Request Status", "Assignee", "Reporter",
	"Created", "Updated", "Store Number", "Epic Link", "Last Comment",
}

// ReadCSV loads tickets from a raw export, cleaned or reference CSV
func ReadCSV(path string) ([]models.Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	tickets, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return tickets, nil
}

// Decode parses ticket rows. Unknown columns are ignored; Position is the row offset.
func Decode(r io.Reader) ([]models.Ticket, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, err
	}

	fields := make([]string, len(header))
	hasID := false
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		fields[i] = columnAliases[key]
		if fields[i] == "id" {
			hasID = true
		}
	}
	if !hasID {
		return nil, fmt.Errorf("no ticket key column in header %v", header)
	}

	var out []models.Ticket
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		t := models.Ticket{Position: len(out)}
		for i, value := range record {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			setField(&t, fields[i], value)
		}
		out = append(out, t)
	}

	return out, nil
}

func setField(t *models.Ticket, field, raw string) {
	value := models.NormalizeField(raw)
	switch field {
	case "id":
		t.TicketID = value
	case "summary":
		t.Summary = value
	case "description":
		t.Description = value
	case "cleaned":
		if t.CleanedText == "" {
			t.CleanedText = value
		}
	case "status":
		t.Status = value
	case "priority":
		t.Priority = value
	case "business_priority":
		t.BusinessPriority = value
	case "blocked_status":
		t.BlockedStatus = value
	case "request_status":
		t.RequestStatus = value
	case "assignee":
		t.Assignee = value
	case "reporter":
		t.Reporter = value
	case "created":
		t.CreatedAt = value
	case "updated":
		t.UpdatedAt = value
	case "store_number":
		t.StoreNumber = models.FormatStoreNumber(value)
	case "epic_link":
		t.EpicLink = value
	case "last_comment":
		t.LastComment = value
	}
}

// WriteCSV writes tickets in index order. The file is replaced atomically.
func WriteCSV(path string, tickets []models.Ticket) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tickets-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, tickets); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Encode writes the reference header followed by one row per ticket
func Encode(w io.Writer, tickets []models.Ticket) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(referenceHeader); err != nil {
		return err
	}
	for i := range tickets {
		if err := writer.Write(Row(&tickets[i])); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Header returns the reference CSV column names
func Header() []string {
	return append([]string(nil), referenceHeader...)
}

// Row returns t's fields in Header order
func Row(t *models.Ticket) []string {
	return []string{
		t.TicketID, t.Summary, t.Description, t.CleanedText, t.Status, t.Priority,
		t.BusinessPriority, t.BlockedStatus, t.RequestStatus, t.Assignee, t.Reporter,
		t.CreatedAt, t.UpdatedAt, t.StoreNumber, t.EpicLink, t.LastComment,
	}
}
