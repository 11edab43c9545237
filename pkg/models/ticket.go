package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MissingID is shown in place of an absent ticket id
const MissingID = "N/A"

// Ticket is one row of the cleaned reference table
type Ticket struct {
	Position         int    `json:"position"`
	TicketID         string `json:"ticket_id,omitempty"`
	Summary          string `json:"summary,omitempty"`
	Description      string `json:"description,omitempty"`
	CleanedText      string `json:"cleaned_text,omitempty"`
	Status           string `json:"status,omitempty"`
	Priority         string `json:"priority,omitempty"`
	BusinessPriority string `json:"business_priority,omitempty"`
	BlockedStatus    string `json:"blocked_status,omitempty"`
	RequestStatus    string `json:"request_status,omitempty"`
	Assignee         string `json:"assignee,omitempty"`
	Reporter         string `json:"reporter,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
	StoreNumber      string `json:"store_number,omitempty"`
	EpicLink         string `json:"epic_link,omitempty"`
	LastComment      string `json:"last_comment,omitempty"`
}

// DisplayID returns the ticket id, or MissingID when absent
func (t *Ticket) DisplayID() string {
	if t.TicketID == "" {
		return MissingID
	}
	return t.TicketID
}

// Text returns the text the ticket was embedded from
func (t *Ticket) Text() string {
	if t.CleanedText != "" {
		return t.CleanedText
	}
	return t.Description
}

// UUID generates a deterministic point id from position and ticket id
func (t *Ticket) UUID() string {
	return TicketUUID(t.Position, t.TicketID)
}

// ContentHash returns a SHA256 of the embedded text for change detection
func (t *Ticket) ContentHash() string {
	h := sha256.Sum256([]byte(t.Text()))
	return hex.EncodeToString(h[:])
}

// TicketUUID generates a deterministic UUID from ticket identity
func TicketUUID(position int, ticketID string) string {
	data := fmt.Sprintf("%d#%s", position, ticketID)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)).String()
}

var missingMarkers = map[string]struct{}{
	"nan":  {},
	"null": {},
	"none": {},
	"nat":  {},
	"<na>": {},
}

// NormalizeField trims a raw cell and maps placeholder values to absent ("")
func NormalizeField(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := missingMarkers[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

// FormatStoreNumber renders spreadsheet floats such as "12.0" as "12".
// Values that are not numeric are returned unchanged.
func FormatStoreNumber(s string) string {
	s = NormalizeField(s)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
