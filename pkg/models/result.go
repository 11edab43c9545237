package models

// Hit is a ticket returned for a query, with its normalized similarity
type Hit struct {
	Ticket     Ticket  `json:"ticket"`
	Similarity float64 `json:"similarity"` // 0-1, higher is more relevant
	Rank       int     `json:"rank"`       // 1-based
}

// Excerpt is the slice of a hit that made it into the prompt context
type Excerpt struct {
	Rank       int     `json:"rank"`
	TicketID   string  `json:"ticket_id"`
	Summary    string  `json:"summary,omitempty"`
	Body       string  `json:"body"`
	Similarity float64 `json:"similarity"`
}

// QueryContext is the evidence block handed to the answer generator
type QueryContext struct {
	Excerpts   []Excerpt `json:"excerpts,omitempty"`
	Text       string    `json:"text"`
	Sufficient bool      `json:"sufficient"`
	Notice     string    `json:"notice,omitempty"`
	UsedChars  int       `json:"used_chars"`
}

// Answer is the result of a single answer_query call
type Answer struct {
	Query            string `json:"query"`
	Answer           string `json:"answer"`
	Hits             []Hit  `json:"hits"`
	Sufficient       bool   `json:"sufficient"`
	Context          string `json:"context,omitempty"`
	GenerationFailed bool   `json:"generation_failed,omitempty"`
	Notice           string `json:"notice,omitempty"`
	DurationMs       int    `json:"duration_ms"`
}

// IndexStats contains statistics from an index build
type IndexStats struct {
	TotalRows  int `json:"total_rows"`
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
	Dimensions int `json:"dimensions"`
	DurationMs int `json:"duration_ms"`
}
