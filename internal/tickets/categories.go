package tickets

import (
	"strings"

	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

// AllTickets is the catch-all category name
const AllTickets = "All Tickets"

const allTicketsIcon = "📋"

// CategoryCount is the number of tickets matching a category
type CategoryCount struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// Categorizer assigns tickets to keyword categories
type Categorizer struct {
	categories []config.CategoryConfig
}

// NewCategorizer creates a categorizer; keywords are matched case-insensitively
func NewCategorizer(categories []config.CategoryConfig) *Categorizer {
	normalized := make([]config.CategoryConfig, len(categories))
	for i, c := range categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized[i] = config.CategoryConfig{Name: c.Name, Icon: c.Icon, Keywords: kws}
	}
	return &Categorizer{categories: normalized}
}

// Match returns the names of categories whose keywords appear in the ticket text
func (c *Categorizer) Match(t *models.Ticket) []string {
	text := strings.ToLower(t.Summary + " " + t.Text())

	var names []string
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				names = append(names, cat.Name)
				break
			}
		}
	}
	return names
}

// Count tallies every category over the store and appends the All Tickets total
func (c *Categorizer) Count(s *Store) []CategoryCount {
	counts := make([]CategoryCount, len(c.categories))
	index := make(map[string]int, len(c.categories))
	for i, cat := range c.categories {
		counts[i] = CategoryCount{Name: cat.Name, Icon: cat.Icon}
		index[cat.Name] = i
	}

	for i := range s.tickets {
		for _, name := range c.Match(&s.tickets[i]) {
			counts[index[name]].Count++
		}
	}

	return append(counts, CategoryCount{Name: AllTickets, Icon: allTicketsIcon, Count: s.Len()})
}
