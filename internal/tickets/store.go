package tickets

import (
	"strings"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// Store holds ticket records addressed by their index position. It is
// read-only after construction and safe for concurrent use.
type Store struct {
	tickets []models.Ticket
	byID    map[string]int
}

// NewStore copies tickets into a store, renumbering positions to row offsets
func NewStore(tickets []models.Ticket) *Store {
	s := &Store{
		tickets: make([]models.Ticket, len(tickets)),
		byID:    make(map[string]int, len(tickets)),
	}
	for i, t := range tickets {
		t.Position = i
		s.tickets[i] = t
		if t.TicketID != "" {
			if _, seen := s.byID[t.TicketID]; !seen {
				s.byID[t.TicketID] = i
			}
		}
	}
	return s
}

// Get returns the ticket at position
func (s *Store) Get(position int) (models.Ticket, bool) {
	if position < 0 || position >= len(s.tickets) {
		return models.Ticket{}, false
	}
	return s.tickets[position], true
}

// Len returns the number of tickets
func (s *Store) Len() int {
	return len(s.tickets)
}

// All returns a copy of every ticket in position order
func (s *Store) All() []models.Ticket {
	out := make([]models.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// FindByID returns the first ticket with the given id
func (s *Store) FindByID(id string) (models.Ticket, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return models.Ticket{}, false
	}
	return s.tickets[pos], true
}

// Page returns up to limit tickets starting at offset, optionally restricted
// to a status (case-insensitive). total is the number of matching tickets.
func (s *Store) Page(offset, limit int, status string) (page []models.Ticket, total int) {
	if offset < 0 {
		offset = 0
	}
	for _, t := range s.tickets {
		if status != "" && !strings.EqualFold(t.Status, status) {
			continue
		}
		if total >= offset && len(page) < limit {
			page = append(page, t)
		}
		total++
	}
	return page, total
}
