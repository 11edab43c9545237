package tickets

// Stats summarises the loaded corpus
type Stats struct {
	Total      int            `json:"total_tickets"`
	Indexed    int            `json:"indexed_tickets"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
}

// ComputeStats counts tickets by status and priority. Absent values are not counted.
func ComputeStats(s *Store, indexed int) Stats {
	st := Stats{
		Total:      s.Len(),
		Indexed:    indexed,
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, t := range s.tickets {
		if t.Status != "" {
			st.ByStatus[t.Status]++
		}
		if t.Priority != "" {
			st.ByPriority[t.Priority]++
		}
	}
	return st
}
