package store

import (
	"time"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
)

// DueSoonWindow is how far ahead the dashboard looks for upcoming
// inspections.
const DueSoonWindow = 7 * 24 * time.Hour

// Stats summarizes the stored records for the dashboard.
type Stats struct {
	Total    int
	ByType   map[inspection.EquipmentType]int
	ByStatus map[string]int
	// DueSoon counts records whose next inspection is within the window,
	// overdue ones included.
	DueSoon int
	Overdue int
}

// Filter narrows a record listing. Empty fields match everything.
type Filter struct {
	EquipmentType inspection.EquipmentType
	Status        string
}

func (f Filter) Match(r inspection.Record) bool {
	if f.EquipmentType != "" && r.EquipmentType != f.EquipmentType {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

func (f Filter) IsZero() bool { return f == Filter{} }

// Stats counts records as of now.
func (s *Store) Stats(now time.Time, window time.Duration) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Total:    len(s.records),
		ByType:   make(map[inspection.EquipmentType]int),
		ByStatus: make(map[string]int),
	}
	for _, r := range s.records {
		st.ByType[r.EquipmentType]++
		st.ByStatus[r.Status]++
		if r.DueWithin(now, window) {
			st.DueSoon++
		}
		if r.Overdue(now) {
			st.Overdue++
		}
	}
	return st
}

// Query returns the records matching f, most recent first.
func (s *Store) Query(f Filter) []inspection.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]inspection.Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		if f.Match(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return out
}
