package photo

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
)

// Staged is an attachment waiting to be saved with a record. ID and Seq exist
// only while staged.
type Staged struct {
	ID    string
	Seq   int
	Photo inspection.Photo
}

// Ticket identifies one pending decode in a staging batch.
type Ticket struct {
	Gen int
	Seq int
}

// Staging is the in-progress attachment set of the inspection form.
type Staging struct {
	mu    sync.Mutex
	gen   int
	seq   int
	items []Staged
}

func NewStaging() *Staging { return &Staging{} }

// Begin starts a new selection of n files. Any previous attachments are
// discarded and decodes still in flight for them will be dropped on arrival.
func (s *Staging) Begin(n int) []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.items = nil
	tickets := make([]Ticket, n)
	for i := range tickets {
		s.seq++
		tickets[i] = Ticket{Gen: s.gen, Seq: s.seq}
	}
	return tickets
}

// Put stages a completed decode. It reports false when the ticket belongs to
// a batch that has since been reset.
func (s *Staging) Put(t Ticket, p inspection.Photo) (Staged, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Gen != s.gen {
		return Staged{}, false
	}
	item := Staged{ID: uuid.NewString(), Seq: t.Seq, Photo: p}
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].Seq > t.Seq })
	s.items = append(s.items, Staged{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
	return item, true
}

// Items returns the staged attachments in submission order.
func (s *Staging) Items() []Staged {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Staged(nil), s.items...)
}

// Photos returns the staged photos in submission order.
func (s *Staging) Photos() []inspection.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]inspection.Photo, len(s.items))
	for i, it := range s.items {
		out[i] = it.Photo
	}
	return out
}

// Generation identifies the current batch. Tickets from other generations
// are stale.
func (s *Staging) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Staging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Remove drops the attachment with the given id.
func (s *Staging) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveByName drops every attachment named name and returns how many went.
func (s *Staging) RemoveByName(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.Photo.Name != name {
			kept = append(kept, it)
		}
	}
	n := len(s.items) - len(kept)
	s.items = kept
	return n
}

// Reset clears the set and invalidates outstanding tickets.
func (s *Staging) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.items = nil
}
