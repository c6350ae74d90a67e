package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
)

// Key is the kv key holding the record sequence.
const Key = "inspections"

var ErrPersist = errors.New("persist records")

// Recorder receives store activity.
type Recorder interface {
	StoreLoaded(n int)
	StoreWritten(op string, n int, err error)
}

// Store owns the ordered sequence of inspection records. Every mutation
// rewrites the whole sequence under Key. A single process is expected to
// own the underlying kv location.
type Store struct {
	kv     kv.Store
	logger *slog.Logger
	rec    Recorder

	mu      sync.Mutex
	records []inspection.Record
}

// New creates an empty Store over kvs. Call Load to read persisted records.
func New(kvs kv.Store, logger *slog.Logger, rec Recorder) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kvs, logger: logger, rec: rec, records: []inspection.Record{}}
}

// Open creates a Store and loads it.
func Open(ctx context.Context, kvs kv.Store, logger *slog.Logger, rec Recorder) *Store {
	s := New(kvs, logger, rec)
	s.Load(ctx)
	return s
}

// Load replaces the in-memory sequence with the persisted one. A missing key
// or unreadable document yields an empty sequence; the next write overwrites
// whatever was there.
func (s *Store) Load(ctx context.Context) []inspection.Record {
	records := s.read(ctx)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	if s.rec != nil {
		s.rec.StoreLoaded(len(records))
	}
	return clone(records)
}

func (s *Store) read(ctx context.Context) []inspection.Record {
	data, err := s.kv.Get(ctx, Key)
	if errors.Is(err, kv.ErrNotFound) {
		s.logger.Debug("no persisted records", slog.String("key", Key))
		return []inspection.Record{}
	}
	if err != nil {
		s.logger.Warn("reading records failed, starting empty",
			slog.String("key", Key), slog.String("error", err.Error()))
		return []inspection.Record{}
	}

	var records []inspection.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("persisted records unreadable, starting empty",
			slog.String("key", Key), slog.Int("bytes", len(data)), slog.String("error", err.Error()))
		return []inspection.Record{}
	}
	records = normalize(records)
	s.logger.Info("records loaded", slog.Int("count", len(records)))
	return records
}

// Append adds r at the end and persists the whole sequence. When persisting
// fails the sequence is left as it was.
func (s *Store) Append(ctx context.Context, r inspection.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]inspection.Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, normalize([]inspection.Record{r})...)

	err := s.persist(ctx, next)
	if s.rec != nil {
		s.rec.StoreWritten("append", len(next), err)
	}
	if err != nil {
		s.logger.Error("append failed", slog.String("id", r.ID), slog.String("error", err.Error()))
		return err
	}
	s.records = next
	s.logger.Info("record appended",
		slog.String("id", r.ID),
		slog.String("equipment_type", string(r.EquipmentType)),
		slog.Int("photos", len(r.Photos)),
		slog.Int("count", len(next)))
	return nil
}

// Replace swaps the whole sequence for records. Memory changes only after
// the new sequence is durable.
func (s *Store) Replace(ctx context.Context, records []inspection.Record) error {
	next := normalize(clone(records))

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.persist(ctx, next)
	if s.rec != nil {
		s.rec.StoreWritten("replace", len(next), err)
	}
	if err != nil {
		s.logger.Error("replace failed", slog.Int("count", len(next)), slog.String("error", err.Error()))
		return err
	}
	s.records = next
	s.logger.Info("records replaced", slog.Int("count", len(next)))
	return nil
}

// List returns a copy of the sequence in insertion order.
func (s *Store) List() []inspection.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.records)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) persist(ctx context.Context, records []inspection.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.kv.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func clone(records []inspection.Record) []inspection.Record {
	return append([]inspection.Record{}, records...)
}

// normalize keeps photos serialized as an array, never null.
func normalize(records []inspection.Record) []inspection.Record {
	if records == nil {
		return []inspection.Record{}
	}
	for i := range records {
		if records[i].Photos == nil {
			records[i].Photos = []inspection.Photo{}
		}
	}
	return records
}
