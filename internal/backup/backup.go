// Package backup writes the whole record store to a portable JSON document
// and restores a store from one.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
)

var ErrMalformed = errors.New("malformed backup")

// FilePrefix and FileExt frame every backup file name.
const (
	FilePrefix = "backup-vistorias-"
	FileExt    = ".json"
)

// Document is the backup file layout.
type Document struct {
	Inspections []inspection.Record `json:"inspections"`
	ExportedAt  time.Time           `json:"exportedAt"`
}

// FileName names the backup taken at now, by UTC date.
func FileName(now time.Time) string {
	return FilePrefix + now.UTC().Format("2006-01-02") + FileExt
}

// Export writes records as a backup document to w.
func Export(w io.Writer, records []inspection.Record, now time.Time) error {
	if records == nil {
		records = []inspection.Record{}
	}
	doc := Document{Inspections: records, ExportedAt: now.UTC().Truncate(time.Millisecond)}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Parse decodes a backup document. The inspections key must be present and
// hold an array; exportedAt is informational and may be absent.
func Parse(data []byte) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return Document{}, fmt.Errorf("%w: document is null", ErrMalformed)
	}

	list, ok := raw["inspections"]
	if !ok {
		return Document{}, fmt.Errorf("%w: missing inspections", ErrMalformed)
	}
	list = bytes.TrimSpace(list)
	if len(list) == 0 || list[0] != '[' {
		return Document{}, fmt.Errorf("%w: inspections is not an array", ErrMalformed)
	}

	var doc Document
	if err := json.Unmarshal(list, &doc.Inspections); err != nil {
		return Document{}, fmt.Errorf("%w: inspections: %v", ErrMalformed, err)
	}
	if ts, ok := raw["exportedAt"]; ok {
		// A bad timestamp does not invalidate the records.
		_ = json.Unmarshal(ts, &doc.ExportedAt)
	}
	return doc, nil
}

// Store is the part of the record store a backup needs.
type Store interface {
	List() []inspection.Record
	Replace(ctx context.Context, records []inspection.Record) error
}

// Recorder receives backup activity.
type Recorder interface {
	BackupExported(n int)
	BackupImported(n int, err error)
}

type ImportOptions struct {
	// Strict rejects the whole backup when any record fails
	// inspection.Record.Validate.
	Strict bool
}

// Service exports and imports the store.
type Service struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
	rec    Recorder
}

func NewService(store Store, now func() time.Time, logger *slog.Logger, rec Recorder) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, now: now, logger: logger, rec: rec}
}

// Export writes the current store to w.
func (s *Service) Export(w io.Writer) (int, error) {
	records := s.store.List()
	if err := Export(w, records, s.now()); err != nil {
		return 0, err
	}
	if s.rec != nil {
		s.rec.BackupExported(len(records))
	}
	return len(records), nil
}

// ExportToDir writes the backup file into dir and returns its path. A backup
// taken earlier the same day is overwritten.
func (s *Service) ExportToDir(ctx context.Context, dir string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	now := s.now()
	records := s.store.List()

	var buf bytes.Buffer
	if err := Export(&buf, records, now); err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, FileName(now))
	if err := kv.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("write backup: %w", err)
	}
	if s.rec != nil {
		s.rec.BackupExported(len(records))
	}
	s.logger.Info("backup exported", slog.String("path", path), slog.Int("count", len(records)))
	return path, len(records), nil
}

// Import replaces the whole store with the records in data. Nothing is
// merged or deduplicated. On any error the store is left untouched.
func (s *Service) Import(ctx context.Context, data []byte, opts ImportOptions) (int, error) {
	n, err := s.importDoc(ctx, data, opts)
	if s.rec != nil {
		s.rec.BackupImported(n, err)
	}
	if err != nil {
		s.logger.Warn("backup import failed", slog.String("error", err.Error()))
		return 0, err
	}
	s.logger.Info("backup imported", slog.Int("count", n))
	return n, nil
}

func (s *Service) importDoc(ctx context.Context, data []byte, opts ImportOptions) (int, error) {
	doc, err := Parse(data)
	if err != nil {
		return 0, err
	}
	if opts.Strict {
		var errs []error
		for i, r := range doc.Inspections {
			if err := r.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			}
		}
		if len(errs) > 0 {
			return 0, fmt.Errorf("%w: %w", ErrMalformed, errors.Join(errs...))
		}
	}
	if err := s.store.Replace(ctx, doc.Inspections); err != nil {
		return 0, err
	}
	return len(doc.Inspections), nil
}

// ImportFile reads path and imports it.
func (s *Service) ImportFile(ctx context.Context, path string, opts ImportOptions) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read backup: %w", err)
	}
	return s.Import(ctx, data, opts)
}

// List returns the backup files in dir, newest name first.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, FilePrefix+"*"+FileExt))
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches, nil
}
