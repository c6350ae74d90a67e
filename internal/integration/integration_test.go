//go:build integration

package integration

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/backup"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/metrics"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/photo"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePhotos(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 3))); err != nil {
			t.Fatalf("png.Encode failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a photo"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// TestIntegrationInspectionLifecycle records inspections with photos on each
// storage backend, reopens the store, and round-trips it through a backup
// file.
func TestIntegrationInspectionLifecycle(t *testing.T) {
	for _, backend := range []string{kv.BackendFile, kv.BackendSQLite, kv.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dataDir := t.TempDir()
			photoDir := t.TempDir()
			writePhotos(t, photoDir, "frente.png", "lacre.png")

			m := metrics.New()
			logger := quietLogger()

			kvs, err := kv.Open(backend, dataDir)
			if err != nil {
				t.Fatalf("kv.Open failed: %v", err)
			}
			st := store.Open(ctx, kvs, logger, m)
			if st.Len() != 0 {
				t.Fatalf("expected empty store, got %d", st.Len())
			}

			files, errs := photo.OpenPaths(filepath.Join(photoDir, "*"))
			if len(errs) != 0 {
				t.Fatalf("OpenPaths errors: %v", errs)
			}
			dec := photo.NewDecoder(photo.Options{Workers: 2, Logger: logger, Recorder: m})
			results := dec.Decode(ctx, files)
			photos := photo.Accepted(results)
			if len(photos) != 2 || photo.Rejected(results) != 1 {
				t.Fatalf("expected 2 accepted and 1 rejected, got %d and %d", len(photos), photo.Rejected(results))
			}

			clock := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
			b := inspection.NewBuilder("Carla", func() time.Time { return clock })
			ext, err := b.Build(inspection.Fields{
				EquipmentType:        string(inspection.TypeExtinguisher),
				EquipmentID:          "EXT-001",
				Location:             "Corredor B",
				Floor:                "1",
				Status:               inspection.StatusOK,
				ExtinguisherType:     "CO2",
				ExtinguisherCapacity: "6kg",
				ExtinguisherDueDate:  "2027-03-01",
			}, photos, inspection.Checklist{Accessible: true, Seal: true})
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			hyd, err := b.Build(inspection.Fields{
				EquipmentType:   string(inspection.TypeHydrant),
				EquipmentID:     "HID-004",
				Location:        "Estacionamento",
				Floor:           "-1",
				Status:          inspection.StatusFailed,
				HydrantType:     "Coluna",
				HydrantPressure: "7 bar",
			}, nil, inspection.Checklist{Valves: true})
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			for _, r := range []inspection.Record{ext, hyd} {
				if err := st.Append(ctx, r); err != nil {
					t.Fatalf("Append failed: %v", err)
				}
			}
			want := st.List()
			if err := kvs.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			kvs, err = kv.Open(backend, dataDir)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer kvs.Close()
			st = store.Open(ctx, kvs, logger, m)
			if diff := cmp.Diff(want, st.List()); diff != "" {
				t.Fatalf("records changed across reopen (-want +got):\n%s", diff)
			}

			svc := backup.NewService(st, func() time.Time { return clock }, logger, m)
			path, n, err := svc.ExportToDir(ctx, filepath.Join(dataDir, "backups"))
			if err != nil {
				t.Fatalf("ExportToDir failed: %v", err)
			}
			if n != 2 || filepath.Base(path) != "backup-vistorias-2026-10-19.json" {
				t.Fatalf("unexpected export %s with %d records", path, n)
			}

			if err := st.Replace(ctx, nil); err != nil {
				t.Fatalf("Replace failed: %v", err)
			}
			if _, err := svc.ImportFile(ctx, path, backup.ImportOptions{Strict: true}); err != nil {
				t.Fatalf("ImportFile failed: %v", err)
			}
			if diff := cmp.Diff(want, st.List()); diff != "" {
				t.Fatalf("records changed across backup (-want +got):\n%s", diff)
			}

			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			body := rec.Body.String()
			for _, line := range []string{
				`vistoria_photos_decoded_total{result="accepted"} 2`,
				`vistoria_photos_decoded_total{result="rejected"} 1`,
				`vistoria_records 2`,
			} {
				if !strings.Contains(body, line) {
					t.Errorf("expected metrics to contain %q", line)
				}
			}
		})
	}
}
