package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"DATA_DIR", "BACKEND", "INSPECTOR", "LOG_LEVEL", "METRICS_ADDR", "BACKUP_DIR"} {
		t.Setenv("VISTORIA_"+k, "")
		os.Unsetenv("VISTORIA_" + k)
	}
	return filepath.Join(home, "data")
}

func seed(t *testing.T, backend, dataDir string, ids ...string) {
	t.Helper()
	ctx := context.Background()
	kvs, err := kv.Open(backend, dataDir)
	if err != nil {
		t.Fatalf("kv.Open failed: %v", err)
	}
	defer kvs.Close()

	st := store.Open(ctx, kvs, nil, nil)
	b := inspection.NewBuilder("Rui", func() time.Time {
		return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	})
	for _, id := range ids {
		r, err := b.Build(inspection.Fields{
			EquipmentType: string(inspection.TypeExtinguisher),
			EquipmentID:   id,
			Location:      "Hall",
			Floor:         "0",
			Status:        inspection.StatusOK,
		}, nil, inspection.Checklist{})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if err := st.Append(ctx, r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestListPrintsRecords(t *testing.T) {
	dataDir := isolate(t)
	seed(t, kv.BackendFile, dataDir, "EXT-1", "EXT-2")

	out, err := runCLI(t, "--data-dir", dataDir, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "EXT-1") || !strings.Contains(lines[1], "EXT-2") {
		t.Fatalf("expected records in stored order, got:\n%s", out)
	}
}

func TestExportThenImport(t *testing.T) {
	dataDir := isolate(t)
	seed(t, kv.BackendSQLite, dataDir, "EXT-1")
	backupDir := t.TempDir()

	out, err := runCLI(t, "--data-dir", dataDir, "--backend", "sqlite", "export", "--dir", backupDir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	path := strings.Fields(out)[0]
	if filepath.Dir(path) != backupDir || !strings.HasPrefix(filepath.Base(path), "backup-vistorias-") {
		t.Fatalf("unexpected export path %q", path)
	}

	seed(t, kv.BackendSQLite, dataDir, "EXT-2")
	out, err = runCLI(t, "--data-dir", dataDir, "--backend", "sqlite", "import", path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "restored 1") {
		t.Fatalf("expected restore count, got %q", out)
	}

	out, err = runCLI(t, "--data-dir", dataDir, "--backend", "sqlite", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(out, "EXT-2") || !strings.Contains(out, "EXT-1") {
		t.Fatalf("expected store replaced by backup, got:\n%s", out)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	dataDir := isolate(t)
	seed(t, kv.BackendFile, dataDir, "EXT-1")
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"inspections": null}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := runCLI(t, "--data-dir", dataDir, "import", bad); err == nil {
		t.Fatal("expected error for malformed backup")
	}
	out, err := runCLI(t, "--data-dir", dataDir, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "EXT-1") {
		t.Fatalf("expected store untouched, got:\n%s", out)
	}
}

func TestUnknownCommandAndMissingFile(t *testing.T) {
	dataDir := isolate(t)
	if _, err := runCLI(t, "--data-dir", dataDir, "sync"); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if _, err := runCLI(t, "--data-dir", dataDir, "import"); err == nil {
		t.Fatal("expected error for import without a file")
	}
}

func TestUnknownBackendFails(t *testing.T) {
	dataDir := isolate(t)
	if _, err := runCLI(t, "--data-dir", dataDir, "--backend", "postgres", "list"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
