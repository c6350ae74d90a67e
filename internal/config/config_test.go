package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// isolate points HOME at a temp dir so the developer's own config is not
// picked up, and returns the data dir to use.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"DATA_DIR", "BACKEND", "INSPECTOR", "LOG_LEVEL", "PHOTO_WORKERS"} {
		t.Setenv(envPrefix+"_"+k, "")
		os.Unsetenv(envPrefix + "_" + k)
	}
	return filepath.Join(home, "data")
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Backend != "file" {
		t.Errorf("expected Backend=file, got=%s", cfg.Backend)
	}
	if cfg.Inspector != "Inspetor" {
		t.Errorf("expected Inspector=Inspetor, got=%s", cfg.Inspector)
	}
	if cfg.PhotoWorkers != 4 {
		t.Errorf("expected PhotoWorkers=4, got=%d", cfg.PhotoWorkers)
	}
}

func TestLoadMerge(t *testing.T) {
	dataDir := isolate(t)
	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "config.json"), []byte(`{
		"inspector": "Maria",
		"photo_workers": 2
	}`), 0o644)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.Parse([]string{"--data-dir", dataDir})

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Inspector != "Maria" {
		t.Errorf("expected inspector from workspace, got=%s", cfg.Inspector)
	}
	if cfg.PhotoWorkers != 2 {
		t.Errorf("expected photo_workers 2 from workspace, got=%d", cfg.PhotoWorkers)
	}
	// Backend should still be default since not overridden
	if cfg.Backend != "file" {
		t.Errorf("expected default Backend=file, got=%s", cfg.Backend)
	}
	if cfg.DataDir != dataDir {
		t.Errorf("expected DataDir=%s, got=%s", dataDir, cfg.DataDir)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dataDir := isolate(t)
	home := os.Getenv("HOME")

	globalDir := filepath.Join(home, ".config", "vistoria")
	os.MkdirAll(globalDir, 0o755)
	os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(`{
		"data_dir": "`+dataDir+`",
		"inspector": "Global",
		"backend": "sqlite",
		"log_level": "debug"
	}`), 0o644)

	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "config.json"), []byte(`{"inspector": "Workspace"}`), 0o644)

	t.Setenv("VISTORIA_BACKEND", "badger")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.Parse([]string{"--log-level", "warn"})

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != dataDir {
		t.Errorf("expected data_dir from global, got=%s", cfg.DataDir)
	}
	if cfg.Inspector != "Workspace" {
		t.Errorf("expected workspace to override global, got=%s", cfg.Inspector)
	}
	if cfg.Backend != "badger" {
		t.Errorf("expected env to override config files, got=%s", cfg.Backend)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected flag to override everything, got=%s", cfg.LogLevel)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	isolate(t)
	t.Setenv("VISTORIA_BACKEND", "postgres")

	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dataDir := isolate(t)
	cfg := Defaults()
	cfg.DataDir = dataDir
	cfg.Inspector = "Joao"
	cfg.Backend = "sqlite"

	if err := Save(cfg, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify file exists
	path := filepath.Join(dataDir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if strings.Contains(string(data), "data_dir") {
		t.Errorf("expected workspace file without data_dir, got %s", data)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.Parse([]string{"--data-dir", dataDir})

	loaded, err := Load(fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Inspector != "Joao" {
		t.Errorf("expected Inspector=Joao, got=%s", loaded.Inspector)
	}
	if loaded.Backend != "sqlite" {
		t.Errorf("expected Backend=sqlite, got=%s", loaded.Backend)
	}
}

func TestParseLogLevel(t *testing.T) {
	if l, err := ParseLogLevel("DEBUG"); err != nil || l != slog.LevelDebug {
		t.Errorf("expected debug, got %v (%v)", l, err)
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSetupLoggerJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	cfg := Defaults()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"
	logger := SetupLogger(cfg, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered, got %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("expected JSON warn line, got %s", out)
	}
}

func TestLogPath(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got := cfg.LogPath(); got != filepath.Join("/data", "vistoria.log") {
		t.Errorf("expected /data/vistoria.log, got %s", got)
	}
	if got := cfg.ResolvedBackupDir(); got != filepath.Join("/data", "backups") {
		t.Errorf("expected /data/backups, got %s", got)
	}
}
