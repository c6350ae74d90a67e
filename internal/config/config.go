package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
)

const (
	DefaultBackend       = kv.BackendFile
	DefaultInspector     = "Inspetor"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultPhotoWorkers  = 4
	DefaultMaxPhotoBytes = 10 << 20

	envPrefix  = "VISTORIA"
	configName = "config.json"
)

// Config holds all vistoria configuration.
type Config struct {
	DataDir       string `json:"data_dir,omitempty" mapstructure:"data_dir"`
	Backend       string `json:"backend,omitempty" mapstructure:"backend"`
	Inspector     string `json:"inspector,omitempty" mapstructure:"inspector"`
	LogLevel      string `json:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat     string `json:"log_format,omitempty" mapstructure:"log_format"`
	LogFile       string `json:"log_file,omitempty" mapstructure:"log_file"`
	PhotoWorkers  int    `json:"photo_workers,omitempty" mapstructure:"photo_workers"`
	MaxPhotoBytes int64  `json:"max_photo_bytes,omitempty" mapstructure:"max_photo_bytes"`
	MetricsAddr   string `json:"metrics_addr,omitempty" mapstructure:"metrics_addr"`
	BackupDir     string `json:"backup_dir,omitempty" mapstructure:"backup_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		DataDir:       defaultDataDir(),
		Backend:       DefaultBackend,
		Inspector:     DefaultInspector,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		PhotoWorkers:  DefaultPhotoWorkers,
		MaxPhotoBytes: DefaultMaxPhotoBytes,
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "vistoria")
	}
	return ".vistoria"
}

// GlobalDir is ~/.config/vistoria.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vistoria"), nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"data-dir":     "data_dir",
	"backend":      "backend",
	"inspector":    "inspector",
	"log-level":    "log_level",
	"metrics-addr": "metrics_addr",
}

// RegisterFlags adds the global flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("data-dir", "", "directory holding records, config and logs")
	fs.String("backend", "", "storage backend: "+strings.Join(kv.Backends, ", "))
	fs.String("inspector", "", "inspector name stamped on new records")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
}

// Load merges configuration.
// Order: defaults → global (~/.config/vistoria/config.json) → workspace
// (<data_dir>/config.json) → VISTORIA_* environment → flags.
// fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("inspector", d.Inspector)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("photo_workers", d.PhotoWorkers)
	v.SetDefault("max_photo_bytes", d.MaxPhotoBytes)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("backup_dir", d.BackupDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if dir, err := GlobalDir(); err == nil {
		if err := mergeFromFile(v, filepath.Join(dir, configName)); err != nil {
			return Config{}, err
		}
	}
	// data_dir is resolved before the workspace file is read, so a workspace
	// file cannot relocate itself.
	dataDir := v.GetString("data_dir")
	if err := mergeFromFile(v, filepath.Join(dataDir, configName)); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataDir = dataDir
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFromFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(kv.Backends, c.Backend) {
		errs = append(errs, fmt.Errorf("backend %q: expected one of %s", c.Backend, strings.Join(kv.Backends, ", ")))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q: expected text or json", c.LogFormat))
	}
	if c.PhotoWorkers < 1 {
		errs = append(errs, fmt.Errorf("photo_workers must be at least 1, got %d", c.PhotoWorkers))
	}
	if c.MaxPhotoBytes < 0 {
		errs = append(errs, fmt.Errorf("max_photo_bytes must not be negative, got %d", c.MaxPhotoBytes))
	}
	return errors.Join(errs...)
}

// ResolvedBackupDir is where exports go when no directory is given.
func (c Config) ResolvedBackupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(c.DataDir, "backups")
}

// Save writes the config to <data_dir>/config.json by default, or to the
// global config if global is true.
func Save(cfg Config, global bool) error {
	var dir string
	if global {
		d, err := GlobalDir()
		if err != nil {
			return err
		}
		dir = d
	} else {
		dir = cfg.DataDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// The workspace file cannot move the workspace.
	out := cfg
	if !global {
		out.DataDir = ""
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return kv.WriteFileAtomic(filepath.Join(dir, configName), data)
}
