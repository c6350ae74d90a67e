package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/backup"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/config"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/metrics"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/pages"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/photo"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
)

const usage = `Usage: vistoria [flags] [command]

Commands:
  (none)          start the terminal UI
  export          write a backup file and print its path
  import FILE     replace every record with the contents of FILE
  list            print one line per record

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("vistoria", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	dir := fs.String("dir", "", "export: directory for the backup file (default: backup_dir)")
	strict := fs.Bool("strict", false, "import: reject the backup if any record is malformed")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return runTUI(ctx, cfg)
	}

	logger := config.SetupLogger(cfg, stderr)
	switch rest[0] {
	case "export":
		return withCore(ctx, cfg, logger, nil, func(c *core) error {
			target := *dir
			if target == "" {
				target = cfg.ResolvedBackupDir()
			}
			path, n, err := c.backup.ExportToDir(ctx, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s (%d inspections)\n", path, n)
			return nil
		})
	case "import":
		if len(rest) < 2 {
			return errors.New("import: missing backup file")
		}
		return withCore(ctx, cfg, logger, nil, func(c *core) error {
			n, err := c.backup.ImportFile(ctx, rest[1], backup.ImportOptions{Strict: *strict})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "restored %d inspections\n", n)
			return nil
		})
	case "list":
		return withCore(ctx, cfg, logger, nil, func(c *core) error {
			for _, r := range c.store.List() {
				fmt.Fprintln(stdout, r.Summary())
			}
			return nil
		})
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

// core is the storage side shared by the TUI and the subcommands.
type core struct {
	kv     kv.Store
	store  *store.Store
	backup *backup.Service
}

func openCore(ctx context.Context, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (*core, error) {
	kvs, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s storage in %s: %w", cfg.Backend, cfg.DataDir, err)
	}
	st := store.Open(ctx, kvs, logger, m)
	return &core{
		kv:     kvs,
		store:  st,
		backup: backup.NewService(st, time.Now, logger, m),
	}, nil
}

func withCore(ctx context.Context, cfg config.Config, logger *slog.Logger, m *metrics.Metrics, fn func(*core) error) error {
	c, err := openCore(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer c.kv.Close()
	return fn(c)
}

func runTUI(ctx context.Context, cfg config.Config) error {
	logFile, err := config.OpenLogFile(cfg)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := config.SetupLogger(cfg, logFile)

	m := metrics.New()
	c, err := openCore(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer c.kv.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv, err := m.Listen(cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return srv.Run(gctx) })
	}

	builder := inspection.NewBuilder(cfg.Inspector, nil)
	decoder := photo.NewDecoder(photo.Options{
		Workers:  cfg.PhotoWorkers,
		MaxBytes: cfg.MaxPhotoBytes,
		Logger:   logger,
		Recorder: m,
	})
	previews := photo.NewPreviewCache(256, 10*time.Minute)

	pageMap := map[app.PageID]app.Page{
		app.HomePage:       pages.NewHomePage(c.store, nil),
		app.InspectionPage: pages.NewInspectionPage(gctx, &cfg, builder, c.store, decoder),
		app.RecordsPage:    pages.NewRecordsPage(c.store, previews, nil),
		app.BackupPage:     pages.NewBackupPage(gctx, &cfg, c.backup, nil),
		app.SettingsPage:   pages.NewSettingsPage(&cfg),
	}
	model := app.New(pageMap, &cfg, c.store, m)

	logger.Info("starting",
		slog.String("backend", cfg.Backend),
		slog.String("data_dir", cfg.DataDir),
		slog.Int("records", c.store.Len()))

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
