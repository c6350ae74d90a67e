package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/backup"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/config"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

const importPurpose = "import-backup"

type backupFile struct {
	path    string
	size    int64
	modTime time.Time
}

type backupListMsg struct {
	files []backupFile
	err   error
}

type exportDoneMsg struct {
	path string
	n    int
	err  error
}

type importDoneMsg struct {
	path string
	n    int
	err  error
}

// BackupPage exports the store to a file and restores it from one.
type BackupPage struct {
	ctx     context.Context
	cfg     *config.Config
	service *backup.Service
	now     func() time.Time

	files   []backupFile
	strict  bool
	busy    bool
	editing bool
	input   textinput.Model

	message       string
	isErr         bool
	width, height int
}

func NewBackupPage(ctx context.Context, cfg *config.Config, svc *backup.Service, now func() time.Time) *BackupPage {
	if now == nil {
		now = time.Now
	}
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Placeholder = "path to backup-vistorias-*.json"
	return &BackupPage{
		ctx:     ctx,
		cfg:     cfg,
		service: svc,
		now:     now,
		input:   ti,
	}
}

func (p *BackupPage) Init() tea.Cmd { return p.listCmd() }

func (p *BackupPage) Activate() tea.Cmd { return p.listCmd() }

func (p *BackupPage) listCmd() tea.Cmd {
	dir := p.cfg.ResolvedBackupDir()
	return func() tea.Msg {
		paths, err := backup.List(dir)
		if err != nil {
			return backupListMsg{err: err}
		}
		files := make([]backupFile, 0, len(paths))
		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			files = append(files, backupFile{path: path, size: info.Size(), modTime: info.ModTime()})
		}
		return backupListMsg{files: files}
	}
}

func (p *BackupPage) exportCmd() tea.Cmd {
	ctx, svc, dir := p.ctx, p.service, p.cfg.ResolvedBackupDir()
	return func() tea.Msg {
		path, n, err := svc.ExportToDir(ctx, dir)
		return exportDoneMsg{path: path, n: n, err: err}
	}
}

func (p *BackupPage) importCmd(path string) tea.Cmd {
	ctx, svc := p.ctx, p.service
	opts := backup.ImportOptions{Strict: p.strict}
	return func() tea.Msg {
		n, err := svc.ImportFile(ctx, path, opts)
		return importDoneMsg{path: path, n: n, err: err}
	}
}

func (p *BackupPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case backupListMsg:
		if msg.err != nil {
			p.setError("Could not list backups: %v", msg.err)
			return p, nil
		}
		p.files = msg.files
		return p, nil

	case exportDoneMsg:
		p.busy = false
		if msg.err != nil {
			p.setError("Export failed: %v", msg.err)
			return p, nil
		}
		p.setInfo("Exported %d inspection(s) to %s", msg.n, msg.path)
		return p, p.listCmd()

	case importDoneMsg:
		p.busy = false
		if msg.err != nil {
			p.setError("Import failed, records unchanged: %v", msg.err)
			return p, nil
		}
		p.setInfo("Restored %d inspection(s) from %s", msg.n, filepath.Base(msg.path))
		n := msg.n
		return p, func() tea.Msg { return app.StoreReplacedMsg{Count: n} }

	case app.PickerSelectedMsg:
		if msg.Purpose != importPurpose {
			return p, nil
		}
		return p, p.startImport(msg.Value)

	case tea.KeyMsg:
		if p.editing {
			switch msg.String() {
			case "enter":
				path := strings.TrimSpace(p.input.Value())
				p.editing = false
				p.input.Blur()
				p.input.SetValue("")
				if path == "" {
					return p, nil
				}
				return p, p.startImport(expandHome(path))
			case "esc":
				p.editing = false
				p.input.Blur()
				return p, nil
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}

		switch msg.String() {
		case "e":
			if p.busy {
				return p, nil
			}
			p.busy = true
			p.setInfo("Exporting...")
			return p, p.exportCmd()
		case "i":
			if len(p.files) == 0 {
				p.setInfo("No backups in %s. Press p to enter a path.", p.cfg.ResolvedBackupDir())
				return p, nil
			}
			items := make([]app.PickerItem, len(p.files))
			for i, f := range p.files {
				items[i] = app.PickerItem{
					Label: filepath.Base(f.path),
					Value: f.path,
					Desc:  humanize.Bytes(uint64(f.size)),
				}
			}
			return p, func() tea.Msg {
				return app.OpenPickerMsg{Title: "Restore backup", Purpose: importPurpose, Items: items}
			}
		case "p":
			p.editing = true
			return p, p.input.Focus()
		case "s":
			p.strict = !p.strict
			return p, nil
		}
	}
	return p, nil
}

func (p *BackupPage) startImport(path string) tea.Cmd {
	if p.busy {
		return nil
	}
	p.busy = true
	p.setInfo("Importing %s...", filepath.Base(path))
	return p.importCmd(path)
}

func (p *BackupPage) setInfo(format string, args ...any) {
	p.message = fmt.Sprintf(format, args...)
	p.isErr = false
}

func (p *BackupPage) setError(format string, args ...any) {
	p.message = fmt.Sprintf(format, args...)
	p.isErr = true
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func (p *BackupPage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("Backup"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-14s %s\n", "Directory", p.cfg.ResolvedBackupDir()))
	b.WriteString(fmt.Sprintf("  %-14s %s\n", "Next file", backup.FileName(p.now())))
	mode := "lenient"
	if p.strict {
		mode = "strict (every record validated)"
	}
	b.WriteString(fmt.Sprintf("  %-14s %s\n\n", "Import mode", mode))

	var list strings.Builder
	if len(p.files) == 0 {
		list.WriteString(ui.DimStyle.Render("No backups yet. Press e to export."))
	}
	now := p.now()
	for _, f := range p.files {
		list.WriteString(fmt.Sprintf("%-32s %8s  %s\n",
			filepath.Base(f.path),
			humanize.Bytes(uint64(f.size)),
			ui.DimStyle.Render(humanize.RelTime(f.modTime, now, "ago", "from now")),
		))
	}
	b.WriteString(ui.Panel("Backups", list.String(), max(p.width, 40), 0, false))

	if p.editing {
		b.WriteString("\n\n  Restore from:\n  " + p.input.View())
	}
	if p.message != "" {
		style := ui.OKTextStyle
		if p.isErr {
			style = ui.ErrorTextStyle
		}
		b.WriteString("\n\n  " + style.Render(p.message))
	}
	b.WriteString("\n\n  " + ui.DimStyle.Render("Restoring replaces every stored inspection."))
	return b.String()
}

func (p *BackupPage) Name() string { return "Backup" }

func (p *BackupPage) ShortHelp() []key.Binding {
	if p.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "restore")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "restore")),
		key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "restore from path")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "strict mode")),
	}
}

func (p *BackupPage) InputCaptured() bool { return p.editing }

func (p *BackupPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
