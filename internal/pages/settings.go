package pages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/config"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

type settingField struct {
	label   string
	key     string
	restart bool // takes effect on next start
}

var settingFields = []settingField{
	{"Inspector", "inspector", false},
	{"Storage backend", "backend", true},
	{"Log level", "log_level", true},
	{"Photo workers", "photo_workers", true},
	{"Max photo size", "max_photo_bytes", true},
	{"Backup directory", "backup_dir", false},
	{"Metrics address", "metrics_addr", true},
}

type SettingsPage struct {
	cfg           *config.Config
	cursor        int
	editing       bool
	input         textinput.Model
	width, height int
	message       string
	isErr         bool
}

func NewSettingsPage(cfg *config.Config) *SettingsPage {
	ti := textinput.New()
	ti.CharLimit = 256
	return &SettingsPage{
		cfg:   cfg,
		input: ti,
	}
}

func (p *SettingsPage) Init() tea.Cmd { return nil }

func (p *SettingsPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.editing {
			switch msg.String() {
			case "enter":
				p.editing = false
				p.input.Blur()
				if p.applyValue(p.input.Value()) {
					return p, func() tea.Msg { return app.ConfigChangedMsg{} }
				}
				return p, nil
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
		case "down":
			if p.cursor < len(settingFields)-1 {
				p.cursor++
			}
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "enter", "e":
			p.editing = true
			p.input.SetValue(p.getValue(p.cursor))
			return p, p.input.Focus()
		case "s":
			if err := config.Save(*p.cfg, false); err != nil {
				p.message = fmt.Sprintf("Error saving: %v", err)
				p.isErr = true
			} else {
				p.message = "Settings saved to " + p.cfg.DataDir
				p.isErr = false
			}
		}
	}
	return p, nil
}

func (p *SettingsPage) View() string {
	var inner strings.Builder

	for i, f := range settingFields {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}

		val := p.getValue(i)
		if val == "" {
			val = ui.DimStyle.Render("(not set)")
		}
		if f.restart {
			val += ui.DimStyle.Render("  restart")
		}

		inner.WriteString(fmt.Sprintf("%s%-20s %s\n", cursor, f.label, val))
	}

	if p.editing {
		inner.WriteString("\n")
		inner.WriteString(fmt.Sprintf("  Edit %s:\n", settingFields[p.cursor].label))
		inner.WriteString("  " + p.input.View())
		inner.WriteString("\n")
	}

	if p.message != "" {
		style := ui.DimStyle
		if p.isErr {
			style = ui.ErrorTextStyle
		}
		inner.WriteString("\n  " + style.Render(p.message))
	}

	return ui.Panel("Settings", inner.String(), p.width, 0, false)
}

func (p *SettingsPage) Name() string { return "Settings" }

func (p *SettingsPage) ShortHelp() []key.Binding {
	if p.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to disk")),
	}
}

func (p *SettingsPage) InputCaptured() bool {
	return p.editing
}

func (p *SettingsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *SettingsPage) getValue(idx int) string {
	switch settingFields[idx].key {
	case "inspector":
		return p.cfg.Inspector
	case "backend":
		return p.cfg.Backend
	case "log_level":
		return p.cfg.LogLevel
	case "photo_workers":
		return strconv.Itoa(p.cfg.PhotoWorkers)
	case "max_photo_bytes":
		if p.cfg.MaxPhotoBytes == 0 {
			return "unlimited"
		}
		return humanize.IBytes(uint64(p.cfg.MaxPhotoBytes))
	case "backup_dir":
		if p.cfg.BackupDir == "" {
			return p.cfg.ResolvedBackupDir()
		}
		return p.cfg.BackupDir
	case "metrics_addr":
		return p.cfg.MetricsAddr
	}
	return ""
}

// applyValue updates the field under the cursor. The change is kept only if
// the resulting config is valid.
func (p *SettingsPage) applyValue(val string) bool {
	val = strings.TrimSpace(val)
	f := settingFields[p.cursor]
	next := *p.cfg

	switch f.key {
	case "inspector":
		next.Inspector = val
	case "backend":
		next.Backend = val
	case "log_level":
		next.LogLevel = val
	case "photo_workers":
		n, err := strconv.Atoi(val)
		if err != nil {
			p.message = fmt.Sprintf("%s: %q is not a number", f.label, val)
			p.isErr = true
			return false
		}
		next.PhotoWorkers = n
	case "max_photo_bytes":
		if val == "unlimited" || val == "0" {
			next.MaxPhotoBytes = 0
			break
		}
		n, err := humanize.ParseBytes(val)
		if err != nil {
			p.message = fmt.Sprintf("%s: %v", f.label, err)
			p.isErr = true
			return false
		}
		next.MaxPhotoBytes = int64(n)
	case "backup_dir":
		next.BackupDir = val
	case "metrics_addr":
		next.MetricsAddr = val
	}

	if err := next.Validate(); err != nil {
		p.message = err.Error()
		p.isErr = true
		return false
	}
	*p.cfg = next
	p.message = fmt.Sprintf("%s updated", f.label)
	p.isErr = false
	return true
}
