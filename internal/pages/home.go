package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

const recentCount = 5

// HomePage is the dashboard.
type HomePage struct {
	store         *store.Store
	now           func() time.Time
	width, height int
	message       string
}

func NewHomePage(st *store.Store, now func() time.Time) *HomePage {
	if now == nil {
		now = time.Now
	}
	return &HomePage{store: st, now: now}
}

func (p *HomePage) Init() tea.Cmd { return nil }

func (p *HomePage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "n", "enter":
			return p, app.Navigate(app.InspectionPage)
		case "r":
			return p, app.Navigate(app.RecordsPage)
		case "b":
			return p, app.Navigate(app.BackupPage)
		}
	case app.RecordSavedMsg:
		p.message = fmt.Sprintf("Inspection %s saved", msg.Record.ID)
	case app.StoreReplacedMsg:
		p.message = fmt.Sprintf("%d records restored from backup", msg.Count)
	}
	return p, nil
}

func (p *HomePage) View() string {
	now := p.now()
	st := p.store.Stats(now, store.DueSoonWindow)

	cardWidth := 16
	if p.width > 0 {
		cardWidth = max(12, min(20, (p.width-8)/4))
	}
	counts := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.Card("Inspections", st.Total, cardWidth),
		ui.Card("Extinguishers", st.ByType[inspection.TypeExtinguisher], cardWidth),
		ui.Card("Hydrants", st.ByType[inspection.TypeHydrant], cardWidth),
		ui.Card("Due in 7 days", st.DueSoon, cardWidth),
	)
	status := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.Card("OK", st.ByStatus[inspection.StatusOK], cardWidth),
		ui.Card("Attention", st.ByStatus[inspection.StatusAttention], cardWidth),
		ui.Card("Failed", st.ByStatus[inspection.StatusFailed], cardWidth),
		ui.Card("Overdue", st.Overdue, cardWidth),
	)

	var b strings.Builder
	b.WriteString(ui.Title("Dashboard"))
	b.WriteString("\n")
	b.WriteString(counts + "\n" + status + "\n\n")

	recent := p.store.Query(store.Filter{})
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	var list strings.Builder
	if len(recent) == 0 {
		list.WriteString(ui.DimStyle.Render("No inspections yet. Press n to start one."))
	}
	for _, r := range recent {
		list.WriteString(fmt.Sprintf("%s %-12s %-10s %s  %s\n",
			ui.StatusBadge(r.Status),
			r.EquipmentType.Label(),
			r.EquipmentID,
			r.Location,
			ui.DimStyle.Render(humanize.RelTime(r.Date, now, "ago", "from now")),
		))
	}
	b.WriteString(ui.Panel("Recent inspections", list.String(), max(p.width, 40), 0, false))

	if p.message != "" {
		b.WriteString("\n\n  " + p.message)
	}
	return b.String()
}

func (p *HomePage) Name() string { return "Dashboard" }

func (p *HomePage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new inspection")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "records")),
		key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "backup")),
	}
}

func (p *HomePage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
