package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wrap"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/photo"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

var recordColumns = []table.Column{
	{Title: "Date", Width: 16},
	{Title: "Type", Width: 12},
	{Title: "Equipment", Width: 10},
	{Title: "Location", Width: 20},
	{Title: "Floor", Width: 6},
	{Title: "Status", Width: 10},
	{Title: "Next", Width: 12},
}

// RecordsPage lists stored inspections and shows one in detail.
type RecordsPage struct {
	store    *store.Store
	previews *photo.PreviewCache
	now      func() time.Time

	table   table.Model
	filter  store.Filter
	records []inspection.Record

	detail   *inspection.Record
	viewport viewport.Model

	width, height int
}

func NewRecordsPage(st *store.Store, previews *photo.PreviewCache, now func() time.Time) *RecordsPage {
	if now == nil {
		now = time.Now
	}
	t := table.New(
		table.WithColumns(recordColumns),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Selected = ui.FocusedRowStyle
	t.SetStyles(s)

	p := &RecordsPage{
		store:    st,
		previews: previews,
		now:      now,
		table:    t,
		viewport: viewport.New(0, 0),
	}
	p.refresh()
	return p
}

func (p *RecordsPage) Init() tea.Cmd { return nil }

func (p *RecordsPage) Activate() tea.Cmd {
	p.detail = nil
	p.refresh()
	return nil
}

func (p *RecordsPage) refresh() {
	p.records = p.store.Query(p.filter)
	now := p.now()
	rows := make([]table.Row, len(p.records))
	for i, r := range p.records {
		next := r.NextInspectionDate.Local().Format("2006-01-02")
		if r.Overdue(now) {
			next += " !"
		}
		rows[i] = table.Row{
			r.Date.Local().Format("2006-01-02 15:04"),
			r.EquipmentType.Label(),
			r.EquipmentID,
			r.Location,
			r.Floor,
			r.Status,
			next,
		}
	}
	p.table.SetRows(rows)
	if c := p.table.Cursor(); c >= len(rows) {
		p.table.SetCursor(max(0, len(rows)-1))
	}
}

func (p *RecordsPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RecordSavedMsg:
		p.refresh()
		return p, nil
	case app.StoreReplacedMsg:
		p.detail = nil
		p.previews.Purge()
		p.refresh()
		return p, nil
	case tea.KeyMsg:
		if p.detail != nil {
			if msg.String() == "esc" || msg.String() == "backspace" {
				p.detail = nil
				return p, nil
			}
			var cmd tea.Cmd
			p.viewport, cmd = p.viewport.Update(msg)
			return p, cmd
		}

		switch msg.String() {
		case "t":
			p.filter.EquipmentType = nextType(p.filter.EquipmentType)
			p.refresh()
			return p, nil
		case "s":
			p.filter.Status = nextStatus(p.filter.Status)
			p.refresh()
			return p, nil
		case "c":
			p.filter = store.Filter{}
			p.refresh()
			return p, nil
		case "enter":
			p.open(p.table.Cursor())
			return p, nil
		}
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return p, cmd
	}
	return p, nil
}

// nextType cycles all → extinguisher → hydrant → all.
func nextType(t inspection.EquipmentType) inspection.EquipmentType {
	if t == "" {
		return inspection.EquipmentTypes[0]
	}
	for i, et := range inspection.EquipmentTypes {
		if et == t && i+1 < len(inspection.EquipmentTypes) {
			return inspection.EquipmentTypes[i+1]
		}
	}
	return ""
}

func nextStatus(s string) string {
	if s == "" {
		return inspection.StatusOptions[0]
	}
	for i, st := range inspection.StatusOptions {
		if st == s && i+1 < len(inspection.StatusOptions) {
			return inspection.StatusOptions[i+1]
		}
	}
	return ""
}

func (p *RecordsPage) open(i int) {
	if i < 0 || i >= len(p.records) {
		return
	}
	r := p.records[i]
	p.detail = &r
	p.viewport.SetContent(wrap.String(p.renderDetail(r), max(p.viewport.Width, 20)))
	p.viewport.GotoTop()
}

func (p *RecordsPage) renderDetail(r inspection.Record) string {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = ui.DimStyle.Render("-")
		}
		b.WriteString(fmt.Sprintf("%-16s %s\n", label, value))
	}

	b.WriteString(ui.BoldStyle.Render(r.EquipmentType.Label()+" "+r.EquipmentID) + "  " + ui.StatusBadge(r.Status) + "\n\n")
	row("Id", r.ID)
	row("Date", r.Date.Local().Format("2006-01-02 15:04"))
	row("Location", r.Location)
	row("Floor", r.Floor)
	row("Inspector", r.Inspector)
	next := r.NextInspectionDate.Local().Format("2006-01-02")
	switch now := p.now(); {
	case r.Overdue(now):
		next += " " + ui.ErrorBadge("OVERDUE")
	case r.DueWithin(now, store.DueSoonWindow):
		next += " " + ui.Badge("DUE SOON", ui.Accent)
	}
	row("Next inspection", next)
	for _, d := range r.Details() {
		row(d[0], d[1])
	}

	b.WriteString("\n" + ui.BoldStyle.Render(fmt.Sprintf("Checklist %d/%d", r.Checklist.Passed(), len(inspection.ChecklistItems))) + "\n")
	for _, c := range inspection.ChecklistItems {
		b.WriteString(ui.Check(r.Checklist.Get(c.Key)) + " " + c.Label + "\n")
	}

	b.WriteString("\n" + ui.BoldStyle.Render(fmt.Sprintf("Photos (%d)", len(r.Photos))) + "\n")
	for i, ph := range r.Photos {
		pv := p.previews.Get(r.ID, i, ph)
		desc := humanize.Bytes(uint64(pv.Size))
		if pv.Format != "" {
			desc = fmt.Sprintf("%s %dx%d, %s", pv.Format, pv.Width, pv.Height, desc)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", pv.Name, ui.DimStyle.Render(desc)))
	}
	return b.String()
}

func (p *RecordsPage) View() string {
	if p.detail != nil {
		return ui.Panel("Inspection", p.viewport.View(), p.width, 0, true)
	}

	var b strings.Builder
	b.WriteString(ui.Title("Records"))
	b.WriteString("  " + ui.DimStyle.Render(p.filterLabel()) + "\n\n")
	if len(p.records) == 0 {
		if p.filter.IsZero() {
			b.WriteString(ui.DimStyle.Render("No inspections recorded yet."))
		} else {
			b.WriteString(ui.DimStyle.Render("No inspections match the filter."))
		}
		return b.String()
	}
	b.WriteString(p.table.View())
	return b.String()
}

func (p *RecordsPage) filterLabel() string {
	typ, status := "all types", "any status"
	if p.filter.EquipmentType != "" {
		typ = p.filter.EquipmentType.Label()
	}
	if p.filter.Status != "" {
		status = p.filter.Status
	}
	return fmt.Sprintf("%d shown, %s, %s", len(p.records), typ, status)
}

func (p *RecordsPage) Name() string { return "Records" }

func (p *RecordsPage) ShortHelp() []key.Binding {
	if p.detail != nil {
		return []key.Binding{
			key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "scroll")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type filter")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filter")),
	}
}

func (p *RecordsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.table.SetWidth(max(w-2, 0))
	p.table.SetHeight(max(h-4, 3))
	p.viewport.Width = max(w-4, 0)
	p.viewport.Height = max(h-3, 1)
}
