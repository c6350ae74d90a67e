package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/config"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/photo"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

type rowKind int

const (
	rowType rowKind = iota
	rowText
	rowStatus
	rowCheck
	rowPhotos
	rowStaged
)

type formRow struct {
	kind   rowKind
	key    string
	label  string
	staged int
}

type fieldDef struct {
	key      string
	label    string
	required bool
}

var (
	commonFields = []fieldDef{
		{"equipmentId", "Equipment ID", true},
		{"location", "Location", true},
		{"floor", "Floor", true},
	}
	extinguisherFields = []fieldDef{
		{"extinguisherType", "Extinguisher type", false},
		{"extinguisherCapacity", "Capacity", false},
		{"extinguisherDueDate", "Due date", false},
	}
	hydrantFields = []fieldDef{
		{"hydrantType", "Hydrant type", false},
		{"hydrantPressure", "Pressure", false},
	}
)

const photosKey = "photos"

// photoDecodedMsg carries one finished decode back to the form.
type photoDecodedMsg struct {
	ticket photo.Ticket
	result photo.Result
}

type saveResultMsg struct {
	record inspection.Record
	err    error
}

// InspectionPage is the new-inspection form.
type InspectionPage struct {
	ctx     context.Context
	cfg     *config.Config
	builder *inspection.Builder
	store   *store.Store
	decoder *photo.Decoder
	staging *photo.Staging

	equipType inspection.EquipmentType
	status    int
	checklist inspection.Checklist
	inputs    map[string]textinput.Model
	cursor    int

	pending int
	skipped int
	saving  bool

	message       string
	isErr         bool
	width, height int
}

func NewInspectionPage(ctx context.Context, cfg *config.Config, b *inspection.Builder, st *store.Store, dec *photo.Decoder) *InspectionPage {
	p := &InspectionPage{
		ctx:     ctx,
		cfg:     cfg,
		builder: b,
		store:   st,
		decoder: dec,
		staging: photo.NewStaging(),
		inputs:  make(map[string]textinput.Model),
	}
	for _, group := range [][]fieldDef{commonFields, extinguisherFields, hydrantFields} {
		for _, f := range group {
			ti := textinput.New()
			ti.CharLimit = 128
			p.inputs[f.key] = ti
		}
	}
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Placeholder = "paths or globs, e.g. ~/fotos/*.jpg"
	p.inputs[photosKey] = ti

	p.reset()
	return p
}

func (p *InspectionPage) Init() tea.Cmd { return nil }

// Activate starts a fresh inspection.
func (p *InspectionPage) Activate() tea.Cmd {
	p.reset()
	return p.focusCurrent()
}

func (p *InspectionPage) reset() {
	p.equipType = inspection.TypeExtinguisher
	p.status = 0
	p.checklist = inspection.Checklist{}
	for k, ti := range p.inputs {
		ti.SetValue("")
		ti.Blur()
		p.inputs[k] = ti
	}
	p.staging.Reset()
	p.pending = 0
	p.skipped = 0
	p.saving = false
	p.cursor = 0
	p.message = ""
	p.isErr = false
}

func (p *InspectionPage) rows() []formRow {
	rows := []formRow{{kind: rowType, label: "Equipment"}}
	for _, f := range commonFields {
		rows = append(rows, formRow{kind: rowText, key: f.key, label: f.label})
	}
	rows = append(rows, formRow{kind: rowStatus, label: "Status"})

	variant := extinguisherFields
	if p.equipType == inspection.TypeHydrant {
		variant = hydrantFields
	}
	for _, f := range variant {
		rows = append(rows, formRow{kind: rowText, key: f.key, label: f.label})
	}
	for _, c := range inspection.ChecklistItems {
		rows = append(rows, formRow{kind: rowCheck, key: c.Key, label: c.Label})
	}
	rows = append(rows, formRow{kind: rowPhotos, key: photosKey, label: "Add photos"})
	for i := range p.staging.Items() {
		rows = append(rows, formRow{kind: rowStaged, staged: i})
	}
	return rows
}

func (p *InspectionPage) current() formRow {
	rows := p.rows()
	if p.cursor >= len(rows) {
		p.cursor = len(rows) - 1
	}
	return rows[p.cursor]
}

func (p *InspectionPage) InputCaptured() bool {
	k := p.current().kind
	return k == rowText || k == rowPhotos
}

func (p *InspectionPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p, p.handleKey(msg)

	case photoDecodedMsg:
		if msg.ticket.Gen != p.staging.Generation() {
			return p, nil
		}
		p.pending--
		if !msg.result.Accepted() {
			p.skipped++
			return p, nil
		}
		p.staging.Put(msg.ticket, msg.result.Photo)
		return p, nil

	case saveResultMsg:
		p.saving = false
		if msg.err != nil {
			p.message = fmt.Sprintf("Could not save: %v", msg.err)
			p.isErr = true
			return p, nil
		}
		p.reset()
		saved := msg.record
		return p, tea.Batch(
			func() tea.Msg { return app.RecordSavedMsg{Record: saved} },
			app.Navigate(app.HomePage),
		)

	case app.ConfigChangedMsg:
		p.builder.SetInspector(p.cfg.Inspector)
	}
	return p, nil
}

func (p *InspectionPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "shift+tab":
		return p.move(-1)
	case "down", "tab":
		return p.move(1)
	case "ctrl+s":
		return p.save()
	case "esc":
		p.reset()
		return app.Navigate(app.HomePage)
	}

	row := p.current()
	switch row.kind {
	case rowType:
		if msg.String() == "enter" || msg.String() == " " {
			if p.equipType == inspection.TypeExtinguisher {
				p.equipType = inspection.TypeHydrant
			} else {
				p.equipType = inspection.TypeExtinguisher
			}
		}
	case rowStatus:
		if msg.String() == "enter" || msg.String() == " " {
			p.status = (p.status + 1) % len(inspection.StatusOptions)
		}
	case rowCheck:
		if msg.String() == "enter" || msg.String() == " " {
			p.checklist.Set(row.key, !p.checklist.Get(row.key))
		}
	case rowPhotos:
		if msg.String() == "enter" {
			return p.attach()
		}
		return p.updateInput(row.key, msg)
	case rowText:
		if msg.String() == "enter" {
			return p.move(1)
		}
		return p.updateInput(row.key, msg)
	case rowStaged:
		switch msg.String() {
		case "x", "delete", "backspace":
			items := p.staging.Items()
			if row.staged < len(items) {
				p.staging.Remove(items[row.staged].ID)
				p.message = "Removed " + items[row.staged].Photo.Name
				p.isErr = false
			}
			p.cursor = min(p.cursor, len(p.rows())-1)
		}
	}
	return nil
}

func (p *InspectionPage) updateInput(k string, msg tea.KeyMsg) tea.Cmd {
	ti := p.inputs[k]
	var focus, cmd tea.Cmd
	if !ti.Focused() {
		// Returning from another page leaves the draft unfocused.
		focus = ti.Focus()
	}
	ti, cmd = ti.Update(msg)
	p.inputs[k] = ti
	return tea.Batch(focus, cmd)
}

func (p *InspectionPage) move(delta int) tea.Cmd {
	if row := p.current(); row.kind == rowText || row.kind == rowPhotos {
		ti := p.inputs[row.key]
		ti.Blur()
		p.inputs[row.key] = ti
	}
	n := len(p.rows())
	p.cursor = max(0, min(n-1, p.cursor+delta))
	return p.focusCurrent()
}

func (p *InspectionPage) focusCurrent() tea.Cmd {
	row := p.current()
	if row.kind != rowText && row.kind != rowPhotos {
		return nil
	}
	ti := p.inputs[row.key]
	cmd := ti.Focus()
	p.inputs[row.key] = ti
	return cmd
}

// attach resolves the photo input and starts one decode per file. A new
// selection replaces the staged set.
func (p *InspectionPage) attach() tea.Cmd {
	ti := p.inputs[photosKey]
	patterns := photo.SplitPatterns(ti.Value())
	if len(patterns) == 0 {
		return nil
	}
	files, errs := photo.OpenPaths(patterns...)

	tickets := p.staging.Begin(len(files))
	p.pending = len(files)
	p.skipped = len(errs)
	p.isErr = false
	p.message = fmt.Sprintf("Reading %d file(s)", len(files))
	if len(errs) > 0 {
		p.message += fmt.Sprintf(", %s", errs[0])
	}

	ti.SetValue("")
	p.inputs[photosKey] = ti

	cmds := make([]tea.Cmd, 0, len(files))
	for i, f := range files {
		cmds = append(cmds, p.decodeCmd(tickets[i], i, f))
	}
	return tea.Batch(cmds...)
}

func (p *InspectionPage) decodeCmd(t photo.Ticket, i int, f photo.File) tea.Cmd {
	ctx, dec := p.ctx, p.decoder
	return func() tea.Msg {
		return photoDecodedMsg{ticket: t, result: dec.DecodeOne(ctx, i, f)}
	}
}

func (p *InspectionPage) fields() inspection.Fields {
	v := func(k string) string { return strings.TrimSpace(p.inputs[k].Value()) }
	return inspection.Fields{
		EquipmentType:        string(p.equipType),
		EquipmentID:          v("equipmentId"),
		Location:             v("location"),
		Floor:                v("floor"),
		Status:               inspection.StatusOptions[p.status],
		ExtinguisherType:     v("extinguisherType"),
		ExtinguisherCapacity: v("extinguisherCapacity"),
		ExtinguisherDueDate:  v("extinguisherDueDate"),
		HydrantType:          v("hydrantType"),
		HydrantPressure:      v("hydrantPressure"),
	}
}

func (p *InspectionPage) missing() []string {
	var out []string
	for _, f := range commonFields {
		if f.required && strings.TrimSpace(p.inputs[f.key].Value()) == "" {
			out = append(out, f.label)
		}
	}
	return out
}

func (p *InspectionPage) save() tea.Cmd {
	if p.saving {
		return nil
	}
	if m := p.missing(); len(m) > 0 {
		p.message = "Required: " + strings.Join(m, ", ")
		p.isErr = true
		return nil
	}
	if p.pending > 0 {
		p.message = fmt.Sprintf("Still reading %d photo(s)", p.pending)
		p.isErr = true
		return nil
	}

	r, err := p.builder.Build(p.fields(), p.staging.Photos(), p.checklist)
	if err != nil {
		p.message = err.Error()
		p.isErr = true
		return nil
	}
	p.saving = true
	ctx, st := p.ctx, p.store
	return func() tea.Msg {
		return saveResultMsg{record: r, err: st.Append(ctx, r)}
	}
}

func (p *InspectionPage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("New inspection"))
	b.WriteString("\n")

	items := p.staging.Items()
	for i, row := range p.rows() {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.FocusedRowStyle.Render("> ")
		}
		switch row.kind {
		case rowType:
			b.WriteString(fmt.Sprintf("%s%-18s %s\n", cursor, row.label, p.typeToggle()))
		case rowText:
			b.WriteString(fmt.Sprintf("%s%-18s %s\n", cursor, row.label, p.inputs[row.key].View()))
		case rowStatus:
			b.WriteString(fmt.Sprintf("%s%-18s %s\n", cursor, row.label, ui.StatusBadge(inspection.StatusOptions[p.status])))
		case rowCheck:
			if row.key == inspection.ChecklistItems[0].Key {
				b.WriteString("\n" + ui.BoldStyle.Render("  Checklist") + "\n")
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, ui.Check(p.checklist.Get(row.key)), row.label))
		case rowPhotos:
			b.WriteString("\n" + fmt.Sprintf("%s%-18s %s\n", cursor, row.label, p.inputs[photosKey].View()))
		case rowStaged:
			if row.staged < len(items) {
				it := items[row.staged]
				size := humanize.Bytes(uint64(photo.Inspect(it.Photo).Size))
				b.WriteString(fmt.Sprintf("%s    %s %s %s\n", cursor, it.Photo.Name, ui.DimStyle.Render(size), ui.DimStyle.Render(it.ID[:8])))
			}
		}
	}

	var status []string
	if p.pending > 0 {
		status = append(status, fmt.Sprintf("reading %d photo(s)", p.pending))
	}
	if p.skipped > 0 {
		status = append(status, fmt.Sprintf("%d file(s) skipped", p.skipped))
	}
	if len(status) > 0 {
		b.WriteString("\n  " + ui.DimStyle.Render(strings.Join(status, ", ")) + "\n")
	}
	if p.message != "" {
		style := ui.DimStyle
		if p.isErr {
			style = ui.ErrorTextStyle
		}
		b.WriteString("\n  " + style.Render(p.message))
	}
	return b.String()
}

func (p *InspectionPage) typeToggle() string {
	var parts []string
	for _, t := range inspection.EquipmentTypes {
		if t == p.equipType {
			parts = append(parts, ui.BoldStyle.Render("("+t.Label()+")"))
		} else {
			parts = append(parts, ui.DimStyle.Render(" "+t.Label()+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (p *InspectionPage) Name() string { return "New inspection" }

func (p *InspectionPage) ShortHelp() []key.Binding {
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "field")),
		key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
	switch p.current().kind {
	case rowType, rowStatus, rowCheck:
		bindings = append(bindings, key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")))
	case rowPhotos:
		bindings = append(bindings, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "attach")))
	case rowStaged:
		bindings = append(bindings, key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove photo")))
	}
	return bindings
}

func (p *InspectionPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
