package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/config"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/metrics"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusContent
)

// Counter reports how many records are stored.
type Counter interface {
	Len() int
}

type Model struct {
	pages         map[PageID]Page
	activePage    PageID
	focus         FocusArea
	width         int
	height        int
	showHelp      bool
	picker        *Picker
	pickerPurpose string
	cfg           *config.Config
	records       Counter
	metrics       *metrics.Metrics
}

func New(pages map[PageID]Page, cfg *config.Config, records Counter, m *metrics.Metrics) Model {
	return Model{
		pages:   pages,
		cfg:     cfg,
		records: records,
		metrics: m,
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.pages {
		if cmd := p.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) ActivePage() PageID { return m.activePage }

func (m Model) Focus() FocusArea { return m.focus }

func (m Model) contentSize() (int, int) {
	return m.width - sidebarWidth, m.height - 2 - 1 // status bar + header
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.contentSize()
		for _, p := range m.pages {
			p.SetSize(w, h)
		}
		return m, nil

	case NavigateMsg:
		cmd := m.switchTo(msg.Page)
		return m, cmd

	case OpenPickerMsg:
		m.picker = NewPicker(msg.Title)
		m.picker.SetItems(msg.Items)
		m.picker.SetSize(m.contentSize())
		m.pickerPurpose = msg.Purpose
		return m, nil

	case pickerChoiceMsg:
		m.picker = nil
		sel := PickerSelectedMsg{Purpose: m.pickerPurpose, Value: msg.value}
		m.pickerPurpose = ""
		return m, func() tea.Msg { return sel }

	case PickerClosedMsg:
		m.picker = nil
		m.pickerPurpose = ""
		return m, nil

	case tea.KeyMsg:
		// When picker is open, forward all keys to picker
		if m.picker != nil {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}

		// When a page has an active text input, forward all keys
		// directly to the page; only ctrl+c still quits.
		if m.focus == FocusContent {
			if ic, ok := m.pages[m.activePage].(InputCapturer); ok && ic.InputCaptured() {
				if msg.String() == "ctrl+c" {
					return m, tea.Quit
				}
				cmd := m.updatePage(m.activePage, msg)
				return m, cmd
			}
		}

		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, GlobalKeys.ToggleFocus):
			if m.focus == FocusSidebar {
				m.focus = FocusContent
			} else {
				m.focus = FocusSidebar
			}
			return m, nil
		}

		if m.showHelp && msg.String() == "esc" {
			m.showHelp = false
			return m, nil
		}

		if m.focus == FocusSidebar {
			switch {
			case key.Matches(msg, GlobalKeys.NewInspection):
				cmd := m.switchTo(InspectionPage)
				return m, cmd
			case msg.String() == "up":
				m.prevPage()
			case msg.String() == "down":
				m.nextPage()
			case msg.String() == "enter", msg.String() == "right":
				m.focus = FocusContent
			}
			return m, nil
		}

		if msg.String() == "left" {
			m.focus = FocusSidebar
			return m, nil
		}
		cmd := m.updatePage(m.activePage, msg)
		return m, cmd
	}

	// Non-key messages (command results, etc.): forward to all pages
	// so responses reach the page that initiated the command
	var cmds []tea.Cmd
	for id := range m.pages {
		if cmd := m.updatePage(id, msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) updatePage(id PageID, msg tea.Msg) tea.Cmd {
	newPage, cmd := m.pages[id].Update(msg)
	m.pages[id] = newPage
	return cmd
}

func (m *Model) switchTo(id PageID) tea.Cmd {
	if _, ok := m.pages[id]; !ok {
		return nil
	}
	m.activePage = id
	m.focus = FocusContent
	m.showHelp = false
	m.metrics.PageViewed(id.String())
	if a, ok := m.pages[id].(Activator); ok {
		return a.Activate()
	}
	return nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentWidth, contentHeight := m.contentSize()
	page := m.pages[m.activePage]

	count := 0
	if m.records != nil {
		count = m.records.Len()
	}
	header := renderHeader(m.cfg.Inspector, count, m.cfg.Backend, m.width)
	sidebar := renderSidebar(PageOrder, m.activePage, m.pages, contentHeight, m.focus == FocusSidebar)

	body := page.View()
	if m.showHelp {
		body = renderHelp(page, contentWidth)
	}
	content := ui.ContentStyle.
		Width(contentWidth).
		Height(contentHeight).
		Render(body)

	// Overlay picker on content area when open
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
		content = lipgloss.Place(
			contentWidth, contentHeight,
			lipgloss.Center, lipgloss.Center,
			m.picker.View(),
		)
	}

	statusBar := renderStatusBar(page.ShortHelp(), m.width, m.focus)

	return renderLayout(header, sidebar, content, statusBar)
}

func (m *Model) nextPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i+1)%len(PageOrder)]
			m.metrics.PageViewed(m.activePage.String())
			return
		}
	}
}

func (m *Model) prevPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i-1+len(PageOrder))%len(PageOrder)]
			m.metrics.PageViewed(m.activePage.String())
			return
		}
	}
}
