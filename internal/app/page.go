package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
)

// PageID identifies each page in the application.
type PageID int

const (
	HomePage PageID = iota
	InspectionPage
	RecordsPage
	BackupPage
	SettingsPage
)

var PageOrder = []PageID{
	HomePage,
	InspectionPage,
	RecordsPage,
	BackupPage,
	SettingsPage,
}

func (id PageID) String() string {
	switch id {
	case HomePage:
		return "home"
	case InspectionPage:
		return "inspection"
	case RecordsPage:
		return "records"
	case BackupPage:
		return "backup"
	case SettingsPage:
		return "settings"
	}
	return "unknown"
}

// Page is the interface every page in the application implements.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Name() string
	ShortHelp() []key.Binding
	SetSize(width, height int)
}

// InputCapturer is an optional interface for pages with text inputs.
// When InputCaptured returns true, the app forwards all keys directly
// to the page instead of processing shortcuts like q, ?, left, etc.
type InputCapturer interface {
	InputCaptured() bool
}

// Activator is an optional interface for pages that reset when shown.
type Activator interface {
	Activate() tea.Cmd
}

// NavigateMsg switches the active page and focuses its content.
type NavigateMsg struct {
	Page PageID
}

func Navigate(id PageID) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Page: id} }
}

// RecordSavedMsg is broadcast after a new inspection has been persisted.
type RecordSavedMsg struct {
	Record inspection.Record
}

// StoreReplacedMsg is broadcast after an import replaced every record.
type StoreReplacedMsg struct {
	Count int
}

// ConfigChangedMsg is broadcast after settings were edited.
type ConfigChangedMsg struct{}

// OpenPickerMsg asks the app to show the picker overlay. Purpose is echoed
// back in the PickerSelectedMsg so the requesting page can recognise it.
type OpenPickerMsg struct {
	Title   string
	Purpose string
	Items   []PickerItem
}
