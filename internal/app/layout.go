package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/ui"
)

const sidebarWidth = 22 // 20 content + 2 border/padding

func renderHeader(inspector string, records int, backend string, width int) string {
	content := fmt.Sprintf("Inspector: %s  Records: %d  Storage: %s", inspector, records, backend)
	return ui.StatusBarStyle.Width(width).Render(content)
}

func renderSidebar(pages []PageID, active PageID, pageMap map[PageID]Page, height int, focused bool) string {
	var b strings.Builder
	if focused {
		b.WriteString(ui.BoldStyle.Render("vistoria [FOCUSED]"))
	} else {
		b.WriteString(ui.TitleStyle.Render("vistoria"))
	}
	b.WriteString("\n\n")

	for _, id := range pages {
		p := pageMap[id]
		if id == active {
			b.WriteString(ui.SidebarActiveStyle.Render("▸ " + p.Name()))
		} else {
			b.WriteString(ui.SidebarItemStyle.Render("  " + p.Name()))
		}
		b.WriteString("\n")
	}

	style := ui.SidebarStyle.Height(height)
	if focused {
		style = style.BorderForeground(ui.Primary)
	}
	return style.Render(b.String())
}

func renderStatusBar(pageHelp []key.Binding, width int, focus FocusArea) string {
	var parts []string

	if focus == FocusSidebar {
		parts = append(parts,
			ui.StatusKey("↑/↓", "navigate"),
			ui.StatusKey("enter", "select"),
			ui.StatusKey("n", "new inspection"),
		)
	} else {
		for _, kb := range pageHelp {
			if kb.Enabled() {
				parts = append(parts, ui.StatusKey(kb.Help().Key, kb.Help().Desc))
			}
		}
	}

	parts = append(parts,
		ui.StatusKey("tab", "focus"),
		ui.StatusKey("?", "help"),
		ui.StatusKey("q", "quit"),
	)

	return ui.StatusBarStyle.Width(width).Render(strings.Join(parts, "  "))
}

func renderHelp(page Page, width int) string {
	var b strings.Builder
	row := func(k, desc string) {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", k, desc))
	}

	b.WriteString(ui.BoldStyle.Render("Global") + "\n")
	for _, kb := range []key.Binding{GlobalKeys.ToggleFocus, GlobalKeys.NewInspection, GlobalKeys.Help, GlobalKeys.Quit} {
		row(kb.Help().Key, kb.Help().Desc)
	}
	row("↑/↓", "move in sidebar")
	row("←", "back to sidebar")

	b.WriteString("\n" + ui.BoldStyle.Render(page.Name()) + "\n")
	for _, kb := range page.ShortHelp() {
		if kb.Enabled() {
			row(kb.Help().Key, kb.Help().Desc)
		}
	}
	return ui.Panel("Help", b.String(), min(width, 60), 0, true)
}

func renderLayout(header, sidebar, content, statusBar string) string {
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, header, main, statusBar)
}
