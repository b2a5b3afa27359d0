package main

import (
	"fmt"
	"strings"

	"chainscope-tui/entity"
	"chainscope-tui/nav"
	"chainscope-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 34

// -------------------- VIEW --------------------

// View implements tea.Model. Pure: renders the current state only.
func (m *model) View() string {
	if m.w == 0 || m.h == 0 {
		return "loading…"
	}

	top := m.renderTopBar()
	bottom := m.renderBottomBar()

	middleHeight := m.h - lipgloss.Height(top) - lipgloss.Height(bottom)
	if middleHeight < 3 {
		middleHeight = 3
	}
	sidebar := m.renderSidebar(middleHeight)
	main := m.renderMainView(m.w-sidebarWidth, middleHeight)
	middle := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	screen := lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom)

	if m.showModal && m.form != nil {
		return m.renderModal()
	}
	return screen
}

func (m *model) renderTopBar() string {
	title := styles.TitleStyle.Render("[1] Search")

	var body string
	if m.searching {
		body = m.search.View()
	} else if q := m.search.Value(); q != "" {
		body = styles.MutedStyle.Render("/ " + q)
	} else {
		body = styles.MutedStyle.Render("Press / to search an address or transaction hash")
	}

	line := title + "  " + body
	if missing := m.missingConfig(); len(missing) > 0 {
		line += "  " + styles.WarnStyle.Render("Missing config: "+strings.Join(missing, ", "))
	}

	return styles.Panel(m.navState.Focused == nav.PaneTop).
		Width(m.w - 2).
		Render(line)
}

func (m *model) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("[2] Favorites"))
	b.WriteString("\n")
	b.WriteString(m.renderSidebarTabs())
	b.WriteString("\n\n")

	n := m.sidebarLen()
	if n == 0 {
		b.WriteString(styles.MutedStyle.Render("No favorites yet."))
	}
	for i := 0; i < n; i++ {
		label := m.sidebarLabel(i)
		if i == m.sidebarIndex {
			b.WriteString(styles.SelectedRowStyle.Render(" " + label + " "))
		} else {
			b.WriteString(" " + label)
		}
		b.WriteString("\n")
	}

	return styles.Panel(m.navState.Focused == nav.PaneSidebar).
		Width(sidebarWidth - 2).
		Height(height - 2).
		Render(b.String())
}

func (m *model) renderSidebarTabs() string {
	tabs := []nav.SidebarTab{nav.TabAddresses, nav.TabTransactions}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t == m.navState.SidebarTab {
			parts = append(parts, styles.ActiveTabStyle.Render(t.String()))
		} else {
			parts = append(parts, styles.TabStyle.Render(t.String()))
		}
	}
	return strings.Join(parts, "")
}

func (m *model) sidebarLabel(i int) string {
	if m.navState.SidebarTab == nav.TabTransactions {
		fav := m.favTransactions[i]
		return fmt.Sprintf("%s · %s", fav.Chain, entity.ShortHex(fav.DisplayLabel()))
	}
	fav := m.favAddresses[i]
	return fmt.Sprintf("%s [%s]", entity.ShortHex(fav.Address), fav.Chain)
}

func (m *model) renderMainView(width, height int) string {
	var b strings.Builder

	title := "[3] Inspector"
	if m.selected != nil {
		title = "[3] " + entity.ShortHex(m.selected.Identifier())
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderMainTabs())
	b.WriteString("\n\n")

	if m.searchError != "" {
		b.WriteString(styles.ErrorStyle.Render(m.searchError))
		b.WriteString("\n\n")
	}

	switch {
	case m.selected == nil:
		b.WriteString(styles.MutedStyle.Render("Nothing selected. Favorite an address or search for one."))
	case m.navState.IsLoading(nav.PaneMainView):
		b.WriteString(m.spin.View() + " Loading…")
	default:
		b.WriteString(m.renderMainContent(width))
	}

	return styles.Panel(m.navState.Focused == nav.PaneMainView).
		Width(width - 2).
		Height(height - 2).
		Render(b.String())
}

func (m *model) renderMainTabs() string {
	parts := make([]string, 0, 5)
	for _, t := range nav.TabsFor(m.navState.Mode) {
		if t == m.navState.Tab {
			parts = append(parts, styles.ActiveTabStyle.Render(t.Title()))
		} else {
			parts = append(parts, styles.TabStyle.Render(t.Title()))
		}
	}
	return strings.Join(parts, "")
}

func (m *model) renderMainContent(width int) string {
	switch m.navState.Tab {
	case nav.TabAddressInfo:
		return m.renderAddressInfo()
	case nav.TabAddressTransactions:
		return m.renderTransactionsTable(width)
	case nav.TabAddressInternal:
		return styles.MutedStyle.Render("Internal transactions not yet implemented.")
	case nav.TabAddressBalances:
		return styles.MutedStyle.Render("Balance inspection not yet implemented.")
	case nav.TabAddressPermissions:
		return styles.MutedStyle.Render("Permission analysis not yet implemented.")
	case nav.TabTxSummary:
		return m.renderTxLines(func(d *entity.HydratedTransaction) []string { return d.Summary })
	case nav.TabTxDebug:
		return m.renderTxLines(func(d *entity.HydratedTransaction) []string { return d.Debug })
	case nav.TabTxStorageDiff:
		return m.renderTxLines(func(d *entity.HydratedTransaction) []string { return d.StorageDiff })
	}
	return ""
}

func (m *model) renderAddressInfo() string {
	if m.addressData == nil {
		return styles.MutedStyle.Render("No account data available.")
	}
	var b strings.Builder
	for _, line := range m.addressData.InfoLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.qrVisible && m.selected != nil {
		b.WriteString(renderQR(m.selected.Identifier()))
	} else {
		b.WriteString(styles.MutedStyle.Render("Press Q to show the address as a QR code"))
	}
	return b.String()
}

func (m *model) renderTransactionsTable(width int) string {
	if m.addressData == nil {
		return styles.MutedStyle.Render("No data yet")
	}

	var b strings.Builder
	for _, note := range m.addressData.TxNotes {
		b.WriteString(styles.MutedStyle.Render(note))
		b.WriteString("\n")
	}
	rows := m.addressData.Rows
	if len(rows) == 0 {
		return b.String()
	}
	b.WriteString("\n")

	counterWidth := width - (7 + 14 + 11 + 15 + 8 + 12)
	if counterWidth < 12 {
		counterWidth = 12
	}
	format := fmt.Sprintf("%%-7s %%-14s %%-11s %%-%ds %%15s %%8s", counterWidth)

	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf(format, "Status", "Tx Hash", "Direction", "Counterparty", "Value", "Block")))
	b.WriteString("\n")
	for i, row := range rows {
		line := fmt.Sprintf(format,
			row.Status,
			entity.ShortHex(row.Hash),
			row.Direction.String(),
			row.Counterparty,
			row.Value,
			row.Block,
		)
		if i == m.tableIndex {
			b.WriteString(styles.SelectedRowStyle.Render(line))
		} else if row.Failed {
			b.WriteString(styles.ErrorStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderTxLines(pick func(*entity.HydratedTransaction) []string) string {
	if m.txData == nil {
		return styles.MutedStyle.Render("No data yet")
	}
	return strings.Join(pick(m.txData), "\n")
}

func (m *model) renderBottomBar() string {
	keymap := strings.Join([]string{
		styles.Key("q") + " Quit",
		styles.Key("/") + " Search",
		styles.Key("[ ]") + " Tabs",
		styles.Key("h j k l") + " Move",
		styles.Key("enter") + " Open",
		styles.Key("1..4") + " Focus",
		styles.Key("f") + " Favorite",
		styles.Key("y") + " Copy",
		styles.Key("s") + " Secrets",
	}, styles.HotkeyStyle.Render("  "))

	line := styles.TitleStyle.Render("[4] Keymap") + "  " + keymap
	if m.fatalError != "" {
		line += "\n" + styles.ErrorStyle.Render(m.fatalError)
	} else if m.status != "" {
		line += "\n" + styles.StatusStyle.Render(m.status)
	} else {
		line += "\n" + styles.MutedStyle.Render("Chain: "+m.cfg.Chain)
	}

	return styles.Panel(m.navState.Focused == nav.PaneBottomBar).
		Width(m.w - 2).
		Render(line)
}

func (m *model) renderModal() string {
	title := styles.FadeString("Secrets", "#79C0FF", "#7EE787")
	body := title + "\n\n" + m.form.View() + "\n" +
		styles.MutedStyle.Render("Enter saves, Esc closes")
	dialog := styles.FocusedPanelStyle.Padding(1, 3).Render(body)
	return lipgloss.Place(m.w, m.h, lipgloss.Center, lipgloss.Center, dialog)
}
