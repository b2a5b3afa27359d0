package main

import (
	"strings"
	"time"

	"chainscope-tui/entity"
	"chainscope-tui/nav"
	"chainscope-tui/storage"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// -------------------- ACTIONS --------------------
// The reducer vocabulary. Every orchestration-state mutation funnels
// through dispatch with one of these.

type action interface {
	isAction()
}

type actionQuit struct{}
type actionFocusPane struct{ pane nav.Pane }
type actionFocusNext struct{}
type actionFocusPrevious struct{}
type actionSelectionChanged struct{ ent entity.Entity }
type actionLoadingStarted struct{ pane nav.Pane }
type actionLoadingFinished struct{ pane nav.Pane }
type actionCloseModal struct{}
type actionSecretsSaved struct{}

func (actionQuit) isAction()             {}
func (actionFocusPane) isAction()        {}
func (actionFocusNext) isAction()        {}
func (actionFocusPrevious) isAction()    {}
func (actionSelectionChanged) isAction() {}
func (actionLoadingStarted) isAction()   {}
func (actionLoadingFinished) isAction()  {}
func (actionCloseModal) isAction()       {}
func (actionSecretsSaved) isAction()     {}

// dispatch applies an action to the model. It is the single place where
// navigation and selection state mutates.
func (m *model) dispatch(a action) tea.Cmd {
	switch a := a.(type) {
	case actionQuit:
		return tea.Quit
	case actionFocusPane:
		m.navState.FocusPane(a.pane)
		if a.pane != nav.PaneTop && m.searching {
			m.searching = false
			m.search.Blur()
		}
	case actionFocusNext:
		m.navState.FocusNext()
	case actionFocusPrevious:
		m.navState.FocusPrevious()
	case actionSelectionChanged:
		return m.applySelection(a.ent)
	case actionLoadingStarted:
		m.navState.StartLoading(a.pane, time.Now())
	case actionLoadingFinished:
		m.navState.FinishLoading(a.pane)
	case actionCloseModal:
		m.showModal = false
		m.form = nil
		m.navState.RestoreFocus()
	case actionSecretsSaved:
		m.showModal = false
		m.form = nil
		m.navState.RestoreFocus()
		m.setStatus("Secrets updated")
	}
	return nil
}

// applySelection makes ent current and spawns exactly one hydration task
// for it. Views of the previous entity are cleared up front.
func (m *model) applySelection(ent entity.Entity) tea.Cmd {
	if ent == nil {
		return nil
	}
	m.selected = ent
	m.searchError = ""
	m.tableIndex = 0
	m.qrVisible = false

	short := entity.ShortHex(ent.Identifier())
	m.setStatus("Fetching latest activity for " + short)
	m.dispatch(actionLoadingStarted{pane: nav.PaneMainView})
	m.logger.Info("selection changed", "identifier", ent.Identifier())

	if addr, ok := ent.(entity.AddressRef); ok {
		m.addressData = nil
		m.navState.SetMode(nav.ModeAddress)
		m.navState.SetTab(nav.TabAddressInfo)
		return m.hydrateAddressCmd(addr)
	}

	txn := ent.(entity.TransactionRef)
	m.txData = nil
	m.navState.SetMode(nav.ModeTransaction)
	m.navState.SetTab(nav.TabTxSummary)
	return m.hydrateTransactionCmd(txn)
}

// -------------------- UPDATE --------------------

// Update implements tea.Model and translates messages into actions and
// state changes.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		if m.status != "" && msg.at.Sub(m.statusAt) > statusTTL {
			m.status = ""
		}
		return m, tick()

	case initSelectionMsg:
		cmd := m.dispatch(actionSelectionChanged{ent: m.selected})
		if m.selected != nil && m.selected.Kind() == entity.KindAddress {
			// Startup lands on the activity table rather than the info tab.
			m.navState.SetTab(nav.TabAddressTransactions)
		}
		return m, cmd

	case addressHydratedMsg:
		m.applyAddressHydration(msg.data)
		return m, nil

	case transactionHydratedMsg:
		m.applyTransactionHydration(msg.data)
		return m, nil

	case searchResolvedMsg:
		return m, m.applySearchResult(msg)

	case clipboardCopiedMsg:
		if msg.err != nil {
			m.setStatus("Clipboard unavailable: " + msg.err.Error())
		} else {
			m.setStatus("Copied " + entity.ShortHex(msg.text))
		}
		return m, nil
	}

	// Everything else belongs to the modal form while it is up.
	if m.showModal {
		return m, m.updateSecretsForm(msg)
	}
	return m, nil
}

// -------------------- KEY HANDLING --------------------

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showModal {
		return m.updateSecretsForm(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m.dispatch(actionQuit{})
	case "/":
		return m.beginSearch()
	case "tab":
		return m.dispatch(actionFocusNext{})
	case "shift+tab":
		return m.dispatch(actionFocusPrevious{})
	case "1":
		return m.dispatch(actionFocusPane{pane: nav.PaneTop})
	case "2":
		return m.dispatch(actionFocusPane{pane: nav.PaneSidebar})
	case "3":
		return m.dispatch(actionFocusPane{pane: nav.PaneMainView})
	case "4":
		return m.dispatch(actionFocusPane{pane: nav.PaneBottomBar})
	case "s":
		m.openSecretsModal()
		return nil
	case "f", "F":
		m.toggleFavorite()
		return nil
	case "y":
		if m.selected != nil {
			return copyToClipboard(m.selected.Identifier())
		}
		return nil
	case "Q":
		m.toggleQR()
		return nil
	case "[":
		m.cycleTabs(-1)
		return nil
	case "]":
		m.cycleTabs(1)
		return nil
	case "j", "down":
		return m.moveDown()
	case "k", "up":
		return m.moveUp()
	case "h", "left":
		if m.navState.Focused == nav.PaneMainView {
			m.navState.PreviousTab()
		}
		return nil
	case "l", "right":
		if m.navState.Focused == nav.PaneMainView {
			m.navState.NextTab()
		}
		return nil
	case "enter":
		return m.activate()
	}
	return nil
}

func (m *model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return m.dispatch(actionQuit{})
	case "esc":
		m.searching = false
		m.search.Blur()
		m.pendingQuery = ""
		m.setStatus("Search cancelled")
		return nil
	case "enter":
		query := strings.TrimSpace(m.search.Value())
		if query == "" {
			return nil
		}
		m.pendingQuery = query
		m.setStatus("Searching for " + query + "…")
		return resolveSearchCmd(query, m.cfg.Chain)
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return cmd
	}
}

func (m *model) beginSearch() tea.Cmd {
	m.dispatch(actionFocusPane{pane: nav.PaneTop})
	m.searching = true
	m.searchError = ""
	m.search.Focus()
	return textinput.Blink
}

func (m *model) toggleQR() {
	if m.selected == nil || m.selected.Kind() != entity.KindAddress {
		return
	}
	if m.navState.Tab != nav.TabAddressInfo {
		return
	}
	m.qrVisible = !m.qrVisible
}

// cycleTabs routes [ and ] to whichever tab strip has focus.
func (m *model) cycleTabs(delta int) {
	switch m.navState.Focused {
	case nav.PaneSidebar:
		m.navState.SidebarTab = m.navState.SidebarTab.Next()
		m.sidebarIndex = 0
	case nav.PaneMainView:
		if delta < 0 {
			m.navState.PreviousTab()
		} else {
			m.navState.NextTab()
		}
	}
}

func (m *model) moveDown() tea.Cmd {
	switch m.navState.Focused {
	case nav.PaneSidebar:
		return m.moveSidebar(1)
	case nav.PaneMainView:
		m.moveTable(1)
	}
	return nil
}

func (m *model) moveUp() tea.Cmd {
	switch m.navState.Focused {
	case nav.PaneSidebar:
		return m.moveSidebar(-1)
	case nav.PaneMainView:
		m.moveTable(-1)
	}
	return nil
}

// moveSidebar changes the highlighted favorite and selects it
// immediately, so the main view always previews the cursor.
func (m *model) moveSidebar(delta int) tea.Cmd {
	n := m.sidebarLen()
	if n == 0 {
		return nil
	}
	idx := m.sidebarIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	if idx == m.sidebarIndex {
		return nil
	}
	m.sidebarIndex = idx
	return m.dispatch(actionSelectionChanged{ent: m.sidebarEntity(idx)})
}

func (m *model) moveTable(delta int) {
	if m.navState.Tab != nav.TabAddressTransactions || m.addressData == nil {
		return
	}
	n := len(m.addressData.Rows)
	if n == 0 {
		return
	}
	idx := m.tableIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	m.tableIndex = idx
}

// activate handles Enter outside the search input: re-select the
// highlighted favorite, open the highlighted table row, or start a
// search from the top bar.
func (m *model) activate() tea.Cmd {
	switch m.navState.Focused {
	case nav.PaneTop:
		return m.beginSearch()
	case nav.PaneSidebar:
		if ent := m.sidebarEntity(m.sidebarIndex); ent != nil {
			return m.dispatch(actionSelectionChanged{ent: ent})
		}
	case nav.PaneMainView:
		if m.navState.Tab != nav.TabAddressTransactions || m.addressData == nil {
			return nil
		}
		rows := m.addressData.Rows
		if m.tableIndex < 0 || m.tableIndex >= len(rows) {
			return nil
		}
		row := rows[m.tableIndex]
		return m.dispatch(actionSelectionChanged{ent: entity.TransactionRef{
			Hash:  row.Hash,
			Label: "Txn " + entity.ShortHex(row.Hash),
			Chain: m.chainFor(m.selected),
		}})
	}
	return nil
}

// -------------------- FAVORITES --------------------

// toggleFavorite flips the selected entity's favorite state. The store
// mutates first; on a storage error nothing in memory changes.
func (m *model) toggleFavorite() {
	ent := m.selected
	if ent == nil {
		return
	}
	key := favKey(ent)
	short := entity.ShortHex(ent.Identifier())

	repo := m.addrFavs
	if ent.Kind() == entity.KindTransaction {
		repo = m.txFavs
	}

	if m.favSet[key] {
		if err := repo.Remove(m.storedIdentifier(ent)); err != nil {
			m.logger.Error("remove favorite", "identifier", ent.Identifier(), "err", err)
			m.setStatus("Failed to update favorites: " + err.Error())
			return
		}
		delete(m.favSet, key)
		m.removeFavoriteEntry(ent)
		m.setStatus("Removed " + short + " from favorites")
		return
	}

	rec := storage.FavoriteRecord{
		Label:      rawLabel(ent),
		Identifier: ent.Identifier(),
		Chain:      m.chainFor(ent),
	}
	if err := repo.Upsert(rec); err != nil {
		m.logger.Error("store favorite", "identifier", ent.Identifier(), "err", err)
		m.setStatus("Failed to update favorites: " + err.Error())
		return
	}
	m.favSet[key] = true
	m.insertFavoriteEntry(ent, rec.Chain)
	m.setStatus("Favorited " + short)
}

// storedIdentifier returns the identifier a favorite was persisted
// under. The same address can be re-selected in different casing, and
// the store is keyed by the record's own casing.
func (m *model) storedIdentifier(ent entity.Entity) string {
	if ent.Kind() == entity.KindAddress {
		for _, fav := range m.favAddresses {
			if strings.EqualFold(fav.Address, ent.Identifier()) {
				return fav.Address
			}
		}
	}
	return ent.Identifier()
}

func rawLabel(ent entity.Entity) string {
	switch e := ent.(type) {
	case entity.AddressRef:
		return e.Label
	case entity.TransactionRef:
		return e.Label
	}
	return ""
}

// insertFavoriteEntry puts a new favorite at the front of its list.
func (m *model) insertFavoriteEntry(ent entity.Entity, chain string) {
	switch e := ent.(type) {
	case entity.AddressRef:
		e.Chain = chain
		m.favAddresses = append([]entity.AddressRef{e}, m.favAddresses...)
		if m.navState.SidebarTab == nav.TabAddresses {
			m.sidebarIndex = 0
		}
	case entity.TransactionRef:
		e.Chain = chain
		m.favTransactions = append([]entity.TransactionRef{e}, m.favTransactions...)
		if m.navState.SidebarTab == nav.TabTransactions {
			m.sidebarIndex = 0
		}
	}
}

func (m *model) removeFavoriteEntry(ent entity.Entity) {
	switch ent.Kind() {
	case entity.KindAddress:
		for i, fav := range m.favAddresses {
			if strings.EqualFold(fav.Address, ent.Identifier()) {
				m.favAddresses = append(m.favAddresses[:i], m.favAddresses[i+1:]...)
				break
			}
		}
	case entity.KindTransaction:
		for i, fav := range m.favTransactions {
			if fav.Hash == ent.Identifier() {
				m.favTransactions = append(m.favTransactions[:i], m.favTransactions[i+1:]...)
				break
			}
		}
	}
	if n := m.sidebarLen(); n == 0 {
		m.sidebarIndex = 0
	} else if m.sidebarIndex >= n {
		m.sidebarIndex = n - 1
	}
}

// -------------------- HYDRATION RESULTS --------------------

// isCurrentAddress reports whether the selection still points at the
// address a background result describes. Address casing is not
// significant, so the comparison folds case.
func (m *model) isCurrentAddress(identifier string) bool {
	if m.selected == nil || m.selected.Kind() != entity.KindAddress {
		return false
	}
	return strings.EqualFold(m.selected.Identifier(), identifier)
}

// isCurrentTransaction is the exact-match twin for transaction hashes.
func (m *model) isCurrentTransaction(identifier string) bool {
	if m.selected == nil || m.selected.Kind() != entity.KindTransaction {
		return false
	}
	return m.selected.Identifier() == identifier
}

// applyAddressHydration installs a finished address result, unless the
// user has moved on, in which case the result is dropped silently.
func (m *model) applyAddressHydration(data entity.HydratedAddress) {
	if !m.isCurrentAddress(data.Identifier) {
		m.logger.Debug("dropping stale address result", "identifier", data.Identifier)
		return
	}
	m.addressData = &data
	for _, row := range data.Rows {
		m.previewCache[row.Hash] = row
	}
	if m.tableIndex >= len(data.Rows) {
		m.tableIndex = 0
	}
	m.setStatus(data.StatusLine)
	m.dispatch(actionLoadingFinished{pane: nav.PaneMainView})
}

func (m *model) applyTransactionHydration(data entity.HydratedTransaction) {
	if !m.isCurrentTransaction(data.Identifier) {
		m.logger.Debug("dropping stale transaction result", "identifier", data.Identifier)
		return
	}
	m.txData = &data
	m.dispatch(actionLoadingFinished{pane: nav.PaneMainView})
}

// applySearchResult applies a decoded query, dropping it when it no
// longer matches the last submitted query.
func (m *model) applySearchResult(msg searchResolvedMsg) tea.Cmd {
	if msg.query != m.pendingQuery {
		m.logger.Debug("dropping stale search result", "query", msg.query)
		return nil
	}
	m.pendingQuery = ""

	if msg.err != nil {
		m.searchError = msg.err.Error()
		m.setStatus("Failed to load " + entity.ShortHex(msg.query) + ": " + msg.err.Error())
		return nil
	}

	if err := m.settings.Put(lastQueryKey, msg.query); err != nil {
		m.logger.Error("persist last query", "err", err)
	}

	m.searching = false
	m.search.Blur()

	cmd := m.dispatch(actionSelectionChanged{ent: msg.ent})
	m.dispatch(actionFocusPane{pane: nav.PaneMainView})
	if msg.ent.Kind() == entity.KindAddress {
		m.setStatus("Loaded address " + entity.ShortHex(msg.ent.Identifier()))
	} else {
		m.setStatus("Loaded transaction " + entity.ShortHex(msg.ent.Identifier()))
	}
	return cmd
}
