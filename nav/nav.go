// Package nav holds the focus and tab state machine for the terminal UI.
// It is pure state: no rendering, no I/O.
package nav

import "time"

// Pane is one focusable region of the screen.
type Pane int

const (
	PaneTop Pane = iota
	PaneSidebar
	PaneMainView
	PaneBottomBar
	PaneModal

	paneCount
)

func (p Pane) String() string {
	switch p {
	case PaneTop:
		return "Top"
	case PaneSidebar:
		return "Sidebar"
	case PaneMainView:
		return "MainView"
	case PaneBottomBar:
		return "BottomBar"
	case PaneModal:
		return "Modal"
	default:
		return "Unknown"
	}
}

// SidebarTab selects which favorites list the sidebar shows.
type SidebarTab int

const (
	TabAddresses SidebarTab = iota
	TabTransactions
)

func (t SidebarTab) String() string {
	if t == TabTransactions {
		return "Transactions"
	}
	return "Addresses"
}

// Next cycles to the other sidebar tab.
func (t SidebarTab) Next() SidebarTab {
	if t == TabAddresses {
		return TabTransactions
	}
	return TabAddresses
}

// Mode selects which tab set the main view carries.
type Mode int

const (
	ModeAddress Mode = iota
	ModeTransaction
)

// MainTab is one tab of the main view. The valid set depends on Mode.
type MainTab int

const (
	TabAddressInfo MainTab = iota
	TabAddressTransactions
	TabAddressInternal
	TabAddressBalances
	TabAddressPermissions
	TabTxSummary
	TabTxDebug
	TabTxStorageDiff
)

func (t MainTab) Title() string {
	switch t {
	case TabAddressInfo:
		return "Info"
	case TabAddressTransactions:
		return "Transactions"
	case TabAddressInternal:
		return "Internal"
	case TabAddressBalances:
		return "Balances"
	case TabAddressPermissions:
		return "Permissions"
	case TabTxSummary:
		return "Summary"
	case TabTxDebug:
		return "Debug"
	case TabTxStorageDiff:
		return "Storage Diff"
	default:
		return "Unknown"
	}
}

var addressTabs = []MainTab{
	TabAddressInfo,
	TabAddressTransactions,
	TabAddressInternal,
	TabAddressBalances,
	TabAddressPermissions,
}

var transactionTabs = []MainTab{
	TabTxSummary,
	TabTxDebug,
	TabTxStorageDiff,
}

// TabsFor returns the ordered tab set of a mode.
func TabsFor(mode Mode) []MainTab {
	if mode == ModeTransaction {
		return transactionTabs
	}
	return addressTabs
}

// Normalize clamps tab into mode's tab set, falling back to the first tab.
func Normalize(mode Mode, tab MainTab) MainTab {
	tabs := TabsFor(mode)
	for _, t := range tabs {
		if t == tab {
			return tab
		}
	}
	return tabs[0]
}

func cycleTab(mode Mode, tab MainTab, delta int) MainTab {
	tabs := TabsFor(mode)
	idx := 0
	for i, t := range tabs {
		if t == tab {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(tabs)) % len(tabs)
	return tabs[idx]
}

// LoadingState tracks whether a pane has background work in flight.
type LoadingState struct {
	Active bool
	Since  time.Time
}

// State is the complete navigation state.
type State struct {
	Focused     Pane
	SidebarTab  SidebarTab
	Mode        Mode
	Tab         MainTab
	modalReturn Pane
	loading     [paneCount]LoadingState
}

// NewState returns the startup navigation state: Top pane focused,
// address favorites, address mode with the Info tab.
func NewState() State {
	return State{
		Focused:     PaneTop,
		SidebarTab:  TabAddresses,
		Mode:        ModeAddress,
		Tab:         TabAddressInfo,
		modalReturn: PaneTop,
	}
}

// FocusPane focuses p directly. Focusing the modal goes through FocusModal
// so the return point is preserved; any other pane also becomes the point
// the modal will later return to.
func (s *State) FocusPane(p Pane) {
	if p == PaneModal {
		s.FocusModal()
		return
	}
	s.Focused = p
	s.modalReturn = p
}

// FocusModal opens the modal, remembering where focus came from.
// Calling it while the modal is already focused keeps the original
// return point.
func (s *State) FocusModal() {
	if s.Focused == PaneModal {
		return
	}
	s.modalReturn = s.Focused
	s.Focused = PaneModal
}

// RestoreFocus leaves the modal, returning focus to the remembered pane.
func (s *State) RestoreFocus() {
	s.Focused = s.modalReturn
}

// FocusNext cycles Top → Sidebar → MainView → BottomBar → Top.
// From the modal it lands on Top.
func (s *State) FocusNext() {
	switch s.Focused {
	case PaneTop:
		s.Focused = PaneSidebar
	case PaneSidebar:
		s.Focused = PaneMainView
	case PaneMainView:
		s.Focused = PaneBottomBar
	case PaneBottomBar:
		s.Focused = PaneTop
	case PaneModal:
		s.Focused = PaneTop
	}
	s.modalReturn = s.Focused
}

// FocusPrevious cycles in the opposite direction. From the modal it
// returns to the remembered pane.
func (s *State) FocusPrevious() {
	switch s.Focused {
	case PaneTop:
		s.Focused = PaneBottomBar
	case PaneSidebar:
		s.Focused = PaneTop
	case PaneMainView:
		s.Focused = PaneSidebar
	case PaneBottomBar:
		s.Focused = PaneMainView
	case PaneModal:
		s.Focused = s.modalReturn
	}
	s.modalReturn = s.Focused
}

// SetMode switches the main view mode and re-normalizes the active tab.
func (s *State) SetMode(mode Mode) {
	s.Mode = mode
	s.Tab = Normalize(mode, s.Tab)
}

// SetTab sets the main-view tab, clamped to the active mode.
func (s *State) SetTab(tab MainTab) {
	s.Tab = Normalize(s.Mode, tab)
}

// NextTab cycles forward within the active mode's tab set.
func (s *State) NextTab() {
	s.Tab = cycleTab(s.Mode, s.Tab, 1)
}

// PreviousTab cycles backward within the active mode's tab set.
func (s *State) PreviousTab() {
	s.Tab = cycleTab(s.Mode, s.Tab, -1)
}

// StartLoading marks a pane as having work in flight.
func (s *State) StartLoading(p Pane, now time.Time) {
	if p < 0 || p >= paneCount {
		return
	}
	s.loading[p] = LoadingState{Active: true, Since: now}
}

// FinishLoading clears a pane's in-flight mark.
func (s *State) FinishLoading(p Pane) {
	if p < 0 || p >= paneCount {
		return
	}
	s.loading[p] = LoadingState{}
}

// IsLoading reports whether a pane has work in flight.
func (s *State) IsLoading(p Pane) bool {
	if p < 0 || p >= paneCount {
		return false
	}
	return s.loading[p].Active
}

// AnyLoading reports whether any pane has work in flight.
func (s *State) AnyLoading() bool {
	for _, l := range s.loading {
		if l.Active {
			return true
		}
	}
	return false
}
