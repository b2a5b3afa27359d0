package main

import (
	"os"
	"strings"
	"time"

	"chainscope-tui/config"
	"chainscope-tui/entity"
	"chainscope-tui/nav"
	"chainscope-tui/storage"
	"chainscope-tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// lastQueryKey is the settings entry holding the previous search query.
const lastQueryKey = "top:last_query"

// statusTTL is how long a transient status line stays visible.
const statusTTL = 5 * time.Second

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	cfg    config.Config
	logger *log.Logger

	navState nav.State

	// storage
	store    *storage.Store
	addrFavs storage.FavoritesRepository
	txFavs   storage.FavoritesRepository
	settings storage.KVRepository
	secrets  storage.KVRepository

	// favorites
	favAddresses    []entity.AddressRef
	favTransactions []entity.TransactionRef
	favSet          map[string]bool
	sidebarIndex    int

	// selection + hydration
	selected     entity.Entity
	addressData  *entity.HydratedAddress
	txData       *entity.HydratedTransaction
	previewCache map[string]entity.AddressTransactionRow
	tableIndex   int

	// search
	search       textinput.Model
	searching    bool
	pendingQuery string
	searchError  string

	// resolved secrets
	etherscanKey string
	rpcURL       string

	// secrets modal
	form      *huh.Form
	showModal bool

	// feedback
	spin       spinner.Model
	status     string
	statusAt   time.Time
	qrVisible  bool
	fatalError string
}

// newModel builds the startup state: favorites loaded from the store,
// secrets resolved (environment wins and is written through), first
// favorite preselected.
func newModel(cfg config.Config, store *storage.Store, logger *log.Logger) model {
	in := textinput.New()
	in.Placeholder = "Type an address or transaction hash"
	in.Prompt = "/ "
	in.PromptStyle = lipgloss.NewStyle().Foreground(styles.CAccent)
	in.TextStyle = lipgloss.NewStyle().Foreground(styles.CText)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	in.CharLimit = 66
	in.Width = 68

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	m := model{
		cfg:          cfg,
		logger:       logger,
		navState:     nav.NewState(),
		store:        store,
		addrFavs:     store.AddressFavorites(),
		txFavs:       store.TransactionFavorites(),
		settings:     store.Settings(),
		secrets:      store.Secrets(),
		favSet:       make(map[string]bool),
		previewCache: make(map[string]entity.AddressTransactionRow),
		search:       in,
		spin:         sp,
	}

	m.resolveSecrets()
	m.loadFavorites()
	m.restoreLastQuery()
	m.selectStartupFavorite()

	if m.etherscanKey == "" || m.rpcURL == "" {
		m.openSecretsModal()
	}

	return m
}

// resolveSecrets merges environment variables over stored secrets.
// A set environment variable is written through to the store; setting
// it to the empty string removes the stored secret.
func (m *model) resolveSecrets() {
	m.etherscanKey = m.resolveSecret(secretKeyEtherscan, config.EnvEtherscanAPIKey, m.cfg.EtherscanAPIKey)
	m.rpcURL = m.resolveSecret(secretKeyRPCURL, config.EnvRPCURL, m.cfg.RPCURL)
}

func (m *model) resolveSecret(storeKey, envName, fromEnv string) string {
	if _, present := os.LookupEnv(envName); present {
		value := strings.TrimSpace(fromEnv)
		if value == "" {
			if err := m.secrets.Delete(storeKey); err != nil {
				m.logger.Error("clear secret", "key", storeKey, "err", err)
			}
			return ""
		}
		if err := m.secrets.Put(storeKey, value); err != nil {
			m.logger.Error("store secret", "key", storeKey, "err", err)
		}
		return value
	}
	stored, ok, err := m.secrets.Get(storeKey)
	if err != nil {
		m.logger.Error("read secret", "key", storeKey, "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return stored
}

// loadFavorites fills the sidebar lists from both store partitions.
// Labels fall back to the identifier.
func (m *model) loadFavorites() {
	addrRecs, err := m.addrFavs.List()
	if err != nil {
		m.logger.Error("load address favorites", "err", err)
		m.fatalError = "Favorites unavailable: " + err.Error()
	}
	for _, rec := range addrRecs {
		m.favAddresses = append(m.favAddresses, entity.AddressRef{
			Address: rec.Identifier,
			Label:   rec.Label,
			Chain:   rec.Chain,
		})
		m.favSet[favKeyAddress(rec.Identifier)] = true
	}

	txRecs, err := m.txFavs.List()
	if err != nil {
		m.logger.Error("load transaction favorites", "err", err)
		m.fatalError = "Favorites unavailable: " + err.Error()
	}
	for _, rec := range txRecs {
		m.favTransactions = append(m.favTransactions, entity.TransactionRef{
			Hash:  rec.Identifier,
			Label: rec.Label,
			Chain: rec.Chain,
		})
		m.favSet[favKeyTransaction(rec.Identifier)] = true
	}
}

func (m *model) restoreLastQuery() {
	q, ok, err := m.settings.Get(lastQueryKey)
	if err != nil {
		m.logger.Error("read last query", "err", err)
		return
	}
	if ok {
		m.search.SetValue(q)
	}
}

// selectStartupFavorite picks the first favorite, preferring the active
// sidebar tab. With no favorites, nothing is selected and nothing spawns.
func (m *model) selectStartupFavorite() {
	switch {
	case m.navState.SidebarTab == nav.TabAddresses && len(m.favAddresses) > 0:
		m.selected = m.favAddresses[0]
	case m.navState.SidebarTab == nav.TabTransactions && len(m.favTransactions) > 0:
		m.selected = m.favTransactions[0]
	case len(m.favAddresses) > 0:
		m.selected = m.favAddresses[0]
		m.navState.SidebarTab = nav.TabAddresses
	case len(m.favTransactions) > 0:
		m.selected = m.favTransactions[0]
		m.navState.SidebarTab = nav.TabTransactions
	}
}

func favKeyAddress(addr string) string {
	return "a:" + strings.ToLower(addr)
}

func favKeyTransaction(hash string) string {
	return "t:" + hash
}

func favKey(ent entity.Entity) string {
	if ent.Kind() == entity.KindAddress {
		return favKeyAddress(ent.Identifier())
	}
	return favKeyTransaction(ent.Identifier())
}

// chainFor picks the chain alias for an entity, falling back to the
// configured default.
func (m *model) chainFor(ent entity.Entity) string {
	if ent != nil && ent.ChainName() != "" {
		return ent.ChainName()
	}
	return m.cfg.Chain
}

// sidebarLen is the number of entries on the active sidebar tab.
func (m *model) sidebarLen() int {
	if m.navState.SidebarTab == nav.TabTransactions {
		return len(m.favTransactions)
	}
	return len(m.favAddresses)
}

// sidebarEntity returns the entry at idx on the active sidebar tab.
func (m *model) sidebarEntity(idx int) entity.Entity {
	if m.navState.SidebarTab == nav.TabTransactions {
		if idx < 0 || idx >= len(m.favTransactions) {
			return nil
		}
		return m.favTransactions[idx]
	}
	if idx < 0 || idx >= len(m.favAddresses) {
		return nil
	}
	return m.favAddresses[idx]
}

// missingConfig lists the unresolved credential names for the top bar.
func (m *model) missingConfig() []string {
	var missing []string
	if m.etherscanKey == "" {
		missing = append(missing, config.EnvEtherscanAPIKey)
	}
	if m.rpcURL == "" {
		missing = append(missing, config.EnvRPCURL)
	}
	return missing
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusAt = time.Now()
}

// Init implements tea.Model interface and returns initial commands
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, tick()}
	if m.selected != nil {
		cmds = append(cmds, func() tea.Msg { return initSelectionMsg{} })
	}
	return tea.Batch(cmds...)
}
