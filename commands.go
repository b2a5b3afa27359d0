package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"chainscope-tui/entity"
	"chainscope-tui/rpc"
	"chainscope-tui/scan"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mdp/qrterminal/v3"
)

// Timeouts for the two phases of an address hydration task.
const (
	overviewTimeout = 10 * time.Second
	fallbackTimeout = 4 * time.Second
)

// Simulated decode latencies, matching the feel of remote lookups.
const (
	searchLatency      = 400 * time.Millisecond
	transactionLatency = 350 * time.Millisecond
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// hydrateAddressCmd captures everything the background task needs so the
// closure never touches the model. It posts exactly one message.
func (m *model) hydrateAddressCmd(addr entity.AddressRef) tea.Cmd {
	rpcURL := m.rpcURL
	apiKey := m.etherscanKey
	chain := m.chainFor(addr)
	limit := m.cfg.TxLimit
	return func() tea.Msg {
		return addressHydratedMsg{data: hydrateAddress(addr.Address, rpcURL, apiKey, chain, limit)}
	}
}

// hydrateAddress performs both fetch phases and assembles the result.
// Every failure becomes renderable note lines; the task never errors out.
func hydrateAddress(address, rpcURL, apiKey, chain string, limit int) entity.HydratedAddress {
	data := entity.HydratedAddress{Identifier: address}
	data.InfoLines, data.StatusLine = fetchAccountInfo(address, rpcURL)

	client := scan.NewClient(apiKey)
	rows, src, err := client.RecentTransactions(context.Background(), chain, address, limit)
	if err != nil {
		data.TxNotes = txNotesForError(err, chain)
		return data
	}
	if len(rows) == 0 {
		data.TxNotes = []string{fmt.Sprintf("No transactions available via %s (%s).", src.Label, src.Version)}
		return data
	}
	data.TxNotes = []string{txCaption(len(rows), src, limit)}
	data.Rows = make([]entity.AddressTransactionRow, 0, len(rows))
	for _, tx := range rows {
		data.Rows = append(data.Rows, entity.NewRow(address, tx))
	}
	return data
}

// fetchAccountInfo runs the primary overview fetch, degrading to a
// latest-block probe when the node cannot answer in time.
func fetchAccountInfo(address, rpcURL string) (lines []string, status string) {
	if rpcURL == "" {
		note := "Configure an RPC endpoint to load account data."
		return []string{note}, note
	}
	if !common.IsHexAddress(address) {
		note := "Address is not a valid hexadecimal string"
		return []string{note}, note
	}

	result := rpc.ConnectWithTimeout(rpcURL, overviewTimeout)
	if result.Error != nil {
		note := fmt.Sprintf("Failed to load account data: %v", result.Error)
		return []string{note}, note
	}
	defer result.Client.Close()

	ov, err := result.Client.AccountOverviewWithTimeout(common.HexToAddress(address), overviewTimeout)
	if err == nil {
		return ov.InfoLines(rpcURL), ov.BalanceLine(address)
	}

	var note string
	if errors.Is(err, context.DeadlineExceeded) {
		note = fmt.Sprintf("Account query to %s timed out", rpcURL)
	} else {
		note = fmt.Sprintf("Failed to load account data: %v", err)
	}
	lines = []string{note}

	if block, berr := result.Client.LatestBlockWithTimeout(fallbackTimeout); berr == nil {
		lines = append(lines, fmt.Sprintf("Latest block observed: %d", block))
	}
	return lines, note
}

// txNotesForError maps each fetch error class to user-legible lines.
func txNotesForError(err error, chain string) []string {
	var chainErr *scan.UnsupportedChainError
	switch {
	case errors.Is(err, scan.ErrMissingAPIKey):
		return []string{
			"Add an Etherscan API key to load recent transactions.",
			"Open Settings (s) and enter ETHERSCAN_API_KEY.",
		}
	case errors.As(err, &chainErr):
		return []string{fmt.Sprintf("No Etherscan-compatible explorer configured for chain %s.", chainErr.Chain)}
	default:
		return []string{fmt.Sprintf("Failed to load transactions: %v", err)}
	}
}

func txCaption(n int, src scan.Source, limit int) string {
	return fmt.Sprintf("Latest %d transaction(s) via %s (%s), newest first (max %d).", n, src.Label, src.Version, limit)
}

// hydrateTransactionCmd builds a transaction view from the preview cache
// snapshot taken at spawn time. It posts exactly one message.
func (m *model) hydrateTransactionCmd(txn entity.TransactionRef) tea.Cmd {
	var preview *entity.AddressTransactionRow
	if row, ok := m.previewCache[txn.Hash]; ok {
		copied := row
		preview = &copied
	}
	return func() tea.Msg {
		time.Sleep(transactionLatency)
		return transactionHydratedMsg{data: hydrateTransaction(txn.Hash, preview)}
	}
}

func hydrateTransaction(hash string, preview *entity.AddressTransactionRow) entity.HydratedTransaction {
	return entity.HydratedTransaction{
		Identifier: hash,
		Summary:    entity.SummaryLines(hash, preview),
		Debug:      []string{"Trace data unavailable. Configure a debug-capable RPC endpoint."},
		StorageDiff: []string{
			"Storage diff requires a debugger export.",
		},
	}
}

var hexRunRe = regexp.MustCompile("^[0-9a-fA-F]+$")

// decodeQuery turns a raw search query into an entity reference.
// 40 hex characters make an address, 64 make a transaction hash.
func decodeQuery(query, chain string) (entity.Entity, error) {
	trimmed := strings.TrimSpace(query)
	body := strings.TrimPrefix(trimmed, "0x")
	if !hexRunRe.MatchString(body) {
		return nil, fmt.Errorf("query is not a hexadecimal string")
	}
	switch len(body) {
	case 40:
		addr := "0x" + body
		return entity.AddressRef{
			Address: addr,
			Label:   "Address " + entity.ShortHex(addr),
			Chain:   chain,
		}, nil
	case 64:
		hash := "0x" + body
		return entity.TransactionRef{
			Hash:  hash,
			Label: "Txn " + entity.ShortHex(hash),
			Chain: chain,
		}, nil
	default:
		return nil, fmt.Errorf("expected 40 hex characters for an address or 64 for a transaction hash")
	}
}

// resolveSearchCmd decodes a query off the main loop. The query string
// rides along so stale results can be dropped.
func resolveSearchCmd(query, chain string) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(searchLatency)
		ent, err := decodeQuery(query, chain)
		return searchResolvedMsg{query: query, ent: ent, err: err}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		return clipboardCopiedMsg{text: text, err: err}
	}
}

// tick schedules the next housekeeping tick
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{at: t}
	})
}

// renderQR renders an identifier as a half-block terminal QR code
func renderQR(text string) string {
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(text, qrterminal.L, &buf)
	return buf.String()
}
