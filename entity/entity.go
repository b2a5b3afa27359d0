package entity

import (
	"fmt"
	"math/big"
	"strings"
)

// Kind discriminates the two browsable entity types.
type Kind int

const (
	KindAddress Kind = iota
	KindTransaction
)

// Entity is something the app can select and hydrate: an account address
// or a transaction hash, plus enough metadata to label it in the sidebar.
type Entity interface {
	Kind() Kind
	Identifier() string
	DisplayLabel() string
	ChainName() string
}

// AddressRef identifies an account address.
type AddressRef struct {
	Address string
	Label   string
	Chain   string
}

func (a AddressRef) Kind() Kind         { return KindAddress }
func (a AddressRef) Identifier() string { return a.Address }
func (a AddressRef) ChainName() string  { return a.Chain }

func (a AddressRef) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Address
}

// TransactionRef identifies a transaction hash.
type TransactionRef struct {
	Hash  string
	Label string
	Chain string
}

func (t TransactionRef) Kind() Kind         { return KindTransaction }
func (t TransactionRef) Identifier() string { return t.Hash }
func (t TransactionRef) ChainName() string  { return t.Chain }

func (t TransactionRef) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Hash
}

// SameIdentity reports whether two entities refer to the same chain object.
// Addresses compare case-insensitively; transaction hashes compare exactly.
func SameIdentity(a, b Entity) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == KindAddress {
		return strings.EqualFold(a.Identifier(), b.Identifier())
	}
	return a.Identifier() == b.Identifier()
}

// ShortHex shortens a hex identifier for display.
func ShortHex(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

// FormatEth formats a Wei amount as a trimmed decimal ETH string.
func FormatEth(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}
	r := new(big.Rat).SetFrac(new(big.Int).Set(wei), big.NewInt(1e18))
	s := r.FloatString(6)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// AccountOverview is the node-side snapshot of an account.
type AccountOverview struct {
	LatestBlock uint64
	BalanceWei  *big.Int
	Nonce       uint64
	IsContract  bool
}

// InfoLines renders the overview for the address Info tab.
func (o AccountOverview) InfoLines(rpcURL string) []string {
	acct := "Externally Owned Account"
	if o.IsContract {
		acct = "Contract"
	}
	return []string{
		"RPC endpoint: " + rpcURL,
		fmt.Sprintf("Latest block: %d", o.LatestBlock),
		fmt.Sprintf("Balance: %s ETH (%s wei)", FormatEth(o.BalanceWei), weiString(o.BalanceWei)),
		fmt.Sprintf("Transaction count (nonce): %d", o.Nonce),
		"Account type: " + acct,
	}
}

// BalanceLine is the status-bar summary shown once an account loads.
func (o AccountOverview) BalanceLine(addr string) string {
	return fmt.Sprintf("%s holds %s ETH at block %d", ShortHex(addr), FormatEth(o.BalanceWei), o.LatestBlock)
}

func weiString(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return wei.String()
}

// HydratedAddress is the complete result of one address hydration pass.
// TxNotes carries the caption above the table, or the lines explaining
// why no table is available (missing key, empty history, fetch failure);
// Rows is nil in the latter case.
type HydratedAddress struct {
	Identifier string
	InfoLines  []string
	Rows       []AddressTransactionRow
	TxNotes    []string
	StatusLine string
}

// HydratedTransaction is the complete result of one transaction hydration.
type HydratedTransaction struct {
	Identifier  string
	Summary     []string
	Debug       []string
	StorageDiff []string
}
