// Package scan fetches account transaction history from an Etherscan v2
// compatible explorer API.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"chainscope-tui/entity"
)

// DefaultBaseURL is the Etherscan v2 multi-chain endpoint.
const DefaultBaseURL = "https://api.etherscan.io/v2/api"

// ErrMissingAPIKey means no API key is configured; the caller should
// point the user at the secrets form rather than retry.
var ErrMissingAPIKey = errors.New("explorer api key not configured")

// UnsupportedChainError means the chain alias has no known explorer.
type UnsupportedChainError struct {
	Chain string
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("no explorer configured for chain %q", e.Chain)
}

// TransportError wraps HTTP-level failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "explorer request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps response-shape failures.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "explorer response malformed: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// APIError carries a rejection reason reported by the explorer itself.
type APIError struct {
	Reason string
}

func (e *APIError) Error() string { return "explorer rejected request: " + e.Reason }

// Chain maps an alias to an explorer chain id and human label.
type Chain struct {
	ID    int64
	Label string
}

var chains = map[string]Chain{
	"mainnet":  {ID: 1, Label: "Etherscan"},
	"ethereum": {ID: 1, Label: "Etherscan"},
	"arbitrum": {ID: 42161, Label: "Arbiscan"},
	"base":     {ID: 8453, Label: "Basescan"},
	"sepolia":  {ID: 11155111, Label: "Etherscan (Sepolia)"},
}

// ResolveChain looks up a chain alias, case-insensitively.
func ResolveChain(name string) (Chain, bool) {
	c, ok := chains[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Source names where a transaction list came from, for display.
type Source struct {
	Label   string
	Version string
}

// Client queries the explorer API.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient builds a client for the public explorer endpoint.
func NewClient(apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(15 * time.Second),
		apiKey: apiKey,
	}
}

// SetBaseURL redirects the client, used against local test servers.
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

type listEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type txRecord struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	BlockNumber     string `json:"blockNumber"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
	Input           string `json:"input"`
}

// RecentTransactions returns up to limit transactions for address on the
// named chain, newest first. An account with no history returns an empty
// slice and no error.
func (c *Client) RecentTransactions(ctx context.Context, chainName, address string, limit int) ([]entity.RawTransaction, Source, error) {
	if c.apiKey == "" {
		return nil, Source{}, ErrMissingAPIKey
	}
	chain, ok := ResolveChain(chainName)
	if !ok {
		return nil, Source{}, &UnsupportedChainError{Chain: chainName}
	}
	src := Source{Label: chain.Label, Version: "v2"}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"chainid":    strconv.FormatInt(chain.ID, 10),
			"module":     "account",
			"action":     "txlist",
			"address":    address,
			"startblock": "0",
			"endblock":   "999999999",
			"page":       "1",
			"offset":     strconv.Itoa(limit),
			"sort":       "desc",
			"apikey":     c.apiKey,
		}).
		Get("")
	if err != nil {
		return nil, src, &TransportError{Err: err}
	}
	if resp.IsError() {
		return nil, src, &TransportError{Err: fmt.Errorf("http status %s", resp.Status())}
	}

	var env listEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, src, &DecodeError{Err: err}
	}

	switch env.Status {
	case "1":
		rows, err := decodeRecords(env.Result, limit)
		if err != nil {
			return nil, src, err
		}
		return rows, src, nil
	default:
		if env.Message == "No transactions found" {
			return nil, src, nil
		}
		// The v2 API reports rejection reasons either as a bare string
		// result or, occasionally, as a record array with the message.
		var reason string
		if err := json.Unmarshal(env.Result, &reason); err == nil {
			return nil, src, &APIError{Reason: reason}
		}
		if rows, err := decodeRecords(env.Result, limit); err == nil {
			return rows, src, nil
		}
		return nil, src, &APIError{Reason: env.Message}
	}
}

func decodeRecords(raw json.RawMessage, limit int) ([]entity.RawTransaction, error) {
	var records []txRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]entity.RawTransaction, 0, len(records))
	for _, r := range records {
		out = append(out, r.toRaw())
	}
	return out, nil
}

func (r txRecord) toRaw() entity.RawTransaction {
	value := new(big.Int)
	if r.Value != "" {
		if _, ok := value.SetString(r.Value, 10); !ok {
			value = big.NewInt(0)
		}
	}
	block, _ := strconv.ParseUint(r.BlockNumber, 10, 64)
	return entity.RawTransaction{
		Hash:     r.Hash,
		From:     r.From,
		To:       r.To,
		ValueWei: value,
		Block:    block,
		Failed:   r.IsError == "1" || r.TxReceiptStatus == "0",
		Input:    r.Input,
	}
}
