package entity

import (
	"math/big"
	"strings"
	"testing"
)

func TestShortHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"0x1234", "0x1234"},
		{"0x12345678", "0x12345678"},
		{"0x1234567890abcdef1234567890abcdef12345678", "0x1234…5678"},
	}
	for _, tt := range tests {
		if got := ShortHex(tt.in); got != tt.want {
			t.Errorf("ShortHex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatEth(t *testing.T) {
	eth := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatalf("bad test value %q", s)
		}
		return v
	}
	tests := []struct {
		name string
		wei  *big.Int
		want string
	}{
		{"nil", nil, "0"},
		{"zero", big.NewInt(0), "0"},
		{"one eth", eth("1000000000000000000"), "1"},
		{"fraction", eth("1500000000000000000"), "1.5"},
		{"small", eth("1000000000000"), "0.000001"},
		{"large", eth("123456000000000000000000"), "123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEth(tt.wei); got != tt.want {
				t.Errorf("FormatEth = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSameIdentity(t *testing.T) {
	a := AddressRef{Address: "0xABCDEF1234567890ABCDEF1234567890ABCDEF12"}
	aLower := AddressRef{Address: strings.ToLower(a.Address)}
	tx := TransactionRef{Hash: "0xfeed"}
	txUpper := TransactionRef{Hash: "0xFEED"}

	if !SameIdentity(a, aLower) {
		t.Error("addresses should compare case-insensitively")
	}
	if SameIdentity(tx, txUpper) {
		t.Error("transaction hashes should compare exactly")
	}
	if SameIdentity(a, tx) {
		t.Error("different kinds should never match")
	}
	if !SameIdentity(nil, nil) {
		t.Error("two nil entities are the same")
	}
	if SameIdentity(a, nil) {
		t.Error("nil never matches a real entity")
	}
}

func TestDisplayLabelFallback(t *testing.T) {
	labeled := AddressRef{Address: "0xabc", Label: "Treasury"}
	if labeled.DisplayLabel() != "Treasury" {
		t.Errorf("got %q", labeled.DisplayLabel())
	}
	bare := TransactionRef{Hash: "0xdeadbeef"}
	if bare.DisplayLabel() != "0xdeadbeef" {
		t.Errorf("label should fall back to identifier, got %q", bare.DisplayLabel())
	}
}

func TestNewRow(t *testing.T) {
	const me = "0xAAAA567890abcdef1234567890abcdef1234AAAA"
	const other = "0xBBBB567890abcdef1234567890abcdef1234BBBB"
	oneEth := big.NewInt(0).Mul(big.NewInt(1), big.NewInt(1e18))

	tests := []struct {
		name             string
		tx               RawTransaction
		wantDirection    Direction
		wantCounterparty string
		wantValue        string
		wantBlock        string
		wantStatus       string
	}{
		{
			name:             "outgoing",
			tx:               RawTransaction{From: me, To: other, ValueWei: oneEth, Block: 100},
			wantDirection:    DirectionOutgoing,
			wantCounterparty: ShortHex(other),
			wantValue:        "-1 ETH",
			wantBlock:        "100",
			wantStatus:       "OK",
		},
		{
			name:             "incoming case-insensitive",
			tx:               RawTransaction{From: other, To: strings.ToLower(me), ValueWei: oneEth, Block: 7},
			wantDirection:    DirectionIncoming,
			wantCounterparty: ShortHex(other),
			wantValue:        "+1 ETH",
			wantBlock:        "7",
			wantStatus:       "OK",
		},
		{
			name:             "self transfer",
			tx:               RawTransaction{From: me, To: me, ValueWei: oneEth, Block: 3},
			wantDirection:    DirectionSelfTransfer,
			wantCounterparty: "Self",
			wantValue:        "1 ETH",
			wantBlock:        "3",
			wantStatus:       "OK",
		},
		{
			name:             "contract creation",
			tx:               RawTransaction{From: me, To: "", ValueWei: big.NewInt(0), Block: 9},
			wantDirection:    DirectionOutgoing,
			wantCounterparty: "Contract creation",
			wantValue:        "0 ETH",
			wantBlock:        "9",
			wantStatus:       "OK",
		},
		{
			name:             "interaction",
			tx:               RawTransaction{From: other, To: other, ValueWei: oneEth, Block: 5},
			wantDirection:    DirectionInteraction,
			wantCounterparty: ShortHex(other),
			wantValue:        "1 ETH",
			wantBlock:        "5",
			wantStatus:       "OK",
		},
		{
			name:             "failed pending",
			tx:               RawTransaction{From: other, To: me, ValueWei: big.NewInt(0), Block: 0, Failed: true},
			wantDirection:    DirectionIncoming,
			wantCounterparty: ShortHex(other),
			wantValue:        "0 ETH",
			wantBlock:        "",
			wantStatus:       "Failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := NewRow(me, tt.tx)
			if row.Direction != tt.wantDirection {
				t.Errorf("direction = %v, want %v", row.Direction, tt.wantDirection)
			}
			if row.Counterparty != tt.wantCounterparty {
				t.Errorf("counterparty = %q, want %q", row.Counterparty, tt.wantCounterparty)
			}
			if row.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", row.Value, tt.wantValue)
			}
			if row.Block != tt.wantBlock {
				t.Errorf("block = %q, want %q", row.Block, tt.wantBlock)
			}
			if row.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", row.Status, tt.wantStatus)
			}
		})
	}
}

func TestSummaryLines(t *testing.T) {
	t.Run("not cached", func(t *testing.T) {
		lines := SummaryLines("0xhash", nil)
		if lines[0] != "Hash: 0xhash" {
			t.Errorf("first line = %q", lines[0])
		}
		for _, l := range lines[1:] {
			if !strings.HasSuffix(l, "Not cached") {
				t.Errorf("expected placeholder line, got %q", l)
			}
		}
	})
	t.Run("cached", func(t *testing.T) {
		row := &AddressTransactionRow{
			Status:   "OK",
			From:     "0xfrom",
			To:       "",
			ValueWei: big.NewInt(0),
			Block:    "",
			Input:    "0xdeadbeef",
		}
		lines := SummaryLines("0xhash", row)
		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, "To: Contract creation") {
			t.Errorf("missing contract creation marker:\n%s", joined)
		}
		if !strings.Contains(joined, "Block: Pending") {
			t.Errorf("missing pending block:\n%s", joined)
		}
		if !strings.Contains(joined, "(4 bytes)") {
			t.Errorf("missing calldata size:\n%s", joined)
		}
	})
}

func TestAccountOverviewInfoLines(t *testing.T) {
	ov := AccountOverview{
		LatestBlock: 42,
		BalanceWei:  big.NewInt(1e18),
		Nonce:       3,
		IsContract:  false,
	}
	lines := ov.InfoLines("http://localhost:8545")
	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"RPC endpoint: http://localhost:8545",
		"Latest block: 42",
		"Balance: 1 ETH (1000000000000000000 wei)",
		"Transaction count (nonce): 3",
		"Account type: Externally Owned Account",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in:\n%s", want, joined)
		}
	}

	ov.IsContract = true
	lines = ov.InfoLines("http://localhost:8545")
	if !strings.Contains(strings.Join(lines, "\n"), "Account type: Contract") {
		t.Error("contract flag should change account type line")
	}
}
