package scan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.SetBaseURL(srv.URL)
	return c
}

func TestResolveChain(t *testing.T) {
	tests := []struct {
		name      string
		wantID    int64
		wantLabel string
		wantOK    bool
	}{
		{"mainnet", 1, "Etherscan", true},
		{"ethereum", 1, "Etherscan", true},
		{"Arbitrum", 42161, "Arbiscan", true},
		{"base", 8453, "Basescan", true},
		{"sepolia", 11155111, "Etherscan (Sepolia)", true},
		{"dogechain", 0, "", false},
	}
	for _, tt := range tests {
		c, ok := ResolveChain(tt.name)
		if ok != tt.wantOK {
			t.Errorf("ResolveChain(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && (c.ID != tt.wantID || c.Label != tt.wantLabel) {
			t.Errorf("ResolveChain(%q) = %+v", tt.name, c)
		}
	}
}

func TestRecentTransactionsSuccess(t *testing.T) {
	var gotQuery map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"chainid": q.Get("chainid"),
			"module":  q.Get("module"),
			"action":  q.Get("action"),
			"address": q.Get("address"),
			"offset":  q.Get("offset"),
			"sort":    q.Get("sort"),
			"apikey":  q.Get("apikey"),
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"hash":"0xh1","from":"0xa","to":"0xb","value":"1000000000000000000","blockNumber":"120","isError":"0","txreceipt_status":"1","input":"0x"},
			{"hash":"0xh2","from":"0xb","to":"0xa","value":"0","blockNumber":"119","isError":"1","txreceipt_status":"0","input":"0xdeadbeef"}
		]}`))
	})

	rows, src, err := c.RecentTransactions(context.Background(), "mainnet", "0xa", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Label != "Etherscan" || src.Version != "v2" {
		t.Errorf("source = %+v", src)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Hash != "0xh1" || rows[0].Block != 120 || rows[0].Failed {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if !rows[1].Failed {
		t.Error("isError=1 should mark the row failed")
	}
	if rows[0].ValueWei.String() != "1000000000000000000" {
		t.Errorf("value = %s", rows[0].ValueWei)
	}

	want := map[string]string{
		"chainid": "1",
		"module":  "account",
		"action":  "txlist",
		"address": "0xa",
		"offset":  "25",
		"sort":    "desc",
		"apikey":  "test-key",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestRecentTransactionsEmptyHistory(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	})
	rows, _, err := c.RecentTransactions(context.Background(), "base", "0xa", 25)
	if err != nil {
		t.Fatalf("empty history should not be an error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}

func TestRecentTransactionsAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`))
	})
	_, _, err := c.RecentTransactions(context.Background(), "mainnet", "0xa", 25)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %T: %v", err, err)
	}
	if apiErr.Reason != "Invalid API Key" {
		t.Errorf("reason = %q", apiErr.Reason)
	}
}

func TestRecentTransactionsMissingKey(t *testing.T) {
	c := NewClient("")
	_, _, err := c.RecentTransactions(context.Background(), "mainnet", "0xa", 25)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("want ErrMissingAPIKey, got %v", err)
	}
}

func TestRecentTransactionsUnsupportedChain(t *testing.T) {
	c := NewClient("key")
	_, _, err := c.RecentTransactions(context.Background(), "dogechain", "0xa", 25)
	var chainErr *UnsupportedChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("want UnsupportedChainError, got %v", err)
	}
	if chainErr.Chain != "dogechain" {
		t.Errorf("chain = %q", chainErr.Chain)
	}
}

func TestRecentTransactionsHTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, _, err := c.RecentTransactions(context.Background(), "mainnet", "0xa", 25)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("want TransportError, got %v", err)
	}
}

func TestRecentTransactionsDecodeError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, _, err := c.RecentTransactions(context.Background(), "mainnet", "0xa", 25)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("want DecodeError, got %v", err)
	}
}

func TestRecentTransactionsClampsToLimit(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"hash":"0x1","blockNumber":"3"},
			{"hash":"0x2","blockNumber":"2"},
			{"hash":"0x3","blockNumber":"1"}
		]}`))
	})
	rows, _, err := c.RecentTransactions(context.Background(), "mainnet", "0xa", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}
