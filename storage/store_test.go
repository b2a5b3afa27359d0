package storage

import (
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFavoritesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.AddressFavorites()

	recs, err := repo.List()
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty partition, got %d records", len(recs))
	}

	rec := FavoriteRecord{
		Label:      "Treasury",
		Identifier: "0xaaaa567890abcdef1234567890abcdef1234aaaa",
		Chain:      "mainnet",
	}
	if err := repo.Upsert(rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	recs, err = repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0] != rec {
		t.Fatalf("got %+v, want %+v", recs[0], rec)
	}
}

func TestFavoritesIdentifierComesFromKey(t *testing.T) {
	s := openTestStore(t)
	repo := s.TransactionFavorites()

	if err := repo.Upsert(FavoriteRecord{Identifier: "0xfeed", Chain: "sepolia"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	recs, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].Identifier != "0xfeed" {
		t.Fatalf("identifier not restored from key: %+v", recs)
	}
}

func TestFavoritesRemove(t *testing.T) {
	s := openTestStore(t)
	repo := s.AddressFavorites()

	if err := repo.Remove("0xmissing"); err != nil {
		t.Fatalf("removing a missing record should be a no-op, got %v", err)
	}

	if err := repo.Upsert(FavoriteRecord{Identifier: "0xabc", Chain: "mainnet"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Remove("0xabc"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	recs, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("record not removed: %+v", recs)
	}
}

func TestPartitionsAreIsolated(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddressFavorites().Upsert(FavoriteRecord{Identifier: "0xabc"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	recs, err := s.TransactionFavorites().List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("address favorite leaked into transaction partition: %+v", recs)
	}
	if err := s.Settings().Put("0xabc", "other"); err != nil {
		t.Fatalf("put: %v", err)
	}
	recs, err = s.AddressFavorites().List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("settings write disturbed favorites: %+v", recs)
	}
}

func TestKVRepository(t *testing.T) {
	s := openTestStore(t)
	settings := s.Settings()

	_, ok, err := settings.Get("top:last_query")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("missing key reported present")
	}

	if err := settings.Put("top:last_query", "0xdead"); err != nil {
		t.Fatalf("put: %v", err)
	}
	val, ok, err := settings.Get("top:last_query")
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if val != "0xdead" {
		t.Fatalf("got %q", val)
	}

	if err := settings.Delete("top:last_query"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, ok, err = settings.Get("top:last_query")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if ok {
		t.Fatal("key survived delete")
	}
}

func TestSecretsSeparateFromSettings(t *testing.T) {
	s := openTestStore(t)
	if err := s.Secrets().Put("etherscan_api_key", "k"); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, ok, err := s.Settings().Get("etherscan_api_key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("secret visible through settings partition")
	}
}
