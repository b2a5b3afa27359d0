// Package storage persists favorites, settings and secrets in a local
// Badger key-value store. Logical partitions share one database through
// key prefixes.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger"
)

const (
	partitionAddressFavorites     = "favorites_addresses"
	partitionTransactionFavorites = "favorites_transactions"
	partitionSettings             = "settings"
	partitionSecrets              = "secrets"
)

// Store wraps the Badger database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func partitionKey(partition, key string) []byte {
	return []byte(partition + "/" + key)
}

func (s *Store) get(partition, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(partitionKey(partition, key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s/%s: %w", partition, key, err)
	}
	return out, true, nil
}

func (s *Store) put(partition, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(partitionKey(partition, key), value)
	})
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", partition, key, err)
	}
	return nil
}

func (s *Store) delete(partition, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(partitionKey(partition, key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", partition, key, err)
	}
	return nil
}

// scan visits every key/value in a partition in key order.
func (s *Store) scan(partition string, visit func(key string, value []byte) error) error {
	prefix := []byte(partition + "/")
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := visit(string(item.Key()[len(prefix):]), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// FavoriteRecord is one pinned entry. Identifier doubles as the key,
// so it is filled from the key on load rather than trusted from the value.
type FavoriteRecord struct {
	Label      string `json:"label,omitempty"`
	Identifier string `json:"identifier"`
	Chain      string `json:"chain"`
}

// FavoritesRepository stores favorite records of one entity kind.
type FavoritesRepository struct {
	store     *Store
	partition string
}

// AddressFavorites returns the address favorites partition.
func (s *Store) AddressFavorites() FavoritesRepository {
	return FavoritesRepository{store: s, partition: partitionAddressFavorites}
}

// TransactionFavorites returns the transaction favorites partition.
func (s *Store) TransactionFavorites() FavoritesRepository {
	return FavoritesRepository{store: s, partition: partitionTransactionFavorites}
}

// List returns every record in the partition, key order.
func (r FavoritesRepository) List() ([]FavoriteRecord, error) {
	var out []FavoriteRecord
	err := r.store.scan(r.partition, func(key string, value []byte) error {
		var rec FavoriteRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode favorite %s: %w", key, err)
		}
		rec.Identifier = key
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes a record, keyed by its identifier.
func (r FavoritesRepository) Upsert(rec FavoriteRecord) error {
	if rec.Identifier == "" {
		return fmt.Errorf("favorite record needs an identifier")
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode favorite %s: %w", rec.Identifier, err)
	}
	return r.store.put(r.partition, rec.Identifier, buf)
}

// Remove deletes the record for identifier. Removing a missing record
// is not an error.
func (r FavoritesRepository) Remove(identifier string) error {
	return r.store.delete(r.partition, identifier)
}

// KVRepository is a flat string map partition (settings, secrets).
type KVRepository struct {
	store     *Store
	partition string
}

// Settings returns the settings partition.
func (s *Store) Settings() KVRepository {
	return KVRepository{store: s, partition: partitionSettings}
}

// Secrets returns the secrets partition.
func (s *Store) Secrets() KVRepository {
	return KVRepository{store: s, partition: partitionSecrets}
}

// Get returns the value for key and whether it was present.
func (r KVRepository) Get(key string) (string, bool, error) {
	val, ok, err := r.store.get(r.partition, key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(val), true, nil
}

// Put writes key=value.
func (r KVRepository) Put(key, value string) error {
	return r.store.put(r.partition, key, []byte(value))
}

// Delete removes key. Deleting a missing key is not an error.
func (r KVRepository) Delete(key string) error {
	return r.store.delete(r.partition, key)
}
