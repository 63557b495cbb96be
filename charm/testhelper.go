// ABOUTME: Test utilities for creating isolated charm clients
// ABOUTME: Backs the client with a temporary BadgerDB so tests never reach a charm server

package charm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v3"
)

// testKV implements kvStore over a local BadgerDB.
type testKV struct {
	db *badger.DB
}

func (t *testKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (t *testKV) Set(key, value []byte) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (t *testKV) Delete(key []byte) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (t *testKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (t *testKV) Sync() error { return nil }

func (t *testKV) Reset() error { return t.db.DropAll() }

// NewTestClient creates a charm client backed by BadgerDB in a temporary directory.
// The returned cleanup function should be deferred.
func NewTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "dealflow-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dataDir := filepath.Join(tmpDir, AppName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create data dir: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(dataDir).WithLogger(nil))
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to open badger: %v", err)
	}

	c := &Client{
		store:  &testKV{db: db},
		config: &Config{Host: "localhost", AutoSync: false},
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Warning: failed to remove temp directory %s: %v", tmpDir, err)
		}
	}

	return c, cleanup
}
