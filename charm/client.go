// ABOUTME: Charm KV client wrapper with automatic sync support
// ABOUTME: Holds the hosted record store behind a small key-value interface shared with tests

package charm

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// kvStore is the subset of charm's kv.KV the client relies on.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client wraps charm KV with config and sync helpers.
type Client struct {
	store  kvStore
	config *Config
	remote bool
	mu     sync.RWMutex
}

// InitClient initializes the global charm client (thread-safe, only runs once).
func InitClient() error {
	clientOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			clientErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		globalClient, clientErr = NewClient(cfg)
	})
	return clientErr
}

// GetClient returns the global client, initializing if needed.
func GetClient() (*Client, error) {
	if err := InitClient(); err != nil {
		return nil, err
	}
	if globalClient == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	return globalClient, nil
}

// NewClient opens the charm KV database for this app.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// charm reads its server from the environment
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{store: db, config: cfg, remote: true}

	// pull remote changes before the first read
	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// Close is a no-op; charm/kv releases badger on process exit.
func (c *Client) Close() error {
	return nil
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	if !c.remote {
		return "local-test", nil
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether a charm user ID can be resolved.
func (c *Client) IsConnected() bool {
	_, err := c.ID()
	return err == nil
}

// Sync performs a manual sync with the charm server.
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Sync()
}

func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Get(key)
}

// Set stores a value and syncs if enabled.
func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(key, value); err != nil {
		return err
	}
	// sync under the lock so writes and syncs never interleave
	if c.config.AutoSync {
		_ = c.store.Sync()
	}
	return nil
}

// Delete removes a key and syncs if enabled.
func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(key); err != nil {
		return err
	}
	if c.config.AutoSync {
		_ = c.store.Sync()
	}
	return nil
}

// Keys returns every key in sorted order.
func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.store.Keys()
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys, nil
}

// KeysWithPrefix returns the sorted keys starting with prefix.
func (c *Client) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	allKeys, err := c.Keys()
	if err != nil {
		return nil, err
	}

	var matched [][]byte
	for _, k := range allKeys {
		if bytes.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// Reset wipes all data from the KV store.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Reset()
}

// batch runs fn with the lock held and syncs once afterwards when auto-sync is on.
func (c *Client) batch(fn func(s kvStore) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.store); err != nil {
		return err
	}
	if c.config.AutoSync {
		return c.store.Sync()
	}
	return nil
}
