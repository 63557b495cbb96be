// ABOUTME: CLI commands for Charm KV sync operations
// ABOUTME: Links devices, pushes the local SQLite pipeline to charm and manages auto-sync

package charm

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dealflow/db"
)

// SyncService is the sync_state key for charm pushes.
const SyncService = "charm"

// SyncLinkCommand links this device to a Charm account. Charm authenticates with SSH keys.
func SyncLinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	host := fs.String("host", "", "Charm server host (default: "+DefaultCharmHost+")")
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *host != "" {
		cfg.Host = *host
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", cfg.Host)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	if id, err := c.ID(); err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)

	return nil
}

// SyncStatusCommand shows charm settings and the last push recorded in the local database.
func SyncStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Charm Sync Status")
	fmt.Println("─────────────────")
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)

	state, err := db.GetSyncState(database, SyncService)
	if err != nil {
		return err
	}
	switch {
	case state == nil:
		fmt.Println("Last push: never")
	case state.Status == db.SyncError && state.ErrorMessage != nil:
		fmt.Printf("Last push: failed (%s)\n", *state.ErrorMessage)
	case state.LastSyncTime != nil:
		fmt.Printf("Last push: %s (%d records)\n", state.LastSyncTime.Local().Format(time.RFC1123), state.RecordCount)
	}

	c, err := GetClient()
	if err != nil {
		fmt.Println("\nStatus: Not connected")
		return nil //nolint:nilerr // not connected is a valid state
	}
	if id, err := c.ID(); err != nil {
		fmt.Println("\nStatus: Not connected")
	} else {
		fmt.Println("\nStatus: Connected to Charm Cloud")
		fmt.Printf("ID:        %s\n", id)
	}
	if keys, err := c.Keys(); err == nil {
		fmt.Printf("Keys:      %d\n", len(keys))
	}

	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println("✓ Synced")
	return nil
}

// SyncPushCommand publishes the local SQLite pipeline to charm.
func SyncPushCommand(ctx context.Context, database *sql.DB, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("sync push", flag.ExitOnError)
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	n, err := Push(ctx, c, database, logger, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("✓ Pushed %d records\n", n)
	return nil
}

// Push copies the local snapshot into c and records the outcome in sync_state.
func Push(ctx context.Context, c *Client, database *sql.DB, logger *zap.Logger, now time.Time) (int, error) {
	if err := db.MarkSyncStarted(database, SyncService, now); err != nil {
		return 0, err
	}

	snap, err := db.LoadSnapshot(database)
	if err != nil {
		return 0, fmt.Errorf("failed to load snapshot: %w", err)
	}

	logger.Info("publishing snapshot",
		zap.Int("contacts", len(snap.Contacts)),
		zap.Int("deals", len(snap.Deals)),
		zap.Int("activities", len(snap.Activities)))

	n, pubErr := c.Publish(ctx, snap)
	if err := db.RecordSyncResult(database, SyncService, n, pubErr, now); err != nil {
		logger.Warn("failed to record sync result", zap.Error(err))
	}
	if pubErr != nil {
		logger.Error("publish failed", zap.Error(pubErr))
		return 0, fmt.Errorf("publish failed: %w", pubErr)
	}

	logger.Info("publish complete", zap.Int("records", n))
	return n, nil
}

// SyncWipeCommand deletes every key in the charm store.
func SyncWipeCommand(args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This will delete ALL charm data for dealflow!")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  dealflow sync wipe --confirm")
		return nil
	}

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}

	fmt.Println("✓ All data wiped")
	fmt.Println("The local SQLite database is untouched.")
	return nil
}

// SetAutoSyncCommand enables or disables auto-sync.
func SetAutoSyncCommand(args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	_ = fs.Parse(args)

	if *enable == *disable {
		fmt.Println("Usage: dealflow sync auto --enable|--disable")
		return nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to update auto-sync: %w", err)
	}

	if *enable {
		fmt.Println("✓ Auto-sync enabled")
	} else {
		fmt.Println("✓ Auto-sync disabled")
	}
	return nil
}
