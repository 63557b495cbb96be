// ABOUTME: Migration utility that copies a local SQLite pipeline into the Charm KV store
// ABOUTME: Provides dry-run and a JSON backup of the remote records before they are replaced

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harperreed/dealflow/charm"
	"github.com/harperreed/dealflow/config"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
)

// target is the remote side of a migration.
type target interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Publish(ctx context.Context, snap *models.Snapshot) (int, error)
}

type options struct {
	dryRun     bool
	backupPath string
}

func main() {
	dbPath := flag.String("db", config.DefaultDBPath(), "Path to the SQLite database")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Save the current remote records before replacing them")
	flag.Parse()

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("Error: database file does not exist: %s", *dbPath)
	}

	database, err := db.OpenDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	snap, err := db.LoadSnapshot(database)
	if err != nil {
		log.Fatalf("Failed to load database: %v", err)
	}

	client, err := charm.GetClient()
	if err != nil {
		log.Fatalf("Failed to connect to charm: %v", err)
	}

	opts := options{dryRun: *dryRun}
	if *backup {
		opts.backupPath = fmt.Sprintf("%s.charm-backup.%s.json", *dbPath, time.Now().Format("20060102-150405"))
	}

	if err := migrate(context.Background(), snap, client, opts); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}

func migrate(ctx context.Context, snap *models.Snapshot, dst target, opts options) error {
	log.Printf("Local records: %d contacts, %d deals, %d activities, %d campaigns, %d revenue periods",
		len(snap.Contacts), len(snap.Deals), len(snap.Activities), len(snap.Campaigns), len(snap.Revenue))

	existing, err := dst.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read remote records: %w", err)
	}
	remote := recordCount(existing)

	if opts.dryRun {
		log.Printf("[DRY RUN] Would perform the following actions:")
		if remote > 0 {
			if opts.backupPath != "" {
				log.Printf("[DRY RUN] - Back up %d remote records to %s", remote, opts.backupPath)
			}
			log.Printf("[DRY RUN] - Replace %d remote records", remote)
		}
		log.Printf("[DRY RUN] - Publish %d records", recordCount(snap))
		return nil
	}

	if remote > 0 && opts.backupPath != "" {
		log.Printf("Creating backup: %s", opts.backupPath)
		if err := writeBackup(opts.backupPath, existing); err != nil {
			return err
		}
		log.Printf("Backup created successfully")
	}

	n, err := dst.Publish(ctx, snap)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	log.Printf("Published %d records", n)
	return nil
}

func writeBackup(path string, snap *models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

func recordCount(snap *models.Snapshot) int {
	if snap == nil {
		return 0
	}
	return len(snap.Contacts) + len(snap.Deals) + len(snap.Activities) + len(snap.Campaigns) + len(snap.Revenue)
}
