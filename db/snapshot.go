// ABOUTME: Loads every record collection into an in-memory snapshot
// ABOUTME: Reads inside one transaction so all collections reflect the same moment
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/dealflow/models"
)

// LoadSnapshot reads contacts, deals, activities, campaigns and revenue.
func LoadSnapshot(db *sql.DB) (*models.Snapshot, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var snap models.Snapshot
	if snap.Contacts, err = listContacts(tx); err != nil {
		return nil, err
	}
	if snap.Deals, err = listDeals(tx); err != nil {
		return nil, err
	}
	if snap.Activities, err = listActivities(tx); err != nil {
		return nil, err
	}
	if snap.Campaigns, err = listCampaigns(tx); err != nil {
		return nil, err
	}
	if snap.Revenue, err = listRevenue(tx); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Counts returns the number of rows per record table.
func Counts(ctx context.Context, db *sql.DB) (map[string]int, error) {
	out := make(map[string]int, 5)
	for _, table := range []string{"contacts", "deals", "activities", "campaigns", "revenue"} {
		var n int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
