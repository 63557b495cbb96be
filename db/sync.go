// ABOUTME: Database operations for the sync_state table
// ABOUTME: Records when the local store was last published to a remote service and how it went
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Sync statuses.
const (
	SyncIdle    = "idle"
	SyncRunning = "syncing"
	SyncError   = "error"
)

// SyncState is the last known sync outcome for a remote service.
type SyncState struct {
	Service      string
	LastSyncTime *time.Time
	RecordCount  int
	Status       string
	ErrorMessage *string
	UpdatedAt    time.Time
}

// GetSyncState returns nil, nil when service has never synced.
func GetSyncState(db *sql.DB, service string) (*SyncState, error) {
	var state SyncState
	var lastSyncTime sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT service, last_sync_time, record_count, status, error_message, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(
		&state.Service,
		&lastSyncTime,
		&state.RecordCount,
		&state.Status,
		&errorMessage,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	state.LastSyncTime = nullTime(lastSyncTime)
	if errorMessage.Valid {
		state.ErrorMessage = &errorMessage.String
	}
	return &state, nil
}

// MarkSyncStarted flags service as syncing.
func MarkSyncStarted(db *sql.DB, service string, at time.Time) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, updated_at)
		VALUES (?, 'syncing', ?)
		ON CONFLICT(service) DO UPDATE SET
			status = 'syncing',
			error_message = NULL,
			updated_at = excluded.updated_at
	`, service, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// RecordSyncResult stores the outcome of a sync. A nil syncErr marks success.
func RecordSyncResult(db *sql.DB, service string, records int, syncErr error, at time.Time) error {
	var err error
	if syncErr != nil {
		_, err = db.Exec(`
			INSERT INTO sync_state (service, status, error_message, updated_at)
			VALUES (?, 'error', ?, ?)
			ON CONFLICT(service) DO UPDATE SET
				status = 'error',
				error_message = excluded.error_message,
				updated_at = excluded.updated_at
		`, service, syncErr.Error(), at.UTC())
	} else {
		_, err = db.Exec(`
			INSERT INTO sync_state (service, last_sync_time, record_count, status, updated_at)
			VALUES (?, ?, ?, 'idle', ?)
			ON CONFLICT(service) DO UPDATE SET
				last_sync_time = excluded.last_sync_time,
				record_count = excluded.record_count,
				status = 'idle',
				error_message = NULL,
				updated_at = excluded.updated_at
		`, service, at.UTC(), records, at.UTC())
	}
	if err != nil {
		return fmt.Errorf("failed to record sync result: %w", err)
	}
	return nil
}
