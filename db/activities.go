// ABOUTME: Activity database operations
// ABOUTME: Logs calls, emails, meetings, notes and tasks with ULID ids and completes tasks
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/dealflow/models"
)

const activityColumns = `id, type, title, description, date, contact_id, deal_id, completed, due_date`

// LogActivity inserts an activity. Non-task activities against a contact also update
// that contact's last contact time.
func LogActivity(db *sql.DB, activity *models.Activity) error {
	if !activity.Type.Valid() {
		return fmt.Errorf("invalid activity type: %s", activity.Type)
	}
	if strings.TrimSpace(activity.Title) == "" {
		return fmt.Errorf("activity title is required")
	}
	if activity.ID == "" {
		activity.ID = ulid.Make().String()
	}
	if activity.Date.IsZero() {
		activity.Date = time.Now()
	}
	activity.Date = activity.Date.UTC()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO activities (`+activityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID, string(activity.Type), activity.Title, activity.Description, activity.Date,
		nullString(activity.ContactID), nullString(activity.DealID), activity.Completed, activity.DueDate)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	if activity.ContactID != "" && activity.Type != models.ActivityTask {
		_, err = tx.Exec(`
			UPDATE contacts SET last_contact = ?
			WHERE id = ? AND (last_contact IS NULL OR last_contact < ?)
		`, activity.Date, activity.ContactID, activity.Date)
		if err != nil {
			return fmt.Errorf("failed to update last contact: %w", err)
		}
	}

	return tx.Commit()
}

// FindActivities lists activities newest first, optionally limited to one contact or deal.
func FindActivities(db *sql.DB, contactID, dealID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	where := []string{"1=1"}
	var args []any
	if contactID != "" {
		where = append(where, "contact_id = ?")
		args = append(args, contactID)
	}
	if dealID != "" {
		where = append(where, "deal_id = ?")
		args = append(args, dealID)
	}
	args = append(args, limit)

	rows, err := db.Query(`
		SELECT `+activityColumns+` FROM activities
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY date DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectActivities(rows)
}

func listActivities(q querier) ([]models.Activity, error) {
	rows, err := q.Query(`SELECT ` + activityColumns + ` FROM activities ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectActivities(rows)
}

// CompleteTask marks a task done. Non-task activities are reported as not found.
func CompleteTask(db *sql.DB, id string) error {
	return checkAffected(db.Exec(`UPDATE activities SET completed = 1 WHERE id = ? AND type = 'task'`, id))
}

func collectActivities(rows *sql.Rows) ([]models.Activity, error) {
	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var typ string
		var contactID, dealID sql.NullString
		var dueDate sql.NullTime

		if err := rows.Scan(&a.ID, &typ, &a.Title, &a.Description, &a.Date, &contactID, &dealID,
			&a.Completed, &dueDate); err != nil {
			return nil, err
		}

		a.Type = models.ActivityType(typ)
		a.Date = a.Date.UTC()
		a.ContactID = contactID.String
		a.DealID = dealID.String
		a.DueDate = nullTime(dueDate)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
