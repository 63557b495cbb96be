// ABOUTME: Deal database operations
// ABOUTME: Handles creation, lookup, stage moves with closed timestamps, and deletion
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealflow/models"
)

const dealColumns = `id, title, value, stage, contact_id, probability, description, created_at, closed_at`

func CreateDeal(db *sql.DB, deal *models.Deal) error {
	if strings.TrimSpace(deal.Title) == "" {
		return fmt.Errorf("deal title is required")
	}
	if deal.Stage == "" {
		deal.Stage = models.StageLead
	}
	if !deal.Stage.Valid() {
		return fmt.Errorf("invalid stage: %s", deal.Stage)
	}
	if deal.Value < 0 {
		return fmt.Errorf("deal value must not be negative")
	}
	if deal.Probability != nil && (*deal.Probability < 0 || *deal.Probability > 100) {
		return fmt.Errorf("probability must be between 0 and 100")
	}
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now().UTC()
	}
	if deal.Stage == models.StageClosed && deal.ClosedAt == nil {
		closed := deal.CreatedAt
		deal.ClosedAt = &closed
	}

	_, err := db.Exec(`
		INSERT INTO deals (`+dealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, deal.ID, deal.Title, deal.Value, string(deal.Stage), nullString(deal.ContactID),
		deal.Probability, deal.Description, deal.CreatedAt, deal.ClosedAt)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

// GetDeal returns nil, nil when no deal has id. The contact is attached when present.
func GetDeal(db *sql.DB, id string) (*models.Deal, error) {
	deal, err := scanDeal(db.QueryRow(`SELECT `+dealColumns+` FROM deals WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if deal.ContactID != "" {
		contact, err := GetContact(db, deal.ContactID)
		if err != nil {
			return nil, err
		}
		deal.Contact = contact
	}
	return deal, nil
}

// FindDeals lists deals newest first. An empty stage matches every stage.
func FindDeals(db *sql.DB, stage models.Stage, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if stage != "" {
		rows, err = db.Query(`
			SELECT `+dealColumns+` FROM deals
			WHERE stage = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, string(stage), limit)
	} else {
		rows, err = db.Query(`
			SELECT `+dealColumns+` FROM deals
			ORDER BY created_at DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find deals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectDeals(rows)
}

func listDeals(q querier) ([]models.Deal, error) {
	rows, err := q.Query(`SELECT ` + dealColumns + ` FROM deals ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectDeals(rows)
}

// MoveDeal sets the deal's stage. Entering closed stamps closed_at with at, leaving it clears it.
func MoveDeal(db *sql.DB, id string, stage models.Stage, at time.Time) error {
	if !stage.Valid() {
		return fmt.Errorf("invalid stage: %s", stage)
	}

	return checkAffected(db.Exec(`
		UPDATE deals SET
			stage = ?,
			closed_at = CASE WHEN ? = 'closed' THEN COALESCE(closed_at, ?) ELSE NULL END
		WHERE id = ?
	`, string(stage), string(stage), at.UTC(), id))
}

func DeleteDeal(db *sql.DB, id string) error {
	return checkAffected(db.Exec(`DELETE FROM deals WHERE id = ?`, id))
}

func collectDeals(rows *sql.Rows) ([]models.Deal, error) {
	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, rows.Err()
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	var d models.Deal
	var stage string
	var contactID sql.NullString
	var probability sql.NullInt64
	var closedAt sql.NullTime

	if err := row.Scan(&d.ID, &d.Title, &d.Value, &stage, &contactID, &probability,
		&d.Description, &d.CreatedAt, &closedAt); err != nil {
		return nil, err
	}

	d.Stage = models.Stage(stage)
	d.ContactID = contactID.String
	d.CreatedAt = d.CreatedAt.UTC()
	d.ClosedAt = nullTime(closedAt)
	if probability.Valid {
		p := int(probability.Int64)
		d.Probability = &p
	}
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
