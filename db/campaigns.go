// ABOUTME: Marketing campaign database operations
// ABOUTME: Stores campaigns with optional open and click rates
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealflow/models"
)

const campaignColumns = `id, name, status, type, audience, sent_count, open_rate, click_rate, created_at, scheduled_at, completed_at`

func CreateCampaign(db *sql.DB, campaign *models.Campaign) error {
	if strings.TrimSpace(campaign.Name) == "" {
		return fmt.Errorf("campaign name is required")
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignDraft
	}
	if !campaign.Status.Valid() {
		return fmt.Errorf("invalid campaign status: %s", campaign.Status)
	}
	if campaign.Type == "" {
		campaign.Type = "email"
	}
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, campaign.ID, campaign.Name, string(campaign.Status), campaign.Type, campaign.Audience,
		campaign.SentCount, campaign.OpenRate, campaign.ClickRate, campaign.CreatedAt,
		campaign.ScheduledAt, campaign.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// FindCampaigns lists campaigns newest first. An empty status matches every status.
func FindCampaigns(db *sql.DB, status models.CampaignStatus, limit int) ([]models.Campaign, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectCampaigns(rows)
}

func listCampaigns(q querier) ([]models.Campaign, error) {
	rows, err := q.Query(`SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectCampaigns(rows)
}

func collectCampaigns(rows *sql.Rows) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		var status string
		var openRate, clickRate sql.NullFloat64
		var scheduledAt, completedAt sql.NullTime

		if err := rows.Scan(&c.ID, &c.Name, &status, &c.Type, &c.Audience, &c.SentCount,
			&openRate, &clickRate, &c.CreatedAt, &scheduledAt, &completedAt); err != nil {
			return nil, err
		}

		c.Status = models.CampaignStatus(status)
		c.CreatedAt = c.CreatedAt.UTC()
		c.ScheduledAt = nullTime(scheduledAt)
		c.CompletedAt = nullTime(completedAt)
		if openRate.Valid {
			v := openRate.Float64
			c.OpenRate = &v
		}
		if clickRate.Valid {
			v := clickRate.Float64
			c.ClickRate = &v
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}
