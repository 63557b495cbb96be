// ABOUTME: Monthly revenue series storage
// ABOUTME: One row per calendar month label, ordered Jan through Dec
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/dealflow/models"
)

// SetRevenue records amount for a month label such as "Oct". Zero marks the month as not yet reported.
func SetRevenue(db *sql.DB, period string, amount int64) error {
	seq := models.MonthIndex(period)
	if seq < 0 {
		return fmt.Errorf("invalid period: %s (valid: Jan..Dec)", period)
	}
	if amount < 0 {
		return fmt.Errorf("revenue must not be negative")
	}

	_, err := db.Exec(`
		INSERT INTO revenue (seq, period, amount) VALUES (?, ?, ?)
		ON CONFLICT(seq) DO UPDATE SET amount = excluded.amount
	`, seq, models.Months[seq], amount)
	if err != nil {
		return fmt.Errorf("failed to set revenue: %w", err)
	}
	return nil
}

// ListRevenue returns the stored series in calendar order.
func ListRevenue(db *sql.DB) ([]models.RevenuePoint, error) {
	return listRevenue(db)
}

func listRevenue(q querier) ([]models.RevenuePoint, error) {
	rows, err := q.Query(`SELECT period, amount FROM revenue ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var series []models.RevenuePoint
	for rows.Next() {
		var p models.RevenuePoint
		if err := rows.Scan(&p.Period, &p.Amount); err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	return series, rows.Err()
}
