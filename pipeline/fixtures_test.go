// ABOUTME: Shared fixtures for pipeline tests
// ABOUTME: Builds deals, contacts and revenue series relative to a fixed instant
package pipeline

import (
	"fmt"
	"time"

	"github.com/harperreed/dealflow/models"
)

var testNow = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func deal(id string, stage models.Stage, value int64, age int) models.Deal {
	return models.Deal{
		ID:        id,
		Title:     "Deal " + id,
		Value:     value,
		Stage:     stage,
		CreatedAt: daysAgo(age),
	}
}

func dealsWithCounts(counts map[models.Stage]int) []models.Deal {
	var out []models.Deal
	for _, stage := range models.Stages() {
		for i := 0; i < counts[stage]; i++ {
			out = append(out, deal(fmt.Sprintf("%s-%d", stage, i), stage, 1000, 1))
		}
	}
	return out
}

func sampleRevenue() []models.RevenuePoint {
	amounts := []int64{42000, 38000, 45000, 56000, 61000, 58000, 63000, 55000, 67000, 72000, 0, 0}
	out := make([]models.RevenuePoint, len(amounts))
	for i, a := range amounts {
		out[i] = models.RevenuePoint{Period: models.Months[i], Amount: a}
	}
	return out
}
