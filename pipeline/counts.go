// ABOUTME: Status and stage tallies for distribution charts
// ABOUTME: Produces totals over every enum value so consumers never branch on missing keys
package pipeline

import "github.com/harperreed/dealflow/models"

// CountByStatus tallies contacts per status. Every status is present; unknown statuses are skipped.
func CountByStatus(contacts []models.Contact) map[models.ContactStatus]int {
	out := make(map[models.ContactStatus]int, len(models.ContactStatuses()))
	for _, s := range models.ContactStatuses() {
		out[s] = 0
	}
	for _, c := range contacts {
		if !c.Status.Valid() {
			continue
		}
		out[c.Status]++
	}
	return out
}

// StatusShare is one slice of the contact status chart.
type StatusShare struct {
	Status  models.ContactStatus `json:"status"`
	Name    string               `json:"name"`
	Count   int                  `json:"count"`
	Percent int                  `json:"percent"`
}

// StatusShares converts counts into whole percentages in status order.
func StatusShares(counts map[models.ContactStatus]int) []StatusShare {
	total := 0
	for _, s := range models.ContactStatuses() {
		total += counts[s]
	}

	out := make([]StatusShare, 0, len(models.ContactStatuses()))
	for _, s := range models.ContactStatuses() {
		out = append(out, StatusShare{
			Status:  s,
			Name:    s.Label(),
			Count:   counts[s],
			Percent: percent(counts[s], total),
		})
	}
	return out
}

// StageSummary is one bar of the stage distribution chart.
type StageSummary struct {
	Stage models.Stage `json:"stage"`
	Name  string       `json:"name"`
	Count int          `json:"count"`
	Value int64        `json:"value"`
}

// SummarizeStages derives name, count and value per stage in pipeline order.
func SummarizeStages(buckets StageBuckets) []StageSummary {
	out := make([]StageSummary, 0, len(models.Stages()))
	for _, stage := range models.Stages() {
		out = append(out, StageSummary{
			Stage: stage,
			Name:  stage.Label(),
			Count: buckets.Count(stage),
			Value: TotalValue(buckets[stage]),
		})
	}
	return out
}
