// ABOUTME: Marketing campaign rollup for the campaigns view
// ABOUTME: Counts campaigns per status and averages reported open and click rates
package pipeline

import "github.com/harperreed/dealflow/models"

type CampaignSummary struct {
	ByStatus     map[models.CampaignStatus]int `json:"by_status"`
	TotalSent    int                           `json:"total_sent"`
	AvgOpenRate  float64                       `json:"avg_open_rate"`
	AvgClickRate float64                       `json:"avg_click_rate"`
}

// SummarizeCampaigns averages rates only over campaigns that report them.
func SummarizeCampaigns(campaigns []models.Campaign) CampaignSummary {
	summary := CampaignSummary{ByStatus: make(map[models.CampaignStatus]int, 4)}
	for _, s := range models.CampaignStatuses() {
		summary.ByStatus[s] = 0
	}

	var openSum, clickSum float64
	var openN, clickN int
	for _, c := range campaigns {
		if c.Status.Valid() {
			summary.ByStatus[c.Status]++
		}
		if c.SentCount > 0 {
			summary.TotalSent += c.SentCount
		}
		if c.OpenRate != nil {
			openSum += *c.OpenRate
			openN++
		}
		if c.ClickRate != nil {
			clickSum += *c.ClickRate
			clickN++
		}
	}

	if openN > 0 {
		summary.AvgOpenRate = openSum / float64(openN)
	}
	if clickN > 0 {
		summary.AvgClickRate = clickSum / float64(clickN)
	}
	return summary
}
