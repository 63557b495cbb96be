// ABOUTME: Tests for the ASCII dashboard renderer
// ABOUTME: Checks section headers, bars, money formatting and attention warnings
package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func sampleReport() *pipeline.Report {
	contact := models.Contact{ID: "c1", Name: "Ada Lovelace", Company: "Analytical", Status: models.StatusProspect}
	snap := &models.Snapshot{
		Contacts: []models.Contact{contact},
		Deals: []models.Deal{
			{ID: "d1", Title: "Engine licence", Value: 12500, Stage: models.StageLead, ContactID: "c1", CreatedAt: testNow.AddDate(0, 0, -20)},
			{ID: "d2", Title: "Support plan", Value: 4000, Stage: models.StageProposal, CreatedAt: testNow.AddDate(0, 0, -2)},
			{ID: "d3", Title: "Renewal", Value: 900, Stage: models.StageClosed, CreatedAt: testNow.AddDate(0, 0, -90)},
		},
		Revenue: []models.RevenuePoint{
			{Period: "Jul", Amount: 1000}, {Period: "Aug", Amount: 1100}, {Period: "Sep", Amount: 1210},
		},
	}
	return pipeline.NewEngine(nil, pipeline.HorizonQuarter, pipeline.FixedClock(testNow)).Analyze(snap)
}

func TestRenderDashboard(t *testing.T) {
	out := RenderDashboard(sampleReport())

	for _, section := range []string{"PIPELINE OVERVIEW", "DEAL HEALTH", "CONVERSION", "FORECAST (3 months)", "STATS"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "Leads")
	assert.Contains(t, out, "Closed Won")
	assert.Contains(t, out, "Leads to Contacted")
	assert.Contains(t, out, "1 contacts  3 deals")
	assert.Contains(t, out, "NEEDS ATTENTION")
	assert.Contains(t, out, "1 deals rotting")
	assert.Contains(t, out, "Oct *")
}

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboard(nil)

	assert.Contains(t, out, "no revenue recorded")
	assert.NotContains(t, out, "NEEDS ATTENTION")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", Bar(5, 10, 10))
	assert.Equal(t, "██████████", Bar(20, 10, 10))
	assert.Equal(t, "░░░░░░░░░░", Bar(3, 0, 10))
	assert.Equal(t, "░░░░░░░░░░", Bar(-1, 10, 10))
	assert.Equal(t, 10, len([]rune(Bar(7, 9, 10))))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "$0"},
		{950, "$950"},
		{12500, "$12.5K"},
		{1_200_000, "$1.2M"},
		{-4000, "-$4.0K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestRenderPipelineScalesToLargestStage(t *testing.T) {
	var out strings.Builder
	renderPipeline(&out, []pipeline.StageSummary{
		{Stage: models.StageLead, Name: "Leads", Count: 4},
		{Stage: models.StageContact, Name: "Contacted", Count: 2},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "██████████")
	assert.Contains(t, lines[1], "█████░░░░░")
}
