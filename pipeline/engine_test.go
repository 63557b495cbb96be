// ABOUTME: Tests for the Engine that assembles a full pipeline report
// ABOUTME: Verifies every view is derived at the injected instant and is repeatable
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/models"
)

func sampleSnapshot() *models.Snapshot {
	last := daysAgo(2)
	due := daysAgo(1)
	return &models.Snapshot{
		Contacts: []models.Contact{
			{ID: "c1", Name: "Sarah Johnson", Status: models.StatusCustomer, LastContact: &last},
			{ID: "c2", Name: "Mike Chen", Status: models.StatusProspect},
			{ID: "c3", Name: "Emily Rodriguez", Status: models.StatusLead},
		},
		Deals: []models.Deal{
			{ID: "d1", Title: "Enterprise Software License", Value: 75000, Stage: models.StageNegotiation, ContactID: "c1", CreatedAt: daysAgo(25)},
			{ID: "d2", Title: "Consulting Services", Value: 25000, Stage: models.StageProposal, ContactID: "c2", CreatedAt: daysAgo(30)},
			{ID: "d3", Title: "Marketing Campaign", Value: 15000, Stage: models.StageLead, ContactID: "c3", CreatedAt: daysAgo(1)},
			{ID: "d4", Title: "Annual Support", Value: 45000, Stage: models.StageClosed, ContactID: "c1", CreatedAt: daysAgo(400)},
		},
		Activities: []models.Activity{
			{ID: "a1", Type: models.ActivityCall, Date: daysAgo(2), ContactID: "c1"},
			{ID: "a2", Type: models.ActivityTask, Date: daysAgo(3), DueDate: &due},
		},
		Revenue: sampleRevenue(),
	}
}

func TestEngineAnalyze(t *testing.T) {
	engine := NewEngine(nil, HorizonQuarter, FixedClock(testNow))
	report := engine.Analyze(sampleSnapshot())

	assert.Equal(t, testNow, report.GeneratedAt)
	assert.Equal(t, int64(160000), report.TotalValue)
	assert.Equal(t, int64(115000), report.OpenValue)
	require.Len(t, report.Stages, 5)
	require.Len(t, report.Funnel, 4)
	assert.Equal(t, 3, report.TotalContacts)

	require.Len(t, report.Health, 4)
	assert.Equal(t, "d2", report.Health[0].ID)
	assert.Equal(t, Rotting, report.Health[0].Status)
	assert.Equal(t, "d1", report.Health[1].ID)
	assert.Equal(t, Warning, report.Health[1].Status)
	assert.Equal(t, 25, report.Health[1].Age)
	require.NotNil(t, report.Health[1].Contact)
	assert.Equal(t, "Sarah Johnson", report.Health[1].Contact.Name)

	assert.Equal(t, 1, report.HealthSummary[Rotting].Count)
	assert.Equal(t, 1, report.ContactsByStatus[models.StatusCustomer])
	assert.Len(t, report.Recent, 2)
	require.Len(t, report.Overdue, 1)
	assert.Equal(t, "a2", report.Overdue[0].ID)

	var projected int
	for _, p := range report.Forecast {
		if p.IsForecast {
			projected++
		}
	}
	assert.Equal(t, 3, projected)
}

func TestEngineAnalyzeKeepsUnknownStagesInHealth(t *testing.T) {
	engine := NewEngine(nil, HorizonQuarter, FixedClock(testNow))
	snap := sampleSnapshot()
	snap.Deals = append(snap.Deals, models.Deal{ID: "d5", Title: "Imported", Value: 9000, Stage: models.Stage("won"), CreatedAt: daysAgo(90)})

	report := engine.Analyze(snap)

	assert.Equal(t, int64(160000), report.TotalValue)
	assert.Equal(t, int64(115000), report.OpenValue)
	var onBoard int
	for _, deals := range report.Board {
		onBoard += len(deals)
	}
	assert.Equal(t, 4, onBoard)

	require.Len(t, report.Health, 5)
	var found bool
	for _, d := range report.Health {
		if d.ID == "d5" {
			found = true
			assert.Equal(t, Healthy, d.Status)
		}
	}
	assert.True(t, found, "unknown-stage deal missing from health")
}

func TestEngineAnalyzeIsRepeatable(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), HorizonHalfYear, FixedClock(testNow))
	snap := sampleSnapshot()
	assert.Equal(t, engine.Analyze(snap), engine.Analyze(snap))
}

func TestEngineDefaults(t *testing.T) {
	engine := NewEngine(nil, HorizonYear, nil)
	assert.Equal(t, DefaultThresholds(), engine.Thresholds())
	assert.False(t, engine.Now().IsZero())

	report := engine.Analyze(nil)
	assert.Zero(t, report.TotalValue)
	assert.Len(t, report.Board, 5)

	wider := engine.WithHorizon(HorizonQuarter)
	assert.Equal(t, HorizonQuarter, wider.Horizon())
	assert.Equal(t, HorizonYear, engine.Horizon())
}
