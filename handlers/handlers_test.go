// ABOUTME: Shared fixtures for MCP handler tests
// ABOUTME: Provides an in-memory database, a fixed clock and a small pipeline snapshot
package handlers

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
)

var testNow = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	require.NoError(t, db.InitSchema(database))

	t.Cleanup(func() { _ = database.Close() })
	return database
}

func testEngine() *pipeline.Engine {
	return pipeline.NewEngine(nil, pipeline.HorizonQuarter, pipeline.FixedClock(testNow))
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func testSnapshot() *models.Snapshot {
	lastContact := daysAgo(3)
	due := daysAgo(1)
	return &models.Snapshot{
		Contacts: []models.Contact{
			{ID: "c1", Name: "Ada Lovelace", Company: "Analytical", Position: "CTO", Status: models.StatusProspect, LastContact: &lastContact, CreatedAt: daysAgo(60)},
			{ID: "c2", Name: "Grace Hopper", Company: "Navy", Status: models.StatusCustomer, CreatedAt: daysAgo(90)},
			{ID: "c3", Name: "Alan Turing", Status: models.StatusLead, CreatedAt: daysAgo(10)},
		},
		Deals: []models.Deal{
			{ID: "d1", Title: "Engine licence", Value: 12000, Stage: models.StageLead, ContactID: "c1", CreatedAt: daysAgo(10)},
			{ID: "d2", Title: "Compiler audit", Value: 8000, Stage: models.StageLead, ContactID: "c2", CreatedAt: daysAgo(1)},
			{ID: "d3", Title: "Support plan", Value: 5000, Stage: models.StageContact, ContactID: "c2", CreatedAt: daysAgo(9)},
			{ID: "d4", Title: "Renewal", Value: 3000, Stage: models.StageClosed, ContactID: "c2", CreatedAt: daysAgo(100)},
		},
		Activities: []models.Activity{
			{ID: "a1", Type: models.ActivityCall, Title: "Intro call", Date: daysAgo(3), ContactID: "c1"},
			{ID: "a2", Type: models.ActivityTask, Title: "Send proposal", Date: daysAgo(5), ContactID: "c1", DueDate: &due},
		},
		Revenue: []models.RevenuePoint{
			{Period: "Jul", Amount: 1000}, {Period: "Aug", Amount: 1100}, {Period: "Sep", Amount: 1210},
		},
	}
}

func newReportHandlers() *ReportHandlers {
	return NewReportHandlers(store.NewStatic(testSnapshot()), testEngine())
}
