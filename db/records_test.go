// ABOUTME: Tests for contact, deal, activity, campaign and revenue operations
// ABOUTME: Covers defaults, validation, stage moves, last-contact tracking and snapshots
package db

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/models"
)

func createTestContact(t *testing.T, database *sql.DB, name string, status models.ContactStatus) *models.Contact {
	t.Helper()
	c := &models.Contact{Name: name, Email: name + "@example.com", Status: status}
	require.NoError(t, CreateContact(database, c))
	return c
}

func TestCreateAndGetContact(t *testing.T) {
	database := setupTestDB(t)

	c := &models.Contact{
		Name:    "Sarah Johnson",
		Email:   "sarah@acme.com",
		Company: "Acme Inc",
		Tags:    []string{"vip", "vip", " enterprise "},
	}
	require.NoError(t, CreateContact(database, c))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.StatusLead, c.Status)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := GetContact(database, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sarah Johnson", got.Name)
	assert.Equal(t, []string{"vip", "enterprise"}, got.Tags)
	assert.Nil(t, got.LastContact)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	missing, err := GetContact(database, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateContactValidation(t *testing.T) {
	database := setupTestDB(t)

	assert.Error(t, CreateContact(database, &models.Contact{}))
	assert.Error(t, CreateContact(database, &models.Contact{Name: "X", Status: "vip"}))
}

func TestFindContacts(t *testing.T) {
	database := setupTestDB(t)
	createTestContact(t, database, "alice", models.StatusLead)
	createTestContact(t, database, "bob", models.StatusCustomer)
	createTestContact(t, database, "alicia", models.StatusCustomer)

	all, err := FindContacts(database, "", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byName, err := FindContacts(database, "ALI", "", 10)
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	both, err := FindContacts(database, "ali", models.StatusCustomer, 10)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "alicia", both[0].Name)
}

func TestFindContactByEmail(t *testing.T) {
	database := setupTestDB(t)
	require.NoError(t, CreateContact(database, &models.Contact{Name: "Ada", Email: "Ada@Example.com"}))

	found, err := FindContactByEmail(database, "  ada@example.COM ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ada", found.Name)

	missing, err := FindContactByEmail(database, "grace@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	empty, err := FindContactByEmail(database, "")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestUpdateContactStatusAndTouch(t *testing.T) {
	database := setupTestDB(t)
	c := createTestContact(t, database, "carol", models.StatusLead)

	require.NoError(t, UpdateContactStatus(database, c.ID, models.StatusProspect))
	assert.True(t, errors.Is(UpdateContactStatus(database, "missing", models.StatusProspect), ErrNotFound))
	assert.Error(t, UpdateContactStatus(database, c.ID, "vip"))

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, TouchContact(database, c.ID, at))

	got, err := GetContact(database, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProspect, got.Status)
	require.NotNil(t, got.LastContact)
	assert.True(t, at.Equal(*got.LastContact))
}

func TestCreateDealAndMove(t *testing.T) {
	database := setupTestDB(t)
	c := createTestContact(t, database, "dave", models.StatusProspect)

	prob := 60
	deal := &models.Deal{Title: "Enterprise License", Value: 75000, ContactID: c.ID, Probability: &prob}
	require.NoError(t, CreateDeal(database, deal))
	assert.Equal(t, models.StageLead, deal.Stage)

	closedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, MoveDeal(database, deal.ID, models.StageClosed, closedAt))

	got, err := GetDeal(database, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StageClosed, got.Stage)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, closedAt.Equal(*got.ClosedAt))
	require.NotNil(t, got.Contact)
	assert.Equal(t, "dave", got.Contact.Name)
	require.NotNil(t, got.Probability)
	assert.Equal(t, 60, *got.Probability)

	// staying closed keeps the original close time
	require.NoError(t, MoveDeal(database, deal.ID, models.StageClosed, closedAt.AddDate(0, 1, 0)))
	got, err = GetDeal(database, deal.ID)
	require.NoError(t, err)
	assert.True(t, closedAt.Equal(*got.ClosedAt))

	require.NoError(t, MoveDeal(database, deal.ID, models.StageNegotiation, closedAt))
	got, err = GetDeal(database, deal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClosedAt)

	assert.True(t, errors.Is(MoveDeal(database, "missing", models.StageLead, closedAt), ErrNotFound))
	assert.Error(t, MoveDeal(database, deal.ID, "won", closedAt))
}

func TestCreateDealValidation(t *testing.T) {
	database := setupTestDB(t)

	assert.Error(t, CreateDeal(database, &models.Deal{}))
	assert.Error(t, CreateDeal(database, &models.Deal{Title: "x", Stage: "won"}))
	assert.Error(t, CreateDeal(database, &models.Deal{Title: "x", Value: -1}))
	bad := 101
	assert.Error(t, CreateDeal(database, &models.Deal{Title: "x", Probability: &bad}))

	closed := &models.Deal{Title: "Won already", Stage: models.StageClosed}
	require.NoError(t, CreateDeal(database, closed))
	assert.NotNil(t, closed.ClosedAt)
}

func TestFindAndDeleteDeals(t *testing.T) {
	database := setupTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, stage := range []models.Stage{models.StageLead, models.StageLead, models.StageProposal} {
		require.NoError(t, CreateDeal(database, &models.Deal{
			Title:     string(stage),
			Stage:     stage,
			CreatedAt: base.AddDate(0, 0, i),
		}))
	}

	leads, err := FindDeals(database, models.StageLead, 0)
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	all, err := FindDeals(database, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.StageProposal, all[0].Stage, "newest first")

	require.NoError(t, DeleteDeal(database, all[0].ID))
	assert.True(t, errors.Is(DeleteDeal(database, all[0].ID), ErrNotFound))
}

func TestLogActivityTouchesContact(t *testing.T) {
	database := setupTestDB(t)
	c := createTestContact(t, database, "erin", models.StatusLead)

	when := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	call := &models.Activity{Type: models.ActivityCall, Title: "Discovery call", Date: when, ContactID: c.ID}
	require.NoError(t, LogActivity(database, call))
	assert.Len(t, call.ID, 26, "ULID string length")

	got, err := GetContact(database, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContact)
	assert.True(t, when.Equal(*got.LastContact))

	// an older activity does not move last contact backwards
	require.NoError(t, LogActivity(database, &models.Activity{
		Type: models.ActivityEmail, Title: "Old email", Date: when.AddDate(0, 0, -5), ContactID: c.ID,
	}))
	// tasks never count as contact
	require.NoError(t, LogActivity(database, &models.Activity{
		Type: models.ActivityTask, Title: "Send deck", Date: when.AddDate(0, 0, 3), ContactID: c.ID,
	}))

	got, err = GetContact(database, c.ID)
	require.NoError(t, err)
	assert.True(t, when.Equal(*got.LastContact))

	activities, err := FindActivities(database, c.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, "Send deck", activities[0].Title)

	assert.Error(t, LogActivity(database, &models.Activity{Type: "sms", Title: "x"}))
	assert.Error(t, LogActivity(database, &models.Activity{Type: models.ActivityNote}))
}

func TestCompleteTask(t *testing.T) {
	database := setupTestDB(t)

	due := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	task := &models.Activity{Type: models.ActivityTask, Title: "Follow up", DueDate: &due}
	require.NoError(t, LogActivity(database, task))
	note := &models.Activity{Type: models.ActivityNote, Title: "Thoughts"}
	require.NoError(t, LogActivity(database, note))

	require.NoError(t, CompleteTask(database, task.ID))
	assert.True(t, errors.Is(CompleteTask(database, note.ID), ErrNotFound))

	activities, err := FindActivities(database, "", "", 10)
	require.NoError(t, err)
	for _, a := range activities {
		if a.ID == task.ID {
			assert.True(t, a.Completed)
			require.NotNil(t, a.DueDate)
			assert.True(t, due.Equal(*a.DueDate))
		}
	}
}

func TestCampaigns(t *testing.T) {
	database := setupTestDB(t)

	open := 28.4
	require.NoError(t, CreateCampaign(database, &models.Campaign{Name: "Q4 Newsletter", Status: models.CampaignCompleted, SentCount: 1250, OpenRate: &open}))
	require.NoError(t, CreateCampaign(database, &models.Campaign{Name: "Holiday Promotion"}))
	assert.Error(t, CreateCampaign(database, &models.Campaign{Name: "Bad", Status: "paused"}))

	all, err := FindCampaigns(database, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := FindCampaigns(database, models.CampaignDraft, 0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "email", drafts[0].Type)
	assert.Nil(t, drafts[0].OpenRate)
}

func TestRevenue(t *testing.T) {
	database := setupTestDB(t)

	require.NoError(t, SetRevenue(database, "mar", 45000))
	require.NoError(t, SetRevenue(database, "Jan", 42000))
	require.NoError(t, SetRevenue(database, "Jan", 43000))
	assert.Error(t, SetRevenue(database, "Q1", 1))
	assert.Error(t, SetRevenue(database, "Feb", -1))

	series, err := ListRevenue(database)
	require.NoError(t, err)
	assert.Equal(t, []models.RevenuePoint{{Period: "Jan", Amount: 43000}, {Period: "Mar", Amount: 45000}}, series)
}

func TestSeedAndLoadSnapshot(t *testing.T) {
	database := setupTestDB(t)
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, SeedSampleData(database, now))
	assert.True(t, errors.Is(SeedSampleData(database, now), ErrNotEmpty))

	snap, err := LoadSnapshot(database)
	require.NoError(t, err)
	assert.Len(t, snap.Contacts, 8)
	assert.Len(t, snap.Deals, 8)
	assert.Len(t, snap.Activities, 8)
	assert.Len(t, snap.Campaigns, 4)
	require.Len(t, snap.Revenue, 12)
	assert.Equal(t, "Oct", snap.Revenue[9].Period)
	assert.Equal(t, int64(72000), snap.Revenue[9].Amount)

	var total int64
	for _, d := range snap.Deals {
		total += d.Value
		assert.False(t, d.CreatedAt.After(now), "seeded deal %s is in the future", d.Title)
	}
	assert.Equal(t, int64(195000), total)

	counts, err := Counts(t.Context(), database)
	require.NoError(t, err)
	assert.Equal(t, 8, counts["deals"])
}

func TestSyncState(t *testing.T) {
	database := setupTestDB(t)
	at := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	state, err := GetSyncState(database, "charm")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, MarkSyncStarted(database, "charm", at))
	state, err = GetSyncState(database, "charm")
	require.NoError(t, err)
	assert.Equal(t, SyncRunning, state.Status)

	require.NoError(t, RecordSyncResult(database, "charm", 12, nil, at))
	state, err = GetSyncState(database, "charm")
	require.NoError(t, err)
	assert.Equal(t, SyncIdle, state.Status)
	assert.Equal(t, 12, state.RecordCount)
	require.NotNil(t, state.LastSyncTime)

	require.NoError(t, RecordSyncResult(database, "charm", 0, errors.New("offline"), at))
	state, err = GetSyncState(database, "charm")
	require.NoError(t, err)
	assert.Equal(t, SyncError, state.Status)
	require.NotNil(t, state.ErrorMessage)
	assert.Equal(t, "offline", *state.ErrorMessage)
	assert.Equal(t, 12, state.RecordCount)
}
