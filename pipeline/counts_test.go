// ABOUTME: Tests for status tallies, activity feeds, engagement scoring, campaigns and sorting
// ABOUTME: Exercises the smaller derivations that feed the dashboard panels
package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/models"
)

func TestCountByStatus(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Status: models.StatusLead},
		{ID: "2", Status: models.StatusLead},
		{ID: "3", Status: models.StatusCustomer},
	}

	assert.Equal(t, map[models.ContactStatus]int{
		models.StatusLead:     2,
		models.StatusProspect: 0,
		models.StatusCustomer: 1,
		models.StatusChurned:  0,
	}, CountByStatus(contacts))

	assert.Len(t, CountByStatus(nil), 4)
	assert.Equal(t, 0, CountByStatus([]models.Contact{{Status: "vip"}})[models.StatusLead])
}

func TestStatusShares(t *testing.T) {
	shares := StatusShares(map[models.ContactStatus]int{
		models.StatusLead:     2,
		models.StatusCustomer: 1,
	})

	require.Len(t, shares, 4)
	assert.Equal(t, StatusShare{Status: models.StatusLead, Name: "Lead", Count: 2, Percent: 67}, shares[0])
	assert.Equal(t, 0, shares[1].Percent)
	assert.Equal(t, 33, shares[2].Percent)

	for _, s := range StatusShares(nil) {
		assert.Zero(t, s.Percent)
	}
}

func TestRecentActivities(t *testing.T) {
	var activities []models.Activity
	for i := 0; i < 8; i++ {
		activities = append(activities, models.Activity{
			ID:   string(rune('a' + i)),
			Type: models.ActivityNote,
			Date: daysAgo(i),
		})
	}
	// oldest first on input
	for i, j := 0, len(activities)-1; i < j; i, j = i+1, j-1 {
		activities[i], activities[j] = activities[j], activities[i]
	}

	recent := RecentActivities(activities, DefaultFeedLimit)
	require.Len(t, recent, 5)
	assert.Equal(t, "a", recent[0].ID)
	assert.Equal(t, "e", recent[4].ID)
	assert.Equal(t, "h", activities[0].ID, "input must not be reordered")

	assert.Len(t, RecentActivities(activities, 100), 8)
}

func TestOverdueTasks(t *testing.T) {
	past := daysAgo(3)
	older := daysAgo(10)
	future := testNow.Add(48 * time.Hour)

	activities := []models.Activity{
		{ID: "late", Type: models.ActivityTask, DueDate: &past},
		{ID: "done", Type: models.ActivityTask, DueDate: &older, Completed: true},
		{ID: "upcoming", Type: models.ActivityTask, DueDate: &future},
		{ID: "no-due", Type: models.ActivityTask},
		{ID: "call", Type: models.ActivityCall, DueDate: &older},
		{ID: "later", Type: models.ActivityTask, DueDate: &older},
	}

	overdue := OverdueTasks(activities, testNow)
	require.Len(t, overdue, 2)
	assert.Equal(t, "later", overdue[0].ID)
	assert.Equal(t, "late", overdue[1].ID)
}

func TestEngagementScore(t *testing.T) {
	recent := daysAgo(2)
	month := daysAgo(20)
	quarter := daysAgo(60)
	stale := daysAgo(200)

	tests := []struct {
		name       string
		last       *time.Time
		activities int
		want       int
	}{
		{"never contacted, no activity", nil, 0, 0},
		{"never contacted, busy", nil, 9, 50},
		{"this week", &recent, 3, 80},
		{"this week, busy", &recent, 12, 100},
		{"this month", &month, 1, 40},
		{"this quarter", &quarter, 0, 10},
		{"stale", &stale, 2, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Contact{LastContact: tt.last}
			assert.Equal(t, tt.want, EngagementScore(c, tt.activities, testNow))
		})
	}
}

func TestDaysSinceContact(t *testing.T) {
	_, ok := DaysSinceContact(models.Contact{}, testNow)
	assert.False(t, ok)

	last := daysAgo(12)
	days, ok := DaysSinceContact(models.Contact{LastContact: &last}, testNow)
	assert.True(t, ok)
	assert.Equal(t, 12, days)
}

func TestSummarizeCampaigns(t *testing.T) {
	open1, open2 := 24.5, 31.5
	click := 4.0
	campaigns := []models.Campaign{
		{ID: "1", Status: models.CampaignCompleted, SentCount: 1000, OpenRate: &open1, ClickRate: &click},
		{ID: "2", Status: models.CampaignActive, SentCount: 500, OpenRate: &open2},
		{ID: "3", Status: models.CampaignDraft},
	}

	summary := SummarizeCampaigns(campaigns)
	assert.Equal(t, 1500, summary.TotalSent)
	assert.InDelta(t, 28.0, summary.AvgOpenRate, 1e-9)
	assert.InDelta(t, 4.0, summary.AvgClickRate, 1e-9)
	assert.Equal(t, 1, summary.ByStatus[models.CampaignDraft])
	assert.Equal(t, 0, summary.ByStatus[models.CampaignScheduled])

	empty := SummarizeCampaigns(nil)
	assert.Zero(t, empty.AvgOpenRate)
	assert.Len(t, empty.ByStatus, 4)
}

func TestSortDeals(t *testing.T) {
	input := []models.Deal{
		deal("b", models.StageProposal, 300, 2),
		deal("a", models.StageLead, 100, 5),
		deal("c", models.StageClosed, 200, 1),
	}

	assert.Equal(t, []string{"a", "c", "b"}, ids(SortDeals(input, SortByValue, true)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(SortDeals(input, SortByValue, false)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(SortDeals(input, SortByTitle, true)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(SortDeals(input, SortByStage, true)))
	assert.Equal(t, []string{"c", "b", "a"}, ids(SortDeals(input, SortByCreated, false)))
	assert.Equal(t, "b", input[0].ID)

	_, err := ParseSortField("probability")
	assert.Error(t, err)
	f, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByCreated, f)
}
