// ABOUTME: Tests for stage grouping and value aggregation
// ABOUTME: Covers bucket completeness, contact resolution and value consistency
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/models"
)

func TestGroupByStageHasEveryStage(t *testing.T) {
	buckets := GroupByStage(nil, nil)

	require.Len(t, buckets, len(models.Stages()))
	for _, stage := range models.Stages() {
		deals, ok := buckets[stage]
		assert.True(t, ok, "missing stage %s", stage)
		assert.NotNil(t, deals)
		assert.Empty(t, deals)
	}
}

func TestGroupByStageIsPermutation(t *testing.T) {
	input := []models.Deal{
		deal("1", models.StageProposal, 100, 1),
		deal("2", models.StageLead, 200, 2),
		deal("3", models.StageProposal, 300, 3),
		deal("4", models.StageClosed, 400, 4),
	}

	buckets := GroupByStage(input, nil)

	assert.Equal(t, []string{"1", "3"}, ids(buckets[models.StageProposal]))
	assert.Equal(t, []string{"2"}, ids(buckets[models.StageLead]))
	assert.Empty(t, buckets[models.StageNegotiation])

	flat := buckets.Flatten()
	assert.ElementsMatch(t, ids(input), ids(flat))
}

func TestGroupByStageSkipsUnknownStage(t *testing.T) {
	buckets := GroupByStage([]models.Deal{deal("x", "won", 500, 1)}, nil)
	assert.Empty(t, buckets.Flatten())
	_, ok := buckets["won"]
	assert.False(t, ok)
}

func TestGroupByStageResolvesContact(t *testing.T) {
	contacts := IndexContacts([]models.Contact{{ID: "c1", Name: "Sarah Johnson", Tags: []string{"vip"}}})
	input := []models.Deal{
		{ID: "d1", Stage: models.StageLead, ContactID: "c1"},
		{ID: "d2", Stage: models.StageLead, ContactID: "missing"},
	}

	buckets := GroupByStage(input, contacts)
	leads := buckets[models.StageLead]
	require.Len(t, leads, 2)

	require.NotNil(t, leads[0].Contact)
	assert.Equal(t, "Sarah Johnson", leads[0].Contact.Name)
	assert.Nil(t, leads[1].Contact)
	assert.Nil(t, input[0].Contact, "input deal must not be mutated")

	leads[0].Contact.Tags[0] = "changed"
	assert.Equal(t, "vip", contacts["c1"].Tags[0])
}

func TestGroupByStageClearsUnresolvedContact(t *testing.T) {
	stale := models.Contact{ID: "gone", Name: "Former Contact"}
	input := []models.Deal{
		{ID: "d1", Stage: models.StageContact, ContactID: "gone", Contact: &stale},
	}

	buckets := GroupByStage(input, map[string]models.Contact{})
	require.Len(t, buckets[models.StageContact], 1)
	assert.Nil(t, buckets[models.StageContact][0].Contact)
	assert.NotNil(t, input[0].Contact, "input deal must not be mutated")
}

func TestUnknownStageAddsNoValue(t *testing.T) {
	input := []models.Deal{
		deal("1", models.StageLead, 100, 1),
		deal("2", models.Stage("won"), 500, 1),
	}

	assert.Equal(t, int64(100), TotalValue(input))
	assert.Equal(t, int64(100), OpenValue(input))
	byStage := ValueByStage(GroupByStage(input, nil))
	assert.Equal(t, int64(100), byStage[models.StageLead])
}

func TestValueAggregation(t *testing.T) {
	input := []models.Deal{
		deal("1", models.StageLead, 25000, 1),
		deal("2", models.StageNegotiation, 75000, 1),
		deal("3", models.StageClosed, 45000, 1),
		deal("4", models.StageProposal, -500, 1),
		deal("5", models.Stage("won"), 500, 1),
	}

	assert.Equal(t, int64(145000), TotalValue(input))
	assert.Equal(t, int64(100000), OpenValue(input))
	assert.Zero(t, TotalValue(nil))

	byStage := ValueByStage(GroupByStage(input, nil))
	var sum int64
	for _, v := range byStage {
		sum += v
	}
	assert.Equal(t, TotalValue(input), sum)
	assert.Zero(t, byStage[models.StageProposal])
	assert.Len(t, byStage, len(models.Stages()))
}

func TestSummarizeStages(t *testing.T) {
	input := []models.Deal{
		deal("1", models.StageLead, 100, 1),
		deal("2", models.StageLead, 50, 1),
		deal("3", models.StageClosed, 10, 1),
	}

	summary := SummarizeStages(GroupByStage(input, nil))
	require.Len(t, summary, 5)
	assert.Equal(t, StageSummary{Stage: models.StageLead, Name: "Leads", Count: 2, Value: 150}, summary[0])
	assert.Equal(t, "Closed Won", summary[4].Name)
	assert.Equal(t, 1, summary[4].Count)
	assert.Zero(t, summary[2].Count)
}

func ids(deals []models.Deal) []string {
	out := make([]string, 0, len(deals))
	for _, d := range deals {
		out = append(out, d.ID)
	}
	return out
}
