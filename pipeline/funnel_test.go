// ABOUTME: Tests for funnel conversion rates
// ABOUTME: Covers zero denominators, half-up rounding and the fixed number of stage pairs
package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/models"
)

func TestConversionRates(t *testing.T) {
	buckets := GroupByStage(dealsWithCounts(map[models.Stage]int{
		models.StageLead:    10,
		models.StageContact: 7,
	}), nil)

	rates := ConversionRates(buckets)
	require.Len(t, rates, len(models.Stages())-1)
	assert.Equal(t, Conversion{From: models.StageLead, To: models.StageContact, Rate: 70}, rates[0])
	assert.Equal(t, 0, rates[1].Rate)
	assert.Equal(t, models.StageNegotiation, rates[3].From)
	assert.Equal(t, models.StageClosed, rates[3].To)
}

func TestConversionRatesZeroDenominator(t *testing.T) {
	buckets := GroupByStage(dealsWithCounts(map[models.Stage]int{
		models.StageContact: 5,
	}), nil)

	rates := ConversionRates(buckets)
	assert.Equal(t, 0, rates[0].Rate)
	assert.Equal(t, 0, rates[1].Rate)

	empty := ConversionRates(GroupByStage(nil, nil))
	require.Len(t, empty, 4)
	for _, r := range empty {
		assert.Zero(t, r.Rate)
	}
}

func TestConversionRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 13, percent(1, 8))
	assert.Equal(t, 150, percent(3, 2))
	assert.Equal(t, 0, percent(4, 0))
}

func TestConversionBand(t *testing.T) {
	assert.Equal(t, BandStrong, Conversion{Rate: 71}.Band())
	assert.Equal(t, BandFair, Conversion{Rate: 70}.Band())
	assert.Equal(t, BandFair, Conversion{Rate: 41}.Band())
	assert.Equal(t, BandWeak, Conversion{Rate: 40}.Band())
	assert.Equal(t, "Leads to Contacted", Conversion{From: models.StageLead, To: models.StageContact}.Name())
}
