// ABOUTME: Funnel conversion calculator over adjacent pipeline stages
// ABOUTME: Stock ratio of deals in the next stage to deals in the current one, as whole percents
package pipeline

import "github.com/harperreed/dealflow/models"

// Conversion is the rate between two adjacent stages.
type Conversion struct {
	From models.Stage `json:"from_stage"`
	To   models.Stage `json:"to_stage"`
	Rate int          `json:"rate"`
}

// RateBand buckets a conversion rate for colouring.
type RateBand string

const (
	BandStrong RateBand = "strong"
	BandFair   RateBand = "fair"
	BandWeak   RateBand = "weak"
)

// Band is strong above 70, fair above 40, weak otherwise.
func (c Conversion) Band() RateBand {
	switch {
	case c.Rate > 70:
		return BandStrong
	case c.Rate > 40:
		return BandFair
	default:
		return BandWeak
	}
}

// Name reads like "Leads to Contacted".
func (c Conversion) Name() string {
	return c.From.Label() + " to " + c.To.Label()
}

// ConversionRates computes one rate per adjacent stage pair, always len(stages)-1 entries.
// This compares the deals currently sitting in each stage, not a cohort over time.
func ConversionRates(buckets StageBuckets) []Conversion {
	stages := models.Stages()
	out := make([]Conversion, 0, len(stages)-1)
	for i := 0; i+1 < len(stages); i++ {
		from, to := stages[i], stages[i+1]
		out = append(out, Conversion{
			From: from,
			To:   to,
			Rate: percent(buckets.Count(to), buckets.Count(from)),
		})
	}
	return out
}

// percent rounds part/whole*100 half up; a zero whole yields 0.
func percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
