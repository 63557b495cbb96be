// ABOUTME: Aggregate deal value calculations
// ABOUTME: Integer sums over whole currency units; negative values and unknown stages add nothing
package pipeline

import "github.com/harperreed/dealflow/models"

// TotalValue sums the value of every deal in the pipeline order.
func TotalValue(deals []models.Deal) int64 {
	var total int64
	for _, d := range deals {
		total += dealValue(d)
	}
	return total
}

// OpenValue sums the value of deals that are not closed.
func OpenValue(deals []models.Deal) int64 {
	var total int64
	for _, d := range deals {
		if d.Stage == models.StageClosed {
			continue
		}
		total += dealValue(d)
	}
	return total
}

// ValueByStage sums each bucket. The result has an entry for every stage.
func ValueByStage(buckets StageBuckets) map[models.Stage]int64 {
	out := make(map[models.Stage]int64, len(models.Stages()))
	for _, stage := range models.Stages() {
		out[stage] = TotalValue(buckets[stage])
	}
	return out
}

// dealValue keeps every sum in line with GroupByStage, which drops unknown stages.
func dealValue(d models.Deal) int64 {
	if d.Value < 0 || !d.Stage.Valid() {
		return 0
	}
	return d.Value
}
