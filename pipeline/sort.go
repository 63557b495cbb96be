// ABOUTME: Deal table sorting by column and direction
// ABOUTME: Always returns a new slice; the input is never reordered
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// SortField names a deal table column.
type SortField string

const (
	SortByTitle   SortField = "title"
	SortByValue   SortField = "value"
	SortByStage   SortField = "stage"
	SortByCreated SortField = "created_at"
)

func ParseSortField(value string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(value))); f {
	case SortByTitle, SortByValue, SortByStage, SortByCreated:
		return f, nil
	case "":
		return SortByCreated, nil
	default:
		return "", fmt.Errorf("invalid sort field: %s (valid: title, value, stage, created_at)", value)
	}
}

// SortDeals orders deals by field. Stage sorts alphabetically, as the deal table does.
func SortDeals(deals []models.Deal, field SortField, ascending bool) []models.Deal {
	out := make([]models.Deal, len(deals))
	copy(out, deals)

	less := func(a, b models.Deal) bool {
		switch field {
		case SortByTitle:
			return a.Title < b.Title
		case SortByValue:
			return a.Value < b.Value
		case SortByStage:
			return a.Stage < b.Stage
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}
