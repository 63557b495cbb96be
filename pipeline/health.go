// ABOUTME: Deal health classifier that flags deals sitting too long in their stage
// ABOUTME: Computes whole-day age against per-stage thresholds and ranks healthy/warning/rotting
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
)

// Health is the rot status of a deal.
type Health string

const (
	Healthy Health = "healthy"
	Warning Health = "warning"
	Rotting Health = "rotting"
)

// HealthStatuses lists statuses from most to least urgent.
func HealthStatuses() []Health {
	return []Health{Rotting, Warning, Healthy}
}

// ParseHealth converts user input into a Health. "at_risk" is accepted for warning.
func ParseHealth(value string) (Health, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch Health(v) {
	case Healthy, Warning, Rotting:
		return Health(v), nil
	}
	if v == "at_risk" || v == "at risk" {
		return Warning, nil
	}
	return "", fmt.Errorf("invalid health status: %s (valid: healthy, warning, rotting)", value)
}

// Rank orders statuses for tables: rotting=0, warning=1, healthy=2.
func (h Health) Rank() int {
	switch h {
	case Rotting:
		return 0
	case Warning:
		return 1
	default:
		return 2
	}
}

// Label is the badge text shown next to a deal.
func (h Health) Label() string {
	switch h {
	case Rotting:
		return "Rotting"
	case Warning:
		return "At Risk"
	default:
		return "Healthy"
	}
}

// Thresholds maps a stage to the number of days a deal may sit there before it rots.
// The closed stage never rots and needs no entry.
type Thresholds map[models.Stage]int

// DefaultThresholds returns the stock rot table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		models.StageLead:        7,
		models.StageContact:     14,
		models.StageProposal:    21,
		models.StageNegotiation: 30,
	}
}

// For returns the threshold for stage and false when the stage never rots.
// Missing or negative entries fall back to the default table.
func (t Thresholds) For(stage models.Stage) (int, bool) {
	switch stage {
	case models.StageLead, models.StageContact, models.StageProposal, models.StageNegotiation:
		if days, ok := t[stage]; ok && days >= 0 {
			return days, true
		}
		return DefaultThresholds()[stage], true
	case models.StageClosed:
		return 0, false
	default:
		return 0, false
	}
}

// ClassifiedDeal is a deal annotated with its age and health.
type ClassifiedDeal struct {
	models.Deal
	Age    int    `json:"age"`
	Status Health `json:"status"`
}

// AgeInDays counts whole days from created to now, truncating. Future timestamps count as 0.
func AgeInDays(created, now time.Time) int {
	d := now.Sub(created)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Classify computes the age and health of a single deal.
func Classify(deal models.Deal, now time.Time, thresholds Thresholds) ClassifiedDeal {
	age := AgeInDays(deal.CreatedAt, now)
	return ClassifiedDeal{
		Deal:   deal.Clone(),
		Age:    age,
		Status: classifyAge(age, deal.Stage, thresholds),
	}
}

// ClassifyDeals classifies every deal, preserving input order.
func ClassifyDeals(deals []models.Deal, now time.Time, thresholds Thresholds) []ClassifiedDeal {
	out := make([]ClassifiedDeal, 0, len(deals))
	for _, d := range deals {
		out = append(out, Classify(d, now, thresholds))
	}
	return out
}

func classifyAge(age int, stage models.Stage, thresholds Thresholds) Health {
	limit, rots := thresholds.For(stage)
	if !rots {
		return Healthy
	}

	// age < 0.5*limit, kept in integers
	switch {
	case 2*age < limit:
		return Healthy
	case age < limit:
		return Warning
	default:
		return Rotting
	}
}

// SortByHealth returns a copy stably sorted by health rank, most urgent first.
func SortByHealth(deals []ClassifiedDeal) []ClassifiedDeal {
	out := make([]ClassifiedDeal, len(deals))
	copy(out, deals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status.Rank() < out[j].Status.Rank()
	})
	return out
}

// FilterByStage keeps classified deals in stage. An empty stage keeps everything.
func FilterByStage(deals []ClassifiedDeal, stage models.Stage) []ClassifiedDeal {
	out := make([]ClassifiedDeal, 0, len(deals))
	for _, d := range deals {
		if stage == "" || d.Stage == stage {
			out = append(out, d)
		}
	}
	return out
}

// FilterByHealth keeps classified deals with status. An empty status keeps everything.
func FilterByHealth(deals []ClassifiedDeal, status Health) []ClassifiedDeal {
	out := make([]ClassifiedDeal, 0, len(deals))
	for _, d := range deals {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

// HealthTotals is the count and value of deals sharing a status.
type HealthTotals struct {
	Count int   `json:"count"`
	Value int64 `json:"value"`
}

// SummarizeHealth totals deals per status. Every status is present.
func SummarizeHealth(deals []ClassifiedDeal) map[Health]HealthTotals {
	out := make(map[Health]HealthTotals, 3)
	for _, h := range HealthStatuses() {
		out[h] = HealthTotals{}
	}
	for _, d := range deals {
		t := out[d.Status]
		t.Count++
		t.Value += dealValue(d.Deal)
		out[d.Status] = t
	}
	return out
}
