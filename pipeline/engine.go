// ABOUTME: Engine that derives every pipeline view from one snapshot at one instant
// ABOUTME: Holds rot thresholds, forecast horizon and the clock so callers share one configuration
package pipeline

import (
	"time"

	"github.com/harperreed/dealflow/models"
)

// Engine bundles the configuration needed to analyze a snapshot.
type Engine struct {
	thresholds Thresholds
	horizon    int
	clock      Clock
}

// NewEngine builds an Engine. A nil thresholds table uses the defaults, a nil clock uses the
// system clock.
func NewEngine(thresholds Thresholds, horizon int, clock Clock) *Engine {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{thresholds: thresholds, horizon: horizon, clock: clock}
}

func (e *Engine) Thresholds() Thresholds { return e.thresholds }

func (e *Engine) Horizon() int { return e.horizon }

func (e *Engine) Now() time.Time { return e.clock() }

// Report is every derived view of a snapshot.
type Report struct {
	GeneratedAt      time.Time                    `json:"generated_at"`
	Board            StageBuckets                 `json:"board"`
	Stages           []StageSummary               `json:"stages"`
	TotalValue       int64                        `json:"total_value"`
	OpenValue        int64                        `json:"open_value"`
	Health           []ClassifiedDeal             `json:"health"`
	HealthSummary    map[Health]HealthTotals      `json:"health_summary"`
	Funnel           []Conversion                 `json:"funnel"`
	Forecast         []ForecastPoint              `json:"forecast"`
	Horizon          int                          `json:"horizon"`
	ContactsByStatus map[models.ContactStatus]int `json:"contacts_by_status"`
	StatusShares     []StatusShare                `json:"status_shares"`
	TotalContacts    int                          `json:"total_contacts"`
	Recent           []models.Activity            `json:"recent_activities"`
	Overdue          []models.Activity            `json:"overdue_tasks"`
	Campaigns        CampaignSummary              `json:"campaigns"`
}

// Analyze computes the full report. The clock is read once so every view agrees on now.
func (e *Engine) Analyze(snap *models.Snapshot) *Report {
	if snap == nil {
		snap = &models.Snapshot{}
	}
	now := e.clock()

	contacts := IndexContacts(snap.Contacts)
	board := GroupByStage(snap.Deals, contacts)
	deals := make([]models.Deal, 0, len(snap.Deals))
	for _, d := range snap.Deals {
		deals = append(deals, WithContact(d, contacts))
	}
	// Health covers every deal, unknown stages included.
	classified := SortByHealth(ClassifyDeals(deals, now, e.thresholds))
	counts := CountByStatus(snap.Contacts)

	return &Report{
		GeneratedAt:      now,
		Board:            board,
		Stages:           SummarizeStages(board),
		TotalValue:       TotalValue(deals),
		OpenValue:        OpenValue(deals),
		Health:           classified,
		HealthSummary:    SummarizeHealth(classified),
		Funnel:           ConversionRates(board),
		Forecast:         Forecast(snap.Revenue, e.horizon),
		Horizon:          e.horizon,
		ContactsByStatus: counts,
		StatusShares:     StatusShares(counts),
		TotalContacts:    len(snap.Contacts),
		Recent:           RecentActivities(snap.Activities, DefaultFeedLimit),
		Overdue:          OverdueTasks(snap.Activities, now),
		Campaigns:        SummarizeCampaigns(snap.Campaigns),
	}
}

// WithHorizon returns a copy of the engine projecting n periods.
func (e *Engine) WithHorizon(n int) *Engine {
	cp := *e
	cp.horizon = n
	return &cp
}
