// ABOUTME: Terminal dashboard rendering for the pipeline report
// ABOUTME: Draws stage bars, deal health, funnel conversions and the revenue forecast as ASCII
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
)

const (
	barWidth = 10
	rule     = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)

// RenderDashboard renders every section of the report as plain text.
func RenderDashboard(r *pipeline.Report) string {
	if r == nil {
		r = pipeline.NewEngine(nil, pipeline.HorizonQuarter, nil).Analyze(nil)
	}

	var out strings.Builder

	out.WriteString(rule + "\n")
	out.WriteString("  DEALFLOW PIPELINE DASHBOARD\n")
	out.WriteString(rule + "\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, r.Stages)
	out.WriteString(fmt.Sprintf("  Total %s  Open %s\n\n", FormatMoney(r.TotalValue), FormatMoney(r.OpenValue)))

	out.WriteString("DEAL HEALTH\n")
	renderHealth(&out, r.HealthSummary)
	out.WriteString("\n")

	out.WriteString("CONVERSION\n")
	renderFunnel(&out, r.Funnel)
	out.WriteString("\n")

	out.WriteString(fmt.Sprintf("FORECAST (%d months)\n", r.Horizon))
	renderForecast(&out, r.Forecast)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	campaigns := 0
	for _, s := range models.CampaignStatuses() {
		campaigns += r.Campaigns.ByStatus[s]
	}
	out.WriteString(fmt.Sprintf("  %d contacts  %d deals  %d campaigns (%d emails sent)\n\n",
		r.TotalContacts, len(r.Health), campaigns, r.Campaigns.TotalSent))

	rotting := r.HealthSummary[pipeline.Rotting].Count
	if rotting > 0 || len(r.Overdue) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if rotting > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d deals rotting in their stage\n", rotting))
		}
		if len(r.Overdue) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d overdue tasks\n", len(r.Overdue)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, stages []pipeline.StageSummary) {
	maxCount := 0
	for _, s := range stages {
		maxCount = max(maxCount, s.Count)
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n",
			s.Name, Bar(s.Count, maxCount, barWidth), s.Count, FormatMoney(s.Value)))
	}
}

func renderHealth(out *strings.Builder, summary map[pipeline.Health]pipeline.HealthTotals) {
	for _, h := range pipeline.HealthStatuses() {
		t := summary[h]
		out.WriteString(fmt.Sprintf("  %-9s %2d (%s)\n", h.Label(), t.Count, FormatMoney(t.Value)))
	}
}

func renderFunnel(out *strings.Builder, funnel []pipeline.Conversion) {
	for _, c := range funnel {
		out.WriteString(fmt.Sprintf("  %-28s %s %3d%% %s\n", c.Name(), Bar(c.Rate, 100, barWidth), c.Rate, c.Band()))
	}
}

func renderForecast(out *strings.Builder, points []pipeline.ForecastPoint) {
	if len(points) == 0 {
		out.WriteString("  no revenue recorded\n")
		return
	}

	var peak int64 = 1
	for _, p := range points {
		peak = max(peak, p.Amount)
	}
	for _, p := range points {
		marker := " "
		if p.IsForecast {
			marker = "*"
		}
		out.WriteString(fmt.Sprintf("  %-4s%s %s %s\n", p.Period, marker,
			Bar(int(float64(p.Amount)/float64(peak)*100), 100, barWidth), FormatMoney(p.Amount)))
	}
}

// Bar draws a width-cell bar filled in proportion to n/total.
func Bar(n, total, width int) string {
	if total <= 0 || n < 0 {
		n = 0
		total = 1
	}
	filled := min(n*width/total, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatMoney renders whole currency units compactly: $950, $12.5K, $1.2M.
func FormatMoney(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, float64(v)/1_000)
	default:
		return fmt.Sprintf("%s$%d", sign, v)
	}
}
