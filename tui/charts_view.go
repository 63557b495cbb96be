package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/viz"
)

const chartWidth = 30

var forecastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Italic(true)

func (m Model) renderFunnelView() string {
	var s strings.Builder

	for _, st := range m.report.Stages {
		s.WriteString(fmt.Sprintf("%-13s %s %3d  %s\n",
			st.Name, viz.Bar(st.Count, max(len(m.report.Health), 1), chartWidth), st.Count, viz.FormatMoney(st.Value)))
	}
	s.WriteString("\n")

	for _, c := range m.report.Funnel {
		line := fmt.Sprintf("%-28s %s %3d%%", c.Name(), viz.Bar(c.Rate, 100, chartWidth), c.Rate)
		s.WriteString(lipgloss.NewStyle().Foreground(bandColors[c.Band()]).Render(line))
		s.WriteString("\n")
	}

	return s.String()
}

func (m Model) renderForecastView() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("Horizon: %d months\n\n", m.report.Horizon))

	if len(m.report.Forecast) == 0 {
		s.WriteString("No revenue recorded yet.\n")
		return s.String()
	}

	var peak int64 = 1
	for _, p := range m.report.Forecast {
		peak = max(peak, p.Amount)
	}

	for _, p := range m.report.Forecast {
		line := fmt.Sprintf("%-4s %s %s", p.Period,
			viz.Bar(int(float64(p.Amount)/float64(peak)*100), 100, chartWidth), viz.FormatMoney(p.Amount))
		if p.IsForecast {
			line = forecastStyle.Render(line + "  (forecast)")
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	return s.String()
}

// nextHorizon cycles 3 → 6 → 12 → 3.
func nextHorizon(current int) int {
	switch current {
	case pipeline.HorizonQuarter:
		return pipeline.HorizonHalfYear
	case pipeline.HorizonHalfYear:
		return pipeline.HorizonYear
	default:
		return pipeline.HorizonQuarter
	}
}

func (m Model) handleForecastKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h":
		m.engine = m.engine.WithHorizon(nextHorizon(m.engine.Horizon()))
		m.status = fmt.Sprintf("Forecasting %d months", m.engine.Horizon())
		return m, m.loadReport()
	}
	return m, nil
}
