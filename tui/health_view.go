package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/viz"
)

func (m Model) renderHealthView() string {
	var s strings.Builder

	var summary []string
	for _, h := range pipeline.HealthStatuses() {
		t := m.report.HealthSummary[h]
		summary = append(summary, lipgloss.NewStyle().Foreground(healthColors[h]).
			Render(fmt.Sprintf("%s: %d (%s)", h.Label(), t.Count, viz.FormatMoney(t.Value))))
	}
	s.WriteString(strings.Join(summary, "   "))
	s.WriteString("\n\n")

	columns := []table.Column{
		{Title: "Deal", Width: 30},
		{Title: "Stage", Width: 14},
		{Title: "Value", Width: 10},
		{Title: "Age", Width: 6},
		{Title: "Status", Width: 10},
	}

	var rows []table.Row
	for _, d := range m.report.Health {
		rows = append(rows, table.Row{
			d.Title,
			d.Stage.Label(),
			viz.FormatMoney(d.Value),
			fmt.Sprintf("%dd", d.Age),
			d.Status.Label(),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 5)),
	)

	if m.healthRow < len(rows) {
		t.SetCursor(m.healthRow)
	}

	s.WriteString(t.View())
	return s.String()
}

func (m Model) handleHealthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.healthRow--
	case "down", "j":
		m.healthRow++
	case "home", "g":
		m.healthRow = 0
	case "end", "G":
		m.healthRow = len(m.report.Health) - 1
	}

	m.clampSelection()
	return m, nil
}
