package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/viz"
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	columnTitleStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderBoardView() string {
	stages := models.Stages()
	width := max(18, m.width/len(stages)-4)
	health := m.healthByID()

	columns := make([]string, 0, len(stages))
	for i, stage := range stages {
		deals := m.report.Board[stage]

		var s strings.Builder
		s.WriteString(columnTitleStyle.Render(fmt.Sprintf("%s (%d)", stage.Label(), len(deals))))
		s.WriteString("\n")
		s.WriteString(viz.FormatMoney(pipeline.TotalValue(deals)))
		s.WriteString("\n")

		for j, d := range deals {
			s.WriteString("\n")
			s.WriteString(m.renderCard(d, health[d.ID], width, i == m.stageIdx && j == m.dealIdx))
		}
		if len(deals) == 0 {
			s.WriteString("\n(empty)")
		}

		style := columnStyle
		if i == m.stageIdx {
			style = selectedColumnStyle
		}
		columns = append(columns, style.Width(width).Render(s.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (m Model) renderCard(d models.Deal, c pipeline.ClassifiedDeal, width int, selected bool) string {
	title := d.Title
	if len(title) > width-2 {
		title = title[:width-3] + "…"
	}

	line := fmt.Sprintf("%s\n%s · %dd", title, viz.FormatMoney(d.Value), c.Age)
	if d.Contact != nil {
		line += "\n" + d.Contact.Name
	}

	style := lipgloss.NewStyle().Foreground(healthColors[c.Status])
	if selected {
		style = style.Reverse(true)
	}
	return style.Render(line)
}

func (m Model) healthByID() map[string]pipeline.ClassifiedDeal {
	out := make(map[string]pipeline.ClassifiedDeal, len(m.report.Health))
	for _, d := range m.report.Health {
		out[d.ID] = d
	}
	return out
}

// selectedDeal returns the deal under the board cursor.
func (m Model) selectedDeal() (models.Deal, bool) {
	if m.report == nil {
		return models.Deal{}, false
	}
	stages := models.Stages()
	if m.stageIdx < 0 || m.stageIdx >= len(stages) {
		return models.Deal{}, false
	}
	deals := m.report.Board[stages[m.stageIdx]]
	if m.dealIdx < 0 || m.dealIdx >= len(deals) {
		return models.Deal{}, false
	}
	return deals[m.dealIdx], true
}

func (m *Model) clampSelection() {
	stages := models.Stages()
	m.stageIdx = min(max(m.stageIdx, 0), len(stages)-1)
	if m.report == nil {
		m.dealIdx = 0
		return
	}
	n := len(m.report.Board[stages[m.stageIdx]])
	m.dealIdx = min(max(m.dealIdx, 0), max(n-1, 0))
	m.healthRow = min(max(m.healthRow, 0), max(len(m.report.Health)-1, 0))
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.stageIdx--
		m.dealIdx = 0
	case "right", "l":
		m.stageIdx++
		m.dealIdx = 0
	case "up", "k":
		m.dealIdx--
	case "down", "j":
		m.dealIdx++
	case "]":
		return m, m.moveSelected(1)
	case "[":
		return m, m.moveSelected(-1)
	}

	m.clampSelection()
	return m, nil
}

// moveSelected moves the selected deal one stage in direction dir.
func (m *Model) moveSelected(dir int) tea.Cmd {
	deal, ok := m.selectedDeal()
	if !ok {
		return nil
	}
	if m.mover == nil {
		m.status = "This store is read-only"
		return nil
	}

	var target models.Stage
	if dir > 0 {
		target, ok = deal.Stage.Next()
	} else {
		target, ok = deal.Stage.Prev()
	}
	if !ok {
		return nil
	}

	mover, logger, at := m.mover, m.logger, m.engine.Now()
	return func() tea.Msg {
		err := mover.MoveDeal(context.Background(), deal.ID, target, at)
		if err != nil {
			logger.Error("failed to move deal", zap.String("deal_id", deal.ID), zap.Error(err))
		} else {
			logger.Info("deal moved", zap.String("deal_id", deal.ID), zap.String("stage", string(target)))
		}
		return dealMovedMsg{title: deal.Title, stage: target, err: err}
	}
}
