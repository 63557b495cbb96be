// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Kanban board with health, funnel and forecast tabs over a snapshot source
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/harperreed/dealflow/logging"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
)

// ErrNotTerminal is returned by Run when stdout is not an interactive terminal.
var ErrNotTerminal = errors.New("tui requires an interactive terminal")

// Tab is the active view.
type Tab int

const (
	TabBoard Tab = iota
	TabHealth
	TabFunnel
	TabForecast
)

var tabNames = []string{"Board", "Health", "Funnel", "Forecast"}

// Model is the main bubbletea model
type Model struct {
	source store.Source
	mover  store.Mover
	engine *pipeline.Engine
	logger *zap.Logger

	tab    Tab
	report *pipeline.Report
	err    error
	status string

	// Board selection
	stageIdx int
	dealIdx  int

	// Health table cursor
	healthRow int

	width  int
	height int
}

type reportLoadedMsg struct {
	report *pipeline.Report
	err    error
}

type dealMovedMsg struct {
	title string
	stage models.Stage
	err   error
}

// NewModel creates a new TUI model. Deals can be moved when source also implements store.Mover.
func NewModel(source store.Source, engine *pipeline.Engine, logger *zap.Logger) Model {
	if logger == nil {
		logger = logging.Nop()
	}
	m := Model{
		source: source,
		engine: engine,
		logger: logger,
		tab:    TabBoard,
		width:  120,
		height: 30,
	}
	if mover, ok := source.(store.Mover); ok {
		m.mover = mover
	}
	return m
}

// Run starts the TUI on the alternate screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, source store.Source, engine *pipeline.Engine, logger *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	p := tea.NewProgram(NewModel(source, engine, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return m.loadReport()
}

func (m Model) loadReport() tea.Cmd {
	source, engine, logger := m.source, m.engine, m.logger
	return func() tea.Msg {
		snap, err := source.Snapshot(context.Background())
		if err != nil {
			logger.Error("failed to load snapshot", zap.Error(err))
			return reportLoadedMsg{err: err}
		}
		return reportLoadedMsg{report: engine.Analyze(snap)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case reportLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.report = msg.report
			m.clampSelection()
		}
		return m, nil
	case dealMovedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Move failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Moved %s to %s", msg.title, msg.stage.Label())
		m.stageIdx = msg.stage.Index()
		return m, m.loadReport()
	}
	return m, nil
}

func (m Model) View() string {
	var s []string
	s = append(s, titleStyle.Render("DEALFLOW"), m.renderTabs(), "")

	switch {
	case m.err != nil:
		s = append(s, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.report == nil:
		s = append(s, "Loading pipeline...")
	default:
		switch m.tab {
		case TabBoard:
			s = append(s, m.renderBoardView())
		case TabHealth:
			s = append(s, m.renderHealthView())
		case TabFunnel:
			s = append(s, m.renderFunnelView())
		case TabForecast:
			s = append(s, m.renderForecastView())
		}
	}

	if m.status != "" {
		s = append(s, "", statusStyle.Render(m.status))
	}
	s = append(s, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, s...)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil
	case "r":
		m.status = ""
		return m, m.loadReport()
	}

	if m.report == nil {
		return m, nil
	}

	// Delegate to view-specific handlers
	switch m.tab {
	case TabBoard:
		return m.handleBoardKeys(msg)
	case TabHealth:
		return m.handleHealthKeys(msg)
	case TabForecast:
		return m.handleForecastKeys(msg)
	}

	return m, nil
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderHelp() string {
	help := "tab: switch view • r: reload • q: quit"
	switch m.tab {
	case TabBoard:
		help = "←/→: stage • ↑/↓: deal • ]/[: move deal forward/back • " + help
	case TabHealth:
		help = "↑/↓: navigate • " + help
	case TabForecast:
		help = "h: change horizon • " + help
	}
	return helpStyle.Render(help)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	healthColors = map[pipeline.Health]lipgloss.Color{
		pipeline.Healthy: lipgloss.Color("42"),
		pipeline.Warning: lipgloss.Color("214"),
		pipeline.Rotting: lipgloss.Color("196"),
	}

	bandColors = map[pipeline.RateBand]lipgloss.Color{
		pipeline.BandStrong: lipgloss.Color("42"),
		pipeline.BandFair:   lipgloss.Color("214"),
		pipeline.BandWeak:   lipgloss.Color("196"),
	}
)
