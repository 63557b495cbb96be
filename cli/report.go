// ABOUTME: Report CLI commands over any snapshot source
// ABOUTME: Prints the dashboard, board, health, funnel, forecast and contact tables and renders graphs
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
)

func loadReport(ctx context.Context, source store.Source, engine *pipeline.Engine) (*pipeline.Report, error) {
	snap, err := source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	return engine.Analyze(snap), nil
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// ReportDashboardCommand prints the full text dashboard.
func ReportDashboardCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report dashboard", flag.ExitOnError)
	horizon := fs.String("horizon", "", "Forecast horizon (3, 6 or 12 months)")
	_ = fs.Parse(args)

	engine, err := withHorizonFlag(engine, *horizon)
	if err != nil {
		return err
	}

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, viz.RenderDashboard(report))
	return nil
}

// ReportBoardCommand prints deal counts and values per stage.
func ReportBoardCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report board", flag.ExitOnError)
	_ = fs.Parse(args)

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	t := newTable("Pipeline")
	t.AppendHeader(table.Row{"Stage", "Deals", "Value"})
	for _, s := range report.Stages {
		t.AppendRow(table.Row{s.Name, s.Count, viz.FormatMoney(s.Value)})
	}
	t.AppendFooter(table.Row{"Open", "", viz.FormatMoney(report.OpenValue)})
	t.AppendFooter(table.Row{"Total", len(report.Health), viz.FormatMoney(report.TotalValue)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
	return nil
}

// ReportHealthCommand lists deals by health, most urgent first.
func ReportHealthCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report health", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	status := fs.String("status", "", "Filter by health (healthy, warning, rotting)")
	_ = fs.Parse(args)

	var dealStage models.Stage
	if *stage != "" {
		parsed, err := models.ParseStage(*stage)
		if err != nil {
			return err
		}
		dealStage = parsed
	}

	var health pipeline.Health
	if *status != "" {
		parsed, err := pipeline.ParseHealth(*status)
		if err != nil {
			return err
		}
		health = parsed
	}

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	inStage := pipeline.FilterByStage(report.Health, dealStage)
	deals := pipeline.FilterByHealth(inStage, health)

	t := newTable("Deal Health")
	t.AppendHeader(table.Row{"Deal", "Contact", "Stage", "Value", "Age", "Limit", "Status"})
	for _, d := range deals {
		contactName := ""
		if d.Contact != nil {
			contactName = d.Contact.Name
		}
		limit := "-"
		if days, rots := engine.Thresholds().For(d.Stage); rots {
			limit = fmt.Sprintf("%dd", days)
		}
		t.AppendRow(table.Row{
			d.Title, contactName, d.Stage.Label(), viz.FormatMoney(d.Value),
			fmt.Sprintf("%dd", d.Age), limit, d.Status.Label(),
		})
	}
	t.Render()

	summary := pipeline.SummarizeHealth(inStage)
	for _, h := range pipeline.HealthStatuses() {
		fmt.Fprintf(stdout, "%s: %d (%s)  ", h.Label(), summary[h].Count, viz.FormatMoney(summary[h].Value))
	}
	fmt.Fprintln(stdout)
	return nil
}

// ReportFunnelCommand prints stage-to-stage conversion rates.
func ReportFunnelCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report funnel", flag.ExitOnError)
	_ = fs.Parse(args)

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	t := newTable("Conversion Funnel")
	t.AppendHeader(table.Row{"Step", "Rate", "", "Band"})
	for _, c := range report.Funnel {
		t.AppendRow(table.Row{c.Name(), fmt.Sprintf("%d%%", c.Rate), viz.Bar(c.Rate, 100, 20), string(c.Band())})
	}
	t.Render()
	return nil
}

// ReportForecastCommand prints actual and projected revenue.
func ReportForecastCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report forecast", flag.ExitOnError)
	horizon := fs.String("horizon", "", "Forecast horizon (3, 6 or 12 months)")
	_ = fs.Parse(args)

	engine, err := withHorizonFlag(engine, *horizon)
	if err != nil {
		return err
	}

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	if len(report.Forecast) == 0 {
		fmt.Fprintln(stdout, "No revenue recorded")
		return nil
	}

	t := newTable(fmt.Sprintf("Revenue Forecast (%d months)", report.Horizon))
	t.AppendHeader(table.Row{"Period", "Amount", "Kind"})
	for _, p := range report.Forecast {
		kind := "actual"
		if p.IsForecast {
			kind = "forecast"
		}
		t.AppendRow(table.Row{p.Period, viz.FormatMoney(p.Amount), kind})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
	return nil
}

// ReportContactsCommand prints the contact status distribution.
func ReportContactsCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report contacts", flag.ExitOnError)
	_ = fs.Parse(args)

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	t := newTable("Contacts by Status")
	t.AppendHeader(table.Row{"Status", "Contacts", "Share"})
	for _, s := range report.StatusShares {
		t.AppendRow(table.Row{s.Name, s.Count, fmt.Sprintf("%d%%", s.Percent)})
	}
	t.AppendFooter(table.Row{"Total", report.TotalContacts, ""})
	t.Render()
	return nil
}

// ReportGraphCommand renders the funnel or pipeline graph as DOT.
func ReportGraphCommand(ctx context.Context, source store.Source, engine *pipeline.Engine, args []string) error {
	fs := flag.NewFlagSet("report graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	graphType := viz.GraphFunnel
	if fs.NArg() > 0 {
		graphType = fs.Arg(0)
	}

	report, err := loadReport(ctx, source, engine)
	if err != nil {
		return err
	}

	dot, err := viz.Generate(ctx, graphType, report)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Fprintln(stdout, dot)
	return nil
}

func withHorizonFlag(engine *pipeline.Engine, value string) (*pipeline.Engine, error) {
	if value == "" {
		return engine, nil
	}
	n, err := pipeline.ParseHorizon(value)
	if err != nil {
		return nil, err
	}
	return engine.WithHorizon(n), nil
}
