// ABOUTME: Pipeline report MCP tool handlers
// ABOUTME: Implements pipeline_board, deal_health, sales_funnel, revenue_forecast, contact_status and pipeline_dashboard
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReportHandlers struct {
	source store.Source
	engine *pipeline.Engine
}

func NewReportHandlers(source store.Source, engine *pipeline.Engine) *ReportHandlers {
	return &ReportHandlers{source: source, engine: engine}
}

func (h *ReportHandlers) report(ctx context.Context, engine *pipeline.Engine) (*pipeline.Report, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	return engine.Analyze(snap), nil
}

type DealSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Value       int64  `json:"value"`
	Stage       string `json:"stage"`
	ContactName string `json:"contact_name,omitempty"`
	Company     string `json:"company,omitempty"`
	CreatedAt   string `json:"created_at"`
	AgeDays     int    `json:"age_days"`
	Health      string `json:"health"`
}

type BoardStage struct {
	Stage string        `json:"stage"`
	Name  string        `json:"name"`
	Count int           `json:"count"`
	Value int64         `json:"value"`
	Deals []DealSummary `json:"deals"`
}

type PipelineBoardInput struct{}

type PipelineBoardOutput struct {
	Stages     []BoardStage `json:"stages"`
	TotalValue int64        `json:"total_value"`
	OpenValue  int64        `json:"open_value"`
}

func (h *ReportHandlers) PipelineBoard(ctx context.Context, request *mcp.CallToolRequest, input PipelineBoardInput) (*mcp.CallToolResult, PipelineBoardOutput, error) {
	r, err := h.report(ctx, h.engine)
	if err != nil {
		return nil, PipelineBoardOutput{}, err
	}

	health := make(map[string]pipeline.ClassifiedDeal, len(r.Health))
	for _, d := range r.Health {
		health[d.ID] = d
	}

	out := PipelineBoardOutput{TotalValue: r.TotalValue, OpenValue: r.OpenValue}
	for _, s := range r.Stages {
		stage := BoardStage{Stage: string(s.Stage), Name: s.Name, Count: s.Count, Value: s.Value, Deals: []DealSummary{}}
		for _, d := range r.Board[s.Stage] {
			stage.Deals = append(stage.Deals, dealToSummary(health[d.ID]))
		}
		out.Stages = append(out.Stages, stage)
	}
	return nil, out, nil
}

type DealHealthInput struct {
	Stage  string `json:"stage,omitempty" jsonschema:"Only deals in this stage: lead, contact, proposal, negotiation, closed"`
	Status string `json:"status,omitempty" jsonschema:"Only deals with this health: healthy, warning, rotting"`
}

type HealthCount struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Value  int64  `json:"value"`
}

type DealHealthOutput struct {
	Deals   []DealSummary `json:"deals"`
	Summary []HealthCount `json:"summary"`
}

func (h *ReportHandlers) DealHealth(ctx context.Context, request *mcp.CallToolRequest, input DealHealthInput) (*mcp.CallToolResult, DealHealthOutput, error) {
	var stage models.Stage
	if input.Stage != "" {
		s, err := models.ParseStage(input.Stage)
		if err != nil {
			return nil, DealHealthOutput{}, err
		}
		stage = s
	}

	var status pipeline.Health
	if input.Status != "" {
		s, err := pipeline.ParseHealth(input.Status)
		if err != nil {
			return nil, DealHealthOutput{}, err
		}
		status = s
	}

	r, err := h.report(ctx, h.engine)
	if err != nil {
		return nil, DealHealthOutput{}, err
	}

	// The summary covers the stage filter but not the status filter so the counts stay comparable.
	inStage := pipeline.FilterByStage(r.Health, stage)
	deals := pipeline.FilterByHealth(inStage, status)

	out := DealHealthOutput{
		Deals:   make([]DealSummary, 0, len(deals)),
		Summary: healthCounts(pipeline.SummarizeHealth(inStage)),
	}
	for _, d := range deals {
		out.Deals = append(out.Deals, dealToSummary(d))
	}
	return nil, out, nil
}

type ConversionOutput struct {
	From string `json:"from_stage"`
	To   string `json:"to_stage"`
	Name string `json:"name"`
	Rate int    `json:"rate"`
	Band string `json:"band"`
}

type SalesFunnelInput struct{}

type SalesFunnelOutput struct {
	Conversions []ConversionOutput `json:"conversions"`
}

func (h *ReportHandlers) SalesFunnel(ctx context.Context, request *mcp.CallToolRequest, input SalesFunnelInput) (*mcp.CallToolResult, SalesFunnelOutput, error) {
	r, err := h.report(ctx, h.engine)
	if err != nil {
		return nil, SalesFunnelOutput{}, err
	}
	return nil, SalesFunnelOutput{Conversions: conversionsToOutput(r.Funnel)}, nil
}

type RevenueForecastInput struct {
	Horizon int `json:"horizon,omitempty" jsonschema:"Months to project: 3, 6 or 12 (default from configuration)"`
}

type RevenueForecastOutput struct {
	Horizon int                      `json:"horizon"`
	Points  []pipeline.ForecastPoint `json:"points"`
}

func (h *ReportHandlers) RevenueForecast(ctx context.Context, request *mcp.CallToolRequest, input RevenueForecastInput) (*mcp.CallToolResult, RevenueForecastOutput, error) {
	engine := h.engine
	if input.Horizon != 0 {
		if !pipeline.ValidHorizon(input.Horizon) {
			return nil, RevenueForecastOutput{}, fmt.Errorf("invalid horizon: %d (valid: 3, 6, 12)", input.Horizon)
		}
		engine = engine.WithHorizon(input.Horizon)
	}

	r, err := h.report(ctx, engine)
	if err != nil {
		return nil, RevenueForecastOutput{}, err
	}
	return nil, RevenueForecastOutput{Horizon: r.Horizon, Points: r.Forecast}, nil
}

type ContactStatusInput struct{}

type ContactStatusOutput struct {
	Total    int                    `json:"total"`
	Statuses []pipeline.StatusShare `json:"statuses"`
}

func (h *ReportHandlers) ContactStatus(ctx context.Context, request *mcp.CallToolRequest, input ContactStatusInput) (*mcp.CallToolResult, ContactStatusOutput, error) {
	r, err := h.report(ctx, h.engine)
	if err != nil {
		return nil, ContactStatusOutput{}, err
	}
	return nil, ContactStatusOutput{Total: r.TotalContacts, Statuses: r.StatusShares}, nil
}

type PipelineDashboardInput struct{}

type PipelineDashboardOutput struct {
	GeneratedAt  string                   `json:"generated_at"`
	TotalValue   int64                    `json:"total_value"`
	OpenValue    int64                    `json:"open_value"`
	DealCount    int                      `json:"deal_count"`
	ContactCount int                      `json:"contact_count"`
	Health       []HealthCount            `json:"health"`
	Funnel       []ConversionOutput       `json:"funnel"`
	Forecast     []pipeline.ForecastPoint `json:"forecast"`
	Recent       []ActivityOutput         `json:"recent_activities"`
	Overdue      []ActivityOutput         `json:"overdue_tasks"`
	Rendered     string                   `json:"rendered"`
}

func (h *ReportHandlers) PipelineDashboard(ctx context.Context, request *mcp.CallToolRequest, input PipelineDashboardInput) (*mcp.CallToolResult, PipelineDashboardOutput, error) {
	r, err := h.report(ctx, h.engine)
	if err != nil {
		return nil, PipelineDashboardOutput{}, err
	}

	out := PipelineDashboardOutput{
		GeneratedAt:  r.GeneratedAt.Format(time.RFC3339),
		TotalValue:   r.TotalValue,
		OpenValue:    r.OpenValue,
		DealCount:    len(r.Health),
		ContactCount: r.TotalContacts,
		Health:       healthCounts(r.HealthSummary),
		Funnel:       conversionsToOutput(r.Funnel),
		Forecast:     r.Forecast,
		Recent:       make([]ActivityOutput, 0, len(r.Recent)),
		Overdue:      make([]ActivityOutput, 0, len(r.Overdue)),
		Rendered:     viz.RenderDashboard(r),
	}
	for _, a := range r.Recent {
		out.Recent = append(out.Recent, activityToOutput(&a))
	}
	for _, a := range r.Overdue {
		out.Overdue = append(out.Overdue, activityToOutput(&a))
	}
	return nil, out, nil
}

type GenerateGraphInput struct {
	Type string `json:"type,omitempty" jsonschema:"Graph type: funnel or pipeline (default funnel)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
}

func (h *ReportHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	graphType := input.Type
	if graphType == "" {
		graphType = viz.GraphFunnel
	}

	r, err := h.report(ctx, h.engine)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}

	dot, err := viz.Generate(ctx, graphType, r)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}
	return nil, GenerateGraphOutput{GraphType: graphType, DOTSource: dot}, nil
}

func dealToSummary(d pipeline.ClassifiedDeal) DealSummary {
	out := DealSummary{
		ID:        d.ID,
		Title:     d.Title,
		Value:     d.Value,
		Stage:     string(d.Stage),
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		AgeDays:   d.Age,
		Health:    string(d.Status),
	}
	if d.Contact != nil {
		out.ContactName = d.Contact.Name
		out.Company = d.Contact.Company
	}
	return out
}

func healthCounts(summary map[pipeline.Health]pipeline.HealthTotals) []HealthCount {
	out := make([]HealthCount, 0, len(summary))
	for _, s := range pipeline.HealthStatuses() {
		t := summary[s]
		out = append(out, HealthCount{Status: string(s), Label: s.Label(), Count: t.Count, Value: t.Value})
	}
	return out
}

func conversionsToOutput(funnel []pipeline.Conversion) []ConversionOutput {
	out := make([]ConversionOutput, 0, len(funnel))
	for _, c := range funnel {
		out = append(out, ConversionOutput{
			From: string(c.From),
			To:   string(c.To),
			Name: c.Name(),
			Rate: c.Rate,
			Band: string(c.Band()),
		})
	}
	return out
}
