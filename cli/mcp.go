// ABOUTME: MCP server subcommand
// ABOUTME: Registers pipeline tools, resources and prompts and serves them on stdio
package cli

import (
	"context"
	"database/sql"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dealflow/handlers"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
)

// NewMCPServer builds the MCP server. Report tools read from source; write tools use the local database.
func NewMCPServer(database *sql.DB, source store.Source, engine *pipeline.Engine, version string) *mcp.Server {
	reportHandlers := handlers.NewReportHandlers(source, engine)
	contactHandlers := handlers.NewContactHandlers(database, engine.Now)
	dealHandlers := handlers.NewDealHandlers(database, engine.Now)
	resourceHandlers := handlers.NewResourceHandlers(source, engine)
	promptHandlers := handlers.NewPromptHandlers(source, engine)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealflow",
		Version: version,
	}, nil)

	// Report tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_board",
		Description: "Show deals grouped by pipeline stage with counts and values",
	}, reportHandlers.PipelineBoard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deal_health",
		Description: "Classify open deals as healthy, warning or rotting by time in stage, optionally filtered by stage and status",
	}, reportHandlers.DealHealth)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sales_funnel",
		Description: "Conversion rates between adjacent pipeline stages",
	}, reportHandlers.SalesFunnel)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "revenue_forecast",
		Description: "Historical revenue plus a projection over 3, 6 or 12 months",
	}, reportHandlers.RevenueForecast)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "contact_status",
		Description: "Contact counts and shares per status",
	}, reportHandlers.ContactStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_dashboard",
		Description: "Every pipeline view at once, including a rendered text dashboard",
	}, reportHandlers.PipelineDashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Render the funnel or the deal pipeline as a GraphViz DOT graph",
	}, reportHandlers.GenerateGraph)

	// Write tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact to the CRM",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name, email or company",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, note or task against a contact or deal",
	}, contactHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal, optionally linked to a contact",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal",
		Description: "Move a deal to another pipeline stage",
	}, dealHandlers.MoveDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_deals",
		Description: "List deals with optional stage filter and sort order",
	}, dealHandlers.FindDeals)

	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, t := range resourceHandlers.ResourceTemplates() {
		server.AddResourceTemplate(t, resourceHandlers.ReadResource)
	}
	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

// MCPCommand starts the MCP server on stdio until ctx is cancelled.
func MCPCommand(ctx context.Context, database *sql.DB, source store.Source, engine *pipeline.Engine, logger *zap.Logger, version string) error {
	logger.Info("starting MCP server", zap.String("version", version))
	server := NewMCPServer(database, source, engine, version)
	err := server.Run(ctx, &mcp.StdioTransport{})
	logger.Info("MCP server stopped")
	return err
}
