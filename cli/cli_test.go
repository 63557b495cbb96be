package cli

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
)

func setupTestCLI(t *testing.T) *sql.DB {
	tmpDB, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	_ = tmpDB.Close()
	t.Cleanup(func() { _ = os.Remove(tmpDB.Name()) })

	database, err := db.OpenDatabase(tmpDB.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// captureOutput redirects command output for the rest of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func testEngine() *pipeline.Engine {
	return pipeline.NewEngine(nil, pipeline.HorizonQuarter, pipeline.FixedClock(time.Now()))
}

func TestAddAndListContacts(t *testing.T) {
	database := setupTestCLI(t)
	out := captureOutput(t)

	require.NoError(t, AddContactCommand(database, []string{"--name", "Ada Lovelace", "--email", "ada@example.com", "--status", "prospect", "--tags", "math, engines"}))
	assert.Contains(t, out.String(), "✓ Contact created: Ada Lovelace")

	out.Reset()
	require.NoError(t, ListContactsCommand(database, []string{"--status", "prospect"}))
	assert.Contains(t, out.String(), "Ada Lovelace")
	assert.Contains(t, out.String(), "Total: 1 contact(s)")

	out.Reset()
	require.NoError(t, ListContactsCommand(database, []string{"--status", "customer"}))
	assert.Contains(t, out.String(), "No contacts found")
}

func TestAddContactValidation(t *testing.T) {
	database := setupTestCLI(t)
	captureOutput(t)

	assert.Error(t, AddContactCommand(database, []string{}))
	assert.Error(t, AddContactCommand(database, []string{"--name", "X", "--status", "vip"}))
}

func TestAddContactRejectsDuplicateEmail(t *testing.T) {
	database := setupTestCLI(t)
	captureOutput(t)

	require.NoError(t, AddContactCommand(database, []string{"--name", "Ada", "--email", "ada@example.com"}))
	err := AddContactCommand(database, []string{"--name", "Ada L", "--email", "ADA@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestDealLifecycle(t *testing.T) {
	database := setupTestCLI(t)
	out := captureOutput(t)

	require.NoError(t, AddContactCommand(database, []string{"--name", "Grace Hopper"}))
	require.NoError(t, AddDealCommand(database, []string{"--title", "Compiler", "--value", "12500", "--contact", "Grace", "--probability", "40"}))
	assert.Contains(t, out.String(), "Value: $12.5K")
	assert.Contains(t, out.String(), "Contact: Grace Hopper")

	deals, err := db.FindDeals(database, "", 10)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	deal := deals[0]
	assert.Equal(t, models.StageLead, deal.Stage)
	require.NotNil(t, deal.Probability)
	assert.Equal(t, 40, *deal.Probability)

	require.NoError(t, MoveDealCommand(database, []string{"--stage", "closed", deal.ID}))
	moved, err := db.GetDeal(database, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageClosed, moved.Stage)
	assert.NotNil(t, moved.ClosedAt)

	out.Reset()
	require.NoError(t, ListDealsCommand(database, []string{"--stage", "closed", "--sort", "value"}))
	assert.Contains(t, out.String(), "Compiler")
	assert.Contains(t, out.String(), "Closed Won")

	require.NoError(t, DeleteDealCommand(database, []string{deal.ID}))
	err = DeleteDealCommand(database, []string{deal.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal not found")
}

func TestDealCommandErrors(t *testing.T) {
	database := setupTestCLI(t)
	captureOutput(t)

	assert.Error(t, AddDealCommand(database, []string{}))
	assert.Error(t, AddDealCommand(database, []string{"--title", "X", "--stage", "won"}))
	assert.Error(t, AddDealCommand(database, []string{"--title", "X", "--contact", "nobody"}))
	assert.Error(t, ListDealsCommand(database, []string{"--sort", "color"}))
	assert.Error(t, MoveDealCommand(database, []string{"--stage", "lead"}))
	assert.Error(t, MoveDealCommand(database, []string{"missing"}))

	err := MoveDealCommand(database, []string{"--stage", "lead", "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal not found")
}

func TestAmbiguousContact(t *testing.T) {
	database := setupTestCLI(t)
	captureOutput(t)

	require.NoError(t, AddContactCommand(database, []string{"--name", "Alan Turing"}))
	require.NoError(t, AddContactCommand(database, []string{"--name", "Alan Kay"}))

	err := AddDealCommand(database, []string{"--title", "X", "--contact", "Alan"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestLogActivityAndCompleteTask(t *testing.T) {
	database := setupTestCLI(t)
	out := captureOutput(t)

	require.NoError(t, AddContactCommand(database, []string{"--name", "Ada Lovelace"}))
	require.NoError(t, LogActivityCommand(database, []string{"--type", "call", "--title", "Intro call", "--contact", "Ada"}))

	contacts, err := db.FindContacts(database, "Ada", "", 1)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.NotNil(t, contacts[0].LastContact)

	assert.Error(t, LogActivityCommand(database, []string{"--type", "call", "--title", "X", "--due", "2024-01-01"}))
	assert.Error(t, LogActivityCommand(database, []string{"--type", "task", "--title", "X", "--due", "tomorrow"}))
	assert.Error(t, LogActivityCommand(database, []string{"--type", "fax", "--title", "X"}))
	assert.Error(t, LogActivityCommand(database, []string{"--title", "X", "--deal", "missing"}))

	require.NoError(t, LogActivityCommand(database, []string{"--type", "task", "--title", "Send deck", "--due", "2024-01-01"}))

	tasks, err := db.FindActivities(database, "", "", 10)
	require.NoError(t, err)
	var taskID string
	for _, a := range tasks {
		if a.Type == models.ActivityTask {
			taskID = a.ID
		}
	}
	require.NotEmpty(t, taskID)

	out.Reset()
	require.NoError(t, CompleteTaskCommand(database, []string{taskID}))
	assert.Contains(t, out.String(), "✓ Completed task")
	assert.Error(t, CompleteTaskCommand(database, []string{"missing"}))
}

func TestCampaignAndRevenueCommands(t *testing.T) {
	database := setupTestCLI(t)
	captureOutput(t)

	require.NoError(t, AddCampaignCommand(database, []string{"--name", "Launch", "--status", "active", "--sent", "100", "--open-rate", "30.5"}))
	campaigns, err := db.FindCampaigns(database, models.CampaignActive, 10)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.NotNil(t, campaigns[0].OpenRate)
	assert.Nil(t, campaigns[0].ClickRate)

	assert.Error(t, AddCampaignCommand(database, []string{"--name", "X", "--status", "paused"}))

	require.NoError(t, SetRevenueCommand(database, []string{"Oct", "72000"}))
	assert.Error(t, SetRevenueCommand(database, []string{"Oct", "lots"}))
	assert.Error(t, SetRevenueCommand(database, []string{"Smarch", "1"}))
	assert.Error(t, SetRevenueCommand(database, []string{"Oct"}))

	revenue, err := db.ListRevenue(database)
	require.NoError(t, err)
	require.NotEmpty(t, revenue)
}

func TestSeedCommand(t *testing.T) {
	database := setupTestCLI(t)
	out := captureOutput(t)

	require.NoError(t, SeedCommand(database, nil))
	assert.Contains(t, out.String(), "✓ Seeded 8 contacts, 8 deals")

	err := SeedCommand(database, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to seed")
}

func seededSource(t *testing.T) store.Source {
	database := setupTestCLI(t)
	require.NoError(t, db.SeedSampleData(database, time.Now()))
	return store.NewSQLite(database)
}

func TestReportCommands(t *testing.T) {
	source := seededSource(t)
	engine := testEngine()
	out := captureOutput(t)
	ctx := t.Context()

	require.NoError(t, ReportDashboardCommand(ctx, source, engine, nil))
	assert.Contains(t, out.String(), "DEALFLOW PIPELINE DASHBOARD")
	assert.Contains(t, out.String(), "FORECAST (3 months)")

	out.Reset()
	require.NoError(t, ReportDashboardCommand(ctx, source, engine, []string{"--horizon", "6"}))
	assert.Contains(t, out.String(), "FORECAST (6 months)")

	out.Reset()
	require.NoError(t, ReportBoardCommand(ctx, source, engine, nil))
	assert.Contains(t, out.String(), "Leads")
	assert.Contains(t, out.String(), "Closed Won")

	out.Reset()
	require.NoError(t, ReportHealthCommand(ctx, source, engine, []string{"--stage", "closed"}))
	assert.Contains(t, out.String(), "Design Services Renewal")
	assert.NotContains(t, out.String(), "Education Platform Subscription")

	out.Reset()
	require.NoError(t, ReportFunnelCommand(ctx, source, engine, nil))
	assert.Contains(t, out.String(), "Leads to Contacted")

	out.Reset()
	require.NoError(t, ReportForecastCommand(ctx, source, engine, []string{"--horizon", "12"}))
	assert.Contains(t, out.String(), "Revenue Forecast (12 months)")
	assert.Contains(t, out.String(), "forecast")

	out.Reset()
	require.NoError(t, ReportContactsCommand(ctx, source, engine, nil))
	assert.Contains(t, out.String(), "Contacts by Status")
}

func TestReportCommandValidation(t *testing.T) {
	source := seededSource(t)
	engine := testEngine()
	captureOutput(t)
	ctx := t.Context()

	assert.Error(t, ReportHealthCommand(ctx, source, engine, []string{"--stage", "won"}))
	assert.Error(t, ReportHealthCommand(ctx, source, engine, []string{"--status", "dead"}))
	assert.Error(t, ReportForecastCommand(ctx, source, engine, []string{"--horizon", "5"}))
	assert.Error(t, ReportGraphCommand(ctx, source, engine, []string{"sunburst"}))
}

func TestReportForecastWithoutRevenue(t *testing.T) {
	out := captureOutput(t)
	source := store.NewStatic(&models.Snapshot{})

	require.NoError(t, ReportForecastCommand(t.Context(), source, testEngine(), nil))
	assert.Contains(t, out.String(), "No revenue recorded")
}

func TestReportGraphToFile(t *testing.T) {
	source := seededSource(t)
	captureOutput(t)
	path := filepath.Join(t.TempDir(), "pipeline.dot")

	require.NoError(t, ReportGraphCommand(t.Context(), source, testEngine(), []string{"--output", path, "pipeline"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
	assert.Contains(t, string(data), "stage_lead")
}

func TestMCPServerRegistersTools(t *testing.T) {
	database := setupTestCLI(t)
	source := store.NewSQLite(database)
	server := NewMCPServer(database, source, testEngine(), "test")

	ctx := t.Context()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	for _, want := range []string{
		"pipeline_board", "deal_health", "sales_funnel", "revenue_forecast", "contact_status",
		"pipeline_dashboard", "generate_graph", "add_contact", "find_contacts", "log_activity",
		"create_deal", "move_deal", "find_deals",
	} {
		assert.Contains(t, names, want)
	}

	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, prompts.Prompts, 3)
}
