// ABOUTME: Entry point for the dealflow CLI, MCP server, web API and terminal UI
// ABOUTME: Loads configuration, opens the store and routes to subcommands
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dealflow/charm"
	"github.com/harperreed/dealflow/cli"
	"github.com/harperreed/dealflow/config"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/logging"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
)

const version = "0.1.0"

type crmCommand func(*sql.DB, []string) error

// crmCommands maps each crm subcommand to its handler and whether it writes.
var crmCommands = map[string]struct {
	run    crmCommand
	writes bool
}{
	"add-contact":   {cli.AddContactCommand, true},
	"list-contacts": {cli.ListContactsCommand, false},
	"add-deal":      {cli.AddDealCommand, true},
	"list-deals":    {cli.ListDealsCommand, false},
	"move-deal":     {cli.MoveDealCommand, true},
	"delete-deal":   {cli.DeleteDealCommand, true},
	"log-activity":  {cli.LogActivityCommand, true},
	"complete-task": {cli.CompleteTaskCommand, true},
	"add-campaign":  {cli.AddCampaignCommand, true},
	"set-revenue":   {cli.SetRevenueCommand, true},
	"seed":          {cli.SeedCommand, true},
}

type reportCommand func(context.Context, store.Source, *pipeline.Engine, []string) error

var reportCommands = map[string]reportCommand{
	"dashboard": cli.ReportDashboardCommand,
	"board":     cli.ReportBoardCommand,
	"health":    cli.ReportHealthCommand,
	"funnel":    cli.ReportFunnelCommand,
	"forecast":  cli.ReportForecastCommand,
	"contacts":  cli.ReportContactsCommand,
	"graph":     cli.ReportGraphCommand,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/dealflow/config.yaml)")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/dealflow/dealflow.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dealflow version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := logging.New(cfg.Logging())
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, args, *initOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, args []string, initOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sync commands that never touch the local database
	if len(args) > 0 && args[0] == "sync" {
		if handled, err := runSyncWithoutDB(args[1:]); handled {
			return err
		}
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	logger.Debug("database opened", zap.String("path", cfg.DBPath))

	if initOnly {
		logger.Info("database initialized", zap.String("path", cfg.DBPath))
		return nil
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "crm":
		if len(commandArgs) == 0 {
			printUsage()
			return fmt.Errorf("crm requires a subcommand")
		}
		sub, ok := crmCommands[commandArgs[0]]
		if !ok {
			printUsage()
			return fmt.Errorf("unknown crm command: %s", commandArgs[0])
		}
		if err := sub.run(database, commandArgs[1:]); err != nil {
			return err
		}
		if sub.writes {
			autoSync(ctx, cfg, database, logger)
		}
		return nil

	case "sync":
		return runSync(ctx, database, logger, commandArgs)
	}

	source, err := store.Open(cfg, database)
	if err != nil {
		return err
	}
	engine := pipeline.NewEngine(cfg.Thresholds(), cfg.ForecastHorizon, nil)

	switch command {
	case "report":
		if len(commandArgs) == 0 {
			printUsage()
			return fmt.Errorf("report requires a subcommand")
		}
		sub, ok := reportCommands[commandArgs[0]]
		if !ok {
			printUsage()
			return fmt.Errorf("unknown report command: %s", commandArgs[0])
		}
		return sub(ctx, source, engine, commandArgs[1:])

	case "mcp":
		return cli.MCPCommand(ctx, database, source, engine, logger, version)

	case "serve":
		return cli.ServeCommand(ctx, source, engine, logger, cfg.Web.Port, commandArgs)

	case "tui":
		return cli.TUICommand(ctx, source, engine, logger, commandArgs)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runSyncWithoutDB(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "link":
		return true, charm.SyncLinkCommand(args[1:])
	case "now":
		return true, charm.SyncNowCommand(args[1:])
	case "wipe":
		return true, charm.SyncWipeCommand(args[1:])
	case "auto":
		return true, charm.SetAutoSyncCommand(args[1:])
	default:
		return false, nil
	}
}

func runSync(ctx context.Context, database *sql.DB, logger *zap.Logger, args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("sync requires a subcommand")
	}
	switch args[0] {
	case "status":
		return charm.SyncStatusCommand(database, args[1:])
	case "push":
		return charm.SyncPushCommand(ctx, database, logger, args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown sync command: %s", args[0])
	}
}

// autoSync pushes after a write when charm is the report store and auto-sync is on.
// Failures are logged; the local write already succeeded.
func autoSync(ctx context.Context, cfg *config.Config, database *sql.DB, logger *zap.Logger) {
	if cfg.Store != config.StoreCharm {
		return
	}
	charmCfg, err := charm.LoadConfig()
	if err != nil || !charmCfg.AutoSync {
		return
	}

	c, err := charm.GetClient()
	if err != nil {
		logger.Warn("auto-sync skipped", zap.Error(err))
		return
	}
	if _, err := charm.Push(ctx, c, database, logger, time.Now()); err != nil {
		logger.Warn("auto-sync failed", zap.Error(err))
	}
}

func printUsage() {
	fmt.Printf(`dealflow v%s - sales pipeline analytics

USAGE:
  dealflow [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/dealflow/config.yaml)
  --db-path <path>       Database path (default: ~/.local/share/dealflow/dealflow.db)
  --init                 Initialize database and exit

COMMANDS:
  crm                    Manage contacts, deals, activities, campaigns and revenue
  report                 Pipeline reports
  sync                   Charm cloud sync
  mcp                    Start MCP server on stdio
  serve                  Start the JSON API server
  tui                    Open the interactive pipeline board

CRM COMMANDS:
  dealflow crm add-contact     Add a new contact
    --name <name>               Contact name (required)
    --email, --phone, --company, --position
    --status <status>           lead, prospect, customer, churned (default: lead)
    --tags <a,b>                Comma-separated tags

  dealflow crm list-contacts   List contacts
    --query <text>              Search by name, email or company
    --status <status>           Filter by status
    --limit <n>                 Max results (default: 50)

  dealflow crm add-deal        Add a new deal
    --title <title>             Deal title (required)
    --value <n>                 Value in whole currency units
    --stage <stage>             lead, contact, proposal, negotiation, closed (default: lead)
    --contact <name|id>         Linked contact
    --probability <0-100>       Win probability
    --description <text>

  dealflow crm list-deals      List deals
    --stage <stage>             Filter by stage
    --sort <field>              title, value, stage, created_at (default: created_at)
    --asc                       Sort ascending

  dealflow crm move-deal --stage <stage> <id>   Move a deal to another stage
  dealflow crm delete-deal <id>                 Delete a deal

  dealflow crm log-activity    Log an activity
    --type <type>               email, call, meeting, task, note (default: note)
    --title <title>             Activity title (required)
    --contact <name|id>, --deal <id>, --description <text>
    --due <YYYY-MM-DD>          Due date (tasks only)

  dealflow crm complete-task <id>               Mark a task done
  dealflow crm add-campaign --name <name> [--status --type --audience --sent --open-rate --click-rate]
  dealflow crm set-revenue <month> <amount>     Record revenue for a month (Jan..Dec)
  dealflow crm seed                             Load demo data into an empty database

REPORT COMMANDS:
  dealflow report dashboard [--horizon 3|6|12]  Full text dashboard
  dealflow report board                         Deals and value per stage
  dealflow report health [--stage --status]     Deal health, most urgent first
  dealflow report funnel                        Stage conversion rates
  dealflow report forecast [--horizon 3|6|12]   Revenue forecast
  dealflow report contacts                      Contacts per status
  dealflow report graph [funnel|pipeline] [--output <file>]   GraphViz DOT

SYNC COMMANDS:
  dealflow sync link [--host <host>]   Link this device to Charm
  dealflow sync status                 Show sync settings and last push
  dealflow sync push                   Publish the local pipeline to Charm
  dealflow sync now                    Sync the Charm KV store
  dealflow sync wipe --confirm         Delete all Charm data
  dealflow sync auto --enable|--disable

SERVERS:
  dealflow mcp                  MCP server (for Claude Desktop integration)
  dealflow serve [--port <n>]   JSON API and text dashboard
  dealflow tui                  Interactive board (←/→ stage, ↑/↓ deal, ]/[ move, tab switch view)

EXAMPLES:
  dealflow crm seed
  dealflow crm add-deal --title "Enterprise License" --value 50000 --contact "Sarah Johnson"
  dealflow report health --status rotting
  dealflow report graph pipeline --output pipeline.dot

`, version)
}
