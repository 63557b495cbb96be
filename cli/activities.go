// ABOUTME: Activity, campaign, revenue and seed CLI commands
// ABOUTME: Feeds the records the pipeline report reads beyond contacts and deals
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
)

const dateLayout = "2006-01-02"

// LogActivityCommand records a call, email, meeting, note or task.
func LogActivityCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("log-activity", flag.ExitOnError)
	activityType := fs.String("type", "note", "Type (email, call, meeting, task, note)")
	title := fs.String("title", "", "Activity title (required)")
	description := fs.String("description", "", "Details")
	contact := fs.String("contact", "", "Contact name or ID")
	dealID := fs.String("deal", "", "Deal ID")
	due := fs.String("due", "", "Due date for tasks (YYYY-MM-DD)")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	t, err := models.ParseActivityType(*activityType)
	if err != nil {
		return err
	}

	activity := &models.Activity{
		Type:        t,
		Title:       *title,
		Description: *description,
		Date:        time.Now().UTC(),
	}

	if *contact != "" {
		c, err := resolveContact(database, *contact)
		if err != nil {
			return err
		}
		activity.ContactID = c.ID
	}

	if *dealID != "" {
		deal, err := db.GetDeal(database, *dealID)
		if err != nil {
			return fmt.Errorf("failed to lookup deal: %w", err)
		}
		if deal == nil {
			return fmt.Errorf("deal not found: %s", *dealID)
		}
		activity.DealID = deal.ID
	}

	if *due != "" {
		if t != models.ActivityTask {
			return fmt.Errorf("--due only applies to tasks")
		}
		dueDate, err := time.Parse(dateLayout, *due)
		if err != nil {
			return fmt.Errorf("invalid due date: %s (use YYYY-MM-DD)", *due)
		}
		activity.DueDate = &dueDate
	}

	if err := db.LogActivity(database, activity); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Logged %s: %s (ID: %s)\n", activity.Type, activity.Title, activity.ID)
	return nil
}

// CompleteTaskCommand marks a task as done.
func CompleteTaskCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("complete-task", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("task ID required")
	}

	taskID := fs.Arg(0)
	if err := db.CompleteTask(database, taskID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("task not found: %s", taskID)
		}
		return fmt.Errorf("failed to complete task: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Completed task: %s\n", taskID)
	return nil
}

// AddCampaignCommand adds a marketing campaign.
func AddCampaignCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-campaign", flag.ExitOnError)
	name := fs.String("name", "", "Campaign name (required)")
	status := fs.String("status", "draft", "Status (draft, scheduled, active, completed)")
	campaignType := fs.String("type", "email", "Campaign type")
	audience := fs.String("audience", "", "Target audience")
	sent := fs.Int("sent", 0, "Emails sent")
	openRate := fs.Float64("open-rate", -1, "Open rate percentage")
	clickRate := fs.Float64("click-rate", -1, "Click rate percentage")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	campaignStatus, err := models.ParseCampaignStatus(*status)
	if err != nil {
		return err
	}

	campaign := &models.Campaign{
		Name:      *name,
		Status:    campaignStatus,
		Type:      *campaignType,
		Audience:  *audience,
		SentCount: *sent,
	}
	if *openRate >= 0 {
		v := *openRate
		campaign.OpenRate = &v
	}
	if *clickRate >= 0 {
		v := *clickRate
		campaign.ClickRate = &v
	}

	if err := db.CreateCampaign(database, campaign); err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Campaign created: %s (ID: %s)\n", campaign.Name, campaign.ID)
	return nil
}

// SetRevenueCommand records revenue for a month, e.g. `set-revenue Oct 72000`.
func SetRevenueCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("set-revenue", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: set-revenue <month> <amount>")
	}

	amount, err := strconv.ParseInt(fs.Arg(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %s", fs.Arg(1))
	}

	if err := db.SetRevenue(database, fs.Arg(0), amount); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Revenue for %s set to %d\n", fs.Arg(0), amount)
	return nil
}

// SeedCommand loads the demo data set into an empty database.
func SeedCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := db.SeedSampleData(database, time.Now()); err != nil {
		if errors.Is(err, db.ErrNotEmpty) {
			return fmt.Errorf("database already has data, refusing to seed")
		}
		return fmt.Errorf("failed to seed database: %w", err)
	}

	counts, err := db.Counts(context.Background(), database)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ Seeded %d contacts, %d deals, %d activities, %d campaigns\n",
		counts["contacts"], counts["deals"], counts["activities"], counts["campaigns"])
	return nil
}
