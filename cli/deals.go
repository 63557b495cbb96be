// ABOUTME: Deal CLI commands
// ABOUTME: Adds, lists, moves and deletes deals in the local store
package cli

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/viz"
)

// AddDealCommand adds a new deal.
func AddDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-deal", flag.ExitOnError)
	title := fs.String("title", "", "Deal title (required)")
	value := fs.Int64("value", 0, "Deal value in whole currency units")
	stage := fs.String("stage", "lead", "Stage (lead, contact, proposal, negotiation, closed)")
	contact := fs.String("contact", "", "Contact name or ID")
	probability := fs.Int("probability", -1, "Win probability 0-100")
	description := fs.String("description", "", "Deal description")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	dealStage, err := models.ParseStage(*stage)
	if err != nil {
		return err
	}

	deal := &models.Deal{
		Title:       *title,
		Value:       *value,
		Stage:       dealStage,
		Description: *description,
	}
	if *probability >= 0 {
		p := *probability
		deal.Probability = &p
	}

	if *contact != "" {
		c, err := resolveContact(database, *contact)
		if err != nil {
			return err
		}
		deal.ContactID = c.ID
		deal.Contact = c
	}

	if err := db.CreateDeal(database, deal); err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Deal created: %s (ID: %s)\n", deal.Title, deal.ID)
	fmt.Fprintf(stdout, "  Value: %s\n", viz.FormatMoney(deal.Value))
	fmt.Fprintf(stdout, "  Stage: %s\n", deal.Stage.Label())
	if deal.Contact != nil {
		fmt.Fprintf(stdout, "  Contact: %s\n", deal.Contact.Name)
	}
	return nil
}

// resolveContact accepts either a contact ID or a name search that matches exactly one contact.
func resolveContact(database *sql.DB, ref string) (*models.Contact, error) {
	c, err := db.GetContact(database, ref)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	matches, err := db.FindContacts(database, ref, "", 2)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup contact: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("contact not found: %s", ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("contact %q is ambiguous, use the contact ID", ref)
	}
}

// ListDealsCommand lists deals with optional stage filter and sort order.
func ListDealsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-deals", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	sortBy := fs.String("sort", "created_at", "Sort by title, value, stage or created_at")
	asc := fs.Bool("asc", false, "Sort ascending")
	limit := fs.Int("limit", 50, "Maximum number of results")
	_ = fs.Parse(args)

	var dealStage models.Stage
	if *stage != "" {
		parsed, err := models.ParseStage(*stage)
		if err != nil {
			return err
		}
		dealStage = parsed
	}

	field, err := pipeline.ParseSortField(*sortBy)
	if err != nil {
		return err
	}

	deals, err := db.FindDeals(database, dealStage, *limit)
	if err != nil {
		return fmt.Errorf("failed to find deals: %w", err)
	}

	if len(deals) == 0 {
		fmt.Fprintln(stdout, "No deals found")
		return nil
	}

	deals = pipeline.SortDeals(deals, field, *asc)

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tCONTACT\tVALUE\tSTAGE\tCREATED\tID")
	fmt.Fprintln(w, "-----\t-------\t-----\t-----\t-------\t--")

	for _, d := range deals {
		contactName := ""
		if d.Contact != nil {
			contactName = d.Contact.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Title, contactName, viz.FormatMoney(d.Value), d.Stage.Label(),
			d.CreatedAt.Format("2006-01-02"), d.ID)
	}

	_ = w.Flush()
	fmt.Fprintf(stdout, "\nTotal: %d deal(s) - %s\n", len(deals), viz.FormatMoney(pipeline.TotalValue(deals)))
	return nil
}

// MoveDealCommand moves a deal to another stage, maintaining its closed timestamp.
func MoveDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("move-deal", flag.ExitOnError)
	stage := fs.String("stage", "", "Target stage (required)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}
	if *stage == "" {
		return fmt.Errorf("--stage is required")
	}

	target, err := models.ParseStage(*stage)
	if err != nil {
		return err
	}

	dealID := fs.Arg(0)
	if err := db.MoveDeal(database, dealID, target, time.Now().UTC()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("deal not found: %s", dealID)
		}
		return fmt.Errorf("failed to move deal: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Moved deal %s to %s\n", dealID, target.Label())
	return nil
}

// DeleteDealCommand deletes a deal.
func DeleteDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-deal", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}

	dealID := fs.Arg(0)
	if err := db.DeleteDeal(database, dealID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("deal not found: %s", dealID)
		}
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Deleted deal: %s\n", dealID)
	return nil
}
