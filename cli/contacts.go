// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for adding and listing contacts in the local store
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
)

// stdout is where every command prints. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// AddContactCommand adds a new contact.
func AddContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	position := fs.String("position", "", "Role at the company")
	status := fs.String("status", "lead", "Status (lead, prospect, customer, churned)")
	tags := fs.String("tags", "", "Comma-separated tags")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	contactStatus, err := models.ParseContactStatus(*status)
	if err != nil {
		return err
	}

	contact := &models.Contact{
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Company:  *company,
		Position: *position,
		Status:   contactStatus,
	}
	if *tags != "" {
		contact.Tags = strings.Split(*tags, ",")
	}

	existing, err := db.FindContactByEmail(database, contact.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("contact with email %s already exists: %s (ID: %s)", contact.Email, existing.Name, existing.ID)
	}

	if err := db.CreateContact(database, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	return nil
}

// ListContactsCommand lists contacts with optional filters.
func ListContactsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	query := fs.String("query", "", "Search by name, email or company")
	status := fs.String("status", "", "Filter by status")
	limit := fs.Int("limit", 50, "Maximum number of results")
	_ = fs.Parse(args)

	var contactStatus models.ContactStatus
	if *status != "" {
		parsed, err := models.ParseContactStatus(*status)
		if err != nil {
			return err
		}
		contactStatus = parsed
	}

	contacts, err := db.FindContacts(database, *query, contactStatus, *limit)
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Fprintln(stdout, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tSTATUS\tLAST CONTACT")
	fmt.Fprintln(w, "--\t----\t-----\t-------\t------\t------------")

	for _, c := range contacts {
		lastContact := "never"
		if c.LastContact != nil {
			lastContact = c.LastContact.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Email, c.Company, c.Status.Label(), lastContact)
	}

	_ = w.Flush()
	fmt.Fprintf(stdout, "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

