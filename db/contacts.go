// ABOUTME: Contact database operations
// ABOUTME: Handles creation, lookup, search, status changes and last-contact tracking
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dealflow/models"
)

const contactColumns = `id, name, email, phone, company, position, status, tags, last_contact, created_at`

// CreateContact assigns an ID and creation time when missing and inserts the contact.
func CreateContact(db *sql.DB, contact *models.Contact) error {
	if strings.TrimSpace(contact.Name) == "" {
		return fmt.Errorf("contact name is required")
	}
	if contact.Status == "" {
		contact.Status = models.StatusLead
	}
	if !contact.Status.Valid() {
		return fmt.Errorf("invalid status: %s", contact.Status)
	}
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}
	contact.Tags = models.NormalizeTags(contact.Tags)

	tags, err := encodeTags(contact.Tags)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID, contact.Name, contact.Email, contact.Phone, contact.Company, contact.Position,
		string(contact.Status), tags, contact.LastContact, contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetContact returns nil, nil when no contact has id.
func GetContact(db *sql.DB, id string) (*models.Contact, error) {
	c, err := scanContact(db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// FindContactByEmail matches email case-insensitively and ignoring surrounding space.
// It returns nil, nil for an empty email or no match.
func FindContactByEmail(db *sql.DB, email string) (*models.Contact, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	c, err := scanContact(db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE LOWER(TRIM(email)) = ? LIMIT 1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact by email: %w", err)
	}
	return c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindContacts searches name, email and company. An empty status matches every status.
func FindContacts(db *sql.DB, query string, status models.ContactStatus, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}

	where := []string{"1=1"}
	var args []any
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, string(status))
	}
	args = append(args, limit)

	rows, err := db.Query(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectContacts(rows)
}

func listContacts(q querier) ([]models.Contact, error) {
	rows, err := q.Query(`SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectContacts(rows)
}

// UpdateContactStatus returns ErrNotFound when no contact has id.
func UpdateContactStatus(db *sql.DB, id string, status models.ContactStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status: %s", status)
	}
	return checkAffected(db.Exec(`UPDATE contacts SET status = ? WHERE id = ?`, string(status), id))
}

// TouchContact records at as the contact's last contact time.
func TouchContact(db *sql.DB, id string, at time.Time) error {
	return checkAffected(db.Exec(`UPDATE contacts SET last_contact = ? WHERE id = ?`, at.UTC(), id))
}

func collectContacts(rows *sql.Rows) ([]models.Contact, error) {
	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var status, tags string
	var lastContact sql.NullTime

	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Position,
		&status, &tags, &lastContact, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Status = models.ContactStatus(status)
	c.LastContact = nullTime(lastContact)
	c.CreatedAt = c.CreatedAt.UTC()
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags for contact %s: %w", c.ID, err)
	}
	c.Tags = models.NormalizeTags(c.Tags)
	return &c, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}
