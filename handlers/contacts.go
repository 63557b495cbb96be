// ABOUTME: Contact and activity MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts and log_activity over the local database
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	db    *sql.DB
	clock pipeline.Clock
}

func NewContactHandlers(database *sql.DB, clock pipeline.Clock) *ContactHandlers {
	if clock == nil {
		clock = pipeline.SystemClock
	}
	return &ContactHandlers{db: database, clock: clock}
}

type AddContactInput struct {
	Name     string   `json:"name" jsonschema:"Contact name (required)"`
	Email    string   `json:"email,omitempty" jsonschema:"Email address"`
	Phone    string   `json:"phone,omitempty" jsonschema:"Phone number"`
	Company  string   `json:"company,omitempty" jsonschema:"Company the contact works for"`
	Position string   `json:"position,omitempty" jsonschema:"Job title"`
	Status   string   `json:"status,omitempty" jsonschema:"Contact status: lead, prospect, customer, churned (default lead)"`
	Tags     []string `json:"tags,omitempty" jsonschema:"Free-form tags"`
}

type ContactOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Company     string   `json:"company,omitempty"`
	Position    string   `json:"position,omitempty"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	LastContact string   `json:"last_contact,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func (h *ContactHandlers) AddContact(_ context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	status := models.StatusLead
	if input.Status != "" {
		s, err := models.ParseContactStatus(input.Status)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		status = s
	}

	existing, err := db.FindContactByEmail(h.db, input.Email)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	if existing != nil {
		return nil, ContactOutput{}, fmt.Errorf("contact with email %s already exists (ID: %s)", input.Email, existing.ID)
	}

	contact := &models.Contact{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Company:   input.Company,
		Position:  input.Position,
		Status:    status,
		Tags:      input.Tags,
		CreatedAt: h.clock().UTC(),
	}
	if err := db.CreateContact(h.db, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search text matched against name, email and company"`
	Status string `json:"status,omitempty" jsonschema:"Only contacts with this status"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(_ context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	var status models.ContactStatus
	if input.Status != "" {
		s, err := models.ParseContactStatus(input.Status)
		if err != nil {
			return nil, FindContactsOutput{}, err
		}
		status = s
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	contacts, err := db.FindContacts(h.db, input.Query, status, limit)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	out := FindContactsOutput{Contacts: make([]ContactOutput, 0, len(contacts))}
	for i := range contacts {
		out.Contacts = append(out.Contacts, contactToOutput(&contacts[i]))
	}
	return nil, out, nil
}

type LogActivityInput struct {
	Type        string `json:"type" jsonschema:"Activity type: email, call, meeting, task, note (required)"`
	Title       string `json:"title" jsonschema:"Short summary (required)"`
	Description string `json:"description,omitempty" jsonschema:"Longer notes"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Contact the activity involved"`
	DealID      string `json:"deal_id,omitempty" jsonschema:"Deal the activity relates to"`
	Date        string `json:"date,omitempty" jsonschema:"When it happened in ISO 8601 format (default now)"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date for tasks in ISO 8601 format"`
}

type ActivityOutput struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	ContactID   string `json:"contact_id,omitempty"`
	DealID      string `json:"deal_id,omitempty"`
	Completed   bool   `json:"completed"`
	DueDate     string `json:"due_date,omitempty"`
}

func (h *ContactHandlers) LogActivity(_ context.Context, request *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	if input.Type == "" {
		return nil, ActivityOutput{}, fmt.Errorf("type is required")
	}
	if input.Title == "" {
		return nil, ActivityOutput{}, fmt.Errorf("title is required")
	}

	activityType, err := models.ParseActivityType(input.Type)
	if err != nil {
		return nil, ActivityOutput{}, err
	}

	if input.ContactID != "" {
		contact, err := db.GetContact(h.db, input.ContactID)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("failed to get contact: %w", err)
		}
		if contact == nil {
			return nil, ActivityOutput{}, fmt.Errorf("contact not found: %s", input.ContactID)
		}
	}
	if input.DealID != "" {
		deal, err := db.GetDeal(h.db, input.DealID)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("failed to get deal: %w", err)
		}
		if deal == nil {
			return nil, ActivityOutput{}, fmt.Errorf("deal not found: %s", input.DealID)
		}
	}

	activity := &models.Activity{
		Type:        activityType,
		Title:       input.Title,
		Description: input.Description,
		ContactID:   input.ContactID,
		DealID:      input.DealID,
		Date:        h.clock(),
	}
	if input.Date != "" {
		parsed, err := time.Parse(time.RFC3339, input.Date)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("invalid date format (use ISO 8601/RFC3339): %w", err)
		}
		activity.Date = parsed
	}
	if input.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, input.DueDate)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("invalid due_date format (use ISO 8601/RFC3339): %w", err)
		}
		activity.DueDate = &parsed
	}

	if err := db.LogActivity(h.db, activity); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	return nil, activityToOutput(activity), nil
}

func contactToOutput(contact *models.Contact) ContactOutput {
	out := ContactOutput{
		ID:        contact.ID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Company:   contact.Company,
		Position:  contact.Position,
		Status:    string(contact.Status),
		Tags:      contact.Tags,
		CreatedAt: contact.CreatedAt.Format(time.RFC3339),
	}
	if contact.LastContact != nil {
		out.LastContact = contact.LastContact.Format(time.RFC3339)
	}
	return out
}

func activityToOutput(activity *models.Activity) ActivityOutput {
	out := ActivityOutput{
		ID:          activity.ID,
		Type:        string(activity.Type),
		Title:       activity.Title,
		Description: activity.Description,
		Date:        activity.Date.Format(time.RFC3339),
		ContactID:   activity.ContactID,
		DealID:      activity.DealID,
		Completed:   activity.Completed,
	}
	if activity.DueDate != nil {
		out.DueDate = activity.DueDate.Format(time.RFC3339)
	}
	return out
}
