// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, move_deal and find_deals tools
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	db    *sql.DB
	clock pipeline.Clock
}

func NewDealHandlers(database *sql.DB, clock pipeline.Clock) *DealHandlers {
	if clock == nil {
		clock = pipeline.SystemClock
	}
	return &DealHandlers{db: database, clock: clock}
}

type CreateDealInput struct {
	Title       string `json:"title" jsonschema:"Deal title (required)"`
	Value       int64  `json:"value,omitempty" jsonschema:"Deal value in whole currency units"`
	Stage       string `json:"stage,omitempty" jsonschema:"Deal stage: lead, contact, proposal, negotiation, closed (default lead)"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"ID of the contact the deal is with"`
	ContactName string `json:"contact_name,omitempty" jsonschema:"Contact name, used when contact_id is not given"`
	Probability *int   `json:"probability,omitempty" jsonschema:"Win probability in percent"`
	Description string `json:"description,omitempty" jsonschema:"Deal notes"`
}

type DealOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Value       int64  `json:"value"`
	Stage       string `json:"stage"`
	ContactID   string `json:"contact_id,omitempty"`
	Probability *int   `json:"probability,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	ClosedAt    string `json:"closed_at,omitempty"`
}

func (h *DealHandlers) CreateDeal(_ context.Context, request *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}

	stage := models.StageLead
	if input.Stage != "" {
		s, err := models.ParseStage(input.Stage)
		if err != nil {
			return nil, DealOutput{}, err
		}
		stage = s
	}

	deal := &models.Deal{
		Title:       input.Title,
		Value:       input.Value,
		Stage:       stage,
		Probability: input.Probability,
		Description: input.Description,
		CreatedAt:   h.clock().UTC(),
	}

	switch {
	case input.ContactID != "":
		contact, err := db.GetContact(h.db, input.ContactID)
		if err != nil {
			return nil, DealOutput{}, fmt.Errorf("failed to lookup contact: %w", err)
		}
		if contact == nil {
			return nil, DealOutput{}, fmt.Errorf("contact not found: %s", input.ContactID)
		}
		deal.ContactID = contact.ID
	case input.ContactName != "":
		contacts, err := db.FindContacts(h.db, input.ContactName, "", 1)
		if err != nil {
			return nil, DealOutput{}, fmt.Errorf("failed to lookup contact: %w", err)
		}
		if len(contacts) > 0 {
			deal.ContactID = contacts[0].ID
		}
	}

	if err := db.CreateDeal(h.db, deal); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type MoveDealInput struct {
	ID    string `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage: lead, contact, proposal, negotiation, closed (required)"`
}

func (h *DealHandlers) MoveDeal(_ context.Context, request *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == "" {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}
	if input.Stage == "" {
		return nil, DealOutput{}, fmt.Errorf("stage is required")
	}

	stage, err := models.ParseStage(input.Stage)
	if err != nil {
		return nil, DealOutput{}, err
	}

	if err := db.MoveDeal(h.db, input.ID, stage, h.clock().UTC()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, DealOutput{}, fmt.Errorf("deal not found: %s", input.ID)
		}
		return nil, DealOutput{}, fmt.Errorf("failed to move deal: %w", err)
	}

	deal, err := db.GetDeal(h.db, input.ID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to reload deal: %w", err)
	}
	if deal == nil {
		return nil, DealOutput{}, fmt.Errorf("deal not found: %s", input.ID)
	}

	return nil, dealToOutput(deal), nil
}

type FindDealsInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"Only deals in this stage"`
	Sort  string `json:"sort,omitempty" jsonschema:"Sort by title, value, stage or created_at (default created_at)"`
	Asc   bool   `json:"ascending,omitempty" jsonschema:"Sort ascending instead of descending"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

type FindDealsOutput struct {
	Deals []DealOutput `json:"deals"`
}

func (h *DealHandlers) FindDeals(_ context.Context, request *mcp.CallToolRequest, input FindDealsInput) (*mcp.CallToolResult, FindDealsOutput, error) {
	var stage models.Stage
	if input.Stage != "" {
		s, err := models.ParseStage(input.Stage)
		if err != nil {
			return nil, FindDealsOutput{}, err
		}
		stage = s
	}

	field, err := pipeline.ParseSortField(input.Sort)
	if err != nil {
		return nil, FindDealsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	deals, err := db.FindDeals(h.db, stage, limit)
	if err != nil {
		return nil, FindDealsOutput{}, fmt.Errorf("failed to find deals: %w", err)
	}

	sorted := pipeline.SortDeals(deals, field, input.Asc)
	out := FindDealsOutput{Deals: make([]DealOutput, 0, len(sorted))}
	for i := range sorted {
		out.Deals = append(out.Deals, dealToOutput(&sorted[i]))
	}
	return nil, out, nil
}

func dealToOutput(deal *models.Deal) DealOutput {
	out := DealOutput{
		ID:          deal.ID,
		Title:       deal.Title,
		Value:       deal.Value,
		Stage:       string(deal.Stage),
		ContactID:   deal.ContactID,
		Probability: deal.Probability,
		Description: deal.Description,
		CreatedAt:   deal.CreatedAt.Format(time.RFC3339),
	}
	if deal.ClosedAt != nil {
		out.ClosedAt = deal.ClosedAt.Format(time.RFC3339)
	}
	return out
}
