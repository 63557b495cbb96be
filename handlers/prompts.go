// ABOUTME: MCP prompt handlers for reusable pipeline review templates
// ABOUTME: Provides deal-analysis, rotting-deals and contact-follow-up prompts built from live data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
	"github.com/harperreed/dealflow/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	source store.Source
	engine *pipeline.Engine
}

func NewPromptHandlers(source store.Source, engine *pipeline.Engine) *PromptHandlers {
	return &PromptHandlers{source: source, engine: engine}
}

// Prompts lists the prompt templates for registration.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{Name: "deal-analysis", Description: "Analyze pipeline distribution, conversion and forecast"},
		{
			Name:        "rotting-deals",
			Description: "Review deals that have sat too long in their stage",
			Arguments: []*mcp.PromptArgument{
				{Name: "stage", Description: "Only review deals in this stage"},
			},
		},
		{
			Name:        "contact-follow-up",
			Description: "Suggest a follow-up for a contact from their activity history",
			Arguments: []*mcp.PromptArgument{
				{Name: "contact_id", Description: "Contact to review", Required: true},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}

	arguments := request.Params.Arguments
	switch request.Params.Name {
	case "deal-analysis":
		return h.getDealAnalysisPrompt(snap)
	case "rotting-deals":
		return h.getRottingDealsPrompt(snap, arguments)
	case "contact-follow-up":
		return h.getContactFollowUpPrompt(snap, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getDealAnalysisPrompt(snap *models.Snapshot) (*mcp.GetPromptResult, error) {
	r := h.engine.Analyze(snap)

	var promptText strings.Builder
	promptText.WriteString("Please analyze the current deal pipeline:\n\n")
	promptText.WriteString(viz.RenderDashboard(r))

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Analysis of pipeline health and distribution")
	promptText.WriteString("\n2. Recommendations for deals that may need attention")
	promptText.WriteString("\n3. Suggestions for improving the weakest conversion")

	return userPrompt("Deal pipeline analysis", promptText.String()), nil
}

func (h *PromptHandlers) getRottingDealsPrompt(snap *models.Snapshot, args map[string]string) (*mcp.GetPromptResult, error) {
	var stage models.Stage
	if v := args["stage"]; v != "" {
		s, err := models.ParseStage(v)
		if err != nil {
			return nil, err
		}
		stage = s
	}

	r := h.engine.Analyze(snap)
	deals := pipeline.FilterByStage(r.Health, stage)

	var promptText strings.Builder
	promptText.WriteString("These deals have been sitting in their stage longer than expected:\n\n")
	flagged := 0
	for _, d := range deals {
		if d.Status == pipeline.Healthy {
			continue
		}
		flagged++
		limit, _ := h.engine.Thresholds().For(d.Stage)
		promptText.WriteString(fmt.Sprintf("  - [%s] %s (%s, %s): %d days, threshold %d\n",
			d.Status.Label(), d.Title, d.Stage.Label(), viz.FormatMoney(d.Value), d.Age, limit))
	}
	if flagged == 0 {
		promptText.WriteString("  (none, every open deal is healthy)\n")
	}

	promptText.WriteString("\nFor each deal, suggest one concrete next step to move it forward or a reason to close it out.")

	return userPrompt(fmt.Sprintf("%d deals need attention", flagged), promptText.String()), nil
}

func (h *PromptHandlers) getContactFollowUpPrompt(snap *models.Snapshot, args map[string]string) (*mcp.GetPromptResult, error) {
	contactID, ok := args["contact_id"]
	if !ok || contactID == "" {
		return nil, fmt.Errorf("contact_id is required")
	}

	var contact *models.Contact
	for i := range snap.Contacts {
		if snap.Contacts[i].ID == contactID {
			contact = &snap.Contacts[i]
			break
		}
	}
	if contact == nil {
		return nil, fmt.Errorf("contact not found: %s", contactID)
	}

	now := h.engine.Now()
	activities := pipeline.ActivitiesForContact(snap.Activities, contactID)

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Contact: %s\n", contact.Name))
	if contact.Position != "" || contact.Company != "" {
		promptText.WriteString(fmt.Sprintf("Role: %s at %s\n", contact.Position, contact.Company))
	}
	promptText.WriteString(fmt.Sprintf("Status: %s\n", contact.Status.Label()))
	if days, ok := pipeline.DaysSinceContact(*contact, now); ok {
		promptText.WriteString(fmt.Sprintf("Last contacted: %d days ago\n", days))
	} else {
		promptText.WriteString("Last contacted: never\n")
	}
	promptText.WriteString(fmt.Sprintf("Engagement score: %d/100\n", pipeline.EngagementScore(*contact, len(activities), now)))

	if len(activities) > 0 {
		promptText.WriteString("\nRecent activity:\n")
		for _, a := range pipeline.RecentActivities(activities, pipeline.DefaultFeedLimit) {
			promptText.WriteString(fmt.Sprintf("  - %s %s: %s\n", a.Date.Format("2006-01-02"), a.Type, a.Title))
		}
	}

	promptText.WriteString("\nPlease suggest the next touchpoint with this contact and draft a short message for it.")

	return userPrompt(fmt.Sprintf("Follow-up for contact: %s", contact.Name), promptText.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
