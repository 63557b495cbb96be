// ABOUTME: MCP resource handlers exposing pipeline data
// ABOUTME: Serves contacts, deals, a single deal and the full pipeline report as JSON by URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/pipeline"
	"github.com/harperreed/dealflow/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "dealflow://"

type ResourceHandlers struct {
	source store.Source
	engine *pipeline.Engine
}

func NewResourceHandlers(source store.Source, engine *pipeline.Engine) *ResourceHandlers {
	return &ResourceHandlers{source: source, engine: engine}
}

// Resources lists the fixed resources for registration.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: resourceScheme + "contacts", Name: "contacts", Description: "Every contact", MIMEType: "application/json"},
		{URI: resourceScheme + "deals", Name: "deals", Description: "Every deal with its health", MIMEType: "application/json"},
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Full pipeline report", MIMEType: "application/json"},
	}
}

// ResourceTemplates lists the parameterised resources for registration.
func (h *ResourceHandlers) ResourceTemplates() []*mcp.ResourceTemplate {
	return []*mcp.ResourceTemplate{
		{URITemplate: resourceScheme + "deals/{id}", Name: "deal", Description: "One deal with its health", MIMEType: "application/json"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "contacts":
		return jsonResource(uri, snap.Contacts)

	case "deals":
		r := h.engine.Analyze(snap)
		if len(parts) == 1 {
			return jsonResource(uri, r.Health)
		}
		for _, d := range r.Health {
			if d.ID == parts[1] {
				return jsonResource(uri, d)
			}
		}
		return nil, mcp.ResourceNotFoundError(uri)

	case "pipeline":
		return jsonResource(uri, h.engine.Analyze(snap))

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
