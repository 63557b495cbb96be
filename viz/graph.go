// ABOUTME: GraphViz renderings of the pipeline report
// ABOUTME: Produces DOT for the stage funnel and for the deal board grouped by stage
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
)

// Graph types accepted by Generate.
const (
	GraphFunnel   = "funnel"
	GraphPipeline = "pipeline"
)

var healthColors = map[pipeline.Health]string{
	pipeline.Healthy: "palegreen",
	pipeline.Warning: "khaki",
	pipeline.Rotting: "lightcoral",
}

// Generate renders the named graph type.
func Generate(ctx context.Context, graphType string, r *pipeline.Report) (string, error) {
	switch graphType {
	case GraphFunnel, "":
		return GenerateFunnelGraph(ctx, r)
	case GraphPipeline:
		return GeneratePipelineGraph(ctx, r)
	default:
		return "", fmt.Errorf("unknown graph type: %s (valid types: funnel, pipeline)", graphType)
	}
}

// GenerateFunnelGraph draws one node per stage with edges labelled by conversion rate.
func GenerateFunnelGraph(ctx context.Context, r *pipeline.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report is required")
	}

	return render(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel("Sales Funnel")
		graph.SetRankDir(cgraph.LRRank)

		nodes := make(map[models.Stage]*cgraph.Node, len(r.Stages))
		for _, s := range r.Stages {
			node, err := graph.CreateNodeByName("stage_" + string(s.Stage))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%d deals\n%s", s.Name, s.Count, FormatMoney(s.Value)))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor("lightblue")
			nodes[s.Stage] = node
		}

		for _, c := range r.Funnel {
			from, ok1 := nodes[c.From]
			to, ok2 := nodes[c.To]
			if !ok1 || !ok2 {
				continue
			}
			edge, err := graph.CreateEdgeByName(c.Name(), from, to)
			if err != nil {
				return fmt.Errorf("failed to create conversion edge: %w", err)
			}
			edge.SetLabel(fmt.Sprintf("%d%%", c.Rate))
			if c.Band() == pipeline.BandWeak {
				edge.SetStyle("dashed")
			}
		}
		return nil
	})
}

// GeneratePipelineGraph draws stages, the deals in them coloured by health, and each deal's contact.
func GeneratePipelineGraph(ctx context.Context, r *pipeline.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report is required")
	}

	return render(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel("Pipeline")
		graph.SetRankDir(cgraph.LRRank)

		stageNodes := make(map[models.Stage]*cgraph.Node)
		var prev *cgraph.Node
		for _, s := range r.Stages {
			node, err := graph.CreateNodeByName("stage_" + string(s.Stage))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(s.Name)
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor("lightblue")
			stageNodes[s.Stage] = node

			if prev != nil {
				edge, err := graph.CreateEdgeByName("next_"+string(s.Stage), prev, node)
				if err != nil {
					return fmt.Errorf("failed to create stage edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = node
		}

		contactNodes := make(map[string]*cgraph.Node)
		for _, d := range r.Health {
			stageNode, ok := stageNodes[d.Stage]
			if !ok {
				continue
			}
			node, err := graph.CreateNodeByName("deal_" + d.ID)
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s\n%dd", d.Title, FormatMoney(d.Value), d.Age))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor(healthColors[d.Status])

			if _, err := graph.CreateEdgeByName("in_"+d.ID, stageNode, node); err != nil {
				return fmt.Errorf("failed to create deal edge: %w", err)
			}

			if d.Contact == nil {
				continue
			}
			contactNode, ok := contactNodes[d.Contact.ID]
			if !ok {
				contactNode, err = graph.CreateNodeByName("contact_" + d.Contact.ID)
				if err != nil {
					return fmt.Errorf("failed to create contact node: %w", err)
				}
				contactNode.SetLabel(fmt.Sprintf("%s\n%s", d.Contact.Name, d.Contact.Company))
				contactNode.SetShape("note")
				contactNodes[d.Contact.ID] = contactNode
			}
			edge, err := graph.CreateEdgeByName("contact_for_"+d.ID, node, contactNode)
			if err != nil {
				return fmt.Errorf("failed to create contact edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
		return nil
	})
}

func render(ctx context.Context, build func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
