// ABOUTME: Tests for GraphViz pipeline renderings
// ABOUTME: Verifies DOT output contains stages, conversion labels and deal nodes
package viz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFunnelGraph(t *testing.T) {
	dot, err := GenerateFunnelGraph(t.Context(), sampleReport())
	require.NoError(t, err)

	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "stage_lead")
	assert.Contains(t, dot, "stage_closed")
	assert.Contains(t, dot, "->")
}

func TestGeneratePipelineGraph(t *testing.T) {
	dot, err := GeneratePipelineGraph(t.Context(), sampleReport())
	require.NoError(t, err)

	assert.Contains(t, dot, "deal_d1")
	assert.Contains(t, dot, "contact_c1")
	assert.Contains(t, dot, "lightcoral")
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	_, err := Generate(t.Context(), "org-chart", sampleReport())
	assert.Error(t, err)

	_, err = GenerateFunnelGraph(t.Context(), nil)
	assert.Error(t, err)
}
