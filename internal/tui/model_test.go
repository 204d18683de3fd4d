package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func TestNewModelStartsOnPicker(t *testing.T) {
	session := newFixtureSession(t)
	m := NewModel(session, "/tmp/demo", config.Default(), nil)
	assert.Equal(t, StatePicker, m.state)
	assert.Len(t, m.list.Items(), 2)
}

func TestRenderSelectionSwitchesToViewport(t *testing.T) {
	session := newFixtureSession(t)
	m := NewModel(session, "/tmp/demo", config.Default(), nil)

	m.list.Select(0)
	m.renderSelection()
	assert.Equal(t, StateViewport, m.state)
	assert.NotEmpty(t, m.viewport.View())
}

func TestRenderDiagramFlowchart(t *testing.T) {
	flowID, err := ids.NewDiagramId("flow1")
	require.NoError(t, err)
	ast := model.NewFlowchartAst()
	diagram := model.NewDiagram(flowID, "Pipeline", model.DiagramAst{Kind: model.KindFlowchart, Flowchart: ast})

	out := renderDiagram(diagram)
	assert.NotNil(t, out)
}

func TestRenderWalkthroughIncludesTitle(t *testing.T) {
	walkthroughID, err := ids.NewWalkthroughId("w1")
	require.NoError(t, err)
	w := model.NewWalkthrough(walkthroughID, "Onboarding Tour")
	md, err := NewMarkdownRenderer(80)
	require.NoError(t, err)

	out := renderWalkthrough(w, md)
	assert.Contains(t, out, "Onboarding Tour")
}
