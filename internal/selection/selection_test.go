// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmedix/mediq-tui/internal/agent"
)

func testState() State {
	return New(
		[]agent.DataSource{
			{ID: "pubmed", Name: "PubMed", Type: "literature"},
			{ID: "drugdb", Name: "Drug database", Type: "database"},
		},
		[]agent.ToolConfig{
			{ID: "interactions", Name: "Drug interactions", Enabled: true},
			{ID: "imaging", Name: "Imaging lookup"},
		},
	)
}

func TestNew_EnabledToolsStartSelected(t *testing.T) {
	s := testState()
	assert.True(t, s.ToolSelected("interactions"))
	assert.False(t, s.ToolSelected("imaging"))
	assert.Empty(t, s.SelectedSourceIDs())
}

func TestToggleSource(t *testing.T) {
	s := testState()
	s2 := s.ToggleSource("pubmed")

	assert.True(t, s2.SourceSelected("pubmed"))
	assert.False(t, s.SourceSelected("pubmed"), "prior snapshot must not change")

	s3 := s2.ToggleSource("pubmed")
	assert.False(t, s3.SourceSelected("pubmed"))
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	s := testState()
	assert.Empty(t, s.ToggleSource("nope").SelectedSourceIDs())
	assert.Equal(t, s.SelectedToolIDs(), s.ToggleTool("nope").SelectedToolIDs())
}

func TestSelectedIDsFollowCatalogOrder(t *testing.T) {
	s := testState().ToggleSource("drugdb").ToggleSource("pubmed")
	assert.Equal(t, []string{"pubmed", "drugdb"}, s.SelectedSourceIDs())
}

func TestRestoreIgnoresStaleIDs(t *testing.T) {
	s := testState().RestoreSources([]string{"pubmed", "removed-source"})
	assert.Equal(t, []string{"pubmed"}, s.SelectedSourceIDs())

	s = testState().RestoreTools([]string{"imaging", "gone"})
	assert.True(t, s.ToolSelected("imaging"))
	assert.False(t, s.ToolSelected("gone"))
}

func TestSummary(t *testing.T) {
	s := testState().ToggleSource("pubmed")
	assert.Equal(t, "1 source, 1 tool", s.Summary())

	s = s.ToggleSource("drugdb").ToggleTool("interactions")
	assert.Equal(t, "2 sources, 0 tools", s.Summary())
}

func TestLookups(t *testing.T) {
	s := testState()
	src, ok := s.SourceByID("drugdb")
	assert.True(t, ok)
	assert.Equal(t, "Drug database", src.Name)

	_, ok = s.ToolByID("missing")
	assert.False(t, ok)
}
