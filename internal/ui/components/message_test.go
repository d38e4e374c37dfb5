// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/openmedix/mediq-tui/internal/model"
	"github.com/openmedix/mediq-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme()
}

func TestUserBubbleShowsQuestion(t *testing.T) {
	msg := model.NewUserMessage("What is the maximum daily dose of ibuprofen?")
	bubble := NewMessageBubble(msg, testTheme(), nil)
	bubble.Width = 80

	out := bubble.View()
	if !strings.Contains(out, "ibuprofen") {
		t.Errorf("question text missing from bubble:\n%s", out)
	}
	if !strings.Contains(out, "You") {
		t.Errorf("role label missing:\n%s", out)
	}
}

func TestAgentBubbleRendersAllSections(t *testing.T) {
	msg := model.Message{
		ID:        "m1",
		Role:      model.RoleAgent,
		Timestamp: time.Now(),
		Content:   "Ibuprofen is an NSAID.",
		Reasoning: "Checking dosage guidelines.",
		Thoughts: []model.ThoughtStep{
			{ID: "t1", Kind: model.StepTool, Content: "Searching drug database", Status: model.StatusDone},
		},
		References: []model.ReferenceGroup{
			{Name: "pubmed", Refs: []model.Reference{{ID: "r1", Title: "NSAID overview"}}},
		},
		Entities: []model.EntityResult{
			{ID: "e1", Category: model.EntityDrug, Name: "Ibuprofen", Description: "NSAID analgesic"},
		},
	}

	bubble := NewMessageBubble(msg, testTheme(), nil)
	bubble.Width = 100
	out := bubble.View()

	for _, want := range []string{
		"Ibuprofen is an NSAID.",
		"Checking dosage guidelines.",
		"Searching drug database",
		"NSAID overview",
		"Linked entities",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("section %q missing from rendered bubble", want)
		}
	}
}

func TestAgentBubbleHidesDisabledSections(t *testing.T) {
	msg := model.Message{
		ID:        "m1",
		Role:      model.RoleAgent,
		Content:   "Answer body.",
		Reasoning: "Hidden reasoning.",
		References: []model.ReferenceGroup{
			{Name: "pubmed", Refs: []model.Reference{{ID: "r1", Title: "Hidden ref"}}},
		},
	}

	bubble := NewMessageBubble(msg, testTheme(), nil)
	bubble.ShowReasoning = false
	bubble.ShowRefs = false
	out := bubble.View()

	if strings.Contains(out, "Hidden reasoning.") {
		t.Error("reasoning rendered despite being disabled")
	}
	if strings.Contains(out, "Hidden ref") {
		t.Error("references rendered despite being disabled")
	}
	if !strings.Contains(out, "Answer body.") {
		t.Error("answer body missing")
	}
}

func TestStreamingPlaceholder(t *testing.T) {
	msg := model.NewAgentMessage()
	bubble := NewMessageBubble(msg, testTheme(), nil)

	if out := bubble.View(); !strings.Contains(out, "...") {
		t.Errorf("empty streaming message should show placeholder:\n%s", out)
	}
}

func TestThoughtTraceSummary(t *testing.T) {
	steps := []model.ThoughtStep{
		{ID: "1", Status: model.StatusDone},
		{ID: "2", Status: model.StatusWorking},
		{ID: "3", Status: model.StatusWorking},
	}
	trace := NewThoughtTrace(steps, testTheme())
	if got := trace.Summary(); got != "3 steps, 2 running" {
		t.Errorf("Summary = %q", got)
	}

	empty := NewThoughtTrace(nil, testTheme())
	if empty.View() != "" || empty.Summary() != "" {
		t.Error("empty trace should render nothing")
	}
}

func TestReferencePanelHighlightsMatches(t *testing.T) {
	groups := []model.ReferenceGroup{
		{
			Name: "pubmed",
			Refs: []model.Reference{
				{
					ID:    "r1",
					Title: "Fever management",
					URL:   "https://example.org/fever",
					Matches: []model.SentenceMatch{
						{Prefix: "Treat ", Match: "fever", Suffix: " with antipyretics."},
					},
				},
			},
		},
	}

	panel := NewReferencePanel(groups, testTheme())
	out := panel.View()

	for _, want := range []string{"pubmed", "Fever management", "https://example.org/fever", "fever"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q missing from panel:\n%s", want, out)
		}
	}
	if panel.Count() != 1 {
		t.Errorf("Count = %d, want 1", panel.Count())
	}
}

func TestRenderFencedBlocks(t *testing.T) {
	in := "Dosage calc:\n```python\ndose = weight * 10\n```\nDone."
	out := RenderFencedBlocks(in, 80)
	if !strings.Contains(out, "dose = weight * 10") {
		t.Errorf("code content lost:\n%s", out)
	}
	if !strings.Contains(out, "Dosage calc:") || !strings.Contains(out, "Done.") {
		t.Errorf("prose lost:\n%s", out)
	}
}

func TestMarkdownRendererFallsBackOnTinyWidth(t *testing.T) {
	r := NewMarkdownRenderer(true)
	out := r.Render("**bold** text", 5)
	if !strings.Contains(out, "bold") {
		t.Errorf("markdown content lost: %q", out)
	}
}
