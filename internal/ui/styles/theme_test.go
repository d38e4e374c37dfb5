// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}

	// Rendering through an initialized style must preserve the text.
	for name, render := range map[string]func(...string) string{
		"UserBubble":     theme.UserBubble.Render,
		"AgentBubble":    theme.AgentBubble.Render,
		"ThoughtCard":    theme.ThoughtCard.Render,
		"ReferencePanel": theme.ReferencePanel.Render,
		"StatusBar":      theme.StatusBar.Render,
	} {
		if out := render("probe"); !strings.Contains(out, "probe") {
			t.Errorf("%s.Render dropped its content: %q", name, out)
		}
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize not applied: %dx%d", theme.Width, theme.Height)
	}
}

func TestEntityStyleFallback(t *testing.T) {
	theme := NewTheme()
	if theme.EntityStyle("unknown").Render("x") != theme.EntityDisease.Render("x") {
		t.Error("unknown entity kind should fall back to the disease style")
	}
	if theme.EntityStyle("drug").Render("x") != theme.EntityDrug.Render("x") {
		t.Error("drug kind should use the drug style")
	}
	if theme.EntityStyle("symptom").Render("x") != theme.EntitySymptom.Render("x") {
		t.Error("symptom kind should use the symptom style")
	}
}

func TestStatusRenderersIncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("saved"), StatusIndicators.Success) {
		t.Error("RenderSuccess missing shape indicator")
	}
	if !strings.Contains(RenderError("failed"), StatusIndicators.Error) {
		t.Error("RenderError missing shape indicator")
	}
	if !strings.Contains(RenderWarning("stale"), StatusIndicators.Warning) {
		t.Error("RenderWarning missing shape indicator")
	}
}
