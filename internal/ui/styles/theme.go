// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble  lipgloss.Style
	AgentBubble lipgloss.Style
	ErrorNotice lipgloss.Style
	Timestamp   lipgloss.Style

	// ==========================================================================
	// REASONING AND THOUGHT STYLES
	// ==========================================================================

	ReasoningBlock lipgloss.Style
	ReasoningLabel lipgloss.Style
	ThoughtCard    lipgloss.Style
	ThoughtRunning lipgloss.Style
	ThoughtDone    lipgloss.Style
	ThoughtOutput  lipgloss.Style

	// ==========================================================================
	// REFERENCE PANEL STYLES
	// ==========================================================================

	ReferencePanel lipgloss.Style
	ReferenceGroup lipgloss.Style
	ReferenceTitle lipgloss.Style
	ReferenceURL   lipgloss.Style
	ReferenceMatch lipgloss.Style

	// ==========================================================================
	// ENTITY PANEL STYLES
	// ==========================================================================

	EntityPanel   lipgloss.Style
	EntityDisease lipgloss.Style
	EntityDrug    lipgloss.Style
	EntitySymptom lipgloss.Style
	EntityDetail  lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	ToggleOn        lipgloss.Style
	ToggleOff       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// CODE BLOCK STYLES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style

	// ==========================================================================
	// ERROR BOX STYLES
	// ==========================================================================

	ErrorBox   lipgloss.Style
	ErrorTitle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextMuted)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.AgentBubble = lipgloss.NewStyle().
		Foreground(AgentBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AgentBubbleBorder).
		Padding(0, 1)
	t.ErrorNotice = lipgloss.NewStyle().Foreground(Rose).Italic(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	// Reasoning and thoughts
	t.ReasoningBlock = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Violet).
		PaddingLeft(1)
	t.ReasoningLabel = lipgloss.NewStyle().Foreground(Violet).Bold(true)
	t.ThoughtCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.ThoughtRunning = lipgloss.NewStyle().Foreground(Amber)
	t.ThoughtDone = lipgloss.NewStyle().Foreground(Emerald)
	t.ThoughtOutput = lipgloss.NewStyle().Foreground(TextMuted)

	// References
	t.ReferencePanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.ReferenceGroup = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.ReferenceTitle = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ReferenceURL = lipgloss.NewStyle().Foreground(Blue).Underline(true)
	t.ReferenceMatch = lipgloss.NewStyle().Foreground(Teal).Bold(true)

	// Entities
	t.EntityPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.EntityDisease = lipgloss.NewStyle().Foreground(EntityDisease).Bold(true)
	t.EntityDrug = lipgloss.NewStyle().Foreground(EntityDrug).Bold(true)
	t.EntitySymptom = lipgloss.NewStyle().Foreground(EntitySymptom).Bold(true)
	t.EntityDetail = lipgloss.NewStyle().Foreground(TextSecondary)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Bold(true)
	t.ToggleOn = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ToggleOff = lipgloss.NewStyle().Foreground(TextMuted)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusOnline = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusOffline = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	// Spinner
	t.Spinner = lipgloss.NewStyle().Foreground(Teal)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	// Code blocks
	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceBright).
		Padding(0, 1)
	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1).
		Bold(true)

	// Errors
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
	t.ErrorTitle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// EntityStyle returns the highlight style for a medical entity kind.
// Unknown kinds fall back to the disease style.
func (t *Theme) EntityStyle(kind string) lipgloss.Style {
	switch kind {
	case "drug":
		return t.EntityDrug
	case "symptom":
		return t.EntitySymptom
	default:
		return t.EntityDisease
	}
}
