// Package render turns a recipe into markdown and styled terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

// Markdown renders r as a markdown document: title, badges, description,
// ingredients and numbered steps.
func Markdown(r recipe.Recipe) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", r.Title)
	if badges := Badges(r); badges != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", badges)
	}
	if r.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", r.Description)
	}
	if r.Image != "" {
		fmt.Fprintf(&sb, "Image: %s\n\n", r.Image)
	}

	sb.WriteString("## Ingredients\n\n")
	if len(r.Ingredients) == 0 {
		sb.WriteString("_None listed._\n\n")
	}
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "- %s\n", escape(ing))
	}
	if len(r.Ingredients) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("## Instructions\n\n")
	if len(r.Steps) == 0 {
		sb.WriteString("_None listed._\n")
	}
	for i, step := range r.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, escape(step))
	}
	return sb.String()
}

// Badges is the "⏱ 25m · 🍽 2" summary line, or "" when r has neither.
func Badges(r recipe.Recipe) string {
	var parts []string
	if r.Time != "" {
		parts = append(parts, "⏱ "+r.Time)
	}
	if r.Serves > 0 {
		parts = append(parts, fmt.Sprintf("🍽 %d", r.Serves))
	}
	return strings.Join(parts, " · ")
}

// escape keeps list items from being read as nested markdown.
func escape(s string) string {
	s = strings.ReplaceAll(s, "*", `\*`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// Style picks the glamour palette.
type Style int

const (
	StyleDark Style = iota
	StyleAuto
	StylePlain
)

// Terminal renders r for a terminal of the given width.
func Terminal(r recipe.Recipe, width int, style Style) (string, error) {
	if width < 20 {
		width = 20
	}

	var opt glamour.TermRendererOption
	switch style {
	case StyleAuto:
		opt = glamour.WithAutoStyle()
	case StylePlain:
		opt = glamour.WithStandardStyle(styles.NoTTYStyle)
	default:
		opt = glamour.WithStyles(recipeStyle())
	}

	tr, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := tr.Render(Markdown(r))
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", r.ID, err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

func recipeStyle() ansi.StyleConfig {
	s := styles.DarkStyleConfig
	zero := uint(0)

	s.Document.Margin = &zero
	s.H1.StylePrimitive.BackgroundColor = nil
	s.H1.StylePrimitive.Color = stringPtr("#22D3EE")
	s.H1.StylePrimitive.Bold = boolPtr(true)
	s.H1.StylePrimitive.Prefix = ""
	s.H1.StylePrimitive.Suffix = ""
	s.H2.StylePrimitive.Color = stringPtr("#F59E0B")
	return s
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
