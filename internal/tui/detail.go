package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
	"github.com/JohnDeved/recipe-explorer/internal/remote"
	"github.com/JohnDeved/recipe-explorer/internal/render"
	"github.com/JohnDeved/recipe-explorer/internal/route"
)

// detailScreen shows one recipe in a scrollable viewport.
type detailScreen struct {
	recipe   recipe.Recipe
	style    render.Style
	viewport viewport.Model
	err      error
}

func newDetailScreen(style render.Style) *detailScreen {
	return &detailScreen{
		style:    style,
		viewport: viewport.New(80, 20),
	}
}

func (d *detailScreen) setSize(width, height int) {
	d.viewport.Width = max(width, 20)
	d.viewport.Height = max(height, 3)
	if d.recipe.ID != "" {
		d.refresh()
	}
}

func (d *detailScreen) enter(r recipe.Recipe) {
	d.recipe = r
	d.refresh()
	d.viewport.GotoTop()
}

func (d *detailScreen) leave() {
	d.recipe = recipe.Recipe{}
	d.err = nil
	d.viewport.SetContent("")
}

// refresh re-renders the recipe for the current width. Rendering failures
// fall back to the markdown source.
func (d *detailScreen) refresh() {
	out, err := render.Terminal(d.recipe, d.viewport.Width-2, d.style)
	d.err = err
	if err != nil {
		out = render.Markdown(d.recipe)
	}
	d.viewport.SetContent(out)
}

func (d *detailScreen) scroll(delta int) {
	d.viewport.SetYOffset(d.viewport.YOffset + delta)
}

func (d *detailScreen) bindings(r *route.Router) remote.Bindings {
	return remote.Bindings{
		OnUp:   func() { d.scroll(-1) },
		OnDown: func() { d.scroll(1) },
		OnBack: func() { r.Home() },
	}
}

func (d *detailScreen) view() string {
	var sb strings.Builder
	sb.WriteString(backStyle.Render("← Back"))
	sb.WriteString("  ")
	sb.WriteString(subtitleStyle.Render("Ingredients and step-by-step instructions"))
	sb.WriteString("\n\n")
	sb.WriteString(d.viewport.View())
	return sb.String()
}
