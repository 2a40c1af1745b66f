package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JohnDeved/recipe-explorer/internal/debounce"
	"github.com/JohnDeved/recipe-explorer/internal/grid"
	"github.com/JohnDeved/recipe-explorer/internal/recipe"
	"github.com/JohnDeved/recipe-explorer/internal/remote"
	"github.com/JohnDeved/recipe-explorer/internal/render"
	"github.com/JohnDeved/recipe-explorer/internal/route"
	"github.com/JohnDeved/recipe-explorer/internal/util"
)

const (
	minCardWidth = 28
	cardHeight   = 5 // border + title, description, badges
	cardGap      = 1
)

// homeScreen is the searchable recipe grid. The typed query outlives the
// screen; results and selection are rebuilt on every entry.
type homeScreen struct {
	all      []recipe.Recipe
	input    textinput.Model
	debounce *debounce.Debouncer
	applied  string
	results  []recipe.Recipe
	sel      grid.Selection
	columns  int // configured; 0 means fit to width
	width    int
	height   int
	offset   int
}

func newHomeScreen(all []recipe.Recipe, columns int, d *debounce.Debouncer) *homeScreen {
	ti := textinput.New()
	ti.Placeholder = "Search by title or ingredient"
	ti.CharLimit = 128
	ti.Width = 40
	ti.Prompt = "🔎 "
	ti.PromptStyle = searchPromptStyle

	h := &homeScreen{
		all:      all,
		input:    ti,
		debounce: d,
		columns:  columns,
		results:  all,
	}
	h.sel = grid.New(len(all), h.gridColumns())
	return h
}

// gridColumns is the column count used for both layout and navigation.
func (h *homeScreen) gridColumns() int {
	if h.columns > 0 {
		return h.columns
	}
	return grid.ColumnsForWidth(h.width, minCardWidth)
}

func (h *homeScreen) setSize(width, height int) {
	h.width = width
	h.height = height
	h.input.Width = max(10, min(60, width-6))
	h.sel = h.sel.Resize(len(h.results), h.gridColumns())
}

// enter applies the current query at once and puts the selection on the
// first card.
func (h *homeScreen) enter() {
	h.debounce.Cancel()
	h.applied = h.input.Value()
	h.results = recipe.Filter(h.all, h.applied)
	h.sel = grid.New(len(h.results), h.gridColumns())
	h.offset = 0
}

func (h *homeScreen) leave() {
	h.debounce.Cancel()
	h.input.Blur()
}

// apply installs a debounced query. Selection returns to the first card only
// when the query actually changed.
func (h *homeScreen) apply(query string) {
	if query == h.applied {
		return
	}
	h.applied = query
	h.results = recipe.Filter(h.all, query)
	h.sel = grid.New(len(h.results), h.gridColumns())
	h.offset = 0
}

// fired handles a debounce tick.
func (h *homeScreen) fired(msg debounce.FiredMsg) {
	if h.debounce.Accept(msg) {
		h.apply(msg.Value)
	}
}

func (h *homeScreen) focus() tea.Cmd {
	return h.input.Focus()
}

// blur leaves the search box and commits whatever was typed.
func (h *homeScreen) blur() {
	h.input.Blur()
	if msg, ok := h.debounce.Flush(); ok {
		h.apply(msg.Value)
	}
}

// updateInput feeds a key to the search box and schedules the query when
// the text changed.
func (h *homeScreen) updateInput(msg tea.Msg) tea.Cmd {
	before := h.input.Value()
	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	if h.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, h.debounce.Schedule(h.input.Value()))
}

func (h *homeScreen) selected() (recipe.Recipe, bool) {
	i := h.sel.Index()
	if i < 0 || i >= len(h.results) {
		return recipe.Recipe{}, false
	}
	return h.results[i], true
}

func (h *homeScreen) move(a remote.Action) {
	h.sel = h.sel.Move(a)
}

func (h *homeScreen) bindings(r *route.Router) remote.Bindings {
	return remote.Bindings{
		OnLeft:  func() { h.move(remote.ActionLeft) },
		OnRight: func() { h.move(remote.ActionRight) },
		OnUp:    func() { h.move(remote.ActionUp) },
		OnDown:  func() { h.move(remote.ActionDown) },
		OnConfirm: func() {
			if item, ok := h.selected(); ok {
				r.Open(item.ID)
			}
		},
	}
}

func (h *homeScreen) cardWidth() int {
	cols := h.sel.Columns()
	w := (h.width - (cols-1)*cardGap) / cols
	return max(w, 12)
}

func (h *homeScreen) renderCard(r recipe.Recipe, selected bool, width int) string {
	inner := max(width-4, 4)
	lines := []string{
		cardTitleStyle.Render(util.Truncate(r.Title, inner)),
		cardDescStyle.Render(util.Truncate(r.Description, inner)),
		badgeStyle.Render(util.Truncate(render.Badges(r), inner)),
	}
	style := cardStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// view renders the search box and the visible rows of the grid in height
// lines.
func (h *homeScreen) view(height int) string {
	var sb strings.Builder
	sb.WriteString(h.input.View())
	sb.WriteString("\n\n")

	if len(h.results) == 0 {
		sb.WriteString(helpStyle.Render(fmt.Sprintf("  No recipes match %q.", strings.TrimSpace(h.applied))))
		return sb.String()
	}

	visibleRows := max(1, (height-2)/cardHeight)
	h.offset = h.sel.Visible(h.offset, visibleRows)

	cols := h.sel.Columns()
	width := h.cardWidth()
	var rows []string
	for row := h.offset; row < h.offset+visibleRows && row < h.sel.Rows(); row++ {
		var cards []string
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(h.results) {
				break
			}
			if col > 0 {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, h.renderCard(h.results[i], i == h.sel.Index(), width))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	sb.WriteString(strings.Join(rows, "\n"))
	return sb.String()
}
