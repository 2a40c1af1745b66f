package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JohnDeved/recipe-explorer/internal/config"
	"github.com/JohnDeved/recipe-explorer/internal/debounce"
	"github.com/JohnDeved/recipe-explorer/internal/downloader"
	"github.com/JohnDeved/recipe-explorer/internal/logger"
	"github.com/JohnDeved/recipe-explorer/internal/recipe"
	"github.com/JohnDeved/recipe-explorer/internal/remote"
	"github.com/JohnDeved/recipe-explorer/internal/render"
	"github.com/JohnDeved/recipe-explorer/internal/route"
	"github.com/JohnDeved/recipe-explorer/internal/util"
)

const (
	homeHint   = "Use arrow keys to navigate, Enter to open, and Back to exit section."
	detailHint = "Press Back to return to recipes."

	// chromeLines is everything around the content area: header, two rules,
	// hint line and status bar.
	chromeLines = 5
)

// Messages
type statusClearMsg struct{ id int }

type imageUpdateMsg struct{ snap downloader.Snapshot }

// Options configures the TUI. Zero fields fall back to the built-in catalog,
// default config and a discarding logger.
type Options struct {
	Catalog       *recipe.Catalog
	Config        *config.Config
	Logger        *logger.Logger
	Images        *downloader.Manager
	StartFragment string
	Style         render.Style
	Clipboard     func(string) error
}

type screenKind int

const (
	screenNone screenKind = iota
	screenHome
	screenDetail
)

// navigator keeps the visible screen in step with the router. It is shared
// by every copy of the Model so remote callbacks always see live state.
type navigator struct {
	catalog *recipe.Catalog
	router  *route.Router
	remote  *remote.Dispatcher
	log     *logger.Logger

	home   *homeScreen
	detail *detailScreen
	screen screenKind

	// missing is the id of an unresolved detail route shown as Home.
	missing string
	release func()
}

// sync switches screens for r. A detail route whose id is not in the catalog
// shows Home, and staying on Home keeps its state.
func (n *navigator) sync(r route.Route) {
	target := screenHome
	n.missing = ""
	var found recipe.Recipe
	if r.Kind == route.Detail {
		if rec, ok := n.catalog.Get(r.ID); ok {
			target = screenDetail
			found = rec
		} else {
			n.missing = r.ID
			n.log.Debug("recipe %s not found, showing home", r.ID)
		}
	}
	if target == screenHome && n.screen == screenHome {
		return
	}

	n.leave()
	n.screen = target
	switch target {
	case screenHome:
		n.home.enter()
		n.release = n.remote.Listen(n.home.bindings(n.router))
	case screenDetail:
		n.detail.enter(found)
		n.release = n.remote.Listen(n.detail.bindings(n.router))
	}
	n.log.Debug("route %s", r.Fragment())
}

func (n *navigator) leave() {
	if n.release != nil {
		n.release()
		n.release = nil
	}
	switch n.screen {
	case screenHome:
		n.home.leave()
	case screenDetail:
		n.detail.leave()
	}
}

// Model is the main Bubble Tea model.
type Model struct {
	nav       *navigator
	cfg       *config.Config
	log       *logger.Logger
	images    *downloader.Manager
	clipboard func(string) error

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	location textinput.Model
	locating bool

	width       int
	height      int
	showHelp    bool
	helpOffset  int
	statusMsg   string
	statusID    int
	quitConfirm bool
}

// NewModel creates the TUI model positioned at opts.StartFragment.
func NewModel(opts Options) Model {
	cat := opts.Catalog
	if cat == nil {
		cat = recipe.BuiltinCatalog()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	loc := textinput.New()
	loc.Prompt = "Go to: "
	loc.PromptStyle = searchPromptStyle
	loc.CharLimit = 256

	router := route.NewRouter(opts.StartFragment)
	dispatcher := remote.NewDispatcher()
	delay := time.Duration(cfg.DebounceMS) * time.Millisecond

	nav := &navigator{
		catalog: cat,
		router:  router,
		remote:  dispatcher,
		log:     log,
		home:    newHomeScreen(cat.All(), cfg.Columns, debounce.New(delay)),
		detail:  newDetailScreen(opts.Style),
	}

	// Back on a detail route returns home; on home it does nothing.
	dispatcher.Listen(remote.Bindings{
		OnBack: func() {
			if router.Current().Kind == route.Detail {
				router.Home()
			}
		},
	})
	router.Subscribe(nav.sync)
	nav.sync(router.Current())

	return Model{
		nav:       nav,
		cfg:       cfg,
		log:       log,
		images:    opts.Images,
		clipboard: clip,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   s,
		location:  loc,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		content := m.contentHeight()
		m.nav.home.setSize(m.width, content)
		m.nav.detail.setSize(m.width, content-2)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case debounce.FiredMsg:
		m.nav.home.fired(msg)
		return m, nil

	case imageUpdateMsg:
		cmd := m.imageStatus(msg.snap)
		return m, cmd

	case statusClearMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Cursor blink and other input messages.
	var cmd tea.Cmd
	switch {
	case m.locating:
		m.location, cmd = m.location.Update(msg)
	case m.searchFocused():
		m.nav.home.input, cmd = m.nav.home.input.Update(msg)
	}
	return m, cmd
}

func (m Model) searchFocused() bool {
	return m.nav.screen == screenHome && m.nav.home.input.Focused()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.locating {
		return m.handleLocationKey(msg)
	}

	if m.showHelp {
		switch key {
		case "?", "esc":
			m.showHelp = false
			m.helpOffset = 0
		case "up", "k":
			if m.helpOffset > 0 {
				m.helpOffset--
			}
		case "down", "j":
			m.helpOffset++
		case "pgup", "ctrl+u":
			m.helpOffset = max(0, m.helpOffset-8)
		case "pgdown", "ctrl+d":
			m.helpOffset += 8
		case "ctrl+c", "q":
			return m.quit()
		}
		return m, nil
	}

	searchFocused := m.searchFocused()

	// Global keys.
	switch key {
	case "ctrl+c":
		return m.quit()
	case "q":
		if !searchFocused {
			return m.quit()
		}
	case "esc":
		if m.quitConfirm {
			m.quitConfirm = false
			cmd := m.setStatus("Quit canceled")
			return m, cmd
		}
	case "ctrl+l":
		cmd := m.openLocation()
		return m, cmd
	}

	if searchFocused {
		return m.handleSearchKey(msg)
	}

	switch key {
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		if m.nav.screen == screenHome {
			return m, m.nav.home.focus()
		}
		return m, nil
	case "s":
		cmd := m.saveImage()
		return m, cmd
	case "y":
		cmd := m.copyLink()
		return m, cmd
	}

	if code, ok := remote.CodeForKey(msg); ok {
		m.nav.remote.Dispatch(code)
	}
	return m, nil
}

// handleSearchKey edits the query. Keys that leave the box commit it, and
// enter or the vertical arrows then act on the grid.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nav.home.blur()
		return m, nil
	case "enter", "up", "down":
		m.nav.home.blur()
		if code, ok := remote.CodeForKey(msg); ok {
			m.nav.remote.Dispatch(code)
		}
		return m, nil
	}
	return m, m.nav.home.updateInput(msg)
}

func (m *Model) openLocation() tea.Cmd {
	if m.searchFocused() {
		m.nav.home.blur()
	}
	m.locating = true
	m.location.SetValue("")
	m.location.Placeholder = m.nav.router.Fragment()
	return m.location.Focus()
}

func (m Model) handleLocationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.locating = false
		m.location.Blur()
		return m, nil
	case "enter":
		m.locating = false
		m.location.Blur()
		fragment := strings.TrimSpace(m.location.Value())
		if fragment == "" {
			return m, nil
		}
		if !strings.HasPrefix(fragment, "#") {
			fragment = "#" + fragment
		}
		if !m.nav.router.Navigate(fragment) {
			cmd := m.setStatus("Already at " + fragment)
			return m, cmd
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitConfirm {
		m.images.CancelAll()
		return m, tea.Quit
	}
	if m.images != nil && m.images.HasActive() {
		m.quitConfirm = true
		cmd := m.setStatus("Images still saving. Press q again to cancel and quit, or Esc to stay")
		return m, cmd
	}
	return m, tea.Quit
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.showHelp {
			if m.helpOffset > 0 {
				m.helpOffset--
			}
			return m, nil
		}
		m.nav.remote.Dispatch(remote.KeyUp)
	case tea.MouseButtonWheelDown:
		if m.showHelp {
			m.helpOffset++
			return m, nil
		}
		m.nav.remote.Dispatch(remote.KeyDown)
	}
	return m, nil
}

// currentRecipe is the focused card on Home or the open recipe on Detail.
func (m Model) currentRecipe() (recipe.Recipe, bool) {
	switch m.nav.screen {
	case screenHome:
		return m.nav.home.selected()
	case screenDetail:
		return m.nav.detail.recipe, true
	}
	return recipe.Recipe{}, false
}

func (m *Model) saveImage() tea.Cmd {
	r, ok := m.currentRecipe()
	if !ok {
		return nil
	}
	if m.images == nil {
		return m.setStatus("Image saving is not available")
	}
	item, created, err := m.images.Enqueue(r)
	if errors.Is(err, downloader.ErrNoImage) {
		return m.setStatus(fmt.Sprintf("%s has no image", r.Title))
	}
	if err != nil {
		m.log.Error("save image of %s: %v", r.ID, err)
		return m.setStatus(errorStyle.Render("Save failed: " + err.Error()))
	}
	if !created {
		return m.setStatus(fmt.Sprintf("Already saved: %s", item.Name))
	}
	m.log.Info("saving image of %s to %s", r.ID, item.DestPath)
	return m.setStatus(fmt.Sprintf("Saving image: %s", item.Name))
}

func (m *Model) imageStatus(s downloader.Snapshot) tea.Cmd {
	switch s.Status {
	case downloader.StatusCompleted:
		return m.setStatus(successStyle.Render("Saved " + util.TruncatePath(s.DestPath, 60)))
	case downloader.StatusFailed:
		m.log.Error("save image of %s: %v", s.RecipeID, s.Err)
		return m.setStatus(errorStyle.Render(fmt.Sprintf("Image save failed: %v", s.Err)))
	}
	return nil
}

func (m *Model) copyLink() tea.Cmd {
	r, ok := m.currentRecipe()
	if !ok {
		return nil
	}
	link := r.Fragment()
	if err := m.clipboard(link); err != nil {
		m.log.Warn("clipboard: %v", err)
		return m.setStatus(errorStyle.Render("Clipboard unavailable: " + err.Error()))
	}
	return m.setStatus("Copied " + link)
}

func (m Model) contentHeight() int {
	return max(m.height-chromeLines, 3)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sb strings.Builder

	// Header
	header := titleStyle.Render("Recipe Explorer") + "  " +
		subtitleStyle.Render("Ocean Professional") + "  " +
		countBadge.Render(fmt.Sprintf("%d recipes", len(m.nav.home.results)))
	if m.images != nil && m.images.HasActive() {
		header += "  " + m.spinner.View() + " saving"
	}
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")

	// Content area.
	content := m.contentHeight()
	var body string
	switch {
	case m.showHelp:
		body = m.helpView(content)
	case m.nav.screen == screenDetail:
		body = m.nav.detail.view()
	default:
		body = m.nav.home.view(content)
	}
	sb.WriteString(lipgloss.NewStyle().Height(content).MaxHeight(content).Render(body))

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")

	// Hint line or location prompt.
	switch {
	case m.locating:
		sb.WriteString(m.location.View())
	case m.nav.screen == screenDetail:
		sb.WriteString(helpStyle.Render(detailHint))
	default:
		sb.WriteString(helpStyle.Render(homeHint))
	}
	sb.WriteString("\n")

	// Status bar.
	sb.WriteString(statusBarStyle.Width(m.width).Render(m.statusLine()))

	return sb.String()
}

func (m Model) statusLine() string {
	if m.statusMsg != "" {
		return m.statusMsg
	}
	if m.nav.missing != "" && m.cfg.NotFound == config.NotFoundMessage {
		return errorStyle.Render(fmt.Sprintf("recipe %s not found", m.nav.missing))
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) helpView(maxLines int) string {
	lines := []string{
		"  Keyboard Shortcuts",
		"  ──────────────────",
		"",
	}
	for _, l := range strings.Split(m.help.FullHelpView(m.keys.FullHelp()), "\n") {
		lines = append(lines, "  "+l)
	}
	lines = append(lines,
		"",
		"  Help view scroll: mouse wheel, j/k, PgUp/PgDn",
		"  Press ? or Esc to close help.",
	)

	if maxLines < 6 {
		maxLines = 6
	}
	maxOffset := max(0, len(lines)-maxLines)
	helpOffset := min(max(m.helpOffset, 0), maxOffset)

	end := min(helpOffset+maxLines, len(lines))
	visible := lines[helpOffset:end]
	return helpStyle.Render(strings.Join(visible, "\n"))
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusID++
	id := m.statusID
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{id: id}
	})
}

// Run starts the TUI.
func Run(opts Options) error {
	m := NewModel(opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Wire up image save notifications.
	if m.images != nil {
		m.images.SetOnChange(func(s downloader.Snapshot) {
			p.Send(imageUpdateMsg{snap: s})
		})
	}

	_, err := p.Run()
	return err
}
