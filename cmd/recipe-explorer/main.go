package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JohnDeved/recipe-explorer/internal/catalog"
	"github.com/JohnDeved/recipe-explorer/internal/client"
	"github.com/JohnDeved/recipe-explorer/internal/config"
	"github.com/JohnDeved/recipe-explorer/internal/downloader"
	"github.com/JohnDeved/recipe-explorer/internal/index"
	"github.com/JohnDeved/recipe-explorer/internal/logger"
	"github.com/JohnDeved/recipe-explorer/internal/recipe"
	"github.com/JohnDeved/recipe-explorer/internal/render"
	"github.com/JohnDeved/recipe-explorer/internal/route"
	"github.com/JohnDeved/recipe-explorer/internal/tui"
	"github.com/JohnDeved/recipe-explorer/internal/util"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipe-explorer",
		Short: "Browse recipes from your terminal with a TV remote layout",
		Long: `Recipe Explorer - search a grid of recipes and open their ingredients and
steps using only the arrow keys, Enter and Back.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTUI,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().String("catalog", "", "Recipe source: builtin, a .yaml/.json file, an http(s) feed, db or sqlite:<path>")
	rootCmd.PersistentFlags().Int("columns", -1, "Grid columns (0 = fit to terminal width)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().Bool("plain", false, "List recipes in plain text instead of launching TUI")
	rootCmd.Flags().Bool("json", false, "List recipes as JSON instead of launching TUI")

	// Browse command
	browseCmd := &cobra.Command{
		Use:   "browse [fragment]",
		Short: "Launch TUI at a location such as #/recipe/3",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	browseCmd.Flags().Bool("plain", false, "Print the location in plain text instead of launching TUI")
	browseCmd.Flags().Bool("json", false, "Print the location as JSON instead of launching TUI")

	// List command
	listCmd := &cobra.Command{
		Use:   "ls",
		Short: "List the recipe catalog",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().Bool("json", false, "Output JSON")
	listCmd.Flags().Bool("name-only", false, "Only print titles")
	listCmd.Flags().Int("limit", 0, "Limit number of recipes (0 = unlimited)")

	// Search command
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Filter recipes by title, description or ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().Int("limit", 0, "Maximum number of results (0 = unlimited)")
	searchCmd.Flags().Bool("json", false, "Output JSON")
	searchCmd.Flags().Bool("db", false, "Run a ranked full-text search over the imported store")

	// Show command
	showCmd := &cobra.Command{
		Use:   "show <id|fragment>",
		Short: "Print a recipe's ingredients and steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showCmd.Flags().Bool("json", false, "Output JSON")

	// Import command
	importCmd := &cobra.Command{
		Use:   "import <source>...",
		Short: "Load catalog sources into the local recipe store",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().Int("workers", 4, "Number of sources to load in parallel")
	importCmd.Flags().Bool("use", false, "Set catalog = \"db\" in the config after importing")

	// Stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recipe store statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	statsCmd.Flags().Bool("json", false, "Output JSON")

	// Image command
	imageCmd := &cobra.Command{
		Use:   "image <id|fragment>",
		Short: "Save a recipe's image",
		Args:  cobra.ExactArgs(1),
		RunE:  runImage,
	}
	imageCmd.Flags().StringP("output", "o", "", "Output directory for this image")

	// Route command
	routeCmd := &cobra.Command{
		Use:   "route <fragment>",
		Short: "Show which screen a location opens",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoute,
	}
	routeCmd.Flags().Bool("json", false, "Output JSON")

	rootCmd.AddCommand(browseCmd, listCmd, searchCmd, showCmd, importCmd, statsCmd, imageCmd, routeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is what every command needs: settings, a logger and the client.
type app struct {
	cfg        *config.Config
	configPath string
	log        *logger.Logger
	client     *client.Client
}

func setup(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("catalog") {
		cfg.Catalog, _ = cmd.Flags().GetString("catalog")
	}
	if cmd.Flags().Changed("columns") {
		columns, _ := cmd.Flags().GetInt("columns")
		if columns < 0 {
			return nil, fmt.Errorf("--columns must be 0 or more, got %d", columns)
		}
		cfg.Columns = columns
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = config.LogVerbose
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), logOut)
	log.Debug("Config loaded (catalog=%s columns=%d debounce=%dms)", cfg.Catalog, cfg.Columns, cfg.DebounceMS)

	return &app{
		cfg:        cfg,
		configPath: configPath,
		log:        log,
		client:     client.New(cfg.RequestsPerSecond),
	}, nil
}

func (a *app) catalogOptions() catalog.Options {
	return catalog.Options{Client: a.client, DBPath: config.DBPath(), Logger: a.log}
}

func (a *app) loadCatalog(ctx context.Context) (*recipe.Catalog, error) {
	return catalog.Load(ctx, a.cfg.Catalog, a.catalogOptions())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runTUI(cmd *cobra.Command, args []string) error {
	plainMode, _ := cmd.Flags().GetBool("plain")
	jsonMode, _ := cmd.Flags().GetBool("json")
	if plainMode || jsonMode || !isInteractiveTerminal() {
		return runBrowsePlain(cmd, args)
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	logFile, err := tea.LogToFile(config.LogPath(), "recipe-explorer")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	a, err := setup(cmd, logFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	fragment := ""
	if len(args) > 0 {
		fragment = normalizeFragment(args[0])
	}
	a.log.Info("Starting TUI at %q with %d recipes", fragment, cat.Len())

	return tui.Run(tui.Options{
		Catalog:       cat,
		Config:        a.cfg,
		Logger:        a.log,
		Images:        downloader.NewManager(a.client, a.cfg.DownloadDir, a.cfg.MaxConcurrentDownloads),
		StartFragment: fragment,
		Style:         render.StyleDark,
	})
}

// runBrowsePlain prints what the TUI would open: the recipe for a resolvable
// detail location, the catalog otherwise.
func runBrowsePlain(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		r := route.Parse(normalizeFragment(args[0]))
		if r.Kind == route.Detail {
			a, err := setup(cmd, os.Stderr)
			if err != nil {
				return err
			}
			cat, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if found, ok := cat.Get(r.ID); ok {
				return printRecipe(cmd, found)
			}
			a.log.Debug("recipe %s not found, listing catalog", r.ID)
		}
	}
	return runList(cmd, nil)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	recipes := cat.All()
	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && limit < len(recipes) {
		recipes = recipes[:limit]
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		out := struct {
			Catalog string          `json:"catalog"`
			Count   int             `json:"count"`
			Recipes []recipe.Recipe `json:"recipes"`
		}{
			Catalog: a.cfg.Catalog,
			Count:   len(recipes),
			Recipes: nonNil(recipes),
		}
		return writeJSON(out)
	}

	nameOnly, _ := cmd.Flags().GetBool("name-only")
	if nameOnly {
		for _, r := range recipes {
			fmt.Println(r.Title)
		}
		return nil
	}
	return printRecipeTable(recipes)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	useDB, _ := cmd.Flags().GetBool("db")

	var results []recipe.Recipe
	if useDB {
		db, err := index.OpenDB(config.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		results, err = db.Search(query, limit)
		if err != nil {
			return err
		}
	} else {
		ctx, cancel := signalContext()
		defer cancel()
		cat, err := a.loadCatalog(ctx)
		if err != nil {
			return err
		}
		results = recipe.Filter(cat.All(), query)
		if limit > 0 && limit < len(results) {
			results = results[:limit]
		}
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		out := struct {
			Query   string          `json:"query"`
			Count   int             `json:"count"`
			Results []recipe.Recipe `json:"results"`
		}{
			Query:   query,
			Count:   len(results),
			Results: nonNil(results),
		}
		return writeJSON(out)
	}

	if len(results) == 0 {
		fmt.Println("No recipes found.")
		if useDB {
			fmt.Println("Tip: Run 'recipe-explorer import <source>' to fill the recipe store first.")
		}
		return nil
	}

	if err := printRecipeTable(results); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n%d recipes found.\n", len(results))
	return nil
}

// recipeID accepts a bare id or a location like #/recipe/3.
func recipeID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if !strings.ContainsAny(arg, "#/") {
		return arg, nil
	}
	r := route.Parse(normalizeFragment(arg))
	if r.Kind != route.Detail {
		return "", fmt.Errorf("%q is not a recipe location", arg)
	}
	return r.ID, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := recipeID(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	r, err := cat.Lookup(id)
	if err != nil {
		return err
	}
	return printRecipe(cmd, r)
}

func printRecipe(cmd *cobra.Command, r recipe.Recipe) error {
	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		return writeJSON(r)
	}

	style := render.StylePlain
	width := 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style = render.StyleAuto
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = min(w, 100)
		}
	}
	out, err := render.Terminal(r, width, style)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	db, err := index.OpenDB(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	workers, _ := cmd.Flags().GetInt("workers")

	ctx, cancel := signalContext()
	defer cancel()

	opts := a.catalogOptions()
	importer := index.NewImporter(func(ctx context.Context, source string) ([]recipe.Recipe, error) {
		return catalog.Fetch(ctx, source, opts)
	}, db, a.log)
	importer.SetWorkers(workers)
	importer.SetProgressCallback(func(p index.ImportProgress) {
		fmt.Fprintf(os.Stderr, "\r  Loading: %s  [sources: %d/%d  recipes: %d  errors: %d]",
			util.TruncatePath(p.CurrentSource, 40), p.SourcesDone, len(args), p.RecipesFound, p.Errors)
	})

	fmt.Fprintf(os.Stderr, "Importing %d source(s)...\n", len(args))
	result, err := importer.Import(ctx, args)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nDone! Imported %d recipes (%d duplicates skipped, %d sources failed)\n",
		result.Imported, result.Skipped, len(result.Failed))
	for _, src := range result.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", src)
	}

	if use, _ := cmd.Flags().GetBool("use"); use {
		a.cfg.Catalog = "db"
		if a.configPath != "" {
			err = a.cfg.SaveTo(a.configPath)
		} else {
			err = a.cfg.Save()
		}
		if err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Catalog set to the recipe store.")
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := setup(cmd, os.Stderr); err != nil {
		return err
	}

	db, err := index.OpenDB(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		return err
	}
	sources, err := db.Sources()
	if err != nil {
		return err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		type sourceOut struct {
			Name       string `json:"name"`
			Recipes    int    `json:"recipes"`
			ImportedAt string `json:"imported_at"`
		}
		out := struct {
			Sources  []sourceOut `json:"sources"`
			Recipes  int         `json:"recipes"`
			Database string      `json:"database"`
		}{
			Sources:  []sourceOut{},
			Recipes:  stats.Recipes,
			Database: config.DBPath(),
		}
		for _, s := range sources {
			out.Sources = append(out.Sources, sourceOut{
				Name:       s.Name,
				Recipes:    s.RecipeCount,
				ImportedAt: s.ImportedAt.Format("2006-01-02 15:04"),
			})
		}
		return writeJSON(out)
	}

	lastImport := "never"
	if !stats.LastImport.IsZero() {
		lastImport = stats.LastImport.Local().Format("2006-01-02 15:04")
	}

	if isTTY() {
		pterm.DefaultBox.WithTitle("Recipe Store").Println(fmt.Sprintf(
			"Sources:     %d\nRecipes:     %d\nLast import: %s\nDatabase:    %s",
			stats.Sources, stats.Recipes, lastImport, config.DBPath()))
		if len(sources) == 0 {
			return nil
		}
		data := pterm.TableData{{"Source", "Recipes", "Imported"}}
		for _, s := range sources {
			data = append(data, []string{
				util.TruncatePath(s.Name, 50),
				strconv.Itoa(s.RecipeCount),
				s.ImportedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	fmt.Printf("Recipe Store Statistics:\n")
	fmt.Printf("  Sources:     %d\n", stats.Sources)
	fmt.Printf("  Recipes:     %d\n", stats.Recipes)
	fmt.Printf("  Last import: %s\n", lastImport)
	fmt.Printf("  Database:    %s\n", config.DBPath())
	return nil
}

func runImage(cmd *cobra.Command, args []string) error {
	id, err := recipeID(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output")
	if outDir == "" {
		outDir = a.cfg.DownloadDir
	}

	ctx, cancel := signalContext()
	defer cancel()
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}
	r, err := cat.Lookup(id)
	if err != nil {
		return err
	}

	mgr := downloader.NewManager(a.client, outDir, 1)
	fmt.Fprintf(os.Stderr, "Saving image of %s...\n", r.Title)
	dest, err := mgr.Save(ctx, r)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}

	size := ""
	if info, statErr := os.Stat(dest); statErr == nil {
		size = " (" + util.FormatBytes(info.Size()) + ")"
	}
	fmt.Printf("%s%s\n", dest, size)
	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	fragment := normalizeFragment(args[0])
	r := route.Parse(fragment)

	var resolved *recipe.Recipe
	if r.Kind == route.Detail {
		a, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		cat, err := a.loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		if found, ok := cat.Get(r.ID); ok {
			resolved = &found
		}
	}

	screen := "home"
	if resolved != nil {
		screen = "detail"
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		out := struct {
			Fragment  string `json:"fragment"`
			Route     string `json:"route"`
			ID        string `json:"id,omitempty"`
			Canonical string `json:"canonical"`
			Screen    string `json:"screen"`
		}{
			Fragment:  fragment,
			Route:     r.Kind.String(),
			ID:        r.ID,
			Canonical: r.Fragment(),
			Screen:    screen,
		}
		return writeJSON(out)
	}

	fmt.Printf("Fragment:  %s\n", fragment)
	fmt.Printf("Route:     %s\n", r.Kind)
	if r.Kind == route.Detail {
		fmt.Printf("Recipe:    %s\n", r.ID)
	}
	fmt.Printf("Canonical: %s\n", r.Fragment())
	switch {
	case resolved != nil:
		fmt.Printf("Screen:    detail (%s)\n", resolved.Title)
	case r.Kind == route.Detail:
		fmt.Printf("Screen:    home (recipe %s not found)\n", r.ID)
	default:
		fmt.Printf("Screen:    home\n")
	}
	return nil
}

func printRecipeTable(recipes []recipe.Recipe) error {
	if isTTY() {
		data := pterm.TableData{{"ID", "Title", "Time", "Serves", "Ingredients"}}
		for _, r := range recipes {
			data = append(data, []string{
				r.ID,
				util.Truncate(r.Title, 40),
				r.Time,
				strconv.Itoa(r.Serves),
				strconv.Itoa(len(r.Ingredients)),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	for _, r := range recipes {
		fmt.Printf("%s\t%s\t%-6s\t%d\n", r.ID, util.PadRight(util.Truncate(r.Title, 40), 40), r.Time, r.Serves)
	}
	return nil
}

// normalizeFragment turns "recipe/3" or "/recipe/3" into "#/recipe/3".
func normalizeFragment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return s
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return "#" + s
}

func nonNil(rs []recipe.Recipe) []recipe.Recipe {
	if rs == nil {
		return []recipe.Recipe{}
	}
	return rs
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
