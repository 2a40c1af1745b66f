// Package catalog resolves a source name into the recipes the app shows.
//
// Sources:
//
//	builtin                  compiled-in recipes
//	recipes.yaml, .yml, .json  a local file
//	http://..., https://...  a JSON feed or a page with schema.org data
//	db                       the local SQLite store
//	sqlite:<path>            a SQLite store at path
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JohnDeved/recipe-explorer/internal/client"
	"github.com/JohnDeved/recipe-explorer/internal/index"
	"github.com/JohnDeved/recipe-explorer/internal/logger"
	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

// ErrUnknownSource is returned for source names no loader understands.
var ErrUnknownSource = errors.New("unknown catalog source")

// Builtin is the name of the compiled-in source.
const Builtin = "builtin"

// Options carries what the loaders need.
type Options struct {
	Client *client.Client
	DBPath string
	Logger *logger.Logger
}

// Kind classifies a source name.
type Kind int

const (
	KindUnknown Kind = iota
	KindBuiltin
	KindFile
	KindHTTP
	KindSQLite
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindFile:
		return "file"
	case KindHTTP:
		return "http"
	case KindSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Classify reports which loader handles source and, for SQLite sources, the
// database path it names. "db" resolves to defaultDB.
func Classify(source, defaultDB string) (Kind, string) {
	s := strings.TrimSpace(source)
	lower := strings.ToLower(s)
	switch {
	case s == "" || lower == Builtin:
		return KindBuiltin, ""
	case lower == "db":
		return KindSQLite, defaultDB
	case strings.HasPrefix(lower, "sqlite:"):
		return KindSQLite, strings.TrimSpace(s[len("sqlite:"):])
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return KindHTTP, ""
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".yaml", ".yml", ".json":
		return KindFile, ""
	}
	return KindUnknown, ""
}

// Fetch returns the raw recipes of source without building a catalog.
func Fetch(ctx context.Context, source string, opts Options) ([]recipe.Recipe, error) {
	kind, dbPath := Classify(source, opts.DBPath)
	opts.Logger.Debug("Loading catalog source %q (%s)", source, kind)

	switch kind {
	case KindBuiltin:
		return recipe.Builtin(), nil
	case KindFile:
		return LoadFile(source)
	case KindHTTP:
		c := opts.Client
		if c == nil {
			c = client.New(0)
		}
		return c.FetchRecipes(ctx, strings.TrimSpace(source))
	case KindSQLite:
		if dbPath == "" {
			return nil, fmt.Errorf("%w: %q has no database path", ErrUnknownSource, source)
		}
		return loadSQLite(dbPath)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

// Load fetches source and builds a validated catalog from it.
func Load(ctx context.Context, source string, opts Options) (*recipe.Catalog, error) {
	recipes, err := Fetch(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	c, err := recipe.NewCatalog(recipes)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	if c.Len() == 0 {
		opts.Logger.Warn("Catalog source %q has no recipes", source)
	}
	return c, nil
}

type fileEnvelope struct {
	Recipes []recipe.Recipe `yaml:"recipes"`
}

// LoadFile reads a YAML or JSON file holding either a list of recipes or a
// mapping with a "recipes" list.
func LoadFile(path string) ([]recipe.Recipe, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []recipe.Recipe
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return list, nil
	case yaml.MappingNode:
		var env fileEnvelope
		if err := root.Decode(&env); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return env.Recipes, nil
	}
	return nil, fmt.Errorf("parsing %s: expected a list of recipes", path)
}

func loadSQLite(path string) ([]recipe.Recipe, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening recipe store: %w", err)
	}
	db, err := index.OpenDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Recipes()
}
