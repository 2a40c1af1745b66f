package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

// DB wraps the SQLite recipe store.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the SQLite database at the given path.
func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		imported_at DATETIME,
		recipe_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS recipes (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		image TEXT DEFAULT '',
		time TEXT DEFAULT '',
		serves INTEGER DEFAULT 0,
		ingredients TEXT DEFAULT '[]',
		steps TEXT DEFAULT '[]',
		ingredients_text TEXT DEFAULT '',
		source_id INTEGER REFERENCES sources(id)
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_source ON recipes(source_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS recipes_fts USING fts5(
		title,
		description,
		ingredients_text,
		content=recipes,
		content_rowid=position,
		tokenize='unicode61 remove_diacritics 2'
	);

	CREATE TRIGGER IF NOT EXISTS recipes_ai AFTER INSERT ON recipes BEGIN
		INSERT INTO recipes_fts(rowid, title, description, ingredients_text)
		VALUES (new.position, new.title, new.description, new.ingredients_text);
	END;

	CREATE TRIGGER IF NOT EXISTS recipes_ad AFTER DELETE ON recipes BEGIN
		INSERT INTO recipes_fts(recipes_fts, rowid, title, description, ingredients_text)
		VALUES ('delete', old.position, old.title, old.description, old.ingredients_text);
	END;
	`
	_, err := db.Exec(schema)
	return err
}

// Source is one imported catalog source.
type Source struct {
	ID          int64
	Name        string
	ImportedAt  time.Time
	RecipeCount int
}

// Entry is a recipe tagged with the source it came from.
type Entry struct {
	Recipe recipe.Recipe
	Source string
}

// ReplaceAll swaps the stored catalog for entries in one transaction.
// Catalog order is the order of entries.
func (d *DB) ReplaceAll(entries []Entry) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM recipes"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sources"); err != nil {
		return err
	}

	srcStmt, err := tx.Prepare(`INSERT INTO sources (name, imported_at, recipe_count) VALUES (?, ?, 0)`)
	if err != nil {
		return err
	}
	defer srcStmt.Close()

	stmt, err := tx.Prepare(
		`INSERT INTO recipes (position, id, title, description, image, time, serves,
		                      ingredients, steps, ingredients_text, source_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	sourceIDs := map[string]int64{}
	counts := map[int64]int{}
	for i, e := range entries {
		srcID, ok := sourceIDs[e.Source]
		if !ok {
			res, err := srcStmt.Exec(e.Source, now)
			if err != nil {
				return fmt.Errorf("inserting source %s: %w", e.Source, err)
			}
			if srcID, err = res.LastInsertId(); err != nil {
				return err
			}
			sourceIDs[e.Source] = srcID
		}

		r := e.Recipe
		ingredients, err := json.Marshal(nonNil(r.Ingredients))
		if err != nil {
			return err
		}
		steps, err := json.Marshal(nonNil(r.Steps))
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(
			i+1, r.ID, r.Title, r.Description, r.Image, r.Time, r.Serves,
			string(ingredients), string(steps), strings.Join(r.Ingredients, " "), srcID,
		); err != nil {
			return fmt.Errorf("inserting recipe %s: %w", r.ID, err)
		}
		counts[srcID]++
	}

	for id, n := range counts {
		if _, err := tx.Exec("UPDATE sources SET recipe_count = ? WHERE id = ?", n, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const recipeColumns = `r.id, r.title, r.description, r.image, r.time, r.serves, r.ingredients, r.steps`

// Recipes returns every stored recipe in catalog order.
func (d *DB) Recipes() ([]recipe.Recipe, error) {
	rows, err := d.db.Query(`SELECT ` + recipeColumns + ` FROM recipes r ORDER BY r.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipes(rows)
}

func scanRecipes(rows *sql.Rows) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	for rows.Next() {
		var r recipe.Recipe
		var ingredients, steps string
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Image, &r.Time, &r.Serves, &ingredients, &steps); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
			return nil, fmt.Errorf("decoding ingredients of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(steps), &r.Steps); err != nil {
			return nil, fmt.Errorf("decoding steps of %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// sanitizeFTS5Query escapes FTS5 special characters so user input
// does not cause syntax errors. Each word is wrapped in double quotes,
// and embedded double quotes are doubled (FTS5 escaping).
func sanitizeFTS5Query(query string) string {
	var quoted []string
	strip := strings.NewReplacer("(", "", ")", "", "[", "", "]", "", "{", "", "}", "", "^", "", "*", "")
	for _, w := range strings.Fields(query) {
		w = strip.Replace(strings.ReplaceAll(w, `"`, `""`))
		if w == "" {
			continue
		}
		quoted = append(quoted, `"`+w+`"`)
	}
	return strings.Join(quoted, " ")
}

// Search performs a ranked full-text search over title, description and
// ingredients. Every word must match.
func (d *DB) Search(query string, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}

	sanitized := sanitizeFTS5Query(query)
	if sanitized == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+recipeColumns+`
		FROM recipes_fts fts
		JOIN recipes r ON r.position = fts.rowid
		WHERE recipes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, sanitized, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()
	return scanRecipes(rows)
}

// Sources returns the imported sources in import order.
func (d *DB) Sources() ([]Source, error) {
	rows, err := d.db.Query("SELECT id, name, imported_at, recipe_count FROM sources ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var s Source
		var importedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &importedAt, &s.RecipeCount); err != nil {
			return nil, err
		}
		s.ImportedAt = importedAt.Time
		out = append(out, s)
	}
	return out, rows.Err()
}

// Stats summarizes the store.
type Stats struct {
	Sources    int
	Recipes    int
	LastImport time.Time
}

// GetStats returns statistics about the store.
func (d *DB) GetStats() (Stats, error) {
	var s Stats
	if err := d.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&s.Sources); err != nil {
		return s, err
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM recipes").Scan(&s.Recipes); err != nil {
		return s, err
	}
	sources, err := d.Sources()
	if err != nil {
		return s, err
	}
	for _, src := range sources {
		if src.ImportedAt.After(s.LastImport) {
			s.LastImport = src.ImportedAt
		}
	}
	return s, nil
}
