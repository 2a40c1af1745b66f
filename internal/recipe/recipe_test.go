package recipe

import (
	"errors"
	"testing"
)

func TestBuiltinCatalog(t *testing.T) {
	c := BuiltinCatalog()
	if c.Len() != 8 {
		t.Fatalf("expected 8 recipes, got %d", c.Len())
	}
	all := c.All()
	for i, r := range all {
		want := string(rune('1' + i))
		if r.ID != want {
			t.Fatalf("recipe %d: expected id %q, got %q", i, want, r.ID)
		}
		if r.Image == "" || r.Time == "" || r.Serves <= 0 {
			t.Fatalf("recipe %s is incomplete: %+v", r.ID, r)
		}
	}
}

func TestCatalogGet(t *testing.T) {
	c := BuiltinCatalog()

	tests := []struct {
		id        string
		wantTitle string
		wantOK    bool
	}{
		{"1", "Grilled Salmon with Lemon", true},
		{"8", "Chocolate Chip Cookies", true},
		{"999", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, ok := c.Get(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if r.Title != tt.wantTitle {
				t.Fatalf("Get(%q) title = %q, want %q", tt.id, r.Title, tt.wantTitle)
			}
		})
	}
}

func TestCatalogLookupNotFound(t *testing.T) {
	_, err := BuiltinCatalog().Lookup("999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewCatalogRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		recipes []Recipe
		wantErr error
	}{
		{"missing id", []Recipe{{Title: "Soup"}}, ErrInvalidRecipe},
		{"blank id", []Recipe{{ID: "  ", Title: "Soup"}}, ErrInvalidRecipe},
		{"missing title", []Recipe{{ID: "1"}}, ErrInvalidRecipe},
		{"negative serves", []Recipe{{ID: "1", Title: "Soup", Serves: -1}}, ErrInvalidRecipe},
		{"duplicate id", []Recipe{{ID: "1", Title: "Soup"}, {ID: "1", Title: "Stew"}}, ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.recipes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	src := []Recipe{{ID: "a", Title: "Soup", Ingredients: []string{"water"}}}
	c, err := NewCatalog(src)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	src[0].Ingredients[0] = "changed"
	all := c.All()
	all[0].Title = "changed"
	all[0].Ingredients[0] = "changed"

	r, _ := c.Get("a")
	if r.Title != "Soup" || r.Ingredients[0] != "water" {
		t.Fatalf("catalog was mutated through a copy: %+v", r)
	}
}

func TestRecipeFragment(t *testing.T) {
	if got := (Recipe{ID: "3"}).Fragment(); got != "#/recipe/3" {
		t.Fatalf("Fragment() = %q, want %q", got, "#/recipe/3")
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if c.Len() != 0 || c.All() != nil {
		t.Fatalf("nil catalog should be empty")
	}
	if _, ok := c.Get("1"); ok {
		t.Fatalf("nil catalog Get should miss")
	}
}
