package recipe

import (
	"reflect"
	"testing"
)

func ids(rs []Recipe) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	all := Builtin()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"lemon matches title and ingredient", "lemon", []string{"1", "3"}},
		{"case insensitive", "LeMoN", []string{"1", "3"}},
		{"surrounding whitespace trimmed", "  lemon ", []string{"1", "3"}},
		{"description match", "wok-tossed", []string{"7"}},
		{"ingredients joined with spaces", "greens hummus", []string{"4"}},
		{"description and ingredient matches", "garlic", []string{"2", "7"}},
		{"olive oil", "olive oil", []string{"1", "5"}},
		{"no match", "tofu", []string{}},
		{"no fuzzy matching", "lemn", []string{}},
		{"substring inside a word", "lmon", []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(all, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterBlankQueryReturnsInput(t *testing.T) {
	all := Builtin()
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Filter(all, q)
		if !reflect.DeepEqual(got, all) {
			t.Fatalf("Filter(%q) changed the catalog", q)
		}
	}
}

func TestFilterIsOrderedSubsequenceAndIdempotent(t *testing.T) {
	all := Builtin()
	queries := []string{"a", "e", "chi", "salt", "bake", "2", "o", "x", "Butter"}

	for _, q := range queries {
		got := Filter(all, q)

		pos := 0
		for _, r := range got {
			for pos < len(all) && all[pos].ID != r.ID {
				pos++
			}
			if pos == len(all) {
				t.Fatalf("Filter(%q) = %v is not an ordered subsequence", q, ids(got))
			}
			pos++
		}

		again := Filter(got, q)
		if !reflect.DeepEqual(ids(again), ids(got)) {
			t.Fatalf("Filter(%q) not idempotent: %v then %v", q, ids(got), ids(again))
		}
	}
}
