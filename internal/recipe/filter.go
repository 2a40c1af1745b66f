package recipe

import "strings"

// Filter returns the recipes matching query, preserving their relative order.
// Matching is a case-insensitive substring test against the title, the
// description and the space-joined ingredient list. A blank query returns
// recipes unchanged.
func Filter(recipes []Recipe, query string) []Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return recipes
	}

	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if Matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r contains the already case-folded query q.
func Matches(r Recipe, q string) bool {
	return strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(strings.Join(r.Ingredients, " ")), q)
}
