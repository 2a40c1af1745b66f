package client

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

// PlainText strips markup from s, decodes entities and collapses whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(textContent(n))
		sb.WriteByte(' ')
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// textContent returns all text content within a node.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && isBlock(child.Data) {
			sb.WriteByte(' ')
		}
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "tr", "td":
		return true
	}
	return false
}

// parseRecipePage extracts schema.org Recipe objects from the JSON-LD blocks
// of an HTML page. Recipes are numbered from 1 in page order.
func parseRecipePage(r io.Reader) ([]recipe.Recipe, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && attr(n, "type") == "application/ld+json" {
			blocks = append(blocks, textContent(n))
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	var recipes []recipe.Recipe
	for _, block := range blocks {
		var raw any
		if err := json.Unmarshal([]byte(block), &raw); err != nil {
			continue
		}
		for _, obj := range recipeObjects(raw) {
			rc := fromSchema(obj)
			if rc.Title == "" {
				continue
			}
			rc.ID = strconv.Itoa(len(recipes) + 1)
			recipes = append(recipes, rc)
		}
	}
	return recipes, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// recipeObjects finds every object typed Recipe, including inside arrays and
// @graph containers.
func recipeObjects(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = append(out, recipeObjects(item)...)
		}
	case map[string]any:
		if hasType(t["@type"], "Recipe") {
			out = append(out, t)
		}
		if graph, ok := t["@graph"]; ok {
			out = append(out, recipeObjects(graph)...)
		}
	}
	return out
}

func hasType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func fromSchema(obj map[string]any) recipe.Recipe {
	return recipe.Recipe{
		Title:       str(obj["name"]),
		Description: str(obj["description"]),
		Image:       imageOf(obj["image"]),
		Time:        isoDuration(str(obj["totalTime"])),
		Serves:      servings(obj["recipeYield"]),
		Ingredients: strList(obj["recipeIngredient"]),
		Steps:       instructions(obj["recipeInstructions"]),
	}
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func strList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if t != "" {
			out = append(out, t)
		}
	case []any:
		for _, item := range t {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func imageOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s := imageOf(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return str(t["url"])
	}
	return ""
}

func instructions(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if t != "" {
			out = append(out, t)
		}
	case []any:
		for _, item := range t {
			out = append(out, instructions(item)...)
		}
	case map[string]any:
		if hasType(t["@type"], "HowToSection") {
			return instructions(t["itemListElement"])
		}
		if s := str(t["text"]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var leadingInt = regexp.MustCompile(`\d+`)

func servings(v any) int {
	switch t := v.(type) {
	case float64:
		return max(int(t), 0)
	case string:
		if m := leadingInt.FindString(t); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []any:
		for _, item := range t {
			if n := servings(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

var isoPart = regexp.MustCompile(`(\d+)([HMS])`)

// isoDuration turns "PT1H25M" into "1h25m". Values that are not ISO 8601
// durations are returned unchanged.
func isoDuration(s string) string {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "PT") {
		return s
	}
	var sb strings.Builder
	for _, m := range isoPart.FindAllStringSubmatch(upper[2:], -1) {
		n, _ := strconv.Atoi(m[1])
		if n == 0 {
			continue
		}
		sb.WriteString(strconv.Itoa(n))
		sb.WriteString(strings.ToLower(m[2]))
	}
	if sb.Len() == 0 {
		return s
	}
	return sb.String()
}
