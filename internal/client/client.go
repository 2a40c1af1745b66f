package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

const userAgent = "recipe-explorer/1.0"

// maxFeedBytes bounds how much of a feed response is read.
const maxFeedBytes = 8 << 20

// Client fetches recipe feeds and images over HTTP.
type Client struct {
	feedHTTP *http.Client // Short timeout for feed requests
	dlHTTP   *http.Client // No timeout for image downloads (managed by context)
	limiter  *rate.Limiter
}

// New creates a client limited to reqPerSec requests per second.
func New(reqPerSec float64) *Client {
	if reqPerSec <= 0 {
		reqPerSec = 5.0
	}

	return &Client{
		feedHTTP: &http.Client{Timeout: 30 * time.Second},
		dlHTTP:   &http.Client{},
		limiter:  rate.NewLimiter(rate.Limit(reqPerSec), 5),
	}
}

// FetchRecipes downloads a recipe feed. JSON feeds may be a bare array or an
// object with a "recipes" array. HTML pages are scanned for schema.org Recipe
// data. Markup in text fields is reduced to plain text and relative image
// URLs are resolved against the feed URL.
func (c *Client) FetchRecipes(ctx context.Context, feedURL string) ([]recipe.Recipe, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.8")

	resp, err := c.feedHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, feedURL)
	}

	body := io.LimitReader(resp.Body, maxFeedBytes)

	var recipes []recipe.Recipe
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "text/html") {
		recipes, err = parseRecipePage(body)
	} else {
		recipes, err = parseFeed(body)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", feedURL, err)
	}

	for i := range recipes {
		recipes[i] = sanitize(recipes[i], feedURL)
	}
	return recipes, nil
}

// DownloadFile initiates a download of a file, optionally resuming from offset.
// Returns the response body (caller must close), content length, and whether resume was accepted.
func (c *Client) DownloadFile(ctx context.Context, fileURL string, resumeFrom int64) (io.ReadCloser, int64, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, false, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return nil, 0, false, err
	}
	req.Header.Set("User-Agent", userAgent)
	if resumeFrom > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
	}

	resp, err := c.dlHTTP.Do(req)
	if err != nil {
		return nil, 0, false, err
	}

	resumed := resp.StatusCode == http.StatusPartialContent
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, 0, false, fmt.Errorf("HTTP %d downloading %s", resp.StatusCode, fileURL)
	}

	// An HTML body where an image was expected is an error page.
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
		resp.Body.Close()
		return nil, 0, false, fmt.Errorf("refusing HTML response for image URL %s", fileURL)
	}

	return resp.Body, resp.ContentLength, resumed, nil
}

type feedEnvelope struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

func parseFeed(r io.Reader) ([]recipe.Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []recipe.Recipe
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var env feedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env.Recipes, nil
}

func sanitize(r recipe.Recipe, feedURL string) recipe.Recipe {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = PlainText(r.Title)
	r.Description = PlainText(r.Description)
	r.Time = strings.TrimSpace(r.Time)
	for i, s := range r.Ingredients {
		r.Ingredients[i] = PlainText(s)
	}
	for i, s := range r.Steps {
		r.Steps[i] = PlainText(s)
	}
	if r.Image != "" {
		if abs, err := resolveURL(feedURL, strings.TrimSpace(r.Image)); err == nil {
			r.Image = abs
		}
	}
	return r
}

func resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	relURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(relURL).String(), nil
}
