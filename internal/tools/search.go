package tools

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
)

const braveSearchURL = "https://api.search.brave.com/res/v1/web/search"

// SearchTool implements web search via Brave API
type SearchTool struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSearchTool creates a new Brave search tool. Outbound requests are
// capped at 2/s with a burst of 4, a guard against one run's search
// steps hammering the backend faster than it rate-limits itself.
func NewSearchTool(apiKey string) *SearchTool {
	return &SearchTool{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 45 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (t *SearchTool) Name() string {
	return "search"
}

func (t *SearchTool) Description() string {
	return `Search the web using Brave Search API. Args: {"query": "search terms", "count": 10}`
}

// BraveSearchResponse represents the API response
type BraveSearchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Result is one structured search hit, used by the agent package to feed
// Research State's addSearchResults without re-parsing formatted text.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("search requires a 'query' argument")
	}

	count := 10
	if c, ok := args["count"].(float64); ok {
		count = int(c)
	}

	results, err := t.SearchStructured(ctx, query, count)
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		return "No results found.", nil
	}

	var lines []string
	for i, r := range results {
		lines = append(lines, fmt.Sprintf("%d. %s\n   URL: %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet))
	}
	return strings.Join(lines, "\n"), nil
}

// SearchStructured issues a Brave Search API call and returns structured
// hits, rate-limited to avoid bursting the backend across a run's many
// search tool calls.
func (t *SearchTool) SearchStructured(ctx context.Context, query string, count int) ([]Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", count))

	req, err := http.NewRequestWithContext(ctx, "GET", braveSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API error %d: %s", resp.StatusCode, string(body))
	}

	var searchResp BraveSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(searchResp.Web.Results))
	for _, r := range searchResp.Web.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	return results, nil
}

// ExtractURLs extracts URLs from search results
func ExtractURLs(searchResults string) []string {
	var urls []string
	lines := strings.Split(searchResults, "\n")
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "URL: ") {
			url := strings.TrimPrefix(strings.TrimSpace(line), "URL: ")
			urls = append(urls, url)
		}
	}
	return urls
}
