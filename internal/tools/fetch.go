package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// FetchTool implements web page content fetching
type FetchTool struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewFetchTool creates a new fetch tool. Outbound fetches are capped at
// 4/s with a burst of 8, so a single scheduling event's background
// scrapes (up to 5, 3 in flight) can't outrun a polite crawl rate.
func NewFetchTool() *FetchTool {
	return &FetchTool{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(4), 8),
	}
}

func (t *FetchTool) Name() string {
	return "fetch"
}

func (t *FetchTool) Description() string {
	return `Fetch and extract text content from a web page. Args: {"url": "https://..."}`
}

// FetchResult is the structured outcome of a scrape, used by the agent
// package's scrape tool and Background Scraper.
type FetchResult struct {
	Title   string
	Content string
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	urlStr, ok := args["url"].(string)
	if !ok || urlStr == "" {
		return "", fmt.Errorf("fetch requires a 'url' argument")
	}

	result, err := t.FetchStructured(ctx, urlStr, 10000)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// FetchStructured fetches a URL and extracts its readable text, preferring
// go-readability's article extraction (title + main content, stripped of
// nav/ads/boilerplate) and falling back to the naive HTML tag-walk when
// readability can't parse the page. Content is truncated to maxLen chars.
func (t *FetchTool) FetchStructured(ctx context.Context, urlStr string, maxLen int) (FetchResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return FetchResult{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; GoResearchBot/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("fetch error %d for %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, fmt.Errorf("read body: %w", err)
	}

	title, text := extractReadable(body, urlStr)

	if len(text) > maxLen {
		text = text[:maxLen] + "\n...[truncated]"
	}

	return FetchResult{Title: title, Content: text}, nil
}

// extractReadable runs go-readability's article extractor and falls back
// to the plain HTML text-walk when it errors or returns empty content.
func extractReadable(body []byte, pageURL string) (title, text string) {
	parsed, err := url.Parse(pageURL)
	if err == nil {
		article, rerr := readability.FromReader(bytes.NewReader(body), parsed)
		if rerr == nil && strings.TrimSpace(article.TextContent) != "" {
			return article.Title, cleanWhitespace(article.TextContent)
		}
	}
	return "", extractText(string(body))
}

// extractText removes HTML tags and extracts readable text
func extractText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// Fallback: strip tags with regex
		re := regexp.MustCompile(`<[^>]*>`)
		return cleanWhitespace(re.ReplaceAllString(htmlContent, ""))
	}

	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		// Skip script and style tags
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return cleanWhitespace(text.String())
}

// cleanWhitespace normalizes whitespace in extracted text
func cleanWhitespace(s string) string {
	re := regexp.MustCompile(`\s+`)
	result := re.ReplaceAllString(s, " ")
	return strings.TrimSpace(result)
}
