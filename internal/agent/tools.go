package agent

import (
	"context"
	"fmt"
	"time"

	"go-research/internal/tools"
)

// SearchBackend is the Search Collaborator contract: any provider
// returning {url, title, snippet?} per result is acceptable.
type SearchBackend interface {
	SearchStructured(ctx context.Context, query string, count int) ([]tools.Result, error)
}

// ScrapeBackend is the Scraper Collaborator contract: plain extracted
// text, with the collaborator responsible for HTML/PDF/redirect handling.
type ScrapeBackend interface {
	FetchStructured(ctx context.Context, url string, maxLen int) (tools.FetchResult, error)
}

// toolSet wires the four Tool Registry entries onto their collaborators
// and the Research State they mutate.
type toolSet struct {
	state    *State
	search   SearchBackend
	scrape   ScrapeBackend
	scraper  *backgroundScraper
	emit     emitter
	runStart time.Time
}

func newToolSet(state *State, search SearchBackend, scrape ScrapeBackend, scraper *backgroundScraper, emit emitter) *toolSet {
	return &toolSet{state: state, search: search, scrape: scrape, scraper: scraper, emit: emit, runStart: state.startTime}
}

// ToolNames lists the four tools available to the Step Controller.
func (ts *toolSet) ToolNames() []string {
	return []string{"search", "scrape", "recordFinding", "getResearchStatus"}
}

// Execute dispatches a tool call by name. Every tool swallows backend
// failures into a structured result rather than propagating them, per
// the error-handling design: everything the LLM can recover from by
// choosing another tool stays inside the tool result.
func (ts *toolSet) Execute(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	switch name {
	case "search":
		return ts.executeSearch(ctx, args)
	case "scrape":
		return ts.executeScrape(ctx, args)
	case "recordFinding":
		return ts.executeRecordFinding(args)
	case "getResearchStatus":
		return ts.executeStatus(), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (ts *toolSet) executeSearch(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return map[string]interface{}{"found": 0, "error": "search requires a query"}, nil
	}
	searchType, _ := args["searchType"].(string)
	if searchType == "" {
		searchType = "web"
	}

	preset := ts.state.Preset
	existing := ts.state.SourceCount()
	if existing >= preset.MaxSources {
		return map[string]interface{}{"found": 0, "sources": []interface{}{}}, nil
	}

	want := preset.MaxSources - existing
	if ceil := ceilInt(float64(preset.MaxSources) / 3); ceil < want {
		want = ceil
	}
	if want > 10 {
		want = 10
	}

	ts.emit.phaseStarted("search", fmt.Sprintf("searching: %s", query))

	results, err := ts.search.SearchStructured(ctx, query, want)
	if err != nil {
		return map[string]interface{}{"found": 0, "error": err.Error()}, nil
	}

	infos := make([]SourceInfo, 0, len(results))
	for _, r := range results {
		infos = append(infos, SourceInfo{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	added := ts.state.addSearchResults(infos, preset.MaxSources)

	if ts.scraper != nil && len(added) > 0 {
		ts.scraper.schedule(added)
	}

	preview := added
	if len(preview) > 8 {
		preview = preview[:8]
	}

	return map[string]interface{}{
		"found":          len(added),
		"sources":        preview,
		"totalSources":   ts.state.SourceCount(),
		"totalScraped":   ts.state.ScrapedCount(),
		"searchType":     searchType,
	}, nil
}

func (ts *toolSet) executeScrape(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return map[string]interface{}{"success": false, "error": "scrape requires a url"}, nil
	}
	canon, ok := canonicalizeURL(url)
	if !ok {
		return map[string]interface{}{"success": false, "error": "malformed url"}, nil
	}

	ts.emit.phaseStarted("scrape", fmt.Sprintf("scraping: %s", canon))

	scrapeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	result, err := ts.scrape.FetchStructured(scrapeCtx, canon, 25000)
	if err != nil {
		return map[string]interface{}{"success": false, "error": err.Error()}, nil
	}

	if err := ts.state.recordScrape(canon, result.Content); err != nil {
		return map[string]interface{}{"success": false, "error": err.Error()}, nil
	}

	content := result.Content
	excerpt := content
	if len(excerpt) > 500 {
		excerpt = excerpt[:500]
	}
	wordCount := countWords(content)
	if len(content) > 8000 {
		content = content[:8000]
	}

	return map[string]interface{}{
		"success":   true,
		"title":     result.Title,
		"wordCount": wordCount,
		"content":   content,
		"excerpt":   excerpt,
	}, nil
}

func (ts *toolSet) executeRecordFinding(args map[string]interface{}) (map[string]interface{}, error) {
	finding, _ := args["finding"].(string)
	if finding == "" {
		return map[string]interface{}{"success": false, "error": "recordFinding requires a finding"}, nil
	}
	var sourceIDs []string
	if src, ok := args["source"].(string); ok && src != "" {
		sourceIDs = []string{src}
	}

	ts.state.recordFinding(finding)
	ts.emit.findingDiscovered(finding, "medium", sourceIDs)

	return map[string]interface{}{"success": true, "totalFindings": ts.state.FindingsCount()}, nil
}

func (ts *toolSet) executeStatus() map[string]interface{} {
	return map[string]interface{}{
		"sourcesFound":     ts.state.SourceCount(),
		"sourcesScraped":   ts.state.ScrapedCount(),
		"findingsRecorded": ts.state.FindingsCount(),
		"targetSources":    ts.state.Preset.MaxSources,
		"elapsedMs":        ts.state.Elapsed().Milliseconds(),
	}
}

func countWords(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
