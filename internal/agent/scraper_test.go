package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-research/internal/tools"
)

type countingScrape struct {
	mu        sync.Mutex
	inflight  int32
	maxInFlight int32
	calls     []string
	err       error
	delay     time.Duration
}

func (c *countingScrape) FetchStructured(ctx context.Context, url string, maxLen int) (tools.FetchResult, error) {
	cur := atomic.AddInt32(&c.inflight, 1)
	defer atomic.AddInt32(&c.inflight, -1)

	c.mu.Lock()
	if cur > c.maxInFlight {
		c.maxInFlight = cur
	}
	c.calls = append(c.calls, url)
	c.mu.Unlock()

	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return tools.FetchResult{}, c.err
	}
	return tools.FetchResult{Title: "t", Content: "body for " + url}, nil
}

func TestBackgroundScraperSchedulesAndRecords(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	urls := []string{"https://example.com/a", "https://example.com/b"}
	for _, u := range urls {
		state.addSearchResults([]SourceInfo{{URL: u}}, 10)
	}

	backend := &countingScrape{}
	bs := newBackgroundScraper(context.Background(), state, backend)
	bs.schedule(urls)
	bs.wait()

	for _, u := range urls {
		body, ok := state.ScrapedBody(u)
		if !ok {
			t.Errorf("expected %s to be scraped", u)
		}
		if body != "body for "+u {
			t.Errorf("body for %s = %q", u, body)
		}
	}
}

func TestBackgroundScraperSkipsAlreadyScraped(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	state.addSearchResults([]SourceInfo{{URL: "https://example.com/a"}}, 10)
	state.recordScrape("https://example.com/a", "already here")

	backend := &countingScrape{}
	bs := newBackgroundScraper(context.Background(), state, backend)
	bs.schedule([]string{"https://example.com/a"})
	bs.wait()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.calls) != 0 {
		t.Errorf("expected no scrape calls for already-scraped url, got %v", backend.calls)
	}
}

func TestBackgroundScraperCapsAtFivePerSchedule(t *testing.T) {
	state := NewState(EffortOf(LevelMax))
	var urls []string
	for i := 0; i < 8; i++ {
		u := "https://example.com/" + string(rune('a'+i))
		urls = append(urls, u)
		state.addSearchResults([]SourceInfo{{URL: u}}, 100)
	}

	backend := &countingScrape{}
	bs := newBackgroundScraper(context.Background(), state, backend)
	bs.schedule(urls)
	bs.wait()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.calls) != 5 {
		t.Errorf("got %d scrape calls, want 5 (capped)", len(backend.calls))
	}
}

func TestBackgroundScraperBoundsConcurrency(t *testing.T) {
	state := NewState(EffortOf(LevelMax))
	var urls []string
	for i := 0; i < 5; i++ {
		u := "https://example.com/" + string(rune('a'+i))
		urls = append(urls, u)
		state.addSearchResults([]SourceInfo{{URL: u}}, 100)
	}

	backend := &countingScrape{delay: 30 * time.Millisecond}
	bs := newBackgroundScraper(context.Background(), state, backend)
	bs.schedule(urls)
	bs.wait()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.maxInFlight > 3 {
		t.Errorf("maxInFlight = %d, want <= 3", backend.maxInFlight)
	}
}

func TestBackgroundScraperLogsAndDropsOnFailure(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	state.addSearchResults([]SourceInfo{{URL: "https://example.com/a"}}, 10)

	backend := &countingScrape{err: errors.New("fetch failed")}
	bs := newBackgroundScraper(context.Background(), state, backend)
	bs.schedule([]string{"https://example.com/a"})
	bs.wait()

	if _, ok := state.ScrapedBody("https://example.com/a"); ok {
		t.Error("expected no scraped body recorded on failure")
	}
}
