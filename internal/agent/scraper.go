package agent

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// backgroundScraper is the fire-and-forget helper the search tool
// enqueues into. It filters already-scraped URLs, takes at most 5 per
// scheduling event, and runs them through a concurrency gate of 3
// in-flight per run, each with a 10s timeout and 15,000-char cap.
type backgroundScraper struct {
	ctx     context.Context
	state   *State
	backend ScrapeBackend
	sem     *semaphore.Weighted

	wg sync.WaitGroup
}

func newBackgroundScraper(ctx context.Context, state *State, backend ScrapeBackend) *backgroundScraper {
	return &backgroundScraper{
		ctx:     ctx,
		state:   state,
		backend: backend,
		sem:     semaphore.NewWeighted(3),
	}
}

// schedule takes up to 5 of the given URLs (filtering anything already
// scraped) and launches a scrape for each without awaiting completion.
// Effects are observed only via State mutation at the next suspension
// point; cancellation of ctx aborts in-flight scrapes cooperatively.
func (b *backgroundScraper) schedule(urls []string) {
	var toScrape []string
	for _, u := range urls {
		if _, done := b.state.ScrapedBody(u); done {
			continue
		}
		toScrape = append(toScrape, u)
		if len(toScrape) >= 5 {
			break
		}
	}

	for _, u := range toScrape {
		u := u
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.sem.Acquire(b.ctx, 1); err != nil {
				return
			}
			defer b.sem.Release(1)
			b.scrapeOne(u)
		}()
	}
}

func (b *backgroundScraper) scrapeOne(url string) {
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	result, err := b.backend.FetchStructured(ctx, url, 15000)
	if err != nil {
		log.Printf("background scrape failed for %s: %v", url, err)
		return
	}
	if err := b.state.recordScrape(url, result.Content); err != nil {
		log.Printf("background scrape record failed for %s: %v", url, err)
	}
}

// wait blocks until every scheduled background scrape has returned
// (successfully or not). Called once, by the Synthesizer's drain step,
// and also reachable by cancellation unwind since scrapeOne respects ctx.
func (b *backgroundScraper) wait() {
	b.wg.Wait()
}
