package agent

import (
	"fmt"
	"sync"
	"time"
)

// SourceInfo is one discovered source, keyed by canonical URL within a run.
type SourceInfo struct {
	URL     string
	Title   string
	Domain  string
	Snippet string
}

// BatchSummary is one completed Batch Summarizer reduction.
type BatchSummary struct {
	BatchNum    int
	Summary     string
	SourceCount int
}

// State is the single mutable record of one research run: discovered
// sources, scraped bodies, recorded findings, batch summaries, step
// counter, and timing. It is created at run entry, mutated only by tool
// executions, onStepFinish, and the Synthesizer's tail-flush, and is
// read-only once the Synthesizer returns. Mutators serialize on mu so a
// true-parallel host (background scrapes, batch summarizers) can call
// them safely; the LLM-loop side of the contract never needs the lock
// because tool executions are already serialized by the loop itself.
type State struct {
	mu sync.Mutex

	Preset Preset

	sourceOrder []string
	sources     map[string]SourceInfo
	scraped     map[string]string

	findings []string

	batchSummaries []BatchSummary
	summarizedURLs map[string]int
	batchCounter   int

	pending []*pendingSummary

	stepCount int
	startTime time.Time
}

type pendingSummary struct {
	done chan struct{}
	err  error
}

// NewState creates the Research State for a run, frozen to one preset.
func NewState(preset Preset) *State {
	return &State{
		Preset:         preset,
		sources:        make(map[string]SourceInfo),
		scraped:        make(map[string]string),
		summarizedURLs: make(map[string]int),
		startTime:      time.Now(),
	}
}

// SourceCount returns |sources|.
func (s *State) SourceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

// ScrapedCount returns |scrapedContent|.
func (s *State) ScrapedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scraped)
}

// FindingsCount returns the number of recorded findings.
func (s *State) FindingsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// StepCount returns the number of completed model steps.
func (s *State) StepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepCount
}

// Elapsed returns the wall-clock duration since run start.
func (s *State) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startTime)
}

// Sources returns a snapshot of discovered sources in insertion order.
func (s *State) Sources() []SourceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SourceInfo, 0, len(s.sourceOrder))
	for _, u := range s.sourceOrder {
		out = append(out, s.sources[u])
	}
	return out
}

// Findings returns a snapshot of recorded findings in order.
func (s *State) Findings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.findings))
	copy(out, s.findings)
	return out
}

// BatchSummaries returns a snapshot of completed batch summaries, sorted
// by batchNum as required of every consumer.
func (s *State) BatchSummaries() []BatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BatchSummary, len(s.batchSummaries))
	copy(out, s.batchSummaries)
	sortBatchSummaries(out)
	return out
}

func sortBatchSummaries(b []BatchSummary) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j].BatchNum < b[j-1].BatchNum; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
}

// ScrapedBody returns the recorded body for a URL, if any.
func (s *State) ScrapedBody(url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.scraped[url]
	return body, ok
}

// addSearchResults canonicalizes, dedupes, and inserts up to
// cap − |sources| new entries; returns the URLs newly added. Malformed
// URLs are dropped silently, per the state mutator contract.
func (s *State) addSearchResults(results []SourceInfo, cap int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	for _, r := range results {
		if len(s.sources) >= cap {
			break
		}
		canon, ok := canonicalizeURL(r.URL)
		if !ok {
			continue
		}
		if _, exists := s.sources[canon]; exists {
			continue
		}
		info := r
		info.URL = canon
		if info.Domain == "" {
			info.Domain = domainOf(canon)
		}
		s.sources[canon] = info
		s.sourceOrder = append(s.sourceOrder, canon)
		added = append(added, canon)
	}
	return added
}

// recordScrape inserts into scrapedContent. Precondition: url ∈ sources.
// Bodies are truncated to 25,000 chars on ingest per the data model.
func (s *State) recordScrape(url, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[url]; !ok {
		return fmt.Errorf("recordScrape: url not in sources: %s", url)
	}
	if len(body) > 25000 {
		body = body[:25000]
	}
	s.scraped[url] = body
	return nil
}

// recordFinding appends a finding; no dedup.
func (s *State) recordFinding(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = append(s.findings, text)
}

// unsummarizedURLs returns scrapedContent.keys() \ summarizedUrls, in a
// stable order matching sourceOrder so batch assignment is deterministic.
func (s *State) unsummarizedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.sourceOrder {
		if _, scraped := s.scraped[u]; !scraped {
			continue
		}
		if _, batched := s.summarizedURLs[u]; batched {
			continue
		}
		out = append(out, u)
	}
	return out
}

// assignBatch marks urls in summarizedUrls, increments batchCounter, and
// returns the newly assigned batchNum.
func (s *State) assignBatch(urls []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCounter++
	num := s.batchCounter
	for _, u := range urls {
		s.summarizedURLs[u] = num
	}
	return num
}

// appendBatchSummary appends a completed summary. On batch-summarization
// failure the caller simply never calls this, leaving batchSummaries one
// short of batchCounter for that batch. The failed batch's URLs stay in
// summarizedURLs, so neither a later step nor the Synthesizer's
// tail-flush summarizes them again.
func (s *State) appendBatchSummary(b BatchSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchSummaries = append(s.batchSummaries, b)
}

// registerPending records a handle to an in-flight background
// summarization task so the Synthesizer can drain it at entry.
func (s *State) registerPending() *pendingSummary {
	p := &pendingSummary{done: make(chan struct{})}
	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()
	return p
}

func (p *pendingSummary) finish(err error) {
	p.err = err
	close(p.done)
}

// drainPending awaits every registered pending summarization task. Called
// exactly once, at Synthesizer entry.
func (s *State) drainPending() {
	s.mu.Lock()
	pending := make([]*pendingSummary, len(s.pending))
	copy(pending, s.pending)
	s.mu.Unlock()

	for _, p := range pending {
		<-p.done
	}
}

// incrementStep advances stepCount by one, called from onStepFinish.
func (s *State) incrementStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepCount++
	return s.stepCount
}
