package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeGenerator struct {
	mu       sync.Mutex
	prompts  []string
	response string
	err      error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func seedScraped(state *State, n int) []string {
	var urls []string
	for i := 0; i < n; i++ {
		u := "https://example.com/" + string(rune('a'+i))
		state.addSearchResults([]SourceInfo{{URL: u, Title: "Title " + string(rune('a'+i))}}, 100)
		state.recordScrape(u, "scraped body "+u)
		urls = append(urls, u)
	}
	return urls
}

func TestMaybeSummarizeSkipsBelowBatchSize(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	seedScraped(state, batchSize-1)
	gen := &fakeGenerator{response: "summary"}
	bs := newBatchSummarizer(context.Background(), state, gen)

	bs.maybeSummarize()
	state.drainPending()

	if len(state.BatchSummaries()) != 0 {
		t.Fatalf("expected no batch summaries below batchSize, got %d", len(state.BatchSummaries()))
	}
}

func TestMaybeSummarizeLaunchesAtBatchSize(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	seedScraped(state, batchSize)
	gen := &fakeGenerator{response: "a tidy summary"}
	bs := newBatchSummarizer(context.Background(), state, gen)

	bs.maybeSummarize()
	state.drainPending()

	summaries := state.BatchSummaries()
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].BatchNum != 1 || summaries[0].Summary != "a tidy summary" {
		t.Errorf("unexpected summary: %+v", summaries[0])
	}
	if summaries[0].SourceCount != batchSize {
		t.Errorf("SourceCount = %d, want %d", summaries[0].SourceCount, batchSize)
	}
}

func TestRunAwaitedBlocksAndReturnsError(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	urls := seedScraped(state, batchSize)
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	bs := newBatchSummarizer(context.Background(), state, gen)

	if err := bs.runAwaited(urls); err == nil {
		t.Fatal("expected error to propagate from runAwaited")
	}
	if len(state.BatchSummaries()) != 0 {
		t.Errorf("expected no summary recorded on failure")
	}
}

func TestBuildPromptIncludesSourceTitlesAndBodies(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	urls := seedScraped(state, 2)
	gen := &fakeGenerator{}
	bs := newBatchSummarizer(context.Background(), state, gen)

	prompt := bs.buildPrompt(urls)
	for _, u := range urls {
		if !strings.Contains(prompt, u) {
			t.Errorf("prompt missing url %s", u)
		}
		if !strings.Contains(prompt, "scraped body "+u) {
			t.Errorf("prompt missing body for %s", u)
		}
	}
}

func TestBatchCountersDistinctAcrossLaunches(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	urls := seedScraped(state, batchSize*2)
	gen := &fakeGenerator{response: "s"}
	bs := newBatchSummarizer(context.Background(), state, gen)

	bs.launch(urls[:batchSize])
	bs.launch(urls[batchSize:])
	state.drainPending()

	summaries := state.BatchSummaries()
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].BatchNum != 1 || summaries[1].BatchNum != 2 {
		t.Errorf("expected batch nums 1,2 in order, got %d,%d", summaries[0].BatchNum, summaries[1].BatchNum)
	}
}
