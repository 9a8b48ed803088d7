package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const batchSize = 5

// TextGenerator is the LLM Collaborator's generateText operation: a
// single-shot completion with no tool loop attached.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}

// batchSummarizer reduces fixed-size batches of scraped content into
// compact textual summaries, launched without awaiting from
// onStepFinish and drained once at Synthesizer entry.
type batchSummarizer struct {
	ctx   context.Context
	state *State
	gen   TextGenerator
}

func newBatchSummarizer(ctx context.Context, state *State, gen TextGenerator) *batchSummarizer {
	return &batchSummarizer{ctx: ctx, state: state, gen: gen}
}

// maybeSummarize computes unsummarized = scrapedContent.keys() \
// summarizedUrls; if at least batchSize are ready, it assigns them the
// next batchNum and launches a summarization task in the background.
func (b *batchSummarizer) maybeSummarize() {
	unsummarized := b.state.unsummarizedURLs()
	if len(unsummarized) < batchSize {
		return
	}
	batch := unsummarized[:batchSize]
	b.launch(batch)
}

// launch assigns a batchNum to the given URLs and runs the
// summarization task without the caller awaiting it.
func (b *batchSummarizer) launch(urls []string) {
	num := b.state.assignBatch(urls)
	pending := b.state.registerPending()

	go func() {
		err := b.run(num, urls)
		pending.finish(err)
	}()
}

// runAwaited is the Synthesizer's tail-flush variant: it runs the same
// reduction but blocks until it completes (or fails), per §4.7 step 2.
func (b *batchSummarizer) runAwaited(urls []string) error {
	num := b.state.assignBatch(urls)
	return b.run(num, urls)
}

func (b *batchSummarizer) run(num int, urls []string) error {
	prompt := b.buildPrompt(urls)

	summary, err := b.gen.GenerateText(b.ctx, prompt, 1500)
	if err != nil {
		log.Printf("batch %d summarization failed: %v", num, err)
		return fmt.Errorf("batch %d: %w", num, err)
	}

	b.state.appendBatchSummary(BatchSummary{
		BatchNum:    num,
		Summary:     summary,
		SourceCount: len(urls),
	})
	return nil
}

// buildPrompt constructs a prompt containing each source's title, URL,
// and first 5,000 chars of body, delimited, asking for a 500-800 word
// structured summary covering facts, quotes, insights, and contradictions.
func (b *batchSummarizer) buildPrompt(urls []string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following sources into a single 500-800 word structured summary. ")
	sb.WriteString("Cover key facts, direct quotes, insights, and any contradictions between sources.\n\n")

	sources := b.state.Sources()
	byURL := make(map[string]SourceInfo, len(sources))
	for _, s := range sources {
		byURL[s.URL] = s
	}

	for _, u := range urls {
		info := byURL[u]
		body, _ := b.state.ScrapedBody(u)
		if len(body) > 5000 {
			body = body[:5000]
		}
		sb.WriteString(fmt.Sprintf("--- SOURCE ---\nTitle: %s\nURL: %s\n%s\n--- END SOURCE ---\n\n", info.Title, u, body))
	}

	return sb.String()
}
