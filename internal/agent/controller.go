package agent

import (
	"go-research/internal/events"
)

// StepPlan is prepareStep's return value: which tools the model may
// invoke on the next step, an optional forced tool choice, and an
// optional stop reason that ends the loop before the step runs.
type StepPlan struct {
	ActiveTools []string
	ToolChoice  string
	StopReason  string
}

// controller implements the prepareStep / onStepFinish hooks that wrap
// every LLM step.
type controller struct {
	state      *State
	summarizer *batchSummarizer
	emit       emitter
}

func newController(state *State, summarizer *batchSummarizer, emit emitter) *controller {
	return &controller{state: state, summarizer: summarizer, emit: emit}
}

var allTools = []string{"search", "scrape", "recordFinding", "getResearchStatus"}

// prepareStep evaluates the clause table top-to-bottom; the first
// matching clause wins. The stop-early clause S is checked before the
// force-tool clauses regardless of step number.
func (c *controller) prepareStep(stepNumber int) StepPlan {
	preset := c.state.Preset
	sources := c.state.SourceCount()
	scraped := c.state.ScrapedCount()
	sourcesToScrape := preset.SourcesToScrape()
	searchSteps := preset.SearchSteps()

	// Clause S: stop early once enough sources are found and scraped.
	if sources >= preset.MaxSources && scraped >= sourcesToScrape {
		return StepPlan{ActiveTools: []string{"getResearchStatus"}, StopReason: "sources_limit_reached"}
	}

	// Clause 1: early steps are reserved for search.
	if stepNumber <= searchSteps && sources < preset.MaxSources {
		return StepPlan{ActiveTools: []string{"search", "getResearchStatus"}, ToolChoice: "search"}
	}

	// Clause 2: plenty of sources but little scraped coverage.
	if stepNumber <= int(float64(preset.MaxSteps)*0.6) && sources > 5 && ratio(scraped, sources) < 0.5 {
		return StepPlan{
			ActiveTools: []string{"scrape", "recordFinding", "getResearchStatus"},
			ToolChoice:  "scrape",
		}
	}

	// Clause 3: behind on the scrape target with unscraped sources left.
	if stepNumber <= int(float64(preset.MaxSteps)*0.8) && scraped < sourcesToScrape && sources > scraped {
		return StepPlan{
			ActiveTools: []string{"scrape", "recordFinding", "search", "getResearchStatus"},
			ToolChoice:  "scrape",
		}
	}

	// Clause 4 / default: open policy. StepPlan carries no hint, so the
	// case where sources outnumber scraped bodies two to one gets the
	// same all-tools plan as the default.
	return StepPlan{ActiveTools: allTools}
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// onStepFinish increments stepCount, triggers batch summarization if
// eligible, and emits a progress-update event with progress capped at
// 0.95 until the Synthesizer completes.
func (c *controller) onStepFinish() {
	stepCount := c.state.incrementStep()

	c.summarizer.maybeSummarize()

	progress := float64(stepCount) / float64(c.state.Preset.MaxSteps)
	if progress > 0.95 {
		progress = 0.95
	}

	c.emit.progressUpdate(progress, "step completed", events.ProgressStats{
		SourcesFound:     c.state.SourceCount(),
		SourcesProcessed: c.state.ScrapedCount(),
		StepsCompleted:   stepCount,
		TotalSteps:       c.state.Preset.MaxSteps,
	})
}
