package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-research/internal/events"
	"go-research/internal/llm"
	"go-research/internal/session"
	"go-research/internal/tools"
)

// loopClient is what the Step Controller's loop needs from the LLM
// Collaborator: a chat turn to drive the tool loop, plus the single-shot
// generateText operation the Batch Summarizer and Synthesizer use.
type loopClient interface {
	llm.ChatClient
	TextGenerator
}

// EngineConfig is the factory's input: {model, maxTokens?} per the
// external-interfaces contract, plus the collaborator credentials the
// teacher's config layer already carries.
type EngineConfig struct {
	Model            string
	MaxOutputTokens  int // default 65000 if zero
	OpenRouterAPIKey string
	BraveAPIKey      string
	RequestTimeout   time.Duration
}

// Engine is the public handle returned by New: one research orchestrator
// bound to a model and its search/scrape collaborators.
type Engine struct {
	client loopClient
	search SearchBackend
	scrape ScrapeBackend
	bus    *events.Bus
	cfg    EngineConfig
}

// New constructs an Engine. bus may be nil if the caller only wants the
// onProgress/onPatch callbacks and no shared event stream.
func New(cfg EngineConfig, bus *events.Bus) *Engine {
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = 65000
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	client := llm.NewClientWithDefaults(cfg.OpenRouterAPIKey)
	client.SetModel(cfg.Model)

	return &Engine{
		client: client,
		search: tools.NewSearchTool(cfg.BraveAPIKey),
		scrape: tools.NewFetchTool(),
		bus:    bus,
		cfg:    cfg,
	}
}

// Options configures one research run.
type Options struct {
	Effort     Level
	Context    string
	OnProgress func(events.Event)
	OnPatch    PatchSink
}

// Stats summarizes a completed run.
type Stats struct {
	TotalSources     int
	SourcesProcessed int
	DurationMs       int64
	Cost             session.CostBreakdown
}

// Result is the terminal value of a run, matching researchAsync's
// return shape.
type Result struct {
	RunID           string
	Synthesis       string
	Sources         []SourceInfo
	Stats           Stats
	Quality         float64
	PatchesStreamed int
	Cancelled       bool
}

// ResearchAsync runs one research query to completion and returns its
// result. Despite the name (kept from the source contract this mirrors),
// this call blocks until the run finishes or ctx is cancelled — Go has
// no implicit async/await, so the "async" half of the contract is the
// onProgress/onPatch callbacks firing incrementally as the run proceeds.
func (e *Engine) ResearchAsync(ctx context.Context, query string, opts Options) (Result, error) {
	runID := uuid.NewString()
	preset := EffortOf(opts.Effort)

	runCtx := ctx
	var cancel context.CancelFunc
	if preset.TimeoutMs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(preset.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	state := NewState(preset)
	emit := newEmitter(e.bus, opts.OnProgress)
	scraper := newBackgroundScraper(runCtx, state, e.scrape)
	summarizer := newBatchSummarizer(runCtx, state, e.client)
	ctrl := newController(state, summarizer, emit)
	toolset := newToolSet(state, e.search, e.scrape, scraper, emit)
	synth := newSynthesizer(state, e.client, summarizer, scraper, emit, e.cfg.MaxOutputTokens)

	emit.phaseStarted("research", fmt.Sprintf("starting research %s: %s", runID, query))

	cancelled, cost := e.runLoop(runCtx, query, preset, ctrl, toolset)
	if cancelled {
		return Result{RunID: runID, Cancelled: true}, nil
	}

	synthResult, err := synth.Run(runCtx, query, opts.Context, opts.OnPatch)
	if err != nil {
		return Result{RunID: runID}, err
	}
	if synthResult.Cancelled {
		return Result{RunID: runID, Cancelled: true}, nil
	}

	return Result{
		RunID:     runID,
		Synthesis: synthResult.Markdown,
		Sources:   synthResult.Sources,
		Stats: Stats{
			TotalSources:     state.SourceCount(),
			SourcesProcessed: state.ScrapedCount(),
			DurationMs:       synthResult.DurationMs,
			Cost:             cost,
		},
		Quality:         synthResult.Quality,
		PatchesStreamed: synthResult.PatchesStreamed,
	}, nil
}

// Research is the streaming variant: it produces the same events
// opts.OnProgress would receive, delivered over a channel instead, then
// returns the same result ResearchAsync would. The channel replaces the
// callback for this call — any opts.OnProgress is overridden, so no event
// is delivered twice. Sends are non-blocking: an event that arrives while
// the channel's 64-event buffer is full is dropped.
func (e *Engine) Research(ctx context.Context, query string, opts Options) (<-chan events.Event, <-chan researchOutcome) {
	eventCh := make(chan events.Event, 64)
	outcomeCh := make(chan researchOutcome, 1)

	opts.OnProgress = func(ev events.Event) {
		select {
		case eventCh <- ev:
		default:
		}
	}

	go func() {
		defer close(eventCh)
		defer close(outcomeCh)
		result, err := e.ResearchAsync(ctx, query, opts)
		outcomeCh <- researchOutcome{result: result, err: err}
	}()

	return eventCh, outcomeCh
}

type researchOutcome struct {
	result Result
	err    error
}

// runLoop drives the model through the bounded step budget, wrapping
// each turn with prepareStep/onStepFinish. Returns true if the run was
// cancelled before or during the loop, along with the accumulated token
// cost of every Chat call made along the way. generateText calls made by
// the Batch Summarizer and Synthesizer are not metered here: the
// TextGenerator contract returns only the completion text, not usage, so
// only the step loop's own Chat turns are counted.
func (e *Engine) runLoop(ctx context.Context, query string, preset Preset, ctrl *controller, toolset *toolSet) (bool, session.CostBreakdown) {
	var cost session.CostBreakdown
	model := e.client.GetModel()

	messages := []llm.Message{
		{Role: "system", Content: effortInstructions(preset, query)},
		{Role: "user", Content: fmt.Sprintf("Research this topic: %s", query)},
	}

	for stepNumber := 1; stepNumber <= preset.MaxSteps; stepNumber++ {
		if ctx.Err() != nil {
			return true, cost
		}

		plan := ctrl.prepareStep(stepNumber)
		if plan.StopReason != "" {
			break
		}

		messages = append(messages, llm.Message{
			Role:    "system",
			Content: toolChoiceInstruction(plan),
		})

		resp, err := e.client.Chat(ctx, messages)
		if err != nil {
			if ctx.Err() != nil {
				return true, cost
			}
			break
		}
		if len(resp.Choices) == 0 {
			break
		}
		cost.Add(session.NewCostBreakdown(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens))

		content := resp.Choices[0].Message.Content
		messages = append(messages, llm.Message{Role: "assistant", Content: content})

		calls := llm.ParseToolCalls(content)
		for _, tc := range calls {
			if !toolAllowed(plan.ActiveTools, tc.Tool) {
				continue
			}
			result, _ := toolset.Execute(ctx, tc.Tool, tc.Args)
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: fmt.Sprintf("Tool result for %s: %v", tc.Tool, result),
			})
		}

		ctrl.onStepFinish()

		if ctx.Err() != nil {
			return true, cost
		}
	}

	return false, cost
}

// toolChoiceInstruction renders prepareStep's plan as a system message
// telling the model which tools it may use this turn, and which one it
// must use if a choice is forced.
func toolChoiceInstruction(plan StepPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Available tools this turn: %s.\n", strings.Join(plan.ActiveTools, ", "))
	if plan.ToolChoice != "" {
		fmt.Fprintf(&sb, "You must call the %q tool this turn, using <tool name=\"%s\">{...}</tool>.\n", plan.ToolChoice, plan.ToolChoice)
	}
	return sb.String()
}

func toolAllowed(active []string, name string) bool {
	for _, a := range active {
		if a == name {
			return true
		}
	}
	return false
}
