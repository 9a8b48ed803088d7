package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Synthesizer is the terminal phase of a run: it drains all pending
// background summarization, tail-flushes any unbatched scraped content,
// assembles the final prompt, and issues one long-form generation.
type Synthesizer struct {
	state           *State
	gen             TextGenerator
	summarizer      *batchSummarizer
	scraper         *backgroundScraper
	emit            emitter
	maxOutputTokens int
}

func newSynthesizer(state *State, gen TextGenerator, summarizer *batchSummarizer, scraper *backgroundScraper, emit emitter, maxOutputTokens int) *Synthesizer {
	if maxOutputTokens == 0 {
		maxOutputTokens = 65000
	}
	return &Synthesizer{state: state, gen: gen, summarizer: summarizer, scraper: scraper, emit: emit, maxOutputTokens: maxOutputTokens}
}

// SynthesisResult is returned to the engine's caller.
type SynthesisResult struct {
	Markdown        string
	Sources         []SourceInfo
	DurationMs      int64
	Quality         float64
	QualityStats    QualityStats
	PatchesStreamed int
	Cancelled       bool
}

// Run executes the Synthesizer once, after the Step Controller's loop
// terminates. If ctx is already cancelled, it is skipped entirely; if
// cancelled mid-generation, the partial text is discarded.
func (s *Synthesizer) Run(ctx context.Context, query, runContext string, sink PatchSink) (SynthesisResult, error) {
	if ctx.Err() != nil {
		return SynthesisResult{Cancelled: true}, nil
	}

	s.emit.phaseStarted("synthesis", "finalizing report")

	// 1. Drain every pending background summarization handle.
	s.state.drainPending()
	if s.scraper != nil {
		s.scraper.wait()
	}

	// 2. Tail flush: one final awaited batch over anything left unbatched.
	if remaining := s.state.unsummarizedURLs(); len(remaining) > 0 {
		if err := s.summarizer.runAwaited(remaining); err != nil {
			log.Printf("tail-flush summarization failed: %v", err)
		}
	}

	if ctx.Err() != nil {
		return SynthesisResult{Cancelled: true}, nil
	}

	// 3. Prompt assembly.
	findings := s.state.Findings()
	sources := s.state.Sources()
	batches := s.state.BatchSummaries()
	prompt := synthesisPrompt(query, runContext, s.state.Preset, findings, sources, batches)

	// 4. Generate, with the configured output-token budget (default 65,000).
	markdown, err := s.gen.GenerateText(ctx, prompt, s.maxOutputTokens)
	if err != nil {
		if ctx.Err() != nil {
			return SynthesisResult{Cancelled: true}, nil
		}
		return SynthesisResult{}, fmt.Errorf("final synthesis: %w", err)
	}

	// 5. Parse the Markdown into a title, sections, and executive summary.
	title, sections, execSummary := parseReport(markdown, query)

	// 6. Emit the UI patch pair, if a sink is configured.
	reportSources := toReportSources(sources)
	patchCount := emitReportPatches(sink, query, title, execSummary, sections, reportSources)

	// 7. Return.
	quality := finalQuality(s.state)
	duration := s.state.Elapsed().Milliseconds()
	s.emit.completed(duration, quality)

	return SynthesisResult{
		Markdown:        markdown,
		Sources:         sources,
		DurationMs:      duration,
		Quality:         quality,
		QualityStats:    computeQualityStats(s.state),
		PatchesStreamed: patchCount,
	}, nil
}

func toReportSources(sources []SourceInfo) []reportSource {
	out := make([]reportSource, 0, len(sources))
	for i, s := range sources {
		out = append(out, reportSource{ID: i + 1, Title: s.Title, URL: s.URL, Domain: s.Domain})
	}
	return out
}

// heading is one located `# `/`## ` heading: its nesting level, text,
// and the byte range of its own source line.
type heading struct {
	level     int
	text      string
	lineStart int
	lineEnd   int
}

// parseReport splits Markdown into a title, an ordered list of `## `
// sections, and an executive summary. This is a deliberately simple
// contract, not a full Markdown parser: only level-1 and level-2
// headings are treated as structural; a goldmark AST walk is used only
// to locate heading boundaries robustly (skipping headings that appear
// inside code fences or quoted text), per the exact rules in the
// original design.
func parseReport(markdown, query string) (title string, sections []reportSection, execSummary string) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var headings []heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || (h.Level != 1 && h.Level != 2) {
			return ast.WalkContinue, nil
		}
		if h.Parent() == nil || h.Parent().Kind() != ast.KindDocument {
			// nested in a blockquote or list item: not a structural heading
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := lines.At(0)
		lineStart, lineEnd := lineBounds(source, seg.Start, seg.Stop)
		headings = append(headings, heading{
			level:     h.Level,
			text:      headingText(h, source),
			lineStart: lineStart,
			lineEnd:   lineEnd,
		})
		return ast.WalkContinue, nil
	})

	title = query
	for _, h := range headings {
		if h.level != 1 {
			continue
		}
		title = h.text
		break
	}

	for i, h := range headings {
		if h.level != 2 {
			continue
		}
		end := len(source)
		if i+1 < len(headings) {
			end = headings[i+1].lineStart
		}
		content := strings.TrimSpace(string(source[h.lineEnd:end]))
		sections = append(sections, reportSection{Title: h.text, Content: content})
	}

	execSummary = ""
	for _, s := range sections {
		if strings.Contains(strings.ToLower(s.Title), "summary") {
			execSummary = s.Content
			break
		}
	}
	if execSummary == "" && len(sections) > 0 {
		execSummary = sections[0].Content
	}

	return title, sections, execSummary
}

// lineBounds expands a heading text segment to the full bounds of its
// source line, so section content can be sliced starting just after it.
func lineBounds(source []byte, start, stop int) (lineStart, lineEnd int) {
	lineStart = start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd = stop
	for lineEnd < len(source) && source[lineEnd] != '\n' {
		lineEnd++
	}
	if lineEnd < len(source) {
		lineEnd++ // consume the newline itself
	}
	return lineStart, lineEnd
}

// headingText concatenates the text content of a heading node's inline
// children.
func headingText(h *ast.Heading, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
