package agent

import (
	"fmt"
	"strings"
)

// effortInstructions assembles the system instruction string from the
// Effort Preset: the research phases, quantitative targets, and the
// critical rules the Step Controller enforces. Phrasing is
// implementation-defined but must state every quantitative constraint.
func effortInstructions(preset Preset, query string) string {
	minWords, maxWords := preset.WordCountRange()

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are conducting deep research on: %q\n\n", query)
	sb.WriteString("Work through four phases:\n")
	sb.WriteString("1. Comprehensive Search — discover candidate sources.\n")
	sb.WriteString("2. Deep Content Extraction — scrape the most promising sources.\n")
	sb.WriteString("3. Finding Extraction — record the concrete facts, quotes, and insights you uncover.\n")
	sb.WriteString("4. Final Synthesis — a structured long-form report is produced automatically once you stop.\n\n")
	fmt.Fprintf(&sb, "Targets for this run (effort=%s):\n", preset.Level)
	fmt.Fprintf(&sb, "- scrape at least %d sources\n", preset.SourcesToScrape())
	fmt.Fprintf(&sb, "- record at least %d findings via recordFinding\n", preset.MinFindings())
	fmt.Fprintf(&sb, "- the final report should land between %d and %d words across at least %d sections\n", minWords, maxWords, preset.SectionCount())
	sb.WriteString("\nCritical rules:\n")
	sb.WriteString("- Use recordFinding for every concrete fact worth citing; do not just describe, record it.\n")
	sb.WriteString("- Prefer scraping over further searching once you have enough candidate sources.\n")
	sb.WriteString("- You may be restricted to a subset of tools on a given step; follow the tool you are given.\n")
	return sb.String()
}

// synthesisPrompt assembles the Synthesizer's final prompt: query and
// context, the numbered findings list, the first 30 sources as
// `- [title](url)`, every batch summary in order, and an effort-keyed
// instruction block.
func synthesisPrompt(query, context string, preset Preset, findings []string, sources []SourceInfo, batches []BatchSummary) string {
	var sb strings.Builder

	sb.WriteString("# Research Query\n\n")
	sb.WriteString(query)
	sb.WriteString("\n\n")
	if context != "" {
		sb.WriteString("# Additional Context\n\n")
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}

	sb.WriteString("# Recorded Findings\n\n")
	if len(findings) == 0 {
		sb.WriteString("(none recorded)\n\n")
	}
	for i, f := range findings {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, f)
	}
	sb.WriteString("\n")

	sb.WriteString("# Sources\n\n")
	limit := len(sources)
	if limit > 30 {
		limit = 30
	}
	for _, s := range sources[:limit] {
		fmt.Fprintf(&sb, "- [%s](%s)\n", s.Title, s.URL)
	}
	sb.WriteString("\n")

	sb.WriteString("# Batch Summaries\n\n")
	for _, b := range batches {
		fmt.Fprintf(&sb, "## Batch %d (%d sources)\n\n%s\n\n", b.BatchNum, b.SourceCount, b.Summary)
	}

	minWords, maxWords := preset.WordCountRange()
	fmt.Fprintf(&sb, "# Instructions\n\n")
	fmt.Fprintf(&sb, "Write a long-form research report in Markdown. Start with a single `# ` title line, ")
	fmt.Fprintf(&sb, "then at least %d `## ` sections including an executive summary section. ", preset.SectionCount())
	fmt.Fprintf(&sb, "Target %d-%d words total. Cite sources by title where relevant. ", minWords, maxWords)
	fmt.Fprintf(&sb, "Quality standard for effort=%s: be thorough, resolve contradictions between sources explicitly, ", preset.Level)
	fmt.Fprintf(&sb, "and ground every claim in the findings or batch summaries above.\n")

	return sb.String()
}
