// Package session tracks token usage and USD cost across a research run.
//
// The original go-research session package also persisted full session
// transcripts to disk and an Obsidian vault; the agentic core has no
// persistent-storage requirement, so only the cost-accounting piece
// survives here, adapted to stand alone.
package session

import "go-research/internal/llm"

// CostBreakdown tracks token usage and costs for one or more LLM calls.
type CostBreakdown struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// Add accumulates another cost breakdown into this one.
func (c *CostBreakdown) Add(other CostBreakdown) {
	c.InputTokens += other.InputTokens
	c.OutputTokens += other.OutputTokens
	c.TotalTokens += other.TotalTokens
	c.InputCost += other.InputCost
	c.OutputCost += other.OutputCost
	c.TotalCost += other.TotalCost
}

// NewCostBreakdown constructs a cost breakdown from token usage.
func NewCostBreakdown(model string, inputTokens, outputTokens, totalTokens int) CostBreakdown {
	if totalTokens == 0 {
		totalTokens = inputTokens + outputTokens
	}

	inputCost, outputCost, totalCost := llm.CalculateCost(model, inputTokens, outputTokens)

	return CostBreakdown{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  totalTokens,
		InputCost:    inputCost,
		OutputCost:   outputCost,
		TotalCost:    totalCost,
	}
}
