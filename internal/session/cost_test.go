package session

import "testing"

func TestCostBreakdownAdd(t *testing.T) {
	a := CostBreakdown{InputTokens: 10, OutputTokens: 5, TotalTokens: 15, TotalCost: 0.01}
	b := CostBreakdown{InputTokens: 20, OutputTokens: 10, TotalTokens: 30, TotalCost: 0.02}
	a.Add(b)

	if a.InputTokens != 30 || a.OutputTokens != 15 || a.TotalTokens != 45 {
		t.Fatalf("unexpected token totals: %+v", a)
	}
	if a.TotalCost < 0.0299 || a.TotalCost > 0.0301 {
		t.Fatalf("unexpected total cost: %v", a.TotalCost)
	}
}

func TestNewCostBreakdownFillsTotalTokens(t *testing.T) {
	c := NewCostBreakdown("openai/gpt-4o-mini", 100, 50, 0)
	if c.TotalTokens != 150 {
		t.Fatalf("expected total tokens to be derived, got %d", c.TotalTokens)
	}
	if c.TotalCost <= 0 {
		t.Fatalf("expected non-zero cost for known model")
	}
}
