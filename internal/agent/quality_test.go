package agent

import "testing"

func TestComputeQualityStatsEmptyState(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	stats := computeQualityStats(state)
	if stats.SourceCount != 0 || stats.FindingCount != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if stats.MeanWordCount != 0 {
		t.Errorf("MeanWordCount = %v, want 0 for no scraped bodies", stats.MeanWordCount)
	}
}

func TestComputeQualityStatsOverScrapedBodies(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	state.addSearchResults([]SourceInfo{{URL: "https://example.com/a"}}, 10)
	state.addSearchResults([]SourceInfo{{URL: "https://example.com/b"}}, 10)
	state.recordScrape("https://example.com/a", "one two three four")
	state.recordScrape("https://example.com/b", "one two")
	state.recordFinding("f1")

	stats := computeQualityStats(state)
	if stats.SourceCount != 2 {
		t.Errorf("SourceCount = %d, want 2", stats.SourceCount)
	}
	if stats.FindingCount != 1 {
		t.Errorf("FindingCount = %d, want 1", stats.FindingCount)
	}
	if stats.MeanWordCount != 3 {
		t.Errorf("MeanWordCount = %v, want 3", stats.MeanWordCount)
	}
}

func TestFinalQualityCapsAtOne(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	for i := 0; i < 25; i++ {
		state.recordFinding("finding")
	}
	if q := finalQuality(state); q != 1 {
		t.Errorf("finalQuality = %v, want 1 (capped)", q)
	}
}

func TestFinalQualityScalesLinearly(t *testing.T) {
	state := NewState(EffortOf(LevelStandard))
	for i := 0; i < 5; i++ {
		state.recordFinding("finding")
	}
	if q := finalQuality(state); q != 0.5 {
		t.Errorf("finalQuality = %v, want 0.5", q)
	}
}
