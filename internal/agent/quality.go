package agent

import "github.com/montanaflynn/stats"

// QualityStats surfaces descriptive statistics over a run's scraped
// bodies and findings, returned alongside the Synthesizer's result for
// callers that want more than the single finalQuality scalar.
type QualityStats struct {
	MeanWordCount   float64
	MedianWordCount float64
	StdDevWordCount float64
	SourceCount     int
	FindingCount    int
}

// computeQualityStats runs descriptive statistics over the word counts
// of every scraped body in the run.
func computeQualityStats(state *State) QualityStats {
	sources := state.Sources()
	counts := make([]float64, 0, len(sources))
	for _, s := range sources {
		if body, ok := state.ScrapedBody(s.URL); ok {
			counts = append(counts, float64(countWords(body)))
		}
	}

	out := QualityStats{
		SourceCount:  len(sources),
		FindingCount: state.FindingsCount(),
	}
	if len(counts) == 0 {
		return out
	}

	if mean, err := stats.Mean(counts); err == nil {
		out.MeanWordCount = mean
	}
	if median, err := stats.Median(counts); err == nil {
		out.MedianWordCount = median
	}
	if stddev, err := stats.StandardDeviation(counts); err == nil {
		out.StdDevWordCount = stddev
	}
	return out
}

// finalQuality is a deliberately simple quality signal: min(1, findings/10).
// The Effort Preset's qualityThreshold is never consulted here — that field
// only matters to the out-of-scope alternative orchestrator.
func finalQuality(state *State) float64 {
	q := float64(state.FindingsCount()) / 10.0
	if q > 1 {
		q = 1
	}
	return q
}
