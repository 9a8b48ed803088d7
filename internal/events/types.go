package events

import "time"

// ResearchID is the constant identifier every emitted event carries: one
// embedded engine instance per process, so there is no per-run identity
// to distinguish at the event-bus level (Result.RunID carries that instead).
const ResearchID = "agent"

// EventType discriminates the four event kinds the research engine emits.
type EventType string

const (
	EventPhaseStarted      EventType = "phase-started"
	EventProgressUpdate    EventType = "progress-update"
	EventFindingDiscovered EventType = "finding-discovered"
	EventCompleted         EventType = "completed"
)

// Event is a single emission on the progress stream. Data holds one of
// the *Data structs below, selected by Type.
type Event struct {
	Type       EventType
	Timestamp  time.Time
	ResearchID string
	Data       interface{}
}

// PhaseStartedData is emitted once when a phase of the run begins.
type PhaseStartedData struct {
	Phase   string
	Message string
}

// ProgressStats accompanies every progress-update event.
type ProgressStats struct {
	SourcesFound     int
	SourcesProcessed int
	StepsCompleted   int
	TotalSteps       int
}

// ProgressUpdateData is emitted after every completed step.
type ProgressUpdateData struct {
	Progress float64
	Message  string
	Stats    ProgressStats
}

// FindingDiscoveredData is emitted whenever the model records a finding.
type FindingDiscoveredData struct {
	Finding    string
	Confidence string
	SourceIDs  []string
}

// CompletedData is emitted exactly once, when the run finishes successfully.
type CompletedData struct {
	TotalDurationMs int64
	FinalQuality    float64
}
