package agent

import (
	"time"

	"go-research/internal/events"
)

// emitter wraps the shared event bus with the four event kinds the
// research engine emits, so tools and hooks don't repeat the Event{}
// boilerplate at every call site. onEvent additionally mirrors every
// emission to a caller-supplied onProgress-style callback, independent
// of whether anything is subscribed to the bus.
type emitter struct {
	bus     *events.Bus
	onEvent func(events.Event)
}

func newEmitter(bus *events.Bus, onEvent func(events.Event)) emitter {
	return emitter{bus: bus, onEvent: onEvent}
}

func (e emitter) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
	if e.onEvent != nil {
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		}
		e.onEvent(ev)
	}
}

func (e emitter) phaseStarted(phase, message string) {
	e.publish(events.Event{
		Type: events.EventPhaseStarted,
		Data: events.PhaseStartedData{Phase: phase, Message: message},
	})
}

func (e emitter) progressUpdate(progress float64, message string, stats events.ProgressStats) {
	if progress > 0.95 {
		progress = 0.95
	}
	e.publish(events.Event{
		Type: events.EventProgressUpdate,
		Data: events.ProgressUpdateData{Progress: progress, Message: message, Stats: stats},
	})
}

func (e emitter) findingDiscovered(finding, confidence string, sourceIDs []string) {
	e.publish(events.Event{
		Type: events.EventFindingDiscovered,
		Data: events.FindingDiscoveredData{Finding: finding, Confidence: confidence, SourceIDs: sourceIDs},
	})
}

func (e emitter) completed(totalDurationMs int64, finalQuality float64) {
	e.publish(events.Event{
		Type: events.EventCompleted,
		Data: events.CompletedData{TotalDurationMs: totalDurationMs, FinalQuality: finalQuality},
	})
}
