package model

import "time"

// ProgressEvent is a single notification sent to a progress stream client.
type ProgressEvent struct {
	// Stage is one of the stage names, or "complete" / "error".
	Stage string `json:"stage"`

	// Message is a human-readable status. For "complete" it carries the
	// final report.
	Message string `json:"message"`

	// Timestamp is the event time in RFC 3339 format with millisecond precision.
	Timestamp string `json:"timestamp"`
}

// timestampLayout matches the ISO-8601 form emitted by browsers' Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NewProgressEvent builds an event stamped with now in UTC.
func NewProgressEvent(stage, message string, now time.Time) ProgressEvent {
	return ProgressEvent{
		Stage:     stage,
		Message:   message,
		Timestamp: now.UTC().Format(timestampLayout),
	}
}

// IsTerminal reports whether the event ends a progress stream.
func (e ProgressEvent) IsTerminal() bool {
	return e.Stage == StageComplete || e.Stage == StageError
}
