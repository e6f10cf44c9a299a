// Package progress carries lifecycle and per-unit progress events from the
// scheduler to whoever is listening. Publishing never blocks the workers.
package progress

import "log/slog"

// Event names emitted by the scheduler.
const (
	EventJobStarted       = "job_started"
	EventJobCompleted     = "job_completed"
	EventJobCancelled     = "job_cancelled"
	EventDownloadProgress = "download_progress"
)

// Event is one named notification with a JSON-friendly payload.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Publisher receives events as they happen.
type Publisher interface {
	Publish(Event)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(Event) {}

// Log writes events to a structured logger at debug level.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Publish(e Event) {
	l.Logger.Debug("event", "name", e.Name, "payload", e.Payload)
}

// Multi fans one event out to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}
