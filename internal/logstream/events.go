// Package logstream follows a log file incrementally and emits a typed
// event sequence suitable for server-push transports.
package logstream

import (
	"time"

	"github.com/opsboard-dev/opsd/internal/logline"
)

// EventType names the wire events of a streaming session.
type EventType string

const (
	EventInit     EventType = "init"
	EventUpdate   EventType = "update"
	EventReset    EventType = "reset"
	EventLogError EventType = "logError"
)

// Event is one unit of the session's event sequence. Payload is one of
// LogsPayload, ResetPayload or ErrorPayload depending on Type.
type Event struct {
	Type    EventType
	Payload any
}

// Metadata describes the read that produced an event.
type Metadata struct {
	Path             string         `json:"path"`
	Date             string         `json:"date,omitempty"`
	LineCount        int            `json:"lineCount"`
	ReadAt           string         `json:"readAt"`
	TotalLinesInFile int            `json:"totalLinesInFile"`
	Limited          bool           `json:"limited"`
	Method           string         `json:"method"`
	Cleaned          bool           `json:"cleaned"`
	Format           logline.Format `json:"format"`
}

// LogsPayload carries records for init and update events. Append is true
// only on updates: the records extend what the client already has.
type LogsPayload struct {
	Logs     []*logline.Record `json:"logs"`
	Append   bool              `json:"append,omitempty"`
	Metadata Metadata          `json:"metadata"`
}

// ResetPayload tells the client to discard everything it has rendered.
type ResetPayload struct {
	Reason   string   `json:"reason"`
	Metadata Metadata `json:"metadata"`
}

// ErrorPayload reports a degraded but still-open session.
type ErrorPayload struct {
	Message string `json:"message"`
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
