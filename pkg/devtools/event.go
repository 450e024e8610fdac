package devtools

import (
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/impulse/pkg/impulse"
)

// EventType represents the type of a devtools event.
type EventType string

const (
	EventFlush     EventType = "flush"
	EventViolation EventType = "violation"
)

// Event is sent to websocket clients of /debug/impulse/events.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Time      time.Time       `json:"time"`
	Flush     *FlushEvent     `json:"flush,omitempty"`
	Violation *ViolationEvent `json:"violation,omitempty"`
}

// FlushEvent carries the stats of one flushed batch.
type FlushEvent struct {
	Name       string `json:"name,omitempty"`
	Writes     int    `json:"writes"`
	Emitters   int    `json:"emitters"`
	Listeners  int    `json:"listeners"`
	DurationUS int64  `json:"durationUs"`
}

// ViolationEvent describes an illegal call inside a read-only context.
type ViolationEvent struct {
	Code     string `json:"code"`
	Op       string `json:"op"`
	Context  string `json:"context"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	Aborted  bool   `json:"aborted"`
}

func newEvent(typ EventType) Event {
	return Event{
		ID:   uuid.Must(uuid.NewV7()).String(),
		Type: typ,
		Time: time.Now().UTC(),
	}
}

func flushEvent(stats impulse.FlushStats) Event {
	e := newEvent(EventFlush)
	e.Flush = &FlushEvent{
		Name:       stats.Name,
		Writes:     stats.Writes,
		Emitters:   stats.Emitters,
		Listeners:  stats.Listeners,
		DurationUS: stats.Duration.Microseconds(),
	}
	return e
}

func violationEvent(v *impulse.Violation) Event {
	e := newEvent(EventViolation)
	e.Violation = &ViolationEvent{
		Code:     v.Code(),
		Op:       v.Op.String(),
		Context:  v.Context.String(),
		Message:  v.Err.Message,
		Location: v.Err.Location.String(),
		Aborted:  v.Aborted(),
	}
	return e
}
