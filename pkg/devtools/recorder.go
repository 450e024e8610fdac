package devtools

import (
	"sync/atomic"

	"github.com/vango-dev/impulse/pkg/impulse"
)

// Stats is a point-in-time copy of the recorder counters.
type Stats struct {
	Impulses          uint64 `json:"impulses"`
	Transmitting      uint64 `json:"transmitting"`
	Emitters          uint64 `json:"emitters"`
	WritesChanged     uint64 `json:"writesChanged"`
	WritesUnchanged   uint64 `json:"writesUnchanged"`
	Flushes           uint64 `json:"flushes"`
	EmittersNotified  uint64 `json:"emittersNotified"`
	ListenersNotified uint64 `json:"listenersNotified"`
	Violations        uint64 `json:"violations"`
	Clients           int    `json:"clients"`
	DroppedEvents     uint64 `json:"droppedEvents"`
}

// Recorder is an impulse.Observer that counts runtime activity and
// publishes flushes and violations to a Hub. The runtime calls it on its own
// goroutine; HTTP handlers read the counters concurrently.
type Recorder struct {
	hub *Hub

	impulses          atomic.Uint64
	transmitting      atomic.Uint64
	emitters          atomic.Uint64
	writesChanged     atomic.Uint64
	writesUnchanged   atomic.Uint64
	flushes           atomic.Uint64
	emittersNotified  atomic.Uint64
	listenersNotified atomic.Uint64
	violations        atomic.Uint64
}

var _ impulse.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder publishing to hub. hub may be nil.
func NewRecorder(hub *Hub) *Recorder {
	return &Recorder{hub: hub}
}

// OnCreate implements impulse.Observer.
func (r *Recorder) OnCreate(kind impulse.Kind) {
	switch kind {
	case impulse.KindImpulse:
		r.impulses.Add(1)
	case impulse.KindTransmitting:
		r.transmitting.Add(1)
	case impulse.KindEmitter:
		r.emitters.Add(1)
	}
}

// OnWrite implements impulse.Observer.
func (r *Recorder) OnWrite(changed bool) {
	if changed {
		r.writesChanged.Add(1)
	} else {
		r.writesUnchanged.Add(1)
	}
}

// OnFlush implements impulse.Observer.
func (r *Recorder) OnFlush(stats impulse.FlushStats) {
	r.flushes.Add(1)
	r.emittersNotified.Add(uint64(stats.Emitters))
	r.listenersNotified.Add(uint64(stats.Listeners))
	if r.hub != nil {
		r.hub.Broadcast(flushEvent(stats))
	}
}

// OnViolation implements impulse.Observer.
func (r *Recorder) OnViolation(v *impulse.Violation) {
	r.violations.Add(1)
	if r.hub != nil {
		r.hub.Broadcast(violationEvent(v))
	}
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	s := Stats{
		Impulses:          r.impulses.Load(),
		Transmitting:      r.transmitting.Load(),
		Emitters:          r.emitters.Load(),
		WritesChanged:     r.writesChanged.Load(),
		WritesUnchanged:   r.writesUnchanged.Load(),
		Flushes:           r.flushes.Load(),
		EmittersNotified:  r.emittersNotified.Load(),
		ListenersNotified: r.listenersNotified.Load(),
		Violations:        r.violations.Load(),
	}
	if r.hub != nil {
		s.Clients = r.hub.ClientCount()
		s.DroppedEvents = r.hub.Dropped()
	}
	return s
}
