package impulse

import "time"

// Kind identifies the type of a reactive node.
type Kind uint8

const (
	KindImpulse Kind = iota + 1
	KindTransmitting
	KindEmitter
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindImpulse:
		return "impulse"
	case KindTransmitting:
		return "transmitting"
	case KindEmitter:
		return "emitter"
	default:
		return "unknown"
	}
}

// FlushStats describes one outermost transaction.
type FlushStats struct {
	// Name is the batch name given to BatchNamed or BatchReport, if any.
	Name string

	// Writes counts the writes that changed a value.
	Writes int

	// Emitters counts the distinct emitters that were notified.
	Emitters int

	// Listeners counts the distinct listeners that were called.
	Listeners int

	// Duration covers the work and the flush.
	Duration time.Duration

	// Nested is true when the call joined an already open transaction.
	// The other fields are then zero; the outer call reports them.
	Nested bool
}

// Observer receives instrumentation callbacks from a Runtime. Callbacks run
// synchronously on the goroutine that drives the runtime and must not call
// back into it.
type Observer interface {
	OnCreate(kind Kind)
	OnWrite(changed bool)
	OnFlush(stats FlushStats)
	OnViolation(v *Violation)
}

// Observers fans callbacks out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) OnCreate(kind Kind) {
	for _, o := range m {
		o.OnCreate(kind)
	}
}

func (m multiObserver) OnWrite(changed bool) {
	for _, o := range m {
		o.OnWrite(changed)
	}
}

func (m multiObserver) OnFlush(stats FlushStats) {
	for _, o := range m {
		o.OnFlush(stats)
	}
}

func (m multiObserver) OnViolation(v *Violation) {
	for _, o := range m {
		o.OnViolation(v)
	}
}

type nopObserver struct{}

func (nopObserver) OnCreate(Kind)           {}
func (nopObserver) OnWrite(bool)            {}
func (nopObserver) OnFlush(FlushStats)      {}
func (nopObserver) OnViolation(*Violation) {}
