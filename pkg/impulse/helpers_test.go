package impulse

import (
	"io"
	"log/slog"
)

// recorder is an Observer that keeps everything it is told.
type recorder struct {
	created    map[Kind]int
	writes     int
	unchanged  int
	flushes    []FlushStats
	violations []*Violation
}

func newRecorder() *recorder {
	return &recorder{created: make(map[Kind]int)}
}

func (r *recorder) OnCreate(kind Kind) { r.created[kind]++ }

func (r *recorder) OnWrite(changed bool) {
	if changed {
		r.writes++
	} else {
		r.unchanged++
	}
}

func (r *recorder) OnFlush(stats FlushStats) { r.flushes = append(r.flushes, stats) }

func (r *recorder) OnViolation(v *Violation) { r.violations = append(r.violations, v) }

// newTestRuntime returns a runtime with a silent logger and a recorder.
func newTestRuntime(opts ...RuntimeOption) (*Runtime, *recorder) {
	rec := newRecorder()
	base := []RuntimeOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithObserver(rec),
	}
	return NewRuntime(append(base, opts...)...), rec
}

// counter counts calls of its listener.
type counter struct {
	n        int
	listener *Listener
}

func newCounter() *counter {
	c := &counter{}
	c.listener = NewListener(func() { c.n++ })
	return c
}

// watchAll tracks every given impulse on a fresh emitter whose listener is
// c.listener.
func watchAll(rt *Runtime, c *counter, cells ...*Impulse[int]) *Emitter {
	e := NewEmitter(InRuntime(rt))
	e.Track(func(s Scope) {
		for _, cell := range cells {
			_ = cell.Get(s)
		}
	})
	e.OnEmit(c.listener)
	return e
}
