package impulse

// Emitter tracks the cells read by one observation and gets notified when
// any of them changes.
//
// Each call to Track is one observation run. On entry every current
// dependency is marked dead; reads during the run revive or add
// dependencies; on exit the ones still dead are unsubscribed. The dependency
// set therefore always equals the cells read by the latest run.
type Emitter struct {
	id uint64
	rt *Runtime

	// context is installed as the runtime guard context while tracking.
	context ReadContext

	deps map[*dependents]struct{}
	dead map[*dependents]struct{}

	// version increments on every notification and on Close.
	version uint64

	listener *Listener
	tracking bool
	closed   bool
}

// NewEmitter creates an idle emitter. Pass ReadOnly to forbid mutations
// inside its tracked runs.
func NewEmitter(opts ...Option) *Emitter {
	o := newOptions(nil, opts)
	c := ContextNone
	if o.readOnly {
		c = ContextWatch
	}
	return newEmitter(o.rt, c)
}

func newEmitter(rt *Runtime, c ReadContext) *Emitter {
	rt.observer.OnCreate(KindEmitter)
	return &Emitter{
		id:      nextID(),
		rt:      rt,
		context: c,
		deps:    make(map[*dependents]struct{}),
		dead:    make(map[*dependents]struct{}),
	}
}

// ID returns the unique identifier for this emitter.
func (e *Emitter) ID() uint64 {
	return e.id
}

// Version returns the notification counter.
func (e *Emitter) Version() uint64 {
	return e.version
}

// Dependencies returns the number of cells the emitter is subscribed to.
func (e *Emitter) Dependencies() int {
	return len(e.deps)
}

// Closed reports whether Close has been called.
func (e *Emitter) Closed() bool {
	return e.closed
}

// Track runs fn as one observation. A Track nested in a running Track of
// the same emitter joins the running session. On a closed emitter fn runs
// with the static scope.
func (e *Emitter) Track(fn func(Scope)) {
	if e.closed {
		fn(Scope{})
		return
	}
	if e.tracking {
		fn(e.scope())
		return
	}

	e.tracking = true
	for d := range e.deps {
		e.dead[d] = struct{}{}
	}
	prev := e.rt.enter(e.context)

	defer func() {
		e.rt.leave(prev)
		e.tracking = false
		e.prune()
	}()

	fn(e.scope())
}

// OnEmit sets the listener called when a dependency changes, replacing any
// previous one. The returned func detaches it and bumps the version.
func (e *Emitter) OnEmit(l *Listener) (detach func()) {
	e.listener = l
	return func() {
		if e.listener == l {
			e.version++
			e.listener = nil
		}
	}
}

// Close unsubscribes from every dependency and drops the listener. It is
// safe to call more than once.
func (e *Emitter) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.version++
	e.listener = nil
	for d := range e.deps {
		d.detach(e)
	}
	clear(e.deps)
	clear(e.dead)
}

func (e *Emitter) scope() Scope {
	return Scope{emitter: e, version: e.version}
}

func (e *Emitter) register(d *dependents) {
	if e.closed {
		return
	}
	if _, ok := e.deps[d]; ok {
		delete(e.dead, d)
		return
	}
	e.deps[d] = struct{}{}
	d.attach(e)
}

// prune unsubscribes from dependencies that were not read in the last run.
func (e *Emitter) prune() {
	for d := range e.dead {
		d.detach(e)
		delete(e.deps, d)
	}
	clear(e.dead)
}

// emit is called once per flush by the transaction.
func (e *Emitter) emit(tx *transaction) bool {
	if e.closed {
		return false
	}
	e.version++
	if e.listener != nil {
		tx.call(e.listener)
	}
	return true
}

// track runs fn through e.Track and returns its result.
func track[T any](e *Emitter, fn func(Scope) T) T {
	var v T
	e.Track(func(s Scope) {
		v = fn(s)
	})
	return v
}
