package impulse

// Subscribe runs fn once, tracking every impulse it reads, and runs it again
// after each batch that changed one of them. The returned func stops the
// subscription and releases every dependency.
//
// Example:
//
//	stop := impulse.Subscribe(func(s impulse.Scope) {
//	    fmt.Println("count is", count.Get(s))
//	})
//	defer stop()
func Subscribe(fn func(Scope), opts ...Option) (unsubscribe func()) {
	o := newOptions(nil, opts)
	c := ContextNone
	if o.readOnly {
		c = ContextWatch
	}

	e := newEmitter(o.rt, c)
	e.Track(fn)
	e.OnEmit(NewListener(func() {
		e.Track(fn)
	}))
	return e.Close
}

// Watcher keeps the result of a read-only computation up to date.
type Watcher[T any] struct {
	emitter  *Emitter
	compute  func(Scope) T
	compare  Compare[T]
	onChange func(T)
	value    T
}

// Watch runs compute tracked and reruns it whenever one of the impulses it
// read changes. onChange is called only when the new result differs from the
// previous one under the watcher's policy (WithCompare, Equal by default).
//
// compute runs in a read-only context: creating, cloning, writing or
// subscribing to impulses inside it is reported and writes are dropped.
// onChange runs outside that context and may write.
func Watch[T any](compute func(Scope) T, onChange func(T), opts ...Option) *Watcher[T] {
	o := newOptions(nil, opts)
	w := &Watcher[T]{
		emitter:  newEmitter(o.rt, ContextWatch),
		compute:  compute,
		compare:  compareOf(o, Equal[T]),
		onChange: onChange,
	}
	w.value = track(w.emitter, compute)
	w.emitter.OnEmit(NewListener(w.rerun))
	return w
}

func (w *Watcher[T]) rerun() {
	next := track(w.emitter, w.compute)
	if w.compare(w.value, next) {
		return
	}
	w.value = next
	if w.onChange != nil {
		w.onChange(next)
	}
}

// Value returns the latest computed result.
func (w *Watcher[T]) Value() T {
	return w.value
}

// Version returns how many times the watcher has been notified.
func (w *Watcher[T]) Version() uint64 {
	return w.emitter.Version()
}

// Dependencies returns the number of impulses read by the last run.
func (w *Watcher[T]) Dependencies() int {
	return w.emitter.Dependencies()
}

// Close stops watching and releases every dependency.
func (w *Watcher[T]) Close() {
	w.emitter.Close()
}
