package impulse

// Listener is a callback with identity. Within one flushed batch a listener
// runs at most once, no matter how many cells or emitters it is attached to.
type Listener struct {
	id uint64
	fn func()
}

// NewListener wraps fn into a Listener. Two listeners built from the same
// func are still distinct; share the *Listener to get deduplication.
func NewListener(fn func()) *Listener {
	return &Listener{id: nextID(), fn: fn}
}

// ID returns the unique identifier for this listener.
func (l *Listener) ID() uint64 {
	return l.id
}

func (l *Listener) notify() {
	if l.fn != nil {
		l.fn()
	}
}

// subscription counts how many times one listener is subscribed to a cell.
type subscription struct {
	listener *Listener
	count    int
}

// dependents is the back-reference half of the graph: the emitters that
// read a cell during their last tracked run, and the listeners subscribed to
// it manually. A dependents value never owns what it points at; emitters
// remove themselves on prune and on Close.
type dependents struct {
	emitters  orderedSet[*Emitter]
	listeners []*subscription
}

func (d *dependents) attach(e *Emitter) {
	d.emitters.add(e)
}

func (d *dependents) detach(e *Emitter) {
	d.emitters.remove(e)
}

// subscribe registers l and returns a func that drops exactly this one
// registration. Calling the returned func more than once has no effect.
func (d *dependents) subscribe(l *Listener) func() {
	if l == nil {
		return func() {}
	}
	found := false
	for _, s := range d.listeners {
		if s.listener == l {
			s.count++
			found = true
			break
		}
	}
	if !found {
		d.listeners = append(d.listeners, &subscription{listener: l, count: 1})
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		d.unsubscribe(l)
	}
}

func (d *dependents) unsubscribe(l *Listener) {
	for i, s := range d.listeners {
		if s.listener != l {
			continue
		}
		if s.count > 1 {
			s.count--
			return
		}
		d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
		return
	}
}

// targets snapshots everything that must hear about a change of this cell,
// emitters first.
func (d *dependents) targets() []target {
	out := make([]target, 0, d.emitters.len()+len(d.listeners))
	for _, e := range d.emitters.items {
		out = append(out, target{emitter: e})
	}
	for _, s := range d.listeners {
		out = append(out, target{listener: s.listener})
	}
	return out
}
