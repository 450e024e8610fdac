package impulse

import "time"

// target is one pending notification: either an emitter or a bare
// listener subscribed to a cell.
type target struct {
	emitter  *Emitter
	listener *Listener
}

// transaction collects the dependents of every changed cell while a batch
// is open and notifies them once the outermost batch returns.
type transaction struct {
	pending   []target
	emitters  map[*Emitter]struct{}
	listeners map[*Listener]struct{}
	stats     FlushStats
}

func newTransaction(name string) *transaction {
	return &transaction{
		emitters:  make(map[*Emitter]struct{}),
		listeners: make(map[*Listener]struct{}),
		stats:     FlushStats{Name: name},
	}
}

// enqueue records a changed cell.
func (tx *transaction) enqueue(d *dependents) {
	tx.stats.Writes++
	tx.pending = append(tx.pending, d.targets()...)
}

// flush walks pending targets in first-touch order. Writes made by
// listeners append to pending and are handled in the same walk. Each emitter
// and each listener fires at most once per transaction.
func (tx *transaction) flush() {
	for i := 0; i < len(tx.pending); i++ {
		t := tx.pending[i]
		switch {
		case t.emitter != nil:
			if _, seen := tx.emitters[t.emitter]; seen {
				continue
			}
			tx.emitters[t.emitter] = struct{}{}
			if t.emitter.emit(tx) {
				tx.stats.Emitters++
			}
		case t.listener != nil:
			tx.call(t.listener)
		}
	}
	tx.pending = nil
}

func (tx *transaction) call(l *Listener) {
	if _, seen := tx.listeners[l]; seen {
		return
	}
	tx.listeners[l] = struct{}{}
	tx.stats.Listeners++
	l.notify()
}

// schedule runs work inside the runtime's transaction. When no transaction
// is open it opens one, runs work, flushes and closes it; otherwise work
// simply contributes to the open one. The flush runs even if work panics.
func (rt *Runtime) schedule(name string, work func(tx *transaction)) FlushStats {
	if rt.tx != nil {
		work(rt.tx)
		return FlushStats{Name: name, Nested: true}
	}

	tx := newTransaction(name)
	rt.tx = tx
	defer func() {
		rt.tx = nil
	}()

	start := time.Now()
	func() {
		defer tx.flush()
		work(tx)
	}()
	tx.stats.Duration = time.Since(start)

	if tx.stats.Writes > 0 || tx.stats.Emitters > 0 || tx.stats.Listeners > 0 {
		rt.observer.OnFlush(tx.stats)
	}
	return tx.stats
}

// Batch groups writes so that every affected emitter and listener is
// notified once, after fn returns. Batches nest: only the outermost one
// flushes.
//
// Example:
//
//	impulse.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
func Batch(fn func()) {
	defaultRuntime.Batch(fn)
}

// BatchNamed is Batch with a name for logs and instrumentation.
func BatchNamed(name string, fn func()) {
	defaultRuntime.BatchNamed(name, fn)
}

// Batch runs fn inside this runtime's transaction.
func (rt *Runtime) Batch(fn func()) {
	rt.schedule("", func(*transaction) {
		fn()
	})
}

// BatchNamed runs fn as a named transaction. Boundaries of outermost named
// batches are logged at debug level.
func (rt *Runtime) BatchNamed(name string, fn func()) {
	rt.BatchReport(name, fn)
}

// BatchReport runs fn as a named transaction and returns the flush stats.
// When called inside an open transaction the result has Nested set.
func (rt *Runtime) BatchReport(name string, fn func()) FlushStats {
	outermost := rt.tx == nil
	if outermost && name != "" {
		rt.Logger().Debug("impulse batch start", "name", name)
	}
	stats := rt.schedule(name, func(*transaction) {
		fn()
	})
	if outermost && name != "" {
		rt.Logger().Debug("impulse batch end",
			"name", name,
			"writes", stats.Writes,
			"emitters", stats.Emitters,
			"listeners", stats.Listeners,
			"duration", stats.Duration,
		)
	}
	return stats
}
