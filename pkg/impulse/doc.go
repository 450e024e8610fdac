// Package impulse provides a fine-grained reactive value graph.
//
// Cells (impulses) hold values. Reads take an explicit Scope: a scope handed
// out by an Emitter subscribes the emitter to every cell read through it,
// while the zero Scope reads without subscribing. After each tracked run the
// emitter's dependency set is exactly the set of cells that run read, so
// branches that stop reading a cell stop being notified by it.
//
// # Core Types
//
// Impulse[T] is a mutable cell:
//
//	count := impulse.Of(0)
//	count.Set(5)
//	count.Update(func(n int) int { return n + 1 })
//
// Transmitting[T] reads through a getter and writes through a setter:
//
//	doubled := impulse.Derive(func(s impulse.Scope) int { return count.Get(s) * 2 })
//
// Watch and Subscribe track a computation:
//
//	w := impulse.Watch(
//	    func(s impulse.Scope) int { return doubled.Get(s) },
//	    func(v int) { fmt.Println("doubled is", v) },
//	)
//	defer w.Close()
//
// # Batching
//
// Every write runs in a transaction. Writes made while a transaction is open,
// whether inside Batch or inside a listener, join it; emitters and listeners
// fire once each when the outermost transaction completes:
//
//	impulse.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Guards
//
// Watch computations and transmitting getters are read-only. Creating,
// cloning, writing or subscribing to impulses inside them is reported through
// the runtime's logger and observer; writes and subscriptions are dropped.
// Builds with the impulse_prod tag compile the checks out and let such calls
// through.
//
// # Runtimes
//
// All state shared between cells lives in a Runtime. Cells use Default()
// unless built with InRuntime. A Runtime is single-threaded: drive it from
// one goroutine at a time.
package impulse
