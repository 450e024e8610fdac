package impulse

import "sync/atomic"

// idCounter is the source of identifiers for cells, emitters and listeners.
var idCounter atomic.Uint64

// nextID returns the next identifier. IDs are never reused.
func nextID() uint64 {
	return idCounter.Add(1)
}
