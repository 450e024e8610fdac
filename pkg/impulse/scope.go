package impulse

// Scope is the capability handed to every read. A scope created by an
// Emitter routes reads into that emitter's dependency set; the zero Scope is
// static and reads through it register nothing.
//
// Scopes are values: copy them freely, never store them past the run that
// produced them.
type Scope struct {
	emitter *Emitter
	version uint64
}

// Version returns the version of the emitter at the time the scope was
// handed out. It is zero for the static scope.
func (s Scope) Version() uint64 {
	return s.version
}

// Tracking reports whether reads through s register dependencies.
func (s Scope) Tracking() bool {
	return s.emitter != nil
}

func (s Scope) register(d *dependents) {
	if s.emitter != nil {
		s.emitter.register(d)
	}
}

// Reader is anything readable through a Scope.
type Reader[T any] interface {
	Get(scope Scope) T
}

// Select reads r through scope and returns project applied to the value.
// Only r registers as a dependency; project receives a plain value.
func Select[T, R any](r Reader[T], scope Scope, project func(T) R) R {
	return project(r.Get(scope))
}

// Untracked runs fn with the static scope on the configured runtime. Reads
// inside fn create no subscriptions and the guard context is lifted.
func Untracked[T any](fn func(Scope) T, opts ...Option) T {
	o := newOptions(nil, opts)
	var v T
	o.rt.Ignore(func(s Scope) {
		v = fn(s)
	})
	return v
}
