package impulse

import "fmt"

// Option configures cells, emitters and watchers.
type Option func(*options)

type options struct {
	rt        *Runtime
	compare   any
	transform any
	readOnly  bool
}

func newOptions(rt *Runtime, opts []Option) *options {
	o := &options{rt: rt}
	for _, opt := range opts {
		opt(o)
	}
	if o.rt == nil {
		o.rt = defaultRuntime
	}
	return o
}

// InRuntime binds the new node to rt instead of the default runtime.
func InRuntime(rt *Runtime) Option {
	return func(o *options) {
		o.rt = rt
	}
}

// WithCompare sets the equality policy. A nil policy selects Equal.
func WithCompare[T any](c Compare[T]) Option {
	return func(o *options) {
		o.compare = c
	}
}

// CloneTransform applies fn to the current value before cloning, which is
// handy when the value holds mutable references.
func CloneTransform[T any](fn func(T) T) Option {
	return func(o *options) {
		o.transform = fn
	}
}

// ReadOnly marks an emitter's tracked runs as a read-only context: creating,
// cloning, writing or subscribing to cells inside them is reported.
func ReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// compareOf resolves the configured policy for T. Without WithCompare it
// returns fallback.
func compareOf[T any](o *options, fallback Compare[T]) Compare[T] {
	if o.compare == nil {
		return fallback
	}
	c, ok := o.compare.(Compare[T])
	if !ok {
		panic(fmt.Sprintf("impulse: WithCompare type %T does not match %T", o.compare, fallback))
	}
	return orCompare(c)
}

func transformOf[T any](o *options) func(T) T {
	if o.transform == nil {
		return nil
	}
	fn, ok := o.transform.(func(T) T)
	if !ok {
		panic(fmt.Sprintf("impulse: CloneTransform type %T does not match the cell type", o.transform))
	}
	return fn
}
