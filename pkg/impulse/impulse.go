package impulse

import (
	"encoding/json"
	"fmt"
)

// Impulse is a mutable reactive cell. Reads go through a Scope so the
// reading emitter gets subscribed; writes are compared with the cell's
// equality policy and, when the value changed, notify every dependent once
// per batch.
type Impulse[T any] struct {
	id      uint64
	rt      *Runtime
	deps    dependents
	value   T
	compare Compare[T]
}

// Of creates an impulse holding initial. Options: InRuntime, WithCompare.
//
// Example:
//
//	count := impulse.Of(0)
//	count.Set(5)
//	count.Update(func(n int) int { return n + 1 })
func Of[T any](initial T, opts ...Option) *Impulse[T] {
	o := newOptions(nil, opts)
	o.rt.allow(OpCreate)
	return newImpulse(o.rt, initial, compareOf(o, Equal[T]))
}

func newImpulse[T any](rt *Runtime, value T, compare Compare[T]) *Impulse[T] {
	rt.observer.OnCreate(KindImpulse)
	return &Impulse[T]{
		id:      nextID(),
		rt:      rt,
		value:   value,
		compare: compare,
	}
}

// ID returns the unique identifier for this impulse.
func (i *Impulse[T]) ID() uint64 {
	return i.id
}

// Compare returns the equality policy.
func (i *Impulse[T]) Compare() Compare[T] {
	return i.compare
}

// Get returns the current value and registers the impulse with the scope's
// emitter, if any.
func (i *Impulse[T]) Get(scope Scope) T {
	scope.register(&i.deps)
	return i.value
}

// Peek returns the current value without registering anything.
func (i *Impulse[T]) Peek() T {
	return i.value
}

// Set replaces the value. Nothing happens when value equals the current one.
func (i *Impulse[T]) Set(value T) {
	i.write(func(T) T { return value }, i.compare)
}

// SetWith is Set with an equality policy for this call only. A nil compare
// selects Equal.
func (i *Impulse[T]) SetWith(value T, compare Compare[T]) {
	i.write(func(T) T { return value }, orCompare(compare))
}

// Update replaces the value with fn applied to the current one.
func (i *Impulse[T]) Update(fn func(T) T) {
	i.write(fn, i.compare)
}

func (i *Impulse[T]) write(next func(T) T, compare Compare[T]) {
	if !i.rt.allow(OpWrite) {
		return
	}

	i.rt.schedule("", func(tx *transaction) {
		value := next(i.value)
		if compare(i.value, value) {
			i.rt.observer.OnWrite(false)
			return
		}
		i.value = value
		i.rt.observer.OnWrite(true)
		tx.enqueue(&i.deps)
	})
}

// Clone returns a new impulse with the current value. Options:
// CloneTransform to copy mutable values, WithCompare to override the
// policy (the origin's policy is kept otherwise), InRuntime to place the
// clone in another runtime. The clone joins the origin's runtime by default.
//
// Like Of, the guard consults the runtime the clone joins.
func (i *Impulse[T]) Clone(opts ...Option) *Impulse[T] {
	o := newOptions(i.rt, opts)
	o.rt.allow(OpClone)

	value := i.value
	if transform := transformOf[T](o); transform != nil {
		value = transform(value)
	}
	return newImpulse(o.rt, value, compareOf(o, i.compare))
}

// Subscribe calls l after every batch in which the value changed. The same
// listener may be subscribed several times; each returned func removes one
// registration.
func (i *Impulse[T]) Subscribe(l *Listener) (unsubscribe func()) {
	if !i.rt.allow(OpSubscribe) {
		return func() {}
	}
	return i.deps.subscribe(l)
}

// SubscribeFunc subscribes fn through a fresh Listener.
func (i *Impulse[T]) SubscribeFunc(fn func()) (unsubscribe func()) {
	return i.Subscribe(NewListener(fn))
}

// String formats the current value.
func (i *Impulse[T]) String() string {
	return fmt.Sprint(i.value)
}

// MarshalJSON encodes the current value. Impulses are not decodable.
func (i *Impulse[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.value)
}
