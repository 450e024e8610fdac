package impulse

// Snapshot is the cached value box of a Transmitting impulse. The box is
// replaced only when a recomputed value differs from the cached one, so
// pointer equality on snapshots is a valid change test.
type Snapshot[T any] struct {
	value T
}

// Value returns the boxed value.
func (s *Snapshot[T]) Value() T {
	return s.value
}

// Transmitting is an impulse without a value of its own: it reads through a
// getter on every Get and writes through an optional setter.
//
// Cells read by the getter register with the caller's emitter, not with the
// transmitting impulse. The transmitting impulse registers itself as well so
// that ReplaceGetter can reach the same emitters.
type Transmitting[T any] struct {
	id      uint64
	rt      *Runtime
	deps    dependents
	getter  func(Scope) T
	setter  func(T, Scope)
	compare Compare[T]
	cache   *Snapshot[T]
}

// Transmit creates a transmitting impulse. A nil setter makes Set a no-op.
//
// Example:
//
//	celsius := impulse.Of(20.0)
//	fahrenheit := impulse.Transmit(
//	    func(s impulse.Scope) float64 { return celsius.Get(s)*9/5 + 32 },
//	    func(f float64, _ impulse.Scope) { celsius.Set((f - 32) * 5 / 9) },
//	)
func Transmit[T any](getter func(Scope) T, setter func(T, Scope), opts ...Option) *Transmitting[T] {
	o := newOptions(nil, opts)
	o.rt.allow(OpCreate)
	o.rt.observer.OnCreate(KindTransmitting)
	return &Transmitting[T]{
		id:      nextID(),
		rt:      o.rt,
		getter:  getter,
		setter:  setter,
		compare: compareOf(o, Equal[T]),
	}
}

// Derive creates a read-only transmitting impulse.
func Derive[T any](getter func(Scope) T, opts ...Option) *Transmitting[T] {
	return Transmit[T](getter, nil, opts...)
}

// ID returns the unique identifier for this transmitting impulse.
func (t *Transmitting[T]) ID() uint64 {
	return t.id
}

// Get runs the getter with scope and returns the cached value.
func (t *Transmitting[T]) Get(scope Scope) T {
	return t.Snapshot(scope).value
}

// Peek is Get with the static scope.
func (t *Transmitting[T]) Peek() T {
	return t.Get(Scope{})
}

// Snapshot runs the getter with scope and returns the cache box.
func (t *Transmitting[T]) Snapshot(scope Scope) *Snapshot[T] {
	scope.register(&t.deps)
	t.refresh(t.compute(scope))
	return t.cache
}

// Set hands value to the setter inside a batch. The transmitting impulse
// never notifies by itself; the cells behind the setter do.
func (t *Transmitting[T]) Set(value T) {
	if !t.rt.allow(OpWrite) || t.setter == nil {
		return
	}
	t.rt.schedule("", func(*transaction) {
		t.setter(value, Scope{})
	})
}

// Update calls the setter with fn applied to the current value.
func (t *Transmitting[T]) Update(fn func(T) T) {
	t.Set(fn(t.Peek()))
}

// ReplaceGetter swaps the source. The value is recomputed right away and,
// when it differs from the cache, every emitter that read this impulse is
// notified through the batch scheduler.
func (t *Transmitting[T]) ReplaceGetter(getter func(Scope) T) {
	if !t.rt.allow(OpWrite) {
		return
	}
	t.rt.schedule("", func(tx *transaction) {
		t.getter = getter
		read := t.cache != nil
		if t.refresh(t.compute(Scope{})) && read {
			t.rt.observer.OnWrite(true)
			tx.enqueue(&t.deps)
		}
	})
}

func (t *Transmitting[T]) compute(scope Scope) T {
	prev := t.rt.enter(ContextTransmit)
	defer t.rt.leave(prev)
	return t.getter(scope)
}

// refresh replaces the cache box when v differs from the cached value.
func (t *Transmitting[T]) refresh(v T) bool {
	if t.cache != nil && t.compare(t.cache.value, v) {
		return false
	}
	t.cache = &Snapshot[T]{value: v}
	return true
}
