package impulse

import (
	"math"
	"testing"
)

func TestEqual(t *testing.T) {
	if !Equal(1, 1) || Equal(1, 2) {
		t.Error("int equality")
	}
	if !Equal("a", "a") || Equal("a", "b") {
		t.Error("string equality")
	}
	if !Equal([]int{1, 2}, []int{1, 2}) {
		t.Error("slices fall back to deep equality")
	}
	if Equal(map[string]int{"a": 1}, map[string]int{"a": 2}) {
		t.Error("maps with different values compared equal")
	}

	type point struct{ X, Y int }
	if !Equal(point{1, 2}, point{1, 2}) {
		t.Error("struct equality")
	}
}

func TestIdentity(t *testing.T) {
	a := []int{1, 2}
	b := []int{1, 2}
	if Identity(a, b) {
		t.Error("distinct slices must not be identical")
	}
	if !Identity(a, a) {
		t.Error("same slice must be identical")
	}
	if Identity(a, a[:1]) {
		t.Error("reslice with another length must not be identical")
	}

	p, q := &struct{ N int }{1}, &struct{ N int }{1}
	if Identity(p, q) || !Identity(p, p) {
		t.Error("pointer identity")
	}

	var n1, n2 *int
	if !Identity(n1, n2) {
		t.Error("nil pointers are identical")
	}

	var e1, e2 error
	if !Identity(e1, e2) {
		t.Error("nil interfaces are identical")
	}
	if !Identity(3, 3) {
		t.Error("scalars fall back to Equal")
	}
}

func TestDeepEqual(t *testing.T) {
	if !DeepEqual(map[string][]int{"a": {1}}, map[string][]int{"a": {1}}) {
		t.Error("deep equality")
	}
}

func TestIdentityAsCellPolicy(t *testing.T) {
	rt, _ := newTestRuntime()
	v := []int{1}
	x := Of(v, InRuntime(rt), WithCompare[[]int](Identity[[]int]))
	c := newCounter()
	x.Subscribe(c.listener)

	x.Set(v)
	if c.n != 0 {
		t.Error("same slice should be silent")
	}
	x.Set([]int{1})
	if c.n != 1 {
		t.Errorf("new slice with equal content should notify under Identity, got %d", c.n)
	}
}

func TestEqualInterfaceValues(t *testing.T) {
	if Equal[any](1, "1") {
		t.Error("int and string compared equal")
	}
	if Equal[any](1, int64(1)) {
		t.Error("values of different types compared equal")
	}
	if Equal[any](1, nil) || Equal[any](nil, 1) {
		t.Error("nil compared equal to a value")
	}
	if !Equal[any](nil, nil) {
		t.Error("nil must equal nil")
	}
	if !Equal[any]("a", "a") {
		t.Error("same dynamic value must be equal")
	}
	if Equal[any](2.5, float32(2.5)) {
		t.Error("float64 and float32 compared equal")
	}
}

func TestEqualNaN(t *testing.T) {
	if !Equal(math.NaN(), math.NaN()) {
		t.Error("NaN must equal NaN")
	}
	nan32 := float32(math.NaN())
	if !Equal(nan32, nan32) {
		t.Error("float32 NaN must equal NaN")
	}
	if Equal(math.NaN(), 1.0) || Equal(1.0, math.NaN()) {
		t.Error("NaN compared equal to a number")
	}
}

func TestIdentityInterfaceValues(t *testing.T) {
	p := &struct{ N int }{1}
	if Identity[any](p, 3) || Identity[any](3, p) {
		t.Error("pointer and int compared identical")
	}
	if Identity[any]([]int{1}, "x") {
		t.Error("slice and string compared identical")
	}
	if Identity[any](p, nil) {
		t.Error("pointer compared identical to nil")
	}
	if !Identity[any](p, p) {
		t.Error("same pointer must be identical")
	}
}

func TestAnyCellChangesType(t *testing.T) {
	rt, _ := newTestRuntime()
	x := Of[any](1, InRuntime(rt))
	c := newCounter()
	x.Subscribe(c.listener)

	x.Set("one")
	if c.n != 1 || x.Peek() != "one" {
		t.Fatalf("expected one notification and %q, got %d and %v", "one", c.n, x.Peek())
	}
	x.Set(nil)
	if c.n != 2 || x.Peek() != nil {
		t.Fatalf("expected a second notification and nil, got %d and %v", c.n, x.Peek())
	}
	x.Set(nil)
	if c.n != 2 {
		t.Errorf("writing nil over nil should be silent, got %d", c.n)
	}
	x.Set(1)
	if c.n != 3 {
		t.Errorf("expected 3 notifications, got %d", c.n)
	}
}

func TestNaNCellIsSilent(t *testing.T) {
	rt, _ := newTestRuntime()
	x := Of(math.NaN(), InRuntime(rt))
	c := newCounter()
	x.Subscribe(c.listener)

	x.Set(math.NaN())
	if c.n != 0 {
		t.Errorf("NaN over NaN should be silent, got %d", c.n)
	}
	x.Set(1)
	if c.n != 1 {
		t.Errorf("expected 1 notification, got %d", c.n)
	}
}
