package impulse

import (
	"math"
	"reflect"
)

// Compare reports whether two values are equal. A write whose new value is
// equal to the current one under the cell's Compare is dropped without
// notifying anybody.
type Compare[T any] func(a, b T) bool

// Equal is the default equality policy. Comparable built-in kinds use ==,
// with NaN equal to NaN; everything else falls back to reflect.DeepEqual.
// Values of different dynamic types are never equal.
func Equal[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return same(av, any(b))
	case int8:
		return same(av, any(b))
	case int16:
		return same(av, any(b))
	case int32:
		return same(av, any(b))
	case int64:
		return same(av, any(b))
	case uint:
		return same(av, any(b))
	case uint8:
		return same(av, any(b))
	case uint16:
		return same(av, any(b))
	case uint32:
		return same(av, any(b))
	case uint64:
		return same(av, any(b))
	case float32:
		return sameFloat(av, any(b))
	case float64:
		return sameFloat(av, any(b))
	case string:
		return same(av, any(b))
	case bool:
		return same(av, any(b))
	default:
		return reflect.DeepEqual(a, b)
	}
}

func same[V comparable](a V, b any) bool {
	bv, ok := b.(V)
	return ok && a == bv
}

func sameFloat[V float32 | float64](a V, b any) bool {
	bv, ok := b.(V)
	return ok && (a == bv || (math.IsNaN(float64(a)) && math.IsNaN(float64(bv))))
}

// DeepEqual compares values structurally.
func DeepEqual[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// Identity treats two values as equal only when they are the same
// reference. Pointers, maps, slices, channels and funcs compare by address;
// for other kinds it behaves like Equal.
func Identity[T any](a, b T) bool {
	av, bv := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !av.IsValid() || !bv.IsValid() {
		return av.IsValid() == bv.IsValid()
	}
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		return av.Pointer() == bv.Pointer() && av.Len() == bv.Len()
	default:
		return Equal(a, b)
	}
}

// orCompare returns c, or Equal when c is nil.
func orCompare[T any](c Compare[T]) Compare[T] {
	if c == nil {
		return Equal[T]
	}
	return c
}
