// Package optional implements optional values.
package optional

import "github.com/netemlab/minisr/internal/runtimex"

// Value is an optional value. The zero value of this structure
// is equivalent to the one you get when calling [None].
type Value[T any] struct {
	// value is the underlying value.
	value T

	// present indicates whether the value is set.
	present bool
}

// None constructs an empty value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Some constructs a value wrapping the given one.
func Some[T any](value T) Value[T] {
	return Value[T]{value: value, present: true}
}

// IsNone returns whether this [Value] is empty.
func (v Value[T]) IsNone() bool {
	return !v.present
}

// Unwrap returns the underlying value or panics.
func (v Value[T]) Unwrap() T {
	runtimex.Assert(!v.IsNone(), "optional: Unwrap called on a none value")
	return v.value
}

// UnwrapOr returns the fallback if the [Value] is empty.
func (v Value[T]) UnwrapOr(fallback T) T {
	if v.IsNone() {
		return fallback
	}
	return v.value
}
