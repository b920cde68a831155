// Package optional provides a tri-state value for partial updates:
// a field can be absent, present and null, or present with a value.
package optional

// Value holds a patch field. The zero Value is unset.
type Value[T any] struct {
	set   bool
	valid bool
	value T
}

// Unset returns a Value that was not supplied.
func Unset[T any]() Value[T] {
	return Value[T]{}
}

// Of returns a Value supplied with v.
func Of[T any](v T) Value[T] {
	return Value[T]{set: true, valid: true, value: v}
}

// Null returns a Value supplied as an explicit null.
func Null[T any]() Value[T] {
	return Value[T]{set: true}
}

// IsSet reports whether the field was supplied at all.
func (o Value[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was supplied as null.
func (o Value[T]) IsNull() bool { return o.set && !o.valid }

// Get returns the value and true when the field was supplied with a non-null value.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.set && o.valid
}

// Ptr returns a pointer to the value, or nil when unset or null.
func (o Value[T]) Ptr() *T {
	if !o.set || !o.valid {
		return nil
	}
	v := o.value
	return &v
}
