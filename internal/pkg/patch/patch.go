// Package patch provides fields that distinguish "absent" from "explicitly
// null" from "set to a value". Entities use them to build sparse inserts and
// exclude-unset updates: only present fields are ever written.
package patch

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	value T
	set   bool
	null  bool
}

func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

func (f Field[T]) Present() bool { return f.set }

func (f Field[T]) IsNull() bool { return f.set && f.null }

// Get returns the value and whether a non-null value was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set && !f.null
}

// Interface returns the value boxed, or nil when absent or null.
func (f Field[T]) Interface() interface{} {
	if !f.set || f.null {
		return nil
	}
	return f.value
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what marks the field as set. A literal null marks it null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// Assignment is one column write.
type Assignment struct {
	Column string
	Value  interface{}
}

// Append adds column=f to dst when f is present.
func Append[T any](dst []Assignment, column string, f Field[T]) []Assignment {
	if !f.set {
		return dst
	}
	return append(dst, Assignment{Column: column, Value: f.Interface()})
}
