package value

import "strings"

// Array is a mutable, ordered sequence of Values. The generators that build
// gen_collect's accumulator, and any literal array constant, produce
// *Array.
type Array struct {
	elems []Value
}

// NewArray returns an empty array. Callers append to it with Append.
func NewArray() *Array { return &Array{} }

// NewArrayOf returns an array containing the given elements. The caller
// should not subsequently modify elems directly.
func NewArrayOf(elems ...Value) *Array { return &Array{elems: elems} }

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range a.elems {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a *Array) Equal(v Value) bool {
	a2, ok := v.(*Array)
	if !ok || len(a.elems) != len(a2.elems) {
		return false
	}
	for i, e := range a.elems {
		if !e.Equal(a2.elems[i]) {
			return false
		}
	}
	return true
}

// Len returns the number of elements in the array.
func (a *Array) Len() int { return len(a.elems) }

// Append adds v to the end of the array; this is the operation gen_collect's
// APPEND opcode models. Nothing in the compiler calls it.
func (a *Array) Append(v Value) { a.elems = append(a.elems, v) }

// At returns the element at index i.
func (a *Array) At(i int) Value { return a.elems[i] }

// Elems returns the array's elements. The caller must not modify the slice.
func (a *Array) Elems() []Value { return a.elems }
