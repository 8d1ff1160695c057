package value

import (
	"sort"
	"strings"

	"github.com/dolthub/swiss"
)

// Object is a mutable string-keyed map, backed by a swiss table. Insertion
// order is preserved separately for deterministic printing (jq objects
// print in the order their keys were set, not hash order).
type Object struct {
	m    *swiss.Map[string, Value]
	keys []string
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: swiss.NewMap[string, Value](8)}
}

func (o *Object) Kind() Kind { return KindObject }

func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		v, _ := o.m.Get(k)
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(v.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o *Object) Equal(v Value) bool {
	o2, ok := v.(*Object)
	if !ok || o.m.Count() != o2.m.Count() {
		return false
	}
	equal := true
	o.m.Iter(func(k string, v Value) bool {
		v2, found := o2.m.Get(k)
		if !found || !v.Equal(v2) {
			equal = false
			return true // stop iterating
		}
		return false
	})
	return equal
}

// Set assigns v to key k, jq's "set object field" operation. Re-setting an
// existing key keeps its original position.
func (o *Object) Set(k string, v Value) {
	if _, found := o.m.Get(k); !found {
		o.keys = append(o.keys, k)
	}
	o.m.Put(k, v)
}

// Get returns the value at key k, and whether it was present.
func (o *Object) Get(k string) (Value, bool) {
	return o.m.Get(k)
}

// Len returns the number of fields in the object.
func (o *Object) Len() int { return o.m.Count() }

// Keys returns the object's keys in insertion order. The caller must not
// modify the slice.
func (o *Object) Keys() []string { return o.keys }

// SortedKeys returns a copy of the object's keys in lexical order. The
// compiler's dumps do not use it: they print objects with String, in
// insertion order.
func (o *Object) SortedKeys() []string {
	ks := append([]string(nil), o.keys...)
	sort.Strings(ks)
	return ks
}
