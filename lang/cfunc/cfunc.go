// Package cfunc describes the host-provided "C-function" builtins that a
// program's CLOSURE_CREATE_C instructions bind to. Their actual
// implementation is supplied and invoked by the runtime interpreter, which
// is external to this module (see spec's non-goals); this package only
// needs the descriptor shape that the binder and lowering passes reason
// about (name, arity).
package cfunc

import "github.com/mna/jqc/lang/value"

// Impl is the opaque builtin implementation. It is never called from this
// module — bytecode execution is out of scope — but it is part of the
// descriptor so the shape matches what a real host would register.
type Impl func(input value.Value, args []value.Value) (value.Value, error)

// A Descriptor describes one host builtin: its name, as seen in source,
// its arity including the implicit input value, and its implementation.
type Descriptor struct {
	Name  string
	Nargs int
	Impl  Impl
}

// NumFormals returns the number of formal (explicit) arguments, excluding
// the implicit input. This is block_count_formals' CLOSURE_CREATE_C case in
// compile.c: cfunc->nargs - 1.
func (d *Descriptor) NumFormals() int {
	return d.Nargs - 1
}
