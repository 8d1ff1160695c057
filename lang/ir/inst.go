// Package ir is the instruction-node and block layer: the doubly-linked
// list of instructions that the generators (gen.go) build, the binder
// (lang/binder) resolves names against, and the lowering pass
// (lang/compiler) walks to emit bytecode: a flat, mutable node graph
// rather than an immutable tree.
package ir

import (
	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/locfile"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/token"
	"github.com/mna/jqc/lang/value"
)

// Location is a source range, a pair of positions in the same file. The
// zero value is UnknownLocation.
type Location struct {
	Start, End token.Pos
}

// UnknownLocation is the default, unset Location.
var UnknownLocation Location

// Unknown reports whether loc carries no position information.
func (loc Location) Unknown() bool {
	return loc.Start.Unknown() && loc.End.Unknown()
}

// Inst is one IR instruction. A *Inst is used directly as the binding and
// branch-target handle: Go's garbage collector makes raw pointer identity
// safe here, so there is no separate arena or index indirection — BoundBy
// compared to the instruction itself is exactly inst->bound_by == inst in
// the C original.
type Inst struct {
	Op opcode.Op

	// Next and Prev link this instruction within its owning Block. Both are
	// nil for a detached instruction.
	Next, Prev *Inst

	// IntVal is the opcode's 16-bit immediate, when the opcode carries a
	// plain integer (JUMP/JUMP_F/FORK/FORK_OPT hold an unresolved branch
	// pending Target instead; CALL_JQ/CALL_BUILTIN hold an argument count
	// assigned during lowering).
	IntVal uint16

	// Target is the branch destination for HasBranch opcodes, resolved to
	// a forward offset relative to the word after the branch operand only
	// during lowering's second pass.
	Target *Inst

	// Const is the constant value for HasConstant opcodes.
	Const value.Value

	// CFunc is the host builtin descriptor for CLOSURE_CREATE_C binders.
	CFunc *cfunc.Descriptor

	// Loc and Locfile are the instruction's source range and file handle.
	// Both are zero/nil until GenLocation stamps them.
	Loc     Location
	Locfile *locfile.File

	// BoundBy is this instruction's binding state: nil means unbound, a
	// pointer to itself means self-binder, any other pointer means it
	// references that binder instruction.
	BoundBy *Inst

	// Symbol is the name carried by binders and unresolved references.
	Symbol string

	// NFormals and NActuals are arity counters. NotSet is the sentinel for
	// "not yet computed".
	NFormals, NActuals int

	// SubFn is the nested function body, used only by CLOSURE_CREATE.
	SubFn Block

	// ArgList holds CLOSURE_PARAM formals for a CLOSURE_CREATE, or argument
	// expressions for a CALL_JQ.
	ArgList Block

	// Compiled is the owning bytecode record, assigned during lowering's
	// first pass. It is typed as any to avoid an import cycle with
	// lang/compiler (which imports lang/ir, not the reverse); the lowering
	// pass is the only code that type-asserts it.
	Compiled any

	// BytecodePos is the byte offset immediately after this instruction,
	// assigned during lowering's first pass.
	BytecodePos int
}

// NotSet is the sentinel value for an arity counter that has not yet been
// computed.
const NotSet = -1

// IsSelfBinder reports whether i is its own binder.
func (i *Inst) IsSelfBinder() bool { return i.BoundBy == i }

// IsUnbound reports whether i is a reference that has not yet been resolved.
func (i *Inst) IsUnbound() bool { return i.BoundBy == nil }

// IsReference reports whether i is bound to some other binder instruction.
func (i *Inst) IsReference() bool { return i.BoundBy != nil && i.BoundBy != i }

// Flags returns i's opcode descriptor flags, a convenience over
// opcode.Describe(i.Op).Flags.
func (i *Inst) Flags() opcode.Flags { return opcode.Describe(i.Op).Flags }
