package ir

import (
	"github.com/mna/jqc/lang/locfile"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
)

// Block is a possibly-empty doubly-linked sequence of instructions,
// identified by its first and last nodes. The zero Block is Noop(): both
// fields nil.
type Block struct {
	First, Last *Inst
}

// Noop returns the empty block.
func Noop() Block { return Block{} }

// IsNoop reports whether b is empty.
func (b Block) IsNoop() bool { return b.First == nil && b.Last == nil }

// IsSingle reports whether b holds exactly one instruction.
func (b Block) IsSingle() bool { return b.First != nil && b.First == b.Last }

func instBlock(i *Inst) Block { return Block{First: i, Last: i} }

// Single returns a block of one instruction carrying op and no immediate.
func Single(op opcode.Op) Block {
	return instBlock(&Inst{Op: op, NFormals: NotSet, NActuals: NotSet})
}

// Const returns a block of one LOADK instruction carrying constant v.
func Const(v value.Value) Block {
	return instBlock(&Inst{Op: opcode.LOADK, Const: v, NFormals: NotSet, NActuals: NotSet})
}

// OpTarget returns a branch instruction whose target is tgt's last
// instruction. tgt must be non-empty.
func OpTarget(op opcode.Op, tgt Block) Block {
	if tgt.Last == nil {
		panic("ir: OpTarget requires a non-empty target block")
	}
	return instBlock(&Inst{Op: op, Target: tgt.Last, NFormals: NotSet, NActuals: NotSet})
}

// OpTargetLater returns a branch instruction with no target yet; the
// caller must later call SetTarget.
func OpTargetLater(op opcode.Op) Block {
	return instBlock(&Inst{Op: op, NFormals: NotSet, NActuals: NotSet})
}

// SetTarget patches b's (single-instruction) branch target to tgt's last
// instruction.
func SetTarget(b, tgt Block) {
	if !b.IsSingle() {
		panic("ir: SetTarget requires a single-instruction block")
	}
	if tgt.Last == nil {
		panic("ir: SetTarget requires a non-empty target block")
	}
	b.First.Target = tgt.Last
}

// OpUnbound returns a reference instruction carrying symbol name and no
// binder.
func OpUnbound(op opcode.Op, name string) Block {
	return instBlock(&Inst{Op: op, Symbol: name, NFormals: NotSet, NActuals: NotSet})
}

// OpVarFresh creates a fresh variable binder: a self-binding instruction
// with no existing references to scan (it has just been created), so
// self-binding is immediate rather than going through the binder
// package's full bind_subblock walk.
func OpVarFresh(op opcode.Op, name string) Block {
	b := OpUnbound(op, name)
	b.First.BoundBy = b.First
	b.First.NFormals = 0
	return b
}

// OpBound returns a reference to binder's single instruction: it copies
// the binder's symbol and sets BoundBy directly, without going through
// the arity-gated binder walk (used when the binder is known statically,
// e.g. a generator's own fresh locals).
func OpBound(op opcode.Op, binder Block) Block {
	if !binder.IsSingle() {
		panic("ir: OpBound requires a single-instruction binder block")
	}
	b := OpUnbound(op, binder.First.Symbol)
	b.First.BoundBy = binder.First
	return b
}

// Append splices b2 onto the end of b in place and returns the result.
// Either may be empty.
func Append(b, b2 Block) Block {
	if b2.First == nil {
		return b
	}
	if b.Last != nil {
		b.Last.Next = b2.First
		b2.First.Prev = b.Last
	} else {
		b.First = b2.First
	}
	b.Last = b2.Last
	return b
}

// Join concatenates a and b, returning a fresh block. Equivalent to
// Append(a, b) but does not require a to be mutated in place at the call
// site, matching block_join's value semantics in the source.
func Join(a, b Block) Block {
	return Append(a, b)
}

// JoinAll concatenates blocks left to right, the Go equivalent of the
// source's variadic BLOCK(...) macro.
func JoinAll(blocks ...Block) Block {
	out := Noop()
	for _, b := range blocks {
		out = Join(out, b)
	}
	return out
}

// Take detaches and returns b's head instruction, leaving b holding the
// tail. It returns nil if b is empty.
func Take(b *Block) *Inst {
	i := b.First
	if i == nil {
		return nil
	}
	if i.Next != nil {
		i.Next.Prev = nil
		b.First = i.Next
		i.Next = nil
	} else {
		b.First = nil
		b.Last = nil
	}
	return i
}

// IsConst reports whether b is a single LOADK instruction.
func IsConst(b Block) bool {
	return b.IsSingle() && b.First.Op == opcode.LOADK
}

// ConstKind returns the kind of b's constant. b must be IsConst.
func ConstKind(b Block) value.Kind {
	if !IsConst(b) {
		panic("ir: ConstKind requires a const block")
	}
	return b.First.Const.Kind()
}

// ConstValue returns b's constant value. b must be IsConst.
func ConstValue(b Block) value.Value {
	if !IsConst(b) {
		panic("ir: ConstValue requires a const block")
	}
	return b.First.Const
}

// HasMain reports whether top's first instruction is TOP.
func HasMain(top Block) bool {
	return top.First != nil && top.First.Op == opcode.TOP
}

// IsFuncdef reports whether b's first instruction is CLOSURE_CREATE.
func IsFuncdef(b Block) bool {
	return b.First != nil && b.First.Op == opcode.CLOSURE_CREATE
}

// GenLocation stamps loc and a retained reference to lf on every
// instruction in b whose source location is still unknown. Instructions
// that already carry a location (e.g. reused sub-blocks) are left alone.
func GenLocation(loc Location, lf *locfile.File, b Block) Block {
	for i := b.First; i != nil; i = i.Next {
		if i.Loc.Unknown() {
			i.Loc = loc
			i.Locfile = lf.Retain()
		}
	}
	return b
}

// HasOnlyBinders reports whether every instruction in binders satisfies
// bindflags|HasBinding. Asserted as a precondition by BindEach.
func HasOnlyBinders(binders Block, bindflags opcode.Flags) bool {
	want := bindflags | opcode.HasBinding
	for i := binders.First; i != nil; i = i.Next {
		if i.Flags()&want != want {
			return false
		}
	}
	return true
}

// HasOnlyBindersAndImports is HasOnlyBinders but also accepts DEPS
// instructions interleaved among the binders, the way an import list
// mixes qualified bindings with dependency records.
func HasOnlyBindersAndImports(binders Block, bindflags opcode.Flags) bool {
	want := bindflags | opcode.HasBinding
	for i := binders.First; i != nil; i = i.Next {
		if i.Flags()&want != want && i.Op != opcode.DEPS {
			return false
		}
	}
	return true
}

// CountFormals returns the formal parameter count of a binder block b
// (block_count_formals): a CLOSURE_CREATE_C binder reports its cfunc's
// arity minus the implicit input, otherwise the number of CLOSURE_PARAM
// entries in its ArgList.
func CountFormals(b Block) int {
	if b.First.Op == opcode.CLOSURE_CREATE_C {
		return b.First.CFunc.NumFormals()
	}
	n := 0
	for i := b.First.ArgList.First; i != nil; i = i.Next {
		n++
	}
	return n
}

// CountActuals returns the number of call-site pseudo-ops (CLOSURE_CREATE,
// CLOSURE_PARAM, CLOSURE_CREATE_C) in b, block_count_actuals.
func CountActuals(b Block) int {
	n := 0
	for i := b.First; i != nil; i = i.Next {
		switch i.Op {
		case opcode.CLOSURE_CREATE, opcode.CLOSURE_PARAM, opcode.CLOSURE_CREATE_C:
			n++
		default:
			panic("ir: unknown function type in call arglist")
		}
	}
	return n
}

// CountRefs counts instructions in body (recursing into SubFn and
// ArgList) whose BoundBy is binder's single instruction, excluding
// binder itself.
func CountRefs(binder, body Block) int {
	n := 0
	bi := binder.First
	for i := body.First; i != nil; i = i.Next {
		if i != bi && i.BoundBy == bi {
			n++
		}
		n += CountRefs(binder, i.SubFn)
		n += CountRefs(binder, i.ArgList)
	}
	return n
}
