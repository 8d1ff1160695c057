package ir

import "github.com/mna/jqc/lang/opcode"

// BindSubblock resolves binder (a single instruction) against every
// eligible unbound reference reachable from body, recursing into each
// instruction's SubFn and ArgList. It returns the number of references
// it bound, used by dead-binder elimination upstream in lang/binder.
//
// This and BindEach/Bind live beside the IR rather than in lang/binder
// because the generators in gen.go call them directly to self-bind fresh
// locals and function names as they are constructed; lang/binder builds
// on top of these for the heavier whole-program binding-graph passes
// (library-qualified binding, dead-binder elimination, import
// extraction) without creating an import cycle back into this package.
func BindSubblock(binder, body Block, bindflags opcode.Flags) int {
	if !binder.IsSingle() {
		panic("ir: BindSubblock requires a single-instruction binder block")
	}
	bi := binder.First
	if bi.Flags()&bindflags != bindflags {
		panic("ir: binder does not carry the required bind flags")
	}
	if bi.Symbol == "" {
		panic("ir: binder has no symbol")
	}
	if bi.BoundBy != nil && bi.BoundBy != bi {
		panic("ir: binder is already bound to something else")
	}

	bi.BoundBy = bi
	if bi.NFormals == NotSet {
		bi.NFormals = CountFormals(binder)
	}

	nrefs := 0
	want := bindflags | opcode.HasBinding
	for i := body.First; i != nil; i = i.Next {
		if i.Flags()&want == want && i.BoundBy == nil && i.Symbol == bi.Symbol {
			if i.Op == opcode.CALL_JQ && i.NActuals == NotSet {
				i.NActuals = CountActuals(i.ArgList)
			}
			if i.NActuals == NotSet || i.NActuals == bi.NFormals {
				i.BoundBy = bi
				nrefs++
			}
		}
		nrefs += BindSubblock(binder, i.SubFn, bindflags)
		nrefs += BindSubblock(binder, i.ArgList, bindflags)
	}
	return nrefs
}

// BindEach calls BindSubblock for every binder instruction in binders,
// which must contain only binder instructions (see HasOnlyBinders).
func BindEach(binders, body Block, bindflags opcode.Flags) int {
	if !HasOnlyBinders(binders, bindflags) {
		panic("ir: BindEach requires a block of only binder instructions")
	}
	bindflags |= opcode.HasBinding
	nrefs := 0
	for curr := binders.First; curr != nil; curr = curr.Next {
		nrefs += BindSubblock(instBlock(curr), body, bindflags)
	}
	return nrefs
}

// Bind is the standard name-introduction form: it calls BindEach, then
// joins binder before body.
func Bind(binder, body Block, bindflags opcode.Flags) Block {
	BindEach(binder, body, bindflags)
	return Join(binder, body)
}
