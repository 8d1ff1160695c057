// Package binder resolves symbolic references in an IR program against
// binder instructions, and prunes binders that end up unreferenced. The
// arity-gated, self-binding core (bind_subblock/bind_each/block_bind) is
// implemented in lang/ir itself — the generators there call it directly
// to self-bind fresh locals and function names as they build blocks —
// and re-exported here under its spec name so this package is the
// complete binder surface. This package adds the whole-program passes:
// library-qualified binding, dead-binder elimination, and import
// extraction, grounded on compile.c's block_bind_library,
// block_bind_referenced, block_drop_unreferenced and block_take_imports.
package binder

import (
	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
)

// BindSubblock resolves binder against body; see ir.BindSubblock.
func BindSubblock(binder, body ir.Block, bindflags opcode.Flags) int {
	return ir.BindSubblock(binder, body, bindflags)
}

// BindEach binds every instruction of binders into body; see ir.BindEach.
func BindEach(binders, body ir.Block, bindflags opcode.Flags) int {
	return ir.BindEach(binders, body, bindflags)
}

// Bind is the standard name-introduction form; see ir.Bind.
func Bind(binder, body ir.Block, bindflags opcode.Flags) ir.Block {
	return ir.Bind(binder, body, bindflags)
}

// BindLibrary binds binder into body under a library-qualified name
// (libname::symbol for each binder), then returns only body — the
// qualified binders are discarded at the block level once they have done
// their job of resolving references; see the open question in DESIGN.md
// about the lifecycle this implies for callers.
func BindLibrary(binder, body ir.Block, bindflags opcode.Flags, libname string) ir.Block {
	if !ir.HasOnlyBinders(binder, bindflags) {
		panic("binder: BindLibrary requires a block of only binder instructions")
	}
	bindflags |= opcode.HasBinding
	for curr := binder.First; curr != nil; curr = curr.Next {
		original := curr.Symbol
		curr.Symbol = libname + "::" + original
		ir.BindSubblock(singleton(curr), body, bindflags)
		curr.Symbol = original
	}
	return body
}

// BindReferenced binds binder into body, keeping only the binders
// transitively referenced (directly or through each other) from body,
// and discards the rest. It iterates to a fixed point because a kept
// binder may itself reference another binder that was not yet known to
// be kept.
func BindReferenced(binder, body ir.Block, bindflags opcode.Flags) ir.Block {
	if !ir.HasOnlyBinders(binder, bindflags) {
		panic("binder: BindReferenced requires a block of only binder instructions")
	}
	bindflags |= opcode.HasBinding

	refd := ir.Noop()
	unrefd := ir.Noop()
	lastKept := 0
	kept := 0
	for {
		for {
			curr := ir.Take(&binder)
			if curr == nil {
				break
			}
			b := singleton(curr)
			nrefs := ir.BindEach(b, body, bindflags)
			nrefs += ir.CountRefs(b, refd)
			nrefs += ir.CountRefs(b, body)
			if nrefs > 0 {
				refd = ir.Join(refd, b)
				kept++
			} else {
				unrefd = ir.Join(unrefd, b)
			}
		}
		if kept == lastKept {
			break
		}
		lastKept = kept
		binder = unrefd
		unrefd = ir.Noop()
	}
	return ir.Join(refd, body)
}

// DropUnreferenced performs a single-pass-to-fixpoint elimination of
// unreferenced instructions inside an already-joined program. Only the
// instructions before the first TOP are candidates; that TOP and every
// instruction after it are kept. Without a TOP, every instruction is a
// candidate.
func DropUnreferenced(body ir.Block) ir.Block {
	for {
		refd := ir.Noop()
		unrefd := ir.Noop()
		var top *ir.Inst
		drop := 0

		for {
			curr := ir.Take(&body)
			if curr == nil {
				break
			}
			if curr.Op == opcode.TOP {
				top = curr
				break
			}
			b := singleton(curr)
			if ir.CountRefs(b, refd)+ir.CountRefs(b, body) == 0 {
				unrefd = ir.Join(unrefd, b)
				drop++
			} else {
				refd = ir.Join(refd, b)
			}
		}
		if top != nil {
			body = ir.Join(singleton(top), body)
		}
		body = ir.Join(refd, body)
		if drop == 0 {
			return body
		}
	}
}

// Import describes one dependency extracted by TakeImports.
type Import struct {
	Name   string
	As     string
	Search string
}

// TakeImports detaches a leading TOP instruction (re-prepended before
// returning) and then drains any leading DEPS instructions, returning
// their module names and options.
func TakeImports(body *ir.Block) []Import {
	var imports []Import

	var top *ir.Inst
	if body.First != nil && body.First.Op == opcode.TOP {
		top = ir.Take(body)
	}
	for body.First != nil && body.First.Op == opcode.DEPS {
		dep := ir.Take(body)
		imp := Import{Name: dep.Symbol}
		if obj, ok := dep.Const.(*value.Object); ok {
			if as, ok := obj.Get("as"); ok {
				imp.As = string(as.(value.String))
			}
			if search, ok := obj.Get("search"); ok {
				imp.Search = string(search.(value.String))
			}
		}
		imports = append(imports, imp)
	}
	if top != nil {
		*body = ir.Join(singleton(top), *body)
	}
	return imports
}

func singleton(i *ir.Inst) ir.Block {
	return ir.Block{First: i, Last: i}
}
