package ir_test

import (
	"testing"

	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
	"github.com/stretchr/testify/require"
)

func countOp(b ir.Block, op opcode.Op) int {
	n := 0
	for i := b.First; i != nil; i = i.Next {
		if i.Op == op {
			n++
		}
	}
	return n
}

func TestSubexpWraps(t *testing.T) {
	b := ir.Subexp(ir.Single(opcode.DUP))
	require.Equal(t, opcode.SUBEXP_BEGIN, b.First.Op)
	require.Equal(t, opcode.SUBEXP_END, b.Last.Op)
}

func TestBothForksThenJumps(t *testing.T) {
	b := ir.Both(ir.Single(opcode.DUP), ir.Single(opcode.POP))
	require.Equal(t, opcode.FORK, b.First.Op)
	// fork targets the jump, which sits right before b
	require.NotNil(t, b.First.Target)
}

func TestCollectHasForkAndAppend(t *testing.T) {
	b := ir.Collect(ir.Single(opcode.DUP))
	require.Equal(t, 1, countOp(b, opcode.FORK))
	require.Equal(t, 1, countOp(b, opcode.APPEND))
	require.Equal(t, 1, countOp(b, opcode.LOADVN))
}

func TestReduceAllocatesReduceAndVarBinders(t *testing.T) {
	b := ir.Reduce("x", ir.Single(opcode.DUP), ir.Single(opcode.DUP), ir.Single(opcode.DUP))
	// exactly one $reduce self-binder and one $x self-binder
	selfBinders := 0
	for i := b.First; i != nil; i = i.Next {
		if i.Op == opcode.STOREV && i.BoundBy == i {
			selfBinders++
		}
	}
	require.Equal(t, 2, selfBinders)
	require.Equal(t, 1, countOp(b, opcode.FORK))
}

func TestForeachWrapsInTryWithBreakHandler(t *testing.T) {
	b := ir.Foreach("x", ir.Single(opcode.DUP), ir.Single(opcode.DUP), ir.Single(opcode.DUP), ir.Single(opcode.DUP))
	require.Equal(t, opcode.FORK_OPT, b.First.Op)

	foundEqualCall := false
	for i := b.First; i != nil; i = i.Next {
		if i.Op == opcode.CALL_JQ && i.Symbol == "_equal" {
			foundEqualCall = true
		}
	}
	require.True(t, foundEqualCall)
}

func TestDefinedOrFourBlockShape(t *testing.T) {
	b := ir.DefinedOr(ir.Single(opcode.DUP), ir.Single(opcode.POP))
	require.Equal(t, 1, countOp(b, opcode.FORK))
	require.Equal(t, 2, countOp(b, opcode.JUMP_F))
	require.Equal(t, 1, countOp(b, opcode.JUMP))
}

func TestCondBranchesOnBothPaths(t *testing.T) {
	b := ir.Cond(ir.Single(opcode.DUP), ir.Single(opcode.POP), ir.Single(opcode.BACKTRACK))
	require.Equal(t, 1, countOp(b, opcode.JUMP_F))
	require.Equal(t, 1, countOp(b, opcode.JUMP))
}

func TestTryHandlesEmptyHandlerWithDupPop(t *testing.T) {
	b := ir.Try(ir.Single(opcode.DUP), ir.Noop())
	require.Equal(t, opcode.FORK_OPT, b.First.Op)
	// the synthesized handler is DUP; POP so it has an instruction to target
	require.Equal(t, opcode.DUP, b.Last.Prev.Op)
	require.Equal(t, opcode.POP, b.Last.Op)
}

func TestFunctionAndLambda(t *testing.T) {
	fn := ir.Function("id", ir.JoinAll(ir.Param("x")), ir.Call("x", ir.Noop()))
	require.True(t, ir.IsFuncdef(fn))
	require.Equal(t, 1, fn.First.NFormals)

	lam := ir.Lambda(ir.Single(opcode.DUP))
	require.True(t, ir.IsFuncdef(lam))
	require.Equal(t, "@lambda", lam.First.Symbol)
}

func TestImportCarriesOptions(t *testing.T) {
	b := ir.Import("mymod", "m", "./lib")
	require.Equal(t, opcode.DEPS, b.First.Op)
	require.Equal(t, "mymod", b.First.Symbol)

	opts, ok := b.First.Const.(*value.Object)
	require.True(t, ok)
	as, ok := opts.Get("as")
	require.True(t, ok)
	require.True(t, as.Equal(value.String("m")))
	search, ok := opts.Get("search")
	require.True(t, ok)
	require.True(t, search.Equal(value.String("./lib")))
}

func TestCBindingPrependsBinders(t *testing.T) {
	d := &cfunc.Descriptor{Name: "length", Nargs: 1}
	code := ir.Call("length", ir.Noop())
	out := ir.CBinding([]*cfunc.Descriptor{d}, code)
	require.Equal(t, opcode.CLOSURE_CREATE_C, out.First.Op)
	require.Same(t, out.First, code.First.BoundBy)
}
