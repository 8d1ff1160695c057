package ir_test

import (
	"testing"

	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/stretchr/testify/require"
)

func TestBindSelfBindsAndResolvesReferences(t *testing.T) {
	binder := ir.OpUnbound(opcode.STOREV, "x")
	ref1 := ir.OpUnbound(opcode.LOADV, "x")
	ref2 := ir.OpUnbound(opcode.LOADV, "y")
	body := ir.JoinAll(ref1, ref2)

	out := ir.Bind(binder, body, opcode.HasVariable)

	require.Same(t, binder.First, binder.First.BoundBy)
	require.Same(t, binder.First, ref1.First.BoundBy)
	require.Nil(t, ref2.First.BoundBy)
	require.Same(t, binder.First, out.First)
}

func TestBindArityGateSkipsMismatch(t *testing.T) {
	binder := ir.Function("f", ir.JoinAll(ir.Param("a")), ir.Noop())
	call := ir.Call("f", ir.JoinAll(ir.Param("x"), ir.Param("y")))
	ir.BindSubblock(binder, call, opcode.IsCallPseudo)

	require.Nil(t, call.First.BoundBy, "2-arg call should not bind to a 1-formal f")
}

func TestBindArityMatchBinds(t *testing.T) {
	binder := ir.Function("f", ir.JoinAll(ir.Param("a")), ir.Noop())
	call := ir.Call("f", ir.JoinAll(ir.Param("x")))
	ir.BindSubblock(binder, call, opcode.IsCallPseudo)

	require.Same(t, binder.First, call.First.BoundBy)
	require.Equal(t, 1, call.First.NActuals)
}

func TestBindEachRequiresOnlyBinders(t *testing.T) {
	notABinder := ir.Single(opcode.DUP)
	require.Panics(t, func() {
		ir.BindEach(notABinder, ir.Noop(), opcode.HasVariable)
	})
}

func TestFunctionSelfBindsForRecursion(t *testing.T) {
	call := ir.Call("fact", ir.Noop())
	fn := ir.Function("fact", ir.Noop(), call)

	require.Same(t, fn.First, fn.First.BoundBy)
	require.Same(t, fn.First, call.First.BoundBy)
}
