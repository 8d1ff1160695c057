package compiler_test

import (
	"testing"

	"github.com/mna/jqc/lang/binder"
	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/compiler"
	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
	"github.com/stretchr/testify/require"
)

func TestBlockCompileConstantProgram(t *testing.T) {
	b := ir.Const(value.Number(42))
	bc, err := compiler.BlockCompile(b)
	require.NoError(t, err)
	require.NotNil(t, bc)
	require.Len(t, bc.Constants, 1)
	require.True(t, bc.Constants[0].Equal(value.Number(42)))
	require.Equal(t, opcode.RET, opcode.Op(bc.Code[len(bc.Code)-1]))
}

func TestBlockCompileIdentityFunctionCall(t *testing.T) {
	fn := ir.Function("id", ir.JoinAll(ir.Param("x")), ir.Single(opcode.DUP))
	call := ir.Call("id", ir.Lambda(ir.Single(opcode.DUP)))
	body := ir.Bind(fn, call, opcode.IsCallPseudo)

	bc, err := compiler.BlockCompile(body)
	require.NoError(t, err)
	require.NotNil(t, bc)
	// "id" and the "@lambda" argument hoisted into the call's prelude.
	require.Len(t, bc.Subfunctions, 2)
	require.Equal(t, "id", bc.Subfunctions[0].DebugInfo.Name)
	require.Equal(t, []string{"x"}, bc.Subfunctions[0].DebugInfo.Params)
}

func TestBlockCompileArityMismatchReportsDiagnostic(t *testing.T) {
	fn := ir.Function("f", ir.JoinAll(ir.Param("x")), ir.Single(opcode.DUP))
	call := ir.Call("f", ir.Noop()) // zero actuals, one formal: never binds
	body := ir.Bind(fn, call, opcode.IsCallPseudo)

	bc, err := compiler.BlockCompile(body)
	require.Nil(t, bc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "f/0 is not defined")
}

func TestBlockCompileReduceAllocatesExpectedSlotsAndFork(t *testing.T) {
	b := ir.Reduce("x", ir.Single(opcode.DUP), ir.Single(opcode.DUP), ir.Single(opcode.DUP))
	bc, err := compiler.BlockCompile(b)
	require.NoError(t, err)
	require.NotNil(t, bc)
	// $reduce and $x each get a local slot.
	require.Len(t, bc.DebugInfo.Locals, 2)
	require.Contains(t, bc.DebugInfo.Locals, "reduce")
	require.Contains(t, bc.DebugInfo.Locals, "x")

	foundFork := false
	for i := 0; i < len(bc.Code); {
		op := opcode.Op(bc.Code[i])
		if op == opcode.FORK {
			foundFork = true
		}
		i += opcode.Describe(op).Length
	}
	require.True(t, foundFork)
}

func TestBlockCompileTryCatchWithBreak(t *testing.T) {
	d := &cfunc.Descriptor{Name: "_equal", Nargs: 3}
	b := ir.Foreach("x", ir.Single(opcode.DUP), ir.Single(opcode.DUP), ir.Single(opcode.DUP), ir.Single(opcode.DUP))
	b = ir.CBinding([]*cfunc.Descriptor{d}, b)

	breakFn := ir.Function("break", ir.Noop(), ir.Single(opcode.BACKTRACK))
	b = ir.Bind(breakFn, b, opcode.IsCallPseudo)

	bc, err := compiler.BlockCompile(b)
	require.NoError(t, err)
	require.NotNil(t, bc)

	foundForkOpt := false
	for i := 0; i < len(bc.Code); {
		op := opcode.Op(bc.Code[i])
		if op == opcode.FORK_OPT {
			foundForkOpt = true
		}
		i += opcode.Describe(op).Length
	}
	require.True(t, foundForkOpt)

	require.True(t, containsStringConstant(bc, "break"))
}

// containsStringConstant searches bc and every nested subfunction for a
// string constant equal to want.
func containsStringConstant(bc *compiler.Bytecode, want string) bool {
	for _, c := range bc.Constants {
		if s, ok := c.(value.String); ok && string(s) == want {
			return true
		}
	}
	for _, sub := range bc.Subfunctions {
		if containsStringConstant(sub, want) {
			return true
		}
	}
	return false
}

func TestBlockCompileDeadBinderEliminationLeavesNoDanglingNames(t *testing.T) {
	used := ir.Function("used", ir.Noop(), ir.Single(opcode.DUP))
	unused := ir.Function("unused", ir.Noop(), ir.Single(opcode.DUP))
	call := ir.Call("used", ir.Noop())
	// TOP separates the unused definition from the main expression (used
	// bound into the call): without it, DropUnreferenced has no reason to
	// spare the call itself, since nothing binds to a call site.
	main := ir.JoinAll(ir.Single(opcode.TOP), ir.Bind(used, call, opcode.IsCallPseudo))
	body := ir.JoinAll(unused, main)

	dropped := binder.DropUnreferenced(body)
	bc, err := compiler.BlockCompile(dropped)
	require.NoError(t, err)
	require.NotNil(t, bc)
	require.Len(t, bc.Subfunctions, 1)
	require.Equal(t, "used", bc.Subfunctions[0].DebugInfo.Name)

	foundCallJQ := false
	for i := 0; i < len(bc.Code); {
		op := opcode.Op(bc.Code[i])
		if op == opcode.CALL_JQ {
			foundCallJQ = true
		}
		i += opcode.Describe(op).Length
	}
	require.True(t, foundCallJQ, "the call to used must survive dead-binder elimination")
}

func TestBlockCompileEmptyBodyIsJustReturn(t *testing.T) {
	bc, err := compiler.BlockCompile(ir.Noop())
	require.NoError(t, err)
	require.NotNil(t, bc)
	require.Len(t, bc.Code, 1)
	require.Equal(t, opcode.RET, opcode.Op(bc.Code[0]))
}

func TestBlockCompileDeeplyNestedFunctionsComputeNestingLevel(t *testing.T) {
	innermost := ir.Call("a", ir.Noop())
	level3 := ir.Function("c", ir.Noop(), innermost)
	level2 := ir.Function("b", ir.Noop(), level3)
	a := ir.Function("a", ir.Noop(), ir.Single(opcode.DUP))
	level1 := ir.Bind(a, level2, opcode.IsCallPseudo)

	bc, err := compiler.BlockCompile(level1)
	require.NoError(t, err)
	require.NotNil(t, bc)

	// root declares "a" and "b" side by side; "c" nests inside "b", and
	// its call to "a" must cross two nesting levels (c -> b -> root).
	require.Len(t, bc.Subfunctions, 2)
	var b *compiler.Bytecode
	for _, sub := range bc.Subfunctions {
		if sub.DebugInfo.Name == "b" {
			b = sub
		}
	}
	require.NotNil(t, b)
	c := b.Subfunctions[0]
	require.Equal(t, "c", c.DebugInfo.Name)

	foundCallJQ := false
	for i := 0; i < len(c.Code); {
		op := opcode.Op(c.Code[i])
		if op == opcode.CALL_JQ {
			foundCallJQ = true
			require.Equal(t, uint16(2), c.Code[i+2])
		}
		i += opcode.Describe(op).Length
	}
	require.True(t, foundCallJQ)
}
