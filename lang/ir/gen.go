package ir

import (
	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
)

// Subexp wraps a between SUBEXP_BEGIN/SUBEXP_END, marking it as a
// self-contained subexpression for the lowering pass's builtin-argument
// handling.
func Subexp(a Block) Block {
	return JoinAll(Single(opcode.SUBEXP_BEGIN), a, Single(opcode.SUBEXP_END))
}

// Both forks to a, then jumps past b, then runs b: emits a's outputs
// followed by b's.
func Both(a, b Block) Block {
	jump := OpTargetLater(opcode.JUMP)
	fork := OpTarget(opcode.FORK, jump)
	c := JoinAll(fork, a, jump, b)
	SetTarget(jump, c)
	return c
}

// Collect initializes a fresh $collect local to an empty array, forks to
// a tail that appends each output of expr to it and backtracks, then
// loads the finished array.
func Collect(expr Block) Block {
	arrayVar := OpVarFresh(opcode.STOREV, "collect")
	head := JoinAll(Single(opcode.DUP), Const(value.NewArray()), arrayVar)
	tail := JoinAll(OpBound(opcode.APPEND, arrayVar), Single(opcode.BACKTRACK))
	return JoinAll(head,
		OpTarget(opcode.FORK, tail),
		expr,
		tail,
		OpBound(opcode.LOADVN, arrayVar))
}

// Reduce stores init into a fresh $reduce, then loops: reads a value from
// source, binds it to varname, reloads $reduce, runs body, stores the
// result back, and backtracks; after the loop it loads $reduce.
func Reduce(varname string, source, init, body Block) Block {
	resVar := OpVarFresh(opcode.STOREV, "reduce")
	loop := JoinAll(Single(opcode.DUP),
		source,
		Bind(OpUnbound(opcode.STOREV, varname),
			JoinAll(OpBound(opcode.LOADVN, resVar), body, OpBound(opcode.STOREV, resVar)),
			opcode.HasVariable),
		Single(opcode.BACKTRACK))
	return JoinAll(Single(opcode.DUP),
		init,
		resVar,
		OpTarget(opcode.FORK, loop),
		loop,
		OpBound(opcode.LOADVN, resVar))
}

// Foreach is like Reduce, but each iteration also runs extract after the
// state update and emits its output, and the whole loop is wrapped in a
// Try whose handler matches the error value against the literal string
// "break" via a call to the builtin _equal, terminating cleanly on match
// and re-raising otherwise.
func Foreach(varname string, source, init, update, extract Block) Block {
	output := OpTargetLater(opcode.JUMP)
	stateVar := OpVarFresh(opcode.STOREV, "foreach")
	loop := JoinAll(Single(opcode.DUP),
		source,
		Bind(OpUnbound(opcode.STOREV, varname),
			JoinAll(OpBound(opcode.LOADVN, stateVar),
				update,
				Single(opcode.DUP),
				OpBound(opcode.STOREV, stateVar),
				extract,
				output),
			opcode.HasVariable))
	fe := JoinAll(Single(opcode.DUP),
		init,
		stateVar,
		OpTarget(opcode.FORK, loop),
		loop,
		Single(opcode.BACKTRACK))
	SetTarget(output, fe)
	handler := Cond(
		Call("_equal", JoinAll(Lambda(Const(value.String("break"))), Lambda(Noop()))),
		Single(opcode.BACKTRACK),
		Call("break", Noop()))
	return Try(fe, handler)
}

// DefinedOr sets a fresh local $found := false, tries a; if a produces any
// value, sets $found := true and emits it; otherwise (a produced nothing)
// evaluates b. This is the exact four-block init/if_found/if_notfound/tail
// structure the source uses, not a simplified equivalent.
func DefinedOr(a, b Block) Block {
	foundVar := OpVarFresh(opcode.STOREV, "found")
	init := JoinAll(Single(opcode.DUP), Const(value.False), foundVar)

	backtrack := Single(opcode.BACKTRACK)
	tail := JoinAll(Single(opcode.DUP),
		OpBound(opcode.LOADV, foundVar),
		OpTarget(opcode.JUMP_F, backtrack),
		backtrack,
		Single(opcode.POP),
		b)

	ifNotfound := Single(opcode.BACKTRACK)

	ifFound := JoinAll(Single(opcode.DUP),
		Const(value.True),
		OpBound(opcode.STOREV, foundVar),
		OpTarget(opcode.JUMP, tail))

	return JoinAll(init,
		OpTarget(opcode.FORK, ifNotfound),
		a,
		OpTarget(opcode.JUMP_F, ifFound),
		ifFound,
		ifNotfound,
		tail)
}

// CondBranch emits JUMP_F past iftrue into iffalse, with iftrue ending in
// a JUMP past iffalse.
func CondBranch(iftrue, iffalse Block) Block {
	iftrue = JoinAll(iftrue, OpTarget(opcode.JUMP, iffalse))
	return JoinAll(OpTarget(opcode.JUMP_F, iftrue), iftrue, iffalse)
}

// Cond evaluates cond, pops its result, and branches to iftrue or
// iffalse.
func Cond(cond, iftrue, iffalse Block) Block {
	return JoinAll(Single(opcode.DUP), cond,
		CondBranch(JoinAll(Single(opcode.POP), iftrue), JoinAll(Single(opcode.POP), iffalse)))
}

// And implements short-circuit a && b: if a then (if b then true else
// false) else false.
func And(a, b Block) Block {
	return JoinAll(Single(opcode.DUP), a,
		CondBranch(
			JoinAll(Single(opcode.POP), b, CondBranch(Const(value.True), Const(value.False))),
			JoinAll(Single(opcode.POP), Const(value.False))))
}

// Or implements short-circuit a || b: if a then true else (if b then true
// else false).
func Or(a, b Block) Block {
	return JoinAll(Single(opcode.DUP), a,
		CondBranch(
			JoinAll(Single(opcode.POP), Const(value.True)),
			JoinAll(Single(opcode.POP), b, CondBranch(Const(value.True), Const(value.False)))))
}

// Try executes exp; if exp raises an error, control resumes in handler
// with the error value available as the current input. A literal "."
// handler (an empty block) is special-cased by synthesizing DUP/POP so it
// still has an instruction to target, matching the source's handling of
// this edge case.
func Try(exp, handler Block) Block {
	if handler.IsNoop() {
		handler = JoinAll(Single(opcode.DUP), Single(opcode.POP), handler)
	}
	exp = JoinAll(exp, OpTarget(opcode.JUMP, handler))
	return JoinAll(OpTarget(opcode.FORK_OPT, exp), exp, handler)
}

// VarBinding stores the current value into a fresh local name, visible
// across body.
func VarBinding(v Block, name string, body Block) Block {
	return JoinAll(Single(opcode.DUP), v,
		Bind(OpUnbound(opcode.STOREV, name), body, opcode.HasVariable))
}

// Function binds formals into body with flag IS_CALL_PSEUDO, wraps the
// pair in a CLOSURE_CREATE instruction, then self-binds that instruction
// into its own body and arglist so recursive calls resolve.
func Function(name string, formals, body Block) Block {
	BindEach(formals, body, opcode.IsCallPseudo)
	i := &Inst{
		Op:       opcode.CLOSURE_CREATE,
		Symbol:   name,
		SubFn:    body,
		ArgList:  formals,
		NFormals: NotSet,
		NActuals: NotSet,
	}
	b := instBlock(i)
	BindSubblock(b, b, opcode.IsCallPseudo|opcode.HasBinding)
	return b
}

// Lambda is an anonymous Function with no formals.
func Lambda(body Block) Block {
	return Function("@lambda", Noop(), body)
}

// Param returns an unbound CLOSURE_PARAM formal.
func Param(name string) Block {
	return OpUnbound(opcode.CLOSURE_PARAM, name)
}

// Call returns an unbound CALL_JQ reference carrying args as its
// argument list.
func Call(name string, args Block) Block {
	b := OpUnbound(opcode.CALL_JQ, name)
	b.First.ArgList = args
	return b
}

// Import returns a DEPS instruction carrying the module name and an
// options object built from as/search (either may be empty, meaning
// absent).
func Import(name, as, search string) Block {
	opts := value.NewObject()
	if as != "" {
		opts.Set("as", value.String(as))
	}
	if search != "" {
		opts.Set("search", value.String(search))
	}
	return instBlock(&Inst{
		Op:       opcode.DEPS,
		Symbol:   name,
		Const:    opts,
		NFormals: NotSet,
		NActuals: NotSet,
	})
}

// CBinding prepends a CLOSURE_CREATE_C binder for each host descriptor
// and binds it into code with flag IS_CALL_PSEUDO.
func CBinding(cfuncs []*cfunc.Descriptor, code Block) Block {
	for _, d := range cfuncs {
		i := &Inst{
			Op:       opcode.CLOSURE_CREATE_C,
			CFunc:    d,
			Symbol:   d.Name,
			NFormals: NotSet,
			NActuals: NotSet,
		}
		code = Bind(instBlock(i), code, opcode.IsCallPseudo)
	}
	return code
}
