package compiler

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"

	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
)

// NewClosureBit is ORed into a slot index in the emitted CALL_JQ operand
// to distinguish a user-function closure slot (subfunction index) from a
// parameter-referenced closure slot.
const NewClosureBit uint16 = 1 << 15

// position translates an instruction's Location into a go/token.Position,
// the way lang/resolver/resolver.go turns a lang/token.Pos into one before
// handing it to a scanner.ErrorList, so diagnostics sort and print using
// the stdlib's own machinery.
func position(i *ir.Inst) gotoken.Position {
	if i.Locfile == nil {
		return gotoken.Position{}
	}
	p := i.Locfile.TokenFile().Position(i.Loc.Start)
	return gotoken.Position{Filename: p.Filename, Line: p.Line, Column: p.Col}
}

// CountCfunctions recursively counts the distinct host-function descriptors
// bound by CLOSURE_CREATE_C binders reachable through b and every nested
// subfunction body. A descriptor shared by more than one binder (the same
// host function imported by two modules, say) still gets a single table
// slot, matching SymbolTable.add's dedup.
func CountCfunctions(b ir.Block) int {
	return countCfunctions(b, make(map[*cfunc.Descriptor]bool))
}

func countCfunctions(b ir.Block, seen map[*cfunc.Descriptor]bool) int {
	n := 0
	for i := b.First; i != nil; i = i.Next {
		if i.Op == opcode.CLOSURE_CREATE_C && !seen[i.CFunc] {
			seen[i.CFunc] = true
			n++
		}
		n += countCfunctions(i.SubFn, seen)
	}
	return n
}

func single(i *ir.Inst) ir.Block { return ir.Block{First: i, Last: i} }

// ExpandCallArglist linearizes call sites in place: it reports an error
// for any binding-flagged instruction that is still unbound, and for
// each CALL_JQ splits argument handling by binder kind — source-level
// closures get a prelude of hoisted inline closures plus a CLOSURE_REF
// argument list, host builtins get their arguments evaluated in reverse
// textual order and folded into the call's fixed argument count.
func ExpandCallArglist(b *ir.Block) scanner.ErrorList {
	var errs scanner.ErrorList
	ret := ir.Noop()
	for {
		curr := ir.Take(b)
		if curr == nil {
			break
		}

		if curr.Flags().Has(opcode.HasBinding) && curr.BoundBy == nil {
			errs.Add(position(curr), fmt.Sprintf("%s/%d is not defined", curr.Symbol, ir.CountActuals(curr.ArgList)))
			ret = ir.Join(ret, single(curr))
			continue
		}

		prelude := ir.Noop()
		if curr.Op == opcode.CALL_JQ {
			actualArgs := 0
			desiredArgs := 0

			switch curr.BoundBy.Op {
			case opcode.CLOSURE_CREATE, opcode.CLOSURE_PARAM:
				callargs := ir.Noop()
				for {
					argInst := ir.Take(&curr.ArgList)
					if argInst == nil {
						break
					}
					argBlk := single(argInst)
					switch argInst.Op {
					case opcode.CLOSURE_REF:
						callargs = ir.Append(callargs, argBlk)
					case opcode.CLOSURE_CREATE:
						prelude = ir.Append(prelude, argBlk)
						callargs = ir.Append(callargs, ir.OpBound(opcode.CLOSURE_REF, argBlk))
					default:
						panic("compiler: unknown type of parameter in call arglist")
					}
					actualArgs++
				}
				curr.IntVal = uint16(actualArgs)
				curr.ArgList = callargs

				if curr.BoundBy.Op == opcode.CLOSURE_CREATE {
					for p := curr.BoundBy.ArgList.First; p != nil; p = p.Next {
						desiredArgs++
					}
				}

			case opcode.CLOSURE_CREATE_C:
				for {
					argInst := ir.Take(&curr.ArgList)
					if argInst == nil {
						break
					}
					if argInst.Op != opcode.CLOSURE_CREATE {
						panic("compiler: builtin call argument must be an inline closure")
					}
					body := argInst.SubFn
					argInst.SubFn = ir.Noop()
					errs = append(errs, ExpandCallArglist(&body)...)
					prelude = ir.Join(ir.Subexp(body), prelude)
					actualArgs++
				}
				curr.Op = opcode.CALL_BUILTIN
				curr.IntVal = uint16(actualArgs + 1)
				desiredArgs = curr.BoundBy.CFunc.NumFormals()

			default:
				panic("compiler: unknown function type bound to call")
			}

			if actualArgs != desiredArgs {
				panic("compiler: arity mismatch escaped the binder's arity gate")
			}
		}

		ret = ir.JoinAll(ret, prelude, single(curr))
	}
	*b = ret
	return errs
}

// lowerState carries the mutable bookkeeping of a single compile pass's
// first pass: the running byte offset and the next local-variable slot.
// maxVar is not read; the emission pass tracks its own high water mark of
// variable slots for the final NLocals computation.
type lowerState struct {
	pos         int
	varFrameIdx int
	maxVar      int
}

// compileInto lowers b into bc, recursing into every CLOSURE_CREATE's
// body to produce a child Bytecode. It mirrors compile.c's compile():
// first pass assigns byte offsets and indices, nested bodies are
// compiled recursively, and the second pass emits the final code vector
// (skipped entirely if any error was reported).
func compileInto(bc *Bytecode, b ir.Block) scanner.ErrorList {
	var errs scanner.ErrorList
	errs = append(errs, ExpandCallArglist(&b)...)
	b = ir.JoinAll(b, ir.Single(opcode.RET))

	st := &lowerState{}
	var locals []string

	type closureCreate struct {
		inst *ir.Inst
	}
	var closures []closureCreate

	for curr := b.First; curr != nil; curr = curr.Next {
		length := opcode.Describe(curr.Op).Length
		if curr.Op == opcode.CALL_JQ {
			for arg := curr.ArgList.First; arg != nil; arg = arg.Next {
				length += 2
			}
		}
		st.pos += length
		curr.BytecodePos = st.pos
		curr.Compiled = bc

		if curr.Op == opcode.CLOSURE_REF || curr.Op == opcode.CLOSURE_PARAM {
			panic("compiler: CLOSURE_REF/CLOSURE_PARAM must not reach the first pass uncalled")
		}

		if curr.Flags().Has(opcode.HasVariable) && curr.BoundBy == curr {
			curr.IntVal = uint16(st.varFrameIdx)
			st.varFrameIdx++
			locals = append(locals, curr.Symbol)
		}

		if curr.Op == opcode.CLOSURE_CREATE {
			if curr.BoundBy != curr {
				panic("compiler: CLOSURE_CREATE must be its own binder")
			}
			curr.IntVal = uint16(len(closures))
			closures = append(closures, closureCreate{inst: curr})
		}
		if curr.Op == opcode.CLOSURE_CREATE_C {
			if curr.BoundBy != curr {
				panic("compiler: CLOSURE_CREATE_C must be its own binder")
			}
			curr.IntVal = uint16(bc.Globals.add(curr.CFunc))
		}
	}

	bc.DebugInfo.Locals = locals

	if len(closures) > 0 {
		bc.Subfunctions = make([]*Bytecode, len(closures))
		for _, cc := range closures {
			curr := cc.inst
			subfn := &Bytecode{Globals: bc.Globals, Parent: bc}
			bc.Subfunctions[curr.IntVal] = subfn
			subfn.DebugInfo.Name = curr.Symbol

			var params []string
			for param := curr.ArgList.First; param != nil; param = param.Next {
				if param.Op != opcode.CLOSURE_PARAM {
					panic("compiler: function formal is not a CLOSURE_PARAM")
				}
				if param.BoundBy != param {
					panic("compiler: CLOSURE_PARAM must be its own binder")
				}
				param.IntVal = uint16(subfn.NClosures)
				subfn.NClosures++
				param.Compiled = subfn
				params = append(params, param.Symbol)
			}
			subfn.DebugInfo.Params = params

			body := curr.SubFn
			curr.SubFn = ir.Noop()
			errs = append(errs, compileInto(subfn, body)...)
		}
	}

	codelen := st.pos
	if len(errs) > 0 {
		return errs
	}

	code := make([]uint16, codelen)
	pos := 0
	var constants []value.Value
	maxvar := -1

	for curr := b.First; curr != nil; curr = curr.Next {
		desc := opcode.Describe(curr.Op)
		if desc.Length == 0 {
			continue
		}
		code[pos] = uint16(curr.Op)
		pos++

		switch {
		case curr.Op == opcode.CALL_BUILTIN:
			code[pos] = curr.IntVal
			pos++
			code[pos] = curr.BoundBy.IntVal
			pos++
		case curr.Op == opcode.CALL_JQ:
			code[pos] = curr.IntVal
			pos++
			code[pos] = bc.nestingLevel(mustCompiled(curr.BoundBy))
			pos++
			slot := curr.BoundBy.IntVal
			if curr.BoundBy.Op == opcode.CLOSURE_CREATE {
				slot |= NewClosureBit
			}
			code[pos] = slot
			pos++
			for arg := curr.ArgList.First; arg != nil; arg = arg.Next {
				if arg.Op != opcode.CLOSURE_REF || arg.BoundBy.Op != opcode.CLOSURE_CREATE {
					panic("compiler: call argument must be a CLOSURE_REF to a CLOSURE_CREATE")
				}
				code[pos] = bc.nestingLevel(mustCompiled(arg.BoundBy))
				pos++
				code[pos] = arg.BoundBy.IntVal | NewClosureBit
				pos++
			}
		case desc.Flags.Has(opcode.HasConstant):
			code[pos] = uint16(len(constants))
			pos++
			constants = append(constants, curr.Const)
		case desc.Flags.Has(opcode.HasVariable):
			code[pos] = bc.nestingLevel(mustCompiled(curr.BoundBy))
			pos++
			v := curr.BoundBy.IntVal
			code[pos] = v
			pos++
			if int(v) > maxvar {
				maxvar = int(v)
			}
		case desc.Flags.Has(opcode.HasBranch):
			if curr.Target.BytecodePos <= pos {
				panic("compiler: backward or unresolved branch target")
			}
			code[pos] = uint16(curr.Target.BytecodePos - (pos + 1))
			pos++
		case desc.Length > 1:
			panic("compiler: codegen not implemented for this opcode")
		}
	}

	bc.Code = code
	bc.Constants = constants
	bc.NLocals = maxvar + 2
	return errs
}

func mustCompiled(i *ir.Inst) *Bytecode {
	bc, ok := i.Compiled.(*Bytecode)
	if !ok {
		panic("compiler: reference's binder was never compiled")
	}
	return bc
}

// BlockCompile is the entry point: it allocates the root Bytecode,
// preallocates the shared C-function table (sized via CountCfunctions),
// and lowers b. On any error the partial bytecode is discarded and a nil
// Bytecode is returned alongside the error.
//
// The returned error, if non-nil, is guaranteed to be a scanner.ErrorList,
// matching the way lang/resolver.ResolveFiles reports diagnostics.
func BlockCompile(b ir.Block) (*Bytecode, error) {
	root := &Bytecode{Globals: &SymbolTable{}}
	ncfunc := CountCfunctions(b)

	errs := compileInto(root, b)
	if len(root.Globals.CFunctions) != ncfunc {
		panic("compiler: host-function table count mismatch between scan and compile")
	}
	errs.Sort()
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return root, nil
}
