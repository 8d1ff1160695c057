package compiler

import (
	"bytes"
	"fmt"

	"github.com/mna/jqc/lang/opcode"
)

// Disassemble writes bc and every nested subfunction as a human-readable
// instruction listing, walking the Bytecode tree directly rather than
// round-tripping through a textual assembler: this package has no
// assembler counterpart, only a reader.
func Disassemble(bc *Bytecode) string {
	var buf bytes.Buffer
	disasmFunc(&buf, bc)
	return buf.String()
}

func disasmFunc(buf *bytes.Buffer, bc *Bytecode) {
	name := bc.DebugInfo.Name
	if name == "" {
		name = "<top-level>"
	}
	fmt.Fprintf(buf, "function: %s nlocals=%d nclosures=%d\n", name, bc.NLocals, bc.NClosures)

	if len(bc.DebugInfo.Params) > 0 {
		buf.WriteString("\tparams:\n")
		for i, p := range bc.DebugInfo.Params {
			fmt.Fprintf(buf, "\t\t%s\t# %03d\n", p, i)
		}
	}
	if len(bc.DebugInfo.Locals) > 0 {
		buf.WriteString("\tlocals:\n")
		for i, l := range bc.DebugInfo.Locals {
			fmt.Fprintf(buf, "\t\t%s\t# %03d\n", l, i)
		}
	}
	if len(bc.Constants) > 0 {
		buf.WriteString("\tconstants:\n")
		for i, c := range bc.Constants {
			fmt.Fprintf(buf, "\t\t%s\t%s\t# %03d\n", c.Kind(), c.String(), i)
		}
	}

	buf.WriteString("\tcode:\n")
	for i, line := range disasmLines(bc) {
		fmt.Fprintf(buf, "\t\t%s\t# %03d\n", line, i)
	}

	for _, sub := range bc.Subfunctions {
		buf.WriteString("\n")
		disasmFunc(buf, sub)
	}
}

// disasmLines decodes bc.Code into one formatted line per instruction,
// jump targets already translated from byte offsets to instruction
// indices. Shared by Disassemble and DumpYAML so both render instructions
// identically.
func disasmLines(bc *Bytecode) []string {
	addrToIndex := make(map[int]int)
	type decoded struct {
		addr int
		op   opcode.Op
		args []uint16
	}
	var insns []decoded

	pos := 0
	for pos < len(bc.Code) {
		op := opcode.Op(bc.Code[pos])
		addrToIndex[pos] = len(insns)
		desc := opcode.Describe(op)
		var args []uint16
		n := desc.Length - 1
		if op == opcode.CALL_JQ {
			// variable-length tail: argcount, nesting, slot, then a
			// (nesting, slot) pair per call argument.
			argcount := bc.Code[pos+1]
			n = 3 + int(argcount)*2
		}
		for i := 0; i < n; i++ {
			args = append(args, bc.Code[pos+1+i])
		}
		insns = append(insns, decoded{addr: pos, op: op, args: args})
		pos += 1 + n
	}

	lines := make([]string, len(insns))
	for i, ins := range insns {
		switch {
		case ins.op == opcode.JUMP || ins.op == opcode.JUMP_F || ins.op == opcode.FORK || ins.op == opcode.FORK_OPT:
			target := ins.addr + 1 + int(ins.args[0]) + 1
			lines[i] = fmt.Sprintf("%s %03d", ins.op, addrToIndex[target])
		case ins.op == opcode.LOADK:
			lines[i] = fmt.Sprintf("%s const[%d]", ins.op, ins.args[0])
		case ins.op == opcode.APPEND || ins.op == opcode.STOREV || ins.op == opcode.LOADV || ins.op == opcode.LOADVN:
			lines[i] = fmt.Sprintf("%s nest=%d slot=%d", ins.op, ins.args[0], ins.args[1])
		case ins.op == opcode.CALL_BUILTIN:
			lines[i] = fmt.Sprintf("%s nargs=%d cfunc=%d", ins.op, ins.args[0], ins.args[1])
		case ins.op == opcode.CALL_JQ:
			s := fmt.Sprintf("%s nargs=%d nest=%d slot=%d", ins.op, ins.args[0], ins.args[1], ins.args[2]&^NewClosureBit)
			for a := 3; a+1 < len(ins.args); a += 2 {
				s += fmt.Sprintf(" (nest=%d slot=%d)", ins.args[a], ins.args[a+1]&^NewClosureBit)
			}
			lines[i] = s
		default:
			lines[i] = ins.op.String()
		}
	}
	return lines
}
