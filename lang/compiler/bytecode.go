// Package compiler lowers a bound IR program (lang/ir) into a tree of
// bytecode records: arity-checking and expansion of call sites, local
// variable and subfunction index assignment, nesting-level resolution
// for upvalue access, constant interning, and forward-branch offset
// resolution. Grounded throughout on compile.c's compile/block_compile,
// adapted the way lang/compiler/compiler.go structures its own lowering
// pass as a stateful struct walking the IR once.
package compiler

import (
	"golang.org/x/exp/slices"

	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/value"
)

// SymbolTable is the root-shared table of host C-function descriptors,
// growable during the root Compile call and referenced by pointer from
// every subfunction's Bytecode.
type SymbolTable struct {
	CFunctions []*cfunc.Descriptor
	CFuncNames []string
}

// add registers d and returns its index in the table, reusing an existing
// slot if the same descriptor was already registered by an earlier
// CBinding (common when several imported modules bind the same host
// function).
func (st *SymbolTable) add(d *cfunc.Descriptor) int {
	if idx := slices.Index(st.CFunctions, d); idx >= 0 {
		return idx
	}
	idx := len(st.CFunctions)
	st.CFunctions = append(st.CFunctions, d)
	st.CFuncNames = append(st.CFuncNames, d.Name)
	return idx
}

// DebugInfo carries names addressable by slot index, for diagnostics and
// disassembly.
type DebugInfo struct {
	Name   string
	Params []string
	Locals []string
}

// Bytecode is one subfunction's compiled record: a 16-bit code vector, a
// constant pool, a count of local slots, and a tree of nested
// subfunctions sharing the root's SymbolTable and constant-pool policy.
type Bytecode struct {
	Code         []uint16
	Constants    []value.Value
	NLocals      int
	Subfunctions []*Bytecode
	Parent       *Bytecode
	Globals      *SymbolTable
	NClosures    int
	DebugInfo    DebugInfo
}

// nestingLevel returns how many Parent hops are needed to reach the
// bytecode record that owns target (target.Compiled), starting at bc.
// Zero means target is local to bc; it panics if target is neither bc nor
// one of its ancestors, a programmer error (callers obtain target through
// mustCompiled, which panics first for a binder that was never compiled).
func (bc *Bytecode) nestingLevel(target *Bytecode) uint16 {
	var level uint16
	cur := bc
	for cur != nil && cur != target {
		level++
		cur = cur.Parent
	}
	if cur == nil {
		panic("compiler: nesting_level target is not an ancestor of the current bytecode")
	}
	return level
}
