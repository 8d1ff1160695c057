// Package opcode is the external opcode catalogue the lowering pass
// (lang/compiler) and the IR generators (lang/ir) consult: for each opcode,
// its emitted bytecode length in 16-bit words (0 for pseudo-ops that vanish
// before emission) and a flag set describing what immediate it carries and
// whether it participates in name binding.
package opcode

import "fmt"

// Op identifies one instruction opcode.
type Op uint8

//nolint:revive
const (
	LOADK Op = iota
	DUP
	POP
	SUBEXP_BEGIN
	SUBEXP_END
	APPEND
	STOREV
	LOADV
	LOADVN
	JUMP
	JUMP_F
	FORK
	FORK_OPT
	BACKTRACK
	RET
	TOP
	DEPS
	CALL_JQ
	CALL_BUILTIN
	CLOSURE_CREATE
	CLOSURE_CREATE_C
	CLOSURE_PARAM
	CLOSURE_REF

	opMax = CLOSURE_REF
)

// Flags describes the immediates and binding role of an opcode.
type Flags uint8

const (
	HasConstant Flags = 1 << iota
	HasVariable
	HasBranch
	HasBinding
	IsCallPseudo
)

// A Descriptor is the static, per-opcode information the lowering pass
// needs: how many 16-bit words the instruction occupies (not counting the
// variable-length tail CALL_JQ appends for its argument list — see
// compileInto in lang/compiler), and its flag set.
type Descriptor struct {
	Length int
	Flags  Flags
}

// descriptors is the opcode catalogue. Lengths and flags are grounded on
// jq's own bytecode.h (see _examples/original_source/compile.c for the
// consuming code): CLOSURE_CREATE, CLOSURE_CREATE_C, CLOSURE_PARAM and
// CLOSURE_REF never reach the emitted stream — their only trace in the
// final bytecode is the (nesting_level, slot) pair a referencing CALL_JQ or
// CALL_BUILTIN emits, so they are 0-length pseudo-ops, along with TOP and
// DEPS, which emit nothing even when they reach lowering (block_take_imports
// removes leading DEPS but puts a leading TOP back).
var descriptors = [...]Descriptor{
	LOADK:            {Length: 2, Flags: HasConstant},
	DUP:              {Length: 1},
	POP:              {Length: 1},
	SUBEXP_BEGIN:     {Length: 1},
	SUBEXP_END:       {Length: 1},
	APPEND:           {Length: 3, Flags: HasVariable | HasBinding},
	STOREV:           {Length: 3, Flags: HasVariable | HasBinding},
	LOADV:            {Length: 3, Flags: HasVariable | HasBinding},
	LOADVN:           {Length: 3, Flags: HasVariable | HasBinding},
	JUMP:             {Length: 2, Flags: HasBranch},
	JUMP_F:           {Length: 2, Flags: HasBranch},
	FORK:             {Length: 2, Flags: HasBranch},
	FORK_OPT:         {Length: 2, Flags: HasBranch},
	BACKTRACK:        {Length: 1},
	RET:              {Length: 1},
	TOP:              {Length: 0},
	DEPS:             {Length: 0},
	CALL_JQ:          {Length: 4, Flags: HasBinding | IsCallPseudo},
	CALL_BUILTIN:     {Length: 3},
	CLOSURE_CREATE:   {Length: 0, Flags: HasBinding | IsCallPseudo},
	CLOSURE_CREATE_C: {Length: 0, Flags: HasBinding | IsCallPseudo},
	CLOSURE_PARAM:    {Length: 0, Flags: HasBinding | IsCallPseudo},
	CLOSURE_REF:      {Length: 0, Flags: IsCallPseudo},
}

var names = [...]string{
	LOADK:            "LOADK",
	DUP:              "DUP",
	POP:              "POP",
	SUBEXP_BEGIN:     "SUBEXP_BEGIN",
	SUBEXP_END:       "SUBEXP_END",
	APPEND:           "APPEND",
	STOREV:           "STOREV",
	LOADV:            "LOADV",
	LOADVN:           "LOADVN",
	JUMP:             "JUMP",
	JUMP_F:           "JUMP_F",
	FORK:             "FORK",
	FORK_OPT:         "FORK_OPT",
	BACKTRACK:        "BACKTRACK",
	RET:              "RET",
	TOP:              "TOP",
	DEPS:             "DEPS",
	CALL_JQ:          "CALL_JQ",
	CALL_BUILTIN:     "CALL_BUILTIN",
	CLOSURE_CREATE:   "CLOSURE_CREATE",
	CLOSURE_CREATE_C: "CLOSURE_CREATE_C",
	CLOSURE_PARAM:    "CLOSURE_PARAM",
	CLOSURE_REF:      "CLOSURE_REF",
}

// Describe returns op's static descriptor. It panics for an out-of-range
// opcode, which can only happen from a programmer error (a malformed
// instruction), matching compile.c's use of assert rather than a user
// error path for this case.
func Describe(op Op) Descriptor {
	if op > opMax {
		panic(fmt.Sprintf("opcode: invalid opcode %d", op))
	}
	return descriptors[op]
}

// Has reports whether f has all the bits set in want.
func (f Flags) Has(want Flags) bool { return f&want == want }

func (op Op) String() string {
	if op > opMax {
		return fmt.Sprintf("opcode(%d)", op)
	}
	return names[op]
}
