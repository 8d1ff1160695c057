package maincmd

import (
	"fmt"
	"sort"

	"github.com/mna/jqc/lang/binder"
	"github.com/mna/jqc/lang/cfunc"
	"github.com/mna/jqc/lang/compiler"
	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
)

// sample builds one hand-authored IR program, standing in for what a real
// front end would hand the compiler after parsing and name resolution —
// this module has no source parser of its own.
type sample func() ir.Block

var samples = map[string]sample{
	"identity": sampleIdentity,
	"reduce":   sampleReduce,
	"foreach":  sampleForeach,
	"recurse":  sampleRecurse,
	"import":   sampleImport,
}

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sampleIdentity is roughly `def id(x): x; id(.)`. The call is prefixed
// with a TOP marker so DropUnreferenced treats it as the main expression
// rather than a dead definition: without TOP, every instruction in body
// is fair game for elimination, main expression included.
func sampleIdentity() ir.Block {
	fn := ir.Function("id", ir.JoinAll(ir.Param("x")), ir.Single(opcode.DUP))
	call := ir.Call("id", ir.Lambda(ir.Single(opcode.DUP)))
	main := ir.JoinAll(ir.Single(opcode.TOP), call)
	return ir.Bind(fn, main, opcode.IsCallPseudo)
}

// sampleReduce is roughly `reduce .[] as $x (null; . + $x)`, with a stand-in
// `+` represented as a single DUP since there is no arithmetic opcode in
// this module's scope. It has no top-level definitions to prune, but the
// TOP marker is still required: with none, DropUnreferenced would see the
// whole loop as dead code and strip it down to nothing.
func sampleReduce() ir.Block {
	reduce := ir.Reduce("x",
		ir.Single(opcode.DUP),
		ir.Const(value.Null),
		ir.Single(opcode.DUP),
	)
	return ir.JoinAll(ir.Single(opcode.TOP), reduce)
}

// sampleForeach is roughly `foreach .[] as $x (null; . ; $x)`, wired to a host
// `_equal` builtin and a `break` function the way a desugared foreach/break
// pair is bound to its enclosing try/catch. TOP sits between the two
// definitions and the loop itself, so DropUnreferenced can still prune an
// unreferenced definition while leaving the main expression untouched.
func sampleForeach() ir.Block {
	d := &cfunc.Descriptor{Name: "_equal", Nargs: 3}
	loop := ir.Foreach("x",
		ir.Single(opcode.DUP),
		ir.Const(value.Null),
		ir.Single(opcode.DUP),
		ir.Single(opcode.DUP),
	)
	body := ir.JoinAll(ir.Single(opcode.TOP), loop)
	body = ir.CBinding([]*cfunc.Descriptor{d}, body)

	breakFn := ir.Function("break", ir.Noop(), ir.Single(opcode.BACKTRACK))
	return ir.Bind(breakFn, body, opcode.IsCallPseudo)
}

// sampleRecurse is roughly `def f: f; f`, a self-recursive function,
// exercising nesting_level resolution of a reference to one's own binder.
func sampleRecurse() ir.Block {
	fn := ir.Function("f", ir.Noop(), ir.Call("f", ir.Noop()))
	call := ir.Call("f", ir.Noop())
	main := ir.JoinAll(ir.Single(opcode.TOP), call)
	return ir.Bind(fn, main, opcode.IsCallPseudo)
}

// sampleImport is roughly `import "mymodule" as m; .`, carrying no explicit
// search path so buildSample's caller fills it from Config.SearchPath. TOP
// leads the block because TakeImports only drains DEPS instructions found
// after a leading TOP (or at the very front), and re-prepends it once done
// so the later DropUnreferenced pass leaves the main "." untouched.
func sampleImport() ir.Block {
	return ir.JoinAll(ir.Single(opcode.TOP), ir.Import("mymodule", "m", ""), ir.Single(opcode.DUP))
}

// buildSample compiles the named sample program, resolving any leading
// imports against cfg's default search path the way a real driver would
// fill in an unspecified `search` option before handing the program to the
// binder/lowering pipeline.
func buildSample(name string, cfg Config) (*compiler.Bytecode, []binder.Import, error) {
	build, ok := samples[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown sample program: %s (see 'list')", name)
	}
	body := build()
	imports := binder.TakeImports(&body)
	for i := range imports {
		if imports[i].Search == "" {
			imports[i].Search = cfg.SearchPath
		}
	}
	body = binder.DropUnreferenced(body)
	bc, err := compiler.BlockCompile(body)
	return bc, imports, err
}
