package maincmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/jqc/lang/compiler"
)

// List prints the names of the available sample programs.
func (c *Cmd) List(_ context.Context, stdio mainer.Stdio, _ []string) error {
	for _, name := range sampleNames() {
		fmt.Fprintln(stdio.Stdout, name)
	}
	return nil
}

// Disasm builds and disassembles each named sample program in turn. The
// default search path for any unresolved import is read from the
// environment via Config.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	var failed []string
	for i, name := range args {
		if i > 0 {
			fmt.Fprintln(stdio.Stdout)
		}
		bc, imports, err := buildSample(name, cfg)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = append(failed, name)
			continue
		}
		for _, imp := range imports {
			fmt.Fprintf(stdio.Stdout, "; import %q as %q (search=%q)\n", imp.Name, imp.As, imp.Search)
		}
		fmt.Fprint(stdio.Stdout, compiler.Disassemble(bc))
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to compile: %s", strings.Join(failed, ", "))
	}
	return nil
}

// Dump builds each named sample program and renders it as YAML, the same
// data Disasm prints as text but structured for diffing in golden tests.
func (c *Cmd) Dump(_ context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	var failed []string
	for _, name := range args {
		bc, _, err := buildSample(name, cfg)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = append(failed, name)
			continue
		}
		out, err := compiler.DumpYAML(bc)
		if err != nil {
			return fmt.Errorf("%s: marshaling to yaml: %w", name, err)
		}
		fmt.Fprintf(stdio.Stdout, "# %s\n%s", name, out)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to compile: %s", strings.Join(failed, ", "))
	}
	return nil
}
