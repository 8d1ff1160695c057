package compiler_test

import (
	"testing"

	"github.com/mna/jqc/lang/compiler"
	"github.com/mna/jqc/lang/ir"
	"github.com/mna/jqc/lang/opcode"
	"github.com/mna/jqc/lang/value"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDumpYAMLRoundTripsStructure(t *testing.T) {
	fn := ir.Function("id", ir.JoinAll(ir.Param("x")), ir.Single(opcode.DUP))
	call := ir.Call("id", ir.Lambda(ir.Single(opcode.DUP)))
	body := ir.Bind(fn, call, opcode.IsCallPseudo)

	bc, err := compiler.BlockCompile(body)
	require.NoError(t, err)

	out, err := compiler.DumpYAML(bc)
	require.NoError(t, err)

	var doc struct {
		Name         string `yaml:"name"`
		Code         []string
		Subfunctions []struct {
			Name   string   `yaml:"name"`
			Params []string `yaml:"params"`
		} `yaml:"subfunctions"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	require.Equal(t, "<top-level>", doc.Name)
	require.NotEmpty(t, doc.Code)

	var found bool
	for _, sub := range doc.Subfunctions {
		if sub.Name == "id" {
			found = true
			require.Equal(t, []string{"x"}, sub.Params)
		}
	}
	require.True(t, found)
}

func TestDumpYAMLConstantsRenderAsStrings(t *testing.T) {
	bc, err := compiler.BlockCompile(ir.Const(value.Number(7)))
	require.NoError(t, err)

	out, err := compiler.DumpYAML(bc)
	require.NoError(t, err)
	require.Contains(t, string(out), "constants:")
	require.Contains(t, string(out), "\"7\"")
}
