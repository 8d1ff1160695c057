package compiler

import (
	"gopkg.in/yaml.v3"
)

// yamlBytecode is the YAML projection of a Bytecode record: a flat
// instruction listing rather than the packed uint16 vector, so a dump is
// reviewable (and diffable) without decoding it back through Disassemble.
type yamlBytecode struct {
	Name         string         `yaml:"name"`
	NLocals      int            `yaml:"nlocals"`
	NClosures    int            `yaml:"nclosures"`
	Params       []string       `yaml:"params,omitempty"`
	Locals       []string       `yaml:"locals,omitempty"`
	Constants    []string       `yaml:"constants,omitempty"`
	Code         []string       `yaml:"code"`
	Subfunctions []yamlBytecode `yaml:"subfunctions,omitempty"`
}

func toYAMLBytecode(bc *Bytecode) yamlBytecode {
	name := bc.DebugInfo.Name
	if name == "" {
		name = "<top-level>"
	}

	y := yamlBytecode{
		Name:      name,
		NLocals:   bc.NLocals,
		NClosures: bc.NClosures,
		Params:    bc.DebugInfo.Params,
		Locals:    bc.DebugInfo.Locals,
	}
	for _, c := range bc.Constants {
		y.Constants = append(y.Constants, c.String())
	}
	for _, line := range disasmLines(bc) {
		y.Code = append(y.Code, line)
	}
	for _, sub := range bc.Subfunctions {
		y.Subfunctions = append(y.Subfunctions, toYAMLBytecode(sub))
	}
	return y
}

// DumpYAML renders bc as a YAML document, a human-readable and
// golden-file-friendly alternative to Disassemble's text listing.
func DumpYAML(bc *Bytecode) ([]byte, error) {
	return yaml.Marshal(toYAMLBytecode(bc))
}
