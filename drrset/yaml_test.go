package drrset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/drrengine/drrset"
	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/ir/memir"
)

const doubleTransposeYAML = `
rules:
  - name: fuse-double-transpose
    benefit: 10
    anchor: 0
    source:
      inputs: [x]
      ops:
        - opcode: transpose
          inputs: [x]
          outputs: [y]
        - opcode: transpose
          inputs: [y]
          outputs: [z]
      outputs: [z]
    result:
      inputs: [x]
      outputs: [x]
      assign:
        z: x
`

func writeTempYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRuleSetSpec_Valid(t *testing.T) {
	path := writeTempYAML(t, doubleTransposeYAML)
	spec, err := drrset.LoadRuleSetSpec(path)
	require.NoError(t, err)
	require.Len(t, spec.Rules, 1)
	assert.Equal(t, "fuse-double-transpose", spec.Rules[0].Name)
	assert.Equal(t, 10, spec.Rules[0].Benefit)
}

func TestLoadRuleSetSpec_UnknownFieldRejected(t *testing.T) {
	path := writeTempYAML(t, doubleTransposeYAML+"\nbogus_top_level_field: true\n")
	_, err := drrset.LoadRuleSetSpec(path)
	assert.Error(t, err)
}

func TestLoadRuleSetSpec_EmptyRulesRejected(t *testing.T) {
	path := writeTempYAML(t, "rules: []\n")
	_, err := drrset.LoadRuleSetSpec(path)
	assert.Error(t, err)
}

func TestLoadRuleSetSpec_MissingResultTypeRejected(t *testing.T) {
	path := writeTempYAML(t, `
rules:
  - name: bad
    benefit: 1
    anchor: 0
    source:
      inputs: [x]
      ops:
        - opcode: relu
          inputs: [x]
          outputs: [y]
      outputs: [y]
    result:
      inputs: [x]
      outputs: [y]
      ops:
        - opcode: relu
          inputs: [x]
          outputs: [y]
`)
	_, err := drrset.LoadRuleSetSpec(path)
	assert.Error(t, err)
}

func TestBuild_CompilesAndDrives(t *testing.T) {
	path := writeTempYAML(t, doubleTransposeYAML)
	spec, err := drrset.LoadRuleSetSpec(path)
	require.NoError(t, err)

	rs, err := drrset.Build(spec, nil)
	require.NoError(t, err)

	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4, 4)
	x := prog.AddValue(typ)
	op1 := prog.AddOp("transpose", []*memir.Value{x}, []ir.Type{typ}, nil)
	op2 := prog.AddOp("transpose", []*memir.Value{op1.Result(0).(*memir.Value)}, []ir.Type{typ}, nil)
	prog.AddOp("use", []*memir.Value{op2.Result(0).(*memir.Value)}, nil, nil)

	rewriter := memir.NewRewriter(prog)
	n, err := rs.Drive(prog, rewriter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	live := prog.Ops()
	require.Len(t, live, 1)
	assert.Equal(t, "use", live[0].OpcodeName())
	assert.Same(t, x, live[0].Operand(0))
}

func TestBuild_UnknownConstraintNameFails(t *testing.T) {
	path := writeTempYAML(t, `
rules:
  - name: needs-constraint
    benefit: 1
    anchor: 0
    source:
      inputs: [x]
      ops:
        - opcode: relu
          inputs: [x]
          outputs: [y]
      outputs: [y]
      constraint: does-not-exist
    result:
      inputs: [x]
      outputs: [y]
      assign:
        y: x
`)
	spec, err := drrset.LoadRuleSetSpec(path)
	require.NoError(t, err)

	_, err = drrset.Build(spec, drrset.Builtins{})
	assert.Error(t, err)
}
