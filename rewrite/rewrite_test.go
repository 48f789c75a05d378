package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/ir/memir"
	"github.com/katalvlaran/drrengine/match"
	"github.com/katalvlaran/drrengine/pattern"
	"github.com/katalvlaran/drrengine/rewrite"
)

// buildDoubleTransposeRule returns the source pattern (y=transpose(x),
// z=transpose(y)) and a result pattern that erases both ops and aliases z
// straight to x — an identity-fusion rewrite.
func buildDoubleTransposeRule(t *testing.T) (*pattern.SourcePatternGraph, *pattern.ResultPatternGraph) {
	t.Helper()
	sb := pattern.NewGraphBuilder()
	sb.Input("x")
	sb.Op("transpose", []string{"x"}, []string{"y"}, map[string]string{"perm": "1,0"})
	sb.Op("transpose", []string{"y"}, []string{"z"}, map[string]string{"perm": "1,0"})
	sb.Output("z")
	src, err := sb.BuildSource(0)
	require.NoError(t, err)

	rb := pattern.NewGraphBuilder()
	rb.Input("x")
	rb.Output("x")
	res, err := rb.BuildResult(map[string]string{"z": "x"})
	require.NoError(t, err)

	return src, res
}

func TestApply_DoubleTransposeFusionElidesBothOps(t *testing.T) {
	src, res := buildDoubleTransposeRule(t)

	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4, 4)
	x := prog.AddValue(typ)
	op1 := prog.AddOp("transpose", []*memir.Value{x}, []ir.Type{typ}, map[string]string{"perm": "1,0"})
	op2 := prog.AddOp("transpose", []*memir.Value{op1.Result(0).(*memir.Value)}, []ir.Type{typ}, map[string]string{"perm": "1,0"})
	useOp := prog.AddOp("use", []*memir.Value{op2.Result(0).(*memir.Value)}, nil, nil)

	ok, ctx := match.Match(src, op1)
	require.True(t, ok)

	rewriter := memir.NewRewriter(prog)
	_, diag, err := rewrite.Apply(src, res, ctx, rewriter)
	require.NoError(t, err)
	assert.Empty(t, diag.UncoveredOutputs)

	live := prog.Ops()
	require.Len(t, live, 1, "both transposes should be erased, leaving only use")
	assert.Equal(t, "use", live[0].OpcodeName())
	assert.Same(t, x, live[0].Operand(0))
	assert.Equal(t, 1, x.UseCount())
	_ = useOp
}

func TestApply_UncoveredOutputIsDiagnosedNotFatal(t *testing.T) {
	// Source has an extra output the result pattern never covers.
	sb := pattern.NewGraphBuilder()
	sb.Input("x")
	sb.Op("split", []string{"x"}, []string{"a", "b"}, nil)
	sb.Output("a")
	sb.Output("b")
	src, err := sb.BuildSource(0)
	require.NoError(t, err)

	rb := pattern.NewGraphBuilder()
	rb.Input("x")
	rb.Output("x")
	res, err := rb.BuildResult(map[string]string{"a": "x"})
	require.NoError(t, err)

	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4)
	x := prog.AddValue(typ)
	splitOp := prog.AddOp("split", []*memir.Value{x}, []ir.Type{typ, typ}, nil)
	prog.AddOp("use", []*memir.Value{splitOp.Result(0).(*memir.Value)}, nil, nil)
	// b (result 1) has zero uses, so erasing split is still legal.

	ok, ctx := match.Match(src, splitOp)
	require.True(t, ok)

	rewriter := memir.NewRewriter(prog)
	_, diag, err := rewrite.Apply(src, res, ctx, rewriter)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, diag.UncoveredOutputs)
}

func TestApply_MissingResultInputBindingIsAuthoringError(t *testing.T) {
	sb := pattern.NewGraphBuilder()
	sb.Input("x")
	sb.Op("relu", []string{"x"}, []string{"y"}, nil)
	sb.Output("y")
	src, err := sb.BuildSource(0)
	require.NoError(t, err)

	rb := pattern.NewGraphBuilder()
	rb.Input("never_bound") // not a source tensor name: seedResultInputs must fail
	rb.Output("never_bound")
	res, err := rb.BuildResult(nil)
	require.NoError(t, err)

	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4)
	x := prog.AddValue(typ)
	reluOp := prog.AddOp("relu", []*memir.Value{x}, []ir.Type{typ}, nil)

	ok, ctx := match.Match(src, reluOp)
	require.True(t, ok)

	rewriter := memir.NewRewriter(prog)
	_, _, err = rewrite.Apply(src, res, ctx, rewriter)
	var ae *rewrite.AuthoringError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "seed-inputs", ae.Phase)
}
