package drrset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/drrengine/drr"
	"github.com/katalvlaran/drrengine/drrset"
	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/ir/memir"
	"github.com/katalvlaran/drrengine/pattern"
)

// doubleTransposeRule builds the same y=transpose(x); z=transpose(y) -> x
// fusion used across the match/rewrite/drr tests.
func doubleTransposeRule(t *testing.T, benefit int) *drr.Rule {
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

	return drr.New(src, res, benefit)
}

func TestDrive_AppliesUntilFixedPoint(t *testing.T) {
	// Four chained transposes: ((x^T)^T)^T)^T should collapse to x after two
	// applications of the fusion rule, then reach a fixed point.
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4, 4)
	x := prog.AddValue(typ)
	cur := x
	for i := 0; i < 4; i++ {
		op := prog.AddOp("transpose", []*memir.Value{cur}, []ir.Type{typ}, map[string]string{"perm": "1,0"})
		cur = op.Result(0).(*memir.Value)
	}
	prog.AddOp("use", []*memir.Value{cur}, nil, nil)

	rs := drrset.New()
	rs.Register(doubleTransposeRule(t, 1))

	rewriter := memir.NewRewriter(prog)
	n, err := rs.Drive(prog, rewriter)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	live := prog.Ops()
	require.Len(t, live, 1)
	assert.Equal(t, "use", live[0].OpcodeName())
	assert.Same(t, x, live[0].Operand(0))
}

func TestDrive_NoMatchingRuleIsImmediateFixedPoint(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4)
	x := prog.AddValue(typ)
	prog.AddOp("relu", []*memir.Value{x}, []ir.Type{typ}, nil)

	rs := drrset.New()
	rs.Register(doubleTransposeRule(t, 1))

	rewriter := memir.NewRewriter(prog)
	n, err := rs.Drive(prog, rewriter)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, prog.Ops(), 1)
}

func TestDrive_IterationLimitExhaustedReturnsError(t *testing.T) {
	// A pathological rule whose result pattern re-creates its own source
	// pattern's anchor opcode, so the driver can never reach a fixed point.
	sb := pattern.NewGraphBuilder()
	sb.Input("x")
	sb.Op("noop", []string{"x"}, []string{"y"}, nil)
	sb.Output("y")
	src, err := sb.BuildSource(0)
	require.NoError(t, err)

	typ := memir.NewType(memir.F32, 4)
	rb := pattern.NewGraphBuilder()
	rb.Input("x")
	rb.TypedOp("noop", []string{"x"}, []string{"y"}, []ir.Type{typ}, nil)
	rb.Output("y")
	res, err := rb.BuildResult(nil)
	require.NoError(t, err)

	rule := drr.New(src, res, 1)

	prog := memir.NewProgram()
	x := prog.AddValue(typ)
	prog.AddOp("noop", []*memir.Value{x}, []ir.Type{typ}, nil)

	rs := drrset.New(drrset.WithIterationLimit(3))
	rs.Register(rule)

	rewriter := memir.NewRewriter(prog)
	n, err := rs.Drive(prog, rewriter)
	assert.ErrorIs(t, err, drrset.ErrFixedPointNotReached)
	assert.Equal(t, 3, n)
}

func TestRuleSet_RegisterOrdersByDescendingBenefit(t *testing.T) {
	// Two rules anchored at the same opcode; only the higher-benefit one
	// should fire when both could match the same occurrence. We distinguish
	// them by giving the low-benefit rule a result pattern that would be
	// trivially detectable if it fired instead (a different opcode name).
	sb := pattern.NewGraphBuilder()
	sb.Input("x")
	sb.Op("double", []string{"x"}, []string{"y"}, nil)
	sb.Output("y")
	src, err := sb.BuildSource(0)
	require.NoError(t, err)

	typ := memir.NewType(memir.F32, 4)

	rbHigh := pattern.NewGraphBuilder()
	rbHigh.Input("x")
	rbHigh.TypedOp("winner", []string{"x"}, []string{"y"}, []ir.Type{typ}, nil)
	rbHigh.Output("y")
	resHigh, err := rbHigh.BuildResult(nil)
	require.NoError(t, err)

	rbLow := pattern.NewGraphBuilder()
	rbLow.Input("x")
	rbLow.TypedOp("loser", []string{"x"}, []string{"y"}, []ir.Type{typ}, nil)
	rbLow.Output("y")
	resLow, err := rbLow.BuildResult(nil)
	require.NoError(t, err)

	rs := drrset.New()
	rs.Register(drr.New(src, resLow, 1))
	rs.Register(drr.New(src, resHigh, 100))

	prog := memir.NewProgram()
	x := prog.AddValue(typ)
	prog.AddOp("double", []*memir.Value{x}, []ir.Type{typ}, nil)

	rewriter := memir.NewRewriter(prog)
	n, err := rs.Drive(prog, rewriter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	live := prog.Ops()
	require.Len(t, live, 1)
	assert.Equal(t, "winner", live[0].OpcodeName())
}
