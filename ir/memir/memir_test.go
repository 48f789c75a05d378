package memir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/ir/memir"
)

func TestProgram_AddOpWiresOperandUses(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 2, 2)
	x := prog.AddValue(typ)

	op := prog.AddOp("relu", []*memir.Value{x}, []ir.Type{typ}, nil)

	require.Equal(t, 1, x.UseCount())
	assert.Equal(t, op, x.Uses()[0].Op)
	assert.Equal(t, 0, x.Uses()[0].OperandIndex)
	assert.Equal(t, "relu", op.OpcodeName())
	assert.Equal(t, 1, op.NumOperands())
	assert.Equal(t, 1, op.NumResults())
	assert.Nil(t, x.DefiningOp())
	assert.Same(t, op, op.Result(0).DefiningOp())
}

func TestProgram_OpsFiltersErased(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.I64, 1)
	x := prog.AddValue(typ)
	op1 := prog.AddOp("a", []*memir.Value{x}, []ir.Type{typ}, nil)
	prog.AddOp("b", []*memir.Value{op1.Result(0).(*memir.Value)}, []ir.Type{typ}, nil)

	rw := memir.NewRewriter(prog)
	rw.Erase(prog.Ops()[1]) // erase "b" first, has no downstream uses
	rw.Erase(prog.Ops()[0]) // now "a" is safe to erase too

	assert.Empty(t, prog.Ops())
}

func TestRewriter_ReplaceAllUsesMovesEveryOperandSlot(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32)
	a := prog.AddValue(typ)
	b := prog.AddValue(typ)
	op1 := prog.AddOp("use", []*memir.Value{a}, nil, nil)
	op2 := prog.AddOp("use", []*memir.Value{a}, nil, nil)

	rw := memir.NewRewriter(prog)
	rw.ReplaceAllUses(a, b)

	assert.Equal(t, 0, a.UseCount())
	require.Equal(t, 2, b.UseCount())
	assert.Same(t, b, op1.Operand(0))
	assert.Same(t, b, op2.Operand(0))
}

func TestRewriter_ReplaceAllUsesSameValueIsNoop(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32)
	a := prog.AddValue(typ)
	prog.AddOp("use", []*memir.Value{a}, nil, nil)

	rw := memir.NewRewriter(prog)
	rw.ReplaceAllUses(a, a)

	assert.Equal(t, 1, a.UseCount())
}

func TestRewriter_CreateRegistersResultValues(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 3)
	a := prog.AddValue(typ)

	rw := memir.NewRewriter(prog)
	h := rw.Create("add", []ir.ValueHandle{a}, []ir.Type{typ}, map[string]string{"k": "v"})

	require.Equal(t, 1, h.NumResults())
	assert.Equal(t, typ.Shape(), h.Result(0).TypeOf().Shape())

	concreteOp := h.(*memir.Op)
	v, ok := concreteOp.Attr("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	_, ok = concreteOp.Attr("missing")
	assert.False(t, ok)
}

func TestProgram_StringRendersDeterministically(t *testing.T) {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 1)
	a := prog.AddValue(typ)
	prog.AddOp("noop", nil, nil, nil)
	prog.AddOp("use", []*memir.Value{a}, nil, nil)

	s := prog.String()
	assert.Contains(t, s, "noop(")
	assert.Contains(t, s, "use(")
}
