package cli

import (
	"fmt"

	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/ir/memir"
)

// DemoPrograms names the built-in sample programs `drrc run` can drive a
// rule set against. drrc has no textual IR parser; these constructors are
// the stand-in "input file".
var DemoPrograms = map[string]func() *memir.Program{
	"transpose-chain": transposeChainDemo,
}

// transposeChainDemo builds x -T-> -T-> -T-> -T-> then a trailing use,
// exercising an identity-fusion rule across repeated applications.
func transposeChainDemo() *memir.Program {
	prog := memir.NewProgram()
	typ := memir.NewType(memir.F32, 4, 4)
	cur := prog.AddValue(typ)
	for i := 0; i < 4; i++ {
		op := prog.AddOp("transpose", []*memir.Value{cur}, []ir.Type{typ}, map[string]string{"perm": "1,0"})
		cur = op.Result(0).(*memir.Value)
	}
	prog.AddOp("use", []*memir.Value{cur}, nil, nil)
	return prog
}

func demoNames() []string {
	names := make([]string, 0, len(DemoPrograms))
	for name := range DemoPrograms {
		names = append(names, name)
	}
	return names
}

func lookupDemo(name string) (*memir.Program, error) {
	ctor, ok := DemoPrograms[name]
	if !ok {
		return nil, fmt.Errorf("unknown demo program %q (available: %v)", name, demoNames())
	}
	return ctor(), nil
}
