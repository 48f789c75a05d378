package memir

import "github.com/katalvlaran/drrengine/ir"

// Rewriter is the memir implementation of ir.Rewriter. It is bound to one
// Program and is the only path by which rewrite.Apply mutates it.
type Rewriter struct {
	prog *Program
}

// NewRewriter returns a Rewriter bound to prog.
func NewRewriter(prog *Program) *Rewriter {
	return &Rewriter{prog: prog}
}

// Create implements ir.Rewriter.
func (rw *Rewriter) Create(opcode string, operands []ir.ValueHandle, resultTypes []ir.Type, attrs map[string]string) ir.OpHandle {
	vals := make([]*Value, len(operands))
	for i, o := range operands {
		vals[i] = o.(*Value)
	}
	return rw.prog.AddOp(opcode, vals, resultTypes, attrs)
}

// ReplaceAllUses implements ir.Rewriter: every operand slot using old is
// rewritten to use new instead, and old's use-list is cleared.
func (rw *Rewriter) ReplaceAllUses(old, new ir.ValueHandle) {
	oldV := old.(*Value)
	newV := new.(*Value)
	if oldV == newV {
		return
	}
	for _, u := range oldV.uses {
		u.op.operands[u.idx] = newV
		newV.addUse(u.op, u.idx)
	}
	oldV.uses = nil
}

// Erase implements ir.Rewriter: marks op erased and detaches it from every
// value it used as an operand (so that value's use-count drops). The
// applier guarantees this is only called once an op's own results have zero
// uses remaining.
func (rw *Rewriter) Erase(op ir.OpHandle) {
	o := op.(*Op)
	o.erased = true
	for i, operand := range o.operands {
		operand.removeUse(o, i)
	}
}
