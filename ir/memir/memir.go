// Package memir is a reference, in-memory implementation of the ir package's
// capability set. It exists to drive the match/rewrite core in tests and in
// cmd/drrc; it is not itself part of the DRR core.
//
// A Program owns a flat, insertion-ordered list of operations and their
// result values. Operands reference values by pointer. Mutation (Create,
// ReplaceAllUses, Erase) goes exclusively through a *Rewriter bound to the
// Program, mirroring the host/driver boundary the core assumes: the core
// never reaches into Program fields directly.
//
// Concurrency: a Program is owned by exactly one goroutine for the duration
// of a driver pass — the core requires exclusive access to the host IR for
// one match-and-rewrite call. muOps guards the operation list
// for the rare case a caller wants to inspect it (e.g. cmd/drrc printing)
// while a pass is not running; it is not held across Create/Erase calls made
// by the applier, which already runs single-threaded by contract.
package memir

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/katalvlaran/drrengine/ir"
)

// DType names the element type of a Value. memir treats dtypes as opaque
// strings compared for equality only; no type inference is performed.
type DType string

// Common dtypes used by the example programs and golden tests.
const (
	F32 DType = "f32"
	I64 DType = "i64"
	I1  DType = "i1"
)

// shapeDType is the concrete ir.Type memir attaches to every Value.
type shapeDType struct {
	shape []int64
	dtype string
}

func (s shapeDType) Shape() []int64 { return s.shape }
func (s shapeDType) Dtype() string  { return s.dtype }

// NewType builds an ir.Type from a shape and dtype.
func NewType(dtype DType, shape ...int64) ir.Type {
	return shapeDType{shape: append([]int64(nil), shape...), dtype: string(dtype)}
}

// Value is one SSA value: either the i'th result of a defining Op, or a
// block argument (Def == nil).
type Value struct {
	id  string
	typ ir.Type
	def *Op    // nil for block arguments
	idx int    // result index within def; meaningless when def == nil
	uses []use // operand slots referencing this value, insertion order
}

type use struct {
	op  *Op
	idx int
}

// ID is a stable, human-readable identifier minted at creation time.
func (v *Value) ID() string { return v.id }

// DefiningOp implements ir.ValueHandle.
func (v *Value) DefiningOp() ir.OpHandle {
	if v.def == nil {
		return nil
	}
	return v.def
}

// Uses implements ir.ValueHandle.
func (v *Value) Uses() []ir.Use {
	out := make([]ir.Use, 0, len(v.uses))
	for _, u := range v.uses {
		out = append(out, ir.Use{Op: u.op, OperandIndex: u.idx})
	}
	return out
}

// UseCount implements ir.ValueHandle.
func (v *Value) UseCount() int { return len(v.uses) }

// TypeOf implements ir.ValueHandle.
func (v *Value) TypeOf() ir.Type { return v.typ }

func (v *Value) addUse(op *Op, idx int) {
	v.uses = append(v.uses, use{op: op, idx: idx})
}

// removeUse drops the first matching (op, idx) use record, if present.
func (v *Value) removeUse(op *Op, idx int) {
	for i, u := range v.uses {
		if u.op == op && u.idx == idx {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

// Op is one operation in the program.
type Op struct {
	id       string
	opcode   string
	operands []*Value
	results  []*Value
	attrs    map[string]string
	erased   bool
}

// ID is a stable, human-readable identifier minted at creation time.
func (o *Op) ID() string { return o.id }

// OpcodeName implements ir.OpHandle.
func (o *Op) OpcodeName() string { return o.opcode }

// NumOperands implements ir.OpHandle.
func (o *Op) NumOperands() int { return len(o.operands) }

// NumResults implements ir.OpHandle.
func (o *Op) NumResults() int { return len(o.results) }

// Operand implements ir.OpHandle.
func (o *Op) Operand(i int) ir.ValueHandle { return o.operands[i] }

// Result implements ir.OpHandle.
func (o *Op) Result(i int) ir.ValueHandle { return o.results[i] }

// Attr returns an attribute value and whether it was set.
func (o *Op) Attr(key string) (string, bool) {
	v, ok := o.attrs[key]
	return v, ok
}

// Program is a flat list of operations, in creation order.
type Program struct {
	muOps sync.RWMutex // guards ops during inspection outside a driver pass
	ops   []*Op
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{ops: make([]*Op, 0, 16)}
}

// Ops returns the live (non-erased) operations in creation order. The
// returned slice is a fresh copy; mutating it does not affect the Program.
func (p *Program) Ops() []*Op {
	p.muOps.RLock()
	defer p.muOps.RUnlock()

	out := make([]*Op, 0, len(p.ops))
	for _, op := range p.ops {
		if !op.erased {
			out = append(out, op)
		}
	}
	return out
}

// OpHandles returns the live operations as ir.OpHandle, for callers (the
// drrset driver) that only need the narrow ir capability set rather than
// memir's concrete *Op type.
func (p *Program) OpHandles() []ir.OpHandle {
	ops := p.Ops()
	out := make([]ir.OpHandle, len(ops))
	for i, op := range ops {
		out[i] = op
	}
	return out
}

// AddValue creates an unattached block-argument Value (Def == nil), e.g. a
// function parameter feeding the first op of a program.
func (p *Program) AddValue(typ ir.Type) *Value {
	return &Value{id: "v" + shortID(), typ: typ}
}

// AddOp creates and appends an operation with the given opcode, operand
// values, result types, and attributes, wiring use-lists on each operand.
// This is the same primitive a Rewriter.Create call uses internally; AddOp
// is exposed directly so callers can build a Program's initial state without
// going through a Rewriter (which exists for mutation during a pass, not
// construction beforehand).
func (p *Program) AddOp(opcode string, operands []*Value, resultTypes []ir.Type, attrs map[string]string) *Op {
	op := &Op{
		id:       "op" + shortID(),
		opcode:   opcode,
		operands: append([]*Value(nil), operands...),
		attrs:    attrs,
	}
	op.results = make([]*Value, len(resultTypes))
	for i, t := range resultTypes {
		op.results[i] = &Value{id: "v" + shortID(), typ: t, def: op, idx: i}
	}
	for i, operand := range op.operands {
		operand.addUse(op, i)
	}

	p.muOps.Lock()
	p.ops = append(p.ops, op)
	p.muOps.Unlock()

	return op
}

func shortID() string {
	return uuid.NewString()[:8]
}

// String renders the program in a readable textual form, one live op per
// line in creation order, for cmd/drrc output. Value IDs are random per
// Program build, so the text is stable for one Program but differs between
// runs.
func (p *Program) String() string {
	s := ""
	for _, op := range p.Ops() {
		s += fmt.Sprintf("%s = %s(", resultList(op), op.opcode)
		for i, operand := range op.operands {
			if i > 0 {
				s += ", "
			}
			s += operand.id
		}
		s += ")\n"
	}
	return s
}

func resultList(op *Op) string {
	if len(op.results) == 0 {
		return "_"
	}
	s := ""
	for i, r := range op.results {
		if i > 0 {
			s += ", "
		}
		s += r.id
	}
	return s
}
