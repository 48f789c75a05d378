// Package ir declares the narrow, host-agnostic capability set the DRR core
// needs from a host intermediate representation: operations, values, their
// operand/use edges, and the three mutation primitives a rewrite performs.
//
// The core never touches a concrete IR. It is generic over any provider of
// these interfaces; ir/memir ships one such provider for tests and for the
// reference cmd/drrc driver.
package ir

// Type exposes the two facts a Constraint is allowed to inspect about a
// bound value: its shape and its dtype. Both comparisons are by value
// equality, not identity — type inference beyond equality checks is out of
// scope.
type Type interface {
	// Shape returns the value's dimensions. Scalars return an empty slice.
	Shape() []int64

	// Dtype returns the value's element type name (e.g. "f32", "i64").
	Dtype() string
}

// OpHandle is a host operation. Operand and result indices are zero-based
// and stable for the lifetime of the operation.
type OpHandle interface {
	// OpcodeName is the operation's opcode, matched verbatim against a
	// pattern OpCall's opcode during matching.
	OpcodeName() string

	// NumOperands returns the operation's operand arity.
	NumOperands() int

	// NumResults returns the operation's result arity.
	NumResults() int

	// Operand returns the i'th operand value. Panics if i is out of range;
	// callers (the matcher) always range-check against NumOperands first.
	Operand(i int) ValueHandle

	// Result returns the i'th result value. Panics if i is out of range;
	// callers always range-check against NumResults first.
	Result(i int) ValueHandle
}

// Use pairs a consuming operation with the operand slot it occupies.
type Use struct {
	Op           OpHandle
	OperandIndex int
}

// ValueHandle is a host SSA value: either a block argument (DefiningOp
// returns nil) or the i'th result of some operation.
type ValueHandle interface {
	// DefiningOp returns the operation that produced this value, or nil if
	// the value is a block argument / external input.
	DefiningOp() OpHandle

	// Uses returns every operand slot that references this value. Order is
	// host-defined but must be stable within a single match_and_rewrite call.
	Uses() []Use

	// UseCount is len(Uses()), exposed separately so hosts can answer it in
	// O(1) without materializing the slice.
	UseCount() int

	// TypeOf returns the value's shape/dtype facade.
	TypeOf() Type
}

// Rewriter is the only way the core mutates host IR. Every call happens
// during rewrite.Apply; the matcher never calls it.
type Rewriter interface {
	// Create builds and inserts a new operation with the given opcode,
	// operands, result types, and string-keyed attributes, and returns its
	// handle. len(resultTypes) determines the created operation's result
	// arity; a side-effect-only operation passes nil.
	Create(opcode string, operands []ValueHandle, resultTypes []Type, attrs map[string]string) OpHandle

	// ReplaceAllUses rewires every use of old to new. After this call
	// old.UseCount() is host-defined to reach zero for the uses that
	// existed at call time; it does not retroactively block new uses.
	ReplaceAllUses(old, new ValueHandle)

	// Erase removes op from the host IR. The caller (rewrite.Apply) is
	// responsible for erasing in an order that keeps use-counts at zero at
	// erase time; Erase itself does not re-check use-count.
	Erase(op OpHandle)
}
