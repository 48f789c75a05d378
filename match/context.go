// Package match implements the binding environment and the anchored-BFS
// pattern matcher that populates it. It is the only package that depends on
// both ir and pattern.
package match

import (
	"errors"

	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/pattern"
)

// ErrRebind is returned by Context.BindOp when an OpCall is already bound:
// once an OpCall is bound it cannot be rebound within the same attempt —
// attempting to rebind is a match failure.
var ErrRebind = errors.New("match: op already bound in this attempt")

// ErrConflictingValue is returned by Context.BindValue when name is already
// bound to a different ValueHandle: a write of a differing ValueHandle to
// the same name is a match failure.
var ErrConflictingValue = errors.New("match: tensor name bound to a different value")

// Context is the bidirectional binding environment accumulated during one
// match attempt: OpCall -> OpHandle and TensorName -> ValueHandle. A Context
// is created fresh per match attempt;
// on failure it is discarded, on success it is handed to rewrite.Apply.
type Context struct {
	opMap    map[*pattern.OpCall]ir.OpHandle
	valueMap map[string]ir.ValueHandle
}

// NewContext returns an empty binding environment.
func NewContext() *Context {
	return &Context{
		opMap:    make(map[*pattern.OpCall]ir.OpHandle),
		valueMap: make(map[string]ir.ValueHandle),
	}
}

// BindOp binds c to h. It is monotone: binding an already-bound OpCall,
// even to the same handle, is ErrRebind.
func (c *Context) BindOp(call *pattern.OpCall, h ir.OpHandle) error {
	if _, ok := c.opMap[call]; ok {
		return ErrRebind
	}
	c.opMap[call] = h
	return nil
}

// Op returns the OpHandle bound to call, if any.
func (c *Context) Op(call *pattern.OpCall) (ir.OpHandle, bool) {
	h, ok := c.opMap[call]
	return h, ok
}

// OpMap exposes the full op binding map for callers (the applier) that must
// iterate it; callers must treat it as read-only.
func (c *Context) OpMap() map[*pattern.OpCall]ir.OpHandle { return c.opMap }

// BindValue binds name to v. Rebinding name to an identical handle is a
// no-op (idempotent); rebinding to a different handle is ErrConflictingValue.
func (c *Context) BindValue(name string, v ir.ValueHandle) error {
	if existing, ok := c.valueMap[name]; ok {
		if existing != v {
			return ErrConflictingValue
		}
		return nil
	}
	c.valueMap[name] = v
	return nil
}

// Value returns the ValueHandle bound to name, if any. This is the method
// that satisfies pattern.ConstraintContext, letting Constraint predicates
// inspect bound values without pattern importing match.
func (c *Context) Value(name string) (ir.ValueHandle, bool) {
	v, ok := c.valueMap[name]
	return v, ok
}

// SetValue force-binds name to v, overwriting any previous binding. It is
// used only by rewrite.Apply while building the result-pattern context
// (during its seed, op-creation and tensor-assignment phases), which legitimately
// rebinds names — e.g.
// a tensor-assignment redirect replaces a name's value outright rather than
// accumulating a second, conflicting binding.
func (c *Context) SetValue(name string, v ir.ValueHandle) {
	c.valueMap[name] = v
}

// Len reports how many OpCalls are currently bound, used by the matcher's
// completion invariant: the bound-op count must equal the total OpCall
// count of the source pattern.
func (c *Context) Len() int { return len(c.opMap) }
