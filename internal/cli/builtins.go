package cli

import (
	"github.com/katalvlaran/drrengine/drrset"
	"github.com/katalvlaran/drrengine/pattern"
)

// Builtins returns the constraint implementations a YAML rule set may
// reference by name. Constraint bodies are necessarily specific to memir
// (drrc's one host), since anything beyond bound-value shape/dtype — e.g.
// reading an op's own attributes — requires type-asserting down to a
// concrete ir.ValueHandle/OpHandle implementation (pattern.ConstraintContext
// only promises Value(name)).
func Builtins() drrset.Builtins {
	return drrset.Builtins{
		"same-shape":    sameShape,
		"inverse-perms": inversePerms,
	}
}

// sameShape requires the bound values named "x" and "z" to share a shape —
// the common guard on an identity-fusion rule collapsing a value back to one
// of its own ancestors.
func sameShape(cc pattern.ConstraintContext) bool {
	x, ok := cc.Value("x")
	if !ok {
		return false
	}
	z, ok := cc.Value("z")
	if !ok {
		return false
	}
	xs, zs := x.TypeOf().Shape(), z.TypeOf().Shape()
	if len(xs) != len(zs) {
		return false
	}
	for i := range xs {
		if xs[i] != zs[i] {
			return false
		}
	}
	return true
}

// inversePerms requires the host ops defining the bound values "y" and "z"
// (by rule-authoring convention, the outputs of the source pattern's two
// transpose OpCalls) to carry "perm" attributes that are literally equal,
// which composes to the identity for a self-inverse permutation such as
// "1,0". Reading an op's attrs requires a host op exposing Attr (memir.Op
// does), which is why this constraint lives in a memir-specific builtins
// file rather than the host-agnostic pattern package.
func inversePerms(cc pattern.ConstraintContext) bool {
	type attrReader interface {
		Attr(string) (string, bool)
	}
	y, ok := cc.Value("y")
	if !ok {
		return false
	}
	z, ok := cc.Value("z")
	if !ok {
		return false
	}
	op1, ok := y.DefiningOp().(attrReader)
	if !ok {
		return false
	}
	op2, ok := z.DefiningOp().(attrReader)
	if !ok {
		return false
	}
	p1, ok := op1.Attr("perm")
	if !ok {
		return false
	}
	p2, ok := op2.Attr("perm")
	if !ok {
		return false
	}
	return p1 == p2
}
