// Package pattern holds the immutable pattern-graph model: OpCall nodes,
// Tensor edges, and the PatternGraph/SourcePatternGraph/
// ResultPatternGraph shapes built from them. Pattern graphs are constructed
// once, at rule-registration time, via GraphBuilder, and never mutated
// afterward — match.Match and rewrite.Apply only ever read them.
//
// Tensor identity is by name within a graph. Cross-references
// (tensor→producer, tensor→consumers, graph→tensors) are arena-style: every
// OpCall and Tensor is heap-allocated once by the builder and referenced by
// pointer thereafter, never copied, so pointer equality is name equality.
package pattern

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/drrengine/ir"
)

// AuthoringError reports a rule-authoring bug caught at construction time —
// the "rule authoring error" class of failure. It is deliberately not
// a sentinel so the offending graph/name can travel with it; callers that
// want programmatic matching should use errors.As.
type AuthoringError struct {
	Op  string // the GraphBuilder call or validation step that failed
	Msg string
}

func (e *AuthoringError) Error() string {
	return fmt.Sprintf("pattern: %s: %s", e.Op, e.Msg)
}

// Sentinel errors surfaced by GraphBuilder.BuildSource/BuildResult before an AuthoringError is
// even warranted — i.e. simple, checkable construction failures.
var (
	// ErrEmptyGraph is returned when a SourcePatternGraph has no OpCalls.
	ErrEmptyGraph = errors.New("pattern: source graph has no operations")

	// ErrDisconnected is returned when some OpCall cannot be reached from
	// the anchor via undirected traversal.
	ErrDisconnected = errors.New("pattern: graph is not connected to the anchor")

	// ErrCyclic is returned when the non-input-restricted graph contains a
	// cycle when restricted to non-input nodes.
	ErrCyclic = errors.New("pattern: graph contains a cycle")

	// ErrMultipleProducers is returned when a Tensor gains a second producer
	// (the producer-uniqueness invariant).
	ErrMultipleProducers = errors.New("pattern: tensor has more than one producer")

	// ErrUnknownTensor is returned when Output names a tensor never declared
	// via Input or referenced by a prior Op call on the builder.
	ErrUnknownTensor = errors.New("pattern: reference to undeclared tensor")
)

// Tensor is a pattern edge: a named value that flows from at most one
// producer OpCall to zero or more consumer OpCalls. A Tensor with no
// producer is a graph input.
type Tensor struct {
	Name      string
	Producer  *OpCall   // nil iff this tensor is a graph input
	Consumers []*OpCall // in first-reference order
}

// IsInput reports whether this tensor has no producer within the graph.
func (t *Tensor) IsInput() bool { return t.Producer == nil }

// OpCall is a pattern node: an opcode plus ordered input and output tensors.
// Attrs carries literal attributes for result-pattern OpCalls (ignored on
// source-pattern OpCalls, which only match opcode/arity). ResultTypes carries
// the host result types a result-pattern OpCall needs to create its host
// operation (ignored on source-pattern OpCalls, which take their types from
// the bound host operation instead); it must be empty or len(Outputs) long.
type OpCall struct {
	Opcode      string
	Inputs      []*Tensor
	Outputs     []*Tensor
	Attrs       map[string]string
	ResultTypes []ir.Type
}

// Graph is the shape shared by SourcePatternGraph and ResultPatternGraph: the
// full set of OpCalls, the name→Tensor arena, and the declared boundary
// tensor names.
type Graph struct {
	OpCalls     []*OpCall
	Tensors     map[string]*Tensor
	InputNames  map[string]struct{}
	OutputNames map[string]struct{}
}

// Tensor looks up a tensor by name.
func (g *Graph) Tensor(name string) (*Tensor, bool) {
	t, ok := g.Tensors[name]
	return t, ok
}

// IsGraphInput reports whether name was declared a boundary input of g.
func (g *Graph) IsGraphInput(name string) bool {
	_, ok := g.InputNames[name]
	return ok
}

// IsGraphOutput reports whether name was declared a boundary output of g.
func (g *Graph) IsGraphOutput(name string) bool {
	_, ok := g.OutputNames[name]
	return ok
}

// ConstraintContext is the read-only view a Constraint predicate gets of a
// match in progress. match.Context implements this interface; pattern does
// not depend on the match package so that match (which depends on pattern)
// never forms an import cycle.
type ConstraintContext interface {
	// Value resolves a pattern tensor name to the IR value bound to it.
	Value(name string) (ir.ValueHandle, bool)
}

// Constraint is a pure predicate over a match in progress.
// Constraints must not mutate host state; they may read bound values' shape
// and dtype via the ConstraintContext.
type Constraint func(ConstraintContext) bool

// SourcePatternGraph is a Graph plus its anchor OpCall and its ordered
// constraint list.
type SourcePatternGraph struct {
	Graph
	Anchor      *OpCall
	Constraints []Constraint
}

// ResultPatternGraph is a Graph plus its tensor-assignment (alias) map and a
// precomputed topological creation order, computed once at
// rule-construction time so rewrite application never has to recompute it.
type ResultPatternGraph struct {
	Graph
	TensorAssign map[string]string // src name -> dst name
	TopoOrder    []*OpCall         // producers before consumers
}
