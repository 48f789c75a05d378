package pattern

import (
	"fmt"

	"github.com/katalvlaran/drrengine/ir"
)

// GraphBuilder assembles a Graph's OpCall/Tensor arena step by step before
// sealing it into a SourcePatternGraph or ResultPatternGraph. It is used
// exactly once per rule, at rule-registration time, created once and never mutated during matching
// or rewriting,
// so — unlike core.Graph's concurrent design — it carries no locking: a
// builder is owned by a single goroutine for its whole (short) lifetime.
type GraphBuilder struct {
	tensors     map[string]*Tensor
	opCalls     []*OpCall
	inputNames  map[string]struct{}
	outputNames map[string]struct{}
	err         error // first construction error, surfaced at Build time
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		tensors:     make(map[string]*Tensor),
		inputNames:  make(map[string]struct{}),
		outputNames: make(map[string]struct{}),
	}
}

// Input declares name as a graph-boundary input tensor (no producer within
// the graph) and returns the builder for chaining.
func (b *GraphBuilder) Input(name string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	b.tensor(name)
	b.inputNames[name] = struct{}{}
	return b
}

// Output declares name as a graph-boundary output tensor and returns the
// builder for chaining. name must already be known to the builder (declared
// via Input, or referenced as an input or output of a prior Op call).
func (b *GraphBuilder) Output(name string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	if _, ok := b.tensors[name]; !ok {
		b.err = fmt.Errorf("Output(%q): %w", name, ErrUnknownTensor)
		return b
	}
	b.outputNames[name] = struct{}{}
	return b
}

// Op appends an OpCall with the given opcode, ordered input tensor names,
// and ordered output tensor names. Input names that are neither declared via
// Input nor produced by any Op in the graph become implicit graph inputs when
// the graph is sealed. Output names must be
// fresh (each tensor has exactly one producer); a name reused as an output fails
// the build with ErrMultipleProducers.
func (b *GraphBuilder) Op(opcode string, inputs, outputs []string, attrs map[string]string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	call := &OpCall{Opcode: opcode, Attrs: attrs}

	call.Inputs = make([]*Tensor, len(inputs))
	for i, name := range inputs {
		t := b.tensor(name)
		t.Consumers = append(t.Consumers, call)
		call.Inputs[i] = t
	}

	call.Outputs = make([]*Tensor, len(outputs))
	for i, name := range outputs {
		t, existed := b.tensors[name]
		if existed && t.Producer != nil {
			b.err = fmt.Errorf("Op(%q) output %q: %w", opcode, name, ErrMultipleProducers)
			return b
		}
		t = b.tensor(name)
		t.Producer = call
		call.Outputs[i] = t
	}

	b.opCalls = append(b.opCalls, call)
	return b
}

// TypedOp is Op plus an explicit result-type list, for result-pattern OpCalls
// that will actually create a host operation via rewrite.Apply's Phase 2
// during rewrite application: the host Rewriter needs to know each result's
// type, which a
// source-pattern OpCall never has to supply since matching takes types from
// the already-existing host operation it binds to.
func (b *GraphBuilder) TypedOp(opcode string, inputs, outputs []string, resultTypes []ir.Type, attrs map[string]string) *GraphBuilder {
	if b.err != nil {
		return b
	}
	b.Op(opcode, inputs, outputs, attrs)
	if b.err != nil {
		return b
	}
	b.opCalls[len(b.opCalls)-1].ResultTypes = resultTypes
	return b
}

func (b *GraphBuilder) tensor(name string) *Tensor {
	t, ok := b.tensors[name]
	if !ok {
		t = &Tensor{Name: name}
		b.tensors[name] = t
	}
	return t
}

// graph seals the accumulated state into a Graph, or returns the first
// construction error recorded by Input/Output/Op.
func (b *GraphBuilder) graph() (Graph, error) {
	if b.err != nil {
		return Graph{}, b.err
	}
	for name, t := range b.tensors {
		if t.Producer == nil {
			b.inputNames[name] = struct{}{}
		}
	}
	return Graph{
		OpCalls:     b.opCalls,
		Tensors:     b.tensors,
		InputNames:  b.inputNames,
		OutputNames: b.outputNames,
	}, nil
}

// BuildSource seals the builder into a SourcePatternGraph anchored at the Op
// call created by the anchorIndex'th Op(...) call (0-based), validating the
// structural invariants: non-empty, anchor reachable from
// every node and vice versa via undirected edges, and acyclic restricted to
// non-input nodes.
func (b *GraphBuilder) BuildSource(anchorIndex int, constraints ...Constraint) (*SourcePatternGraph, error) {
	g, err := b.graph()
	if err != nil {
		return nil, err
	}
	if len(g.OpCalls) == 0 {
		return nil, ErrEmptyGraph
	}
	if anchorIndex < 0 || anchorIndex >= len(g.OpCalls) {
		return nil, &AuthoringError{Op: "BuildSource", Msg: "anchor index out of range"}
	}
	anchor := g.OpCalls[anchorIndex]

	if err := checkConnected(&g, anchor); err != nil {
		return nil, err
	}
	if err := checkAcyclicNonInput(&g); err != nil {
		return nil, err
	}

	return &SourcePatternGraph{Graph: g, Anchor: anchor, Constraints: append([]Constraint(nil), constraints...)}, nil
}

// BuildResult seals the builder into a ResultPatternGraph carrying the given
// tensor-assignment (alias) map and a precomputed topological creation order
// that the rewrite applier uses to create result operations producer-before-consumer.
// Every key of tensorAssign is also recorded as a result output name, so an
// aliased name counts as a declared output when source outputs are rewired.
func (b *GraphBuilder) BuildResult(tensorAssign map[string]string) (*ResultPatternGraph, error) {
	g, err := b.graph()
	if err != nil {
		return nil, err
	}
	for srcName := range tensorAssign {
		g.OutputNames[srcName] = struct{}{}
	}
	order, err := topoSort(&g)
	if err != nil {
		return nil, err
	}
	if tensorAssign == nil {
		tensorAssign = map[string]string{}
	}
	return &ResultPatternGraph{Graph: g, TensorAssign: tensorAssign, TopoOrder: order}, nil
}
