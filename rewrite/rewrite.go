// Package rewrite implements a five-phase rewrite applier: given a
// successful source binding, it creates the result pattern's operations in
// topological order, applies tensor-assignment redirects, rewires uses of
// source outputs to result outputs, and erases the source operations in
// reverse topological order.
//
// The applier assumes the matcher already committed: there is no rollback.
// An error from any phase is a fatal rule-authoring error: phases 1-3 fail
// on an unresolved result-pattern name, and phases 4-5 fail if an output
// name or a source op they need has no binding.
package rewrite

import (
	"fmt"

	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/match"
	"github.com/katalvlaran/drrengine/pattern"
)

// AuthoringError reports a fatal rule-authoring condition encountered while
// applying a rewrite.
type AuthoringError struct {
	Phase string
	Msg   string
}

func (e *AuthoringError) Error() string {
	return fmt.Sprintf("rewrite: %s: %s", e.Phase, e.Msg)
}

// Diagnostics collects the non-fatal warnings Apply emits: a source output
// with no result counterpart is a warning, not a hard error. Callers that
// want the warnings surfaced (cmd/drrc does, via color output)
// read Diagnostics after Apply returns; callers that don't care may ignore
// it entirely.
type Diagnostics struct {
	UncoveredOutputs []string
}

// Apply runs the five phases against rewriter, given the
// successful source binding src produced by match.Match and the
// ResultPatternGraph the rule declares. It returns the result context (for
// callers that want to inspect created values) and accumulated diagnostics,
// or an *AuthoringError if the result pattern cannot be realized.
func Apply(source *pattern.SourcePatternGraph, result *pattern.ResultPatternGraph, src *match.Context, rewriter ir.Rewriter) (*match.Context, Diagnostics, error) {
	res := match.NewContext()
	var diag Diagnostics

	if err := seedResultInputs(result, src, res); err != nil {
		return nil, diag, err
	}
	if err := createResultOps(result, res, rewriter); err != nil {
		return nil, diag, err
	}
	applyTensorAssignments(result, res)

	if err := rewireOutputs(source, result, src, res, rewriter); err != nil {
		return nil, diag, err
	}
	collectUncovered(source, result, &diag)

	if err := eraseSourceOps(source, src, rewriter); err != nil {
		return nil, diag, err
	}

	return res, diag, nil
}

// seedResultInputs is Phase 1: copy every result-pattern input tensor's
// bound value in from src, so result op creation can resolve names that
// flow in from the surrounding host IR.
func seedResultInputs(result *pattern.ResultPatternGraph, src, res *match.Context) error {
	for name := range result.InputNames {
		v, ok := src.Value(name)
		if !ok {
			return &AuthoringError{Phase: "seed-inputs", Msg: fmt.Sprintf("result input %q has no source binding", name)}
		}
		res.SetValue(name, v)
	}
	return nil
}

// createResultOps is Phase 2: walk the result pattern in its precomputed
// topological order, resolving each OpCall's inputs and creating the
// corresponding host operation via rewriter.Create.
func createResultOps(result *pattern.ResultPatternGraph, res *match.Context, rewriter ir.Rewriter) error {
	for _, call := range result.TopoOrder {
		operands := make([]ir.ValueHandle, len(call.Inputs))
		for i, t := range call.Inputs {
			v, ok := res.Value(t.Name)
			if !ok {
				return &AuthoringError{Phase: "create-ops", Msg: fmt.Sprintf("unresolved result input %q for op %q", t.Name, call.Opcode)}
			}
			operands[i] = v
		}

		h := rewriter.Create(call.Opcode, operands, call.ResultTypes, call.Attrs)
		if err := res.BindOp(call, h); err != nil {
			return &AuthoringError{Phase: "create-ops", Msg: fmt.Sprintf("op %q: %v", call.Opcode, err)}
		}
		for k, out := range call.Outputs {
			res.SetValue(out.Name, h.Result(k))
		}
	}
	return nil
}

// applyTensorAssignments is Phase 3: for each src->dst alias, rebind src's
// name to whatever value dst currently resolves to.
func applyTensorAssignments(result *pattern.ResultPatternGraph, res *match.Context) {
	for srcName, dstName := range result.TensorAssign {
		if v, ok := res.Value(dstName); ok {
			res.SetValue(srcName, v)
		}
	}
}

// rewireOutputs is Phase 4: for every source-pattern output name that also
// names a result-pattern output, redirect every host use of the source
// value to the result value.
func rewireOutputs(source *pattern.SourcePatternGraph, result *pattern.ResultPatternGraph, src, res *match.Context, rewriter ir.Rewriter) error {
	for name := range source.OutputNames {
		if !result.IsGraphOutput(name) {
			continue
		}
		oldV, ok := src.Value(name)
		if !ok {
			return &AuthoringError{Phase: "rewire-outputs", Msg: fmt.Sprintf("source output %q has no binding", name)}
		}
		newV, ok := res.Value(name)
		if !ok {
			return &AuthoringError{Phase: "rewire-outputs", Msg: fmt.Sprintf("result output %q has no binding", name)}
		}
		rewriter.ReplaceAllUses(oldV, newV)
	}
	return nil
}

// collectUncovered records source outputs with no result-pattern
// counterpart as a warning rather than a hard error; a stricter caller could
// promote these to fatal, but this applier keeps it a diagnostic.
func collectUncovered(source *pattern.SourcePatternGraph, result *pattern.ResultPatternGraph, diag *Diagnostics) {
	for name := range source.OutputNames {
		if !result.IsGraphOutput(name) {
			diag.UncoveredOutputs = append(diag.UncoveredOutputs, name)
		}
	}
}

// eraseSourceOps is Phase 5: erase every bound source OpCall's OpHandle in
// reverse topological order (consumers before producers) so each op's
// use-count is zero at erase time.
func eraseSourceOps(source *pattern.SourcePatternGraph, src *match.Context, rewriter ir.Rewriter) error {
	order, err := source.TopoOrder()
	if err != nil {
		return &AuthoringError{Phase: "erase", Msg: err.Error()}
	}
	for i := len(order) - 1; i >= 0; i-- {
		h, ok := src.Op(order[i])
		if !ok {
			return &AuthoringError{Phase: "erase", Msg: fmt.Sprintf("op %q missing from match context", order[i].Opcode)}
		}
		rewriter.Erase(h)
	}
	return nil
}
