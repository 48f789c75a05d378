// Package drr exposes the single polymorphic rewrite rule: a Rule built from
// a source pattern, a result pattern, and a benefit, whose only entry point
// is MatchAndRewrite.
package drr

import (
	"github.com/katalvlaran/drrengine/internal/rrlog"
	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/match"
	"github.com/katalvlaran/drrengine/pattern"
	"github.com/katalvlaran/drrengine/rewrite"
)

// Rule composes match.Match, each source-pattern Constraint (already carried
// on the SourcePatternGraph built by pattern.GraphBuilder), and
// rewrite.Apply behind a single entry point.
//
// Rule.New does not take a separate constraints slice:
// pattern.GraphBuilder.BuildSource already attaches constraints to the
// SourcePatternGraph, and duplicating them here would let the two lists
// drift. See DESIGN.md for this deviation.
type Rule struct {
	source  *pattern.SourcePatternGraph
	result  *pattern.ResultPatternGraph
	benefit int
}

// New builds a Rule from a source pattern, a result pattern, and a benefit
// score (used by a driver to order rules targeting the same anchor opcode;
// the core itself never inspects benefit).
func New(source *pattern.SourcePatternGraph, result *pattern.ResultPatternGraph, benefit int) *Rule {
	return &Rule{source: source, result: result, benefit: benefit}
}

// AnchorOpcode returns the source pattern's anchor opcode, letting a driver
// index rules by the opcode they can possibly match.
func (r *Rule) AnchorOpcode() string {
	return r.source.Anchor.Opcode
}

// Benefit returns the rule's configured benefit score.
func (r *Rule) Benefit() int {
	return r.benefit
}

// MatchAndRewrite is the rule's sole entry point: it attempts to anchor a
// source-pattern occurrence at op, and on success materializes and splices
// in the result pattern. It returns true iff op anchored a successful match
// and the IR was mutated.
//
// A rule-authoring error surfaced while applying a committed match is a
// fatal assertion — a bug in the rule, not a recoverable runtime condition —
// so it panics rather than returning false, since by the time Apply runs the
// matcher has already reported success and there is no correct "non-match"
// outcome left to return.
func (r *Rule) MatchAndRewrite(op ir.OpHandle, rewriter ir.Rewriter) bool {
	if op.OpcodeName() != r.AnchorOpcode() {
		return false
	}

	matched, ctx := match.Match(r.source, op)
	if !matched {
		rrlog.Debugf("no match: anchor op %q", op.OpcodeName())
		return false
	}

	_, diag, err := rewrite.Apply(r.source, r.result, ctx, rewriter)
	if err != nil {
		panic(err)
	}
	for _, name := range diag.UncoveredOutputs {
		rrlog.Warnf("source output %q has no result-pattern counterpart; its uses were left untouched", name)
	}

	return true
}
