package match

import (
	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/pattern"
)

// MatchBottomUp is an alternate, producer-only matcher: a documented,
// fully-tested building block for a future multi-anchor rule type that seeds
// from several candidate outputs at once instead of a single anchor.
// drr.Rule.MatchAndRewrite never calls it — it exists standalone, ungated
// behind any current caller.
//
// Unlike Match, MatchBottomUp is seeded from a sequence of candidate output
// OpCalls paired with IR operations (rather than a single anchor) and walks
// only upward through producer edges — it never enqueues consumers/siblings
// and performs no fanout checks, since its purpose is confirming a shared
// ancestry for a multi-output pattern rather than bounding a single
// anchor's fanout.
func MatchBottomUp(src *pattern.SourcePatternGraph, candidates []*pattern.OpCall, ops []ir.OpHandle) (bool, *Context) {
	if len(candidates) != len(ops) || len(candidates) == 0 {
		return false, nil
	}

	ctx := NewContext()
	pVisited := make(map[*pattern.OpCall]bool, len(candidates))
	hVisited := make(map[ir.OpHandle]bool, len(candidates))
	queue := make([]pair, 0, len(candidates))

	for i, c := range candidates {
		queue = append(queue, pair{p: c, h: ops[i]})
		pVisited[c] = true
		hVisited[ops[i]] = true
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		p, h := cur.p, cur.h

		if p.Opcode != h.OpcodeName() {
			return false, nil
		}
		if len(p.Inputs) != h.NumOperands() || len(p.Outputs) != h.NumResults() {
			return false, nil
		}
		if err := ctx.BindOp(p, h); err != nil {
			return false, nil
		}

		for i, t := range p.Inputs {
			v := h.Operand(i)
			if err := ctx.BindValue(t.Name, v); err != nil {
				return false, nil
			}
			if t.IsInput() {
				continue
			}
			ip := v.DefiningOp()
			if ip == nil || t.Producer.Opcode != ip.OpcodeName() {
				return false, nil
			}
			if !pVisited[t.Producer] {
				pVisited[t.Producer] = true
				hVisited[ip] = true
				queue = append(queue, pair{p: t.Producer, h: ip})
			}
		}
	}

	if ctx.Len() != len(src.OpCalls) {
		return false, nil
	}
	for _, c := range src.Constraints {
		if !c(ctx) {
			return false, nil
		}
	}
	return true, ctx
}
