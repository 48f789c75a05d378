package match

import (
	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/pattern"
)

// pair is one synchronized (pattern node, IR node) queue entry. Keeping a
// single queue of pairs instead of two parallel queues removes a whole class
// of length-mismatch bugs a two-queue encoding would otherwise need to
// assert against explicitly.
type pair struct {
	p *pattern.OpCall
	h ir.OpHandle
}

// walker carries the mutable state of one anchored-BFS match attempt, the
// same walker-struct shape bfs.BFS uses for its own queue/visited bookkeeping.
type walker struct {
	src        *pattern.SourcePatternGraph
	ctx        *Context
	pVisited   map[*pattern.OpCall]bool
	hVisited   map[ir.OpHandle]bool
	queue      []pair
}

// Match runs an anchored BFS isomorphism check seeded at candidate anchor a,
// then evaluates src's constraints in registration
// order. It returns (true, ctx) on a fully matched, constraint-satisfying
// occurrence, or (false, nil) otherwise. No host-IR mutation occurs.
func Match(src *pattern.SourcePatternGraph, a ir.OpHandle) (bool, *Context) {
	w := &walker{
		src:      src,
		ctx:      NewContext(),
		pVisited: map[*pattern.OpCall]bool{src.Anchor: true},
		hVisited: map[ir.OpHandle]bool{a: true},
		queue:    []pair{{p: src.Anchor, h: a}},
	}

	if !w.drain() {
		return false, nil
	}

	// Completion invariant: every OpCall must be bound.
	if w.ctx.Len() != len(src.OpCalls) {
		return false, nil
	}

	for _, c := range src.Constraints {
		if !c(w.ctx) {
			return false, nil
		}
	}

	return true, w.ctx
}

// drain processes the queue until it empties or a step fails.
func (w *walker) drain() bool {
	for len(w.queue) > 0 {
		cur := w.queue[0]
		w.queue = w.queue[1:]
		if !w.step(cur.p, cur.h) {
			return false
		}
	}
	return true
}

// step performs the per-pair opcode/arity/bind/operand/result checks.
func (w *walker) step(p *pattern.OpCall, h ir.OpHandle) bool {
	// 1. Opcode equality.
	if p.Opcode != h.OpcodeName() {
		return false
	}
	// 2. Arity equality.
	if len(p.Inputs) != h.NumOperands() || len(p.Outputs) != h.NumResults() {
		return false
	}
	// 3. Bind p -> h.
	if err := w.ctx.BindOp(p, h); err != nil {
		return false
	}

	// 4. Operand walk.
	for i, t := range p.Inputs {
		v := h.Operand(i)
		if err := w.ctx.BindValue(t.Name, v); err != nil {
			return false
		}

		isSrcInput := w.src.IsGraphInput(t.Name)
		if !isSrcInput && len(t.Consumers) != v.UseCount() {
			return false
		}

		w.enqueueSiblings(t.Consumers, v)

		if isSrcInput {
			continue
		}

		pp := t.Producer
		ip := v.DefiningOp()
		if ip == nil || pp.Opcode != ip.OpcodeName() {
			return false
		}
		if !w.pVisited[pp] {
			w.pVisited[pp] = true
			w.hVisited[ip] = true
			w.queue = append(w.queue, pair{p: pp, h: ip})
		}
	}

	// 5. Result walk.
	for i, t := range p.Outputs {
		v := h.Result(i)
		if err := w.ctx.BindValue(t.Name, v); err != nil {
			return false
		}

		if w.src.IsGraphOutput(t.Name) {
			continue
		}
		if len(t.Consumers) != v.UseCount() {
			return false
		}
		w.enqueueSiblings(t.Consumers, v)
	}

	return true
}

// enqueueSiblings implements the sibling/child enqueue procedure: for each
// pattern consumer not yet visited, scan v's unvisited uses for an IR op
// with a matching opcode and enqueue the first one found. A consumer with no
// matching unvisited use is left for the completion invariant to catch
// rather than failing immediately here.
func (w *walker) enqueueSiblings(consumers []*pattern.OpCall, v ir.ValueHandle) {
	for _, c := range consumers {
		if w.pVisited[c] {
			continue
		}
		for _, u := range v.Uses() {
			if w.hVisited[u.Op] {
				continue
			}
			if u.Op.OpcodeName() == c.Opcode {
				w.pVisited[c] = true
				w.hVisited[u.Op] = true
				w.queue = append(w.queue, pair{p: c, h: u.Op})
				break
			}
		}
	}
}
