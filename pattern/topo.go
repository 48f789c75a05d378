package pattern

// Visitation states for the producer/consumer DFS below, named the way
// dfs.TopologicalSort names them: White (unseen), Gray (on the recursion
// stack), Black (fully explored).
const (
	white = iota
	gray
	black
)

// topoSort computes a topological order of g's OpCalls (producers before
// consumers) by walking producer→consumer edges depth-first and reversing
// the post-order, the same algorithm dfs.TopologicalSort runs over a
// core.Graph — adapted here to walk the OpCall/Tensor arena directly instead
// of a core.Graph, since pattern graphs are not core graphs.
func topoSort(g *Graph) ([]*OpCall, error) {
	state := make(map[*OpCall]int, len(g.OpCalls))
	order := make([]*OpCall, 0, len(g.OpCalls))

	var visit func(c *OpCall) error
	visit = func(c *OpCall) error {
		switch state[c] {
		case gray:
			return ErrCyclic
		case black:
			return nil
		}
		state[c] = gray
		for _, out := range c.Outputs {
			for _, consumer := range out.Consumers {
				if err := visit(consumer); err != nil {
					return err
				}
			}
		}
		state[c] = black
		order = append(order, c)
		return nil
	}

	for _, c := range g.OpCalls {
		if state[c] == white {
			if err := visit(c); err != nil {
				return nil, err
			}
		}
	}

	// order is currently consumers-before-producers (DFS post-order over the
	// producer->consumer direction); reverse it so producers come first.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// TopoOrder computes a topological order of g's OpCalls (producers before
// consumers). SourcePatternGraph has no precomputed order (only
// ResultPatternGraph does); rewrite.Apply calls this once per successful
// match to erase source operations in reverse order.
func (g *Graph) TopoOrder() ([]*OpCall, error) {
	return topoSort(g)
}

// checkConnected verifies every OpCall in g is reachable from anchor via
// undirected edges: the anchor must be reachable from every node and reach
// every node, walking producer/consumer edges in either direction. This is
// the same breadth-first sweep bfs.BFS runs over a core.Graph, adapted to
// walk producer/consumer edges on both sides since an OpCall's "neighbors"
// here are the producers of its inputs, the other consumers of its inputs,
// and the consumers of its outputs.
func checkConnected(g *Graph, anchor *OpCall) error {
	visited := make(map[*OpCall]bool, len(g.OpCalls))
	queue := []*OpCall{anchor}
	visited[anchor] = true

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		for _, in := range c.Inputs {
			if in.Producer != nil && !visited[in.Producer] {
				visited[in.Producer] = true
				queue = append(queue, in.Producer)
			}
			for _, sibling := range in.Consumers {
				if !visited[sibling] {
					visited[sibling] = true
					queue = append(queue, sibling)
				}
			}
		}
		for _, out := range c.Outputs {
			for _, consumer := range out.Consumers {
				if !visited[consumer] {
					visited[consumer] = true
					queue = append(queue, consumer)
				}
			}
		}
	}

	for _, c := range g.OpCalls {
		if !visited[c] {
			return ErrDisconnected
		}
	}
	return nil
}

// checkAcyclicNonInput verifies the graph restricted to non-input nodes is
// acyclic. Since OpCalls have no notion of "input node"
// themselves (only tensors do), and every OpCall in a pattern graph produces
// at least one tensor, this reduces to: the producer->consumer graph over
// OpCalls must be acyclic, which topoSort already verifies as a side effect.
func checkAcyclicNonInput(g *Graph) error {
	_, err := topoSort(g)
	return err
}
