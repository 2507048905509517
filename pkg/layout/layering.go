package layout

// Feedback detection and rank assignment.
//
// Back-edges are found with an iterative depth-first search using the usual
// white/gray/black coloring, before any layering happens. The feedback set is
// the only thing this pass produces; the graph's structure is untouched, so
// layering runs over a filtered edge view rather than a mutated graph.
// Feedback edges are still routed later, anchored at the diagram's vertical
// extremity.

const (
	white = iota
	gray
	black
)

// markFeedback flags every DFS back-edge as feedback and records a cycle
// note per flagged transition. Roots are visited in arena order, edges in
// insertion order, so the feedback set is deterministic.
//
// The traversal is iterative with an explicit frame stack: graph depth never
// touches goroutine stack growth.
func markFeedback(g *graph, m *Model) {
	color := make([]int, len(g.nodes))

	type frame struct {
		node int
		next int // index into g.out[node] of the next edge to visit
	}

	var stack []frame
	for root := range g.nodes {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack = append(stack[:0], frame{node: root})

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next >= len(g.out[f.node]) {
				color[f.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			e := g.out[f.node][f.next]
			f.next++

			child := g.edges[e].dst
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			case gray:
				g.edges[e].feedback = true
				m.Notes = append(m.Notes, Note{
					Kind:    NoteCycle,
					Ref:     g.edges[e].id,
					Message: "transition closes a cycle; excluded from rank assignment",
				})
			}
		}
	}
}

// topoOrder returns the node arena indices in topological order of the
// feedback-filtered graph, computed with Kahn's algorithm. The queue is
// seeded in arena order and processed FIFO, which makes the order (and
// everything derived from it: gateway lane resolution, initial intra-rank
// order) a pure function of the document.
//
// The filtered graph is acyclic by construction (markFeedback removed every
// back-edge from consideration), so the order always covers all nodes.
func topoOrder(g *graph) []int {
	inDeg := make([]int, len(g.nodes))
	order := make([]int, 0, len(g.nodes))
	queue := make([]int, 0, len(g.nodes))

	for n := range g.nodes {
		inDeg[n] = g.inDegreeLive(n)
		if inDeg[n] == 0 {
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, e := range g.out[curr] {
			if g.edges[e].feedback {
				continue
			}
			child := g.edges[e].dst
			inDeg[child]--
			if inDeg[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return order
}

// assignRanks computes longest-path layering over the feedback-filtered
// graph: sources sit at rank 0, every other node at one plus the maximum
// rank of its live predecessors. Processing nodes in topological order makes
// a single pass sufficient and guarantees rank(u) < rank(v) for every
// non-feedback edge u→v.
func assignRanks(g *graph, topo []int) {
	maxRank := 0
	for _, n := range topo {
		rank := 0
		for _, e := range g.in[n] {
			if g.edges[e].feedback {
				continue
			}
			if r := g.nodes[g.edges[e].src].rank + 1; r > rank {
				rank = r
			}
		}
		g.nodes[n].rank = rank
		if rank > maxRank {
			maxRank = rank
		}
	}
	g.rankCount = maxRank + 1
}
