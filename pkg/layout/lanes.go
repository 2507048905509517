package layout

import "slices"

// Lane assignment.
//
// Activities take the lane of their role: its position in the document's
// roles list. Gateways carry no role, so their lane is derived from their
// neighborhood: the lane of the first predecessor in topological order,
// else the first successor in topological order, else lane 0 with an
// advisory note. Gateways are resolved in topological order, so a gateway's
// upstream neighbors, including other gateways, already have lanes when
// it is visited, and repeated runs on the same document always resolve the
// same way.

// assignLanes fills in every node's lane and sets g.laneCount. Documents
// with flow nodes but no roles get a single synthetic lane at index 0.
func assignLanes(g *graph, topo []int, m *Model) {
	g.laneCount = len(g.doc.Roles)
	if g.laneCount == 0 {
		g.laneCount = 1
	}

	roleLane := make(map[string]int, len(g.doc.Roles))
	for i := range g.doc.Roles {
		roleLane[g.doc.Roles[i].ID] = i
	}

	topoPos := make([]int, len(g.nodes))
	for pos, n := range topo {
		topoPos[n] = pos
	}

	// Activities first: their lanes anchor gateway resolution. With no
	// roles at all, every node shares the synthetic lane and no note is
	// recorded.
	for n := range g.nodes {
		if g.nodes[n].kind != KindActivity {
			continue
		}
		lane, ok := roleLane[g.nodes[n].roleID]
		if !ok {
			lane = 0
			if len(g.doc.Roles) > 0 {
				m.Notes = append(m.Notes, Note{
					Kind:    NoteLaneDefault,
					Ref:     g.nodes[n].id,
					Message: "activity references an unknown role; defaulted to lane 0",
				})
			}
		}
		g.nodes[n].lane = lane
	}

	for _, n := range topo {
		if g.nodes[n].kind != KindGateway {
			continue
		}
		if lane, ok := neighborLane(g, topoPos, g.in, n); ok {
			g.nodes[n].lane = lane
			continue
		}
		if lane, ok := neighborLane(g, topoPos, g.out, n); ok {
			g.nodes[n].lane = lane
			continue
		}
		g.nodes[n].lane = 0
		m.Notes = append(m.Notes, Note{
			Kind:    NoteLaneDefault,
			Ref:     g.nodes[n].id,
			Message: "gateway has no laned neighbor; defaulted to lane 0",
		})
	}
}

// neighborLane returns the lane of the neighbor of n with the smallest
// topological position that already has a lane assigned. adj selects the
// direction: g.in scans predecessors (edge sources), g.out successors
// (edge targets).
func neighborLane(g *graph, topoPos []int, adj [][]int, n int) (int, bool) {
	neighbors := make([]int, 0, len(adj[n]))
	for _, e := range adj[n] {
		other := g.edges[e].src
		if other == n {
			other = g.edges[e].dst
		}
		neighbors = append(neighbors, other)
	}
	slices.SortStableFunc(neighbors, func(a, b int) int { return topoPos[a] - topoPos[b] })

	for _, other := range neighbors {
		if g.nodes[other].lane >= 0 {
			return g.nodes[other].lane, true
		}
	}
	return 0, false
}
