package layout

import "slices"

// Crossing reduction.
//
// The initial order within each rank is the first-encountered order of the
// topological traversal. A bounded number of barycenter sweeps then reorders
// each rank by the mean position of its neighbors in the adjacent rank:
// downstream sweeps pull nodes toward their successors, upstream sweeps
// toward their predecessors. Sorting is stable, so nodes with equal
// barycenters keep their relative order and the result stays deterministic.
//
// The loop is a plain bounded iteration over index arrays, with no
// recursion and no fixed-point search, so memory and stack stay flat regardless of
// graph size, and the sweep cap bounds runtime at O(sweeps * (V+E)) plus
// the per-rank sort.

// orderRanks computes the left-to-right order of every rank and writes each
// node's final position into the arena. The returned slice maps rank index
// to node arena indices in order.
func orderRanks(g *graph, topo []int, sweeps int) [][]int {
	ranks := make([][]int, g.rankCount)
	for _, n := range topo {
		r := g.nodes[n].rank
		ranks[r] = append(ranks[r], n)
	}

	pos := make([]int, len(g.nodes))
	syncPositions(ranks, pos)

	bary := make([]float64, len(g.nodes))

	for s := 0; s < sweeps; s++ {
		changed := false
		if s%2 == 0 {
			// Downstream: reorder by successor positions, walking from the
			// second-to-last rank back so each rank sees settled neighbors.
			for r := len(ranks) - 2; r >= 0; r-- {
				if reorderRank(g, ranks[r], r+1, pos, bary, g.out) {
					changed = true
				}
			}
		} else {
			// Upstream: reorder by predecessor positions.
			for r := 1; r < len(ranks); r++ {
				if reorderRank(g, ranks[r], r-1, pos, bary, g.in) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for r := range ranks {
		for i, n := range ranks[r] {
			g.nodes[n].order = i
		}
	}
	return ranks
}

// reorderRank stably re-sorts one rank by barycenter and reports whether
// anything moved. adjRank selects which neighbors count: only non-feedback
// edges to nodes in exactly that rank contribute. Nodes with no such
// neighbors keep their current position as their barycenter value.
func reorderRank(g *graph, rank []int, adjRank int, pos []int, bary []float64, adj [][]int) bool {
	for _, n := range rank {
		sum, count := 0, 0
		for _, e := range adj[n] {
			if g.edges[e].feedback {
				continue
			}
			other := g.edges[e].src
			if other == n {
				other = g.edges[e].dst
			}
			if g.nodes[other].rank != adjRank {
				continue
			}
			sum += pos[other]
			count++
		}
		if count == 0 {
			bary[n] = float64(pos[n])
		} else {
			bary[n] = float64(sum) / float64(count)
		}
	}

	before := slices.Clone(rank)
	slices.SortStableFunc(rank, func(a, b int) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		}
		return 0
	})

	if slices.Equal(before, rank) {
		return false
	}
	for i, n := range rank {
		pos[n] = i
	}
	return true
}

func syncPositions(ranks [][]int, pos []int) {
	for _, rank := range ranks {
		for i, n := range rank {
			pos[n] = i
		}
	}
}
