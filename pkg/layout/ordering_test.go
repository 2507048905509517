package layout

import (
	"testing"

	"github.com/matzehuels/laneflow/pkg/flow"
)

func TestCompute_BarycenterUncrosses(t *testing.T) {
	// Two stacked sources wired crosswise to two stacked targets. The b->d
	// edge holds d back until b is processed, so the second rank starts as
	// [c, d] and the initial layout has a crossing; one downstream sweep
	// must flip the first rank to [b, a] to remove it.
	doc := &flow.Document{
		Roles: []flow.Role{{ID: "r", Name: "R"}},
		Activities: []flow.Activity{
			{ID: "a", RoleID: "r"},
			{ID: "b", RoleID: "r"},
			{ID: "c", RoleID: "r"},
			{ID: "d", RoleID: "r"},
		},
		Transitions: []flow.Transition{
			{Source: "a", Target: "d"},
			{Source: "b", Target: "c"},
			{Source: "b", Target: "d"},
		},
	}
	m := mustCompute(t, doc)

	if got := crossings(t, m); got != 0 {
		t.Errorf("crossings = %d, want 0", got)
	}
	if node(t, m, "b").Order >= node(t, m, "a").Order {
		t.Errorf("rank 0 not reordered: a=%d b=%d",
			node(t, m, "a").Order, node(t, m, "b").Order)
	}
}

func TestCompute_OrderStableWithoutCrossings(t *testing.T) {
	// Parallel edges have nothing to improve; insertion order must hold.
	doc := &flow.Document{
		Roles: []flow.Role{{ID: "r", Name: "R"}},
		Activities: []flow.Activity{
			{ID: "a", RoleID: "r"},
			{ID: "b", RoleID: "r"},
			{ID: "c", RoleID: "r"},
			{ID: "d", RoleID: "r"},
		},
		Transitions: []flow.Transition{
			{Source: "a", Target: "c"},
			{Source: "b", Target: "d"},
		},
	}
	m := mustCompute(t, doc)

	want := map[string]int{"a": 0, "b": 1, "c": 0, "d": 1}
	for id, order := range want {
		if n := node(t, m, id); n.Order != order {
			t.Errorf("node %s order = %d, want %d", id, n.Order, order)
		}
	}
}

func TestCompute_FeedbackIgnoredByOrdering(t *testing.T) {
	// The loop back-edge must not drag its source toward the loop target's
	// slot during sweeps.
	doc := branchingDoc()
	m := mustCompute(t, doc)

	for _, e := range m.Edges {
		if !e.Feedback {
			continue
		}
		src, dst := node(t, m, e.Source), node(t, m, e.Target)
		if src.Rank <= dst.Rank {
			t.Errorf("feedback edge %s: rank %d -> %d, want backwards", e.ID, src.Rank, dst.Rank)
		}
	}
}

// crossings counts pairwise crossings between non-feedback edges joining
// consecutive ranks, using slot order within each rank.
func crossings(t *testing.T, m *Model) int {
	t.Helper()
	type span struct{ srcOrder, dstOrder, rank int }
	var spans []span
	for _, e := range m.Edges {
		if e.Feedback {
			continue
		}
		src, dst := node(t, m, e.Source), node(t, m, e.Target)
		if dst.Rank != src.Rank+1 {
			continue
		}
		spans = append(spans, span{src.Order, dst.Order, src.Rank})
	}
	total := 0
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].rank != spans[j].rank {
				continue
			}
			a, b := spans[i], spans[j]
			if (a.srcOrder-b.srcOrder)*(a.dstOrder-b.dstOrder) < 0 {
				total++
			}
		}
	}
	return total
}
