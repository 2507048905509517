package layout

import (
	"github.com/matzehuels/laneflow/pkg/errors"
	"github.com/matzehuels/laneflow/pkg/flow"
)

// graphNode is one entry in the node arena. Stages fill in lane, rank, and
// order; the geometry stage reads them to produce the public [Node] values.
type graphNode struct {
	id      string
	label   string
	kind    NodeKind
	gateway flow.GatewayType // empty for activities
	roleID  string           // empty for gateways

	lane  int
	rank  int
	order int
}

// graphEdge mirrors one transition. src and dst are arena indices.
type graphEdge struct {
	id       string
	src, dst int
	label    string
	feedback bool
}

// graph is the working representation for the layout pipeline: an
// index-addressed node arena with adjacency lists of edge indices. Plain
// integer indices keep every stage cache-friendly and trivially
// deterministic; no stage holds object references into another stage's
// output.
type graph struct {
	doc   *flow.Document
	nodes []graphNode
	index map[string]int // node ID -> arena index
	edges []graphEdge
	out   [][]int // node index -> outgoing edge indices, insertion order
	in    [][]int // node index -> incoming edge indices, insertion order

	laneCount int
	rankCount int
}

func (g *graph) isEmpty() bool { return len(g.nodes) == 0 }

// buildGraph assembles the arena from a normalized document. Activities come
// first in document order, then gateways, fixing the deterministic insertion
// order every later stage relies on.
//
// A transition whose source or target does not resolve to a known node is
// fatal: an INVALID_REFERENCE error naming the transition is returned and no
// partial graph is built. An empty document yields a valid empty graph.
func buildGraph(doc *flow.Document) (*graph, error) {
	g := &graph{
		doc:   doc,
		index: make(map[string]int, doc.NodeCount()),
	}

	for i := range doc.Activities {
		a := &doc.Activities[i]
		g.index[a.ID] = len(g.nodes)
		g.nodes = append(g.nodes, graphNode{
			id:     a.ID,
			label:  a.DisplayLabel(),
			kind:   KindActivity,
			roleID: a.RoleID,
			lane:   -1,
		})
	}
	for i := range doc.Gateways {
		gw := &doc.Gateways[i]
		g.index[gw.ID] = len(g.nodes)
		g.nodes = append(g.nodes, graphNode{
			id:      gw.ID,
			label:   gw.DisplayLabel(),
			kind:    KindGateway,
			gateway: gw.Type,
			lane:    -1,
		})
	}

	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))

	for i := range doc.Transitions {
		t := &doc.Transitions[i]
		src, ok := g.index[t.Source]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidReference,
				"transition %s: unknown source node %q", t.ID, t.Source)
		}
		dst, ok := g.index[t.Target]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidReference,
				"transition %s: unknown target node %q", t.ID, t.Target)
		}
		e := len(g.edges)
		g.edges = append(g.edges, graphEdge{id: t.ID, src: src, dst: dst, label: t.Condition})
		g.out[src] = append(g.out[src], e)
		g.in[dst] = append(g.in[dst], e)
	}

	return g, nil
}

// inDegreeLive returns the number of non-feedback incoming edges of node n.
func (g *graph) inDegreeLive(n int) int {
	count := 0
	for _, e := range g.in[n] {
		if !g.edges[e].feedback {
			count++
		}
	}
	return count
}
