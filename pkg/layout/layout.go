// Package layout computes swimlane diagram layouts for business-flow graphs.
//
// The engine turns a flow document (roles, activities, gateways, transitions)
// into a concrete two-dimensional model: every node is assigned a lane (the
// horizontal band owned by its role), a rank (its execution-order column), a
// position within the rank, pixel coordinates, and a size. Every transition
// becomes an ordered waypoint polyline connecting node boundaries.
//
// The computation is a fixed pipeline of pure stages:
//
//  1. Graph building with referential-integrity checks
//  2. Feedback-edge detection (cycle breaking for layering only)
//  3. Longest-path rank assignment via topological traversal
//  4. Bounded barycenter crossing reduction within ranks
//  5. Geometry: node sizes, lane heights, rank widths, coordinates
//  6. Orthogonal edge routing
//
// The engine is deterministic: identical documents produce bit-identical
// models, including node order, coordinates, and waypoints. It performs no
// I/O, holds no state between calls, and is safe for concurrent use from
// independent goroutines since each call builds its own model.
//
// Dangling transition endpoints are the only fatal condition and surface as
// an INVALID_REFERENCE error. Cycles, gateway lane fallbacks, and empty
// documents are recoverable and recorded as advisory [Note] values on the
// returned model.
package layout

import (
	"math"

	"github.com/matzehuels/laneflow/pkg/flow"
)

// NodeKind distinguishes work nodes from decision points.
type NodeKind string

// Node kinds.
const (
	KindActivity NodeKind = "activity"
	KindGateway  NodeKind = "gateway"
)

// Point is a single waypoint in an edge path, in layout units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is a positioned flow node. Coordinates are absolute layout units with
// the origin at the top-left of the diagram; Width and Height describe the
// node's bounding box. Nodes are immutable once the model is returned.
type Node struct {
	ID      string           `json:"id" bson:"id"`
	Label   string           `json:"label,omitempty" bson:"label,omitempty"`
	Kind    NodeKind         `json:"kind" bson:"kind"`
	Gateway flow.GatewayType `json:"gateway_type,omitempty" bson:"gateway_type,omitempty"`

	Lane  int `json:"lane" bson:"lane"`
	Rank  int `json:"rank" bson:"rank"`
	Order int `json:"order" bson:"order"` // position within the rank, left-to-right top-to-bottom

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// CenterX returns the horizontal center of the node.
func (n *Node) CenterX() float64 { return n.X + n.Width/2 }

// CenterY returns the vertical center of the node.
func (n *Node) CenterY() float64 { return n.Y + n.Height/2 }

// Edge is a routed transition. Waypoints always has length >= 2; the first
// and last points lie exactly on the source and target node boundaries.
// Feedback marks edges that were excluded from rank assignment to break a
// cycle; they are still routed, along the diagram's vertical extremity.
type Edge struct {
	ID        string  `json:"id" bson:"id"`
	Source    string  `json:"source" bson:"source"`
	Target    string  `json:"target" bson:"target"`
	Label     string  `json:"label,omitempty" bson:"label,omitempty"`
	Feedback  bool    `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Waypoints []Point `json:"waypoints" bson:"waypoints"`
}

// Lane is a horizontal swimlane band. Owner is the role ID, or empty for the
// synthetic lane created when a document has flow nodes but no roles.
type Lane struct {
	Index  int     `json:"index" bson:"index"`
	Owner  string  `json:"owner,omitempty" bson:"owner,omitempty"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"`
	Y      float64 `json:"y" bson:"y"`
	Height float64 `json:"height" bson:"height"`
}

// Rank is a vertical execution-order column.
type Rank struct {
	Index int     `json:"index" bson:"index"`
	X     float64 `json:"x" bson:"x"`
	Width float64 `json:"width" bson:"width"`
}

// Model is a complete computed layout. Width and Height are the diagram
// bounds, covering every lane, rank, node, and edge waypoint.
type Model struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
	Lanes []Lane `json:"lanes" bson:"lanes"`
	Ranks []Rank `json:"ranks" bson:"ranks"`

	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Notes []Note `json:"notes,omitempty" bson:"notes,omitempty"`
}

// NodeByID returns the node with the given ID, or nil if not present.
func (m *Model) NodeByID(id string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// IsEmpty reports whether the model contains no flow nodes.
func (m *Model) IsEmpty() bool { return len(m.Nodes) == 0 }

// Options tunes the geometry stage. All sizes are layout units.
// The zero value is not usable; start from [DefaultOptions].
type Options struct {
	MinActivityWidth float64 // lower bound for activity width regardless of label
	ActivityHeight   float64 // fixed activity height, also the slot height for stacking
	GatewaySize      float64 // gateways are squares of this size
	CharWidth        float64 // estimated width of one single-width character
	LabelPadding     float64 // horizontal padding added around labels
	HGap             float64 // horizontal gap between adjacent ranks
	VGap             float64 // vertical gap between stacked nodes in a lane
	LaneMinHeight    float64 // lower bound for lane height

	Sweeps int // barycenter sweep cap; each sweep alternates direction

	// Scale applies a global factor proportional to sqrt of the node count,
	// uniformly to all sizes and coordinates, after geometry completes.
	Scale bool
}

// DefaultOptions returns the standard geometry tuning.
func DefaultOptions() Options {
	return Options{
		MinActivityWidth: 120,
		ActivityHeight:   60,
		GatewaySize:      50,
		CharWidth:        8,
		LabelPadding:     24,
		HGap:             60,
		VGap:             20,
		LaneMinHeight:    120,
		Sweeps:           4,
		Scale:            true,
	}
}

// scaleFactor returns the global post-process factor for n nodes,
// proportional to sqrt(n) and clamped to keep small diagrams unscaled
// and very large ones bounded.
func scaleFactor(n int) float64 {
	f := math.Sqrt(float64(n) / 10)
	if f < 1 {
		return 1
	}
	if f > 2.5 {
		return 2.5
	}
	return f
}

// Compute runs the full layout pipeline over a normalized flow document.
//
// The only error condition is a transition referencing an unknown node ID
// (INVALID_REFERENCE); in that case no model is returned. All recoverable
// conditions (cycles, gateway lane fallbacks, empty documents) are recorded
// as notes on the model. An empty document yields a valid model with zero
// lanes, zero ranks, and no nodes or edges.
func Compute(doc *flow.Document, opts Options) (*Model, error) {
	g, err := buildGraph(doc)
	if err != nil {
		return nil, err
	}

	m := &Model{}

	if g.isEmpty() {
		m.Notes = append(m.Notes, Note{Kind: NoteEmptyGraph, Message: "document has no flow nodes"})
		return m, nil
	}

	// Cycle handling: compute the feedback set first, read-only, so that
	// every later stage sees an acyclic edge filter instead of a mutated
	// graph.
	markFeedback(g, m)

	topo := topoOrder(g)

	assignLanes(g, topo, m)
	assignRanks(g, topo)
	orders := orderRanks(g, topo, opts.Sweeps)

	placeGeometry(g, orders, opts, m)
	routeEdges(g, opts, m)

	if opts.Scale {
		applyScale(m, scaleFactor(len(g.nodes)))
	}

	return m, nil
}

// applyScale multiplies every size and coordinate in the model by f.
// Relative layout is unchanged.
func applyScale(m *Model, f float64) {
	if f == 1 {
		return
	}
	for i := range m.Nodes {
		n := &m.Nodes[i]
		n.X *= f
		n.Y *= f
		n.Width *= f
		n.Height *= f
	}
	for i := range m.Edges {
		for j := range m.Edges[i].Waypoints {
			m.Edges[i].Waypoints[j].X *= f
			m.Edges[i].Waypoints[j].Y *= f
		}
	}
	for i := range m.Lanes {
		m.Lanes[i].Y *= f
		m.Lanes[i].Height *= f
	}
	for i := range m.Ranks {
		m.Ranks[i].X *= f
		m.Ranks[i].Width *= f
	}
	m.Width *= f
	m.Height *= f
}
