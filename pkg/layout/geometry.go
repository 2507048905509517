package layout

import (
	"github.com/mattn/go-runewidth"
)

// Geometry.
//
// Sizes derive from labels: an activity is as wide as its estimated text
// width (double-width scripts count two cells per glyph, which is what
// runewidth measures) with a floor, and fixed-height; gateways are fixed
// squares. Ranks are as wide as their widest node plus the horizontal gap
// and stack left-to-right; lanes are tall enough for their busiest rank
// plus gaps, with a floor, and stack top-to-bottom in role order. Nodes are
// centered in their rank's width, and each lane's occupied block is
// vertically centered in its lane.

// estimateLabelWidth returns the layout width needed for a label.
func estimateLabelWidth(label string, opts Options) float64 {
	return float64(runewidth.StringWidth(label))*opts.CharWidth + opts.LabelPadding
}

// placeGeometry computes node sizes and coordinates, lane and rank frames,
// and the diagram bounds, appending them to the model in arena order.
func placeGeometry(g *graph, orders [][]int, opts Options, m *Model) {
	nodeW := make([]float64, len(g.nodes))
	nodeH := make([]float64, len(g.nodes))
	for n := range g.nodes {
		switch g.nodes[n].kind {
		case KindGateway:
			nodeW[n] = opts.GatewaySize
			nodeH[n] = opts.GatewaySize
		default:
			w := estimateLabelWidth(g.nodes[n].label, opts)
			if w < opts.MinActivityWidth {
				w = opts.MinActivityWidth
			}
			nodeW[n] = w
			nodeH[n] = opts.ActivityHeight
		}
	}

	// Rank frames: widest node plus the horizontal gap, stacked left to right.
	m.Ranks = make([]Rank, g.rankCount)
	x := 0.0
	for r := range orders {
		maxW := 0.0
		for _, n := range orders[r] {
			if nodeW[n] > maxW {
				maxW = nodeW[n]
			}
		}
		m.Ranks[r] = Rank{Index: r, X: x, Width: maxW + opts.HGap}
		x += m.Ranks[r].Width
	}

	// Busiest single rank per lane decides the lane height.
	counts := make([][]int, g.laneCount)
	for l := range counts {
		counts[l] = make([]int, g.rankCount)
	}
	for n := range g.nodes {
		counts[g.nodes[n].lane][g.nodes[n].rank]++
	}

	m.Lanes = make([]Lane, g.laneCount)
	y := 0.0
	for l := 0; l < g.laneCount; l++ {
		busiest := 0
		for _, c := range counts[l] {
			if c > busiest {
				busiest = c
			}
		}
		h := float64(busiest)*opts.ActivityHeight + float64(busiest+1)*opts.VGap
		if h < opts.LaneMinHeight {
			h = opts.LaneMinHeight
		}
		lane := Lane{Index: l, Y: y, Height: h}
		if l < len(g.doc.Roles) {
			lane.Owner = g.doc.Roles[l].ID
			lane.Label = g.doc.Roles[l].DisplayLabel()
		}
		m.Lanes[l] = lane
		y += h
	}

	// Slot index: position among same-lane nodes of the same rank, in rank
	// order. Slots are uniform ActivityHeight cells; smaller nodes center
	// inside their cell.
	slot := make([]int, len(g.nodes))
	for r := range orders {
		next := make([]int, g.laneCount)
		for _, n := range orders[r] {
			l := g.nodes[n].lane
			slot[n] = next[l]
			next[l]++
		}
	}

	m.Nodes = make([]Node, len(g.nodes))
	for n := range g.nodes {
		l, r := g.nodes[n].lane, g.nodes[n].rank
		lane, rank := &m.Lanes[l], &m.Ranks[r]

		stacked := counts[l][r]
		blockH := float64(stacked)*opts.ActivityHeight + float64(stacked-1)*opts.VGap
		top := lane.Y + (lane.Height-blockH)/2
		cellY := top + float64(slot[n])*(opts.ActivityHeight+opts.VGap)

		m.Nodes[n] = Node{
			ID:      g.nodes[n].id,
			Label:   g.nodes[n].label,
			Kind:    g.nodes[n].kind,
			Gateway: g.nodes[n].gateway,
			Lane:    l,
			Rank:    r,
			Order:   g.nodes[n].order,
			X:       rank.X + (rank.Width-nodeW[n])/2,
			Y:       cellY + (opts.ActivityHeight-nodeH[n])/2,
			Width:   nodeW[n],
			Height:  nodeH[n],
		}
	}

	// Diagram bounds cover every lane and rank frame.
	m.Width = x
	m.Height = y
}
