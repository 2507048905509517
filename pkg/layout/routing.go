package layout

// Edge routing.
//
// Forward edges leave the right side of their source and enter the left
// side of their target. When source and target share a lane in adjacent
// ranks the edge is a single straight segment; otherwise
// it takes an orthogonal dogleg through a vertical channel in the gap
// before the target's rank. Edges sharing a gap get evenly spread channel
// positions so parallel runs never coincide.
//
// Feedback edges never thread back through the rank structure. They drop
// out of the bottom (or climb out of the top) of the diagram and run along
// a horizontal channel past the outer edge, one channel per feedback edge.

func routeEdges(g *graph, opts Options, m *Model) {
	// Channel slots per inter-rank gap, keyed by the target rank. Counting
	// and assignment both follow edge insertion order.
	gapTotal := make(map[int]int)
	gapSlot := make([]int, len(g.edges))
	for i := range g.edges {
		e := &g.edges[i]
		if e.feedback || isDirect(g, e) {
			continue
		}
		r := g.nodes[e.dst].rank
		gapSlot[i] = gapTotal[r]
		gapTotal[r]++
	}

	topFeedback, bottomFeedback := 0, 0
	m.Edges = make([]Edge, len(g.edges))
	for i := range g.edges {
		e := &g.edges[i]
		out := Edge{
			ID:       e.id,
			Source:   g.nodes[e.src].id,
			Target:   g.nodes[e.dst].id,
			Label:    e.label,
			Feedback: e.feedback,
		}
		src, dst := &m.Nodes[e.src], &m.Nodes[e.dst]
		switch {
		case e.feedback:
			// Side: feedback between upper-half lanes routes over the top,
			// the rest under the bottom.
			mid := float64(src.Lane+dst.Lane) / 2
			if mid < float64(g.laneCount)/2 {
				out.Waypoints = feedbackRoute(src, dst, -opts.VGap*float64(topFeedback+1), true)
				topFeedback++
			} else {
				out.Waypoints = feedbackRoute(src, dst, m.Height+opts.VGap*float64(bottomFeedback+1), false)
				bottomFeedback++
			}
		case isDirect(g, e):
			out.Waypoints = []Point{
				{X: src.X + src.Width, Y: src.CenterY()},
				{X: dst.X, Y: dst.CenterY()},
			}
		default:
			out.Waypoints = channelRoute(src, dst, channelX(m, dst.Rank, gapSlot[i], gapTotal[dst.Rank], opts))
		}
		m.Edges[i] = out
	}

	normalizeBounds(m, opts)
}

// isDirect reports whether the edge can be a single straight segment:
// adjacent ranks within the same lane. When the endpoints share a slot
// height the segment is exactly horizontal, otherwise near-horizontal.
func isDirect(g *graph, e *graphEdge) bool {
	src, dst := &g.nodes[e.src], &g.nodes[e.dst]
	return dst.rank == src.rank+1 && src.lane == dst.lane
}

// channelX returns the vertical channel position for the slot-th of total
// edges sharing the gap before rank r. The free band between two ranks is
// one horizontal gap wide, centered on the rank boundary; channels spread
// evenly inside it.
func channelX(m *Model, r, slot, total int, opts Options) float64 {
	boundary := m.Ranks[r].X
	return boundary - opts.HGap/2 + opts.HGap*float64(slot+1)/float64(total+1)
}

// channelRoute builds a two-turn orthogonal route through a vertical
// channel: right out of the source, along the channel to the target's
// height, then left into the target.
func channelRoute(src, dst *Node, x float64) []Point {
	return []Point{
		{X: src.X + src.Width, Y: src.CenterY()},
		{X: x, Y: src.CenterY()},
		{X: x, Y: dst.CenterY()},
		{X: dst.X, Y: dst.CenterY()},
	}
}

// feedbackRoute builds a two-turn route along a horizontal channel outside
// the diagram body. Over the top the route leaves and re-enters through
// node top edges; under the bottom, through node bottom edges. A self-loop
// splays its anchors so the verticals do not coincide.
func feedbackRoute(src, dst *Node, channelY float64, top bool) []Point {
	srcX, dstX := src.CenterX(), dst.CenterX()
	if src == dst {
		srcX += src.Width / 4
		dstX -= dst.Width / 4
	}
	srcY, dstY := src.Y+src.Height, dst.Y+dst.Height
	if top {
		srcY, dstY = src.Y, dst.Y
	}
	return []Point{
		{X: srcX, Y: srcY},
		{X: srcX, Y: channelY},
		{X: dstX, Y: channelY},
		{X: dstX, Y: dstY},
	}
}

// normalizeBounds translates the diagram so no waypoint has a negative
// coordinate and grows the bounds to cover every route.
func normalizeBounds(m *Model, opts Options) {
	minY, maxY := 0.0, m.Height
	for i := range m.Edges {
		for _, p := range m.Edges[i].Waypoints {
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	if minY < 0 {
		shift := -minY + opts.VGap
		for i := range m.Nodes {
			m.Nodes[i].Y += shift
		}
		for i := range m.Lanes {
			m.Lanes[i].Y += shift
		}
		for i := range m.Edges {
			for j := range m.Edges[i].Waypoints {
				m.Edges[i].Waypoints[j].Y += shift
			}
		}
		maxY += shift
	}
	if maxY > m.Height {
		m.Height = maxY + opts.VGap
	}
}
