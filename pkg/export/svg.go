package export

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/laneflow/pkg/layout"
)

// Diagram palette.
const (
	colorLaneEven   = "#f7f9fc"
	colorLaneOdd    = "#eef2f8"
	colorLaneBorder = "#c3cede"
	colorLaneText   = "#4a5568"
	colorActivity   = "#ffffff"
	colorActStroke  = "#2b6cb0"
	colorGateway    = "#fefcbf"
	colorGwStroke   = "#b7791f"
	colorEdge       = "#4a5568"
	colorFeedback   = "#c53030"
	colorText       = "#1a202c"
)

const laneHeaderWidth = 32.0

// SVGOption configures the SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	laneHeaders bool
	edgeLabels  bool
	fontSize    float64
}

// WithoutLaneHeaders drops the rotated role label strip on the left of
// each lane.
func WithoutLaneHeaders() SVGOption { return func(r *svgRenderer) { r.laneHeaders = false } }

// WithoutEdgeLabels drops condition labels from edges.
func WithoutEdgeLabels() SVGOption { return func(r *svgRenderer) { r.edgeLabels = false } }

// WithFontSize overrides the default 12px label font size.
func WithFontSize(px float64) SVGOption { return func(r *svgRenderer) { r.fontSize = px } }

// RenderSVG draws the layout model as a standalone SVG document: lane bands
// in alternating tints, rounded rectangles for activities, diamonds for
// gateways, and the computed waypoint polylines for edges. Feedback edges
// are dashed. The drawing applies no layout logic; every coordinate comes
// from the model.
func RenderSVG(m *layout.Model, opts ...SVGOption) []byte {
	r := svgRenderer{laneHeaders: true, edgeLabels: true, fontSize: 12}
	for _, opt := range opts {
		opt(&r)
	}

	offsetX := 0.0
	if r.laneHeaders && len(m.Lanes) > 0 {
		offsetX = laneHeaderWidth
	}
	width, height := m.Width+offsetX, m.Height

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker></defs>`+"\n", colorEdge)

	r.renderLanes(&buf, m, width)
	r.renderEdges(&buf, m, offsetX)
	r.renderNodes(&buf, m, offsetX)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderLanes(buf *bytes.Buffer, m *layout.Model, width float64) {
	for _, lane := range m.Lanes {
		fill := colorLaneEven
		if lane.Index%2 == 1 {
			fill = colorLaneOdd
		}
		fmt.Fprintf(buf, `  <rect x="0" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s"/>`+"\n",
			lane.Y, width, lane.Height, fill, colorLaneBorder)

		if !r.laneHeaders {
			continue
		}
		fmt.Fprintf(buf, `  <rect x="0" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s"/>`+"\n",
			lane.Y, laneHeaderWidth, lane.Height, colorLaneOdd, colorLaneBorder)
		cx, cy := laneHeaderWidth/2, lane.Y+lane.Height/2
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" transform="rotate(-90 %.1f %.1f)" text-anchor="middle" dominant-baseline="central" font-size="%.0f" fill="%s">%s</text>`+"\n",
			cx, cy, cx, cy, r.fontSize, colorLaneText, xmlEscape(laneName(lane)))
	}
}

func (r *svgRenderer) renderNodes(buf *bytes.Buffer, m *layout.Model, offsetX float64) {
	for i := range m.Nodes {
		n := &m.Nodes[i]
		x := n.X + offsetX
		if n.Kind == layout.KindGateway {
			cx, cy := x+n.Width/2, n.CenterY()
			fmt.Fprintf(buf, `  <polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
				cx, n.Y, x+n.Width, cy, cx, n.Y+n.Height, x, cy, colorGateway, colorGwStroke)
		} else {
			fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
				x, n.Y, n.Width, n.Height, colorActivity, colorActStroke)
		}
		label := n.Label
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-size="%.0f" fill="%s">%s</text>`+"\n",
			x+n.Width/2, n.CenterY(), r.fontSize, colorText, xmlEscape(label))
	}
}

func (r *svgRenderer) renderEdges(buf *bytes.Buffer, m *layout.Model, offsetX float64) {
	for i := range m.Edges {
		e := &m.Edges[i]
		var points bytes.Buffer
		for j, p := range e.Waypoints {
			if j > 0 {
				points.WriteByte(' ')
			}
			fmt.Fprintf(&points, "%.1f,%.1f", p.X+offsetX, p.Y)
		}
		stroke, dash := colorEdge, ""
		if e.Feedback {
			stroke, dash = colorFeedback, ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"%s marker-end="url(#arrow)"/>`+"\n",
			points.String(), stroke, dash)

		if r.edgeLabels && e.Label != "" && len(e.Waypoints) > 0 {
			p := e.Waypoints[0]
			fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
				p.X+offsetX+4, p.Y-4, r.fontSize-1, colorEdge, xmlEscape(e.Label))
		}
	}
}
