package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
)

// ToDOT converts the flow to Graphviz DOT format for a quick structural
// overview. Lanes become subgraph clusters, activities boxes, gateways
// diamonds, and feedback transitions dashed edges. Graphviz performs its
// own placement here; use [RenderSVG] for the exact computed geometry.
func ToDOT(m *layout.Model) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, lane := range m.Lanes {
		fmt.Fprintf(&buf, "  subgraph cluster_lane_%d {\n", lane.Index)
		fmt.Fprintf(&buf, "    label=%q;\n", laneName(lane))
		buf.WriteString("    style=filled;\n")
		buf.WriteString("    fillcolor=\"#f0f4fa\";\n")
		for i := range m.Nodes {
			n := &m.Nodes[i]
			if n.Lane != lane.Index {
				continue
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(dotNodeAttrs(n), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for i := range m.Edges {
		e := &m.Edges[i]
		attrs := make([]string, 0, 2)
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if e.Feedback {
			attrs = append(attrs, "style=dashed", "constraint=false")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotNodeAttrs(n *layout.Node) []string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Kind == layout.KindGateway {
		attrs = append(attrs, "shape=diamond", "fillcolor=lightyellow")
		if n.Gateway == flow.GatewayParallel {
			attrs[0] = fmt.Sprintf("label=%q", "+ "+label)
		}
	}
	return attrs
}

// RenderDOTSVG rasterizes a DOT graph to SVG using the embedded Graphviz
// engine; no external binary is required.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.SVG)
}

// RenderDOTPNG rasterizes a DOT graph to PNG using the embedded Graphviz
// engine.
func RenderDOTPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
