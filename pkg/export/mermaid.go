package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
)

// MermaidOptions configures Mermaid flowchart output.
type MermaidOptions struct {
	// Fenced wraps the output in a ```mermaid code block for embedding in
	// Markdown documents.
	Fenced bool

	// Subgraphs groups nodes into one subgraph per lane.
	Subgraphs bool
}

// ToMermaid emits the flow as a Mermaid flowchart. Activities render as
// rounded boxes, gateways as diamonds, conditions as edge labels, and
// feedback transitions as dotted arrows. When opts.Subgraphs is set, nodes
// are grouped into one subgraph per lane in lane order.
func ToMermaid(doc *flow.Document, m *layout.Model, opts MermaidOptions) []byte {
	var buf bytes.Buffer
	if opts.Fenced {
		buf.WriteString("```mermaid\n")
	}
	buf.WriteString("flowchart TD\n\n")

	if opts.Subgraphs && len(m.Lanes) > 0 {
		for _, lane := range m.Lanes {
			fmt.Fprintf(&buf, "    subgraph lane%d[\"%s\"]\n", lane.Index, mermaidLabel(laneName(lane)))
			for i := range m.Nodes {
				if m.Nodes[i].Lane == lane.Index {
					writeMermaidNode(&buf, "        ", &m.Nodes[i])
				}
			}
			buf.WriteString("    end\n")
		}
	} else {
		for i := range m.Nodes {
			writeMermaidNode(&buf, "    ", &m.Nodes[i])
		}
	}

	if len(m.Nodes) > 0 {
		buf.WriteByte('\n')
	}

	for i := range m.Edges {
		e := &m.Edges[i]
		arrow := "-->"
		if e.Feedback {
			arrow = "-.->"
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "    %s %s|\"%s\"| %s\n", e.Source, arrow, mermaidLabel(e.Label), e.Target)
		} else {
			fmt.Fprintf(&buf, "    %s %s %s\n", e.Source, arrow, e.Target)
		}
	}

	if opts.Fenced {
		buf.WriteString("```\n")
	}
	return buf.Bytes()
}

func writeMermaidNode(buf *bytes.Buffer, indent string, n *layout.Node) {
	label := mermaidLabel(n.Label)
	if label == "" {
		label = n.ID
	}
	if n.Kind == layout.KindGateway {
		fmt.Fprintf(buf, "%s%s{\"%s\"}\n", indent, n.ID, label)
		return
	}
	fmt.Fprintf(buf, "%s%s[\"%s\"]\n", indent, n.ID, label)
}

// mermaidLabel strips characters that break Mermaid label parsing: double
// quotes become single quotes, newlines become spaces.
func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
