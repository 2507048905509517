package export

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
)

// BPMN 2.0 namespace URIs.
const (
	nsBPMN   = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	nsBPMNDI = "http://www.omg.org/spec/BPMN/20100524/DI"
	nsDC     = "http://www.omg.org/spec/DD/20100524/DC"
	nsDI     = "http://www.omg.org/spec/DD/20100524/DI"
	nsXSI    = "http://www.w3.org/2001/XMLSchema-instance"
)

// ToBPMN serializes the document and its layout as BPMN 2.0 XML with
// diagram interchange. The semantic section mirrors the document: one
// collaboration with a single participant, one process with a laneSet,
// userTask or serviceTask per activity depending on the owning role's
// type, typed gateways, and sequenceFlow elements with condition
// expressions. The BPMNDI section carries the computed bounds and edge
// waypoints verbatim.
func ToBPMN(doc *flow.Document, m *layout.Model) []byte {
	id := doc.Meta.ID
	if id == "" {
		id = "flow"
	}
	title := doc.Meta.Title
	if title == "" {
		title = "Business Process"
	}

	w := &xmlWriter{}
	w.line(`<?xml version="1.0" encoding="UTF-8"?>`)
	w.linef(`<bpmn2:definitions id="Definitions_%s" targetNamespace="http://bpmn.io/schema/bpmn"`, xmlEscape(id))
	w.linef(`    xmlns:bpmn2=%q xmlns:bpmndi=%q`, nsBPMN, nsBPMNDI)
	w.linef(`    xmlns:dc=%q xmlns:di=%q xmlns:xsi=%q>`, nsDC, nsDI, nsXSI)

	writeCollaboration(w, id, title)
	writeProcess(w, doc, m, id, title)
	writeDiagram(w, doc, m, id)

	w.line(`</bpmn2:definitions>`)
	return w.buf.Bytes()
}

func writeCollaboration(w *xmlWriter, id, title string) {
	w.indent(1)
	w.linef(`<bpmn2:collaboration id="Collaboration_%s">`, xmlEscape(id))
	w.indent(2)
	w.linef(`<bpmn2:participant id="Participant_%s" name="%s" processRef="Process_%s"/>`,
		xmlEscape(id), xmlEscape(title), xmlEscape(id))
	w.indent(1)
	w.line(`</bpmn2:collaboration>`)
}

func writeProcess(w *xmlWriter, doc *flow.Document, m *layout.Model, id, title string) {
	w.indent(1)
	w.linef(`<bpmn2:process id="Process_%s" name="%s" isExecutable="false">`, xmlEscape(id), xmlEscape(title))

	if len(m.Lanes) > 0 {
		w.indent(2)
		w.linef(`<bpmn2:laneSet id="LaneSet_Process_%s">`, xmlEscape(id))
		for _, lane := range m.Lanes {
			owner := lane.Owner
			if owner == "" {
				owner = "default"
			}
			w.indent(3)
			w.linef(`<bpmn2:lane id="Lane_%s" name="%s">`, xmlEscape(owner), xmlEscape(laneName(lane)))
			for i := range m.Nodes {
				if m.Nodes[i].Lane != lane.Index {
					continue
				}
				w.indent(4)
				w.linef(`<bpmn2:flowNodeRef>%s</bpmn2:flowNodeRef>`, xmlEscape(m.Nodes[i].ID))
			}
			w.indent(3)
			w.line(`</bpmn2:lane>`)
		}
		w.indent(2)
		w.line(`</bpmn2:laneSet>`)
	}

	roleType := make(map[string]string, len(doc.Roles))
	for i := range doc.Roles {
		roleType[doc.Roles[i].ID] = doc.Roles[i].Type
	}
	for i := range doc.Activities {
		a := &doc.Activities[i]
		elem := "bpmn2:userTask"
		if roleType[a.RoleID] == flow.RoleSystem {
			elem = "bpmn2:serviceTask"
		}
		w.indent(2)
		w.linef(`<%s id="%s" name="%s"/>`, elem, xmlEscape(a.ID), xmlEscape(a.DisplayLabel()))
	}
	for i := range doc.Gateways {
		g := &doc.Gateways[i]
		w.indent(2)
		w.linef(`<bpmn2:%s id="%s" name="%s"/>`, gatewayElement(g.Type), xmlEscape(g.ID), xmlEscape(g.DisplayLabel()))
	}
	for i := range doc.Transitions {
		t := &doc.Transitions[i]
		w.indent(2)
		if t.Condition == "" {
			w.linef(`<bpmn2:sequenceFlow id="%s" sourceRef="%s" targetRef="%s"/>`,
				xmlEscape(t.ID), xmlEscape(t.Source), xmlEscape(t.Target))
			continue
		}
		w.linef(`<bpmn2:sequenceFlow id="%s" name="%s" sourceRef="%s" targetRef="%s">`,
			xmlEscape(t.ID), xmlEscape(t.Condition), xmlEscape(t.Source), xmlEscape(t.Target))
		w.indent(3)
		w.linef(`<bpmn2:conditionExpression xsi:type="bpmn2:tFormalExpression">%s</bpmn2:conditionExpression>`,
			xmlEscape(t.Condition))
		w.indent(2)
		w.line(`</bpmn2:sequenceFlow>`)
	}

	w.indent(1)
	w.line(`</bpmn2:process>`)
}

func writeDiagram(w *xmlWriter, doc *flow.Document, m *layout.Model, id string) {
	w.indent(1)
	w.linef(`<bpmndi:BPMNDiagram id="BPMNDiagram_%s">`, xmlEscape(id))
	w.indent(2)
	w.linef(`<bpmndi:BPMNPlane id="BPMNPlane_%s" bpmnElement="Collaboration_%s">`, xmlEscape(id), xmlEscape(id))

	if len(m.Lanes) > 0 {
		w.indent(3)
		w.linef(`<bpmndi:BPMNShape id="BPMNShape_Participant_%s" bpmnElement="Participant_%s" isHorizontal="true">`,
			xmlEscape(id), xmlEscape(id))
		writeBounds(w, 4, 0, m.Lanes[0].Y, m.Width, laneSpan(m))
		w.indent(3)
		w.line(`</bpmndi:BPMNShape>`)

		for _, lane := range m.Lanes {
			owner := lane.Owner
			if owner == "" {
				owner = "default"
			}
			w.indent(3)
			w.linef(`<bpmndi:BPMNShape id="BPMNShape_Lane_%s" bpmnElement="Lane_%s" isHorizontal="true">`,
				xmlEscape(owner), xmlEscape(owner))
			writeBounds(w, 4, 0, lane.Y, m.Width, lane.Height)
			w.indent(3)
			w.line(`</bpmndi:BPMNShape>`)
		}
	}

	for i := range m.Nodes {
		n := &m.Nodes[i]
		w.indent(3)
		w.linef(`<bpmndi:BPMNShape id="BPMNShape_%s" bpmnElement="%s">`, xmlEscape(n.ID), xmlEscape(n.ID))
		writeBounds(w, 4, n.X, n.Y, n.Width, n.Height)
		w.indent(3)
		w.line(`</bpmndi:BPMNShape>`)
	}

	for i := range m.Edges {
		e := &m.Edges[i]
		w.indent(3)
		w.linef(`<bpmndi:BPMNEdge id="BPMNEdge_%s" bpmnElement="%s">`, xmlEscape(e.ID), xmlEscape(e.ID))
		for _, p := range e.Waypoints {
			w.indent(4)
			w.linef(`<di:waypoint x="%s" y="%s"/>`, fmtCoord(p.X), fmtCoord(p.Y))
		}
		w.indent(3)
		w.line(`</bpmndi:BPMNEdge>`)
	}

	w.indent(2)
	w.line(`</bpmndi:BPMNPlane>`)
	w.indent(1)
	w.line(`</bpmndi:BPMNDiagram>`)
}

func writeBounds(w *xmlWriter, depth int, x, y, width, height float64) {
	w.indent(depth)
	w.linef(`<dc:Bounds x="%s" y="%s" width="%s" height="%s"/>`,
		fmtCoord(x), fmtCoord(y), fmtCoord(width), fmtCoord(height))
}

func gatewayElement(t flow.GatewayType) string {
	switch t {
	case flow.GatewayParallel:
		return "parallelGateway"
	case flow.GatewayInclusive:
		return "inclusiveGateway"
	default:
		return "exclusiveGateway"
	}
}

func laneName(lane layout.Lane) string {
	if lane.Label != "" {
		return lane.Label
	}
	if lane.Owner != "" {
		return lane.Owner
	}
	return "Default"
}

// laneSpan returns the total height covered by the lane bands.
func laneSpan(m *layout.Model) float64 {
	if len(m.Lanes) == 0 {
		return m.Height
	}
	last := m.Lanes[len(m.Lanes)-1]
	return last.Y + last.Height - m.Lanes[0].Y
}

// fmtCoord formats a coordinate without trailing zero noise.
func fmtCoord(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// xmlWriter accumulates indented XML lines.
type xmlWriter struct {
	buf bytes.Buffer
}

func (w *xmlWriter) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.buf.WriteString("  ")
	}
}

func (w *xmlWriter) line(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *xmlWriter) linef(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// xmlEscape escapes text for use in element content and attribute values.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s)) // bytes.Buffer writes cannot fail
	return buf.String()
}
