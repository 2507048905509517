package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
)

func fixture(t *testing.T) (*flow.Document, *layout.Model) {
	t.Helper()
	doc := &flow.Document{
		Meta: flow.Meta{ID: "onboarding", Title: "Employee Onboarding"},
		Roles: []flow.Role{
			{ID: "hr", Name: "HR", Type: flow.RoleHuman},
			{ID: "it", Name: "IT Systems", Type: flow.RoleSystem},
		},
		Activities: []flow.Activity{
			{ID: "collect", Name: "Collect documents", RoleID: "hr"},
			{ID: "provision", Name: "Provision accounts", RoleID: "it"},
			{ID: "welcome", Name: "Welcome meeting", RoleID: "hr"},
		},
		Gateways: []flow.Gateway{
			{ID: "complete", Name: "Docs complete?", Type: flow.GatewayExclusive},
		},
		Transitions: []flow.Transition{
			{Source: "collect", Target: "complete"},
			{Source: "complete", Target: "provision", Condition: "yes"},
			{ID: "recollect", Source: "complete", Target: "collect", Condition: "no"},
			{Source: "provision", Target: "welcome"},
		},
	}
	doc.Normalize()

	opts := layout.DefaultOptions()
	opts.Scale = false
	m, err := layout.Compute(doc, opts)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return doc, m
}

func TestToBPMN(t *testing.T) {
	doc, m := fixture(t)
	out := string(ToBPMN(doc, m))

	for _, want := range []string{
		`<bpmn2:definitions id="Definitions_onboarding"`,
		`<bpmn2:participant id="Participant_onboarding" name="Employee Onboarding" processRef="Process_onboarding"/>`,
		`<bpmn2:lane id="Lane_hr" name="HR">`,
		`<bpmn2:flowNodeRef>collect</bpmn2:flowNodeRef>`,
		`<bpmn2:userTask id="collect" name="Collect documents"/>`,
		`<bpmn2:serviceTask id="provision" name="Provision accounts"/>`,
		`<bpmn2:exclusiveGateway id="complete" name="Docs complete?"/>`,
		`<bpmn2:conditionExpression xsi:type="bpmn2:tFormalExpression">yes</bpmn2:conditionExpression>`,
		`<bpmndi:BPMNShape id="BPMNShape_collect" bpmnElement="collect">`,
		`<bpmndi:BPMNEdge id="BPMNEdge_recollect" bpmnElement="recollect">`,
		`<di:waypoint `,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("BPMN output missing %q", want)
		}
	}

	// Every edge's DI carries all computed waypoints.
	for _, e := range m.Edges {
		if got := strings.Count(out, `bpmnElement="`+e.ID+`"`); got != 1 {
			t.Errorf("edge %s appears %d times in DI, want 1", e.ID, got)
		}
	}
}

func TestToBPMN_EscapesMarkup(t *testing.T) {
	doc := &flow.Document{
		Roles:      []flow.Role{{ID: "r", Name: "A & B <Ops>"}},
		Activities: []flow.Activity{{ID: "a", Name: `Check "limits"`, RoleID: "r"}},
	}
	doc.Normalize()
	opts := layout.DefaultOptions()
	opts.Scale = false
	m, err := layout.Compute(doc, opts)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	out := string(ToBPMN(doc, m))
	if strings.Contains(out, "<Ops>") {
		t.Error("role name markup not escaped")
	}
	if !strings.Contains(out, "A &amp; B") {
		t.Error("ampersand not escaped")
	}
}

func TestToMermaid(t *testing.T) {
	doc, m := fixture(t)
	out := string(ToMermaid(doc, m, MermaidOptions{Fenced: true, Subgraphs: true}))

	for _, want := range []string{
		"```mermaid\n",
		"flowchart TD",
		`subgraph lane0["HR"]`,
		`collect["Collect documents"]`,
		`complete{"Docs complete?"}`,
		`complete -->|"yes"| provision`,
		`complete -.->|"no"| collect`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Mermaid output missing %q", want)
		}
	}
}

func TestToMermaid_Plain(t *testing.T) {
	doc, m := fixture(t)
	out := string(ToMermaid(doc, m, MermaidOptions{}))

	if strings.Contains(out, "```") {
		t.Error("unfenced output contains a code fence")
	}
	if strings.Contains(out, "subgraph") {
		t.Error("output contains subgraphs without Subgraphs option")
	}
}

func TestRenderSVG(t *testing.T) {
	_, m := fixture(t)
	out := string(RenderSVG(m))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("not an SVG document: %.60s", out)
	}
	for _, want := range []string{
		"<polygon",         // gateway diamond
		`rx="6"`,           // rounded activity
		"<polyline",        // routed edges
		"stroke-dasharray", // dashed feedback edge
		">HR</text>",       // lane header
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}

	// One polyline per edge.
	if got := strings.Count(out, "<polyline"); got != len(m.Edges) {
		t.Errorf("polylines = %d, want %d", got, len(m.Edges))
	}
}

func TestToDOT(t *testing.T) {
	_, m := fixture(t)
	out := ToDOT(m)

	for _, want := range []string{
		"digraph flow {",
		"subgraph cluster_lane_0",
		`label="HR"`,
		`"complete" [label="Docs complete?", shape=diamond`,
		`"complete" -> "provision" [label="yes"]`,
		"style=dashed, constraint=false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
}

func TestToJSON_RoundTrips(t *testing.T) {
	_, m := fixture(t)
	data, err := ToJSON(m)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded layout.Model
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Nodes) != len(m.Nodes) || len(decoded.Edges) != len(m.Edges) {
		t.Errorf("decoded %d nodes / %d edges, want %d / %d",
			len(decoded.Nodes), len(decoded.Edges), len(m.Nodes), len(m.Edges))
	}
}
