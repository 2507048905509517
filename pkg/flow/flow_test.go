package flow

import (
	"testing"

	"github.com/matzehuels/laneflow/pkg/errors"
)

func TestUnmarshal(t *testing.T) {
	data := []byte(`{
		"metadata": {"id": "order", "title": "Order handling"},
		"roles": [{"id": "sales", "name": "Sales"}, {"id": "ops", "name": "Operations", "type": "system"}],
		"activities": [
			{"id": "receive", "name": "Receive order", "role_id": "sales"},
			{"id": "ship", "name": "Ship order", "role_id": "ops"}
		],
		"gateways": [{"id": "gw_check", "name": "In stock?"}],
		"transitions": [
			{"source": "receive", "target": "gw_check"},
			{"source": "gw_check", "target": "ship", "condition": "yes"}
		]
	}`)

	doc, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if doc.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", doc.NodeCount())
	}
	if doc.Gateways[0].Type != GatewayExclusive {
		t.Errorf("gateway type not defaulted: %q", doc.Gateways[0].Type)
	}
	if doc.Roles[0].Type != RoleHuman {
		t.Errorf("role type not defaulted: %q", doc.Roles[0].Type)
	}
	if doc.Roles[1].Type != RoleSystem {
		t.Errorf("explicit role type overwritten: %q", doc.Roles[1].Type)
	}
	if got := doc.Transitions[0].ID; got != "flow_receive_gw_check" {
		t.Errorf("transition ID not synthesized: %q", got)
	}
}

func TestUnmarshal_InvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte(`{"roles": [`))
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFlow) {
		t.Errorf("error code = %q, want INVALID_FLOW", errors.GetCode(err))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	doc := &Document{
		Transitions: []Transition{{Source: "a", Target: "b"}},
		Gateways:    []Gateway{{ID: "g"}},
	}
	doc.Normalize()
	first := doc.Transitions[0].ID
	doc.Normalize()
	if doc.Transitions[0].ID != first {
		t.Errorf("Normalize changed a synthesized ID on second run: %q -> %q", first, doc.Transitions[0].ID)
	}
}

func TestDisplayLabel(t *testing.T) {
	a := Activity{ID: "t1"}
	if a.DisplayLabel() != "t1" {
		t.Errorf("DisplayLabel fallback = %q, want ID", a.DisplayLabel())
	}
	a.Name = "承認する"
	if a.DisplayLabel() != "承認する" {
		t.Errorf("DisplayLabel = %q, want name", a.DisplayLabel())
	}
}

func TestGatewayTypeValid(t *testing.T) {
	for _, gt := range []GatewayType{GatewayExclusive, GatewayParallel, GatewayInclusive} {
		if !gt.Valid() {
			t.Errorf("%q should be valid", gt)
		}
	}
	if GatewayType("complex").Valid() {
		t.Error("unknown gateway type should be invalid")
	}
}

func TestIsEmpty(t *testing.T) {
	doc := &Document{Roles: []Role{{ID: "r"}}}
	if !doc.IsEmpty() {
		t.Error("document with no activities or gateways should be empty")
	}
}
