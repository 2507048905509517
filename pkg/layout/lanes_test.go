package layout

import (
	"testing"

	"github.com/matzehuels/laneflow/pkg/flow"
)

func TestCompute_UnknownRoleDefaultsLane(t *testing.T) {
	doc := &flow.Document{
		Roles: []flow.Role{{ID: "known", Name: "Known"}},
		Activities: []flow.Activity{
			{ID: "ok", RoleID: "known"},
			{ID: "orphan", RoleID: "missing"},
		},
		Transitions: []flow.Transition{
			{Source: "ok", Target: "orphan"},
		},
	}
	m := mustCompute(t, doc)

	if n := node(t, m, "orphan"); n.Lane != 0 {
		t.Errorf("orphan lane = %d, want fallback 0", n.Lane)
	}
	notes := m.NotesOfKind(NoteLaneDefault)
	if len(notes) != 1 || notes[0].Ref != "orphan" {
		t.Errorf("lane default notes = %v, want one referencing %q", notes, "orphan")
	}
}

func TestCompute_IsolatedGatewayDefaultsLane(t *testing.T) {
	doc := &flow.Document{
		Roles: []flow.Role{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
		},
		Activities: []flow.Activity{
			{ID: "work", RoleID: "b"},
		},
		Gateways: []flow.Gateway{
			{ID: "floating", Type: flow.GatewayExclusive},
		},
	}
	m := mustCompute(t, doc)

	if n := node(t, m, "floating"); n.Lane != 0 {
		t.Errorf("isolated gateway lane = %d, want 0", n.Lane)
	}
	notes := m.NotesOfKind(NoteLaneDefault)
	if len(notes) != 1 || notes[0].Ref != "floating" {
		t.Errorf("lane default notes = %v, want one referencing %q", notes, "floating")
	}
}

func TestCompute_GatewayLaneFromSuccessor(t *testing.T) {
	// A gateway with no laned predecessor takes its first successor's lane.
	doc := &flow.Document{
		Roles: []flow.Role{
			{ID: "first", Name: "First"},
			{ID: "second", Name: "Second"},
		},
		Activities: []flow.Activity{
			{ID: "act", RoleID: "second"},
		},
		Gateways: []flow.Gateway{
			{ID: "start", Type: flow.GatewayExclusive},
		},
		Transitions: []flow.Transition{
			{Source: "start", Target: "act"},
		},
	}
	m := mustCompute(t, doc)

	if n := node(t, m, "start"); n.Lane != 1 {
		t.Errorf("gateway lane = %d, want successor lane 1", n.Lane)
	}
	if notes := m.NotesOfKind(NoteLaneDefault); len(notes) != 0 {
		t.Errorf("unexpected lane default notes: %v", notes)
	}
}

func TestCompute_LaneOrderFollowsRoles(t *testing.T) {
	doc := &flow.Document{
		Roles: []flow.Role{
			{ID: "z", Name: "Zulu"},
			{ID: "a", Name: "Alpha"},
		},
		Activities: []flow.Activity{
			{ID: "one", RoleID: "z"},
			{ID: "two", RoleID: "a"},
		},
		Transitions: []flow.Transition{
			{Source: "one", Target: "two"},
		},
	}
	m := mustCompute(t, doc)

	if m.Lanes[0].Owner != "z" || m.Lanes[1].Owner != "a" {
		t.Errorf("lane owners = %q, %q; want document role order z, a",
			m.Lanes[0].Owner, m.Lanes[1].Owner)
	}
	if m.Lanes[0].Label != "Zulu" {
		t.Errorf("lane 0 label = %q, want %q", m.Lanes[0].Label, "Zulu")
	}
	if m.Lanes[1].Y != m.Lanes[0].Y+m.Lanes[0].Height {
		t.Error("lanes not stacked contiguously")
	}
}

func TestCompute_NoRolesSyntheticLane(t *testing.T) {
	doc := &flow.Document{
		Activities: []flow.Activity{
			{ID: "solo"},
		},
	}
	m := mustCompute(t, doc)

	if len(m.Lanes) != 1 {
		t.Fatalf("lanes = %d, want one synthetic lane", len(m.Lanes))
	}
	if m.Lanes[0].Owner != "" {
		t.Errorf("synthetic lane owner = %q, want empty", m.Lanes[0].Owner)
	}
}
