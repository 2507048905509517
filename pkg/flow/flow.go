// Package flow defines the business-flow document model consumed by LaneFlow.
//
// A Document describes a process as an ordered list of roles (swimlane owners),
// activities performed by those roles, gateways (branch/merge decision points),
// and directed transitions between activities and gateways. Documents are the
// canonical interchange format for the pipeline: they arrive as JSON from an
// upstream generator, are normalized here, and feed the layout engine.
//
// The package performs only light structural normalization (defaulted IDs,
// synthesized transition IDs, defaulted gateway types). Schema validation of
// incoming documents is the responsibility of the producer; referential
// integrity between transitions and nodes is checked by the layout engine.
package flow

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/laneflow/pkg/errors"
)

// Role types.
const (
	RoleHuman  = "human"
	RoleSystem = "system"
)

// GatewayType identifies the branching semantics of a gateway.
type GatewayType string

// Gateway types as they appear in flow documents and BPMN output.
const (
	GatewayExclusive GatewayType = "exclusive"
	GatewayParallel  GatewayType = "parallel"
	GatewayInclusive GatewayType = "inclusive"
)

// Valid reports whether t is a known gateway type.
func (t GatewayType) Valid() bool {
	switch t {
	case GatewayExclusive, GatewayParallel, GatewayInclusive:
		return true
	}
	return false
}

// Meta carries document-level metadata.
type Meta struct {
	ID          string `json:"id,omitempty" bson:"id,omitempty"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Role is a process participant that owns one swimlane.
// Lane order in the diagram follows the order roles appear in the document.
type Role struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Type string `json:"type,omitempty" bson:"type,omitempty"` // "human" or "system"
}

// DisplayLabel returns the role name if set, otherwise the ID.
func (r *Role) DisplayLabel() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Activity is a unit of work performed by a role.
type Activity struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	RoleID string `json:"role_id" bson:"role_id"`
}

// DisplayLabel returns the activity name if set, otherwise the ID.
func (a *Activity) DisplayLabel() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Gateway is a non-work decision point. Gateways carry no role reference;
// the layout engine derives their lane from neighboring nodes.
type Gateway struct {
	ID   string      `json:"id" bson:"id"`
	Name string      `json:"name,omitempty" bson:"name,omitempty"`
	Type GatewayType `json:"type,omitempty" bson:"type,omitempty"`
}

// DisplayLabel returns the gateway name if set, otherwise the ID.
func (g *Gateway) DisplayLabel() string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

// Transition is a directed connection between two nodes (activities or
// gateways). Condition is an optional label, typically set on transitions
// leaving an exclusive or inclusive gateway.
type Transition struct {
	ID        string `json:"id,omitempty" bson:"id,omitempty"`
	Source    string `json:"source" bson:"source"`
	Target    string `json:"target" bson:"target"`
	Condition string `json:"condition,omitempty" bson:"condition,omitempty"`
}

// Document is a complete flow description.
type Document struct {
	Meta        Meta         `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Roles       []Role       `json:"roles" bson:"roles"`
	Activities  []Activity   `json:"activities" bson:"activities"`
	Gateways    []Gateway    `json:"gateways,omitempty" bson:"gateways,omitempty"`
	Transitions []Transition `json:"transitions" bson:"transitions"`
}

// NodeCount returns the number of flow nodes (activities plus gateways).
func (d *Document) NodeCount() int {
	return len(d.Activities) + len(d.Gateways)
}

// IsEmpty reports whether the document has no flow nodes.
func (d *Document) IsEmpty() bool { return d.NodeCount() == 0 }

// Normalize fills in defaulted fields in place:
//   - missing transition IDs become "flow_<source>_<target>"
//   - missing gateway types become "exclusive"
//   - missing role types become "human"
//
// Normalization is idempotent. The layout engine and the exporters assume a
// normalized document so that every transition has a stable ID to name in
// errors and advisory notes.
func (d *Document) Normalize() {
	for i := range d.Roles {
		if d.Roles[i].Type == "" {
			d.Roles[i].Type = RoleHuman
		}
	}
	for i := range d.Gateways {
		if d.Gateways[i].Type == "" {
			d.Gateways[i].Type = GatewayExclusive
		}
	}
	for i := range d.Transitions {
		if d.Transitions[i].ID == "" {
			d.Transitions[i].ID = fmt.Sprintf("flow_%s_%s", d.Transitions[i].Source, d.Transitions[i].Target)
		}
	}
}

// Unmarshal decodes a JSON flow document and normalizes it.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFlow, err, "decode flow document")
	}
	d.Normalize()
	return &d, nil
}

// Marshal encodes a document as pretty-printed JSON.
func Marshal(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ReadFile loads and normalizes a flow document from a JSON file.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return Unmarshal(data)
}

// WriteFile writes a document to a JSON file.
func WriteFile(d *Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
