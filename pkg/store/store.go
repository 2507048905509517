// Package store persists conversion runs.
//
// A Run is the bookkeeping record of one pipeline execution: which document
// was converted, what the layout looked like in numbers, which formats were
// produced, and any advisory notes the engine raised. Two backends are
// provided:
//   - memory: in-process storage for development, testing, and the CLI
//   - mongo: MongoDB-backed storage for server deployments
//
// Backends return coded errors from pkg/errors; a missing run surfaces as
// ErrCodeRunNotFound so HTTP handlers can map it to 404 directly.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/laneflow/pkg/layout"
)

// Run records one conversion through the pipeline.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Source is a display name for the input, e.g. the file path or "api".
	Source string `json:"source,omitempty" bson:"source,omitempty"`

	// Title is the flow document's title, when present.
	Title string `json:"title,omitempty" bson:"title,omitempty"`

	// FlowHash is the content hash of the normalized input document.
	FlowHash string `json:"flow_hash,omitempty" bson:"flow_hash,omitempty"`

	// Formats lists the artifact formats produced by the run.
	Formats []string `json:"formats,omitempty" bson:"formats,omitempty"`

	// Layout summary.
	NodeCount int `json:"node_count" bson:"node_count"`
	EdgeCount int `json:"edge_count" bson:"edge_count"`
	LaneCount int `json:"lane_count" bson:"lane_count"`
	RankCount int `json:"rank_count" bson:"rank_count"`

	// Notes are the engine's advisory notes for the run.
	Notes []layout.Note `json:"notes,omitempty" bson:"notes,omitempty"`

	// Duration is the total pipeline wall time.
	Duration time.Duration `json:"duration" bson:"duration"`
}

// NewRun creates a run with a fresh ID and the current timestamp.
func NewRun(source string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
	}
}

// Store is the interface for run storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a run, overwriting any run with the same ID.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. A missing run yields an
	// ErrCodeRunNotFound error.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first. A limit of 0 means
	// no limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
