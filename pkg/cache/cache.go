// Package cache provides caching for pipeline stage outputs.
//
// Three backends are available: [FileCache] for CLI usage (entries under a
// cache directory with expiry metadata), [RedisCache] for server
// deployments, and [NullCache] to disable caching. Keys are produced by a
// [Keyer] so that every entry point (CLI, HTTP API) addresses the same
// entries for the same inputs.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// TTLs per pipeline stage. Layouts and artifacts are pure functions of
// their inputs and could live forever; the TTLs bound disk usage.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// LayoutKeyOpts are the layout options that affect the computed model and
// therefore participate in the cache key.
type LayoutKeyOpts struct {
	MinActivityWidth float64 `json:"min_activity_width"`
	ActivityHeight   float64 `json:"activity_height"`
	GatewaySize      float64 `json:"gateway_size"`
	CharWidth        float64 `json:"char_width"`
	LabelPadding     float64 `json:"label_padding"`
	HGap             float64 `json:"h_gap"`
	VGap             float64 `json:"v_gap"`
	LaneMinHeight    float64 `json:"lane_min_height"`
	Sweeps           int     `json:"sweeps"`
	Scale            bool    `json:"scale"`
}

// ArtifactKeyOpts are the render options that affect a serialized artifact.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	LaneHeaders bool   `json:"lane_headers"`
	EdgeLabels  bool   `json:"edge_labels"`
	Fenced      bool   `json:"fenced"`
	Subgraphs   bool   `json:"subgraphs"`
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey keys a computed layout by the flow document's content hash
	// and the layout options.
	LayoutKey(flowHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the layout's content hash
	// and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates hierarchical keys with SHA-256 hashed components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(flowHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", flowHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
