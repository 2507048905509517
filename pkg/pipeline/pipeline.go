// Package pipeline provides the core conversion pipeline for laneflow.
//
// This package implements the complete parse → layout → render pipeline
// shared by the CLI and the HTTP server. Centralizing it keeps behavior
// identical across entry points and avoids duplicated caching logic.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode and normalize a flow document
//  2. Layout: compute the swimlane layout model
//  3. Render: serialize the model in the requested formats
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   flowJSON,
//	    Formats: []string{"bpmn", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bpmn := result.Artifacts["bpmn"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/laneflow/pkg/cache"
	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
)

// Format constants for output formats.
const (
	FormatBPMN    = "bpmn"
	FormatSVG     = "svg"
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatPNG     = "png"
	FormatJSON    = "json"
)

// DefaultFormat is produced when no formats are requested.
const DefaultFormat = FormatBPMN

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatBPMN:    true,
	FormatSVG:     true,
	FormatMermaid: true,
	FormatDOT:     true,
	FormatPNG:     true,
	FormatJSON:    true,
}

// FormatExtensions maps formats to output file extensions.
var FormatExtensions = map[string]string{
	FormatBPMN:    ".bpmn",
	FormatSVG:     ".svg",
	FormatMermaid: ".mmd",
	FormatDOT:     ".dot",
	FormatPNG:     ".png",
	FormatJSON:    ".json",
}

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Input is the raw flow document JSON; Document may be
	// set instead when the caller already holds a decoded document.
	Input    []byte         `json:"input,omitempty"`
	Document *flow.Document `json:"document,omitempty"`
	Source   string         `json:"source,omitempty"` // display name for logs, e.g. the input path

	// Layout options. Zero values fall back to the engine defaults.
	MinActivityWidth float64 `json:"min_activity_width,omitempty"`
	ActivityHeight   float64 `json:"activity_height,omitempty"`
	GatewaySize      float64 `json:"gateway_size,omitempty"`
	HGap             float64 `json:"h_gap,omitempty"`
	VGap             float64 `json:"v_gap,omitempty"`
	LaneMinHeight    float64 `json:"lane_min_height,omitempty"`
	Sweeps           int     `json:"sweeps,omitempty"`
	NoScale          bool    `json:"no_scale,omitempty"`

	// Render options.
	Formats       []string `json:"formats,omitempty"`
	NoLaneHeaders bool     `json:"no_lane_headers,omitempty"`
	NoEdgeLabels  bool     `json:"no_edge_labels,omitempty"`
	MermaidFenced bool     `json:"mermaid_fenced,omitempty"`
	MermaidPlain  bool     `json:"mermaid_plain,omitempty"` // skip lane subgraphs
	Refresh       bool     `json:"refresh,omitempty"`       // bypass cached results

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed, normalized flow document.
	Document *flow.Document

	// FlowHash is the content hash of the normalized document.
	FlowHash string

	// Model is the computed layout.
	Model *layout.Model

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LaneCount  int
	RankCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage. Parsing is a local
// decode and is never cached.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: bpmn, svg, mermaid, dot, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if len(o.Input) == 0 && o.Document == nil {
		return fmt.Errorf("input or document is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions materializes the engine options, falling back to the
// engine defaults for unset fields.
func (o *Options) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if o.MinActivityWidth > 0 {
		opts.MinActivityWidth = o.MinActivityWidth
	}
	if o.ActivityHeight > 0 {
		opts.ActivityHeight = o.ActivityHeight
	}
	if o.GatewaySize > 0 {
		opts.GatewaySize = o.GatewaySize
	}
	if o.HGap > 0 {
		opts.HGap = o.HGap
	}
	if o.VGap > 0 {
		opts.VGap = o.VGap
	}
	if o.LaneMinHeight > 0 {
		opts.LaneMinHeight = o.LaneMinHeight
	}
	if o.Sweeps > 0 {
		opts.Sweeps = o.Sweeps
	}
	opts.Scale = !o.NoScale
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	l := o.LayoutOptions()
	return cache.LayoutKeyOpts{
		MinActivityWidth: l.MinActivityWidth,
		ActivityHeight:   l.ActivityHeight,
		GatewaySize:      l.GatewaySize,
		CharWidth:        l.CharWidth,
		LabelPadding:     l.LabelPadding,
		HGap:             l.HGap,
		VGap:             l.VGap,
		LaneMinHeight:    l.LaneMinHeight,
		Sweeps:           l.Sweeps,
		Scale:            l.Scale,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		LaneHeaders: !o.NoLaneHeaders,
		EdgeLabels:  !o.NoEdgeLabels,
		Fenced:      o.MermaidFenced,
		Subgraphs:   !o.MermaidPlain,
	}
}
