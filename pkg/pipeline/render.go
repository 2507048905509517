package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/laneflow/pkg/export"
	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
	"github.com/matzehuels/laneflow/pkg/observability"
)

// Render serializes the layout model in every requested format. The PNG
// format renders the DOT overview through the embedded Graphviz engine and
// honors ctx cancellation; all other formats are local serialization.
func Render(ctx context.Context, doc *flow.Document, m *layout.Model, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Convert().OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var err error
	for _, format := range opts.Formats {
		if artifacts[format], err = renderFormat(ctx, doc, m, format, opts); err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			break
		}
	}

	observability.Convert().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, doc *flow.Document, m *layout.Model, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatBPMN:
		return export.ToBPMN(doc, m), nil
	case FormatSVG:
		return export.RenderSVG(m, svgOptions(opts)...), nil
	case FormatMermaid:
		return export.ToMermaid(doc, m, export.MermaidOptions{
			Fenced:    opts.MermaidFenced,
			Subgraphs: !opts.MermaidPlain,
		}), nil
	case FormatDOT:
		return []byte(export.ToDOT(m)), nil
	case FormatPNG:
		return export.RenderDOTPNG(ctx, export.ToDOT(m))
	case FormatJSON:
		return export.ToJSON(m)
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}

func svgOptions(opts Options) []export.SVGOption {
	var svgOpts []export.SVGOption
	if opts.NoLaneHeaders {
		svgOpts = append(svgOpts, export.WithoutLaneHeaders())
	}
	if opts.NoEdgeLabels {
		svgOpts = append(svgOpts, export.WithoutEdgeLabels())
	}
	return svgOpts
}
