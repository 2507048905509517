package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/observability"
)

// Parse decodes and normalizes the flow document from the options. When a
// decoded document was supplied directly it is normalized in place and
// returned as-is. Parsing is a local decode and is never cached.
func Parse(ctx context.Context, opts Options) (*flow.Document, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Convert().OnParseStart(ctx, opts.Source)

	doc := opts.Document
	if doc == nil {
		var err error
		doc, err = flow.Unmarshal(opts.Input)
		if err != nil {
			observability.Convert().OnParseComplete(ctx, opts.Source, 0, time.Since(start), err)
			return nil, err
		}
	}
	doc.Normalize()

	observability.Convert().OnParseComplete(ctx, opts.Source, doc.NodeCount(), time.Since(start), nil)
	return doc, nil
}
