package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
	"github.com/matzehuels/laneflow/pkg/observability"
)

// ComputeLayout runs the layout engine over a normalized document with the
// options' tuning. The caller is expected to hold a normalized document;
// [Parse] takes care of that.
func ComputeLayout(ctx context.Context, doc *flow.Document, opts Options) (*layout.Model, error) {
	start := time.Now()
	observability.Convert().OnLayoutStart(ctx, doc.NodeCount())

	m, err := layout.Compute(doc, opts.LayoutOptions())

	observability.Convert().OnLayoutComplete(ctx, doc.NodeCount(), time.Since(start), err)
	return m, err
}
