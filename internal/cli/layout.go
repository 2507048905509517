package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneflow/pkg/export"
	"github.com/matzehuels/laneflow/pkg/pipeline"
)

// layoutCommand creates the layout command for computing swimlane layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [flow.json]",
		Short: "Compute the swimlane layout without rendering",
		Long: `Compute the swimlane layout without rendering.

The layout command parses a flow document and runs the layout engine, then
dumps the resulting model (lanes, ranks, node geometry, edge waypoints) as
JSON. Useful for debugging layouts and for feeding external renderers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().Float64Var(&opts.MinActivityWidth, "activity-width", 0, "minimum activity box width")
	cmd.Flags().Float64Var(&opts.ActivityHeight, "activity-height", 0, "activity box height")
	cmd.Flags().Float64Var(&opts.GatewaySize, "gateway-size", 0, "gateway diamond size")
	cmd.Flags().Float64Var(&opts.HGap, "h-gap", 0, "horizontal gap between ranks")
	cmd.Flags().Float64Var(&opts.VGap, "v-gap", 0, "vertical gap between stacked nodes")
	cmd.Flags().Float64Var(&opts.LaneMinHeight, "lane-height", 0, "minimum lane height")
	cmd.Flags().IntVar(&opts.Sweeps, "sweeps", 0, "crossing-reduction sweep count")
	cmd.Flags().BoolVar(&opts.NoScale, "no-scale", false, "disable size-based coordinate scaling")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	opts.Input = data
	opts.Source = input
	opts.Logger = c.Logger

	doc, err := pipeline.Parse(ctx, opts)
	if err != nil {
		return err
	}
	m, err := pipeline.ComputeLayout(ctx, doc, opts)
	if err != nil {
		return err
	}

	for _, note := range m.Notes {
		printWarning("%s", note.Message)
	}

	out, err := export.ToJSON(m)
	if err != nil {
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(input, ".json") + ".layout.json"
	}
	if err := writeArtifact(output, out); err != nil {
		return err
	}

	printFile(output)
	printStats(len(m.Nodes), len(m.Lanes), len(m.Ranks), false)
	return nil
}
