package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneflow/pkg/pipeline"
)

// convertCommand creates the convert command, the main entry point for
// turning a flow document into diagram artifacts.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		configPath string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "convert [flow.json]",
		Short: "Convert a flow document into diagram artifacts",
		Long: `Convert a flow document into diagram artifacts.

The convert command reads a flow document (roles, activities, gateways,
transitions), computes a deterministic swimlane layout, and renders it to one
or more formats: bpmn (default), svg, mermaid, dot, png, json.

When no input file is given, an interactive picker lists the flow documents
in the current directory.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.Formats = formats

			input := ""
			if len(args) > 0 {
				input = args[0]
			} else {
				input, err = pickFlowFile(".")
				if err != nil {
					return err
				}
			}
			return c.runConvert(cmd.Context(), input, opts, output, noCache, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): bpmn (default), svg, mermaid, dot, png, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/laneflow/config.toml)")

	// Layout flags
	cmd.Flags().Float64Var(&opts.MinActivityWidth, "activity-width", 0, "minimum activity box width")
	cmd.Flags().Float64Var(&opts.ActivityHeight, "activity-height", 0, "activity box height")
	cmd.Flags().Float64Var(&opts.GatewaySize, "gateway-size", 0, "gateway diamond size")
	cmd.Flags().Float64Var(&opts.HGap, "h-gap", 0, "horizontal gap between ranks")
	cmd.Flags().Float64Var(&opts.VGap, "v-gap", 0, "vertical gap between stacked nodes")
	cmd.Flags().Float64Var(&opts.LaneMinHeight, "lane-height", 0, "minimum lane height")
	cmd.Flags().IntVar(&opts.Sweeps, "sweeps", 0, "crossing-reduction sweep count")
	cmd.Flags().BoolVar(&opts.NoScale, "no-scale", false, "disable size-based coordinate scaling")

	// Render flags
	cmd.Flags().BoolVar(&opts.NoLaneHeaders, "no-lane-headers", false, "omit lane header bands in SVG output")
	cmd.Flags().BoolVar(&opts.NoEdgeLabels, "no-edge-labels", false, "omit transition condition labels in SVG output")
	cmd.Flags().BoolVar(&opts.MermaidFenced, "mermaid-fenced", false, "wrap Mermaid output in a code fence")
	cmd.Flags().BoolVar(&opts.MermaidPlain, "mermaid-plain", false, "omit lane subgraphs in Mermaid output")

	return cmd
}

// runConvert executes the pipeline for input and writes one artifact per format.
func (c *CLI) runConvert(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyLayout(&opts)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	opts.Input = data
	opts.Source = input
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, "Converting "+input)
	spin.Start()

	result, err := runner.Execute(ctx, opts)
	spin.Stop()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		printError("Conversion failed")
		return err
	}

	multi := len(opts.Formats) > 1
	for _, format := range opts.Formats {
		path := outputPath(output, input, format, multi)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	for _, note := range result.Model.Notes {
		printWarning("%s", note.Message)
	}

	cached := result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printStats(result.Stats.NodeCount, result.Stats.LaneCount, result.Stats.RankCount, cached)
	prog.done("Converted " + input)
	return nil
}
