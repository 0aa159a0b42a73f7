package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackplan/rackplan/pkg/config"
	"github.com/rackplan/rackplan/pkg/pipeline"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	output     string // output file (single format) or base path
	formats    []string
	strategy   string
	start      int
	end        int
	spacing    int
	noRelocate bool
	strict     bool
	optimize   bool
	detailed   bool
	assetIDs   bool
	schema     string
	refresh    bool
	noCache    bool
}

// newPlanCmd creates the plan command: the full ingest → allocate →
// render pipeline with artifact output.
func newPlanCmd() *cobra.Command {
	var formatsStr string
	var opts planOpts

	cmd := &cobra.Command{
		Use:   "plan [inventory.csv]",
		Short: "Compute a placement and render cabinet diagrams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runPlan(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): drawio (default), json (comma-separated)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "relocation strategy: expand-up (default), expand-down, nearest")
	cmd.Flags().IntVar(&opts.start, "start", 0, "first usable slot (default from config)")
	cmd.Flags().IntVar(&opts.end, "end", 0, "last usable slot (default from config)")
	cmd.Flags().IntVar(&opts.spacing, "spacing", -1, "free slots required around every device")
	cmd.Flags().BoolVar(&opts.noRelocate, "no-relocate", false, "drop conflicting items instead of relocating")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when unresolved conflicts remain")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "compact items toward the bottom after placement")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show vendor details on device labels")
	cmd.Flags().BoolVar(&opts.assetIDs, "asset-ids", false, "show asset ids on device labels")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "force CSV schema: full or legacy")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass and repopulate the cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func runPlan(cmd *cobra.Command, input string, opts *planOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPathFromContext(ctx))
	if err != nil {
		return err
	}

	runner, err := newRunner(ctx, cfg, opts.noCache, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipelineOptions(cmd, cfg, input, opts)

	track := newProgress(logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Planned %d items across %d cabinets",
		result.Stats.ItemCount, result.Stats.CabinetCount))

	printSummary(result)

	base := basePath(opts.output, input)
	for _, format := range popts.Formats {
		path := artifactPath(base, opts.output, format, len(popts.Formats))
		if err := writeArtifact(ctx, path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	if n := len(result.Plan.Conflicts()); n > 0 {
		printWarning("%d unresolved conflicts, see the report for details", n)
	}
	if result.Summary.Relocated > 0 {
		printNextStep("Review relocations", "rackplan check "+input)
	}
	return nil
}

// pipelineOptions merges config defaults with explicitly set flags.
func pipelineOptions(cmd *cobra.Command, cfg config.Config, input string, opts *planOpts) pipeline.Options {
	popts := optionsFromConfig(cfg)
	popts.Input = input
	popts.Formats = opts.formats
	popts.Refresh = opts.refresh
	popts.Logger = loggerFromContext(cmd.Context())

	if opts.strategy != "" {
		popts.Strategy = opts.strategy
	}
	if opts.start > 0 {
		popts.Start = opts.start
	}
	if opts.end > 0 {
		popts.End = opts.end
	}
	if opts.spacing >= 0 {
		popts.Spacing = opts.spacing
	}
	if opts.noRelocate {
		popts.Relocate = false
	}
	if opts.strict {
		popts.Strict = true
	}
	if opts.optimize {
		popts.Optimize = true
	}
	if opts.detailed {
		popts.Detailed = true
	}
	if opts.assetIDs {
		popts.ShowAssetID = true
	}
	if opts.schema != "" {
		popts.Schema = opts.schema
	}
	return popts
}

// printSummary prints the placement outcome block.
func printSummary(result *pipeline.Result) {
	printStats(result.Summary.Placed, result.Summary.Relocated, result.Summary.Failed,
		result.CacheInfo.AllocateHit)
	stats := result.Plan.Stats()
	printDetail("utilization %.1f%% across %d rooms", stats.Utilization, stats.Rooms)
}

// basePath derives the base output path from the output and input paths.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath builds the output path for one format. An explicit
// --output with a matching extension is used verbatim for single-format
// runs.
func artifactPath(base, output, format string, formatCount int) string {
	if output != "" && formatCount == 1 && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}

// writeArtifact writes one rendered artifact to disk.
func writeArtifact(ctx context.Context, path string, data []byte) error {
	logger := loggerFromContext(ctx)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger.Debugf("Wrote %s: %d bytes", path, len(data))
	return nil
}
