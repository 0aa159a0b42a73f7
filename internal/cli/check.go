package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackplan/rackplan/pkg/config"
	"github.com/rackplan/rackplan/pkg/errors"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	strategy   string
	start      int
	end        int
	spacing    int
	noRelocate bool
	strict     bool
	schema     string
	noCache    bool
}

// newCheckCmd creates the check command: ingest and allocate without
// writing artifacts, reporting conflicts and relocations in detail.
func newCheckCmd() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [inventory.csv]",
		Short: "Validate an inventory's placement without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "relocation strategy: expand-up (default), expand-down, nearest")
	cmd.Flags().IntVar(&opts.start, "start", 0, "first usable slot (default from config)")
	cmd.Flags().IntVar(&opts.end, "end", 0, "last usable slot (default from config)")
	cmd.Flags().IntVar(&opts.spacing, "spacing", -1, "free slots required around every device")
	cmd.Flags().BoolVar(&opts.noRelocate, "no-relocate", false, "drop conflicting items instead of relocating")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when unresolved conflicts remain")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "force CSV schema: full or legacy")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func runCheck(cmd *cobra.Command, input string, opts *checkOpts) error {
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

	popts := optionsFromConfig(cfg)
	popts.Input = input
	popts.Logger = logger
	popts.Schema = opts.schema
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

	items, err := runner.Ingest(ctx, popts)
	if err != nil {
		return err
	}
	plan, sum, err := runner.Allocate(ctx, items, popts)
	if err != nil {
		return err
	}

	printInfo("Checked %d items", len(items))
	printStats(sum.Placed, sum.Relocated, sum.Failed, false)

	for _, cab := range plan.Cabinets() {
		printKeyValue(cab.Key().String(),
			fmt.Sprintf("%d items, %.1f%% used", len(cab.Items()), cab.Utilization()))
	}

	for _, a := range plan.Adjustments() {
		printDetail("moved %s", a.String())
	}

	conflicts := plan.Conflicts()
	for _, c := range conflicts {
		printWarning("%s", c.String())
	}

	if sum.Failed > 0 {
		printError("%d items could not be placed", sum.Failed)
	}
	if len(conflicts) == 0 && sum.Failed == 0 {
		printSuccess("Placement is conflict-free")
	}
	if opts.strict && len(conflicts) > 0 {
		return errors.New(errors.ErrCodeConflicts, "%d unresolved conflicts", len(conflicts))
	}
	return nil
}
