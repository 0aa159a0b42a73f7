// Package cli implements the rackplan command-line interface.
//
// The main commands are:
//   - plan: run the full pipeline and write diagram/report artifacts
//   - check: validate an inventory's placement without writing output
//   - cache: manage the artifact cache
//
// All commands support --verbose (-v) for debug-level logging and
// --config for a rackplan.toml file. Loggers are passed through
// context.Context for structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via ldflags
// at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the rackplan CLI and returns an error if any command
// fails. The context carries cancellation from signal handling in main.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "rackplan",
		Short:        "Rackplan turns equipment inventories into cabinet diagrams",
		Long:         `Rackplan is a CLI tool that reads data-center equipment inventories, computes a conflict-free rack-unit placement for every device, and renders per-room cabinet diagrams and reports.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cctx = withConfigPath(cctx, configPath)
			cmd.SetContext(cctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("rackplan %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to rackplan.toml (default: ./rackplan.toml if present)")

	root.AddCommand(newPlanCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
