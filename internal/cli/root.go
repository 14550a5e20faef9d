// Package cli implements the keebgen command-line interface.
//
// Every command builds a keyboard from the default layout, a TOML config
// file (--config) or a keyboard script (--script), then reports or exports
// it.
//
// # Commands
//
//   - build: assemble and print a summary with validation findings
//   - stl: write the merged solid as STL
//   - mesh: write per-part triangle meshes as JSON
//   - graph: export the assembly graph as DOT, SVG or JSON
//   - config: print the effective configuration as TOML
//   - version: print build information
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context and is tagged with a per-run id.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version. The main
// package calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

func versionString() string {
	return fmt.Sprintf("keebgen %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}

// Execute runs the keebgen CLI under ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "keebgen",
		Short:         "keebgen generates curved-column keyboard shells",
		Long:          `keebgen places keys on curved columns, stitches adjacent columns together with web connectors and exports the result as STL, meshes or an assembly graph.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level).With("run", uuid.NewString()[:8])
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, logger))
		},
	}

	root.SetVersionTemplate(versionString())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().String("kernel", kernelSDFX, "geometry kernel: sdfx, manifold")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newSTLCmd())
	root.AddCommand(newMeshCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}

// openOutput returns the writer for an -o flag. An empty path or "-"
// writes to the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
