package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/keebgen/internal/app"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/kernel/manifold"
	"github.com/chazu/keebgen/pkg/kernel/sdfx"
)

const (
	kernelSDFX     = "sdfx"
	kernelManifold = "manifold"
)

// newKernel returns the named geometry kernel. cells is the sdfx marching
// cubes resolution; zero keeps the kernel default.
var newKernel = func(name string, cells int) (kernel.Kernel, error) {
	switch name {
	case kernelSDFX, "":
		return &sdfx.SdfxKernel{MeshCells: cells}, nil
	case kernelManifold:
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel: %s (must be sdfx or manifold)", name)
}

// sourceOpts selects where the keyboard configuration comes from.
type sourceOpts struct {
	config string // TOML file
	script string // keyboard script
}

func (o *sourceOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVarP(&o.script, "script", "s", "", "keyboard script file")
	cmd.MarkFlagsMutuallyExclusive("config", "script")
}

// load resolves the effective configuration. Script errors are printed one
// per line before the error is returned.
func (o *sourceOpts) load(cmd *cobra.Command, a *app.App) (config.Keyboard, error) {
	logger := loggerFromContext(cmd.Context())
	switch {
	case o.config != "":
		logger.Debug("loading config", "path", o.config)
		return config.Load(o.config)
	case o.script != "":
		logger.Debug("evaluating script", "path", o.script)
		src, err := os.ReadFile(o.script)
		if err != nil {
			return config.Keyboard{}, err
		}
		cfg, evalErrs, err := a.Load(string(src))
		if err != nil {
			return config.Keyboard{}, fmt.Errorf("%s: %w", o.script, err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				printError(cmd.ErrOrStderr(), "%s:%d: %s", o.script, e.Line, e.Message)
			}
			return config.Keyboard{}, fmt.Errorf("%s: %d script error(s)", o.script, len(evalErrs))
		}
		return cfg, nil
	}
	logger.Debug("using default layout")
	return config.Default(), nil
}

// build loads the configuration and assembles it.
func (o *sourceOpts) build(cmd *cobra.Command, a *app.App) (*app.Build, error) {
	cfg, err := o.load(cmd, a)
	if err != nil {
		return nil, err
	}
	prog := newProgress(loggerFromContext(cmd.Context()))
	b, err := a.Build(cfg)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Assembled %d columns, %d seams", len(b.Keyboard.Columns()), len(b.Keyboard.Stitches())))
	return b, nil
}

// buildValid is build for export commands: validation errors abort.
func (o *sourceOpts) buildValid(cmd *cobra.Command, a *app.App) (*app.Build, error) {
	b, err := o.build(cmd, a)
	if err != nil {
		return nil, err
	}
	if !b.Validation.OK() {
		for _, e := range b.Validation.Errors {
			printError(cmd.ErrOrStderr(), "%s", e.Error())
		}
		return nil, fmt.Errorf("assembly has %d validation error(s)", len(b.Validation.Errors))
	}
	return b, nil
}

func newApp(cmd *cobra.Command, cells int) (*app.App, error) {
	name, _ := cmd.Flags().GetString("kernel")
	k, err := newKernel(name, cells)
	if err != nil {
		return nil, err
	}
	loggerFromContext(cmd.Context()).Debug("geometry kernel", "kernel", name)
	return app.New(k, loggerFromContext(cmd.Context())), nil
}

func newBuildCmd() *cobra.Command {
	var src sourceOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a keyboard and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, 0)
			if err != nil {
				return err
			}
			b, err := src.build(cmd, a)
			if err != nil {
				return err
			}
			printBuild(cmd.OutOrStdout(), b)
			if !b.Validation.OK() {
				return fmt.Errorf("assembly has %d validation error(s)", len(b.Validation.Errors))
			}
			return nil
		},
	}
	src.register(cmd)
	return cmd
}

func newConfigCmd() *cobra.Command {
	var src sourceOpts

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, 0)
			if err != nil {
				return err
			}
			cfg, err := src.load(cmd, a)
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
	src.register(cmd)
	return cmd
}
