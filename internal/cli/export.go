package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/keebgen/internal/app"
	"github.com/chazu/keebgen/pkg/graph"
	"github.com/chazu/keebgen/pkg/kernel"
)

const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

func newSTLCmd() *cobra.Command {
	var (
		src    sourceOpts
		output string
		cells  int
	)

	cmd := &cobra.Command{
		Use:   "stl",
		Short: "Write the merged keyboard solid as STL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cells)
			if err != nil {
				return err
			}
			w, ok := a.Kernel().(kernel.STLWriter)
			if !ok {
				return errors.New("geometry kernel cannot write STL")
			}
			b, err := src.buildValid(cmd, a)
			if err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			if err := w.WriteSTL(b.Keyboard.Solid(), output); err != nil {
				return err
			}
			prog.done("Wrote STL")
			out := cmd.OutOrStdout()
			printSuccess(out, "Generated keyboard shell")
			printFile(out, output)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "keyboard.stl", "output STL file")
	cmd.Flags().IntVar(&cells, "cells", 0, "marching cubes cells along the longest axis (0 = kernel default)")
	return cmd
}

func newMeshCmd() *cobra.Command {
	var (
		src    sourceOpts
		output string
		cells  int
		leaves bool
	)

	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Write per-part triangle meshes as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cells)
			if err != nil {
				return err
			}
			b, err := src.buildValid(cmd, a)
			if err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			meshes, err := a.Meshes(b, leaves)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Meshed %d parts", len(meshes)))

			result := app.EvalResult{
				Meshes:   meshes,
				Errors:   []app.EvalErrorData{},
				Warnings: []app.EvalErrorData{},
			}
			for _, w := range b.Validation.Warnings {
				result.Warnings = append(result.Warnings, app.EvalErrorData{Message: w.String()})
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := json.NewEncoder(w).Encode(result); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default stdout)")
	cmd.Flags().IntVar(&cells, "cells", 0, "marching cubes cells along the longest axis (0 = kernel default)")
	cmd.Flags().BoolVar(&leaves, "leaves", false, "one mesh per socket, cap and connector instead of per top-level part")
	return cmd
}

func newGraphCmd() *cobra.Command {
	var (
		src    sourceOpts
		output string
		format string
		opts   graph.DOTOptions
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the assembly graph as DOT, SVG or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case formatDOT, formatSVG, formatJSON:
			default:
				return fmt.Errorf("invalid format: %s (must be dot, svg or json)", format)
			}

			a, err := newApp(cmd, 0)
			if err != nil {
				return err
			}
			b, err := src.build(cmd, a)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case formatDOT:
				data = []byte(graph.ToDOT(b.Graph, opts))
			case formatSVG:
				data, err = graph.RenderSVG(cmd.Context(), graph.ToDOT(b.Graph, opts))
				if err != nil {
					return err
				}
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if format == formatJSON {
				err = graph.WriteJSON(w, b.Graph)
			} else {
				_, err = w.Write(data)
			}
			if err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printSuccess(cmd.ErrOrStderr(), "Exported %d graph nodes", b.Graph.NodeCount())
				printFile(cmd.ErrOrStderr(), output)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot, svg, json")
	cmd.Flags().BoolVar(&opts.Joins, "joins", true, "draw connector-to-key join edges")
	cmd.Flags().BoolVar(&opts.Leaves, "leaves", false, "include socket and cap nodes")
	return cmd
}
