// Package app runs the whole keyboard pipeline: script or config, the
// assembled keyboard, its assembly graph and the per-part meshes.
package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/engine"
	"github.com/chazu/keebgen/pkg/graph"
	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/kernel/sdfx"
	"github.com/chazu/keebgen/pkg/keyboard"
	"github.com/chazu/keebgen/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App holds the script engine and geometry kernel shared by every run.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger
}

// MeshData is the JSON mesh format written by the mesh command.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a script error or validation finding.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// Build is one assembled keyboard with its graph and validation findings.
type Build struct {
	Config     config.Keyboard
	Keyboard   *keyboard.Keyboard
	Graph      *graph.AssemblyGraph
	Validation graph.ValidationResult
}

// New creates an App. A nil kernel selects sdfx; a nil logger is silent.
func New(k kernel.Kernel, logger *log.Logger) *App {
	if k == nil {
		k = sdfx.New()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
		logger: logger,
	}
}

// Kernel returns the geometry kernel builds run on.
func (a *App) Kernel() kernel.Kernel { return a.kernel }

// Load evaluates a keyboard script. Script errors come back as data; the
// error return is reserved for panics and timeouts.
func (a *App) Load(source string) (config.Keyboard, []EvalErrorData, error) {
	cfg, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return config.Keyboard{}, nil, err
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			out[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return config.Keyboard{}, out, nil
	}
	return *cfg, nil, nil
}

// Build assembles cfg and validates the resulting assembly graph.
func (a *App) Build(cfg config.Keyboard) (*Build, error) {
	kb, err := keyboard.Build(a.kernel, cfg, keyboard.Options{Logger: a.logger})
	if err != nil {
		return nil, err
	}
	g := graph.FromPart(kb)
	res := graph.ValidateAll(g)
	a.logger.Debug("graph validated", "nodes", g.NodeCount(),
		"errors", len(res.Errors), "warnings", len(res.Warnings))
	return &Build{Config: cfg, Keyboard: kb, Graph: g, Validation: res}, nil
}

// Meshes tessellates a build, one mesh per top-level part, or one per leaf
// when leaves is set. Every mesh gets a palette color.
func (a *App) Meshes(b *Build, leaves bool) ([]MeshData, error) {
	var (
		meshes []*kernel.Mesh
		err    error
	)
	if leaves {
		meshes, err = tessellate.Leaves(b.Keyboard, a.kernel)
	} else {
		meshes, err = tessellate.Tessellate(b.Keyboard, a.kernel)
	}
	if err != nil {
		return nil, err
	}
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out, nil
}

// Evaluate runs a script through the whole pipeline. Failures at any stage
// are reported in Errors and leave Meshes empty.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	fail := func(msg string) EvalResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	cfg, evalErrs, err := a.Load(source)
	if err != nil {
		a.logger.Error("evaluate failed", "err", err)
		return fail(err.Error())
	}
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		return result
	}

	b, err := a.Build(cfg)
	if err != nil {
		return fail("build failed: " + err.Error())
	}
	for _, w := range b.Validation.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.String()})
	}
	if !b.Validation.OK() {
		for _, e := range b.Validation.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	meshes, err := a.Meshes(b, false)
	if err != nil {
		a.logger.Error("tessellate failed", "err", err)
		return fail(fmt.Sprintf("tessellation failed: %v", err))
	}
	result.Meshes = meshes
	return result
}
