// Package keyboard assembles a full keyboard: one curved column per
// finger, positioned by the finger table, with seam connectors stitched
// between every pair of adjacent columns.
package keyboard

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/column"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/parts"
)

// Options tunes a keyboard build.
type Options struct {
	// Keys builds every key. Nil uses parts.FaceAlignedKey with the
	// configured dimensions.
	Keys parts.KeyBuilder
	// Logger receives debug records per column and per seam. Nil is silent.
	Logger *log.Logger
}

// Keyboard is the assembled keyboard.
type Keyboard struct {
	*body.Composite

	columns  []string
	byName   map[string]*column.Column
	stitches []Stitch
}

// ColumnName returns the part name of column n.
func ColumnName(n int) string {
	return fmt.Sprintf("col%d", n)
}

// Build assembles the keyboard described by cfg.
func Build(k kernel.Kernel, cfg config.Keyboard, opts Options) (*Keyboard, error) {
	if len(cfg.Fingers) == 0 {
		return nil, fmt.Errorf("keyboard: %w: no fingers configured", config.ErrInvalid)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := opts.Keys
	if keys == nil {
		keys = parts.NewFaceAlignedKey(k, cfg.Key, cfg.Socket)
	}

	kb := &Keyboard{byName: make(map[string]*column.Column)}
	stitcher := &Stitcher{Kernel: k, PostSize: cfg.Connector.PostSize, Logger: logger}

	var (
		ordered []namedPart
		corners []anchor.Point
		prev    string
	)
	for i, finger := range cfg.Fingers {
		name := ColumnName(i)
		ccfg, err := cfg.ColumnConfig(i)
		if err != nil {
			return nil, err
		}
		col, err := column.Build(k, keys, ccfg, column.Options{
			PostSize: cfg.Connector.PostSize,
			Logger:   logger.With("column", name),
		})
		if err != nil {
			return nil, fmt.Errorf("keyboard: %s (%s): %w", name, finger.Name, err)
		}

		// Columns are positioned before any seam is built against them.
		x := cfg.ColumnSpacing*float64(i-1) + finger.XFudge
		col.Translate(x, finger.YOffset, finger.ZOffset)
		logger.Debug("placed column", "column", name, "finger", finger.Name,
			"rows", col.Rows(), "x", x, "y", finger.YOffset, "z", finger.ZOffset)

		kb.columns = append(kb.columns, name)
		kb.byName[name] = col
		ordered = append(ordered, namedPart{name, col})
		for _, c := range col.Anchors().Corners() {
			corners = append(corners, c)
		}

		if prev != "" {
			seams, err := stitcher.Stitch(prev, kb.byName[prev], name, col)
			if err != nil {
				return nil, err
			}
			for _, s := range seams {
				ordered = append(ordered, namedPart{s.Connector, s.Part})
				kb.stitches = append(kb.stitches, s.Stitch)
			}
		}
		prev = name
	}

	anchors, err := anchor.Bounds(corners, 0)
	if err != nil {
		return nil, fmt.Errorf("keyboard: anchors: %w", err)
	}
	comp, err := body.NewComposite(k, anchors)
	if err != nil {
		return nil, err
	}
	for _, np := range ordered {
		if err := comp.Add(np.name, np.part); err != nil {
			return nil, err
		}
	}
	kb.Composite = comp
	logger.Debug("keyboard assembled", "columns", len(kb.columns), "seams", len(kb.stitches))
	return kb, nil
}

type namedPart struct {
	name string
	part body.Part
}

// Columns returns the column names, left to right.
func (kb *Keyboard) Columns() []string {
	return append([]string(nil), kb.columns...)
}

// Column returns the named column.
func (kb *Keyboard) Column(name string) (*column.Column, bool) {
	c, ok := kb.byName[name]
	return c, ok
}

// Stitches returns every seam connector record in build order.
func (kb *Keyboard) Stitches() []Stitch {
	return append([]Stitch(nil), kb.stitches...)
}
