// Package config holds the numeric inputs of a keyboard build: part
// dimensions, the shared column parameters and the per-finger table that
// positions and overrides each column.
//
// Files are TOML. Keys missing from a file keep their Default() values; a
// [[finger]] array, when present, replaces the default finger table.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every validation and decoding failure.
var ErrInvalid = errors.New("config: invalid")

// Key is the keycap envelope above each socket.
type Key struct {
	Width float64 `toml:"width"`
	Depth float64 `toml:"depth"`
	// Clearance is the height of the cap's bottom above the socket top.
	Clearance float64 `toml:"clearance"`
}

// Socket is the switch plate each key is mounted in. Its top face is the
// key's reference surface.
type Socket struct {
	Width     float64 `toml:"width"`
	Depth     float64 `toml:"depth"`
	Thickness float64 `toml:"thickness"`
	Hole      float64 `toml:"hole"`
}

// Connector controls the web posts hulled between parts.
type Connector struct {
	PostSize float64 `toml:"post_size"`
}

// Column holds the curvature parameters of one key column.
type Column struct {
	Radius            float64 `toml:"radius"`
	KeyGap            float64 `toml:"key_gap"`
	NumKeys           int     `toml:"num_keys"`
	HomeIndex         int     `toml:"home_index"`
	KeySideLean       float64 `toml:"key_side_lean"`
	HomeTiltbackAngle float64 `toml:"home_tiltback_angle"`
}

// FingerColumn overrides selected Column fields for one finger. Nil fields
// inherit the shared column.
type FingerColumn struct {
	Radius            *float64 `toml:"radius,omitempty"`
	KeyGap            *float64 `toml:"key_gap,omitempty"`
	NumKeys           *int     `toml:"num_keys,omitempty"`
	HomeIndex         *int     `toml:"home_index,omitempty"`
	KeySideLean       *float64 `toml:"key_side_lean,omitempty"`
	HomeTiltbackAngle *float64 `toml:"home_tiltback_angle,omitempty"`
}

// Finger places one column in the keyboard.
type Finger struct {
	Name    string       `toml:"name"`
	XFudge  float64      `toml:"x_fudge"`
	YOffset float64      `toml:"y_offset"`
	ZOffset float64      `toml:"z_offset"`
	Column  FingerColumn `toml:"column"`
}

// Keyboard is the full build configuration.
type Keyboard struct {
	// ColumnSpacing is the x distance between adjacent column origins.
	ColumnSpacing float64   `toml:"column_spacing"`
	Key           Key       `toml:"key"`
	Socket        Socket    `toml:"socket"`
	Connector     Connector `toml:"connector"`
	Column        Column    `toml:"column"`
	Fingers       []Finger  `toml:"finger"`
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

// Default returns the six-column dactyl-manuform layout: two index
// columns, middle, ring and two pinky columns. Middle and ring carry an
// extra key below the home row; the outer columns lean outward.
func Default() Keyboard {
	const (
		indexRadius  = 56.4
		middleRadius = 65.0
		ringRadius   = 64.0
		pinkyRadius  = 48.9
	)
	return Keyboard{
		ColumnSpacing: 19.0,
		Key:           Key{Width: 18.0, Depth: 18.0, Clearance: 6.6},
		Socket:        Socket{Width: 18.0, Depth: 18.0, Thickness: 4.0, Hole: 14.0},
		Connector:     Connector{PostSize: 1.0},
		Column: Column{
			Radius:            indexRadius,
			KeyGap:            2.0,
			NumKeys:           4,
			HomeIndex:         1,
			KeySideLean:       0,
			HomeTiltbackAngle: 10.0,
		},
		Fingers: []Finger{
			{Name: "index-outer", XFudge: 3.5, YOffset: 0, ZOffset: 3,
				Column: FingerColumn{Radius: f64(indexRadius), KeySideLean: f64(25)}},
			{Name: "index", YOffset: 0, ZOffset: 0,
				Column: FingerColumn{Radius: f64(indexRadius)}},
			{Name: "middle", YOffset: 11, ZOffset: 5,
				Column: FingerColumn{Radius: f64(middleRadius), NumKeys: intp(5), HomeIndex: intp(2)}},
			{Name: "ring", YOffset: 3, ZOffset: -2.5,
				Column: FingerColumn{Radius: f64(ringRadius), NumKeys: intp(5), HomeIndex: intp(2)}},
			{Name: "pinky", YOffset: -19, ZOffset: -6.5,
				Column: FingerColumn{Radius: f64(pinkyRadius)}},
			{Name: "pinky-outer", XFudge: -3.5, YOffset: -19, ZOffset: -3.5,
				Column: FingerColumn{Radius: f64(pinkyRadius), KeySideLean: f64(-25)}},
		},
	}
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Keyboard, error) {
	cfg := Default()
	// A [[finger]] array replaces the default table rather than merging
	// into it by index.
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Keyboard{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, ok := raw["finger"]; ok {
		cfg.Fingers = nil
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Keyboard{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Keyboard{}, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Keyboard{}, err
	}
	return cfg, nil
}

// Load reads and parses a TOML file.
func Load(path string) (Keyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keyboard{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Keyboard{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Keyboard) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// ColumnConfig resolves the effective column parameters for finger i.
func (k Keyboard) ColumnConfig(i int) (Column, error) {
	if i < 0 || i >= len(k.Fingers) {
		return Column{}, fmt.Errorf("%w: finger %d out of range [0,%d)", ErrInvalid, i, len(k.Fingers))
	}
	return k.Column.Override(k.Fingers[i].Column), nil
}

// Override returns c with every non-nil field of o applied.
func (c Column) Override(o FingerColumn) Column {
	if o.Radius != nil {
		c.Radius = *o.Radius
	}
	if o.KeyGap != nil {
		c.KeyGap = *o.KeyGap
	}
	if o.NumKeys != nil {
		c.NumKeys = *o.NumKeys
	}
	if o.HomeIndex != nil {
		c.HomeIndex = *o.HomeIndex
	}
	if o.KeySideLean != nil {
		c.KeySideLean = *o.KeySideLean
	}
	if o.HomeTiltbackAngle != nil {
		c.HomeTiltbackAngle = *o.HomeTiltbackAngle
	}
	return c
}

// Validate reports every problem found, joined.
func (k Keyboard) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			bad("%s must be positive, got %v", name, v)
		}
	}

	positive("key.width", k.Key.Width)
	positive("key.depth", k.Key.Depth)
	if k.Key.Clearance < 0 {
		bad("key.clearance must not be negative, got %v", k.Key.Clearance)
	}
	positive("socket.width", k.Socket.Width)
	positive("socket.depth", k.Socket.Depth)
	positive("socket.thickness", k.Socket.Thickness)
	positive("socket.hole", k.Socket.Hole)
	if k.Socket.Hole >= k.Socket.Width || k.Socket.Hole >= k.Socket.Depth {
		bad("socket.hole %v must be smaller than the plate", k.Socket.Hole)
	}
	positive("connector.post_size", k.Connector.PostSize)
	if len(k.Fingers) == 0 {
		bad("at least one [[finger]] is required")
	}
	for i, f := range k.Fingers {
		c, _ := k.ColumnConfig(i)
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("finger %d (%s): %w", i, f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the parameters the column algorithm cannot work without.
func (c Column) Validate() error {
	var errs []error
	if c.NumKeys < 1 {
		errs = append(errs, fmt.Errorf("%w: num_keys must be at least 1, got %d", ErrInvalid, c.NumKeys))
	}
	if c.Radius == 0 || math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) {
		errs = append(errs, fmt.Errorf("%w: radius must be finite and non-zero, got %v", ErrInvalid, c.Radius))
	}
	if c.KeyGap < 0 {
		errs = append(errs, fmt.Errorf("%w: key_gap must not be negative, got %v", ErrInvalid, c.KeyGap))
	}
	return errors.Join(errs...)
}
