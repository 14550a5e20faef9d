package engine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/keebgen/pkg/config"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites keyboard script source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols and cannot collide with user variables.
//  2. kebab-case identifiers become snake_case (key-cap -> key_cap);
//     zygomys reads a bare hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			j := skipQuoted(b, i, '"', true)
			out = append(out, b[i:j]...)
			i = j
		case c == '`':
			j := skipQuoted(b, i, '`', false)
			out = append(out, b[i:j]...)
			i = j
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipQuoted returns the index just past the literal opened at b[i].
func skipQuoted(b []byte, i int, quote byte, escapes bool) int {
	j := i + 1
	for j < len(b) && b[j] != quote {
		if escapes && b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Script values
// ---------------------------------------------------------------------------

// sexpColumn carries the column parameters a (column ...) form set.
type sexpColumn struct {
	over config.FingerColumn
}

func (c *sexpColumn) SexpString(ps *zygo.PrintState) string {
	var parts []string
	add := func(name string, v any) { parts = append(parts, fmt.Sprintf(":%s %v", name, v)) }
	if c.over.Radius != nil {
		add("radius", *c.over.Radius)
	}
	if c.over.KeyGap != nil {
		add("key-gap", *c.over.KeyGap)
	}
	if c.over.NumKeys != nil {
		add("num-keys", *c.over.NumKeys)
	}
	if c.over.HomeIndex != nil {
		add("home-index", *c.over.HomeIndex)
	}
	if c.over.KeySideLean != nil {
		add("key-side-lean", *c.over.KeySideLean)
	}
	if c.over.HomeTiltbackAngle != nil {
		add("home-tiltback-angle", *c.over.HomeTiltbackAngle)
	}
	if len(parts) == 0 {
		return "(column)"
	}
	return "(column " + strings.Join(parts, " ") + ")"
}
func (c *sexpColumn) Type() *zygo.RegisteredType { return nil }

type sexpFinger struct {
	finger config.Finger
}

func (f *sexpFinger) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(finger %q)", f.finger.Name)
}
func (f *sexpFinger) Type() *zygo.RegisteredType { return nil }

type sexpKey struct {
	key config.Key
}

func (k *sexpKey) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(key-cap %gx%g +%g)", k.key.Width, k.key.Depth, k.key.Clearance)
}
func (k *sexpKey) Type() *zygo.RegisteredType { return nil }

type sexpSocket struct {
	socket config.Socket
}

func (s *sexpSocket) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(socket %gx%gx%g)", s.socket.Width, s.socket.Depth, s.socket.Thickness)
}
func (s *sexpSocket) Type() *zygo.RegisteredType { return nil }

type sexpKeyboard struct {
	cfg config.Keyboard
}

func (k *sexpKeyboard) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(keyboard %d fingers)", len(k.cfg.Fingers))
}
func (k *sexpKeyboard) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a builtin's arguments split into keyword and positional.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// only rejects positional arguments and keywords outside allowed.
func (a kwArgs) only(allowed ...string) error {
	if len(a.positional) > 0 {
		return fmt.Errorf("%s: unexpected argument %s", a.fn, a.positional[0].SexpString(nil))
	}
	for name := range a.kw {
		if !slices.Contains(allowed, name) {
			return fmt.Errorf("%s: unknown keyword :%s", a.fn, name)
		}
	}
	return nil
}

func (a kwArgs) float(name string, dst *float64) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, name, err)
	}
	*dst = f
	return nil
}

func (a kwArgs) floatPtr(name string, dst **float64) error {
	if _, ok := a.kw[name]; !ok {
		return nil
	}
	var f float64
	if err := a.float(name, &f); err != nil {
		return err
	}
	*dst = &f
	return nil
}

func (a kwArgs) intPtr(name string, dst **int) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, name, err)
	}
	*dst = &n
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt accepts integers and whole floats.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// state collects what a script produced.
type state struct {
	last *config.Keyboard
}

// registerBuiltins installs the keyboard DSL into env. Source must go
// through preprocessSource first so :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, st *state) {

	// (column :radius 65 :key-gap 2 :num-keys 5 :home-index 2
	//         :key-side-lean 0 :home-tiltback-angle 10)
	env.AddFunction("column", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("column", args)
		if err := pa.only("radius", "key-gap", "num-keys", "home-index", "key-side-lean", "home-tiltback-angle"); err != nil {
			return zygo.SexpNull, err
		}
		var c config.FingerColumn
		for _, err := range []error{
			pa.floatPtr("radius", &c.Radius),
			pa.floatPtr("key-gap", &c.KeyGap),
			pa.intPtr("num-keys", &c.NumKeys),
			pa.intPtr("home-index", &c.HomeIndex),
			pa.floatPtr("key-side-lean", &c.KeySideLean),
			pa.floatPtr("home-tiltback-angle", &c.HomeTiltbackAngle),
		} {
			if err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpColumn{over: c}, nil
	})

	// (finger :name "middle" :column (column ...) :x-fudge 0 :y-offset 11 :z-offset 5)
	env.AddFunction("finger", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("finger", args)
		if err := pa.only("name", "column", "x-fudge", "y-offset", "z-offset"); err != nil {
			return zygo.SexpNull, err
		}
		var f config.Finger
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("finger: name: %w", err)
			}
			f.Name = s
		}
		if v, ok := pa.kw["column"]; ok {
			c, ok := v.(*sexpColumn)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("finger: column: expected (column ...), got %T (%s)", v, v.SexpString(nil))
			}
			f.Column = c.over
		}
		for _, err := range []error{
			pa.float("x-fudge", &f.XFudge),
			pa.float("y-offset", &f.YOffset),
			pa.float("z-offset", &f.ZOffset),
		} {
			if err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpFinger{finger: f}, nil
	})

	// (key-cap :width 18 :depth 18 :clearance 6.6)
	env.AddFunction("key_cap", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("key-cap", args)
		if err := pa.only("width", "depth", "clearance"); err != nil {
			return zygo.SexpNull, err
		}
		k := config.Default().Key
		for _, err := range []error{
			pa.float("width", &k.Width),
			pa.float("depth", &k.Depth),
			pa.float("clearance", &k.Clearance),
		} {
			if err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpKey{key: k}, nil
	})

	// (socket :width 18 :depth 18 :thickness 4 :hole 14)
	env.AddFunction("socket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("socket", args)
		if err := pa.only("width", "depth", "thickness", "hole"); err != nil {
			return zygo.SexpNull, err
		}
		s := config.Default().Socket
		for _, err := range []error{
			pa.float("width", &s.Width),
			pa.float("depth", &s.Depth),
			pa.float("thickness", &s.Thickness),
			pa.float("hole", &s.Hole),
		} {
			if err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpSocket{socket: s}, nil
	})

	// (keyboard :spacing 19 :post-size 1 :key (key-cap ...) :socket (socket ...)
	//           :column (column ...) :fingers (list (finger ...) ...))
	//
	// Unset parts keep their defaults; :fingers replaces the finger table.
	env.AddFunction("keyboard", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("keyboard", args)
		if err := pa.only("spacing", "post-size", "key", "socket", "column", "fingers"); err != nil {
			return zygo.SexpNull, err
		}
		cfg := config.Default()
		if err := pa.float("spacing", &cfg.ColumnSpacing); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.float("post-size", &cfg.Connector.PostSize); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["key"]; ok {
			k, ok := v.(*sexpKey)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("keyboard: key: expected (key-cap ...), got %T", v)
			}
			cfg.Key = k.key
		}
		if v, ok := pa.kw["socket"]; ok {
			s, ok := v.(*sexpSocket)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("keyboard: socket: expected (socket ...), got %T", v)
			}
			cfg.Socket = s.socket
		}
		if v, ok := pa.kw["column"]; ok {
			c, ok := v.(*sexpColumn)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("keyboard: column: expected (column ...), got %T", v)
			}
			cfg.Column = cfg.Column.Override(c.over)
		}
		if v, ok := pa.kw["fingers"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keyboard: fingers: %w", err)
			}
			cfg.Fingers = nil
			for i, item := range items {
				f, ok := item.(*sexpFinger)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("keyboard: finger %d: expected (finger ...), got %T (%s)",
						i, item, item.SexpString(nil))
				}
				cfg.Fingers = append(cfg.Fingers, f.finger)
			}
		}
		if err := cfg.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("keyboard: %w", err)
		}

		st.last = &cfg
		return &sexpKeyboard{cfg: cfg}, nil
	})
}
