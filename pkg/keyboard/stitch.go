package keyboard

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/column"
	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/parts"
)

// RowSource is a column as seen by the stitcher: its row offsets and the
// socket anchors of each row.
type RowSource interface {
	Rows() []int
	SocketAnchors(row int) (*anchor.Box, bool)
}

// presence records which of the four sockets around a seam exist. A is the
// left column of the pair, B the right one; "prev" is the row below.
type presence uint8

const (
	aNow presence = 1 << iota
	bNow
	aPrev
	bPrev

	allPresent = aNow | bNow | aPrev | bPrev
)

// window holds the four sockets around one row of a seam. Missing sockets
// are nil.
type window struct {
	a, b, aPrev, bPrev *anchor.Box
}

func (w window) presence() presence {
	var p presence
	if w.a != nil {
		p |= aNow
	}
	if w.b != nil {
		p |= bNow
	}
	if w.aPrev != nil {
		p |= aPrev
	}
	if w.bPrev != nil {
		p |= bPrev
	}
	return p
}

// rule emits one connector when the presence bits selected by mask equal
// want. bridge returns the point sets in connector argument order.
type rule struct {
	name   string
	mask   presence
	want   presence
	bridge func(w window) []anchor.PointSet
}

func edge(b *anchor.Box, s, t anchor.Side) anchor.PointSet { return b.Edge(s, t) }

// rules is evaluated in order for every row; each matching rule emits its
// own connector.
var rules = []rule{
	{
		name: "side",
		mask: aNow | bNow,
		want: aNow | bNow,
		bridge: func(w window) []anchor.PointSet {
			return []anchor.PointSet{w.a.Right(), w.b.Left()}
		},
	},
	{
		name: "quad",
		mask: allPresent,
		want: allPresent,
		bridge: func(w window) []anchor.PointSet {
			return []anchor.PointSet{
				edge(w.a, anchor.Right, anchor.Back),
				edge(w.aPrev, anchor.Right, anchor.Front),
				edge(w.b, anchor.Left, anchor.Back),
				edge(w.bPrev, anchor.Left, anchor.Front),
			}
		},
	},
	{
		name: "left-longer-bottom",
		mask: allPresent,
		want: aNow | bNow | aPrev,
		bridge: func(w window) []anchor.PointSet {
			return []anchor.PointSet{
				edge(w.a, anchor.Right, anchor.Back),
				w.aPrev.Right(),
				edge(w.b, anchor.Left, anchor.Back),
			}
		},
	},
	{
		name: "right-longer-bottom",
		mask: allPresent,
		want: aNow | bNow | bPrev,
		bridge: func(w window) []anchor.PointSet {
			return []anchor.PointSet{
				edge(w.a, anchor.Right, anchor.Bottom),
				edge(w.b, anchor.Left, anchor.Bottom),
				w.bPrev.Left(),
			}
		},
	},
	{
		name: "left-longer-top",
		mask: allPresent,
		want: aNow | aPrev | bPrev,
		bridge: func(w window) []anchor.PointSet {
			return []anchor.PointSet{
				w.a.Right(),
				edge(w.aPrev, anchor.Right, anchor.Front),
				edge(w.bPrev, anchor.Left, anchor.Front),
			}
		},
	},
	{
		name: "right-longer-top",
		mask: allPresent,
		want: bNow | aPrev | bPrev,
		bridge: func(w window) []anchor.PointSet {
			return []anchor.PointSet{
				edge(w.aPrev, anchor.Right, anchor.Front),
				w.b.Left(),
				edge(w.bPrev, anchor.Left, anchor.Front),
			}
		},
	},
}

// Stitch records one seam connector.
type Stitch struct {
	Left      string // left column name
	Right     string // right column name
	Row       int
	Rule      string
	Connector string
}

// Seam is a stitch with the connector it produced.
type Seam struct {
	Stitch
	Part *parts.Connector
}

// Stitcher bridges adjacent columns. One Stitcher numbers the connectors of
// every pair it stitches, starting at connector0.
type Stitcher struct {
	Kernel   kernel.Kernel
	PostSize float64
	Logger   *log.Logger

	next int
}

// SeamName returns the name of the n-th seam connector.
func SeamName(n int) string {
	return fmt.Sprintf("connector%d", n)
}

// Count returns how many connectors the stitcher has emitted.
func (s *Stitcher) Count() int { return s.next }

// Stitch walks the rows of a and b from the lowest row of either column to
// one past the highest and emits a connector for every matching rule.
func (s *Stitcher) Stitch(aName string, a RowSource, bName string, b RowSource) ([]Seam, error) {
	lo, hi, ok := rowRange(a.Rows(), b.Rows())
	if !ok {
		return nil, nil
	}
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	post := s.PostSize
	if post == 0 {
		post = column.DefaultPostSize
	}

	var (
		seams []Seam
		prev  window
	)
	for row := lo; row <= hi+1; row++ {
		w := window{aPrev: prev.a, bPrev: prev.b}
		w.a, _ = a.SocketAnchors(row)
		w.b, _ = b.SocketAnchors(row)
		p := w.presence()

		for _, r := range rules {
			if p&r.mask != r.want {
				continue
			}
			name := SeamName(s.next)
			conn, err := parts.NewConnector(s.Kernel, post, r.bridge(w)...)
			if err != nil {
				return nil, fmt.Errorf("keyboard: %s rule at row %d between %s and %s: %w", r.name, row, aName, bName, err)
			}
			conn.Joins = joins(r.want, aName, bName, row)
			s.next++
			seams = append(seams, Seam{
				Stitch: Stitch{Left: aName, Right: bName, Row: row, Rule: r.name, Connector: name},
				Part:   conn,
			})
			logger.Debug("seam", "connector", name, "rule", r.name, "row", row, "left", aName, "right", bName)
		}
		prev = window{a: w.a, b: w.b}
	}
	return seams, nil
}

// joins names the keys a rule bridges, relative to the keyboard.
func joins(used presence, aName, bName string, row int) []string {
	var out []string
	add := func(bit presence, col string, r int) {
		if used&bit != 0 {
			out = append(out, col+"/"+column.KeyName(r))
		}
	}
	add(aNow, aName, row)
	add(aPrev, aName, row-1)
	add(bNow, bName, row)
	add(bPrev, bName, row-1)
	return out
}

func rowRange(a, b []int) (lo, hi int, ok bool) {
	rows := append(slices.Clone(a), b...)
	if len(rows) == 0 {
		return 0, 0, false
	}
	return slices.Min(rows), slices.Max(rows), true
}
