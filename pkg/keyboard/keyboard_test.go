package keyboard_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/column"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/keyboard"
	"github.com/chazu/keebgen/pkg/kernel/kerneltest"
)

func buildDefault(t *testing.T) *keyboard.Keyboard {
	t.Helper()
	kb, err := keyboard.Build(kerneltest.New(), config.Default(), keyboard.Options{})
	require.NoError(t, err)
	return kb
}

func TestDefaultKeyboard(t *testing.T) {
	kb := buildDefault(t)

	assert.Equal(t, []string{"col0", "col1", "col2", "col3", "col4", "col5"}, kb.Columns())

	wantRows := [][]int{
		{-1, 0, 1, 2},
		{-1, 0, 1, 2},
		{-2, -1, 0, 1, 2},
		{-2, -1, 0, 1, 2},
		{-1, 0, 1, 2},
		{-1, 0, 1, 2},
	}
	for i, name := range kb.Columns() {
		col, ok := kb.Column(name)
		require.True(t, ok)
		assert.Equal(t, wantRows[i], col.Rows(), name)
		assert.Len(t, col.Connectors(), len(wantRows[i])-1, name)
	}

	// Per pair: equal columns give side+quad per row; a column with an
	// extra bottom row adds one ragged bottom connector.
	stitches := kb.Stitches()
	require.Len(t, stitches, 7+8+9+8+7)
	for i, s := range stitches {
		assert.Equal(t, keyboard.SeamName(i), s.Connector)
		_, ok := kb.Part(s.Connector)
		assert.True(t, ok, s.Connector)
	}
	count := map[string]int{}
	for _, s := range stitches {
		count[s.Rule]++
	}
	assert.Equal(t, map[string]int{
		"side":                21,
		"quad":                16,
		"right-longer-bottom": 1,
		"left-longer-bottom":  1,
	}, count)

	assert.Equal(t, 6+39, kb.Len())
	_, ok := kb.Column("col6")
	assert.False(t, ok)
}

func TestColumnsArePositioned(t *testing.T) {
	kb := buildDefault(t)
	cfg := config.Default()

	// col1 and col2 have no lean, so their home sockets stay centered on
	// their column x position.
	for _, n := range []int{1, 2} {
		col, _ := kb.Column(keyboard.ColumnName(n))
		home, ok := col.SocketAnchors(0)
		require.True(t, ok)
		wantX := cfg.ColumnSpacing*float64(n-1) + cfg.Fingers[n].XFudge
		assert.InDelta(t, wantX, home.Center().X, 1e-9)
	}
}

func TestKeyboardAnchorsEncloseColumns(t *testing.T) {
	kb := buildDefault(t)
	lo := kb.Anchors().Corner(anchor.LeftBackBottom)
	hi := kb.Anchors().Corner(anchor.RightFrontTop)

	for _, name := range kb.Columns() {
		col, _ := kb.Column(name)
		for _, p := range col.Anchors().Corners() {
			assert.True(t, p.X >= lo.X && p.Y >= lo.Y && p.Z >= lo.Z, "%s corner %v below %v", name, p, lo)
			assert.True(t, p.X <= hi.X && p.Y <= hi.Y && p.Z <= hi.Z, "%s corner %v above %v", name, p, hi)
		}
	}
}

func TestRaggedPairBuild(t *testing.T) {
	cfg := config.Default()
	four, three := 4, 3
	cfg.Fingers = []config.Finger{
		{Name: "a", Column: config.FingerColumn{NumKeys: &four}},
		{Name: "b", Column: config.FingerColumn{NumKeys: &three}},
	}
	kb, err := keyboard.Build(kerneltest.New(), cfg, keyboard.Options{})
	require.NoError(t, err)

	a, _ := kb.Column("col0")
	b, _ := kb.Column("col1")
	assert.Equal(t, []int{-1, 0, 1, 2}, a.Rows())
	assert.Equal(t, []int{-1, 0, 1}, b.Rows())
	require.Len(t, kb.Stitches(), 6)
	assert.Equal(t, "left-longer-top", kb.Stitches()[5].Rule)
}

func TestBuildDeterministic(t *testing.T) {
	a, b := buildDefault(t), buildDefault(t)
	assert.Equal(t, a.Anchors().Corners(), b.Anchors().Corners())
	assert.Equal(t, a.Stitches(), b.Stitches())
	for _, name := range a.Columns() {
		ca, _ := a.Column(name)
		cb, _ := b.Column(name)
		assert.Equal(t, ca.Anchors().Corners(), cb.Anchors().Corners(), name)
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Fingers = nil
	_, err := keyboard.Build(kerneltest.New(), cfg, keyboard.Options{})
	assert.ErrorIs(t, err, config.ErrInvalid)

	cfg = config.Default()
	zero := 0
	cfg.Fingers[3].Column.NumKeys = &zero
	_, err = keyboard.Build(kerneltest.New(), cfg, keyboard.Options{})
	assert.ErrorIs(t, err, column.ErrNoKeys)

	cfg = config.Default()
	cfg.Column.Radius = 0
	cfg.Fingers[1].Column.Radius = nil
	_, err = keyboard.Build(kerneltest.New(), cfg, keyboard.Options{})
	assert.ErrorIs(t, err, column.ErrZeroRadius)
}

func TestBuildLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	_, err := keyboard.Build(kerneltest.New(), config.Default(), keyboard.Options{Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "placed key")
	assert.Contains(t, out, "seam")
	assert.Contains(t, out, "keyboard assembled")
}

func TestSolidFoldsEverything(t *testing.T) {
	kb := buildDefault(t)
	s := kb.Solid().(*kerneltest.Solid)
	min, max := s.BoundingBox()
	for i := range 3 {
		assert.False(t, math.IsInf(min[i], 0) || math.IsInf(max[i], 0))
		assert.Less(t, min[i], max[i])
	}
}
