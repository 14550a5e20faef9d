package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/keebgen/pkg/config"
)

func TestDefaultFingerTable(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Fingers, 6)

	tests := []struct {
		radius  float64
		lean    float64
		numKeys int
		home    int
		fudge   float64
		yOff    float64
		zOff    float64
	}{
		{56.4, 25, 4, 1, 3.5, 0, 3},
		{56.4, 0, 4, 1, 0, 0, 0},
		{65.0, 0, 5, 2, 0, 11, 5},
		{64.0, 0, 5, 2, 0, 3, -2.5},
		{48.9, 0, 4, 1, 0, -19, -6.5},
		{48.9, -25, 4, 1, -3.5, -19, -3.5},
	}
	for i, tt := range tests {
		c, err := cfg.ColumnConfig(i)
		require.NoError(t, err)
		f := cfg.Fingers[i]
		assert.Equal(t, tt.radius, c.Radius, "finger %d radius", i)
		assert.Equal(t, tt.lean, c.KeySideLean, "finger %d lean", i)
		assert.Equal(t, tt.numKeys, c.NumKeys, "finger %d num_keys", i)
		assert.Equal(t, tt.home, c.HomeIndex, "finger %d home_index", i)
		assert.Equal(t, tt.fudge, f.XFudge, "finger %d x_fudge", i)
		assert.Equal(t, tt.yOff, f.YOffset, "finger %d y_offset", i)
		assert.Equal(t, tt.zOff, f.ZOffset, "finger %d z_offset", i)
	}
	assert.Equal(t, 19.0, cfg.ColumnSpacing)
}

func TestColumnConfigOutOfRange(t *testing.T) {
	cfg := config.Default()
	_, err := cfg.ColumnConfig(6)
	assert.ErrorIs(t, err, config.ErrInvalid)
	_, err = cfg.ColumnConfig(-1)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
column_spacing = 20.5

[column]
key_gap = 3.0
`))
	require.NoError(t, err)
	assert.Equal(t, 20.5, cfg.ColumnSpacing)
	assert.Equal(t, 3.0, cfg.Column.KeyGap)
	assert.Equal(t, 4, cfg.Column.NumKeys)
	assert.Len(t, cfg.Fingers, 6)
	assert.Equal(t, config.Default().Socket, cfg.Socket)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseFingerTableReplacesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[[finger]]
name = "solo"
y_offset = 4.0

[finger.column]
radius = 40.0
num_keys = 3
`))
	require.NoError(t, err)
	require.Len(t, cfg.Fingers, 1)
	assert.Equal(t, "solo", cfg.Fingers[0].Name)
	assert.Equal(t, 0.0, cfg.Fingers[0].XFudge)

	c, err := cfg.ColumnConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 40.0, c.Radius)
	assert.Equal(t, 3, c.NumKeys)
	assert.Equal(t, 0.0, c.KeySideLean)
	assert.Equal(t, cfg.Column.HomeIndex, c.HomeIndex)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", `column_spacing = `},
		{"unknown key", `colum_spacing = 19`},
		{"zero radius", "[column]\nradius = 0.0\n[[finger]]\nname = \"a\""},
		{"no keys", "[[finger]]\nname = \"a\"\n[finger.column]\nnum_keys = 0"},
		{"negative gap", "[column]\nkey_gap = -1.0"},
		{"hole too big", "[socket]\nhole = 18.0"},
		{"zero post", "[connector]\npost_size = 0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.toml))
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestValidateNegativeRadiusAllowed(t *testing.T) {
	c := config.Default().Column
	c.Radius = -50
	assert.NoError(t, c.Validate())
}

func TestValidateNoFingers(t *testing.T) {
	cfg := config.Default()
	cfg.Fingers = nil
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, config.Write(&buf, config.Default()))

	cfg, err := config.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.toml")
	require.NoError(t, os.WriteFile(path, []byte("[key]\nclearance = 5.0\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Key.Clearance)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
