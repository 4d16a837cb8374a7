package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"c.json", `{"screenWidth": 1024, "screenHeight": 768, "aaSamples": 8, "fullscreen": true}`},
		{"c.toml", "screenWidth = 1024\nscreenHeight = 768\naaSamples = 8\nfullscreen = true\n"},
		{"c.yaml", "screenWidth: 1024\nscreenHeight: 768\naaSamples: 8\nfullscreen: true\n"},
		{"c.yml", "screenWidth: 1024\nscreenHeight: 768\naaSamples: 8\nfullscreen: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(write(t, dir, tt.name, tt.body))
			require.NoError(t, err)
			assert.Equal(t, 1024, c.ScreenWidth)
			assert.Equal(t, 768, c.ScreenHeight)
			assert.Equal(t, 8, c.AASamples)
			assert.True(t, c.Fullscreen)

			// untouched fields keep their defaults
			assert.Equal(t, Default().FPS, c.FPS)
			assert.Equal(t, "info", c.LogLevel)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(write(t, dir, "c.ini", "screenWidth=1"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(write(t, dir, "bad.json", "{"))
	assert.Error(t, err)

	_, err = Load(write(t, dir, "zero.toml", "screenWidth = 0\nfps = -1\n"))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "screen size")
	assert.ErrorContains(t, err, "fps")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	c, path, err := Find(dir)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), c)

	write(t, dir, "config.yaml", "title: yaml\n")
	write(t, dir, "config.toml", "title = \"toml\"\n")
	c, path, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), path)
	assert.Equal(t, "toml", c.Title)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	c := Default()
	c.AASamples = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalid)
}
