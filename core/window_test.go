package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWindowConfig(t *testing.T) {
	c := DefaultWindowConfig()
	assert.Equal(t, 800, c.Width)
	assert.Equal(t, 600, c.Height)
	assert.Equal(t, 4, c.Samples)
	assert.True(t, c.VSync)
	assert.False(t, c.Fullscreen)
	assert.Nil(t, c.Logger)
}
