package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFollowsDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	l := New("test")
	SetOutput(&buf)

	require.NoError(t, SetLevel("warn"))
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown", "slot", 3)
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "scene/test")
	assert.Contains(t, buf.String(), "slot=3")

	require.NoError(t, SetLevel("info"))
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("chatty"))
}
