package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyCodesMatchGLFW(t *testing.T) {
	assert.Equal(t, Key(65), KeyA)
	assert.Equal(t, Key(90), KeyZ)
	assert.Equal(t, Key(57), Key9)
	assert.Equal(t, Key(256), KeyEscape)
	assert.Equal(t, Key(265), KeyUp)
	assert.Equal(t, Key(301), KeyF12)
	assert.Equal(t, Key(348), KeyMenu)
	assert.Equal(t, ModifierKey(8), ModSuper)
}

func TestDispatchKey(t *testing.T) {
	d := NewDispatchTable()

	var got []Action
	d.RegisterKey(KeyW, func(key Key, action Action, mods ModifierKey) {
		assert.Equal(t, KeyW, key)
		assert.True(t, mods.Has(ModShift))
		got = append(got, action)
	})

	assert.True(t, d.HandleKey(KeyW, Press, ModShift))
	assert.True(t, d.HandleKey(KeyW, Release, ModShift|ModAlt))
	assert.False(t, d.HandleKey(KeyS, Press, 0))
	assert.Equal(t, []Action{Press, Release}, got)

	d.UnregisterKey(KeyW)
	assert.False(t, d.HandleKey(KeyW, Press, ModShift))
	assert.Len(t, got, 2)
}

func TestRegisterReplacesHandler(t *testing.T) {
	d := NewDispatchTable()
	first, second := 0, 0
	d.RegisterKey(KeyEscape, func(Key, Action, ModifierKey) { first++ })
	d.RegisterKey(KeyEscape, func(Key, Action, ModifierKey) { second++ })

	d.HandleKey(KeyEscape, Press, 0)
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestDispatchMouse(t *testing.T) {
	d := NewDispatchTable()

	var button MouseButton = -1
	d.RegisterMouseButton(MouseButtonRight, func(b MouseButton, a Action, _ ModifierKey) {
		button = b
	})
	assert.False(t, d.HandleMouseButton(MouseButtonLeft, Press, 0))
	assert.True(t, d.HandleMouseButton(MouseButtonRight, Release, 0))
	assert.Equal(t, MouseButtonRight, button)

	d.UnregisterMouseButton(MouseButtonRight)
	assert.False(t, d.HandleMouseButton(MouseButtonRight, Release, 0))

	assert.False(t, d.HandleCursor(1, 1))
	var x, y float64
	d.RegisterMouseMotion(func(px, py float64) { x, y = px, py })
	assert.True(t, d.HandleCursor(0.5, 1.5))
	assert.Equal(t, 0.5, x)
	assert.Equal(t, 1.5, y)

	d.UnregisterMouseMotion()
	assert.False(t, d.HandleCursor(2, 2))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "press", Press.String())
	assert.Equal(t, "unknown", Action(9).String())
}
