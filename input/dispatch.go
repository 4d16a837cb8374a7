package input

type (
	KeyHandler         func(key Key, action Action, mods ModifierKey)
	MouseButtonHandler func(button MouseButton, action Action, mods ModifierKey)
	MouseMotionHandler func(x, y float64)
)

// DispatchTable holds at most one handler per key and per mouse button, plus
// one cursor motion handler. Registering again replaces the previous
// handler. Events nobody registered for are dropped.
type DispatchTable struct {
	keys    map[Key]KeyHandler
	buttons map[MouseButton]MouseButtonHandler
	motion  MouseMotionHandler
}

func NewDispatchTable() *DispatchTable {
	return &DispatchTable{
		keys:    make(map[Key]KeyHandler),
		buttons: make(map[MouseButton]MouseButtonHandler),
	}
}

func (d *DispatchTable) RegisterKey(key Key, h KeyHandler) { d.keys[key] = h }
func (d *DispatchTable) UnregisterKey(key Key) { delete(d.keys, key) }

func (d *DispatchTable) RegisterMouseButton(b MouseButton, h MouseButtonHandler) {
	d.buttons[b] = h
}

func (d *DispatchTable) UnregisterMouseButton(b MouseButton) { delete(d.buttons, b) }

func (d *DispatchTable) RegisterMouseMotion(h MouseMotionHandler) { d.motion = h }
func (d *DispatchTable) UnregisterMouseMotion() { d.motion = nil }

// HandleKey reports whether a handler ran.
func (d *DispatchTable) HandleKey(key Key, action Action, mods ModifierKey) bool {
	h, ok := d.keys[key]
	if !ok {
		return false
	}
	h(key, action, mods)
	return true
}

func (d *DispatchTable) HandleMouseButton(b MouseButton, action Action, mods ModifierKey) bool {
	h, ok := d.buttons[b]
	if !ok {
		return false
	}
	h(b, action, mods)
	return true
}

func (d *DispatchTable) HandleCursor(x, y float64) bool {
	if d.motion == nil {
		return false
	}
	d.motion(x, y)
	return true
}
