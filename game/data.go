package game

import "scene-renderer/scene"

// GameData is the simulated state advanced once per frame.
type GameData struct {
	camera     scene.Camera
	characters map[*scene.Character]struct{}
}

func NewGameData() *GameData {
	return &GameData{characters: make(map[*scene.Character]struct{})}
}

func (d *GameData) AddCharacter(c *scene.Character) { d.characters[c] = struct{}{} }
func (d *GameData) RemoveCharacter(c *scene.Character) { delete(d.characters, c) }
func (d *GameData) SetCamera(c scene.Camera) { d.camera = c }
func (d *GameData) Camera() scene.Camera { return d.camera }

// Update moves every character, then the camera so it sees this frame's
// poses.
func (d *GameData) Update(dt float32) {
	for c := range d.characters {
		c.Update(dt)
	}
	if d.camera != nil {
		d.camera.Update(dt)
	}
}
