package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var ErrTextureUnitsExhausted = errors.New("texture image units exhausted")

// Program is a linked shader program. Uniform and attribute handles are
// resolved on first request and memoized for the program's lifetime.
type Program struct {
	dev     Device
	id      uint32
	shaders []*Shader

	locations  map[string]int32
	samplers   map[string]*UniformSampler
	attributes map[string]*Attribute

	// free texture units, highest first so the lowest unit is leased next
	units []int
}

// NewProgram links the given shaders. The program takes ownership of them.
func NewProgram(dev Device, shaders ...*Shader) (*Program, error) {
	id := dev.CreateProgram()
	for _, s := range shaders {
		dev.AttachShader(id, s.id)
	}
	if ok, log := dev.LinkProgram(id); !ok {
		for _, s := range shaders {
			dev.DetachShader(id, s.id)
		}
		dev.DeleteProgram(id)
		return nil, &ShaderLinkError{Log: strings.TrimRight(log, "\x00\n")}
	}

	n := dev.MaxTextureImageUnits()
	units := make([]int, n)
	for i := range units {
		units[i] = n - 1 - i
	}

	return &Program{
		dev:        dev,
		id:         id,
		shaders:    shaders,
		locations:  make(map[string]int32),
		samplers:   make(map[string]*UniformSampler),
		attributes: make(map[string]*Attribute),
		units:      units,
	}, nil
}

func (p *Program) ID() uint32 { return p.id }

func (p *Program) Use() {
	p.dev.UseProgram(p.id)
}

// FreeUnits reports how many texture units are still available to samplers.
func (p *Program) FreeUnits() int { return len(p.units) }

func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	p.locations[name] = loc
	return loc
}

func (p *Program) UniformInt(name string) UniformInt {
	return UniformInt{dev: p.dev, loc: p.location(name)}
}

func (p *Program) UniformFloat(name string) UniformFloat {
	return UniformFloat{dev: p.dev, loc: p.location(name)}
}

func (p *Program) UniformVec3(name string) UniformVec3 {
	return UniformVec3{dev: p.dev, loc: p.location(name)}
}

func (p *Program) UniformMat3(name string) UniformMat3 {
	return UniformMat3{dev: p.dev, loc: p.location(name)}
}

func (p *Program) UniformMat4(name string) UniformMat4 {
	return UniformMat4{dev: p.dev, loc: p.location(name)}
}

// UniformSampler returns the sampler bound to name, leasing a texture unit
// to it on first request. The program is made current to point the sampler
// at its unit.
func (p *Program) UniformSampler(name string) (*UniformSampler, error) {
	if s, ok := p.samplers[name]; ok {
		return s, nil
	}
	if len(p.units) == 0 {
		return nil, fmt.Errorf("sampler %q: %w", name, ErrTextureUnitsExhausted)
	}
	unit := p.units[len(p.units)-1]
	p.units = p.units[:len(p.units)-1]

	s := &UniformSampler{dev: p.dev, loc: p.location(name), unit: unit}
	p.Use()
	p.dev.Uniform1i(s.loc, int32(unit))
	p.samplers[name] = s
	return s, nil
}

func (p *Program) Attribute(name string) *Attribute {
	if a, ok := p.attributes[name]; ok {
		return a
	}
	a := &Attribute{dev: p.dev, loc: p.dev.AttribLocation(p.id, name)}
	p.attributes[name] = a
	return a
}

// Delete detaches and deletes the owned shaders, then the program.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	for _, s := range p.shaders {
		p.dev.DetachShader(p.id, s.id)
		s.Delete()
	}
	p.dev.DeleteProgram(p.id)
	p.id = 0
}
