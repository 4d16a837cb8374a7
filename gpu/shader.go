package gpu

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var ErrNoShaderSource = errors.New("no shader source")

// ShaderCompileError carries the compiler log of a failed shader.
type ShaderCompileError struct {
	Kind ShaderKind
	Name string
	Log  string
}

func (e *ShaderCompileError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("compile %s shader %q: %s", e.Kind, e.Name, e.Log)
	}
	return fmt.Sprintf("compile %s shader: %s", e.Kind, e.Log)
}

// ShaderLinkError carries the linker log of a failed program.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("link program: %s", e.Log)
}

type Shader struct {
	dev  Device
	id   uint32
	kind ShaderKind
	name string
}

// NewShader compiles source as a shader of the given kind.
func NewShader(dev Device, kind ShaderKind, source string) (*Shader, error) {
	return compileShader(dev, kind, "", source)
}

// NewShaderFromFile reads name from fsys, replaces every @KEY@ placeholder
// with the matching value from consts and compiles the result.
func NewShaderFromFile(dev Device, kind ShaderKind, fsys fs.FS, name string, consts map[string]any) (*Shader, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read shader %q: %w", name, err)
	}
	return compileShader(dev, kind, name, SubstituteConstants(string(data), consts))
}

// SubstituteConstants replaces each @KEY@ in src with fmt.Sprint(consts[KEY]).
func SubstituteConstants(src string, consts map[string]any) string {
	if len(consts) == 0 {
		return src
	}
	pairs := make([]string, 0, len(consts)*2)
	for k, v := range consts {
		pairs = append(pairs, "@"+k+"@", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(src)
}

func compileShader(dev Device, kind ShaderKind, name, source string) (*Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%s shader %q: %w", kind, name, ErrNoShaderSource)
	}

	id := dev.CreateShader(kind)
	if ok, log := dev.CompileShader(id, source); !ok {
		dev.DeleteShader(id)
		return nil, &ShaderCompileError{Kind: kind, Name: name, Log: strings.TrimRight(log, "\x00\n")}
	}
	return &Shader{dev: dev, id: id, kind: kind, name: name}, nil
}

func (s *Shader) ID() uint32 { return s.id }
func (s *Shader) Kind() ShaderKind { return s.kind }

func (s *Shader) Delete() {
	if s.id == 0 {
		return
	}
	s.dev.DeleteShader(s.id)
	s.id = 0
}
