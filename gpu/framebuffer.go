package gpu

import "errors"

var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

// DepthTarget is a depth-only framebuffer whose depth attachment can be
// sampled as a texture, used for shadow maps.
type DepthTarget struct {
	dev         Device
	Framebuffer uint32
	Texture     uint32
	Size        int
}

// NewDepthTarget builds a size×size float depth texture and a framebuffer
// with no colour buffers. Samples outside the texture read depth 1.
func NewDepthTarget(dev Device, size int) (*DepthTarget, error) {
	t := &DepthTarget{dev: dev, Size: size}

	t.Texture = dev.CreateTexture()
	dev.BindTexture(t.Texture)
	dev.TexImage2D(size, size, DepthComponent32F, DepthComponent, nil)
	dev.TexParameteri(TextureMagFilter, Nearest)
	dev.TexParameteri(TextureMinFilter, Nearest)
	dev.TexParameteri(TextureWrapS, ClampToBorder)
	dev.TexParameteri(TextureWrapT, ClampToBorder)
	dev.TexBorderColor([4]float32{1, 1, 1, 1})

	t.Framebuffer = dev.CreateFramebuffer()
	dev.BindFramebuffer(t.Framebuffer)
	dev.FramebufferDepthTexture(t.Texture)
	dev.DisableColorBuffers()

	complete := dev.FramebufferComplete()
	dev.BindFramebuffer(0)
	dev.BindTexture(0)

	if !complete {
		t.Release()
		return nil, ErrFramebufferIncomplete
	}
	return t, nil
}

// Bind makes the target current and sets the viewport to cover it.
func (t *DepthTarget) Bind() {
	t.dev.BindFramebuffer(t.Framebuffer)
	t.dev.Viewport(0, 0, t.Size, t.Size)
}

func (t *DepthTarget) Release() {
	if t.Framebuffer != 0 {
		t.dev.DeleteFramebuffer(t.Framebuffer)
		t.Framebuffer = 0
	}
	if t.Texture != 0 {
		t.dev.DeleteTexture(t.Texture)
		t.Texture = 0
	}
}
