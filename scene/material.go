package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/charmbracelet/log"

	"scene-renderer/asset"
	"scene-renderer/gpu"
	"scene-renderer/math"
)

var ErrUnsupportedTextureFormat = errors.New("unsupported texture format")

// Material is a texture plus the diffuse colour and alpha it is modulated
// with. Every material owns a valid texture; without an image it holds a
// single white texel.
type Material struct {
	dev     gpu.Device
	texture uint32

	Colour math.Vec3
	Alpha  float32
	// Source is the file the texture was loaded from, if any.
	Source string
}

// NewMaterial uploads img, or the white fallback when img is nil.
func NewMaterial(dev gpu.Device, colour math.Vec3, img image.Image) (*Material, error) {
	w, h, format, pixels := 1, 1, gpu.RGB, []byte{255, 255, 255}
	if img != nil {
		var err error
		if w, h, format, pixels, err = texels(img); err != nil {
			return nil, err
		}
	}
	return &Material{
		dev:     dev,
		texture: gpu.NewTexture(dev, w, h, format, pixels),
		Colour:  colour,
		Alpha:   1,
	}, nil
}

// NewAssetMaterial builds a material from imported properties. A diffuse
// texture that cannot be read is logged and replaced by the fallback; only
// an unsupported pixel layout is an error.
func NewAssetMaterial(dev gpu.Device, props asset.Properties, baseDir string, embedded [][]byte, logger *log.Logger) (*Material, error) {
	colour := math.Vec3One
	ref, hasTexture := props.DiffuseTexture()
	if c, ok := props.DiffuseColour(); ok && !hasTexture {
		colour = c
	}

	var (
		img    image.Image
		source string
	)
	if hasTexture {
		var err error
		if n, ok := asset.EmbeddedIndex(ref); ok {
			if n < len(embedded) {
				img, err = asset.DecodeImage(embedded[n])
			} else {
				err = fmt.Errorf("embedded texture %d of %d", n, len(embedded))
			}
		} else {
			source = ref
			if !filepath.IsAbs(source) {
				source = filepath.Join(baseDir, source)
			}
			img, err = asset.LoadImage(source)
		}
		if err != nil {
			logger.Warn("texture unavailable, using white", "texture", ref, "err", err)
			img = nil
		}
	}

	m, err := NewMaterial(dev, colour, img)
	if err != nil {
		return nil, fmt.Errorf("material %v: %w", props[asset.PropName], err)
	}
	m.Source = source
	return m, nil
}

func (m *Material) Texture() uint32 { return m.texture }

// Reload re-uploads pixels into the existing texture object.
func (m *Material) Reload(img image.Image) error {
	if m.texture == 0 {
		return fmt.Errorf("reload released material")
	}
	w, h, format, pixels, err := texels(img)
	if err != nil {
		return err
	}
	gpu.UpdateTexture(m.dev, m.texture, w, h, format, pixels)
	return nil
}

func (m *Material) Release() {
	if m.texture != 0 {
		m.dev.DeleteTexture(m.texture)
		m.texture = 0
	}
}

// texels returns tightly packed rows for the layouts the GPU path accepts.
func texels(img image.Image) (w, h int, format gpu.PixelFormat, pixels []byte, err error) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.RGBA:
		return w, h, gpu.RGBA, packRows(src.Pix, src.Stride, w*4, h), nil
	case *image.NRGBA:
		return w, h, gpu.RGBA, packRows(src.Pix, src.Stride, w*4, h), nil
	case *image.YCbCr:
		pixels = make([]byte, 0, w*h*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := src.YCbCrAt(x, y)
				r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				pixels = append(pixels, r, g, bl)
			}
		}
		return w, h, gpu.RGB, pixels, nil
	case *image.Gray:
		pixels = make([]byte, 0, w*h*3)
		for y := 0; y < h; y++ {
			for _, v := range src.Pix[y*src.Stride : y*src.Stride+w] {
				pixels = append(pixels, v, v, v)
			}
		}
		return w, h, gpu.RGB, pixels, nil
	}
	return 0, 0, 0, nil, fmt.Errorf("%T: %w", img, ErrUnsupportedTextureFormat)
}

func packRows(pix []byte, stride, rowLen, rows int) []byte {
	if stride == rowLen {
		return pix[:rowLen*rows]
	}
	out := make([]byte, 0, rowLen*rows)
	for y := 0; y < rows; y++ {
		out = append(out, pix[y*stride:y*stride+rowLen]...)
	}
	return out
}
