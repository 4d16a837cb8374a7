package gpu

// NewTexture creates a 2D texture, uploads pixels and sets repeat wrapping
// with trilinear filtering. pixels are tightly packed rows in format.
func NewTexture(dev Device, width, height int, format PixelFormat, pixels []byte) uint32 {
	tex := dev.CreateTexture()
	UpdateTexture(dev, tex, width, height, format, pixels)
	return tex
}

// UpdateTexture replaces the contents of an existing texture object.
func UpdateTexture(dev Device, tex uint32, width, height int, format PixelFormat, pixels []byte) {
	dev.BindTexture(tex)
	dev.TexImage2D(width, height, RGBA, format, pixels)
	dev.TexParameteri(TextureWrapS, Repeat)
	dev.TexParameteri(TextureWrapT, Repeat)
	dev.TexParameteri(TextureMagFilter, Linear)
	dev.TexParameteri(TextureMinFilter, LinearMipmapLinear)
	dev.GenerateMipmap()
	dev.BindTexture(0)
}
