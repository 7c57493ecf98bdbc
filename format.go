package texcache

// PixelFormat identifies the host-side pixel format of a surface, after the
// guest format has been decoded. The set here covers the formats the guest
// texture units actually emit; adding one means adding a row to formatTable
// and a translation in vulkan.go.
type PixelFormat int32

const (
	FormatInvalid PixelFormat = iota
	FormatABGR8
	FormatBGR565
	FormatR8
	FormatR16F
	FormatR32F
	FormatR32UI
	FormatRG8
	FormatRGBA16F
	FormatRGBA32F
	FormatDXT1
	FormatDXT23
	FormatDXT45
	FormatD16
	FormatD32F
	FormatD24S8
)

// ImageAspect is the plane selector used when building subresource ranges.
type ImageAspect uint32

const (
	AspectColor ImageAspect = 1 << iota
	AspectDepth
	AspectStencil
)

type formatInfo struct {
	blockWidth    uint32
	blockHeight   uint32
	bytesPerBlock uint32
	depth         bool
	stencil       bool
}

var formatTable = [...]formatInfo{
	FormatInvalid: {},
	FormatABGR8:   {1, 1, 4, false, false},
	FormatBGR565:  {1, 1, 2, false, false},
	FormatR8:      {1, 1, 1, false, false},
	FormatR16F:    {1, 1, 2, false, false},
	FormatR32F:    {1, 1, 4, false, false},
	FormatR32UI:   {1, 1, 4, false, false},
	FormatRG8:     {1, 1, 2, false, false},
	FormatRGBA16F: {1, 1, 8, false, false},
	FormatRGBA32F: {1, 1, 16, false, false},
	FormatDXT1:    {4, 4, 8, false, false},
	FormatDXT23:   {4, 4, 16, false, false},
	FormatDXT45:   {4, 4, 16, false, false},
	FormatD16:     {1, 1, 2, true, false},
	FormatD32F:    {1, 1, 4, true, false},
	FormatD24S8:   {1, 1, 4, true, true},
}

func (f PixelFormat) valid() bool {
	return f > FormatInvalid && int(f) < len(formatTable)
}

// BlockWidth returns the width in texels of one compression block, 1 for
// uncompressed formats.
func (f PixelFormat) BlockWidth() uint32 { return formatTable[f].blockWidth }

// BlockHeight returns the height in texels of one compression block.
func (f PixelFormat) BlockHeight() uint32 { return formatTable[f].blockHeight }

// BytesPerBlock returns the byte size of one block (one texel when
// uncompressed).
func (f PixelFormat) BytesPerBlock() uint32 { return formatTable[f].bytesPerBlock }

// IsCompressed reports whether the format is block compressed.
func (f PixelFormat) IsCompressed() bool { return formatTable[f].blockWidth > 1 }

// Aspect returns the image aspect the format occupies.
func (f PixelFormat) Aspect() ImageAspect {
	info := formatTable[f]
	switch {
	case info.depth && info.stencil:
		return AspectDepth | AspectStencil
	case info.depth:
		return AspectDepth
	default:
		return AspectColor
	}
}
