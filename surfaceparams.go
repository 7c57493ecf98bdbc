package texcache

import "fmt"

// SurfaceTarget is the dimensionality of a surface.
type SurfaceTarget int32

const (
	Target1D SurfaceTarget = iota
	Target2D
	Target3D
	Target1DArray
	Target2DArray
	TargetCube
	TargetCubeArray
)

// StorageKind selects the backing resource of a surface: a proper image, or
// a buffer exposed through a typed buffer view (linear texel buffers).
type StorageKind int32

const (
	StorageImage StorageKind = iota
	StorageBuffer
)

// UsageFlags describe what the guest intends to do with a surface. Transfer
// source/destination usage is always implied and never has to be requested.
type UsageFlags uint32

const (
	UsageSampled UsageFlags = 1 << iota
	UsageRenderTarget
	UsageDepthStencil
	UsageTexelBuffer
)

// SurfaceParams is the immutable description of a guest texture or render
// target. The cache engine keys surfaces by GPU address; SurfaceParams carry
// everything else needed to materialize the backend resource.
type SurfaceParams struct {
	Width     uint32
	Height    uint32
	Depth     uint32
	Target    SurfaceTarget
	Format    PixelFormat
	NumLevels uint32
	NumLayers uint32
	Storage   StorageKind
	Usage     UsageFlags
}

// Validate rejects descriptors that a decoder bug could produce. A surface
// is never constructed from invalid params; this is checked once, up front.
func (p SurfaceParams) Validate() error {
	if !p.Format.valid() {
		return fmt.Errorf("%w: unknown pixel format %d", ErrMalformedDescriptor, p.Format)
	}
	if p.Width == 0 || p.Height == 0 || p.Depth == 0 {
		return fmt.Errorf("%w: zero extent %dx%dx%d", ErrMalformedDescriptor, p.Width, p.Height, p.Depth)
	}
	if p.NumLevels == 0 || p.NumLayers == 0 {
		return fmt.Errorf("%w: zero levels (%d) or layers (%d)", ErrMalformedDescriptor, p.NumLevels, p.NumLayers)
	}
	switch p.Target {
	case Target1D, Target2D, Target3D, Target1DArray, Target2DArray, TargetCube, TargetCubeArray:
	default:
		return fmt.Errorf("%w: unknown target %d", ErrMalformedDescriptor, p.Target)
	}
	if p.Target == Target3D && p.NumLayers != 1 {
		return fmt.Errorf("%w: 3D surface with %d layers", ErrMalformedDescriptor, p.NumLayers)
	}
	if p.Target == TargetCube && p.NumLayers != 6 {
		return fmt.Errorf("%w: cube surface with %d layers", ErrMalformedDescriptor, p.NumLayers)
	}
	if p.Storage == StorageBuffer {
		if p.Target != Target1D && p.Target != Target2D {
			return fmt.Errorf("%w: buffer storage with target %d", ErrMalformedDescriptor, p.Target)
		}
		if p.NumLevels != 1 || p.NumLayers != 1 {
			return fmt.Errorf("%w: buffer storage with mips or layers", ErrMalformedDescriptor)
		}
		if p.Format.IsCompressed() {
			return fmt.Errorf("%w: buffer storage with compressed format", ErrMalformedDescriptor)
		}
	}
	// Every lower mip is derived from mip 0, so the level count must not
	// shift all dimensions below one block.
	if maxDim := maxU32(p.Width, maxU32(p.Height, p.Depth)); p.NumLevels > 32 || (p.NumLevels > 1 && maxDim>>(p.NumLevels-1) == 0) {
		return fmt.Errorf("%w: %d levels exceed %dx%dx%d", ErrMalformedDescriptor, p.NumLevels, p.Width, p.Height, p.Depth)
	}
	return nil
}

// MipWidth returns the texel width of the given mip level.
func (p SurfaceParams) MipWidth(level uint32) uint32 { return maxU32(1, p.Width>>level) }

// MipHeight returns the texel height of the given mip level.
func (p SurfaceParams) MipHeight(level uint32) uint32 { return maxU32(1, p.Height>>level) }

// MipDepth returns the texel depth of the given mip level. Only 3D surfaces
// shrink in depth.
func (p SurfaceParams) MipDepth(level uint32) uint32 {
	if p.Target != Target3D {
		return p.Depth
	}
	return maxU32(1, p.Depth>>level)
}

// MipBlockWidth returns the mip width in format blocks, the unit device
// copies operate in for compressed formats.
func (p SurfaceParams) MipBlockWidth(level uint32) uint32 {
	return divCeil(p.MipWidth(level), p.Format.BlockWidth())
}

// MipBlockHeight returns the mip height in format blocks.
func (p SurfaceParams) MipBlockHeight(level uint32) uint32 {
	return divCeil(p.MipHeight(level), p.Format.BlockHeight())
}

// LevelSize returns the byte size of a single layer of the given mip level
// in the host staging layout.
func (p SurfaceParams) LevelSize(level uint32) uint64 {
	blocks := uint64(p.MipBlockWidth(level)) * uint64(p.MipBlockHeight(level)) * uint64(p.MipDepth(level))
	return blocks * uint64(p.Format.BytesPerBlock())
}

// LevelOffset returns the byte offset of the given mip level in the host
// staging layout. The layout is level-major: all layers of level 0, then all
// layers of level 1, and so on.
func (p SurfaceParams) LevelOffset(level uint32) uint64 {
	var offset uint64
	for l := uint32(0); l < level; l++ {
		offset += p.LevelSize(l) * uint64(p.NumLayers)
	}
	return offset
}

// HostSize returns the total byte size of the surface in the host staging
// layout: the size the staging buffer handed to UploadTexture and
// DownloadTexture must have.
func (p SurfaceParams) HostSize() uint64 {
	return p.LevelOffset(p.NumLevels)
}

// IsLayered reports whether the target carries more than one array layer.
func (p SurfaceParams) IsLayered() bool {
	switch p.Target {
	case Target1DArray, Target2DArray, TargetCube, TargetCubeArray:
		return true
	}
	return false
}

func (p SurfaceParams) String() string {
	return fmt.Sprintf("%dx%dx%d fmt=%d levels=%d layers=%d", p.Width, p.Height, p.Depth, p.Format, p.NumLevels, p.NumLayers)
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func divCeil(a, b uint32) uint32 {
	return (a + b - 1) / b
}
