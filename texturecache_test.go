package texcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadedSurface(t *testing.T, cache *TextureCache, addr uint64, params SurfaceParams) (*Surface, []byte) {
	t.Helper()
	s, err := cache.CreateSurface(addr, params)
	require.NoError(t, err)
	data := fillPattern(int(params.HostSize()))
	require.NoError(t, s.UploadTexture(data))
	return s, data
}

func TestImageCopyRegion(t *testing.T) {
	cache, _, _, _ := newTestCache()
	params := testParams2D(8, 8, 1)
	src, data := uploadedSurface(t, cache, 0x1000, params)
	dst, err := cache.CreateSurface(0x2000, params)
	require.NoError(t, err)

	require.NoError(t, cache.ImageCopy(src, dst, CopyParams{
		SrcX: 0, SrcY: 0,
		DstX: 4, DstY: 4,
		Width: 4, Height: 4, Depth: 1,
	}))

	out := make([]byte, params.HostSize())
	require.NoError(t, dst.DownloadTexture(out))

	bpp := int(params.Format.BytesPerBlock())
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			off := (y*8 + x) * bpp
			if x >= 4 && y >= 4 {
				srcOff := ((y-4)*8 + (x - 4)) * bpp
				assert.Equal(t, data[srcOff:srcOff+bpp], out[off:off+bpp], "texel %d,%d", x, y)
			} else {
				assert.Equal(t, make([]byte, bpp), out[off:off+bpp], "texel %d,%d untouched", x, y)
			}
		}
	}
}

func TestImageCopyAcrossLevels(t *testing.T) {
	cache, _, _, _ := newTestCache()
	src, data := uploadedSurface(t, cache, 0x1000, testParams2D(8, 8, 1))
	dstParams := testParams2D(16, 16, 2)
	dst, err := cache.CreateSurface(0x2000, dstParams)
	require.NoError(t, err)

	// Source level 0 is exactly destination level 1.
	require.NoError(t, cache.ImageCopy(src, dst, CopyParams{
		SrcLevel: 0, DstLevel: 1,
		Width: 8, Height: 8, Depth: 1,
	}))

	out := make([]byte, dstParams.HostSize())
	require.NoError(t, dst.DownloadTexture(out))
	level1 := out[dstParams.LevelOffset(1):]
	assert.Equal(t, data, level1[:len(data)])
}

func TestImageCopyLayersViaZ(t *testing.T) {
	cache, _, _, _ := newTestCache()
	params := SurfaceParams{
		Width: 4, Height: 4, Depth: 1,
		Target: Target2DArray, Format: FormatABGR8,
		NumLevels: 1, NumLayers: 2,
		Usage: UsageSampled,
	}
	src, data := uploadedSurface(t, cache, 0x1000, params)
	dst, err := cache.CreateSurface(0x2000, params)
	require.NoError(t, err)

	// Z addresses layers on array targets: copy source layer 1 onto
	// destination layer 0.
	require.NoError(t, cache.ImageCopy(src, dst, CopyParams{
		SrcZ: 1, DstZ: 0,
		Width: 4, Height: 4, Depth: 1,
	}))

	out := make([]byte, params.HostSize())
	require.NoError(t, dst.DownloadTexture(out))
	layerSize := int(params.LevelSize(0))
	assert.Equal(t, data[layerSize:2*layerSize], out[:layerSize])
}

func TestImageCopyRejectsBufferBacked(t *testing.T) {
	cache, _, _, _ := newTestCache()
	img, err := cache.CreateSurface(0x1000, testParams2D(4, 4, 1))
	require.NoError(t, err)
	buf, err := cache.CreateSurface(0x2000, SurfaceParams{
		Width: 16, Height: 1, Depth: 1,
		Target: Target1D, Format: FormatR32UI,
		NumLevels: 1, NumLayers: 1,
		Storage: StorageBuffer,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, cache.ImageCopy(img, buf, CopyParams{Width: 4, Height: 4}), ErrMalformedDescriptor)
	assert.ErrorIs(t, cache.ImageCopy(buf, img, CopyParams{Width: 4, Height: 4}), ErrMalformedDescriptor)
}

func TestImageCopyMarksDestinationModified(t *testing.T) {
	cache, _, _, scheduler := newTestCache()
	params := testParams2D(4, 4, 1)
	src, _ := uploadedSurface(t, cache, 0x1000, params)
	dst, err := cache.CreateSurface(0x2000, params)
	require.NoError(t, err)

	require.NoError(t, cache.ImageCopy(src, dst, CopyParams{Width: 4, Height: 4, Depth: 1}))
	assert.Equal(t, scheduler.CurrentTick(), dst.ModificationTick())
}

func TestImageBlitBetweenSurfaces(t *testing.T) {
	cache, _, _, _ := newTestCache()
	params := testParams2D(8, 8, 1)
	src, data := uploadedSurface(t, cache, 0x1000, params)
	dst, err := cache.CreateSurface(0x2000, params)
	require.NoError(t, err)

	srcView := src.CreateView(WholeSurface(params))
	dstView := dst.CreateView(WholeSurface(params))

	require.NoError(t, cache.ImageBlit(srcView, dstView, BlitConfig{
		SrcRect: BlitRect{Left: 0, Top: 0, Right: 8, Bottom: 8},
		DstRect: BlitRect{Left: 0, Top: 0, Right: 8, Bottom: 8},
		Filter:  FilterNearest,
	}))

	out := make([]byte, params.HostSize())
	require.NoError(t, dst.DownloadTexture(out))
	assert.Equal(t, data, out)
}

func TestImageBlitScales(t *testing.T) {
	cache, _, _, _ := newTestCache()
	srcParams := testParams2D(4, 4, 1)
	dstParams := testParams2D(8, 8, 1)
	src, data := uploadedSurface(t, cache, 0x1000, srcParams)
	dst, err := cache.CreateSurface(0x2000, dstParams)
	require.NoError(t, err)

	require.NoError(t, cache.ImageBlit(
		src.CreateView(WholeSurface(srcParams)),
		dst.CreateView(WholeSurface(dstParams)),
		BlitConfig{
			SrcRect: BlitRect{Right: 4, Bottom: 4},
			DstRect: BlitRect{Right: 8, Bottom: 8},
			Filter:  FilterNearest,
		}))

	out := make([]byte, dstParams.HostSize())
	require.NoError(t, dst.DownloadTexture(out))

	// 2x nearest upscale: each source texel covers a 2x2 block.
	bpp := int(srcParams.Format.BytesPerBlock())
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			srcOff := ((y/2)*4 + x/2) * bpp
			dstOff := (y*8 + x) * bpp
			assert.Equal(t, data[srcOff:srcOff+bpp], out[dstOff:dstOff+bpp], "texel %d,%d", x, y)
		}
	}
}

func TestImageBlitSameSurfaceUsesScratch(t *testing.T) {
	cache, _, _, scheduler := newTestCache()
	params := SurfaceParams{
		Width: 4, Height: 4, Depth: 1,
		Target: Target2DArray, Format: FormatABGR8,
		NumLevels: 1, NumLayers: 2,
		Usage: UsageSampled,
	}
	s, data := uploadedSurface(t, cache, 0x1000, params)

	srcView := s.CreateView(ViewParams{BaseLayer: 0, NumLayers: 1, Target: Target2D, BaseLevel: 0, NumLevels: 1})
	dstView := s.CreateView(ViewParams{BaseLayer: 1, NumLayers: 1, Target: Target2D, BaseLevel: 0, NumLevels: 1})

	require.NoError(t, cache.ImageBlit(srcView, dstView, BlitConfig{
		SrcRect: BlitRect{Right: 4, Bottom: 4},
		DstRect: BlitRect{Right: 4, Bottom: 4},
		Filter:  FilterNearest,
	}))

	// The device never sees a blit whose source and destination are the
	// same image.
	for _, pair := range scheduler.recorder.blitPairs {
		assert.NotSame(t, pair[0], pair[1])
	}

	out := make([]byte, params.HostSize())
	require.NoError(t, s.DownloadTexture(out))
	layerSize := int(params.LevelSize(0))
	assert.Equal(t, data[:layerSize], out[layerSize:2*layerSize])
}

func TestImageBlitRejectsBufferViews(t *testing.T) {
	cache, _, _, _ := newTestCache()
	imgParams := testParams2D(4, 4, 1)
	img, err := cache.CreateSurface(0x1000, imgParams)
	require.NoError(t, err)
	bufParams := SurfaceParams{
		Width: 16, Height: 1, Depth: 1,
		Target: Target1D, Format: FormatR32UI,
		NumLevels: 1, NumLayers: 1,
		Storage: StorageBuffer,
	}
	buf, err := cache.CreateSurface(0x2000, bufParams)
	require.NoError(t, err)

	iv := img.CreateView(WholeSurface(imgParams))
	bv := buf.CreateView(WholeSurface(bufParams))

	cfg := BlitConfig{SrcRect: BlitRect{Right: 4, Bottom: 4}, DstRect: BlitRect{Right: 4, Bottom: 4}}
	assert.ErrorIs(t, cache.ImageBlit(iv, bv, cfg), ErrMalformedDescriptor)
	assert.ErrorIs(t, cache.ImageBlit(bv, iv, cfg), ErrMalformedDescriptor)
}

func TestBufferCopy(t *testing.T) {
	cache, _, _, _ := newTestCache()
	params := SurfaceParams{
		Width: 64, Height: 1, Depth: 1,
		Target: Target1D, Format: FormatR32UI,
		NumLevels: 1, NumLayers: 1,
		Storage: StorageBuffer,
		Usage:   UsageTexelBuffer,
	}
	src, data := uploadedSurface(t, cache, 0x1000, params)
	dst, err := cache.CreateSurface(0x2000, params)
	require.NoError(t, err)

	require.NoError(t, cache.BufferCopy(src, dst))

	out := make([]byte, params.HostSize())
	require.NoError(t, dst.DownloadTexture(out))
	assert.Equal(t, data, out)
}

func TestBufferCopyTruncatesToSmaller(t *testing.T) {
	cache, _, _, _ := newTestCache()
	big := SurfaceParams{
		Width: 64, Height: 1, Depth: 1,
		Target: Target1D, Format: FormatR32UI,
		NumLevels: 1, NumLayers: 1,
		Storage: StorageBuffer,
	}
	small := big
	small.Width = 16

	src, data := uploadedSurface(t, cache, 0x1000, big)
	dst, err := cache.CreateSurface(0x2000, small)
	require.NoError(t, err)

	require.NoError(t, cache.BufferCopy(src, dst))

	out := make([]byte, small.HostSize())
	require.NoError(t, dst.DownloadTexture(out))
	assert.Equal(t, data[:small.HostSize()], out)
}

func TestBufferCopyRejectsImageBacked(t *testing.T) {
	cache, _, _, _ := newTestCache()
	img, err := cache.CreateSurface(0x1000, testParams2D(4, 4, 1))
	require.NoError(t, err)
	buf, err := cache.CreateSurface(0x2000, SurfaceParams{
		Width: 16, Height: 1, Depth: 1,
		Target: Target1D, Format: FormatR32UI,
		NumLevels: 1, NumLayers: 1,
		Storage: StorageBuffer,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, cache.BufferCopy(img, buf), ErrMalformedDescriptor)
	assert.ErrorIs(t, cache.BufferCopy(buf, img), ErrMalformedDescriptor)
}
