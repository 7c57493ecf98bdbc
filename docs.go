/*
Package texcache implements a GPU-resident texture and surface cache for a
console-GPU emulation layer, backed by Vulkan. It turns address-indexed
descriptions of guest textures and render targets into device resources
(images, buffers, and views over them), keeps them synchronized with guest
memory, and provides the copy and blit primitives a rasterizer needs to move
and reinterpret pixel data.

The package deliberately does not own everything around it. The generic
address-indexed cache engine which decides residency and eviction, the
scheduler which batches and submits command buffers, and the device memory
manager are external collaborators consumed through the interfaces declared
in interfaces.go. Guest pixel format decoding (tiling, block compression) is
likewise external - the cache receives already decoded bytes.

The central objects are:

	SurfaceParams	immutable description of a guest texture or render target
	Surface		owns one backend image, or one buffer plus a typed view,
			bound to a device memory commit; uploads, downloads and
			layout transitions happen here
	SurfaceView	a lightweight window into a Surface (layer/level range,
			optional reinterpretation) with a per-swizzle cache of
			image view handles
	TextureCache	the driver which creates Surfaces on demand and records
			the ImageCopy/ImageBlit/BufferCopy primitives

A rough sketch of how the pieces are used by an emulator frontend:

	1. A guest draw references a GPU address
	2. The cache engine resolves the address; on a miss it calls
	   TextureCache.CreateSurface with the decoded SurfaceParams
	3. The engine (or rasterizer) asks the Surface for a view of the
	   sub-range it needs, and the view for the swizzle the guest
	   requested; the returned handle is bound for rendering
	4. On invalidation the engine drives Surface.UploadTexture or
	   Surface.DownloadTexture to resynchronize with guest memory

All operations record work on the Scheduler and return immediately, with one
exception: Surface.DownloadTexture must block until the device to host copy
has retired, because the caller requires the output buffer to be valid on
return.

Failure in this layer is not graceful. Device memory exhaustion mid-frame has
no degraded path and is surfaced as an unrecoverable error; malformed surface
descriptions are rejected at construction; an out-of-bounds view range is a
caller bug and panics.
*/
package texcache
