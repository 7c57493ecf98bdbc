package texcache

import "fmt"

// SurfaceView is a stable, possibly reinterpreted window into a surface's
// resource, the object whose handles get bound for rendering. It owns a
// small cache of image views keyed by the packed channel swizzle; for
// buffer-backed surfaces it is a proxy exposing the parent's typed buffer
// view instead.
//
// The view holds a non-owning back reference to its surface. The engine's
// shared ownership of the surface keeps it alive for as long as any view is
// reachable.
type SurfaceView struct {
	surface *Surface
	vp      ViewParams
	isProxy bool

	// Copies of surface state read on the hot path, taken once at
	// construction to avoid chasing the surface pointer per bind.
	params     SurfaceParams
	image      Image
	bufferView BufferView
	aspect     ImageAspect

	lastHandle  ImageView
	lastSwizzle uint32
	handles     map[uint32]ImageView
}

func newSurfaceView(surface *Surface, vp ViewParams, isProxy bool) *SurfaceView {
	v := &SurfaceView{
		surface:    surface,
		vp:         vp,
		isProxy:    isProxy,
		params:     surface.params,
		bufferView: surface.bufferView,
		aspect:     surface.AspectMask(),
	}
	if !isProxy {
		v.image = surface.image.Handle()
		v.handles = make(map[uint32]ImageView)
	}
	return v
}

// GetHandle returns the image view for the requested channel remap, creating
// and caching it on first use. Repeat calls with the same four selectors
// return the same handle. Must not be called on a buffer view; callers
// branch on IsBufferView and use BufferViewHandle instead.
func (v *SurfaceView) GetHandle(x, y, z, w SwizzleSource) ImageView {
	if v.isProxy {
		panic("texcache: GetHandle on a buffer-backed view")
	}
	key := EncodeSwizzle(x, y, z, w)
	if v.lastHandle != nil && key == v.lastSwizzle {
		return v.lastHandle
	}
	if h, ok := v.handles[key]; ok {
		v.lastHandle, v.lastSwizzle = h, key
		return h
	}

	h, err := v.image.CreateView(ImageViewInfo{
		Target:  v.vp.Target,
		Format:  v.params.Format,
		Swizzle: [4]SwizzleSource{x, y, z, w},
		Range:   v.SubresourceRange(),
	})
	if err != nil {
		// View creation only fails when the device is out of resources,
		// which has no recovery path mid-frame.
		log.WithError(err).Fatal(fmt.Sprintf("creating image view for swizzle %#08x", key))
	}
	v.handles[key] = h
	v.lastHandle, v.lastSwizzle = h, key
	return h
}

// Handle returns the identity-swizzled (R,G,B,A) image view.
func (v *SurfaceView) Handle() ImageView {
	return v.GetHandle(IdentitySwizzle())
}

// IsBufferView reports whether this view proxies a buffer-backed surface.
func (v *SurfaceView) IsBufferView() bool {
	return v.isProxy
}

// BufferViewHandle returns the parent surface's typed buffer view. Only
// meaningful for proxy views.
func (v *SurfaceView) BufferViewHandle() BufferView {
	return v.bufferView
}

// ImageHandle returns the parent surface's backend image.
func (v *SurfaceView) ImageHandle() Image {
	return v.image
}

// IsSameSurface reports whether both views window the same surface instance.
// The copy/blit layer uses this to detect same-resource blits, which need a
// staging indirection.
func (v *SurfaceView) IsSameSurface(rhs *SurfaceView) bool {
	return v.surface == rhs.surface
}

// Width returns the texel width at the view's base level, honoring the
// format's minimum block size.
func (v *SurfaceView) Width() uint32 {
	return v.params.MipWidth(v.vp.BaseLevel)
}

// Height returns the texel height at the view's base level.
func (v *SurfaceView) Height() uint32 {
	return v.params.MipHeight(v.vp.BaseLevel)
}

// NumLayers returns the number of layers the view spans.
func (v *SurfaceView) NumLayers() uint32 {
	return v.vp.NumLayers
}

// BaseLevel returns the first mip level the view spans.
func (v *SurfaceView) BaseLevel() uint32 {
	return v.vp.BaseLevel
}

// SubresourceRange returns the view's range for barrier construction.
func (v *SurfaceView) SubresourceRange() SubresourceRange {
	return SubresourceRange{
		Aspect:    v.aspect,
		BaseLevel: v.vp.BaseLevel,
		NumLevels: v.vp.NumLevels,
		BaseLayer: v.vp.BaseLayer,
		NumLayers: v.vp.NumLayers,
	}
}

// SubresourceLayers returns the view's base level layer set for copy and
// blit construction.
func (v *SurfaceView) SubresourceLayers() SubresourceLayers {
	return SubresourceLayers{
		Aspect:    v.aspect,
		Level:     v.vp.BaseLevel,
		BaseLayer: v.vp.BaseLayer,
		NumLayers: v.vp.NumLayers,
	}
}

// Transition forwards to the owning surface, scoped to this view's range.
func (v *SurfaceView) Transition(st ImageState) {
	v.surface.Transition(v.vp.BaseLayer, v.vp.NumLayers, v.vp.BaseLevel, v.vp.NumLevels, st)
}

// MarkAsModified forwards the coherency tick to the owning surface.
func (v *SurfaceView) MarkAsModified(tick uint64) {
	v.surface.MarkAsModified(tick)
}

// release destroys the cached image view handles. Called from the surface's
// deferred teardown, never directly.
func (v *SurfaceView) release() {
	for key, h := range v.handles {
		h.Destroy()
		delete(v.handles, key)
	}
	v.lastHandle = nil
}
