package texcache

import "fmt"

// ViewParams select a sub-range of a surface: a layer range, a level range,
// and optionally a reinterpreted target (e.g. viewing one face of a cube as
// a plain 2D texture). The zero ranges are invalid; a whole-surface view is
// spelled out explicitly by the caller.
//
// ViewParams is comparable and used directly as the view cache key, so two
// requests for the same sub-range resolve to the same view.
type ViewParams struct {
	BaseLayer uint32
	NumLayers uint32
	BaseLevel uint32
	NumLevels uint32
	Target    SurfaceTarget
}

// WholeSurface returns the view params covering every layer and level of p,
// keeping p's target.
func WholeSurface(p SurfaceParams) ViewParams {
	return ViewParams{
		NumLayers: p.NumLayers,
		NumLevels: p.NumLevels,
		Target:    p.Target,
	}
}

// checkBounds panics when the view range does not lie within the owning
// surface. An out-of-bounds request is a caller contract violation, not a
// recoverable condition.
func (v ViewParams) checkBounds(p SurfaceParams) {
	if v.NumLayers == 0 || v.NumLevels == 0 ||
		v.BaseLayer+v.NumLayers > p.NumLayers ||
		v.BaseLevel+v.NumLevels > p.NumLevels {
		panic(fmt.Sprintf("texcache: view range [layer %d+%d, level %d+%d] outside surface (%d layers, %d levels)",
			v.BaseLayer, v.NumLayers, v.BaseLevel, v.NumLevels, p.NumLayers, p.NumLevels))
	}
}
