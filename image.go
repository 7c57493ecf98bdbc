package texcache

// TrackedImage pairs a backend image with its last known {stage, access,
// layout} so redundant barriers are never recorded. Tracking granularity is
// the whole resource: a transition over any sub-range supersedes the tracked
// state, and the emitted barrier is scoped to the requested range only.
type TrackedImage struct {
	image     Image
	aspect    ImageAspect
	numLayers uint32
	numLevels uint32

	state ImageState
}

func newTrackedImage(image Image, params SurfaceParams) *TrackedImage {
	return &TrackedImage{
		image:     image,
		aspect:    params.Format.Aspect(),
		numLayers: params.NumLayers,
		numLevels: params.NumLevels,
		// Freshly created images start undefined.
		state: ImageState{Stage: StageTopOfPipe, Access: 0, Layout: LayoutUndefined},
	}
}

// Handle returns the underlying backend image.
func (t *TrackedImage) Handle() Image {
	return t.image
}

// Aspect returns the image's aspect mask.
func (t *TrackedImage) Aspect() ImageAspect {
	return t.aspect
}

// State returns the tracked state, for callers composing their own barriers.
func (t *TrackedImage) State() ImageState {
	return t.state
}

// Transition records a barrier moving the given sub-range to the requested
// state. Requesting the already tracked state records nothing. The request
// always fully replaces the tracked state; it is never narrowed or merged.
func (t *TrackedImage) Transition(scheduler Scheduler, baseLayer, numLayers, baseLevel, numLevels uint32, requested ImageState) {
	emit, next := NextState(t.state, requested)
	if !emit {
		return
	}
	barrier := Barrier{
		Image:     t.image,
		SrcStage:  t.state.Stage,
		DstStage:  next.Stage,
		SrcAccess: t.state.Access,
		DstAccess: next.Access,
		OldLayout: t.state.Layout,
		NewLayout: next.Layout,
		Range: SubresourceRange{
			Aspect:    t.aspect,
			BaseLevel: baseLevel,
			NumLevels: numLevels,
			BaseLayer: baseLayer,
			NumLayers: numLayers,
		},
	}
	t.state = next
	scheduler.Record(func(cmd CommandRecorder) {
		cmd.PipelineBarrier(barrier)
	})
}

// FullTransition transitions every layer and level.
func (t *TrackedImage) FullTransition(scheduler Scheduler, requested ImageState) {
	t.Transition(scheduler, 0, t.numLayers, 0, t.numLevels, requested)
}
