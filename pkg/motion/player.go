package motion

import "image"

// PlaybackSignal is a lifecycle signal raised by the engine-side controller.
type PlaybackSignal int

const (
	// SignalStart indicates playback began. May be raised from whichever
	// thread requested play.
	SignalStart PlaybackSignal = iota

	// SignalRepeat indicates playback wrapped around for another loop.
	// Raised from the rendering thread.
	SignalRepeat

	// SignalCancel indicates playback was interrupted before completing.
	// May be raised from whichever thread requested the stop.
	SignalCancel

	// SignalEnd indicates playback finished its final loop. Raised from the
	// rendering thread.
	SignalEnd
)

// String returns a human-readable label for the signal.
func (s PlaybackSignal) String() string {
	switch s {
	case SignalStart:
		return "Start"
	case SignalRepeat:
		return "Repeat"
	case SignalCancel:
		return "Cancel"
	case SignalEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Player is the engine-side playback controller a [View] drives. The
// production implementation lives in the platform package and talks to the
// native engine over platform channels; tests substitute in-memory fakes.
//
// Mutators are synchronous, non-blocking calls into the engine. Queries
// return the engine's current values. Callbacks registered through
// SetStateCallback and SetProgressCallback must be delivered on the UI
// thread; implementations are responsible for any marshaling that requires.
// A nil callback unregisters the previous one.
type Player interface {
	// Play starts or resumes playback.
	Play() error
	// Pause suspends playback, keeping the current frame on screen.
	Pause() error
	// Flush forces a single synchronous re-render without altering play state.
	Flush() error

	// SetComposition replaces the rendered content. A nil composition clears it.
	SetComposition(comp *Composition) error
	// SetProgress moves the playhead to a position in [0, 1].
	SetProgress(progress float64) error
	// SetRepeatCount sets how many times playback loops; values <= 0 mean
	// repeat indefinitely.
	SetRepeatCount(count int) error
	// SetSync toggles synchronous rendering.
	SetSync(sync bool) error
	// SetVideoEnabled toggles decoding of video layers.
	SetVideoEnabled(enabled bool) error
	// SetCacheEnabled toggles the engine's frame cache.
	SetCacheEnabled(enabled bool) error
	// SetCacheScale sets the cache resolution factor in [0, 1].
	SetCacheScale(scale float64) error
	// SetMaxFrameRate caps the rendering frame rate.
	SetMaxFrameRate(fps float64) error
	// SetScaleMode selects how content fits the surface.
	SetScaleMode(mode ScaleMode) error
	// SetMatrix applies an explicit transform in place of a scale mode.
	SetMatrix(matrix Matrix) error

	// CurrentFrameTime returns the presentation time of the most recently
	// rendered frame, in microseconds.
	CurrentFrameTime() (int64, error)
	// LayersAt hit-tests the composition at a point in view coordinates.
	LayersAt(x, y float64) ([]Layer, error)
	// FreeCache releases the engine's internal caches.
	FreeCache() error
	// Snapshot captures a still image of the current output.
	Snapshot() (image.Image, error)

	// SetStateCallback registers the lifecycle signal callback.
	SetStateCallback(fn func(PlaybackSignal))
	// SetProgressCallback registers the periodic progress callback.
	SetProgressCallback(fn func(progress float64))

	// Release destroys the engine-side controller. Further calls on a
	// released player are undefined; the View guarantees none are made.
	Release()
}

// PlayerFactory creates the engine-side controller for a view. The factory
// is invoked by [View.Attach]; platform.NewMotionPlayer is the production
// factory.
type PlayerFactory func() (Player, error)
