package platform

import (
	"encoding/base64"
	"image"
	"sync"

	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/motion"
)

// motionView is a platform view wrapping a native motion playback controller.
// It implements [motion.Player] over the platform view registry's method
// channel and receives engine events (lifecycle signals, progress updates)
// through the registry's per-view event routing.
//
// Engine callbacks may originate on arbitrary native threads; motionView
// marshals every delivery through [Dispatch] so the view core and its
// listeners always run on the UI thread.
type motionView struct {
	basePlatformView
	mu sync.Mutex

	// Registered callbacks, guarded by mu. Nil when unregistered.
	stateFn    func(motion.PlaybackSignal)
	progressFn func(float64)
}

// newMotionView creates a motion platform view with the given view ID.
func newMotionView(viewID int64) *motionView {
	return &motionView{
		basePlatformView: basePlatformView{
			viewID:   viewID,
			viewType: "motion_view",
		},
	}
}

// Create implements PlatformView. The native controller is created by the
// registry's create call; no further initialization is needed here.
func (v *motionView) Create(params map[string]any) error {
	return nil
}

// Dispose implements PlatformView. Cleanup is handled by the registry's
// Dispose method, which sends the dispose command to the native controller.
func (v *motionView) Dispose() {
	v.mu.Lock()
	v.stateFn = nil
	v.progressFn = nil
	v.mu.Unlock()
}

func (v *motionView) invoke(method string, args map[string]any) (any, error) {
	return GetPlatformViewRegistry().InvokeViewMethod(v.viewID, method, args)
}

// Play starts or resumes playback.
func (v *motionView) Play() error {
	_, err := v.invoke("play", nil)
	return err
}

// Pause suspends playback, keeping the current frame on screen.
func (v *motionView) Pause() error {
	_, err := v.invoke("pause", nil)
	return err
}

// Flush forces a single synchronous re-render without altering play state.
func (v *motionView) Flush() error {
	_, err := v.invoke("flush", nil)
	return err
}

// SetComposition replaces the rendered content. A nil composition clears it;
// the wire encodes "no composition" as ID zero.
func (v *motionView) SetComposition(comp *motion.Composition) error {
	var id int64
	if comp != nil {
		id = comp.Handle()
	}
	_, err := v.invoke("setComposition", map[string]any{
		"compositionId": id,
	})
	return err
}

// SetProgress moves the playhead to a position in [0, 1].
func (v *motionView) SetProgress(progress float64) error {
	_, err := v.invoke("setProgress", map[string]any{
		"progress": progress,
	})
	return err
}

// SetRepeatCount sets how many times playback loops. Zero or negative counts
// are normalized to zero, which the engine reads as "repeat indefinitely".
func (v *motionView) SetRepeatCount(count int) error {
	if count < 0 {
		count = 0
	}
	_, err := v.invoke("setRepeatCount", map[string]any{
		"repeatCount": count,
	})
	return err
}

// SetSync toggles synchronous rendering.
func (v *motionView) SetSync(sync bool) error {
	_, err := v.invoke("setSync", map[string]any{
		"sync": sync,
	})
	return err
}

// SetVideoEnabled toggles decoding of video layers.
func (v *motionView) SetVideoEnabled(enabled bool) error {
	_, err := v.invoke("setVideoEnabled", map[string]any{
		"enabled": enabled,
	})
	return err
}

// SetCacheEnabled toggles the engine's frame cache.
func (v *motionView) SetCacheEnabled(enabled bool) error {
	_, err := v.invoke("setCacheEnabled", map[string]any{
		"enabled": enabled,
	})
	return err
}

// SetCacheScale sets the cache resolution factor in [0, 1].
func (v *motionView) SetCacheScale(scale float64) error {
	_, err := v.invoke("setCacheScale", map[string]any{
		"scale": scale,
	})
	return err
}

// SetMaxFrameRate caps the rendering frame rate.
func (v *motionView) SetMaxFrameRate(fps float64) error {
	_, err := v.invoke("setMaxFrameRate", map[string]any{
		"fps": fps,
	})
	return err
}

// SetScaleMode selects how content fits the surface.
func (v *motionView) SetScaleMode(mode motion.ScaleMode) error {
	_, err := v.invoke("setScaleMode", map[string]any{
		"mode": int(mode),
	})
	return err
}

// SetMatrix applies an explicit transform in place of a scale mode.
func (v *motionView) SetMatrix(matrix motion.Matrix) error {
	_, err := v.invoke("setMatrix", map[string]any{
		"matrix": matrix[:],
	})
	return err
}

// CurrentFrameTime returns the presentation time of the most recently
// rendered frame, in microseconds.
func (v *motionView) CurrentFrameTime() (int64, error) {
	result, err := v.invoke("getCurrentFrameTime", nil)
	if err != nil {
		return 0, err
	}
	payload := parseMap(result)
	t, ok := toInt64(payload["frameTimeUs"])
	if !ok {
		return 0, &errors.ParseError{Channel: "motion/platform_views", DataType: "frameTimeUs", Got: result}
	}
	return t, nil
}

// LayersAt hit-tests the composition at a point in view coordinates.
func (v *motionView) LayersAt(x, y float64) ([]motion.Layer, error) {
	result, err := v.invoke("getLayersAtPoint", map[string]any{
		"x": x,
		"y": y,
	})
	if err != nil {
		return nil, err
	}
	payload := parseMap(result)
	if payload == nil {
		return nil, nil
	}
	raw, ok := payload["layers"].([]any)
	if !ok {
		return nil, nil
	}
	layers := make([]motion.Layer, 0, len(raw))
	for _, entry := range raw {
		m := parseMap(entry)
		if m == nil {
			continue
		}
		index, _ := toInt(m["index"])
		kind, _ := toInt(m["type"])
		layers = append(layers, motion.Layer{
			Name:  parseString(m["name"]),
			Index: index,
			Type:  motion.LayerType(kind),
		})
	}
	return layers, nil
}

// FreeCache releases the engine's internal caches.
func (v *motionView) FreeCache() error {
	_, err := v.invoke("freeCache", nil)
	return err
}

// Snapshot captures a still image of the current output. The engine returns
// raw RGBA pixels base64-encoded; a nil image means nothing is rendered yet.
func (v *motionView) Snapshot() (image.Image, error) {
	result, err := v.invoke("snapshot", nil)
	if err != nil {
		return nil, err
	}
	payload := parseMap(result)
	if payload == nil {
		return nil, nil
	}
	width, okW := toInt(payload["width"])
	height, okH := toInt(payload["height"])
	encoded := parseString(payload["pixels"])
	if !okW || !okH || width <= 0 || height <= 0 || encoded == "" {
		return nil, nil
	}
	pix, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &errors.ParseError{Channel: "motion/platform_views", DataType: "snapshot pixels", Got: payload["pixels"]}
	}
	if len(pix) != width*height*4 {
		return nil, &errors.ParseError{Channel: "motion/platform_views", DataType: "snapshot pixels", Got: len(pix)}
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// SetStateCallback registers the lifecycle signal callback. A nil callback
// unregisters the previous one.
func (v *motionView) SetStateCallback(fn func(motion.PlaybackSignal)) {
	v.mu.Lock()
	v.stateFn = fn
	v.mu.Unlock()
}

// SetProgressCallback registers the periodic progress callback. A nil
// callback unregisters the previous one.
func (v *motionView) SetProgressCallback(fn func(float64)) {
	v.mu.Lock()
	v.progressFn = fn
	v.mu.Unlock()
}

// Release destroys the native controller through the registry. The view is
// unregistered first, so events racing the release are dropped by the router.
func (v *motionView) Release() {
	GetPlatformViewRegistry().Dispose(v.viewID)
}

// Wire values for the onStateChanged event.
const (
	wireStateStart  = 0
	wireStateRepeat = 1
	wireStateCancel = 2
	wireStateEnd    = 3
)

// signalFromWire maps an onStateChanged wire value to a playback signal.
func signalFromWire(state int) (motion.PlaybackSignal, bool) {
	switch state {
	case wireStateStart:
		return motion.SignalStart, true
	case wireStateRepeat:
		return motion.SignalRepeat, true
	case wireStateCancel:
		return motion.SignalCancel, true
	case wireStateEnd:
		return motion.SignalEnd, true
	default:
		return 0, false
	}
}

// OnViewEvent implements viewEventSink. The registry routes native events
// here by viewId; deliveries are marshaled onto the UI thread because the
// engine raises signals from whichever thread drives playback.
func (v *motionView) OnViewEvent(method string, args map[string]any) {
	switch method {
	case "onStateChanged":
		state, ok := toInt(args["state"])
		if !ok {
			v.reportEventParse(method, args["state"])
			return
		}
		signal, ok := signalFromWire(state)
		if !ok {
			v.reportEventParse(method, state)
			return
		}
		v.mu.Lock()
		fn := v.stateFn
		v.mu.Unlock()
		if fn != nil {
			Dispatch(func() {
				fn(signal)
			})
		}

	case "onProgressUpdate":
		progress, ok := toFloat64(args["progress"])
		if !ok {
			v.reportEventParse(method, args["progress"])
			return
		}
		v.mu.Lock()
		fn := v.progressFn
		v.mu.Unlock()
		if fn != nil {
			Dispatch(func() {
				fn(progress)
			})
		}
	}
}

func (v *motionView) reportEventParse(method string, got any) {
	errors.Report(&errors.MotionError{
		Op:      "platform.motionView.OnViewEvent",
		Kind:    errors.KindParsing,
		Channel: "motion/platform_views/events",
		Err:     &errors.ParseError{Channel: "motion/platform_views/events", DataType: method, Got: got},
	})
}

// motionViewFactory creates motion platform views.
type motionViewFactory struct{}

func (f *motionViewFactory) ViewType() string {
	return "motion_view"
}

func (f *motionViewFactory) Create(viewID int64, params map[string]any) (PlatformView, error) {
	return newMotionView(viewID), nil
}

func init() {
	GetPlatformViewRegistry().RegisterFactory(&motionViewFactory{})
}

// NewMotionPlayer creates a native playback controller backed by a motion
// platform view. It is the production [motion.PlayerFactory]:
//
//	view := motion.NewView(platform.NewMotionPlayer)
//
// Each call creates its own native controller; Release disposes it.
func NewMotionPlayer() (motion.Player, error) {
	view, err := GetPlatformViewRegistry().Create("motion_view", map[string]any{})
	if err != nil {
		return nil, err
	}
	return view.(*motionView), nil
}
