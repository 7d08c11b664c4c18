package motion

import (
	"errors"
	"fmt"
	"image"
	"sync"

	motionerrors "github.com/go-drift/motion/pkg/errors"
)

// ErrNoPlayerFactory is returned by [View.Attach] when the view was
// constructed without a player factory.
var ErrNoPlayerFactory = errors.New("motion: view has no player factory")

// View binds a set of declared playback properties to a native playback
// controller. Property setters may be called at any time; while the view is
// detached they only record the value, and Attach replays the full declared
// state into a freshly created controller in a fixed order. While attached,
// each genuine value change maps to exactly one controller call.
//
// Create with [NewView], passing the platform player factory:
//
//	view := motion.NewView(platform.NewMotionPlayer)
//	view.SetComposition(comp)
//	if err := view.Attach(); err != nil { ... }
//	defer view.Detach()
//	view.SetPlaying(true)
//
// Property setters, Attach, and Detach are UI-thread calls, matching the
// hosting framework's property binding. Controller callbacks are delivered
// on the UI thread by the player implementation; the view additionally
// guards its handle so a callback racing Detach never reaches a released
// controller.
//
// Listeners added with [View.AddListener] are held weakly: the view never
// keeps a listener alive, and a collected listener is skipped silently.
type View struct {
	mu        sync.RWMutex
	newPlayer PlayerFactory
	player    Player // guarded by mu; nil while detached

	// Declared properties, guarded by mu.
	composition  *Composition
	playing      bool
	progress     float64
	repeatCount  int
	syncEnabled  bool
	videoEnabled bool
	cacheEnabled bool
	cacheScale   float64
	maxFrameRate float64
	scaleMode    ScaleMode
	matrix       Matrix

	// Last progress reported by the controller itself, used to suppress
	// echo pushes when an external write feeds that value straight back.
	// Guarded by mu; valid only while hasNativeProgress is set.
	lastNativeProgress float64
	hasNativeProgress  bool

	listeners listenerSet
}

// NewView creates a detached view with default declared state: no
// composition, paused at progress 0, one play-through, letter-box scaling,
// video and frame caching enabled.
func NewView(factory PlayerFactory) *View {
	return &View{
		newPlayer:    factory,
		repeatCount:  1,
		videoEnabled: true,
		cacheEnabled: true,
		cacheScale:   1.0,
		maxFrameRate: 60.0,
		scaleMode:    ScaleModeLetterBox,
		matrix:       IdentityMatrix(),
	}
}

// Attach creates the controller, registers its callbacks, and replays the
// declared state in initialization order. Attaching an already attached
// view is a no-op. On factory failure the view stays detached and the error
// is both reported and returned.
func (v *View) Attach() error {
	v.mu.RLock()
	attached := v.player != nil
	factory := v.newPlayer
	v.mu.RUnlock()
	if attached {
		return nil
	}
	if factory == nil {
		return ErrNoPlayerFactory
	}

	player, err := factory()
	if err != nil {
		err = fmt.Errorf("create player: %w", err)
		motionerrors.Report(&motionerrors.MotionError{
			Op:   "motion.View.Attach",
			Kind: motionerrors.KindInit,
			Err:  err,
		})
		return err
	}
	player.SetStateCallback(v.handleSignal)
	player.SetProgressCallback(v.handleProgress)

	v.mu.Lock()
	v.player = player
	v.hasNativeProgress = false
	v.mu.Unlock()

	v.applyInitialState(player)
	return nil
}

// Detach unregisters the controller callbacks and releases the controller
// exactly once. Detaching a detached view is a no-op. After Detach returns,
// no controller-originated callback reaches the released controller, and
// every public operation degrades to its documented default.
func (v *View) Detach() {
	v.mu.Lock()
	player := v.player
	v.player = nil
	v.mu.Unlock()
	if player == nil {
		return
	}
	player.SetStateCallback(nil)
	player.SetProgressCallback(nil)
	player.Release()
}

// Attached reports whether the view currently owns a live controller.
func (v *View) Attached() bool {
	v.mu.RLock()
	attached := v.player != nil
	v.mu.RUnlock()
	return attached
}

// Flush forces a single synchronous re-render without altering play state.
// No-op while detached.
func (v *View) Flush() {
	v.mu.RLock()
	player := v.player
	v.mu.RUnlock()
	if player == nil {
		return
	}
	reportPush("motion.View.Flush", player.Flush())
}

// applyInitialState replays the declared properties into a fresh controller.
// The order is fixed: composition first, since later setters depend on
// content being installed, then the scalar properties, then exactly one of
// matrix or scale mode, then a flush (paused) or play (playing).
func (v *View) applyInitialState(player Player) {
	v.mu.Lock()
	comp := v.composition
	progress := v.progress
	repeatCount := v.repeatCount
	syncEnabled := v.syncEnabled
	videoEnabled := v.videoEnabled
	cacheEnabled := v.cacheEnabled
	cacheScale := v.cacheScale
	maxFrameRate := v.maxFrameRate
	scaleMode := v.scaleMode
	matrix := v.matrix
	playing := v.playing
	if !matrix.IsIdentity() {
		// An active matrix supersedes the scale mode; keep the declared
		// value in step with what the controller is told.
		v.scaleMode = ScaleModeNone
	}
	v.mu.Unlock()

	const op = "motion.View.Attach"
	if comp != nil {
		reportPush(op, player.SetComposition(comp))
	}
	reportPush(op, player.SetProgress(progress))
	reportPush(op, player.SetRepeatCount(repeatCount))
	reportPush(op, player.SetSync(syncEnabled))
	reportPush(op, player.SetVideoEnabled(videoEnabled))
	reportPush(op, player.SetCacheEnabled(cacheEnabled))
	reportPush(op, player.SetCacheScale(cacheScale))
	reportPush(op, player.SetMaxFrameRate(maxFrameRate))
	if !matrix.IsIdentity() {
		reportPush(op, player.SetMatrix(matrix))
		reportPush(op, player.SetScaleMode(ScaleModeNone))
	} else {
		reportPush(op, player.SetScaleMode(scaleMode))
	}
	if playing {
		reportPush(op, player.Play())
	} else {
		reportPush(op, player.Flush())
	}
}

// SetComposition replaces the rendered content. While attached, a change
// pushes the new composition and, when not playing, flushes so the first
// frame reflects the new content without starting playback.
func (v *View) SetComposition(comp *Composition) {
	v.mu.Lock()
	if v.composition == comp {
		v.mu.Unlock()
		return
	}
	v.composition = comp
	player := v.player
	playing := v.playing
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetComposition", player.SetComposition(comp))
	if !playing {
		reportPush("motion.View.SetComposition", player.Flush())
	}
}

// SetPlaying mirrors the declared play flag onto the controller: true plays,
// false pauses. Re-setting the current value is a no-op.
func (v *View) SetPlaying(playing bool) {
	v.mu.Lock()
	if v.playing == playing {
		v.mu.Unlock()
		return
	}
	v.playing = playing
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	if playing {
		reportPush("motion.View.SetPlaying", player.Play())
	} else {
		reportPush("motion.View.SetPlaying", player.Pause())
	}
}

// SetProgress moves the declared playhead, clamped to [0, 1]. A value equal
// to the last controller-reported progress updates the declared state but
// issues no controller call, breaking the set/callback feedback loop. Other
// changes push the value and, when not playing, flush.
func (v *View) SetProgress(progress float64) {
	progress = clamp01(progress)
	v.mu.Lock()
	if v.progress == progress {
		v.mu.Unlock()
		return
	}
	v.progress = progress
	echo := v.hasNativeProgress && v.lastNativeProgress == progress
	player := v.player
	playing := v.playing
	v.mu.Unlock()
	if player == nil || echo {
		return
	}
	reportPush("motion.View.SetProgress", player.SetProgress(progress))
	if !playing {
		reportPush("motion.View.SetProgress", player.Flush())
	}
}

// SetRepeatCount sets how many times playback loops. Zero or negative means
// repeat indefinitely.
func (v *View) SetRepeatCount(count int) {
	v.mu.Lock()
	if v.repeatCount == count {
		v.mu.Unlock()
		return
	}
	v.repeatCount = count
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetRepeatCount", player.SetRepeatCount(count))
}

// SetSync toggles synchronous rendering.
func (v *View) SetSync(sync bool) {
	v.mu.Lock()
	if v.syncEnabled == sync {
		v.mu.Unlock()
		return
	}
	v.syncEnabled = sync
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetSync", player.SetSync(sync))
}

// SetVideoEnabled toggles decoding of video layers.
func (v *View) SetVideoEnabled(enabled bool) {
	v.mu.Lock()
	if v.videoEnabled == enabled {
		v.mu.Unlock()
		return
	}
	v.videoEnabled = enabled
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetVideoEnabled", player.SetVideoEnabled(enabled))
}

// SetCacheEnabled toggles the controller's frame cache.
func (v *View) SetCacheEnabled(enabled bool) {
	v.mu.Lock()
	if v.cacheEnabled == enabled {
		v.mu.Unlock()
		return
	}
	v.cacheEnabled = enabled
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetCacheEnabled", player.SetCacheEnabled(enabled))
}

// SetCacheScale sets the cache resolution factor, clamped to [0, 1].
func (v *View) SetCacheScale(scale float64) {
	scale = clamp01(scale)
	v.mu.Lock()
	if v.cacheScale == scale {
		v.mu.Unlock()
		return
	}
	v.cacheScale = scale
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetCacheScale", player.SetCacheScale(scale))
}

// SetMaxFrameRate caps the rendering frame rate.
func (v *View) SetMaxFrameRate(fps float64) {
	v.mu.Lock()
	if v.maxFrameRate == fps {
		v.mu.Unlock()
		return
	}
	v.maxFrameRate = fps
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetMaxFrameRate", player.SetMaxFrameRate(fps))
}

// SetScaleMode selects how content fits the surface. It never alters the
// declared matrix.
func (v *View) SetScaleMode(mode ScaleMode) {
	v.mu.Lock()
	if v.scaleMode == mode {
		v.mu.Unlock()
		return
	}
	v.scaleMode = mode
	player := v.player
	v.mu.Unlock()
	if player == nil {
		return
	}
	reportPush("motion.View.SetScaleMode", player.SetScaleMode(mode))
}

// SetMatrix applies an explicit transform. A non-identity matrix supersedes
// the scale mode: the push forces the controller's scale mode to
// [ScaleModeNone] and the declared scale mode follows. The identity matrix
// is the unset sentinel; it is recorded but never pushed.
func (v *View) SetMatrix(matrix Matrix) {
	v.mu.Lock()
	if v.matrix == matrix {
		v.mu.Unlock()
		return
	}
	v.matrix = matrix
	player := v.player
	if !matrix.IsIdentity() {
		v.scaleMode = ScaleModeNone
	}
	v.mu.Unlock()
	if player == nil || matrix.IsIdentity() {
		return
	}
	reportPush("motion.View.SetMatrix", player.SetMatrix(matrix))
	reportPush("motion.View.SetMatrix", player.SetScaleMode(ScaleModeNone))
}

// Composition returns the declared composition, which may be nil.
func (v *View) Composition() *Composition {
	v.mu.RLock()
	comp := v.composition
	v.mu.RUnlock()
	return comp
}

// Playing returns the declared play flag. Controller lifecycle signals keep
// it current: Start sets it, End and Cancel clear it.
func (v *View) Playing() bool {
	v.mu.RLock()
	playing := v.playing
	v.mu.RUnlock()
	return playing
}

// Progress returns the declared playhead position in [0, 1].
func (v *View) Progress() float64 {
	v.mu.RLock()
	progress := v.progress
	v.mu.RUnlock()
	return progress
}

// RepeatCount returns the declared repeat count.
func (v *View) RepeatCount() int {
	v.mu.RLock()
	count := v.repeatCount
	v.mu.RUnlock()
	return count
}

// Sync returns the declared synchronous-rendering flag.
func (v *View) Sync() bool {
	v.mu.RLock()
	s := v.syncEnabled
	v.mu.RUnlock()
	return s
}

// VideoEnabled returns the declared video-decoding flag.
func (v *View) VideoEnabled() bool {
	v.mu.RLock()
	enabled := v.videoEnabled
	v.mu.RUnlock()
	return enabled
}

// CacheEnabled returns the declared frame-cache flag.
func (v *View) CacheEnabled() bool {
	v.mu.RLock()
	enabled := v.cacheEnabled
	v.mu.RUnlock()
	return enabled
}

// CacheScale returns the declared cache resolution factor.
func (v *View) CacheScale() float64 {
	v.mu.RLock()
	scale := v.cacheScale
	v.mu.RUnlock()
	return scale
}

// MaxFrameRate returns the declared frame-rate cap.
func (v *View) MaxFrameRate() float64 {
	v.mu.RLock()
	fps := v.maxFrameRate
	v.mu.RUnlock()
	return fps
}

// ScaleMode returns the declared scale mode.
func (v *View) ScaleMode() ScaleMode {
	v.mu.RLock()
	mode := v.scaleMode
	v.mu.RUnlock()
	return mode
}

// Matrix returns the declared transform.
func (v *View) Matrix() Matrix {
	v.mu.RLock()
	m := v.matrix
	v.mu.RUnlock()
	return m
}

// CurrentFrameTime returns the presentation time of the most recently
// rendered frame in microseconds, or 0 while detached.
func (v *View) CurrentFrameTime() int64 {
	v.mu.RLock()
	player := v.player
	v.mu.RUnlock()
	if player == nil {
		return 0
	}
	t, err := player.CurrentFrameTime()
	if err != nil {
		reportPush("motion.View.CurrentFrameTime", err)
		return 0
	}
	return t
}

// LayersAt hit-tests the composition at a point in view coordinates. It
// returns nil while detached.
func (v *View) LayersAt(x, y float64) []Layer {
	v.mu.RLock()
	player := v.player
	v.mu.RUnlock()
	if player == nil {
		return nil
	}
	layers, err := player.LayersAt(x, y)
	if err != nil {
		reportPush("motion.View.LayersAt", err)
		return nil
	}
	return layers
}

// FreeCache releases the controller's internal caches. No-op while detached.
func (v *View) FreeCache() {
	v.mu.RLock()
	player := v.player
	v.mu.RUnlock()
	if player == nil {
		return
	}
	reportPush("motion.View.FreeCache", player.FreeCache())
}

// Snapshot captures a still image of the current output. It returns nil
// while detached.
func (v *View) Snapshot() image.Image {
	v.mu.RLock()
	player := v.player
	v.mu.RUnlock()
	if player == nil {
		return nil
	}
	img, err := player.Snapshot()
	if err != nil {
		reportPush("motion.View.Snapshot", err)
		return nil
	}
	return img
}

// AddListener registers a listener for playback notifications. The view
// holds it weakly; the caller must keep its own reference. Registering the
// same listener twice delivers each notification twice.
func (v *View) AddListener(l *ViewListener) {
	v.listeners.add(l)
}

// RemoveListener drops the first registration of l, stopping all further
// notifications for it. No-op if l is not registered.
func (v *View) RemoveListener(l *ViewListener) {
	v.listeners.remove(l)
}

// reportPush routes a failed controller call to the error handler. Declared
// writes never fail; a push error means the native layer rejected the call.
func reportPush(op string, err error) {
	if err == nil {
		return
	}
	motionerrors.Report(&motionerrors.MotionError{
		Op:   op,
		Kind: motionerrors.KindPlatform,
		Err:  err,
	})
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
