// Package motion binds declarative animation view state to a native motion
// playback engine.
//
// A [View] owns a set of declared properties (composition, play flag,
// progress, repeat count, caching and scaling options) and keeps them
// synchronized with an engine-side controller behind the [Player] interface.
// Property writes translate into exactly one idempotent engine call each;
// engine callbacks (start, repeat, cancel, end, progress) flow back into the
// declared state and fan out to registered listeners.
//
// # Quick Start
//
// Create a view with a player factory, attach it when the hosting surface is
// ready, and detach it on teardown:
//
//	view := motion.NewView(platform.NewMotionPlayer)
//	view.SetComposition(comp)
//	view.SetProgress(0.3)
//	if err := view.Attach(); err != nil {
//	    // engine unavailable; the view stays detached and setters keep
//	    // recording declared state
//	}
//	defer view.Detach()
//
//	view.SetPlaying(true)
//
// # Listeners
//
// Listeners observe playback without being kept alive by the view. The view
// holds weak references: dropping the last strong reference to a listener is
// enough to retire it, though RemoveListener is still the tidy way out.
//
//	done := make(chan struct{})
//	l := &motion.ViewListener{
//	    OnEnd: func() { close(done) },
//	}
//	view.AddListener(l)
//
// # Threading
//
// View methods are intended for the UI thread, matching the hosting
// framework's single-threaded property model. Engine callbacks may originate
// on arbitrary threads; the production player marshals them onto the UI
// thread before they reach the view, so listeners always run where declared
// state is safe to read.
package motion
