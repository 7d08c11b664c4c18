package motion

// handleSignal is the state callback registered with the controller. It
// updates the declared play flag, then fans the signal out to listeners, so
// a listener reading [View.Playing] inside its callback sees the
// post-transition value. Signals arriving after Detach are dropped.
//
// The player delivers signals on the UI thread; no marshaling happens here.
func (v *View) handleSignal(signal PlaybackSignal) {
	v.mu.Lock()
	if v.player == nil {
		v.mu.Unlock()
		return
	}
	switch signal {
	case SignalStart:
		v.playing = true
	case SignalCancel, SignalEnd:
		v.playing = false
	}
	v.mu.Unlock()
	v.notifySignal(signal)
}

// handleProgress is the progress callback registered with the controller.
// The controller-reported value becomes both the declared progress and the
// echo-suppression shadow, then OnUpdate fans out regardless of play state.
// Updates arriving after Detach are dropped.
func (v *View) handleProgress(progress float64) {
	v.mu.Lock()
	if v.player == nil {
		v.mu.Unlock()
		return
	}
	v.progress = progress
	v.lastNativeProgress = progress
	v.hasNativeProgress = true
	v.mu.Unlock()
	v.notifyUpdate(progress)
}

func (v *View) notifySignal(signal PlaybackSignal) {
	v.listeners.each(func(l *ViewListener) {
		switch signal {
		case SignalStart:
			if l.OnStart != nil {
				l.OnStart()
			}
		case SignalRepeat:
			if l.OnRepeat != nil {
				l.OnRepeat()
			}
		case SignalCancel:
			if l.OnCancel != nil {
				l.OnCancel()
			}
		case SignalEnd:
			if l.OnEnd != nil {
				l.OnEnd()
			}
		}
	})
}

func (v *View) notifyUpdate(progress float64) {
	v.listeners.each(func(l *ViewListener) {
		if l.OnUpdate != nil {
			l.OnUpdate(progress)
		}
	})
}
