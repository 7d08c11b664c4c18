package motion

// ScaleMode controls how a composition is fitted to the view's surface when
// no explicit transform matrix is set.
type ScaleMode int

const (
	// ScaleModeNone renders the composition at its authored size with no
	// scaling. This mode is forced whenever an explicit matrix is pushed.
	ScaleModeNone ScaleMode = iota

	// ScaleModeStretch fills the surface exactly, ignoring aspect ratio.
	ScaleModeStretch

	// ScaleModeLetterBox scales to fit inside the surface, preserving aspect
	// ratio and leaving bars on the shorter axis.
	ScaleModeLetterBox

	// ScaleModeZoom scales to cover the surface, preserving aspect ratio and
	// cropping the longer axis.
	ScaleModeZoom
)

// String returns a human-readable label for the scale mode.
func (m ScaleMode) String() string {
	switch m {
	case ScaleModeNone:
		return "None"
	case ScaleModeStretch:
		return "Stretch"
	case ScaleModeLetterBox:
		return "LetterBox"
	case ScaleModeZoom:
		return "Zoom"
	default:
		return "Unknown"
	}
}
