package motion

// LayerType identifies the kind of a composition layer.
type LayerType int

const (
	LayerTypeUnknown LayerType = iota
	LayerTypeNull
	LayerTypeSolid
	LayerTypeText
	LayerTypeShape
	LayerTypeImage
	LayerTypePreCompose
)

// String returns a human-readable label for the layer type.
func (t LayerType) String() string {
	switch t {
	case LayerTypeNull:
		return "Null"
	case LayerTypeSolid:
		return "Solid"
	case LayerTypeText:
		return "Text"
	case LayerTypeShape:
		return "Shape"
	case LayerTypeImage:
		return "Image"
	case LayerTypePreCompose:
		return "PreCompose"
	default:
		return "Unknown"
	}
}

// Layer describes a composition layer reported by a hit test.
type Layer struct {
	// Name is the layer's authored name.
	Name string
	// Index is the layer's position within its composition.
	Index int
	// Type is the layer kind.
	Type LayerType
}
