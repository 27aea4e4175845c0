package geometry

// ContainerFitOptions configures ComputeContainerFit.
type ContainerFitOptions struct {
	// Padding is left/right/bottom clearance between children and the
	// container's edge.
	Padding float64
	// HeaderHeight is extra clearance above the children reserved for an
	// organizer's title bar; it behaves like padding but only on the top
	// edge.
	HeaderHeight float64
}

// DefaultContainerPadding and DefaultHeaderHeight are the fit defaults used
// by every organizer-scoped layout action unless the caller overrides them.
const (
	DefaultContainerPadding = 20.0
	DefaultHeaderHeight     = 40.0
)

// ContainerFit is the result of ComputeContainerFit: translate the container
// by PositionDelta and every child by ChildPositionDelta, and the
// container's bounding box will exactly enclose its children with the
// configured padding.
type ContainerFit struct {
	Size               Size
	PositionDelta      Point
	ChildPositionDelta Point
}

// Size is a width/height pair (geometry's own copy, independent of
// valueobjects.Size, since this package must stay free of any domain
// import — see package doc).
type Size struct {
	Width  float64
	Height float64
}

// ComputeContainerFit returns the translation that makes a container's
// bounding box exactly enclose `children` (given in the container's local,
// i.e. parent-relative, coordinate space) with the configured padding and
// header height (§4.3). An empty children slice fits to a zero-size content
// area with just the padding/header border.
func ComputeContainerFit(children []Item, opts ContainerFitOptions) ContainerFit {
	padding := opts.Padding
	if padding == 0 {
		padding = DefaultContainerPadding
	}
	header := opts.HeaderHeight
	if header == 0 {
		header = DefaultHeaderHeight
	}

	if len(children) == 0 {
		return ContainerFit{
			Size:               Size{Width: 2 * padding, Height: header + padding},
			PositionDelta:      Point{},
			ChildPositionDelta: Point{},
		}
	}

	b := Bounds(children)

	childDelta := Point{X: padding - b.X, Y: header - b.Y}

	return ContainerFit{
		Size: Size{
			Width:  b.Width + 2*padding,
			Height: b.Height + header + padding,
		},
		PositionDelta:      Point{X: -childDelta.X, Y: -childDelta.Y},
		ChildPositionDelta: childDelta,
	}
}
