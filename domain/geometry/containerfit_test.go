package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeContainerFit_EnclosesChildrenWithPadding(t *testing.T) {
	children := []Item{
		{ID: "a", X: 10, Y: 10, Width: 50, Height: 50},
		{ID: "b", X: 100, Y: 80, Width: 30, Height: 30},
	}

	fit := ComputeContainerFit(children, ContainerFitOptions{})

	assert.Equal(t, DefaultContainerPadding-10, fit.ChildPositionDelta.X)
	assert.Equal(t, DefaultHeaderHeight-10, fit.ChildPositionDelta.Y)

	// Applying the delta to every child and checking bounds starts exactly
	// at (padding, header).
	shifted := make([]Item, len(children))
	for i, c := range children {
		shifted[i] = Item{
			ID: c.ID, Width: c.Width, Height: c.Height,
			X: c.X + fit.ChildPositionDelta.X,
			Y: c.Y + fit.ChildPositionDelta.Y,
		}
	}
	b := Bounds(shifted)
	assert.Equal(t, DefaultContainerPadding, b.X)
	assert.Equal(t, DefaultHeaderHeight, b.Y)
	assert.Equal(t, fit.Size.Width, b.Width+2*DefaultContainerPadding)
	assert.Equal(t, fit.Size.Height, b.Height+DefaultHeaderHeight+DefaultContainerPadding)
}

func TestComputeContainerFit_EmptyChildrenUsesMinimumSize(t *testing.T) {
	fit := ComputeContainerFit(nil, ContainerFitOptions{})
	assert.Equal(t, Size{Width: 2 * DefaultContainerPadding, Height: DefaultHeaderHeight + DefaultContainerPadding}, fit.Size)
	assert.Equal(t, Point{}, fit.ChildPositionDelta)
}

func TestComputeContainerFit_CustomPaddingAndHeader(t *testing.T) {
	children := []Item{{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}}

	fit := ComputeContainerFit(children, ContainerFitOptions{Padding: 5, HeaderHeight: 60})

	assert.Equal(t, Point{X: 5, Y: 60}, fit.ChildPositionDelta)
	assert.Equal(t, Size{Width: 110, Height: 165}, fit.Size)
}
