package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompact_CollapsesLargeGap(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "b", X: 1000, Y: 0, Width: 50, Height: 50},
	}

	result := Compact(items)

	assert.Equal(t, 0.0, result["a"].X)
	assert.Equal(t, 50.0+compactGap, result["b"].X)
}

func TestCompact_PreservesOrder(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "b", X: 200, Y: 0, Width: 50, Height: 50},
		{ID: "c", X: 600, Y: 0, Width: 50, Height: 50},
	}

	result := Compact(items)

	assert.Less(t, result["a"].X, result["b"].X)
	assert.Less(t, result["b"].X, result["c"].X)
}

func TestCompact_NeverIntroducesNewOverlap(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "b", X: 105, Y: 0, Width: 100, Height: 100},
	}

	result := Compact(items)

	ar := Rect{X: result["a"].X, Y: result["a"].Y, Width: 100, Height: 100}
	br := Rect{X: result["b"].X, Y: result["b"].Y, Width: 100, Height: 100}
	assert.False(t, ar.Overlaps(br))
}

func TestCompact_EmptyInput(t *testing.T) {
	assert.Empty(t, Compact(nil))
}
