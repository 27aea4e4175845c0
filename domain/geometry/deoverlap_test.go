package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeOverlap_SeparatesOverlappingPair(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "b", X: 50, Y: 0, Width: 100, Height: 100},
	}

	result := DeOverlap(items)

	a := Rect{X: result["a"].X, Y: result["a"].Y, Width: 100, Height: 100}
	b := Rect{X: result["b"].X, Y: result["b"].Y, Width: 100, Height: 100}
	assert.False(t, a.Overlaps(b), "expected a and b to no longer overlap")
}

func TestDeOverlap_LeavesNonOverlappingItemsUntouched(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "b", X: 500, Y: 500, Width: 50, Height: 50},
	}

	result := DeOverlap(items)

	assert.Equal(t, Point{X: 0, Y: 0}, result["a"])
	assert.Equal(t, Point{X: 500, Y: 500}, result["b"])
}

func TestDeOverlap_EmptyInput(t *testing.T) {
	result := DeOverlap(nil)
	assert.Empty(t, result)
}

func TestDeOverlap_ChainOfThreeConverges(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 80, Height: 80},
		{ID: "b", X: 20, Y: 0, Width: 80, Height: 80},
		{ID: "c", X: 40, Y: 0, Width: 80, Height: 80},
	}

	result := DeOverlap(items)

	rects := make(map[string]Rect, len(items))
	for _, it := range items {
		p := result[it.ID]
		rects[it.ID] = Rect{X: p.X, Y: p.Y, Width: it.Width, Height: it.Height}
	}
	assert.False(t, rects["a"].Overlaps(rects["b"]))
	assert.False(t, rects["b"].Overlaps(rects["c"]))
	assert.False(t, rects["a"].Overlaps(rects["c"]))
}
