package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePins_PlacesTargetFlushAgainstNamedSide(t *testing.T) {
	items := []Item{
		{ID: "src", X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "tgt", X: 999, Y: 999, Width: 40, Height: 40},
	}
	constraints := []PinConstraint{
		{ID: "c1", SourceID: "src", TargetID: "tgt", Direction: PinEast},
	}

	positions, warnings := ResolvePins(items, constraints)

	assert.Empty(t, warnings)
	assert.Equal(t, Point{X: 120, Y: 30}, positions["tgt"])
	assert.Equal(t, Point{X: 0, Y: 0}, positions["src"])
}

func TestResolvePins_ConflictingTargetProducesWarning(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "b", X: 200, Y: 0, Width: 50, Height: 50},
		{ID: "t", X: 500, Y: 500, Width: 20, Height: 20},
	}
	constraints := []PinConstraint{
		{ID: "first", SourceID: "a", TargetID: "t", Direction: PinSouth},
		{ID: "second", SourceID: "b", TargetID: "t", Direction: PinNorth},
	}

	positions, warnings := ResolvePins(items, constraints)

	assert.Len(t, warnings, 1)
	assert.Equal(t, "second", warnings[0].ConstraintID)
	// first constraint's placement wins
	assert.Equal(t, Point{X: 15, Y: 70}, positions["t"])
}

func TestResolvePins_UnknownEndpointIsSkipped(t *testing.T) {
	items := []Item{{ID: "a", X: 0, Y: 0, Width: 10, Height: 10}}
	constraints := []PinConstraint{
		{ID: "c1", SourceID: "a", TargetID: "missing", Direction: PinNorth},
	}

	positions, warnings := ResolvePins(items, constraints)

	assert.Empty(t, warnings)
	assert.Equal(t, Point{X: 0, Y: 0}, positions["a"])
	_, ok := positions["missing"]
	assert.False(t, ok)
}

func TestPinnedIDs_ReturnsTargetSet(t *testing.T) {
	constraints := []PinConstraint{
		{ID: "c1", SourceID: "a", TargetID: "b", Direction: PinNorth},
		{ID: "c2", SourceID: "c", TargetID: "d", Direction: PinSouth},
	}
	pinned := PinnedIDs(constraints)
	assert.True(t, pinned["b"])
	assert.True(t, pinned["d"])
	assert.False(t, pinned["a"])
}
