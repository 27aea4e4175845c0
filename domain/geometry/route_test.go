package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute_SimpleEdgeHasAxisAlignedSegments(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 100, Height: 50},
		{ID: "b", X: 300, Y: 0, Width: 100, Height: 50},
	}
	edges := []RouteEdge{{ID: "e1", Source: "a", Target: "b"}}

	result := Route(items, edges)

	path := result["e1"]
	assert.GreaterOrEqual(t, len(path), 2)
	for i := 0; i+1 < len(path); i++ {
		seg := path[i+1]
		prev := path[i]
		assert.True(t, seg.X == prev.X || seg.Y == prev.Y, "segment %d is not axis-aligned", i)
	}
}

func TestRoute_UnknownEndpointYieldsNilPath(t *testing.T) {
	items := []Item{{ID: "a", X: 0, Y: 0, Width: 10, Height: 10}}
	edges := []RouteEdge{{ID: "e1", Source: "a", Target: "missing"}}

	result := Route(items, edges)

	assert.Nil(t, result["e1"])
}

func TestRoute_DeterministicAcrossCalls(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "obstacle", X: 100, Y: 0, Width: 50, Height: 50},
		{ID: "b", X: 250, Y: 0, Width: 50, Height: 50},
	}
	edges := []RouteEdge{{ID: "e1", Source: "a", Target: "b"}}

	first := Route(items, edges)
	second := Route(items, edges)

	assert.Equal(t, first["e1"], second["e1"])
}

func TestRoute_AvoidsObstacleBetweenEndpoints(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "obstacle", X: 25, Y: 60, Width: 60, Height: 50},
		{ID: "b", X: 0, Y: 150, Width: 50, Height: 50},
	}
	edges := []RouteEdge{{ID: "e1", Source: "a", Target: "b"}}

	result := Route(items, edges)
	path := result["e1"]

	obstacleRect := Rect{X: 25, Y: 60, Width: 60, Height: 50}
	for i := 0; i+1 < len(path); i++ {
		assert.False(t, segmentCrossesRect(path[i], path[i+1], obstacleRect),
			"route segment %d->%d crosses obstacle", i, i+1)
	}
}
