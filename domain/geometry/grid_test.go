package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrid_DefaultColumnsIsCeilSqrt(t *testing.T) {
	items := []Item{
		{ID: "a", Width: 200, Height: 100},
		{ID: "b", Width: 200, Height: 100},
		{ID: "c", Width: 200, Height: 100},
		{ID: "d", Width: 200, Height: 100},
	}

	result := Grid(items, GridOptions{})

	// ceil(sqrt(4)) = 2 columns, so item c (index 2) starts a new row.
	assert.Equal(t, result["a"].Y, result["b"].Y)
	assert.NotEqual(t, result["a"].Y, result["c"].Y)
	assert.Equal(t, result["c"].Y, result["d"].Y)
}

func TestGrid_CellSizeIsWidestTallestPlusPadding(t *testing.T) {
	items := []Item{
		{ID: "a", Width: 200, Height: 100},
		{ID: "b", Width: 300, Height: 50},
	}

	result := Grid(items, GridOptions{Columns: 2})

	assert.Equal(t, 0.0, result["a"].X)
	assert.Equal(t, 300.0+gridCellPadding, result["b"].X)
}

func TestGrid_RespectsOrigin(t *testing.T) {
	items := []Item{{ID: "a", Width: 10, Height: 10}}
	result := Grid(items, GridOptions{OriginX: 500, OriginY: 250})
	assert.Equal(t, Point{X: 500, Y: 250}, result["a"])
}

func TestGrid_EmptyInput(t *testing.T) {
	assert.Empty(t, Grid(nil, GridOptions{}))
}
