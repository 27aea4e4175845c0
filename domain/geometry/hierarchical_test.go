package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHierarchical_LayersByLongestPath(t *testing.T) {
	items := []Item{
		{ID: "root", Width: 100, Height: 50},
		{ID: "mid", Width: 100, Height: 50},
		{ID: "leaf", Width: 100, Height: 50},
	}
	edges := []Edge{
		{Source: "root", Target: "mid"},
		{Source: "mid", Target: "leaf"},
	}

	result := Hierarchical(items, edges, HierarchicalOptions{})

	assert.Less(t, result["root"].Y, result["mid"].Y)
	assert.Less(t, result["mid"].Y, result["leaf"].Y)
}

func TestHierarchical_DiamondUsesLongestPath(t *testing.T) {
	// root -> a -> leaf, root -> b -> c -> leaf: leaf must sit below the
	// longer root->b->c->leaf path, at layer 3 not layer 2.
	items := []Item{
		{ID: "root", Width: 100, Height: 50},
		{ID: "a", Width: 100, Height: 50},
		{ID: "b", Width: 100, Height: 50},
		{ID: "c", Width: 100, Height: 50},
		{ID: "leaf", Width: 100, Height: 50},
	}
	edges := []Edge{
		{Source: "root", Target: "a"},
		{Source: "a", Target: "leaf"},
		{Source: "root", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "leaf"},
	}

	result := Hierarchical(items, edges, HierarchicalOptions{})

	assert.Equal(t, result["a"].Y, result["b"].Y)
	assert.Less(t, result["b"].Y, result["c"].Y)
	assert.Less(t, result["c"].Y, result["leaf"].Y)
}

func TestHierarchical_CycleTerminates(t *testing.T) {
	items := []Item{
		{ID: "a", Width: 10, Height: 10},
		{ID: "b", Width: 10, Height: 10},
	}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}

	assert.NotPanics(t, func() {
		Hierarchical(items, edges, HierarchicalOptions{})
	})
}

func TestHierarchical_DisconnectedNodesAllStartAtLayerZero(t *testing.T) {
	items := []Item{
		{ID: "a", Width: 10, Height: 10},
		{ID: "b", Width: 10, Height: 10},
	}
	result := Hierarchical(items, nil, HierarchicalOptions{})
	assert.Equal(t, result["a"].Y, result["b"].Y)
}
