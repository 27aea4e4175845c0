package portregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carta-systems/carta-core/domain/core/entities"
)

type fakeLookup map[string]entities.PortSchema

func (f fakeLookup) GetPortSchema(id string) (entities.PortSchema, bool) {
	p, ok := f[id]
	return p, ok
}

func TestCanConnect_PolarityBlocking(t *testing.T) {
	lookup := fakeLookup{
		"data-out":  {ID: "data-out", Polarity: entities.PolaritySource, CompatibleWith: []string{"data-in"}},
		"event-out": {ID: "event-out", Polarity: entities.PolaritySource},
		"data-in":   {ID: "data-in", Polarity: entities.PolaritySink},
		"relay":     {ID: "relay", Polarity: entities.PolarityRelay},
	}
	reg := New(lookup)

	assert.False(t, reg.CanConnect("data-out", "event-out"), "two source-like ports must never connect")
	assert.True(t, reg.CanConnect("data-out", "data-in"))
	assert.True(t, reg.CanConnect("relay", "data-in"), "relay bypasses compatibleWith")
}

func TestCanConnect_UnknownPortRejected(t *testing.T) {
	reg := New(fakeLookup{})
	assert.False(t, reg.CanConnect("a", "b"))
}

func TestCanConnect_BidirectionalAlwaysCompatible(t *testing.T) {
	lookup := fakeLookup{
		"bidi": {ID: "bidi", Polarity: entities.PolarityBidirectional},
		"sink": {ID: "sink", Polarity: entities.PolaritySink},
	}
	reg := New(lookup)
	assert.True(t, reg.CanConnect("bidi", "sink"))
}

func TestCanConnect_InterceptBypassesOnSinkSide(t *testing.T) {
	lookup := fakeLookup{
		"src":       {ID: "src", Polarity: entities.PolaritySource, CompatibleWith: []string{"nothing-matching"}},
		"intercept": {ID: "intercept", Polarity: entities.PolarityIntercept},
	}
	reg := New(lookup)
	assert.True(t, reg.CanConnect("src", "intercept"))
}

func TestCanConnect_WildcardCompatibility(t *testing.T) {
	lookup := fakeLookup{
		"src": {ID: "src", Polarity: entities.PolaritySource, CompatibleWith: []string{"*"}},
		"snk": {ID: "snk", Polarity: entities.PolaritySink},
	}
	reg := New(lookup)
	assert.True(t, reg.CanConnect("src", "snk"))
}
