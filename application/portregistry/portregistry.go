// Package portregistry implements the compatibility contract of §6: given
// two port ids, decide whether a connection between them is allowed. It is
// consulted by the edge-creation collaborator before an edge is ever handed
// to the document adapter, so CanConnect never mutates anything — it is a
// pure query over the current PortSchema registry, mirroring the teacher's
// read-only domain/core/validators posture.
package portregistry

import "github.com/carta-systems/carta-core/domain/core/entities"

// Lookup resolves a port id to its schema. The document adapter's
// PortSchema registry satisfies this directly.
type Lookup interface {
	GetPortSchema(id string) (entities.PortSchema, bool)
}

// Registry answers compatibility checks against a Lookup.
type Registry struct {
	lookup Lookup
}

// New builds a Registry backed by lookup.
func New(lookup Lookup) *Registry {
	return &Registry{lookup: lookup}
}

const wildcard = "*"

// CanConnect reports whether a connection from port `a` to port `b` is
// allowed, per §6:
//   - both ids must resolve to a known PortSchema;
//   - effective polarities must differ: a must be source-like, b sink-like;
//   - then either side bypasses compatibleWith via relay/intercept/bidirectional,
//     or one side's compatibleWith lists the other's id, or uses the '*' wildcard.
func (r *Registry) CanConnect(a, b string) bool {
	pa, ok := r.lookup.GetPortSchema(a)
	if !ok {
		return false
	}
	pb, ok := r.lookup.GetPortSchema(b)
	if !ok {
		return false
	}

	if !pa.Polarity.IsSourceLike() || !pb.Polarity.IsSinkLike() {
		return false
	}

	if pa.Polarity == entities.PolarityRelay {
		return true
	}
	if pb.Polarity == entities.PolarityIntercept {
		return true
	}
	if pa.Polarity == entities.PolarityBidirectional || pb.Polarity == entities.PolarityBidirectional {
		return true
	}

	if contains(pa.CompatibleWith, b) || contains(pa.CompatibleWith, wildcard) {
		return true
	}
	if contains(pb.CompatibleWith, a) || contains(pb.CompatibleWith, wildcard) {
		return true
	}
	return false
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
