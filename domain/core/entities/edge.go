package entities

import "github.com/carta-systems/carta-core/domain/core/valueobjects"

// EdgeData is the typed payload of an edge.
type EdgeData struct {
	Waypoints   []valueobjects.Point `json:"waypoints,omitempty"`
	Label       string               `json:"label,omitempty"`
	BundleCount int                  `json:"bundleCount,omitempty"`
}

// Edge connects two nodes on the same page. Waypoints, when present, are
// absolute canvas coordinates owned by the edge-routing layout action; any
// layout action that invalidates routes must clear them.
type Edge struct {
	ID            valueobjects.EdgeID  `json:"id"`
	Source        valueobjects.NodeID  `json:"source"`
	Target        valueobjects.NodeID  `json:"target"`
	SourceHandle  *string              `json:"sourceHandle,omitempty"`
	TargetHandle  *string              `json:"targetHandle,omitempty"`
	Data          EdgeData             `json:"data,omitempty"`
}

// Clone returns a copy of the edge safe to hand to callers outside the
// adapter.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	if e.SourceHandle != nil {
		h := *e.SourceHandle
		c.SourceHandle = &h
	}
	if e.TargetHandle != nil {
		h := *e.TargetHandle
		c.TargetHandle = &h
	}
	if e.Data.Waypoints != nil {
		c.Data.Waypoints = append([]valueobjects.Point(nil), e.Data.Waypoints...)
	}
	return &c
}

// PinDirection is the side of the source organizer a target organizer is
// pinned to.
type PinDirection string

const (
	PinNorth PinDirection = "N"
	PinSouth PinDirection = "S"
	PinEast  PinDirection = "E"
	PinWest  PinDirection = "W"
)

// PinConstraint encodes "target pins to source on side direction".
type PinConstraint struct {
	ID                 valueobjects.PinConstraintID `json:"id"`
	SourceOrganizerID  valueobjects.NodeID          `json:"sourceOrganizerId"`
	TargetOrganizerID  valueobjects.NodeID          `json:"targetOrganizerId"`
	Direction          PinDirection                 `json:"direction"`
}
