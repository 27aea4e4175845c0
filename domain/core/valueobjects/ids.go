// Package valueobjects holds the small immutable identifier and geometry
// types shared by every node/edge/page/document in the document core.
package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node within a page.
type NodeID struct{ value string }

// NewNodeID creates a new random NodeID.
func NewNodeID() NodeID { return NodeID{value: uuid.New().String()} }

// NodeIDFromString wraps an existing id string without validating its shape;
// node ids are opaque and CRDT-assigned, unlike the UUID-shaped ids the
// teacher's aggregates required.
func NodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node id cannot be empty")
	}
	return NodeID{value: id}, nil
}

func (id NodeID) String() string        { return id.value }
func (id NodeID) Equals(o NodeID) bool  { return id.value == o.value }
func (id NodeID) IsZero() bool          { return id.value == "" }
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// EdgeID uniquely identifies an edge within a page.
type EdgeID struct{ value string }

// NewEdgeID creates a new random EdgeID.
func NewEdgeID() EdgeID { return EdgeID{value: uuid.New().String()} }

func EdgeIDFromString(id string) (EdgeID, error) {
	if id == "" {
		return EdgeID{}, errors.New("edge id cannot be empty")
	}
	return EdgeID{value: id}, nil
}

func (id EdgeID) String() string       { return id.value }
func (id EdgeID) Equals(o EdgeID) bool { return id.value == o.value }
func (id EdgeID) IsZero() bool         { return id.value == "" }

// PageID uniquely identifies a page within a document.
type PageID struct{ value string }

func NewPageID() PageID { return PageID{value: uuid.New().String()} }

func PageIDFromString(id string) (PageID, error) {
	if id == "" {
		return PageID{}, errors.New("page id cannot be empty")
	}
	return PageID{value: id}, nil
}

func (id PageID) String() string       { return id.value }
func (id PageID) Equals(o PageID) bool { return id.value == o.value }
func (id PageID) IsZero() bool         { return id.value == "" }

// DocumentID uniquely identifies a document.
type DocumentID struct{ value string }

func NewDocumentID() DocumentID { return DocumentID{value: uuid.New().String()} }

func DocumentIDFromString(id string) (DocumentID, error) {
	if id == "" {
		return DocumentID{}, errors.New("document id cannot be empty")
	}
	return DocumentID{value: id}, nil
}

func (id DocumentID) String() string { return id.value }

// PinConstraintID uniquely identifies a pin constraint.
type PinConstraintID struct{ value string }

func NewPinConstraintID() PinConstraintID { return PinConstraintID{value: uuid.New().String()} }

func (id PinConstraintID) String() string { return id.value }

// Point is a 2D coordinate, used for both absolute canvas positions and
// parent-relative positions depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two points.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p minus o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
