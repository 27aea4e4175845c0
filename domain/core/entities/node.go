// Package entities holds the mutable, identity-bearing objects of a page:
// nodes, edges, pin constraints. Unlike the teacher's entities these are not
// themselves event sources — the document adapter owns transaction/event
// emission (see application/adapter) since every mutation here happens
// inside a CRDT-backed transaction rather than an in-process aggregate.
package entities

import (
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

// NodeType distinguishes a construct from an organizer.
type NodeType string

const (
	NodeTypeConstruct NodeType = "construct"
	NodeTypeOrganizer NodeType = "organizer"
)

// OrganizerLayout is the layout discipline an organizer's direct children
// should be arranged under when a layout action targets it.
type OrganizerLayout string

const (
	OrganizerLayoutFreeform OrganizerLayout = "freeform"
	OrganizerLayoutGrid     OrganizerLayout = "grid"
	OrganizerLayoutFlow     OrganizerLayout = "flow"
)

// Default dimensions used when neither style, measured, nor explicit
// width/height are set (§3).
const (
	DefaultConstructWidth  = 200.0
	DefaultConstructHeight = 100.0
	DefaultOrganizerWidth  = 400.0
	DefaultOrganizerHeight = 300.0
)

// ConstructData is the typed payload of a construct node.
type ConstructData struct {
	ConstructType string                 `json:"constructType"`
	SemanticID    string                 `json:"semanticId"`
	Values        map[string]interface{} `json:"values,omitempty"`
	Connections   []string               `json:"connections,omitempty"`
	DeployableID  *string                `json:"deployableId,omitempty"`
}

// OrganizerData is the typed payload of an organizer node. When
// AttachedToSemanticID is non-nil the organizer is a wagon.
type OrganizerData struct {
	IsOrganizer          bool            `json:"isOrganizer"`
	Name                 string          `json:"name"`
	Color                string          `json:"color,omitempty"`
	Collapsed            bool            `json:"collapsed"`
	Layout               OrganizerLayout `json:"layout"`
	AttachedToSemanticID *string         `json:"attachedToSemanticId,omitempty"`
}

// IsWagon reports whether this organizer is tethered to a construct.
func (d OrganizerData) IsWagon() bool {
	return d.AttachedToSemanticID != nil && *d.AttachedToSemanticID != ""
}

// Style holds manual-resize overrides; when set it is authoritative over
// Measured and the type default (§3: style > measured > explicit > default).
type Style struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Node is a construct, organizer, or wagon on a single page.
type Node struct {
	ID       valueobjects.NodeID `json:"id"`
	Type     NodeType            `json:"type"`
	Position valueobjects.Point  `json:"position"`
	ParentID *valueobjects.NodeID `json:"parentId,omitempty"`

	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Style    Style    `json:"style,omitempty"`
	Measured *valueobjects.Size `json:"measured,omitempty"`

	Construct *ConstructData `json:"constructData,omitempty"`
	Organizer *OrganizerData `json:"organizerData,omitempty"`
}

// IsConstruct reports whether this node is a construct.
func (n *Node) IsConstruct() bool { return n.Type == NodeTypeConstruct }

// IsOrganizer reports whether this node is an organizer (wagon or not).
func (n *Node) IsOrganizer() bool { return n.Type == NodeTypeOrganizer }

// IsWagon reports whether this node is an organizer tethered to a construct.
func (n *Node) IsWagon() bool {
	return n.Type == NodeTypeOrganizer && n.Organizer != nil && n.Organizer.IsWagon()
}

// EffectiveSize resolves the node's size per the precedence rule in §3:
// style > measured > explicit width/height > type default.
func (n *Node) EffectiveSize() valueobjects.Size {
	if n.Style.Width != nil && n.Style.Height != nil {
		return valueobjects.Size{Width: *n.Style.Width, Height: *n.Style.Height}
	}
	if n.Measured != nil {
		w, h := n.Measured.Width, n.Measured.Height
		if n.Style.Width != nil {
			w = *n.Style.Width
		}
		if n.Style.Height != nil {
			h = *n.Style.Height
		}
		return valueobjects.Size{Width: w, Height: h}
	}
	if n.Width != nil && n.Height != nil {
		return valueobjects.Size{Width: *n.Width, Height: *n.Height}
	}
	if n.IsOrganizer() {
		return valueobjects.Size{Width: DefaultOrganizerWidth, Height: DefaultOrganizerHeight}
	}
	return valueobjects.Size{Width: DefaultConstructWidth, Height: DefaultConstructHeight}
}

// SemanticID returns the construct's semantic id, or "" for non-constructs.
func (n *Node) SemanticID() string {
	if n.Construct == nil {
		return ""
	}
	return n.Construct.SemanticID
}

// Clone returns a deep-enough copy of the node safe to hand to a caller
// outside the adapter (matches the teacher's copy-on-read posture in
// Graph.Nodes()).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.ParentID != nil {
		p := *n.ParentID
		c.ParentID = &p
	}
	if n.Width != nil {
		w := *n.Width
		c.Width = &w
	}
	if n.Height != nil {
		h := *n.Height
		c.Height = &h
	}
	if n.Style.Width != nil {
		w := *n.Style.Width
		c.Style.Width = &w
	}
	if n.Style.Height != nil {
		h := *n.Style.Height
		c.Style.Height = &h
	}
	if n.Measured != nil {
		m := *n.Measured
		c.Measured = &m
	}
	if n.Construct != nil {
		cd := *n.Construct
		if n.Construct.Values != nil {
			cd.Values = make(map[string]interface{}, len(n.Construct.Values))
			for k, v := range n.Construct.Values {
				cd.Values[k] = v
			}
		}
		if n.Construct.Connections != nil {
			cd.Connections = append([]string(nil), n.Construct.Connections...)
		}
		c.Construct = &cd
	}
	if n.Organizer != nil {
		od := *n.Organizer
		c.Organizer = &od
	}
	return &c
}
