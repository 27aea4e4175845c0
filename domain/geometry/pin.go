package geometry

// PinDirection is the side of the source item a target item is pinned to.
type PinDirection string

const (
	PinNorth PinDirection = "N"
	PinSouth PinDirection = "S"
	PinEast  PinDirection = "E"
	PinWest  PinDirection = "W"
)

// PinConstraint encodes "target pins to source on side direction" (§3, §4.3).
type PinConstraint struct {
	ID       string
	SourceID string
	TargetID string
	Direction PinDirection
}

// PinWarning reports a conflicting constraint the resolver declined to
// apply because an earlier constraint already claimed the same target.
type PinWarning struct {
	ConstraintID string
	TargetID     string
	Reason       string
}

// defaultPinGap is the clearance the resolver leaves between a pinned pair.
const defaultPinGap = 20.0

// ResolvePins anchors each constraint's source at its position in items,
// then positions its target flush against the source's named side with
// defaultPinGap clearance. Constraints are applied in input order; if a
// target is already claimed by an earlier constraint, the later one is
// reported as a PinWarning and skipped (first-seen wins). The returned map
// contains an entry for every item in `items`, unchanged for items that were
// never a target of an applied constraint.
func ResolvePins(items []Item, constraints []PinConstraint) (map[string]Point, []PinWarning) {
	return ResolvePinsWithGap(items, constraints, defaultPinGap)
}

// ResolvePinsWithGap is ResolvePins with an explicit clearance, for callers
// (application/layoutactions) that source the gap from config rather than
// accepting the package default. gap <= 0 falls back to defaultPinGap.
func ResolvePinsWithGap(items []Item, constraints []PinConstraint, gap float64) (map[string]Point, []PinWarning) {
	if gap <= 0 {
		gap = defaultPinGap
	}
	positions := make(map[string]Point, len(items))
	sizes := make(map[string]Item, len(items))
	for _, it := range items {
		positions[it.ID] = Point{X: it.X, Y: it.Y}
		sizes[it.ID] = it
	}

	claimed := make(map[string]string) // targetID -> constraintID that claimed it
	var warnings []PinWarning

	for _, c := range constraints {
		srcItem, srcOK := sizes[c.SourceID]
		tgtItem, tgtOK := sizes[c.TargetID]
		if !srcOK || !tgtOK {
			continue
		}
		if claimedBy, ok := claimed[c.TargetID]; ok {
			warnings = append(warnings, PinWarning{
				ConstraintID: c.ID,
				TargetID:     c.TargetID,
				Reason:       "target already pinned by constraint " + claimedBy,
			})
			continue
		}

		srcPos := positions[c.SourceID]
		src := Rect{X: srcPos.X, Y: srcPos.Y, Width: srcItem.Width, Height: srcItem.Height}

		var tgtPos Point
		switch c.Direction {
		case PinNorth:
			tgtPos = Point{X: src.CenterX() - tgtItem.Width/2, Y: src.Y - gap - tgtItem.Height}
		case PinSouth:
			tgtPos = Point{X: src.CenterX() - tgtItem.Width/2, Y: src.Bottom() + gap}
		case PinEast:
			tgtPos = Point{X: src.Right() + gap, Y: src.CenterY() - tgtItem.Height/2}
		case PinWest:
			tgtPos = Point{X: src.X - gap - tgtItem.Width, Y: src.CenterY() - tgtItem.Height/2}
		default:
			continue
		}

		positions[c.TargetID] = tgtPos
		claimed[c.TargetID] = c.ID
	}

	return positions, warnings
}

// PinnedIDs returns the set of item ids that are pinned (targets) under the
// given constraints — i.e. not "free" for the purposes of a subsequent
// de-overlap pass (§4.5 applyPinLayout).
func PinnedIDs(constraints []PinConstraint) map[string]bool {
	out := make(map[string]bool, len(constraints))
	for _, c := range constraints {
		out[c.TargetID] = true
	}
	return out
}
