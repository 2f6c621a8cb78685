// Package movement implements the grid-stepping automaton: a movable
// entity advancing through cells honoring declared exits, accumulating
// sub-cell distance across calls, and rolling back entirely whenever a
// sector rule denies a transition.
package movement

import (
	"math"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
	"github.com/trackmap/tsmkernel/pkg/road"
	"github.com/trackmap/tsmkernel/pkg/spatial"
)

// MinDistanceM is the smallest |distance| TryMove treats as a real
// movement request; anything smaller is a no-op.
const MinDistanceM = 0.001

// State is the caller-owned movement state. The automaton never mutates
// any state but the one passed to TryMove.
type State struct {
	CellX, CellZ  int
	Heading       geom.Direction
	HeadingDeg    float64
	WorldPosition geom.Point
	DistanceM     float64 // signed total distance traveled
	PendingM      float64 // non-negative sub-cell carry, always < cell_size
}

// Outcome is what TryMove reports back about one movement attempt.
type Outcome struct {
	Moved       bool
	BoundaryHit bool
	Road        road.View
}

// MakeStartState builds the initial State from a map's metadata.
func MakeStartState(m *model.Map) State {
	wp := m.CellToWorld(m.Meta.StartX, m.Meta.StartZ)
	return State{
		CellX:         m.Meta.StartX,
		CellZ:         m.Meta.StartZ,
		Heading:       m.Meta.StartHeading,
		HeadingDeg:    geom.DirectionToDeg(m.Meta.StartHeading),
		WorldPosition: wp,
	}
}

// TryMove attempts to advance state by distanceM along headingIntent (or
// its opposite, for negative distance). On a sector-rule denial the
// state is restored to its exact pre-call value before returning.
func TryMove(idx *spatial.Index, state *State, distanceM float64, headingIntent geom.Direction) Outcome {
	if math.Abs(distanceM) < MinDistanceM {
		return Outcome{Road: road.At(idx, state.WorldPosition, state.Heading)}
	}

	m := idx.Map()
	cs := m.Meta.CellSizeM

	sign := 1.0
	travelDir := headingIntent
	if distanceM < 0 {
		sign = -1.0
		travelDir = headingIntent.Opposite()
	}

	meters := state.PendingM + math.Abs(distanceM)
	steps := int(math.Floor(meters / cs))
	finalPending := meters - float64(steps)*cs

	saved := *state
	cx, cz := state.CellX, state.CellZ
	successful := 0
	boundary := false

	for i := 0; i < steps; i++ {
		nx, nz := geom.Step(cx, cz, travelDir)
		if !cellStepAllowed(m, cx, cz, nx, nz, travelDir) {
			boundary = true
			break
		}

		fromPos := m.CellToWorld(cx, cz)
		toPos := m.CellToWorld(nx, nz)
		if !sectorTransitionAllowed(idx, fromPos, toPos, travelDir) {
			*state = saved
			return Outcome{BoundaryHit: true, Road: road.At(idx, state.WorldPosition, state.Heading)}
		}

		cx, cz = nx, nz
		successful++
	}

	if successful == 0 {
		if boundary {
			// Blocked on the very first attempted step: nothing moved,
			// nothing is committed, not even pending_m.
			return Outcome{BoundaryHit: true, Road: road.At(idx, state.WorldPosition, state.Heading)}
		}
		// No cell boundary crossed (sub-cell move): the full requested
		// distance still counts as traveled.
		state.PendingM = finalPending
		state.DistanceM += distanceM
		return Outcome{Road: road.At(idx, state.WorldPosition, state.Heading)}
	}

	state.CellX, state.CellZ = cx, cz
	state.Heading = headingIntent
	state.HeadingDeg = geom.DirectionToDeg(headingIntent)
	state.WorldPosition = m.CellToWorld(cx, cz)
	if boundary {
		// Stopped partway on a wall: only the distance actually covered
		// counts, and the fractional carry is discarded rather than
		// queued for a call that will just hit the same wall again.
		state.DistanceM += float64(successful) * cs * sign
		state.PendingM = 0
	} else {
		state.DistanceM += distanceM
		state.PendingM = finalPending
	}

	return Outcome{Moved: true, BoundaryHit: boundary, Road: road.At(idx, state.WorldPosition, state.Heading)}
}

// cellStepAllowed implements §4.6 step 4(a): a step is allowed when
// neither of the two cells declares any exits ("loose" walkability) or
// one of the two cells declares the shared edge passable.
func cellStepAllowed(m *model.Map, cx, cz, nx, nz int, travelDir geom.Direction) bool {
	cur, curOk := m.Cell(cx, cz)
	next, nextOk := m.Cell(nx, nz)
	if !curOk || !nextOk {
		return false
	}
	if cur.Exits == 0 && next.Exits == 0 {
		return true
	}
	return cur.Exits.Has(travelDir) || next.Exits.Has(travelDir.Opposite())
}

// sectorTransitionAllowed implements §4.6's sector transition rule.
func sectorTransitionAllowed(idx *spatial.Index, fromPos, toPos geom.Point, travelDir geom.Direction) bool {
	toSector, ok := idx.DominantSectorAt(toPos)
	if !ok {
		return true
	}
	if toSector.Flags.Has(model.FlagClosed) || toSector.Flags.Has(model.FlagRestricted) {
		return false
	}

	fromSector, fromOk := idx.DominantSectorAt(fromPos)
	if fromOk && model.NormalizeID(fromSector.ID) == model.NormalizeID(toSector.ID) {
		return true
	}

	headingDeg := geom.DirectionToDeg(travelDir)

	if fromOk {
		_, fromPortal, _ := idx.Locate(fromPos, headingDeg)
		if !approachAllowsExit(idx.Map(), fromSector, fromPortal, headingDeg) {
			return false
		}
	}

	_, toPortal, _ := idx.Locate(toPos, headingDeg)
	return approachAllowsEntry(idx.Map(), toSector, toPortal, headingDeg)
}

func approachAllowsExit(m *model.Map, sector *model.Sector, portal *model.Portal, headingDeg float64) bool {
	appr, ok := m.ApproachForSector(sector.ID)
	if !ok || appr.ExitPortalID == "" {
		return true
	}
	if portal == nil || model.NormalizeID(portal.ID) != model.NormalizeID(appr.ExitPortalID) {
		return false
	}
	if appr.ExitHeadingDeg != nil {
		if math.Abs(geom.DeltaDeg(*appr.ExitHeadingDeg, headingDeg)) > appr.ToleranceDeg {
			return false
		}
	}
	return true
}

func approachAllowsEntry(m *model.Map, sector *model.Sector, portal *model.Portal, headingDeg float64) bool {
	appr, ok := m.ApproachForSector(sector.ID)
	if !ok || appr.EntryPortalID == "" {
		return true
	}
	if portal == nil || model.NormalizeID(portal.ID) != model.NormalizeID(appr.EntryPortalID) {
		return false
	}
	if appr.EntryHeadingDeg != nil {
		if math.Abs(geom.DeltaDeg(*appr.EntryHeadingDeg, headingDeg)) > appr.ToleranceDeg {
			return false
		}
	}
	return true
}
