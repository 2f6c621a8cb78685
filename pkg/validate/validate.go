// Package validate runs a fixed sequence of structural checks over a
// parsed map and returns every defect found as a tsm.Issue, in a stable
// enumeration order so that validating the same model twice always
// yields the same list.
package validate

import (
	"fmt"
	"sort"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
	"github.com/trackmap/tsmkernel/pkg/tsm"
)

// Options toggles the validator's optional policy checks and the
// severity of unreachable cells.
type Options struct {
	// ConnectivitySeverityError upgrades unreached cells from Warning to
	// Error; default (false) keeps them a Warning.
	ConnectivitySeverityError bool
	// RequireSafeZone emits a PolicyWarning if no area/cell advertises a
	// safe zone anywhere in the map.
	RequireSafeZone bool
	// RequireIntersection emits a PolicyWarning if no cell has 3+ exits.
	RequireIntersection bool
}

// Result is the outcome of Validate: every issue found, plus an IsValid
// convenience method reporting "no Error-severity issue present".
type Result struct {
	Issues []tsm.Issue
}

// IsValid reports whether the result contains no Error-severity issue.
func (r Result) IsValid() bool {
	for _, iss := range r.Issues {
		if iss.Severity == tsm.Error {
			return false
		}
	}
	return true
}

// Validate runs the fixed checklist against m and returns every issue
// found. It never mutates m.
func Validate(m *model.Map, opts Options) Result {
	var issues []tsm.Issue

	issues = append(issues, checkBasics(m)...)
	issues = append(issues, checkCells(m, opts)...)
	issues = append(issues, checkExitMirroring(m)...)
	issues = append(issues, checkConnectivity(m, opts)...)
	issues = append(issues, checkTopology(m)...)
	issues = append(issues, checkPolicies(m, opts)...)

	return Result{Issues: issues}
}

// checkBasics covers §4.4 item 1: non-empty cell map, positive
// cell_size, start cell present.
func checkBasics(m *model.Map) []tsm.Issue {
	var issues []tsm.Issue

	if len(m.Cells()) == 0 {
		issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindSectionError, Message: "map has no cells"})
	}
	if m.Meta.CellSizeM <= 0 {
		issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindSectionError, Message: fmt.Sprintf("cell_size_m must be > 0, got %v", m.Meta.CellSizeM)})
	}
	if _, ok := m.Cell(m.Meta.StartX, m.Meta.StartZ); !ok {
		issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindSectionError, Message: fmt.Sprintf("start cell (%d,%d) does not exist", m.Meta.StartX, m.Meta.StartZ)})
	}

	return issues
}

// checkCells covers §4.4 item 2: per-cell width floor and exits=None
// warning; the safe-zone/intersection bookkeeping it describes feeds
// checkPolicies instead of producing its own issues.
func checkCells(m *model.Map, opts Options) []tsm.Issue {
	var issues []tsm.Issue
	for _, key := range sortedCellKeys(m) {
		c := m.Cells()[key]
		if c.WidthM != 0 && c.WidthM < 0.5 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("cell (%d,%d): width_m %.3f below minimum 0.5", c.X, c.Z, c.WidthM)})
		}
		if c.Exits == 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Warning, Kind: tsm.KindPolicyWarning, Message: fmt.Sprintf("cell (%d,%d): no exits declared", c.X, c.Z)})
		}
	}
	return issues
}

// checkExitMirroring covers §4.4 item 3 / invariant 2: every advertised
// exit must be mirrored by the opposing entry on the neighbor cell.
func checkExitMirroring(m *model.Map) []tsm.Issue {
	var issues []tsm.Issue
	for _, key := range sortedCellKeys(m) {
		c := m.Cells()[key]
		for _, d := range c.Exits.Directions() {
			nx, nz := geom.Step(c.X, c.Z, d)
			neighbor, ok := m.Cell(nx, nz)
			if !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindTopologyError, Message: fmt.Sprintf("cell (%d,%d) exit %s points to missing neighbor (%d,%d)", c.X, c.Z, d, nx, nz)})
				continue
			}
			if !neighbor.Exits.Has(d.Opposite()) {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindTopologyError, Message: fmt.Sprintf("cell (%d,%d) exit %s: neighbor (%d,%d) lacks opposing exit %s", c.X, c.Z, d, nx, nz, d.Opposite())})
			}
		}
	}
	return issues
}

// checkConnectivity covers §4.4 item 4: breadth-first flood from the
// start cell over exit edges, grounded on the teacher's queue/visited
// BFS idiom.
func checkConnectivity(m *model.Map, opts Options) []tsm.Issue {
	start := model.CellKey{X: m.Meta.StartX, Z: m.Meta.StartZ}
	if _, ok := m.Cell(start.X, start.Z); !ok {
		return nil
	}

	visited := map[model.CellKey]bool{start: true}
	queue := []model.CellKey{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c := m.Cells()[cur]
		for _, d := range c.Exits.Directions() {
			nx, nz := geom.Step(cur.X, cur.Z, d)
			nk := model.CellKey{X: nx, Z: nz}
			if visited[nk] {
				continue
			}
			if _, ok := m.Cell(nx, nz); !ok {
				continue
			}
			visited[nk] = true
			queue = append(queue, nk)
		}
	}

	severity := tsm.Warning
	if opts.ConnectivitySeverityError {
		severity = tsm.Error
	}

	var issues []tsm.Issue
	for _, key := range sortedCellKeys(m) {
		if visited[key] {
			continue
		}
		issues = append(issues, tsm.Issue{Severity: severity, Kind: tsm.KindConnectivityIssue, Message: fmt.Sprintf("cell (%d,%d) is unreachable from the start cell", key.X, key.Z)})
	}
	return issues
}

// checkTopology covers §4.4 item 5: every cross-referencing id must
// resolve, and width/length/tolerance fields must satisfy their bounds.
func checkTopology(m *model.Map) []tsm.Issue {
	var issues []tsm.Issue

	for _, a := range m.Areas() {
		if _, ok := m.Shape(a.ShapeID); !ok {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("area %s: shape %q does not resolve", a.ID, a.ShapeID)})
		}
		if a.HasWidth && a.WidthM <= 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("area %s: width must be > 0", a.ID)})
		}
	}

	for _, s := range m.Sectors() {
		if s.AreaID != "" {
			if _, ok := m.Area(s.AreaID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("sector %s: area %q does not resolve", s.ID, s.AreaID)})
			}
		}
	}

	for _, p := range m.Portals() {
		if _, ok := m.Sector(p.SectorID); !ok {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("portal %s: sector %q does not resolve", p.ID, p.SectorID)})
		}
		if p.WidthM < 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("portal %s: width must be >= 0", p.ID)})
		}
	}

	for _, l := range m.Links() {
		if _, ok := m.Portal(l.FromPortalID); !ok {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("link %s: from_portal %q does not resolve", l.ID, l.FromPortalID)})
		}
		if _, ok := m.Portal(l.ToPortalID); !ok {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("link %s: to_portal %q does not resolve", l.ID, l.ToPortalID)})
		}
	}

	for _, pa := range m.Paths() {
		if pa.ShapeID != "" {
			if _, ok := m.Shape(pa.ShapeID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("path %s: shape %q does not resolve", pa.ID, pa.ShapeID)})
			}
		}
		if pa.FromPortalID != "" {
			if _, ok := m.Portal(pa.FromPortalID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("path %s: from_portal %q does not resolve", pa.ID, pa.FromPortalID)})
			}
		}
		if pa.ToPortalID != "" {
			if _, ok := m.Portal(pa.ToPortalID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("path %s: to_portal %q does not resolve", pa.ID, pa.ToPortalID)})
			}
		}
		if pa.WidthM < 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("path %s: width must be >= 0", pa.ID)})
		}
	}

	for _, b := range m.Beacons() {
		if b.SectorID != "" {
			if _, ok := m.Sector(b.SectorID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("beacon %s: sector %q does not resolve", b.ID, b.SectorID)})
			}
		}
		if b.ShapeID != "" {
			if _, ok := m.Shape(b.ShapeID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("beacon %s: shape %q does not resolve", b.ID, b.ShapeID)})
			}
		}
		if b.ShapeID == "" && b.ActivationRadiusM <= 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Warning, Kind: tsm.KindPolicyWarning, Message: fmt.Sprintf("beacon %s: no shape and no activation radius", b.ID)})
		}
	}

	for _, mk := range m.Markers() {
		if mk.ShapeID != "" {
			if _, ok := m.Shape(mk.ShapeID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("marker %s: shape %q does not resolve", mk.ID, mk.ShapeID)})
			}
		}
	}

	for _, a := range m.Approaches() {
		if _, ok := m.Sector(a.SectorID); !ok {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("approach %s: sector does not resolve", a.SectorID)})
		}
		if a.EntryPortalID != "" {
			if _, ok := m.Portal(a.EntryPortalID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("approach %s: entry_portal %q does not resolve", a.SectorID, a.EntryPortalID)})
			}
		}
		if a.ExitPortalID != "" {
			if _, ok := m.Portal(a.ExitPortalID); !ok {
				issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindIDError, Message: fmt.Sprintf("approach %s: exit_portal %q does not resolve", a.SectorID, a.ExitPortalID)})
			}
		}
		if a.WidthM <= 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("approach %s: width must be > 0", a.SectorID)})
		}
		if a.LengthM <= 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("approach %s: length must be > 0", a.SectorID)})
		}
		if a.ToleranceDeg < 0 {
			issues = append(issues, tsm.Issue{Severity: tsm.Error, Kind: tsm.KindGeometryError, Message: fmt.Sprintf("approach %s: tolerance must be >= 0", a.SectorID)})
		}
	}

	return issues
}

// checkPolicies covers §4.4 item 6: optional site-wide requirements.
func checkPolicies(m *model.Map, opts Options) []tsm.Issue {
	var issues []tsm.Issue

	if opts.RequireSafeZone {
		found := false
		for _, key := range sortedCellKeys(m) {
			if m.Cells()[key].IsSafeZone {
				found = true
				break
			}
		}
		if !found {
			for _, a := range m.Areas() {
				if a.Flags.Has(model.FlagSafeZone) {
					found = true
					break
				}
			}
		}
		if !found {
			issues = append(issues, tsm.Issue{Severity: tsm.Warning, Kind: tsm.KindPolicyWarning, Message: "no safe zone declared anywhere in the map"})
		}
	}

	if opts.RequireIntersection {
		found := false
		for _, key := range sortedCellKeys(m) {
			if m.Cells()[key].Exits.Count() >= 3 {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, tsm.Issue{Severity: tsm.Warning, Kind: tsm.KindPolicyWarning, Message: "no intersection cell (3+ exits) found"})
		}
	}

	return issues
}

// sortedCellKeys returns every cell key in a stable (X, then Z) order so
// that issue output does not depend on Go's randomized map iteration.
func sortedCellKeys(m *model.Map) []model.CellKey {
	keys := make([]model.CellKey, 0, len(m.Cells()))
	for k := range m.Cells() {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
	return keys
}
