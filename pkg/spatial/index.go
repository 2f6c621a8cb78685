// Package spatial builds a queryable index over a validated map: O(1)
// cell lookup plus bbox-bucketed containment queries for areas, sectors,
// and paths, and nearest-portal lookup by point and heading.
package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
)

// AlignmentToleranceDeg bounds how far a portal's applicable heading may
// differ from the query heading and still be considered aligned. Cardinal
// headings are 90° apart, so half that span keeps candidates from two
// opposite-facing portals from both qualifying at once.
const AlignmentToleranceDeg = 45.0

// bucketCells sets the coarse grid's bucket size as a multiple of the
// map's cell size, trading a few redundant candidates per bucket for far
// fewer buckets to allocate on large maps.
const bucketCells = 8

type gridKey struct{ gx, gz int }

// Index is built once from a validated Map and is safe for concurrent
// read-only use afterward; it holds no mutable state of its own beyond
// construction.
type Index struct {
	m *model.Map

	bucketSize   float64
	areaBuckets  map[gridKey][]*model.Area
	pathBuckets  map[gridKey][]*model.Path
	sectorsByArea map[string][]*model.Sector
}

// Build constructs an Index over m. It returns an error only if the map
// has no cell size to derive a bucket size from.
func Build(m *model.Map) (*Index, error) {
	if m.Meta.CellSizeM <= 0 {
		return nil, fmt.Errorf("spatial: cell_size_m must be > 0 to build an index")
	}

	idx := &Index{
		m:             m,
		bucketSize:    m.Meta.CellSizeM * bucketCells,
		areaBuckets:   make(map[gridKey][]*model.Area),
		pathBuckets:   make(map[gridKey][]*model.Path),
		sectorsByArea: make(map[string][]*model.Sector),
	}

	for _, a := range m.Areas() {
		shape, ok := m.Shape(a.ShapeID)
		if !ok {
			continue
		}
		idx.bucketArea(a, shape.Geom().BBox())
	}

	for _, p := range m.Paths() {
		if p.ShapeID == "" {
			continue
		}
		shape, ok := m.Shape(p.ShapeID)
		if !ok {
			continue
		}
		idx.bucketPath(p, shape.Geom().BBox())
	}

	for _, s := range m.Sectors() {
		if s.AreaID == "" {
			continue
		}
		id := model.NormalizeID(s.AreaID)
		idx.sectorsByArea[id] = append(idx.sectorsByArea[id], s)
	}

	return idx, nil
}

func (idx *Index) bucketsFor(bbox geom.Rect) []gridKey {
	minGX := int(math.Floor(bbox.X / idx.bucketSize))
	maxGX := int(math.Floor((bbox.X + bbox.Width) / idx.bucketSize))
	minGZ := int(math.Floor(bbox.Z / idx.bucketSize))
	maxGZ := int(math.Floor((bbox.Z + bbox.Height) / idx.bucketSize))

	var keys []gridKey
	for gx := minGX; gx <= maxGX; gx++ {
		for gz := minGZ; gz <= maxGZ; gz++ {
			keys = append(keys, gridKey{gx, gz})
		}
	}
	return keys
}

func (idx *Index) bucketArea(a *model.Area, bbox geom.Rect) {
	for _, k := range idx.bucketsFor(bbox) {
		idx.areaBuckets[k] = append(idx.areaBuckets[k], a)
	}
}

func (idx *Index) bucketPath(p *model.Path, bbox geom.Rect) {
	for _, k := range idx.bucketsFor(bbox) {
		idx.pathBuckets[k] = append(idx.pathBuckets[k], p)
	}
}

func (idx *Index) keyFor(p geom.Point) gridKey {
	return gridKey{
		gx: int(math.Floor(p.X / idx.bucketSize)),
		gz: int(math.Floor(p.Z / idx.bucketSize)),
	}
}

// Cell looks up the cell at integer coordinates (x, z).
func (idx *Index) Cell(x, z int) (*model.Cell, bool) {
	return idx.m.Cell(x, z)
}

// Map returns the underlying map the index was built from.
func (idx *Index) Map() *model.Map { return idx.m }

// AreasAt returns every area containing pt, in the map's insertion
// order; the caller treats the last element as dominant.
func (idx *Index) AreasAt(pt geom.Point) []*model.Area {
	candidates := idx.areaBuckets[idx.keyFor(pt)]
	if len(candidates) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(candidates))
	for _, a := range candidates {
		shape, ok := idx.m.Shape(a.ShapeID)
		if !ok || !shape.Geom().Contains(pt) {
			continue
		}
		seen[model.NormalizeID(a.ID)] = true
	}
	if len(seen) == 0 {
		return nil
	}
	var out []*model.Area
	for _, a := range idx.m.Areas() {
		if seen[model.NormalizeID(a.ID)] {
			out = append(out, a)
		}
	}
	return out
}

// SectorsAt returns every sector whose area_id resolves to an area
// containing pt, in insertion order.
func (idx *Index) SectorsAt(pt geom.Point) []*model.Sector {
	areas := idx.AreasAt(pt)
	if len(areas) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	for _, a := range areas {
		for _, s := range idx.sectorsByArea[model.NormalizeID(a.ID)] {
			seen[model.NormalizeID(s.ID)] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	var out []*model.Sector
	for _, s := range idx.m.Sectors() {
		if seen[model.NormalizeID(s.ID)] {
			out = append(out, s)
		}
	}
	return out
}

// PathsAt returns every path whose shape contains pt, in insertion order.
func (idx *Index) PathsAt(pt geom.Point) []*model.Path {
	candidates := idx.pathBuckets[idx.keyFor(pt)]
	if len(candidates) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		shape, ok := idx.m.Shape(p.ShapeID)
		if !ok || !shape.Geom().Contains(pt) {
			continue
		}
		seen[model.NormalizeID(p.ID)] = true
	}
	if len(seen) == 0 {
		return nil
	}
	var out []*model.Path
	for _, p := range idx.m.Paths() {
		if seen[model.NormalizeID(p.ID)] {
			out = append(out, p)
		}
	}
	return out
}

// DominantSectorAt returns the last (dominant) sector containing pt, if
// any.
func (idx *Index) DominantSectorAt(pt geom.Point) (*model.Sector, bool) {
	sectors := idx.SectorsAt(pt)
	if len(sectors) == 0 {
		return nil, false
	}
	return sectors[len(sectors)-1], true
}

// Locate resolves the dominant sector at pt, then the portal of that
// sector best aligned to headingDeg. It returns a nil portal and nil
// delta when the sector has no portal within AlignmentToleranceDeg.
func (idx *Index) Locate(pt geom.Point, headingDeg float64) (sector *model.Sector, portal *model.Portal, headingDeltaDeg *float64) {
	sector, ok := idx.DominantSectorAt(pt)
	if !ok {
		return nil, nil, nil
	}

	type candidate struct {
		portal *model.Portal
		dist   float64
		delta  float64
	}
	var candidates []candidate

	for _, p := range idx.m.Portals() {
		if model.NormalizeID(p.SectorID) != model.NormalizeID(sector.ID) {
			continue
		}
		var delta float64
		if applicable, ok := applicableHeading(p); ok {
			// headingDeltaDeg is query heading minus the portal's
			// applicable heading (how far the driver's heading leads the
			// portal's), not the other way around — see scenario S5.
			delta = geom.DeltaDeg(applicable, headingDeg)
			if math.Abs(delta) > AlignmentToleranceDeg {
				continue
			}
		}
		dx := p.Position.X - pt.X
		dz := p.Position.Z - pt.Z
		candidates = append(candidates, candidate{portal: p, dist: dx*dx + dz*dz, delta: delta})
	}

	if len(candidates) == 0 {
		return sector, nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if math.Abs(a.delta) != math.Abs(b.delta) {
			return math.Abs(a.delta) < math.Abs(b.delta)
		}
		return model.NormalizeID(a.portal.ID) < model.NormalizeID(b.portal.ID)
	})

	best := candidates[0]
	delta := best.delta
	return sector, best.portal, &delta
}

// applicableHeading picks the heading a portal is judged against: entry
// heading if set, else exit heading, else ok is false and the portal
// carries no basis to reject or score on alignment (it always matches,
// with a zero heading delta).
func applicableHeading(p *model.Portal) (deg float64, ok bool) {
	if p.EntryHeadingDeg != nil {
		return *p.EntryHeadingDeg, true
	}
	if p.ExitHeadingDeg != nil {
		return *p.ExitHeadingDeg, true
	}
	return 0, false
}
