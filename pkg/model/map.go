package model

import (
	"fmt"
	"strings"

	"github.com/trackmap/tsmkernel/pkg/geom"
)

// NormalizeID trims whitespace and lowercases an identifier so that id
// comparisons and lookups are case-insensitive throughout the kernel.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// CellKey addresses a Cell by its integer grid coordinates.
type CellKey struct{ X, Z int }

// Map is the complete parsed track map: a directed graph of entities
// referenced by normalized string ids, plus the integer-keyed cell grid.
//
// Map's Add* methods exist so pkg/tsm can assemble a Map while parsing;
// once Parse returns, callers must not mutate it. Returned collections
// and lookups are non-owning references into the Map's own storage.
type Map struct {
	Meta Metadata

	cells      map[CellKey]*Cell
	shapes     map[string]*Shape
	areas      map[string]*Area
	sectors    map[string]*Sector
	portals    map[string]*Portal
	links      map[string]*Link
	paths      map[string]*Path
	beacons    map[string]*Beacon
	markers    map[string]*Marker
	approaches map[string]*Approach // keyed by normalized sector id

	// insertion order, preserved for deterministic iteration and for the
	// canonical writer in pkg/export.
	shapeOrder     []string
	areaOrder      []string
	sectorOrder    []string
	portalOrder    []string
	linkOrder      []string
	pathOrder      []string
	beaconOrder    []string
	markerOrder    []string
	approachOrder  []string
}

// New creates an empty Map ready to be populated by the parser.
func New() *Map {
	return &Map{
		cells:      make(map[CellKey]*Cell),
		shapes:     make(map[string]*Shape),
		areas:      make(map[string]*Area),
		sectors:    make(map[string]*Sector),
		portals:    make(map[string]*Portal),
		links:      make(map[string]*Link),
		paths:      make(map[string]*Path),
		beacons:    make(map[string]*Beacon),
		markers:    make(map[string]*Marker),
		approaches: make(map[string]*Approach),
	}
}

// CellToWorld converts a cell coordinate to its world-space anchor
// (x·cell_size, z·cell_size). Because WorldToCell rounds to the nearest
// cell, this anchor is the cell's center: the cell covers half a cell
// on either side of it.
func (m *Map) CellToWorld(x, z int) geom.Point {
	cs := m.Meta.CellSizeM
	return geom.Point{X: float64(x) * cs, Z: float64(z) * cs}
}

// WorldToCell converts a world position back to its containing cell
// coordinate, rounding half-away-from-zero.
func (m *Map) WorldToCell(p geom.Point) (int, int) {
	cs := m.Meta.CellSizeM
	if cs == 0 {
		return 0, 0
	}
	x := geom.RoundHalfAwayFromZero(p.X / cs)
	z := geom.RoundHalfAwayFromZero(p.Z / cs)
	return x, z
}

// Cell looks up a cell by integer coordinates.
func (m *Map) Cell(x, z int) (*Cell, bool) {
	c, ok := m.cells[CellKey{X: x, Z: z}]
	return c, ok
}

// Cells returns all cells. Iteration order is unspecified; callers that
// need a stable order should sort by (X, Z).
func (m *Map) Cells() map[CellKey]*Cell { return m.cells }

// MergeCell applies cell-merge semantics: OR on exits, last-writer-wins
// on surface/noise/width/zone. Width/surface/noise/zone are only
// overwritten when the incoming value is non-zero/non-empty, matching
// the parser's "merge" contract where a block only sets the fields it
// mentions. The safe-zone flag is sticky: a patch can set it, but never
// clears it once set.
func (m *Map) MergeCell(x, z int, patch Cell) *Cell {
	key := CellKey{X: x, Z: z}
	c, ok := m.cells[key]
	if !ok {
		c = &Cell{X: x, Z: z}
		m.cells[key] = c
	}
	c.Exits |= patch.Exits
	if patch.Surface != "" {
		c.Surface = patch.Surface
	}
	if patch.Noise != "" {
		c.Noise = patch.Noise
	}
	if patch.WidthM != 0 {
		c.WidthM = patch.WidthM
	}
	if patch.Zone != "" {
		c.Zone = patch.Zone
	}
	if patch.IsSafeZone {
		c.IsSafeZone = true
	}
	return c
}

// AddShape registers a shape. Duplicate ids are rejected by the caller
// (pkg/tsm), which is responsible for emitting the corresponding IdError.
func (m *Map) AddShape(s *Shape) error {
	id := NormalizeID(s.ID)
	if _, exists := m.shapes[id]; exists {
		return fmt.Errorf("duplicate shape id %q", s.ID)
	}
	m.shapes[id] = s
	m.shapeOrder = append(m.shapeOrder, id)
	return nil
}

// Shape looks up a shape by id (case-insensitive).
func (m *Map) Shape(id string) (*Shape, bool) {
	s, ok := m.shapes[NormalizeID(id)]
	return s, ok
}

// Shapes returns all shapes in insertion order.
func (m *Map) Shapes() []*Shape {
	out := make([]*Shape, 0, len(m.shapeOrder))
	for _, id := range m.shapeOrder {
		out = append(out, m.shapes[id])
	}
	return out
}

// AddArea registers an area.
func (m *Map) AddArea(a *Area) error {
	id := NormalizeID(a.ID)
	if _, exists := m.areas[id]; exists {
		return fmt.Errorf("duplicate area id %q", a.ID)
	}
	m.areas[id] = a
	m.areaOrder = append(m.areaOrder, id)
	return nil
}

// Area looks up an area by id.
func (m *Map) Area(id string) (*Area, bool) {
	a, ok := m.areas[NormalizeID(id)]
	return a, ok
}

// Areas returns all areas in insertion order.
func (m *Map) Areas() []*Area {
	out := make([]*Area, 0, len(m.areaOrder))
	for _, id := range m.areaOrder {
		out = append(out, m.areas[id])
	}
	return out
}

// AddSector registers a sector.
func (m *Map) AddSector(s *Sector) error {
	id := NormalizeID(s.ID)
	if _, exists := m.sectors[id]; exists {
		return fmt.Errorf("duplicate sector id %q", s.ID)
	}
	m.sectors[id] = s
	m.sectorOrder = append(m.sectorOrder, id)
	return nil
}

// Sector looks up a sector by id.
func (m *Map) Sector(id string) (*Sector, bool) {
	s, ok := m.sectors[NormalizeID(id)]
	return s, ok
}

// Sectors returns all sectors in insertion order.
func (m *Map) Sectors() []*Sector {
	out := make([]*Sector, 0, len(m.sectorOrder))
	for _, id := range m.sectorOrder {
		out = append(out, m.sectors[id])
	}
	return out
}

// AddPortal registers a portal.
func (m *Map) AddPortal(p *Portal) error {
	id := NormalizeID(p.ID)
	if _, exists := m.portals[id]; exists {
		return fmt.Errorf("duplicate portal id %q", p.ID)
	}
	m.portals[id] = p
	m.portalOrder = append(m.portalOrder, id)
	return nil
}

// Portal looks up a portal by id.
func (m *Map) Portal(id string) (*Portal, bool) {
	p, ok := m.portals[NormalizeID(id)]
	return p, ok
}

// Portals returns all portals in insertion order.
func (m *Map) Portals() []*Portal {
	out := make([]*Portal, 0, len(m.portalOrder))
	for _, id := range m.portalOrder {
		out = append(out, m.portals[id])
	}
	return out
}

// AddLink registers a link.
func (m *Map) AddLink(l *Link) error {
	id := NormalizeID(l.ID)
	if _, exists := m.links[id]; exists {
		return fmt.Errorf("duplicate link id %q", l.ID)
	}
	m.links[id] = l
	m.linkOrder = append(m.linkOrder, id)
	return nil
}

// Links returns all links in insertion order.
func (m *Map) Links() []*Link {
	out := make([]*Link, 0, len(m.linkOrder))
	for _, id := range m.linkOrder {
		out = append(out, m.links[id])
	}
	return out
}

// AddPath registers a path.
func (m *Map) AddPath(p *Path) error {
	id := NormalizeID(p.ID)
	if _, exists := m.paths[id]; exists {
		return fmt.Errorf("duplicate path id %q", p.ID)
	}
	m.paths[id] = p
	m.pathOrder = append(m.pathOrder, id)
	return nil
}

// Paths returns all paths in insertion order.
func (m *Map) Paths() []*Path {
	out := make([]*Path, 0, len(m.pathOrder))
	for _, id := range m.pathOrder {
		out = append(out, m.paths[id])
	}
	return out
}

// AddBeacon registers a beacon.
func (m *Map) AddBeacon(b *Beacon) error {
	id := NormalizeID(b.ID)
	if _, exists := m.beacons[id]; exists {
		return fmt.Errorf("duplicate beacon id %q", b.ID)
	}
	m.beacons[id] = b
	m.beaconOrder = append(m.beaconOrder, id)
	return nil
}

// Beacons returns all beacons in insertion order.
func (m *Map) Beacons() []*Beacon {
	out := make([]*Beacon, 0, len(m.beaconOrder))
	for _, id := range m.beaconOrder {
		out = append(out, m.beacons[id])
	}
	return out
}

// AddMarker registers a marker.
func (m *Map) AddMarker(mk *Marker) error {
	id := NormalizeID(mk.ID)
	if _, exists := m.markers[id]; exists {
		return fmt.Errorf("duplicate marker id %q", mk.ID)
	}
	m.markers[id] = mk
	m.markerOrder = append(m.markerOrder, id)
	return nil
}

// Markers returns all markers in insertion order.
func (m *Map) Markers() []*Marker {
	out := make([]*Marker, 0, len(m.markerOrder))
	for _, id := range m.markerOrder {
		out = append(out, m.markers[id])
	}
	return out
}

// AddApproach registers an approach, keyed by its sector id. At most one
// approach may exist per sector.
func (m *Map) AddApproach(a *Approach) error {
	id := NormalizeID(a.SectorID)
	if _, exists := m.approaches[id]; exists {
		return fmt.Errorf("duplicate approach for sector %q", a.SectorID)
	}
	m.approaches[id] = a
	m.approachOrder = append(m.approachOrder, id)
	return nil
}

// ApproachForSector looks up the approach bundle for a sector id, if any.
func (m *Map) ApproachForSector(sectorID string) (*Approach, bool) {
	a, ok := m.approaches[NormalizeID(sectorID)]
	return a, ok
}

// Approaches returns all approaches in insertion order.
func (m *Map) Approaches() []*Approach {
	out := make([]*Approach, 0, len(m.approachOrder))
	for _, id := range m.approachOrder {
		out = append(out, m.approaches[id])
	}
	return out
}
