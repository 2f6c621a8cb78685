// Package road derives the per-position road view the movement
// automaton and external callers consult: cell defaults cascaded
// through path, sector, and area overrides.
package road

import (
	"math"
	"strconv"
	"strings"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
	"github.com/trackmap/tsmkernel/pkg/spatial"
)

// CurveType classifies the shape of the road at a position relative to
// the direction of travel.
type CurveType int

const (
	Straight CurveType = iota
	Left
	Right
)

func (c CurveType) String() string {
	switch c {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Straight"
	}
}

// View is the derived record returned by At/Next: the merged contribution
// of the cell, any containing path, and any containing sectors/areas, at
// one world position and heading.
type View struct {
	Left, Right float64 // half-width on either side of centerline
	Surface     string
	Noise       string
	CurveType   CurveType
	LengthM     float64
	IsSafeZone  bool

	IsOutOfBounds bool
	IsClosed      bool
	IsRestricted  bool
	RequiresStop  bool
	RequiresYield bool
	MinSpeedKPH   float64
	MaxSpeedKPH   float64
}

// At derives the road view at pt for a traveler facing heading.
func At(idx *spatial.Index, pt geom.Point, heading geom.Direction) View {
	m := idx.Map()
	cx, cz := m.WorldToCell(pt)
	cell, cellExists := m.Cell(cx, cz)

	var v View
	v.LengthM = m.Meta.CellSizeM

	width := m.Meta.DefaultWidthM
	if cellExists {
		v.Surface = cell.Surface
		v.Noise = cell.Noise
		v.IsSafeZone = cell.IsSafeZone
		if cell.WidthM > 0 {
			width = cell.WidthM
		}
	} else {
		v.Surface = m.Meta.DefaultSurface
		v.Noise = m.Meta.DefaultNoise
	}
	if v.Surface == "" {
		v.Surface = m.Meta.DefaultSurface
	}
	if v.Noise == "" {
		v.Noise = m.Meta.DefaultNoise
	}

	// Step 2: path width override — the last containing path with a
	// positive width wins.
	paths := idx.PathsAt(pt)
	for _, p := range paths {
		if p.WidthM > 0 {
			width = p.WidthM
		}
	}

	length := v.LengthM

	// Step 3: sector overrides. A sector's metadata width/length also
	// suppresses the area shape-dimension fallback below.
	sectorWidth, sectorLength := false, false
	sectors := idx.SectorsAt(pt)
	for _, s := range sectors {
		if s.Surface != "" {
			v.Surface = s.Surface
		}
		if s.Noise != "" {
			v.Noise = s.Noise
		}
		if s.Flags.Has(model.FlagSafeZone) {
			v.IsSafeZone = true
		}
		if w, ok := dimensionOverride(s.Metadata, 0, false); ok {
			width = w
			sectorWidth = true
		}
		if l, ok := lengthOverride(s.Metadata); ok {
			length = l
			sectorLength = true
		}
		if s.Flags.Has(model.FlagClosed) {
			v.IsClosed = true
		}
		if s.Flags.Has(model.FlagRestricted) {
			v.IsRestricted = true
		}
		if s.Flags.Has(model.FlagRequiresStop) {
			v.RequiresStop = true
		}
		if s.Flags.Has(model.FlagRequiresYield) {
			v.RequiresYield = true
		}
		if f, ok := metadataFloat(s.Metadata, "min_speed_kph"); ok {
			v.MinSpeedKPH = f
		}
		if f, ok := metadataFloat(s.Metadata, "max_speed_kph"); ok {
			v.MaxSpeedKPH = f
		}
	}

	// Step 4: area overrides.
	areas := idx.AreasAt(pt)
	for _, a := range areas {
		if a.Surface != "" {
			v.Surface = a.Surface
		}
		if a.Noise != "" {
			v.Noise = a.Noise
		}
		if a.Flags.Has(model.FlagSafeZone) {
			v.IsSafeZone = true
		}
		if w, ok := dimensionOverride(a.Metadata, a.WidthM, a.HasWidth); ok {
			width = w
		}
		if l, ok := lengthOverride(a.Metadata); ok {
			length = l
		}
	}
	if n := len(areas); n > 0 {
		last := areas[n-1]
		_, wok := dimensionOverride(last.Metadata, last.WidthM, last.HasWidth)
		_, lok := lengthOverride(last.Metadata)
		wok = wok || sectorWidth
		lok = lok || sectorLength
		if !wok || !lok {
			if shape, ok := m.Shape(last.ShapeID); ok {
				if dw, dl, dok := shape.Dimensions(heading); dok {
					if !wok {
						width = dw
					}
					if !lok {
						length = dl
					}
				}
			}
		}
	}

	v.Left = width / 2
	v.Right = width / 2
	v.LengthM = length

	// Step 5: curve-type inference from the raw cell, independent of the
	// above overrides.
	if cellExists {
		v.CurveType = inferCurveType(cell.Exits, heading)
	}

	// Step 6: out-of-bounds.
	hasPaths := len(m.Paths()) > 0
	switch {
	case len(paths) > 0:
		v.IsOutOfBounds = false
	case hasPaths && v.IsSafeZone:
		v.IsOutOfBounds = false
	case !hasPaths && cellExists:
		v.IsOutOfBounds = false
	default:
		v.IsOutOfBounds = true
	}

	return v
}

// Next walks forward in heading up to ceil(horizonM/cell_size) cells from
// pt and returns the first one whose curve type differs from the one at
// pt, or nil if none is found within the horizon or the cell chain breaks.
func Next(idx *spatial.Index, pt geom.Point, heading geom.Direction, horizonM float64) *View {
	m := idx.Map()
	cs := m.Meta.CellSizeM
	if cs <= 0 {
		return nil
	}
	here := At(idx, pt, heading)

	cx, cz := m.WorldToCell(pt)
	steps := int(math.Ceil(horizonM / cs))
	for i := 0; i < steps; i++ {
		cx, cz = geom.Step(cx, cz, heading)
		if _, ok := m.Cell(cx, cz); !ok {
			return nil
		}
		next := m.CellToWorld(cx, cz)
		v := At(idx, next, heading)
		if v.CurveType != here.CurveType {
			return &v
		}
	}
	return nil
}

func inferCurveType(exits model.ExitSet, heading geom.Direction) CurveType {
	dirs := exits.Directions()
	if len(dirs) >= 3 || len(dirs) < 2 {
		return Straight
	}

	a, b := dirs[0], dirs[1]
	if a.Opposite() == b {
		return Straight
	}

	incoming := heading.Opposite()
	var other geom.Direction
	switch {
	case a == incoming:
		other = b
	case b == incoming:
		other = a
	default:
		return Straight
	}

	switch geom.DeltaDeg(geom.DirectionToDeg(heading), geom.DirectionToDeg(other)) {
	case 90:
		return Right
	case -90:
		return Left
	default:
		return Straight
	}
}

// dimensionOverride resolves a width contribution from metadata keys
// intersection_width then width, falling back to an explicit field value
// (used by Area, which models "width" as a dedicated struct field rather
// than leaving it in the metadata bag).
func dimensionOverride(md map[string]string, explicitWidth float64, explicitSet bool) (float64, bool) {
	if f, ok := metadataFloat(md, "intersection_width"); ok {
		return f, true
	}
	if f, ok := metadataFloat(md, "width"); ok {
		return f, true
	}
	if explicitSet {
		return explicitWidth, true
	}
	return 0, false
}

func lengthOverride(md map[string]string) (float64, bool) {
	if f, ok := metadataFloat(md, "intersection_length"); ok {
		return f, true
	}
	if f, ok := metadataFloat(md, "length"); ok {
		return f, true
	}
	return 0, false
}

func metadataFloat(md map[string]string, key string) (float64, bool) {
	if md == nil {
		return 0, false
	}
	v, ok := md[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
