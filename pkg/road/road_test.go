package road_test

import (
	"context"
	"strings"
	"testing"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/road"
	"github.com/trackmap/tsmkernel/pkg/spatial"
	"github.com/trackmap/tsmkernel/pkg/tsm"
)

func build(t *testing.T, src string) *spatial.Index {
	t.Helper()
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	idx, err := spatial.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestAt_PolygonSafeZoneBoundary(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0
default_width = 4

[cell: 5,5]

[cell: 11,5]

[shape: poly]
type = polygon
points = 0,0
points = 10,0
points = 10,10
points = 0,10

[area: z1]
type = SafeZone
shape = poly
flags = safe
`
	idx := build(t, src)

	v := road.At(idx, geom.Point{X: 5, Z: 5}, geom.North)
	if !v.IsSafeZone {
		t.Errorf("(5,5) expected IsSafeZone=true inside the polygon")
	}

	v = road.At(idx, geom.Point{X: 11, Z: 5}, geom.North)
	if v.IsSafeZone {
		t.Errorf("(11,5) expected IsSafeZone=false outside the polygon")
	}
}

func TestAt_SectorIntersectionWidthOverride(t *testing.T) {
	src := `
[meta]
cell_size = 10
start_x = 0
start_z = 0
default_width = 4

[cell: 0,0]

[shape: junction]
type = rectangle
x = -5
z = -5
width = 10
height = 10

[area: junction_area]
type = Intersection
shape = junction

[sector: junction_sector]
type = Intersection
area = junction_area
intersection_width = 20
`
	idx := build(t, src)
	v := road.At(idx, geom.Point{X: 0, Z: 0}, geom.North)
	if v.Left+v.Right != 20 {
		t.Errorf("combined width = %v, want 20 from intersection_width override", v.Left+v.Right)
	}
}

func TestAt_OutOfBoundsWithoutPathOrSafeZone(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[shape: ribbon]
type = rectangle
x = 0
z = 0
width = 1
height = 1

[path: p1]
type = road
shape = ribbon
`
	idx := build(t, src)

	v := road.At(idx, geom.Point{X: 0, Z: 0}, geom.North)
	if v.IsOutOfBounds {
		t.Errorf("position on the path ribbon should not be out of bounds")
	}

	v = road.At(idx, geom.Point{X: 50, Z: 50}, geom.North)
	if !v.IsOutOfBounds {
		t.Errorf("position with no cell, no path, not a safe zone should be out of bounds")
	}
}

func TestInferCurveType_StraightThroughTwoOppositeExits(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]
exits = N,S
`
	idx := build(t, src)
	v := road.At(idx, geom.Point{X: 0, Z: 0}, geom.North)
	if v.CurveType != road.Straight {
		t.Errorf("CurveType = %v, want Straight for N|S exits", v.CurveType)
	}
}

func TestInferCurveType_RightTurn(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]
exits = S,E
`
	idx := build(t, src)
	// Traveling north (entered from the south exit), with the other exit
	// to the east: a right turn.
	v := road.At(idx, geom.Point{X: 0, Z: 0}, geom.North)
	if v.CurveType != road.Right {
		t.Errorf("CurveType = %v, want Right for S-in/E-out exits while heading N", v.CurveType)
	}
}
