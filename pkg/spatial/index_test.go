package spatial_test

import (
	"context"
	"strings"
	"testing"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/spatial"
	"github.com/trackmap/tsmkernel/pkg/tsm"
)

func TestAreasAt_PolygonAreaContainment(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[shape: poly]
type = polygon
points = 0,0
points = 10,0
points = 10,10
points = 0,10

[area: z1]
type = SafeZone
shape = poly
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	idx, err := spatial.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inside := idx.AreasAt(geom.Point{X: 5, Z: 5})
	if len(inside) != 1 || inside[0].ID != "z1" {
		t.Fatalf("AreasAt(5,5) = %v, want [z1]", inside)
	}

	outside := idx.AreasAt(geom.Point{X: 11, Z: 5})
	if len(outside) != 0 {
		t.Fatalf("AreasAt(11,5) = %v, want none", outside)
	}
}

func TestLocate_PortalAlignmentAndHeadingDelta(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[shape: bounds]
type = rectangle
x = -5
z = -5
width = 20
height = 10

[area: bounds_area]
type = Track
shape = bounds

[sector: s]
type = Straight
area = bounds_area

[portal: p1]
sector = s
x = 0
z = 0
entry_heading = 0

[portal: p2]
sector = s
x = 10
z = 0
entry_heading = 90
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	idx, err := spatial.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sector, portal, delta := idx.Locate(geom.Point{X: 1, Z: 0}, 5)
	if sector == nil || portal == nil || delta == nil {
		t.Fatalf("Locate((1,0), 5deg) returned nils")
	}
	if portal.ID != "p1" {
		t.Errorf("portal = %s, want p1", portal.ID)
	}
	if *delta != 5 {
		t.Errorf("delta = %v, want +5", *delta)
	}

	sector, portal, delta = idx.Locate(geom.Point{X: 9, Z: 0}, 95)
	if sector == nil || portal == nil || delta == nil {
		t.Fatalf("Locate((9,0), 95deg) returned nils")
	}
	if portal.ID != "p2" {
		t.Errorf("portal = %s, want p2", portal.ID)
	}
	if *delta != 5 {
		t.Errorf("delta = %v, want +5", *delta)
	}
}

func TestBuild_RejectsZeroCellSize(t *testing.T) {
	src := `
[cell: 0,0]
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if _, err := spatial.Build(m); err == nil {
		t.Errorf("expected Build to reject a zero cell_size map")
	}
}

func TestLocate_PortalWithoutHeadingAlwaysAlignsWithZeroDelta(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[shape: bounds]
type = rectangle
x = -5
z = -5
width = 20
height = 10

[area: bounds_area]
type = Track
shape = bounds

[sector: s]
type = Straight
area = bounds_area

[portal: p1]
sector = s
x = 0
z = 0
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	idx, err := spatial.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, portal, delta := idx.Locate(geom.Point{X: 0, Z: 0}, 170)
	if portal == nil {
		t.Fatalf("expected a heading-less portal to always align")
	}
	if delta == nil || *delta != 0 {
		t.Errorf("delta = %v, want a non-nil 0 for a portal with no applicable heading", delta)
	}
}
